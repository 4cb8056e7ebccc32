// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a single conversation to a standalone file.
//
// # Key Types
//
//   - Exporter: converts a conversation to bytes in one format
//   - MarkdownExporter: readable transcript with YAML frontmatter
//   - JSONExporter: the conversation in history-file shape
//   - Options: output directory, timestamps and clock
//
// # Usage
//
//	opts := export.DefaultOptions()
//	opts.OutputDir = cfg.ExportDir()
//	path, err := export.ExportMarkdown(conv, opts)
package export
