// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the rigchat application.
//
// This package contains small helpers shared by the storage, session and UI
// packages for string handling and file operations.
//
// # Key Functions
//
// String Utilities:
//   - CutRunes: UTF-8 safe prefix with a truncation flag
//   - TruncateRunes: UTF-8 safe string truncation with ellipsis
//   - TruncateWidth: display-width aware truncation for terminal cells
//   - PadWidth: right-pads to a display width
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	// Truncate long titles safely for the sidebar
//	label := util.TruncateWidth(title, 24)
//
//	// Write files atomically to prevent data loss
//	err := util.AtomicWriteFile(path, data, 0644)
package util
