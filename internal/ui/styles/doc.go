// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for rigchat.
//
// Colors are Lip Gloss AdaptiveColors, resolved against the terminal
// background. Theme bundles every lipgloss.Style the components use.
//
// # Usage
//
//	theme := styles.NewTheme("auto")
//	theme.SetSize(width, height)
//	bubble := theme.UserBubble.Render(text)
package styles
