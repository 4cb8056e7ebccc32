// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the view layer for the rigchat TUI.
//
// Components render from model values and report user intent back to the
// caller; none of them mutate the conversation store.
//
// # Key Types
//
//   - Sidebar: conversation list with selection highlight
//   - Transcript: scrollable message bubbles for one conversation
//   - Composer: single-line input with a pending-request spinner
//   - Dialog: title prompt and delete confirmation
//   - ToastManager: auto-dismissing warnings
//   - StatusBar: model, counts and key hints
package components
