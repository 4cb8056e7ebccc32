// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rigchat/internal/ui/styles"
)

// StatusInfo is what the status bar shows.
type StatusInfo struct {
	Model         string
	Conversations int
	Pending       bool
	Shortcuts     []key.Binding
}

// RenderStatusBar renders a single-line status bar of exactly width cells.
func RenderStatusBar(theme *styles.Theme, info StatusInfo, width int) string {
	left := theme.StatusModel.Render(info.Model) +
		fmt.Sprintf("  %d chat", info.Conversations)
	if info.Conversations != 1 {
		left += "s"
	}
	if info.Pending {
		left += "  " + theme.StatusBusy.Render("● waiting")
	}

	hints := make([]string, 0, len(info.Shortcuts))
	for _, b := range info.Shortcuts {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		hints = append(hints, theme.ShortcutKey.Render(h.Key)+" "+theme.ShortcutDesc.Render(h.Desc))
	}
	right := strings.Join(hints, "  ")

	inner := max(width-2, 1) // padding
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	line := left
	if gap >= 2 {
		line = left + strings.Repeat(" ", gap) + right
	}
	return theme.StatusBar.Width(max(width, 1)).MaxWidth(max(width, 1)).Render(line)
}
