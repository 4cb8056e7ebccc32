// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/ui/components"
)

// statusBarHeight is the number of rows under the panes.
const statusBarHeight = 1

// =============================================================================
// LAYOUT
// =============================================================================

// layout sizes every widget from the window size. The sidebar never takes
// more than half the window.
func (m *Model) layout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.theme.SetSize(m.width, m.height)

	sideW := min(max(m.sidebarWidth, config.MinSidebarWidth), m.width/2)
	mainW := max(m.width-sideW, 1)
	bodyH := max(m.height-statusBarHeight, 1)

	m.sidebar.SetSize(sideW, bodyH)
	m.composer.SetWidth(mainW)
	m.transcript.SetSize(mainW, max(bodyH-m.composer.Height(), 1))
}

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.dialog.Active() {
		return m.dialog.View(m.width, m.height)
	}

	main := lipgloss.JoinVertical(lipgloss.Left, m.transcript.View(), m.composer.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), main)

	status := components.RenderStatusBar(m.theme, components.StatusInfo{
		Model:         m.modelName,
		Conversations: m.store.Len(),
		Pending:       m.pending,
		Shortcuts:     m.keys.ShortHelp(),
	}, m.width)

	screen := lipgloss.JoinVertical(lipgloss.Left, body, status)
	if toasts := m.toasts.View(m.theme, m.width); toasts != "" {
		screen = m.overlayToasts(screen, toasts)
	}
	return screen
}

// overlayToasts draws the toast stack over the bottom-right of the screen,
// above the composer and status bar.
func (m Model) overlayToasts(base, toastView string) string {
	baseLines := strings.Split(base, "\n")
	toastLines := strings.Split(toastView, "\n")

	startRow := len(baseLines) - statusBarHeight - m.composer.Height() - len(toastLines)
	if startRow < 0 {
		startRow = 0
	}

	for i, line := range toastLines {
		row := startRow + i
		if row >= len(baseLines) {
			break
		}
		// Toast lines arrive right-aligned to the full width.
		toast := strings.TrimLeft(line, " ")
		keep := max(m.width-lipgloss.Width(toast), 0)

		left := truncate.String(baseLines[row], uint(keep))
		if pad := keep - lipgloss.Width(left); pad > 0 {
			left += strings.Repeat(" ", pad)
		}
		baseLines[row] = left + toast
	}
	return strings.Join(baseLines, "\n")
}
