// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jeranaias/rigchat/internal/ui/styles"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind represents the type of toast notification.
type ToastKind int

const (
	// ToastKindInfo is an informational toast
	ToastKindInfo ToastKind = iota
	// ToastKindWarning is a warning toast
	ToastKindWarning
	// ToastKindError is an error toast
	ToastKindError
)

// Auto-dismiss durations per kind. Errors stay longer so they can be read.
const (
	InfoToastDuration    = 4 * time.Second
	WarningToastDuration = 6 * time.Second
	ErrorToastDuration   = 8 * time.Second
)

// maxToasts bounds how many toasts are visible at once.
const maxToasts = 3

// Toast is a non-blocking notification that dismisses itself.
type Toast struct {
	ID        int
	Message   string
	Kind      ToastKind
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the toast should be dismissed at now.
func (t Toast) IsExpired(now time.Time) bool {
	return now.Sub(t.CreatedAt) >= t.Duration
}

func durationFor(kind ToastKind) time.Duration {
	switch kind {
	case ToastKindError:
		return ErrorToastDuration
	case ToastKindWarning:
		return WarningToastDuration
	default:
		return InfoToastDuration
	}
}

// =============================================================================
// TOAST MANAGER
// =============================================================================

// ToastManager holds the visible toasts, newest last. It is owned by the
// UI goroutine and is not safe for concurrent use.
type ToastManager struct {
	toasts []Toast
	nextID int
	now    func() time.Time
}

// NewToastManager creates an empty toast manager.
func NewToastManager() *ToastManager {
	return &ToastManager{nextID: 1, now: time.Now}
}

// Add shows a toast and returns the command that dismisses it.
func (m *ToastManager) Add(kind ToastKind, message string) tea.Cmd {
	toast := Toast{
		ID:        m.nextID,
		Message:   message,
		Kind:      kind,
		CreatedAt: m.now(),
		Duration:  durationFor(kind),
	}
	m.nextID++

	m.toasts = append(m.toasts, toast)
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[len(m.toasts)-maxToasts:]
	}

	id := toast.ID
	return tea.Tick(toast.Duration, func(time.Time) tea.Msg {
		return ToastExpiredMsg{ID: id}
	})
}

// Warn is shorthand for Add(ToastKindWarning, message).
func (m *ToastManager) Warn(message string) tea.Cmd {
	return m.Add(ToastKindWarning, message)
}

// Error is shorthand for Add(ToastKindError, message).
func (m *ToastManager) Error(message string) tea.Cmd {
	return m.Add(ToastKindError, message)
}

// Remove dismisses a toast by ID.
func (m *ToastManager) Remove(id int) {
	for i, toast := range m.toasts {
		if toast.ID == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}

// Prune drops every expired toast.
func (m *ToastManager) Prune() {
	now := m.now()
	active := m.toasts[:0]
	for _, toast := range m.toasts {
		if !toast.IsExpired(now) {
			active = append(active, toast)
		}
	}
	m.toasts = active
}

// Toasts returns a copy of the visible toasts.
func (m *ToastManager) Toasts() []Toast {
	out := make([]Toast, len(m.toasts))
	copy(out, m.toasts)
	return out
}

// Len returns the number of visible toasts.
func (m *ToastManager) Len() int {
	return len(m.toasts)
}

// ToastExpiredMsg dismisses the toast with ID.
type ToastExpiredMsg struct {
	ID int
}

// =============================================================================
// TOAST RENDERING
// =============================================================================

// View renders the toast stack right-aligned within width, or "" if empty.
func (m *ToastManager) View(theme *styles.Theme, width int) string {
	if len(m.toasts) == 0 {
		return ""
	}

	maxWidth := min(60, width-4)
	if maxWidth < 20 {
		maxWidth = 20
	}

	rendered := make([]string, 0, len(m.toasts))
	for _, toast := range m.toasts {
		rendered = append(rendered, renderToast(theme, toast, maxWidth))
	}
	stack := lipgloss.JoinVertical(lipgloss.Right, rendered...)
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, stack)
}

func renderToast(theme *styles.Theme, toast Toast, maxWidth int) string {
	var style lipgloss.Style
	var icon string
	switch toast.Kind {
	case ToastKindError:
		style, icon = theme.ToastError, "✗"
	case ToastKindWarning:
		style, icon = theme.ToastWarning, "!"
	default:
		style, icon = theme.ToastInfo, "i"
	}

	// border and padding take 4 cells
	text := wordwrap.String(icon+" "+toast.Message, maxWidth-4)
	return style.Render(strings.TrimRight(text, "\n"))
}
