// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// BubbleWidthRatio is the share of the transcript width a bubble may use.
const BubbleWidthRatio = 0.75

// Theme holds all the styled components for the application.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// LAYOUT
	// ==========================================================================

	App     lipgloss.Style
	Divider lipgloss.Style

	// ==========================================================================
	// SIDEBAR
	// ==========================================================================

	Sidebar             lipgloss.Style
	SidebarFocused      lipgloss.Style
	SidebarTitle        lipgloss.Style
	SidebarItem         lipgloss.Style
	SidebarItemSelected lipgloss.Style
	SidebarItemCursor   lipgloss.Style
	SidebarEmpty        lipgloss.Style

	// ==========================================================================
	// TRANSCRIPT
	// ==========================================================================

	UserBubble       lipgloss.Style
	AssistantBubble  lipgloss.Style
	ErrorBubble      lipgloss.Style
	BubbleTime       lipgloss.Style
	TranscriptHeader lipgloss.Style
	EmptyState       lipgloss.Style

	// ==========================================================================
	// COMPOSER
	// ==========================================================================

	InputContainer        lipgloss.Style
	InputContainerFocused lipgloss.Style
	InputPrompt           lipgloss.Style
	Spinner               lipgloss.Style
	ThinkingText          lipgloss.Style

	// ==========================================================================
	// DIALOGS
	// ==========================================================================

	DialogBox    lipgloss.Style
	DialogTitle  lipgloss.Style
	DialogBody   lipgloss.Style
	DialogHint   lipgloss.Style
	DialogDanger lipgloss.Style

	// ==========================================================================
	// STATUS AND TOASTS
	// ==========================================================================

	StatusBar    lipgloss.Style
	StatusModel  lipgloss.Style
	StatusBusy   lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	ToastError   lipgloss.Style
	ToastWarning lipgloss.Style
	ToastInfo    lipgloss.Style
}

// NewTheme creates a theme. mode is "dark", "light" or "auto"; auto asks
// the terminal for its background.
func NewTheme(mode string) *Theme {
	t := &Theme{
		ColorProfile: termenv.ColorProfile(),
	}

	switch strings.ToLower(mode) {
	case "dark":
		t.IsDark = true
		lipgloss.SetHasDarkBackground(true)
	case "light":
		t.IsDark = false
		lipgloss.SetHasDarkBackground(false)
	default:
		t.IsDark = termenv.HasDarkBackground()
	}

	t.initStyles()
	return t
}

// GlamourStyle returns the glamour standard style matching the background.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}

func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle()
	t.Divider = lipgloss.NewStyle().Foreground(Overlay)

	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.SidebarFocused = t.Sidebar.BorderForeground(Cyan)
	t.SidebarTitle = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true).
		MarginBottom(1)
	t.SidebarItem = lipgloss.NewStyle().Foreground(TextSecondary)
	t.SidebarItemSelected = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(SelectionBg).
		Bold(true)
	t.SidebarItemCursor = lipgloss.NewStyle().Foreground(Purple).Bold(true)
	t.SidebarEmpty = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)

	// Transcript - user right, assistant left
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		Background(UserBubbleBg).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1)
	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 1)
	t.ErrorBubble = t.AssistantBubble.
		Foreground(Rose).
		BorderForeground(ErrorReplyBorder)
	t.BubbleTime = lipgloss.NewStyle().Foreground(TextMuted)
	t.TranscriptHeader = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay)
	t.EmptyState = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		Padding(1, 2)

	// Composer
	t.InputContainer = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.InputContainerFocused = t.InputContainer.BorderForeground(Cyan)
	t.InputPrompt = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.Spinner = lipgloss.NewStyle().Foreground(Amber)
	t.ThinkingText = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)

	// Dialogs
	t.DialogBox = lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(Cyan).
		Padding(1, 2)
	t.DialogTitle = lipgloss.NewStyle().Foreground(Cyan).Bold(true).MarginBottom(1)
	t.DialogBody = lipgloss.NewStyle().Foreground(TextPrimary)
	t.DialogHint = lipgloss.NewStyle().Foreground(TextMuted).MarginTop(1)
	t.DialogDanger = lipgloss.NewStyle().Foreground(Rose).Bold(true)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)
	t.StatusModel = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.StatusBusy = lipgloss.NewStyle().Foreground(Amber)
	t.ShortcutKey = lipgloss.NewStyle().Foreground(TextPrimary).Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(TextMuted)

	// Toasts
	toast := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	t.ToastError = toast.BorderForeground(Rose).Foreground(Rose)
	t.ToastWarning = toast.BorderForeground(Amber).Foreground(Amber)
	t.ToastInfo = toast.BorderForeground(Cyan).Foreground(Cyan)
}

// SetSize updates the layout dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// MaxBubbleWidth returns the widest a bubble may render inside a pane of
// paneWidth cells, borders and padding included.
func MaxBubbleWidth(paneWidth int) int {
	w := int(float64(paneWidth) * BubbleWidthRatio)
	if w < 20 {
		w = min(paneWidth, 20)
	}
	return w
}
