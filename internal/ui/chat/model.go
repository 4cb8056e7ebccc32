// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/session"
	"github.com/jeranaias/rigchat/internal/ui/components"
	"github.com/jeranaias/rigchat/internal/ui/styles"
)

// focusArea is the pane that receives keys.
type focusArea int

const (
	focusComposer focusArea = iota
	focusSidebar
)

// Options configures a Model. Zero values fall back to defaults.
type Options struct {
	Theme          *styles.Theme
	Keys           *KeyMap
	ModelName      string
	SidebarWidth   int
	Markdown       bool
	ExportDir      string
	StartupWarning string
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	store     *session.Store
	completer session.Completer

	// Styling
	theme *styles.Theme
	keys  KeyMap

	// Widgets
	sidebar    components.Sidebar
	transcript components.Transcript
	composer   components.Composer
	dialog     components.Dialog
	toasts     *components.ToastManager

	focus     focusArea
	pending   bool
	cancelMgr *cancelManager // pointer: Model is copied on every Update

	// Status
	modelName      string
	startupWarning string
	exportDir      string

	// Dimensions
	width        int
	height       int
	sidebarWidth int
}

// New creates the chat screen over an opened store.
func New(store *session.Store, completer session.Completer, opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(config.DefaultTheme)
	}
	keys := DefaultKeyMap()
	if opts.Keys != nil {
		keys = *opts.Keys
	}
	sidebarWidth := opts.SidebarWidth
	if sidebarWidth <= 0 {
		sidebarWidth = config.DefaultSidebarWidth
	}

	m := Model{
		store:          store,
		completer:      completer,
		theme:          theme,
		keys:           keys,
		sidebar:        components.NewSidebar(theme),
		transcript:     components.NewTranscript(theme, opts.Markdown),
		composer:       components.NewComposer(theme),
		toasts:         components.NewToastManager(),
		cancelMgr:      newCancelManager(),
		modelName:      opts.ModelName,
		startupWarning: opts.StartupWarning,
		exportDir:      opts.ExportDir,
		sidebarWidth:   sidebarWidth,
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.startupWarning != "" {
		text := m.startupWarning
		cmds = append(cmds, func() tea.Msg { return StartupWarningMsg{Text: text} })
	}
	return tea.Batch(cmds...)
}

// Pending reports whether a completion request is in flight.
func (m Model) Pending() bool { return m.pending }

// Toasts returns the visible toast messages, oldest first.
func (m Model) Toasts() []string {
	toasts := m.toasts.Toasts()
	out := make([]string, len(toasts))
	for i, t := range toasts {
		out[i] = t.Message
	}
	return out
}

// refresh rebuilds the sidebar and transcript from the store.
func (m *Model) refresh() {
	m.sidebar.SetConversations(m.store.Conversations(), m.store.Selected())
	m.transcript.SetConversation(m.store.SelectedConversation())
}

// setFocus moves keyboard focus and returns the composer's blink command.
func (m *Model) setFocus(area focusArea) tea.Cmd {
	m.focus = area
	if area == focusSidebar {
		m.composer.Blur()
		m.sidebar.Focus()
		return nil
	}
	m.sidebar.Blur()
	return m.composer.Focus()
}
