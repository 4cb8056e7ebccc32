// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/ui/styles"
)

func testTheme() *styles.Theme {
	return styles.NewTheme("dark")
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// =============================================================================
// TOASTS
// =============================================================================

func TestToastManager_AddAndRemove(t *testing.T) {
	m := NewToastManager()

	cmd := m.Warn("Could not load chat history. Starting a new session.")
	require.NotNil(t, cmd)
	require.Equal(t, 1, m.Len())

	toast := m.Toasts()[0]
	assert.Equal(t, ToastKindWarning, toast.Kind)
	assert.Equal(t, WarningToastDuration, toast.Duration)

	m.Remove(toast.ID)
	assert.Equal(t, 0, m.Len())
}

func TestToastManager_KeepsNewest(t *testing.T) {
	m := NewToastManager()
	for i := 0; i < maxToasts+2; i++ {
		m.Error("e")
	}
	toasts := m.Toasts()
	require.Len(t, toasts, maxToasts)
	assert.Equal(t, maxToasts+2, toasts[len(toasts)-1].ID)
}

func TestToastManager_Prune(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewToastManager()
	m.now = func() time.Time { return now }

	m.Add(ToastKindInfo, "short lived")
	m.Add(ToastKindError, "long lived")

	now = now.Add(InfoToastDuration)
	m.Prune()

	toasts := m.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, "long lived", toasts[0].Message)
}

func TestToastManager_View(t *testing.T) {
	m := NewToastManager()
	assert.Empty(t, m.View(testTheme(), 80))

	m.Warn("No chat selected to delete.")
	assert.Contains(t, m.View(testTheme(), 80), "No chat selected to delete.")
}

// =============================================================================
// SIDEBAR
// =============================================================================

func TestSidebar_SetConversations(t *testing.T) {
	s := NewSidebar(testTheme())
	s.SetSize(30, 20)

	assert.Equal(t, -1, s.Cursor())
	assert.Contains(t, s.View(), "No chats yet")

	s.SetConversations(model.Collection{
		model.NewConversation("Alpha"),
		model.NewConversation("Beta"),
		model.NewConversation("Gamma"),
	}, 1)

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 1, s.Selected())
	assert.Equal(t, 1, s.Cursor())

	view := s.View()
	assert.Contains(t, view, "Alpha")
	assert.Contains(t, view, "Beta")
	assert.Contains(t, view, "Gamma")
	assert.Contains(t, view, "Chats (3)")
}

func TestSidebar_CursorMovesWithoutChangingSelection(t *testing.T) {
	s := NewSidebar(testTheme())
	s.SetSize(30, 20)
	s.Focus()
	s.SetConversations(model.Collection{
		model.NewConversation("Alpha"),
		model.NewConversation("Beta"),
	}, 0)

	s, _ = s.Update(tea.KeyMsg{Type: tea.KeyDown})

	assert.Equal(t, 1, s.Cursor())
	assert.Equal(t, 0, s.Selected())
	assert.True(t, s.Focused())
}

func TestSidebar_LongTitleFitsWidth(t *testing.T) {
	s := NewSidebar(testTheme())
	s.SetSize(20, 10)
	s.SetConversations(model.Collection{
		model.NewConversation(strings.Repeat("very long title ", 10)),
	}, 0)

	for _, line := range strings.Split(s.View(), "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 20)
	}
}

// =============================================================================
// MESSAGES AND TRANSCRIPT
// =============================================================================

func TestMessageRenderer_Alignment(t *testing.T) {
	r := NewMessageRenderer(testTheme(), false)

	user := r.Render(model.Message{Role: model.RoleUser, Text: "hi", Time: "09:15"}, 80)
	assistant := r.Render(model.Message{Role: model.RoleAssistant, Text: "hello", Time: "09:16"}, 80)

	assert.Contains(t, user, "hi")
	assert.Contains(t, user, "09:15")
	assert.Contains(t, assistant, "hello")
	assert.Contains(t, assistant, "09:16")

	firstUserLine := strings.Split(user, "\n")[0]
	firstAssistantLine := strings.Split(assistant, "\n")[0]
	assert.True(t, strings.HasPrefix(firstUserLine, "    "), "user bubble should be right-aligned")
	assert.False(t, strings.HasPrefix(firstAssistantLine, " "), "assistant bubble should be left-aligned")
}

func TestMessageRenderer_WrapsToPane(t *testing.T) {
	r := NewMessageRenderer(testTheme(), false)
	long := strings.Repeat("word ", 60) + strings.Repeat("x", 120)

	out := r.Render(model.Message{Role: model.RoleUser, Text: long, Time: "10:00"}, 60)

	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 60)
	}
}

func TestMessageRenderer_Markdown(t *testing.T) {
	r := NewMessageRenderer(testTheme(), true)

	out := r.Render(model.Message{Role: model.RoleAssistant, Text: "# Title\n\nSome **bold** text", Time: "10:00"}, 80)

	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "bold")
	assert.NotContains(t, out, "**")
}

func TestTranscript_EmptyStates(t *testing.T) {
	tr := NewTranscript(testTheme(), false)
	tr.SetSize(80, 20)

	tr.SetConversation(nil)
	assert.Contains(t, tr.View(), "No chat selected")

	tr.SetConversation(model.NewConversation(""))
	assert.Contains(t, tr.View(), "No messages yet")
	assert.Contains(t, tr.View(), model.DefaultTitle)
}

func TestTranscript_ScrollsToLatest(t *testing.T) {
	tr := NewTranscript(testTheme(), false)
	tr.SetSize(80, 10)

	conv := model.NewConversation("Long")
	for i := 0; i < 30; i++ {
		conv.Append(model.Message{Role: model.RoleUser, Text: "filler", Time: "10:00"})
	}
	conv.Append(model.Message{Role: model.RoleAssistant, Text: "the latest reply", Time: "10:01"})

	tr.SetConversation(conv)

	assert.True(t, tr.AtBottom())
	assert.Contains(t, tr.View(), "the latest reply")
	assert.Same(t, conv, tr.Conversation())
}

func TestTranscript_ErrorReplyRendered(t *testing.T) {
	tr := NewTranscript(testTheme(), true)
	tr.SetSize(80, 10)
	conv := model.NewConversation("x")
	conv.Append(model.Message{Role: model.RoleAssistant, Text: "Error: request timed out", Time: "10:01"})

	tr.SetConversation(conv)

	assert.Contains(t, tr.View(), "Error: request timed out")
}

// =============================================================================
// COMPOSER
// =============================================================================

func TestComposer_Take(t *testing.T) {
	c := NewComposer(testTheme())
	c.SetWidth(60)

	c, _ = c.Update(keyRunes("hello"))
	assert.Equal(t, "hello", c.Value())

	assert.Equal(t, "hello", c.Take())
	assert.Empty(t, c.Value())
}

func TestComposer_LongPasteKept(t *testing.T) {
	c := NewComposer(testTheme())
	c.SetWidth(60)
	long := strings.Repeat("x", 9000) + "end"

	c, _ = c.Update(keyRunes(long))

	assert.Equal(t, long, c.Take())
}

func TestTitlePrompt_LongTitleKept(t *testing.T) {
	d := NewTitlePrompt(testTheme())
	long := strings.Repeat("t", 300)

	d, _, _ = d.Update(keyRunes(long))

	assert.Equal(t, long, d.Value())
}

func TestComposer_Pending(t *testing.T) {
	c := NewComposer(testTheme())
	c.SetWidth(60)

	assert.NotNil(t, c.SetPending(true))
	assert.True(t, c.Pending())
	assert.Equal(t, 4, c.Height())
	assert.Contains(t, c.View(), "Waiting for reply")

	assert.Nil(t, c.SetPending(false))
	assert.NotContains(t, c.View(), "Waiting for reply")
}

// =============================================================================
// DIALOGS
// =============================================================================

func TestTitlePrompt(t *testing.T) {
	d := NewTitlePrompt(testTheme())
	require.True(t, d.Active())

	d, outcome, _ := d.Update(keyRunes("Work"))
	assert.Equal(t, DialogOpen, outcome)

	d, outcome, _ = d.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, DialogConfirmed, outcome)
	assert.Equal(t, "Work", d.Value())
	assert.Contains(t, d.View(80, 24), "Enter chat title:")
}

func TestTitlePrompt_Escape(t *testing.T) {
	d := NewTitlePrompt(testTheme())

	_, outcome, _ := d.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, DialogCancelled, outcome)
}

func TestDeleteConfirm(t *testing.T) {
	tests := []struct {
		key  tea.KeyMsg
		want DialogOutcome
	}{
		{keyRunes("y"), DialogConfirmed},
		{tea.KeyMsg{Type: tea.KeyEnter}, DialogConfirmed},
		{keyRunes("n"), DialogCancelled},
		{tea.KeyMsg{Type: tea.KeyEsc}, DialogCancelled},
		{keyRunes("x"), DialogOpen},
	}

	for _, tt := range tests {
		d := NewDeleteConfirm(testTheme(), 2, "Trip planning")
		_, outcome, _ := d.Update(tt.key)
		assert.Equal(t, tt.want, outcome, "key %q", tt.key.String())
	}

	d := NewDeleteConfirm(testTheme(), 2, "Trip planning")
	assert.Equal(t, 2, d.Target)
	assert.Contains(t, d.View(80, 24), "Are you sure you want to delete 'Trip planning'?")
}

// =============================================================================
// STATUS BAR
// =============================================================================

func TestRenderStatusBar(t *testing.T) {
	out := RenderStatusBar(testTheme(), StatusInfo{
		Model:         "gpt-4o-mini",
		Conversations: 1,
		Pending:       true,
		Shortcuts: []key.Binding{
			key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new")),
		},
	}, 100)

	assert.Contains(t, out, "gpt-4o-mini")
	assert.Contains(t, out, "1 chat ")
	assert.Contains(t, out, "waiting")
	assert.Contains(t, out, "ctrl+n")
	assert.Equal(t, 100, lipgloss.Width(out))
}
