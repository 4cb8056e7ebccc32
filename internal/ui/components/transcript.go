// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/session"
	"github.com/jeranaias/rigchat/internal/ui/styles"
	"github.com/jeranaias/rigchat/internal/util"
)

// bubbleChrome is the width a bubble's border and padding take.
const bubbleChrome = 4

// =============================================================================
// MESSAGE RENDERING
// =============================================================================

// MessageRenderer renders single messages as bubbles. Assistant text is
// rendered as Markdown when a glamour renderer is available.
type MessageRenderer struct {
	theme    *styles.Theme
	markdown bool
	glamour  *glamour.TermRenderer
	wrapAt   int
}

// NewMessageRenderer creates a renderer. markdown enables glamour for
// assistant bubbles.
func NewMessageRenderer(theme *styles.Theme, markdown bool) *MessageRenderer {
	return &MessageRenderer{theme: theme, markdown: markdown}
}

// SetMarkdown toggles Markdown rendering.
func (r *MessageRenderer) SetMarkdown(enabled bool) {
	r.markdown = enabled
	r.glamour = nil
}

// Render renders msg as a bubble aligned inside a pane of paneWidth cells:
// user messages right, assistant messages left.
func (r *MessageRenderer) Render(msg model.Message, paneWidth int) string {
	inner := max(styles.MaxBubbleWidth(paneWidth)-bubbleChrome, 8)

	var style lipgloss.Style
	var body string
	align := lipgloss.Left

	switch {
	case msg.IsUser():
		style = r.theme.UserBubble
		body = wrapPlain(msg.Text, inner)
		align = lipgloss.Right
	case session.IsErrorReply(msg.Text):
		style = r.theme.ErrorBubble
		body = wrapPlain(msg.Text, inner)
	default:
		style = r.theme.AssistantBubble
		body = r.renderAssistant(msg.Text, inner)
	}

	stamp := r.theme.BubbleTime.Render(msg.Time)
	content := lipgloss.JoinVertical(align, body, stamp)
	bubble := style.Render(content)

	return lipgloss.PlaceHorizontal(paneWidth, align, bubble)
}

func (r *MessageRenderer) renderAssistant(text string, width int) string {
	if !r.markdown {
		return wrapPlain(text, width)
	}

	if r.glamour == nil || r.wrapAt != width {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(r.theme.GlamourStyle()),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			log.Warn().Err(err).Msg("markdown renderer unavailable, using plain text")
			return wrapPlain(text, width)
		}
		r.glamour, r.wrapAt = renderer, width
	}

	out, err := r.glamour.Render(text)
	if err != nil {
		log.Debug().Err(err).Msg("markdown render failed, using plain text")
		return wrapPlain(text, width)
	}
	return strings.Trim(out, "\n")
}

// wrapPlain word-wraps text to width, hard-breaking words that are longer
// than a line.
func wrapPlain(text string, width int) string {
	return wrap.String(wordwrap.String(text, width), width)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript shows every message of one conversation in a scrollable pane.
type Transcript struct {
	viewport viewport.Model
	renderer *MessageRenderer
	theme    *styles.Theme

	conv   *model.Conversation
	width  int
	height int
}

// NewTranscript creates an empty transcript.
func NewTranscript(theme *styles.Theme, markdown bool) Transcript {
	vp := viewport.New(0, 0)
	vp.MouseWheelEnabled = true
	return Transcript{
		viewport: vp,
		renderer: NewMessageRenderer(theme, markdown),
		theme:    theme,
	}
}

// SetSize resizes the pane and re-renders.
func (t *Transcript) SetSize(width, height int) {
	t.width, t.height = width, height
	t.viewport.Width = width
	t.viewport.Height = max(height-2, 1) // header and its rule
	t.Refresh()
}

// SetConversation shows conv (nil for the empty state) scrolled to the end.
func (t *Transcript) SetConversation(conv *model.Conversation) {
	t.conv = conv
	t.Refresh()
}

// SetMarkdown toggles Markdown rendering for assistant messages.
func (t *Transcript) SetMarkdown(enabled bool) {
	t.renderer.SetMarkdown(enabled)
	t.Refresh()
}

// Conversation returns the conversation on display.
func (t *Transcript) Conversation() *model.Conversation {
	return t.conv
}

// Refresh re-renders the current conversation and scrolls to the bottom.
func (t *Transcript) Refresh() {
	t.viewport.SetContent(t.render())
	t.viewport.GotoBottom()
}

func (t *Transcript) render() string {
	if t.width <= 0 {
		return ""
	}
	if t.conv == nil {
		return t.theme.EmptyState.Render("No chat selected. Type a message to start one, or press ctrl+n.")
	}
	if t.conv.IsEmpty() {
		return t.theme.EmptyState.Render("No messages yet. Say hello!")
	}

	parts := make([]string, 0, len(t.conv.Messages))
	for _, msg := range t.conv.Messages {
		parts = append(parts, t.renderer.Render(msg, t.width))
	}
	return strings.Join(parts, "\n")
}

// AtBottom reports whether the last line is visible.
func (t *Transcript) AtBottom() bool {
	return t.viewport.AtBottom()
}

// Update scrolls the viewport.
func (t Transcript) Update(msg tea.Msg) (Transcript, tea.Cmd) {
	var cmd tea.Cmd
	t.viewport, cmd = t.viewport.Update(msg)
	return t, cmd
}

// View renders the header and the scrolled messages.
func (t Transcript) View() string {
	title := "rigchat"
	if t.conv != nil {
		title = t.conv.Title
	}
	title = util.TruncateWidth(util.SingleLine(title), max(t.width, 1))
	header := t.theme.TranscriptHeader.Width(max(t.width, 1)).Render(title)
	return lipgloss.JoinVertical(lipgloss.Left, header, t.viewport.View())
}
