// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/rigchat/internal/cloud"
	"github.com/jeranaias/rigchat/internal/export"
	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/session"
	"github.com/jeranaias/rigchat/internal/ui/components"
)

// User-facing notices.
const (
	noticeNothingToDelete = "No chat selected to delete."
	noticeNothingToExport = "No messages to export."
	noticeChatNotFound    = "That chat no longer exists."
	noticeBusy            = "Still waiting for a reply. Press esc to cancel it."
	noticeSaveFailed      = "Could not save chat history. Changes are kept in memory."
	noticeConfigReloaded  = "Configuration reloaded."
)

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.composer, cmd = m.composer.Update(msg)
		return m, cmd

	case components.ToastExpiredMsg:
		m.toasts.Remove(msg.ID)
		return m, nil

	case ExportResultMsg:
		if msg.Err != nil {
			log.Error().Err(msg.Err).Msg("export failed")
			return m, m.toasts.Error(fmt.Sprintf("Export failed: %v", msg.Err))
		}
		log.Info().Str("path", msg.Path).Msg("conversation exported")
		return m, m.toasts.Add(components.ToastKindInfo, "Exported to "+msg.Path)

	case StartupWarningMsg:
		return m, m.toasts.Warn(msg.Text)

	case NewConversationAction, SelectConversationAction, DeleteConversationAction, SendMessageAction:
		cmd := m.dispatch(msg)
		return m, cmd

	case CompletionResultMsg:
		cmd := m.handleCompletion(msg)
		return m, cmd

	case ConfigReloadedMsg:
		cmd := m.handleConfigReload(msg)
		return m, cmd
	}

	// Cursor blink and anything else the composer understands.
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		cmd := m.quit()
		return m, cmd
	}

	if m.dialog.Active() {
		cmd := m.handleDialogKey(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.NewChat):
		m.composer.Blur()
		m.dialog = components.NewTitlePrompt(m.theme)
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		selected := m.store.SelectedConversation()
		if selected == nil {
			// Nothing to confirm; the store reports the empty selection.
			cmd := m.dispatch(DeleteConversationAction{Index: session.NoSelection})
			return m, cmd
		}
		m.composer.Blur()
		m.dialog = components.NewDeleteConfirm(m.theme, m.store.Selected(), selected.Title)
		return m, nil

	case key.Matches(msg, m.keys.Export):
		cmd := m.exportSelected(export.ExportMarkdown)
		return m, cmd

	case key.Matches(msg, m.keys.ExportJSON):
		cmd := m.exportSelected(export.ExportJSON)
		return m, cmd

	case key.Matches(msg, m.keys.SwitchFocus):
		next := focusSidebar
		if m.focus == focusSidebar {
			next = focusComposer
		}
		cmd := m.setFocus(next)
		return m, cmd

	case key.Matches(msg, m.keys.PageUp, m.keys.PageDown):
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		return m, cmd

	case key.Matches(msg, m.keys.Cancel):
		if m.pending && m.cancelMgr.cancel() {
			log.Debug().Msg("completion cancelled by user")
		}
		return m, nil
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleComposerKey(msg)
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up, m.keys.Down):
		var cmd tea.Cmd
		m.sidebar, cmd = m.sidebar.Update(msg)
		return m, cmd

	case key.Matches(msg, m.keys.Select):
		index := m.sidebar.Cursor()
		if index < 0 {
			return m, nil
		}
		cmd := m.dispatch(SelectConversationAction{Index: index})
		focusCmd := m.setFocus(focusComposer)
		return m, tea.Batch(cmd, focusCmd)
	}
	return m, nil
}

func (m Model) handleComposerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Send) {
		if m.pending {
			return m, m.toasts.Add(components.ToastKindInfo, noticeBusy)
		}
		text := m.composer.Take()
		cmd := m.dispatch(SendMessageAction{Text: text})
		return m, cmd
	}

	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

// handleDialogKey routes keys to the open dialog and applies its outcome.
func (m *Model) handleDialogKey(msg tea.KeyMsg) tea.Cmd {
	dialog, outcome, cmd := m.dialog.Update(msg)
	m.dialog = dialog

	switch outcome {
	case components.DialogConfirmed:
		m.dialog = components.Dialog{}
		var action tea.Msg
		if dialog.Kind == components.DialogNewConversation {
			action = NewConversationAction{Title: dialog.Value()}
		} else {
			action = DeleteConversationAction{Index: dialog.Target}
		}
		return tea.Batch(m.dispatch(action), m.setFocus(focusComposer))

	case components.DialogCancelled:
		m.dialog = components.Dialog{}
		if dialog.Kind == components.DialogNewConversation {
			// Skipping the title still creates the conversation.
			return tea.Batch(m.dispatch(NewConversationAction{}), m.setFocus(focusComposer))
		}
		return m.setFocus(m.focus)
	}
	return cmd
}

// =============================================================================
// ACTIONS
// =============================================================================

// dispatch applies one action through the store and re-renders.
func (m *Model) dispatch(action tea.Msg) tea.Cmd {
	var err error
	var cmds []tea.Cmd

	switch a := action.(type) {
	case NewConversationAction:
		_, err = m.store.CreateConversation(a.Title)

	case SelectConversationAction:
		err = m.store.SelectConversation(a.Index)

	case DeleteConversationAction:
		err = m.store.DeleteConversation(a.Index)

	case SendMessageAction:
		if m.pending {
			return m.toasts.Add(components.ToastKindInfo, noticeBusy)
		}
		var cmd tea.Cmd
		cmd, err = m.send(a.Text)
		cmds = append(cmds, cmd)
	}

	m.refresh()
	cmds = append(cmds, m.notify(err))
	return tea.Batch(cmds...)
}

// send appends text and starts the completion request for its conversation.
func (m *Model) send(text string) (tea.Cmd, error) {
	conv, err := m.store.AppendUserMessage(text)
	if conv == nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelMgr.set(cancel)

	history := m.store.Transcript(conv)
	completer := m.completer
	request := func() tea.Msg {
		return CompletionResultMsg{
			Conv:  conv,
			Reply: session.RequestCompletion(ctx, completer, history),
		}
	}

	m.pending = true
	spin := m.composer.SetPending(true)
	m.layout()
	return tea.Batch(request, spin), err
}

// handleCompletion appends a reply to the conversation it was requested for.
func (m *Model) handleCompletion(msg CompletionResultMsg) tea.Cmd {
	m.cancelMgr.cancel()
	m.pending = false
	m.composer.SetPending(false)
	m.layout()

	if session.IsErrorReply(msg.Reply) {
		log.Warn().Str("reply", msg.Reply).Msg("completion failed")
	}

	err := m.store.AppendReply(msg.Conv, msg.Reply)
	m.refresh()
	return m.notify(err)
}

// handleConfigReload applies model, timeout and markdown changes.
func (m *Model) handleConfigReload(msg ConfigReloadedMsg) tea.Cmd {
	if msg.Err != nil {
		log.Warn().Err(msg.Err).Msg("config reload failed")
		return m.toasts.Warn(fmt.Sprintf("Config not reloaded: %v", msg.Err))
	}
	if msg.Cfg == nil {
		return nil
	}

	if client, ok := m.completer.(*cloud.Client); ok {
		client.SetModel(msg.Cfg.Completion.Model)
		client.WithTimeout(msg.Cfg.Timeout())
		m.modelName = client.Model()
	} else if msg.Cfg.Completion.Model != "" {
		m.modelName = msg.Cfg.Completion.Model
	}
	m.transcript.SetMarkdown(msg.Cfg.UI.Markdown)

	log.Info().Str("model", m.modelName).Msg("config reloaded")
	return m.toasts.Add(components.ToastKindInfo, noticeConfigReloaded)
}

// exportSelected writes the selected conversation as Markdown off the UI
// goroutine.
// exportFunc writes a conversation in one format and returns the file path.
type exportFunc func(*model.Conversation, *export.Options) (string, error)

func (m *Model) exportSelected(write exportFunc) tea.Cmd {
	conv := m.store.SelectedConversation()
	if conv == nil || conv.IsEmpty() {
		return m.toasts.Warn(noticeNothingToExport)
	}

	snapshot := &model.Conversation{Title: conv.Title, Messages: m.store.Transcript(conv)}
	opts := export.DefaultOptions()
	if m.exportDir != "" {
		opts.OutputDir = m.exportDir
	}
	return func() tea.Msg {
		path, err := write(snapshot, opts)
		return ExportResultMsg{Path: path, Err: err}
	}
}

// notify turns a store error into a toast.
func (m *Model) notify(err error) tea.Cmd {
	switch {
	case err == nil, errors.Is(err, session.ErrEmptyMessage):
		return nil
	case errors.Is(err, session.ErrNoSelection):
		return m.toasts.Warn(noticeNothingToDelete)
	case errors.Is(err, session.ErrIndexOutOfRange):
		return m.toasts.Warn(noticeChatNotFound)
	case errors.Is(err, session.ErrConversationGone):
		// The reply's conversation was deleted while waiting.
		return nil
	case errors.Is(err, session.ErrPersist):
		return m.toasts.Error(noticeSaveFailed)
	default:
		log.Error().Err(err).Msg("unexpected store error")
		return m.toasts.Error(err.Error())
	}
}

// quit cancels any request, writes the history and exits.
func (m *Model) quit() tea.Cmd {
	m.cancelMgr.cancel()
	if err := m.store.Flush(); err != nil {
		log.Error().Err(err).Msg("final save failed")
	}
	return tea.Quit
}
