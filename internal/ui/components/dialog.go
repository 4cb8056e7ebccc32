// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/ui/styles"
	"github.com/jeranaias/rigchat/internal/util"
)

// DialogKind identifies which modal is open.
type DialogKind int

const (
	DialogNone DialogKind = iota
	DialogNewConversation
	DialogConfirmDelete
)

// DialogOutcome is the result of feeding a key to a dialog.
type DialogOutcome int

const (
	// DialogOpen means the dialog is still waiting for input.
	DialogOpen DialogOutcome = iota
	// DialogConfirmed means the user accepted.
	DialogConfirmed
	// DialogCancelled means the user dismissed the dialog.
	DialogCancelled
)

// Dialog is a small modal: a title prompt or a yes/no confirmation.
type Dialog struct {
	Kind DialogKind

	// Target is the conversation a delete confirmation refers to.
	Target      int
	TargetTitle string

	input textinput.Model
	theme *styles.Theme
}

// NewTitlePrompt opens the "new conversation" prompt.
func NewTitlePrompt(theme *styles.Theme) Dialog {
	ti := textinput.New()
	ti.Placeholder = model.DefaultTitle
	ti.Prompt = ""
	ti.CharLimit = 0 // unlimited
	ti.Width = 40
	ti.Focus()

	return Dialog{Kind: DialogNewConversation, input: ti, theme: theme, Target: -1}
}

// NewDeleteConfirm opens the delete confirmation for the conversation at index.
func NewDeleteConfirm(theme *styles.Theme, index int, title string) Dialog {
	return Dialog{Kind: DialogConfirmDelete, Target: index, TargetTitle: title, theme: theme}
}

// Active reports whether a dialog is open.
func (d Dialog) Active() bool { return d.Kind != DialogNone }

// Value returns the entered title.
func (d Dialog) Value() string { return d.input.Value() }

// Update feeds a message to the dialog.
func (d Dialog) Update(msg tea.Msg) (Dialog, DialogOutcome, tea.Cmd) {
	keyMsg, isKey := msg.(tea.KeyMsg)

	switch d.Kind {
	case DialogNewConversation:
		if isKey {
			switch keyMsg.Type {
			case tea.KeyEnter:
				return d, DialogConfirmed, nil
			case tea.KeyEsc:
				return d, DialogCancelled, nil
			}
		}
		var cmd tea.Cmd
		d.input, cmd = d.input.Update(msg)
		return d, DialogOpen, cmd

	case DialogConfirmDelete:
		if !isKey {
			return d, DialogOpen, nil
		}
		switch keyMsg.String() {
		case "y", "Y", "enter":
			return d, DialogConfirmed, nil
		case "n", "N", "esc":
			return d, DialogCancelled, nil
		}
	}
	return d, DialogOpen, nil
}

// View renders the dialog box centered in width x height.
func (d Dialog) View(width, height int) string {
	var title, body, hint string

	switch d.Kind {
	case DialogNewConversation:
		title = "New chat"
		body = "Enter chat title:\n\n" + d.input.View()
		hint = "enter create · empty or esc for \"" + model.DefaultTitle + "\""
	case DialogConfirmDelete:
		title = "Delete chat"
		name := util.TruncateRunes(util.SingleLine(d.TargetTitle), 40)
		body = fmt.Sprintf("Are you sure you want to delete %s?", d.theme.DialogDanger.Render("'"+name+"'"))
		hint = "y confirm · n cancel"
	default:
		return ""
	}

	box := d.theme.DialogBox.Render(lipgloss.JoinVertical(lipgloss.Left,
		d.theme.DialogTitle.Render(title),
		d.theme.DialogBody.Render(body),
		d.theme.DialogHint.Render(hint),
	))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
