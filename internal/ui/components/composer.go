// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rigchat/internal/ui/styles"
)

// Composer is the message input line. While a request is pending it shows
// a spinner above the input.
type Composer struct {
	input   textinput.Model
	spinner spinner.Model
	theme   *styles.Theme

	pending bool
	width   int
}

// NewComposer creates a focused composer.
func NewComposer(theme *styles.Theme) Composer {
	ti := textinput.New()
	ti.Placeholder = "Type a message and press Enter..."
	ti.Prompt = "> "
	ti.PromptStyle = theme.InputPrompt
	ti.CharLimit = 0 // unlimited
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	return Composer{
		input:   ti,
		spinner: sp,
		theme:   theme,
	}
}

// SetWidth sets the outer width including the border.
func (c *Composer) SetWidth(width int) {
	c.width = width
	// border 2, padding 2, prompt 2, cursor 1
	c.input.Width = max(width-7, 1)
}

// Height returns the rendered height for layout.
func (c *Composer) Height() int {
	if c.pending {
		return 4
	}
	return 3
}

// Value returns the current input text.
func (c *Composer) Value() string { return c.input.Value() }

// Take returns the input text and clears the input.
func (c *Composer) Take() string {
	v := c.input.Value()
	c.input.Reset()
	return v
}

// Focus gives the composer keyboard focus.
func (c *Composer) Focus() tea.Cmd { return c.input.Focus() }

// Blur removes keyboard focus.
func (c *Composer) Blur() { c.input.Blur() }

// Focused reports whether the composer has focus.
func (c *Composer) Focused() bool { return c.input.Focused() }

// SetPending switches the waiting indicator and returns the spinner's
// first tick when it starts.
func (c *Composer) SetPending(pending bool) tea.Cmd {
	c.pending = pending
	if pending {
		return c.spinner.Tick
	}
	return nil
}

// Pending reports whether a request is in flight.
func (c *Composer) Pending() bool { return c.pending }

// Update forwards input and spinner messages.
func (c Composer) Update(msg tea.Msg) (Composer, tea.Cmd) {
	var cmds []tea.Cmd

	if tick, ok := msg.(spinner.TickMsg); ok {
		if !c.pending {
			return c, nil
		}
		var cmd tea.Cmd
		c.spinner, cmd = c.spinner.Update(tick)
		return c, cmd
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	cmds = append(cmds, cmd)
	return c, tea.Batch(cmds...)
}

// View renders the composer.
func (c Composer) View() string {
	style := c.theme.InputContainer
	if c.input.Focused() {
		style = c.theme.InputContainerFocused
	}
	box := style.Width(max(c.width-2, 1)).Render(c.input.View())

	if !c.pending {
		return box
	}
	waiting := c.spinner.View() + " " + c.theme.ThinkingText.Render("Waiting for reply... (esc to cancel)")
	return lipgloss.JoinVertical(lipgloss.Left, waiting, box)
}
