// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/ui/styles"
	"github.com/jeranaias/rigchat/internal/util"
)

// =============================================================================
// CONVERSATION ITEM
// =============================================================================

// ConversationItem is one sidebar row.
type ConversationItem struct {
	Title    string
	Messages int
}

// FilterValue implements list.Item.
func (i ConversationItem) FilterValue() string { return i.Title }

// =============================================================================
// DELEGATE
// =============================================================================

// sidebarDelegate renders rows; selected mirrors the store's selection,
// which is distinct from the list cursor.
type sidebarDelegate struct {
	theme    *styles.Theme
	selected int
	focused  bool
}

func (d *sidebarDelegate) Height() int                         { return 1 }
func (d *sidebarDelegate) Spacing() int                        { return 0 }
func (d *sidebarDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d *sidebarDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	conv, ok := item.(ConversationItem)
	if !ok {
		return
	}

	marker := "  "
	if d.focused && index == m.Index() {
		marker = d.theme.SidebarItemCursor.Render("›") + " "
	}

	width := m.Width() - 2
	if width < 1 {
		width = 1
	}
	label := util.PadWidth(util.SingleLine(conv.Title), width)

	style := d.theme.SidebarItem
	if index == d.selected {
		style = d.theme.SidebarItemSelected
	}
	fmt.Fprint(w, marker+style.Render(label))
}

// =============================================================================
// SIDEBAR
// =============================================================================

// Sidebar lists conversations in collection order.
type Sidebar struct {
	list     list.Model
	delegate *sidebarDelegate
	theme    *styles.Theme
	width    int
	height   int
}

// NewSidebar creates an empty, unfocused sidebar.
func NewSidebar(theme *styles.Theme) Sidebar {
	delegate := &sidebarDelegate{theme: theme, selected: -1}
	l := list.New(nil, delegate, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(true)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return Sidebar{
		list:     l,
		delegate: delegate,
		theme:    theme,
	}
}

// SetConversations replaces the rows and moves the cursor to selected.
func (s *Sidebar) SetConversations(conversations model.Collection, selected int) {
	items := make([]list.Item, len(conversations))
	for i, conv := range conversations {
		items[i] = ConversationItem{Title: conv.Title, Messages: conv.Len()}
	}
	s.list.SetItems(items)
	s.delegate.selected = selected
	if selected >= 0 && selected < len(items) {
		s.list.Select(selected)
	}
}

// SetSize sets the outer size including the border.
func (s *Sidebar) SetSize(width, height int) {
	s.width, s.height = width, height
	// border 2, padding 2, title line plus margin 2
	cursor := s.list.Index()
	s.list.SetSize(max(width-4, 1), max(height-4, 1))
	if cursor < len(s.list.Items()) {
		s.list.Select(cursor)
	}
}

// Focus gives the sidebar keyboard focus.
func (s *Sidebar) Focus() { s.delegate.focused = true }

// Blur removes keyboard focus.
func (s *Sidebar) Blur() { s.delegate.focused = false }

// Focused reports whether the sidebar has focus.
func (s *Sidebar) Focused() bool { return s.delegate.focused }

// Cursor returns the row under the cursor, or -1 if the list is empty.
func (s *Sidebar) Cursor() int {
	if len(s.list.Items()) == 0 {
		return -1
	}
	return s.list.Index()
}

// Selected returns the highlighted (store-selected) row.
func (s *Sidebar) Selected() int { return s.delegate.selected }

// Len returns the number of rows.
func (s *Sidebar) Len() int { return len(s.list.Items()) }

// Update moves the cursor.
func (s Sidebar) Update(msg tea.Msg) (Sidebar, tea.Cmd) {
	var cmd tea.Cmd
	s.list, cmd = s.list.Update(msg)
	return s, cmd
}

// View renders the sidebar.
func (s Sidebar) View() string {
	style := s.theme.Sidebar
	if s.delegate.focused {
		style = s.theme.SidebarFocused
	}

	title := s.theme.SidebarTitle.Render(fmt.Sprintf("Chats (%d)", len(s.list.Items())))
	body := s.list.View()
	if len(s.list.Items()) == 0 {
		body = s.theme.SidebarEmpty.Render("No chats yet.\nctrl+n to start one.")
	}

	return style.
		Width(max(s.width-2, 1)).
		Height(max(s.height-2, 1)).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, body))
}
