// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat is the rigchat screen: a conversation sidebar, the transcript of
the selected conversation, a composer and a status bar.

# Key Components

## Model (model.go)

Model is the Bubble Tea model. It owns the widgets from the components
package and a pointer to the session.Store, which is the only state that
outlives a frame.

## Actions (messages.go)

Every user action is a typed message handled by exactly one Store method:

  - NewConversationAction  -> Store.CreateConversation
  - SelectConversationAction -> Store.SelectConversation
  - DeleteConversationAction -> Store.DeleteConversation
  - SendMessageAction -> Store.AppendUserMessage

Widgets never touch the store. After each action the sidebar and transcript
are rebuilt from the store.

## Update Loop (update.go)

Key handling, dialogs, the completion round trip and config reloads. A
completion runs in a tea.Cmd with a copy of the history and returns a
CompletionResultMsg, which appends the reply to the conversation it was
requested for. Only one request is in flight; esc cancels it.

## View (view.go)

Layout and the toast overlay.

# Usage

	store := session.NewStore(storage.NewHistoryFile(path))
	_ = store.Open()
	m := chat.New(store, client, chat.Options{Theme: styles.NewTheme("auto")})
	p := tea.NewProgram(m, tea.WithAltScreen())
*/
package chat
