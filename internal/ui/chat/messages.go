// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/model"
)

// =============================================================================
// ACTIONS
// =============================================================================

// NewConversationAction creates and selects a conversation. An empty title
// becomes the default title.
type NewConversationAction struct {
	Title string
}

// SelectConversationAction selects the conversation at Index.
type SelectConversationAction struct {
	Index int
}

// DeleteConversationAction deletes the conversation at Index. Index is
// session.NoSelection when nothing was selected.
type DeleteConversationAction struct {
	Index int
}

// SendMessageAction appends Text as a user message and requests a reply.
type SendMessageAction struct {
	Text string
}

// =============================================================================
// RESULTS AND NOTIFICATIONS
// =============================================================================

// CompletionResultMsg carries the reply for Conv. Reply is the text to
// append, which is an "Error: ..." line when the request failed.
type CompletionResultMsg struct {
	Conv  *model.Conversation
	Reply string
}

// ConfigReloadedMsg is posted when the config file changed on disk.
type ConfigReloadedMsg struct {
	Cfg *config.Config
	Err error
}

// ExportResultMsg reports a finished conversation export.
type ExportResultMsg struct {
	Path string
	Err  error
}

// StartupWarningMsg shows a warning raised before the UI started.
type StartupWarningMsg struct {
	Text string
}
