// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"

	"github.com/jeranaias/rigchat/internal/util"
)

// DefaultTitle names a conversation created without an explicit title.
const DefaultTitle = "New Chat"

// TitleMaxRunes is how many characters of the first message become a title.
const TitleMaxRunes = 30

// TitleFromText derives a conversation title from message text: the first
// TitleMaxRunes characters, followed by "..." when the text was longer.
// The cut is made on the text as sent, one code point per character.
func TitleFromText(text string) string {
	head, cut := util.CutRunes(text, TitleMaxRunes)
	if cut {
		return head + util.Ellipsis
	}
	return head
}

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is a titled, ordered transcript.
type Conversation struct {
	Title    string    `json:"title"`
	Messages []Message `json:"messages"`
}

// NewConversation creates an empty conversation. A blank title becomes
// DefaultTitle.
func NewConversation(title string) *Conversation {
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}
	return &Conversation{
		Title:    title,
		Messages: make([]Message, 0),
	}
}

// Append adds a message to the end of the transcript.
func (c *Conversation) Append(msg Message) {
	c.Messages = append(c.Messages, msg)
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.Messages)
}

// IsEmpty returns true if the conversation has no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// LastMessage returns the most recent message, or false if there is none.
func (c *Conversation) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// RetitleFromFirstMessage replaces the default title with one derived from
// the first message. It only applies while the conversation holds exactly
// one message and still carries DefaultTitle; it reports whether the title
// changed.
func (c *Conversation) RetitleFromFirstMessage() bool {
	if c.Title != DefaultTitle || len(c.Messages) != 1 {
		return false
	}
	c.Title = TitleFromText(c.Messages[0].Text)
	return true
}

// =============================================================================
// COLLECTION TYPE
// =============================================================================

// Collection is the ordered list of conversations, in insertion order.
type Collection []*Conversation

// Valid reports whether index addresses a conversation in c.
func (c Collection) Valid(index int) bool {
	return index >= 0 && index < len(c)
}

// IndexOf returns the position of conv in c, or -1 if it is not present.
// Conversations are compared by identity.
func (c Collection) IndexOf(conv *Conversation) int {
	for i, candidate := range c {
		if candidate == conv {
			return i
		}
	}
	return -1
}
