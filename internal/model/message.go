// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// UnmarshalText rejects unknown roles.
func (r *Role) UnmarshalText(text []byte) error {
	role := Role(text)
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", string(text))
	}
	*r = role
	return nil
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// TimeLayout is the wall-clock format stored with each message.
const TimeLayout = "15:04"

// Message represents a single message in a conversation.
// Messages are immutable once appended.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
	Time string `json:"time"`
}

// NewMessage creates a message stamped with the hour and minute of now.
func NewMessage(role Role, text string, now time.Time) Message {
	return Message{
		Role: role,
		Text: text,
		Time: now.Format(TimeLayout),
	}
}

// IsUser returns true if this is a user message.
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// IsAssistant returns true if this is an assistant message.
func (m Message) IsAssistant() bool {
	return m.Role == RoleAssistant
}
