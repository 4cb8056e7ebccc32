// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// These types are the persisted shape of the chat history: a Collection of
// Conversations, each an ordered, append-only list of Messages.
//
// # Key Types
//
//   - Collection: Ordered list of conversations, the unit of persistence
//   - Conversation: A titled, ordered transcript
//   - Message: One utterance with role, text and an "HH:MM" timestamp
//   - Role: Message role enumeration (user, assistant)
//
// # Usage
//
//	conv := model.NewConversation("")           // titled "New Chat"
//	conv.Append(model.NewMessage(model.RoleUser, "Hello!", time.Now()))
//	conv.RetitleFromFirstMessage()              // "Hello!"
package model
