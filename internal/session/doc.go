// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the in-memory chat history and the current selection.
//
// Store is the single source of truth the UI renders from. Every mutation
// goes through one Store method and is persisted before the method returns,
// so the history file always matches what is on screen.
//
// # Key Types
//
//   - Store: Conversation collection plus selected index
//   - Persister: Load/Save boundary, satisfied by *storage.HistoryFile
//   - Completer: Chat-completion boundary, satisfied by *cloud.Client
//
// # Usage
//
//	store := session.NewStore(storage.NewHistoryFile(path))
//	if err := store.Open(); err != nil {
//	    // malformed history: warn once, continue with an empty store
//	}
//
//	conv, err := store.AppendUserMessage("Hello there")
//	reply := session.RequestCompletion(ctx, client, store.Transcript(conv))
//	err = store.AppendReply(conv, reply)
//
// # Selection
//
// Selected() is NoSelection or a valid index, for any sequence of calls.
// Out-of-range selections are rejected with ErrIndexOutOfRange and leave
// the state unchanged.
package session
