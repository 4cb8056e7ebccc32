// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides chat history persistence for rigchat.
//
// The whole collection of conversations lives in a single JSON document
// that is read once at startup and rewritten after every mutation.
//
// # Key Types
//
//   - HistoryFile: Load/Save of the collection at a fixed path
//   - MalformedError: returned by Load when the document cannot be used
//
// # Usage
//
//	hf := storage.NewHistoryFile(path)
//	conversations, err := hf.Load()
//	if errors.Is(err, storage.ErrMalformedHistory) {
//	    // warn the user once; conversations is empty
//	}
//	err = hf.Save(conversations)
//
// # File Format
//
// A two-space indented JSON array:
//
//	[
//	  {
//	    "title": "New Chat",
//	    "messages": [
//	      { "role": "user", "text": "hi", "time": "09:15" }
//	    ]
//	  }
//	]
package storage
