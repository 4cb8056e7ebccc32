// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/util"
)

// DefaultFileName is the history document name used when no path is configured.
const DefaultFileName = "chat_history.json"

// SECURITY: transcripts are private to the owning user.
const historyFilePerm os.FileMode = 0600

// ErrMalformedHistory is matched by errors.Is for any Load failure other
// than a missing file.
var ErrMalformedHistory = errors.New("could not load chat history")

// MalformedError describes why the history document was discarded.
type MalformedError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrMalformedHistory, e.Path, e.Err)
}

// Unwrap returns the underlying read or decode error.
func (e *MalformedError) Unwrap() error {
	return e.Err
}

// Is reports ErrMalformedHistory as a match.
func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformedHistory
}

// =============================================================================
// HISTORY FILE
// =============================================================================

// HistoryFile reads and writes the conversation collection at Path.
type HistoryFile struct {
	Path string
}

// NewHistoryFile creates a history file handle. Nothing is touched on disk.
func NewHistoryFile(path string) *HistoryFile {
	if path == "" {
		path = DefaultFileName
	}
	return &HistoryFile{Path: path}
}

// Load reads the collection.
//
// A missing file is a first run and yields an empty collection with no
// error. Any other failure yields an empty collection and a *MalformedError;
// nothing from a malformed document is kept.
func (h *HistoryFile) Load() (model.Collection, error) {
	data, err := os.ReadFile(h.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Collection{}, nil
		}
		return model.Collection{}, &MalformedError{Path: h.Path, Err: err}
	}

	collection, err := decode(data)
	if err != nil {
		return model.Collection{}, &MalformedError{Path: h.Path, Err: err}
	}
	return collection, nil
}

// Save replaces the document with the full collection.
func (h *HistoryFile) Save(collection model.Collection) error {
	data, err := encode(collection)
	if err != nil {
		return errors.Wrap(err, "failed to encode chat history")
	}

	// RELIABILITY: atomic replace so a crash mid-write keeps the old history
	if err := util.AtomicWriteFile(h.Path, data, historyFilePerm); err != nil {
		return errors.Wrapf(err, "failed to write chat history to %s", h.Path)
	}
	return nil
}

// =============================================================================
// ENCODING
// =============================================================================

func decode(data []byte) (model.Collection, error) {
	var collection model.Collection
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&collection); err != nil {
		return nil, errors.Wrap(err, "invalid JSON")
	}
	if dec.More() {
		return nil, errors.New("trailing data after history array")
	}

	if collection == nil {
		collection = model.Collection{}
	}
	for i, conv := range collection {
		if conv == nil {
			return nil, errors.Errorf("conversation %d is null", i)
		}
		if conv.Messages == nil {
			conv.Messages = make([]model.Message, 0)
		}
	}
	return collection, nil
}

func encode(collection model.Collection) ([]byte, error) {
	if collection == nil {
		collection = model.Collection{}
	}
	for _, conv := range collection {
		if conv != nil && conv.Messages == nil {
			conv.Messages = make([]model.Message, 0)
		}
	}

	data, err := json.MarshalIndent(collection, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
