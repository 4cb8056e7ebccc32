// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/rigchat/internal/model"
)

// NoSelection is the selected index when no conversation is active.
const NoSelection = -1

// Error variables for rejected store operations.
var (
	// ErrIndexOutOfRange indicates an index that does not address a conversation.
	ErrIndexOutOfRange = errors.New("conversation index out of range")

	// ErrNoSelection indicates an operation that needs a selected conversation.
	ErrNoSelection = errors.New("no chat selected")

	// ErrEmptyMessage indicates a send with empty or whitespace-only text.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrConversationGone indicates a reply for a conversation deleted while
	// its request was in flight.
	ErrConversationGone = errors.New("conversation no longer exists")

	// ErrPersist wraps failures to write the history. The in-memory state
	// has already been updated when it is returned.
	ErrPersist = errors.New("failed to save chat history")
)

// PersistError carries the cause of a failed save. errors.Is matches it
// against ErrPersist.
type PersistError struct {
	Err error
}

// Error implements the error interface.
func (e *PersistError) Error() string {
	return fmt.Sprintf("%s: %v", ErrPersist, e.Err)
}

// Unwrap returns the persister's error.
func (e *PersistError) Unwrap() error {
	return e.Err
}

// Is reports ErrPersist as a match.
func (e *PersistError) Is(target error) bool {
	return target == ErrPersist
}

// Persister loads and saves the whole collection.
type Persister interface {
	Load() (model.Collection, error)
	Save(model.Collection) error
}

// =============================================================================
// STORE
// =============================================================================

// Store holds the conversation collection and the selected index.
type Store struct {
	mu sync.RWMutex

	persister     Persister
	conversations model.Collection
	selected      int

	now    func() time.Time
	logger zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used to stamp messages.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the logger used for store events.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates an empty store backed by persister. Call Open to load
// the persisted history.
func NewStore(persister Persister, opts ...Option) *Store {
	s := &Store{
		persister:     persister,
		conversations: model.Collection{},
		selected:      NoSelection,
		now:           time.Now,
		logger:        log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open loads the persisted collection and selects the first conversation
// if there is one. A load error is returned as a warning: the store is
// still usable and starts empty.
func (s *Store) Open() error {
	collection, err := s.persister.Load()
	if collection == nil {
		collection = model.Collection{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations = collection
	s.selected = NoSelection
	if len(collection) > 0 {
		s.selected = 0
	}

	if err != nil {
		s.logger.Warn().Err(err).Msg("chat history discarded, starting a new session")
		return err
	}
	s.logger.Info().Int("conversations", len(collection)).Msg("chat history loaded")
	return nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Conversations returns the collection in order. The slice is a copy; the
// conversations are shared and must not be mutated by the caller.
func (s *Store) Conversations() model.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(model.Collection, len(s.conversations))
	copy(out, s.conversations)
	return out
}

// Len returns the number of conversations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}

// Selected returns the selected index or NoSelection.
func (s *Store) Selected() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// SelectedConversation returns the selected conversation, or nil.
func (s *Store) SelectedConversation() *model.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == NoSelection {
		return nil
	}
	return s.conversations[s.selected]
}

// Conversation returns the conversation at index.
func (s *Store) Conversation(index int) (*model.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.conversations.Valid(index) {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "index %d of %d", index, len(s.conversations))
	}
	return s.conversations[index], nil
}

// Transcript returns a copy of conv's messages, safe to hand to a goroutine.
func (s *Store) Transcript(conv *model.Conversation) []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if conv == nil {
		return nil
	}
	out := make([]model.Message, len(conv.Messages))
	copy(out, conv.Messages)
	return out
}

// =============================================================================
// MUTATIONS
// =============================================================================

// CreateConversation appends an empty conversation, selects it and returns
// its index. A blank title becomes model.DefaultTitle.
func (s *Store) CreateConversation(title string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.createLocked(title)
	s.logger.Debug().Int("index", index).Str("title", s.conversations[index].Title).Msg("conversation created")
	return index, s.persistLocked()
}

// SelectConversation makes index the selected conversation.
func (s *Store) SelectConversation(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.conversations.Valid(index) {
		return errors.Wrapf(ErrIndexOutOfRange, "index %d of %d", index, len(s.conversations))
	}
	s.selected = index
	return nil
}

// DeleteConversation removes the conversation at index. The selection moves
// to the previous conversation (or the first), or to NoSelection when the
// collection becomes empty.
func (s *Store) DeleteConversation(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index == NoSelection {
		return ErrNoSelection
	}
	if !s.conversations.Valid(index) {
		return errors.Wrapf(ErrIndexOutOfRange, "index %d of %d", index, len(s.conversations))
	}

	title := s.conversations[index].Title
	s.conversations[index] = nil
	s.conversations = append(s.conversations[:index], s.conversations[index+1:]...)

	if len(s.conversations) == 0 {
		s.selected = NoSelection
	} else {
		s.selected = max(0, index-1)
	}

	s.logger.Debug().Int("index", index).Str("title", title).Msg("conversation deleted")
	return s.persistLocked()
}

// DeleteSelected removes the selected conversation.
func (s *Store) DeleteSelected() error {
	return s.DeleteConversation(s.Selected())
}

// AppendUserMessage appends text as a user message to the selected
// conversation and returns that conversation. With nothing selected a new
// conversation titled after the text is created first. A conversation still
// carrying the default title is retitled by its first message.
//
// On ErrPersist the message is in memory and the conversation is returned.
func (s *Store) AppendUserMessage(text string) (*model.Conversation, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected == NoSelection {
		s.createLocked(model.TitleFromText(text))
	}

	conv := s.conversations[s.selected]
	conv.Append(model.NewMessage(model.RoleUser, text, s.now()))
	if conv.RetitleFromFirstMessage() {
		s.logger.Debug().Str("title", conv.Title).Msg("conversation retitled")
	}

	return conv, s.persistLocked()
}

// AppendAssistantMessage appends text as an assistant message to the
// selected conversation.
func (s *Store) AppendAssistantMessage(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected == NoSelection {
		return ErrNoSelection
	}
	s.conversations[s.selected].Append(model.NewMessage(model.RoleAssistant, text, s.now()))
	return s.persistLocked()
}

// AppendReply appends text as an assistant message to conv, which need not
// be selected. It fails with ErrConversationGone if conv was deleted.
func (s *Store) AppendReply(conv *model.Conversation, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conversations.IndexOf(conv) < 0 {
		s.logger.Warn().Msg("reply dropped, conversation was deleted")
		return ErrConversationGone
	}
	conv.Append(model.NewMessage(model.RoleAssistant, text, s.now()))
	return s.persistLocked()
}

// Flush writes the collection unconditionally. Called once on exit.
func (s *Store) Flush() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistLocked()
}

// =============================================================================
// INTERNAL
// =============================================================================

func (s *Store) createLocked(title string) int {
	s.conversations = append(s.conversations, model.NewConversation(title))
	s.selected = len(s.conversations) - 1
	return s.selected
}

// persistLocked requires s.mu held, read or write.
func (s *Store) persistLocked() error {
	if err := s.persister.Save(s.conversations); err != nil {
		s.logger.Error().Err(err).Msg("failed to save chat history")
		return &PersistError{Err: err}
	}
	return nil
}
