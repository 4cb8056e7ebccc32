// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/storage"
)

// memPersister records every save so tests can assert persistence.
type memPersister struct {
	loaded  model.Collection
	loadErr error
	saveErr error
	saves   int
	last    []string
}

func (p *memPersister) Load() (model.Collection, error) {
	return p.loaded, p.loadErr
}

func (p *memPersister) Save(c model.Collection) error {
	p.saves++
	p.last = make([]string, len(c))
	for i, conv := range c {
		p.last[i] = conv.Title
	}
	return p.saveErr
}

var fixedNow = time.Date(2025, 3, 14, 15, 9, 26, 0, time.Local)

func newTestStore(t *testing.T, p *memPersister) *Store {
	t.Helper()
	s := NewStore(p, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, s.Open())
	return s
}

func assertSelectionValid(t *testing.T, s *Store) {
	t.Helper()
	sel := s.Selected()
	if sel == NoSelection {
		return
	}
	if sel < 0 || sel >= s.Len() {
		t.Fatalf("selected = %d with %d conversations", sel, s.Len())
	}
}

// =============================================================================
// OPEN
// =============================================================================

func TestStore_OpenEmpty(t *testing.T) {
	s := newTestStore(t, &memPersister{})

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, NoSelection, s.Selected())
	assert.Nil(t, s.SelectedConversation())
}

func TestStore_OpenSelectsFirst(t *testing.T) {
	s := newTestStore(t, &memPersister{loaded: model.Collection{
		model.NewConversation("a"),
		model.NewConversation("b"),
	}})

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 0, s.Selected())
	assert.Equal(t, "a", s.SelectedConversation().Title)
}

func TestStore_OpenMalformedWarnsOnceAndStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	s := NewStore(storage.NewHistoryFile(path))
	err := s.Open()

	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrMalformedHistory)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, NoSelection, s.Selected())
}

// =============================================================================
// CREATE / SELECT / DELETE
// =============================================================================

func TestStore_CreateConversation(t *testing.T) {
	p := &memPersister{}
	s := newTestStore(t, p)

	idx, err := s.CreateConversation("")
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 0, s.Selected())
	assert.Equal(t, model.DefaultTitle, s.SelectedConversation().Title)

	idx, err = s.CreateConversation("Work")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 1, s.Selected())

	assert.Equal(t, 2, p.saves)
	assert.Equal(t, []string{model.DefaultTitle, "Work"}, p.last)
}

func TestStore_SelectConversationBounds(t *testing.T) {
	s := newTestStore(t, &memPersister{})
	_, _ = s.CreateConversation("a")
	_, _ = s.CreateConversation("b")

	require.NoError(t, s.SelectConversation(0))
	assert.Equal(t, 0, s.Selected())

	for _, bad := range []int{-1, 2, 99} {
		err := s.SelectConversation(bad)
		assert.ErrorIs(t, err, ErrIndexOutOfRange, "index %d", bad)
		assert.Equal(t, 0, s.Selected(), "state must not change for index %d", bad)
	}
}

func TestStore_DeleteOnlyConversation(t *testing.T) {
	s := newTestStore(t, &memPersister{})
	_, _ = s.CreateConversation("only")

	require.NoError(t, s.DeleteSelected())

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, NoSelection, s.Selected())
	assert.Nil(t, s.SelectedConversation())
}

func TestStore_DeleteSelectsPrevious(t *testing.T) {
	tests := []struct {
		name      string
		delete    int
		wantSel   int
		wantTitle string
	}{
		{"first", 0, 0, "b"},
		{"middle", 1, 0, "a"},
		{"last", 2, 1, "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t, &memPersister{})
			for _, title := range []string{"a", "b", "c"} {
				_, _ = s.CreateConversation(title)
			}
			require.NoError(t, s.SelectConversation(tt.delete))

			require.NoError(t, s.DeleteSelected())

			assert.Equal(t, 2, s.Len())
			assert.Equal(t, tt.wantSel, s.Selected())
			assert.Equal(t, tt.wantTitle, s.SelectedConversation().Title)
		})
	}
}

func TestStore_DeleteWithNothingSelected(t *testing.T) {
	p := &memPersister{}
	s := newTestStore(t, p)

	err := s.DeleteSelected()

	assert.ErrorIs(t, err, ErrNoSelection)
	assert.Equal(t, 0, p.saves)
}

func TestStore_DeleteOutOfRange(t *testing.T) {
	s := newTestStore(t, &memPersister{})
	_, _ = s.CreateConversation("a")

	assert.ErrorIs(t, s.DeleteConversation(5), ErrIndexOutOfRange)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 0, s.Selected())
}

func TestStore_SelectionInvariantUnderRandomOps(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s := newTestStore(t, &memPersister{})

	for i := 0; i < 2000; i++ {
		switch rng.Intn(5) {
		case 0:
			_, _ = s.CreateConversation("")
		case 1:
			_ = s.DeleteSelected()
		case 2:
			_ = s.DeleteConversation(rng.Intn(6) - 1)
		case 3:
			_ = s.SelectConversation(rng.Intn(8) - 2)
		case 4:
			_, _ = s.AppendUserMessage("msg")
		}
		assertSelectionValid(t, s)
	}
}

// =============================================================================
// MESSAGES
// =============================================================================

func TestStore_SendWithNothingSelectedCreatesConversation(t *testing.T) {
	p := &memPersister{}
	s := newTestStore(t, p)
	text := "Hello there, how are you today? I hope well."

	conv, err := s.AppendUserMessage(text)
	require.NoError(t, err)

	require.Equal(t, 1, s.Len())
	assert.Equal(t, 0, s.Selected())
	assert.Same(t, conv, s.SelectedConversation())
	assert.Equal(t, "Hello there, how are you today...", conv.Title)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, model.Message{Role: model.RoleUser, Text: text, Time: "15:09"}, conv.Messages[0])
	assert.Equal(t, 1, p.saves)

	require.NoError(t, s.AppendReply(conv, "Fine, thanks."))
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, model.RoleAssistant, conv.Messages[1].Role)
	assert.Equal(t, 2, p.saves)
}

func TestStore_ExplicitNewConversationRetitledOnFirstSend(t *testing.T) {
	s := newTestStore(t, &memPersister{})
	_, err := s.CreateConversation("")
	require.NoError(t, err)
	assert.Equal(t, "New Chat", s.SelectedConversation().Title)

	conv, err := s.AppendUserMessage("Plan my trip to Lisbon")
	require.NoError(t, err)
	assert.Equal(t, "Plan my trip to Lisbon", conv.Title)

	_, err = s.AppendUserMessage("Second message should not retitle")
	require.NoError(t, err)
	assert.Equal(t, "Plan my trip to Lisbon", conv.Title)
}

func TestStore_TitleCutFromSentText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"decomposed accent short", "cafe\u0301", "cafe\u0301"},
		{"decomposed accent at the cut", strings.Repeat("a", 29) + "e\u0301", strings.Repeat("a", 29) + "e..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t, &memPersister{})

			conv, err := s.AppendUserMessage(tt.text)

			require.NoError(t, err)
			assert.Equal(t, tt.want, conv.Title)
			assert.Equal(t, tt.text, conv.Messages[0].Text)
		})
	}
}

func TestStore_ExplicitTitleKept(t *testing.T) {
	s := newTestStore(t, &memPersister{})
	_, _ = s.CreateConversation("Travel")

	conv, err := s.AppendUserMessage("Plan my trip")
	require.NoError(t, err)
	assert.Equal(t, "Travel", conv.Title)
}

func TestStore_EmptyMessageIgnored(t *testing.T) {
	p := &memPersister{}
	s := newTestStore(t, p)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := s.AppendUserMessage(text)
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, p.saves)
}

func TestStore_MessageTextTrimmed(t *testing.T) {
	s := newTestStore(t, &memPersister{})

	conv, err := s.AppendUserMessage("  hi  \n")
	require.NoError(t, err)
	assert.Equal(t, "hi", conv.Messages[0].Text)
}

func TestStore_AppendAssistantMessage(t *testing.T) {
	s := newTestStore(t, &memPersister{})
	assert.ErrorIs(t, s.AppendAssistantMessage("x"), ErrNoSelection)

	_, _ = s.CreateConversation("")
	require.NoError(t, s.AppendAssistantMessage("x"))
	assert.Equal(t, model.RoleAssistant, s.SelectedConversation().Messages[0].Role)
}

func TestStore_ReplyGoesToOriginatingConversation(t *testing.T) {
	s := newTestStore(t, &memPersister{})
	first, err := s.AppendUserMessage("question")
	require.NoError(t, err)

	_, _ = s.CreateConversation("other")
	require.NoError(t, s.AppendReply(first, "answer"))

	assert.Len(t, first.Messages, 2)
	assert.Empty(t, s.SelectedConversation().Messages)
}

func TestStore_ReplyForDeletedConversationDropped(t *testing.T) {
	p := &memPersister{}
	s := newTestStore(t, p)
	conv, err := s.AppendUserMessage("question")
	require.NoError(t, err)
	require.NoError(t, s.DeleteSelected())
	saves := p.saves

	err = s.AppendReply(conv, "late answer")

	assert.ErrorIs(t, err, ErrConversationGone)
	assert.Equal(t, saves, p.saves)
}

func TestStore_PersistFailureKeepsMemoryState(t *testing.T) {
	diskFull := errors.New("disk full")
	s := newTestStore(t, &memPersister{saveErr: diskFull})

	conv, err := s.AppendUserMessage("hello")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersist)
	assert.ErrorIs(t, err, diskFull)
	var persistErr *PersistError
	require.ErrorAs(t, err, &persistErr)
	assert.Equal(t, "failed to save chat history: disk full", err.Error())
	require.NotNil(t, conv)
	assert.Equal(t, 1, s.Len())
	assert.Len(t, conv.Messages, 1)
}

func TestStore_TranscriptIsCopy(t *testing.T) {
	s := newTestStore(t, &memPersister{})
	conv, _ := s.AppendUserMessage("hello")

	transcript := s.Transcript(conv)
	transcript[0].Text = "mutated"

	assert.Equal(t, "hello", conv.Messages[0].Text)
	assert.Nil(t, s.Transcript(nil))
}

func TestStore_PersistedRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_history.json")
	s := NewStore(storage.NewHistoryFile(path), WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, s.Open())

	conv, err := s.AppendUserMessage("hi")
	require.NoError(t, err)
	require.NoError(t, s.AppendReply(conv, "hello"))
	_, err = s.CreateConversation("second")
	require.NoError(t, err)
	require.NoError(t, s.Flush())

	reopened := NewStore(storage.NewHistoryFile(path))
	require.NoError(t, reopened.Open())

	assert.Equal(t, s.Conversations(), reopened.Conversations())
	assert.Equal(t, 0, reopened.Selected())
}
