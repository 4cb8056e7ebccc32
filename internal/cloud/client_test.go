// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/rigchat/internal/model"
)

const testKey = "sk-test-abcdefghijklmnopqrstuvwxyz0123456789"

type capturedRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

func okServer(t *testing.T, content string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer "+testKey {
			t.Errorf("Authorization = %q", got)
		}
		if captured != nil {
			if err := json.NewDecoder(r.Body).Decode(captured); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{
				"index": 0,
				"message": {"role": "assistant", "content": ` + mustJSON(content) + `},
				"finish_reason": "stop"
			}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30}
		}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func errorServer(t *testing.T, status int, message string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(`{"error": {"message": ` + mustJSON(message) + `, "type": "invalid_request_error"}}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// =============================================================================
// COMPLETE
// =============================================================================

func TestClient_CompleteSendsHistory(t *testing.T) {
	var captured capturedRequest
	server := okServer(t, "Paris is the capital.", &captured)

	client := NewClient(testKey).WithBaseURL(server.URL + "/v1").WithModel("gpt-4o-mini")
	history := []model.Message{
		{Role: model.RoleUser, Text: "Capital of France?", Time: "10:00"},
		{Role: model.RoleAssistant, Text: "Paris.", Time: "10:00"},
		{Role: model.RoleUser, Text: "Are you sure?", Time: "10:01"},
	}

	reply, err := client.Complete(context.Background(), FromTranscript(history))

	require.NoError(t, err)
	assert.Equal(t, "Paris is the capital.", reply)
	assert.Equal(t, "gpt-4o-mini", captured.Model)
	assert.Equal(t, []ChatMessage{
		{Role: "user", Content: "Capital of France?"},
		{Role: "assistant", Content: "Paris."},
		{Role: "user", Content: "Are you sure?"},
	}, captured.Messages)
}

func TestClient_NotConfigured(t *testing.T) {
	client := NewClient("")

	_, err := client.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})

	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, client.IsConfigured())
}

func TestClient_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrAuthFailed},
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
		{"model not found", http.StatusNotFound, ErrModelNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := errorServer(t, tt.status, "something went wrong")
			client := NewClient(testKey).WithBaseURL(server.URL)

			_, err := client.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			var ce *CompletionError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.status, ce.Status)
			assert.Contains(t, err.Error(), "something went wrong")
		})
	}
}

func TestClient_ServerErrorIsUnclassified(t *testing.T) {
	server := errorServer(t, http.StatusInternalServerError, "upstream exploded")
	client := NewClient(testKey).WithBaseURL(server.URL)

	_, err := client.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})

	var ce *CompletionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, http.StatusInternalServerError, ce.Status)
	assert.Nil(t, errors.Unwrap(ce))
}

func TestClient_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "x", "choices": []}`))
	}))
	defer server.Close()

	_, err := NewClient(testKey).WithBaseURL(server.URL).
		Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})

	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(testKey).WithBaseURL(server.URL).WithTimeout(50 * time.Millisecond)

	_, err := client.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_Cancel(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := NewClient(testKey).WithBaseURL(server.URL).Complete(ctx, []ChatMessage{{Role: "user", Content: "hi"}})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_RateLimitHonorsContext(t *testing.T) {
	server := okServer(t, "ok", nil)
	client := NewClient(testKey).WithBaseURL(server.URL).WithRateLimit(1)

	// Burst allows the first few through.
	for i := 0; i < rateBurst; i++ {
		_, err := client.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})
		require.NoError(t, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.Complete(ctx, []ChatMessage{{Role: "user", Content: "hi"}})
	assert.Error(t, err)
}

// =============================================================================
// HELPERS
// =============================================================================

func TestFromTranscriptDropsTimestamps(t *testing.T) {
	got := FromTranscript([]model.Message{{Role: model.RoleUser, Text: "hi", Time: "10:00"}})
	assert.Equal(t, []ChatMessage{{Role: "user", Content: "hi"}}, got)
	assert.Empty(t, FromTranscript(nil))
}

func TestAPIKeyMasked(t *testing.T) {
	masked := NewClient(testKey).APIKeyMasked()

	assert.NotContains(t, masked, "sk-test")
	assert.Contains(t, masked, "fingerprint=")
	assert.Equal(t, "[not set]", NewClient("").APIKeyMasked())
}

func TestClientMethodChaining(t *testing.T) {
	client := NewClient(testKey).
		WithModel("gpt-4o").
		WithTimeout(5 * time.Second).
		WithRateLimit(0)

	assert.Equal(t, "gpt-4o", client.Model())
	assert.Equal(t, 5*time.Second, client.Timeout())

	client.SetModel("")
	assert.Equal(t, "gpt-4o", client.Model(), "empty model name is ignored")
}

func TestCompletionError(t *testing.T) {
	err := &CompletionError{Status: 401, Message: "bad key", kind: ErrAuthFailed}
	assert.Equal(t, "authentication failed (HTTP 401): bad key", err.Error())

	err = &CompletionError{Message: "dial tcp: refused"}
	assert.Equal(t, "completion failed: dial tcp: refused", err.Error())
}
