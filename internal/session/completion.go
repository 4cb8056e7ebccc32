// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/jeranaias/rigchat/internal/cloud"
	"github.com/jeranaias/rigchat/internal/model"
)

// ErrorReplyPrefix starts every reply that stands in for a failed completion.
const ErrorReplyPrefix = "Error: "

// Completer turns a conversation history into a single reply.
type Completer interface {
	Complete(ctx context.Context, messages []cloud.ChatMessage) (string, error)
}

// RequestCompletion sends history to completer and returns the text to
// append as the assistant reply. It never fails: any error, including a
// cancelled or timed out ctx, comes back as "Error: <detail>".
//
// It touches no Store state and is safe to run off the UI goroutine with a
// history obtained from Store.Transcript.
func RequestCompletion(ctx context.Context, completer Completer, history []model.Message) string {
	if completer == nil {
		return ErrorReplyPrefix + "completion service unavailable"
	}

	reply, err := completer.Complete(ctx, cloud.FromTranscript(history))
	if err != nil {
		return ErrorReplyPrefix + describeFailure(ctx, err)
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return ErrorReplyPrefix + cloud.ErrEmptyResponse.Error()
	}
	return reply
}

func describeFailure(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return "request cancelled"
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return "request timed out"
	default:
		return err.Error()
	}
}

// IsErrorReply reports whether text was produced for a failed completion.
func IsErrorReply(text string) bool {
	return strings.HasPrefix(text, ErrorReplyPrefix)
}
