// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud provides the chat-completion client for rigchat.
//
// The client speaks the OpenAI chat completions protocol, so any compatible
// endpoint (OpenAI itself, OpenRouter, a local gateway) can be used by
// changing the base URL. One request is made per user message; the full
// conversation history goes out as role/content pairs and one reply string
// comes back. There is no streaming and no retry.
//
// # Key Types
//
//   - Client: go-openai backed client with timeout and client-side rate limit
//   - ChatMessage: role/content pair sent to the endpoint
//   - CompletionError: classified failure from the endpoint
//
// # Usage
//
//	client := cloud.NewClient(apiKey).
//	    WithModel("gpt-4o-mini").
//	    WithTimeout(60 * time.Second)
//	reply, err := client.Complete(ctx, cloud.FromTranscript(conv.Messages))
//
// # Security
//
// API keys are never logged. Logs carry a SHA-256 fingerprint of the key,
// and all HTTPS requests use TLS 1.2+.
package cloud
