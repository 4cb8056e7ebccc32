// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/jeranaias/rigchat/internal/model"
)

// Configuration constants for the completion endpoint.
const (
	// DefaultBaseURL is the OpenAI API root.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is the model used when none is configured.
	DefaultModel = "gpt-4o-mini"

	// DefaultTimeout bounds a single completion request.
	DefaultTimeout = 60 * time.Second

	// DefaultRequestsPerMinute is the client-side request budget.
	DefaultRequestsPerMinute = 20

	// rateBurst allows a few quick follow-ups before throttling kicks in.
	rateBurst = 3
)

// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
// SECURITY: TLS verification required, TLS 1.2 minimum.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
	// No client timeout - bounded per request via context
}

// Error variables for common completion failures.
var (
	// ErrNotConfigured indicates the API key is not set.
	ErrNotConfigured = errors.New("API key not configured")

	// ErrAuthFailed indicates authentication failed (invalid or expired API key).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrModelNotFound indicates the requested model does not exist.
	ErrModelNotFound = errors.New("model not found")

	// ErrEmptyResponse indicates the endpoint answered without any choices.
	ErrEmptyResponse = errors.New("empty response from completion service")
)

// CompletionError represents a failed request to the completion endpoint.
type CompletionError struct {
	Status  int
	Message string
	kind    error
}

// Error implements the error interface.
func (e *CompletionError) Error() string {
	label := "completion failed"
	if e.kind != nil {
		label = e.kind.Error()
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", label, e.Message)
	}
	if e.Message == "" {
		return fmt.Sprintf("%s (HTTP %d)", label, e.Status)
	}
	return fmt.Sprintf("%s (HTTP %d): %s", label, e.Status, e.Message)
}

// Unwrap returns the matching sentinel error, if any.
func (e *CompletionError) Unwrap() error {
	return e.kind
}

// =============================================================================
// MESSAGES
// =============================================================================

// ChatMessage represents a single message sent to the endpoint.
type ChatMessage struct {
	Role    string `json:"role"`    // "user" or "assistant"
	Content string `json:"content"` // The message text
}

// FromTranscript converts stored messages to request messages. Timestamps
// are not part of the request.
func FromTranscript(messages []model.Message) []ChatMessage {
	out := make([]ChatMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, ChatMessage{Role: m.Role.String(), Content: m.Text})
	}
	return out
}

func toOpenAI(messages []ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		if m.Role == string(model.RoleAssistant) {
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}

// =============================================================================
// CLIENT
// =============================================================================

// Client sends chat completion requests.
type Client struct {
	mu sync.RWMutex

	apiKey  string
	baseURL string
	model   string
	timeout time.Duration

	api     *openai.Client
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewClient creates a client for the default endpoint and model.
func NewClient(apiKey string) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		model:   DefaultModel,
		timeout: DefaultTimeout,
		limiter: newLimiter(DefaultRequestsPerMinute),
		logger:  log.Logger,
	}
	c.rebuild()
	return c
}

// WithBaseURL sets a custom API root (useful for testing or compatible gateways).
func (c *Client) WithBaseURL(url string) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if url != "" {
		c.baseURL = url
	}
	c.rebuild()
	return c
}

// WithModel sets the model.
func (c *Client) WithModel(name string) *Client {
	c.SetModel(name)
	return c
}

// WithTimeout sets the per-request timeout. Zero disables it.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeout = timeout
	return c
}

// WithRateLimit sets the client-side budget in requests per minute.
// Zero or less disables limiting.
func (c *Client) WithRateLimit(perMinute int) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.limiter = newLimiter(perMinute)
	return c
}

// WithLogger sets the logger.
func (c *Client) WithLogger(logger zerolog.Logger) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = logger
	return c
}

// SetModel changes the model for subsequent requests.
func (c *Client) SetModel(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if name != "" {
		c.model = name
	}
}

// Model returns the current model.
func (c *Client) Model() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.timeout
}

// IsConfigured returns true if an API key is set.
func (c *Client) IsConfigured() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey != ""
}

// APIKeyMasked returns a masked version of the API key for display.
// SECURITY: Never exposes API key fragments - use fingerprint instead.
func (c *Client) APIKeyMasked() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.apiKey == "" {
		return "[not set]"
	}
	return fmt.Sprintf("[REDACTED, length=%d, fingerprint=%s]", len(c.apiKey), fingerprint(c.apiKey))
}

// Complete sends the conversation and returns the reply text as received.
func (c *Client) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	c.mu.RLock()
	api, modelName, timeout, limiter, logger := c.api, c.model, c.timeout, c.limiter, c.logger
	configured, keyPrint := c.apiKey != "", fingerprint(c.apiKey)
	c.mu.RUnlock()

	if !configured {
		return "", ErrNotConfigured
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	requestID := uuid.NewString()
	logger = logger.With().Str("request_id", requestID).Str("model", modelName).Logger()

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			logger.Warn().Err(err).Msg("completion request throttled")
			return "", contextError(ctx, timeout, fmt.Errorf("%w: %v", ErrRateLimited, err))
		}
	}

	logger.Debug().
		Int("messages", len(messages)).
		Str("key_fingerprint", keyPrint).
		Msg("completion request")

	start := time.Now()
	resp, err := api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    modelName,
		Messages: toOpenAI(messages),
	})
	if err != nil {
		err = contextError(ctx, timeout, classify(err))
		logger.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("completion failed")
		return "", err
	}

	if len(resp.Choices) == 0 {
		logger.Error().Msg("completion returned no choices")
		return "", ErrEmptyResponse
	}

	logger.Info().
		Dur("elapsed", time.Since(start)).
		Int("total_tokens", resp.Usage.TotalTokens).
		Msg("completion received")
	return resp.Choices[0].Message.Content, nil
}

// =============================================================================
// INTERNAL
// =============================================================================

// rebuild requires c.mu held for writing, or exclusive access.
func (c *Client) rebuild() {
	cfg := openai.DefaultConfig(c.apiKey)
	cfg.BaseURL = c.baseURL
	cfg.HTTPClient = sharedHTTPClient
	c.api = openai.NewClientWithConfig(cfg)
}

func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), rateBurst)
}

// fingerprint returns the first 8 hex chars of the key's SHA-256.
// SECURITY: identifies a key in logs without exposing it.
func fingerprint(apiKey string) string {
	if apiKey == "" {
		return "none"
	}
	h := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(h[:4])
}

// contextError reports a cancelled or expired ctx in place of err.
func contextError(ctx context.Context, timeout time.Duration, err error) error {
	switch ctx.Err() {
	case context.DeadlineExceeded:
		return fmt.Errorf("request timed out after %s: %w", timeout, context.DeadlineExceeded)
	case context.Canceled:
		return fmt.Errorf("request cancelled: %w", context.Canceled)
	}
	return err
}

// classify maps go-openai errors onto CompletionError.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &CompletionError{
			Status:  apiErr.HTTPStatusCode,
			Message: apiErr.Message,
			kind:    kindForStatus(apiErr.HTTPStatusCode),
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := http.StatusText(reqErr.HTTPStatusCode)
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return &CompletionError{
			Status:  reqErr.HTTPStatusCode,
			Message: msg,
			kind:    kindForStatus(reqErr.HTTPStatusCode),
		}
	}

	return &CompletionError{Message: err.Error()}
}

func kindForStatus(status int) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuthFailed
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusNotFound:
		return ErrModelNotFound
	default:
		return nil
	}
}
