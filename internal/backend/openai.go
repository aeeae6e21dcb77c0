// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// HTTP CLIENTS
// =============================================================================

// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
// sharedStreamingClient is used for streaming requests; no client
// timeout, lifetime is controlled via context.
var sharedStreamingClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
}

// =============================================================================
// OPENAI-COMPATIBLE CLIENT
// =============================================================================

// OpenAIClient streams chat completions from any OpenAI-compatible
// endpoint (OpenAI, Groq, xAI, DeepSeek).
type OpenAIClient struct {
	name    string
	baseURL string
	apiKey  string

	// limiter paces request starts so a redo loop cannot hammer a
	// paid API.
	limiter *rate.Limiter
}

// NewOpenAIClient creates a client for one OpenAI-compatible provider.
func NewOpenAIClient(name, baseURL, apiKey string) *OpenAIClient {
	return &OpenAIClient{
		name:    name,
		baseURL: baseURL,
		apiKey:  apiKey,
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 2),
	}
}

// Name returns the provider name.
func (c *OpenAIClient) Name() string {
	return c.name
}

// IsConfigured reports whether an API key is present.
func (c *OpenAIClient) IsConfigured() bool {
	return c.apiKey != ""
}

// chatPayload is the wire request. SystemPrompt is folded into the
// message list; Temperature is omitted entirely when nil.
type chatPayload struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature *float64      `json:"temperature,omitempty"`
}

// sseChunk is one parsed SSE data payload.
type sseChunk struct {
	Choices []struct {
		Delta struct {
			Content   string `json:"content"`
			Reasoning string `json:"reasoning_content,omitempty"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Stream performs a streaming chat completion request. Events are
// delivered on the returned channel, which is closed after a terminal
// event.
func (c *OpenAIClient) Stream(ctx context.Context, req Request) (<-chan Event, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "request cancelled", Cause: err}
	}

	messages := req.Messages
	if req.SystemPrompt != nil {
		messages = append([]ChatMessage{{Role: "system", Content: *req.SystemPrompt}}, messages...)
	}

	payload := chatPayload{
		Model:       req.Model,
		Messages:    messages,
		Stream:      true,
		Temperature: req.Temperature,
	}
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to marshal request", Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Cache-Control", "no-cache")

	resp, err := sharedStreamingClient.Do(httpReq)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: c.name + " unreachable", Cause: err}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, c.errorFromStatus(resp.StatusCode, body)
	}

	events := make(chan Event, 64)
	go func() {
		defer close(events)
		defer resp.Body.Close()
		c.processStream(ctx, resp.Body, events)
	}()
	return events, nil
}

// processStream reads the SSE stream and emits events. Always ends
// with exactly one terminal event.
func (c *OpenAIClient) processStream(ctx context.Context, body io.Reader, events chan<- Event) {
	send := func(e Event) bool {
		select {
		case events <- e:
			return true
		case <-ctx.Done():
			return false
		}
	}

	if !send(Event{Type: EventStart}) {
		return
	}

	reader := NewSSEReader(body)
	for {
		select {
		case <-ctx.Done():
			send(Event{Type: EventError, Err: ctx.Err()})
			return
		default:
		}

		data, err := reader.ReadEvent()
		if err != nil {
			if err == io.EOF {
				send(Event{Type: EventDone})
				return
			}
			send(Event{Type: EventError, Err: &ClientError{
				Type: ErrTypeConnection, Message: "stream read failed", Cause: err,
			}})
			return
		}

		// Check for [DONE] signal
		if bytes.Equal(data, []byte("[DONE]")) {
			send(Event{Type: EventDone})
			return
		}

		var chunk sseChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			// Skip malformed chunks
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		choice := chunk.Choices[0]
		if choice.Delta.Content != "" || choice.Delta.Reasoning != "" {
			if !send(Event{
				Type:      EventChunk,
				Content:   choice.Delta.Content,
				Reasoning: choice.Delta.Reasoning,
			}) {
				return
			}
		}
		if choice.FinishReason != "" {
			send(Event{Type: EventDone})
			return
		}
	}
}

// errorFromStatus maps HTTP error responses to client errors.
func (c *OpenAIClient) errorFromStatus(status int, body []byte) error {
	var apiErr struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	detail := ""
	if err := json.Unmarshal(body, &apiErr); err == nil {
		detail = apiErr.Error.Message
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuthFailed
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		msg := fmt.Sprintf("%s error (HTTP %d)", c.name, status)
		if detail != "" {
			msg += ": " + detail
		}
		return &ClientError{Type: ErrTypeInvalidResponse, Message: msg}
	}
}
