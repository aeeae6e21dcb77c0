// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"
)

// =============================================================================
// OLLAMA CLIENT
// =============================================================================

// DefaultOllamaURL is the local Ollama endpoint. Uses an explicit
// IPv4 address instead of localhost to avoid IPv6 resolution issues
// on Windows.
const DefaultOllamaURL = "http://127.0.0.1:11434"

// ErrOllamaNotRunning indicates the local Ollama server is not
// reachable.
var ErrOllamaNotRunning = &ClientError{Type: ErrTypeConnection, Message: "Ollama is not running"}

// OllamaClient streams chat responses from a local Ollama server
// using its NDJSON chat endpoint.
type OllamaClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewOllamaClient creates a client for the default local endpoint.
func NewOllamaClient() *OllamaClient {
	return NewOllamaClientWithURL(DefaultOllamaURL)
}

// NewOllamaClientWithURL creates a client for a custom endpoint.
func NewOllamaClientWithURL(baseURL string) *OllamaClient {
	return &OllamaClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Name returns the provider name.
func (c *OllamaClient) Name() string {
	return "Ollama"
}

// CheckRunning verifies that Ollama is reachable.
func (c *OllamaClient) CheckRunning(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ErrOllamaNotRunning
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeConnection,
			Message: "unexpected status from Ollama: " + resp.Status,
		}
	}
	return nil
}

// ListModels returns the names of locally available models.
func (c *OllamaClient) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ErrOllamaNotRunning
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "failed to list models: " + resp.Status,
		}
	}

	var result struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	names := make([]string, 0, len(result.Models))
	for _, m := range result.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// ollamaChatRequest is the wire request for /api/chat.
type ollamaChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  *ollamaOpts   `json:"options,omitempty"`
}

type ollamaOpts struct {
	Temperature *float64 `json:"temperature,omitempty"`
}

// ollamaChunk is one NDJSON line of the streaming response.
type ollamaChunk struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done  bool   `json:"done"`
	Error string `json:"error,omitempty"`
}

// Stream performs a streaming chat request against /api/chat.
func (c *OllamaClient) Stream(ctx context.Context, req Request) (<-chan Event, error) {
	messages := req.Messages
	if req.SystemPrompt != nil {
		messages = append([]ChatMessage{{Role: "system", Content: *req.SystemPrompt}}, messages...)
	}

	payload := ollamaChatRequest{
		Model:    req.Model,
		Messages: messages,
		Stream:   true,
	}
	if req.Temperature != nil {
		payload.Options = &ollamaOpts{Temperature: req.Temperature}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to marshal request", Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	// Streaming lifetime is context-controlled, not client-timeout
	// controlled.
	resp, err := sharedStreamingClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &ClientError{Type: ErrTypeConnection, Message: "request timed out", Cause: err}
		}
		return nil, ErrOllamaNotRunning
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "Ollama chat failed: " + resp.Status + ": " + string(respBody),
		}
	}

	events := make(chan Event, 64)
	go func() {
		defer close(events)
		defer resp.Body.Close()
		c.processStream(ctx, resp.Body, events)
	}()
	return events, nil
}

// processStream reads NDJSON lines and emits events, ending with one
// terminal event.
func (c *OllamaClient) processStream(ctx context.Context, body io.Reader, events chan<- Event) {
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

	reader := bufio.NewReader(body)
	for {
		select {
		case <-ctx.Done():
			send(Event{Type: EventError, Err: ctx.Err()})
			return
		default:
		}

		line, err := reader.ReadBytes('\n')
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
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var chunk ollamaChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			// Skip malformed lines
			continue
		}
		if chunk.Error != "" {
			send(Event{Type: EventError, Err: &ClientError{
				Type: ErrTypeInvalidResponse, Message: chunk.Error,
			}})
			return
		}
		if chunk.Message.Content != "" {
			if !send(Event{Type: EventChunk, Content: chunk.Message.Content}) {
				return
			}
		}
		if chunk.Done {
			send(Event{Type: EventDone})
			return
		}
	}
}
