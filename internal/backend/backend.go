// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides model-provider clients behind a single
// streaming interface. Two wire shapes are supported: OpenAI-style
// SSE chat completions and Ollama's NDJSON chat endpoint.
package backend

import (
	"context"
)

// =============================================================================
// EVENT MODEL
// =============================================================================

// EventType identifies a raw backend stream event.
type EventType int

const (
	// EventStart signals the provider accepted the request and the
	// stream is open.
	EventStart EventType = iota
	// EventChunk carries one content delta.
	EventChunk
	// EventDone signals a clean end of stream.
	EventDone
	// EventError signals the stream failed; Err holds the cause.
	EventError
)

// String returns a human-readable event type name.
func (t EventType) String() string {
	switch t {
	case EventStart:
		return "start"
	case EventChunk:
		return "chunk"
	case EventDone:
		return "done"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one raw event from a provider stream. Content and
// Reasoning are deltas; accumulation happens downstream.
type Event struct {
	Type      EventType
	Content   string
	Reasoning string
	Err       error
}

// =============================================================================
// REQUEST MODEL
// =============================================================================

// ChatMessage is one message in the outgoing request, in provider
// wire form.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", or "system"
	Content string `json:"content"`
}

// Request describes one chat completion request. SystemPrompt and
// Temperature are optional; when nil they are omitted from the wire
// request entirely, which is how reasoning-family models must be
// called.
type Request struct {
	Model        string
	Messages     []ChatMessage
	SystemPrompt *string
	Temperature  *float64
}

// Backend streams a model response for a request. The returned
// channel is closed after a terminal event (Done or Error). The call
// itself only fails for local problems (not configured, bad request);
// transport failures after the stream opens arrive as EventError.
type Backend interface {
	Name() string
	Stream(ctx context.Context, req Request) (<-chan Event, error)
}

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from a backend client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches sentinel ClientErrors by type and message.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotConfigured
	ErrTypeConnection
	ErrTypeRateLimited
	ErrTypeAuth
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrNotConfigured = &ClientError{Type: ErrTypeNotConfigured, Message: "API key not configured"}
	ErrRateLimited   = &ClientError{Type: ErrTypeRateLimited, Message: "rate limited"}
	ErrAuthFailed    = &ClientError{Type: ErrTypeAuth, Message: "authentication failed"}
)
