// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"github.com/google/uuid"
)

// =============================================================================
// TURN STATUS
// =============================================================================

// TurnStatus tracks the lifecycle of one streaming assistant turn.
type TurnStatus int

const (
	// TurnNotStarted means the turn exists but no stream event has arrived.
	TurnNotStarted TurnStatus = iota
	// TurnActive means the backend accepted the request and is producing
	// events (content may or may not have arrived yet).
	TurnActive
	// TurnCompleted means the stream ended normally. Absorbing.
	TurnCompleted
	// TurnFailed means the stream ended with an error. Absorbing.
	TurnFailed
)

// String returns a human-readable status name.
func (s TurnStatus) String() string {
	switch s {
	case TurnNotStarted:
		return "not started"
	case TurnActive:
		return "active"
	case TurnCompleted:
		return "completed"
	case TurnFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status is absorbing.
func (s TurnStatus) Terminal() bool {
	return s == TurnCompleted || s == TurnFailed
}

// =============================================================================
// STREAMING TURN
// =============================================================================

// StreamingTurn is the transient state of one in-flight assistant response.
// It is owned exclusively by the session engine for the duration of a turn
// and is folded into a terminal Message when the stream ends. Nothing about
// a turn is persisted until it reaches a terminal status.
//
// All mutation happens on the UI-loop goroutine; workers communicate through
// the engine's event channel and never touch a StreamingTurn directly, so no
// locking is needed here.
type StreamingTurn struct {
	// ID correlates stream events with this turn.
	ID string

	status TurnStatus
	buffer string
	reason string
}

// NewStreamingTurn creates a turn in the NotStarted state.
func NewStreamingTurn() *StreamingTurn {
	return &StreamingTurn{
		ID:     "turn_" + uuid.NewString(),
		status: TurnNotStarted,
	}
}

// Status returns the current turn status.
func (t *StreamingTurn) Status() TurnStatus {
	return t.status
}

// Text returns the accumulated visible text so far.
func (t *StreamingTurn) Text() string {
	return t.buffer
}

// FailureReason returns the failure reason for a TurnFailed turn.
func (t *StreamingTurn) FailureReason() string {
	return t.reason
}

// Start marks the turn active. Called when the backend accepts the request,
// before any content arrives, so the UI can show a spinner immediately.
// No-op once the turn is terminal.
func (t *StreamingTurn) Start() {
	if t.status.Terminal() {
		return
	}
	t.status = TurnActive
}

// ApplyPartial replaces the buffer with the full accumulated text so far.
// The stream protocol always supplies the complete text, not a delta, so
// this is idempotent and last-write-wins. No-op once the turn is terminal.
func (t *StreamingTurn) ApplyPartial(text string) {
	if t.status.Terminal() {
		return
	}
	t.status = TurnActive
	t.buffer = text
}

// Complete marks the turn completed with its final text. An empty final text
// is a valid (if uninteresting) answer, not an error. No-op if already
// terminal.
func (t *StreamingTurn) Complete(finalText string) {
	if t.status.Terminal() {
		return
	}
	t.status = TurnCompleted
	t.buffer = finalText
}

// Fail marks the turn failed with a human-readable reason, preserving any
// partial text already received. No-op if already terminal.
func (t *StreamingTurn) Fail(reason string) {
	if t.status.Terminal() {
		return
	}
	t.status = TurnFailed
	t.reason = reason
}
