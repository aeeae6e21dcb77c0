// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream normalizes raw backend event streams into the
// ordered turn-event sequence the session engine consumes: Started,
// Partial(full text), then exactly one of Completed or Failed.
//
// Whatever delta convention a backend uses, every Partial carries the
// full accumulated text, so applying the same event twice is
// harmless and the consumer needs no merge logic.
package stream

import (
	"context"
	"strings"

	"github.com/jeranaias/ait-tui/internal/backend"
)

// =============================================================================
// TURN EVENTS
// =============================================================================

// TurnEventType identifies a normalized turn event.
type TurnEventType int

const (
	// TurnStarted signals the backend accepted the request.
	TurnStarted TurnEventType = iota
	// TurnPartial carries the full accumulated text so far.
	TurnPartial
	// TurnCompleted is terminal; Text holds the final answer, which
	// may legitimately be empty.
	TurnCompleted
	// TurnFailed is terminal; Reason holds a human-readable cause.
	TurnFailed
)

// String returns a human-readable event type name.
func (t TurnEventType) String() string {
	switch t {
	case TurnStarted:
		return "started"
	case TurnPartial:
		return "partial"
	case TurnCompleted:
		return "completed"
	case TurnFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TurnEvent is one normalized event of an assistant turn.
type TurnEvent struct {
	Type   TurnEventType
	Text   string // full accumulated text (Partial, Completed)
	Reason string // failure cause (Failed)
}

// =============================================================================
// INGESTION STATE MACHINE
// =============================================================================

// State is the ingestion protocol state.
type State int

const (
	StateIdle State = iota
	StateStarted
	StateReceiving
	StateCompleted
	StateFailed
)

// Terminal reports whether the state is absorbing.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Ingestor folds raw backend events into turn events. It is used
// from a single worker goroutine; it is not safe for concurrent use.
type Ingestor struct {
	state State
	buf   strings.Builder
}

// NewIngestor returns an ingestor in the Idle state.
func NewIngestor() *Ingestor {
	return &Ingestor{state: StateIdle}
}

// State returns the current protocol state.
func (i *Ingestor) State() State {
	return i.state
}

// Text returns the accumulated content.
func (i *Ingestor) Text() string {
	return i.buf.String()
}

// Apply folds one raw event and reports the turn event to emit, if
// any. Events after a terminal state are dropped. Empty content
// chunks produce no event, so the UI is not re-rendered for nothing.
func (i *Ingestor) Apply(e backend.Event) (TurnEvent, bool) {
	if i.state.Terminal() {
		return TurnEvent{}, false
	}

	switch e.Type {
	case backend.EventStart:
		if i.state != StateIdle {
			// Duplicate start, ignore.
			return TurnEvent{}, false
		}
		i.state = StateStarted
		return TurnEvent{Type: TurnStarted}, true

	case backend.EventChunk:
		if e.Content == "" && e.Reasoning == "" {
			return TurnEvent{}, false
		}
		// Reasoning and content share one visible buffer.
		i.buf.WriteString(e.Reasoning)
		i.buf.WriteString(e.Content)
		i.state = StateReceiving
		return TurnEvent{Type: TurnPartial, Text: i.buf.String()}, true

	case backend.EventDone:
		// A stream that ends without content completes with empty
		// text; empty is a valid answer, not an error.
		i.state = StateCompleted
		return TurnEvent{Type: TurnCompleted, Text: i.buf.String()}, true

	case backend.EventError:
		i.state = StateFailed
		reason := "stream failed"
		if e.Err != nil {
			reason = e.Err.Error()
		}
		return TurnEvent{Type: TurnFailed, Reason: reason}, true

	default:
		return TurnEvent{}, false
	}
}

// Finish closes out a stream whose event channel ended without a
// terminal event. Returns the terminal event to emit, or false when
// the turn already terminated.
func (i *Ingestor) Finish() (TurnEvent, bool) {
	if i.state.Terminal() {
		return TurnEvent{}, false
	}
	i.state = StateCompleted
	return TurnEvent{Type: TurnCompleted, Text: i.buf.String()}, true
}

// =============================================================================
// WORKER
// =============================================================================

// Run drives one assistant turn: it opens the backend stream,
// normalizes its events, and delivers turn events on out in order.
// Exactly one terminal event is always delivered (unless the context
// ends first). Run never retries; failures surface to the user.
func Run(ctx context.Context, b backend.Backend, req backend.Request, out chan<- TurnEvent) {
	send := func(e TurnEvent) bool {
		select {
		case out <- e:
			return true
		case <-ctx.Done():
			return false
		}
	}

	events, err := b.Stream(ctx, req)
	if err != nil {
		send(TurnEvent{Type: TurnFailed, Reason: err.Error()})
		return
	}

	ing := NewIngestor()
	for e := range events {
		te, ok := ing.Apply(e)
		if !ok {
			continue
		}
		if !send(te) {
			return
		}
		if ing.State().Terminal() {
			return
		}
	}

	if te, ok := ing.Finish(); ok {
		send(te)
	}
}
