// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"context"
	"errors"
	"testing"

	"github.com/jeranaias/ait-tui/internal/backend"
)

// =============================================================================
// STATE MACHINE TESTS
// =============================================================================

func TestIngestor_HappyPath(t *testing.T) {
	ing := NewIngestor()

	te, ok := ing.Apply(backend.Event{Type: backend.EventStart})
	if !ok || te.Type != TurnStarted {
		t.Fatalf("start: got (%+v, %v)", te, ok)
	}

	te, ok = ing.Apply(backend.Event{Type: backend.EventChunk, Content: "Hel"})
	if !ok || te.Type != TurnPartial || te.Text != "Hel" {
		t.Fatalf("first chunk: got (%+v, %v)", te, ok)
	}

	te, ok = ing.Apply(backend.Event{Type: backend.EventChunk, Content: "lo"})
	if !ok || te.Text != "Hello" {
		t.Fatalf("second chunk: got (%+v, %v), want accumulated text", te, ok)
	}

	te, ok = ing.Apply(backend.Event{Type: backend.EventDone})
	if !ok || te.Type != TurnCompleted || te.Text != "Hello" {
		t.Fatalf("done: got (%+v, %v)", te, ok)
	}
	if !ing.State().Terminal() {
		t.Error("state should be terminal after done")
	}
}

func TestIngestor_EmptyChunkIsNoop(t *testing.T) {
	ing := NewIngestor()
	ing.Apply(backend.Event{Type: backend.EventStart})

	if _, ok := ing.Apply(backend.Event{Type: backend.EventChunk, Content: ""}); ok {
		t.Error("empty chunk should not emit an event")
	}
	if ing.State() != StateStarted {
		t.Errorf("state = %v, want StateStarted", ing.State())
	}
}

func TestIngestor_EmptyStreamCompletesEmpty(t *testing.T) {
	ing := NewIngestor()
	ing.Apply(backend.Event{Type: backend.EventStart})

	te, ok := ing.Apply(backend.Event{Type: backend.EventDone})
	if !ok || te.Type != TurnCompleted {
		t.Fatalf("got (%+v, %v), want completed", te, ok)
	}
	if te.Text != "" {
		t.Errorf("Text = %q, want empty", te.Text)
	}
}

func TestIngestor_ErrorProducesFailed(t *testing.T) {
	ing := NewIngestor()
	ing.Apply(backend.Event{Type: backend.EventStart})
	ing.Apply(backend.Event{Type: backend.EventChunk, Content: "part"})

	te, ok := ing.Apply(backend.Event{Type: backend.EventError, Err: errors.New("connection reset")})
	if !ok || te.Type != TurnFailed {
		t.Fatalf("got (%+v, %v), want failed", te, ok)
	}
	if te.Reason != "connection reset" {
		t.Errorf("Reason = %q", te.Reason)
	}
}

func TestIngestor_TerminalAbsorbing(t *testing.T) {
	ing := NewIngestor()
	ing.Apply(backend.Event{Type: backend.EventStart})
	ing.Apply(backend.Event{Type: backend.EventDone})

	events := []backend.Event{
		{Type: backend.EventChunk, Content: "late"},
		{Type: backend.EventDone},
		{Type: backend.EventError, Err: errors.New("late error")},
		{Type: backend.EventStart},
	}
	for _, e := range events {
		if _, ok := ing.Apply(e); ok {
			t.Errorf("event %v after terminal state emitted something", e.Type)
		}
	}
	if ing.State() != StateCompleted {
		t.Errorf("state = %v, want StateCompleted", ing.State())
	}
}

func TestIngestor_DuplicateStartIgnored(t *testing.T) {
	ing := NewIngestor()
	ing.Apply(backend.Event{Type: backend.EventStart})
	if _, ok := ing.Apply(backend.Event{Type: backend.EventStart}); ok {
		t.Error("duplicate start should not emit an event")
	}
}

func TestIngestor_ReasoningSharesBuffer(t *testing.T) {
	ing := NewIngestor()
	ing.Apply(backend.Event{Type: backend.EventStart})
	ing.Apply(backend.Event{Type: backend.EventChunk, Reasoning: "thinking... "})
	te, ok := ing.Apply(backend.Event{Type: backend.EventChunk, Content: "answer"})
	if !ok || te.Text != "thinking... answer" {
		t.Errorf("Text = %q", te.Text)
	}
}

func TestIngestor_FinishWithoutTerminal(t *testing.T) {
	ing := NewIngestor()
	ing.Apply(backend.Event{Type: backend.EventStart})
	ing.Apply(backend.Event{Type: backend.EventChunk, Content: "cut off"})

	te, ok := ing.Finish()
	if !ok || te.Type != TurnCompleted || te.Text != "cut off" {
		t.Errorf("Finish = (%+v, %v)", te, ok)
	}

	// Finish after terminal is a no-op.
	if _, ok := ing.Finish(); ok {
		t.Error("second Finish emitted an event")
	}
}

// =============================================================================
// WORKER TESTS
// =============================================================================

// scriptedBackend replays a fixed event sequence.
type scriptedBackend struct {
	events []backend.Event
	err    error
}

func (s *scriptedBackend) Name() string { return "scripted" }

func (s *scriptedBackend) Stream(ctx context.Context, req backend.Request) (<-chan backend.Event, error) {
	if s.err != nil {
		return nil, s.err
	}
	ch := make(chan backend.Event, len(s.events))
	for _, e := range s.events {
		ch <- e
	}
	close(ch)
	return ch, nil
}

func drain(out chan TurnEvent) []TurnEvent {
	close(out)
	var got []TurnEvent
	for e := range out {
		got = append(got, e)
	}
	return got
}

func TestRun_DeliversOrderedEvents(t *testing.T) {
	b := &scriptedBackend{events: []backend.Event{
		{Type: backend.EventStart},
		{Type: backend.EventChunk, Content: "a"},
		{Type: backend.EventChunk, Content: "b"},
		{Type: backend.EventDone},
	}}

	out := make(chan TurnEvent, 16)
	Run(context.Background(), b, backend.Request{Model: "gpt-4o-mini"}, out)

	got := drain(out)
	wantTypes := []TurnEventType{TurnStarted, TurnPartial, TurnPartial, TurnCompleted}
	if len(got) != len(wantTypes) {
		t.Fatalf("got %d events, want %d: %+v", len(got), len(wantTypes), got)
	}
	for i, w := range wantTypes {
		if got[i].Type != w {
			t.Errorf("event %d = %v, want %v", i, got[i].Type, w)
		}
	}
	if got[3].Text != "ab" {
		t.Errorf("final text = %q, want %q", got[3].Text, "ab")
	}
}

func TestRun_StreamOpenFailure(t *testing.T) {
	b := &scriptedBackend{err: errors.New("no API key")}

	out := make(chan TurnEvent, 4)
	Run(context.Background(), b, backend.Request{}, out)

	got := drain(out)
	if len(got) != 1 || got[0].Type != TurnFailed {
		t.Fatalf("got %+v, want single failed event", got)
	}
	if got[0].Reason != "no API key" {
		t.Errorf("Reason = %q", got[0].Reason)
	}
}

func TestRun_ChannelCloseWithoutTerminal(t *testing.T) {
	b := &scriptedBackend{events: []backend.Event{
		{Type: backend.EventStart},
		{Type: backend.EventChunk, Content: "partial answer"},
	}}

	out := make(chan TurnEvent, 8)
	Run(context.Background(), b, backend.Request{}, out)

	got := drain(out)
	last := got[len(got)-1]
	if last.Type != TurnCompleted || last.Text != "partial answer" {
		t.Errorf("last event = %+v, want completed with accumulated text", last)
	}
}
