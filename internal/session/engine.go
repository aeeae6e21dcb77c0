// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"log/slog"

	"github.com/jeranaias/ait-tui/internal/backend"
	"github.com/jeranaias/ait-tui/internal/model"
	"github.com/jeranaias/ait-tui/internal/snippet"
	"github.com/jeranaias/ait-tui/internal/storage"
	"github.com/jeranaias/ait-tui/internal/stream"
	"github.com/jeranaias/ait-tui/internal/util"
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Store is the persistence surface the engine needs. *storage.Store
// satisfies it; tests substitute fakes.
type Store interface {
	CreateConversation(systemPrompt string) (int64, error)
	AppendMessage(conversationID int64, msg *model.Message) error
	DeleteMessage(conversationID int64, msg *model.Message) error
	DeleteConversation(conversationID int64) error
	ListConversations(filter string) ([]storage.ConversationMeta, error)
	ListMessages(conversationID int64) ([]*model.Message, error)
	SystemPrompt(conversationID int64) (string, error)
}

// Resolver maps a model identifier to the backend that serves it.
// *backend.Registry satisfies it.
type Resolver interface {
	ForModel(modelID string) (backend.Backend, error)
}

// Options configures a new Engine.
type Options struct {
	Store        Store
	Resolver     Resolver
	SystemPrompt string
	ModelID      string
	Temperature  float64
	ChatLogPath  string
	Logger       *slog.Logger
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine drives one conversation: turn admission, streaming, persistence,
// and interaction mode. All methods must be called from the UI loop
// goroutine; the only concurrency is the worker spawned per submission,
// which communicates exclusively through the event channel.
type Engine struct {
	store    Store
	resolver Resolver
	logger   *slog.Logger

	conv    *model.Conversation
	convID  int64 // 0 until first durable write
	modelID string

	systemPrompt string
	temperature  float64
	chatLogPath  string

	mode    Mode
	notice  string
	running bool

	turn   *model.StreamingTurn
	events chan stream.TurnEvent

	snippets []string
}

// New creates an engine with a fresh, not-yet-persisted conversation.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:        opts.Store,
		resolver:     opts.Resolver,
		logger:       logger,
		conv:         model.NewConversation(opts.SystemPrompt, opts.ModelID),
		modelID:      opts.ModelID,
		systemPrompt: opts.SystemPrompt,
		temperature:  opts.Temperature,
		chatLogPath:  opts.ChatLogPath,
		mode:         ModeNormal,
		running:      true,
	}
}

// Conversation exposes the live model for read-only rendering.
func (e *Engine) Conversation() *model.Conversation {
	return e.conv
}

// ModelID returns the identifier future turns will use.
func (e *Engine) ModelID() string {
	return e.modelID
}

// Snippets returns fenced code blocks discovered in assistant messages,
// oldest first.
func (e *Engine) Snippets() []string {
	return e.snippets
}

// AwaitingResponse reports whether a turn is outstanding.
func (e *Engine) AwaitingResponse() bool {
	return e.conv.AwaitingResponse()
}

// StreamingText returns the partial assistant text of the turn in
// flight, empty when idle.
func (e *Engine) StreamingText() string {
	if e.turn == nil {
		return ""
	}
	return e.turn.Text()
}

// =============================================================================
// SUBMIT AND STREAM
// =============================================================================

// SubmitText admits a user message and starts the streaming turn.
// Returns false when the invariants reject the submission (empty text,
// or a response still outstanding), a silent no-op rather than an error.
//
// Ordering is deliberate: the user message is durable before any
// network I/O happens, so a crash mid-stream never loses the prompt.
func (e *Engine) SubmitText(ctx context.Context, text string) bool {
	msg, ok := e.conv.SubmitUserMessage(text)
	if !ok {
		return false
	}

	e.persistMessage(msg)
	e.writeChatLog()
	e.mode = ModeNormal

	turn, err := e.conv.BeginAssistantTurn()
	if err != nil {
		// Unreachable after an accepted submit; keep the state coherent.
		e.logger.Error("begin turn failed", "error", err)
		return true
	}
	e.turn = turn

	b, err := e.resolver.ForModel(e.modelID)
	if err != nil {
		// No backend for this model: the turn fails without network I/O.
		e.turn.Fail(err.Error())
		e.finalizeTurn()
		return true
	}

	req := e.buildRequest()
	e.events = make(chan stream.TurnEvent, 64)
	go stream.Run(ctx, b, req, e.events)
	return true
}

// buildRequest assembles the wire request for the current history.
// Reasoning-family models get neither system prompt nor temperature;
// whether a model is reasoning-family is decided in exactly one place,
// backend.Classify.
func (e *Engine) buildRequest() backend.Request {
	var msgs []backend.ChatMessage
	for _, m := range e.conv.Messages() {
		switch m.Role {
		case model.RoleUser:
			msgs = append(msgs, backend.ChatMessage{Role: "user", Content: m.Content})
		case model.RoleAssistant:
			msgs = append(msgs, backend.ChatMessage{Role: "assistant", Content: m.Content})
		}
		// Error messages are local bookkeeping, never sent upstream.
	}

	req := backend.Request{Model: e.modelID, Messages: msgs}
	if backend.Classify(e.modelID) == backend.FamilyStandard {
		sp := e.systemPrompt
		temp := e.temperature
		req.SystemPrompt = &sp
		req.Temperature = &temp
	}
	return req
}

// DrainEvents applies all queued worker events in arrival order and
// returns them. Called once per UI tick; never blocks.
func (e *Engine) DrainEvents() []stream.TurnEvent {
	var applied []stream.TurnEvent
	for e.events != nil {
		select {
		case ev, ok := <-e.events:
			if !ok {
				e.events = nil
				continue
			}
			e.apply(ev)
			applied = append(applied, ev)
		default:
			return applied
		}
	}
	return applied
}

func (e *Engine) apply(ev stream.TurnEvent) {
	if e.turn == nil {
		// Late event from an already-finalized turn.
		return
	}

	switch ev.Type {
	case stream.TurnStarted:
		e.turn.Start()
	case stream.TurnPartial:
		e.turn.ApplyPartial(ev.Text)
	case stream.TurnCompleted:
		e.turn.Complete(ev.Text)
		e.finalizeTurn()
	case stream.TurnFailed:
		e.turn.Fail(ev.Reason)
		e.finalizeTurn()
	}
}

// finalizeTurn folds the terminal turn into a durable message. Failed
// turns additionally raise the Notify banner; they are never retried.
func (e *Engine) finalizeTurn() {
	msg := e.conv.FinalizeTurn(e.turn)
	e.turn = nil
	e.events = nil
	if msg == nil {
		return
	}

	e.persistMessage(msg)
	e.writeChatLog()

	switch msg.Role {
	case model.RoleAssistant:
		e.snippets = append(e.snippets, snippet.FindFencedSnippets(msg.Content)...)
	case model.RoleError:
		e.notice = msg.Content
		e.mode = ModeNotify
	}
}

// =============================================================================
// MODEL SELECTION
// =============================================================================

// SelectModel re-targets future turns. The turn in flight, if any, is
// unaffected.
func (e *Engine) SelectModel(modelID string) {
	if modelID == "" {
		return
	}
	e.modelID = modelID
}

// =============================================================================
// REDO
// =============================================================================

// RedoLastTurn rolls back the last user turn: trailing assistant/error
// messages and the user message itself leave both memory and the store,
// and the user text comes back for re-editing. Store deletes are
// best-effort; the in-memory rollback is authoritative for the live
// session, so a partial persistence failure is logged and ignored.
func (e *Engine) RedoLastTurn() (string, bool) {
	text, popped, ok := e.conv.RedoLastUserTurn()
	if !ok {
		return "", false
	}

	if e.convID != 0 {
		for _, m := range popped {
			if err := e.store.DeleteMessage(e.convID, m); err != nil {
				e.logger.Warn("compensating delete failed",
					"conversation", e.convID, "role", m.Role, "error", err)
			}
		}
	}

	e.writeChatLog()
	e.mode = ModeEditing
	return text, true
}

// =============================================================================
// HISTORY
// =============================================================================

// LoadConversation replaces the live conversation with a stored one.
// Rejected while a turn is streaming.
func (e *Engine) LoadConversation(conversationID int64) error {
	msgs, err := e.store.ListMessages(conversationID)
	if err != nil {
		return err
	}

	if !e.conv.ReplaceHistory(conversationID, msgs) {
		return model.ErrTurnOutstanding
	}
	e.convID = conversationID

	if sp, err := e.store.SystemPrompt(conversationID); err == nil && sp != "" {
		e.systemPrompt = sp
	}

	e.snippets = nil
	for _, m := range msgs {
		if m.Role == model.RoleAssistant {
			e.snippets = append(e.snippets, snippet.FindFencedSnippets(m.Content)...)
		}
	}
	return nil
}

// NewSession puts aside the current conversation and starts a fresh,
// not-yet-persisted one. The stored rows of the old conversation remain.
// Rejected while a turn is streaming.
func (e *Engine) NewSession() bool {
	if e.conv.AwaitingResponse() {
		return false
	}
	e.conv = model.NewConversation(e.systemPrompt, e.modelID)
	e.convID = 0
	e.snippets = nil
	return true
}

// ListConversations returns stored conversations, newest first,
// optionally filtered by message text.
func (e *Engine) ListConversations(filter string) ([]storage.ConversationMeta, error) {
	return e.store.ListConversations(filter)
}

// DeleteConversation removes a stored conversation. Deleting the one
// currently loaded resets the engine to a fresh, unpersisted session.
// That reset is rejected while a turn is streaming: the outstanding
// worker still targets the live conversation.
func (e *Engine) DeleteConversation(conversationID int64) error {
	if conversationID == e.convID && e.conv.AwaitingResponse() {
		return model.ErrTurnOutstanding
	}
	if err := e.store.DeleteConversation(conversationID); err != nil {
		return err
	}
	if conversationID == e.convID {
		e.conv = model.NewConversation(e.systemPrompt, e.modelID)
		e.convID = 0
		e.snippets = nil
	}
	return nil
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// persistMessage writes a message durably, creating the conversation
// record lazily on first use. Storage failures never roll back the
// in-memory state: the live session stays usable, the loss is logged.
func (e *Engine) persistMessage(msg *model.Message) {
	if e.convID == 0 {
		id, err := e.store.CreateConversation(e.systemPrompt)
		if err != nil {
			e.logger.Error("create conversation failed", "error", err)
			return
		}
		e.convID = id
	}

	if err := e.store.AppendMessage(e.convID, msg); err != nil {
		e.logger.Error("persist message failed",
			"conversation", e.convID, "role", msg.Role, "error", err)
	}
}

// writeChatLog exports the transcript for external tooling. Best-effort.
func (e *Engine) writeChatLog() {
	if e.chatLogPath == "" {
		return
	}
	data := []byte(e.conv.Transcript())
	if err := util.AtomicWriteFileWithDir(e.chatLogPath, data, 0600, 0700); err != nil {
		e.logger.Warn("chat log write failed", "path", e.chatLogPath, "error", err)
	}
}
