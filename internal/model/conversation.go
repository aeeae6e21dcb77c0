// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"strings"
	"time"
)

// ErrTurnOutstanding is returned when an assistant turn is requested while
// another one is still in flight.
var ErrTurnOutstanding = errors.New("assistant turn already outstanding")

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds the canonical in-memory message sequence for the one
// active chat session.
//
// The message order is insertion order and is never reordered. Once a turn
// completes, the projected role sequence never contains two consecutive
// messages of the same role: a user message is only admitted when every
// prior user message has a completed assistant (or error) answer.
//
// Mutation happens only on the UI-loop goroutine, so the type carries no
// locking.
type Conversation struct {
	// ID is the durable conversation id, 0 until the store allocates one
	// on the first persisted message.
	ID int64

	// SystemPrompt is fixed at creation time.
	SystemPrompt string

	// Model is the identifier backing subsequent turns. Switching the
	// model never rewrites history.
	Model string

	CreatedAt time.Time

	messages []*Message

	// awaiting is set while an assistant turn is outstanding. It is the
	// mutual-exclusion gate for submissions.
	awaiting bool
}

// NewConversation creates an empty conversation with the given system prompt
// and initial model.
func NewConversation(systemPrompt, modelID string) *Conversation {
	return &Conversation{
		SystemPrompt: systemPrompt,
		Model:        modelID,
		CreatedAt:    time.Now(),
	}
}

// =============================================================================
// MESSAGE ACCESS
// =============================================================================

// Messages returns the message sequence for read-only iteration by the UI.
func (c *Conversation) Messages() []*Message {
	return c.messages
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.messages) == 0
}

// LastMessage returns the most recent message, or nil if empty.
func (c *Conversation) LastMessage() *Message {
	if len(c.messages) == 0 {
		return nil
	}
	return c.messages[len(c.messages)-1]
}

// LastAssistantMessage returns the most recent assistant message, or nil.
func (c *Conversation) LastAssistantMessage() *Message {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == RoleAssistant {
			return c.messages[i]
		}
	}
	return nil
}

// AwaitingResponse reports whether an assistant turn is outstanding.
func (c *Conversation) AwaitingResponse() bool {
	return c.awaiting
}

// countRole counts completed messages with the given role.
func (c *Conversation) countRole(role Role) int {
	n := 0
	for _, m := range c.messages {
		if m.Role == role {
			n++
		}
	}
	return n
}

// =============================================================================
// TURN ADMISSION
// =============================================================================

// SubmitUserMessage appends a user message if the turn-admission rule allows
// it. Returns the appended message and true on success; (nil, false) when the
// text is empty or a prior turn has not yet been answered. Refusal is a
// silent no-op by design: both conditions are reachable through ordinary UI
// races and represent no loss of information.
func (c *Conversation) SubmitUserMessage(text string) (*Message, bool) {
	if text == "" {
		return nil, false
	}
	if c.awaiting {
		return nil, false
	}
	// A user turn is admitted only when every prior user message has a
	// terminal answer. Error answers count: a failed turn is answered.
	answered := c.countRole(RoleAssistant) + c.countRole(RoleError)
	if c.countRole(RoleUser) != answered {
		return nil, false
	}

	msg := NewUserMessage(text)
	c.messages = append(c.messages, msg)
	c.awaiting = true
	return msg, true
}

// BeginAssistantTurn creates a StreamingTurn for the outstanding user
// message. Fails if no response is awaited or a turn was already begun.
func (c *Conversation) BeginAssistantTurn() (*StreamingTurn, error) {
	if !c.awaiting {
		return nil, ErrTurnOutstanding
	}
	return NewStreamingTurn(), nil
}

// FinalizeTurn folds a terminal StreamingTurn into a terminal Message,
// appends it, and clears the awaiting flag. A completed turn becomes an
// assistant message (empty text allowed); a failed turn becomes an error
// message carrying the failure reason. Returns nil if the turn is not yet
// terminal.
func (c *Conversation) FinalizeTurn(turn *StreamingTurn) *Message {
	if turn == nil || !turn.Status().Terminal() {
		return nil
	}

	var msg *Message
	switch turn.Status() {
	case TurnCompleted:
		msg = NewAssistantMessage(turn.Text())
	case TurnFailed:
		msg = NewErrorMessage(turn.FailureReason())
	}

	c.messages = append(c.messages, msg)
	c.awaiting = false
	return msg
}

// =============================================================================
// REDO
// =============================================================================

// RedoLastUserTurn pops trailing assistant/error messages and then the
// trailing user message, returning the popped messages (oldest first) and
// the user text for re-editing. Returns ("", nil, false) when there is no
// trailing user message to redo or a turn is still streaming.
//
// The caller is responsible for issuing compensating persistence deletes for
// every popped message; the in-memory rollback is the source of truth for
// the active session, so persistence failures there are logged, not rolled
// back.
func (c *Conversation) RedoLastUserTurn() (string, []*Message, bool) {
	if c.awaiting {
		return "", nil, false
	}

	i := len(c.messages)
	for i > 0 && (c.messages[i-1].Role == RoleAssistant || c.messages[i-1].Role == RoleError) {
		i--
	}
	if i == 0 || c.messages[i-1].Role != RoleUser {
		return "", nil, false
	}

	popped := make([]*Message, len(c.messages)-(i-1))
	copy(popped, c.messages[i-1:])
	text := c.messages[i-1].Content
	c.messages = c.messages[:i-1]
	return text, popped, true
}

// =============================================================================
// HISTORY LOADING
// =============================================================================

// ReplaceHistory swaps in a message sequence loaded from the store, e.g.
// when the user recalls a past session. Rejected while a turn is streaming.
func (c *Conversation) ReplaceHistory(id int64, msgs []*Message) bool {
	if c.awaiting {
		return false
	}
	c.ID = id
	c.messages = msgs
	return true
}

// Transcript renders the conversation as a plain-text chat log, one
// "<Role>: <text>" block per message.
func (c *Conversation) Transcript() string {
	var sb strings.Builder
	for _, m := range c.messages {
		switch m.Role {
		case RoleUser:
			sb.WriteString("User: ")
		case RoleAssistant:
			sb.WriteString("Assistant: ")
		case RoleError:
			sb.WriteString("Error: ")
		}
		sb.WriteString(m.Content)
		sb.WriteByte('\n')
	}
	return sb.String()
}
