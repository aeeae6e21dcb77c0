// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleError     Role = "error"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleError:
		return "Error"
	default:
		return string(r)
	}
}

// Sender returns the durable sender tag used by the persistence layer.
// The on-disk vocabulary predates the Role type and is kept stable so old
// databases remain readable.
func (r Role) Sender() string {
	switch r {
	case RoleUser:
		return "human"
	case RoleAssistant:
		return "assistant"
	case RoleError:
		return "error"
	default:
		return string(r)
	}
}

// RoleFromSender converts a durable sender tag back into a Role.
// Unknown tags map to RoleError so corrupted rows stay visible rather than
// silently disappearing.
func RoleFromSender(sender string) Role {
	switch sender {
	case "human":
		return RoleUser
	case "assistant":
		return RoleAssistant
	case "error":
		return RoleError
	default:
		return RoleError
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single terminal entry in a conversation transcript.
// Messages are exclusively owned by the Conversation that contains them and
// are copied, never shared, into the persistence layer.
type Message struct {
	// ID correlates the in-memory message with UI updates. It is not the
	// durable row id; those are allocated by the store.
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        "msg_" + uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) *Message {
	return NewMessage(RoleAssistant, content)
}

// NewErrorMessage creates a new error message.
func NewErrorMessage(content string) *Message {
	return NewMessage(RoleError, content)
}

// Preview returns a truncated single-line preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
