// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jeranaias/ait-tui/internal/model"
	"github.com/jeranaias/ait-tui/internal/util"
)

// =============================================================================
// CONVERSATION METADATA
// =============================================================================

// ConversationMeta contains metadata for listing conversations.
type ConversationMeta struct {
	ID           int64
	StartedAt    time.Time
	MessageCount int
	Preview      string // First user message, truncated
}

// =============================================================================
// CREATE OPERATIONS
// =============================================================================

// CreateConversation allocates a new conversation record and returns
// its identifier. Identifiers are monotonically increasing and never
// reused (AUTOINCREMENT).
func (s *Store) CreateConversation(systemPrompt string) (int64, error) {
	db, err := s.open()
	if err != nil {
		return 0, err
	}
	defer db.Close()

	res, err := db.Exec(
		"INSERT INTO conversations (system_prompt) VALUES (?)",
		systemPrompt,
	)
	if err != nil {
		return 0, fmt.Errorf("could not create new conversation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("could not read new conversation id: %w", err)
	}
	return id, nil
}

// AppendMessage appends one durable message row. Callers always
// create-then-append; appending to an id that was never created is a
// caller bug, not a supported operation.
func (s *Store) AppendMessage(conversationID int64, msg *model.Message) error {
	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec(
		"INSERT INTO messages (conversation_id, sender, message_text) VALUES (?, ?, ?)",
		conversationID, msg.Role.Sender(), msg.Content,
	)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// =============================================================================
// DELETE OPERATIONS
// =============================================================================

// DeleteMessage removes the newest row matching (conversation, role,
// exact text). This is a best-effort compensating operation for redo;
// matching the newest row keeps behavior deterministic when the same
// text appears more than once in a conversation.
func (s *Store) DeleteMessage(conversationID int64, msg *model.Message) error {
	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec(
		`DELETE FROM messages WHERE message_id = (
			SELECT MAX(message_id) FROM messages
			WHERE conversation_id = ? AND sender = ? AND message_text = ?
		)`,
		conversationID, msg.Role.Sender(), msg.Content,
	)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

// DeleteConversation removes all messages then the conversation
// record. The two deletes are separate statements; if the second fails
// the listing still behaves correctly because it trusts conversation
// records only.
func (s *Store) DeleteConversation(conversationID int64) error {
	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Exec(
		"DELETE FROM messages WHERE conversation_id = ?", conversationID,
	); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	if _, err := db.Exec(
		"DELETE FROM conversations WHERE conversation_id = ?", conversationID,
	); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}

// =============================================================================
// LIST OPERATIONS
// =============================================================================

// ListConversations returns conversation metadata, newest first. A
// non-empty filter restricts the result to conversations containing at
// least one message whose text matches the filter (SQL LIKE, substring).
func (s *Store) ListConversations(filter string) ([]ConversationMeta, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var rows *sql.Rows
	if filter != "" {
		rows, err = db.Query(
			`SELECT DISTINCT c.conversation_id, c.started_at
			 FROM conversations c
			 JOIN messages m ON c.conversation_id = m.conversation_id
			 WHERE m.message_text LIKE ?
			 ORDER BY c.conversation_id DESC`,
			"%"+filter+"%",
		)
	} else {
		rows, err = db.Query(
			`SELECT conversation_id, started_at
			 FROM conversations
			 ORDER BY conversation_id DESC`,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations table: %w", err)
	}
	defer rows.Close()

	var metas []ConversationMeta
	for rows.Next() {
		var meta ConversationMeta
		var startedAt string
		if err := rows.Scan(&meta.ID, &startedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation row: %w", err)
		}
		meta.StartedAt = parseDBTime(startedAt)
		metas = append(metas, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read conversation rows: %w", err)
	}

	for i := range metas {
		if err := s.fillMeta(db, &metas[i]); err != nil {
			return nil, err
		}
	}
	return metas, nil
}

// fillMeta adds message count and first-user-message preview to a
// conversation row.
func (s *Store) fillMeta(db *sql.DB, meta *ConversationMeta) error {
	if err := db.QueryRow(
		"SELECT COUNT(*) FROM messages WHERE conversation_id = ?", meta.ID,
	).Scan(&meta.MessageCount); err != nil {
		return fmt.Errorf("failed to count messages: %w", err)
	}

	var preview string
	err := db.QueryRow(
		`SELECT message_text FROM messages
		 WHERE conversation_id = ? AND sender = 'human'
		 ORDER BY message_id LIMIT 1`,
		meta.ID,
	).Scan(&preview)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to read preview: %w", err)
	}
	meta.Preview = util.TruncateRunes(preview, 80)
	return nil
}

// ListMessages returns all messages of a conversation in insertion
// order. Rows with an unrecognized sender load as Error messages
// rather than being dropped.
func (s *Store) ListMessages(conversationID int64) ([]*model.Message, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var exists int
	if err := db.QueryRow(
		"SELECT COUNT(*) FROM conversations WHERE conversation_id = ?", conversationID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check conversation: %w", err)
	}
	if exists == 0 {
		return nil, ErrConversationNotFound
	}

	rows, err := db.Query(
		`SELECT sender, message_text, timestamp FROM messages
		 WHERE conversation_id = ? ORDER BY message_id`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages table: %w", err)
	}
	defer rows.Close()

	var msgs []*model.Message
	for rows.Next() {
		var sender, text, ts string
		if err := rows.Scan(&sender, &text, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		msg := model.NewMessage(model.RoleFromSender(sender), text)
		msg.Timestamp = parseDBTime(ts)
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read message rows: %w", err)
	}
	return msgs, nil
}

// SystemPrompt returns the system prompt a conversation was created
// with.
func (s *Store) SystemPrompt(conversationID int64) (string, error) {
	db, err := s.open()
	if err != nil {
		return "", err
	}
	defer db.Close()

	var prompt string
	err = db.QueryRow(
		"SELECT system_prompt FROM conversations WHERE conversation_id = ?",
		conversationID,
	).Scan(&prompt)
	if err == sql.ErrNoRows {
		return "", ErrConversationNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read system prompt: %w", err)
	}
	return prompt, nil
}

// =============================================================================
// MESSAGE SEARCH
// =============================================================================

// SearchMessages returns conversations with at least one message whose
// text contains the query under Unicode case folding. SQL LIKE is only
// case-insensitive for ASCII, so the match runs in Go.
func (s *Store) SearchMessages(query string) ([]ConversationMeta, error) {
	all, err := s.ListConversations("")
	if err != nil {
		return nil, err
	}
	if query == "" {
		return all, nil
	}

	var results []ConversationMeta
	for _, meta := range all {
		msgs, err := s.ListMessages(meta.ID)
		if err != nil {
			continue
		}
		for _, msg := range msgs {
			if util.ContainsFold(msg.Content, query) {
				results = append(results, meta)
				break
			}
		}
	}
	return results, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// parseDBTime parses SQLite's CURRENT_TIMESTAMP text format. Returns
// the zero time when the value doesn't parse.
func parseDBTime(s string) time.Time {
	for _, layout := range []string{
		"2006-01-02 15:04:05",
		time.RFC3339,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
