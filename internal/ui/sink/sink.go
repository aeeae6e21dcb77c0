// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sink abstracts where yanked text goes. The UI receives a
// TextSink as an explicit capability instead of reaching for a global
// clipboard, so headless environments and tests can substitute their own.
package sink

import "github.com/atotto/clipboard"

// TextSink receives yanked text: snippets, assistant answers.
type TextSink interface {
	// Write replaces the sink's content with text.
	Write(text string) error
	// Read returns the sink's current content, used for paste.
	Read() (string, error)
}

// =============================================================================
// CLIPBOARD SINK
// =============================================================================

// ClipboardSink writes to the system clipboard.
type ClipboardSink struct{}

// NewClipboard returns the system clipboard sink.
func NewClipboard() *ClipboardSink {
	return &ClipboardSink{}
}

func (ClipboardSink) Write(text string) error {
	return clipboard.WriteAll(text)
}

func (ClipboardSink) Read() (string, error) {
	return clipboard.ReadAll()
}

// =============================================================================
// MEMORY SINK
// =============================================================================

// MemorySink holds yanked text in memory. Used in tests and when no
// system clipboard is available.
type MemorySink struct {
	content string
}

// NewMemory returns an in-memory sink.
func NewMemory() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Write(text string) error {
	s.content = text
	return nil
}

func (s *MemorySink) Read() (string, error) {
	return s.content, nil
}
