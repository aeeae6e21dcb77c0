// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/jeranaias/ait-tui/internal/model"
	"github.com/jeranaias/ait-tui/internal/ui/styles"
)

// ===== PICKER =====

func TestPicker_CursorMovement(t *testing.T) {
	p := NewPicker("Models", []PickerItem{
		{Label: "gpt-4o-mini"},
		{Label: "gpt-4o"},
		{Label: "o3-mini"},
	})

	if p.Cursor() != 0 {
		t.Errorf("initial cursor = %d, want 0", p.Cursor())
	}

	p.Next()
	p.Next()
	p.Next() // clamped
	if p.Cursor() != 2 {
		t.Errorf("cursor = %d, want 2 (clamped)", p.Cursor())
	}

	p.First()
	p.Prev() // clamped
	if p.Cursor() != 0 {
		t.Errorf("cursor = %d, want 0 (clamped)", p.Cursor())
	}

	p.Last()
	if cur, ok := p.Current(); !ok || cur.Label != "o3-mini" {
		t.Errorf("Current() = %+v, want o3-mini", cur)
	}
}

func TestPicker_Empty(t *testing.T) {
	p := NewPicker("Models", nil)
	if p.Cursor() != -1 {
		t.Errorf("empty picker cursor = %d, want -1", p.Cursor())
	}
	if _, ok := p.Current(); ok {
		t.Error("empty picker should have no current item")
	}
	p.Next()
	p.MarkCurrent() // must not panic
}

func TestPicker_MarkCurrentIsExclusive(t *testing.T) {
	p := NewPicker("Models", []PickerItem{
		{Label: "a", Selected: true},
		{Label: "b"},
	})
	p.Next()
	p.MarkCurrent()

	if p.Items[0].Selected {
		t.Error("previous selection should be cleared")
	}
	if !p.Items[1].Selected {
		t.Error("current item should be selected")
	}
}

func TestPicker_SetItemsClampsCursor(t *testing.T) {
	p := NewPicker("History", []PickerItem{{Label: "a"}, {Label: "b"}, {Label: "c"}})
	p.Last()
	p.SetItems([]PickerItem{{Label: "x"}})
	if p.Cursor() != 0 {
		t.Errorf("cursor = %d, want clamped to 0", p.Cursor())
	}
}

// ===== MESSAGE RENDERING =====

func TestRenderMessage(t *testing.T) {
	theme := styles.NewTheme()
	md := NewMarkdownRenderer(80)

	user := RenderMessage(theme, md, model.NewUserMessage("hello"))
	if !strings.Contains(user, "hello") {
		t.Error("user message body missing")
	}

	errMsg := RenderMessage(theme, md, model.NewErrorMessage("it broke"))
	if !strings.Contains(errMsg, "it broke") {
		t.Error("error message body missing")
	}

	asst := RenderMessage(theme, md, model.NewAssistantMessage("plain answer"))
	if !strings.Contains(asst, "answer") {
		t.Error("assistant message body missing")
	}
}

func TestSnippetPreview(t *testing.T) {
	got := SnippetPreview("first line\nsecond line", 40)
	if strings.Contains(got, "second") {
		t.Errorf("preview should be single line, got %q", got)
	}
	if !strings.Contains(got, "first line") {
		t.Errorf("preview = %q, want first line", got)
	}
}
