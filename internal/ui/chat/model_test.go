// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ait-tui/internal/backend"
	"github.com/jeranaias/ait-tui/internal/session"
	"github.com/jeranaias/ait-tui/internal/storage"
	"github.com/jeranaias/ait-tui/internal/ui/sink"
	"github.com/jeranaias/ait-tui/internal/ui/styles"
)

// ===== TEST DOUBLES =====

type replayBackend struct {
	events []backend.Event
}

func (b *replayBackend) Name() string { return "replay" }

func (b *replayBackend) Stream(ctx context.Context, req backend.Request) (<-chan backend.Event, error) {
	ch := make(chan backend.Event, len(b.events))
	for _, ev := range b.events {
		ch <- ev
	}
	close(ch)
	return ch, nil
}

type replayResolver struct{ b backend.Backend }

func (r *replayResolver) ForModel(string) (backend.Backend, error) { return r.b, nil }

func testModel(t *testing.T, answer string) (*Model, *sink.MemorySink) {
	t.Helper()
	return testModelOpts(t, answer, nil)
}

func testModelOpts(t *testing.T, answer string, tweak func(*Options)) (*Model, *sink.MemorySink) {
	t.Helper()

	store, err := storage.Open(filepath.Join(t.TempDir(), "chats.db"))
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}

	be := &replayBackend{events: []backend.Event{
		{Type: backend.EventStart},
		{Type: backend.EventChunk, Content: answer},
		{Type: backend.EventDone},
	}}

	engine := session.New(session.Options{
		Store:        store,
		Resolver:     &replayResolver{b: be},
		SystemPrompt: "You are a helpful, friendly assistant.",
		ModelID:      "gpt-4o-mini",
		Temperature:  0.2,
		ChatLogPath:  filepath.Join(t.TempDir(), "latest-chat.log"),
	})

	mem := sink.NewMemory()
	opts := Options{
		Engine:       engine,
		Theme:        styles.NewTheme(),
		Sink:         mem,
		ShowSpinner:  true,
		RenderMarkup: true,
	}
	if tweak != nil {
		tweak(&opts)
	}
	m := New(opts)
	m.resize(100, 40)
	return m, mem
}

func pressKey(m *Model, s string) {
	var msg tea.KeyMsg
	switch s {
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+s":
		msg = tea.KeyMsg{Type: tea.KeyCtrlS}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	m.Update(msg)
}

// completeTurn submits text and pumps the drain loop until the turn
// finishes, like the tick loop would.
func completeTurn(t *testing.T, m *Model, text string) {
	t.Helper()
	if !m.engine.SubmitText(context.Background(), text) {
		t.Fatal("submit rejected")
	}
	deadline := time.Now().Add(2 * time.Second)
	for m.engine.AwaitingResponse() {
		if time.Now().After(deadline) {
			t.Fatal("turn never finished")
		}
		m.Update(tickMsg(time.Now()))
		time.Sleep(time.Millisecond)
	}
}

// ===== MODE DISPATCH =====

func TestUpdate_NormalModeTransitions(t *testing.T) {
	tests := []struct {
		key  string
		want session.Mode
	}{
		{"i", session.ModeEditing},
		{"m", session.ModeModelSelection},
		{"s", session.ModeSnippetSelection},
		{"h", session.ModeHistoryBrowsing},
		{"?", session.ModeHelp},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m, _ := testModel(t, "hi")
			pressKey(m, tt.key)
			if m.engine.Mode() != tt.want {
				t.Errorf("key %q: mode = %s, want %s", tt.key, m.engine.Mode(), tt.want)
			}
		})
	}
}

func TestUpdate_EscLeavesEditing(t *testing.T) {
	m, _ := testModel(t, "hi")
	pressKey(m, "i")
	pressKey(m, "esc")
	if m.engine.Mode() != session.ModeNormal {
		t.Errorf("mode = %s, want normal", m.engine.Mode())
	}
}

func TestUpdate_UnknownKeyIsNoOp(t *testing.T) {
	m, _ := testModel(t, "hi")
	pressKey(m, "x")
	if m.engine.Mode() != session.ModeNormal {
		t.Errorf("unknown key changed mode to %s", m.engine.Mode())
	}
}

func TestUpdate_SubmitViaCtrlS(t *testing.T) {
	m, _ := testModel(t, "answer")
	pressKey(m, "i")
	m.textarea.SetValue("question")
	pressKey(m, "ctrl+s")

	if m.textarea.Value() != "" {
		t.Error("textarea should reset after accepted submit")
	}
	if !m.engine.AwaitingResponse() {
		t.Error("engine should be awaiting after submit")
	}

	deadline := time.Now().Add(2 * time.Second)
	for m.engine.AwaitingResponse() && time.Now().Before(deadline) {
		m.Update(tickMsg(time.Now()))
		time.Sleep(time.Millisecond)
	}
	if n := len(m.engine.Conversation().Messages()); n != 2 {
		t.Errorf("got %d messages, want 2", n)
	}
}

func TestUpdate_EmptySubmitKeepsEditing(t *testing.T) {
	m, _ := testModel(t, "hi")
	pressKey(m, "i")
	pressKey(m, "ctrl+s")
	if m.engine.Mode() != session.ModeEditing {
		t.Errorf("rejected submit should stay in editing, mode = %s", m.engine.Mode())
	}
}

// ===== YANK AND SNIPPETS =====

func TestUpdate_YankLastAnswer(t *testing.T) {
	m, mem := testModel(t, "the answer")
	completeTurn(t, m, "question")

	pressKey(m, "y")
	if got, _ := mem.Read(); got != "the answer" {
		t.Errorf("sink = %q, want the last assistant message", got)
	}
}

func TestUpdate_SnippetCopy(t *testing.T) {
	m, mem := testModel(t, "```go\nfmt.Println(1)\n```")
	completeTurn(t, m, "code please")

	pressKey(m, "s")
	if m.snippetList.Len() != 1 {
		t.Fatalf("snippet list has %d items, want 1", m.snippetList.Len())
	}
	pressKey(m, "enter")

	got, _ := mem.Read()
	if !strings.Contains(got, "Println") {
		t.Errorf("sink = %q, want the snippet body", got)
	}
	if m.engine.Mode() != session.ModeNormal {
		t.Errorf("mode = %s, want normal after copy", m.engine.Mode())
	}
}

// ===== REDO =====

func TestUpdate_RedoPrefillsTextarea(t *testing.T) {
	m, _ := testModel(t, "b")
	completeTurn(t, m, "a")

	pressKey(m, "r")
	if m.textarea.Value() != "a" {
		t.Errorf("textarea = %q, want redone text", m.textarea.Value())
	}
	if m.engine.Mode() != session.ModeEditing {
		t.Errorf("mode = %s, want editing", m.engine.Mode())
	}
}

// ===== VIEW =====

func TestView_RendersTranscript(t *testing.T) {
	m, _ := testModel(t, "hello there")
	completeTurn(t, m, "hi")

	out := m.View()
	if !strings.Contains(out, "gpt-4o-mini") {
		t.Error("view should show the active model")
	}
	if !strings.Contains(m.viewport.View(), "hello there") {
		t.Error("viewport should contain the assistant answer")
	}
}

func TestView_HelpOverlay(t *testing.T) {
	m, _ := testModel(t, "hi")
	pressKey(m, "?")
	out := m.View()
	if !strings.Contains(out, "Key Bindings") {
		t.Error("help overlay missing")
	}
}

// ===== DISPLAY OPTIONS =====

func TestNew_MarkupDisabledUsesPassThrough(t *testing.T) {
	m, _ := testModelOpts(t, "hi", func(o *Options) { o.RenderMarkup = false })
	if got := m.md.Render("**bold**"); got != "**bold**" {
		t.Errorf("markup disabled: Render(%q) = %q, want raw text", "**bold**", got)
	}

	// Resize must not bring markdown back.
	m.resize(120, 50)
	if got := m.md.Render("**bold**"); got != "**bold**" {
		t.Errorf("after resize: Render(%q) = %q, want raw text", "**bold**", got)
	}
}

func TestView_SpinnerOffKeepsThinkingIndicator(t *testing.T) {
	m, _ := testModelOpts(t, "answer", func(o *Options) { o.ShowSpinner = false })
	if !m.engine.SubmitText(context.Background(), "hi") {
		t.Fatal("submit rejected")
	}

	if out := m.View(); !strings.Contains(out, "thinking") {
		t.Error("status bar should still say thinking with the spinner off")
	}

	deadline := time.Now().Add(2 * time.Second)
	for m.engine.AwaitingResponse() {
		if time.Now().After(deadline) {
			t.Fatal("turn never finished")
		}
		m.Update(tickMsg(time.Now()))
		time.Sleep(time.Millisecond)
	}
}

func TestRenderWidth(t *testing.T) {
	tests := []struct {
		name      string
		wrapWidth int
		width     int
		want      int
	}{
		{"zero tracks terminal", 0, 96, 96},
		{"cap applies", 72, 96, 72},
		{"wider than terminal ignored", 120, 96, 96},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderWidth(tt.wrapWidth, tt.width); got != tt.want {
				t.Errorf("renderWidth(%d, %d) = %d, want %d", tt.wrapWidth, tt.width, got, tt.want)
			}
		})
	}
}
