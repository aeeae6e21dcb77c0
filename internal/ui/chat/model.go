// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ait-tui/internal/backend"
	"github.com/jeranaias/ait-tui/internal/session"
	"github.com/jeranaias/ait-tui/internal/snippet"
	"github.com/jeranaias/ait-tui/internal/storage"
	"github.com/jeranaias/ait-tui/internal/ui/components"
	"github.com/jeranaias/ait-tui/internal/ui/sink"
	"github.com/jeranaias/ait-tui/internal/ui/styles"
)

// drainInterval is how often queued stream events are applied. Fast
// enough to feel live, slow enough to batch bursts of chunks.
const drainInterval = 50 * time.Millisecond

// =============================================================================
// MESSAGES
// =============================================================================

type tickMsg time.Time

type modelsLoadedMsg struct {
	choices []backend.ModelChoice
}

// ConfigReloadedMsg announces an on-disk config change. Sent from the
// file watcher goroutine through the program queue so the engine is
// mutated on the UI goroutine only.
type ConfigReloadedMsg struct {
	ModelID string
}

// =============================================================================
// MODEL LISTER
// =============================================================================

// ModelLister enumerates selectable models. *backend.Registry satisfies it.
type ModelLister interface {
	AvailableModels(ctx context.Context) []backend.ModelChoice
}

// =============================================================================
// TEA MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	engine *session.Engine
	theme  *styles.Theme
	sink   sink.TextSink
	lister ModelLister
	keys   KeyMap
	md     *components.MarkdownRenderer

	showSpinner  bool
	renderMarkup bool
	wrapWidth    int
	syntaxTheme  string

	textarea textarea.Model
	viewport viewport.Model
	spin     spinner.Model

	modelPicker   *components.Picker
	modelChoices  []backend.ModelChoice
	historyPicker *components.Picker
	historyMetas  []storage.ConversationMeta
	snippetList   *snippet.List

	width  int
	height int
	ready  bool
}

// Options configures the chat screen. ShowSpinner, RenderMarkup,
// WrapWidth and SyntaxTheme come straight from the config file.
type Options struct {
	Engine *session.Engine
	Theme  *styles.Theme
	Sink   sink.TextSink
	Lister ModelLister

	ShowSpinner  bool
	RenderMarkup bool
	WrapWidth    int // 0 = track terminal width
	SyntaxTheme  string
}

// New creates the chat screen model.
func New(opts Options) *Model {
	ta := textarea.New()
	ta.Placeholder = "Ask anything. Ctrl+S sends."
	ta.ShowLineNumbers = false
	ta.SetHeight(4)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = opts.Theme.Spinner

	m := &Model{
		engine:        opts.Engine,
		theme:         opts.Theme,
		sink:          opts.Sink,
		lister:        opts.Lister,
		keys:          DefaultKeyMap(),
		showSpinner:   opts.ShowSpinner,
		renderMarkup:  opts.RenderMarkup,
		wrapWidth:     opts.WrapWidth,
		syntaxTheme:   opts.SyntaxTheme,
		textarea:      ta,
		spin:          sp,
		modelPicker:   components.NewPicker("Models", nil),
		historyPicker: components.NewPicker("History", nil),
		snippetList:   snippet.NewList(nil),
	}
	m.md = m.newRenderer(80)
	return m
}

// renderWidth caps the markdown wrap width at the configured value.
func renderWidth(wrapWidth, width int) int {
	if wrapWidth > 0 && wrapWidth < width {
		return wrapWidth
	}
	return width
}

func (m *Model) newRenderer(width int) *components.MarkdownRenderer {
	if !m.renderMarkup {
		return components.NewPlainRenderer()
	}
	return components.NewMarkdownRenderer(renderWidth(m.wrapWidth, width))
}

// Init starts the tick loop and model discovery.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spin.Tick, tickCmd(), m.loadModelsCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(drainInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// loadModelsCmd queries every configured provider plus Ollama. Slow or
// absent providers just shrink the list.
func (m *Model) loadModelsCmd() tea.Cmd {
	return func() tea.Msg {
		if m.lister == nil {
			return modelsLoadedMsg{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return modelsLoadedMsg{choices: m.lister.AvailableModels(ctx)}
	}
}

// refreshHistory reloads the stored conversation list for the browser.
func (m *Model) refreshHistory() {
	metas, err := m.engine.ListConversations("")
	if err != nil {
		return
	}
	m.historyMetas = metas

	items := make([]components.PickerItem, len(metas))
	for i, meta := range metas {
		label := fmt.Sprintf("#%d  %s  (%d msgs)  %s",
			meta.ID,
			meta.StartedAt.Format("2006-01-02 15:04"),
			meta.MessageCount,
			meta.Preview)
		items[i] = components.PickerItem{Label: label}
	}
	m.historyPicker.SetItems(items)
}

// refreshSnippets rebuilds the snippet list from the engine's discoveries.
func (m *Model) refreshSnippets() {
	m.snippetList = snippet.NewList(m.engine.Snippets())
	m.snippetList.First()
}

// syncModelPicker rebuilds the picker rows from discovered models,
// marking the engine's active one.
func (m *Model) syncModelPicker(choices []backend.ModelChoice) {
	items := make([]components.PickerItem, len(choices))
	for i, c := range choices {
		items[i] = components.PickerItem{
			Label:    fmt.Sprintf("%-10s %s", c.Provider, c.ID),
			Selected: c.ID == m.engine.ModelID(),
		}
	}
	m.modelPicker.SetItems(items)
	m.modelChoices = choices
}
