// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ait-tui/internal/session"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update is the Bubble Tea update loop. Key events dispatch on the
// engine's interaction mode; everything else is plumbing.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tickMsg:
		events := m.engine.DrainEvents()
		if len(events) > 0 {
			m.refreshSnippets()
			m.refreshViewport()
		}
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case modelsLoadedMsg:
		m.syncModelPicker(msg.choices)
		return m, nil

	case ConfigReloadedMsg:
		m.engine.SelectModel(msg.ModelID)
		return m, m.loadModelsCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.engine.Mode() {
	case session.ModeNormal:
		return m.handleNormalKey(msg)
	case session.ModeEditing:
		return m.handleEditingKey(msg)
	case session.ModeModelSelection:
		return m.handleModelKey(msg)
	case session.ModeSnippetSelection:
		return m.handleSnippetKey(msg)
	case session.ModeHistoryBrowsing:
		return m.handleHistoryKey(msg)
	case session.ModeHelp:
		return m.handleHelpKey(msg)
	case session.ModeNotify:
		// Any key dismisses the banner.
		m.engine.Handle(session.CmdDismiss)
		return m, nil
	}
	return m, nil
}

// =============================================================================
// MODE HANDLERS
// =============================================================================

func (m *Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.engine.Handle(session.CmdQuit)
		return m, tea.Quit
	case "i":
		m.engine.Handle(session.CmdStartEditing)
		m.textarea.Focus()
		return m, nil
	case "m":
		m.engine.Handle(session.CmdOpenModelPicker)
		return m, m.loadModelsCmd()
	case "s":
		m.refreshSnippets()
		m.engine.Handle(session.CmdOpenSnippetPicker)
		return m, nil
	case "h":
		m.refreshHistory()
		m.engine.Handle(session.CmdOpenHistory)
		return m, nil
	case "?":
		m.engine.Handle(session.CmdOpenHelp)
		return m, nil
	case "y":
		if last := m.engine.Conversation().LastAssistantMessage(); last != nil {
			_ = m.sink.Write(last.Content)
		}
		return m, nil
	case "r":
		if text, ok := m.engine.RedoLastTurn(); ok {
			m.textarea.SetValue(text)
			m.textarea.Focus()
			m.refreshViewport()
		}
		return m, nil
	case "n":
		if m.engine.NewSession() {
			m.refreshSnippets()
			m.refreshViewport()
		}
		return m, nil
	case "up", "k":
		m.viewport.LineUp(1)
		return m, nil
	case "down", "j":
		m.viewport.LineDown(1)
		return m, nil
	case "g", "home":
		m.viewport.GotoTop()
		return m, nil
	case "G", "end":
		m.viewport.GotoBottom()
		return m, nil
	}
	return m, nil
}

func (m *Model) handleEditingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.engine.Handle(session.CmdDismiss)
		m.textarea.Blur()
		return m, nil
	case "ctrl+s":
		text := m.textarea.Value()
		if m.engine.SubmitText(context.Background(), text) {
			m.textarea.Reset()
			m.textarea.Blur()
			m.refreshViewport()
			m.viewport.GotoBottom()
		}
		return m, nil
	case "ctrl+v":
		if content, err := m.sink.Read(); err == nil {
			m.textarea.InsertString(content)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m *Model) handleModelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "m":
		m.engine.Handle(session.CmdDismiss)
	case "j", "down":
		m.modelPicker.Next()
	case "k", "up":
		m.modelPicker.Prev()
	case "g", "home":
		m.modelPicker.First()
	case "G", "end":
		m.modelPicker.Last()
	case "h", "left":
		m.modelPicker.Deselect()
	case "enter":
		if i := m.modelPicker.Cursor(); i >= 0 && i < len(m.modelChoices) {
			m.modelPicker.MarkCurrent()
			m.engine.SelectModel(m.modelChoices[i].ID)
			m.engine.SetMode(session.ModeEditing)
			m.textarea.Focus()
		}
	}
	return m, nil
}

func (m *Model) handleSnippetKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "s":
		m.engine.Handle(session.CmdDismiss)
	case "j", "down":
		m.snippetList.Next()
	case "k", "up":
		m.snippetList.Prev()
	case "g", "home":
		m.snippetList.First()
	case "G", "end":
		m.snippetList.Last()
	case "enter", "y":
		if item, ok := m.snippetList.Current(); ok {
			_ = m.sink.Write(item.Text)
			m.engine.Handle(session.CmdDismiss)
		}
	}
	return m, nil
}

func (m *Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.engine.Handle(session.CmdDismiss)
	case "j", "down":
		m.historyPicker.Next()
	case "k", "up":
		m.historyPicker.Prev()
	case "g", "home":
		m.historyPicker.First()
	case "G", "end":
		m.historyPicker.Last()
	case "enter":
		if i := m.historyPicker.Cursor(); i >= 0 && i < len(m.historyMetas) {
			if err := m.engine.LoadConversation(m.historyMetas[i].ID); err == nil {
				m.engine.Handle(session.CmdDismiss)
				m.refreshSnippets()
				m.refreshViewport()
				m.viewport.GotoBottom()
			}
		}
	case "d":
		if i := m.historyPicker.Cursor(); i >= 0 && i < len(m.historyMetas) {
			if err := m.engine.DeleteConversation(m.historyMetas[i].ID); err == nil {
				m.refreshHistory()
				m.refreshViewport()
			}
		}
	}
	return m, nil
}

func (m *Model) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "?":
		m.engine.Handle(session.CmdDismiss)
	}
	return m, nil
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	m.md = m.newRenderer(width - 4)
	m.textarea.SetWidth(width - 4)

	viewportHeight := height - m.textarea.Height() - chromeHeight
	if viewportHeight < 3 {
		viewportHeight = 3
	}
	if !m.ready {
		m.viewport = newViewport(width, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = viewportHeight
	}
	m.refreshViewport()
}
