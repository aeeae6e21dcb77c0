// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ait-tui/internal/session"
	"github.com/jeranaias/ait-tui/internal/snippet"
	"github.com/jeranaias/ait-tui/internal/ui/components"
)

// chromeHeight is header + input border + status bar.
const chromeHeight = 6

func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.MouseWheelEnabled = true
	return vp
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the full screen.
func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var sections []string
	sections = append(sections, m.headerView())

	switch m.engine.Mode() {
	case session.ModeModelSelection:
		sections = append(sections, m.modelPicker.View(m.theme, m.width))
	case session.ModeSnippetSelection:
		sections = append(sections, m.snippetView())
	case session.ModeHistoryBrowsing:
		sections = append(sections, m.historyPicker.View(m.theme, m.width))
	case session.ModeHelp:
		sections = append(sections, m.helpView())
	default:
		sections = append(sections, m.viewport.View())
	}

	if m.engine.Mode() == session.ModeNotify {
		sections = append(sections, m.theme.NotifyBanner.Render(m.engine.Notice()))
	}

	sections = append(sections, m.inputView(), m.statusView())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) headerView() string {
	title := fmt.Sprintf("ait - %s", m.engine.ModelID())
	return m.theme.Header.Width(m.width).Render(title)
}

func (m *Model) inputView() string {
	style := m.theme.InputContainer
	if m.engine.Mode() == session.ModeEditing {
		style = m.theme.InputFocused
	}
	return style.Width(m.width - 2).Render(m.textarea.View())
}

func (m *Model) statusView() string {
	var hints []string
	add := func(k, desc string) {
		hints = append(hints,
			m.theme.ShortcutKey.Render(k)+" "+m.theme.ShortcutDesc.Render(desc))
	}

	switch m.engine.Mode() {
	case session.ModeEditing:
		add("C-s", "send")
		add("C-v", "paste")
		add("Esc", "done")
	case session.ModeModelSelection, session.ModeSnippetSelection, session.ModeHistoryBrowsing:
		add("j/k", "move")
		add("Enter", "select")
		add("Esc", "back")
	case session.ModeNotify:
		add("any key", "dismiss")
	default:
		add("i", "write")
		add("m", "models")
		add("s", "snippets")
		add("h", "history")
		add("?", "help")
		add("q", "quit")
	}

	status := strings.Join(hints, "  ")
	if m.engine.AwaitingResponse() {
		thinking := "thinking"
		if m.showSpinner {
			thinking = m.spin.View() + " " + thinking
		}
		status = thinking + "  " + status
	}
	return m.theme.StatusBar.Width(m.width).Render(status)
}

// snippetView renders the snippet list with a highlighted preview of
// the row under the cursor.
func (m *Model) snippetView() string {
	if m.snippetList.Len() == 0 {
		return m.theme.PickerBox.Render(
			m.theme.PickerTitle.Render("Snippets") + "\n" +
				m.theme.ShortcutDesc.Render("no code snippets discovered yet"))
	}

	var sb strings.Builder
	sb.WriteString(m.theme.PickerTitle.Render("Snippets"))
	sb.WriteByte('\n')

	for i, item := range m.snippetList.Items() {
		marker := "  "
		if i == m.snippetList.Cursor() {
			marker = m.theme.PickerCursor.Render("> ")
		}
		sb.WriteString(marker)
		sb.WriteString(components.SnippetPreview(item.Text, m.width-8))
		sb.WriteByte('\n')
	}

	if current, ok := m.snippetList.Current(); ok {
		lang := ""
		if last := m.engine.Conversation().LastAssistantMessage(); last != nil {
			lang = snippet.FenceLanguage(last.Content)
		}
		sb.WriteByte('\n')
		sb.WriteString(components.RenderCodeBlock(m.theme, current.Text, lang, m.syntaxTheme, m.width-8))
	}

	return m.theme.PickerBox.Render(strings.TrimRight(sb.String(), "\n"))
}

func (m *Model) helpView() string {
	bindings := []struct{ key, desc string }{
		{m.keys.Edit.Help().Key, m.keys.Edit.Help().Desc},
		{m.keys.Models.Help().Key, m.keys.Models.Help().Desc},
		{m.keys.Snippets.Help().Key, m.keys.Snippets.Help().Desc},
		{m.keys.History.Help().Key, m.keys.History.Help().Desc},
		{m.keys.Yank.Help().Key, m.keys.Yank.Help().Desc},
		{m.keys.Redo.Help().Key, m.keys.Redo.Help().Desc},
		{m.keys.NewChat.Help().Key, m.keys.NewChat.Help().Desc},
		{m.keys.Up.Help().Key, m.keys.Up.Help().Desc},
		{m.keys.Down.Help().Key, m.keys.Down.Help().Desc},
		{m.keys.Top.Help().Key, m.keys.Top.Help().Desc},
		{m.keys.Bottom.Help().Key, m.keys.Bottom.Help().Desc},
		{m.keys.Submit.Help().Key, m.keys.Submit.Help().Desc},
		{m.keys.Quit.Help().Key, m.keys.Quit.Help().Desc},
	}

	var sb strings.Builder
	sb.WriteString(m.theme.PickerTitle.Render("Key Bindings"))
	sb.WriteString("\n\n")
	for _, b := range bindings {
		sb.WriteString(fmt.Sprintf("%s  %s\n",
			m.theme.ShortcutKey.Render(fmt.Sprintf("%-8s", b.key)),
			m.theme.ShortcutDesc.Render(b.desc)))
	}
	return m.theme.HelpBox.Render(strings.TrimRight(sb.String(), "\n"))
}

// refreshViewport re-renders the transcript into the viewport.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	var blocks []string
	for _, msg := range m.engine.Conversation().Messages() {
		blocks = append(blocks, components.RenderMessage(m.theme, m.md, msg))
	}

	if m.engine.AwaitingResponse() {
		if text := m.engine.StreamingText(); text != "" {
			blocks = append(blocks, components.RenderStreaming(m.theme, text))
		}
	}

	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(strings.Join(blocks, "\n\n"))
	// STREAMING: follow the tail unless the user scrolled away.
	if atBottom {
		m.viewport.GotoBottom()
	}
}
