// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/ait-tui/internal/model"
	"github.com/jeranaias/ait-tui/internal/ui/styles"
)

// =============================================================================
// MARKDOWN RENDERER
// =============================================================================

// MarkdownRenderer wraps a glamour renderer pinned to a wrap width.
// Rebuilt on terminal resize rather than per message.
type MarkdownRenderer struct {
	renderer *glamour.TermRenderer
}

// NewMarkdownRenderer creates a renderer for the given wrap width.
// Returns a pass-through renderer when glamour cannot initialize
// (e.g. no TTY), so rendering never fails.
func NewMarkdownRenderer(wrapWidth int) *MarkdownRenderer {
	if wrapWidth < 20 {
		wrapWidth = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return &MarkdownRenderer{}
	}
	return &MarkdownRenderer{renderer: r}
}

// NewPlainRenderer creates a pass-through renderer that leaves markup
// untouched, for render_markup = false.
func NewPlainRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Render renders markdown, falling back to the raw text on error.
func (m *MarkdownRenderer) Render(text string) string {
	if m.renderer == nil {
		return text
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// =============================================================================
// MESSAGE RENDERING
// =============================================================================

// RenderMessage renders one conversation message as a labeled block.
// Assistant messages go through the markdown renderer; user and error
// messages stay verbatim.
func RenderMessage(theme *styles.Theme, md *MarkdownRenderer, msg *model.Message) string {
	var label string
	body := msg.Content

	switch msg.Role {
	case model.RoleUser:
		label = theme.UserLabel.Render("You")
	case model.RoleAssistant:
		label = theme.AssistantLabel.Render("Assistant")
		body = md.Render(body)
	case model.RoleError:
		label = theme.ErrorLabel.Render("Error")
	default:
		label = msg.Role.DisplayName()
	}

	return label + "\n" + theme.MessageBody.Render(body)
}

// RenderStreaming renders the in-flight assistant text. Markdown is
// skipped while streaming: partial fences render badly.
func RenderStreaming(theme *styles.Theme, text string) string {
	label := theme.AssistantLabel.Render("Assistant")
	return label + "\n" + theme.StreamingBody.Render(text)
}
