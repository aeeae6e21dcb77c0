// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/ait-tui/internal/snippet"
	"github.com/jeranaias/ait-tui/internal/ui/styles"
	"github.com/jeranaias/ait-tui/internal/util"
)

// =============================================================================
// CODE BLOCK RENDERING
// =============================================================================

// RenderCodeBlock renders a code snippet with syntax highlighting and a
// language badge, used for the snippet picker preview. An empty style
// name means the default chroma style.
func RenderCodeBlock(theme *styles.Theme, code, language, style string, maxWidth int) string {
	var sb strings.Builder

	if language != "" {
		sb.WriteString(theme.PickerTitle.Render(language))
		sb.WriteByte('\n')
	}

	highlighted := snippet.HighlightStyled(code, language, style)
	for _, line := range strings.Split(strings.TrimRight(highlighted, "\n"), "\n") {
		if maxWidth > 0 {
			line = util.TruncateWidth(line, maxWidth)
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	return strings.TrimRight(sb.String(), "\n")
}

// SnippetPreview renders a one-line summary of a snippet for list rows.
func SnippetPreview(code string, maxWidth int) string {
	line := code
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	return util.TruncateWidth(line, maxWidth)
}
