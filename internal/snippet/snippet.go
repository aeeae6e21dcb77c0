// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package snippet derives code-block artifacts from message text.
// Extraction is a pure function of the input; the package holds no
// state beyond the selection list the UI layer drives.
package snippet

import (
	"strings"
)

// =============================================================================
// FENCED SNIPPET EXTRACTION
// =============================================================================

// FindFencedSnippets extracts fenced code blocks from text.
//
// A line whose leading whitespace is followed by ``` toggles fence
// state. Fence lines themselves (including any language tag) are not
// part of the snippet, indentation inside the fence is preserved, and
// the trailing newline is trimmed from each snippet. An unclosed fence
// at end of input is dropped rather than emitted half-formed.
func FindFencedSnippets(text string) []string {
	return FindInLines(strings.Split(text, "\n"))
}

// FindInLines is the line-oriented form of FindFencedSnippets. The
// session engine uses it to scan a whole transcript without first
// joining messages into one string.
func FindInLines(lines []string) []string {
	var snippets []string
	var current strings.Builder
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(strings.TrimLeft(line, " \t"), "```") {
			if inCodeBlock {
				snippets = append(snippets, strings.TrimRight(current.String(), "\n"))
				current.Reset()
			}
			inCodeBlock = !inCodeBlock
		} else if inCodeBlock {
			current.WriteString(line)
			current.WriteByte('\n')
		}
	}

	return snippets
}

// FenceLanguage returns the language tag of the first fence line in
// text, or "" when none is present. Used to pick a highlighting lexer.
func FenceLanguage(text string) string {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "```") {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
		}
	}
	return ""
}
