// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// USABILITY: TTY detection for proper terminal handling. Interactive
// terminals get markdown and color; piped output stays plain.

package cli

import (
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// IsTTY returns true if stdin is a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsStdoutTTY returns true if stdout is a terminal.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// =============================================================================
// TERMINAL WIDTH
// =============================================================================

const (
	// DefaultTerminalWidth is the fallback when detection fails
	DefaultTerminalWidth = 80

	// MinTerminalWidth is the narrowest wrap width we'll use
	MinTerminalWidth = 40
)

// TerminalWidth returns the stdout width, clamped to sane bounds.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	return width
}

// =============================================================================
// PIPED CONTEXT
// =============================================================================

// maxContextSize caps piped/file context at 50KB to keep requests sane.
const maxContextSize = 50 * 1024

// ReadPipedContext reads context from stdin when input is piped.
// Returns empty when stdin is a terminal.
func ReadPipedContext() string {
	if IsTTY() {
		return ""
	}
	data, err := io.ReadAll(io.LimitReader(os.Stdin, maxContextSize))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
