// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

// =============================================================================
// MODES
// =============================================================================

// Mode is the engine's interaction mode. Exactly one is active at a time.
type Mode int

const (
	// ModeNormal is the resting mode: scrolling and command keys.
	ModeNormal Mode = iota
	// ModeEditing has keyboard focus on the input textarea.
	ModeEditing
	// ModeModelSelection shows the model picker.
	ModeModelSelection
	// ModeSnippetSelection shows the code snippet picker.
	ModeSnippetSelection
	// ModeHistoryBrowsing shows stored conversations.
	ModeHistoryBrowsing
	// ModeHelp shows the key binding overlay.
	ModeHelp
	// ModeNotify shows a dismissable banner, e.g. after a failed turn.
	ModeNotify
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeEditing:
		return "editing"
	case ModeModelSelection:
		return "model-selection"
	case ModeSnippetSelection:
		return "snippet-selection"
	case ModeHistoryBrowsing:
		return "history-browsing"
	case ModeHelp:
		return "help"
	case ModeNotify:
		return "notify"
	default:
		return "unknown"
	}
}

// =============================================================================
// COMMANDS
// =============================================================================

// Command is a mode-transition request from the UI layer. The transition
// function is total: a command that does not apply in the current mode is
// a no-op, never an error.
type Command int

const (
	// CmdStartEditing moves focus to the input textarea.
	CmdStartEditing Command = iota
	// CmdOpenModelPicker opens model selection.
	CmdOpenModelPicker
	// CmdOpenSnippetPicker opens snippet selection.
	CmdOpenSnippetPicker
	// CmdOpenHistory opens the stored conversation browser.
	CmdOpenHistory
	// CmdOpenHelp opens the help overlay.
	CmdOpenHelp
	// CmdDismiss leaves the current overlay or input mode.
	CmdDismiss
	// CmdQuit requests application shutdown.
	CmdQuit
)

// Handle applies a mode-transition command. Unknown combinations are
// no-ops by design of the transition table.
func (e *Engine) Handle(cmd Command) {
	if cmd == CmdQuit {
		e.running = false
		return
	}

	switch e.mode {
	case ModeNormal:
		switch cmd {
		case CmdStartEditing:
			e.mode = ModeEditing
		case CmdOpenModelPicker:
			e.mode = ModeModelSelection
		case CmdOpenSnippetPicker:
			e.mode = ModeSnippetSelection
		case CmdOpenHistory:
			e.mode = ModeHistoryBrowsing
		case CmdOpenHelp:
			e.mode = ModeHelp
		}
	case ModeEditing, ModeModelSelection, ModeSnippetSelection,
		ModeHistoryBrowsing, ModeHelp:
		if cmd == CmdDismiss {
			e.mode = ModeNormal
		}
	case ModeNotify:
		if cmd == CmdDismiss {
			e.notice = ""
			e.mode = ModeNormal
		}
	}
}

// Mode returns the current interaction mode.
func (e *Engine) Mode() Mode {
	return e.mode
}

// SetMode forces a mode. Used by the UI for transitions that carry
// their own payload (e.g. entering Editing with prefilled text).
func (e *Engine) SetMode(m Mode) {
	e.mode = m
}

// Notice returns the Notify banner text, empty outside ModeNotify.
func (e *Engine) Notice() string {
	return e.notice
}

// Running reports whether the application should keep running.
func (e *Engine) Running() bool {
	return e.running
}
