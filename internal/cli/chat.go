// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Plain readline chat loop, for terminals where the full TUI
// is unwanted (ssh, screen readers, muscle memory).
//
// Command: chat
// Interactive commands:
//   /model [name]   Show or switch model
//   /new            Start a fresh conversation
//   /redo           Re-edit the last question
//   /help           Show commands
//   /quit           Exit (also Ctrl+D)

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/ait-tui/internal/config"
	"github.com/jeranaias/ait-tui/internal/model"
	"github.com/jeranaias/ait-tui/internal/session"
)

// =============================================================================
// LINE EDITOR
// =============================================================================

// chatLiner wraps liner with persistent input history.
// USABILITY: arrow-key history navigation across sessions.
type chatLiner struct {
	line        *liner.State
	historyFile string
}

func newChatLiner() *chatLiner {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.DataDir()
	if err != nil {
		dir = os.TempDir()
	}
	c := &chatLiner{
		line:        line,
		historyFile: filepath.Join(dir, "chat_history"),
	}

	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
	return c
}

func (c *chatLiner) readInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

func (c *chatLiner) close() {
	if _, err := config.EnsureDataDir(); err == nil {
		if f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			c.line.WriteHistory(f)
			f.Close()
		}
	}
	c.line.Close()
}

// =============================================================================
// CHAT LOOP
// =============================================================================

// RunChat handles `ait chat`.
func (a *App) RunChat(parser *ArgParser) error {
	engine := a.newEngine(parser)

	input := newChatLiner()
	defer input.close()

	fmt.Println(infoStyle.Render(
		fmt.Sprintf("ait chat - model %s. /help for commands, Ctrl+D to exit.", engine.ModelID())))

	// prefill carries redone text into the next prompt.
	prefill := ""

	for {
		var text string
		var err error
		if prefill != "" {
			text, err = input.line.PromptWithSuggestion(promptStyle.Render("ait> "), prefill, len(prefill))
			prefill = ""
		} else {
			text, err = input.readInput(promptStyle.Render("ait> "))
		}
		if err != nil {
			// Ctrl+C or Ctrl+D: leave quietly.
			fmt.Println()
			return nil
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		if strings.HasPrefix(text, "/") {
			quit, redone := a.handleChatCommand(engine, text)
			if quit {
				return nil
			}
			prefill = redone
			continue
		}
		if strings.EqualFold(text, "exit") || strings.EqualFold(text, "quit") {
			return nil
		}

		answer, err := a.runTurn(context.Background(), engine, text, true)
		if err != nil {
			printError(err)
			continue
		}
		if answer.Role == model.RoleError {
			fmt.Println(errorStyle.Render("[Error] " + answer.Content))
			continue
		}
		fmt.Println()
	}
}

// handleChatCommand processes a slash command. Returns (quit, prefill).
func (a *App) handleChatCommand(engine *session.Engine, text string) (bool, string) {
	fields := strings.Fields(text)

	switch fields[0] {
	case "/quit", "/q", "/exit":
		return true, ""
	case "/model", "/m":
		if len(fields) > 1 {
			engine.SelectModel(fields[1])
			fmt.Println(infoStyle.Render("model: " + engine.ModelID()))
		} else {
			fmt.Println(infoStyle.Render("model: " + engine.ModelID()))
		}
	case "/new", "/n":
		if engine.NewSession() {
			fmt.Println(infoStyle.Render("started a new conversation"))
		}
	case "/redo", "/r":
		if redone, ok := engine.RedoLastTurn(); ok {
			return false, redone
		}
		fmt.Println(infoStyle.Render("nothing to redo"))
	case "/help", "/h":
		fmt.Println(infoStyle.Render(
			"/model [name]  show or switch model\n" +
				"/new           start a fresh conversation\n" +
				"/redo          re-edit the last question\n" +
				"/quit          exit"))
	default:
		fmt.Println(infoStyle.Render("unknown command " + fields[0]))
	}
	return false, ""
}
