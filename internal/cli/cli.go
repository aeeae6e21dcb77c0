// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ait-tui/internal/backend"
	"github.com/jeranaias/ait-tui/internal/config"
	"github.com/jeranaias/ait-tui/internal/model"
	"github.com/jeranaias/ait-tui/internal/session"
	"github.com/jeranaias/ait-tui/internal/storage"
	"github.com/jeranaias/ait-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose)
)

// =============================================================================
// APP
// =============================================================================

// App carries the shared dependencies for CLI commands.
type App struct {
	Config   *config.Config
	Store    *storage.Store
	Registry *backend.Registry
	Logger   *slog.Logger
}

// Run dispatches a CLI subcommand. The bare `ait` invocation is handled
// by the caller (it starts the TUI).
func (a *App) Run(args []string) error {
	parser := NewArgParser(args)

	switch parser.Subcommand() {
	case "ask":
		return a.RunAsk(parser)
	case "chat":
		return a.RunChat(parser)
	case "sessions":
		return a.RunSessions(parser)
	case "help", "":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", parser.Subcommand())
	}
}

func printUsage() {
	fmt.Println(`ait - terminal AI chat

Usage:
  ait                       Start the interactive TUI
  ait ask <question>        One-shot question, answer to stdout
  ait chat                  Plain readline chat loop
  ait sessions [list]       List stored conversations
  ait sessions show <id>    Print a stored transcript
  ait sessions search <q>   Case-folded message search
  ait sessions delete <id>  Delete a stored conversation
  ait help                  Show this help

Flags (ask, chat):
  -m, --model NAME          Model to use (overrides config)
  --system-prompt TEXT      System prompt (overrides config)
  --temperature N           Sampling temperature

Piped stdin (ask):
  cat notes.txt | ait ask "summarize this"
  Piped content is appended to the system prompt as context.`)
}

// =============================================================================
// ENGINE WIRING
// =============================================================================

// newEngine builds a session engine from config plus flag overrides.
func (a *App) newEngine(parser *ArgParser) *session.Engine {
	modelID := parser.Flag("model", "m")
	if modelID == "" {
		modelID = a.Config.DefaultModel
	}

	systemPrompt := parser.Flag("system-prompt")
	if systemPrompt == "" {
		systemPrompt = a.Config.SystemPrompt
	}
	if piped := ReadPipedContext(); piped != "" {
		systemPrompt = systemPrompt + "\n\nContext:\n" + piped
	}

	return session.New(session.Options{
		Store:        a.Store,
		Resolver:     a.Registry,
		SystemPrompt: systemPrompt,
		ModelID:      modelID,
		Temperature:  parser.FloatFlag(a.Config.Temperature, "temperature"),
		ChatLogPath:  a.Config.ResolvedChatLogPath(),
		Logger:       a.Logger,
	})
}

// runTurn submits text and pumps the engine's drain loop until the turn
// reaches a terminal state. When stream is true, partial text goes to
// stdout as it arrives.
func (a *App) runTurn(ctx context.Context, engine *session.Engine, text string, stream bool) (*model.Message, error) {
	if !engine.SubmitText(ctx, text) {
		return nil, fmt.Errorf("message rejected")
	}

	printed := 0
	for engine.AwaitingResponse() {
		engine.DrainEvents()
		if stream {
			if partial := engine.StreamingText(); len(partial) > printed {
				fmt.Print(partial[printed:])
				printed = len(partial)
			}
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(30 * time.Millisecond):
		}
	}

	last := engine.Conversation().LastMessage()
	if last == nil {
		return nil, fmt.Errorf("no response")
	}
	if stream && len(last.Content) > printed {
		fmt.Print(last.Content[printed:])
	}
	return last, nil
}

// =============================================================================
// MARKDOWN OUTPUT
// =============================================================================

// renderMarkdown renders markdown for terminal display, falling back to
// the raw text when the renderer is unavailable.
func renderMarkdown(content string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(TerminalWidth()),
	)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return out
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
}
