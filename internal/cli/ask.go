// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question command.
//
// Command: ask
// Examples:
//   ait ask "what is a goroutine"
//   ait ask -m o3-mini "prove it"
//   cat main.go | ait ask "review this"

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/jeranaias/ait-tui/internal/model"
)

// RunAsk handles `ait ask`. The question is all positional args after
// the subcommand; piped stdin becomes system prompt context.
func (a *App) RunAsk(parser *ArgParser) error {
	question := strings.TrimSpace(strings.Join(parser.Rest(), " "))
	if question == "" {
		return fmt.Errorf("usage: ait ask <question>")
	}

	engine := a.newEngine(parser)

	// Piped output streams plain; a TTY gets the rendered answer once
	// the turn completes.
	tty := IsStdoutTTY()
	answer, err := a.runTurn(context.Background(), engine, question, !tty)
	if err != nil {
		return err
	}

	if answer.Role == model.RoleError {
		return fmt.Errorf("%s", answer.Content)
	}

	if tty {
		fmt.Print(renderMarkdown(answer.Content))
	} else {
		fmt.Println()
	}
	return nil
}
