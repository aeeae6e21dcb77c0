// ait - a terminal interface for LLM chat.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ait-tui/internal/backend"
	"github.com/jeranaias/ait-tui/internal/cli"
	"github.com/jeranaias/ait-tui/internal/config"
	"github.com/jeranaias/ait-tui/internal/session"
	"github.com/jeranaias/ait-tui/internal/storage"
	"github.com/jeranaias/ait-tui/internal/ui/chat"
	"github.com/jeranaias/ait-tui/internal/ui/sink"
	"github.com/jeranaias/ait-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.2.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) > 0 && (args[0] == "version" || args[0] == "--version") {
		fmt.Printf("ait %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so interactive runs log to file only.
	interactive := len(args) == 0
	logger, closeLog := config.SetupLogger(
		cfg.ResolvedLogFile(),
		config.ParseLogLevel(cfg.LogLevel),
		!interactive,
	)
	defer closeLog()
	slog.SetDefault(logger)

	store, err := storage.Open(cfg.ResolvedDatabasePath())
	if err != nil {
		return err
	}

	registry := backend.NewRegistryWithOllama(
		backend.NewOllamaClientWithURL(cfg.OllamaURL))

	if !interactive {
		app := &cli.App{
			Config:   cfg,
			Store:    store,
			Registry: registry,
			Logger:   logger,
		}
		return app.Run(args)
	}

	return runTUI(cfg, store, registry, logger)
}

func runTUI(cfg *config.Config, store *storage.Store, registry *backend.Registry, logger *slog.Logger) error {
	engine := session.New(session.Options{
		Store:        store,
		Resolver:     registry,
		SystemPrompt: cfg.SystemPrompt,
		ModelID:      cfg.DefaultModel,
		Temperature:  cfg.Temperature,
		ChatLogPath:  cfg.ResolvedChatLogPath(),
		Logger:       logger,
	})

	m := chat.New(chat.Options{
		Engine:       engine,
		Theme:        styles.NewTheme(),
		Sink:         sink.NewClipboard(),
		Lister:       registry,
		ShowSpinner:  cfg.ShowSpinner,
		RenderMarkup: cfg.RenderMarkup,
		WrapWidth:    cfg.WrapWidth,
		SyntaxTheme:  cfg.Theme,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Live-reload the default model while the TUI runs. The reload is
	// delivered through the program's message queue so the engine is
	// only touched from the UI goroutine.
	if path, err := config.ConfigPath(); err == nil {
		w, err := config.NewWatcher(path, 500*time.Millisecond, func(next *config.Config) {
			logger.Info("config reloaded", "model", next.DefaultModel)
			p.Send(chat.ConfigReloadedMsg{ModelID: next.DefaultModel})
		})
		if err == nil && w.Watch() == nil {
			defer w.Close()
		}
	}

	_, err := p.Run()
	return err
}
