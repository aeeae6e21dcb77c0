// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	slogmulti "github.com/samber/slog-multi"
)

// =============================================================================
// LOGGING SETUP
// =============================================================================

// ParseLogLevel maps a config log_level string to a slog level.
// Unknown values fall back to info.
func ParseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogger creates the process logger: JSON to the log file, and
// optionally text to stderr. The TUI owns the terminal, so interactive
// runs pass withStderr=false and log to file only. Returns a cleanup
// function that closes the file.
func SetupLogger(logFile string, level slog.Level, withStderr bool) (*slog.Logger, func() error) {
	noop := func() error { return nil }

	if err := os.MkdirAll(filepath.Dir(logFile), 0700); err != nil {
		return stderrOnly(level), noop
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		// Fall back to stderr-only rather than failing startup.
		return stderrOnly(level), noop
	}

	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	cleanup := func() error { return file.Close() }

	if !withStderr {
		return slog.New(fileHandler), cleanup
	}

	stderrHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(slogmulti.Fanout(stderrHandler, fileHandler)), cleanup
}

func stderrOnly(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// SetupLoggerWithWriters builds a fanout logger over custom writers.
// Used by tests to capture both streams.
func SetupLoggerWithWriters(stderr, file io.Writer, level slog.Level) *slog.Logger {
	stderrHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return slog.New(slogmulti.Fanout(stderrHandler, fileHandler))
}
