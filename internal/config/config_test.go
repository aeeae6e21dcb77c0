// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// ===== DEFAULTS =====

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.DefaultModel != "gpt-4o-mini" {
		t.Errorf("DefaultModel = %q, want gpt-4o-mini", cfg.DefaultModel)
	}
	if cfg.Temperature != 0.2 {
		t.Errorf("Temperature = %v, want 0.2", cfg.Temperature)
	}
	if cfg.SystemPrompt == "" {
		t.Error("SystemPrompt should not be empty")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() should validate: %v", err)
	}
}

// ===== LOADING =====

func TestLoadFromPath_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.DefaultModel != Default().DefaultModel {
		t.Errorf("missing file should yield defaults, got model %q", cfg.DefaultModel)
	}
}

func TestLoadFromPath_PartialFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "default_model = \"deepseek-chat\"\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.DefaultModel != "deepseek-chat" {
		t.Errorf("DefaultModel = %q, want deepseek-chat", cfg.DefaultModel)
	}
	if cfg.SystemPrompt != Default().SystemPrompt {
		t.Errorf("unset SystemPrompt should fall back to default, got %q", cfg.SystemPrompt)
	}
	if cfg.Temperature != Default().Temperature {
		t.Errorf("unset Temperature should fall back to default, got %v", cfg.Temperature)
	}
}

func TestLoadFromPath_MalformedFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("default_model = [broken"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Error("malformed TOML should error, got nil")
	}
}

func TestLoadFromPath_TightensPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("theme = \"monokai\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromPath(path); err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm&0077 != 0 {
		t.Errorf("config perms = %o, want owner-only", perm)
	}
}

// ===== ENV OVERRIDES =====

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("AIT_MODEL", "o3-mini")
	t.Setenv("AIT_TEMPERATURE", "0.7")
	t.Setenv("AIT_LOG_LEVEL", "debug")

	cfg := Default()
	ApplyEnvOverrides(cfg)

	if cfg.DefaultModel != "o3-mini" {
		t.Errorf("DefaultModel = %q, want o3-mini", cfg.DefaultModel)
	}
	if cfg.Temperature != 0.7 {
		t.Errorf("Temperature = %v, want 0.7", cfg.Temperature)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestApplyEnvOverrides_BadTemperatureIgnored(t *testing.T) {
	t.Setenv("AIT_TEMPERATURE", "warm")

	cfg := Default()
	ApplyEnvOverrides(cfg)

	if cfg.Temperature != Default().Temperature {
		t.Errorf("unparseable temperature should be ignored, got %v", cfg.Temperature)
	}
}

// ===== VALIDATION =====

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"empty model", func(c *Config) { c.DefaultModel = "" }, true},
		{"temperature too high", func(c *Config) { c.Temperature = 2.5 }, true},
		{"temperature negative", func(c *Config) { c.Temperature = -0.1 }, true},
		{"temperature max", func(c *Config) { c.Temperature = 2.0 }, false},
		{"negative wrap width", func(c *Config) { c.WrapWidth = -1 }, true},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// ===== SAVE / ROUND TRIP =====

func TestSaveToPath_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.DefaultModel = "grok-2-latest"
	cfg.Theme = "dracula"
	if err := cfg.SaveToPath(path); err != nil {
		t.Fatalf("SaveToPath: %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if loaded.DefaultModel != "grok-2-latest" {
		t.Errorf("DefaultModel = %q, want grok-2-latest", loaded.DefaultModel)
	}
	if loaded.Theme != "dracula" {
		t.Errorf("Theme = %q, want dracula", loaded.Theme)
	}
}

// ===== LOGGING =====

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetupLoggerWithWriters(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Info("hello", "key", "value")

	if !strings.Contains(stderr.String(), "hello") {
		t.Error("stderr output missing log message")
	}
	if !strings.Contains(file.String(), `"msg":"hello"`) {
		t.Error("file output should be JSON with the message")
	}
	if strings.Contains(file.String(), "level=INFO") {
		t.Error("file output should not be text format")
	}
}

// ===== WATCHER =====

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("theme = \"monokai\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(path, 50*time.Millisecond, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := w.Watch(); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if err := os.WriteFile(path, []byte("theme = \"dracula\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Theme != "dracula" {
			t.Errorf("reloaded Theme = %q, want dracula", cfg.Theme)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}
