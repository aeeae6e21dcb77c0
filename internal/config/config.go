// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/ait-tui/internal/util"
)

// =============================================================================
// CONFIGURATION TYPES
// =============================================================================

// Config is the top-level ait configuration.
type Config struct {
	// Chat behavior
	DefaultModel string  `toml:"default_model" json:"default_model"`
	SystemPrompt string  `toml:"system_prompt" json:"system_prompt"`
	Temperature  float64 `toml:"temperature" json:"temperature"`

	// Ollama
	OllamaURL string `toml:"ollama_url" json:"ollama_url"`

	// UI
	Theme        string `toml:"theme" json:"theme"`
	ShowSpinner  bool   `toml:"show_spinner" json:"show_spinner"`
	WrapWidth    int    `toml:"wrap_width" json:"wrap_width"`
	RenderMarkup bool   `toml:"render_markup" json:"render_markup"`

	// Logging
	LogLevel string `toml:"log_level" json:"log_level"`
	LogFile  string `toml:"log_file" json:"log_file"`

	// Storage
	DatabasePath string `toml:"database_path" json:"database_path"`
	ChatLogPath  string `toml:"chat_log_path" json:"chat_log_path"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		DefaultModel: "gpt-4o-mini",
		SystemPrompt: "You are a helpful, friendly assistant.",
		Temperature:  0.2,
		OllamaURL:    "http://127.0.0.1:11434",
		Theme:        "monokai",
		ShowSpinner:  true,
		WrapWidth:    0, // 0 = terminal width
		RenderMarkup: true,
		LogLevel:     "info",
		LogFile:      "", // empty = <data dir>/ait.log
		DatabasePath: "", // empty = <data dir>/chats.db
		ChatLogPath:  "", // empty = <data dir>/latest-chat.log
	}
}

// =============================================================================
// PATHS
// =============================================================================

// DataDir returns the ait data directory (~/.ait).
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".ait"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDataDir creates the data directory if needed.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("cannot create data directory: %w", err)
	}
	return dir, nil
}

// resolvePath fills an empty path field with a file under the data dir.
func resolvePath(value, name string) string {
	if value != "" {
		return value
	}
	dir, err := DataDir()
	if err != nil {
		return name // relative fallback, better than empty
	}
	return filepath.Join(dir, name)
}

// ResolvedLogFile returns the effective log file path.
func (c *Config) ResolvedLogFile() string {
	return resolvePath(c.LogFile, "ait.log")
}

// ResolvedDatabasePath returns the effective SQLite database path.
func (c *Config) ResolvedDatabasePath() string {
	return resolvePath(c.DatabasePath, "chats.db")
}

// ResolvedChatLogPath returns the effective chat transcript export path.
func (c *Config) ResolvedChatLogPath() string {
	return resolvePath(c.ChatLogPath, "latest-chat.log")
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the config file, applies env overrides, and validates.
// A missing file yields defaults; a malformed file is an error.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from an explicit file path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		parsed := &Config{}
		if _, err := toml.Decode(string(data), parsed); err != nil {
			return nil, fmt.Errorf("malformed config %s: %w", path, err)
		}
		fillDefaults(parsed)
		cfg = parsed

		// RELIABILITY: config may hold API-adjacent settings; keep it private.
		ensureSecurePermissions(path)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}

	ApplyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fillDefaults replaces zero values with defaults so partial config
// files only need to name the fields they change.
func fillDefaults(cfg *Config) {
	def := Default()

	if cfg.DefaultModel == "" {
		cfg.DefaultModel = def.DefaultModel
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = def.SystemPrompt
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = def.Temperature
	}
	if cfg.OllamaURL == "" {
		cfg.OllamaURL = def.OllamaURL
	}
	if cfg.Theme == "" {
		cfg.Theme = def.Theme
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
}

// ensureSecurePermissions tightens the config file to owner-only.
func ensureSecurePermissions(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.Mode().Perm()&0077 != 0 {
		_ = os.Chmod(path, 0600)
	}
}

// =============================================================================
// ENV OVERRIDES
// =============================================================================

// ApplyEnvOverrides lets environment variables win over file values.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AIT_MODEL"); v != "" {
		cfg.DefaultModel = v
	}
	if v := os.Getenv("AIT_SYSTEM_PROMPT"); v != "" {
		cfg.SystemPrompt = v
	}
	if v := os.Getenv("AIT_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Temperature = f
		}
	}
	if v := os.Getenv("AIT_OLLAMA_URL"); v != "" {
		cfg.OllamaURL = v
	}
	if v := os.Getenv("AIT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("AIT_DB_PATH"); v != "" {
		cfg.DatabasePath = v
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks value ranges. Called after every load.
func (c *Config) Validate() error {
	if c.DefaultModel == "" {
		return fmt.Errorf("default_model must not be empty")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature %.2f out of range [0, 2]", c.Temperature)
	}
	if c.WrapWidth < 0 {
		return fmt.Errorf("wrap_width must not be negative")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the config back to its default location atomically.
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveToPath(path)
}

// SaveToPath writes the config to an explicit path atomically.
func (c *Config) SaveToPath(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("cannot encode config: %w", err)
	}
	return util.AtomicWriteFileWithDir(path, buf.Bytes(), 0600, 0700)
}
