// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and validates the ait configuration file.
//
// Configuration lives at ~/.ait/config.toml. Missing files are not an
// error: Load falls back to compiled-in defaults so first run works with
// zero setup. Environment variables override file values, which keeps
// the same config portable between machines with different API keys.
package config
