// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the non-TUI entry points: one-shot questions,
// a plain readline chat loop, and stored session management.
package cli
