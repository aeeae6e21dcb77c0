// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the Bubble Tea program for interactive ait sessions.
//
// The program runs the engine's drain loop on a fixed tick: streaming
// workers push events into the engine's channel, and each tick applies
// them in order on the UI goroutine. Key handling dispatches on the
// engine's interaction mode, vim-flavored.
package chat
