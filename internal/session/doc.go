// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the conversation engine behind the TUI.
//
// The engine is single-threaded by contract: the UI loop is the only
// goroutine that mutates it. Streaming workers report through a buffered
// ordered channel which the UI loop drains once per tick, so the
// Conversation needs no mutex. Durability comes before network: an
// accepted user message is written to the store before the worker that
// contacts the provider is spawned.
package session
