// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides durable conversation persistence backed by
// SQLite. It is the only package that touches stable storage.
//
// A connection is opened per logical operation rather than held across
// UI ticks, so a concurrent external reader or writer can at worst
// cause a single-statement failure, never a half-written multi-write
// transaction. Storage failures are returned to the caller and never
// roll back in-memory conversation state.
package storage
