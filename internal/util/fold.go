// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"golang.org/x/text/cases"
)

// Fold returns a case-folded form of s suitable for caseless matching.
// Unlike strings.ToLower, Unicode case folding handles characters that
// lowercase asymmetrically (e.g. the German eszett).
//
// A cases.Caser is stateful, so a fresh one is built per call rather
// than shared across goroutines.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// ContainsFold reports whether substr is contained in s under Unicode
// case folding. The history filter uses this so queries match message
// text regardless of case.
func ContainsFold(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(Fold(s), Fold(substr))
}
