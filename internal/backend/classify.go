// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import "strings"

// =============================================================================
// MODEL CLASSIFICATION
// =============================================================================

// Family classifies a model identifier by request-compatibility
// behavior.
type Family int

const (
	// FamilyStandard models accept a system prompt and a temperature.
	FamilyStandard Family = iota
	// FamilyReasoning models reject both; requests to them must omit
	// the system prompt and temperature fields entirely.
	FamilyReasoning
)

// reasoningPrefixes are the identifier prefixes of reasoning-family
// models.
var reasoningPrefixes = []string{"o1", "o3"}

// Classify is the single authoritative classification of a model
// identifier. All request construction goes through it; there are no
// scattered prefix checks elsewhere.
func Classify(modelID string) Family {
	for _, prefix := range reasoningPrefixes {
		if strings.HasPrefix(modelID, prefix) {
			return FamilyReasoning
		}
	}
	return FamilyStandard
}
