// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"strconv"
	"strings"

	"github.com/jeranaias/ait-tui/internal/util"
)

// =============================================================================
// SESSION LIST FORMATTING
// =============================================================================

// FormatSessionList formats stored conversations for display in a
// table: id, start time, message count, and first-message preview.
func FormatSessionList(sessions []ConversationMeta) string {
	if len(sessions) == 0 {
		return "No sessions found."
	}

	var sb strings.Builder
	sb.WriteString("Sessions:\n")
	sb.WriteString("-----------------------------------------------------\n")
	sb.WriteString(util.PadWidth("ID", 6) + " " +
		util.PadWidth("Started", 20) + " " +
		util.PadWidth("Messages", 8) + " Preview\n")
	sb.WriteString("-----------------------------------------------------\n")

	for _, s := range sessions {
		started := ""
		if !s.StartedAt.IsZero() {
			started = s.StartedAt.Format("2006-01-02 15:04")
		}
		preview := strings.ReplaceAll(util.TruncateRunes(s.Preview, 30), "\n", " ")

		sb.WriteString(util.PadWidth(strconv.FormatInt(s.ID, 10), 6) + " " +
			util.PadWidth(started, 20) + " " +
			util.PadWidth(strconv.Itoa(s.MessageCount), 8) + " " +
			preview + "\n")
	}
	return sb.String()
}
