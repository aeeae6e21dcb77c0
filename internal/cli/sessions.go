// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// sessions.go - Stored conversation management.
//
// Command: sessions
// Examples:
//   ait sessions                       List all stored conversations
//   ait sessions list --filter error   List conversations mentioning "error"
//   ait sessions search Straße         Case-folded message search
//   ait sessions show 12               Print a conversation transcript
//   ait sessions delete 12             Delete a conversation

package cli

import (
	"fmt"
	"strconv"

	"github.com/jeranaias/ait-tui/internal/storage"
)

// RunSessions handles `ait sessions`.
func (a *App) RunSessions(parser *ArgParser) error {
	rest := parser.Rest()
	action := "list"
	if len(rest) > 0 {
		action = rest[0]
	}

	switch action {
	case "list":
		return a.listSessions(parser.Flag("filter", "f"))
	case "show":
		if len(rest) < 2 {
			return fmt.Errorf("usage: ait sessions show <id>")
		}
		return a.showSession(rest[1])
	case "search":
		if len(rest) < 2 {
			return fmt.Errorf("usage: ait sessions search <query>")
		}
		return a.searchSessions(rest[1])
	case "delete", "rm":
		if len(rest) < 2 {
			return fmt.Errorf("usage: ait sessions delete <id>")
		}
		return a.deleteSession(rest[1])
	default:
		// Bare `ait sessions <filter-less>` defaults to listing.
		return a.listSessions(parser.Flag("filter", "f"))
	}
}

func (a *App) listSessions(filter string) error {
	metas, err := a.Store.ListConversations(filter)
	if err != nil {
		return err
	}
	fmt.Print(storage.FormatSessionList(metas))
	return nil
}

// searchSessions matches message text case-insensitively, including
// across Unicode case folds, unlike the SQL LIKE filter of list.
func (a *App) searchSessions(query string) error {
	metas, err := a.Store.SearchMessages(query)
	if err != nil {
		return err
	}
	fmt.Print(storage.FormatSessionList(metas))
	return nil
}

func (a *App) showSession(idArg string) error {
	id, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid conversation id %q", idArg)
	}

	msgs, err := a.Store.ListMessages(id)
	if err != nil {
		return err
	}
	for _, m := range msgs {
		fmt.Printf("%s: %s\n", m.Role.DisplayName(), m.Content)
	}
	return nil
}

func (a *App) deleteSession(idArg string) error {
	id, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid conversation id %q", idArg)
	}

	if err := a.Store.DeleteConversation(id); err != nil {
		return err
	}
	fmt.Println(infoStyle.Render(fmt.Sprintf("deleted conversation %d", id)))
	return nil
}
