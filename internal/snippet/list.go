// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package snippet

// =============================================================================
// SNIPPET SELECTION LIST
// =============================================================================

// Item is one extracted snippet with its selection mark.
type Item struct {
	Text     string
	Selected bool
}

// List holds the snippets currently offered for selection and the
// cursor position. The UI layer owns exactly one List while in
// snippet-selection mode and rebuilds it from the transcript each time
// the mode is entered.
type List struct {
	items  []Item
	cursor int
}

// NewList builds a selection list from extracted snippet texts with
// the cursor on the first entry.
func NewList(texts []string) *List {
	items := make([]Item, len(texts))
	for i, t := range texts {
		items[i] = Item{Text: t}
	}
	return &List{items: items}
}

// Len returns the number of snippets in the list.
func (l *List) Len() int {
	return len(l.items)
}

// Items returns the list contents in order.
func (l *List) Items() []Item {
	return l.items
}

// Cursor returns the current cursor index, or -1 for an empty list.
func (l *List) Cursor() int {
	if len(l.items) == 0 {
		return -1
	}
	return l.cursor
}

// Current returns the item under the cursor.
func (l *List) Current() (Item, bool) {
	if len(l.items) == 0 {
		return Item{}, false
	}
	return l.items[l.cursor], true
}

// Next moves the cursor down one entry, stopping at the last item.
func (l *List) Next() {
	if l.cursor < len(l.items)-1 {
		l.cursor++
	}
}

// Prev moves the cursor up one entry, stopping at the first item.
func (l *List) Prev() {
	if l.cursor > 0 {
		l.cursor--
	}
}

// First moves the cursor to the first entry.
func (l *List) First() {
	l.cursor = 0
}

// Last moves the cursor to the last entry.
func (l *List) Last() {
	if len(l.items) > 0 {
		l.cursor = len(l.items) - 1
	}
}

// Toggle flips the selection mark of the item under the cursor.
func (l *List) Toggle() {
	if len(l.items) == 0 {
		return
	}
	l.items[l.cursor].Selected = !l.items[l.cursor].Selected
}

// SelectedTexts returns the texts of all marked items in list order.
// When nothing is marked, the item under the cursor is returned so a
// bare "yank" always produces something.
func (l *List) SelectedTexts() []string {
	var out []string
	for _, it := range l.items {
		if it.Selected {
			out = append(out, it.Text)
		}
	}
	if len(out) == 0 {
		if cur, ok := l.Current(); ok {
			out = append(out, cur.Text)
		}
	}
	return out
}
