// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/ait-tui/internal/ui/styles"
	"github.com/jeranaias/ait-tui/internal/util"
)

// =============================================================================
// LIST PICKER
// =============================================================================

// PickerItem is one selectable row.
type PickerItem struct {
	Label    string
	Selected bool
}

// Picker is a cursor-driven list overlay used for model and history
// selection. cursor == -1 means no row is highlighted.
type Picker struct {
	Title  string
	Items  []PickerItem
	cursor int
}

// NewPicker creates a picker with the cursor on the first row.
func NewPicker(title string, items []PickerItem) *Picker {
	cursor := 0
	if len(items) == 0 {
		cursor = -1
	}
	return &Picker{Title: title, Items: items, cursor: cursor}
}

// SetItems replaces the rows, keeping the cursor in range.
func (p *Picker) SetItems(items []PickerItem) {
	p.Items = items
	if len(items) == 0 {
		p.cursor = -1
		return
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
	if p.cursor >= len(items) {
		p.cursor = len(items) - 1
	}
}

// Cursor returns the highlighted index, -1 when none.
func (p *Picker) Cursor() int {
	return p.cursor
}

// Current returns the highlighted item.
func (p *Picker) Current() (PickerItem, bool) {
	if p.cursor < 0 || p.cursor >= len(p.Items) {
		return PickerItem{}, false
	}
	return p.Items[p.cursor], true
}

// Next moves the cursor down, clamped to the last row.
func (p *Picker) Next() {
	if len(p.Items) == 0 {
		return
	}
	if p.cursor < len(p.Items)-1 {
		p.cursor++
	}
}

// Prev moves the cursor up, clamped to the first row.
func (p *Picker) Prev() {
	if len(p.Items) == 0 {
		return
	}
	if p.cursor > 0 {
		p.cursor--
	}
}

// First jumps to the first row.
func (p *Picker) First() {
	if len(p.Items) > 0 {
		p.cursor = 0
	}
}

// Last jumps to the last row.
func (p *Picker) Last() {
	if len(p.Items) > 0 {
		p.cursor = len(p.Items) - 1
	}
}

// Deselect removes the highlight.
func (p *Picker) Deselect() {
	p.cursor = -1
}

// MarkCurrent marks the highlighted row as the single selected item.
func (p *Picker) MarkCurrent() {
	if p.cursor < 0 || p.cursor >= len(p.Items) {
		return
	}
	for i := range p.Items {
		p.Items[i].Selected = false
	}
	p.Items[p.cursor].Selected = true
}

// View renders the picker box.
func (p *Picker) View(theme *styles.Theme, width int) string {
	var sb strings.Builder
	sb.WriteString(theme.PickerTitle.Render(p.Title))
	sb.WriteByte('\n')

	if len(p.Items) == 0 {
		sb.WriteString(theme.ShortcutDesc.Render("(empty)"))
	}

	for i, item := range p.Items {
		marker := "  "
		if i == p.cursor {
			marker = theme.PickerCursor.Render("> ")
		}

		label := util.TruncateWidth(item.Label, width-6)
		style := theme.PickerItem
		if item.Selected {
			style = theme.PickerSelected
			label += " *"
		}

		sb.WriteString(marker)
		sb.WriteString(style.Render(label))
		if i < len(p.Items)-1 {
			sb.WriteByte('\n')
		}
	}

	return theme.PickerBox.Render(sb.String())
}
