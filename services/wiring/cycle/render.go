// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cycle

import (
	"strings"
	"unicode/utf8"
)

// RenderBox draws the cycle as a closed box, one class per row, with the
// arrows between rows showing the wiring direction. The left edge carries
// the closing dependency back to the top.
//
//	┌──────────────────┐
//	│   OrderService   │
//	↑                  ↓
//	│  BillingService  │
//	└──────────────────┘
//
// A self-loop renders as a single-row box.
func RenderBox(c Cycle) string {
	if len(c.Nodes) == 0 {
		return ""
	}

	width := 0
	for _, node := range c.Nodes {
		if n := utf8.RuneCountInString(node); n > width {
			width = n
		}
	}
	width += 4

	var b strings.Builder
	b.WriteString("┌" + strings.Repeat("─", width) + "┐\n")
	for i, node := range c.Nodes {
		if i > 0 {
			b.WriteString("↑" + strings.Repeat(" ", width) + "↓\n")
		}
		b.WriteString("│" + center(node, width) + "│\n")
	}
	b.WriteString("└" + strings.Repeat("─", width) + "┘")
	return b.String()
}

// center pads the text to the given width, splitting the slack evenly.
func center(text string, width int) string {
	slack := width - utf8.RuneCountInString(text)
	if slack <= 0 {
		return text
	}
	left := slack / 2
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", slack-left)
}
