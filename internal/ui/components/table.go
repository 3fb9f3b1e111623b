// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable visual components for the tradedeck TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/tradedeck/internal/ui/styles"
	"github.com/jeranaias/tradedeck/internal/util"
)

// =============================================================================
// LIGHTWEIGHT TABLE RENDERER
// =============================================================================

// Column describes one table column: header label, fixed width, and
// whether cell content aligns right (numeric columns) or left.
type Column struct {
	Title      string
	Width      int
	AlignRight bool
}

// RenderCell clips or pads a value to its column width. Callers that
// color individual cells must pad first and style after, otherwise the
// ANSI escapes throw the width math off.
// UNICODE: width math runs through go-runewidth so CJK symbols and
// fullwidth digits do not shear the column grid.
func RenderCell(col Column, value string) string {
	clipped := util.Truncate(value, col.Width)
	if col.AlignRight {
		return util.PadLeft(clipped, col.Width)
	}
	return util.PadRight(clipped, col.Width)
}

// RenderHeader renders the header row for a column set.
func RenderHeader(theme *styles.Theme, cols []Column) string {
	cells := make([]string, len(cols))
	for i, col := range cols {
		cells[i] = RenderCell(col, col.Title)
	}
	return theme.TableHeader.Render(strings.Join(cells, "  "))
}

// RenderRow renders one data row. Styled cells may carry their own
// colors; the row style wraps selection/zebra striping around them.
func RenderRow(rowStyle lipgloss.Style, cols []Column, cells []string) string {
	rendered := make([]string, len(cols))
	for i, col := range cols {
		value := ""
		if i < len(cells) {
			value = cells[i]
		}
		rendered[i] = RenderCell(col, value)
	}
	return rowStyle.Render(strings.Join(rendered, "  "))
}

// TableWidth returns the total rendered width of a column set,
// including the two-space gutters between columns.
func TableWidth(cols []Column) int {
	total := 0
	for _, col := range cols {
		total += col.Width
	}
	if len(cols) > 1 {
		total += 2 * (len(cols) - 1)
	}
	return total
}
