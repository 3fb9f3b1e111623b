// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides helper functions shared across tradedeck.
package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// UNICODE: panel cells are sized in terminal columns, not bytes or runes.
// All truncation and padding goes through go-runewidth so CJK symbols and
// emoji in conversation titles line up in column layouts.

// Truncate shortens s to at most width terminal columns, appending an
// ellipsis when anything was cut. Width ≤ 1 returns a bare cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 1 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "…")
}

// TruncateRunes shortens s to at most n runes with a "..." suffix when cut.
// Used where rune count matters more than display width, such as summaries
// persisted alongside conversations.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// PadRight pads s with spaces to exactly width columns, truncating first
// if s is too wide. The result always occupies width columns.
func PadRight(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = Truncate(s, width)
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}

// PadLeft pads s with spaces on the left to exactly width columns.
// Numeric panel columns are right-aligned with this.
func PadLeft(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = Truncate(s, width)
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	return strings.Repeat(" ", gap) + s
}

// Width returns the display width of s in terminal columns.
func Width(s string) int {
	return runewidth.StringWidth(s)
}

// FirstLine returns s up to the first newline, with CR stripped.
func FirstLine(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
