// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

// =============================================================================
// OFFSET CURSOR
// =============================================================================

// Cursor tracks how much of one task's output has been consumed. It is
// created at zero when a task starts, advances to the server-reported
// next offset after each fully processed batch, and dies with the task.
// Cursors are never shared across tasks.
//
// The cursor only moves forward. A server response with a smaller or
// absent next_offset leaves it in place, so a poll retry re-reads from
// the last fully processed position (at-least-once; the offset contract
// makes the re-read safe).
type Cursor struct {
	offset int64
}

// NewCursor returns a cursor at position zero.
func NewCursor() *Cursor {
	return &Cursor{}
}

// Offset returns the current position.
func (c *Cursor) Offset() int64 {
	return c.offset
}

// AdvanceTo moves the cursor to next when present and forward of the
// current position. Returns true when the cursor moved.
func (c *Cursor) AdvanceTo(next *int64) bool {
	if next == nil || *next <= c.offset {
		return false
	}
	c.offset = *next
	return true
}
