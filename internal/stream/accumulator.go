// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"strings"
	"time"
)

// =============================================================================
// ACTIVITY LOG
// =============================================================================

// Activity is one side-channel entry: reasoning, a tool call or result,
// or a save suggestion. Entries keep their arrival order relative to
// each other; interleaving with content chunks is preserved by the
// renderer through snapshot timing, not recorded here.
type Activity struct {
	Kind ChunkKind
	Text string
	At   time.Time
}

// =============================================================================
// ACCUMULATOR
// =============================================================================

// Accumulator merges content chunks into a growing buffer and collects
// side-channel entries. It is owned by exactly one consumer run and is
// never shared; all access happens from the consumer goroutine.
type Accumulator struct {
	// PERFORMANCE: strings.Builder avoids quadratic append cost
	buf strings.Builder
	log []Activity
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// AppendContent appends one content chunk's text.
func (a *Accumulator) AppendContent(text string) {
	a.buf.WriteString(text)
}

// Snapshot returns the accumulated text so far. The returned string is
// immutable and safe to hand to the renderer.
func (a *Accumulator) Snapshot() string {
	return a.buf.String()
}

// Len returns the accumulated content length in bytes.
func (a *Accumulator) Len() int {
	return a.buf.Len()
}

// AddActivity appends a side-channel entry and returns it.
func (a *Accumulator) AddActivity(kind ChunkKind, text string) Activity {
	entry := Activity{Kind: kind, Text: text, At: time.Now()}
	a.log = append(a.log, entry)
	return entry
}

// Log returns the side-channel entries in arrival order.
// The returned slice is a copy; callers cannot corrupt the log.
func (a *Accumulator) Log() []Activity {
	out := make([]Activity, len(a.log))
	copy(out, a.log)
	return out
}
