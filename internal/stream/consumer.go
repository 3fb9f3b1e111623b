// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"context"
	"fmt"
)

// =============================================================================
// CONSUMER INTERFACE
// =============================================================================

// Consumer drains one task's output stream. Implementations are
// single-use: Run consumes the task to its terminal state and returns
// the outcome. Exactly one outcome is produced per run.
type Consumer interface {
	Run(ctx context.Context, sink Sink) Outcome
}

// Sink receives progressive updates while a consumer runs. Callbacks
// fire on the consumer's goroutine and must be cheap; the TUI side
// forwards them into the program's update loop.
type Sink interface {
	// OnSnapshot delivers the full accumulated text after each content
	// chunk. Snapshots are monotonic: each one extends the previous.
	OnSnapshot(text string)

	// OnActivity delivers one side-channel entry in arrival order.
	OnActivity(entry Activity)
}

// SinkFuncs adapts bare functions to the Sink interface. Nil fields are
// skipped, so callers wire only what they need.
type SinkFuncs struct {
	Snapshot func(text string)
	Activity func(entry Activity)
}

// OnSnapshot implements Sink.
func (s SinkFuncs) OnSnapshot(text string) {
	if s.Snapshot != nil {
		s.Snapshot(text)
	}
}

// OnActivity implements Sink.
func (s SinkFuncs) OnActivity(entry Activity) {
	if s.Activity != nil {
		s.Activity(entry)
	}
}

// =============================================================================
// OUTCOME
// =============================================================================

// OutcomeKind classifies how a consumer run ended.
type OutcomeKind string

const (
	// OutcomeDone is normal completion. Text is the final answer and
	// ConversationID, when present, may be adopted by the caller.
	OutcomeDone OutcomeKind = "done"

	// OutcomeInterrupted is a backend-signaled resumable pause. Text is
	// the partial answer; Round is the backend's round counter.
	OutcomeInterrupted OutcomeKind = "interrupted"

	// OutcomeError is a backend-signaled failure. Text is the error
	// message; any buffered content was discarded and the conversation
	// identity must not be adopted.
	OutcomeError OutcomeKind = "error"

	// OutcomeFlushed is a client-side stop: transport failure, context
	// cancellation, or poll-budget exhaustion. Text preserves whatever
	// content accumulated before the stop.
	OutcomeFlushed OutcomeKind = "flushed"
)

// Outcome is the single terminal result of a consumer run.
type Outcome struct {
	Kind OutcomeKind

	// Text is the finalized message content per the kind's rules.
	Text string

	// ConversationID is set only on done outcomes that carried one.
	ConversationID string

	// Round is set on interrupted outcomes.
	Round int

	// Err is the underlying transport error for flushed outcomes and
	// nil otherwise. Budget exhaustion flushes with a nil Err.
	Err error

	// Truncated marks a budget-exhaustion flush. The transcript shows
	// the text as-is; only the log records the truncation.
	Truncated bool
}

// Resumable reports whether the outcome supports a continue action.
func (o Outcome) Resumable() bool {
	return o.Kind == OutcomeInterrupted
}

// String renders the outcome for logs.
func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeFlushed:
		return fmt.Sprintf("flushed(%d bytes, truncated=%v, err=%v)", len(o.Text), o.Truncated, o.Err)
	case OutcomeInterrupted:
		return fmt.Sprintf("interrupted(round=%d, %d bytes)", o.Round, len(o.Text))
	default:
		return fmt.Sprintf("%s(%d bytes)", o.Kind, len(o.Text))
	}
}

// =============================================================================
// CHUNK ROUTING
// =============================================================================

// applyChunk routes one chunk into the accumulator and sink. When the
// chunk is terminal it returns the finalized outcome and true; callers
// must stop immediately and leave the rest of the batch unprocessed.
//
// The switch is exhaustive over ChunkKind; unknown kinds from newer
// backends fall through to the skip path.
func applyChunk(acc *Accumulator, c Chunk, sink Sink) (Outcome, bool) {
	switch c.Kind {
	case KindContent:
		acc.AppendContent(c.Text())
		sink.OnSnapshot(acc.Snapshot())
		return Outcome{}, false

	case KindReasoning, KindToolCall, KindToolResult, KindSaveSuggestion:
		sink.OnActivity(acc.AddActivity(c.Kind, c.Text()))
		return Outcome{}, false

	case KindDone:
		// The terminal chunk may carry the complete text; it wins over
		// the accumulated buffer when present.
		text := c.Text()
		if text == "" {
			text = acc.Snapshot()
		}
		return Outcome{
			Kind:           OutcomeDone,
			Text:           text,
			ConversationID: c.ConversationID(),
		}, true

	case KindInterrupted:
		// A trailing fragment on the pause chunk still belongs to the
		// partial answer.
		if t := c.Text(); t != "" {
			acc.AppendContent(t)
		}
		return Outcome{
			Kind:  OutcomeInterrupted,
			Text:  acc.Snapshot(),
			Round: c.Round(),
		}, true

	case KindError:
		return Outcome{
			Kind: OutcomeError,
			Text: c.ErrorText(),
		}, true

	default:
		// Unknown kind: skip, keep consuming.
		return Outcome{}, false
	}
}

// flushOutcome finalizes a client-side stop, preserving partial content.
func flushOutcome(acc *Accumulator, err error, truncated bool) Outcome {
	return Outcome{
		Kind:      OutcomeFlushed,
		Text:      acc.Snapshot(),
		Err:       err,
		Truncated: truncated,
	}
}
