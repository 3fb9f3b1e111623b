// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"
)

// =============================================================================
// EVENT SOURCE
// =============================================================================

// EventSource is a push transport delivering chunks until the stream
// ends. Next blocks until a chunk arrives, returns io.EOF on a clean
// end, and any other error on transport failure. Implementations bind
// their lifetime to the request context, so cancellation surfaces as an
// error from Next.
type EventSource interface {
	Next() (Chunk, error)
	Close() error
}

// =============================================================================
// PUSHER
// =============================================================================

// Pusher is the push-based Consumer: it drains an EventSource chunk by
// chunk. Used when task submission answers with a direct event stream
// instead of a task handle.
type Pusher struct {
	source EventSource
	logger *zap.Logger
}

// NewPusher builds a push consumer over source. A nil logger is
// replaced with a no-op logger.
func NewPusher(source EventSource, logger *zap.Logger) *Pusher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pusher{source: source, logger: logger}
}

// Run drains the source to a terminal state. Chunk routing and terminal
// rules are identical to the poll consumer; only the transport differs.
// A clean EOF without a terminal chunk finalizes the accumulated text.
func (p *Pusher) Run(ctx context.Context, sink Sink) Outcome {
	defer p.source.Close()

	acc := NewAccumulator()

	for {
		chunk, err := p.source.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				// Stream ended without a terminal chunk: treat the
				// buffer as the complete answer.
				return Outcome{Kind: OutcomeDone, Text: acc.Snapshot()}
			}
			if ctx.Err() != nil {
				err = ctx.Err()
			}
			p.logger.Warn("push stream failed, flushing partial content",
				zap.Int("accumulated_bytes", acc.Len()),
				zap.Error(err))
			return flushOutcome(acc, err, false)
		}

		if outcome, terminal := applyChunk(acc, chunk, sink); terminal {
			return outcome
		}
	}
}
