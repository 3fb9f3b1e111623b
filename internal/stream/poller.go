// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// =============================================================================
// POLL CONSTANTS
// =============================================================================

const (
	// DefaultPollInterval is the fixed delay between polls.
	DefaultPollInterval = 150 * time.Millisecond

	// DefaultMaxPolls bounds the loop when the server never reports a
	// terminal state. At the default interval this is roughly eighteen
	// seconds of silence before the best-effort flush.
	DefaultMaxPolls = 120
)

// =============================================================================
// FETCHER
// =============================================================================

// Fetcher retrieves one batch of chunks at the given offset. The API
// client implements this against GET /api/ai-stream/{task_id}.
type Fetcher interface {
	FetchChunks(ctx context.Context, taskID string, offset int64) (Batch, error)
}

// =============================================================================
// POLLER
// =============================================================================

// PollerConfig tunes one poll loop.
type PollerConfig struct {
	// Interval is the fixed inter-poll delay.
	Interval time.Duration

	// MaxPolls is the poll budget. The loop issues at most this many
	// fetches before flushing what accumulated.
	MaxPolls int
}

// DefaultPollerConfig returns the production tuning.
func DefaultPollerConfig() PollerConfig {
	return PollerConfig{
		Interval: DefaultPollInterval,
		MaxPolls: DefaultMaxPolls,
	}
}

// Poller is the offset-polling Consumer. One Poller drains one task.
type Poller struct {
	fetcher Fetcher
	taskID  string
	cfg     PollerConfig
	logger  *zap.Logger
}

// NewPoller builds a poll consumer for taskID. A nil logger is replaced
// with a no-op logger.
func NewPoller(fetcher Fetcher, taskID string, cfg PollerConfig, logger *zap.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.MaxPolls <= 0 {
		cfg.MaxPolls = DefaultMaxPolls
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		fetcher: fetcher,
		taskID:  taskID,
		cfg:     cfg,
		logger:  logger,
	}
}

// Run polls the task to a terminal state.
//
// Each iteration fetches chunks since the cursor and processes them in
// order. A terminal chunk mid-batch stops everything at once; the rest
// of that batch is never applied. The cursor advances to next_offset
// only after a fully processed batch, so a retry after a mid-batch stop
// or transport error re-reads from the last safe position.
//
// Stops, in priority order:
//  1. terminal chunk → its outcome
//  2. transport error or context cancellation → flush partial content
//  3. response status "completed" → finalize accumulated content
//  4. poll budget exhausted → flush partial content, truncated
func (p *Poller) Run(ctx context.Context, sink Sink) Outcome {
	acc := NewAccumulator()
	cursor := NewCursor()

	for polls := 0; polls < p.cfg.MaxPolls; polls++ {
		batch, err := p.fetcher.FetchChunks(ctx, p.taskID, cursor.Offset())
		if err != nil {
			// RELIABILITY: partial output survives transport failure
			p.logger.Warn("poll failed, flushing partial content",
				zap.String("task_id", p.taskID),
				zap.Int64("offset", cursor.Offset()),
				zap.Int("poll", polls),
				zap.Error(err))
			return flushOutcome(acc, err, false)
		}

		for _, chunk := range batch.Chunks {
			if outcome, terminal := applyChunk(acc, chunk, sink); terminal {
				p.logger.Debug("terminal chunk",
					zap.String("task_id", p.taskID),
					zap.String("outcome", string(outcome.Kind)))
				return outcome
			}
		}

		cursor.AdvanceTo(batch.NextOffset)

		if batch.Completed() {
			// Completed status without a done chunk: the buffer is the
			// answer. No conversation identity to adopt on this path.
			return Outcome{Kind: OutcomeDone, Text: acc.Snapshot()}
		}

		select {
		case <-ctx.Done():
			return flushOutcome(acc, ctx.Err(), false)
		case <-time.After(p.cfg.Interval):
		}
	}

	// Budget exhausted: the silent soft-failure. The transcript gets the
	// accumulated text with no error banner; only the log records it.
	p.logger.Warn("poll budget exhausted, flushing",
		zap.String("task_id", p.taskID),
		zap.Int("polls", p.cfg.MaxPolls),
		zap.Int("accumulated_bytes", acc.Len()))
	return flushOutcome(acc, nil, true)
}
