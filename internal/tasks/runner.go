// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/tradedeck/internal/stream"
)

// =============================================================================
// RUNNER ERRORS
// =============================================================================

var (
	// ErrRunnerStopped is returned by Go after Stop has been called.
	ErrRunnerStopped = errors.New("runner stopped")

	// ErrTooManyStreams is returned when the concurrent stream cap is
	// reached.
	ErrTooManyStreams = errors.New("too many concurrent streams")
)

// =============================================================================
// TASK RUNNER
// =============================================================================

const (
	// DefaultMaxConcurrent caps simultaneous stream consumers.
	DefaultMaxConcurrent = 4

	// DefaultTaskTimeout bounds one consumer run end to end.
	DefaultTaskTimeout = 5 * time.Minute
)

// Runner executes stream consumers against tracked tasks. Each Go call
// spawns one goroutine that drains the consumer, records the terminal
// status on the tracker, and fires the outcome callback exactly once.
type Runner struct {
	tracker *Tracker
	wg      sync.WaitGroup
	stopped atomic.Bool

	// semaphore limits concurrent consumers
	semaphore chan struct{}

	// timeout bounds each consumer run (0 = no timeout)
	timeout time.Duration

	logger *zap.Logger
}

// NewRunner creates a runner with default concurrency and timeout.
func NewRunner(tracker *Tracker, logger *zap.Logger) *Runner {
	return NewRunnerWithOptions(tracker, DefaultMaxConcurrent, DefaultTaskTimeout, logger)
}

// NewRunnerWithOptions creates a runner with custom settings.
// maxConcurrent: maximum simultaneous consumers (defaulted when <= 0)
// timeout: per-task deadline (0 = no timeout)
func NewRunnerWithOptions(tracker *Tracker, maxConcurrent int, timeout time.Duration, logger *zap.Logger) *Runner {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		tracker:   tracker,
		semaphore: make(chan struct{}, maxConcurrent),
		timeout:   timeout,
		logger:    logger,
	}
}

// Go starts consuming the task's stream in the background.
//
// onOutcome fires exactly once, from the consumer goroutine, after the
// tracker has recorded the terminal status. The UI forwards it into the
// program's update loop.
func (r *Runner) Go(task *Task, consumer stream.Consumer, sink stream.Sink, onOutcome func(stream.Outcome)) error {
	if r.stopped.Load() {
		return ErrRunnerStopped
	}

	// Non-blocking acquire: the submit path must never hang the UI.
	select {
	case r.semaphore <- struct{}{}:
	default:
		return ErrTooManyStreams
	}

	r.wg.Add(1)
	go r.consume(task, consumer, sink, onOutcome)
	return nil
}

// consume drains one consumer and records the result.
func (r *Runner) consume(task *Task, consumer stream.Consumer, sink stream.Sink, onOutcome func(stream.Outcome)) {
	defer r.wg.Done()
	defer func() { <-r.semaphore }()

	r.tracker.MarkStreaming(task)

	var ctx context.Context
	var cancel context.CancelFunc
	if r.timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), r.timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	task.SetCancelFunc(cancel)
	defer cancel()

	outcome := consumer.Run(ctx, sink)

	r.record(task, outcome)

	if onOutcome != nil {
		onOutcome(outcome)
	}
}

// record maps a stream outcome onto the task lifecycle.
func (r *Runner) record(task *Task, outcome stream.Outcome) {
	switch outcome.Kind {
	case stream.OutcomeDone:
		r.tracker.MarkComplete(task)

	case stream.OutcomeInterrupted:
		r.tracker.MarkInterrupted(task, outcome.Round)

	case stream.OutcomeError:
		r.tracker.MarkFailed(task, errors.New(outcome.Text))

	case stream.OutcomeFlushed:
		switch {
		case errors.Is(outcome.Err, context.Canceled):
			r.tracker.MarkCanceled(task)
		case outcome.Err != nil:
			r.tracker.MarkFailed(task, outcome.Err)
		default:
			// Poll budget exhausted: finalize quietly. The stream
			// layer already logged the truncation.
			r.tracker.MarkComplete(task)
		}

	default:
		r.logger.Warn("unknown outcome kind",
			zap.String("task_id", task.GetID()),
			zap.String("kind", string(outcome.Kind)))
		r.tracker.MarkFailed(task, errors.New("unknown stream outcome"))
	}
}

// Stop prevents new consumers and waits for running ones to finish.
// Pending tasks keep their context; callers wanting a hard stop cancel
// tasks through the tracker first.
func (r *Runner) Stop() {
	r.stopped.Store(true)
	r.wg.Wait()
}
