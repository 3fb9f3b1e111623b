// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jeranaias/tradedeck/internal/stream"
)

func TestTrackerSingleFlightPerConversation(t *testing.T) {
	tracker := NewTracker(10, nil)

	first := New("conv-a", "first", "trade")
	if err := tracker.Begin(first); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	// A second submission on the same slot is rejected while the first
	// is in flight.
	second := New("conv-a", "second", "trade")
	if err := tracker.Begin(second); !errors.Is(err, ErrConversationBusy) {
		t.Errorf("err = %v, want ErrConversationBusy", err)
	}

	// Other conversations are unaffected.
	other := New("conv-b", "hi", "trade")
	if err := tracker.Begin(other); err != nil {
		t.Errorf("Begin other conversation: %v", err)
	}

	// Finishing the first frees the slot.
	tracker.MarkComplete(first)
	if err := tracker.Begin(second); err != nil {
		t.Errorf("Begin after complete: %v", err)
	}
}

func TestTrackerResume(t *testing.T) {
	tracker := NewTracker(10, nil)

	task := New("conv-a", "long job", "trade")
	if err := tracker.Begin(task); err != nil {
		t.Fatal(err)
	}
	tracker.MarkStreaming(task)
	tracker.MarkInterrupted(task, 2)

	if tracker.ActiveFor("conv-a") != nil {
		t.Fatal("paused task still holds the slot")
	}

	if err := tracker.Resume(task); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if tracker.ActiveFor("conv-a") == nil {
		t.Error("resumed task not active")
	}

	// Only paused tasks resume.
	done := New("conv-b", "done", "trade")
	if err := tracker.Begin(done); err != nil {
		t.Fatal(err)
	}
	tracker.MarkComplete(done)
	if err := tracker.Resume(done); err == nil {
		t.Error("resumed a completed task")
	}
}

func TestTrackerNotifications(t *testing.T) {
	tracker := NewTracker(10, nil)

	task := New("conv-a", "prompt", "trade")
	task.SetID("task-7")
	if err := tracker.Begin(task); err != nil {
		t.Fatal(err)
	}
	tracker.MarkStreaming(task)
	tracker.MarkFailed(task, errors.New("backend down"))

	select {
	case n := <-tracker.Notifications():
		if n.TaskID != "task-7" || n.Status != StatusFailed || n.Error != "backend down" {
			t.Errorf("notification = %+v", n)
		}
	case <-time.After(time.Second):
		t.Fatal("no notification")
	}
}

func TestTrackerNoDoubleNotifyAfterCancel(t *testing.T) {
	tracker := NewTracker(10, nil)

	task := New("conv-a", "prompt", "trade")
	task.SetID("task-8")
	if err := tracker.Begin(task); err != nil {
		t.Fatal(err)
	}
	tracker.MarkStreaming(task)

	if !tracker.Cancel("task-8") {
		t.Fatal("Cancel failed")
	}
	// The consumer goroutine observes the cancellation and reports its
	// outcome; that must not notify a second time.
	tracker.MarkCanceled(task)

	<-tracker.Notifications()
	select {
	case n := <-tracker.Notifications():
		t.Errorf("second notification: %+v", n)
	default:
	}
}

func TestTrackerHistoryPruning(t *testing.T) {
	tracker := NewTracker(2, nil)

	for i := 0; i < 5; i++ {
		task := New("conv", "prompt", "trade")
		if err := tracker.Begin(task); err != nil {
			t.Fatal(err)
		}
		tracker.MarkComplete(task)
	}

	if got := len(tracker.History()); got != 2 {
		t.Errorf("history = %d, want 2", got)
	}
}

func TestTrackerGetByEitherID(t *testing.T) {
	tracker := NewTracker(10, nil)

	task := New("conv", "prompt", "trade")
	if err := tracker.Begin(task); err != nil {
		t.Fatal(err)
	}
	task.SetID("backend-id")

	if tracker.Get("backend-id") == nil {
		t.Error("lookup by backend ID failed")
	}
	if tracker.Get(task.LocalID) == nil {
		t.Error("lookup by local ID failed")
	}
	if tracker.Get("unknown") != nil {
		t.Error("lookup of unknown ID succeeded")
	}
}

// =============================================================================
// RUNNER
// =============================================================================

// scriptedConsumer returns a fixed outcome, optionally after waiting
// for release or cancellation.
type scriptedConsumer struct {
	outcome stream.Outcome
	started chan struct{}
	release chan struct{}
}

func (c *scriptedConsumer) Run(ctx context.Context, _ stream.Sink) stream.Outcome {
	if c.started != nil {
		close(c.started)
	}
	if c.release != nil {
		select {
		case <-c.release:
		case <-ctx.Done():
			return stream.Outcome{Kind: stream.OutcomeFlushed, Err: ctx.Err()}
		}
	}
	return c.outcome
}

func runToOutcome(t *testing.T, tracker *Tracker, runner *Runner, task *Task, consumer stream.Consumer) stream.Outcome {
	t.Helper()
	if err := tracker.Begin(task); err != nil {
		t.Fatal(err)
	}
	outcomeCh := make(chan stream.Outcome, 1)
	if err := runner.Go(task, consumer, stream.SinkFuncs{}, func(o stream.Outcome) {
		outcomeCh <- o
	}); err != nil {
		t.Fatal(err)
	}
	select {
	case o := <-outcomeCh:
		return o
	case <-time.After(2 * time.Second):
		t.Fatal("consumer never finished")
		return stream.Outcome{}
	}
}

func TestRunnerRecordsOutcomes(t *testing.T) {
	tests := []struct {
		name       string
		outcome    stream.Outcome
		wantStatus Status
	}{
		{"done", stream.Outcome{Kind: stream.OutcomeDone, Text: "hi"}, StatusComplete},
		{"interrupted", stream.Outcome{Kind: stream.OutcomeInterrupted, Round: 2}, StatusInterrupted},
		{"error", stream.Outcome{Kind: stream.OutcomeError, Text: "boom"}, StatusFailed},
		{"transport flush", stream.Outcome{Kind: stream.OutcomeFlushed, Err: errors.New("reset")}, StatusFailed},
		{"budget flush", stream.Outcome{Kind: stream.OutcomeFlushed, Truncated: true}, StatusComplete},
		{"canceled flush", stream.Outcome{Kind: stream.OutcomeFlushed, Err: context.Canceled}, StatusCanceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewTracker(10, nil)
			runner := NewRunner(tracker, nil)
			task := New("conv", "prompt", "trade")

			runToOutcome(t, tracker, runner, task, &scriptedConsumer{outcome: tt.outcome})

			if got := task.GetStatus(); got != tt.wantStatus {
				t.Errorf("status = %s, want %s", got, tt.wantStatus)
			}
			if tracker.ActiveFor("conv") != nil {
				t.Error("slot not freed")
			}
			runner.Stop()
		})
	}
}

func TestRunnerInterruptedRoundRecorded(t *testing.T) {
	tracker := NewTracker(10, nil)
	runner := NewRunner(tracker, nil)
	task := New("conv", "prompt", "trade")

	runToOutcome(t, tracker, runner, task, &scriptedConsumer{
		outcome: stream.Outcome{Kind: stream.OutcomeInterrupted, Text: "partial", Round: 3},
	})

	if task.GetRound() != 3 {
		t.Errorf("round = %d, want 3", task.GetRound())
	}
	runner.Stop()
}

func TestRunnerConcurrencyCap(t *testing.T) {
	tracker := NewTracker(10, nil)
	runner := NewRunnerWithOptions(tracker, 1, 0, nil)

	first := New("conv-a", "slow", "trade")
	if err := tracker.Begin(first); err != nil {
		t.Fatal(err)
	}
	blocking := &scriptedConsumer{
		outcome: stream.Outcome{Kind: stream.OutcomeDone},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	done := make(chan struct{})
	if err := runner.Go(first, blocking, stream.SinkFuncs{}, func(stream.Outcome) { close(done) }); err != nil {
		t.Fatal(err)
	}
	<-blocking.started

	second := New("conv-b", "fast", "trade")
	if err := tracker.Begin(second); err != nil {
		t.Fatal(err)
	}
	err := runner.Go(second, &scriptedConsumer{outcome: stream.Outcome{Kind: stream.OutcomeDone}}, stream.SinkFuncs{}, nil)
	if !errors.Is(err, ErrTooManyStreams) {
		t.Errorf("err = %v, want ErrTooManyStreams", err)
	}

	close(blocking.release)
	<-done
	runner.Stop()
}

func TestRunnerRejectsAfterStop(t *testing.T) {
	tracker := NewTracker(10, nil)
	runner := NewRunner(tracker, nil)
	runner.Stop()

	task := New("conv", "prompt", "trade")
	if err := tracker.Begin(task); err != nil {
		t.Fatal(err)
	}
	err := runner.Go(task, &scriptedConsumer{outcome: stream.Outcome{Kind: stream.OutcomeDone}}, stream.SinkFuncs{}, nil)
	if !errors.Is(err, ErrRunnerStopped) {
		t.Errorf("err = %v, want ErrRunnerStopped", err)
	}
}
