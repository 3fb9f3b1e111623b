// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tasks tracks backend chat tasks from submission to their
// terminal state.
//
// Each user message becomes one task. The backend answers the
// submission with a task handle; a stream consumer then drains the
// task's output while the tracker enforces the concurrency rules: at
// most one active task per conversation slot, a global cap on
// concurrent streams, and a bounded history of finished tasks.
//
// # Key Types
//
//   - Task: one chat task with a validated status lifecycle
//   - Tracker: the task ledger with single-flight and notifications
//   - Runner: executes stream consumers against tracked tasks
//
// # Usage
//
// Submit and consume a task:
//
//	t := tasks.New(convKey, "rebalance the grid", "trade")
//	if err := tracker.Begin(t); err != nil {
//	    return err // conversation already streaming
//	}
//	t.SetID(resp.TaskID)
//	runner.Go(t, consumer, sink, onOutcome)
//
// Watch for finished tasks:
//
//	for n := range tracker.Notifications() {
//	    log.Info("task finished", zap.String("status", n.Status.String()))
//	}
package tasks
