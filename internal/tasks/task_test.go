// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"context"
	"errors"
	"testing"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from  Status
		to    Status
		valid bool
	}{
		{StatusSubmitted, StatusStreaming, true},
		{StatusSubmitted, StatusFailed, true},
		{StatusSubmitted, StatusCanceled, true},
		{StatusSubmitted, StatusComplete, false},
		{StatusStreaming, StatusComplete, true},
		{StatusStreaming, StatusInterrupted, true},
		{StatusStreaming, StatusFailed, true},
		{StatusStreaming, StatusCanceled, true},
		{StatusInterrupted, StatusStreaming, true}, // continue resumes
		{StatusInterrupted, StatusCanceled, true},
		{StatusInterrupted, StatusComplete, false},
		{StatusComplete, StatusStreaming, false},
		{StatusFailed, StatusStreaming, false},
		{StatusCanceled, StatusStreaming, false},
		{StatusStreaming, StatusStreaming, true}, // idempotent
	}

	for _, tt := range tests {
		task := New("conv", "prompt", "trade")
		task.Status = tt.from
		err := task.SetStatus(tt.to)
		if tt.valid && err != nil {
			t.Errorf("%s -> %s: unexpected error %v", tt.from, tt.to, err)
		}
		if !tt.valid && err == nil {
			t.Errorf("%s -> %s: transition allowed", tt.from, tt.to)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	if StatusInterrupted.Terminal() {
		t.Error("interrupted must be resumable, not terminal")
	}
	for _, s := range []Status{StatusComplete, StatusFailed, StatusCanceled} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}

func TestTaskLifecycleMarks(t *testing.T) {
	task := New("conv", "prompt", "trade")
	if task.GetStatus() != StatusSubmitted {
		t.Fatalf("new task status = %s", task.GetStatus())
	}
	if task.LocalID == "" {
		t.Error("missing local ID")
	}

	task.SetID("task-99")
	task.MarkStreaming()
	if !task.IsActive() {
		t.Error("streaming task not active")
	}

	task.MarkInterrupted(3)
	if task.GetStatus() != StatusInterrupted || task.GetRound() != 3 {
		t.Errorf("status = %s round = %d", task.GetStatus(), task.GetRound())
	}
	if !task.IsFinished() {
		t.Error("paused task should count as finished for history")
	}
}

func TestTaskCancel(t *testing.T) {
	task := New("conv", "prompt", "trade")
	ctx, cancel := context.WithCancel(context.Background())
	task.SetCancelFunc(cancel)
	task.MarkStreaming()

	if !task.Cancel() {
		t.Fatal("cancel refused on streaming task")
	}
	if ctx.Err() == nil {
		t.Error("context not canceled")
	}
	if task.GetStatus() != StatusCanceled {
		t.Errorf("status = %s", task.GetStatus())
	}

	// Terminal tasks refuse further cancels.
	if task.Cancel() {
		t.Error("cancel succeeded on terminal task")
	}
}

func TestTaskMarkFailed(t *testing.T) {
	task := New("conv", "prompt", "trade")
	task.MarkStreaming()
	task.MarkFailed(errors.New("model overloaded"))

	if task.GetStatus() != StatusFailed {
		t.Errorf("status = %s", task.GetStatus())
	}
	if task.GetError() != "model overloaded" {
		t.Errorf("error = %q", task.GetError())
	}
}

func TestTaskClone(t *testing.T) {
	task := New("conv", "prompt", "trade")
	task.SetID("task-1")
	task.MarkStreaming()

	clone := task.Clone()
	if clone.ID != "task-1" || clone.Status != StatusStreaming {
		t.Errorf("clone = %+v", clone)
	}

	clone.Status = StatusFailed
	if task.GetStatus() != StatusStreaming {
		t.Error("clone shares state with original")
	}
}
