// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// TASK STATUS
// =============================================================================

// Status represents the current state of a chat task.
type Status string

const (
	// StatusSubmitted indicates the submission request is in flight or
	// the task is waiting for its first poll.
	StatusSubmitted Status = "Submitted"

	// StatusStreaming indicates a consumer is draining the task.
	StatusStreaming Status = "Streaming"

	// StatusComplete indicates the task reached a final answer.
	StatusComplete Status = "Complete"

	// StatusInterrupted indicates the backend paused the task at a
	// round boundary. The task can be resumed with a continue request.
	StatusInterrupted Status = "Interrupted"

	// StatusFailed indicates the task ended with an error.
	StatusFailed Status = "Failed"

	// StatusCanceled indicates the user abandoned the task.
	StatusCanceled Status = "Canceled"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Terminal reports whether no further transition is possible.
// Interrupted is not terminal: a continue request resumes streaming.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusFailed || s == StatusCanceled
}

// =============================================================================
// TASK STRUCTURE
// =============================================================================

// Task represents one backend chat task. Fields are written by the
// consumer goroutine and read from the UI, so all access goes through
// the accessor methods.
type Task struct {
	// LocalID correlates log lines before the backend assigns an ID.
	LocalID string

	// ID is the backend-assigned task identifier. Empty until the
	// submission response arrives.
	ID string

	// ConversationKey identifies the owning conversation slot. For a
	// fresh conversation this is a local key; adopting the backend
	// conversation_id happens at the conversation layer, never here.
	ConversationKey string

	// Prompt is the user message that started the task.
	Prompt string

	// Mode is the requested assistant mode.
	Mode string

	// Status is the current lifecycle state.
	Status Status

	// SubmitTime is when the submission request was sent.
	SubmitTime time.Time

	// StartTime is when streaming began.
	StartTime time.Time

	// EndTime is when the task reached a terminal state or paused.
	EndTime time.Time

	// Round is the backend round counter from an interrupted pause.
	Round int

	// Error is the failure message for failed tasks.
	Error string

	// cancel is the context cancel function for the consumer
	cancel context.CancelFunc

	// mu protects concurrent access to the task
	mu sync.RWMutex
}

// =============================================================================
// TASK CREATION
// =============================================================================

// New creates a submitted task for the given conversation slot.
func New(conversationKey, prompt, mode string) *Task {
	return &Task{
		LocalID:         uuid.New().String(),
		ConversationKey: conversationKey,
		Prompt:          prompt,
		Mode:            mode,
		Status:          StatusSubmitted,
		SubmitTime:      time.Now(),
	}
}

// =============================================================================
// TASK METHODS
// =============================================================================

// SetID records the backend-assigned task identifier (thread-safe).
func (t *Task) SetID(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ID = id
}

// GetID returns the backend task identifier (thread-safe).
func (t *Task) GetID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ID
}

// SetStatus updates the task status (thread-safe).
// Validates state transitions to prevent invalid status changes.
func (t *Task) SetStatus(status Status) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !isValidTransition(t.Status, status) {
		return fmt.Errorf("invalid status transition from %s to %s", t.Status, status)
	}

	t.Status = status
	return nil
}

// isValidTransition checks if a status transition is valid.
func isValidTransition(from, to Status) bool {
	// Setting the same status is idempotent
	if from == to {
		return true
	}

	switch from {
	case StatusSubmitted:
		// The submission POST itself can fail, so Failed is reachable
		// without ever streaming.
		return to == StatusStreaming || to == StatusFailed || to == StatusCanceled
	case StatusStreaming:
		return to == StatusComplete || to == StatusInterrupted || to == StatusFailed || to == StatusCanceled
	case StatusInterrupted:
		// A continue request resumes streaming; the user can also walk away.
		return to == StatusStreaming || to == StatusCanceled
	default:
		// Terminal states allow no transitions.
		return false
	}
}

// GetStatus returns the current task status (thread-safe).
func (t *Task) GetStatus() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.Status
}

// MarkStreaming marks the task as streaming (thread-safe).
// Bypasses transition validation for internal use by the tracker.
func (t *Task) MarkStreaming() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Status = StatusStreaming
	t.StartTime = time.Now()
}

// MarkComplete marks the task as complete (thread-safe).
func (t *Task) MarkComplete() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Status = StatusComplete
	t.EndTime = time.Now()
}

// MarkInterrupted records a resumable pause at the given round (thread-safe).
func (t *Task) MarkInterrupted(round int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Status = StatusInterrupted
	t.Round = round
	t.EndTime = time.Now()
}

// MarkFailed records a failure (thread-safe).
func (t *Task) MarkFailed(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.Error = err.Error()
	}
	t.Status = StatusFailed
	t.EndTime = time.Now()
}

// MarkCanceled marks the task as canceled (thread-safe).
func (t *Task) MarkCanceled() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Status = StatusCanceled
	t.EndTime = time.Now()
}

// GetError returns the failure message (thread-safe).
func (t *Task) GetError() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.Error
}

// GetRound returns the pause round counter (thread-safe).
func (t *Task) GetRound() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.Round
}

// SetCancelFunc stores the consumer's context cancel function.
// Must be called once, before the consumer starts; later calls would
// orphan the previous context.
func (t *Task) SetCancelFunc(cancel context.CancelFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancel = cancel
}

// Cancel cancels the task if it is still active or paused.
// Returns true if the task was canceled.
func (t *Task) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.Status.Terminal() {
		return false
	}

	if t.cancel != nil {
		t.cancel()
	}

	t.Status = StatusCanceled
	t.EndTime = time.Now()
	return true
}

// Duration returns how long the task has been active or took to finish.
func (t *Task) Duration() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()

	start := t.StartTime
	if start.IsZero() {
		start = t.SubmitTime
	}
	if start.IsZero() {
		return 0
	}
	if t.EndTime.IsZero() {
		return time.Since(start)
	}
	return t.EndTime.Sub(start)
}

// IsActive returns true while the task is submitted or streaming.
func (t *Task) IsActive() bool {
	status := t.GetStatus()
	return status == StatusSubmitted || status == StatusStreaming
}

// IsFinished returns true once the task is terminal or paused.
func (t *Task) IsFinished() bool {
	status := t.GetStatus()
	return status.Terminal() || status == StatusInterrupted
}

// Clone returns a snapshot copy safe to hand across goroutines.
// The clone shares no mutable state with the original.
func (t *Task) Clone() *Task {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return &Task{
		LocalID:         t.LocalID,
		ID:              t.ID,
		ConversationKey: t.ConversationKey,
		Prompt:          t.Prompt,
		Mode:            t.Mode,
		Status:          t.Status,
		SubmitTime:      t.SubmitTime,
		StartTime:       t.StartTime,
		EndTime:         t.EndTime,
		Round:           t.Round,
		Error:           t.Error,
	}
}

// Summary returns a one-line summary for logs and the task list.
func (t *Task) Summary() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	id := t.ID
	if id == "" {
		id = t.LocalID
	}
	switch t.Status {
	case StatusFailed:
		return fmt.Sprintf("[%s] %s: %s", t.Status, id, t.Error)
	case StatusInterrupted:
		return fmt.Sprintf("[%s] %s: paused at round %d", t.Status, id, t.Round)
	default:
		return fmt.Sprintf("[%s] %s", t.Status, id)
	}
}
