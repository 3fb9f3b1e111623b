// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrConversationBusy is returned when a conversation slot already has
// an active task. The UI surfaces this as "wait for the current answer".
var ErrConversationBusy = errors.New("conversation already has an active task")

// =============================================================================
// TASK TRACKER
// =============================================================================

// Tracker is the task ledger. It enforces single-flight per
// conversation slot, keeps a bounded history of finished tasks, and
// feeds status-change notifications to the UI.
type Tracker struct {
	// tasks is the list of all tracked tasks, oldest first
	tasks []*Task

	// active maps conversation key to its in-flight task
	active map[string]*Task

	// maxHistory is the maximum number of finished tasks to keep
	maxHistory int

	// mu protects concurrent access to the tracker
	mu sync.RWMutex

	// notifyChan sends notifications when tasks finish
	notifyChan chan Notification

	logger *zap.Logger
}

// Notification reports one task reaching a finished state.
type Notification struct {
	TaskID          string
	ConversationKey string
	Status          Status
	Error           string
	Round           int
	Duration        time.Duration
}

// NewTracker creates a task tracker.
// maxHistory sets the maximum number of finished tasks to keep
// (0 = unlimited). A nil logger is replaced with a no-op logger.
func NewTracker(maxHistory int, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		tasks:      make([]*Task, 0),
		active:     make(map[string]*Task),
		maxHistory: maxHistory,
		notifyChan: make(chan Notification, 100),
		logger:     logger,
	}
}

// =============================================================================
// TASK REGISTRATION
// =============================================================================

// Begin registers a task as the active task for its conversation slot.
// Returns ErrConversationBusy when the slot already has one; the guard
// covers the whole window from submission to terminal state, so a rapid
// double-send cannot start two streams on one conversation.
func (t *Tracker) Begin(task *Task) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if current, ok := t.active[task.ConversationKey]; ok {
		return fmt.Errorf("%w: task %s", ErrConversationBusy, current.LocalID)
	}

	t.active[task.ConversationKey] = task
	t.tasks = append(t.tasks, task)
	return nil
}

// Resume re-registers a paused task as active so a continue request can
// stream into it. Fails like Begin when the slot is busy.
func (t *Tracker) Resume(task *Task) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if current, ok := t.active[task.ConversationKey]; ok {
		return fmt.Errorf("%w: task %s", ErrConversationBusy, current.LocalID)
	}
	if task.GetStatus() != StatusInterrupted {
		return fmt.Errorf("task %s is not resumable (status %s)", task.LocalID, task.GetStatus())
	}

	t.active[task.ConversationKey] = task
	return nil
}

// =============================================================================
// QUERIES
// =============================================================================

// Get retrieves a task by backend ID or local ID.
// Returns a clone, or nil if not found.
func (t *Tracker) Get(id string) *Task {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, task := range t.tasks {
		if task.GetID() == id || task.LocalID == id {
			return task.Clone()
		}
	}
	return nil
}

// ActiveFor returns the in-flight task for a conversation slot, or nil.
func (t *Tracker) ActiveFor(conversationKey string) *Task {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if task, ok := t.active[conversationKey]; ok {
		return task.Clone()
	}
	return nil
}

// Active returns clones of all in-flight tasks.
func (t *Tracker) Active() []*Task {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]*Task, 0, len(t.active))
	for _, task := range t.active {
		result = append(result, task.Clone())
	}
	return result
}

// History returns clones of all finished tasks, oldest first.
func (t *Tracker) History() []*Task {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]*Task, 0)
	for _, task := range t.tasks {
		if task.IsFinished() {
			result = append(result, task.Clone())
		}
	}
	return result
}

// Count returns the total number of tracked tasks.
func (t *Tracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.tasks)
}

// ActiveCount returns the number of in-flight tasks.
func (t *Tracker) ActiveCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.active)
}

// =============================================================================
// STATE CHANGES
// =============================================================================

// MarkStreaming transitions a registered task to streaming.
func (t *Tracker) MarkStreaming(task *Task) {
	t.mu.Lock()
	defer t.mu.Unlock()
	task.MarkStreaming()
}

// MarkComplete finishes a task and frees its conversation slot.
func (t *Tracker) MarkComplete(task *Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// A task canceled out-of-band already notified; terminal states
	// are sticky.
	if task.GetStatus().Terminal() {
		return
	}

	task.MarkComplete()
	t.release(task)
	t.notify(Notification{
		TaskID:          task.GetID(),
		ConversationKey: task.ConversationKey,
		Status:          StatusComplete,
		Duration:        task.Duration(),
	})
	t.cleanupLocked()
}

// MarkInterrupted pauses a task and frees its conversation slot so a
// continue request can claim it.
func (t *Tracker) MarkInterrupted(task *Task, round int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if task.GetStatus().Terminal() {
		return
	}

	task.MarkInterrupted(round)
	t.release(task)
	t.notify(Notification{
		TaskID:          task.GetID(),
		ConversationKey: task.ConversationKey,
		Status:          StatusInterrupted,
		Round:           round,
		Duration:        task.Duration(),
	})
	t.cleanupLocked()
}

// MarkFailed fails a task and frees its conversation slot.
func (t *Tracker) MarkFailed(task *Task, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if task.GetStatus().Terminal() {
		return
	}

	task.MarkFailed(err)
	t.release(task)
	n := Notification{
		TaskID:          task.GetID(),
		ConversationKey: task.ConversationKey,
		Status:          StatusFailed,
		Duration:        task.Duration(),
	}
	if err != nil {
		n.Error = err.Error()
	}
	t.notify(n)
	t.cleanupLocked()
}

// MarkCanceled cancels a task and frees its conversation slot.
func (t *Tracker) MarkCanceled(task *Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if task.GetStatus().Terminal() {
		return
	}

	task.MarkCanceled()
	t.release(task)
	t.notify(Notification{
		TaskID:          task.GetID(),
		ConversationKey: task.ConversationKey,
		Status:          StatusCanceled,
		Duration:        task.Duration(),
	})
	t.cleanupLocked()
}

// Cancel cancels a task by backend or local ID.
// Returns true if the task was found and canceled.
func (t *Tracker) Cancel(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, task := range t.tasks {
		if task.GetID() != id && task.LocalID != id {
			continue
		}
		if !task.Cancel() {
			return false
		}
		t.release(task)
		t.notify(Notification{
			TaskID:          task.GetID(),
			ConversationKey: task.ConversationKey,
			Status:          StatusCanceled,
			Duration:        task.Duration(),
		})
		return true
	}
	return false
}

// release frees the conversation slot if this task holds it.
// Must be called with lock held.
func (t *Tracker) release(task *Task) {
	if current, ok := t.active[task.ConversationKey]; ok && current == task {
		delete(t.active, task.ConversationKey)
	}
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

// Notifications returns the channel of finished-task notifications.
func (t *Tracker) Notifications() <-chan Notification {
	return t.notifyChan
}

// notify sends a notification without blocking. Must be called with
// lock held.
func (t *Tracker) notify(n Notification) {
	select {
	case t.notifyChan <- n:
	default:
		// RELIABILITY: a stalled consumer must not block terminal handling
		t.logger.Warn("notification channel full, dropping",
			zap.String("task_id", n.TaskID),
			zap.String("status", n.Status.String()))
	}
}

// =============================================================================
// CLEANUP
// =============================================================================

// cleanupLocked drops the oldest finished tasks past maxHistory.
// Must be called with lock held.
func (t *Tracker) cleanupLocked() {
	if t.maxHistory <= 0 {
		return
	}

	finished := 0
	for _, task := range t.tasks {
		if task.IsFinished() {
			finished++
		}
	}
	if finished <= t.maxHistory {
		return
	}

	toRemove := finished - t.maxHistory
	kept := make([]*Task, 0, len(t.tasks)-toRemove)
	for _, task := range t.tasks {
		if toRemove > 0 && task.IsFinished() {
			toRemove--
			continue
		}
		kept = append(kept, task)
	}
	t.tasks = kept
}

// Clear removes all finished tasks from the history.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := make([]*Task, 0)
	for _, task := range t.tasks {
		if !task.IsFinished() {
			kept = append(kept, task)
		}
	}
	t.tasks = kept
}

// Summary returns a formatted one-line summary of the ledger.
func (t *Tracker) Summary() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var streaming, paused, complete, failed int
	for _, task := range t.tasks {
		switch task.GetStatus() {
		case StatusStreaming:
			streaming++
		case StatusInterrupted:
			paused++
		case StatusComplete:
			complete++
		case StatusFailed:
			failed++
		}
	}
	return fmt.Sprintf("Streaming: %d | Paused: %d | Complete: %d | Failed: %d",
		streaming, paused, complete, failed)
}
