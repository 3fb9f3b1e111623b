// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable visual components for the tradedeck TUI.
package components

import (
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/tradedeck/internal/ui/styles"
)

// =============================================================================
// TOAST MANAGER TESTS
// =============================================================================

func TestToastManagerAdd(t *testing.T) {
	m := NewToastManager()

	id := m.AddError("order rejected")
	if id == 0 {
		t.Error("AddError should assign a non-zero ID")
	}
	if !m.HasToasts() {
		t.Error("manager should have toasts after add")
	}

	toasts := m.GetToasts()
	if len(toasts) != 1 || toasts[0].Message != "order rejected" {
		t.Errorf("unexpected toasts: %+v", toasts)
	}
	if toasts[0].Kind != ToastKindError {
		t.Errorf("AddError should produce an error toast, got kind %d", toasts[0].Kind)
	}
}

func TestToastManagerNewestFirst(t *testing.T) {
	m := NewToastManager()
	m.AddStatus("first")
	m.AddStatus("second")

	toasts := m.GetToasts()
	if toasts[0].Message != "second" {
		t.Errorf("newest toast should be first, got %q", toasts[0].Message)
	}
}

func TestToastManagerCap(t *testing.T) {
	m := NewToastManager()
	for i := 0; i < 10; i++ {
		m.AddStatus("toast")
	}

	if got := len(m.GetToasts()); got != 5 {
		t.Errorf("manager should cap visible toasts at 5, got %d", got)
	}
}

func TestToastManagerRemove(t *testing.T) {
	m := NewToastManager()
	id := m.AddWarning("rate limit low")
	m.AddStatus("other")

	m.RemoveToast(id)

	for _, toast := range m.GetToasts() {
		if toast.ID == id {
			t.Error("removed toast should be gone")
		}
	}
	if len(m.GetToasts()) != 1 {
		t.Errorf("one toast should remain, got %d", len(m.GetToasts()))
	}
}

func TestToastManagerTickExpires(t *testing.T) {
	m := NewToastManager()

	expired := NewStatusToast("old news")
	expired.CreatedAt = time.Now().Add(-time.Minute)
	m.AddToast(expired)
	m.AddSuccess("fresh")

	remaining := m.TickToasts()
	if len(remaining) != 1 || remaining[0].Message != "fresh" {
		t.Errorf("tick should drop expired toasts, got %+v", remaining)
	}
}

func TestToastManagerClear(t *testing.T) {
	m := NewToastManager()
	m.AddError("boom")
	m.Clear()

	if m.HasToasts() {
		t.Error("Clear should remove all toasts")
	}
}

// =============================================================================
// TOAST DURATION TESTS
// =============================================================================

func TestToastDurationsByKind(t *testing.T) {
	tests := []struct {
		name  string
		toast Toast
		want  time.Duration
	}{
		{"error", NewErrorToast("e"), ErrorToastDuration},
		{"warning", NewWarningToast("w"), WarningToastDuration},
		{"status", NewStatusToast("s"), DefaultToastDuration},
		{"success", NewSuccessToast("ok"), DefaultToastDuration},
	}

	for _, tt := range tests {
		if tt.toast.Duration != tt.want {
			t.Errorf("%s toast duration = %v, want %v", tt.name, tt.toast.Duration, tt.want)
		}
	}
}

// =============================================================================
// RENDERING TESTS
// =============================================================================

func TestRenderToasts(t *testing.T) {
	theme := styles.NewTheme()

	toasts := []Toast{
		NewErrorToast("submit failed"),
		NewSuccessToast("order placed"),
	}

	view := RenderToasts(theme, toasts, 60)
	if !strings.Contains(view, "submit failed") || !strings.Contains(view, "order placed") {
		t.Errorf("rendered toasts should contain messages, got %q", view)
	}
	if !strings.Contains(view, styles.StatusIndicators.Error) {
		t.Errorf("error toast should carry the error indicator, got %q", view)
	}
	if !strings.Contains(view, styles.StatusIndicators.Success) {
		t.Errorf("success toast should carry the success indicator, got %q", view)
	}

	if RenderToasts(theme, nil, 60) != "" {
		t.Error("no toasts should render empty")
	}
}
