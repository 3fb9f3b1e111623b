// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable visual components for the tradedeck TUI.
package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/tradedeck/internal/ui/styles"
)

// =============================================================================
// SPINNER MODEL
// =============================================================================

// Spinner is a loading spinner with an optional message and elapsed timer.
type Spinner struct {
	spinner spinner.Model

	message   string
	detail    string
	startTime time.Time

	isActive  bool
	showTimer bool
}

// NewSpinner creates a new spinner with ASCII-safe line frames.
func NewSpinner() Spinner {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: styles.LineSpinner.Frames,
		FPS:    styles.LineSpinner.Duration(),
	}
	s.Style = lipgloss.NewStyle().Foreground(styles.Purple)

	return Spinner{
		spinner:   s,
		message:   "Loading",
		showTimer: true,
	}
}

// NewTaskSpinner creates a spinner for a running assistant task.
func NewTaskSpinner() Spinner {
	s := NewSpinner()
	s.message = "Working"
	return s
}

// NewQueuedSpinner creates a spinner shown while a task waits for its
// first chunk.
func NewQueuedSpinner() Spinner {
	s := NewSpinner()
	s.spinner.Spinner = spinner.Spinner{
		Frames: styles.PulseSpinner.Frames,
		FPS:    styles.PulseSpinner.Duration(),
	}
	s.message = "Queued"
	return s
}

// SetMessage sets the text displayed next to the spinner.
func (s *Spinner) SetMessage(msg string) {
	s.message = msg
}

// SetDetail sets additional detail text below the spinner.
func (s *Spinner) SetDetail(detail string) {
	s.detail = detail
}

// SetShowTimer toggles the elapsed timer display.
func (s *Spinner) SetShowTimer(show bool) {
	s.showTimer = show
}

// Start activates the spinner and returns its tick command.
func (s *Spinner) Start() tea.Cmd {
	s.isActive = true
	s.startTime = time.Now()
	return s.spinner.Tick
}

// Stop deactivates the spinner.
func (s *Spinner) Stop() {
	s.isActive = false
}

// IsActive reports whether the spinner is animating.
func (s *Spinner) IsActive() bool {
	return s.isActive
}

// Elapsed returns how long the spinner has been running.
func (s *Spinner) Elapsed() time.Duration {
	if s.startTime.IsZero() {
		return 0
	}
	return time.Since(s.startTime)
}

// Update advances the spinner animation.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	if !s.isActive {
		return s, nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

// View renders the spinner with its message and optional timer.
func (s Spinner) View() string {
	if !s.isActive {
		return ""
	}

	result := s.spinner.View()
	if s.message != "" {
		messageView := lipgloss.NewStyle().
			Foreground(styles.TextSecondary).
			Italic(true).
			Render(" " + s.message + "...")
		result += messageView
	}

	if s.showTimer && !s.startTime.IsZero() {
		elapsed := time.Since(s.startTime).Round(time.Second)
		timerView := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Render(" (" + elapsed.String() + ")")
		result += timerView
	}

	if s.detail != "" {
		detailView := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			PaddingLeft(2).
			Render(s.detail)
		result += "\n" + detailView
	}

	return result
}
