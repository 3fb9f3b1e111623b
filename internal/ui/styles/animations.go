// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the tradedeck TUI.
package styles

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// SPINNER FRAME SETS
// =============================================================================

// SpinnerConfig describes one spinner animation: its frames and frame rate.
type SpinnerConfig struct {
	Frames []string
	FPS    int
}

// LineSpinner is the default ASCII-safe spinner.
var LineSpinner = SpinnerConfig{
	Frames: []string{"|", "/", "-", "\\"},
	FPS:    10,
}

// DotsSpinner is a slower trailing-dots spinner for long waits.
var DotsSpinner = SpinnerConfig{
	Frames: []string{".  ", ".. ", "...", " ..", "  .", "   "},
	FPS:    6,
}

// PulseSpinner is an ASCII pulse used while a task is queued.
var PulseSpinner = SpinnerConfig{
	Frames: []string{"( )", "(o)", "(O)", "(o)"},
	FPS:    8,
}

// Duration returns the per-frame interval for the spinner.
func (s SpinnerConfig) Duration() time.Duration {
	if s.FPS <= 0 {
		return time.Second / 10
	}
	return time.Second / time.Duration(s.FPS)
}

// =============================================================================
// PROGRESS AND GAUGE BARS
// =============================================================================

var (
	barFilledStyle = lipgloss.NewStyle().Foreground(Cyan)
	barEmptyStyle  = lipgloss.NewStyle().Foreground(Overlay)
)

// RenderProgressBar renders a [####----] bar of the given width for a
// 0..1 fraction. Values outside the range are clamped.
func RenderProgressBar(width int, fraction float64) string {
	if width < 2 {
		return ""
	}
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	inner := width - 2
	filled := int(fraction * float64(inner))
	if filled > inner {
		filled = inner
	}

	return "[" +
		barFilledStyle.Render(strings.Repeat("#", filled)) +
		barEmptyStyle.Render(strings.Repeat("-", inner-filled)) +
		"]"
}

// RenderHeadroomBar renders a rate limit headroom gauge. Color shifts from
// emerald through amber to rose as headroom shrinks, so pressure reads at
// a glance even in peripheral vision.
func RenderHeadroomBar(width int, headroom float64) string {
	if width < 2 {
		return ""
	}
	if headroom < 0 {
		headroom = 0
	}
	if headroom > 1 {
		headroom = 1
	}

	barColor := Emerald
	if headroom < 0.1 {
		barColor = Rose
	} else if headroom < 0.25 {
		barColor = Amber
	}

	inner := width - 2
	filled := int(headroom * float64(inner))
	if filled > inner {
		filled = inner
	}

	filledStyle := lipgloss.NewStyle().Foreground(barColor)
	return "[" +
		filledStyle.Render(strings.Repeat("#", filled)) +
		barEmptyStyle.Render(strings.Repeat("-", inner-filled)) +
		"]"
}

// =============================================================================
// CURSOR FRAMES
// =============================================================================

// TypingCursor alternates to form a blinking cursor during streaming.
var TypingCursor = []string{"_", " "}

// StreamingCursorFrame returns the cursor frame for a given tick count.
func StreamingCursorFrame(tick int) string {
	return TypingCursor[tick%len(TypingCursor)]
}
