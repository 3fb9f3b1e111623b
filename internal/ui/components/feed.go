// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable visual components for the tradedeck TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/tradedeck/internal/model"
	"github.com/jeranaias/tradedeck/internal/ui/styles"
	"github.com/jeranaias/tradedeck/internal/util"
)

// =============================================================================
// ACTIVITY FEED COMPONENT
// =============================================================================

// ActivityFeed renders the cross-market event stream: fills, cancels,
// strategy actions, feed reconnects. Newest events render at the
// bottom, mirroring a terminal tail.
type ActivityFeed struct {
	Width   int
	Height  int
	Focused bool

	theme  *styles.Theme
	events []model.ActivityEvent
	offset int // scrollback offset in rows, 0 = pinned to tail
	loaded bool
}

// NewActivityFeed creates an empty feed.
func NewActivityFeed(theme *styles.Theme) *ActivityFeed {
	return &ActivityFeed{theme: theme, Width: 80, Height: 8}
}

// SetSize updates the feed dimensions.
func (f *ActivityFeed) SetSize(width, height int) {
	f.Width = width
	f.Height = height
}

// SetEvents replaces the feed contents. Events are expected newest-last.
func (f *ActivityFeed) SetEvents(events []model.ActivityEvent) {
	f.events = events
	f.loaded = true
	f.clampOffset()
}

// Append adds one event at the tail. The view stays pinned to the tail
// unless the user has scrolled back.
func (f *ActivityFeed) Append(event model.ActivityEvent) {
	f.events = append(f.events, event)
	f.loaded = true
	if f.offset > 0 {
		f.offset++
		f.clampOffset()
	}
}

// ScrollUp moves into scrollback.
func (f *ActivityFeed) ScrollUp(rows int) {
	f.offset += rows
	f.clampOffset()
}

// ScrollDown moves toward the tail.
func (f *ActivityFeed) ScrollDown(rows int) {
	f.offset -= rows
	f.clampOffset()
}

// ScrollToTail pins the feed back to the newest event.
func (f *ActivityFeed) ScrollToTail() {
	f.offset = 0
}

func (f *ActivityFeed) clampOffset() {
	maxOffset := len(f.events) - f.visibleRows()
	if maxOffset < 0 {
		maxOffset = 0
	}
	if f.offset > maxOffset {
		f.offset = maxOffset
	}
	if f.offset < 0 {
		f.offset = 0
	}
}

// visibleRows returns how many event rows fit inside the frame.
func (f *ActivityFeed) visibleRows() int {
	rows := f.Height - 3 // title plus border
	if rows < 1 {
		rows = 1
	}
	return rows
}

// View renders the feed.
func (f *ActivityFeed) View() string {
	var b strings.Builder

	title := f.theme.PanelTitle.Render("Activity")
	if f.offset > 0 {
		title += " " + f.theme.PanelHint.Render("(scrolled)")
	}
	b.WriteString(title)
	b.WriteString("\n")

	frame := f.theme.Panel
	if f.Focused {
		frame = f.theme.PanelFocused
	}

	if !f.loaded {
		b.WriteString(f.theme.PanelEmpty.Render("loading..."))
		return frame.Width(f.Width - 2).Render(b.String())
	}
	if len(f.events) == 0 {
		b.WriteString(f.theme.PanelEmpty.Render("no activity yet"))
		return frame.Width(f.Width - 2).Render(b.String())
	}

	rows := f.visibleRows()
	end := len(f.events) - f.offset
	start := end - rows
	if start < 0 {
		start = 0
	}

	for i := start; i < end; i++ {
		b.WriteString(f.renderEvent(f.events[i]))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return frame.Width(f.Width - 2).Render(b.String())
}

// renderEvent renders one feed row: time, market, kind, symbol, text.
func (f *ActivityFeed) renderEvent(ev model.ActivityEvent) string {
	parts := []string{
		f.theme.FeedTime.Render(ev.At.Format("15:04:05")),
	}

	marketStyle := f.theme.BadgeHyperliquid
	if ev.Market == model.MarketBinance {
		marketStyle = f.theme.BadgeBinance
	}
	parts = append(parts, marketStyle.Render(util.PadRight(string(ev.Market), 11)))

	parts = append(parts, f.theme.FeedKind.Render(util.PadRight(ev.Kind, 9)))

	if ev.Symbol != "" {
		parts = append(parts, f.theme.FeedSymbol.Render(util.PadRight(ev.Symbol, 6)))
	}

	line := strings.Join(parts, " ")
	text := util.FirstLine(ev.Text)
	remaining := f.Width - 6 - lipgloss.Width(line)
	if remaining > 8 {
		text = util.Truncate(text, remaining)
	}
	return line + " " + f.theme.FeedText.Render(text)
}
