// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable visual components for the tradedeck TUI.
package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/jeranaias/tradedeck/internal/model"
	"github.com/jeranaias/tradedeck/internal/ui/styles"
	"github.com/jeranaias/tradedeck/internal/util"
)

// =============================================================================
// TICKER STRIP COMPONENT - One-line price tape across the top
// =============================================================================

// DefaultStaleAfter dims a ticker that has not updated in this long.
const DefaultStaleAfter = 15 * time.Second

// TickerStrip renders the watched symbols as a one-line tape. Each entry
// shows the last price with a direction marker against the previous
// update; stale entries dim instead of disappearing so the layout never
// jumps.
type TickerStrip struct {
	Width      int
	StaleAfter time.Duration

	theme   *styles.Theme
	order   []string
	entries map[string]*tickerEntry
	now     func() time.Time
}

type tickerEntry struct {
	ticker model.Ticker
	delta  int // -1 down, 0 flat, +1 up vs previous update
}

// NewTickerStrip creates an empty ticker strip.
func NewTickerStrip(theme *styles.Theme) *TickerStrip {
	return &TickerStrip{
		Width:      80,
		StaleAfter: DefaultStaleAfter,
		theme:      theme,
		entries:    make(map[string]*tickerEntry),
		now:        time.Now,
	}
}

// SetWidth updates the strip width.
func (ts *TickerStrip) SetWidth(width int) {
	ts.Width = width
}

// SetSymbols fixes the display order. Symbols without data yet render
// as placeholders.
func (ts *TickerStrip) SetSymbols(symbols []string) {
	ts.order = append([]string(nil), symbols...)
}

// Update records a fresh ticker and computes its direction against the
// previous price.
func (ts *TickerStrip) Update(t model.Ticker) {
	prev, ok := ts.entries[t.Symbol]
	delta := 0
	if ok {
		switch t.Price.Cmp(prev.ticker.Price) {
		case 1:
			delta = 1
		case -1:
			delta = -1
		default:
			delta = prev.delta // unchanged price keeps the last direction
		}
	}
	ts.entries[t.Symbol] = &tickerEntry{ticker: t, delta: delta}

	// Symbols not in the configured order get appended as they appear.
	found := false
	for _, sym := range ts.order {
		if sym == t.Symbol {
			found = true
			break
		}
	}
	if !found {
		ts.order = append(ts.order, t.Symbol)
	}
}

// UpdateAll records a batch of tickers, e.g. one REST snapshot.
func (ts *TickerStrip) UpdateAll(tickers []model.Ticker) {
	for _, t := range tickers {
		ts.Update(t)
	}
}

// Price returns the last known price for a symbol.
func (ts *TickerStrip) Price(symbol string) (decimal.Decimal, bool) {
	entry, ok := ts.entries[symbol]
	if !ok {
		return decimal.Zero, false
	}
	return entry.ticker.Price, true
}

// View renders the tape clipped to the strip width.
func (ts *TickerStrip) View() string {
	if len(ts.order) == 0 {
		return ts.theme.StatusBar.Width(ts.Width).Render(
			ts.theme.PanelHint.Render("no symbols configured"))
	}

	separator := lipgloss.NewStyle().Foreground(styles.Overlay).Render("  ")

	segments := make([]string, 0, len(ts.order))
	for _, sym := range ts.order {
		segments = append(segments, ts.renderSymbol(sym))
	}

	tape := strings.Join(segments, separator)
	if lipgloss.Width(tape) > ts.Width {
		tape = util.Truncate(tape, ts.Width)
	}

	return ts.theme.StatusBar.Width(ts.Width).Render(tape)
}

// renderSymbol renders one tape segment: SYMBOL price marker.
func (ts *TickerStrip) renderSymbol(symbol string) string {
	symbolText := ts.theme.FeedSymbol.Render(symbol)

	entry, ok := ts.entries[symbol]
	if !ok {
		return symbolText + " " + ts.theme.StaleValue.Render("--")
	}

	priceText := util.Price(entry.ticker.Price, 2)

	// RELIABILITY: a feed that stops updating must not keep showing a
	// confident price. Dim it and drop the direction marker.
	if ts.now().Sub(entry.ticker.At) > ts.staleAfter() {
		return symbolText + " " + ts.theme.StaleValue.Render(priceText+" (stale)")
	}

	marker := ""
	style := ts.theme.PriceFlat
	switch entry.delta {
	case 1:
		marker = styles.StatusIndicators.Up
		style = ts.theme.PriceUp
	case -1:
		marker = styles.StatusIndicators.Down
		style = ts.theme.PriceDown
	}

	if marker == "" {
		return symbolText + " " + style.Render(priceText)
	}
	return symbolText + " " + style.Render(priceText+" "+marker)
}

func (ts *TickerStrip) staleAfter() time.Duration {
	if ts.StaleAfter <= 0 {
		return DefaultStaleAfter
	}
	return ts.StaleAfter
}
