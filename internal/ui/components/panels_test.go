// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable visual components for the tradedeck TUI.
package components

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jeranaias/tradedeck/internal/model"
	"github.com/jeranaias/tradedeck/internal/ui/styles"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// =============================================================================
// BALANCES PANEL TESTS
// =============================================================================

func TestBalancesPanelView(t *testing.T) {
	theme := styles.NewTheme()
	p := NewBalancesPanel(theme)
	p.SetSize(60, 10)

	// Before the first fetch the panel must say loading, not "no balances".
	if !strings.Contains(p.View(), "loading") {
		t.Error("unloaded panel should render loading state")
	}

	p.SetBalances([]model.Balance{
		{Asset: "USDC", Total: dec("12500.50"), Available: dec("10000"), InOrders: dec("2500.50")},
	})

	view := p.View()
	for _, want := range []string{"Balances", "USDC", "12500.5", "2500.5"} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q\nview: %q", want, view)
		}
	}

	p.SetBalances(nil)
	if !strings.Contains(p.View(), "no balances") {
		t.Error("loaded empty panel should render empty state")
	}
}

// =============================================================================
// POSITIONS PANEL TESTS
// =============================================================================

func samplePositions() []model.Position {
	return []model.Position{
		{
			Symbol: "BTC", Side: model.PositionLong,
			Size: dec("0.5"), EntryPrice: dec("48000"), MarkPrice: dec("50000"),
			UnrealizedPnL: dec("1000"), ReturnOnEq: dec("0.0416"), Leverage: 5,
		},
		{
			Symbol: "ETH", Side: model.PositionShort,
			Size: dec("2"), EntryPrice: dec("3200"), MarkPrice: dec("3300"),
			UnrealizedPnL: dec("-200"), ReturnOnEq: dec("-0.0625"), Leverage: 3,
		},
	}
}

func TestPositionsPanelView(t *testing.T) {
	theme := styles.NewTheme()
	p := NewPositionsPanel(theme)
	p.SetSize(100, 10)
	p.SetPositions(samplePositions())

	view := p.View()
	for _, want := range []string{"Positions", "BTC", "long", "ETH", "short", "5x", "3x"} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q", want)
		}
	}
}

func TestPositionsPanelCursor(t *testing.T) {
	theme := styles.NewTheme()
	p := NewPositionsPanel(theme)
	p.SetPositions(samplePositions())

	pos, ok := p.Selected()
	if !ok || pos.Symbol != "BTC" {
		t.Errorf("initial selection should be first row, got %v ok=%v", pos.Symbol, ok)
	}

	p.MoveCursor(1)
	pos, _ = p.Selected()
	if pos.Symbol != "ETH" {
		t.Errorf("cursor should move to ETH, got %v", pos.Symbol)
	}

	// Cursor clamps at both ends.
	p.MoveCursor(5)
	pos, _ = p.Selected()
	if pos.Symbol != "ETH" {
		t.Errorf("cursor should clamp at last row, got %v", pos.Symbol)
	}
	p.MoveCursor(-10)
	pos, _ = p.Selected()
	if pos.Symbol != "BTC" {
		t.Errorf("cursor should clamp at first row, got %v", pos.Symbol)
	}
}

func TestPositionsPanelCursorSurvivesShrink(t *testing.T) {
	theme := styles.NewTheme()
	p := NewPositionsPanel(theme)
	p.SetPositions(samplePositions())
	p.MoveCursor(1)

	// A refresh that drops rows must clamp the cursor, not dangle it.
	p.SetPositions(samplePositions()[:1])
	pos, ok := p.Selected()
	if !ok || pos.Symbol != "BTC" {
		t.Errorf("cursor should clamp after shrink, got %v ok=%v", pos.Symbol, ok)
	}

	p.SetPositions(nil)
	if _, ok := p.Selected(); ok {
		t.Error("empty panel should have no selection")
	}
}

// =============================================================================
// ORDERS PANEL TESTS
// =============================================================================

func TestOrdersPanelView(t *testing.T) {
	theme := styles.NewTheme()
	p := NewOrdersPanel(theme)
	p.SetSize(90, 10)
	p.SetOrders([]model.Order{
		{
			ID: "o-1", Market: model.MarketHyperliquid, Symbol: "BTC",
			Side: model.OrderBuy, Type: model.OrderLimit,
			Price: dec("49000"), Size: dec("0.25"), Filled: dec("0"),
			Status: model.OrderOpen, CreatedAt: time.Now(),
		},
		{
			ID: "o-2", Market: model.MarketHyperliquid, Symbol: "SOL",
			Side: model.OrderSell, Type: model.OrderMarket,
			Size: dec("10"), Filled: dec("10"),
			Status: model.OrderFilled, CreatedAt: time.Now(),
		},
	})

	view := p.View()
	for _, want := range []string{"Open Orders", "BTC", "buy", "49,000.00", "SOL", "sell", "market", "filled"} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q", want)
		}
	}
}

func TestOrdersPanelSelection(t *testing.T) {
	theme := styles.NewTheme()
	p := NewOrdersPanel(theme)
	p.SetOrders([]model.Order{
		{ID: "o-1", Symbol: "BTC", Side: model.OrderBuy, Type: model.OrderLimit, Status: model.OrderOpen},
		{ID: "o-2", Symbol: "ETH", Side: model.OrderSell, Type: model.OrderLimit, Status: model.OrderOpen},
	})

	p.MoveCursor(1)
	ord, ok := p.Selected()
	if !ok || ord.ID != "o-2" {
		t.Errorf("selection should track the cursor, got %v ok=%v", ord.ID, ok)
	}
}

// =============================================================================
// RATE LIMITS PANEL TESTS
// =============================================================================

func TestRateLimitsPanelView(t *testing.T) {
	theme := styles.NewTheme()
	p := NewRateLimitsPanel(theme)
	p.SetSize(60, 6)

	now := time.Now()
	p.now = func() time.Time { return now }
	p.SetLimits([]model.RateLimit{
		{Market: model.MarketHyperliquid, Used: 120, Cap: 1200, ResetAt: now.Add(30 * time.Second)},
		{Market: model.MarketBinance, Used: 1100, Cap: 1200, ResetAt: now.Add(45 * time.Second)},
	})

	view := p.View()
	for _, want := range []string{"Rate Limits", "Hyperliquid", "Binance", "120/1,200", "1,100/1,200", "resets in"} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q\nview: %q", want, view)
		}
	}
}

// =============================================================================
// ACTIVITY FEED TESTS
// =============================================================================

func feedEvents(n int) []model.ActivityEvent {
	events := make([]model.ActivityEvent, n)
	for i := range events {
		events[i] = model.ActivityEvent{
			ID:     "ev",
			Market: model.MarketHyperliquid,
			Kind:   "fill",
			Symbol: "BTC",
			Text:   "filled",
			At:     time.Date(2025, 6, 1, 12, 0, i, 0, time.UTC),
		}
	}
	return events
}

func TestActivityFeedTail(t *testing.T) {
	theme := styles.NewTheme()
	f := NewActivityFeed(theme)
	f.SetSize(80, 6)
	f.SetEvents(feedEvents(10))

	view := f.View()
	// Pinned to tail: the newest event's timestamp is visible.
	if !strings.Contains(view, "12:00:09") {
		t.Errorf("tail-pinned feed should show newest event, got %q", view)
	}
}

func TestActivityFeedScrollback(t *testing.T) {
	theme := styles.NewTheme()
	f := NewActivityFeed(theme)
	f.SetSize(80, 6)
	f.SetEvents(feedEvents(10))

	f.ScrollUp(5)
	view := f.View()
	if strings.Contains(view, "12:00:09") {
		t.Errorf("scrolled feed should hide the newest event, got %q", view)
	}
	if !strings.Contains(view, "(scrolled)") {
		t.Error("scrolled feed should mark itself")
	}

	// Appending while scrolled must not yank the view back to the tail.
	f.Append(model.ActivityEvent{Kind: "fill", Market: model.MarketHyperliquid, Text: "new", At: time.Now()})
	if strings.Contains(f.View(), "12:00:10") {
		t.Error("append while scrolled should keep the viewport position")
	}

	f.ScrollToTail()
	if !strings.Contains(f.View(), "new") {
		t.Error("ScrollToTail should show the appended event")
	}
}

// =============================================================================
// TABLE HELPER TESTS
// =============================================================================

func TestRenderCellAlignment(t *testing.T) {
	left := RenderCell(Column{Width: 8}, "BTC")
	if left != "BTC     " {
		t.Errorf("left-aligned cell = %q", left)
	}

	right := RenderCell(Column{Width: 8, AlignRight: true}, "1.25")
	if right != "    1.25" {
		t.Errorf("right-aligned cell = %q", right)
	}

	clipped := RenderCell(Column{Width: 5}, "verylongvalue")
	if len([]rune(clipped)) != 5 {
		t.Errorf("overflowing cell should clip to width, got %q", clipped)
	}
}

func TestTableWidth(t *testing.T) {
	cols := []Column{{Width: 6}, {Width: 10}, {Width: 8}}
	// Three columns plus two 2-wide gutters.
	if got := TableWidth(cols); got != 28 {
		t.Errorf("TableWidth = %d, want 28", got)
	}
}
