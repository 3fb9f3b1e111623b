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

func candleSeries(n int) []model.Candle {
	candles := make([]model.Candle, n)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := range candles {
		open := decimal.NewFromInt(int64(100 + i))
		close := open.Add(decimal.NewFromInt(1))
		if i%3 == 0 {
			close = open.Sub(decimal.NewFromInt(1))
		}
		candles[i] = model.Candle{
			OpenTime: base.Add(time.Duration(i) * time.Minute),
			Open:     open,
			High:     open.Add(decimal.NewFromInt(2)),
			Low:      open.Sub(decimal.NewFromInt(2)),
			Close:    close,
			Volume:   decimal.NewFromInt(int64(10 * (i + 1))),
		}
	}
	return candles
}

// =============================================================================
// PRICE MAPPING TESTS
// =============================================================================

func TestRowFor(t *testing.T) {
	low := decimal.NewFromInt(100)
	high := decimal.NewFromInt(200)

	tests := []struct {
		name  string
		value decimal.Decimal
		rows  int
		want  int
	}{
		{"top", decimal.NewFromInt(200), 10, 0},
		{"bottom", decimal.NewFromInt(100), 10, 9},
		{"middle", decimal.NewFromInt(150), 11, 5},
		{"above range clamps", decimal.NewFromInt(250), 10, 0},
		{"below range clamps", decimal.NewFromInt(50), 10, 9},
	}

	for _, tt := range tests {
		if got := rowFor(tt.value, low, high, tt.rows); got != tt.want {
			t.Errorf("%s: rowFor = %d, want %d", tt.name, got, tt.want)
		}
	}
}

// =============================================================================
// CHART RENDERING TESTS
// =============================================================================

func TestChartView(t *testing.T) {
	theme := styles.NewTheme()
	chart := NewChart(theme)
	chart.SetSize(60, 18)
	chart.SetKlines(&model.KlineSet{
		Symbol:  "BTC",
		Market:  model.MarketHyperliquid,
		Period:  "1m",
		Candles: candleSeries(20),
	})

	view := chart.View()

	if !strings.Contains(view, "#") {
		t.Error("chart should contain candle bodies")
	}
	if !strings.Contains(view, "|") {
		t.Error("chart should contain wicks")
	}
	// Axis labels carry the series extremes.
	if !strings.Contains(view, "121.00") {
		t.Errorf("axis should label the high, got:\n%s", view)
	}
	if !strings.Contains(view, "98.00") {
		t.Errorf("axis should label the low, got:\n%s", view)
	}
	// Time axis shows the first candle's stamp.
	if !strings.Contains(view, "12:00") {
		t.Error("time axis should show the first candle time")
	}
}

func TestChartViewEmpty(t *testing.T) {
	theme := styles.NewTheme()
	chart := NewChart(theme)

	if !strings.Contains(chart.View(), "no chart data") {
		t.Error("chart without data should render its empty state")
	}

	chart.SetKlines(&model.KlineSet{Symbol: "BTC"})
	if !strings.Contains(chart.View(), "no chart data") {
		t.Error("chart with zero candles should render its empty state")
	}
}

func TestChartViewTooSmall(t *testing.T) {
	theme := styles.NewTheme()
	chart := NewChart(theme)
	chart.SetSize(12, 4)
	chart.SetKlines(&model.KlineSet{Candles: candleSeries(5)})

	if !strings.Contains(chart.View(), "too small") {
		t.Error("cramped chart should say the terminal is too small")
	}
}

func TestChartFlatSeries(t *testing.T) {
	theme := styles.NewTheme()
	chart := NewChart(theme)
	chart.SetSize(50, 14)

	flat := model.Candle{
		OpenTime: time.Now(),
		Open:     decimal.NewFromInt(100),
		High:     decimal.NewFromInt(100),
		Low:      decimal.NewFromInt(100),
		Close:    decimal.NewFromInt(100),
		Volume:   decimal.NewFromInt(5),
	}
	chart.SetKlines(&model.KlineSet{Candles: []model.Candle{flat, flat, flat}})

	// A zero-range series must not divide by zero.
	view := chart.View()
	if view == "" {
		t.Error("flat series should still render")
	}
}

func TestChartOverlaySkipsWarmup(t *testing.T) {
	theme := styles.NewTheme()
	chart := NewChart(theme)
	chart.SetSize(60, 18)

	candles := candleSeries(10)
	series := make([]model.IndicatorValue, len(candles))
	for i := range series {
		// First half is warmup: no value yet.
		if i >= 5 {
			series[i] = model.IndicatorValue{Value: candles[i].Close, OK: true}
		}
	}

	chart.SetKlines(&model.KlineSet{
		Candles:    candles,
		Indicators: map[string][]model.IndicatorValue{"sma_20": series},
	})
	chart.SetOverlays([]string{"sma_20"})

	view := chart.View()
	if !strings.Contains(view, "*") {
		t.Error("overlay should plot its computed points")
	}
}

func TestChartOverlayLimit(t *testing.T) {
	theme := styles.NewTheme()
	chart := NewChart(theme)
	chart.SetOverlays([]string{"sma_20", "ema_12", "rsi_14"})

	if got := len(chart.Overlays()); got != 3 {
		t.Errorf("Overlays should report what was set, got %d", got)
	}
	// Rendering keeps only two; verified indirectly through glyph budget
	// in plotOverlays, which sorts and trims the list.
}

// =============================================================================
// SPARKLINE TESTS
// =============================================================================

func TestSparkline(t *testing.T) {
	values := []decimal.Decimal{
		decimal.NewFromInt(1),
		decimal.NewFromInt(5),
		decimal.NewFromInt(10),
	}

	line := Sparkline(values, 10)
	if len(line) != 3 {
		t.Errorf("sparkline length should match value count, got %q", line)
	}
	// Lowest value maps to the lowest glyph, highest to the highest.
	if line[0] != '_' {
		t.Errorf("lowest value should render '_', got %q", line[0])
	}
	if line[2] != '#' {
		t.Errorf("highest value should render '#', got %q", line[2])
	}
}

func TestSparklineClipsToWidth(t *testing.T) {
	values := make([]decimal.Decimal, 20)
	for i := range values {
		values[i] = decimal.NewFromInt(int64(i))
	}

	line := Sparkline(values, 8)
	if len(line) != 8 {
		t.Errorf("sparkline should clip to width, got %d chars", len(line))
	}
}

func TestSparklineEmpty(t *testing.T) {
	if Sparkline(nil, 10) != "" {
		t.Error("empty values should render empty sparkline")
	}
	if Sparkline([]decimal.Decimal{decimal.NewFromInt(1)}, 0) != "" {
		t.Error("zero width should render empty sparkline")
	}
}
