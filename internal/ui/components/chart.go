// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable visual components for the tradedeck TUI.
package components

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/jeranaias/tradedeck/internal/model"
	"github.com/jeranaias/tradedeck/internal/ui/styles"
	"github.com/jeranaias/tradedeck/internal/util"
)

// =============================================================================
// CANDLESTICK CHART RENDERER
// =============================================================================

// Chart renders a candlestick chart with optional indicator overlays and
// a volume strip, one candle per terminal column.
//
// The glyph set is deliberately ASCII: '#' for candle bodies, '|' for
// wicks, '*' and '+' for overlay lines. Colors carry direction; the
// glyphs survive without them.
type Chart struct {
	Width      int
	Height     int
	ShowVolume bool

	theme    *styles.Theme
	klines   *model.KlineSet
	overlays []string
}

const (
	chartAxisWidth  = 11 // price labels plus a gutter column
	chartVolumeRows = 3
	chartTimeRows   = 1
)

// NewChart creates an empty chart renderer.
func NewChart(theme *styles.Theme) *Chart {
	return &Chart{
		Width:      80,
		Height:     20,
		ShowVolume: true,
		theme:      theme,
	}
}

// SetSize updates the chart dimensions.
func (c *Chart) SetSize(width, height int) {
	c.Width = width
	c.Height = height
}

// SetKlines replaces the rendered series.
func (c *Chart) SetKlines(set *model.KlineSet) {
	c.klines = set
}

// SetOverlays selects which indicator series to draw over the candles.
// At most two are rendered; extras are ignored rather than clutter the
// glyph budget.
func (c *Chart) SetOverlays(names []string) {
	c.overlays = append([]string(nil), names...)
}

// Overlays returns the active overlay names.
func (c *Chart) Overlays() []string {
	return c.overlays
}

// View renders the chart.
func (c *Chart) View() string {
	if c.klines == nil || len(c.klines.Candles) == 0 {
		return c.theme.PanelEmpty.Render("no chart data")
	}

	plotWidth := c.Width - chartAxisWidth
	plotHeight := c.Height - chartTimeRows
	if c.ShowVolume {
		plotHeight -= chartVolumeRows
	}
	if plotWidth < 4 || plotHeight < 3 {
		return c.theme.PanelEmpty.Render("terminal too small for chart")
	}

	candles := c.visibleCandles(plotWidth)
	low, high := priceRange(candles)
	if high.Equal(low) {
		// Flat series: pad the range so every candle still gets a row.
		high = high.Add(decimal.New(1, 0))
	}

	grid := newChartGrid(plotWidth, plotHeight)
	c.plotCandles(grid, candles, low, high)
	c.plotOverlays(grid, candles, low, high)

	var b strings.Builder
	for row := 0; row < plotHeight; row++ {
		b.WriteString(c.axisLabel(row, plotHeight, low, high))
		b.WriteString(grid.renderRow(row))
		b.WriteString("\n")
	}

	if c.ShowVolume {
		b.WriteString(c.renderVolume(candles, plotWidth))
	}

	b.WriteString(c.renderTimeAxis(candles, plotWidth))
	return b.String()
}

// visibleCandles returns the newest candles that fit the plot width.
func (c *Chart) visibleCandles(plotWidth int) []model.Candle {
	candles := c.klines.Candles
	if len(candles) > plotWidth {
		candles = candles[len(candles)-plotWidth:]
	}
	return candles
}

// priceRange finds the min low and max high across the visible candles.
func priceRange(candles []model.Candle) (decimal.Decimal, decimal.Decimal) {
	low := candles[0].Low
	high := candles[0].High
	for _, candle := range candles[1:] {
		if candle.Low.LessThan(low) {
			low = candle.Low
		}
		if candle.High.GreaterThan(high) {
			high = candle.High
		}
	}
	return low, high
}

// =============================================================================
// GRID
// =============================================================================

// chartGrid is a cell matrix of glyph plus style references, built
// column by column and rendered row by row.
type chartGrid struct {
	width  int
	height int
	glyphs [][]byte
	colors [][]*lipgloss.Style
}

func newChartGrid(width, height int) *chartGrid {
	glyphs := make([][]byte, height)
	colors := make([][]*lipgloss.Style, height)
	for i := range glyphs {
		glyphs[i] = []byte(strings.Repeat(" ", width))
		colors[i] = make([]*lipgloss.Style, width)
	}
	return &chartGrid{width: width, height: height, glyphs: glyphs, colors: colors}
}

func (g *chartGrid) set(col, row int, glyph byte, style *lipgloss.Style) {
	if col < 0 || col >= g.width || row < 0 || row >= g.height {
		return
	}
	g.glyphs[row][col] = glyph
	g.colors[row][col] = style
}

// renderRow renders one row, batching runs of identically styled cells
// so a wide chart does not explode into per-cell escape sequences.
// PERFORMANCE: a 200-column row renders in a handful of style calls.
func (g *chartGrid) renderRow(row int) string {
	var b strings.Builder
	runStart := 0
	runStyle := g.colors[row][0]

	flush := func(end int) {
		segment := string(g.glyphs[row][runStart:end])
		if runStyle != nil {
			segment = runStyle.Render(segment)
		}
		b.WriteString(segment)
	}

	for col := 1; col < g.width; col++ {
		if g.colors[row][col] != runStyle {
			flush(col)
			runStart = col
			runStyle = g.colors[row][col]
		}
	}
	flush(g.width)
	return b.String()
}

// =============================================================================
// PLOTTING
// =============================================================================

// rowFor maps a price onto a grid row; row 0 is the highest price.
func rowFor(value, low, high decimal.Decimal, rows int) int {
	span := high.Sub(low)
	offset := high.Sub(value).Div(span).InexactFloat64()
	row := int(offset * float64(rows-1))
	if row < 0 {
		row = 0
	}
	if row >= rows {
		row = rows - 1
	}
	return row
}

// plotCandles draws wick and body columns for each candle.
func (c *Chart) plotCandles(grid *chartGrid, candles []model.Candle, low, high decimal.Decimal) {
	for col, candle := range candles {
		style := &c.theme.ChartCandleDown
		if candle.Bullish() {
			style = &c.theme.ChartCandleUp
		}

		wickTop := rowFor(candle.High, low, high, grid.height)
		wickBottom := rowFor(candle.Low, low, high, grid.height)

		bodyTop := rowFor(maxDecimal(candle.Open, candle.Close), low, high, grid.height)
		bodyBottom := rowFor(minDecimal(candle.Open, candle.Close), low, high, grid.height)

		for row := wickTop; row <= wickBottom; row++ {
			grid.set(col, row, '|', style)
		}
		for row := bodyTop; row <= bodyBottom; row++ {
			grid.set(col, row, '#', style)
		}
	}
}

// plotOverlays draws up to two indicator series over the candles.
func (c *Chart) plotOverlays(grid *chartGrid, candles []model.Candle, low, high decimal.Decimal) {
	if c.klines == nil || len(c.overlays) == 0 {
		return
	}

	names := append([]string(nil), c.overlays...)
	sort.Strings(names)
	if len(names) > 2 {
		names = names[:2]
	}

	glyphs := []byte{'*', '+'}
	overlayStyles := []*lipgloss.Style{&c.theme.ChartIndicator, &c.theme.ChartIndicator2}

	// Indicator series align with the full candle slice; recompute the
	// offset the visible window dropped.
	skipped := len(c.klines.Candles) - len(candles)

	for i, name := range names {
		series, ok := c.klines.Indicators[name]
		if !ok {
			continue
		}
		for col := range candles {
			idx := skipped + col
			if idx >= len(series) {
				break
			}
			point := series[idx]
			// Warmup points are not zero, they are absent. Skip them.
			if !point.OK {
				continue
			}
			row := rowFor(point.Value, low, high, grid.height)
			grid.set(col, row, glyphs[i], overlayStyles[i])
		}
	}
}

// axisLabel renders the left price label for a row: top, middle and
// bottom rows get values, everything else gets gutter.
func (c *Chart) axisLabel(row, plotHeight int, low, high decimal.Decimal) string {
	label := ""
	switch row {
	case 0:
		label = util.Price(high, 2)
	case plotHeight / 2:
		mid := low.Add(high.Sub(low).Div(decimal.New(2, 0)))
		label = util.Price(mid, 2)
	case plotHeight - 1:
		label = util.Price(low, 2)
	}

	padded := util.PadLeft(label, chartAxisWidth-1) + " "
	return c.theme.ChartAxis.Render(padded)
}

// renderVolume renders the volume strip under the price plot.
func (c *Chart) renderVolume(candles []model.Candle, plotWidth int) string {
	maxVolume := decimal.Zero
	for _, candle := range candles {
		if candle.Volume.GreaterThan(maxVolume) {
			maxVolume = candle.Volume
		}
	}

	var b strings.Builder
	for row := 0; row < chartVolumeRows; row++ {
		b.WriteString(c.theme.ChartAxis.Render(util.PadLeft("", chartAxisWidth)))
		line := make([]byte, plotWidth)
		for col := range line {
			line[col] = ' '
		}
		if maxVolume.IsPositive() {
			for col, candle := range candles {
				filled := candle.Volume.Div(maxVolume).InexactFloat64() * float64(chartVolumeRows)
				// Row 0 is the top of the strip; fill from the bottom.
				if filled >= float64(chartVolumeRows-row)-0.5 {
					line[col] = '#'
				}
			}
		}
		b.WriteString(c.theme.ChartVolume.Render(string(line)))
		b.WriteString("\n")
	}
	return b.String()
}

// renderTimeAxis renders open-time labels for the first, middle and
// last visible candles.
func (c *Chart) renderTimeAxis(candles []model.Candle, plotWidth int) string {
	if len(candles) == 0 {
		return ""
	}

	const stamp = "15:04"
	line := make([]byte, plotWidth)
	for i := range line {
		line[i] = ' '
	}

	place := func(col int, text string) {
		if col < 0 {
			col = 0
		}
		if col+len(text) > plotWidth {
			col = plotWidth - len(text)
		}
		if col < 0 {
			return
		}
		copy(line[col:], text)
	}

	place(0, candles[0].OpenTime.Format(stamp))
	if len(candles) > 8 {
		mid := len(candles) / 2
		place(mid-len(stamp)/2, candles[mid].OpenTime.Format(stamp))
	}
	if len(candles) > 2 {
		place(plotWidth-len(stamp), candles[len(candles)-1].OpenTime.Format(stamp))
	}

	return c.theme.ChartAxis.Render(strings.Repeat(" ", chartAxisWidth) + string(line))
}

func maxDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

func minDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// =============================================================================
// SPARKLINE
// =============================================================================

// sparkLevels are the ASCII shade steps for sparklines, low to high.
var sparkLevels = []byte{'_', '.', '-', '=', '+', '#'}

// Sparkline renders a one-line closing-price sketch, used by compact
// panes where a full candle plot will not fit.
func Sparkline(values []decimal.Decimal, width int) string {
	if len(values) == 0 || width < 1 {
		return ""
	}

	if len(values) > width {
		values = values[len(values)-width:]
	}

	low := values[0]
	high := values[0]
	for _, v := range values[1:] {
		if v.LessThan(low) {
			low = v
		}
		if v.GreaterThan(high) {
			high = v
		}
	}

	span := high.Sub(low)
	out := make([]byte, len(values))
	for i, v := range values {
		level := 0
		if span.IsPositive() {
			ratio := v.Sub(low).Div(span).InexactFloat64()
			level = int(ratio * float64(len(sparkLevels)-1))
			if level < 0 {
				level = 0
			}
			if level >= len(sparkLevels) {
				level = len(sparkLevels) - 1
			}
		}
		out[i] = sparkLevels[level]
	}
	return string(out)
}
