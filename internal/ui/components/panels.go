// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable visual components for the tradedeck TUI.
package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/tradedeck/internal/model"
	"github.com/jeranaias/tradedeck/internal/ui/styles"
	"github.com/jeranaias/tradedeck/internal/util"
)

// =============================================================================
// BALANCES PANEL
// =============================================================================

// BalancesPanel lists account balances for the active market.
type BalancesPanel struct {
	Width   int
	Height  int
	Focused bool

	theme    *styles.Theme
	balances []model.Balance
	loaded   bool
}

var balanceColumns = []Column{
	{Title: "Asset", Width: 6},
	{Title: "Total", Width: 14, AlignRight: true},
	{Title: "Available", Width: 14, AlignRight: true},
	{Title: "In Orders", Width: 14, AlignRight: true},
}

// NewBalancesPanel creates an empty balances panel.
func NewBalancesPanel(theme *styles.Theme) *BalancesPanel {
	return &BalancesPanel{theme: theme, Width: 52}
}

// SetSize updates the panel dimensions.
func (p *BalancesPanel) SetSize(width, height int) {
	p.Width = width
	p.Height = height
}

// SetBalances replaces the panel rows.
func (p *BalancesPanel) SetBalances(balances []model.Balance) {
	p.balances = balances
	p.loaded = true
}

// View renders the panel.
func (p *BalancesPanel) View() string {
	var b strings.Builder

	b.WriteString(p.theme.PanelTitle.Render("Balances"))
	b.WriteString("\n")

	if !p.loaded {
		b.WriteString(p.theme.PanelEmpty.Render("loading..."))
		return p.frame().Render(b.String())
	}
	if len(p.balances) == 0 {
		b.WriteString(p.theme.PanelEmpty.Render("no balances"))
		return p.frame().Render(b.String())
	}

	b.WriteString(RenderHeader(p.theme, balanceColumns))
	b.WriteString("\n")

	for i, bal := range p.balances {
		rowStyle := p.theme.TableRow
		if i%2 == 1 {
			rowStyle = p.theme.TableRowAlt
		}
		b.WriteString(RenderRow(rowStyle, balanceColumns, []string{
			bal.Asset,
			util.Quantity(bal.Total),
			util.Quantity(bal.Available),
			util.Quantity(bal.InOrders),
		}))
		if i < len(p.balances)-1 {
			b.WriteString("\n")
		}
	}

	return p.frame().Render(b.String())
}

func (p *BalancesPanel) frame() lipgloss.Style {
	style := p.theme.Panel
	if p.Focused {
		style = p.theme.PanelFocused
	}
	return style.Width(p.Width - 2)
}

// =============================================================================
// POSITIONS PANEL
// =============================================================================

// PositionsPanel lists open positions with live PnL coloring.
type PositionsPanel struct {
	Width   int
	Height  int
	Focused bool

	theme     *styles.Theme
	positions []model.Position
	cursor    int
	loaded    bool
}

var positionColumns = []Column{
	{Title: "Symbol", Width: 7},
	{Title: "Side", Width: 5},
	{Title: "Size", Width: 10, AlignRight: true},
	{Title: "Entry", Width: 11, AlignRight: true},
	{Title: "Mark", Width: 11, AlignRight: true},
	{Title: "uPnL", Width: 12, AlignRight: true},
	{Title: "RoE", Width: 8, AlignRight: true},
	{Title: "Lev", Width: 4, AlignRight: true},
}

// NewPositionsPanel creates an empty positions panel.
func NewPositionsPanel(theme *styles.Theme) *PositionsPanel {
	return &PositionsPanel{theme: theme, Width: 80}
}

// SetSize updates the panel dimensions.
func (p *PositionsPanel) SetSize(width, height int) {
	p.Width = width
	p.Height = height
}

// SetPositions replaces the panel rows, clamping the cursor.
func (p *PositionsPanel) SetPositions(positions []model.Position) {
	p.positions = positions
	p.loaded = true
	if p.cursor >= len(positions) {
		p.cursor = len(positions) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

// MoveCursor moves the selection by delta, clamped to the row range.
func (p *PositionsPanel) MoveCursor(delta int) {
	p.cursor += delta
	if p.cursor < 0 {
		p.cursor = 0
	}
	if p.cursor >= len(p.positions) {
		p.cursor = len(p.positions) - 1
	}
}

// Selected returns the position under the cursor.
func (p *PositionsPanel) Selected() (model.Position, bool) {
	if p.cursor < 0 || p.cursor >= len(p.positions) {
		return model.Position{}, false
	}
	return p.positions[p.cursor], true
}

// View renders the panel.
func (p *PositionsPanel) View() string {
	var b strings.Builder

	b.WriteString(p.theme.PanelTitle.Render("Positions"))
	b.WriteString("\n")

	if !p.loaded {
		b.WriteString(p.theme.PanelEmpty.Render("loading..."))
		return p.frame().Render(b.String())
	}
	if len(p.positions) == 0 {
		b.WriteString(p.theme.PanelEmpty.Render("no open positions"))
		return p.frame().Render(b.String())
	}

	b.WriteString(RenderHeader(p.theme, positionColumns))
	b.WriteString("\n")

	for i, pos := range p.positions {
		b.WriteString(p.renderPosition(i, pos))
		if i < len(p.positions)-1 {
			b.WriteString("\n")
		}
	}

	return p.frame().Render(b.String())
}

// renderPosition renders one position row. Side and PnL cells carry
// their own direction colors; padding happens before styling so the
// escapes stay out of the width math.
func (p *PositionsPanel) renderPosition(index int, pos model.Position) string {
	gain := pos.UnrealizedPnL.Sign() >= 0

	pnlStyle := p.theme.PnLGain
	if !gain {
		pnlStyle = p.theme.PnLLoss
	}

	sideStyle := p.theme.SideBuy
	if pos.Side == model.PositionShort {
		sideStyle = p.theme.SideSell
	}

	cells := []string{
		RenderCell(positionColumns[0], pos.Symbol),
		sideStyle.Render(RenderCell(positionColumns[1], string(pos.Side))),
		RenderCell(positionColumns[2], util.Quantity(pos.Size)),
		RenderCell(positionColumns[3], util.Price(pos.EntryPrice, 2)),
		RenderCell(positionColumns[4], util.Price(pos.MarkPrice, 2)),
		pnlStyle.Render(RenderCell(positionColumns[5], util.USD(pos.UnrealizedPnL))),
		pnlStyle.Render(RenderCell(positionColumns[6], util.SignedPercent(pos.ReturnOnEq))),
		RenderCell(positionColumns[7], util.GroupedInt(int64(pos.Leverage))+"x"),
	}

	row := strings.Join(cells, "  ")
	if p.Focused && index == p.cursor {
		return p.theme.TableSelected.Render(row)
	}
	return row
}

func (p *PositionsPanel) frame() lipgloss.Style {
	style := p.theme.Panel
	if p.Focused {
		style = p.theme.PanelFocused
	}
	return style.Width(p.Width - 2)
}

// =============================================================================
// ORDERS PANEL
// =============================================================================

// OrdersPanel lists open orders with a cursor for cancellation.
type OrdersPanel struct {
	Width   int
	Height  int
	Focused bool

	theme  *styles.Theme
	orders []model.Order
	cursor int
	loaded bool
}

var orderColumns = []Column{
	{Title: "Symbol", Width: 7},
	{Title: "Side", Width: 5},
	{Title: "Type", Width: 6},
	{Title: "Price", Width: 11, AlignRight: true},
	{Title: "Size", Width: 10, AlignRight: true},
	{Title: "Filled", Width: 10, AlignRight: true},
	{Title: "Status", Width: 8},
}

// NewOrdersPanel creates an empty orders panel.
func NewOrdersPanel(theme *styles.Theme) *OrdersPanel {
	return &OrdersPanel{theme: theme, Width: 70}
}

// SetSize updates the panel dimensions.
func (p *OrdersPanel) SetSize(width, height int) {
	p.Width = width
	p.Height = height
}

// SetOrders replaces the panel rows, clamping the cursor.
func (p *OrdersPanel) SetOrders(orders []model.Order) {
	p.orders = orders
	p.loaded = true
	if p.cursor >= len(orders) {
		p.cursor = len(orders) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

// MoveCursor moves the selection by delta, clamped to the row range.
func (p *OrdersPanel) MoveCursor(delta int) {
	p.cursor += delta
	if p.cursor < 0 {
		p.cursor = 0
	}
	if p.cursor >= len(p.orders) {
		p.cursor = len(p.orders) - 1
	}
}

// Selected returns the order under the cursor.
func (p *OrdersPanel) Selected() (model.Order, bool) {
	if p.cursor < 0 || p.cursor >= len(p.orders) {
		return model.Order{}, false
	}
	return p.orders[p.cursor], true
}

// View renders the panel.
func (p *OrdersPanel) View() string {
	var b strings.Builder

	title := p.theme.PanelTitle.Render("Open Orders")
	if p.Focused && len(p.orders) > 0 {
		title += " " + p.theme.PanelHint.Render("(x: cancel)")
	}
	b.WriteString(title)
	b.WriteString("\n")

	if !p.loaded {
		b.WriteString(p.theme.PanelEmpty.Render("loading..."))
		return p.frame().Render(b.String())
	}
	if len(p.orders) == 0 {
		b.WriteString(p.theme.PanelEmpty.Render("no open orders"))
		return p.frame().Render(b.String())
	}

	b.WriteString(RenderHeader(p.theme, orderColumns))
	b.WriteString("\n")

	for i, ord := range p.orders {
		b.WriteString(p.renderOrder(i, ord))
		if i < len(p.orders)-1 {
			b.WriteString("\n")
		}
	}

	return p.frame().Render(b.String())
}

// renderOrder renders one order row.
func (p *OrdersPanel) renderOrder(index int, ord model.Order) string {
	sideStyle := p.theme.SideBuy
	if ord.Side == model.OrderSell {
		sideStyle = p.theme.SideSell
	}

	price := "market"
	if ord.Type == model.OrderLimit {
		price = util.Price(ord.Price, 2)
	}

	cells := []string{
		RenderCell(orderColumns[0], ord.Symbol),
		sideStyle.Render(RenderCell(orderColumns[1], string(ord.Side))),
		RenderCell(orderColumns[2], string(ord.Type)),
		RenderCell(orderColumns[3], price),
		RenderCell(orderColumns[4], util.Quantity(ord.Size)),
		RenderCell(orderColumns[5], util.Quantity(ord.Filled)),
		p.statusStyle(ord.Status).Render(RenderCell(orderColumns[6], string(ord.Status))),
	}

	row := strings.Join(cells, "  ")
	if p.Focused && index == p.cursor {
		return p.theme.TableSelected.Render(row)
	}
	return row
}

// statusStyle returns the style for an order status.
func (p *OrdersPanel) statusStyle(status model.OrderStatus) lipgloss.Style {
	switch status {
	case model.OrderFilled:
		return p.theme.OrderFilled
	case model.OrderCanceled:
		return p.theme.OrderCanceled
	case model.OrderRejected:
		return p.theme.OrderRejected
	default:
		return p.theme.OrderOpen
	}
}

func (p *OrdersPanel) frame() lipgloss.Style {
	style := p.theme.Panel
	if p.Focused {
		style = p.theme.PanelFocused
	}
	return style.Width(p.Width - 2)
}

// =============================================================================
// RATE LIMITS PANEL
// =============================================================================

// RateLimitsPanel shows per-market request budget consumption.
type RateLimitsPanel struct {
	Width  int
	Height int

	theme  *styles.Theme
	limits []model.RateLimit
	loaded bool
	now    func() time.Time
}

// NewRateLimitsPanel creates an empty rate limits panel.
func NewRateLimitsPanel(theme *styles.Theme) *RateLimitsPanel {
	return &RateLimitsPanel{theme: theme, Width: 52, now: time.Now}
}

// SetSize updates the panel dimensions.
func (p *RateLimitsPanel) SetSize(width, height int) {
	p.Width = width
	p.Height = height
}

// SetLimits replaces the panel rows.
func (p *RateLimitsPanel) SetLimits(limits []model.RateLimit) {
	p.limits = limits
	p.loaded = true
}

// View renders the panel.
func (p *RateLimitsPanel) View() string {
	var b strings.Builder

	b.WriteString(p.theme.PanelTitle.Render("Rate Limits"))
	b.WriteString("\n")

	if !p.loaded {
		b.WriteString(p.theme.PanelEmpty.Render("loading..."))
		return p.theme.Panel.Width(p.Width - 2).Render(b.String())
	}
	if len(p.limits) == 0 {
		b.WriteString(p.theme.PanelEmpty.Render("no rate limit data"))
		return p.theme.Panel.Width(p.Width - 2).Render(b.String())
	}

	for i, rl := range p.limits {
		b.WriteString(p.renderLimit(rl))
		if i < len(p.limits)-1 {
			b.WriteString("\n")
		}
	}

	return p.theme.Panel.Width(p.Width - 2).Render(b.String())
}

// renderLimit renders one market line: name, gauge, counts, reset.
func (p *RateLimitsPanel) renderLimit(rl model.RateLimit) string {
	nameStyle := p.theme.BadgeHyperliquid
	if rl.Market == model.MarketBinance {
		nameStyle = p.theme.BadgeBinance
	}

	name := util.PadRight(rl.Market.DisplayName(), 12)
	gauge := styles.RenderHeadroomBar(14, rl.Headroom())

	counts := util.GroupedInt(int64(rl.Used)) + "/" + util.GroupedInt(int64(rl.Cap))
	countStyle := lipgloss.NewStyle().Foreground(styles.TextSecondary)
	if rl.Headroom() < 0.1 {
		countStyle = p.theme.ErrorStyle
	} else if rl.Headroom() < 0.25 {
		countStyle = p.theme.WarningStyle
	}

	reset := ""
	if !rl.ResetAt.IsZero() {
		until := rl.ResetAt.Sub(p.now()).Round(time.Second)
		if until > 0 {
			reset = p.theme.PanelHint.Render(" resets in " + until.String())
		}
	}

	return nameStyle.Render(name) + " " + gauge + " " + countStyle.Render(counts) + reset
}

// =============================================================================
// PROGRAMS PANEL
// =============================================================================

// ProgramsPanel lists the backend's rule programs (signal pools),
// read-only. Program management lives server-side.
type ProgramsPanel struct {
	Width  int
	Height int

	theme    *styles.Theme
	programs []model.Program
	loaded   bool
}

// NewProgramsPanel creates an empty programs panel.
func NewProgramsPanel(theme *styles.Theme) *ProgramsPanel {
	return &ProgramsPanel{theme: theme, Width: 52}
}

// SetSize updates the panel dimensions.
func (p *ProgramsPanel) SetSize(width, height int) {
	p.Width = width
	p.Height = height
}

// SetPrograms replaces the panel rows.
func (p *ProgramsPanel) SetPrograms(programs []model.Program) {
	p.programs = programs
	p.loaded = true
}

// View renders the panel.
func (p *ProgramsPanel) View() string {
	var b strings.Builder

	b.WriteString(p.theme.PanelTitle.Render("Programs"))
	b.WriteString("\n")

	if !p.loaded {
		b.WriteString(p.theme.PanelEmpty.Render("loading..."))
		return p.theme.Panel.Width(p.Width - 2).Render(b.String())
	}
	if len(p.programs) == 0 {
		b.WriteString(p.theme.PanelEmpty.Render("no programs"))
		return p.theme.Panel.Width(p.Width - 2).Render(b.String())
	}

	for i, prog := range p.programs {
		b.WriteString(p.renderProgram(prog))
		if i < len(p.programs)-1 {
			b.WriteString("\n")
		}
	}

	return p.theme.Panel.Width(p.Width - 2).Render(b.String())
}

// renderProgram renders one row: name, market badge, status.
func (p *ProgramsPanel) renderProgram(prog model.Program) string {
	badge := p.theme.BadgeHyperliquid
	if prog.Market == model.MarketBinance {
		badge = p.theme.BadgeBinance
	}

	name := util.PadRight(util.Truncate(prog.Name, 18), 18)
	status := p.statusStyle(prog.Status).Render(strings.ToLower(prog.Status))

	symbols := ""
	if len(prog.Symbols) > 0 {
		symbols = p.theme.PanelHint.Render(" " + util.Truncate(strings.Join(prog.Symbols, ","), 16))
	}

	return badge.Render(name) + " " + status + symbols
}

func (p *ProgramsPanel) statusStyle(status string) lipgloss.Style {
	switch strings.ToLower(status) {
	case "active", "running":
		return p.theme.SuccessStyle
	case "paused", "pending":
		return p.theme.WarningStyle
	case "stopped", "error":
		return p.theme.ErrorStyle
	default:
		return lipgloss.NewStyle().Foreground(styles.TextSecondary)
	}
}
