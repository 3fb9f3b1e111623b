// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable visual components for the tradedeck TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jeranaias/tradedeck/internal/model"
	"github.com/jeranaias/tradedeck/internal/ui/styles"
)

// =============================================================================
// ORDER ENTRY FORM
// =============================================================================

// FormField identifies the focusable fields of the order form, in
// traversal order.
type FormField int

const (
	FieldSymbol FormField = iota
	FieldSide
	FieldType
	FieldPrice
	FieldSize

	formFieldCount
)

// OrderForm is the order-entry widget. It owns its inputs and local
// validation only; arming checks and the confirm step belong to the
// screen that hosts it, so the form can never submit by itself.
type OrderForm struct {
	Width   int
	Focused bool

	theme  *styles.Theme
	market model.Market
	side   model.OrderSide
	typ    model.OrderType

	symbol textinput.Model
	price  textinput.Model
	size   textinput.Model

	focus   FormField
	lastErr string
}

// NewOrderForm creates an order form with the cursor on the symbol field.
func NewOrderForm(theme *styles.Theme) *OrderForm {
	symbol := textinput.New()
	symbol.Placeholder = "BTC"
	symbol.CharLimit = 12
	symbol.Width = 10
	symbol.Prompt = ""
	symbol.Focus()

	price := textinput.New()
	price.Placeholder = "0.00"
	price.CharLimit = 20
	price.Width = 14
	price.Prompt = ""

	size := textinput.New()
	size.Placeholder = "0.0"
	size.CharLimit = 20
	size.Width = 14
	size.Prompt = ""

	return &OrderForm{
		Width:  44,
		theme:  theme,
		market: model.MarketHyperliquid,
		side:   model.OrderBuy,
		typ:    model.OrderLimit,
		symbol: symbol,
		price:  price,
		size:   size,
	}
}

// SetMarket sets the market the ticket will target.
func (f *OrderForm) SetMarket(market model.Market) {
	f.market = market
}

// Market returns the market the ticket will target.
func (f *OrderForm) Market() model.Market {
	return f.market
}

// SetSymbol prefills the symbol field, e.g. from the chart selection.
func (f *OrderForm) SetSymbol(symbol string) {
	f.symbol.SetValue(strings.ToUpper(symbol))
}

// Side returns the currently selected side.
func (f *OrderForm) Side() model.OrderSide {
	return f.side
}

// LastError returns the most recent validation error, if any.
func (f *OrderForm) LastError() string {
	return f.lastErr
}

// Focus gives the form keyboard focus.
func (f *OrderForm) Focus() {
	f.Focused = true
	f.applyFocus()
}

// Blur removes keyboard focus from the form.
func (f *OrderForm) Blur() {
	f.Focused = false
	f.symbol.Blur()
	f.price.Blur()
	f.size.Blur()
}

// NextField advances focus to the next field, skipping price when the
// order type is market.
func (f *OrderForm) NextField() {
	f.focus = (f.focus + 1) % formFieldCount
	if f.focus == FieldPrice && f.typ == model.OrderMarket {
		f.focus = FieldSize
	}
	f.applyFocus()
}

// PrevField moves focus to the previous field.
func (f *OrderForm) PrevField() {
	f.focus = (f.focus - 1 + formFieldCount) % formFieldCount
	if f.focus == FieldPrice && f.typ == model.OrderMarket {
		f.focus = FieldType
	}
	f.applyFocus()
}

// applyFocus syncs textinput focus with the logical field cursor.
func (f *OrderForm) applyFocus() {
	f.symbol.Blur()
	f.price.Blur()
	f.size.Blur()

	if !f.Focused {
		return
	}
	switch f.focus {
	case FieldSymbol:
		f.symbol.Focus()
	case FieldPrice:
		f.price.Focus()
	case FieldSize:
		f.size.Focus()
	}
}

// Update handles key input while the form is focused.
func (f *OrderForm) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || !f.Focused {
		return nil
	}

	switch keyMsg.String() {
	case "tab", "down":
		f.NextField()
		return nil
	case "shift+tab", "up":
		f.PrevField()
		return nil
	case "left", "right", " ":
		switch f.focus {
		case FieldSide:
			f.toggleSide()
			return nil
		case FieldType:
			f.toggleType()
			return nil
		}
	}

	var cmd tea.Cmd
	switch f.focus {
	case FieldSymbol:
		f.symbol, cmd = f.symbol.Update(msg)
	case FieldPrice:
		f.price, cmd = f.price.Update(msg)
	case FieldSize:
		f.size, cmd = f.size.Update(msg)
	}
	return cmd
}

func (f *OrderForm) toggleSide() {
	if f.side == model.OrderBuy {
		f.side = model.OrderSell
	} else {
		f.side = model.OrderBuy
	}
}

func (f *OrderForm) toggleType() {
	if f.typ == model.OrderLimit {
		f.typ = model.OrderMarket
	} else {
		f.typ = model.OrderLimit
	}
}

// Ticket builds and validates an order ticket from the current inputs.
// Each call mints a fresh client ID, so a re-submitted form is a new
// idempotency key, not a replay.
func (f *OrderForm) Ticket() (model.OrderTicket, error) {
	ticket := model.OrderTicket{
		ClientID: uuid.NewString(),
		Market:   f.market,
		Symbol:   strings.ToUpper(strings.TrimSpace(f.symbol.Value())),
		Side:     f.side,
		Type:     f.typ,
	}

	if f.typ == model.OrderLimit {
		price, err := decimal.NewFromString(strings.TrimSpace(f.price.Value()))
		if err != nil {
			f.lastErr = "price: not a number"
			return model.OrderTicket{}, err
		}
		ticket.Price = price
	}

	size, err := decimal.NewFromString(strings.TrimSpace(f.size.Value()))
	if err != nil {
		f.lastErr = "size: not a number"
		return model.OrderTicket{}, err
	}
	ticket.Size = size

	if err := ticket.Validate(); err != nil {
		f.lastErr = err.Error()
		return model.OrderTicket{}, err
	}

	f.lastErr = ""
	return ticket, nil
}

// Reset clears the price and size fields after a submit. The symbol is
// deliberately kept; repeated entries on one book are the common case.
func (f *OrderForm) Reset() {
	f.price.SetValue("")
	f.size.SetValue("")
	f.lastErr = ""
	f.focus = FieldPrice
	if f.typ == model.OrderMarket {
		f.focus = FieldSize
	}
	f.applyFocus()
}

// View renders the form.
func (f *OrderForm) View() string {
	var b strings.Builder

	title := f.theme.PanelTitle.Render("Order Entry")
	sideChip := f.theme.SideBuy.Render("BUY")
	if f.side == model.OrderSell {
		sideChip = f.theme.SideSell.Render("SELL")
	}
	b.WriteString(title + " " + sideChip)
	b.WriteString("\n\n")

	b.WriteString(f.renderField(FieldSymbol, "Symbol", f.symbol.View()))
	b.WriteString("\n")
	b.WriteString(f.renderToggle(FieldSide, "Side", string(f.side), "buy/sell"))
	b.WriteString("\n")
	b.WriteString(f.renderToggle(FieldType, "Type", string(f.typ), "limit/market"))
	b.WriteString("\n")

	if f.typ == model.OrderLimit {
		b.WriteString(f.renderField(FieldPrice, "Price", f.price.View()))
		b.WriteString("\n")
	}
	b.WriteString(f.renderField(FieldSize, "Size", f.size.View()))
	b.WriteString("\n")

	if f.lastErr != "" {
		b.WriteString("\n")
		b.WriteString(f.theme.FieldError.Render(styles.StatusIndicators.Error + " " + f.lastErr))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(f.theme.PanelHint.Render("enter: review  tab: next field  space: toggle"))

	frame := f.theme.Panel
	if f.Focused {
		frame = f.theme.PanelFocused
	}
	return frame.Width(f.Width - 2).Render(b.String())
}

// renderField renders a label and input, marking the focused field.
func (f *OrderForm) renderField(field FormField, label, input string) string {
	labelText := f.theme.FieldLabel.Render(padLabel(label))
	if f.Focused && f.focus == field {
		return f.theme.ShortcutKey.Render(">") + " " + labelText + input
	}
	return "  " + labelText + input
}

// renderToggle renders a toggle field with its current value and options.
func (f *OrderForm) renderToggle(field FormField, label, value, options string) string {
	labelText := f.theme.FieldLabel.Render(padLabel(label))
	valueText := f.theme.InputText.Render(value)
	hint := f.theme.PanelHint.Render(" (" + options + ")")
	if f.Focused && f.focus == field {
		return f.theme.ShortcutKey.Render(">") + " " + labelText + valueText + hint
	}
	return "  " + labelText + valueText + hint
}

func padLabel(label string) string {
	const width = 8
	if len(label) >= width {
		return label + " "
	}
	return label + strings.Repeat(" ", width-len(label))
}

// =============================================================================
// ARM CODE PROMPT
// =============================================================================

// CodePrompt is the six-digit TOTP entry used to arm order submission.
type CodePrompt struct {
	theme *styles.Theme
	input textinput.Model
}

// NewCodePrompt creates the arming code prompt.
func NewCodePrompt(theme *styles.Theme) *CodePrompt {
	input := textinput.New()
	input.Placeholder = "000000"
	input.CharLimit = 6
	input.Width = 8
	input.Prompt = ""
	// SECURITY: digits only; anything else is never a valid TOTP code.
	input.Validate = func(s string) error {
		for _, r := range s {
			if r < '0' || r > '9' {
				return errNonDigit
			}
		}
		return nil
	}

	return &CodePrompt{theme: theme, input: input}
}

var errNonDigit = validationError("arm code must be digits")

type validationError string

func (e validationError) Error() string { return string(e) }

// Focus gives the prompt keyboard focus.
func (p *CodePrompt) Focus() tea.Cmd {
	return p.input.Focus()
}

// Blur removes keyboard focus.
func (p *CodePrompt) Blur() {
	p.input.Blur()
}

// Value returns the entered code.
func (p *CodePrompt) Value() string {
	return strings.TrimSpace(p.input.Value())
}

// Reset clears the entered code.
func (p *CodePrompt) Reset() {
	p.input.SetValue("")
}

// Update routes key input to the code field.
func (p *CodePrompt) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

// View renders the prompt inside a confirm-style box.
func (p *CodePrompt) View() string {
	var b strings.Builder
	b.WriteString(p.theme.ConfirmTitle.Render("Arm order entry"))
	b.WriteString("\n\n")
	b.WriteString(p.theme.FieldLabel.Render("Code: "))
	b.WriteString(p.input.View())
	b.WriteString("\n\n")
	b.WriteString(p.theme.PanelHint.Render("enter: arm  esc: cancel"))
	return p.theme.ConfirmBox.Render(b.String())
}
