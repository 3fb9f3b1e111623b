// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures the panels render.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MARKET
// =============================================================================

// Market identifies which exchange a value belongs to.
type Market string

const (
	MarketHyperliquid Market = "hyperliquid"
	MarketBinance     Market = "binance"
)

// Markets lists the supported exchanges in display order.
var Markets = []Market{MarketHyperliquid, MarketBinance}

// ParseMarket validates a market name from config or CLI flags.
func ParseMarket(s string) (Market, error) {
	switch Market(strings.ToLower(strings.TrimSpace(s))) {
	case MarketHyperliquid:
		return MarketHyperliquid, nil
	case MarketBinance:
		return MarketBinance, nil
	default:
		return "", fmt.Errorf("unknown market %q (want hyperliquid or binance)", s)
	}
}

// DisplayName returns the label used in the status bar and tabs.
func (m Market) DisplayName() string {
	switch m {
	case MarketHyperliquid:
		return "Hyperliquid"
	case MarketBinance:
		return "Binance"
	default:
		return string(m)
	}
}

// =============================================================================
// KLINES AND INDICATORS
// =============================================================================

// Candle is one K-line bar.
type Candle struct {
	OpenTime time.Time       `json:"open_time"`
	Open     decimal.Decimal `json:"open"`
	High     decimal.Decimal `json:"high"`
	Low      decimal.Decimal `json:"low"`
	Close    decimal.Decimal `json:"close"`
	Volume   decimal.Decimal `json:"volume"`
}

// Bullish reports whether the bar closed at or above its open.
func (c Candle) Bullish() bool {
	return c.Close.GreaterThanOrEqual(c.Open)
}

// IndicatorValue is one point of an indicator series, index-aligned with
// the candle slice. Warmup periods arrive as nulls; OK is false there.
type IndicatorValue struct {
	Value decimal.Decimal `json:"value"`
	OK    bool            `json:"ok"`
}

// KlineSet is one chart fetch: candles plus the indicator series that
// were requested alongside them, keyed by indicator name ("MA5",
// "RSI14", "MACD", ...). All series are index-aligned with Candles.
type KlineSet struct {
	Symbol     string                      `json:"symbol"`
	Market     Market                      `json:"market"`
	Period     string                      `json:"period"`
	Candles    []Candle                    `json:"candles"`
	Indicators map[string][]IndicatorValue `json:"indicators"`
	FetchedAt  time.Time                   `json:"fetched_at"`
}

// =============================================================================
// ACCOUNT STATE
// =============================================================================

// Balance is one asset's account balance.
type Balance struct {
	Asset     string          `json:"asset"`
	Total     decimal.Decimal `json:"total"`
	Available decimal.Decimal `json:"available"`
	InOrders  decimal.Decimal `json:"in_orders"`
}

// PositionSide is the direction of an open position.
type PositionSide string

const (
	PositionLong  PositionSide = "long"
	PositionShort PositionSide = "short"
)

// Position is one open position as reported by the backend. PnL and
// margin figures are computed server-side and displayed verbatim.
type Position struct {
	Symbol        string          `json:"symbol"`
	Side          PositionSide    `json:"side"`
	Size          decimal.Decimal `json:"size"`
	EntryPrice    decimal.Decimal `json:"entry_price"`
	MarkPrice     decimal.Decimal `json:"mark_price"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
	ReturnOnEq    decimal.Decimal `json:"return_on_equity"`
	Leverage      int             `json:"leverage"`
}

// =============================================================================
// ORDERS
// =============================================================================

// OrderSide is buy or sell.
type OrderSide string

const (
	OrderBuy  OrderSide = "buy"
	OrderSell OrderSide = "sell"
)

// OrderType is the execution style of an order ticket.
type OrderType string

const (
	OrderLimit  OrderType = "limit"
	OrderMarket OrderType = "market"
)

// OrderStatus mirrors the backend's order state.
type OrderStatus string

const (
	OrderOpen     OrderStatus = "open"
	OrderFilled   OrderStatus = "filled"
	OrderCanceled OrderStatus = "canceled"
	OrderRejected OrderStatus = "rejected"
)

// Order is one working or historical order.
type Order struct {
	ID        string          `json:"id"`
	ClientID  string          `json:"client_id,omitempty"`
	Market    Market          `json:"market"`
	Symbol    string          `json:"symbol"`
	Side      OrderSide       `json:"side"`
	Type      OrderType       `json:"type"`
	Price     decimal.Decimal `json:"price"`
	Size      decimal.Decimal `json:"size"`
	Filled    decimal.Decimal `json:"filled"`
	Status    OrderStatus     `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// OrderTicket is what the order-entry form submits. Execution semantics
// are entirely backend-owned; this is a plain request body.
type OrderTicket struct {
	ClientID string          `json:"client_id"`
	Market   Market          `json:"market"`
	Symbol   string          `json:"symbol"`
	Side     OrderSide       `json:"side"`
	Type     OrderType       `json:"type"`
	Price    decimal.Decimal `json:"price,omitempty"`
	Size     decimal.Decimal `json:"size"`
}

// Validate checks the ticket locally before it leaves the form.
func (t OrderTicket) Validate() error {
	if t.Symbol == "" {
		return fmt.Errorf("order ticket: symbol required")
	}
	if t.Side != OrderBuy && t.Side != OrderSell {
		return fmt.Errorf("order ticket: bad side %q", t.Side)
	}
	if t.Type != OrderLimit && t.Type != OrderMarket {
		return fmt.Errorf("order ticket: bad type %q", t.Type)
	}
	if !t.Size.IsPositive() {
		return fmt.Errorf("order ticket: size must be positive")
	}
	if t.Type == OrderLimit && !t.Price.IsPositive() {
		return fmt.Errorf("order ticket: limit orders need a positive price")
	}
	return nil
}

// =============================================================================
// RATE LIMITS
// =============================================================================

// RateLimit is the backend-reported request budget for one market.
type RateLimit struct {
	Market  Market    `json:"market"`
	Used    int64     `json:"used"`
	Cap     int64     `json:"cap"`
	ResetAt time.Time `json:"reset_at"`
}

// Headroom returns remaining budget as a ratio in [0,1].
func (r RateLimit) Headroom() float64 {
	if r.Cap <= 0 {
		return 0
	}
	left := r.Cap - r.Used
	if left < 0 {
		left = 0
	}
	return float64(left) / float64(r.Cap)
}

// =============================================================================
// LIVE TICKERS
// =============================================================================

// Ticker is a live price point from a websocket feed.
type Ticker struct {
	Market Market          `json:"market"`
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
	At     time.Time       `json:"at"`
}

// Stale reports whether the ticker is older than maxAge.
func (t Ticker) Stale(maxAge time.Duration) bool {
	return time.Since(t.At) > maxAge
}

// =============================================================================
// ACTIVITY AND PROGRAMS
// =============================================================================

// ActivityEvent is one row of the activity feed: fills, agent actions,
// and program triggers, all backend-produced display data.
type ActivityEvent struct {
	ID     string    `json:"id"`
	Market Market    `json:"market"`
	Kind   string    `json:"kind"`
	Symbol string    `json:"symbol,omitempty"`
	Text   string    `json:"text"`
	At     time.Time `json:"at"`
}

// Program is a backend rule-based trigger/execution entity, consumed
// here read-only for the programs panel.
type Program struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Market    Market    `json:"market"`
	Symbols   []string  `json:"symbols,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}
