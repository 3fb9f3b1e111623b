// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jeranaias/tradedeck/internal/model"
)

// =============================================================================
// KLINE FETCH
// =============================================================================

const (
	// DefaultKlineCount is the candle count when none is requested.
	DefaultKlineCount = 120

	// MaxKlineCount caps one fetch.
	MaxKlineCount = 1000
)

// KlineParams selects one kline-with-indicators fetch.
type KlineParams struct {
	Symbol     string
	Market     model.Market
	Period     string
	Count      int
	Indicators []string
}

// normalize fills defaults and validates.
func (p *KlineParams) normalize() error {
	p.Symbol = strings.ToUpper(strings.TrimSpace(p.Symbol))
	if p.Symbol == "" {
		return fmt.Errorf("klines: symbol required")
	}
	if p.Market == "" {
		p.Market = model.MarketHyperliquid
	}
	if p.Period == "" {
		p.Period = "1m"
	}
	if p.Count <= 0 {
		p.Count = DefaultKlineCount
	}
	if p.Count > MaxKlineCount {
		p.Count = MaxKlineCount
	}
	return nil
}

// candleWire decodes one candle in either shape the backend ships:
// an object with named fields, or a Binance-style positional array
// [open_time, open, high, low, close, volume].
type candleWire struct {
	OpenTime int64           `json:"open_time"`
	Open     decimal.Decimal `json:"open"`
	High     decimal.Decimal `json:"high"`
	Low      decimal.Decimal `json:"low"`
	Close    decimal.Decimal `json:"close"`
	Volume   decimal.Decimal `json:"volume"`
}

// UnmarshalJSON implements the tolerant decode.
func (w *candleWire) UnmarshalJSON(data []byte) error {
	type plain candleWire
	var p plain
	if err := json.Unmarshal(data, &p); err == nil {
		*w = candleWire(p)
		return nil
	}

	var arr []json.Number
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("candle: unrecognized shape")
	}
	if len(arr) < 6 {
		return fmt.Errorf("candle: want 6 fields, got %d", len(arr))
	}

	ms, err := arr[0].Int64()
	if err != nil {
		return fmt.Errorf("candle: bad open_time: %w", err)
	}
	w.OpenTime = ms

	fields := []*decimal.Decimal{&w.Open, &w.High, &w.Low, &w.Close, &w.Volume}
	for i, dst := range fields {
		d, err := decimal.NewFromString(arr[i+1].String())
		if err != nil {
			return fmt.Errorf("candle: bad field %d: %w", i+1, err)
		}
		*dst = d
	}
	return nil
}

// klineResponse is the wire shape of the kline endpoint. Indicator
// series arrive as arrays of nullable numbers; nulls mark warmup bars.
type klineResponse struct {
	Symbol     string                        `json:"symbol"`
	Market     string                        `json:"market"`
	Period     string                        `json:"period"`
	Candles    []candleWire                  `json:"candles"`
	Klines     []candleWire                  `json:"klines"`
	Indicators map[string][]*decimal.Decimal `json:"indicators"`
}

// Klines fetches candles with their precomputed indicator series.
//
// Indicator series are re-aligned to the candle slice: a series shorter
// than the candles is front-padded with not-OK values, matching warmup
// at the start of the window.
func (c *Client) Klines(ctx context.Context, params KlineParams) (*model.KlineSet, error) {
	if err := params.normalize(); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("market", string(params.Market))
	query.Set("period", params.Period)
	query.Set("count", strconv.Itoa(params.Count))
	if len(params.Indicators) > 0 {
		query.Set("indicators", strings.Join(params.Indicators, ","))
	}

	var resp klineResponse
	path := "/api/market/kline-with-indicators/" + url.PathEscape(params.Symbol)
	if err := c.getJSON(ctx, path, query, &resp); err != nil {
		return nil, err
	}

	wire := resp.Candles
	if len(wire) == 0 {
		wire = resp.Klines
	}

	set := &model.KlineSet{
		Symbol:     params.Symbol,
		Market:     params.Market,
		Period:     params.Period,
		Candles:    make([]model.Candle, len(wire)),
		Indicators: make(map[string][]model.IndicatorValue, len(resp.Indicators)),
		FetchedAt:  time.Now(),
	}
	for i, cw := range wire {
		set.Candles[i] = model.Candle{
			OpenTime: time.UnixMilli(cw.OpenTime),
			Open:     cw.Open,
			High:     cw.High,
			Low:      cw.Low,
			Close:    cw.Close,
			Volume:   cw.Volume,
		}
	}

	for name, series := range resp.Indicators {
		set.Indicators[name] = alignIndicator(series, len(wire))
	}

	return set, nil
}

// alignIndicator converts a nullable wire series into an index-aligned
// value series of exactly length n.
func alignIndicator(series []*decimal.Decimal, n int) []model.IndicatorValue {
	aligned := make([]model.IndicatorValue, n)

	// Front-pad short series: warmup bars live at the window start.
	offset := n - len(series)
	if offset < 0 {
		series = series[-offset:]
		offset = 0
	}

	for i, v := range series {
		if v == nil {
			continue
		}
		aligned[offset+i] = model.IndicatorValue{Value: *v, OK: true}
	}
	return aligned
}

// =============================================================================
// TICKER SNAPSHOT
// =============================================================================

// tickersResponse is the wire envelope of the ticker snapshot endpoint.
type tickersResponse struct {
	Tickers []model.Ticker `json:"tickers"`
}

// Tickers fetches a REST snapshot of last prices for one market. The
// live feeds take over after the first paint; this seeds the strip.
func (c *Client) Tickers(ctx context.Context, market model.Market) ([]model.Ticker, error) {
	query := url.Values{}
	query.Set("market", string(market))

	var resp tickersResponse
	if err := c.getJSON(ctx, "/api/market/tickers", query, &resp); err != nil {
		return nil, err
	}
	return resp.Tickers, nil
}
