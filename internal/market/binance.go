// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package market

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jeranaias/tradedeck/internal/model"
)

// DefaultBinanceStreamURL is the Binance USD-M futures combined stream
// endpoint. The subscription is encoded in the URL, so no subscribe
// message is needed after the handshake.
const DefaultBinanceStreamURL = "wss://fstream.binance.com/stream"

// =============================================================================
// WIRE TYPES
// =============================================================================

// binanceCombined is the combined-stream envelope.
type binanceCombined struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// binanceMiniTicker is the miniTicker payload. Close is the last price.
type binanceMiniTicker struct {
	Event  string `json:"e"`
	TimeMs int64  `json:"E"`
	Symbol string `json:"s"`
	Close  string `json:"c"`
}

// =============================================================================
// FEED CONSTRUCTOR
// =============================================================================

// NewBinanceFeed watches miniTicker streams for the given base symbols
// (BTC, ETH, ...) against USDT.
func NewBinanceFeed(symbols []string, cfg FeedConfig, logger *zap.Logger) Feed {
	base := cfg.URL
	if base == "" {
		base = DefaultBinanceStreamURL
	}
	cfg.URL = binanceStreamURL(base, symbols)

	return newWSFeed(model.MarketBinance, cfg, nil, decodeBinanceTicks, logger)
}

// binanceStreamURL builds the combined-stream URL for a symbol set.
func binanceStreamURL(base string, symbols []string) string {
	streams := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		streams = append(streams, s+"usdt@miniTicker")
	}
	return base + "?streams=" + strings.Join(streams, "/")
}

// decodeBinanceTicks extracts a tick from a combined-stream frame.
func decodeBinanceTicks(data []byte) []Tick {
	var envelope binanceCombined
	if err := json.Unmarshal(data, &envelope); err != nil || len(envelope.Data) == 0 {
		return nil
	}

	var mini binanceMiniTicker
	if err := json.Unmarshal(envelope.Data, &mini); err != nil || mini.Close == "" {
		return nil
	}

	price, err := decimal.NewFromString(mini.Close)
	if err != nil || !price.IsPositive() {
		return nil
	}

	at := time.Now()
	if mini.TimeMs > 0 {
		at = time.UnixMilli(mini.TimeMs)
	}

	return []Tick{{
		Market: model.MarketBinance,
		Symbol: binanceBaseSymbol(mini.Symbol),
		Price:  price,
		At:     at,
	}}
}

// binanceBaseSymbol strips the quote suffix: BTCUSDT reads as BTC on
// the strip, matching how Hyperliquid names coins.
func binanceBaseSymbol(pair string) string {
	pair = strings.ToUpper(pair)
	if strings.HasSuffix(pair, "USDT") && len(pair) > 4 {
		return pair[:len(pair)-4]
	}
	return pair
}
