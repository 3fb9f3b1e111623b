// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package market

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jeranaias/tradedeck/internal/model"
)

// DefaultHyperliquidURL is the public Hyperliquid websocket endpoint.
const DefaultHyperliquidURL = "wss://api.hyperliquid.xyz/ws"

// =============================================================================
// WIRE TYPES
// =============================================================================

// hlSubscription is the subscribe request. allMids carries every coin,
// so one subscription serves the whole strip.
type hlSubscription struct {
	Method       string            `json:"method"`
	Subscription map[string]string `json:"subscription"`
}

// hlAllMids is the allMids channel frame: coin to mid-price string.
type hlAllMids struct {
	Channel string `json:"channel"`
	Data    struct {
		Mids map[string]string `json:"mids"`
	} `json:"data"`
}

// =============================================================================
// FEED CONSTRUCTOR
// =============================================================================

// NewHyperliquidFeed subscribes to allMids and emits ticks for the
// given symbols. An empty symbol list passes every coin through.
func NewHyperliquidFeed(symbols []string, cfg FeedConfig, logger *zap.Logger) Feed {
	if cfg.URL == "" {
		cfg.URL = DefaultHyperliquidURL
	}

	want := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		want[strings.ToUpper(strings.TrimSpace(s))] = true
	}

	subscribe := func(conn *websocket.Conn) error {
		msg := hlSubscription{
			Method:       "subscribe",
			Subscription: map[string]string{"type": "allMids"},
		}
		return conn.WriteJSON(msg)
	}

	decode := func(data []byte) []Tick {
		return decodeAllMids(data, want)
	}

	return newWSFeed(model.MarketHyperliquid, cfg, subscribe, decode, logger)
}

// decodeAllMids extracts ticks from an allMids frame. Frames from
// other channels (subscription acks, pongs) decode to nothing.
func decodeAllMids(data []byte, want map[string]bool) []Tick {
	var msg hlAllMids
	if err := json.Unmarshal(data, &msg); err != nil || msg.Channel != "allMids" {
		return nil
	}

	now := time.Now()
	var ticks []Tick
	for symbol, raw := range msg.Data.Mids {
		if len(want) > 0 && !want[symbol] {
			continue
		}
		price, err := decimal.NewFromString(raw)
		if err != nil || !price.IsPositive() {
			continue
		}
		ticks = append(ticks, Tick{
			Market: model.MarketHyperliquid,
			Symbol: symbol,
			Price:  price,
			At:     now,
		})
	}
	return ticks
}
