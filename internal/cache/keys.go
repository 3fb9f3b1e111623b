// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cache

import (
	"strconv"
	"strings"

	"github.com/jeranaias/tradedeck/internal/model"
)

// The key space. One segment per axis, colon-separated, so prefix
// invalidation can target a class ("orders:") or a market
// ("orders:binance:").

// KlineKey identifies one kline fetch including its indicator set.
func KlineKey(market model.Market, symbol, period string, count int, indicators []string) string {
	parts := []string{
		"klines",
		string(market),
		strings.ToUpper(symbol),
		period,
		strconv.Itoa(count),
	}
	if len(indicators) > 0 {
		parts = append(parts, strings.Join(indicators, ","))
	}
	return strings.Join(parts, ":")
}

// TickersKey identifies the ticker snapshot for one market.
func TickersKey(market model.Market) string {
	return "tickers:" + string(market)
}

// BalancesKey identifies the balance set for one market.
func BalancesKey(market model.Market) string {
	return "balances:" + string(market)
}

// PositionsKey identifies the position set for one market.
func PositionsKey(market model.Market) string {
	return "positions:" + string(market)
}

// OrdersKey identifies the open-order set for one market and optional
// symbol filter.
func OrdersKey(market model.Market, symbol string) string {
	if symbol == "" {
		return "orders:" + string(market)
	}
	return "orders:" + string(market) + ":" + strings.ToUpper(symbol)
}

// RateLimitsKey identifies the backend request budgets.
func RateLimitsKey() string {
	return "ratelimits"
}

// ProgramsKey identifies the backend program list. Programs are
// backend-owned and change rarely.
func ProgramsKey() string {
	return "programs"
}

// AccountPrefix covers every account-state class for one market. An
// accepted order invalidates this whole prefix set.
func AccountPrefixes(market model.Market) []string {
	return []string{
		"balances:" + string(market),
		"positions:" + string(market),
		"orders:" + string(market),
	}
}
