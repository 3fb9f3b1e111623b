// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package market maintains live price feeds for the ticker strip.
//
// Feeds are read-only, unauthenticated websocket subscriptions to
// public market data: Hyperliquid allMids and Binance futures
// miniTicker combined streams. Each feed runs a reconnect loop with
// capped backoff and delivers Tick values on a channel; slow consumers
// drop ticks rather than stall the read loop.
//
// The Board aggregates ticks (and REST-seeded snapshots) into the
// latest price per market/symbol, with staleness judged at render
// time. Service wires feeds to the board and fans ticks out to the UI.
//
// # Usage
//
//	svc := market.NewService(board,
//		market.NewHyperliquidFeed(symbols, market.FeedConfig{}, logger),
//		market.NewBinanceFeed(symbols, market.FeedConfig{}, logger),
//	)
//	svc.OnTick = func(t market.Tick) { program.Send(tickMsg(t)) }
//	svc.Start(ctx)
package market
