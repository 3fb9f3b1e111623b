// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures the panels render.
//
// Two families live here:
//
//   - Conversation and Message mirror the backend's chat entities locally
//     as an append-only sequence. The last message may be streaming
//     (mutable) until the task's terminal event freezes it. Conversation
//     identity is backend-owned and adopted only on successful completion.
//
//   - Market types (Candle, Balance, Position, Order, Ticker, ...) carry
//     account and market state fetched from the backend. Every price,
//     size, and PnL field is a decimal.Decimal; float64 never holds money.
package model
