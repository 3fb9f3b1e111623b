// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable visual components for the
// tradedeck TUI: the status bar, ticker strip, market data panels, the
// candlestick chart renderer, the order entry form, activity feed,
// toasts and spinners.
//
// Components are plain view-state structs. They never fetch data
// themselves; the owning screen model pushes fresh rows in (SetRows,
// SetTickers, and friends) and calls View() during render. That keeps
// every component trivially testable without a program loop.
package components
