// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides helper functions shared across tradedeck.
//
// This package contains the small building blocks the rest of the
// application leans on for text layout, number formatting, and
// crash-safe file writes.
//
// # Key Functions
//
// Text:
//   - Truncate: display-width aware truncation with ellipsis
//   - PadRight: display-width aware padding for column layout
//
// Formatting:
//   - Price, Quantity, USD: decimal rendering for panel cells
//   - GroupedInt: locale-grouped integer rendering
//
// Files:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	cell := util.PadRight(util.Truncate(name, 18), 18)
//	px := util.Price(order.Price, 2)
//	err := util.AtomicWriteFile(path, data, 0o644)
package util
