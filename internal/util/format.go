// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides helper functions shared across tradedeck.
package util

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// =============================================================================
// NUMBER FORMATTING
// =============================================================================

// Display formatting only. Arithmetic on money stays in decimal.Decimal;
// these helpers are the last step before a value reaches a panel cell.

var displayPrinter = message.NewPrinter(language.English)

// Price renders a decimal with a fixed number of fraction digits and
// thousands grouping: Price(d, 2) -> "43,251.07".
func Price(d decimal.Decimal, places int32) string {
	f, _ := d.Round(places).Float64()
	return displayPrinter.Sprintf("%v", number.Decimal(f,
		number.MinFractionDigits(int(places)),
		number.MaxFractionDigits(int(places))))
}

// Quantity renders a size with trailing zeros trimmed but at least one
// fraction digit kept, so "0.5000" shows as "0.5" and "12" as "12.0".
func Quantity(d decimal.Decimal) string {
	s := d.String()
	if !strings.Contains(s, ".") {
		return s + ".0"
	}
	s = strings.TrimRight(s, "0")
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	return s
}

// USD renders a dollar amount with sign, grouping, and two places:
// USD(d) -> "$1,204.50", USD(neg) -> "-$87.20".
func USD(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + Price(d.Neg(), 2)
	}
	return "$" + Price(d, 2)
}

// SignedPercent renders a ratio as a signed percentage with two places:
// SignedPercent(0.0312) -> "+3.12%".
func SignedPercent(ratio decimal.Decimal) string {
	pct := ratio.Mul(decimal.NewFromInt(100)).Round(2)
	if pct.IsNegative() {
		return pct.String() + "%"
	}
	return "+" + pct.String() + "%"
}

// GroupedInt renders an integer with thousands grouping.
func GroupedInt(n int64) string {
	return displayPrinter.Sprintf("%d", n)
}
