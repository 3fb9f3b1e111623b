// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// markets.go - Markets command handler for the tradedeck CLI.
//
// Handles the "tradedeck markets" command: the configured watchlist with
// a one-shot price fetch per market.
//
// Command: markets
// Aliases: market, tickers
//
// Examples:
//   tradedeck markets                       Prices for all markets
//   tradedeck markets --market binance      Binance only
//   tradedeck markets --json                Machine-readable

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/tradedeck/internal/model"
)

// marketsFetchTimeout bounds the whole price fetch.
const marketsFetchTimeout = 10 * time.Second

// marketTickers is one market's slice of the JSON output.
type marketTickers struct {
	Market  model.Market   `json:"market"`
	Tickers []model.Ticker `json:"tickers,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// HandleMarketsCommand handles the "markets" command.
func HandleMarketsCommand(args Args) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newBackendClient(cfg)
	if err != nil {
		return err
	}

	markets := model.Markets
	if args.Market != "" {
		m, err := model.ParseMarket(args.Market)
		if err != nil {
			return NewValidationError("market", args.Market, err.Error())
		}
		markets = []model.Market{m}
	}

	ctx, cancel := context.WithTimeout(context.Background(), marketsFetchTimeout)
	defer cancel()

	var results []marketTickers
	for _, market := range markets {
		entry := marketTickers{Market: market}
		tickers, err := client.Tickers(ctx, market)
		if err != nil {
			entry.Error = err.Error()
		} else {
			entry.Tickers = tickers
		}
		results = append(results, entry)
	}

	if args.JSON {
		printJSON("markets", results)
		return nil
	}

	printMarkets(cfg.Markets.Symbols, results)
	return nil
}

// printMarkets renders one section per market.
func printMarkets(watchlist []string, results []marketTickers) {
	fmt.Println(TitleStyle.Render("tradedeck markets"))

	for _, entry := range results {
		fmt.Println(SectionStyle.Render(entry.Market.DisplayName()))
		if entry.Error != "" {
			fmt.Printf("  %s %s\n", RenderStatus("fail"), DimStyle.Render(entry.Error))
			continue
		}
		if len(entry.Tickers) == 0 {
			fmt.Println("  " + DimStyle.Render("no tickers"))
			continue
		}
		for _, t := range entry.Tickers {
			if !onWatchlist(watchlist, t.Symbol) {
				continue
			}
			age := ""
			if t.Stale(time.Minute) {
				age = WarningStyle.Render(" (stale)")
			}
			fmt.Printf("  %s %s%s\n",
				RenderLabel(t.Symbol+":", 12),
				ValueStyle.Render(t.Price.String()),
				age)
		}
	}
	fmt.Println()
}

// onWatchlist reports whether a symbol is configured; an empty
// watchlist shows everything.
func onWatchlist(watchlist []string, symbol string) bool {
	if len(watchlist) == 0 {
		return true
	}
	for _, s := range watchlist {
		if s == symbol {
			return true
		}
	}
	return false
}
