// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package market

import (
	"sort"
	"sync"
	"time"

	"github.com/jeranaias/tradedeck/internal/model"
)

// DefaultTickerMaxAge is how old a price may get before the strip
// renders it as stale.
const DefaultTickerMaxAge = 30 * time.Second

// =============================================================================
// TICKER BOARD
// =============================================================================

// Board holds the latest price per market/symbol. Feeds and REST seeds
// both write to it; fresher timestamps always win, so a slow REST
// response cannot clobber a live tick that arrived first.
type Board struct {
	mu      sync.RWMutex
	tickers map[string]model.Ticker
	maxAge  time.Duration
}

// NewBoard creates an empty board. maxAge <= 0 selects the default.
func NewBoard(maxAge time.Duration) *Board {
	if maxAge <= 0 {
		maxAge = DefaultTickerMaxAge
	}
	return &Board{
		tickers: make(map[string]model.Ticker),
		maxAge:  maxAge,
	}
}

// Seed loads a REST snapshot. Entries older than what the board
// already holds are ignored.
func (b *Board) Seed(tickers []model.Ticker) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range tickers {
		b.setLocked(t)
	}
}

// Apply records a live tick.
func (b *Board) Apply(t Tick) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setLocked(model.Ticker{
		Market: t.Market,
		Symbol: t.Symbol,
		Price:  t.Price,
		At:     t.At,
	})
}

func (b *Board) setLocked(t model.Ticker) {
	key := string(t.Market) + ":" + t.Symbol
	if existing, ok := b.tickers[key]; ok && t.At.Before(existing.At) {
		return
	}
	b.tickers[key] = t
}

// Lookup returns the latest ticker for a market/symbol.
func (b *Board) Lookup(market model.Market, symbol string) (model.Ticker, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	t, ok := b.tickers[string(market)+":"+symbol]
	return t, ok
}

// Snapshot returns every ticker, sorted by market then symbol, for the
// strip to render.
func (b *Board) Snapshot() []model.Ticker {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]model.Ticker, 0, len(b.tickers))
	for _, t := range b.tickers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Market != out[j].Market {
			return out[i].Market < out[j].Market
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}

// StaleCount reports how many tickers are older than the board's max
// age, for the status bar.
func (b *Board) StaleCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for _, t := range b.tickers {
		if t.Stale(b.maxAge) {
			n++
		}
	}
	return n
}

// MaxAge returns the staleness threshold the board was built with.
func (b *Board) MaxAge() time.Duration {
	return b.maxAge
}
