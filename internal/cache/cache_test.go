// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cache

import (
	"testing"
	"time"

	"github.com/jeranaias/tradedeck/internal/model"
)

func TestCacheSetGet(t *testing.T) {
	m := NewManager()

	if _, ok := m.Get("missing"); ok {
		t.Error("hit on empty cache")
	}

	m.Set("k", 42, time.Minute)
	v, ok := m.Get("k")
	if !ok || v.(int) != 42 {
		t.Errorf("Get = %v %v", v, ok)
	}

	stats := m.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Entries != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestCacheExpiry(t *testing.T) {
	m := NewManager()
	m.Set("k", "v", time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	if _, ok := m.Get("k"); ok {
		t.Error("expired entry served")
	}
}

func TestCacheZeroTTLIgnored(t *testing.T) {
	m := NewManager()
	m.Set("k", "v", 0)
	if _, ok := m.Get("k"); ok {
		t.Error("zero-ttl entry stored")
	}
}

func TestCacheInvalidateNotifies(t *testing.T) {
	m := NewManager()
	var invalidated []string
	m.Subscribe(func(key string) { invalidated = append(invalidated, key) })

	m.Set("orders:binance", 1, time.Minute)
	m.Invalidate("orders:binance")

	if len(invalidated) != 1 || invalidated[0] != "orders:binance" {
		t.Errorf("invalidated = %v", invalidated)
	}
	if _, ok := m.Get("orders:binance"); ok {
		t.Error("entry survived invalidation")
	}

	// Invalidating an absent key stays silent.
	m.Invalidate("orders:binance")
	if len(invalidated) != 1 {
		t.Errorf("absent-key invalidation notified: %v", invalidated)
	}
}

func TestCacheInvalidatePrefix(t *testing.T) {
	m := NewManager()
	var count int
	m.Subscribe(func(string) { count++ })

	m.Set("orders:binance:BTCUSDT", 1, time.Minute)
	m.Set("orders:binance:ETHUSDT", 2, time.Minute)
	m.Set("orders:hyperliquid", 3, time.Minute)
	m.Set("balances:binance", 4, time.Minute)

	m.InvalidatePrefix("orders:binance")

	if count != 2 {
		t.Errorf("notified %d, want 2", count)
	}
	if _, ok := m.Get("orders:hyperliquid"); !ok {
		t.Error("unrelated market dropped")
	}
	if _, ok := m.Get("balances:binance"); !ok {
		t.Error("unrelated class dropped")
	}
}

func TestCacheCleanupJanitor(t *testing.T) {
	m := NewManager()
	m.Set("short", 1, time.Millisecond)
	m.Set("long", 2, time.Hour)

	stop := m.StartCleanup(5 * time.Millisecond)
	defer stop()

	deadline := time.After(time.Second)
	for {
		if m.Stats().Entries == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("janitor never dropped expired entry: %+v", m.Stats())
		case <-time.After(5 * time.Millisecond):
		}
	}

	// stop is idempotent.
	stop()
	stop()
}

func TestKeySpace(t *testing.T) {
	key := KlineKey(model.MarketBinance, "btcusdt", "5m", 120, []string{"MA5", "RSI14"})
	if key != "klines:binance:BTCUSDT:5m:120:MA5,RSI14" {
		t.Errorf("key = %s", key)
	}

	bare := KlineKey(model.MarketHyperliquid, "BTC", "1m", 60, nil)
	if bare != "klines:hyperliquid:BTC:1m:60" {
		t.Errorf("key = %s", bare)
	}

	if OrdersKey(model.MarketBinance, "") != "orders:binance" {
		t.Error("orders key without symbol")
	}
	if OrdersKey(model.MarketBinance, "ethusdt") != "orders:binance:ETHUSDT" {
		t.Error("orders key with symbol")
	}

	prefixes := AccountPrefixes(model.MarketBinance)
	if len(prefixes) != 3 {
		t.Errorf("prefixes = %v", prefixes)
	}
}

func TestStatsHitRate(t *testing.T) {
	s := Stats{Hits: 3, Misses: 1}
	if got := s.HitRate(); got != 0.75 {
		t.Errorf("HitRate = %v", got)
	}
	if (Stats{}).HitRate() != 0 {
		t.Error("empty hit rate")
	}
}
