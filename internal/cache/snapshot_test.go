// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cache

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/jeranaias/tradedeck/internal/model"
)

func limitDecoder(key string, raw json.RawMessage) (any, bool) {
	if key != RateLimitsKey() {
		return nil, false
	}
	var limits []model.RateLimit
	if err := json.Unmarshal(raw, &limits); err != nil {
		return nil, false
	}
	return limits, true
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	m := NewManager()
	limits := []model.RateLimit{
		{Market: model.MarketBinance, Used: 10, Cap: 100},
	}
	m.Set(RateLimitsKey(), limits, time.Minute)
	m.Set(TickersKey(model.MarketBinance), "fast-moving", time.Minute)

	if err := m.SaveSnapshot(path, RateLimitsKey()); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	fresh := NewManager()
	n, err := fresh.LoadSnapshot(path, limitDecoder)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if n != 1 {
		t.Fatalf("restored %d entries, want 1", n)
	}

	v, ok := fresh.Get(RateLimitsKey())
	if !ok {
		t.Fatal("restored entry missing")
	}
	got := v.([]model.RateLimit)
	if len(got) != 1 || got[0].Used != 10 || got[0].Cap != 100 {
		t.Errorf("restored limits = %+v", got)
	}

	// The unselected prefix must not leak into the snapshot.
	if _, ok := fresh.Get(TickersKey(model.MarketBinance)); ok {
		t.Error("tickers entry restored despite prefix filter")
	}
}

func TestSnapshotSkipsExpired(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	m := NewManager()
	m.Set(RateLimitsKey(), []model.RateLimit{{Used: 1, Cap: 2}}, time.Millisecond)
	if err := m.SaveSnapshot(path, RateLimitsKey()); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	fresh := NewManager()
	n, err := fresh.LoadSnapshot(path, limitDecoder)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if n != 0 {
		t.Errorf("restored %d expired entries", n)
	}
}

func TestSnapshotMissingFile(t *testing.T) {
	m := NewManager()
	n, err := m.LoadSnapshot(filepath.Join(t.TempDir(), "absent.json"), limitDecoder)
	if err != nil || n != 0 {
		t.Errorf("LoadSnapshot on missing file = %d, %v", n, err)
	}
}
