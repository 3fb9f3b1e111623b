// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/tradedeck/internal/model"
)

// =============================================================================
// ACTIVITY LOG TESTS
// =============================================================================

func openTestLog(t *testing.T) *ActivityLog {
	t.Helper()
	log, err := OpenActivityLog(filepath.Join(t.TempDir(), "activity.db"))
	if err != nil {
		t.Fatalf("OpenActivityLog failed: %v", err)
	}
	t.Cleanup(func() { log.Close() })
	return log
}

func feedEvent(id string, market model.Market, kind, symbol, text string, at time.Time) model.ActivityEvent {
	return model.ActivityEvent{
		ID:     id,
		Market: market,
		Kind:   kind,
		Symbol: symbol,
		Text:   text,
		At:     at,
	}
}

func TestActivityLog_RecordAndRecent(t *testing.T) {
	log := openTestLog(t)
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	err := log.Record(
		feedEvent("ev-1", model.MarketHyperliquid, "fill", "BTC", "Filled 0.1 BTC @ 64000", base),
		feedEvent("ev-2", model.MarketBinance, "agent", "", "Scout flagged ETH momentum", base.Add(time.Minute)),
		feedEvent("ev-3", model.MarketHyperliquid, "program", "SOL", "Grid program rebalanced", base.Add(2*time.Minute)),
	)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	events, err := log.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("Recent count = %d, want 3", len(events))
	}

	// Newest first.
	if events[0].ID != "ev-3" || events[2].ID != "ev-1" {
		t.Errorf("Recent order = [%s %s %s], want newest first",
			events[0].ID, events[1].ID, events[2].ID)
	}
	if events[0].Market != model.MarketHyperliquid {
		t.Errorf("Market = %q, want hyperliquid", events[0].Market)
	}
	if !events[2].At.Equal(base) {
		t.Errorf("At = %v, want %v", events[2].At, base)
	}
}

func TestActivityLog_IdempotentByID(t *testing.T) {
	log := openTestLog(t)
	at := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	// Overlapping fetch windows replay the same backend event.
	if err := log.Record(feedEvent("ev-1", model.MarketBinance, "fill", "ETH", "partial fill", at)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := log.Record(feedEvent("ev-1", model.MarketBinance, "fill", "ETH", "full fill", at)); err != nil {
		t.Fatalf("Record replay failed: %v", err)
	}

	count, err := log.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Count = %d, want 1 (replay must not duplicate)", count)
	}

	events, _ := log.Recent(10)
	if events[0].Text != "full fill" {
		t.Errorf("Replay should refresh the row, text = %q", events[0].Text)
	}
}

func TestActivityLog_GeneratesLocalID(t *testing.T) {
	log := openTestLog(t)

	// Locally produced echo (order placement), no backend ID.
	err := log.Record(model.ActivityEvent{
		Market: model.MarketHyperliquid,
		Kind:   "order",
		Symbol: "BTC",
		Text:   "Submitted limit buy",
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	events, err := log.Recent(1)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Recent count = %d, want 1", len(events))
	}
	if !strings.HasPrefix(events[0].ID, "localev_") {
		t.Errorf("Generated ID = %q, want localev_ prefix", events[0].ID)
	}
	if events[0].At.IsZero() {
		t.Error("Zero timestamp should be filled in")
	}
}

func TestActivityLog_RecentFor(t *testing.T) {
	log := openTestLog(t)
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	log.Record(
		feedEvent("ev-1", model.MarketHyperliquid, "fill", "BTC", "hl fill", base),
		feedEvent("ev-2", model.MarketBinance, "fill", "ETH", "binance fill", base.Add(time.Minute)),
		feedEvent("ev-3", model.MarketHyperliquid, "agent", "", "hl agent", base.Add(2*time.Minute)),
	)

	events, err := log.RecentFor(model.MarketHyperliquid, 10)
	if err != nil {
		t.Fatalf("RecentFor failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("RecentFor count = %d, want 2", len(events))
	}
	for _, ev := range events {
		if ev.Market != model.MarketHyperliquid {
			t.Errorf("Filtered result has market %q", ev.Market)
		}
	}
}

func TestActivityLog_RecentByKind(t *testing.T) {
	log := openTestLog(t)
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	log.Record(
		feedEvent("ev-1", model.MarketHyperliquid, "fill", "BTC", "fill one", base),
		feedEvent("ev-2", model.MarketHyperliquid, "agent", "", "agent note", base.Add(time.Minute)),
	)

	events, err := log.RecentByKind("fill", 10)
	if err != nil {
		t.Fatalf("RecentByKind failed: %v", err)
	}
	if len(events) != 1 || events[0].Kind != "fill" {
		t.Errorf("RecentByKind returned %+v", events)
	}
}

func TestActivityLog_Retention(t *testing.T) {
	log := openTestLog(t)
	log.SetMaxRows(3)
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		ev := feedEvent(
			"ev-"+string(rune('a'+i)), model.MarketBinance, "fill", "BTC",
			"fill", base.Add(time.Duration(i)*time.Minute),
		)
		if err := log.Record(ev); err != nil {
			t.Fatalf("Record %d failed: %v", i, err)
		}
	}

	count, err := log.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 3 {
		t.Errorf("Count after retention = %d, want 3", count)
	}

	// The newest three survive.
	events, _ := log.Recent(10)
	if len(events) != 3 || events[0].ID != "ev-e" || events[2].ID != "ev-c" {
		ids := make([]string, len(events))
		for i, ev := range events {
			ids[i] = ev.ID
		}
		t.Errorf("Surviving rows = %v, want [ev-e ev-d ev-c]", ids)
	}
}

func TestActivityLog_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.db")

	log, err := OpenActivityLog(path)
	if err != nil {
		t.Fatalf("OpenActivityLog failed: %v", err)
	}
	at := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	if err := log.Record(feedEvent("ev-1", model.MarketHyperliquid, "fill", "BTC", "persisted", at)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := log.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := OpenActivityLog(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer reopened.Close()

	events, err := reopened.Recent(10)
	if err != nil {
		t.Fatalf("Recent after reopen failed: %v", err)
	}
	if len(events) != 1 || events[0].Text != "persisted" {
		t.Errorf("Mirror did not survive reopen: %+v", events)
	}
}

func TestActivityLog_CountEmpty(t *testing.T) {
	log := openTestLog(t)

	count, err := log.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Count = %d, want 0", count)
	}

	events, err := log.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("Recent on empty log = %d rows", len(events))
	}
}
