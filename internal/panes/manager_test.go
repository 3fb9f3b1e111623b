// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panes

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/jeranaias/tradedeck/internal/model"
)

// =============================================================================
// STRUCTURAL REBUILD RULE
// =============================================================================

// Structural rebuilds happen exactly when the needed pane stack
// changes; visibility toggles never trigger one.
func TestRebuildExactlyWhenPaneStackChanges(t *testing.T) {
	cases := []struct {
		name        string
		from        []string
		to          []string
		wantRebuild bool
	}{
		{"first subplot added", []string{"MA5"}, []string{"MA5", "RSI14"}, true},
		{"subplot swapped", []string{"RSI14"}, []string{"MACD"}, false},
		{"overlay added", []string{"MA5"}, []string{"MA5", "MA10"}, false},
		{"overlay added beside subplot", []string{"RSI14"}, []string{"RSI14", "MA5"}, false},
		{"last subplot removed", []string{"MA5", "RSI14"}, []string{"MA5"}, true},
		{"first overlay added", nil, []string{"MA5"}, false},
		{"flow pane added", []string{"RSI14"}, []string{"RSI14", "OI"}, true},
		{"both subplots swap members", []string{"RSI14", "OI"}, []string{"MACD", "FUNDING"}, false},
		{"everything cleared", []string{"MA5", "RSI14"}, nil, true},
		{"no change", []string{"RSI14"}, []string{"RSI14"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewManager()
			m.ApplySelection(tc.from)

			plan := m.ApplySelection(tc.to)
			if plan.Rebuild != tc.wantRebuild {
				t.Errorf("ApplySelection(%v -> %v) rebuild = %v, want %v",
					tc.from, tc.to, plan.Rebuild, tc.wantRebuild)
			}
			if !plan.Layout.Equal(NeededLayout(tc.to)) {
				t.Errorf("Plan layout = %v, want %v", plan.Layout.Panes, NeededLayout(tc.to).Panes)
			}
		})
	}
}

// =============================================================================
// ACTIVE SUBPLOT SELECTION
// =============================================================================

func TestNewSubplotBecomesActive(t *testing.T) {
	m := NewManager()
	m.ApplySelection([]string{"MA5"})

	plan := m.ApplySelection([]string{"MA5", "RSI14"})
	if !plan.Rebuild {
		t.Fatal("Adding the first subplot indicator must rebuild")
	}
	if plan.ActiveTechnical != "RSI14" {
		t.Errorf("ActiveTechnical = %q, want RSI14", plan.ActiveTechnical)
	}
	if plan.Carry == nil {
		t.Fatal("Rebuild plan must carry series state")
	}
	if !plan.Carry.Visible["MA5"] || !plan.Carry.Visible["RSI14"] {
		t.Errorf("Carried visibility = %v", plan.Carry.Visible)
	}
}

func TestSubplotSwapSwitchesActiveWithoutRebuild(t *testing.T) {
	m := NewManager()
	m.ApplySelection([]string{"RSI14"})

	plan := m.ApplySelection([]string{"MACD"})
	if plan.Rebuild {
		t.Fatal("Swapping one subplot indicator for another must not rebuild")
	}
	if plan.ActiveTechnical != "MACD" {
		t.Errorf("ActiveTechnical = %q, want MACD", plan.ActiveTechnical)
	}
	if !reflect.DeepEqual(plan.Show, []string{"MACD"}) {
		t.Errorf("Show = %v, want [MACD]", plan.Show)
	}
	if !reflect.DeepEqual(plan.Hide, []string{"RSI14"}) {
		t.Errorf("Hide = %v, want [RSI14]", plan.Hide)
	}
}

func TestAddedSubplotTakesPaneFromCurrent(t *testing.T) {
	m := NewManager()
	m.ApplySelection([]string{"RSI14"})

	// MACD arrives while RSI14 holds the pane: the newcomer wins.
	plan := m.ApplySelection([]string{"RSI14", "MACD"})
	if plan.Rebuild {
		t.Fatal("Second technical indicator must not rebuild")
	}
	if plan.ActiveTechnical != "MACD" {
		t.Errorf("ActiveTechnical = %q, want MACD", plan.ActiveTechnical)
	}
	if m.Visible("RSI14") {
		t.Error("Displaced indicator should be hidden, not shown")
	}
	if !m.Visible("MACD") {
		t.Error("Active indicator should be visible")
	}
}

func TestRemovingActiveFallsBackToFirstRemaining(t *testing.T) {
	m := NewManager()
	m.ApplySelection([]string{"RSI14"})
	m.ApplySelection([]string{"RSI14", "MACD"}) // MACD active

	plan := m.ApplySelection([]string{"RSI14"})
	if plan.Rebuild {
		t.Fatal("Technical pane still populated; no rebuild expected")
	}
	if plan.ActiveTechnical != "RSI14" {
		t.Errorf("ActiveTechnical = %q, want fallback RSI14", plan.ActiveTechnical)
	}
	if !reflect.DeepEqual(plan.Show, []string{"RSI14"}) {
		t.Errorf("Show = %v, want [RSI14]", plan.Show)
	}
	if !reflect.DeepEqual(plan.Hide, []string{"MACD"}) {
		t.Errorf("Hide = %v, want [MACD]", plan.Hide)
	}
}

func TestRemovingLastSubplotTearsDownPane(t *testing.T) {
	m := NewManager()
	m.ApplySelection([]string{"MA5", "RSI14"})

	plan := m.ApplySelection([]string{"MA5"})
	if !plan.Rebuild {
		t.Fatal("Removing the last subplot indicator must rebuild")
	}
	if plan.ActiveTechnical != "" {
		t.Errorf("ActiveTechnical = %q, want empty after teardown", plan.ActiveTechnical)
	}
	if plan.Layout.Has(PaneTechnical) {
		t.Error("Technical pane should be gone from the layout")
	}
}

// =============================================================================
// SERIES CARRY-FORWARD
// =============================================================================

func someSeries(n int) []model.IndicatorValue {
	values := make([]model.IndicatorValue, n)
	for i := range values {
		values[i] = model.IndicatorValue{Value: decimal.New(int64(i), 0), OK: true}
	}
	return values
}

func TestRebuildCarriesCachedSeries(t *testing.T) {
	m := NewManager()
	m.SetInstrument("btc", "1m")
	m.ApplySelection([]string{"MA5"})
	m.SetSeries("MA5", someSeries(3))

	plan := m.ApplySelection([]string{"MA5", "RSI14"})
	if plan.Carry == nil {
		t.Fatal("Rebuild plan must carry series state")
	}

	carry := plan.Carry
	if carry.Symbol != "BTC" || carry.Period != "1m" {
		t.Errorf("Carried instrument = %s/%s", carry.Symbol, carry.Period)
	}
	if !reflect.DeepEqual(carry.Keys, []string{"MA5", "RSI14"}) {
		t.Errorf("Carried keys = %v", carry.Keys)
	}
	if len(carry.Series["MA5"]) != 3 {
		t.Errorf("Cached MA5 series did not carry: %v", carry.Series)
	}
	if _, ok := carry.Series["RSI14"]; ok {
		t.Error("Unfetched series should not appear in the carry")
	}
}

func TestInstrumentChangeClearsSeriesCache(t *testing.T) {
	m := NewManager()
	m.SetInstrument("BTC", "1m")
	m.SetSeries("MA5", someSeries(2))

	if changed := m.SetInstrument("BTC", "1m"); changed {
		t.Error("Same instrument reported as changed")
	}
	if _, ok := m.Series("MA5"); !ok {
		t.Fatal("Cache lost without an instrument change")
	}

	if changed := m.SetInstrument("ETH", "1m"); !changed {
		t.Error("Different symbol not reported as changed")
	}
	if _, ok := m.Series("MA5"); ok {
		t.Error("Series cache must clear on instrument change")
	}
}

// =============================================================================
// SELECTION HYGIENE
// =============================================================================

func TestSelectionNormalized(t *testing.T) {
	m := NewManager()
	m.ApplySelection([]string{"ma5", " MA5", "", "rsi14"})

	if !reflect.DeepEqual(m.Selection(), []string{"MA5", "RSI14"}) {
		t.Errorf("Selection = %v, want [MA5 RSI14]", m.Selection())
	}
}

func TestNoChangeProducesEmptyPlan(t *testing.T) {
	m := NewManager()
	m.ApplySelection([]string{"RSI14", "MA5"})

	plan := m.ApplySelection([]string{"RSI14", "MA5"})
	if plan.Rebuild || len(plan.Show) != 0 || len(plan.Hide) != 0 {
		t.Errorf("Idempotent selection produced work: %+v", plan)
	}
}
