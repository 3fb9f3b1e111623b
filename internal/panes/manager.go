// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panes

import (
	"strings"

	"github.com/jeranaias/tradedeck/internal/model"
)

// =============================================================================
// PLAN AND CARRIED STATE
// =============================================================================

// Plan tells the renderer how to react to a selection change.
//
// When Rebuild is false, Show and Hide list the visibility toggles to
// apply in place. When Rebuild is true, the pane stack must be torn
// down and reconstructed per Layout, re-applying Carry instead of
// refetching.
type Plan struct {
	Rebuild bool
	Layout  Layout
	Carry   *SeriesState

	Show []string
	Hide []string

	ActiveTechnical string
	ActiveFlow      string

	// overlays is the visible price-pane series after the plan applies,
	// in display order.
	overlays []string
}

// OverlayKeys returns the overlay-class series the price pane should
// draw once this plan is applied.
func (p Plan) OverlayKeys() []string {
	out := make([]string, len(p.overlays))
	copy(out, p.overlays)
	return out
}

// SeriesState is the explicit value carried across a structural
// rebuild: the cached series, visibility flags, and active subplot
// choices that the new structure starts from.
type SeriesState struct {
	Symbol string
	Period string

	// Keys is the selection in display order.
	Keys []string

	// Visible flags every selected series; non-active subplot series
	// are present but hidden.
	Visible map[string]bool

	// Series holds whatever data was already fetched, keyed by
	// indicator. Missing entries mean the renderer shows the series
	// empty until the next fetch lands.
	Series map[string][]model.IndicatorValue

	ActiveTechnical string
	ActiveFlow      string
}

// =============================================================================
// PANE LIFECYCLE MANAGER
// =============================================================================

// Manager owns the chart surface's structural state: the selected
// indicators, the pane stack they require, per-series visibility, the
// active indicator of each subplot, and the fetched-series cache.
//
// Not safe for concurrent use; the UI event loop is the only caller.
type Manager struct {
	symbol string
	period string

	selection []string
	layout    Layout

	activeTech string
	activeFlow string
	visible    map[string]bool

	series map[string][]model.IndicatorValue
}

// NewManager starts with an empty selection: a lone price pane.
func NewManager() *Manager {
	return &Manager{
		layout:  NeededLayout(nil),
		visible: make(map[string]bool),
		series:  make(map[string][]model.IndicatorValue),
	}
}

// Selection returns the current indicator keys in display order.
func (m *Manager) Selection() []string {
	out := make([]string, len(m.selection))
	copy(out, m.selection)
	return out
}

// Layout returns the current pane stack.
func (m *Manager) Layout() Layout { return m.layout }

// ActiveTechnical returns the indicator shown in the technical pane.
func (m *Manager) ActiveTechnical() string { return m.activeTech }

// ActiveFlow returns the indicator shown in the market-flow pane.
func (m *Manager) ActiveFlow() string { return m.activeFlow }

// Visible reports whether a series currently displays.
func (m *Manager) Visible(key string) bool {
	return m.visible[normalizeKey(key)]
}

// =============================================================================
// SELECTION CHANGES
// =============================================================================

// ApplySelection moves to a new indicator selection and returns the
// Plan the renderer must execute.
//
// A structural rebuild happens exactly when the needed pane stack
// changes; everything else is visibility toggles. A newly added
// subplot indicator takes over its pane; removing the active one falls
// back to the first remaining selection of that class, or empties the
// pane (and with it the stack) when none remain.
func (m *Manager) ApplySelection(keys []string) Plan {
	next := normalizeSelection(keys)

	added := subtract(next, m.selection)
	newLayout := NeededLayout(next)
	rebuild := !m.layout.Equal(newLayout)

	activeTech := nextActive(m.activeTech, next, added, ClassTechnical)
	activeFlow := nextActive(m.activeFlow, next, added, ClassFlow)

	oldVisible := m.visible
	newVisible := visibleSet(next, activeTech, activeFlow)

	plan := Plan{
		Rebuild:         rebuild,
		Layout:          newLayout,
		ActiveTechnical: activeTech,
		ActiveFlow:      activeFlow,
	}
	for _, key := range next {
		if newVisible[key] && Classify(key) == ClassOverlay {
			plan.overlays = append(plan.overlays, key)
		}
	}

	if rebuild {
		plan.Carry = m.carryState(next, newVisible, activeTech, activeFlow)
	} else {
		for _, key := range next {
			if newVisible[key] && !oldVisible[key] {
				plan.Show = append(plan.Show, key)
			}
		}
		for _, key := range m.selection {
			if oldVisible[key] && !newVisible[key] {
				plan.Hide = append(plan.Hide, key)
			}
		}
	}

	m.selection = next
	m.layout = newLayout
	m.activeTech = activeTech
	m.activeFlow = activeFlow
	m.visible = newVisible

	return plan
}

// carryState snapshots what the reconstruction step needs. Cached
// series for deselected indicators stay behind in the manager; only
// the selected ones travel.
func (m *Manager) carryState(selection []string, visible map[string]bool, activeTech, activeFlow string) *SeriesState {
	state := &SeriesState{
		Symbol:          m.symbol,
		Period:          m.period,
		Keys:            append([]string(nil), selection...),
		Visible:         make(map[string]bool, len(visible)),
		Series:          make(map[string][]model.IndicatorValue),
		ActiveTechnical: activeTech,
		ActiveFlow:      activeFlow,
	}
	for key, v := range visible {
		state.Visible[key] = v
	}
	for _, key := range selection {
		if values, ok := m.series[key]; ok {
			state.Series[key] = values
		}
	}
	return state
}

// =============================================================================
// SERIES CACHE
// =============================================================================

// SetSeries caches fetched indicator data for rebuild carry-forward.
func (m *Manager) SetSeries(key string, values []model.IndicatorValue) {
	m.series[normalizeKey(key)] = values
}

// Series returns cached data for an indicator.
func (m *Manager) Series(key string) ([]model.IndicatorValue, bool) {
	values, ok := m.series[normalizeKey(key)]
	return values, ok
}

// SetInstrument records the charted symbol/period. Changing either
// invalidates every cached series: old data must not carry across to a
// different instrument. Returns true when something changed.
func (m *Manager) SetInstrument(symbol, period string) bool {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	period = strings.TrimSpace(period)
	if symbol == m.symbol && period == m.period {
		return false
	}
	m.symbol = symbol
	m.period = period
	m.series = make(map[string][]model.IndicatorValue)
	return true
}

// Instrument returns the charted symbol and period.
func (m *Manager) Instrument() (symbol, period string) {
	return m.symbol, m.period
}

// =============================================================================
// HELPERS
// =============================================================================

// nextActive picks the indicator shown in one subplot pane after a
// selection change.
func nextActive(current string, next, added []string, class IndicatorClass) string {
	// A newly added subplot indicator takes the pane.
	for _, key := range added {
		if Classify(key) == class {
			return key
		}
	}
	// Keep the current choice while it stays selected.
	if current != "" && contains(next, current) {
		return current
	}
	// Fall back to the first remaining selection of the class.
	for _, key := range next {
		if Classify(key) == class {
			return key
		}
	}
	return ""
}

// visibleSet computes which series display: overlays always, subplot
// series only while active in their pane.
func visibleSet(selection []string, activeTech, activeFlow string) map[string]bool {
	v := make(map[string]bool, len(selection))
	for _, key := range selection {
		switch Classify(key) {
		case ClassOverlay:
			v[key] = true
		case ClassTechnical:
			v[key] = key == activeTech
		case ClassFlow:
			v[key] = key == activeFlow
		}
	}
	return v
}

func normalizeKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

// normalizeSelection uppercases, trims, and dedupes preserving order.
func normalizeSelection(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		k := normalizeKey(key)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

// subtract returns members of a that are not in b, in a's order.
func subtract(a, b []string) []string {
	var out []string
	for _, key := range a {
		if !contains(b, key) {
			out = append(out, key)
		}
	}
	return out
}

func contains(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
