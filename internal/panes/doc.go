// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package panes decides how the chart surface reacts to indicator
// selection changes.
//
// The surface stacks up to three panes: price+volume, a technical
// subplot (RSI, MACD, ...), and a market-flow subplot (open interest,
// funding, ...). Changing the selected indicators either toggles
// series visibility in place or forces a structural rebuild of the
// pane stack. The rule: a rebuild happens exactly when the set of
// needed panes changes; with one subplot class in play that reduces
// to "has a subplot indicator" flipping.
//
// A rebuild does not refetch: the Plan carries a SeriesState with the
// cached series, visibility flags, and active subplot indicators, and
// the renderer re-applies it to the new structure.
//
// # Usage
//
//	m := panes.NewManager()
//	plan := m.ApplySelection([]string{"MA5", "RSI14"})
//	if plan.Rebuild {
//		rebuildSurface(plan.Layout, plan.Carry)
//	} else {
//		show(plan.Show)
//		hide(plan.Hide)
//	}
package panes
