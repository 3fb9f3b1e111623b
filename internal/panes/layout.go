// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panes

import "strings"

// =============================================================================
// INDICATOR CLASSIFICATION
// =============================================================================

// IndicatorClass says where an indicator's series renders.
type IndicatorClass int

const (
	// ClassOverlay draws on the price pane's scale (MA5, EMA12, BOLL).
	ClassOverlay IndicatorClass = iota

	// ClassTechnical needs the technical subplot (RSI14, MACD, KDJ).
	ClassTechnical

	// ClassFlow needs the market-flow subplot (OI, FUNDING, CVD).
	ClassFlow
)

// String returns the class name for logs.
func (c IndicatorClass) String() string {
	switch c {
	case ClassOverlay:
		return "overlay"
	case ClassTechnical:
		return "technical"
	case ClassFlow:
		return "flow"
	default:
		return "unknown"
	}
}

// Classify maps an indicator key to its pane class. Unknown keys draw
// as overlays: anything price-scaled works there, and a misjudged key
// must never conjure a subplot the renderer cannot fill.
func Classify(key string) IndicatorClass {
	k := strings.ToUpper(strings.TrimSpace(key))
	switch {
	case k == "MACD", k == "KDJ",
		strings.HasPrefix(k, "RSI"),
		strings.HasPrefix(k, "WR"),
		strings.HasPrefix(k, "CCI"),
		strings.HasPrefix(k, "STOCH"),
		strings.HasPrefix(k, "ATR"):
		return ClassTechnical
	case k == "CVD", k == "NETFLOW",
		strings.HasPrefix(k, "OI"),
		strings.HasPrefix(k, "FUNDING"),
		strings.HasPrefix(k, "LIQ"):
		return ClassFlow
	default:
		return ClassOverlay
	}
}

// HasSubplot reports whether any selected indicator needs a subplot.
func HasSubplot(selection []string) bool {
	for _, key := range selection {
		if Classify(key) != ClassOverlay {
			return true
		}
	}
	return false
}

// =============================================================================
// PANE LAYOUT
// =============================================================================

// PaneKind identifies one stacked chart region.
type PaneKind string

const (
	PanePrice     PaneKind = "price"
	PaneTechnical PaneKind = "technical"
	PaneFlow      PaneKind = "flow"
)

// Layout is the structural shape of the chart surface: which panes
// exist, top to bottom. The price pane is always present.
type Layout struct {
	Panes []PaneKind
}

// NeededLayout derives the pane stack a selection requires.
func NeededLayout(selection []string) Layout {
	layout := Layout{Panes: []PaneKind{PanePrice}}
	hasTech, hasFlow := false, false
	for _, key := range selection {
		switch Classify(key) {
		case ClassTechnical:
			hasTech = true
		case ClassFlow:
			hasFlow = true
		}
	}
	if hasTech {
		layout.Panes = append(layout.Panes, PaneTechnical)
	}
	if hasFlow {
		layout.Panes = append(layout.Panes, PaneFlow)
	}
	return layout
}

// Equal reports whether two layouts have the same pane stack.
func (l Layout) Equal(other Layout) bool {
	if len(l.Panes) != len(other.Panes) {
		return false
	}
	for i := range l.Panes {
		if l.Panes[i] != other.Panes[i] {
			return false
		}
	}
	return true
}

// Has reports whether the layout contains a pane kind.
func (l Layout) Has(kind PaneKind) bool {
	for _, p := range l.Panes {
		if p == kind {
			return true
		}
	}
	return false
}
