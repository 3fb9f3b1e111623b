// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable visual components for the tradedeck TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/tradedeck/internal/model"
	"github.com/jeranaias/tradedeck/internal/ui/styles"
	"github.com/jeranaias/tradedeck/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT - Bottom status bar
// =============================================================================

// Status represents the current application status.
type Status int

const (
	StatusReady Status = iota
	StatusStreaming
	StatusWaiting
	StatusSubmitting
	StatusError
	StatusIdle
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusStreaming:
		return "Streaming..."
	case StatusWaiting:
		return "Waiting..."
	case StatusSubmitting:
		return "Submitting..."
	case StatusError:
		return "Error"
	case StatusIdle:
		return "Idle"
	default:
		return "Unknown"
	}
}

// Icon returns an icon for the status.
// ACCESSIBILITY: Uses distinct shapes alongside colors for colorblind users.
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return styles.StatusIndicators.Success
	case StatusStreaming:
		return "~"
	case StatusWaiting, StatusSubmitting:
		return styles.StatusIndicators.Pending
	case StatusError:
		return styles.StatusIndicators.Error
	case StatusIdle:
		return "-"
	default:
		return "?"
	}
}

// StatusBar is the bottom status bar: active market, feed health, the
// order-entry arming state, rate limit headroom and the task status.
type StatusBar struct {
	Market        model.Market
	FeedLive      bool
	FeedConnected bool
	Armed         bool
	ArmRemaining  string
	RateHeadroom  float64
	RateUsed      int
	RateCap       int
	Status        Status
	Width         int
	ShowShortcuts bool
	theme         *styles.Theme
}

// NewStatusBar creates a new StatusBar component.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Market:        model.MarketHyperliquid,
		Status:        StatusReady,
		Width:         80,
		ShowShortcuts: true,
		RateHeadroom:  1.0,
		theme:         theme,
	}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetMarket updates the active market.
func (s *StatusBar) SetMarket(market model.Market) {
	s.Market = market
}

// SetFeed updates the live feed state.
func (s *StatusBar) SetFeed(live, connected bool) {
	s.FeedLive = live
	s.FeedConnected = connected
}

// SetArming updates the order-entry arming display.
func (s *StatusBar) SetArming(armed bool, remaining string) {
	s.Armed = armed
	s.ArmRemaining = remaining
}

// SetRateLimit updates the rate limit gauge.
func (s *StatusBar) SetRateLimit(used, cap int, headroom float64) {
	s.RateUsed = used
	s.RateCap = cap
	s.RateHeadroom = headroom
}

// SetStatus updates the current status.
func (s *StatusBar) SetStatus(status Status) {
	s.Status = status
}

// View renders the status bar.
func (s *StatusBar) View() string {
	// Choose layout based on width
	if s.Width < 60 {
		return s.viewNarrow()
	}
	if s.Width < 100 {
		return s.viewMedium()
	}
	return s.viewWide()
}

// viewNarrow renders a compact status bar for narrow terminals.
// Format: [MKT|feed] [headroom] status
func (s *StatusBar) viewNarrow() string {
	parts := []string{}

	marketChar := strings.ToUpper(string([]rune(string(s.Market))[0:1]))
	parts = append(parts, s.marketStyle().Render(marketChar))

	if s.FeedLive {
		parts = append(parts, s.feedStyle().Render(s.feedIcon()))
	}

	if s.Armed {
		parts = append(parts, s.theme.WarningStyle.Render("A"))
	}

	modeSection := "[" + strings.Join(parts, "|") + "]"

	gauge := styles.RenderHeadroomBar(8, s.RateHeadroom)

	statusText := s.statusStyle().Render(s.Status.Icon())

	separator := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" ")
	result := modeSection + separator + gauge + separator + statusText

	return s.theme.StatusBar.Width(s.Width).Render(result)
}

// viewMedium renders a medium-width status bar.
// Format: MARKET | feed | ARMED | rate gauge | Status
func (s *StatusBar) viewMedium() string {
	separator := lipgloss.NewStyle().
		Foreground(styles.Overlay).
		Render(" | ")

	parts := []string{}

	parts = append(parts, s.marketStyle().Render(s.Market.DisplayName()))

	parts = append(parts, s.feedStyle().Render(s.feedIcon()+" "+s.feedLabel()))

	if s.Armed {
		parts = append(parts, s.theme.ArmedBadge.Render("ARMED"))
	}

	rateLabel := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Render("Rate:")
	parts = append(parts, rateLabel+" "+styles.RenderHeadroomBar(10, s.RateHeadroom))

	parts = append(parts, s.statusStyle().Render(s.Status.String()))

	result := strings.Join(parts, separator)
	return s.theme.StatusBar.Width(s.Width).Render(result)
}

// viewWide renders the full status bar for wide terminals.
// Format: Hyperliquid | feed: live | ARMED 4:32 ... Rate: [####] 12/1200 ... Ready ^K cmds
func (s *StatusBar) viewWide() string {
	leftSep := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | ")

	// Left section: market, feed, arming
	leftParts := []string{}

	leftParts = append(leftParts, s.marketStyle().Render(s.Market.DisplayName()))
	leftParts = append(leftParts, s.feedStyle().Render(s.feedIcon()+" feed: "+s.feedLabel()))

	if s.Armed {
		badge := "ARMED"
		if s.ArmRemaining != "" {
			badge += " " + s.ArmRemaining
		}
		leftParts = append(leftParts, s.theme.ArmedBadge.Render(badge))
	} else {
		leftParts = append(leftParts, s.theme.DisarmedBadge.Render("disarmed"))
	}

	leftSection := strings.Join(leftParts, leftSep)

	// Center section: rate limit gauge with counts
	rateLabel := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Render("Rate: ")
	gauge := styles.RenderHeadroomBar(12, s.RateHeadroom)
	counts := ""
	if s.RateCap > 0 {
		counts = " " + s.rateCountStyle().Render(
			util.GroupedInt(int64(s.RateUsed))+"/"+util.GroupedInt(int64(s.RateCap)))
	}
	centerSection := rateLabel + gauge + counts

	// Right section: status and shortcuts
	rightParts := []string{s.statusStyle().Render(s.Status.String())}
	if s.ShowShortcuts {
		rightParts = append(rightParts, s.renderShortcuts())
	}
	rightSection := strings.Join(rightParts, " ")

	// Calculate spacing
	leftWidth := lipgloss.Width(leftSection)
	centerWidth := lipgloss.Width(centerSection)
	rightWidth := lipgloss.Width(rightSection)
	totalContent := leftWidth + centerWidth + rightWidth

	spacing := s.Width - totalContent - 4
	if spacing < 4 {
		spacing = 4
	}

	leftSpace := strings.Repeat(" ", spacing/2)
	rightSpace := strings.Repeat(" ", spacing-spacing/2)

	result := leftSection + leftSpace + centerSection + rightSpace + rightSection

	return s.theme.StatusBarWide.Width(s.Width).Render(result)
}

// ==========================================================================
// HELPER RENDER METHODS
// ==========================================================================

// renderShortcuts renders keyboard shortcut hints.
func (s *StatusBar) renderShortcuts() string {
	shortcuts := []string{
		s.theme.ShortcutKey.Render("Tab") + s.theme.ShortcutDesc.Render("views"),
		s.theme.ShortcutKey.Render("^K") + s.theme.ShortcutDesc.Render("cmds"),
		s.theme.ShortcutKey.Render("^C") + s.theme.ShortcutDesc.Render("quit"),
	}
	return strings.Join(shortcuts, " ")
}

// marketStyle returns the brand style for the active market.
func (s *StatusBar) marketStyle() lipgloss.Style {
	switch s.Market {
	case model.MarketBinance:
		return s.theme.BadgeBinance
	default:
		return s.theme.BadgeHyperliquid
	}
}

// feedStyle returns the style for the feed health indicator.
// ACCESSIBILITY: High contrast colors with bold for colorblind users.
func (s *StatusBar) feedStyle() lipgloss.Style {
	if !s.FeedLive {
		return lipgloss.NewStyle().Foreground(styles.TextMuted)
	}
	if s.FeedConnected {
		return s.theme.ConnUp
	}
	return s.theme.ConnDown
}

// feedIcon returns a shape indicator for feed health.
func (s *StatusBar) feedIcon() string {
	if !s.FeedLive {
		return styles.StatusIndicators.Pending
	}
	if s.FeedConnected {
		return styles.StatusIndicators.Active
	}
	return styles.StatusIndicators.Error
}

// feedLabel returns the feed state label.
func (s *StatusBar) feedLabel() string {
	if !s.FeedLive {
		return "polling"
	}
	if s.FeedConnected {
		return "live"
	}
	return "down"
}

// statusStyle returns the style for the current status.
// ACCESSIBILITY: Uses high contrast colors with bold for colorblind users.
func (s *StatusBar) statusStyle() lipgloss.Style {
	switch s.Status {
	case StatusReady:
		return s.theme.SuccessStyle
	case StatusStreaming, StatusWaiting:
		return s.theme.InfoStyle
	case StatusSubmitting:
		return s.theme.WarningStyle
	case StatusError:
		return s.theme.ErrorStyle
	case StatusIdle:
		return lipgloss.NewStyle().Foreground(styles.TextMuted)
	default:
		return lipgloss.NewStyle().Foreground(styles.TextMuted)
	}
}

// rateCountStyle colors the used/cap counter by pressure.
func (s *StatusBar) rateCountStyle() lipgloss.Style {
	if s.RateHeadroom < 0.1 {
		return s.theme.ErrorStyle
	}
	if s.RateHeadroom < 0.25 {
		return s.theme.WarningStyle
	}
	return lipgloss.NewStyle().Foreground(styles.TextSecondary)
}
