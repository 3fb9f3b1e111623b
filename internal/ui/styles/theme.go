// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the tradedeck TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// HEADER AND TAB STYLES
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderBrand lipgloss.Style
	Tab         lipgloss.Style
	TabActive   lipgloss.Style
	TabDivider  lipgloss.Style

	// ==========================================================================
	// PANEL STYLES
	// ==========================================================================

	Panel        lipgloss.Style
	PanelFocused lipgloss.Style
	PanelTitle   lipgloss.Style
	PanelHint    lipgloss.Style
	PanelEmpty   lipgloss.Style

	// ==========================================================================
	// TABLE STYLES
	// ==========================================================================

	TableHeader   lipgloss.Style
	TableRow      lipgloss.Style
	TableRowAlt   lipgloss.Style
	TableSelected lipgloss.Style

	// ==========================================================================
	// PRICE AND PNL STYLES
	// ==========================================================================

	PriceUp    lipgloss.Style
	PriceDown  lipgloss.Style
	PriceFlat  lipgloss.Style
	PnLGain    lipgloss.Style
	PnLLoss    lipgloss.Style
	StaleValue lipgloss.Style

	// ==========================================================================
	// ORDER STYLES
	// ==========================================================================

	SideBuy       lipgloss.Style
	SideSell      lipgloss.Style
	OrderOpen     lipgloss.Style
	OrderFilled   lipgloss.Style
	OrderCanceled lipgloss.Style
	OrderRejected lipgloss.Style

	// ==========================================================================
	// MARKET BADGE STYLES
	// ==========================================================================

	BadgeHyperliquid lipgloss.Style
	BadgeBinance     lipgloss.Style
	ConnUp           lipgloss.Style
	ConnDown         lipgloss.Style
	ArmedBadge       lipgloss.Style
	DisarmedBadge    lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLE STYLES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	SystemBubble    lipgloss.Style

	// ==========================================================================
	// ACTIVITY SIDE-CHANNEL STYLES
	// ==========================================================================

	ActivityReasoning  lipgloss.Style
	ActivityToolCall   lipgloss.Style
	ActivityToolResult lipgloss.Style
	ActivitySave       lipgloss.Style
	InterruptedBanner  lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputText        lipgloss.Style
	InputPlaceholder lipgloss.Style
	CharCount        lipgloss.Style
	CharCountWarning lipgloss.Style
	CharCountDanger  lipgloss.Style
	FieldLabel       lipgloss.Style
	FieldFocused     lipgloss.Style
	FieldError       lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar     lipgloss.Style
	StatusBarWide lipgloss.Style
	ShortcutKey   lipgloss.Style
	ShortcutDesc  lipgloss.Style

	// ==========================================================================
	// SPINNER AND LOADING STYLES
	// ==========================================================================

	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style
	ThinkingTime lipgloss.Style

	// ==========================================================================
	// CODE BLOCK STYLES
	// ==========================================================================

	CodeBlock     lipgloss.Style
	CodeLangBadge lipgloss.Style

	// ==========================================================================
	// ERROR BOX STYLES
	// ==========================================================================

	ErrorBox        lipgloss.Style
	ErrorTitle      lipgloss.Style
	ErrorMessage    lipgloss.Style
	ErrorSuggestion lipgloss.Style

	// ==========================================================================
	// TOAST STYLES
	// ==========================================================================

	ToastError   lipgloss.Style
	ToastWarning lipgloss.Style
	ToastSuccess lipgloss.Style
	ToastStatus  lipgloss.Style

	// ==========================================================================
	// CHART STYLES
	// ==========================================================================

	ChartAxis       lipgloss.Style
	ChartCandleUp   lipgloss.Style
	ChartCandleDown lipgloss.Style
	ChartVolume     lipgloss.Style
	ChartIndicator  lipgloss.Style
	ChartIndicator2 lipgloss.Style
	PaneTitle       lipgloss.Style
	PaneTitleLive   lipgloss.Style

	// ==========================================================================
	// ACTIVITY FEED STYLES
	// ==========================================================================

	FeedTime   lipgloss.Style
	FeedKind   lipgloss.Style
	FeedText   lipgloss.Style
	FeedSymbol lipgloss.Style

	// ==========================================================================
	// CONFIRMATION DIALOG STYLES
	// ==========================================================================

	ConfirmBox          lipgloss.Style
	ConfirmTitle        lipgloss.Style
	ConfirmDetail       lipgloss.Style
	ConfirmButton       lipgloss.Style
	ConfirmButtonActive lipgloss.Style

	// ==========================================================================
	// WELCOME SCREEN STYLES
	// ==========================================================================

	WelcomeBox      lipgloss.Style
	WelcomeLogo     lipgloss.Style
	WelcomeVersion  lipgloss.Style
	WelcomeInfo     lipgloss.Style
	WelcomeKey      lipgloss.Style
	WelcomePressKey lipgloss.Style

	// ==========================================================================
	// ACCESSIBILITY: Status indicator styles with shapes and high contrast
	// ==========================================================================

	// SuccessStyle - Used for success states with checkmark indicator
	SuccessStyle lipgloss.Style
	// ErrorStyle - Used for error states with X mark indicator
	ErrorStyle lipgloss.Style
	// WarningStyle - Used for warning states with warning triangle indicator
	WarningStyle lipgloss.Style
	// InfoStyle - Used for info states with info circle indicator
	InfoStyle lipgloss.Style
	// LinkStyle - Used for links with underline for visual distinction
	LinkStyle lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	// Detect terminal capabilities
	colorProfile := termenv.ColorProfile()
	hasTrueColor := colorProfile == termenv.TrueColor
	isDark := termenv.HasDarkBackground()

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: hasTrueColor,
		ColorProfile: colorProfile,
	}

	t.initStyles()
	return t
}

// NewThemeForMode creates a theme honoring an explicit "dark" or "light"
// preference from config instead of terminal detection. Any other value
// falls back to detection.
func NewThemeForMode(mode string) *Theme {
	switch mode {
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	default:
		return NewTheme()
	}

	colorProfile := termenv.ColorProfile()
	t := &Theme{
		IsDark:       mode == "dark",
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}

	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// App container
	t.App = lipgloss.NewStyle()
	t.Container = lipgloss.NewStyle().Padding(0, 1)

	// Header and tabs
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		Padding(0, 2)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.HeaderBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.Tab = lipgloss.NewStyle().
		Foreground(TextMuted).
		Padding(0, 2)

	t.TabActive = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true).
		Underline(true).
		Padding(0, 2)

	t.TabDivider = lipgloss.NewStyle().
		Foreground(Overlay)

	// Panels
	t.Panel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.PanelFocused = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(FocusRing).
		Padding(0, 1)

	t.PanelTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.PanelHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.PanelEmpty = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		Padding(1, 2)

	// Tables
	t.TableHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay)

	t.TableRow = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.TableRowAlt = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(SurfaceDim)

	t.TableSelected = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(SelectionBg).
		Bold(true)

	// Prices and PnL
	t.PriceUp = lipgloss.NewStyle().Foreground(PriceUp)
	t.PriceDown = lipgloss.NewStyle().Foreground(PriceDown)
	t.PriceFlat = lipgloss.NewStyle().Foreground(PriceFlat)

	t.PnLGain = lipgloss.NewStyle().
		Foreground(SuccessHighContrast).
		Bold(true)

	t.PnLLoss = lipgloss.NewStyle().
		Foreground(ErrorHighContrast).
		Bold(true)

	t.StaleValue = lipgloss.NewStyle().
		Foreground(TextMuted).
		Faint(true)

	// Orders
	t.SideBuy = lipgloss.NewStyle().
		Foreground(SuccessHighContrast).
		Bold(true)

	t.SideSell = lipgloss.NewStyle().
		Foreground(ErrorHighContrast).
		Bold(true)

	t.OrderOpen = lipgloss.NewStyle().Foreground(Cyan)
	t.OrderFilled = lipgloss.NewStyle().Foreground(Emerald)
	t.OrderCanceled = lipgloss.NewStyle().Foreground(TextMuted)
	t.OrderRejected = lipgloss.NewStyle().Foreground(Rose).Bold(true)

	// Market badges
	t.BadgeHyperliquid = lipgloss.NewStyle().
		Foreground(HyperliquidBrand).
		Bold(true)

	t.BadgeBinance = lipgloss.NewStyle().
		Foreground(BinanceBrand).
		Bold(true)

	t.ConnUp = lipgloss.NewStyle().
		Foreground(SuccessHighContrast).
		Bold(true)

	t.ConnDown = lipgloss.NewStyle().
		Foreground(ErrorHighContrast).
		Bold(true)

	t.ArmedBadge = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(WarningHighContrast).
		Bold(true).
		Padding(0, 1)

	t.DisarmedBadge = lipgloss.NewStyle().
		Foreground(TextMuted).
		Padding(0, 1)

	// Message bubbles
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		Background(UserBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 2).
		MarginLeft(4)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		Background(AssistantBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 2).
		MarginRight(4)

	t.SystemBubble = lipgloss.NewStyle().
		Foreground(SystemBubbleFg).
		Background(SystemBubbleBg).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(SystemBubbleBorder).
		Padding(0, 2).
		Align(lipgloss.Center)

	// Activity side-channel
	t.ActivityReasoning = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		PaddingLeft(2)

	t.ActivityToolCall = lipgloss.NewStyle().
		Foreground(Cyan).
		PaddingLeft(2)

	t.ActivityToolResult = lipgloss.NewStyle().
		Foreground(TextSecondary).
		PaddingLeft(2)

	t.ActivitySave = lipgloss.NewStyle().
		Foreground(Amber).
		PaddingLeft(2)

	t.InterruptedBanner = lipgloss.NewStyle().
		Foreground(SystemBubbleFg).
		Background(SystemBubbleBg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Amber).
		PaddingLeft(1)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.InputText = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.CharCount = lipgloss.NewStyle().
		Foreground(TextMuted).
		Align(lipgloss.Right)

	t.CharCountWarning = lipgloss.NewStyle().
		Foreground(Amber).
		Align(lipgloss.Right)

	t.CharCountDanger = lipgloss.NewStyle().
		Foreground(Rose).
		Align(lipgloss.Right)

	t.FieldLabel = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.FieldFocused = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(FocusRing)

	t.FieldError = lipgloss.NewStyle().
		Foreground(Rose)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.StatusBarWide = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Spinner and loading
	t.Spinner = lipgloss.NewStyle().
		Foreground(Purple)

	t.ThinkingText = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.ThinkingTime = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Code blocks
	t.CodeBlock = lipgloss.NewStyle().
		Background(SurfaceBright).
		Foreground(TextPrimary).
		Padding(0, 1)

	t.CodeLangBadge = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Purple).
		Padding(0, 1).
		Bold(true)

	// Error boxes
	t.ErrorBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(0, 2)

	t.ErrorTitle = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.ErrorMessage = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.ErrorSuggestion = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Toasts
	t.ToastError = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(ErrorHighContrast).
		Bold(true).
		Padding(0, 1)

	t.ToastWarning = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(WarningHighContrast).
		Bold(true).
		Padding(0, 1)

	t.ToastSuccess = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(SuccessHighContrast).
		Bold(true).
		Padding(0, 1)

	t.ToastStatus = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(InfoHighContrast).
		Padding(0, 1)

	// Charts
	t.ChartAxis = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.ChartCandleUp = lipgloss.NewStyle().
		Foreground(PriceUp)

	t.ChartCandleDown = lipgloss.NewStyle().
		Foreground(PriceDown)

	t.ChartVolume = lipgloss.NewStyle().
		Foreground(OverlayDim)

	t.ChartIndicator = lipgloss.NewStyle().
		Foreground(Amber)

	t.ChartIndicator2 = lipgloss.NewStyle().
		Foreground(Purple)

	t.PaneTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.PaneTitleLive = lipgloss.NewStyle().
		Bold(true).
		Foreground(Emerald).
		Background(SurfaceDim).
		Padding(0, 1)

	// Activity feed
	t.FeedTime = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.FeedKind = lipgloss.NewStyle().
		Foreground(Cyan)

	t.FeedText = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.FeedSymbol = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	// Confirmation dialogs
	t.ConfirmBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(Amber).
		Padding(1, 3)

	t.ConfirmTitle = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.ConfirmDetail = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.ConfirmButton = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 2)

	t.ConfirmButtonActive = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Cyan).
		Bold(true).
		Padding(0, 2)

	// Welcome screen
	t.WelcomeBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(1, 4).
		Align(lipgloss.Center)

	t.WelcomeLogo = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.WelcomeVersion = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.WelcomeInfo = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.WelcomeKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.WelcomePressKey = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// ACCESSIBILITY: High contrast status styles with bold
	t.SuccessStyle = lipgloss.NewStyle().
		Foreground(SuccessHighContrast).
		Bold(true)

	t.ErrorStyle = lipgloss.NewStyle().
		Foreground(ErrorHighContrast).
		Bold(true)

	t.WarningStyle = lipgloss.NewStyle().
		Foreground(WarningHighContrast).
		Bold(true)

	t.InfoStyle = lipgloss.NewStyle().
		Foreground(InfoHighContrast).
		Bold(true)

	t.LinkStyle = lipgloss.NewStyle().
		Foreground(LinkColor).
		Underline(true)
}

// SetSize records the current terminal dimensions on the theme.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// StyleForSide returns the style for an order side string ("buy"/"sell").
func (t *Theme) StyleForSide(side string) lipgloss.Style {
	if side == "sell" {
		return t.SideSell
	}
	return t.SideBuy
}

// StyleForDelta returns the directional style for a price change.
func (t *Theme) StyleForDelta(delta int) lipgloss.Style {
	switch {
	case delta > 0:
		return t.PriceUp
	case delta < 0:
		return t.PriceDown
	default:
		return t.PriceFlat
	}
}
