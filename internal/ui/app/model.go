// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/tradedeck/internal/api"
	"github.com/jeranaias/tradedeck/internal/cache"
	"github.com/jeranaias/tradedeck/internal/commands"
	"github.com/jeranaias/tradedeck/internal/config"
	"github.com/jeranaias/tradedeck/internal/market"
	"github.com/jeranaias/tradedeck/internal/model"
	"github.com/jeranaias/tradedeck/internal/panes"
	"github.com/jeranaias/tradedeck/internal/security"
	"github.com/jeranaias/tradedeck/internal/storage"
	"github.com/jeranaias/tradedeck/internal/tasks"
	"github.com/jeranaias/tradedeck/internal/ui/components"
	"github.com/jeranaias/tradedeck/internal/ui/styles"
)

// =============================================================================
// VIEWS
// =============================================================================

// View identifies one of the three top-level screens.
type View int

const (
	ViewDashboard View = iota
	ViewChart
	ViewAssistant
)

// String returns the view name for the tab bar.
func (v View) String() string {
	switch v {
	case ViewDashboard:
		return "Dashboard"
	case ViewChart:
		return "Chart"
	case ViewAssistant:
		return "Assistant"
	default:
		return "Unknown"
	}
}

// =============================================================================
// SERVICES
// =============================================================================

// Services bundles the shared backends the app renders. main.go builds
// them once and hands them over; the app owns none of their lifecycles
// except the conversation it is editing.
type Services struct {
	Config    *config.Config
	Logger    *zap.Logger
	Client    *api.Client
	Cache     *cache.Manager
	Board     *market.Board
	Market    *market.Service
	Tracker   *tasks.Tracker
	Runner    *tasks.Runner
	Store     *storage.ConversationStore
	Activity  *storage.ActivityLog
	Interlock *security.Interlock
}

// =============================================================================
// APP MODEL
// =============================================================================

// App is the root Bubble Tea model.
type App struct {
	svc   Services
	theme *styles.Theme
	keys  KeyMap

	// send pushes messages from consumer goroutines into the program's
	// update loop. Wired to tea.Program.Send after construction.
	send func(tea.Msg)

	view   View
	width  int
	height int

	// Active market context
	market model.Market
	symbol string
	period string

	// Dashboard panels
	balances   *components.BalancesPanel
	positions  *components.PositionsPanel
	orders     *components.OrdersPanel
	rateLimits *components.RateLimitsPanel
	programs   *components.ProgramsPanel
	feed       *components.ActivityFeed

	// Chart
	chart *components.Chart
	panes *panes.Manager

	// Chrome
	ticker    *components.TickerStrip
	statusBar *components.StatusBar
	toasts    *components.ToastManager
	spinner   components.Spinner

	// Order ticket
	orderForm  *components.OrderForm
	armPrompt  *components.CodePrompt
	formOpen   bool
	armOpen    bool
	confirming bool

	// Assistant
	conversation *model.Conversation
	convKey      string
	input        textinput.Model
	transcript   viewport.Model
	registry     *commands.Registry
	parser       *commands.Parser
	completer    *commands.Completer
	completions  *commands.CompletionState
	renderer     *markdownRenderer

	// In-flight task state. currentTaskID guards stream messages: the
	// sink stamps every send with the task's local ID, and anything
	// else is a stray from an abandoned consumer.
	currentTaskID   string
	streamingMsgID  string
	lastSnapshotLen int
	pausedTask      *tasks.Task

	// Transient overlay text (help, conversation list)
	overlay string

	lastRates []model.RateLimit
}

// New builds the root model. The caller must call SetSend with the
// program's Send before any chat submission.
func New(theme *styles.Theme, svc Services) *App {
	if theme == nil {
		theme = styles.NewTheme()
	}
	if svc.Logger == nil {
		svc.Logger = zap.NewNop()
	}

	cfg := svc.Config
	input := textinput.New()
	input.Placeholder = "Message the assistant, or / for commands"
	input.CharLimit = 4000
	input.Focus()

	cmdCtx := &commands.Context{Config: cfg, Store: svc.Store}
	registry := commands.NewRegistry()

	a := &App{
		svc:   svc,
		theme: theme,
		keys:  DefaultKeyMap(),
		send:  func(tea.Msg) {},

		view:   ViewDashboard,
		market: cfg.Markets.DefaultMarket(),
		symbol: firstSymbol(cfg.Markets.Symbols),
		period: cfg.UI.ChartPeriod,

		balances:   components.NewBalancesPanel(theme),
		positions:  components.NewPositionsPanel(theme),
		orders:     components.NewOrdersPanel(theme),
		rateLimits: components.NewRateLimitsPanel(theme),
		programs:   components.NewProgramsPanel(theme),
		feed:       components.NewActivityFeed(theme),

		chart: components.NewChart(theme),
		panes: panes.NewManager(),

		ticker:    components.NewTickerStrip(theme),
		statusBar: components.NewStatusBar(theme),
		toasts:    components.NewToastManager(),
		spinner:   components.NewTaskSpinner(),

		orderForm: components.NewOrderForm(theme),
		armPrompt: components.NewCodePrompt(theme),

		conversation: model.NewConversation("analysis", "en"),
		input:        input,
		transcript:   viewport.New(0, 0),
		registry:     registry,
		parser:       commands.NewParser(registry),
		completer:    commands.NewCompleter(registry, cmdCtx),
		completions:  commands.NewCompletionState(),
		renderer:     newMarkdownRenderer(),
	}

	a.panes.SetInstrument(a.symbol, a.period)
	a.ticker.SetSymbols(cfg.Markets.Symbols)
	a.orderForm.SetMarket(a.market)
	a.orderForm.SetSymbol(a.symbol)
	a.statusBar.SetMarket(a.market)
	a.statusBar.SetStatus(components.StatusReady)
	return a
}

// SetSend wires the program's Send function for consumer goroutines.
func (a *App) SetSend(send func(tea.Msg)) {
	if send != nil {
		a.send = send
	}
}

// Conversation exposes the current conversation (used by save/export).
func (a *App) Conversation() *model.Conversation {
	return a.conversation
}

// =============================================================================
// INIT
// =============================================================================

// Init starts the refresh tickers and the first data fetches.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		a.refreshAccountCmds(),
		a.refreshMarketCmds(),
		a.accountTick(),
		a.marketTick(),
		a.boardTick(),
		components.ToastTickCmd(),
		textinput.Blink,
	}
	return tea.Batch(cmds...)
}

// accountTick schedules the next account refresh.
func (a *App) accountTick() tea.Cmd {
	return tea.Tick(a.svc.Config.UI.RefreshAccount(), func(t time.Time) tea.Msg {
		return AccountTickMsg(t)
	})
}

// marketTick schedules the next kline/ticker refresh.
func (a *App) marketTick() tea.Cmd {
	return tea.Tick(a.svc.Config.UI.RefreshMarket(), func(t time.Time) tea.Msg {
		return MarketTickMsg(t)
	})
}

// boardTick schedules the next live-board snapshot.
func (a *App) boardTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return BoardTickMsg(t)
	})
}

func firstSymbol(symbols []string) string {
	if len(symbols) > 0 {
		return symbols[0]
	}
	return "BTC"
}
