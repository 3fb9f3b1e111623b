// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/tradedeck/internal/api"
	"github.com/jeranaias/tradedeck/internal/cache"
	"github.com/jeranaias/tradedeck/internal/export"
	"github.com/jeranaias/tradedeck/internal/model"
	"github.com/jeranaias/tradedeck/internal/stream"
	"github.com/jeranaias/tradedeck/internal/tasks"
)

// fetchTimeout bounds one background panel fetch. The poll loop and
// chat submission manage their own deadlines.
const fetchTimeout = 10 * time.Second

// klineCount is how many candles the chart requests per fetch.
const klineCount = 120

// activityFetchLimit is the activity-feed page size.
const activityFetchLimit = 50

// =============================================================================
// CHAT SUBMISSION
// =============================================================================

// newTask creates the local lifecycle mirror for one chat submission.
func (a *App) newTask(slot, text string) *tasks.Task {
	return tasks.New(slot, text, a.conversation.Mode)
}

// submitChatCmd posts the chat request and, on success, starts the
// stream consumer on the runner. Everything the closure touches is
// captured before it returns: the command runs off the update loop.
func (a *App) submitChatCmd(task *tasks.Task, text string) tea.Cmd {
	client := a.svc.Client
	runner := a.svc.Runner
	tracker := a.svc.Tracker
	logger := a.svc.Logger
	send := a.send
	localID := task.LocalID

	req := api.ChatRequest{
		Message: text,
		Mode:    a.conversation.Mode,
		Lang:    a.conversation.Lang,
	}
	if a.conversation.Adopted() {
		req.ConversationID = a.conversation.ID
	}

	pollCfg := stream.DefaultPollerConfig()
	if cfg := a.svc.Config; cfg != nil {
		if cfg.Stream.PollIntervalMs > 0 {
			pollCfg.Interval = time.Duration(cfg.Stream.PollIntervalMs) * time.Millisecond
		}
		if cfg.Stream.PollBudget > 0 {
			pollCfg.MaxPolls = cfg.Stream.PollBudget
		}
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		result, err := client.SubmitChat(ctx, req)
		if err != nil {
			tracker.MarkFailed(task, err)
			return SubmitFailedMsg{Task: task, Err: err}
		}

		// Pick the consumer by what the backend answered with: a task
		// handle means offset polling, a live body means push.
		var consumer stream.Consumer
		switch {
		case result.Handle != nil:
			task.SetID(result.Handle.TaskID)
			consumer = stream.NewPoller(client, result.Handle.TaskID, pollCfg, logger)
		case result.Stream != nil:
			consumer = stream.NewPusher(result.Stream, logger)
		default:
			err := fmt.Errorf("submission returned neither task handle nor stream")
			tracker.MarkFailed(task, err)
			return SubmitFailedMsg{Task: task, Err: err}
		}

		sink := stream.SinkFuncs{
			Snapshot: func(text string) {
				send(StreamSnapshotMsg{TaskID: localID, Text: text})
			},
			Activity: func(entry stream.Activity) {
				send(StreamActivityMsg{TaskID: localID, Entry: entry})
			},
		}
		onOutcome := func(outcome stream.Outcome) {
			send(StreamOutcomeMsg{TaskID: localID, Outcome: outcome})
		}

		if err := runner.Go(task, consumer, sink, onOutcome); err != nil {
			if result.Stream != nil {
				result.Stream.Close()
			}
			tracker.MarkFailed(task, err)
			return SubmitFailedMsg{Task: task, Err: err}
		}

		return ChatSubmittedMsg{Task: task, Handle: result.Handle}
	}
}

// =============================================================================
// ACCOUNT REFRESH
// =============================================================================

// refreshAccountCmds fetches every dashboard panel for the current
// market. Each fetch is cache-first; a hit skips the network entirely.
func (a *App) refreshAccountCmds() tea.Cmd {
	cmds := []tea.Cmd{
		a.balancesCmd(),
		a.positionsCmd(),
		a.ordersCmd(),
		a.rateLimitsCmd(),
		a.programsCmd(),
	}
	if a.svc.Config == nil || a.svc.Config.UI.ShowActivityFeed {
		cmds = append(cmds, a.activityCmd())
	}
	return tea.Batch(cmds...)
}

func (a *App) balancesCmd() tea.Cmd {
	client, store := a.svc.Client, a.svc.Cache
	market := a.market
	key := cache.BalancesKey(market)

	return func() tea.Msg {
		if store != nil {
			if v, ok := store.Get(key); ok {
				return BalancesMsg{Market: market, Balances: v.([]model.Balance)}
			}
		}
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		balances, err := client.Balances(ctx, market)
		if err == nil && store != nil {
			store.Set(key, balances, cache.TTLBalances)
		}
		return BalancesMsg{Market: market, Balances: balances, Err: err}
	}
}

func (a *App) positionsCmd() tea.Cmd {
	client, store := a.svc.Client, a.svc.Cache
	market := a.market
	key := cache.PositionsKey(market)

	return func() tea.Msg {
		if store != nil {
			if v, ok := store.Get(key); ok {
				return PositionsMsg{Market: market, Positions: v.([]model.Position)}
			}
		}
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		positions, err := client.Positions(ctx, market)
		if err == nil && store != nil {
			store.Set(key, positions, cache.TTLPositions)
		}
		return PositionsMsg{Market: market, Positions: positions, Err: err}
	}
}

func (a *App) ordersCmd() tea.Cmd {
	client, store := a.svc.Client, a.svc.Cache
	market, symbol := a.market, a.symbol
	key := cache.OrdersKey(market, symbol)

	return func() tea.Msg {
		if store != nil {
			if v, ok := store.Get(key); ok {
				return OrdersMsg{Market: market, Orders: v.([]model.Order)}
			}
		}
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		orders, err := client.OpenOrders(ctx, market, symbol)
		if err == nil && store != nil {
			store.Set(key, orders, cache.TTLOrders)
		}
		return OrdersMsg{Market: market, Orders: orders, Err: err}
	}
}

func (a *App) rateLimitsCmd() tea.Cmd {
	client, store := a.svc.Client, a.svc.Cache
	key := cache.RateLimitsKey()

	return func() tea.Msg {
		if store != nil {
			if v, ok := store.Get(key); ok {
				return RateLimitsMsg{Limits: v.([]model.RateLimit)}
			}
		}
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		limits, err := client.RateLimits(ctx)
		if err == nil && store != nil {
			store.Set(key, limits, cache.TTLRateLimits)
		}
		return RateLimitsMsg{Limits: limits, Err: err}
	}
}

func (a *App) programsCmd() tea.Cmd {
	client, store := a.svc.Client, a.svc.Cache
	key := cache.ProgramsKey()

	return func() tea.Msg {
		if store != nil {
			if v, ok := store.Get(key); ok {
				return ProgramsMsg{Programs: v.([]model.Program)}
			}
		}
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		programs, err := client.Programs(ctx)
		if err == nil && store != nil {
			store.Set(key, programs, cache.TTLPrograms)
		}
		return ProgramsMsg{Programs: programs, Err: err}
	}
}

func (a *App) activityCmd() tea.Cmd {
	client := a.svc.Client

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		events, err := client.Activity(ctx, activityFetchLimit)
		return ActivityFeedMsg{Events: events, Err: err}
	}
}

// =============================================================================
// MARKET REFRESH
// =============================================================================

// refreshMarketCmds fetches the chart candles and a REST ticker seed
// for the price board.
func (a *App) refreshMarketCmds() tea.Cmd {
	return tea.Batch(a.klinesCmd(), a.tickersCmd())
}

func (a *App) klinesCmd() tea.Cmd {
	client, store := a.svc.Client, a.svc.Cache
	params := api.KlineParams{
		Symbol:     a.symbol,
		Market:     a.market,
		Period:     a.period,
		Count:      klineCount,
		Indicators: a.panes.Selection(),
	}
	key := cache.KlineKey(params.Market, params.Symbol, params.Period, params.Count, params.Indicators)

	return func() tea.Msg {
		if store != nil {
			if v, ok := store.Get(key); ok {
				return KlinesMsg{Set: v.(*model.KlineSet)}
			}
		}
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		set, err := client.Klines(ctx, params)
		if err == nil && store != nil {
			store.Set(key, set, cache.TTLKlines)
		}
		return KlinesMsg{Set: set, Err: err}
	}
}

func (a *App) tickersCmd() tea.Cmd {
	client, store := a.svc.Client, a.svc.Cache
	market := a.market
	key := cache.TickersKey(market)

	return func() tea.Msg {
		if store != nil {
			if v, ok := store.Get(key); ok {
				return TickersMsg{Market: market, Tickers: v.([]model.Ticker)}
			}
		}
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		tickers, err := client.Tickers(ctx, market)
		if err == nil && store != nil {
			store.Set(key, tickers, cache.TTLTickers)
		}
		return TickersMsg{Market: market, Tickers: tickers, Err: err}
	}
}

// =============================================================================
// ORDERS
// =============================================================================

// placeOrderCmd submits the order ticket. A fill changes balances,
// positions, and open orders at once, so success invalidates the whole
// account key space before the follow-up refresh.
func (a *App) placeOrderCmd(ticket model.OrderTicket) tea.Cmd {
	client, store := a.svc.Client, a.svc.Cache

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		order, err := client.PlaceOrder(ctx, ticket)
		if err == nil && store != nil {
			for _, prefix := range cache.AccountPrefixes(ticket.Market) {
				store.InvalidatePrefix(prefix)
			}
		}
		return OrderPlacedMsg{Order: order, Err: err}
	}
}

// cancelOrderCmd cancels one open order.
func (a *App) cancelOrderCmd(market model.Market, orderID string) tea.Cmd {
	client, store := a.svc.Client, a.svc.Cache

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		err := client.CancelOrder(ctx, market, orderID)
		if err == nil && store != nil {
			for _, prefix := range cache.AccountPrefixes(market) {
				store.InvalidatePrefix(prefix)
			}
		}
		return OrderCanceledMsg{OrderID: orderID, Err: err}
	}
}

// =============================================================================
// PERSISTENCE
// =============================================================================

func (a *App) saveConversationCmd() tea.Cmd {
	store := a.svc.Store
	conv := a.conversation
	key := a.convKey

	return func() tea.Msg {
		if store == nil {
			return ConversationSavedMsg{Err: fmt.Errorf("conversation store unavailable")}
		}
		if len(conv.Messages) == 0 {
			return ConversationSavedMsg{Err: fmt.Errorf("nothing to save")}
		}
		savedKey, err := store.Save(key, conv)
		return ConversationSavedMsg{Key: savedKey, Err: err}
	}
}

func (a *App) openConversationCmd(index int) tea.Cmd {
	store := a.svc.Store

	return func() tea.Msg {
		if store == nil {
			return ConversationLoadedMsg{Err: fmt.Errorf("conversation store unavailable")}
		}
		metas, err := store.List()
		if err != nil {
			return ConversationLoadedMsg{Err: err}
		}
		if index < 1 || index > len(metas) {
			return ConversationLoadedMsg{Err: fmt.Errorf("no conversation #%d (have %d)", index, len(metas))}
		}
		meta := metas[index-1]
		conv, err := store.Load(meta.Key)
		if err != nil {
			return ConversationLoadedMsg{Err: err}
		}
		return ConversationLoadedMsg{Conversation: conv, Key: meta.Key}
	}
}

func (a *App) exportConversationCmd(format string) tea.Cmd {
	conv := a.conversation
	logger := a.svc.Logger
	var stateDir string
	if a.svc.Config != nil {
		stateDir, _ = a.svc.Config.ResolveStateDir()
	}

	return func() tea.Msg {
		if len(conv.Messages) == 0 {
			return ExportDoneMsg{Err: fmt.Errorf("nothing to export")}
		}
		path, err := export.WriteTranscript(conv, export.Format(format), stateDir)
		if err != nil {
			return ExportDoneMsg{Err: err}
		}
		logger.Info("transcript exported",
			zap.String("path", path),
			zap.String("format", format))
		return ExportDoneMsg{Path: path}
	}
}
