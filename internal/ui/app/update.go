// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/tradedeck/internal/commands"
	"github.com/jeranaias/tradedeck/internal/model"
	"github.com/jeranaias/tradedeck/internal/stream"
	"github.com/jeranaias/tradedeck/internal/ui/components"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update is the single mutation point for all UI state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	// --- Layout -------------------------------------------------------

	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	// --- Chrome ticks -------------------------------------------------

	case components.ToastTickMsg:
		a.toasts.TickToasts()
		return a, components.ToastTickCmd()

	// --- Data refresh -------------------------------------------------

	case AccountTickMsg:
		return a, tea.Batch(a.refreshAccountCmds(), a.accountTick())

	case MarketTickMsg:
		return a, tea.Batch(a.refreshMarketCmds(), a.marketTick())

	case BoardTickMsg:
		a.applyBoard()
		return a, a.boardTick()

	case BalancesMsg:
		if msg.Err != nil {
			a.noteRefreshError("balances", msg.Err)
		} else if msg.Market == a.market {
			a.balances.SetBalances(msg.Balances)
		}
		return a, nil

	case PositionsMsg:
		if msg.Err != nil {
			a.noteRefreshError("positions", msg.Err)
		} else if msg.Market == a.market {
			a.positions.SetPositions(msg.Positions)
		}
		return a, nil

	case OrdersMsg:
		if msg.Err != nil {
			a.noteRefreshError("orders", msg.Err)
		} else if msg.Market == a.market {
			a.orders.SetOrders(msg.Orders)
		}
		return a, nil

	case RateLimitsMsg:
		if msg.Err != nil {
			a.noteRefreshError("rate limits", msg.Err)
		} else {
			a.lastRates = msg.Limits
			a.rateLimits.SetLimits(msg.Limits)
			a.applyRateHeadroom(msg.Limits)
		}
		return a, nil

	case ProgramsMsg:
		if msg.Err != nil {
			a.noteRefreshError("programs", msg.Err)
		} else {
			a.programs.SetPrograms(msg.Programs)
		}
		return a, nil

	case ActivityFeedMsg:
		if msg.Err != nil {
			a.noteRefreshError("activity", msg.Err)
		} else {
			a.feed.SetEvents(msg.Events)
			a.mirrorActivity(msg.Events)
		}
		return a, nil

	case KlinesMsg:
		if msg.Err != nil {
			a.noteRefreshError("klines", msg.Err)
		} else {
			a.applyKlines(msg.Set)
		}
		return a, nil

	case TickersMsg:
		if msg.Err == nil && a.svc.Board != nil {
			a.svc.Board.Seed(msg.Tickers)
		}
		return a, nil

	// --- Stream -------------------------------------------------------

	case ChatSubmittedMsg:
		return a.handleChatSubmitted(msg)

	case SubmitFailedMsg:
		return a.handleSubmitFailed(msg)

	case StreamSnapshotMsg:
		return a.handleStreamSnapshot(msg)

	case StreamActivityMsg:
		return a.handleStreamActivity(msg)

	case StreamOutcomeMsg:
		return a.handleStreamOutcome(msg)

	// --- Orders -------------------------------------------------------

	case OrderPlacedMsg:
		if msg.Err != nil {
			a.toasts.AddError(fmt.Sprintf("Order rejected: %v", msg.Err))
		} else {
			a.toasts.AddSuccess(fmt.Sprintf("Order accepted: %s", msg.Order.ID))
			a.orderForm.Reset()
			a.formOpen = false
		}
		return a, a.refreshAccountCmds()

	case OrderCanceledMsg:
		if msg.Err != nil {
			a.toasts.AddError(fmt.Sprintf("Cancel failed: %v", msg.Err))
		} else {
			a.toasts.AddStatus("Order canceled")
		}
		return a, a.refreshAccountCmds()

	// --- Persistence --------------------------------------------------

	case ConversationSavedMsg:
		if msg.Err != nil {
			a.toasts.AddError(fmt.Sprintf("Save failed: %v", msg.Err))
		} else {
			a.convKey = msg.Key
			a.toasts.AddSuccess("Conversation saved")
		}
		return a, nil

	case ConversationLoadedMsg:
		if msg.Err != nil {
			a.toasts.AddError(fmt.Sprintf("Open failed: %v", msg.Err))
			return a, nil
		}
		a.conversation = msg.Conversation
		a.convKey = msg.Key
		a.resetStreamState()
		a.renderTranscript()
		a.view = ViewAssistant
		return a, nil

	case ExportDoneMsg:
		if msg.Err != nil {
			a.toasts.AddError(fmt.Sprintf("Export failed: %v", msg.Err))
		} else {
			a.toasts.AddSuccess("Exported to " + msg.Path)
		}
		return a, nil

	// --- Config -------------------------------------------------------

	case ConfigReloadedMsg:
		if msg.Config != nil {
			a.svc.Config = msg.Config
			a.toasts.AddStatus("Configuration reloaded")
		}
		return a, nil

	// --- Slash commands -----------------------------------------------

	case commands.StatusMsg:
		a.toasts.AddStatus(msg.Text)
		return a, nil

	case commands.ErrorMsg:
		a.toasts.AddError(msg.Err.Error())
		return a, nil

	case commands.HelpMsg:
		a.overlay = msg.Text
		return a, nil

	case commands.QuitMsg:
		return a, tea.Quit

	case commands.SwitchViewMsg:
		a.switchViewByName(msg.View)
		return a, nil

	case commands.NewConversationMsg:
		a.startNewConversation()
		return a, nil

	case commands.SaveConversationMsg:
		return a, a.saveConversationCmd()

	case commands.OpenConversationMsg:
		return a, a.openConversationCmd(msg.Index)

	case commands.ListConversationsMsg:
		a.overlay = msg.Listing
		return a, nil

	case commands.ClearConversationMsg:
		a.startNewConversation()
		a.toasts.AddStatus("Transcript cleared")
		return a, nil

	case commands.ExportConversationMsg:
		return a, a.exportConversationCmd(msg.Format)

	case commands.ContinueMsg:
		return a.handleContinue()

	case commands.CancelTaskMsg:
		a.cancelCurrentTask()
		return a, nil

	case commands.SetModeMsg:
		a.conversation.Mode = msg.Mode
		a.toasts.AddStatus("Mode: " + msg.Mode)
		return a, nil

	case commands.SetLangMsg:
		a.conversation.Lang = msg.Lang
		a.toasts.AddStatus("Language: " + msg.Lang)
		return a, nil

	case commands.SetMarketMsg:
		return a.handleSetMarket(msg.Market)

	case commands.SetSymbolMsg:
		return a.handleSetSymbol(msg.Symbol)

	case commands.SetPeriodMsg:
		return a.handleSetPeriod(msg.Period)

	case commands.ToggleIndicatorMsg:
		return a.handleToggleIndicator(msg.Key)

	case commands.ArmMsg:
		a.applyArmCode(msg.Code)
		return a, nil

	case commands.DisarmMsg:
		if a.svc.Interlock != nil {
			a.svc.Interlock.Disarm()
		}
		a.statusBar.SetArming(false, "")
		a.toasts.AddStatus("Order entry locked")
		return a, nil
	}

	// Everything else feeds the animated components.
	var cmd tea.Cmd
	a.spinner, cmd = a.spinner.Update(msg)
	return a, cmd
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Ctrl+C always quits, even mid-stream; the consumer is bounded by
	// its own budget and its sends will be dropped by the task guard.
	if msg.String() == "ctrl+c" || key.Matches(msg, a.keys.Quit) {
		return a, tea.Quit
	}

	// A visible overlay swallows the next keypress.
	if a.overlay != "" {
		a.overlay = ""
		return a, nil
	}

	if a.armOpen {
		return a.handleArmPromptKey(msg)
	}
	if a.formOpen {
		return a.handleOrderFormKey(msg)
	}

	switch {
	case key.Matches(msg, a.keys.Dashboard):
		a.view = ViewDashboard
		return a, nil
	case key.Matches(msg, a.keys.Chart):
		a.view = ViewChart
		return a, nil
	case key.Matches(msg, a.keys.Assistant):
		a.view = ViewAssistant
		return a, nil
	case key.Matches(msg, a.keys.Help):
		a.overlay = a.registry.HelpText()
		return a, nil
	case key.Matches(msg, a.keys.Market):
		return a.handleSetMarket(a.otherMarket())
	case key.Matches(msg, a.keys.OrderForm):
		if a.view != ViewAssistant {
			a.formOpen = true
			a.orderForm.Focus()
		}
		return a, nil
	}

	switch a.view {
	case ViewAssistant:
		return a.handleAssistantKey(msg)
	case ViewDashboard:
		return a.handleDashboardKey(msg)
	case ViewChart:
		return a.handleChartKey(msg)
	}
	return a, nil
}

func (a *App) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "J":
		a.orders.MoveCursor(1)
		return a, nil
	case "K":
		a.orders.MoveCursor(-1)
		return a, nil
	case "x":
		ord, ok := a.orders.Selected()
		if !ok {
			a.toasts.AddStatus("No order selected")
			return a, nil
		}
		a.toasts.AddStatus("Canceling " + ord.ID)
		return a, a.cancelOrderCmd(a.market, ord.ID)
	}

	switch {
	case key.Matches(msg, a.keys.NextView):
		a.view = ViewChart
	case key.Matches(msg, a.keys.Up):
		a.positions.MoveCursor(-1)
	case key.Matches(msg, a.keys.Down):
		a.positions.MoveCursor(1)
	case key.Matches(msg, a.keys.PageUp):
		a.feed.ScrollUp(5)
	case key.Matches(msg, a.keys.PageDown):
		a.feed.ScrollDown(5)
	}
	return a, nil
}

func (a *App) handleChartKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.NextView):
		a.view = ViewAssistant
	}
	return a, nil
}

func (a *App) handleAssistantKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Complete):
		a.cycleCompletion()
		return a, nil

	case key.Matches(msg, a.keys.Submit):
		return a.submitInput()

	case key.Matches(msg, a.keys.Cancel):
		if a.currentTaskID != "" {
			a.cancelCurrentTask()
		} else {
			a.input.Reset()
			a.completions.Clear()
		}
		return a, nil

	case key.Matches(msg, a.keys.PageUp):
		a.transcript.LineUp(5)
		return a, nil

	case key.Matches(msg, a.keys.PageDown):
		a.transcript.LineDown(5)
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	a.refreshCompletions()
	return a, cmd
}

func (a *App) handleOrderFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.formOpen = false
		a.orderForm.Blur()
		return a, nil
	case "enter":
		return a.submitOrderForm()
	}
	return a, a.orderForm.Update(msg)
}

func (a *App) handleArmPromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.armOpen = false
		a.armPrompt.Blur()
		return a, nil
	case "enter":
		code := strings.TrimSpace(a.armPrompt.Value())
		a.armOpen = false
		a.armPrompt.Reset()
		a.armPrompt.Blur()
		a.applyArmCode(code)
		return a, nil
	}
	return a, a.armPrompt.Update(msg)
}

// =============================================================================
// ASSISTANT INPUT
// =============================================================================

// submitInput routes the input line: slash commands execute, anything
// else becomes a chat submission.
func (a *App) submitInput() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(a.input.Value())
	if text == "" {
		return a, nil
	}
	a.completions.Clear()

	if commands.IsCommand(text) {
		result := a.parser.Parse(text)
		if result.Command == nil {
			a.toasts.AddError("Unknown command: " + result.CommandName)
			return a, nil
		}
		a.input.Reset()
		ctx := &commands.Context{Config: a.svc.Config, Store: a.svc.Store}
		return a, result.Command.Handler(ctx, result.Args)
	}

	return a.sendChat(text, false)
}

// sendChat starts one task on the current conversation slot.
func (a *App) sendChat(text string, resume bool) (tea.Model, tea.Cmd) {
	if a.svc.Tracker == nil || a.svc.Runner == nil || a.svc.Client == nil {
		a.toasts.AddError("Assistant backend not configured")
		return a, nil
	}

	slot := a.conversationSlot()
	task := a.newTask(slot, text)

	var regErr error
	if resume && a.pausedTask != nil {
		task = a.pausedTask
		regErr = a.svc.Tracker.Resume(task)
	} else {
		regErr = a.svc.Tracker.Begin(task)
	}
	if regErr != nil {
		a.toasts.AddWarning("Still answering; wait or /cancel")
		return a, nil
	}

	if !resume {
		a.conversation.AddUserMessage(text)
	}
	streaming := a.conversation.StartAssistantMessage()
	a.streamingMsgID = streaming.ID
	a.currentTaskID = task.LocalID
	a.lastSnapshotLen = 0
	a.pausedTask = nil
	a.input.Reset()
	a.statusBar.SetStatus(components.StatusSubmitting)
	a.renderTranscript()

	return a, tea.Batch(a.spinner.Start(), a.submitChatCmd(task, text))
}

// handleContinue resubmits an interrupted conversation.
func (a *App) handleContinue() (tea.Model, tea.Cmd) {
	if a.pausedTask == nil {
		a.toasts.AddStatus("Nothing to continue")
		return a, nil
	}
	if !a.conversation.Adopted() {
		// Without a backend conversation ID the continue request cannot
		// address the paused answer.
		a.toasts.AddError("Cannot continue: conversation has no backend identity")
		return a, nil
	}
	return a.sendChat("continue", true)
}

// cancelCurrentTask abandons the in-flight task. The consumer's context
// is canceled; its flush arrives as a stray and is dropped by the guard.
func (a *App) cancelCurrentTask() {
	if a.currentTaskID == "" {
		return
	}
	if a.svc.Tracker != nil {
		a.svc.Tracker.Cancel(a.currentTaskID)
	}
	if msg := a.conversation.MessageByID(a.streamingMsgID); msg != nil {
		msg.Finalize("")
	}
	a.resetStreamState()
	a.statusBar.SetStatus(components.StatusReady)
	a.toasts.AddStatus("Answer abandoned")
	a.renderTranscript()
}

// =============================================================================
// STREAM MESSAGE HANDLERS
// =============================================================================

// currentTask reports whether a stream message belongs to the task the
// UI is showing. Strays from abandoned consumers fail this check.
func (a *App) currentTask(taskID string) bool {
	return taskID != "" && taskID == a.currentTaskID
}

func (a *App) handleChatSubmitted(msg ChatSubmittedMsg) (tea.Model, tea.Cmd) {
	if !a.currentTask(msg.Task.LocalID) {
		return a, nil
	}
	a.statusBar.SetStatus(components.StatusStreaming)
	return a, nil
}

func (a *App) handleSubmitFailed(msg SubmitFailedMsg) (tea.Model, tea.Cmd) {
	if !a.currentTask(msg.Task.LocalID) {
		return a, nil
	}
	if m := a.conversation.MessageByID(a.streamingMsgID); m != nil {
		m.FinalizeError(fmt.Sprintf("Could not reach the assistant: %v", msg.Err))
	}
	a.resetStreamState()
	a.spinner.Stop()
	a.statusBar.SetStatus(components.StatusError)
	a.toasts.AddError(fmt.Sprintf("Submission failed: %v", msg.Err))
	a.renderTranscript()
	return a, nil
}

func (a *App) handleStreamSnapshot(msg StreamSnapshotMsg) (tea.Model, tea.Cmd) {
	if !a.currentTask(msg.TaskID) {
		return a, nil
	}
	a.statusBar.SetStatus(components.StatusStreaming)
	if m := a.conversation.MessageByID(a.streamingMsgID); m != nil {
		// Snapshots are monotonic; append only the unseen tail.
		if len(msg.Text) > a.lastSnapshotLen {
			m.AppendChunk(msg.Text[a.lastSnapshotLen:])
			a.lastSnapshotLen = len(msg.Text)
		}
	}
	a.renderTranscript()
	return a, nil
}

func (a *App) handleStreamActivity(msg StreamActivityMsg) (tea.Model, tea.Cmd) {
	if !a.currentTask(msg.TaskID) {
		return a, nil
	}
	if m := a.conversation.MessageByID(a.streamingMsgID); m != nil {
		m.AddActivity(model.ActivityKind(msg.Entry.Kind), msg.Entry.Text)
	}
	a.renderTranscript()
	return a, nil
}

func (a *App) handleStreamOutcome(msg StreamOutcomeMsg) (tea.Model, tea.Cmd) {
	if !a.currentTask(msg.TaskID) {
		return a, nil
	}

	m := a.conversation.MessageByID(a.streamingMsgID)
	outcome := msg.Outcome

	switch outcome.Kind {
	case stream.OutcomeDone:
		if m != nil {
			m.Finalize(outcome.Text)
		}
		// Identity adoption happens only here, never on error paths.
		if outcome.ConversationID != "" {
			a.conversation.Adopt(outcome.ConversationID)
		}
		a.statusBar.SetStatus(components.StatusReady)

	case stream.OutcomeInterrupted:
		if m != nil {
			if len(outcome.Text) > a.lastSnapshotLen {
				m.AppendChunk(outcome.Text[a.lastSnapshotLen:])
			}
			m.FinalizeInterrupted(outcome.Round)
		}
		a.conversation.RecordRound(outcome.Round)
		if a.svc.Tracker != nil {
			a.pausedTask = a.svc.Tracker.Get(msg.TaskID)
		}
		a.statusBar.SetStatus(components.StatusReady)
		a.toasts.AddStatus(fmt.Sprintf("Paused at round %d; /continue to resume", outcome.Round))

	case stream.OutcomeError:
		if m != nil {
			m.FinalizeError(outcome.Text)
		}
		a.statusBar.SetStatus(components.StatusError)
		a.toasts.AddError("Assistant error: " + outcome.Text)

	case stream.OutcomeFlushed:
		// Partial output is preserved as the final message. A truncation
		// is logged, not surfaced; a transport error gets a toast.
		if m != nil {
			m.Finalize(outcome.Text)
		}
		if outcome.Err != nil {
			a.toasts.AddWarning(fmt.Sprintf("Stream interrupted: %v", outcome.Err))
			a.statusBar.SetStatus(components.StatusError)
		} else {
			a.statusBar.SetStatus(components.StatusReady)
		}
		if outcome.Truncated {
			a.svc.Logger.Warn("poll budget exhausted, answer truncated",
				zap.String("task_id", msg.TaskID),
				zap.Int("bytes", len(outcome.Text)))
		}
	}

	a.resetStreamState()
	a.spinner.Stop()
	a.renderTranscript()
	return a, nil
}

// resetStreamState clears the per-task fields after a terminal event.
func (a *App) resetStreamState() {
	a.currentTaskID = ""
	a.streamingMsgID = ""
	a.lastSnapshotLen = 0
}

// conversationSlot keys the single-flight guard. Before adoption the
// local storage key stands in for the backend identity.
func (a *App) conversationSlot() string {
	if a.conversation.Adopted() {
		return a.conversation.ID
	}
	if a.convKey == "" {
		a.convKey = "local_" + a.conversation.CreatedAt.Format("20060102150405")
	}
	return a.convKey
}

// =============================================================================
// MARKET / CHART STATE
// =============================================================================

func (a *App) handleSetMarket(name string) (tea.Model, tea.Cmd) {
	mkt, err := model.ParseMarket(name)
	if err != nil {
		a.toasts.AddError(err.Error())
		return a, nil
	}
	if mkt == a.market {
		return a, nil
	}
	a.market = mkt
	a.statusBar.SetMarket(mkt)
	a.orderForm.SetMarket(mkt)
	a.toasts.AddStatus("Market: " + mkt.DisplayName())
	return a, tea.Batch(a.refreshAccountCmds(), a.refreshMarketCmds())
}

func (a *App) handleSetSymbol(symbol string) (tea.Model, tea.Cmd) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" || symbol == a.symbol {
		return a, nil
	}
	a.symbol = symbol
	a.orderForm.SetSymbol(symbol)
	// An instrument change invalidates every cached series.
	a.panes.SetInstrument(symbol, a.period)
	return a, a.klinesCmd()
}

func (a *App) handleSetPeriod(period string) (tea.Model, tea.Cmd) {
	if period == a.period {
		return a, nil
	}
	a.period = period
	a.panes.SetInstrument(a.symbol, period)
	return a, a.klinesCmd()
}

// handleToggleIndicator flips one indicator and applies the pane plan.
// A structural rebuild re-applies the carried series; a visibility
// toggle leaves the chart surface standing.
func (a *App) handleToggleIndicator(key string) (tea.Model, tea.Cmd) {
	selection := a.panes.Selection()
	next := make([]string, 0, len(selection)+1)
	removed := false
	for _, k := range selection {
		if strings.EqualFold(k, key) {
			removed = true
			continue
		}
		next = append(next, k)
	}
	if !removed {
		next = append(next, key)
	}

	plan := a.panes.ApplySelection(next)
	a.applyPanePlan(plan)

	if removed {
		a.toasts.AddStatus("Indicator off: " + key)
		return a, nil
	}
	a.toasts.AddStatus("Indicator on: " + key)
	// New indicator: fetch its series alongside the candles.
	return a, a.klinesCmd()
}

// applyPanePlan pushes a pane plan into the chart component.
func (a *App) applyPanePlan(plan interface{ OverlayKeys() []string }) {
	a.chart.SetOverlays(plan.OverlayKeys())
}

// applyKlines lands a kline fetch in the chart and the pane manager.
func (a *App) applyKlines(set *model.KlineSet) {
	if set == nil || set.Symbol != a.symbol || set.Period != a.period {
		// Stale fetch from before a symbol/period switch.
		return
	}
	a.chart.SetKlines(set)
	for name, series := range set.Indicators {
		a.panes.SetSeries(name, series)
	}
	a.syncChartOverlays()
}

// syncChartOverlays narrows the chart's overlay set to visible ones.
func (a *App) syncChartOverlays() {
	var visible []string
	for _, key := range a.panes.Selection() {
		if a.panes.Visible(key) {
			visible = append(visible, key)
		}
	}
	a.chart.SetOverlays(visible)
}

func (a *App) otherMarket() string {
	if a.market == model.MarketHyperliquid {
		return string(model.MarketBinance)
	}
	return string(model.MarketHyperliquid)
}

// =============================================================================
// ORDER TICKET
// =============================================================================

func (a *App) submitOrderForm() (tea.Model, tea.Cmd) {
	ticket, err := a.orderForm.Ticket()
	if err != nil {
		a.toasts.AddError(err.Error())
		return a, nil
	}

	// The interlock gates submission, not editing. Unenrolled allows.
	if a.svc.Interlock != nil && !a.svc.Interlock.Allow() {
		a.armOpen = true
		return a, a.armPrompt.Focus()
	}

	a.toasts.AddStatus("Submitting order...")
	return a, a.placeOrderCmd(ticket)
}

func (a *App) applyArmCode(code string) {
	if a.svc.Interlock == nil {
		a.toasts.AddError("Arming not configured")
		return
	}
	if err := a.svc.Interlock.Arm(code); err != nil {
		a.toasts.AddError("Arming failed: " + err.Error())
		return
	}
	remaining := a.svc.Interlock.Remaining()
	a.statusBar.SetArming(true, remaining.Round(1e9).String())
	a.toasts.AddSuccess("Order entry armed")
}

// =============================================================================
// MISC STATE
// =============================================================================

func (a *App) startNewConversation() {
	a.conversation = model.NewConversation(a.conversation.Mode, a.conversation.Lang)
	a.convKey = ""
	a.pausedTask = nil
	a.resetStreamState()
	a.renderTranscript()
}

func (a *App) switchViewByName(name string) {
	switch name {
	case "dashboard":
		a.view = ViewDashboard
	case "chart":
		a.view = ViewChart
	case "assistant":
		a.view = ViewAssistant
	}
}

// applyBoard snapshots the live price board into the ticker strip.
func (a *App) applyBoard() {
	if a.svc.Board == nil {
		return
	}
	a.ticker.UpdateAll(a.svc.Board.Snapshot())
	if a.svc.Market != nil {
		status, ok := a.svc.Market.StatusFor(a.market)
		a.statusBar.SetFeed(ok, ok && status.Connected)
	}
}

// applyRateHeadroom pushes the tightest limit into the status bar.
func (a *App) applyRateHeadroom(limits []model.RateLimit) {
	worst := -1.0
	var used, cap int
	for _, rl := range limits {
		h := rl.Headroom()
		if worst < 0 || h < worst {
			worst = h
			used, cap = int(rl.Used), int(rl.Cap)
		}
	}
	if worst >= 0 {
		a.statusBar.SetRateLimit(used, cap, worst)
	}
}

// mirrorActivity persists fetched events so the feed survives restarts.
func (a *App) mirrorActivity(events []model.ActivityEvent) {
	if a.svc.Activity == nil || len(events) == 0 {
		return
	}
	if err := a.svc.Activity.Record(events...); err != nil {
		a.svc.Logger.Warn("activity mirror write failed", zap.Error(err))
	}
}

// noteRefreshError logs a background refresh failure without toasting:
// a flaky poll should not nag on every tick.
func (a *App) noteRefreshError(what string, err error) {
	a.svc.Logger.Warn("refresh failed", zap.String("what", what), zap.Error(err))
}

// =============================================================================
// COMPLETION
// =============================================================================

func (a *App) refreshCompletions() {
	text := a.input.Value()
	if !commands.IsCommand(text) {
		a.completions.Clear()
		return
	}
	a.completions.Update(text, a.completer.Complete(text))
}

func (a *App) cycleCompletion() {
	if !a.completions.Active {
		a.refreshCompletions()
		if !a.completions.Active {
			return
		}
	}
	a.completions.Next()
}

// =============================================================================
// RESIZE
// =============================================================================

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height
	a.theme.SetSize(width, height)

	body := height - chromeHeight
	if body < 4 {
		body = 4
	}
	half := width / 2

	a.ticker.SetWidth(width)
	a.statusBar.SetWidth(width)

	a.balances.SetSize(half, body/3)
	a.positions.SetSize(half, body/3)
	a.programs.SetSize(half, body-2*(body/3))
	a.orders.SetSize(width-half, body/3)
	a.rateLimits.SetSize(width-half, body/4)
	a.feed.SetSize(width-half, body-body/3-body/4)

	a.chart.SetSize(width, body-subplotHeight(a.panes.Layout().Panes))

	a.transcript.Width = width
	a.transcript.Height = body - inputHeight
	a.input.Width = width - 4
	a.renderer.SetWidth(width - 2)
	a.renderTranscript()
}
