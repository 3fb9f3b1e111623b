// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"time"

	"github.com/jeranaias/tradedeck/internal/api"
	"github.com/jeranaias/tradedeck/internal/config"
	"github.com/jeranaias/tradedeck/internal/model"
	"github.com/jeranaias/tradedeck/internal/stream"
	"github.com/jeranaias/tradedeck/internal/tasks"
)

// =============================================================================
// STREAM MESSAGES
// =============================================================================
// All stream messages carry the task ID they belong to. The update loop
// compares it against the current task and drops strays from abandoned
// consumers.

// ChatSubmittedMsg reports a successful task submission. The consumer
// is already running; snapshots follow.
type ChatSubmittedMsg struct {
	Task   *tasks.Task
	Handle *api.ChatHandle
}

// SubmitFailedMsg reports a failed submission. No consumer started.
type SubmitFailedMsg struct {
	Task *tasks.Task
	Err  error
}

// StreamSnapshotMsg delivers the accumulated text after a content chunk.
type StreamSnapshotMsg struct {
	TaskID string
	Text   string
}

// StreamActivityMsg delivers one side-channel entry.
type StreamActivityMsg struct {
	TaskID string
	Entry  stream.Activity
}

// StreamOutcomeMsg delivers the single terminal result of a consumer run.
type StreamOutcomeMsg struct {
	TaskID  string
	Outcome stream.Outcome
}

// =============================================================================
// DATA REFRESH MESSAGES
// =============================================================================

// AccountTickMsg fires on the account refresh cadence.
type AccountTickMsg time.Time

// MarketTickMsg fires on the kline/ticker refresh cadence.
type MarketTickMsg time.Time

// BoardTickMsg fires once a second to snapshot the live price board.
type BoardTickMsg time.Time

// BalancesMsg carries a balances fetch result.
type BalancesMsg struct {
	Market   model.Market
	Balances []model.Balance
	Err      error
}

// PositionsMsg carries a positions fetch result.
type PositionsMsg struct {
	Market    model.Market
	Positions []model.Position
	Err       error
}

// OrdersMsg carries an open-orders fetch result.
type OrdersMsg struct {
	Market model.Market
	Orders []model.Order
	Err    error
}

// RateLimitsMsg carries a rate-limit fetch result.
type RateLimitsMsg struct {
	Limits []model.RateLimit
	Err    error
}

// ActivityFeedMsg carries an activity fetch result.
type ActivityFeedMsg struct {
	Events []model.ActivityEvent
	Err    error
}

// ProgramsMsg carries a programs fetch result.
type ProgramsMsg struct {
	Programs []model.Program
	Err      error
}

// KlinesMsg carries a kline+indicator fetch result for the chart.
type KlinesMsg struct {
	Set *model.KlineSet
	Err error
}

// TickersMsg carries a REST ticker snapshot used to seed the board.
type TickersMsg struct {
	Market  model.Market
	Tickers []model.Ticker
	Err     error
}

// =============================================================================
// ORDER MESSAGES
// =============================================================================

// OrderPlacedMsg reports the result of an order ticket submission.
type OrderPlacedMsg struct {
	Order *model.Order
	Err   error
}

// OrderCanceledMsg reports the result of an order cancellation.
type OrderCanceledMsg struct {
	OrderID string
	Err     error
}

// =============================================================================
// PERSISTENCE MESSAGES
// =============================================================================

// ConversationSavedMsg reports a completed save.
type ConversationSavedMsg struct {
	Key string
	Err error
}

// ConversationLoadedMsg carries a loaded conversation.
type ConversationLoadedMsg struct {
	Conversation *model.Conversation
	Key          string
	Err          error
}

// ExportDoneMsg reports a transcript export.
type ExportDoneMsg struct {
	Path string
	Err  error
}

// =============================================================================
// CONFIG MESSAGES
// =============================================================================

// ConfigReloadedMsg carries a fresh config after the file changed on
// disk. Refresh cadences pick it up on their next tick; theme and feed
// selection still need a restart.
type ConfigReloadedMsg struct {
	Config *config.Config
}
