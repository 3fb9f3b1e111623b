// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/tradedeck/internal/config"
	"github.com/jeranaias/tradedeck/internal/model"
	"github.com/jeranaias/tradedeck/internal/stream"
	"github.com/jeranaias/tradedeck/internal/ui/styles"
)

func testApp() *App {
	return New(styles.NewTheme(), Services{Config: config.Default()})
}

// startStream puts the app into the state sendChat leaves behind,
// without needing a backend: a streaming assistant message guarded by
// a live task ID.
func startStream(a *App, taskID string) *model.Message {
	msg := a.conversation.StartAssistantMessage()
	a.streamingMsgID = msg.ID
	a.currentTaskID = taskID
	a.lastSnapshotLen = 0
	return msg
}

func TestNewDefaults(t *testing.T) {
	a := testApp()

	if a.view != ViewDashboard {
		t.Errorf("initial view = %v, want dashboard", a.view)
	}
	if a.market != a.svc.Config.Markets.DefaultMarket() {
		t.Errorf("market = %v, want config default", a.market)
	}
	if a.symbol == "" {
		t.Error("no initial symbol")
	}
}

func TestStreamGuardDropsStrays(t *testing.T) {
	a := testApp()
	msg := startStream(a, "live")

	a.Update(StreamSnapshotMsg{TaskID: "stale", Text: "should not appear"})
	if got := msg.DisplayContent(); got != "" {
		t.Errorf("stray snapshot applied: %q", got)
	}
	if a.lastSnapshotLen != 0 {
		t.Errorf("stray snapshot advanced cursor to %d", a.lastSnapshotLen)
	}

	a.Update(StreamSnapshotMsg{TaskID: "live", Text: "hello"})
	if got := msg.DisplayContent(); got != "hello" {
		t.Errorf("live snapshot = %q, want hello", got)
	}
}

func TestStreamSnapshotAppendsOnlyTail(t *testing.T) {
	a := testApp()
	msg := startStream(a, "live")

	a.Update(StreamSnapshotMsg{TaskID: "live", Text: "hello"})
	a.Update(StreamSnapshotMsg{TaskID: "live", Text: "hello world"})
	if got := msg.DisplayContent(); got != "hello world" {
		t.Errorf("accumulated = %q", got)
	}

	// A shorter (out-of-order) snapshot must not rewind.
	a.Update(StreamSnapshotMsg{TaskID: "live", Text: "hel"})
	if got := msg.DisplayContent(); got != "hello world" {
		t.Errorf("short snapshot rewound buffer: %q", got)
	}
}

func TestOutcomeDoneAdoptsConversation(t *testing.T) {
	a := testApp()
	msg := startStream(a, "live")

	a.Update(StreamOutcomeMsg{TaskID: "live", Outcome: stream.Outcome{
		Kind:           stream.OutcomeDone,
		Text:           "final answer",
		ConversationID: "conv-9",
	}})

	if msg.Content != "final answer" {
		t.Errorf("content = %q", msg.Content)
	}
	if !a.conversation.Adopted() || a.conversation.ID != "conv-9" {
		t.Errorf("conversation not adopted: id=%q", a.conversation.ID)
	}
	if a.currentTaskID != "" || a.streamingMsgID != "" || a.lastSnapshotLen != 0 {
		t.Error("stream state not reset after terminal outcome")
	}
}

func TestOutcomeErrorDoesNotAdopt(t *testing.T) {
	a := testApp()
	startStream(a, "live")

	a.Update(StreamOutcomeMsg{TaskID: "live", Outcome: stream.Outcome{
		Kind: stream.OutcomeError,
		Text: "backend exploded",
	}})

	if a.conversation.Adopted() {
		t.Error("error outcome adopted a conversation identity")
	}
}

func TestProgramsMsgPopulatesPanel(t *testing.T) {
	a := testApp()
	a.resize(120, 40)

	a.Update(ProgramsMsg{Programs: []model.Program{
		{Name: "grid-bot", Market: model.MarketBinance, Status: "active"},
	}})

	if view := a.programs.View(); !strings.Contains(view, "grid-bot") {
		t.Errorf("programs panel missing row:\n%s", view)
	}
}

func TestConfigReloadedSwapsConfig(t *testing.T) {
	a := testApp()

	fresh := config.Default()
	fresh.UI.RefreshAccountSecs = 99
	a.Update(ConfigReloadedMsg{Config: fresh})

	if a.svc.Config.UI.RefreshAccountSecs != 99 {
		t.Error("reloaded config not applied")
	}

	a.Update(ConfigReloadedMsg{Config: nil})
	if a.svc.Config == nil {
		t.Error("nil reload cleared the config")
	}
}

func TestResizeRendersEveryView(t *testing.T) {
	a := testApp()
	a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	for _, v := range []View{ViewDashboard, ViewChart, ViewAssistant} {
		a.view = v
		if out := a.View(); out == "" {
			t.Errorf("%s view rendered empty", v)
		}
	}
}
