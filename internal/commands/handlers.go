// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/tradedeck/internal/storage"
)

// =============================================================================
// COMMAND MESSAGES
// =============================================================================
// Every handler resolves to one of these. The app's update loop owns the
// state they describe; this package only names the intent.

// StatusMsg shows a transient status line.
type StatusMsg struct {
	Text string
}

// ErrorMsg shows a command error.
type ErrorMsg struct {
	Err error
}

// HelpMsg shows the command help text.
type HelpMsg struct {
	Text string
}

// QuitMsg exits the program.
type QuitMsg struct{}

// NewConversationMsg starts a fresh conversation.
type NewConversationMsg struct{}

// SaveConversationMsg persists the current conversation.
type SaveConversationMsg struct{}

// OpenConversationMsg loads a saved conversation by list index (1-based).
type OpenConversationMsg struct {
	Index int
}

// ListConversationsMsg shows the saved conversation list.
type ListConversationsMsg struct {
	Listing string
}

// ClearConversationMsg drops the transcript without saving.
type ClearConversationMsg struct{}

// ExportConversationMsg writes the transcript to a file.
type ExportConversationMsg struct {
	Format string // "markdown" or "json"
}

// ContinueMsg resumes an interrupted answer on the same conversation.
type ContinueMsg struct{}

// CancelTaskMsg abandons the in-flight task.
type CancelTaskMsg struct{}

// SetModeMsg changes the assistant mode tag.
type SetModeMsg struct {
	Mode string
}

// SetLangMsg changes the assistant language tag.
type SetLangMsg struct {
	Lang string
}

// SetMarketMsg switches the active market.
type SetMarketMsg struct {
	Market string
}

// SetSymbolMsg switches the charted symbol.
type SetSymbolMsg struct {
	Symbol string
}

// SetPeriodMsg switches the candle period.
type SetPeriodMsg struct {
	Period string
}

// ToggleIndicatorMsg flips one indicator in the chart selection.
type ToggleIndicatorMsg struct {
	Key string
}

// ArmMsg unlocks order entry with a TOTP code.
type ArmMsg struct {
	Code string
}

// DisarmMsg locks order entry immediately.
type DisarmMsg struct{}

// SwitchViewMsg changes the visible view.
type SwitchViewMsg struct {
	View string // "dashboard", "chart", "assistant"
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

// KnownIndicators is the completion vocabulary for /indicator. The
// backend accepts more; these are the ones the chart panes classify.
var KnownIndicators = []string{
	"MA5", "MA10", "MA20", "EMA12", "EMA26", "BOLL",
	"RSI14", "MACD", "KDJ", "WR14", "CCI20", "ATR14",
	"OI", "FUNDING", "CVD", "NETFLOW",
}

var chartPeriods = []string{"1m", "5m", "15m", "1h", "4h", "1d"}

var assistantModes = []string{"analysis", "trading", "general"}

func (r *Registry) registerBuiltins() {
	// --- Session ------------------------------------------------------

	r.Register(&Command{
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Description: "Show this command list",
		Category:    "Session",
		Handler: func(ctx *Context, args []string) tea.Cmd {
			help := r.HelpText()
			return func() tea.Msg { return HelpMsg{Text: help} }
		},
	})

	r.Register(&Command{
		Name:        "/quit",
		Aliases:     []string{"/q", "/exit"},
		Description: "Exit tradedeck",
		Category:    "Session",
		Handler: func(ctx *Context, args []string) tea.Cmd {
			return func() tea.Msg { return QuitMsg{} }
		},
	})

	r.Register(&Command{
		Name:        "/dashboard",
		Aliases:     []string{"/dash"},
		Description: "Switch to the dashboard view",
		Category:    "Session",
		Handler:     switchView("dashboard"),
	})

	r.Register(&Command{
		Name:        "/chart",
		Description: "Switch to the chart view",
		Category:    "Session",
		Handler:     switchView("chart"),
	})

	r.Register(&Command{
		Name:        "/assistant",
		Aliases:     []string{"/ai"},
		Description: "Switch to the assistant view",
		Category:    "Session",
		Handler:     switchView("assistant"),
	})

	// --- Conversation -------------------------------------------------

	r.Register(&Command{
		Name:        "/new",
		Description: "Start a new conversation",
		Category:    "Conversation",
		Handler: func(ctx *Context, args []string) tea.Cmd {
			return func() tea.Msg { return NewConversationMsg{} }
		},
	})

	r.Register(&Command{
		Name:        "/save",
		Description: "Save the current conversation",
		Category:    "Conversation",
		Handler: func(ctx *Context, args []string) tea.Cmd {
			return func() tea.Msg { return SaveConversationMsg{} }
		},
	})

	r.Register(&Command{
		Name:        "/open",
		Aliases:     []string{"/load"},
		Description: "Open a saved conversation",
		Usage:       "/open <number>",
		Category:    "Conversation",
		Args: []ArgDef{
			{Name: "number", Required: true, Type: ArgTypeConversation, Description: "index from /list"},
		},
		Handler: func(ctx *Context, args []string) tea.Cmd {
			if len(args) == 0 {
				return errCmd(fmt.Errorf("usage: /open <number>"))
			}
			index, err := strconv.Atoi(args[0])
			if err != nil || index < 1 {
				return errCmd(fmt.Errorf("not a conversation number: %q", args[0]))
			}
			return func() tea.Msg { return OpenConversationMsg{Index: index} }
		},
	})

	r.Register(&Command{
		Name:        "/list",
		Aliases:     []string{"/ls"},
		Description: "List saved conversations",
		Category:    "Conversation",
		Handler: func(ctx *Context, args []string) tea.Cmd {
			return func() tea.Msg {
				if ctx == nil || ctx.Store == nil {
					return ErrorMsg{Err: fmt.Errorf("conversation store unavailable")}
				}
				metas, err := ctx.Store.List()
				if err != nil {
					return ErrorMsg{Err: fmt.Errorf("list conversations: %w", err)}
				}
				return ListConversationsMsg{Listing: storage.FormatConversationList(metas)}
			}
		},
	})

	r.Register(&Command{
		Name:        "/clear",
		Description: "Clear the transcript without saving",
		Category:    "Conversation",
		Handler: func(ctx *Context, args []string) tea.Cmd {
			return func() tea.Msg { return ClearConversationMsg{} }
		},
	})

	r.Register(&Command{
		Name:        "/export",
		Description: "Export the transcript to a file",
		Usage:       "/export [markdown|json]",
		Category:    "Conversation",
		Args: []ArgDef{
			{Name: "format", Type: ArgTypeEnum, Values: []string{"markdown", "json"}},
		},
		Handler: func(ctx *Context, args []string) tea.Cmd {
			format := "markdown"
			if len(args) > 0 {
				format = strings.ToLower(args[0])
			}
			if format != "markdown" && format != "json" {
				return errCmd(fmt.Errorf("unknown export format: %q", format))
			}
			return func() tea.Msg { return ExportConversationMsg{Format: format} }
		},
	})

	r.Register(&Command{
		Name:        "/continue",
		Aliases:     []string{"/resume"},
		Description: "Continue an interrupted answer",
		Category:    "Conversation",
		Handler: func(ctx *Context, args []string) tea.Cmd {
			return func() tea.Msg { return ContinueMsg{} }
		},
	})

	r.Register(&Command{
		Name:        "/cancel",
		Description: "Abandon the in-flight answer",
		Category:    "Conversation",
		Handler: func(ctx *Context, args []string) tea.Cmd {
			return func() tea.Msg { return CancelTaskMsg{} }
		},
	})

	r.Register(&Command{
		Name:        "/mode",
		Description: "Set the assistant mode tag",
		Usage:       "/mode <mode>",
		Category:    "Conversation",
		Args: []ArgDef{
			{Name: "mode", Required: true, Type: ArgTypeEnum, Values: assistantModes},
		},
		Handler: oneArg("mode", func(v string) tea.Msg { return SetModeMsg{Mode: v} }),
	})

	r.Register(&Command{
		Name:        "/lang",
		Description: "Set the assistant language tag",
		Usage:       "/lang <code>",
		Category:    "Conversation",
		Args: []ArgDef{
			{Name: "code", Required: true, Type: ArgTypeEnum, Values: []string{"en", "zh"}},
		},
		Handler: oneArg("language", func(v string) tea.Msg { return SetLangMsg{Lang: v} }),
	})

	// --- Market -------------------------------------------------------

	r.Register(&Command{
		Name:        "/market",
		Description: "Switch the active market",
		Usage:       "/market <name>",
		Category:    "Market",
		Args: []ArgDef{
			{Name: "name", Required: true, Type: ArgTypeEnum, Values: []string{"hyperliquid", "binance"}},
		},
		Handler: oneArg("market", func(v string) tea.Msg { return SetMarketMsg{Market: strings.ToLower(v)} }),
	})

	r.Register(&Command{
		Name:        "/symbol",
		Aliases:     []string{"/sym"},
		Description: "Switch the charted symbol",
		Usage:       "/symbol <base>",
		Category:    "Market",
		Args: []ArgDef{
			{Name: "base", Required: true, Type: ArgTypeString, Description: "base symbol, e.g. BTC"},
		},
		Handler: oneArg("symbol", func(v string) tea.Msg { return SetSymbolMsg{Symbol: strings.ToUpper(v)} }),
	})

	r.Register(&Command{
		Name:        "/period",
		Description: "Switch the candle period",
		Usage:       "/period <period>",
		Category:    "Market",
		Args: []ArgDef{
			{Name: "period", Required: true, Type: ArgTypeEnum, Values: chartPeriods},
		},
		Handler: oneArg("period", func(v string) tea.Msg { return SetPeriodMsg{Period: strings.ToLower(v)} }),
	})

	r.Register(&Command{
		Name:        "/indicator",
		Aliases:     []string{"/ind"},
		Description: "Toggle an indicator on the chart",
		Usage:       "/indicator <key>",
		Category:    "Market",
		Args: []ArgDef{
			{Name: "key", Required: true, Type: ArgTypeIndicator},
		},
		Handler: oneArg("indicator", func(v string) tea.Msg { return ToggleIndicatorMsg{Key: strings.ToUpper(v)} }),
	})

	// --- Orders -------------------------------------------------------

	r.Register(&Command{
		Name:        "/arm",
		Description: "Unlock order entry with a TOTP code",
		Usage:       "/arm <code>",
		Category:    "Orders",
		Args: []ArgDef{
			{Name: "code", Required: true, Type: ArgTypeString, Description: "6-digit code"},
		},
		Handler: oneArg("code", func(v string) tea.Msg { return ArmMsg{Code: v} }),
	})

	r.Register(&Command{
		Name:        "/disarm",
		Description: "Lock order entry",
		Category:    "Orders",
		Handler: func(ctx *Context, args []string) tea.Cmd {
			return func() tea.Msg { return DisarmMsg{} }
		},
	})
}

// switchView builds a handler that emits a view switch.
func switchView(view string) func(*Context, []string) tea.Cmd {
	return func(ctx *Context, args []string) tea.Cmd {
		return func() tea.Msg { return SwitchViewMsg{View: view} }
	}
}

// oneArg builds a handler requiring exactly one argument.
func oneArg(what string, msg func(string) tea.Msg) func(*Context, []string) tea.Cmd {
	return func(ctx *Context, args []string) tea.Cmd {
		if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
			return errCmd(fmt.Errorf("missing %s argument", what))
		}
		value := strings.TrimSpace(args[0])
		return func() tea.Msg { return msg(value) }
	}
}

func errCmd(err error) tea.Cmd {
	return func() tea.Msg { return ErrorMsg{Err: err} }
}
