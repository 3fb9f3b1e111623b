// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"strings"
	"testing"
)

func TestParseArgsCommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want Command
	}{
		{"no args defaults to TUI", nil, CmdTUI},
		{"explicit tui", []string{"tui"}, CmdTUI},
		{"dashboard alias", []string{"dashboard"}, CmdTUI},
		{"ask", []string{"ask", "hello"}, CmdAsk},
		{"chat alias", []string{"chat"}, CmdAsk},
		{"status", []string{"status"}, CmdStatus},
		{"status short", []string{"s"}, CmdStatus},
		{"config", []string{"config", "show"}, CmdConfig},
		{"markets", []string{"markets"}, CmdMarkets},
		{"tickers alias", []string{"tickers"}, CmdMarkets},
		{"export", []string{"export", "abc"}, CmdExport},
		{"version", []string{"version"}, CmdVersion},
		{"version flag", []string{"--version"}, CmdVersion},
		{"help", []string{"help"}, CmdHelp},
		{"help flag", []string{"-h"}, CmdHelp},
		{"bare words become ask", []string{"what", "is", "funding"}, CmdAsk},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := ParseArgs(tt.args)
			if got != tt.want {
				t.Errorf("ParseArgs(%v) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}

func TestParseArgsGlobalFlags(t *testing.T) {
	cmd, args := ParseArgs([]string{"--quiet", "--json", "--market", "binance", "status"})
	if cmd != CmdStatus {
		t.Fatalf("command = %v, want CmdStatus", cmd)
	}
	if !args.Quiet || !args.JSON {
		t.Errorf("flags not parsed: quiet=%v json=%v", args.Quiet, args.JSON)
	}
	if args.Market != "binance" {
		t.Errorf("market = %q, want binance", args.Market)
	}
}

func TestParseArgsMarketEquals(t *testing.T) {
	_, args := ParseArgs([]string{"--market=hyperliquid", "markets"})
	if args.Market != "hyperliquid" {
		t.Errorf("market = %q", args.Market)
	}
}

func TestParseArgsAskQuery(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		query string
		mode  string
		lang  string
	}{
		{"plain question", []string{"ask", "what", "is", "BTC"}, "what is BTC", "", ""},
		{"mode flag", []string{"ask", "--mode", "analysis", "hi"}, "hi", "analysis", ""},
		{"mode equals", []string{"ask", "--mode=trade", "hi"}, "hi", "trade", ""},
		{"lang flag", []string{"ask", "--lang", "zh", "hi"}, "hi", "", "zh"},
		{"bare REPL", []string{"ask"}, "", "", ""},
		{"implicit ask", []string{"explain", "funding"}, "explain funding", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := ParseArgs(tt.args)
			if cmd != CmdAsk {
				t.Fatalf("command = %v, want CmdAsk", cmd)
			}
			if args.Query != tt.query {
				t.Errorf("query = %q, want %q", args.Query, tt.query)
			}
			if args.Mode != tt.mode {
				t.Errorf("mode = %q, want %q", args.Mode, tt.mode)
			}
			if args.Lang != tt.lang {
				t.Errorf("lang = %q, want %q", args.Lang, tt.lang)
			}
		})
	}
}

func TestParseArgsConfig(t *testing.T) {
	_, args := ParseArgs([]string{"config", "set", "markets.default", "binance"})
	if args.Subcommand != "set" || args.ConfigKey != "markets.default" || args.ConfigVal != "binance" {
		t.Errorf("config parse = %q %q %q", args.Subcommand, args.ConfigKey, args.ConfigVal)
	}
}

func TestParseArgsExportFormat(t *testing.T) {
	_, args := ParseArgs([]string{"export", "4f1c2", "--format", "json"})
	if args.Subcommand != "4f1c2" {
		t.Errorf("subcommand = %q", args.Subcommand)
	}
	if args.Format != "json" {
		t.Errorf("format = %q", args.Format)
	}

	_, args = ParseArgs([]string{"export", "--format=md", "4f1c2"})
	if args.Subcommand != "4f1c2" || args.Format != "md" {
		t.Errorf("equals form: subcommand = %q format = %q", args.Subcommand, args.Format)
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"validation", NewValidationError("market", "x", "unknown"), ExitUsageError},
		{"not found", NewNotFoundError("conversation", "abc"), ExitNotFoundError},
		{"wrapped not found", WrapError(NewNotFoundError("key", "k"), "lookup"), ExitNotFoundError},
		{"config", errors.New("load configuration: bad toml"), ExitConfigError},
		{"auth", errors.New("backend replied 401 unauthorized"), ExitAuthError},
		{"timeout", errors.New("context deadline exceeded"), ExitTimeoutError},
		{"network", errors.New("dial tcp: connection refused"), ExitNetworkError},
		{"generic", errors.New("boom"), ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.want {
				t.Errorf("GetExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestCommandErrorUnwrap(t *testing.T) {
	inner := errors.New("inner")
	err := NewCommandError("ask", "submit", "backend refused", inner)
	if !errors.Is(err, inner) {
		t.Error("CommandError does not unwrap to inner error")
	}
	if !strings.Contains(err.Error(), "ask submit failed") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestWrapText(t *testing.T) {
	text := "aaa bbb ccc ddd eee"
	wrapped := WrapText(text, 10)
	for _, line := range strings.Split(wrapped, "\n") {
		if len(line) > 10 {
			t.Errorf("line too long: %q", line)
		}
	}
	if strings.Join(strings.Fields(wrapped), " ") != text {
		t.Errorf("words lost in wrap: %q", wrapped)
	}
}

func TestWrapTextPreservesNewlines(t *testing.T) {
	wrapped := WrapText("one\ntwo", 40)
	if wrapped != "one\ntwo" {
		t.Errorf("WrapText = %q", wrapped)
	}
}

func TestOnWatchlist(t *testing.T) {
	if !onWatchlist(nil, "BTC") {
		t.Error("empty watchlist should match everything")
	}
	if !onWatchlist([]string{"BTC", "ETH"}, "ETH") {
		t.Error("listed symbol should match")
	}
	if onWatchlist([]string{"BTC"}, "SOL") {
		t.Error("unlisted symbol should not match")
	}
}

func TestOneLine(t *testing.T) {
	if got := oneLine("a\n  b\tc"); got != "a b c" {
		t.Errorf("oneLine = %q", got)
	}
}
