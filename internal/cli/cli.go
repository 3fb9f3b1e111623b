// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for tradedeck.
//
// CLI: Comprehensive help and examples for all commands
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdStatus
	CmdConfig
	CmdMarkets
	CmdExport
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool
	Market  string // Override default market

	// Command-specific
	Query      string
	Mode       string
	Lang       string
	ConfigKey  string
	ConfigVal  string
	Subcommand string
	Format     string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `tradedeck - multi-exchange trading dashboard for the terminal

Tradedeck is a terminal dashboard for Hyperliquid and Binance accounts.

It provides:
  - Live balances, positions, and open orders
  - Candlestick charts with technical indicators
  - Websocket price tickers
  - An AI trading assistant with streamed answers
  - TOTP-gated order entry

Usage:
  tradedeck                    Start TUI (default)
  tradedeck ask "question"     Ask the assistant once, or start a REPL
  tradedeck status, s          Show backend and config status
  tradedeck config [show|get|set|path]  Configuration
  tradedeck markets            List markets, symbols, and live prices
  tradedeck export <id>        Export a saved conversation
  tradedeck version            Show version information
  tradedeck help               Show this help

Ask Commands:
  tradedeck ask "question"     One-shot question, answer to stdout
  tradedeck ask                Interactive REPL with input history
    --mode MODE                Assistant mode (e.g. analysis, trade)
    --lang LANG                Answer language (e.g. en, zh)

Config Commands:
  tradedeck config show        Show current configuration
  tradedeck config get KEY     Print one value (e.g. backend.base_url)
  tradedeck config set KEY VAL Set and save one value
  tradedeck config path        Print the config file path

Export Commands:
  tradedeck export <id>        Export conversation transcript
    --format md|json           Export format (default: md)

Global Flags:
  -q, --quiet     Minimal output
  -v, --verbose   Show assistant activity while streaming
  --json          Output in JSON format
  --market NAME   Override default market (hyperliquid, binance)

Examples:
  tradedeck                                  Start the dashboard
  tradedeck ask "What is BTC funding doing?" One-shot question
  tradedeck ask --mode analysis              Analysis-mode REPL
  tradedeck status                           Check backend reachability
  tradedeck config set markets.default binance
  tradedeck markets --market hyperliquid     Hyperliquid prices only
  tradedeck export 4f1c2 --format json       Export as JSON

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("tradedeck version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
	fmt.Printf("  Go version: %s\n", runtime.Version())
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses the given argument list. Split from Parse for tests.
func ParseArgs(args []string) (Command, Args) {
	// Parse global flags first
	remaining, parsedArgs := parseGlobalFlags(args)

	// If no remaining args, default to TUI
	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui", "dashboard":
		return CmdTUI, parsedArgs

	case "ask", "chat":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "status", "s":
		return CmdStatus, parsedArgs

	case "config":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "markets", "market", "tickers":
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
		}
		return CmdMarkets, parsedArgs

	case "export":
		parseExportArgs(&parsedArgs, remaining)
		return CmdExport, parsedArgs

	case "version", "-v", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Unknown command: treat the whole line as an ask query so
		// `tradedeck what is funding` still works.
		parseAskArgs(&parsedArgs, append([]string{cmd}, remaining...))
		return CmdAsk, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--market":
			if i+1 < len(args) {
				i++
				parsedArgs.Market = args[i]
			}
		default:
			if strings.HasPrefix(arg, "--market=") {
				parsedArgs.Market = strings.TrimPrefix(arg, "--market=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// parseAskArgs parses ask command specific arguments.
func parseAskArgs(args *Args, remaining []string) {
	var query []string

	i := 0
	for i < len(remaining) {
		arg := remaining[i]

		switch arg {
		case "-m", "--mode":
			if i+1 < len(remaining) {
				i++
				args.Mode = remaining[i]
			}
		case "--lang":
			if i+1 < len(remaining) {
				i++
				args.Lang = remaining[i]
			}
		default:
			if strings.HasPrefix(arg, "--mode=") {
				args.Mode = strings.TrimPrefix(arg, "--mode=")
			} else if strings.HasPrefix(arg, "--lang=") {
				args.Lang = strings.TrimPrefix(arg, "--lang=")
			} else if !strings.HasPrefix(arg, "-") {
				query = append(query, arg)
			}
		}
		i++
	}

	args.Query = strings.Join(query, " ")
}

// parseConfigArgs parses config command specific arguments.
func parseConfigArgs(args *Args, remaining []string) {
	if len(remaining) > 0 {
		args.Subcommand = remaining[0]
		if len(remaining) > 1 {
			args.ConfigKey = remaining[1]
		}
		if len(remaining) > 2 {
			args.ConfigVal = strings.Join(remaining[2:], " ")
		}
	}
}

// parseExportArgs parses export command specific arguments.
func parseExportArgs(args *Args, remaining []string) {
	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]

		switch arg {
		case "-f", "--format":
			if i+1 < len(remaining) {
				i++
				args.Format = remaining[i]
			}
		default:
			if strings.HasPrefix(arg, "--format=") {
				args.Format = strings.TrimPrefix(arg, "--format=")
			} else if !strings.HasPrefix(arg, "-") && args.Subcommand == "" {
				args.Subcommand = arg
			}
		}
	}
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// ERROR HANDLING: Errors must not be silently ignored

// HandleAsk handles the "ask" command.
// This delegates to the full implementation in ask.go.
func HandleAsk(args Args) {
	if err := HandleAskCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

// HandleStatus handles the "status" command.
func HandleStatus(args Args) {
	if err := HandleStatusCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

// HandleConfig handles the "config" command.
func HandleConfig(args Args) {
	if err := HandleConfigCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

// HandleMarkets handles the "markets" command.
func HandleMarkets(args Args) {
	if err := HandleMarketsCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

// HandleExport handles the "export" command.
func HandleExport(args Args) {
	if err := HandleExportCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

// HandleVersion handles the "version" command.
func HandleVersion(args Args) {
	if args.JSON {
		printJSON("version", map[string]string{
			"version":    Version,
			"git_commit": GitCommit,
			"build_date": BuildDate,
			"go_version": runtime.Version(),
		})
		return
	}
	PrintVersion()
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage()
}
