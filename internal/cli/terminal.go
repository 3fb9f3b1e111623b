// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - TTY and color capability detection for the tradedeck CLI.
//
// USABILITY: every CLI command runs in three habitats — an interactive
// terminal, a pipe, and CI. Output adapts per habitat: colors and
// markdown rendering only on a real stdout TTY, plain append-only text
// when piped, and NO_COLOR honored everywhere.

package cli

import (
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// IsTTY reports whether stdin is a terminal, i.e. whether interactive
// prompts (passphrases, the REPL) are possible.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsStdoutTTY reports whether stdout is a terminal. Piped output gets
// no colors and no rendered markdown.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// RequiresTTY returns a TTYRequiredError when stdin is not a terminal.
// Commands that must prompt call this before doing any work.
func RequiresTTY(operation string) error {
	if !IsTTY() {
		return &TTYRequiredError{Operation: operation}
	}
	return nil
}

// TTYRequiredError reports an interactive operation attempted without a
// terminal on stdin.
type TTYRequiredError struct {
	Operation string
}

func (e *TTYRequiredError) Error() string {
	if e.Operation == "" {
		return "stdin is not a terminal; interactive input not available"
	}
	return "stdin is not a terminal; cannot " + e.Operation + " interactively"
}

// =============================================================================
// WIDTH
// =============================================================================

const (
	// DefaultTerminalWidth is assumed when stdout is not a terminal or
	// size detection fails.
	DefaultTerminalWidth = 80

	// MinTerminalWidth is the floor for wrapping; narrower terminals
	// still get readable, if ragged, output.
	MinTerminalWidth = 40
)

// GetTerminalWidth returns the usable stdout width, clamped to
// [MinTerminalWidth, detected] with DefaultTerminalWidth as fallback.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	switch {
	case err != nil || width <= 0:
		return DefaultTerminalWidth
	case width < MinTerminalWidth:
		return MinTerminalWidth
	default:
		return width
	}
}

// WrapText word-wraps text to maxWidth display cells, preserving
// existing newlines. maxWidth <= 0 means the detected terminal width.
// Widths are measured in cells, not bytes, so CJK output wraps right.
func WrapText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		maxWidth = GetTerminalWidth()
	}
	if maxWidth > 10 {
		maxWidth -= 2 // right margin
	}

	var out strings.Builder
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(wrapLine(line, maxWidth))
	}
	return out.String()
}

func wrapLine(line string, maxWidth int) string {
	if runewidth.StringWidth(line) <= maxWidth {
		return line
	}
	words := strings.Fields(line)
	if len(words) == 0 {
		return ""
	}

	var out strings.Builder
	current := words[0]
	width := runewidth.StringWidth(current)
	for _, word := range words[1:] {
		w := runewidth.StringWidth(word)
		if width+1+w <= maxWidth {
			current += " " + word
			width += 1 + w
			continue
		}
		out.WriteString(current)
		out.WriteString("\n")
		current, width = word, w
	}
	out.WriteString(current)
	return out.String()
}

// =============================================================================
// COLOR
// =============================================================================

var (
	colorsEnabled     bool
	colorsEnabledOnce sync.Once
)

// ColorsEnabled reports whether output should be colored. NO_COLOR
// (any value) disables, FORCE_COLOR overrides TTY detection, otherwise
// the answer is whether stdout is a terminal. Decided once per process.
func ColorsEnabled() bool {
	colorsEnabledOnce.Do(func() {
		switch {
		case os.Getenv("NO_COLOR") != "":
			colorsEnabled = false
		case os.Getenv("FORCE_COLOR") != "":
			colorsEnabled = true
		default:
			colorsEnabled = IsStdoutTTY()
		}
	})
	return colorsEnabled
}

// GetColorProfile maps the color decision onto a termenv profile:
// Ascii when disabled, otherwise whatever the terminal supports.
func GetColorProfile() termenv.Profile {
	if !ColorsEnabled() {
		return termenv.Ascii
	}
	return termenv.ColorProfile()
}
