// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"testing"
)

func TestCompleteCommandNames(t *testing.T) {
	c := NewCompleter(NewRegistry(), nil)

	completions := c.Complete("/ma")
	if len(completions) == 0 {
		t.Fatal("no completions for /ma")
	}
	found := false
	for _, comp := range completions {
		if comp.Value == "/market" {
			found = true
		}
	}
	if !found {
		t.Errorf("/market not offered for /ma: %v", completions)
	}
}

func TestCompleteEnumArg(t *testing.T) {
	c := NewCompleter(NewRegistry(), nil)

	completions := c.Complete("/market bi")
	if len(completions) != 1 || completions[0].Value != "binance" {
		t.Errorf("completions for '/market bi' = %v, want [binance]", completions)
	}

	// Empty partial after the space offers everything.
	completions = c.Complete("/market ")
	if len(completions) != 2 {
		t.Errorf("completions for '/market ' = %v, want both markets", completions)
	}
}

func TestCompleteIndicatorArg(t *testing.T) {
	c := NewCompleter(NewRegistry(), nil)

	completions := c.Complete("/indicator rs")
	if len(completions) != 1 || completions[0].Value != "RSI14" {
		t.Errorf("completions for '/indicator rs' = %v, want [RSI14]", completions)
	}
}

func TestCompleteNonCommand(t *testing.T) {
	c := NewCompleter(NewRegistry(), nil)

	if got := c.Complete("hello"); got != nil {
		t.Errorf("plain text produced completions: %v", got)
	}
}

func TestCompletionStateCycle(t *testing.T) {
	cs := NewCompletionState()
	cs.Update("/market ", []Completion{{Value: "hyperliquid"}, {Value: "binance"}})

	if !cs.Active {
		t.Fatal("state inactive after update with candidates")
	}

	cs.Next()
	if cs.Selected != 0 {
		t.Errorf("first Next selected %d, want 0", cs.Selected)
	}
	cs.Next()
	cs.Next() // wraps
	if cs.Selected != 0 {
		t.Errorf("wrap-around selected %d, want 0", cs.Selected)
	}

	cs.Prev() // wraps backward
	if cs.Selected != 1 {
		t.Errorf("Prev from 0 selected %d, want 1", cs.Selected)
	}

	if got := cs.Accept(); got != "binance" {
		t.Errorf("Accept = %q, want binance", got)
	}
	if cs.Active {
		t.Error("state still active after Accept")
	}
}

func TestCompletionStateAcceptWithoutSelection(t *testing.T) {
	cs := NewCompletionState()
	cs.Update("/m", []Completion{{Value: "/market"}})

	if got := cs.Accept(); got != "" {
		t.Errorf("Accept with no selection = %q, want empty", got)
	}
}
