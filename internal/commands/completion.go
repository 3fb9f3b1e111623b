// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// =============================================================================
// COMPLETION
// =============================================================================

// Completion is one completion candidate.
type Completion struct {
	// Value is the text to insert
	Value string

	// Display is shown in the completion list (defaults to Value)
	Display string

	// Description explains the candidate
	Description string
}

// Completer produces completion candidates for partial input.
type Completer struct {
	registry *Registry
	ctx      *Context
}

// NewCompleter creates a completer over a registry. ctx may be nil;
// conversation completion then yields nothing.
func NewCompleter(registry *Registry, ctx *Context) *Completer {
	return &Completer{registry: registry, ctx: ctx}
}

// Complete returns candidates for the input as typed so far.
func (c *Completer) Complete(input string) []Completion {
	if !strings.HasPrefix(input, "/") {
		return nil
	}

	// Still typing the command name: no space yet.
	if strings.IndexFunc(input, unicode.IsSpace) == -1 {
		return c.completeCommands(strings.ToLower(input))
	}

	name := ExtractCommandName(input)
	cmd := c.registry.Get(strings.ToLower(name))
	if cmd == nil || len(cmd.Args) == 0 {
		return nil
	}

	parts := splitCommandLine(input)
	argIndex := len(parts) - 1 // index of the arg being typed
	partial := ""
	if !unicode.IsSpace(rune(input[len(input)-1])) && len(parts) > 1 {
		partial = parts[len(parts)-1]
	} else {
		argIndex = len(parts)
	}
	// parts[0] is the command itself
	argIndex--
	if argIndex < 0 || argIndex >= len(cmd.Args) {
		return nil
	}
	return c.completeArg(cmd.Args[argIndex], partial)
}

// completeCommands matches command names and aliases by prefix.
func (c *Completer) completeCommands(partial string) []Completion {
	var result []Completion
	for _, cmd := range c.registry.All() {
		names := append([]string{cmd.Name}, cmd.Aliases...)
		for _, name := range names {
			if strings.HasPrefix(name, partial) {
				result = append(result, Completion{
					Value:       name,
					Display:     name,
					Description: cmd.Description,
				})
				break
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Value < result[j].Value })
	return result
}

// completeArg matches one argument position.
func (c *Completer) completeArg(def ArgDef, partial string) []Completion {
	switch def.Type {
	case ArgTypeEnum:
		return c.completeFromList(def.Values, partial)
	case ArgTypeIndicator:
		return c.completeFromList(KnownIndicators, partial)
	case ArgTypeConversation:
		return c.completeConversations(partial)
	default:
		return nil
	}
}

// completeConversations lists saved conversations by index.
func (c *Completer) completeConversations(partial string) []Completion {
	if c.ctx == nil || c.ctx.Store == nil {
		return nil
	}
	metas, err := c.ctx.Store.List()
	if err != nil {
		return nil
	}
	var result []Completion
	for i, meta := range metas {
		value := fmt.Sprintf("%d", i+1)
		if !strings.HasPrefix(value, partial) {
			continue
		}
		result = append(result, Completion{
			Value:       value,
			Display:     fmt.Sprintf("%s. %s", value, meta.Title),
			Description: fmt.Sprintf("%d messages", meta.MessageCount),
		})
	}
	return result
}

// completeFromList matches values case-insensitively by prefix.
func (c *Completer) completeFromList(values []string, partial string) []Completion {
	lower := strings.ToLower(partial)
	var result []Completion
	for _, v := range values {
		if strings.HasPrefix(strings.ToLower(v), lower) {
			result = append(result, Completion{Value: v, Display: v})
		}
	}
	return result
}

// =============================================================================
// COMPLETION STATE
// =============================================================================

// CompletionState tracks an in-progress completion cycle so repeated
// tab presses walk the candidate list.
type CompletionState struct {
	Input       string
	Completions []Completion
	Selected    int
	Active      bool
}

// NewCompletionState creates an inactive completion state.
func NewCompletionState() *CompletionState {
	return &CompletionState{Selected: -1}
}

// Update replaces the candidate set for new input.
func (cs *CompletionState) Update(input string, completions []Completion) {
	cs.Input = input
	cs.Completions = completions
	cs.Selected = -1
	cs.Active = len(completions) > 0
}

// Next advances the selection, wrapping around.
func (cs *CompletionState) Next() {
	if len(cs.Completions) == 0 {
		return
	}
	cs.Selected = (cs.Selected + 1) % len(cs.Completions)
}

// Prev moves the selection back, wrapping around.
func (cs *CompletionState) Prev() {
	if len(cs.Completions) == 0 {
		return
	}
	cs.Selected--
	if cs.Selected < 0 {
		cs.Selected = len(cs.Completions) - 1
	}
}

// Accept returns the selected value and deactivates the cycle.
func (cs *CompletionState) Accept() string {
	if cs.Selected < 0 || cs.Selected >= len(cs.Completions) {
		cs.Clear()
		return ""
	}
	value := cs.Completions[cs.Selected].Value
	cs.Clear()
	return value
}

// Clear deactivates the completion cycle.
func (cs *CompletionState) Clear() {
	cs.Input = ""
	cs.Completions = nil
	cs.Selected = -1
	cs.Active = false
}
