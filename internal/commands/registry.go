// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/tradedeck/internal/config"
	"github.com/jeranaias/tradedeck/internal/storage"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command represents a slash command that can be executed.
type Command struct {
	// Name is the primary command name (e.g., "/help")
	Name string

	// Aliases are alternative names (e.g., "/h", "/?")
	Aliases []string

	// Description is shown in help and completion
	Description string

	// Usage shows argument syntax (e.g., "/market <name>")
	Usage string

	// Args defines the expected arguments
	Args []ArgDef

	// Handler is the function that executes the command
	Handler func(ctx *Context, args []string) tea.Cmd

	// Hidden commands don't appear in help
	Hidden bool

	// Category for grouping in help display
	Category string
}

// ArgDef defines an argument for a command.
type ArgDef struct {
	// Name of the argument
	Name string

	// Required indicates if the argument must be provided
	Required bool

	// Type determines completion behavior
	Type ArgType

	// Description explains the argument
	Description string

	// Values for enum types
	Values []string
}

// ArgType indicates what kind of completion to provide.
type ArgType int

const (
	ArgTypeString       ArgType = iota // Free-form string
	ArgTypeEnum                        // One of predefined values
	ArgTypeConversation                // Saved conversation index
	ArgTypeIndicator                   // Indicator key
	ArgTypeConfig                      // Config key
)

// Context carries the shared services handlers may read. Handlers never
// write through it; mutations travel as messages.
type Context struct {
	Config *config.Config
	Store  *storage.ConversationStore
}

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a new command registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias.
func (r *Registry) Get(name string) *Command {
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns every visible command, sorted by name.
func (r *Registry) All() []*Command {
	result := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		if !cmd.Hidden {
			result = append(result, cmd)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// Names returns every visible command name and alias, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.commands)+len(r.aliases))
	for name, cmd := range r.commands {
		if !cmd.Hidden {
			names = append(names, name)
		}
	}
	for alias, cmd := range r.aliases {
		if !cmd.Hidden {
			names = append(names, alias)
		}
	}
	sort.Strings(names)
	return names
}

// HelpText renders the command list grouped by category.
func (r *Registry) HelpText() string {
	byCategory := make(map[string][]*Command)
	categories := make([]string, 0)
	for _, cmd := range r.All() {
		cat := cmd.Category
		if cat == "" {
			cat = "General"
		}
		if _, seen := byCategory[cat]; !seen {
			categories = append(categories, cat)
		}
		byCategory[cat] = append(byCategory[cat], cmd)
	}
	sort.Strings(categories)

	var b strings.Builder
	b.WriteString("Commands:\n")
	for _, cat := range categories {
		b.WriteString("\n")
		b.WriteString(cat)
		b.WriteString(":\n")
		for _, cmd := range byCategory[cat] {
			usage := cmd.Usage
			if usage == "" {
				usage = cmd.Name
			}
			b.WriteString("  ")
			b.WriteString(padRight(usage, 28))
			b.WriteString(cmd.Description)
			if len(cmd.Aliases) > 0 {
				b.WriteString(" (")
				b.WriteString(strings.Join(cmd.Aliases, ", "))
				b.WriteString(")")
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-len(s))
}
