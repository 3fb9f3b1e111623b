// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP
// =============================================================================

// KeyMap defines the global keyboard bindings.
type KeyMap struct {
	NextView  key.Binding
	Dashboard key.Binding
	Chart     key.Binding
	Assistant key.Binding

	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	Submit    key.Binding
	Cancel    key.Binding
	OrderForm key.Binding
	Market    key.Binding
	Complete  key.Binding

	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextView: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "next view"),
		),
		Dashboard: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "dashboard"),
		),
		Chart: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("F2", "chart"),
		),
		Assistant: key.NewBinding(
			key.WithKeys("f3"),
			key.WithHelp("F3", "assistant"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("up", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("down", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("PgDn", "page down"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "submit"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "cancel"),
		),
		OrderForm: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "order ticket"),
		),
		Market: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("C-x", "switch market"),
		),
		Complete: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "complete"),
		),
		Help: key.NewBinding(
			key.WithKeys("f10"),
			key.WithHelp("F10", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q"),
			key.WithHelp("C-q", "quit"),
		),
	}
}
