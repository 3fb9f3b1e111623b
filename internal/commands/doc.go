// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the assistant
// panel: a registry of commands, a parser for "/name args" input, and
// tab completion over command names and argument values.
//
// Handlers do not mutate application state directly. Each one returns a
// tea.Cmd producing a message defined in this package; the app's update
// loop interprets the message against its own state.
package commands
