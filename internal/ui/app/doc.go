// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the root Bubble Tea model for tradedeck: the dashboard,
// chart, and assistant views over one shared set of backend services.
//
// The update loop is the single mutation point for UI state. Stream
// consumers, panel refreshers, and feed goroutines never touch the model
// directly; everything they produce arrives as a message. Messages from
// abandoned tasks carry their task ID and are dropped by the guard in
// Update, so a late chunk cannot bleed into a newer answer.
package app
