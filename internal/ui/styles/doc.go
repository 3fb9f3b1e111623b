// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the tradedeck TUI.
//
// All colors use Lip Gloss AdaptiveColor so the palette survives both
// light and dark terminals without configuration. The Theme struct owns
// every composed style the views render with; construct one per process
// via NewTheme (auto-detect) or NewThemeForMode (explicit config value)
// and pass it down, never build ad-hoc styles in views.
//
// Direction colors are the backbone of the palette: gains, buys and
// up-candles draw from Emerald; losses, sells and down-candles from
// Rose. Amber is reserved for caution states (armed order entry, rate
// limit pressure, stale data warnings) so it never collides with
// directional meaning.
package styles
