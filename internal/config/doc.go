// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and manages tradedeck configuration.
//
// Configuration comes from three layers, later layers winning:
//
//  1. Built-in defaults (Default)
//  2. TOML file at ~/.tradedeck/config.toml
//  3. TRADEDECK_* environment variables (a .env file in the working
//     directory is folded into the environment first)
//
// Load applies all three and validates the result. Global exposes a
// process-wide instance for call sites without plumbing.
//
// Watcher reloads the file on change and hands the fresh Config to a
// callback. Only display-level fields (theme, refresh cadence, symbols)
// are safe to apply live; backend, storage, and logging changes need a
// restart and callers are expected to ignore them until then.
package config
