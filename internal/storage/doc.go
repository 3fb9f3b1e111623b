// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists local tradedeck state between runs.
//
// Two stores live here:
//
//   - ConversationStore: assistant conversations as one JSON file each,
//     written atomically with fsync. Files are keyed by the backend
//     conversation ID once it is adopted; before adoption they live
//     under a provisional local key and migrate on the first save after
//     adoption.
//   - ActivityLog: a SQLite mirror of the backend activity feed so the
//     feed panel has history across restarts and supports market
//     filtering without refetching.
//
// # Usage
//
// Save and reopen a conversation:
//
//	store, err := storage.NewConversationStore()
//	key, err := store.Save("", conv)
//	conv, err := store.Load(key)
//
// Mirror activity rows:
//
//	log, err := storage.OpenActivityLog(path)
//	err = log.Record(events...)
//	rows, err := log.RecentFor(model.MarketHyperliquid, 50)
//
// # Storage Location
//
// Everything lives under ~/.tradedeck/ by default: conversations/ for
// the JSON files, activity.db for the feed mirror.
package storage
