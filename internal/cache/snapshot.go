// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jeranaias/tradedeck/internal/util"
)

// =============================================================================
// DISK SNAPSHOT
// =============================================================================
// Slow-moving classes (rate-limit budgets, programs) survive a restart
// so the first dashboard paint is not all "loading...". Fast classes
// never belong here; callers pick the prefixes.

// snapshotEntry is one persisted entry with its absolute expiry.
type snapshotEntry struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// DecodeFunc maps a persisted key back to its concrete type. Returning
// false skips the entry; a later Get must type-assert exactly what the
// writer stored, so unknown keys are dropped rather than guessed at.
type DecodeFunc func(key string, raw json.RawMessage) (any, bool)

// SaveSnapshot writes every fresh entry matching one of the prefixes to
// path. Values that fail to marshal are skipped, not fatal.
func (m *Manager) SaveSnapshot(path string, prefixes ...string) error {
	now := time.Now()

	m.mu.RLock()
	entries := make([]snapshotEntry, 0, len(m.entries))
	for key, e := range m.entries {
		if now.After(e.expiresAt) || !hasAnyPrefix(key, prefixes) {
			continue
		}
		raw, err := json.Marshal(e.value)
		if err != nil {
			continue
		}
		entries = append(entries, snapshotEntry{Key: key, Value: raw, ExpiresAt: e.expiresAt})
	}
	m.mu.RUnlock()

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal cache snapshot: %w", err)
	}
	return util.AtomicWriteFile(path, data, 0o600)
}

// LoadSnapshot restores unexpired entries from path. A missing file is
// not an error. Returns the number of entries restored.
func (m *Manager) LoadSnapshot(path string, decode DecodeFunc) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read cache snapshot: %w", err)
	}

	var entries []snapshotEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return 0, fmt.Errorf("parse cache snapshot: %w", err)
	}

	restored := 0
	for _, e := range entries {
		ttl := time.Until(e.ExpiresAt)
		if ttl <= 0 {
			continue
		}
		value, ok := decode(e.Key, e.Value)
		if !ok {
			continue
		}
		m.Set(e.Key, value, ttl)
		restored++
	}
	return restored, nil
}

func hasAnyPrefix(key string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}
