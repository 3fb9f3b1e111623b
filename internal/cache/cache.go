// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cache provides the session-scoped data cache.
//
// Panels share one Manager so a tab switch or pane rebuild re-renders
// from cached data instead of refetching. Entries carry per-class TTLs;
// explicit invalidation (an order went through, a manual refresh)
// notifies subscribers so visible panels can refetch eagerly. Expiry is
// silent: it only drops the entry.
package cache

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// =============================================================================
// ENTRY CLASSES
// =============================================================================

// Default TTLs per entry class. Market data ages fast; account state a
// little slower; the rate-limit budget is advisory.
const (
	TTLKlines     = 15 * time.Second
	TTLTickers    = 5 * time.Second
	TTLBalances   = 10 * time.Second
	TTLPositions  = 10 * time.Second
	TTLOrders     = 10 * time.Second
	TTLRateLimits = 30 * time.Second
	TTLPrograms   = time.Minute
)

// =============================================================================
// MANAGER
// =============================================================================

// entry is one cached value with its expiry.
type entry struct {
	value     any
	expiresAt time.Time
}

// InvalidateFunc receives the key of an explicitly invalidated entry.
type InvalidateFunc func(key string)

// Manager is an in-memory TTL cache with invalidation hooks. Safe for
// concurrent use.
type Manager struct {
	mu      sync.RWMutex
	entries map[string]entry

	// subscribers receive explicit invalidations, not expirations
	subMu       sync.RWMutex
	subscribers []InvalidateFunc

	hits   atomic.Int64
	misses atomic.Int64
}

// NewManager creates an empty cache.
func NewManager() *Manager {
	return &Manager{
		entries: make(map[string]entry),
	}
}

// Get returns the cached value for key if present and fresh.
func (m *Manager) Get(key string) (any, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || time.Now().After(e.expiresAt) {
		m.misses.Add(1)
		return nil, false
	}
	m.hits.Add(1)
	return e.value, true
}

// Set stores value under key for ttl.
func (m *Manager) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	m.mu.Lock()
	m.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()
}

// Invalidate drops one entry and notifies subscribers.
func (m *Manager) Invalidate(key string) {
	m.mu.Lock()
	_, existed := m.entries[key]
	delete(m.entries, key)
	m.mu.Unlock()

	if existed {
		m.notify(key)
	}
}

// InvalidatePrefix drops every entry whose key starts with prefix and
// notifies subscribers per dropped key. Used when one action outdates a
// whole class, e.g. a placed order outdates orders, balances, and
// positions for that market.
func (m *Manager) InvalidatePrefix(prefix string) {
	m.mu.Lock()
	var dropped []string
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
			dropped = append(dropped, key)
		}
	}
	m.mu.Unlock()

	for _, key := range dropped {
		m.notify(key)
	}
}

// Clear drops everything without notifying.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.entries = make(map[string]entry)
	m.mu.Unlock()
}

// Subscribe registers an invalidation hook. Hooks run synchronously on
// the invalidating goroutine and must be cheap.
func (m *Manager) Subscribe(fn InvalidateFunc) {
	if fn == nil {
		return
	}
	m.subMu.Lock()
	m.subscribers = append(m.subscribers, fn)
	m.subMu.Unlock()
}

// notify fires all hooks for one key.
func (m *Manager) notify(key string) {
	m.subMu.RLock()
	subs := m.subscribers
	m.subMu.RUnlock()

	for _, fn := range subs {
		fn(key)
	}
}

// =============================================================================
// CLEANUP
// =============================================================================

// StartCleanup launches a janitor that drops expired entries every
// interval. The returned stop function is idempotent.
func (m *Manager) StartCleanup(interval time.Duration) func() {
	stop := make(chan struct{})
	var once sync.Once

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				m.dropExpired()
			}
		}
	}()

	return func() {
		once.Do(func() { close(stop) })
	}
}

// dropExpired removes entries past their expiry.
func (m *Manager) dropExpired() {
	now := time.Now()
	m.mu.Lock()
	for key, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, key)
		}
	}
	m.mu.Unlock()
}

// =============================================================================
// STATS
// =============================================================================

// Stats reports cache effectiveness for the status line.
type Stats struct {
	Entries int
	Hits    int64
	Misses  int64
}

// HitRate returns hits/(hits+misses) in [0,1].
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Stats returns a snapshot of the counters.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	entries := len(m.entries)
	m.mu.RUnlock()

	return Stats{
		Entries: entries,
		Hits:    m.hits.Load(),
		Misses:  m.misses.Load(),
	}
}
