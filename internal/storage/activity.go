// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/tradedeck/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrActivityDatabase = errors.New("activity database error")
)

// =============================================================================
// SCHEMA
// =============================================================================

// DefaultMaxActivityRows bounds the mirror. The feed is display
// history, not an audit log; the backend owns the full record.
const DefaultMaxActivityRows = 5000

const activitySchema = `
-- Activity rows mirrored from the backend feed. The backend event ID
-- is the primary key so re-fetching an overlapping window is a no-op.
CREATE TABLE IF NOT EXISTS activity (
    id TEXT PRIMARY KEY,
    market TEXT NOT NULL,
    kind TEXT NOT NULL,
    symbol TEXT,
    text TEXT NOT NULL,
    at INTEGER NOT NULL  -- Unix milliseconds
) WITHOUT ROWID;

CREATE INDEX IF NOT EXISTS idx_activity_at ON activity(at);
CREATE INDEX IF NOT EXISTS idx_activity_market ON activity(market);
CREATE INDEX IF NOT EXISTS idx_activity_kind ON activity(kind);
`

// =============================================================================
// ACTIVITY LOG
// =============================================================================

// ActivityLog mirrors the backend activity feed into SQLite so the
// feed panel has history across restarts.
type ActivityLog struct {
	db      *sql.DB
	maxRows int
}

// OpenActivityLog opens (creating if needed) the activity mirror at path.
func OpenActivityLog(path string) (*ActivityLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(activitySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &ActivityLog{
		db:      db,
		maxRows: DefaultMaxActivityRows,
	}, nil
}

// Close closes the underlying database.
func (l *ActivityLog) Close() error {
	return l.db.Close()
}

// =============================================================================
// RECORDING
// =============================================================================

// Record upserts a batch of events. Events already mirrored (same ID)
// are refreshed in place, so overlapping fetch windows stay idempotent.
// Events without an ID get a local one; those come from tradedeck
// itself (order echoes), not from the backend.
func (l *ActivityLog) Record(events ...model.ActivityEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrActivityDatabase, err)
	}
	defer tx.Rollback()

	for _, ev := range events {
		id := ev.ID
		if id == "" {
			id = generateEventID()
		}
		at := ev.At
		if at.IsZero() {
			at = time.Now()
		}

		_, err := tx.Exec(`
			INSERT INTO activity (id, market, kind, symbol, text, at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				market = excluded.market,
				kind = excluded.kind,
				symbol = excluded.symbol,
				text = excluded.text,
				at = excluded.at
		`, id, string(ev.Market), ev.Kind, ev.Symbol, ev.Text, at.UnixMilli())
		if err != nil {
			return fmt.Errorf("%w: %v", ErrActivityDatabase, err)
		}
	}

	// Retention inside the same transaction: drop everything past the
	// newest maxRows rows.
	if l.maxRows > 0 {
		_, err := tx.Exec(`
			DELETE FROM activity WHERE id IN (
				SELECT id FROM activity ORDER BY at DESC, id LIMIT -1 OFFSET ?
			)
		`, l.maxRows)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrActivityDatabase, err)
		}
	}

	return tx.Commit()
}

// SetMaxRows overrides the retention bound (0 = unlimited).
func (l *ActivityLog) SetMaxRows(n int) {
	l.maxRows = n
}

// =============================================================================
// QUERIES
// =============================================================================

// Recent returns the newest events across all markets, newest first.
func (l *ActivityLog) Recent(limit int) ([]model.ActivityEvent, error) {
	return l.query(`
		SELECT id, market, kind, symbol, text, at FROM activity
		ORDER BY at DESC, id LIMIT ?
	`, limit)
}

// RecentFor returns the newest events for one market, newest first.
func (l *ActivityLog) RecentFor(market model.Market, limit int) ([]model.ActivityEvent, error) {
	return l.query(`
		SELECT id, market, kind, symbol, text, at FROM activity
		WHERE market = ? ORDER BY at DESC, id LIMIT ?
	`, string(market), limit)
}

// RecentByKind returns the newest events of one kind, newest first.
func (l *ActivityLog) RecentByKind(kind string, limit int) ([]model.ActivityEvent, error) {
	return l.query(`
		SELECT id, market, kind, symbol, text, at FROM activity
		WHERE kind = ? ORDER BY at DESC, id LIMIT ?
	`, kind, limit)
}

// Count returns the number of mirrored events.
func (l *ActivityLog) Count() (int, error) {
	var n int
	err := l.db.QueryRow("SELECT COUNT(*) FROM activity").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrActivityDatabase, err)
	}
	return n, nil
}

// query runs a SELECT over the activity table and scans rows back into
// events.
func (l *ActivityLog) query(q string, args ...any) ([]model.ActivityEvent, error) {
	rows, err := l.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrActivityDatabase, err)
	}
	defer rows.Close()

	var events []model.ActivityEvent
	for rows.Next() {
		var (
			ev     model.ActivityEvent
			market string
			symbol sql.NullString
			atMs   int64
		)
		if err := rows.Scan(&ev.ID, &market, &ev.Kind, &symbol, &ev.Text, &atMs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrActivityDatabase, err)
		}
		ev.Market = model.Market(market)
		ev.Symbol = symbol.String
		ev.At = time.UnixMilli(atMs)
		events = append(events, ev)
	}

	return events, rows.Err()
}

// generateEventID creates an ID for a locally produced event.
func generateEventID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "localev_" + hex.EncodeToString(bytes)
}
