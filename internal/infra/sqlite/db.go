// Package sqlite persists the durable parts of the reputation engine: the
// append-only flag log and periodic reputation snapshots. Everything else
// (the graph, caches, global metrics) is rebuilt in memory.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the sqlite handle.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies migrations.
// Use ":memory:" for tests.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// modernc sqlite serializes writes itself; a single connection avoids
	// SQLITE_BUSY on concurrent writers.
	conn.SetMaxOpenConns(1)
	if _, err := conn.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}

	db := &DB{db: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the underlying handle.
func (db *DB) Close() error { return db.db.Close() }

// Migrations returns the schema statements. Each string is a single SQL
// statement (SQLite executes one at a time).
func Migrations() []string {
	return []string{
		// Flag records: the append-only community flag log.
		`CREATE TABLE IF NOT EXISTS flag_records (
			id                  TEXT PRIMARY KEY,
			reporter            TEXT NOT NULL,
			target              TEXT NOT NULL,
			flag_type           TEXT NOT NULL DEFAULT '',
			confidence          REAL NOT NULL DEFAULT 0,
			reporter_reputation REAL NOT NULL DEFAULT 0,
			description         TEXT NOT NULL DEFAULT '',
			status              TEXT NOT NULL DEFAULT 'open',
			filed_at            TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_flags_target ON flag_records(target)`,
		`CREATE INDEX IF NOT EXISTS idx_flags_reporter ON flag_records(reporter)`,
		`CREATE INDEX IF NOT EXISTS idx_flags_filed ON flag_records(filed_at)`,

		// Reputation snapshots: one row per actor per computation.
		`CREATE TABLE IF NOT EXISTS reputation_snapshots (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			actor            TEXT NOT NULL,
			final_reputation REAL NOT NULL,
			overall_risk     REAL NOT NULL,
			risk_level       TEXT NOT NULL,
			sybil_penalty    REAL NOT NULL,
			confidence       REAL NOT NULL,
			result_json      TEXT NOT NULL,
			computed_at      TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_actor ON reputation_snapshots(actor, computed_at)`,
	}
}

func (db *DB) migrate() error {
	for _, stmt := range Migrations() {
		if _, err := db.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
