// Package history keeps a SQLite log of repair runs, their iterations and
// the events they emitted.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection with run history operations
type DB struct {
	conn *sql.DB
}

// Open creates or opens a SQLite database at the given path.
// It enables WAL mode, foreign keys, and runs migrations.
func Open(path string) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer; the bus handler and the final session write share it
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
-- Runs table: one row per repair run
CREATE TABLE IF NOT EXISTS runs (
    id              TEXT PRIMARY KEY,
    spec_path       TEXT NOT NULL,
    validator       TEXT,
    oracle          TEXT,
    outcome         TEXT NOT NULL,
    attempts        INTEGER NOT NULL DEFAULT 0,
    max_iterations  INTEGER NOT NULL DEFAULT 0,
    changed         INTEGER NOT NULL DEFAULT 0,
    started_at      DATETIME NOT NULL,
    finished_at     DATETIME,
    error           TEXT
);

-- Iterations table: one validate/correct round per row
CREATE TABLE IF NOT EXISTS iterations (
    run_id          TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    number          INTEGER NOT NULL,
    lint_kind       TEXT NOT NULL,
    exit_code       INTEGER NOT NULL,
    errors          INTEGER NOT NULL,
    lint_ms         INTEGER NOT NULL,
    oracle_status   TEXT,
    oracle_attempts INTEGER NOT NULL DEFAULT 0,
    oracle_ms       INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (run_id, number)
);

-- Events table: event log for replay and debugging
CREATE TABLE IF NOT EXISTS events (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id          TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    sequence        INTEGER NOT NULL,
    event_type      TEXT NOT NULL,
    iteration       INTEGER,
    payload_json    TEXT,
    error           TEXT,
    created_at      DATETIME NOT NULL,
    UNIQUE(run_id, sequence)
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_runs_spec ON runs(spec_path);
CREATE INDEX IF NOT EXISTS idx_events_run_id ON events(run_id, sequence);
`

	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}
