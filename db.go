// db.go
//
// Database helpers for the suggestions service.
// Responsibilities:
//   - Opening the SQLite database with safe defaults (WAL, busy
//     timeout, foreign keys).
//   - Bootstrapping the schema (idempotent CREATE TABLE IF NOT EXISTS).

package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// openDB opens (and creates if missing) a SQLite database file.
func openDB(dsn string) (*sql.DB, error) {
	// Ensure directory exists for ./data/app.db, etc.
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS daily_scores (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL,
    game_id    TEXT NOT NULL,
    date       TEXT NOT NULL,
    score      INTEGER NOT NULL,
    created_at TEXT NOT NULL,
    UNIQUE (user_id, game_id, date)
);

CREATE INDEX IF NOT EXISTS idx_daily_scores_date ON daily_scores (date, score);
`

// ensureSchema applies the schema bootstrap.
func ensureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("bootstrap schema: %w", err)
	}
	return nil
}
