// Package db provides the durable local store backing the upload queue.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps the sql.DB with fieldsync-specific configuration.
type DB struct {
	*sql.DB
}

// Open opens the local SQLite database. The database is opened with:
// - WAL mode for concurrent reads/writes
// - foreign key constraints enabled
// - a single writer connection (SQLite doesn't support multiple writers)
//
// The pending_uploads schema is created on first open, which is what
// makes queued uploads survive process restarts.
func Open(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "fieldsync.db")

	// modernc.org/sqlite is pure Go, no CGO
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := initSchema(db); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &DB{db}, nil
}

// initSchema creates the pending_uploads table if it doesn't exist.
func initSchema(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS pending_uploads (
		id TEXT PRIMARY KEY CHECK(length(id) = 36),
		parent_id TEXT NOT NULL CHECK(length(parent_id) > 0),
		payload BLOB NOT NULL,
		content_type TEXT NOT NULL DEFAULT '',
		retry_count INTEGER NOT NULL DEFAULT 0 CHECK(retry_count >= 0),
		last_error TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL CHECK(created_at > 0),
		updated_at INTEGER NOT NULL CHECK(updated_at > 0)
	);
	CREATE INDEX IF NOT EXISTS idx_pending_uploads_parent ON pending_uploads(parent_id);
	`
	_, err := db.Exec(query)
	return err
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}
