// Package store database for the history of displayed images
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const defaultHistoryLimit = 100

type Database struct {
	db *sql.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	// Create directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	database := &Database{db: db}

	// Create table if it doesn't exist
	if err := database.createTable(); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return database, nil
}

func (d *Database) createTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS history (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		path       TEXT NOT NULL,
		identifier TEXT NOT NULL,
		shown_at   INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_history_shown_at ON history(shown_at);
	`
	_, err := d.db.Exec(query)
	return err
}

func (d *Database) InsertHistory(ctx context.Context, entry HistoryEntry) error {
	query := `INSERT INTO history (path, identifier, shown_at) VALUES (?, ?, ?)`
	_, err := d.db.ExecContext(ctx, query, entry.Path, entry.Identifier, entry.ShownAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert history: %w", err)
	}
	return nil
}

// GetHistory returns the most recently shown images first. A non-positive limit uses the default.
func (d *Database) GetHistory(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	query := `
		SELECT path, identifier, shown_at
		FROM history
		ORDER BY shown_at DESC, id DESC
		LIMIT ?
	`
	rows, err := d.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var shownAt int64
		if err := rows.Scan(&e.Path, &e.Identifier, &shownAt); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		e.ShownAt = time.UnixMilli(shownAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return entries, nil
}

func (d *Database) GetHistoryCount(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM history`
	var count int
	err := d.db.QueryRowContext(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get history count: %w", err)
	}
	return count, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}
