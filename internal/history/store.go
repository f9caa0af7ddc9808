// Package history keeps a SQLite log of rendered charts.
//
// Only what was rendered is recorded (who, which period and shape, how many
// covers were missing, how long it took). Chart images are never stored.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store is a persistent log of rendered charts backed by SQLite
type Store struct {
	db *sql.DB
}

// Entry is one rendered chart
type Entry struct {
	ID           string
	User         string
	Period       string
	Shape        string
	Albums       int
	Placeholders int
	Bytes        int
	Duration     time.Duration
	CreatedAt    time.Time
}

// Open opens (or creates) the history database at path
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps :memory: databases consistent
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS charts (
			id TEXT PRIMARY KEY,
			user TEXT NOT NULL,
			period TEXT NOT NULL,
			shape TEXT NOT NULL,
			albums INTEGER NOT NULL,
			placeholders INTEGER NOT NULL,
			bytes INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_charts_created_at ON charts(created_at);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Add records a chart and returns its ID. A zero CreatedAt means now.
func (s *Store) Add(ctx context.Context, e Entry) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO charts (id, user, period, shape, albums, placeholders, bytes, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		e.ID,
		e.User,
		e.Period,
		e.Shape,
		e.Albums,
		e.Placeholders,
		e.Bytes,
		e.Duration.Milliseconds(),
		e.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert chart: %w", err)
	}

	return e.ID, nil
}

// Recent returns up to limit charts, newest first. limit <= 0 returns all.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT id, user, period, shape, albums, placeholders, bytes, duration_ms, created_at
		FROM charts
		ORDER BY created_at DESC, rowid DESC
	`

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query charts: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var durationMs int64
		var createdMs int64

		err := rows.Scan(
			&e.ID,
			&e.User,
			&e.Period,
			&e.Shape,
			&e.Albums,
			&e.Placeholders,
			&e.Bytes,
			&durationMs,
			&createdMs,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chart: %w", err)
		}

		e.Duration = time.Duration(durationMs) * time.Millisecond
		e.CreatedAt = time.UnixMilli(createdMs)

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating charts: %w", err)
	}

	return entries, nil
}

// Cleanup removes charts older than maxAge and returns how many were deleted
func (s *Store) Cleanup(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).UnixMilli()

	result, err := s.db.ExecContext(ctx, "DELETE FROM charts WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old charts: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}

// Count returns the number of recorded charts
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM charts").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count charts: %w", err)
	}
	return count, nil
}
