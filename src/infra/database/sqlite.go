package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/contre95/autoimport/src/features/importing"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Fixed width so that text order is time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SqliteHistory is a SQLite implementation of the importing.History interface.
type SqliteHistory struct {
	db *sql.DB
}

// NewSqliteHistory opens (or creates) the history database at path.
func NewSqliteHistory(path string) (*SqliteHistory, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SqliteHistory{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS resolutions (
			id TEXT PRIMARY KEY,
			path TEXT NOT NULL,
			action TEXT NOT NULL,
			success BOOLEAN NOT NULL DEFAULT FALSE,
			detail TEXT,
			resolved_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_resolutions_resolved_at ON resolutions(resolved_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Record stores the outcome of an import or discard.
func (s *SqliteHistory) Record(ctx context.Context, r importing.Resolution) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.ResolvedAt.IsZero() {
		r.ResolvedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO resolutions (id, path, action, success, detail, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.ID, r.Path, string(r.Action), r.Success, r.Detail, r.ResolvedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to record resolution for %s: %w", r.Path, err)
	}
	return nil
}

// Recent returns up to limit resolutions, newest first.
func (s *SqliteHistory) Recent(ctx context.Context, limit int) ([]importing.Resolution, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, path, action, success, detail, resolved_at
		FROM resolutions
		ORDER BY resolved_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query resolutions: %w", err)
	}
	defer rows.Close()

	resolutions := make([]importing.Resolution, 0, limit)
	for rows.Next() {
		var r importing.Resolution
		var action, resolvedAt string
		var detail sql.NullString
		if err := rows.Scan(&r.ID, &r.Path, &action, &r.Success, &detail, &resolvedAt); err != nil {
			return nil, fmt.Errorf("failed to scan resolution: %w", err)
		}
		r.Action = importing.Action(action)
		r.Detail = detail.String
		r.ResolvedAt, _ = time.Parse(timeLayout, resolvedAt)
		resolutions = append(resolutions, r)
	}
	return resolutions, rows.Err()
}

// Close closes the underlying database.
func (s *SqliteHistory) Close() error {
	return s.db.Close()
}
