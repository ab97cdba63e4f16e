// Package history persists completed protocol executions in a local SQLite
// database so past responses can be reviewed across runs.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/alexander-akhmetov/psoc/internal/history/migrations"
)

// timeFormat is fixed width so text order on the time columns matches
// chronological order.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Record is one completed level.
type Record struct {
	ID          string
	Level       int
	Name        string
	TriggeredBy string
	Actor       string
	StartedAt   time.Time
	CompletedAt time.Time
}

// Duration is the wall time between start and completion.
func (r Record) Duration() time.Duration {
	if r.CompletedAt.Before(r.StartedAt) {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// FormatDuration renders d as "1h 0m", "5m 12s" or "42s".
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	s := int((d % time.Minute) / time.Second)
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// Store is a SQLite-backed history store.
type Store struct {
	sqlDB *sql.DB
}

// Open opens (or creates) the history database at path and applies
// migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	dsn := path + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping history database: %w", err)
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate history database: %w", err)
	}

	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Record inserts r. An empty ID is replaced with a new UUID.
func (s *Store) Record(ctx context.Context, r Record) error {
	if r.Level < 1 {
		return fmt.Errorf("record level %d: level must be positive", r.Level)
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO executions (id, level, name, triggered_by, actor, started_at, completed_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Level, r.Name, r.TriggeredBy, r.Actor,
		r.StartedAt.UTC().Format(timeFormat),
		r.CompletedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("insert execution %s: %w", r.ID, err)
	}
	return nil
}

// List returns up to limit records, most recently completed first.
// A non-positive limit returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	query := `
SELECT id, level, name, triggered_by, actor, started_at, completed_at
FROM executions
ORDER BY completed_at DESC, level DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query executions: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var started, completed string
		if err := rows.Scan(&r.ID, &r.Level, &r.Name, &r.TriggeredBy, &r.Actor, &started, &completed); err != nil {
			return nil, fmt.Errorf("scan execution: %w", err)
		}
		if r.StartedAt, err = time.Parse(timeFormat, started); err != nil {
			return nil, fmt.Errorf("parse started_at for %s: %w", r.ID, err)
		}
		if r.CompletedAt, err = time.Parse(timeFormat, completed); err != nil {
			return nil, fmt.Errorf("parse completed_at for %s: %w", r.ID, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate executions: %w", err)
	}
	return out, nil
}

// Clear deletes every record and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.sqlDB.ExecContext(ctx, "DELETE FROM executions")
	if err != nil {
		return 0, fmt.Errorf("clear executions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear executions: %w", err)
	}
	return n, nil
}
