package history

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "state", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(context.Background(), "  ")
	require.Error(t, err)
}

func TestRecordAndList(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.Record(ctx, Record{
		ID: "a", Level: 1, Name: "Alert & Monitor", TriggeredBy: "Manual", Actor: "alice",
		StartedAt: base, CompletedAt: base.Add(time.Hour),
	}))
	require.NoError(t, s.Record(ctx, Record{
		Level: 2, Name: "Investigate & Contain", TriggeredBy: "Manual", Actor: "bob",
		StartedAt: base.Add(time.Hour), CompletedAt: base.Add(3 * time.Hour),
	}))

	got, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, 2, got[0].Level, "most recent first")
	assert.NotEmpty(t, got[0].ID, "generated id")
	assert.Equal(t, "bob", got[0].Actor)
	assert.Equal(t, "a", got[1].ID)
	assert.True(t, base.Equal(got[1].StartedAt))
	assert.Equal(t, time.Hour, got[1].Duration())

	limited, err := s.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, 2, limited[0].Level)
}

func TestListOrdersWithinSameSecond(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	base := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)

	for _, tc := range []struct {
		id        string
		completed time.Time
	}{
		{"whole", base},
		{"half", base.Add(500 * time.Millisecond)},
		{"later", base.Add(510 * time.Millisecond)},
	} {
		require.NoError(t, s.Record(ctx, Record{
			ID: tc.id, Level: 1, Name: "Alert & Monitor",
			StartedAt: base.Add(-time.Minute), CompletedAt: tc.completed,
		}))
	}

	recs, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "later", recs[0].ID)
	assert.Equal(t, "half", recs[1].ID)
	assert.Equal(t, "whole", recs[2].ID)
	assert.True(t, recs[1].CompletedAt.Equal(base.Add(500*time.Millisecond)))
}

func TestRecordRejectsBadLevel(t *testing.T) {
	s := openTestStore(t)
	err := s.Record(context.Background(), Record{Level: 0})
	require.Error(t, err)
}

func TestRecordDuplicateID(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	now := time.Now()
	r := Record{ID: "dup", Level: 1, Name: "x", StartedAt: now, CompletedAt: now}
	require.NoError(t, s.Record(ctx, r))
	require.Error(t, s.Record(ctx, r))
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	now := time.Now()
	for i := 1; i <= 3; i++ {
		require.NoError(t, s.Record(ctx, Record{Level: i, Name: "x", StartedAt: now, CompletedAt: now}))
	}

	n, err := s.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	got, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReopenKeepsRecords(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")
	now := time.Now()

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Record(ctx, Record{Level: 1, Name: "x", StartedAt: now, CompletedAt: now}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCloseNil(t *testing.T) {
	var s *Store
	assert.NoError(t, s.Close())
}

func TestDurationNegative(t *testing.T) {
	now := time.Now()
	r := Record{StartedAt: now, CompletedAt: now.Add(-time.Minute)}
	assert.Equal(t, time.Duration(0), r.Duration())
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{42 * time.Second, "42s"},
		{5*time.Minute + 12*time.Second, "5m 12s"},
		{time.Hour, "1h 0m"},
		{2*time.Hour + 30*time.Minute + 59*time.Second, "2h 30m"},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatDuration(tc.in))
		})
	}
}

func TestExtractUpMigration(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"no markers", "CREATE TABLE t (x);", "CREATE TABLE t (x);"},
		{"up only", "-- +migrate Up\nCREATE TABLE t (x);", "\nCREATE TABLE t (x);"},
		{"up and down", "-- +migrate Up\nA;\n-- +migrate Down\nB;", "\nA;\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, extractUpMigration(tc.in))
		})
	}
}

func TestApplyMigrationsOnce(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	fsys := fstest.MapFS{
		"0001_a.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE extra (x INTEGER);\n")},
		"README.md":  {Data: []byte("ignored")},
	}
	require.NoError(t, applyMigrations(ctx, s.sqlDB, fsys))
	require.NoError(t, applyMigrations(ctx, s.sqlDB, fsys), "second run is a no-op")

	var n int
	require.NoError(t, s.sqlDB.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM schema_migrations WHERE name = ?", "0001_a.sql").Scan(&n))
	assert.Equal(t, 1, n)
}
