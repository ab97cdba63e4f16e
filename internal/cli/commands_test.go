package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/alexander-akhmetov/psoc/internal/catalog"
	"github.com/alexander-akhmetov/psoc/internal/history"
	"github.com/alexander-akhmetov/psoc/internal/session"
)

func TestProtocolsText(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "", "--catalog", env.catalog, "protocols")
	require.NoError(t, err)

	assert.Contains(t, out, "Catalog: "+env.catalog+" (2 levels)")
	assert.Contains(t, out, "Level 1  Alert & Monitor")
	assert.Contains(t, out, "escalate: 4 hours")
	assert.Contains(t, out, "Level 2  Investigate & Contain")
}

func TestProtocolsJSONDefaultCatalog(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "", "protocols", "--json")
	require.NoError(t, err)
	require.True(t, gjson.Valid(out))

	assert.Equal(t, int64(5), gjson.Get(out, "protocols.#").Int())
	assert.Equal(t, "Alert & Monitor", gjson.Get(out, "protocols.0.name").String())
	assert.Equal(t, "success", gjson.Get(out, "protocols.0.color").String())
	assert.Equal(t, "Acknowledge the alert and open a tracking ticket", gjson.Get(out, "protocols.0.actions.0").String())
	assert.Equal(t, "critical", gjson.Get(out, "protocols.4.color").String())
}

func TestCatalogJSONEmptyLists(t *testing.T) {
	cat, err := catalog.Parse([]byte(testCatalogYAML))
	require.NoError(t, err)

	out := catalogJSON(cat)
	assert.True(t, gjson.GetBytes(out, "protocols.1.teams").IsArray())
	assert.Equal(t, int64(0), gjson.GetBytes(out, "protocols.1.teams.#").Int())
	assert.False(t, gjson.GetBytes(out, "protocols.1.escalation_time").Exists())
}

func TestGuide(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "", "--catalog", env.catalog, "guide")
	require.NoError(t, err)

	assert.Contains(t, out, "# Response Protocols")
	assert.Contains(t, out, "## Level 1: Alert & Monitor")
	assert.Contains(t, out, "1. Acknowledge")
	assert.Contains(t, out, "**Teams:** SOC")
	assert.Contains(t, out, "**Escalation:** 4 hours")
}

func seedHistory(t *testing.T, env *testEnv, n int) {
	t.Helper()
	ctx := context.Background()
	store, err := history.Open(ctx, filepath.Join(env.stateDir, "history.db"))
	require.NoError(t, err)
	defer store.Close()

	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	for i := range n {
		start := base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, store.Record(ctx, history.Record{
			Level:       i + 1,
			Name:        "Level name",
			TriggeredBy: "Manual",
			Actor:       "alice",
			StartedAt:   start,
			CompletedAt: start.Add(time.Hour),
		}))
	}
}

func TestHistoryTable(t *testing.T) {
	env := newTestEnv(t)
	seedHistory(t, env, 3)

	out, err := env.run(t, "", "history", "--limit", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "LEVEL")
	assert.Contains(t, out, "1h 0m")
	assert.Contains(t, out, "alice")
	assert.NotContains(t, out, "Note: history recording is disabled")

	lines := bytes.Count([]byte(out), []byte("Level name"))
	assert.Equal(t, 2, lines)
}

func TestHistoryJSONAndClear(t *testing.T) {
	env := newTestEnv(t)
	seedHistory(t, env, 2)

	out, err := env.run(t, "", "history", "--json")
	require.NoError(t, err)
	assert.Equal(t, int64(2), gjson.Get(out, "records.#").Int())
	assert.Equal(t, int64(2), gjson.Get(out, "records.0.level").Int())
	assert.Equal(t, "1h 0m", gjson.Get(out, "records.0.duration").String())
	assert.Equal(t, int64(3600), gjson.Get(out, "records.0.duration_seconds").Int())

	out, err = env.run(t, "", "history", "--clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared 2 history records.")

	out, err = env.run(t, "", "--no-history", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "Note: history recording is disabled")
	assert.Contains(t, out, "No completed protocols recorded.")
}

func TestLogs(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "", "logs")
	require.NoError(t, err)
	assert.Contains(t, out, "No logs found.")

	out, err = env.run(t, "", "logs", "-l")
	require.NoError(t, err)
	assert.Contains(t, out, "No log files found.")

	logsDir := filepath.Join(env.stateDir, "logs")
	require.NoError(t, os.MkdirAll(logsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(logsDir, "20260129-120000-ALERT-1.log"), []byte("first\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(logsDir, "20260129-130000-Manual.log"), []byte("second\n"), 0o600))

	out, err = env.run(t, "", "logs")
	require.NoError(t, err)
	assert.Contains(t, out, "Log for Manual")
	assert.Contains(t, out, "second")

	out, err = env.run(t, "", "logs", "alert")
	require.NoError(t, err)
	assert.Contains(t, out, "first")

	out, err = env.run(t, "", "logs", "--list", "--recent", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Recent log files (showing 1)")
	assert.Contains(t, out, "Manual")
	assert.NotContains(t, out, "ALERT-1")

	out, err = env.run(t, "", "logs", "nope")
	require.NoError(t, err)
	assert.Contains(t, out, "No logs found for trigger: nope")
}

func TestStatusJSONActive(t *testing.T) {
	cat, err := catalog.Parse([]byte(testCatalogYAML))
	require.NoError(t, err)
	sess, err := session.New(session.Options{Catalog: cat, Actor: "alice"})
	require.NoError(t, err)
	require.NoError(t, sess.Start(1))

	out := statusJSON(sess)
	assert.Equal(t, int64(1), gjson.GetBytes(out, "active.level").Int())
	assert.Equal(t, "Acknowledge", gjson.GetBytes(out, "active.action").String())
	assert.Equal(t, "Alert & Monitor", gjson.GetBytes(out, "active.name").String())
	assert.Equal(t, "active", gjson.GetBytes(out, "levels.0.state").String())
	assert.Equal(t, "locked", gjson.GetBytes(out, "levels.1.state").String())
	assert.NotEmpty(t, gjson.GetBytes(out, "active.execution_id").String())
}

func TestConsoleTTYColors(t *testing.T) {
	var buf bytes.Buffer
	c := newConsole(&buf, true, false)
	assert.Equal(t, "\033[38;5;196mx\033[0m", c.color(colorRed, "x"))
	assert.Equal(t, "\033[2mx\033[0m", c.dim("x"))

	c.prompt()
	assert.Contains(t, buf.String(), "psoc> ")

	plain := newConsole(&buf, false, false)
	assert.Equal(t, "x", plain.color(colorRed, "x"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

func TestTerminalWidthFallback(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, 80, terminalWidth(&buf, 80))

	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, 72, terminalWidth(f, 72), "regular file is not a terminal")
}
