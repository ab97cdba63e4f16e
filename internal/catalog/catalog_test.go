package catalog

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexander-akhmetov/psoc/internal/domain"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 5, c.Len())
	assert.Equal(t, 5, c.MaxLevel())

	first, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, "Alert & Monitor", first.Name)
	assert.NotEmpty(t, first.Actions)

	last, ok := c.Get(5)
	require.True(t, ok)
	assert.Equal(t, "Critical Emergency", last.Name)
	assert.Equal(t, "Immediate", last.EscalationTime)
	assert.Equal(t, "critical", last.Color)
}

func TestGetOutOfRange(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	for _, level := range []int{-1, 0, 6, 100} {
		_, ok := c.Get(level)
		assert.False(t, ok, "level %d", level)
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
protocols:
  - level: 1
    name: One
    actions: [a, b]
  - level: 2
    name: Two
    actions: [c]
    teams: [Blue]
    escalation_time: 1 hour
`)
	c, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	two, ok := c.Get(2)
	require.True(t, ok)
	assert.Equal(t, []string{"c"}, two.Actions)
	assert.Equal(t, []string{"Blue"}, two.Teams)
	assert.Equal(t, "1 hour", two.EscalationTime)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		defs    []domain.ProtocolDefinition
		wantErr string
	}{
		{
			name:    "empty",
			defs:    nil,
			wantErr: "no protocol levels",
		},
		{
			name:    "does not start at one",
			defs:    []domain.ProtocolDefinition{{Level: 2, Name: "x", Actions: []string{"a"}}},
			wantErr: "entry 1 has level 2, want 1",
		},
		{
			name: "gap",
			defs: []domain.ProtocolDefinition{
				{Level: 1, Name: "x", Actions: []string{"a"}},
				{Level: 3, Name: "y", Actions: []string{"a"}},
			},
			wantErr: "entry 2 has level 3, want 2",
		},
		{
			name: "duplicate",
			defs: []domain.ProtocolDefinition{
				{Level: 1, Name: "x", Actions: []string{"a"}},
				{Level: 1, Name: "y", Actions: []string{"a"}},
			},
			wantErr: "entry 2 has level 1, want 2",
		},
		{
			name:    "missing name",
			defs:    []domain.ProtocolDefinition{{Level: 1, Name: "  ", Actions: []string{"a"}}},
			wantErr: "level 1 has no name",
		},
		{
			name:    "no actions",
			defs:    []domain.ProtocolDefinition{{Level: 1, Name: "x"}},
			wantErr: "level 1 has no actions",
		},
		{
			name:    "blank action",
			defs:    []domain.ProtocolDefinition{{Level: 1, Name: "x", Actions: []string{"a", " "}}},
			wantErr: "level 1 action 2 is blank",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.defs)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestNewCopiesInput(t *testing.T) {
	defs := []domain.ProtocolDefinition{{Level: 1, Name: "x", Actions: []string{"a"}}}
	c, err := New(defs)
	require.NoError(t, err)

	defs[0].Actions[0] = "mutated"
	got, _ := c.Get(1)
	assert.Equal(t, "a", got.Actions[0])

	levels := c.Levels()
	levels[0].Name = "changed"
	got, _ = c.Get(1)
	assert.Equal(t, "x", got.Name)
}

func TestLoad(t *testing.T) {
	t.Run("empty path loads default", func(t *testing.T) {
		c, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 5, c.Len())
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.yaml")
		require.NoError(t, os.WriteFile(path, []byte("protocols:\n  - level: 1\n    name: Solo\n    actions: [go]\n"), 0o600))

		c, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 1, c.MaxLevel())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("invalid file names path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("protocols: []\n"), 0o600))

		_, err := Load(path)
		require.ErrorIs(t, err, ErrInvalid)
		assert.Contains(t, err.Error(), path)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("protocols: [\n"), 0o600))

		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse catalog")
	})
}

func TestMarkdown(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	md := c.Markdown()
	assert.Contains(t, md, "# Response Protocols")
	assert.Contains(t, md, "## Level 1: Alert & Monitor")
	assert.Contains(t, md, "## Level 5: Critical Emergency")
	assert.Contains(t, md, "**Escalation:** Immediate")
	assert.Contains(t, md, "1. Acknowledge the alert and open a tracking ticket")
}
