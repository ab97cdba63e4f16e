package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexander-akhmetov/psoc/internal/protocol"
)

func testDefinition() ProtocolDefinition {
	return ProtocolDefinition{
		Level:   2,
		Name:    "Investigate & Contain",
		Actions: []string{"Collect logs", "Isolate host", "Notify lead"},
	}
}

func TestNewExecution(t *testing.T) {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	exec := NewExecution("exec-1", testDefinition(), started)

	assert.Equal(t, "exec-1", exec.ID)
	assert.Equal(t, 2, exec.Level)
	assert.Equal(t, "Investigate & Contain", exec.Name)
	assert.Equal(t, started, exec.StartedAt)
	assert.Equal(t, 0, exec.CurrentStepIndex)
	assert.Equal(t, protocol.StatusInProgress, exec.Status)
	require.Len(t, exec.Steps, 3)
	for i, s := range exec.Steps {
		assert.Equal(t, i, s.Index)
		assert.False(t, s.Completed)
		assert.Nil(t, s.CompletedAt)
		assert.Empty(t, s.CompletedBy)
	}
	assert.Equal(t, "Isolate host", exec.Steps[1].Action)
}

func TestActiveExecution_CurrentStep(t *testing.T) {
	tests := []struct {
		name  string
		index int
		want  string
	}{
		{"first", 0, "Collect logs"},
		{"last", 2, "Notify lead"},
		{"negative", -1, ""},
		{"past end", 3, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			exec := NewExecution("x", testDefinition(), time.Time{})
			exec.CurrentStepIndex = tc.index
			got := exec.CurrentStep()
			if tc.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tc.want, got.Action)
		})
	}
}

func TestActiveExecution_IsLastStep(t *testing.T) {
	exec := NewExecution("x", testDefinition(), time.Time{})
	assert.False(t, exec.IsLastStep())
	exec.CurrentStepIndex = 2
	assert.True(t, exec.IsLastStep())
}

func TestActiveExecution_CloneIsDeep(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC)
	exec := NewExecution("x", testDefinition(), time.Time{})
	exec.Steps[0].Completed = true
	exec.Steps[0].CompletedAt = &at
	exec.CurrentStepIndex = 1

	c := exec.Clone()
	c.Steps[1].Completed = true
	*c.Steps[0].CompletedAt = at.Add(time.Hour)

	assert.False(t, exec.Steps[1].Completed)
	assert.Equal(t, at, *exec.Steps[0].CompletedAt)
	assert.Equal(t, 1, exec.CompletedSteps())
	assert.Equal(t, 2, c.CompletedSteps())

	var nilExec *ActiveExecution
	assert.Nil(t, nilExec.Clone())
}

func TestProgressionState(t *testing.T) {
	s := NewProgressionState()
	assert.Nil(t, s.Active)
	assert.Empty(t, s.CompletedLevels())

	s.Completed[3] = struct{}{}
	s.Completed[1] = struct{}{}
	s.Active = NewExecution("x", testDefinition(), time.Time{})

	assert.Equal(t, []int{1, 3}, s.CompletedLevels())
	assert.True(t, s.IsCompleted(1))
	assert.False(t, s.IsCompleted(2))
	assert.True(t, s.IsActive(2))
	assert.False(t, s.IsActive(1))

	c := s.Clone()
	delete(c.Completed, 1)
	c.Active.CurrentStepIndex = 2

	assert.True(t, s.IsCompleted(1))
	assert.Equal(t, 0, s.Active.CurrentStepIndex)
}
