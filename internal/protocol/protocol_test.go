package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecutionStatusIsValid(t *testing.T) {
	tests := []struct {
		status ExecutionStatus
		want   bool
	}{
		{StatusInProgress, true},
		{StatusCompleted, true},
		{StatusEscalated, true},
		{"", false},
		{"done", false},
	}
	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.status.IsValid())
		})
	}
}

func TestExecutionStatusString(t *testing.T) {
	assert.Equal(t, "in_progress", StatusInProgress.String())
	assert.Equal(t, "escalated", StatusEscalated.String())
}

func TestLevelStateLabel(t *testing.T) {
	assert.Equal(t, "Locked", LevelLocked.Label())
	assert.Equal(t, "Start", LevelStartable.Label())
	assert.Equal(t, "In Progress", LevelActive.Label())
	assert.Equal(t, "Completed", LevelCompleted.Label())
	assert.Equal(t, "weird", LevelState("weird").Label())
}
