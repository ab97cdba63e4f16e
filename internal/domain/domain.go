// Package domain defines the shared model types used across psoc:
// protocol definitions, steps, the active execution and the progression state.
package domain

import (
	"slices"
	"time"

	"github.com/alexander-akhmetov/psoc/internal/protocol"
)

// ProtocolDefinition is one level of the response catalog. It is immutable
// once loaded.
type ProtocolDefinition struct {
	Level          int      `yaml:"level" json:"level"`
	Name           string   `yaml:"name" json:"name"`
	Description    string   `yaml:"description" json:"description"`
	Actions        []string `yaml:"actions" json:"actions"`
	Teams          []string `yaml:"teams" json:"teams"`
	EscalationTime string   `yaml:"escalation_time" json:"escalation_time"`
	// Color is a display tone (see protocol.Tone*).
	Color string `yaml:"color,omitempty" json:"color,omitempty"`
}

// ProtocolStep is a single required action inside an active execution.
type ProtocolStep struct {
	Index       int
	Action      string
	Completed   bool
	CompletedAt *time.Time
	CompletedBy string
}

// ActiveExecution is the one in-progress run of a level's steps.
type ActiveExecution struct {
	// ID correlates the execution across the audit log and history.
	ID               string
	Level            int
	// Name is the level name as it was when the execution started.
	Name             string
	StartedAt        time.Time
	Steps            []ProtocolStep
	CurrentStepIndex int
	Status           protocol.ExecutionStatus
}

// NewExecution builds a fresh execution for def with every step pending.
func NewExecution(id string, def ProtocolDefinition, startedAt time.Time) *ActiveExecution {
	steps := make([]ProtocolStep, len(def.Actions))
	for i, action := range def.Actions {
		steps[i] = ProtocolStep{Index: i, Action: action}
	}
	return &ActiveExecution{
		ID:        id,
		Level:     def.Level,
		Name:      def.Name,
		StartedAt: startedAt,
		Steps:     steps,
		Status:    protocol.StatusInProgress,
	}
}

// CurrentStep returns the step awaiting completion, or nil if the index is
// out of range.
func (a *ActiveExecution) CurrentStep() *ProtocolStep {
	if a.CurrentStepIndex < 0 || a.CurrentStepIndex >= len(a.Steps) {
		return nil
	}
	return &a.Steps[a.CurrentStepIndex]
}

// IsLastStep reports whether the current step is the final one.
func (a *ActiveExecution) IsLastStep() bool {
	return a.CurrentStepIndex == len(a.Steps)-1
}

// CompletedSteps returns how many steps are marked complete.
func (a *ActiveExecution) CompletedSteps() int {
	n := 0
	for _, s := range a.Steps {
		if s.Completed {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the execution.
func (a *ActiveExecution) Clone() *ActiveExecution {
	if a == nil {
		return nil
	}
	c := *a
	c.Steps = make([]ProtocolStep, len(a.Steps))
	for i, s := range a.Steps {
		if s.CompletedAt != nil {
			at := *s.CompletedAt
			s.CompletedAt = &at
		}
		c.Steps[i] = s
	}
	return &c
}

// ProgressionState is the session-scoped progress through the catalog.
type ProgressionState struct {
	Active    *ActiveExecution
	Completed map[int]struct{}
}

// NewProgressionState returns the initial state: nothing active, nothing completed.
func NewProgressionState() *ProgressionState {
	return &ProgressionState{Completed: make(map[int]struct{})}
}

// IsCompleted reports whether level has been fully completed since the last reset.
func (s *ProgressionState) IsCompleted(level int) bool {
	_, ok := s.Completed[level]
	return ok
}

// IsActive reports whether level is the active execution.
func (s *ProgressionState) IsActive(level int) bool {
	return s.Active != nil && s.Active.Level == level
}

// CompletedLevels returns the completed levels in ascending order.
func (s *ProgressionState) CompletedLevels() []int {
	levels := make([]int, 0, len(s.Completed))
	for l := range s.Completed {
		levels = append(levels, l)
	}
	slices.Sort(levels)
	return levels
}

// Clone returns a deep copy suitable for handing to presentation code.
func (s *ProgressionState) Clone() *ProgressionState {
	c := &ProgressionState{
		Active:    s.Active.Clone(),
		Completed: make(map[int]struct{}, len(s.Completed)),
	}
	for l := range s.Completed {
		c.Completed[l] = struct{}{}
	}
	return c
}
