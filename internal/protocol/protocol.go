// Package protocol defines the cross-package vocabulary for psoc: execution
// status values, per-level states and the level numbering base.
package protocol

// ExecutionStatus is the lifecycle status of an active protocol execution.
type ExecutionStatus string

const (
	StatusInProgress ExecutionStatus = "in_progress"
	// StatusCompleted is only observed transiently; a finished execution is
	// discarded as soon as its last step completes.
	StatusCompleted ExecutionStatus = "completed"
	// StatusEscalated is reserved. No transition sets it.
	StatusEscalated ExecutionStatus = "escalated"
)

func (s ExecutionStatus) String() string { return string(s) }

// IsValid reports whether s is a recognised status value.
func (s ExecutionStatus) IsValid() bool {
	switch s {
	case StatusInProgress, StatusCompleted, StatusEscalated:
		return true
	default:
		return false
	}
}

// LevelState is the rendered state of a single catalog level.
type LevelState string

const (
	LevelLocked    LevelState = "locked"
	LevelStartable LevelState = "startable"
	LevelActive    LevelState = "active"
	LevelCompleted LevelState = "completed"
)

func (s LevelState) String() string { return string(s) }

// Label returns the badge text shown next to a level.
func (s LevelState) Label() string {
	switch s {
	case LevelLocked:
		return "Locked"
	case LevelStartable:
		return "Start"
	case LevelActive:
		return "In Progress"
	case LevelCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// MinLevel is the first level of every catalog. Level L > MinLevel requires
// level L-1 to be completed before it can start.
const MinLevel = 1

// Display tones carried by catalog levels.
const (
	ToneSuccess  = "success"
	ToneWarning  = "warning"
	ToneHigh     = "high"
	ToneCritical = "critical"
)
