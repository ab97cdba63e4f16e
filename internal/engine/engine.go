package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alexander-akhmetov/psoc/internal/catalog"
	"github.com/alexander-akhmetov/psoc/internal/domain"
	"github.com/alexander-akhmetov/psoc/internal/event"
	"github.com/alexander-akhmetov/psoc/internal/protocol"
)

var (
	// ErrPreconditionFailed is returned by Start when another level is active,
	// the level's prerequisite is unmet, or the level is already completed.
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrNoActiveExecution is returned by CompleteCurrentStep when nothing is
	// in progress.
	ErrNoActiveExecution = errors.New("no active execution")
)

// CanStart reports whether level may start given st. It never mutates st.
//
// A level can start only when nothing is active, the level has not already
// been completed since the last reset, and it is either the first level or
// its predecessor is completed.
func CanStart(level int, st *domain.ProgressionState) bool {
	if st == nil || st.Active != nil || level < protocol.MinLevel {
		return false
	}
	if st.IsCompleted(level) {
		return false
	}
	return level == protocol.MinLevel || st.IsCompleted(level-1)
}

// Engine owns the progression state for one session. All methods are
// synchronous and must be called from a single goroutine.
type Engine struct {
	catalog *catalog.Catalog
	state   *domain.ProgressionState

	now     func() time.Time
	newID   func() string
	handler event.Handler
}

// New creates an engine over cat in the initial state.
func New(cat *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog: cat,
		state:   domain.NewProgressionState(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the catalog the engine runs over.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// State returns a deep copy of the current progression state.
func (e *Engine) State() *domain.ProgressionState { return e.state.Clone() }

// CanStart reports whether level may start now. Levels outside the catalog
// are never startable.
func (e *Engine) CanStart(level int) bool {
	if level > e.catalog.MaxLevel() {
		return false
	}
	return CanStart(level, e.state)
}

// LevelState classifies level for display.
func (e *Engine) LevelState(level int) protocol.LevelState {
	switch {
	case e.state.IsActive(level):
		return protocol.LevelActive
	case e.state.IsCompleted(level):
		return protocol.LevelCompleted
	case e.CanStart(level):
		return protocol.LevelStartable
	default:
		return protocol.LevelLocked
	}
}

// Progress returns how many catalog levels are completed and the total.
func (e *Engine) Progress() (completed, total int) {
	return len(e.state.Completed), e.catalog.Len()
}

// StartLevel looks level up in the catalog and starts it.
func (e *Engine) StartLevel(level int) error {
	def, ok := e.catalog.Get(level)
	if !ok {
		return fmt.Errorf("%w: level %d is not in the catalog", ErrPreconditionFailed, level)
	}
	return e.Start(def)
}

// Start begins a fresh execution of def. The state is left untouched on error.
func (e *Engine) Start(def domain.ProtocolDefinition) error {
	if _, ok := e.catalog.Get(def.Level); !ok {
		return fmt.Errorf("%w: level %d is not in the catalog", ErrPreconditionFailed, def.Level)
	}
	if len(def.Actions) == 0 {
		return fmt.Errorf("%w: level %d has no actions", ErrPreconditionFailed, def.Level)
	}
	if !CanStart(def.Level, e.state) {
		return fmt.Errorf("%w: level %d cannot start: %s", ErrPreconditionFailed, def.Level, e.blockedReason(def.Level))
	}

	now := e.now()
	exec := domain.NewExecution(e.newID(), def, now)
	e.state.Active = exec

	e.emit(event.Started(now, exec.ID, exec.Level, exec.Name, len(exec.Steps)))
	return nil
}

// CompleteCurrentStep marks the current step done by actor. Completing the
// last step folds the level into the completed set and clears the execution.
func (e *Engine) CompleteCurrentStep(actor string) error {
	exec := e.state.Active
	if exec == nil || exec.Status != protocol.StatusInProgress {
		return ErrNoActiveExecution
	}
	step := exec.CurrentStep()
	if step == nil {
		return fmt.Errorf("%w: step index %d out of range", ErrNoActiveExecution, exec.CurrentStepIndex)
	}

	now := e.now()
	step.Completed = true
	step.CompletedAt = &now
	step.CompletedBy = actor

	if exec.IsLastStep() {
		exec.Status = protocol.StatusCompleted
		e.state.Completed[exec.Level] = struct{}{}
		e.state.Active = nil

		e.emit(event.LevelComplete(now, exec.ID, exec.Level, exec.Name, exec.StartedAt,
			len(exec.Steps), actor, e.catalog.MaxLevel()))
		return nil
	}

	exec.CurrentStepIndex++
	e.emit(event.StepComplete(now, exec.ID, exec.Level, exec.CurrentStepIndex, len(exec.Steps), actor))
	return nil
}

// Reset discards the active execution, without crediting it, and every
// completed level. It always succeeds.
func (e *Engine) Reset() {
	abandoned := 0
	if e.state.Active != nil {
		abandoned = e.state.Active.Level
	}
	e.state.Active = nil
	clear(e.state.Completed)

	e.emit(event.Reset(e.now(), abandoned))
}

func (e *Engine) blockedReason(level int) string {
	switch {
	case e.state.Active != nil:
		return fmt.Sprintf("level %d is in progress", e.state.Active.Level)
	case e.state.IsCompleted(level):
		return "already completed"
	default:
		return fmt.Sprintf("level %d is not completed", level-1)
	}
}

func (e *Engine) emit(ev event.Event) {
	if e.handler != nil {
		e.handler(ev)
	}
}
