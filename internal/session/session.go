// Package session wires a catalog and a progression engine to the things
// that consume its events: the history store, the audit log, and whatever
// presentation is attached.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alexander-akhmetov/psoc/internal/catalog"
	"github.com/alexander-akhmetov/psoc/internal/debug"
	"github.com/alexander-akhmetov/psoc/internal/domain"
	"github.com/alexander-akhmetov/psoc/internal/engine"
	"github.com/alexander-akhmetov/psoc/internal/event"
	"github.com/alexander-akhmetov/psoc/internal/history"
	"github.com/alexander-akhmetov/psoc/internal/protocol"
)

// DefaultTrigger labels sessions started by hand.
const DefaultTrigger = "Manual"

// maxEvents bounds the in-memory event backlog.
const maxEvents = 500

const historyTimeout = 5 * time.Second

// ErrHistory wraps a failure to record a completed level. The completion
// itself still stands.
var ErrHistory = errors.New("record history")

// HistoryRecorder persists completed levels.
type HistoryRecorder interface {
	Record(ctx context.Context, r history.Record) error
}

// Options configures a Session.
type Options struct {
	Catalog  *catalog.Catalog // required
	Actor    string
	Trigger  string
	History  HistoryRecorder // optional
	Audit    event.Handler   // optional, e.g. (*progress.Logger).Handle
	Handlers []event.Handler // extra consumers, run after history and audit
	Now      func() time.Time
	NewID    func() string
}

// Row is one catalog level as a presentation layer shows it.
type Row struct {
	Def   domain.ProtocolDefinition
	State protocol.LevelState
	// StepsDone is the number of completed steps when the level is active,
	// len(Def.Actions) when completed, zero otherwise.
	StepsDone int
}

// Session is one operator's run through the protocol catalog.
type Session struct {
	eng     *engine.Engine
	actor   string
	trigger string
	history HistoryRecorder

	events     []event.Event
	historyErr error
}

// New creates a session in the initial state.
func New(opts Options) (*Session, error) {
	if opts.Catalog == nil {
		return nil, errors.New("session: catalog is required")
	}
	s := &Session{
		actor:   opts.Actor,
		trigger: opts.Trigger,
		history: opts.History,
	}
	if s.trigger == "" {
		s.trigger = DefaultTrigger
	}

	handlers := []event.Handler{s.record, s.recordHistory, opts.Audit}
	handlers = append(handlers, opts.Handlers...)

	s.eng = engine.New(opts.Catalog,
		engine.WithClock(opts.Now),
		engine.WithIDFunc(opts.NewID),
		engine.WithHandler(event.Multi(handlers...)),
	)
	return s, nil
}

// Catalog returns the protocol catalog.
func (s *Session) Catalog() *catalog.Catalog { return s.eng.Catalog() }

// Actor returns the actor stamped on completed steps.
func (s *Session) Actor() string { return s.actor }

// Trigger returns the label recorded as each level's trigger.
func (s *Session) Trigger() string { return s.trigger }

// State returns a snapshot of the progression state.
func (s *Session) State() *domain.ProgressionState { return s.eng.State() }

// CanStart reports whether level may start now.
func (s *Session) CanStart(level int) bool { return s.eng.CanStart(level) }

// Start begins level.
func (s *Session) Start(level int) error {
	if err := s.eng.StartLevel(level); err != nil {
		debug.L().Debug("start rejected", zap.Int("level", level), zap.Error(err))
		return err
	}
	return nil
}

// Complete marks the active execution's current step done by the session
// actor. When that finishes the level and the history write fails, the
// returned error wraps ErrHistory.
func (s *Session) Complete() error {
	s.historyErr = nil
	if err := s.eng.CompleteCurrentStep(s.actor); err != nil {
		return err
	}
	if s.historyErr != nil {
		err := s.historyErr
		s.historyErr = nil
		return err
	}
	return nil
}

// Reset discards all progress.
func (s *Session) Reset() { s.eng.Reset() }

// Levels returns one row per catalog level in order.
func (s *Session) Levels() []Row {
	st := s.eng.State()
	defs := s.eng.Catalog().Levels()
	rows := make([]Row, 0, len(defs))
	for _, def := range defs {
		row := Row{Def: def, State: s.eng.LevelState(def.Level)}
		switch row.State {
		case protocol.LevelActive:
			row.StepsDone = st.Active.CompletedSteps()
		case protocol.LevelCompleted:
			row.StepsDone = len(def.Actions)
		}
		rows = append(rows, row)
	}
	return rows
}

// Progress returns completed and total level counts.
func (s *Session) Progress() (completed, total int) { return s.eng.Progress() }

// Summary returns "N of M protocols completed".
func (s *Session) Summary() string {
	done, total := s.eng.Progress()
	return fmt.Sprintf("%d of %d protocols completed", done, total)
}

// Events returns the notifications emitted so far, oldest first.
func (s *Session) Events() []event.Event {
	out := make([]event.Event, len(s.events))
	copy(out, s.events)
	return out
}

// LastEvent returns the most recent notification.
func (s *Session) LastEvent() (event.Event, bool) {
	if len(s.events) == 0 {
		return event.Event{}, false
	}
	return s.events[len(s.events)-1], true
}

func (s *Session) record(e event.Event) {
	s.events = append(s.events, e)
	if len(s.events) > maxEvents {
		s.events = s.events[len(s.events)-maxEvents:]
	}
	debug.L().Info(e.Title,
		zap.String("kind", e.Kind.String()),
		zap.Int("level", e.Level),
		zap.String("execution_id", e.ExecutionID),
		zap.String("actor", e.Actor),
	)
	if debug.Enabled() {
		debug.Logf("state after %s: %s", e.Kind, s.Summary())
	}
}

func (s *Session) recordHistory(e event.Event) {
	if s.history == nil || e.Kind != event.KindLevelComplete {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
	defer cancel()

	err := s.history.Record(ctx, history.Record{
		ID:          e.ExecutionID,
		Level:       e.Level,
		Name:        e.Name,
		TriggeredBy: s.trigger,
		Actor:       e.Actor,
		StartedAt:   e.StartedAt,
		CompletedAt: e.At,
	})
	if err != nil {
		debug.L().Warn("history write failed", zap.Int("level", e.Level), zap.Error(err))
		s.historyErr = fmt.Errorf("%w: level %d: %w", ErrHistory, e.Level, err)
	}
}
