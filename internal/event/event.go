// Package event defines typed notifications emitted by the progression engine,
// consumed by the TUI, the console writer, the audit log and the history recorder.
package event

import (
	"fmt"
	"time"

	"github.com/tidwall/sjson"
)

// Kind identifies the type of event.
type Kind int

const (
	// KindStarted is emitted when a level's execution begins.
	KindStarted Kind = iota
	// KindStepComplete is emitted when a non-final step completes.
	KindStepComplete
	// KindLevelComplete is emitted when the final step of a level completes.
	KindLevelComplete
	// KindReset is emitted when all progress is discarded.
	KindReset
)

func (k Kind) String() string {
	switch k {
	case KindStarted:
		return "started"
	case KindStepComplete:
		return "step_complete"
	case KindLevelComplete:
		return "level_complete"
	case KindReset:
		return "reset"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event is a single notification. Which fields are meaningful depends on Kind.
type Event struct {
	Kind Kind
	At   time.Time

	Level       int
	Name        string // level name
	ExecutionID string
	StartedAt   time.Time

	// StepComplete: StepIndex is the new current step (0-based).
	StepIndex  int
	TotalSteps int
	Actor      string

	// LevelComplete: NextLevel is 0 when MaxReached.
	NextLevel  int
	MaxReached bool

	// Title and Text are the human-readable toast.
	Title string
	Text  string
}

// Handler is a callback that receives typed events.
type Handler func(Event)

// Multi fans an event out to every non-nil handler in order.
func Multi(handlers ...Handler) Handler {
	var hs []Handler
	for _, h := range handlers {
		if h != nil {
			hs = append(hs, h)
		}
	}
	return func(e Event) {
		for _, h := range hs {
			h(e)
		}
	}
}

// Started creates a KindStarted event.
func Started(at time.Time, executionID string, level int, name string, totalSteps int) Event {
	return Event{
		Kind:        KindStarted,
		At:          at,
		Level:       level,
		Name:        name,
		ExecutionID: executionID,
		StartedAt:   at,
		TotalSteps:  totalSteps,
		Title:       fmt.Sprintf("Level %d Protocol Started", level),
		Text:        fmt.Sprintf("Beginning %q - Complete all steps in order.", name),
	}
}

// StepComplete creates a KindStepComplete event. stepIndex is the new
// current step.
func StepComplete(at time.Time, executionID string, level, stepIndex, totalSteps int, actor string) Event {
	return Event{
		Kind:        KindStepComplete,
		At:          at,
		Level:       level,
		ExecutionID: executionID,
		StepIndex:   stepIndex,
		TotalSteps:  totalSteps,
		Actor:       actor,
		Title:       "Step Completed",
		Text:        fmt.Sprintf("Moving to step %d of %d", stepIndex+1, totalSteps),
	}
}

// LevelComplete creates a KindLevelComplete event. maxLevel is the highest
// level in the catalog.
func LevelComplete(at time.Time, executionID string, level int, name string, startedAt time.Time, totalSteps int, actor string, maxLevel int) Event {
	e := Event{
		Kind:        KindLevelComplete,
		At:          at,
		Level:       level,
		Name:        name,
		ExecutionID: executionID,
		StartedAt:   startedAt,
		StepIndex:   totalSteps - 1,
		TotalSteps:  totalSteps,
		Actor:       actor,
		Title:       fmt.Sprintf("Level %d Complete", level),
	}
	if level < maxLevel {
		e.NextLevel = level + 1
		e.Text = fmt.Sprintf("Protocol completed successfully. Level %d is now available.", e.NextLevel)
	} else {
		e.MaxReached = true
		e.Text = "Protocol completed successfully. Maximum response level reached."
	}
	return e
}

// Reset creates a KindReset event. abandonedLevel is the level that was in
// progress when the reset happened, or 0.
func Reset(at time.Time, abandonedLevel int) Event {
	return Event{
		Kind:  KindReset,
		At:    at,
		Level: abandonedLevel,
		Title: "Protocols Reset",
		Text:  "All response protocols have been reset to initial state.",
	}
}

// Message returns "Title: Text".
func (e Event) Message() string {
	if e.Text == "" {
		return e.Title
	}
	return e.Title + ": " + e.Text
}

// JSON encodes the event as a single JSON object. Fields that do not apply
// to the event's kind are omitted.
func (e Event) JSON() ([]byte, error) {
	out := []byte(`{}`)
	set := func(path string, v any) {
		if out == nil {
			return
		}
		b, err := sjson.SetBytes(out, path, v)
		if err != nil {
			out = nil
			return
		}
		out = b
	}

	set("kind", e.Kind.String())
	if !e.At.IsZero() {
		set("at", e.At.UTC().Format(time.RFC3339Nano))
	}
	if e.Level > 0 {
		set("level", e.Level)
	}
	if e.Name != "" {
		set("name", e.Name)
	}
	if e.ExecutionID != "" {
		set("execution_id", e.ExecutionID)
	}
	switch e.Kind {
	case KindStarted:
		set("total_steps", e.TotalSteps)
	case KindStepComplete:
		set("step_index", e.StepIndex)
		set("total_steps", e.TotalSteps)
	case KindLevelComplete:
		set("total_steps", e.TotalSteps)
		if e.MaxReached {
			set("max_reached", true)
		} else {
			set("next_level", e.NextLevel)
		}
	}
	if e.Actor != "" {
		set("actor", e.Actor)
	}
	set("title", e.Title)
	set("text", e.Text)

	if out == nil {
		return nil, fmt.Errorf("encode %s event", e.Kind)
	}
	return out, nil
}
