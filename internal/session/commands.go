package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexander-akhmetov/psoc/internal/protocol"
)

var (
	// ErrUnknownCommand is returned by Exec for a verb it does not know.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrUsage is returned by Exec for a known verb with bad arguments.
	ErrUsage = errors.New("usage")
	// ErrQuit is returned by Exec for quit/exit. Callers end the session.
	ErrQuit = errors.New("quit")
)

// HelpText lists the console commands.
const HelpText = `Commands:
  start N          start response level N
  complete, done   complete the current step
  reset            discard all progress
  status           show levels and the active protocol
  help             show this help
  quit, exit       end the session`

// Exec runs one console command line and returns the text to show.
// Blank lines are a no-op.
func (s *Session) Exec(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	verb, args := strings.ToLower(fields[0]), fields[1:]

	switch verb {
	case "start", "s":
		if len(args) != 1 {
			return "", fmt.Errorf("%w: start N", ErrUsage)
		}
		level, err := strconv.Atoi(args[0])
		if err != nil {
			return "", fmt.Errorf("%w: start N (level %q is not a number)", ErrUsage, args[0])
		}
		if err := s.Start(level); err != nil {
			return "", err
		}
		return s.lastMessage(), nil

	case "complete", "done", "c":
		if len(args) != 0 {
			return "", fmt.Errorf("%w: %s takes no arguments", ErrUsage, verb)
		}
		if err := s.Complete(); err != nil {
			if errors.Is(err, ErrHistory) {
				return s.lastMessage(), err
			}
			return "", err
		}
		return s.lastMessage(), nil

	case "reset":
		s.Reset()
		return s.lastMessage(), nil

	case "status", "ls":
		return s.Status(), nil

	case "help", "?":
		return HelpText, nil

	case "quit", "exit", "q":
		return "", ErrQuit

	default:
		return "", fmt.Errorf("%w: %q (try \"help\")", ErrUnknownCommand, verb)
	}
}

// Status renders every level with its badge, the active protocol's steps,
// and the summary line.
func (s *Session) Status() string {
	var b strings.Builder
	st := s.State()

	for _, row := range s.Levels() {
		fmt.Fprintf(&b, "[%-11s] Level %d: %s", row.State.Label(), row.Def.Level, row.Def.Name)
		if row.State == protocol.LevelActive {
			fmt.Fprintf(&b, " (%d/%d)", row.StepsDone, len(row.Def.Actions))
		}
		b.WriteByte('\n')
	}

	if exec := st.Active; exec != nil {
		fmt.Fprintf(&b, "\nActive: level %d, step %d of %d\n", exec.Level, exec.CurrentStepIndex+1, len(exec.Steps))
		for i, step := range exec.Steps {
			mark := " "
			switch {
			case step.Completed:
				mark = "x"
			case i == exec.CurrentStepIndex:
				mark = ">"
			}
			fmt.Fprintf(&b, "  [%s] %d. %s", mark, i+1, step.Action)
			if step.Completed && step.CompletedBy != "" {
				fmt.Fprintf(&b, " (%s)", step.CompletedBy)
			}
			b.WriteByte('\n')
		}
	}

	b.WriteString("\n" + s.Summary())
	return b.String()
}

func (s *Session) lastMessage() string {
	if e, ok := s.LastEvent(); ok {
		return e.Message()
	}
	return ""
}
