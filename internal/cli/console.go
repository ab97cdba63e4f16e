package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/tidwall/sjson"
	"golang.org/x/term"

	"github.com/alexander-akhmetov/psoc/internal/event"
	"github.com/alexander-akhmetov/psoc/internal/session"
)

// 256-color codes shared with the TUI palette.
const (
	colorGreen  = 42
	colorRed    = 196
	colorCyan   = 117
	colorDim    = 241
	colorOrange = 208
)

// console is the line-oriented front end used by "psoc run --plain". In
// JSON mode every line it writes is a single JSON object.
type console struct {
	out   io.Writer
	isTTY bool
	json  bool
}

func newConsole(out io.Writer, isTTY, jsonMode bool) *console {
	return &console{out: out, isTTY: isTTY, json: jsonMode}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the column count of w when it is a terminal, or
// fallback otherwise.
func terminalWidth(w io.Writer, fallback int) int {
	f, ok := w.(*os.File)
	if !ok {
		return fallback
	}
	if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
		return cols
	}
	return fallback
}

// handle prints engine events. In text mode the command output already
// carries the event message, so only JSON mode writes here.
func (c *console) handle(e event.Event) {
	if !c.json {
		return
	}
	data, err := e.JSON()
	if err != nil {
		c.jsonError(err)
		return
	}
	fmt.Fprintln(c.out, string(data))
}

// loop reads commands from in until quit, EOF or ctx cancellation, and
// returns the exit reason for the audit log.
func (c *console) loop(ctx context.Context, sess *session.Session, in io.Reader) (string, error) {
	if !c.json {
		fmt.Fprintf(c.out, "%d protocol levels loaded. Type \"help\" for commands.\n", sess.Catalog().Len())
		fmt.Fprintln(c.out, c.dim(sess.Summary()))
	}

	lines := make(chan string)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		c.prompt()
		select {
		case <-ctx.Done():
			return "interrupted", nil
		case line, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return "error", fmt.Errorf("read input: %w", err)
				}
				return "eof", nil
			}
			if quit := c.exec(sess, line); quit {
				return "quit", nil
			}
		}
	}
}

// exec runs one line and reports whether the session should end.
func (c *console) exec(sess *session.Session, line string) bool {
	if c.json && strings.EqualFold(strings.TrimSpace(line), "status") {
		c.writeJSON(statusJSON(sess))
		return false
	}

	before := len(sess.Events())
	last, _ := sess.LastEvent()
	out, err := sess.Exec(line)
	emitted := eventEmitted(sess, before, last)

	switch {
	case errors.Is(err, session.ErrQuit):
		return true
	case err != nil:
		if out != "" && !c.json {
			c.printMessage(sess)
		}
		c.errorLine(err)
	case out == "":
	case emitted:
		if !c.json {
			c.printMessage(sess)
		}
	default:
		if c.json {
			c.writeJSON(mustSet([]byte(`{}`), "output", out))
		} else {
			fmt.Fprintln(c.out, out)
		}
	}
	return false
}

// eventEmitted reports whether the last Exec produced a new event. The
// backlog is bounded, so a full backlog is detected by its last element.
func eventEmitted(sess *session.Session, before int, prevLast event.Event) bool {
	evs := sess.Events()
	if len(evs) != before {
		return true
	}
	if len(evs) == 0 {
		return false
	}
	cur := evs[len(evs)-1]
	return cur.At != prevLast.At || cur.Kind != prevLast.Kind || cur.ExecutionID != prevLast.ExecutionID
}

func (c *console) printMessage(sess *session.Session) {
	e, ok := sess.LastEvent()
	if !ok {
		return
	}
	title := e.Title
	switch e.Kind {
	case event.KindLevelComplete:
		title = c.color(colorGreen, title)
	case event.KindReset:
		title = c.color(colorOrange, title)
	default:
		title = c.color(colorCyan, title)
	}
	fmt.Fprintf(c.out, "%s %s\n", title, e.Text)
	if e.Kind == event.KindLevelComplete || e.Kind == event.KindReset {
		fmt.Fprintln(c.out, c.dim(sess.Summary()))
	}
}

func (c *console) errorLine(err error) {
	if c.json {
		c.jsonError(err)
		return
	}
	fmt.Fprintln(c.out, c.color(colorRed, "error:")+" "+err.Error())
}

func (c *console) jsonError(err error) {
	c.writeJSON(mustSet([]byte(`{}`), "error", err.Error()))
}

func (c *console) writeJSON(data []byte) {
	fmt.Fprintln(c.out, string(data))
}

func (c *console) prompt() {
	if c.isTTY && !c.json {
		fmt.Fprint(c.out, c.color(colorDim, "psoc> "))
	}
}

func (c *console) color(code int, text string) string {
	if !c.isTTY {
		return text
	}
	return fmt.Sprintf("\033[38;5;%dm%s\033[0m", code, text)
}

func (c *console) dim(text string) string {
	if !c.isTTY {
		return text
	}
	return fmt.Sprintf("\033[2m%s\033[0m", text)
}

// statusJSON encodes the session's levels and active execution.
func statusJSON(sess *session.Session) []byte {
	out := []byte(`{}`)
	for i, row := range sess.Levels() {
		prefix := fmt.Sprintf("levels.%d.", i)
		out = mustSet(out, prefix+"level", row.Def.Level)
		out = mustSet(out, prefix+"name", row.Def.Name)
		out = mustSet(out, prefix+"state", row.State.String())
		out = mustSet(out, prefix+"steps_done", row.StepsDone)
		out = mustSet(out, prefix+"total_steps", len(row.Def.Actions))
	}
	if exec := sess.State().Active; exec != nil {
		out = mustSet(out, "active.execution_id", exec.ID)
		out = mustSet(out, "active.level", exec.Level)
		out = mustSet(out, "active.name", exec.Name)
		out = mustSet(out, "active.current_step", exec.CurrentStepIndex)
		out = mustSet(out, "active.started_at", exec.StartedAt.UTC().Format(time.RFC3339Nano))
		out = mustSet(out, "active.action", exec.CurrentStep().Action)
	}
	done, total := sess.Progress()
	out = mustSet(out, "completed", done)
	out = mustSet(out, "total", total)
	out = mustSet(out, "summary", sess.Summary())
	return out
}

// mustSet is sjson.SetBytes for paths built in this package, which are
// always valid.
func mustSet(data []byte, path string, value any) []byte {
	b, err := sjson.SetBytes(data, path, value)
	if err != nil {
		panic(fmt.Sprintf("sjson set %q: %v", path, err))
	}
	return b
}
