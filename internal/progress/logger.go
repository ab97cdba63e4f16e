// Package progress writes the per-session audit log. Every psoc session
// writes a file to the logs directory with a timestamped line for each
// protocol start, step completion, level completion and reset.
package progress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/alexander-akhmetov/psoc/internal/dirs"
	"github.com/alexander-akhmetov/psoc/internal/event"
	"github.com/alexander-akhmetov/psoc/internal/history"
)

// timestampFormat is the format for log timestamps.
const timestampFormat = "2006-01-02 15:04:05"

// Logger writes timestamped audit lines to a log file and an optional io.Writer.
type Logger struct {
	mu        sync.Mutex
	file      *os.File
	writer    io.Writer // optional mirror, e.g. the plain console
	now       func() time.Time
	startTime time.Time
	trigger   string
	logPath   string

	started   int
	steps     int
	completed int
	resets    int
}

// Config holds logger configuration.
type Config struct {
	LogsDir string           // Directory for log files (default: dirs.LogsDir())
	Trigger string           // What caused this session, e.g. "Manual" or an alert ID
	Actor   string           // Operator running the session
	Catalog string           // Catalog source, for the header
	Writer  io.Writer        // Optional additional writer for live output
	Now     func() time.Time // Clock; defaults to time.Now
}

// NewLogger creates a logger that writes to a timestamped log file.
// Log files are stored in LogsDir with format: <timestamp>-<trigger>.log
func NewLogger(cfg Config) (*Logger, error) {
	logsDir := cfg.LogsDir
	if logsDir == "" {
		logsDir = dirs.LogsDir()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create logs dir: %w", err)
	}

	start := now()
	logPath := filepath.Join(logsDir, fmt.Sprintf("%s-%s.log", start.Format("20060102-150405"), sanitizeFilename(cfg.Trigger)))

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	l := &Logger{
		file:      f,
		writer:    cfg.Writer,
		now:       now,
		startTime: start,
		trigger:   cfg.Trigger,
		logPath:   logPath,
	}

	l.writef("# Protocol Session Log\n")
	l.writef("Trigger: %s\n", cfg.Trigger)
	if cfg.Actor != "" {
		l.writef("Actor: %s\n", cfg.Actor)
	}
	if cfg.Catalog != "" {
		l.writef("Catalog: %s\n", cfg.Catalog)
	}
	l.writef("Started: %s\n", start.Format(timestampFormat))
	l.writef("%s\n\n", strings.Repeat("-", 60))

	return l, nil
}

// Path returns the log file path.
func (l *Logger) Path() string {
	return l.logPath
}

// Trigger returns the trigger label the log was opened with.
func (l *Logger) Trigger() string {
	return l.trigger
}

// Printf writes a timestamped message to the log.
func (l *Logger) Printf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.printf(l.now(), format, args...)
}

// Errorf logs an error message.
func (l *Logger) Errorf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.printf(l.now(), "ERROR: "+format, args...)
}

// Handle writes one audit line for e. It satisfies event.Handler.
func (l *Logger) Handle(e event.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	at := e.At
	if at.IsZero() {
		at = l.now()
	}

	switch e.Kind {
	case event.KindStarted:
		l.started++
		l.writef("\n--- Level %d: %s ---\n", e.Level, e.Name)
		l.printf(at, "Started execution %s (%d steps)", e.ExecutionID, e.TotalSteps)
	case event.KindStepComplete:
		l.steps++
		l.printf(at, "Step %d/%d completed by %s", e.StepIndex, e.TotalSteps, actorOrUnknown(e.Actor))
	case event.KindLevelComplete:
		l.steps++
		l.completed++
		l.printf(at, "Step %d/%d completed by %s", e.TotalSteps, e.TotalSteps, actorOrUnknown(e.Actor))
		dur := ""
		if !e.StartedAt.IsZero() {
			dur = " in " + history.FormatDuration(at.Sub(e.StartedAt))
		}
		l.printf(at, "Level %d completed%s", e.Level, dur)
		if e.MaxReached {
			l.printf(at, "Maximum response level reached")
		} else {
			l.printf(at, "Level %d is now available", e.NextLevel)
		}
	case event.KindReset:
		l.resets++
		if e.Level > 0 {
			l.printf(at, "Reset, abandoning level %d in progress", e.Level)
		} else {
			l.printf(at, "Reset")
		}
	default:
		l.printf(at, "%s", e.Message())
	}
}

// Exit logs the exit reason, session counters and duration.
func (l *Logger) Exit(reason, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	end := l.now()
	l.writef("\n%s\n", strings.Repeat("-", 60))
	l.writef("Exit reason: %s\n", reason)
	if message != "" {
		l.writef("Exit message: %s\n", message)
	}
	l.writef("Levels started: %d\n", l.started)
	l.writef("Levels completed: %d\n", l.completed)
	l.writef("Steps completed: %d\n", l.steps)
	if l.resets > 0 {
		l.writef("Resets: %d\n", l.resets)
	}
	l.writef("Duration: %s\n", history.FormatDuration(end.Sub(l.startTime)))
	l.writef("Completed: %s\n", end.Format(timestampFormat))
}

// Close closes the log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	if err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	return nil
}

func (l *Logger) printf(at time.Time, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	line := fmt.Sprintf("[%s] %s\n", at.Format(timestampFormat), msg)
	l.writef("%s", line)
	if l.writer != nil {
		fmt.Fprint(l.writer, line)
	}
}

func (l *Logger) writef(format string, args ...any) {
	if l.file != nil {
		fmt.Fprintf(l.file, format, args...)
	}
}

func actorOrUnknown(actor string) string {
	if actor == "" {
		return "unknown"
	}
	return actor
}

// sanitizeFilename converts a trigger label to a safe filename component.
func sanitizeFilename(s string) string {
	// Replace path separators and special chars with dashes
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	s = strings.ReplaceAll(s, " ", "-")

	var clean strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			clean.WriteRune(r)
		}
	}
	result := clean.String()

	for strings.Contains(result, "--") {
		result = strings.ReplaceAll(result, "--", "-")
	}
	result = strings.Trim(result, "-")

	if len(result) > 100 {
		result = result[:100]
		result = strings.TrimRight(result, "-")
	}

	if result == "" {
		return "session"
	}
	return result
}
