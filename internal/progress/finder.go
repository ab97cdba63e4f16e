package progress

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/alexander-akhmetov/psoc/internal/dirs"
)

// LogFile represents an audit log file.
type LogFile struct {
	Path      string
	Trigger   string
	Timestamp time.Time
	Size      int64
}

// FindLogs finds log files in the logs directory, optionally filtered by a
// case-insensitive trigger substring. Files are returned newest first.
func FindLogs(logsDir, trigger string) ([]LogFile, error) {
	if logsDir == "" {
		logsDir = dirs.LogsDir()
	}

	entries, err := os.ReadDir(logsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // No logs yet
		}
		return nil, err
	}

	var logs []LogFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}

		lf := parseLogFilename(logsDir, entry.Name())
		if lf == nil {
			continue
		}

		if trigger != "" && !strings.Contains(strings.ToLower(lf.Trigger), strings.ToLower(trigger)) {
			continue
		}

		if info, err := entry.Info(); err == nil {
			lf.Size = info.Size()
		}

		logs = append(logs, *lf)
	}

	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].Timestamp.After(logs[j].Timestamp)
	})

	return logs, nil
}

// FindLatestLog finds the most recent log file for a trigger.
// It returns nil, nil when nothing matches.
func FindLatestLog(logsDir, trigger string) (*LogFile, error) {
	logs, err := FindLogs(logsDir, trigger)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, nil
	}
	return &logs[0], nil
}

// parseLogFilename parses a log filename into a LogFile.
// Expected format: YYYYMMDD-HHMMSS-<trigger>.log
func parseLogFilename(dir, name string) *LogFile {
	if !strings.HasSuffix(name, ".log") {
		return nil
	}
	base := strings.TrimSuffix(name, ".log")

	// Need at least timestamp prefix plus dash: YYYYMMDD-HHMMSS-
	if len(base) < 16 {
		return nil
	}

	t, err := time.ParseInLocation("20060102-150405", base[:15], time.Local)
	if err != nil {
		return nil
	}

	return &LogFile{
		Path:      filepath.Join(dir, name),
		Trigger:   base[16:],
		Timestamp: t,
	}
}
