// Package dirs provides XDG Base Directory compliant paths for psoc.
package dirs

import (
	"os"
	"path/filepath"
)

const appName = "psoc"

// ConfigDir returns the psoc configuration directory.
// Resolution order: XDG_CONFIG_HOME/psoc > ~/.config/psoc.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", appName)
	}
	return filepath.Join(home, ".config", appName)
}

// StateDir returns the psoc state directory.
// Resolution order: PSOC_STATE_DIR > XDG_STATE_HOME/psoc > ~/.local/state/psoc.
func StateDir() string {
	if dir := os.Getenv("PSOC_STATE_DIR"); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".local", "state", appName)
	}
	return filepath.Join(home, ".local", "state", appName)
}

// LogsDir returns the audit log directory (StateDir/logs).
func LogsDir() string {
	return filepath.Join(StateDir(), "logs")
}

// HistoryPath returns the default execution history database path.
func HistoryPath() string {
	return filepath.Join(StateDir(), "history.db")
}

// DiagnosticsLogPath returns the file the diagnostic logger always writes to.
func DiagnosticsLogPath() string {
	return filepath.Join(StateDir(), "psoc.log")
}
