// Package debug owns the process-wide diagnostic logger.
package debug

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	logger = zap.NewNop()
)

// Init builds the process logger. level is a zap level name ("debug",
// "info", ...); PSOC_DEBUG=1 forces debug. outputs defaults to stderr.
func Init(level string, outputs ...string) error {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return fmt.Errorf("parse log level %q: %w", level, err)
		}
	}
	if os.Getenv("PSOC_DEBUG") == "1" {
		lvl = zapcore.DebugLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = lvl > zapcore.DebugLevel
	if len(outputs) > 0 {
		cfg.OutputPaths = outputs
		cfg.ErrorOutputPaths = outputs
	}

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	Set(l)
	return nil
}

// Set replaces the process logger and returns a func restoring the previous one.
func Set(l *zap.Logger) func() {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	prev := logger
	logger = l
	mu.Unlock()
	return func() { Set(prev) }
}

// L returns the process logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Logf writes a debug message.
func Logf(format string, args ...any) {
	L().Sugar().Debugf(format, args...)
}

// Enabled reports whether debug messages are written.
func Enabled() bool {
	return L().Core().Enabled(zapcore.DebugLevel)
}

// Sync flushes buffered entries.
func Sync() {
	_ = L().Sync()
}
