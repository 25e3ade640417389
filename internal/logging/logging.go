// Package logging provides file-based logging for simulation runs.
// It writes to both a global run log and, optionally, per-category log
// files so a long Monte Carlo run's warnings and progress can be
// inspected after the fact without re-running the simulation.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger wraps slog.Logger with optional file-based output. A Logger must
// be created with New; one created with an empty dir still logs to stderr
// via handler but skips file output.
type Logger struct {
	dir           string
	globalFile    *os.File
	categoryFiles map[string]*os.File
	mu            sync.Mutex
	level         slog.Level
	handler       *slog.Logger
}

// New creates a Logger that writes structured entries to stderr via
// log/slog, and additionally, if dir is non-empty, appends plain-text
// entries to dir/run.log and dir/<category>.log.
func New(dir string, level slog.Level) *Logger {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return &Logger{
		dir:           dir,
		level:         level,
		categoryFiles: make(map[string]*os.File),
		handler:       slog.New(h),
	}
}

// ParseLevel parses a log level string into slog.Level, defaulting to info.
func ParseLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) ensureDir() error {
	return os.MkdirAll(l.dir, 0o750)
}

func (l *Logger) ensureGlobalFile() (*os.File, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.globalFile != nil {
		return l.globalFile, nil
	}
	if err := l.ensureDir(); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	path := filepath.Join(l.dir, "run.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open global log file: %w", err)
	}
	l.globalFile = f
	return f, nil
}

func (l *Logger) ensureCategoryFile(category string) (*os.File, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if f, ok := l.categoryFiles[category]; ok {
		return f, nil
	}
	if err := l.ensureDir(); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	path := filepath.Join(l.dir, category+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open category log file: %w", err)
	}
	l.categoryFiles[category] = f
	return f, nil
}

// Close closes all open log files.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var lastErr error
	if l.globalFile != nil {
		if err := l.globalFile.Close(); err != nil {
			lastErr = err
		}
		l.globalFile = nil
	}
	for name, f := range l.categoryFiles {
		if err := f.Close(); err != nil {
			lastErr = err
		}
		delete(l.categoryFiles, name)
	}
	return lastErr
}

// formatLog formats a log entry as: [2026-01-02 15:04:05] [INFO] [category] message
func formatLog(t time.Time, level slog.Level, category, msg string) string {
	cat := category
	if cat == "" {
		cat = "global"
	}
	return fmt.Sprintf("[%s] [%s] [%s] %s\n",
		t.Format("2006-01-02 15:04:05"),
		levelToString(level),
		cat,
		msg,
	)
}

func levelToString(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelInfo:
		return "INFO"
	case slog.LevelWarn:
		return "WARN"
	case slog.LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// log writes a log entry to the in-process handler and, if a directory was
// configured, to the global file and the category-specific file.
func (l *Logger) log(level slog.Level, category, msg string, args ...any) {
	if level < l.level {
		return
	}

	l.handler.Log(context.Background(), level, msg, append([]any{"category", category}, args...)...)

	if l.dir == "" {
		return
	}

	entry := formatLog(time.Now(), level, category, msg)
	if gf, err := l.ensureGlobalFile(); err == nil {
		_, _ = io.WriteString(gf, entry)
	}
	if category != "" {
		if cf, err := l.ensureCategoryFile(category); err == nil {
			_, _ = io.WriteString(cf, entry)
		}
	}
}

// Info logs an info-level message under the given category.
func (l *Logger) Info(category, msg string, args ...any) {
	l.log(slog.LevelInfo, category, msg, args...)
}

// Debug logs a debug-level message under the given category.
func (l *Logger) Debug(category, msg string, args ...any) {
	l.log(slog.LevelDebug, category, msg, args...)
}

// Warn logs a warning-level message under the given category.
func (l *Logger) Warn(category, msg string, args ...any) {
	l.log(slog.LevelWarn, category, msg, args...)
}

// Error logs an error-level message under the given category.
func (l *Logger) Error(category, msg string, args ...any) {
	l.log(slog.LevelError, category, msg, args...)
}

// Slog returns the underlying slog.Logger for callers that accept a
// *slog.Logger directly rather than the categorized Logger API.
func (l *Logger) Slog() *slog.Logger {
	return l.handler
}
