// Package logging wraps github.com/charmbracelet/log with the small
// surface the layout pipeline and PDF compiler actually call. A *Logger
// is always constructed explicitly and threaded through, never reached
// for as a package-level global.
package logging

import (
	"io"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// Level mirrors charmlog's severity levels under names that don't force
// every caller to import the charm package directly.
type Level = charmlog.Level

const (
	LevelDebug = charmlog.DebugLevel
	LevelInfo  = charmlog.InfoLevel
	LevelWarn  = charmlog.WarnLevel
	LevelError = charmlog.ErrorLevel
)

// Logger is a structured logger with key-value fields, same calling
// convention as charmbracelet/log.
type Logger struct {
	inner *charmlog.Logger
}

// New returns a Logger writing to stderr at the given level, with
// timestamps formatted the way stacktower's CLI does.
func New(level Level) *Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter returns a Logger writing to w, for tests or CLI output
// redirection.
func NewWithWriter(w io.Writer, level Level) *Logger {
	inner := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
	return &Logger{inner: inner}
}

// Discard returns a Logger that drops everything, for callers (like unit
// tests) that don't want log noise but still need a non-nil Logger.
func Discard() *Logger {
	return NewWithWriter(io.Discard, LevelError)
}

func (l *Logger) Debug(msg string, keyvals ...any) { l.inner.Debug(msg, keyvals...) }
func (l *Logger) Info(msg string, keyvals ...any)  { l.inner.Info(msg, keyvals...) }
func (l *Logger) Warn(msg string, keyvals ...any)  { l.inner.Warn(msg, keyvals...) }
func (l *Logger) Error(msg string, keyvals ...any) { l.inner.Error(msg, keyvals...) }

// WithPrefix returns a child logger whose lines are tagged with prefix,
// for distinguishing pipeline-stage output ("layout", "pdfwriter") the
// way stacktower tags its own subsystems.
func (l *Logger) WithPrefix(prefix string) *Logger {
	return &Logger{inner: l.inner.WithPrefix(prefix)}
}

// Elapsed logs msg with the duration since start appended, matching the
// CLI's progress-tracker pattern for long-running steps.
func (l *Logger) Elapsed(msg string, start time.Time) {
	l.inner.Infof("%s (%s)", msg, time.Since(start).Round(time.Millisecond))
}
