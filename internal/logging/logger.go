// Package logging provides the leveled logfmt logger used across regvm.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

// Logger writes logfmt records. Debug records, including Log and Section
// output, are only emitted when the logger is verbose.
type Logger struct {
	enabled bool
	out     *log.SwapLogger
	base    log.Logger
}

// NewLogger creates a logger writing to stderr.
func NewLogger(verbose bool) *Logger {
	l := &Logger{enabled: verbose, out: new(log.SwapLogger)}
	l.base = l.out
	l.SetOutput(os.Stderr)
	return l
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	l := &Logger{out: new(log.SwapLogger)}
	l.out.Swap(log.NewNopLogger())
	l.base = l.out
	return l
}

// SetOutput redirects the logger, and every logger derived from it with
// With, to w.
func (l *Logger) SetOutput(w io.Writer) {
	var next log.Logger = log.NewLogfmtLogger(log.NewSyncWriter(w))
	if l.enabled {
		next = level.NewFilter(next, level.AllowDebug())
	} else {
		next = level.NewFilter(next, level.AllowInfo())
	}
	l.out.Swap(next)
}

// With returns a logger that adds keyvals to every record.
func (l *Logger) With(keyvals ...interface{}) *Logger {
	return &Logger{enabled: l.enabled, out: l.out, base: log.With(l.base, keyvals...)}
}

// Log emits a formatted debug message.
func (l *Logger) Log(format string, args ...interface{}) {
	if l.enabled {
		_ = level.Debug(l.base).Log("msg", fmt.Sprintf(format, args...))
	}
}

// Section marks the start of a group of related debug messages.
func (l *Logger) Section(name string) {
	if l.enabled {
		_ = level.Debug(l.base).Log("section", name)
	}
}

// Debug emits msg with keyvals at debug level.
func (l *Logger) Debug(msg string, keyvals ...interface{}) {
	_ = level.Debug(l.base).Log(append([]interface{}{"msg", msg}, keyvals...)...)
}

// Info emits msg with keyvals at info level.
func (l *Logger) Info(msg string, keyvals ...interface{}) {
	_ = level.Info(l.base).Log(append([]interface{}{"msg", msg}, keyvals...)...)
}

// Error emits msg with keyvals at error level.
func (l *Logger) Error(msg string, keyvals ...interface{}) {
	_ = level.Error(l.base).Log(append([]interface{}{"msg", msg}, keyvals...)...)
}

// Enabled reports whether debug output is emitted.
func (l *Logger) Enabled() bool {
	return l.enabled
}
