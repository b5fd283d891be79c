/*
Package telemetry is the engine's thin logging layer. The teacher repo
never reaches for a structured-logging dependency anywhere in its source
(SantaLucia logs progress with plain fmt.Printf calls); this package keeps
that same plain style but collects it behind a small Logger type. No
other package in this module imports it; the matrix builder and the DE
optimizer do not log.
*/
package telemetry

import (
	"fmt"
	"io"
	"os"
)

// Logger writes prefixed, leveled lines to an io.Writer. The zero value
// is not usable; construct with New.
type Logger struct {
	out    io.Writer
	prefix string
}

// New returns a Logger that writes to w, prefixing every line with
// prefix (typically a job fingerprint or component name).
func New(w io.Writer, prefix string) *Logger {
	return &Logger{out: w, prefix: prefix}
}

// Default returns a Logger writing to os.Stderr with no prefix.
func Default() *Logger {
	return New(os.Stderr, "")
}

func (l *Logger) line(level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if l.prefix != "" {
		fmt.Fprintf(l.out, "[%s] %s: %s\n", level, l.prefix, msg)
		return
	}
	fmt.Fprintf(l.out, "[%s] %s\n", level, msg)
}

// Debugf logs fine-grained progress (e.g. per-chunk matrix fill, per-
// generation DE summaries).
func (l *Logger) Debugf(format string, args ...interface{}) { l.line("debug", format, args...) }

// Infof logs job-level milestones (job start, job complete).
func (l *Logger) Infof(format string, args ...interface{}) { l.line("info", format, args...) }

// Warnf logs non-fatal conditions the caller should know about, such as
// NoImprovement, Cancelled, or TimeBudgetExhausted outcomes.
func (l *Logger) Warnf(format string, args ...interface{}) { l.line("warn", format, args...) }
