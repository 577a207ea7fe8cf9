// Package debug provides conditional diagnostic output.
package debug

import (
	"fmt"
	"io"
	"os"
)

// Logger prints debug output when enabled.
type Logger struct {
	enabled bool
	out     io.Writer
}

// New returns a Logger writing to stderr.
func New(enabled bool) Logger {
	return Logger{enabled: enabled, out: os.Stderr}
}

// To returns a copy of the logger writing to w.
func (l Logger) To(w io.Writer) Logger {
	l.out = w

	return l
}

// Enabled reports whether output is printed.
func (l Logger) Enabled() bool {
	return l.enabled
}

// Printf prints debug output if logging is enabled.
func (l Logger) Printf(format string, args ...any) {
	if l.enabled && l.out != nil {
		fmt.Fprintf(l.out, "[debug]: "+format, args...)
	}
}
