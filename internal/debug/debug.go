// Package debug provides conditional debug output shared by the traversal packages.
package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Logger prints debug output if enabled.
// The zero value is a disabled logger.
type Logger struct {
	enabled bool
	mu      *sync.Mutex
	out     io.Writer
}

// New returns a logger writing to stderr.
func New(enabled bool) Logger {
	return NewTo(enabled, os.Stderr)
}

// NewTo returns a logger writing to w.
func NewTo(enabled bool, w io.Writer) Logger {
	return Logger{enabled: enabled, mu: &sync.Mutex{}, out: w}
}

// Enabled reports whether output is produced.
func (l Logger) Enabled() bool {
	return l.enabled && l.out != nil
}

// Printf prints a "[debug]: " prefixed line if logging is enabled.
// Safe for concurrent use; lines from different goroutines never interleave.
func (l Logger) Printf(format string, args ...any) {
	if !l.Enabled() {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.out, "[debug]: "+format+"\n", args...)
}
