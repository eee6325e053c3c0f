/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package trace is the VM-wide logging facility. It mirrors the teacher
// project's own trace/log package: a small level-gated wrapper over the
// standard library logger rather than a third-party logging framework,
// since nothing touching class loading or interpretation in the retrieval
// pack reaches for zap/zerolog/logrus.
package trace

import (
	"fmt"
	"log"
	"os"
	"sync"
)

type Level int

const (
	SEVERE Level = iota
	WARNING
	INFO
	FINE
)

var (
	mu   sync.Mutex
	cur  = WARNING
	impl = log.New(os.Stderr, "", log.Ltime)
)

// SetLevel sets the minimum level that will be emitted.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	cur = l
}

func emit(l Level, prefix, msg string) {
	mu.Lock()
	enabled := l <= cur
	mu.Unlock()
	if enabled {
		impl.Println(prefix + msg)
	}
}

// Error logs an unconditional error-level message.
func Error(msg string) { emit(SEVERE, "[SEVERE] ", msg) }

// Errorf is the Printf-style variant of Error.
func Errorf(format string, args ...interface{}) { Error(fmt.Sprintf(format, args...)) }

// Info logs an informational message, gated by the current level.
func Info(msg string) { emit(INFO, "[INFO] ", msg) }

// Trace logs a fine-grained diagnostic message, gated by the current level.
func Trace(msg string) { emit(FINE, "[TRACE] ", msg) }

// Tracef is the Printf-style variant of Trace.
func Tracef(format string, args ...interface{}) { Trace(fmt.Sprintf(format, args...)) }
