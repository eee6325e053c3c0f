/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package vm is the façade of spec.md §4.6: it owns the ClassManager, the
// ObjectAllocator, the call stacks, the per-class static storage table, the
// native method registry, and the stack-trace-by-identity-hash table, and
// it is what implements frame.Host for the interpreter.
package vm

import "github.com/cnxfgit/rjvm-learn/trace"

// DefaultMaxMemory matches the 10 MB heap cap spec.md §8 scenario 7 runs
// the GarbageCollection fixture under.
const DefaultMaxMemory = 10 * 1024 * 1024

// Config configures a new VM. It is the thin collaborator spec.md §1
// leaves to the command-line entry point: cmd/rjvm populates one from
// flags and hands it to vm.New.
type Config struct {
	// MaxMemory is the total heap size in bytes, split into two equal
	// semi-spaces by the allocator (spec §4.4).
	MaxMemory uint32
	// TraceLevel gates the shared trace package's verbosity.
	TraceLevel trace.Level
}

// DefaultConfig returns a Config with a sensible default heap size and
// warning-level tracing.
func DefaultConfig() Config {
	return Config{MaxMemory: DefaultMaxMemory, TraceLevel: trace.WARNING}
}
