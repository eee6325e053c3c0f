/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package vm

import (
	"github.com/cnxfgit/rjvm-learn/frame"
	"github.com/cnxfgit/rjvm-learn/heap"
)

// IdentityHash exposes the allocator's per-object identity hash, used by
// System.identityHashCode and as the key stack traces are associated under.
func (vm *VM) IdentityHash(ref heap.Reference) uint32 {
	return vm.heap.IdentityHash(ref)
}

// RunGC satisfies natives.Context; System.gc() calls this directly.
func (vm *VM) RunGC() error {
	return vm.RunGarbageCollection()
}

// CaptureStackTrace snapshots the active call stack innermost-frame-first,
// the moment a Throwable's fillInStackTrace native runs (spec.md §7,
// supplemented from original_source/vm/src/vm.rs's
// associate_stack_trace_with_throwable call site).
func (vm *VM) CaptureStackTrace() []frame.StackTraceElement {
	return vm.activeStack.StackTraceElements()
}

// AssociateStackTrace records trace against the throwable identified by
// ref's identity hash, grounded on original_source/vm/src/vm.rs keying its
// stack_traces map by object identity rather than by reference (so the
// association survives a GC compaction that changes ref's address).
func (vm *VM) AssociateStackTrace(ref heap.Reference, trace []frame.StackTraceElement) {
	vm.stackTraces[vm.heap.IdentityHash(ref)] = trace
}

// StackTraceFor looks up a previously captured trace by ref's identity
// hash.
func (vm *VM) StackTraceFor(ref heap.Reference) ([]frame.StackTraceElement, bool) {
	t, ok := vm.stackTraces[vm.heap.IdentityHash(ref)]
	return t, ok
}

// RecordPrinted appends v to Printed, the test-visible record the
// reserved rjvm/*::tempPrint native slot writes to.
func (vm *VM) RecordPrinted(v heap.Value) {
	vm.Printed = append(vm.Printed, v)
}
