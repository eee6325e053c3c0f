/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package natives implements the intrinsic-method contract from spec.md
// §4.5/§6: a registry keyed by (class, method, descriptor) triples, plus
// the small catalogue of native bodies a study-scale VM needs to run real
// class files (registerNatives no-ops, System/Float/Double intrinsics, and
// Throwable's stack-trace capture).
//
// Grounded on original_source/vm/src/native_methods_registry.rs
// (ClassMethodAndDescriptor key, the reserved "rjvm/*"+tempPrint slot) and
// native_methods_impl.rs (the catalogue of registered methods).
package natives

import (
	"github.com/cnxfgit/rjvm-learn/frame"
	"github.com/cnxfgit/rjvm-learn/heap"
)

// Context is everything a native method body needs from the VM: the full
// frame.Host surface (so natives can allocate objects/strings and invoke
// other methods exactly like interpreted bytecode does), plus the handful
// of capabilities specific to natives — identity hashing, GC triggering,
// stack-trace capture/association, and recording a value the test harness
// observes via VM.Printed.
type Context interface {
	frame.Host

	IdentityHash(ref heap.Reference) uint32
	RunGC() error

	CaptureStackTrace() []frame.StackTraceElement
	AssociateStackTrace(ref heap.Reference, trace []frame.StackTraceElement)
	StackTraceFor(ref heap.Reference) ([]frame.StackTraceElement, bool)

	RecordPrinted(v heap.Value)
}

// Method is the native-method callback ABI from spec.md §6: given the
// receiver (nil for a static method) and the already-popped argument
// list, it returns the method's result (nil for void) or an error —
// either a host-level *verr.VmError or a *frame.JavaException thrown by
// the native body.
type Method func(ctx Context, receiver *heap.Value, args []heap.Value) (*heap.Value, error)

type key struct {
	class      string
	method     string
	descriptor string
}

// Registry is the NativeMethodsRegistry of spec.md §4.5/§6.
type Registry struct {
	methods   map[key]Method
	tempPrint Method
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{methods: make(map[key]Method)}
}

// Register binds a native method body to a (class, method, descriptor)
// triple.
func (r *Registry) Register(class, method, descriptor string, fn Method) {
	r.methods[key{class, method, descriptor}] = fn
}

// SetTempPrint installs the reserved "rjvm/*"+tempPrint callback used by
// the test harness to observe printed values (spec.md §4.5/§6).
func (r *Registry) SetTempPrint(fn Method) {
	r.tempPrint = fn
}

// Lookup resolves a native method body. Once a temp-print callback is
// installed, a class-name prefix "rjvm/" with method name "tempPrint"
// routes to that reserved slot regardless of descriptor and ahead of any
// ordinary entry, matching the original's get() precedence; with no
// callback installed, such a lookup falls through to the ordinary entries.
func (r *Registry) Lookup(class, method, descriptor string) (Method, bool) {
	if isTempPrintSlot(class, method) && r.tempPrint != nil {
		return r.tempPrint, true
	}
	fn, ok := r.methods[key{class, method, descriptor}]
	return fn, ok
}

func isTempPrintSlot(class, method string) bool {
	return len(class) >= 5 && class[:5] == "rjvm/" && method == "tempPrint"
}
