/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package frame

import (
	"github.com/cnxfgit/rjvm-learn/classloader"
	"github.com/cnxfgit/rjvm-learn/heap"
)

// Host is everything a CallFrame needs from the VM façade to execute
// bytecode. It exists so this package never imports the vm package (which
// imports frame to drive the call stack) — the Rust original can let
// call_frame.rs and vm.rs reference each other directly because they share
// a crate; Go needs the dependency cut at an interface instead.
type Host interface {
	ResolveClass(name string) (*classloader.Class, error)

	NewObject(class *classloader.Class) (heap.Reference, error)
	NewArray(elementsType heap.ArrayEntryType, length int) (heap.Reference, error)
	CloneArray(ref heap.Reference) (heap.Reference, error)

	GetField(ref heap.Reference, index int, kind heap.ValueKind) heap.Value
	SetField(ref heap.Reference, index int, v heap.Value)
	GetElement(ref heap.Reference, index int, kind heap.ValueKind) (heap.Value, error)
	SetElement(ref heap.Reference, index int, v heap.Value) error
	ArrayLength(ref heap.Reference) int
	ArrayElementsType(ref heap.Reference) heap.ArrayEntryType
	ObjectClass(ref heap.Reference) (*classloader.Class, error)

	GetStatic(class *classloader.Class, fieldIndex int, kind heap.ValueKind) (heap.Value, error)
	SetStatic(class *classloader.Class, fieldIndex int, v heap.Value) error

	// Invoke recursively executes a resolved method on a new frame. hasValue
	// is false for void returns.
	Invoke(class *classloader.Class, methodName, descriptor string, receiver *heap.Value, args []heap.Value) (heap.Value, bool, error)

	// NewThrowable allocates an instance of className carrying the given
	// detail message. The interpreter does not call it: host-level
	// conditions raised by bytecode (array bounds, null deref, cast failure,
	// division by zero) surface as *verr.VmError values, which take no part
	// in catch-table matching.
	NewThrowable(className, message string) (heap.Reference, error)

	// NewJavaString allocates a java/lang/String heap object holding text;
	// ldc uses it to materialize String constants from the constant pool.
	NewJavaString(text string) (heap.Reference, error)
}
