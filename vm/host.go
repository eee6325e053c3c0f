/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package vm

import (
	"github.com/cnxfgit/rjvm-learn/classloader"
	"github.com/cnxfgit/rjvm-learn/frame"
	"github.com/cnxfgit/rjvm-learn/heap"
	"github.com/cnxfgit/rjvm-learn/verr"
)

// ResolveClass satisfies frame.Host by resolving (and initializing) name
// against the VM's own active call stack, matching the single-threaded
// cooperative execution model of spec §5: nested bytecode never needs to
// thread its own call stack through, since there is only ever one live at
// a time per invocation chain.
func (vm *VM) ResolveClass(name string) (*classloader.Class, error) {
	return vm.GetOrResolveClass(vm.activeStack, name)
}

func (vm *VM) GetField(ref heap.Reference, index int, kind heap.ValueKind) heap.Value {
	return vm.heap.GetField(ref, index, kind)
}

func (vm *VM) SetField(ref heap.Reference, index int, v heap.Value) {
	vm.heap.SetField(ref, index, v)
}

func (vm *VM) GetElement(ref heap.Reference, index int, kind heap.ValueKind) (heap.Value, error) {
	return vm.heap.GetElement(ref, index, kind)
}

func (vm *VM) SetElement(ref heap.Reference, index int, v heap.Value) error {
	return vm.heap.SetElement(ref, index, v)
}

func (vm *VM) ArrayLength(ref heap.Reference) int {
	return vm.heap.ArrayLength(ref)
}

func (vm *VM) ArrayElementsType(ref heap.Reference) heap.ArrayEntryType {
	return vm.heap.ArrayElementsType(ref)
}

// ObjectClass resolves ref's runtime class by the ClassID its allocation
// header carries, used by instanceof/checkcast and exception-table class
// matching (spec §4.5).
func (vm *VM) ObjectClass(ref heap.Reference) (*classloader.Class, error) {
	id := vm.heap.ObjectClassID(ref)
	class, ok := vm.classes.ClassByID(id)
	if !ok {
		return nil, verr.NewClassLoadingError("unresolvable runtime class for object")
	}
	return class, nil
}

// GetStatic/SetStatic read and write class's static storage object,
// allocated once in initClass and keyed by the declaring class's own
// ClassID (spec §4.3: static fields are indexed exactly like instance
// fields, just against a different backing object).
func (vm *VM) GetStatic(class *classloader.Class, fieldIndex int, kind heap.ValueKind) (heap.Value, error) {
	storage, ok := vm.statics[class.ID]
	if !ok {
		return heap.Value{}, verr.NewClassLoadingError("class not initialized: " + class.Name)
	}
	return vm.heap.GetField(storage.Ref, fieldIndex, kind), nil
}

func (vm *VM) SetStatic(class *classloader.Class, fieldIndex int, v heap.Value) error {
	storage, ok := vm.statics[class.ID]
	if !ok {
		return verr.NewClassLoadingError("class not initialized: " + class.Name)
	}
	vm.heap.SetField(storage.Ref, fieldIndex, v)
	return nil
}

// Invoke resolves methodName/descriptor on class as given (searching its
// superclass chain) and runs it on the VM's active call stack — the
// frame.Host entry point the interpreter's invoke* instructions call for
// every nested call (spec §4.5/§4.6). Invoke itself does no dynamic
// dispatch: for invokevirtual and invokeinterface the interpreter passes the
// receiver's runtime class, for invokespecial and invokestatic the class
// named by the method reference.
func (vm *VM) Invoke(class *classloader.Class, methodName, descriptor string, receiver *heap.Value, args []heap.Value) (heap.Value, bool, error) {
	method, declClass, ok := class.FindMethod(methodName, descriptor)
	if !ok {
		return heap.Value{}, false, verr.NewMethodNotFoundException(class.Name, methodName, descriptor)
	}
	return vm.invokeOn(vm.activeStack, frame.ClassAndMethod{Class: declClass, Method: method}, receiver, args)
}

// NewThrowable allocates className (initializing it if needed) and, when
// the class declares a detailMessage field, stores a String holding message
// there; no constructor is run. Neither the interpreter nor the native
// catalogue calls it.
func (vm *VM) NewThrowable(className, message string) (heap.Reference, error) {
	class, err := vm.GetOrResolveClass(vm.activeStack, className)
	if err != nil {
		return 0, err
	}
	ref, err := vm.NewObject(class)
	if err != nil {
		return 0, err
	}
	msgRef, err := vm.NewJavaString(message)
	if err != nil {
		return 0, err
	}
	if slot, ok := class.FindField("detailMessage"); ok {
		vm.heap.SetField(ref, slot.Index, heap.Object(msgRef))
	}
	return ref, nil
}
