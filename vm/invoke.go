/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package vm

import (
	"github.com/cnxfgit/rjvm-learn/frame"
	"github.com/cnxfgit/rjvm-learn/heap"
	"github.com/cnxfgit/rjvm-learn/verr"
)

// invokeOn runs cm on stack: a native method dispatches straight to the
// registry, an interpreted one gets a fresh frame pushed/popped around
// frame.CallFrame.Execute. stack becomes the VM's active stack for the
// duration of the call, restored on return — spec §5's single-threaded
// cooperative execution model means only one call stack is ever "live"
// for bytecode to recurse against at a time, the same simplification
// original_source/vm/src/vm.rs's Vm::invoke makes by taking call_stack as
// a parameter threaded by the one cooperative scheduler.
func (vm *VM) invokeOn(stack *frame.CallStack, cm frame.ClassAndMethod, receiver *heap.Value, args []heap.Value) (heap.Value, bool, error) {
	previous := vm.activeStack
	vm.activeStack = stack
	defer func() { vm.activeStack = previous }()

	if cm.Method.Flags.IsNative() {
		return vm.invokeNative(cm, receiver, args)
	}

	f, err := frame.NewCallFrame(cm, receiver, args)
	if err != nil {
		return heap.Value{}, false, err
	}
	stack.PushFrame(f)
	defer stack.PopFrame()

	return f.Execute(vm)
}

// invokeNative looks up cm in the native registry and runs it directly —
// no CallFrame, no operand stack, no GC roots beyond what the caller's own
// frame already contributes (spec §4.5/§6).
func (vm *VM) invokeNative(cm frame.ClassAndMethod, receiver *heap.Value, args []heap.Value) (heap.Value, bool, error) {
	fn, ok := vm.natives.Lookup(cm.Class.Name, cm.Method.Name, cm.Method.TypeDescriptor)
	if !ok {
		return heap.Value{}, false, verr.NewMethodNotFoundException(cm.Class.Name, cm.Method.Name, cm.Method.TypeDescriptor)
	}
	result, err := fn(vm, receiver, args)
	if err != nil {
		return heap.Value{}, false, err
	}
	if result == nil {
		return heap.Value{}, false, nil
	}
	return *result, true, nil
}
