/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package vm

import (
	"github.com/google/uuid"

	"github.com/cnxfgit/rjvm-learn/classloader"
	"github.com/cnxfgit/rjvm-learn/classpath"
	"github.com/cnxfgit/rjvm-learn/frame"
	"github.com/cnxfgit/rjvm-learn/heap"
	"github.com/cnxfgit/rjvm-learn/natives"
	"github.com/cnxfgit/rjvm-learn/trace"
	"github.com/cnxfgit/rjvm-learn/verr"
)

// VM is the façade described in spec.md §2/§4.6: it ties the class-file
// reader (via classloader.ClassManager), the heap/GC (heap.ObjectAllocator),
// and the frame-based interpreter (frame.CallStack/CallFrame) together
// behind one object, and is itself the frame.Host the interpreter drives.
//
// Each VM instance is tagged with a UUID for log/diagnostic correlation —
// grounded on the pack's broad use of github.com/google/uuid for
// service-shaped identity, the natural fit here since a VM façade has no
// other externally visible correlation id.
type VM struct {
	id uuid.UUID

	classPath *classpath.ClassPath
	classes   *classloader.ClassManager
	heap      *heap.ObjectAllocator

	callStacks  []*frame.CallStack
	activeStack *frame.CallStack

	statics map[heap.ClassID]*heap.Value

	natives *natives.Registry

	stackTraces map[uint32][]frame.StackTraceElement

	// Printed is the test-visible record of every value handed to the
	// reserved rjvm/*::tempPrint native slot (spec.md §4.6/§8).
	Printed []heap.Value
}

// New constructs a VM per the Config — analogous to
// original_source/vm/src/vm.rs's Vm::new. It registers the native method
// catalogue and then allocates the initial active call stack.
func New(cfg Config) *VM {
	trace.SetLevel(cfg.TraceLevel)
	maxMemory := cfg.MaxMemory
	if maxMemory == 0 {
		maxMemory = DefaultMaxMemory
	}

	cp := classpath.New()
	v := &VM{
		id:          uuid.New(),
		classPath:   cp,
		classes:     classloader.NewClassManager(cp),
		heap:        heap.NewObjectAllocator(maxMemory),
		statics:     make(map[heap.ClassID]*heap.Value),
		natives:     natives.NewRegistry(),
		stackTraces: make(map[uint32][]frame.StackTraceElement),
	}
	natives.RegisterBuiltins(v.natives)
	v.activeStack = v.AllocateCallStack()

	trace.Info("created VM " + v.id.String())
	return v
}

// ID returns the VM's correlation UUID.
func (vm *VM) ID() uuid.UUID { return vm.id }

// AppendClassPath adds another classpath.Entry to the search order used to
// resolve class names (spec.md §6).
func (vm *VM) AppendClassPath(entry classpath.Entry) {
	vm.classPath.Add(entry)
}

// AllocateCallStack creates a new, empty call stack and registers it with
// the VM so its frames are included as GC roots for the rest of the VM's
// life (spec.md §4.6's "CallStack arena").
func (vm *VM) AllocateCallStack() *frame.CallStack {
	stack := frame.NewCallStack()
	vm.callStacks = append(vm.callStacks, stack)
	return stack
}

// ResolveClassMethod resolves className (initializing it if this is the
// first time it is touched) and looks up methodName/descriptor on it,
// returning the frame.ClassAndMethod pair the VM's public invoke surface
// expects (spec.md §6: "resolve_class_method").
func (vm *VM) ResolveClassMethod(stack *frame.CallStack, className, methodName, descriptor string) (frame.ClassAndMethod, error) {
	class, err := vm.GetOrResolveClass(stack, className)
	if err != nil {
		return frame.ClassAndMethod{}, err
	}
	method, declClass, ok := class.FindMethod(methodName, descriptor)
	if !ok {
		return frame.ClassAndMethod{}, verr.NewMethodNotFoundException(className, methodName, descriptor)
	}
	return frame.ClassAndMethod{Class: declClass, Method: method}, nil
}

// GetOrResolveClass resolves name via the ClassManager and, for every class
// newly loaded as part of that resolution, allocates its static storage and
// runs its <clinit> — in the superclass-first order the ClassManager
// guarantees (spec.md §4.3/§4.6).
func (vm *VM) GetOrResolveClass(stack *frame.CallStack, name string) (*classloader.Class, error) {
	class, toInitialize, err := vm.classes.GetOrResolveClass(name)
	if err != nil {
		return nil, err
	}
	for _, c := range toInitialize {
		if err := vm.initClass(stack, c); err != nil {
			return nil, err
		}
	}
	return class, nil
}

// initClass allocates class's static-field storage object and, if it
// declares <clinit>, runs it. A missing <clinit> is a no-op (spec.md §9's
// Open Question resolution).
func (vm *VM) initClass(stack *frame.CallStack, class *classloader.Class) error {
	trace.Tracef("initializing class %s", class.Name)

	ref, ok := vm.heap.AllocateObject(class.ID, class.NumTotalFields())
	if !ok {
		if err := vm.RunGarbageCollection(); err != nil {
			return err
		}
		ref, ok = vm.heap.AllocateObject(class.ID, class.NumTotalFields())
		if !ok {
			return verr.NewValidationException()
		}
	}
	vm.statics[class.ID] = &heap.Value{Kind: heap.ObjectVal, Ref: ref}

	method, declClass, ok := class.FindMethod("<clinit>", "()V")
	if !ok || declClass != class {
		// <clinit> is never inherited; only run it when this class
		// itself declares one.
		return nil
	}
	_, _, err := vm.invokeOn(stack, frame.ClassAndMethod{Class: class, Method: method}, nil, nil)
	return err
}

// NewObject allocates a zeroed instance of class, retrying once after a
// garbage collection on failure (spec.md §4.6).
func (vm *VM) NewObject(class *classloader.Class) (heap.Reference, error) {
	ref, ok := vm.heap.AllocateObject(class.ID, class.NumTotalFields())
	if ok {
		return ref, nil
	}
	if err := vm.RunGarbageCollection(); err != nil {
		return 0, err
	}
	ref, ok = vm.heap.AllocateObject(class.ID, class.NumTotalFields())
	if !ok {
		return 0, verr.NewValidationException()
	}
	return ref, nil
}

// NewArray allocates a zeroed array of length elements of elementsType,
// with the same GC-and-retry-once policy as NewObject.
func (vm *VM) NewArray(elementsType heap.ArrayEntryType, length int) (heap.Reference, error) {
	ref, ok := vm.heap.AllocateArray(elementsType, length)
	if ok {
		return ref, nil
	}
	if err := vm.RunGarbageCollection(); err != nil {
		return 0, err
	}
	ref, ok = vm.heap.AllocateArray(elementsType, length)
	if !ok {
		return 0, verr.NewValidationException()
	}
	return ref, nil
}

// CloneArray allocates a new array of ref's element type and length and
// copies every element across (spec.md §4.6).
func (vm *VM) CloneArray(ref heap.Reference) (heap.Reference, error) {
	if vm.heap.Kind(ref) != heap.KindArray {
		return 0, verr.NewValidationException()
	}
	elemType := vm.heap.ArrayElementsType(ref)
	length := vm.heap.ArrayLength(ref)
	kind := heap.IntVal
	if elemType == heap.ArrayOfObject {
		kind = heap.ObjectVal
	}

	newRef, err := vm.NewArray(elemType, length)
	if err != nil {
		return 0, err
	}
	for i := 0; i < length; i++ {
		v, err := vm.heap.GetElement(ref, i, kind)
		if err != nil {
			return 0, err
		}
		if err := vm.heap.SetElement(newRef, i, v); err != nil {
			return 0, err
		}
	}
	return newRef, nil
}

// RunGarbageCollection gathers roots (every class's static storage plus
// every live local/operand-stack slot across every active call stack) and
// delegates to the allocator's 3-pass copying collector (spec.md §4.4/§4.6).
func (vm *VM) RunGarbageCollection() error {
	trace.Trace("running garbage collection")
	var roots []*heap.Value
	for _, static := range vm.statics {
		roots = append(roots, static)
	}
	for _, stack := range vm.callStacks {
		roots = stack.GCRoots(roots)
	}
	return vm.heap.RunGC(roots, vm.classes)
}
