/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package frame

import (
	"github.com/cnxfgit/rjvm-learn/classloader"
	"github.com/cnxfgit/rjvm-learn/heap"
	"github.com/cnxfgit/rjvm-learn/reader"
	"github.com/cnxfgit/rjvm-learn/trace"
	"github.com/cnxfgit/rjvm-learn/verr"
)

// ClassAndMethod pins the resolved class+method pair a CallFrame executes.
type ClassAndMethod struct {
	Class  *classloader.Class
	Method *reader.ClassFileMethod
}

// CallFrame is one method activation: program counter, locals, and a
// fixed-capacity operand stack, plus the method's code. Frames are
// heap-allocated individually (via NewCallFrame) and referenced by pointer
// from the CallStack's frame list, so a pointer handed out remains valid
// even as that list grows — Go's GC keeps the frame itself pinned
// regardless of how the slice of pointers is reallocated.
type CallFrame struct {
	classAndMethod ClassAndMethod
	pc             uint16
	locals         []heap.Value
	stack          []heap.Value
	stackTop       int
	code           []byte
}

// NewCallFrame builds a frame for classAndMethod with the given optional
// receiver and arguments, applying the validation rules from spec §4.5:
// reject a receiver for a static method, reject a missing receiver for an
// instance method, and reject native methods (they use a different
// dispatch path entirely).
func NewCallFrame(classAndMethod ClassAndMethod, receiver *heap.Value, args []heap.Value) (*CallFrame, error) {
	method := classAndMethod.Method
	if method.Flags.IsNative() {
		return nil, verr.NewValidationException()
	}
	isStatic := method.Flags.IsStatic()
	if isStatic && receiver != nil {
		return nil, verr.NewValidationException()
	}
	if !isStatic && receiver == nil {
		return nil, verr.NewNullPointerException()
	}
	if method.Code == nil {
		return nil, verr.NewValidationException()
	}

	code := method.Code
	locals := make([]heap.Value, code.MaxLocals)
	idx := 0
	if receiver != nil {
		locals[idx] = *receiver
		idx++
	}
	for _, a := range args {
		locals[idx] = a
		idx++
		if a.Kind == heap.LongVal || a.Kind == heap.DoubleVal {
			idx++ // wide values occupy two local slots
		}
	}
	for ; idx < len(locals); idx++ {
		locals[idx] = heap.Value{Kind: heap.Uninitialized}
	}

	return &CallFrame{
		classAndMethod: classAndMethod,
		locals:         locals,
		stack:          make([]heap.Value, code.MaxStack),
		code:           code.Code,
	}, nil
}

// PC returns the frame's current program counter, used for line-number
// lookups when building a stack trace.
func (f *CallFrame) PC() uint16 { return f.pc }

func (f *CallFrame) ClassAndMethod() ClassAndMethod { return f.classAndMethod }

func (f *CallFrame) push(v heap.Value) error {
	if f.stackTop >= len(f.stack) {
		return verr.NewValidationException()
	}
	f.stack[f.stackTop] = v
	f.stackTop++
	return nil
}

func (f *CallFrame) pop() (heap.Value, error) {
	if f.stackTop == 0 {
		return heap.Value{}, verr.NewValidationException()
	}
	f.stackTop--
	return f.stack[f.stackTop], nil
}

func (f *CallFrame) peek() (heap.Value, error) {
	if f.stackTop == 0 {
		return heap.Value{}, verr.NewValidationException()
	}
	return f.stack[f.stackTop-1], nil
}

// GCRoots appends pointers to every live local and operand-stack slot in
// this frame, for the VM to fold into the GC root set.
func (f *CallFrame) GCRoots(roots []*heap.Value) []*heap.Value {
	for i := range f.locals {
		roots = append(roots, &f.locals[i])
	}
	for i := 0; i < f.stackTop; i++ {
		roots = append(roots, &f.stack[i])
	}
	return roots
}

// Execute runs the bytecode loop described in spec §4.5 until a return,
// an unhandled host error, or an unhandled guest exception.
func (f *CallFrame) Execute(host Host) (heap.Value, bool, error) {
	trace.Tracef("executing %s::%s", f.classAndMethod.Class.Name, f.classAndMethod.Method.Name)

	for {
		executedInstructionPC := f.pc
		op, err := f.fetchOpcode()
		if err != nil {
			return heap.Value{}, false, err
		}

		result, hasValue, retVal, err := f.executeInstruction(host, op)
		if err == nil {
			if result == instrReturn {
				return retVal, hasValue, nil
			}
			continue
		}

		javaExc, isJavaExc := AsJavaException(err)
		if !isJavaExc {
			return heap.Value{}, false, err
		}

		handlerPC, handlerErr := f.findExceptionHandler(host, executedInstructionPC, javaExc)
		if handlerErr != nil {
			return heap.Value{}, false, handlerErr
		}
		if handlerPC == nil {
			return heap.Value{}, false, err
		}
		f.stackTop = 0
		if pushErr := f.push(heap.Object(javaExc.Ref)); pushErr != nil {
			return heap.Value{}, false, pushErr
		}
		f.pc = *handlerPC
	}
}

type instrOutcome int

const (
	instrContinue instrOutcome = iota
	instrReturn
)

// findExceptionHandler implements spec §4.5's exception lookup: using the
// PC of the instruction that threw (captured before the PC advance), walk
// the exception table entries covering it in declaration order; a nil
// catch class matches unconditionally (finally-style), otherwise the
// exception's class must be a subclass of the resolved catch class.
func (f *CallFrame) findExceptionHandler(host Host, pc uint16, exc *JavaException) (*uint16, error) {
	code := f.classAndMethod.Method.Code
	for _, entry := range code.ExceptionTable {
		if !entry.Covers(pc) {
			continue
		}
		if entry.CatchClass == nil {
			h := entry.HandlerPC
			return &h, nil
		}
		catchClass, err := host.ResolveClass(*entry.CatchClass)
		if err != nil {
			return nil, err
		}
		excClass, err := host.ObjectClass(exc.Ref)
		if err != nil {
			return nil, err
		}
		if excClass.IsSubclassOf(catchClass) {
			h := entry.HandlerPC
			return &h, nil
		}
	}
	return nil, nil
}
