/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package frame

import "github.com/cnxfgit/rjvm-learn/heap"

// CallStack is one thread-equivalent stack of CallFrames (spec §3/§4.5).
// Frames are heap-allocated individually and referenced here by pointer, so
// the stability requirement spec §9 calls out ("a growing frame list must
// not invalidate existing frame pointers") is satisfied by Go's GC pinning
// the frame itself regardless of how this slice of pointers is grown —
// the same guarantee original_source/vm/src/call_stack.rs gets from a
// typed_arena::Arena<CallFrame>, without needing a dedicated arena type.
type CallStack struct {
	frames []*CallFrame
}

// NewCallStack returns an empty call stack.
func NewCallStack() *CallStack {
	return &CallStack{}
}

// PushFrame adds f as the new top frame.
func (cs *CallStack) PushFrame(f *CallFrame) {
	cs.frames = append(cs.frames, f)
}

// PopFrame discards the top frame.
func (cs *CallStack) PopFrame() {
	if len(cs.frames) == 0 {
		return
	}
	cs.frames = cs.frames[:len(cs.frames)-1]
}

// Depth reports how many frames are currently live.
func (cs *CallStack) Depth() int {
	return len(cs.frames)
}

// Top returns the innermost frame, or nil if the stack is empty.
func (cs *CallStack) Top() *CallFrame {
	if len(cs.frames) == 0 {
		return nil
	}
	return cs.frames[len(cs.frames)-1]
}

// GCRoots appends pointers to every live local and operand-stack slot of
// every frame on this stack, for the VM to fold into the GC root set.
func (cs *CallStack) GCRoots(roots []*heap.Value) []*heap.Value {
	for _, f := range cs.frames {
		roots = f.GCRoots(roots)
	}
	return roots
}

// StackTraceElements captures the current stack, innermost frame first —
// the order the StackTracePrinting scenario expects (spec.md §8 scenario 5,
// where the method that triggered the capture is itself the first entry).
func (cs *CallStack) StackTraceElements() []StackTraceElement {
	elements := make([]StackTraceElement, len(cs.frames))
	for i, f := range cs.frames {
		elements[len(cs.frames)-1-i] = f.ToStackTraceElement()
	}
	return elements
}
