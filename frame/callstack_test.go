/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package frame

import (
	"testing"

	"github.com/cnxfgit/rjvm-learn/classloader"
	"github.com/cnxfgit/rjvm-learn/heap"
	"github.com/cnxfgit/rjvm-learn/reader"
)

func staticMethodFrame(t *testing.T, className, methodName string, maxLocals uint16) *CallFrame {
	t.Helper()
	sourceFile := "Test.java"
	class := &classloader.Class{
		Name:       className,
		SourceFile: &sourceFile,
	}
	method := &reader.ClassFileMethod{
		Name:           methodName,
		Flags:          reader.MethodAccStatic,
		TypeDescriptor: "()V",
		Code: &reader.ClassFileMethodCode{
			MaxStack:  2,
			MaxLocals: maxLocals,
			Code:      []byte{0x00}, // nop; never executed by these tests
			LineNumberTable: reader.NewLineNumberTable([]reader.LineNumberTableEntry{
				{StartPC: 0, LineNumber: 10},
			}),
		},
	}
	f, err := NewCallFrame(ClassAndMethod{Class: class, Method: method}, nil, nil)
	if err != nil {
		t.Fatalf("NewCallFrame: %v", err)
	}
	return f
}

func TestCallStackPushPopDepth(t *testing.T) {
	cs := NewCallStack()
	if cs.Depth() != 0 || cs.Top() != nil {
		t.Fatalf("expected empty stack")
	}

	f1 := staticMethodFrame(t, "pkg/A", "one", 0)
	f2 := staticMethodFrame(t, "pkg/B", "two", 0)

	cs.PushFrame(f1)
	cs.PushFrame(f2)
	if cs.Depth() != 2 {
		t.Fatalf("expected depth 2, got %d", cs.Depth())
	}
	if cs.Top() != f2 {
		t.Fatalf("expected top frame to be the most recently pushed")
	}

	cs.PopFrame()
	if cs.Depth() != 1 || cs.Top() != f1 {
		t.Fatalf("expected depth 1 with f1 on top after pop")
	}

	cs.PopFrame()
	cs.PopFrame() // popping an empty stack must not panic
	if cs.Depth() != 0 {
		t.Fatalf("expected depth 0")
	}
}

func TestCallStackStackTraceElementsInnermostFirst(t *testing.T) {
	cs := NewCallStack()
	cs.PushFrame(staticMethodFrame(t, "pkg/Outer", "outer", 0))
	cs.PushFrame(staticMethodFrame(t, "pkg/Inner", "inner", 0))

	elements := cs.StackTraceElements()
	if len(elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(elements))
	}
	if elements[0].ClassName != "pkg/Inner" || elements[0].MethodName != "inner" {
		t.Fatalf("expected innermost frame first, got %+v", elements[0])
	}
	if elements[1].ClassName != "pkg/Outer" || elements[1].MethodName != "outer" {
		t.Fatalf("expected outermost frame last, got %+v", elements[1])
	}
	if got, want := elements[0].String(), "pkg/Inner::inner - Test.java:10"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestCallStackGCRootsIncludesLocals(t *testing.T) {
	cs := NewCallStack()
	cs.PushFrame(staticMethodFrame(t, "pkg/A", "withLocals", 3))

	roots := cs.GCRoots(nil)
	if len(roots) != 3 {
		t.Fatalf("expected 3 root slots (locals only, empty operand stack), got %d", len(roots))
	}
	for _, r := range roots {
		if r.Kind != heap.Uninitialized {
			t.Fatalf("expected freshly allocated locals to be Uninitialized, got %v", r.Kind)
		}
	}
}
