/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package vm

import "testing"

func TestNewAssignsIdentityAndActiveStack(t *testing.T) {
	machine := New(DefaultConfig())
	if machine.ID().String() == "" {
		t.Fatalf("expected a non-empty UUID")
	}
	if machine.activeStack == nil {
		t.Fatalf("expected New to allocate an initial active call stack")
	}
}

func TestAllocateCallStackTracksEveryStackForGCRoots(t *testing.T) {
	machine := New(DefaultConfig())
	before := len(machine.callStacks)

	extra := machine.AllocateCallStack()
	if extra == nil {
		t.Fatalf("expected a non-nil call stack")
	}
	if len(machine.callStacks) != before+1 {
		t.Fatalf("expected AllocateCallStack to register the new stack for GC rooting")
	}
}

func TestRunGarbageCollectionOnEmptyHeapSucceeds(t *testing.T) {
	machine := New(DefaultConfig())
	if err := machine.RunGarbageCollection(); err != nil {
		t.Fatalf("unexpected error collecting an empty heap: %v", err)
	}
}

func TestResolveClassMethodReportsMissingClass(t *testing.T) {
	machine := New(DefaultConfig())
	stack := machine.AllocateCallStack()
	if _, err := machine.ResolveClassMethod(stack, "does/not/Exist", "main", "([Ljava/lang/String;)V"); err == nil {
		t.Fatalf("expected an error resolving a class absent from every classpath entry")
	}
}
