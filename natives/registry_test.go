/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package natives

import (
	"testing"

	"github.com/cnxfgit/rjvm-learn/heap"
)

func TestRegistryLookupMissReturnsFalse(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Lookup("java/lang/Object", "toString", "()Ljava/lang/String;"); ok {
		t.Fatalf("expected miss on an empty registry")
	}
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	called := false
	r.Register("java/lang/System", "gc", "()V", func(Context, *heap.Value, []heap.Value) (*heap.Value, error) {
		called = true
		return nil, nil
	})

	fn, ok := r.Lookup("java/lang/System", "gc", "()V")
	if !ok {
		t.Fatalf("expected a registered method to be found")
	}
	if _, err := fn(nil, nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatalf("expected the registered body to run")
	}

	if _, ok := r.Lookup("java/lang/System", "gc", "(I)V"); ok {
		t.Fatalf("expected a descriptor mismatch to miss")
	}
}

func TestRegistryTempPrintSlotTakesPrecedence(t *testing.T) {
	r := NewRegistry()
	var seen []heap.Value
	r.SetTempPrint(func(_ Context, _ *heap.Value, args []heap.Value) (*heap.Value, error) {
		seen = append(seen, args...)
		return nil, nil
	})
	// Also register an ordinary entry under the exact same key, to confirm
	// the reserved rjvm/*::tempPrint slot wins regardless.
	r.Register("rjvm/Harness", "tempPrint", "(I)V", func(Context, *heap.Value, []heap.Value) (*heap.Value, error) {
		t.Fatalf("the ordinary registry entry must never be reached for tempPrint")
		return nil, nil
	})

	fn, ok := r.Lookup("rjvm/Harness", "tempPrint", "(I)V")
	if !ok {
		t.Fatalf("expected the tempPrint slot to resolve")
	}
	arg := heap.Int(42)
	if _, err := fn(nil, nil, []heap.Value{arg}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 1 || seen[0].Int != 42 {
		t.Fatalf("expected tempPrint body to observe the argument, got %+v", seen)
	}
}

func TestRegistryTempPrintRequiresRjvmPrefix(t *testing.T) {
	r := NewRegistry()
	r.SetTempPrint(func(Context, *heap.Value, []heap.Value) (*heap.Value, error) {
		t.Fatalf("tempPrint slot must not match outside the rjvm/ prefix")
		return nil, nil
	})
	if _, ok := r.Lookup("other/Harness", "tempPrint", "(I)V"); ok {
		t.Fatalf("expected a miss for a non-rjvm/ class name")
	}
}
