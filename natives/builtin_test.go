/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package natives

import (
	"math"
	"testing"

	"github.com/cnxfgit/rjvm-learn/heap"
)

func TestRegisterBuiltinsCoversCatalogue(t *testing.T) {
	r := NewRegistry()
	RegisterBuiltins(r)

	cases := []struct{ class, method, descriptor string }{
		{"java/lang/Object", "registerNatives", "()V"},
		{"java/lang/System", "nanoTime", "()J"},
		{"java/lang/System", "currentTimeMillis", "()J"},
		{"java/lang/System", "identityHashCode", "(Ljava/lang/Object;)I"},
		{"java/lang/System", "gc", "()V"},
		{"java/lang/System", "arraycopy", "(Ljava/lang/Object;ILjava/lang/Object;II)V"},
		{"java/lang/Float", "floatToRawIntBits", "(F)I"},
		{"java/lang/Double", "doubleToRawLongBits", "(D)J"},
		{"java/lang/Throwable", "fillInStackTrace", "(I)Ljava/lang/Throwable;"},
	}
	for _, c := range cases {
		if _, ok := r.Lookup(c.class, c.method, c.descriptor); !ok {
			t.Errorf("expected %s::%s%s to be registered", c.class, c.method, c.descriptor)
		}
	}
}

func TestFloatToRawIntBitsRoundTrips(t *testing.T) {
	r := NewRegistry()
	RegisterBuiltins(r)
	fn, _ := r.Lookup("java/lang/Float", "floatToRawIntBits", "(F)I")

	result, err := fn(nil, nil, []heap.Value{heap.Float(1.5)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := math.Float32frombits(uint32(result.Int))
	if got != 1.5 {
		t.Fatalf("round trip mismatch: got %v, want 1.5", got)
	}
}

func TestDoubleToRawLongBitsRoundTrips(t *testing.T) {
	r := NewRegistry()
	RegisterBuiltins(r)
	fn, _ := r.Lookup("java/lang/Double", "doubleToRawLongBits", "(D)J")

	result, err := fn(nil, nil, []heap.Value{heap.Double(2.25)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := math.Float64frombits(uint64(result.Long))
	if got != 2.25 {
		t.Fatalf("round trip mismatch: got %v, want 2.25", got)
	}
}
