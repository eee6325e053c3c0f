/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package reader

import "testing"

// TestConstantPoolIndexZeroAlwaysInvalid exercises spec.md §8's "index 0
// always fails" universal property.
func TestConstantPoolIndexZeroAlwaysInvalid(t *testing.T) {
	cp := NewConstantPool()
	cp.Add(ConstantPoolEntry{Kind: Utf8, Utf8Value: "x"})
	if _, err := cp.Get(0); err == nil {
		t.Fatal("expected index 0 to be invalid")
	}
}

// TestConstantPoolRoundTripsAddedEntries exercises spec.md §8: for every
// index written via Add, Get returns the same entry back.
func TestConstantPoolRoundTripsAddedEntries(t *testing.T) {
	cp := NewConstantPool()
	cp.Add(ConstantPoolEntry{Kind: Utf8, Utf8Value: "hello"})
	cp.Add(ConstantPoolEntry{Kind: Integer, IntValue: 42})

	got, err := cp.Get(1)
	if err != nil {
		t.Fatalf("Get(1): %v", err)
	}
	if got.Kind != Utf8 || got.Utf8Value != "hello" {
		t.Fatalf("Get(1) = %+v, want Utf8 hello", got)
	}

	got, err = cp.Get(2)
	if err != nil {
		t.Fatalf("Get(2): %v", err)
	}
	if got.Kind != Integer || got.IntValue != 42 {
		t.Fatalf("Get(2) = %+v, want Integer 42", got)
	}
}

// TestDoubleWidthEntryLeavesTombstone exercises spec.md §8: for every
// double-width entry added at position p, Get(p+1) fails, and indices after
// the tombstone remain stable.
func TestDoubleWidthEntryLeavesTombstone(t *testing.T) {
	cp := NewConstantPool()
	cp.Add(ConstantPoolEntry{Kind: Utf8, Utf8Value: "before"})
	cp.Add(ConstantPoolEntry{Kind: Long, LongValue: 123456789})
	cp.Add(ConstantPoolEntry{Kind: Utf8, Utf8Value: "after"})

	if _, err := cp.Get(3); err == nil {
		t.Fatal("expected tombstone slot (index 3) to be invalid")
	}

	got, err := cp.Get(4)
	if err != nil {
		t.Fatalf("Get(4): %v", err)
	}
	if got.Kind != Utf8 || got.Utf8Value != "after" {
		t.Fatalf("Get(4) = %+v, want Utf8 after", got)
	}
}

func TestDoubleEntryAlsoLeavesTombstone(t *testing.T) {
	cp := NewConstantPool()
	cp.Add(ConstantPoolEntry{Kind: Double, DoubleVal: 3.14})
	cp.Add(ConstantPoolEntry{Kind: Integer, IntValue: 7})

	if _, err := cp.Get(2); err == nil {
		t.Fatal("expected tombstone slot (index 2) to be invalid")
	}
	got, err := cp.Get(3)
	if err != nil {
		t.Fatalf("Get(3): %v", err)
	}
	if got.Kind != Integer || got.IntValue != 7 {
		t.Fatalf("Get(3) = %+v, want Integer 7", got)
	}
}

func TestConstantPoolOutOfRangeIndexFails(t *testing.T) {
	cp := NewConstantPool()
	cp.Add(ConstantPoolEntry{Kind: Utf8, Utf8Value: "only"})
	if _, err := cp.Get(2); err == nil {
		t.Fatal("expected out-of-range index to be invalid")
	}
}

// TestTextOfRendersChainedReferences exercises §4.2's text_of rendering:
// class -> utf8, fieldref -> class+nameandtype -> utf8.
func TestTextOfRendersChainedReferences(t *testing.T) {
	cp := NewConstantPool()
	cp.Add(ConstantPoolEntry{Kind: Utf8, Utf8Value: "pkg/Foo"})              // 1
	cp.Add(ConstantPoolEntry{Kind: ClassReference, Index1: 1})              // 2
	cp.Add(ConstantPoolEntry{Kind: Utf8, Utf8Value: "bar"})                  // 3
	cp.Add(ConstantPoolEntry{Kind: Utf8, Utf8Value: "I"})                    // 4
	cp.Add(ConstantPoolEntry{Kind: NameAndTypeDescriptor, Index1: 3, Index2: 4}) // 5
	cp.Add(ConstantPoolEntry{Kind: FieldReference, Index1: 2, Index2: 5})   // 6

	text, err := cp.TextOf(6)
	if err != nil {
		t.Fatalf("TextOf(6): %v", err)
	}
	want := "pkg/Foo.bar: I"
	if text != want {
		t.Fatalf("TextOf(6) = %q, want %q", text, want)
	}
}

func TestMemberrefPartsResolvesAllThreeComponents(t *testing.T) {
	cp := NewConstantPool()
	cp.Add(ConstantPoolEntry{Kind: Utf8, Utf8Value: "pkg/Foo"})
	cp.Add(ConstantPoolEntry{Kind: ClassReference, Index1: 1})
	cp.Add(ConstantPoolEntry{Kind: Utf8, Utf8Value: "doIt"})
	cp.Add(ConstantPoolEntry{Kind: Utf8, Utf8Value: "()V"})
	cp.Add(ConstantPoolEntry{Kind: NameAndTypeDescriptor, Index1: 3, Index2: 4})
	cp.Add(ConstantPoolEntry{Kind: MethodReference, Index1: 2, Index2: 5})

	class, name, desc, err := cp.MemberrefParts(6)
	if err != nil {
		t.Fatalf("MemberrefParts(6): %v", err)
	}
	if class != "pkg/Foo" || name != "doIt" || desc != "()V" {
		t.Fatalf("MemberrefParts(6) = (%q,%q,%q)", class, name, desc)
	}
}
