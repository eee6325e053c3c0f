/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import (
	"testing"

	"github.com/cnxfgit/rjvm-learn/reader"
)

func intField(name string) reader.ClassFileField {
	return reader.ClassFileField{Name: name, TypeDescriptor: reader.FieldType{Kind: reader.BaseKind, Base: reader.Int}}
}

func objField(name string) reader.ClassFileField {
	return reader.ClassFileField{Name: name, TypeDescriptor: reader.FieldType{Kind: reader.ObjectKind, ClassName: "java/lang/Object"}}
}

// TestFieldIndexInvariant exercises spec.md §8: for every class C with
// fields F, C.FirstFieldIndex+|C.Fields| == C.NumTotalFields, and
// C.NumTotalFields == (parent.NumTotalFields if any else 0) + |C.Fields|.
func TestFieldIndexInvariant(t *testing.T) {
	base := &Class{
		Name:            "Base",
		Fields:          []reader.ClassFileField{intField("a"), intField("b")},
		FirstFieldIndex: 0,
		numTotalFields:  2,
	}
	derived := &Class{
		Name:            "Derived",
		Superclass:      base,
		Fields:          []reader.ClassFileField{objField("c")},
		FirstFieldIndex: base.numTotalFields,
		numTotalFields:  base.numTotalFields + 1,
	}

	if base.FirstFieldIndex+len(base.Fields) != base.NumTotalFields() {
		t.Fatal("base: FirstFieldIndex+len(Fields) != NumTotalFields")
	}
	if base.NumTotalFields() != len(base.Fields) {
		t.Fatal("base: NumTotalFields must equal len(Fields) with no parent")
	}

	if derived.FirstFieldIndex+len(derived.Fields) != derived.NumTotalFields() {
		t.Fatal("derived: FirstFieldIndex+len(Fields) != NumTotalFields")
	}
	if derived.NumTotalFields() != base.NumTotalFields()+len(derived.Fields) {
		t.Fatal("derived: NumTotalFields must equal parent.NumTotalFields + len(Fields)")
	}
}

func TestFindFieldSearchesSuperclassChain(t *testing.T) {
	base := &Class{
		Name:            "Base",
		Fields:          []reader.ClassFileField{intField("a")},
		FirstFieldIndex: 0,
		numTotalFields:  1,
	}
	derived := &Class{
		Name:            "Derived",
		Superclass:      base,
		Fields:          []reader.ClassFileField{intField("b")},
		FirstFieldIndex: 1,
		numTotalFields:  2,
	}

	slot, ok := derived.FindField("a")
	if !ok {
		t.Fatal("expected to find inherited field 'a'")
	}
	if slot.Index != 0 || slot.DeclaringClass != base {
		t.Fatalf("FindField(a) = %+v, want index 0 declared on base", slot)
	}

	slot, ok = derived.FindField("b")
	if !ok {
		t.Fatal("expected to find own field 'b'")
	}
	if slot.Index != 1 || slot.DeclaringClass != derived {
		t.Fatalf("FindField(b) = %+v, want index 1 declared on derived", slot)
	}

	if _, ok := derived.FindField("nope"); ok {
		t.Fatal("expected lookup of unknown field to fail")
	}
}

// TestFieldAtIndexDispatchesByRange exercises the §4.3 invariant: a field at
// absolute index i belongs to the class whose range contains i.
func TestFieldAtIndexDispatchesByRange(t *testing.T) {
	base := &Class{
		Name:            "Base",
		Fields:          []reader.ClassFileField{intField("a"), intField("b")},
		FirstFieldIndex: 0,
		numTotalFields:  2,
	}
	derived := &Class{
		Name:            "Derived",
		Superclass:      base,
		Fields:          []reader.ClassFileField{intField("c")},
		FirstFieldIndex: 2,
		numTotalFields:  3,
	}

	slot, ok := derived.FieldAtIndex(0)
	if !ok || slot.Name != "a" || slot.DeclaringClass != base {
		t.Fatalf("FieldAtIndex(0) = %+v, ok=%v, want field a on base", slot, ok)
	}
	slot, ok = derived.FieldAtIndex(1)
	if !ok || slot.Name != "b" || slot.DeclaringClass != base {
		t.Fatalf("FieldAtIndex(1) = %+v, ok=%v, want field b on base", slot, ok)
	}
	slot, ok = derived.FieldAtIndex(2)
	if !ok || slot.Name != "c" || slot.DeclaringClass != derived {
		t.Fatalf("FieldAtIndex(2) = %+v, ok=%v, want field c on derived", slot, ok)
	}
	if _, ok := derived.FieldAtIndex(3); ok {
		t.Fatal("expected out-of-range index to fail")
	}
}

func TestIsSubclassOfReflexiveAndTransitive(t *testing.T) {
	object := &Class{Name: "java/lang/Object"}
	base := &Class{Name: "Base", Superclass: object}
	iface := &Class{Name: "Runnable"}
	derived := &Class{Name: "Derived", Superclass: base, Interfaces: []*Class{iface}}

	if !derived.IsSubclassOf(derived) {
		t.Fatal("IsSubclassOf must be reflexive")
	}
	if !derived.IsSubclassOf(base) {
		t.Fatal("Derived must be a subclass of Base")
	}
	if !derived.IsSubclassOf(object) {
		t.Fatal("Derived must be a subclass of Object transitively")
	}
	if !derived.IsSubclassOf(iface) {
		t.Fatal("Derived must be a subclass of its directly implemented interface")
	}
	unrelated := &Class{Name: "Unrelated"}
	if derived.IsSubclassOf(unrelated) {
		t.Fatal("Derived must not be a subclass of an unrelated class")
	}
}

func TestReferenceFieldIndicesSkipsPrimitives(t *testing.T) {
	c := &Class{
		Name:            "Holder",
		Fields:          []reader.ClassFileField{intField("count"), objField("ref"), intField("flag")},
		FirstFieldIndex: 0,
		numTotalFields:  3,
	}
	indices := c.ReferenceFieldIndices()
	if len(indices) != 1 || indices[0] != 1 {
		t.Fatalf("ReferenceFieldIndices() = %v, want [1]", indices)
	}
}
