/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package heap

import "testing"

// fakeClassInfo describes a class by its field count and the indices of its
// reference-typed fields, enough to let the GC tracer walk an object graph
// in tests.
type fakeClassInfo struct {
	numTotalFields int
	refIndices     []int
}

func (c fakeClassInfo) NumTotalFields() int          { return c.numTotalFields }
func (c fakeClassInfo) ReferenceFieldIndices() []int { return c.refIndices }

type fakeResolver map[ClassID]fakeClassInfo

func (r fakeResolver) ClassInfoByID(id ClassID) (ClassInfo, bool) {
	info, ok := r[id]
	return info, ok
}

const (
	classWithRef    ClassID = 1
	classWithoutRef ClassID = 2
)

func testResolver() fakeResolver {
	return fakeResolver{
		classWithRef:    fakeClassInfo{numTotalFields: 1, refIndices: []int{0}},
		classWithoutRef: fakeClassInfo{numTotalFields: 1, refIndices: nil},
	}
}

// TestGCPreservesReachableObjectGraph exercises spec.md §8: following a live
// reference after GC yields an allocation with the same class id, and the
// set of reachable objects (by identity hash) is unchanged.
func TestGCPreservesReachableObjectGraph(t *testing.T) {
	alloc := NewObjectAllocator(4096)
	resolver := testResolver()

	leaf, ok := alloc.AllocateObject(classWithoutRef, 1)
	if !ok {
		t.Fatal("failed to allocate leaf")
	}
	alloc.SetField(leaf, 0, Int(99))

	root, ok := alloc.AllocateObject(classWithRef, 1)
	if !ok {
		t.Fatal("failed to allocate root")
	}
	alloc.SetField(root, 0, Object(leaf))

	leafHashBefore := alloc.IdentityHash(leaf)
	rootHashBefore := alloc.IdentityHash(root)

	rootSlot := Object(root)
	roots := []*Value{&rootSlot}
	if err := alloc.RunGC(roots, resolver); err != nil {
		t.Fatalf("RunGC: %v", err)
	}

	newRoot := rootSlot.Ref
	if alloc.ObjectClassID(newRoot) != classWithRef {
		t.Fatal("root's class id changed across GC")
	}
	if alloc.IdentityHash(newRoot) != rootHashBefore {
		t.Fatal("root's identity hash changed across GC")
	}

	newLeafVal := alloc.GetField(newRoot, 0, ObjectVal)
	if newLeafVal.Kind != ObjectVal || newLeafVal.Ref == 0 {
		t.Fatal("root's reference field did not survive GC as a live reference")
	}
	newLeaf := newLeafVal.Ref
	if alloc.ObjectClassID(newLeaf) != classWithoutRef {
		t.Fatal("leaf's class id changed across GC")
	}
	if alloc.IdentityHash(newLeaf) != leafHashBefore {
		t.Fatal("leaf's identity hash changed across GC")
	}
	if got := alloc.GetField(newLeaf, 0, IntVal); got.Int != 99 {
		t.Fatalf("leaf field value = %v, want 99", got)
	}
}

// TestGCDropsUnreachableObjects exercises the companion half of the §8
// reachability property: an object with no root pointing to it must not
// survive a collection (it is simply never copied to the new space).
func TestGCDropsUnreachableObjects(t *testing.T) {
	alloc := NewObjectAllocator(4096)
	resolver := testResolver()

	garbage, ok := alloc.AllocateObject(classWithoutRef, 1)
	if !ok {
		t.Fatal("failed to allocate garbage object")
	}
	alloc.SetField(garbage, 0, Int(1))
	usedBefore := alloc.Used()

	if err := alloc.RunGC(nil, resolver); err != nil {
		t.Fatalf("RunGC: %v", err)
	}

	if alloc.Used() >= usedBefore {
		t.Fatalf("Used() after GC = %d, want less than %d (garbage should not survive)", alloc.Used(), usedBefore)
	}
}

// TestGCPreservesNullReferences exercises spec.md §8: null values survive GC
// as null.
func TestGCPreservesNullReferences(t *testing.T) {
	alloc := NewObjectAllocator(4096)
	resolver := testResolver()

	root, ok := alloc.AllocateObject(classWithRef, 1)
	if !ok {
		t.Fatal("failed to allocate root")
	}
	alloc.SetField(root, 0, Null())

	rootSlot := Object(root)
	roots := []*Value{&rootSlot}
	if err := alloc.RunGC(roots, resolver); err != nil {
		t.Fatalf("RunGC: %v", err)
	}

	got := alloc.GetField(rootSlot.Ref, 0, ObjectVal)
	if got.Kind != NullVal && !(got.Kind == ObjectVal && got.Ref == 0) {
		t.Fatalf("null field did not survive GC as null: %+v", got)
	}
}

// TestGCTracesArrayOfObjectElements exercises the array half of §4.4 phase
// 1: object-typed array elements are traced and forwarded like object
// fields.
func TestGCTracesArrayOfObjectElements(t *testing.T) {
	alloc := NewObjectAllocator(4096)
	resolver := testResolver()

	elem, ok := alloc.AllocateObject(classWithoutRef, 1)
	if !ok {
		t.Fatal("failed to allocate element")
	}
	alloc.SetField(elem, 0, Int(7))

	arr, ok := alloc.AllocateArray(ArrayOfObject, 2)
	if !ok {
		t.Fatal("failed to allocate array")
	}
	if err := alloc.SetElement(arr, 0, Object(elem)); err != nil {
		t.Fatal(err)
	}
	if err := alloc.SetElement(arr, 1, Null()); err != nil {
		t.Fatal(err)
	}

	arrSlot := Object(arr)
	roots := []*Value{&arrSlot}
	if err := alloc.RunGC(roots, resolver); err != nil {
		t.Fatalf("RunGC: %v", err)
	}

	newArr := arrSlot.Ref
	if alloc.ArrayLength(newArr) != 2 {
		t.Fatalf("array length changed across GC: %d", alloc.ArrayLength(newArr))
	}
	v0, err := alloc.GetElement(newArr, 0, ObjectVal)
	if err != nil {
		t.Fatal(err)
	}
	if v0.Kind != ObjectVal || v0.Ref == 0 {
		t.Fatal("array element 0 did not survive GC as a live reference")
	}
	if got := alloc.GetField(v0.Ref, 0, IntVal); got.Int != 7 {
		t.Fatalf("traced element's field = %v, want 7", got)
	}
	v1, err := alloc.GetElement(newArr, 1, ObjectVal)
	if err != nil {
		t.Fatal(err)
	}
	if v1.Kind != NullVal && !(v1.Kind == ObjectVal && v1.Ref == 0) {
		t.Fatal("array element 1 (null) did not survive GC as null")
	}
}

// TestGCHandlesCollectionAcrossMultipleRounds exercises scenario 7 of spec.md
// §8: repeated allocation and collection under heap pressure must not crash.
func TestGCHandlesCollectionAcrossMultipleRounds(t *testing.T) {
	alloc := NewObjectAllocator(2048)
	resolver := testResolver()

	var liveRoot Value
	haveRoot := false
	for i := 0; i < 200; i++ {
		ref, ok := alloc.AllocateObject(classWithoutRef, 1)
		if !ok {
			roots := []*Value{}
			if haveRoot {
				roots = append(roots, &liveRoot)
			}
			if err := alloc.RunGC(roots, resolver); err != nil {
				t.Fatalf("RunGC round %d: %v", i, err)
			}
			ref, ok = alloc.AllocateObject(classWithoutRef, 1)
			if !ok {
				t.Fatalf("allocation still fails immediately after a GC round %d", i)
			}
		}
		alloc.SetField(ref, 0, Int(int32(i)))
		if i%50 == 0 {
			liveRoot = Object(ref)
			haveRoot = true
		}
	}
}
