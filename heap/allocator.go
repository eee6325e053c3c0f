/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package heap

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// ClassID identifies a resolved class without heap/allocator needing to
// import the classloader package — classloader.Class implements ClassInfo
// instead, keeping the dependency direction one-way.
type ClassID uint32

// ClassInfo is the minimal view of a class the allocator/GC needs: how many
// field slots an instance has, and which of those slots are reference-typed
// (so the tracer knows to recurse into them).
type ClassInfo interface {
	NumTotalFields() int
	ReferenceFieldIndices() []int
}

// ClassResolver looks up a ClassInfo by id during GC tracing.
type ClassResolver interface {
	ClassInfoByID(id ClassID) (ClassInfo, bool)
}

// memoryChunk is a flat, zeroed byte arena with bump allocation. Offset 0 is
// reserved so Reference(0) can double as the null word.
type memoryChunk struct {
	data     []byte
	used     uint32
	capacity uint32
}

func newMemoryChunk(capacity uint32) *memoryChunk {
	c := &memoryChunk{data: make([]byte, capacity), capacity: capacity}
	c.used = slotSize // reserve offset 0
	return c
}

func (c *memoryChunk) alloc(size uint32) (Reference, bool) {
	if c.used+size > c.capacity {
		return 0, false
	}
	offset := c.used
	c.used += size
	return Reference(offset), true
}

func (c *memoryChunk) reset() {
	c.used = slotSize
	for i := range c.data {
		c.data[i] = 0
	}
}

func (c *memoryChunk) contains(ref Reference) bool {
	return uint32(ref) >= slotSize && uint32(ref) < c.used
}

func (c *memoryChunk) readWord(offset uint32) uint64 {
	return binary.BigEndian.Uint64(c.data[offset : offset+8])
}

func (c *memoryChunk) writeWord(offset uint32, word uint64) {
	binary.BigEndian.PutUint64(c.data[offset:offset+8], word)
}

func (c *memoryChunk) header(ref Reference) allocHeader {
	return allocHeader(c.readWord(uint32(ref)))
}

func (c *memoryChunk) setHeader(ref Reference, h allocHeader) {
	c.writeWord(uint32(ref), uint64(h))
}

// ObjectAllocator is the semi-space copying heap described in spec §4.4:
// two equal chunks, bump allocation into "current", and a stop-the-world
// 3-pass copy when an allocation does not fit.
type ObjectAllocator struct {
	current *memoryChunk
	other   *memoryChunk
}

// NewObjectAllocator splits maxSize into two equal semi-spaces.
func NewObjectAllocator(maxSize uint32) *ObjectAllocator {
	half := maxSize / 2
	return &ObjectAllocator{
		current: newMemoryChunk(half),
		other:   newMemoryChunk(half),
	}
}

// identityHashOf derives an allocation's identity hash from its initial
// address per spec §4.4, scrambling the offset with Knuth's multiplicative
// hash constant so nearby addresses don't produce nearby (and thus
// visibly-sequential) hashes, then keeping the low 30 bits.
func identityHashOf(ref Reference) uint32 {
	return (uint32(ref) * 2654435761) & uint32(hashMask)
}

// Used returns the bytes currently allocated in the active semi-space.
func (a *ObjectAllocator) Used() uint32 { return a.current.used }

// Capacity returns the size of a single semi-space.
func (a *ObjectAllocator) Capacity() uint32 { return a.current.capacity }

// AllocateObject bump-allocates a zeroed instance of classID with
// numTotalFields field slots, returning false if the current space is full.
func (a *ObjectAllocator) AllocateObject(classID ClassID, numTotalFields int) (Reference, bool) {
	size := ObjectSize(numTotalFields)
	ref, ok := a.current.alloc(size)
	if !ok {
		return 0, false
	}
	a.current.setHeader(ref, packHeader(KindObject, Unmarked, identityHashOf(ref), size))
	a.current.writeWord(uint32(ref)+AllocHeaderSize, uint64(classID))
	return ref, true
}

// AllocateArray bump-allocates a zeroed array of length elements of
// elementsType.
func (a *ObjectAllocator) AllocateArray(elementsType ArrayEntryType, length int) (Reference, bool) {
	size := ArraySize(length)
	ref, ok := a.current.alloc(size)
	if !ok {
		return 0, false
	}
	a.current.setHeader(ref, packHeader(KindArray, Unmarked, identityHashOf(ref), size))
	arrayHeaderWord := uint64(elementsType)<<32 | uint64(uint32(length))
	a.current.writeWord(uint32(ref)+AllocHeaderSize, arrayHeaderWord)
	return ref, true
}

// IdentityHash returns the stable identity hash of ref, preserved across GC.
func (a *ObjectAllocator) IdentityHash(ref Reference) uint32 {
	return a.current.header(ref).identityHash()
}

// Kind reports whether ref is an object or an array allocation.
func (a *ObjectAllocator) Kind(ref Reference) ObjectKind {
	return a.current.header(ref).kind()
}

// ObjectClassID returns the ClassID stored in an object allocation's header.
func (a *ObjectAllocator) ObjectClassID(ref Reference) ClassID {
	return ClassID(a.current.readWord(uint32(ref) + AllocHeaderSize))
}

// GetField reads field index idx of object ref as a value of kind.
func (a *ObjectAllocator) GetField(ref Reference, idx int, kind ValueKind) Value {
	offset := uint32(ref) + AllocHeaderSize + ObjectHeaderSize + uint32(idx)*slotSize
	return wordToValue(a.current.readWord(offset), kind)
}

// SetField writes v into field index idx of object ref.
func (a *ObjectAllocator) SetField(ref Reference, idx int, v Value) {
	offset := uint32(ref) + AllocHeaderSize + ObjectHeaderSize + uint32(idx)*slotSize
	a.current.writeWord(offset, v.toWord())
}

// ArrayElementsType returns the element kind stored in an array allocation's header.
func (a *ObjectAllocator) ArrayElementsType(ref Reference) ArrayEntryType {
	word := a.current.readWord(uint32(ref) + AllocHeaderSize)
	return ArrayEntryType(word >> 32)
}

// ArrayLength returns the element count stored in an array allocation's header.
func (a *ObjectAllocator) ArrayLength(ref Reference) int {
	word := a.current.readWord(uint32(ref) + AllocHeaderSize)
	return int(uint32(word))
}

// GetElement reads array element i of ref as a value of kind.
func (a *ObjectAllocator) GetElement(ref Reference, i int, kind ValueKind) (Value, error) {
	if i < 0 || i >= a.ArrayLength(ref) {
		return Value{}, errors.Errorf("array index %d out of bounds", i)
	}
	offset := uint32(ref) + AllocHeaderSize + ArrayHeaderSize + uint32(i)*slotSize
	return wordToValue(a.current.readWord(offset), kind), nil
}

// SetElement writes v into array element i of ref.
func (a *ObjectAllocator) SetElement(ref Reference, i int, v Value) error {
	if i < 0 || i >= a.ArrayLength(ref) {
		return errors.Errorf("array index %d out of bounds", i)
	}
	offset := uint32(ref) + AllocHeaderSize + ArrayHeaderSize + uint32(i)*slotSize
	a.current.writeWord(offset, v.toWord())
	return nil
}
