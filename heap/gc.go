/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package heap

import "github.com/pkg/errors"

// RunGC executes the three-pass stop-the-world copying collection described
// in spec §4.4: mark-and-copy every object reachable from roots, fix up the
// references now living in the new region, then fix the roots themselves.
// roots are pointers into caller-owned Value slots (statics, locals, operand
// stack entries) and are updated in place.
func (a *ObjectAllocator) RunGC(roots []*Value, resolver ClassResolver) error {
	for _, root := range roots {
		if root.Kind == ObjectVal && root.Ref != 0 {
			if err := a.visit(root.Ref, resolver); err != nil {
				return err
			}
		}
	}

	if err := a.fixReferencesInOther(resolver); err != nil {
		return err
	}

	for _, root := range roots {
		if root.Kind == ObjectVal && root.Ref != 0 {
			root.Ref = a.forwardedAddress(root.Ref)
		}
	}

	a.current.reset()
	a.current, a.other = a.other, a.current
	return nil
}

// visit marks and copies ref's allocation — and everything it reaches — out
// of current into other, leaving a forwarding pointer behind in current's
// word immediately after the header.
func (a *ObjectAllocator) visit(ref Reference, resolver ClassResolver) error {
	if ref == 0 {
		return nil
	}
	if !a.current.contains(ref) {
		return errors.Errorf("gc: reference %d does not point into the current semi-space", ref)
	}

	h := a.current.header(ref)
	if h.state() == Marked {
		return nil
	}
	a.current.setHeader(ref, h.withState(Marked))

	if h.kind() == KindObject {
		if err := a.visitFieldsOfObject(ref, resolver); err != nil {
			return err
		}
	} else {
		if err := a.visitEntriesOfArray(ref, resolver); err != nil {
			return err
		}
	}

	size := h.size()
	newRef, ok := a.other.alloc(size)
	if !ok {
		return errors.New("gc: not enough space in target semi-space to copy live object")
	}
	copy(a.other.data[uint32(newRef):uint32(newRef)+size], a.current.data[uint32(ref):uint32(ref)+size])
	a.current.writeWord(uint32(ref)+AllocHeaderSize, uint64(newRef))
	return nil
}

func (a *ObjectAllocator) visitFieldsOfObject(ref Reference, resolver ClassResolver) error {
	classID := a.ObjectClassID(ref)
	info, ok := resolver.ClassInfoByID(classID)
	if !ok {
		return errors.Errorf("gc: unknown class id %d", classID)
	}
	for _, idx := range info.ReferenceFieldIndices() {
		offset := uint32(ref) + AllocHeaderSize + ObjectHeaderSize + uint32(idx)*slotSize
		word := a.current.readWord(offset)
		if word == 0 {
			continue
		}
		if err := a.visit(Reference(word), resolver); err != nil {
			return err
		}
	}
	return nil
}

func (a *ObjectAllocator) visitEntriesOfArray(ref Reference, resolver ClassResolver) error {
	elemType := a.ArrayElementsType(ref)
	switch elemType {
	case ArrayOfBase:
		return nil
	case ArrayOfArray:
		return errors.New("gc: arrays of arrays are not supported")
	case ArrayOfObject:
		length := a.ArrayLength(ref)
		for i := 0; i < length; i++ {
			offset := uint32(ref) + AllocHeaderSize + ArrayHeaderSize + uint32(i)*slotSize
			word := a.current.readWord(offset)
			if word == 0 {
				continue
			}
			if err := a.visit(Reference(word), resolver); err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.Errorf("gc: unknown array element kind %d", elemType)
	}
}

// fixReferencesInOther walks the freshly-populated other space linearly,
// rewriting every reference-typed slot (which still holds an old-region
// address) to the forwarded new-region address, and clears each header's
// mark bit.
func (a *ObjectAllocator) fixReferencesInOther(resolver ClassResolver) error {
	offset := uint32(slotSize)
	for offset < a.other.used {
		ref := Reference(offset)
		h := a.other.header(ref)

		if h.kind() == KindObject {
			classID := ClassID(a.other.readWord(offset + AllocHeaderSize))
			info, ok := resolver.ClassInfoByID(classID)
			if !ok {
				return errors.Errorf("gc: unknown class id %d", classID)
			}
			for _, idx := range info.ReferenceFieldIndices() {
				foff := offset + AllocHeaderSize + ObjectHeaderSize + uint32(idx)*slotSize
				oldWord := a.other.readWord(foff)
				if oldWord == 0 {
					continue
				}
				a.other.writeWord(foff, uint64(a.forwardedAddress(Reference(oldWord))))
			}
		} else {
			word := a.other.readWord(offset + AllocHeaderSize)
			elemType := ArrayEntryType(word >> 32)
			length := int(uint32(word))
			if elemType == ArrayOfObject {
				for i := 0; i < length; i++ {
					foff := offset + AllocHeaderSize + ArrayHeaderSize + uint32(i)*slotSize
					oldWord := a.other.readWord(foff)
					if oldWord == 0 {
						continue
					}
					a.other.writeWord(foff, uint64(a.forwardedAddress(Reference(oldWord))))
				}
			}
		}

		a.other.setHeader(ref, h.withState(Unmarked))
		offset += h.size()
	}
	return nil
}

// forwardedAddress reads the forwarding word left behind in current for an
// old-region reference that has already been copied to other.
func (a *ObjectAllocator) forwardedAddress(oldRef Reference) Reference {
	return Reference(a.current.readWord(uint32(oldRef) + AllocHeaderSize))
}
