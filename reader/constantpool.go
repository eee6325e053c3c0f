/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package reader

import "fmt"

// ConstantPoolEntryKind tags the variant held by a ConstantPoolEntry.
type ConstantPoolEntryKind int

const (
	Utf8 ConstantPoolEntryKind = iota
	Integer
	Float
	Long
	Double
	ClassReference
	StringReference
	FieldReference
	MethodReference
	InterfaceMethodReference
	NameAndTypeDescriptor
)

// Tag bytes as they appear on the wire (JVM spec §4.4).
const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
)

// ConstantPoolEntry is a tagged union over the constant kinds the class-file
// format supports. Index1/Index2 hold the one or two u16 references a
// reference-kind entry carries; the scalar fields hold decoded literals.
type ConstantPoolEntry struct {
	Kind      ConstantPoolEntryKind
	Utf8Value string
	IntValue  int32
	FloatVal  float32
	LongValue int64
	DoubleVal float64
	Index1    uint16
	Index2    uint16
}

// physicalSlot is either a real entry or the tombstone that trails a
// double-width (Long/Double) entry so indices after it remain stable.
type physicalSlot struct {
	entry     ConstantPoolEntry
	tombstone bool
}

// ConstantPool is the 1-indexed, tombstone-padded symbol table described in
// spec.md §3/§4.2. It is built once by the reader and never mutated after.
type ConstantPool struct {
	entries []physicalSlot
}

// InvalidConstantPoolIndexError is returned by Get/TextOf for index 0,
// out-of-range indices, and indices that land on a tombstone slot.
type InvalidConstantPoolIndexError struct {
	Index uint16
}

func (e *InvalidConstantPoolIndexError) Error() string {
	return fmt.Sprintf("invalid constant pool index: %d", e.Index)
}

// NewConstantPool returns an empty pool ready for Add calls.
func NewConstantPool() *ConstantPool {
	return &ConstantPool{}
}

// Add appends entry, and — for Long/Double, which occupy two logical slots
// per the class-file format — a trailing tombstone so the next real entry's
// index is unaffected.
func (cp *ConstantPool) Add(entry ConstantPoolEntry) {
	cp.entries = append(cp.entries, physicalSlot{entry: entry})
	if entry.Kind == Long || entry.Kind == Double {
		cp.entries = append(cp.entries, physicalSlot{tombstone: true})
	}
}

// Len returns the number of physical slots, including tombstones.
func (cp *ConstantPool) Len() int {
	return len(cp.entries)
}

// Get resolves a 1-based constant-pool index to its entry.
func (cp *ConstantPool) Get(index uint16) (*ConstantPoolEntry, error) {
	if index == 0 || int(index) > len(cp.entries) {
		return nil, &InvalidConstantPoolIndexError{Index: index}
	}
	slot := cp.entries[index-1]
	if slot.tombstone {
		return nil, &InvalidConstantPoolIndexError{Index: index}
	}
	return &slot.entry, nil
}

// TextOf renders the entry at index to a stable, human-readable form:
// primitives stringify themselves; class/string references render their
// target's text; field/method/interface-method refs render
// "<class>.<nameAndType>"; name-and-type descriptors render "<name>: <descriptor>".
func (cp *ConstantPool) TextOf(index uint16) (string, error) {
	entry, err := cp.Get(index)
	if err != nil {
		return "", err
	}
	switch entry.Kind {
	case Utf8:
		return entry.Utf8Value, nil
	case Integer:
		return fmt.Sprintf("%d", entry.IntValue), nil
	case Float:
		return formatFloat(entry.FloatVal), nil
	case Long:
		return fmt.Sprintf("%d", entry.LongValue), nil
	case Double:
		return formatFloat(entry.DoubleVal), nil
	case ClassReference, StringReference:
		return cp.TextOf(entry.Index1)
	case FieldReference, MethodReference, InterfaceMethodReference:
		left, err := cp.TextOf(entry.Index1)
		if err != nil {
			return "", err
		}
		right, err := cp.TextOf(entry.Index2)
		if err != nil {
			return "", err
		}
		return left + "." + right, nil
	case NameAndTypeDescriptor:
		left, err := cp.TextOf(entry.Index1)
		if err != nil {
			return "", err
		}
		right, err := cp.TextOf(entry.Index2)
		if err != nil {
			return "", err
		}
		return left + ": " + right, nil
	default:
		return "", &InvalidConstantPoolIndexError{Index: index}
	}
}

// ClassName resolves a ClassReference entry directly to its UTF-8 name,
// which is the common case callers need (as opposed to the generic TextOf).
func (cp *ConstantPool) ClassName(index uint16) (string, error) {
	entry, err := cp.Get(index)
	if err != nil {
		return "", err
	}
	if entry.Kind != ClassReference {
		return "", invalidClassDataf("constant pool entry %d is not a class reference", index)
	}
	return cp.TextOf(entry.Index1)
}

// Utf8At resolves index directly to its UTF-8 string, rejecting any other kind.
func (cp *ConstantPool) Utf8At(index uint16) (string, error) {
	entry, err := cp.Get(index)
	if err != nil {
		return "", err
	}
	if entry.Kind != Utf8 {
		return "", invalidClassDataf("constant pool entry %d is not Utf8", index)
	}
	return entry.Utf8Value, nil
}

func formatFloat(f interface{}) string {
	switch v := f.(type) {
	case float32:
		return trimFloat(float64(v))
	case float64:
		return trimFloat(v)
	default:
		return fmt.Sprintf("%v", f)
	}
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%g", v)
	return s
}

func (cp *ConstantPool) parseEntry(r *byteReader, index int) error {
	tag, err := r.u1()
	if err != nil {
		return errorsWrapf(err, "reading constant pool tag at index %d", index)
	}
	switch tag {
	case tagUtf8:
		length, err := r.u2()
		if err != nil {
			return errorsWrapf(err, "reading Utf8 length at index %d", index)
		}
		raw, err := r.bytes(int(length))
		if err != nil {
			return errorsWrapf(err, "reading Utf8 bytes at index %d", index)
		}
		cp.Add(ConstantPoolEntry{Kind: Utf8, Utf8Value: string(raw)})
	case tagInteger:
		v, err := r.i4()
		if err != nil {
			return errorsWrapf(err, "reading Integer at index %d", index)
		}
		cp.Add(ConstantPoolEntry{Kind: Integer, IntValue: v})
	case tagFloat:
		v, err := r.u4()
		if err != nil {
			return errorsWrapf(err, "reading Float at index %d", index)
		}
		cp.Add(ConstantPoolEntry{Kind: Float, FloatVal: float32FromBits(v)})
	case tagLong:
		v, err := r.i8()
		if err != nil {
			return errorsWrapf(err, "reading Long at index %d", index)
		}
		cp.Add(ConstantPoolEntry{Kind: Long, LongValue: v})
	case tagDouble:
		v, err := r.i8()
		if err != nil {
			return errorsWrapf(err, "reading Double at index %d", index)
		}
		cp.Add(ConstantPoolEntry{Kind: Double, DoubleVal: float64FromBits(uint64(v))})
	case tagClass:
		nameIdx, err := r.u2()
		if err != nil {
			return errorsWrapf(err, "reading Class at index %d", index)
		}
		cp.Add(ConstantPoolEntry{Kind: ClassReference, Index1: nameIdx})
	case tagString:
		idx, err := r.u2()
		if err != nil {
			return errorsWrapf(err, "reading String at index %d", index)
		}
		cp.Add(ConstantPoolEntry{Kind: StringReference, Index1: idx})
	case tagFieldref:
		classIdx, natIdx, err := readRefPair(r)
		if err != nil {
			return errorsWrapf(err, "reading Fieldref at index %d", index)
		}
		cp.Add(ConstantPoolEntry{Kind: FieldReference, Index1: classIdx, Index2: natIdx})
	case tagMethodref:
		classIdx, natIdx, err := readRefPair(r)
		if err != nil {
			return errorsWrapf(err, "reading Methodref at index %d", index)
		}
		cp.Add(ConstantPoolEntry{Kind: MethodReference, Index1: classIdx, Index2: natIdx})
	case tagInterfaceMethodref:
		classIdx, natIdx, err := readRefPair(r)
		if err != nil {
			return errorsWrapf(err, "reading InterfaceMethodref at index %d", index)
		}
		cp.Add(ConstantPoolEntry{Kind: InterfaceMethodReference, Index1: classIdx, Index2: natIdx})
	case tagNameAndType:
		nameIdx, descIdx, err := readRefPair(r)
		if err != nil {
			return errorsWrapf(err, "reading NameAndType at index %d", index)
		}
		cp.Add(ConstantPoolEntry{Kind: NameAndTypeDescriptor, Index1: nameIdx, Index2: descIdx})
	default:
		return invalidClassDataf("unknown constant pool tag %d at index %d", tag, index)
	}
	return nil
}

// MemberrefParts resolves a Fieldref/Methodref/InterfaceMethodref entry to
// its three logical components: the owning class name, the member name,
// and its raw type descriptor.
func (cp *ConstantPool) MemberrefParts(index uint16) (className, memberName, descriptor string, err error) {
	entry, err := cp.Get(index)
	if err != nil {
		return "", "", "", err
	}
	if entry.Kind != FieldReference && entry.Kind != MethodReference && entry.Kind != InterfaceMethodReference {
		return "", "", "", invalidClassDataf("constant pool entry %d is not a member reference", index)
	}
	className, err = cp.ClassName(entry.Index1)
	if err != nil {
		return "", "", "", err
	}
	nat, err := cp.Get(entry.Index2)
	if err != nil {
		return "", "", "", err
	}
	if nat.Kind != NameAndTypeDescriptor {
		return "", "", "", invalidClassDataf("constant pool entry %d is not a NameAndType", entry.Index2)
	}
	memberName, err = cp.Utf8At(nat.Index1)
	if err != nil {
		return "", "", "", err
	}
	descriptor, err = cp.Utf8At(nat.Index2)
	if err != nil {
		return "", "", "", err
	}
	return className, memberName, descriptor, nil
}

func readRefPair(r *byteReader) (uint16, uint16, error) {
	a, err := r.u2()
	if err != nil {
		return 0, 0, err
	}
	b, err := r.u2()
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
