/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package reader

// BaseType enumerates the primitive JVM types, matching the single-letter
// descriptor prefixes defined by the class-file format.
type BaseType int

const (
	Byte BaseType = iota
	Char
	Double_
	Float_
	Int
	Long_
	Short
	Boolean
)

func (b BaseType) String() string {
	switch b {
	case Byte:
		return "B"
	case Char:
		return "C"
	case Double_:
		return "D"
	case Float_:
		return "F"
	case Int:
		return "I"
	case Long_:
		return "J"
	case Short:
		return "S"
	case Boolean:
		return "Z"
	default:
		return "?"
	}
}

// FieldTypeKind tags the FieldType union: a base primitive, a named object
// class, or an array of some component FieldType.
type FieldTypeKind int

const (
	BaseKind FieldTypeKind = iota
	ObjectKind
	ArrayKind
)

// FieldType is the tagged union described in spec.md §3, parsed from a
// field descriptor such as "I", "Ljava/lang/String;" or "[[D".
type FieldType struct {
	Kind      FieldTypeKind
	Base      BaseType
	ClassName string
	Component *FieldType
}

// IsReference reports whether values of this type are heap references
// (object or array), which is what the GC and the operand stack both need
// to know when they must trace/box a slot.
func (t FieldType) IsReference() bool {
	return t.Kind == ObjectKind || t.Kind == ArrayKind
}

// ParseFieldType parses a single complete field descriptor, rejecting any
// trailing characters.
func ParseFieldType(descriptor string) (FieldType, error) {
	chars := []rune(descriptor)
	pos := 0
	ft, err := parseFieldTypeFrom(descriptor, chars, &pos)
	if err != nil {
		return FieldType{}, err
	}
	if pos != len(chars) {
		return FieldType{}, invalidTypeDescriptor(descriptor)
	}
	return ft, nil
}

// parseFieldTypeFrom parses one FieldType starting at *pos and advances
// *pos past it, allowing callers (method-descriptor parsing, nested arrays)
// to keep consuming from the same cursor.
func parseFieldTypeFrom(descriptor string, chars []rune, pos *int) (FieldType, error) {
	if *pos >= len(chars) {
		return FieldType{}, invalidTypeDescriptor(descriptor)
	}
	c := chars[*pos]
	*pos++

	switch c {
	case 'B':
		return FieldType{Kind: BaseKind, Base: Byte}, nil
	case 'C':
		return FieldType{Kind: BaseKind, Base: Char}, nil
	case 'D':
		return FieldType{Kind: BaseKind, Base: Double_}, nil
	case 'F':
		return FieldType{Kind: BaseKind, Base: Float_}, nil
	case 'I':
		return FieldType{Kind: BaseKind, Base: Int}, nil
	case 'J':
		return FieldType{Kind: BaseKind, Base: Long_}, nil
	case 'S':
		return FieldType{Kind: BaseKind, Base: Short}, nil
	case 'Z':
		return FieldType{Kind: BaseKind, Base: Boolean}, nil
	case 'L':
		start := *pos
		for *pos < len(chars) && chars[*pos] != ';' {
			*pos++
		}
		if *pos >= len(chars) {
			return FieldType{}, invalidTypeDescriptor(descriptor)
		}
		className := string(chars[start:*pos])
		*pos++ // consume ';'
		return FieldType{Kind: ObjectKind, ClassName: className}, nil
	case '[':
		component, err := parseFieldTypeFrom(descriptor, chars, pos)
		if err != nil {
			return FieldType{}, err
		}
		return FieldType{Kind: ArrayKind, Component: &component}, nil
	default:
		return FieldType{}, invalidTypeDescriptor(descriptor)
	}
}

// String renders the FieldType for debug and trace output: a base type as
// its descriptor letter ("I"), an object type as its bare class name, and an
// array as its component followed by "[]". Descriptor gives the wire form.
func (t FieldType) String() string {
	switch t.Kind {
	case BaseKind:
		return t.Base.String()
	case ObjectKind:
		return t.ClassName
	case ArrayKind:
		return t.Component.String() + "[]"
	default:
		return "?"
	}
}

// Descriptor renders the FieldType back to its wire-format descriptor
// string; ParseFieldType(t.Descriptor()) round-trips for every t it produces.
func (t FieldType) Descriptor() string {
	switch t.Kind {
	case BaseKind:
		return t.Base.String()
	case ObjectKind:
		return "L" + t.ClassName + ";"
	case ArrayKind:
		return "[" + t.Component.Descriptor()
	default:
		return ""
	}
}
