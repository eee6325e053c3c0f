/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package heap implements the semi-space copying allocator and the Value
// representation for everything that lives on the managed heap or in a
// frame's locals/operand stack.
package heap

import "fmt"

// ValueKind tags the Value union, matching the Rust original's Value enum
// (Uninitialized/Int/Long/Float/Double/Null/Object) one-for-one.
type ValueKind int

const (
	Uninitialized ValueKind = iota
	IntVal
	LongVal
	FloatVal
	DoubleVal
	NullVal
	ObjectVal
)

// Reference addresses an allocation inside the allocator's current
// semi-space. Zero is reserved and never handed out by memoryChunk.alloc, so it
// doubles as the heap's null-word representation.
type Reference uint32

const NullReference Reference = 0

// Value is one local-variable slot, operand-stack slot, or heap field slot.
type Value struct {
	Kind   ValueKind
	Int    int32
	Long   int64
	Float  float32
	Double float64
	Ref    Reference
}

func Int(v int32) Value     { return Value{Kind: IntVal, Int: v} }
func Long(v int64) Value    { return Value{Kind: LongVal, Long: v} }
func Float(v float32) Value { return Value{Kind: FloatVal, Float: v} }
func Double(v float64) Value { return Value{Kind: DoubleVal, Double: v} }
func Null() Value            { return Value{Kind: NullVal} }
func Object(ref Reference) Value {
	return Value{Kind: ObjectVal, Ref: ref}
}

// IsReference reports whether this value kind is traced by the GC.
func (v Value) IsReference() bool {
	return v.Kind == ObjectVal || v.Kind == NullVal
}

func (v Value) String() string {
	switch v.Kind {
	case IntVal:
		return fmt.Sprintf("%d", v.Int)
	case LongVal:
		return fmt.Sprintf("%d", v.Long)
	case FloatVal:
		return fmt.Sprintf("%g", v.Float)
	case DoubleVal:
		return fmt.Sprintf("%g", v.Double)
	case NullVal:
		return "null"
	case ObjectVal:
		return fmt.Sprintf("ref@%d", v.Ref)
	default:
		return "<uninitialized>"
	}
}

// toWord encodes v into the raw 8-byte heap representation: null and a
// never-allocated Reference(0) both encode as the all-zero word, matching
// the "null recognized by reading the slot as a zero u64" invariant.
func (v Value) toWord() uint64 {
	switch v.Kind {
	case IntVal:
		return uint64(uint32(v.Int))
	case LongVal:
		return uint64(v.Long)
	case FloatVal:
		return uint64(float32bits(v.Float))
	case DoubleVal:
		return float64bits(v.Double)
	case ObjectVal:
		return uint64(v.Ref)
	default:
		return 0
	}
}

// wordToValue decodes a raw heap word back to a Value, given the static
// type the slot is declared to hold (needed because the word itself is
// untyped storage).
func wordToValue(word uint64, kind ValueKind) Value {
	switch kind {
	case IntVal:
		return Int(int32(uint32(word)))
	case LongVal:
		return Long(int64(word))
	case FloatVal:
		return Float(float32frombits(uint32(word)))
	case DoubleVal:
		return Double(float64frombits(word))
	case ObjectVal:
		if word == 0 {
			return Null()
		}
		return Object(Reference(word))
	default:
		return Value{}
	}
}
