/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package frame

import (
	"encoding/binary"
	"math"

	"github.com/cnxfgit/rjvm-learn/heap"
	"github.com/cnxfgit/rjvm-learn/reader"
	"github.com/cnxfgit/rjvm-learn/verr"
)

// Bytecode values as defined by the JVM specification. executeInstruction
// dispatches the opcodes handled in its switch; every other opcode —
// including dup_x2 (declared below but not dispatched), dup2_x1/dup2_x2,
// jsr/ret, tableswitch/lookupswitch, monitorenter/monitorexit,
// invokedynamic, multianewarray, wide and goto_w — yields NotImplemented.
const (
	opNop         = 0x00
	opAconstNull  = 0x01
	opIconstM1    = 0x02
	opIconst0     = 0x03
	opIconst5     = 0x08
	opLconst0     = 0x09
	opLconst1     = 0x0a
	opFconst0     = 0x0b
	opFconst2     = 0x0d
	opDconst0     = 0x0e
	opDconst1     = 0x0f
	opBipush      = 0x10
	opSipush      = 0x11
	opLdc         = 0x12
	opLdcW        = 0x13
	opLdc2W       = 0x14
	opIload       = 0x15
	opLload       = 0x16
	opFload       = 0x17
	opDload       = 0x18
	opAload       = 0x19
	opIload0      = 0x1a
	opLload0      = 0x1e
	opFload0      = 0x22
	opDload0      = 0x26
	opAload0      = 0x2a
	opIaload      = 0x2e
	opLaload      = 0x2f
	opFaload      = 0x30
	opDaload      = 0x31
	opAaload      = 0x32
	opBaload      = 0x33
	opCaload      = 0x34
	opSaload      = 0x35
	opIstore      = 0x36
	opLstore      = 0x37
	opFstore      = 0x38
	opDstore      = 0x39
	opAstore      = 0x3a
	opIstore0     = 0x3b
	opLstore0     = 0x3f
	opFstore0     = 0x43
	opDstore0     = 0x47
	opAstore0     = 0x4b
	opIastore     = 0x4f
	opLastore     = 0x50
	opFastore     = 0x51
	opDastore     = 0x52
	opAastore     = 0x53
	opBastore     = 0x54
	opCastore     = 0x55
	opSastore     = 0x56
	opPop         = 0x57
	opPop2        = 0x58
	opDup         = 0x59
	opDupX1       = 0x5a
	opDupX2       = 0x5b
	opDup2        = 0x5c
	opSwap        = 0x5f
	opIadd        = 0x60
	opLadd        = 0x61
	opFadd        = 0x62
	opDadd        = 0x63
	opIsub        = 0x64
	opLsub        = 0x65
	opFsub        = 0x66
	opDsub        = 0x67
	opImul        = 0x68
	opLmul        = 0x69
	opFmul        = 0x6a
	opDmul        = 0x6b
	opIdiv        = 0x6c
	opLdiv        = 0x6d
	opFdiv        = 0x6e
	opDdiv        = 0x6f
	opIrem        = 0x70
	opLrem        = 0x71
	opFrem        = 0x72
	opDrem        = 0x73
	opIneg        = 0x74
	opLneg        = 0x75
	opFneg        = 0x76
	opDneg        = 0x77
	opIshl        = 0x78
	opLshl        = 0x79
	opIshr        = 0x7a
	opLshr        = 0x7b
	opIushr       = 0x7c
	opLushr       = 0x7d
	opIand        = 0x7e
	opLand        = 0x7f
	opIor         = 0x80
	opLor         = 0x81
	opIxor        = 0x82
	opLxor        = 0x83
	opIinc        = 0x84
	opI2l         = 0x85
	opI2f         = 0x86
	opI2d         = 0x87
	opL2i         = 0x88
	opL2f         = 0x89
	opL2d         = 0x8a
	opF2i         = 0x8b
	opF2l         = 0x8c
	opF2d         = 0x8d
	opD2i         = 0x8e
	opD2l         = 0x8f
	opD2f         = 0x90
	opI2b         = 0x91
	opI2c         = 0x92
	opI2s         = 0x93
	opLcmp        = 0x94
	opFcmpl       = 0x95
	opFcmpg       = 0x96
	opDcmpl       = 0x97
	opDcmpg       = 0x98
	opIfeq        = 0x99
	opIfne        = 0x9a
	opIflt        = 0x9b
	opIfge        = 0x9c
	opIfgt        = 0x9d
	opIfle        = 0x9e
	opIfIcmpeq    = 0x9f
	opIfIcmpne    = 0xa0
	opIfIcmplt    = 0xa1
	opIfIcmpge    = 0xa2
	opIfIcmpgt    = 0xa3
	opIfIcmple    = 0xa4
	opIfAcmpeq    = 0xa5
	opIfAcmpne    = 0xa6
	opGoto        = 0xa7
	opIreturn     = 0xac
	opLreturn     = 0xad
	opFreturn     = 0xae
	opDreturn     = 0xaf
	opAreturn     = 0xb0
	opReturn      = 0xb1
	opGetstatic   = 0xb2
	opPutstatic   = 0xb3
	opGetfield    = 0xb4
	opPutfield    = 0xb5
	opInvokevirtual   = 0xb6
	opInvokespecial   = 0xb7
	opInvokestatic    = 0xb8
	opInvokeinterface = 0xb9
	opNew         = 0xbb
	opNewarray    = 0xbc
	opAnewarray   = 0xbd
	opArraylength = 0xbe
	opAthrow      = 0xbf
	opCheckcast   = 0xc0
	opInstanceof  = 0xc1
	opIfnull      = 0xc6
	opIfnonnull   = 0xc7
)

func (f *CallFrame) fetchOpcode() (uint8, error) {
	if int(f.pc) >= len(f.code) {
		return 0, verr.NewValidationException()
	}
	op := f.code[f.pc]
	f.pc++
	return op, nil
}

func (f *CallFrame) readU1() (uint8, error) {
	if int(f.pc) >= len(f.code) {
		return 0, verr.NewValidationException()
	}
	v := f.code[f.pc]
	f.pc++
	return v, nil
}

func (f *CallFrame) readI1() (int8, error) {
	v, err := f.readU1()
	return int8(v), err
}

func (f *CallFrame) readU2() (uint16, error) {
	if int(f.pc)+2 > len(f.code) {
		return 0, verr.NewValidationException()
	}
	v := binary.BigEndian.Uint16(f.code[f.pc : f.pc+2])
	f.pc += 2
	return v, nil
}

func (f *CallFrame) readI2() (int16, error) {
	v, err := f.readU2()
	return int16(v), err
}

func (f *CallFrame) readI4() (int32, error) {
	if int(f.pc)+4 > len(f.code) {
		return 0, verr.NewValidationException()
	}
	v := binary.BigEndian.Uint32(f.code[f.pc : f.pc+4])
	f.pc += 4
	return int32(v), nil
}

// executeInstruction decodes and runs one bytecode starting at opcode op
// (the opcode byte has already been consumed). instrStart is the address
// of op itself, used as the branch-offset base.
func (f *CallFrame) executeInstruction(host Host, op uint8) (instrOutcome, bool, heap.Value, error) {
	instrStart := f.pc - 1
	constants := f.classAndMethod.Class.Constants

	switch op {
	case opNop:
		return instrContinue, false, heap.Value{}, nil

	case opAconstNull:
		return f.cont(f.push(heap.Null()))

	case opIconstM1, opIconst0, 0x04, 0x05, 0x06, 0x07, opIconst5:
		return f.cont(f.push(heap.Int(int32(op) - int32(opIconst0))))

	case opLconst0, opLconst1:
		return f.cont(f.push(heap.Long(int64(op - opLconst0))))

	case opFconst0, 0x0c, opFconst2:
		return f.cont(f.push(heap.Float(float32(op - opFconst0))))

	case opDconst0, opDconst1:
		return f.cont(f.push(heap.Double(float64(op - opDconst0))))

	case opBipush:
		v, err := f.readI1()
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		return f.cont(f.push(heap.Int(int32(v))))

	case opSipush:
		v, err := f.readI2()
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		return f.cont(f.push(heap.Int(int32(v))))

	case opLdc, opLdcW, opLdc2W:
		var idx uint16
		var err error
		if op == opLdc {
			b, e := f.readU1()
			idx, err = uint16(b), e
		} else {
			idx, err = f.readU2()
		}
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		v, err := f.loadConstant(host, constants, idx)
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		return f.cont(f.push(v))

	case opIload, opLload, opFload, opDload, opAload:
		idx, err := f.readU1()
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		return f.cont(f.loadLocal(int(idx)))

	case opIload0, opIload0 + 1, opIload0 + 2, opIload0 + 3:
		return f.cont(f.loadLocal(int(op - opIload0)))
	case opLload0, opLload0 + 1, opLload0 + 2, opLload0 + 3:
		return f.cont(f.loadLocal(int(op - opLload0)))
	case opFload0, opFload0 + 1, opFload0 + 2, opFload0 + 3:
		return f.cont(f.loadLocal(int(op - opFload0)))
	case opDload0, opDload0 + 1, opDload0 + 2, opDload0 + 3:
		return f.cont(f.loadLocal(int(op - opDload0)))
	case opAload0, opAload0 + 1, opAload0 + 2, opAload0 + 3:
		return f.cont(f.loadLocal(int(op - opAload0)))

	case opIstore, opLstore, opFstore, opDstore, opAstore:
		idx, err := f.readU1()
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		return f.cont(f.storeLocal(int(idx)))

	case opIstore0, opIstore0 + 1, opIstore0 + 2, opIstore0 + 3:
		return f.cont(f.storeLocal(int(op - opIstore0)))
	case opLstore0, opLstore0 + 1, opLstore0 + 2, opLstore0 + 3:
		return f.cont(f.storeLocal(int(op - opLstore0)))
	case opFstore0, opFstore0 + 1, opFstore0 + 2, opFstore0 + 3:
		return f.cont(f.storeLocal(int(op - opFstore0)))
	case opDstore0, opDstore0 + 1, opDstore0 + 2, opDstore0 + 3:
		return f.cont(f.storeLocal(int(op - opDstore0)))
	case opAstore0, opAstore0 + 1, opAstore0 + 2, opAstore0 + 3:
		return f.cont(f.storeLocal(int(op - opAstore0)))

	case opIaload, opLaload, opFaload, opDaload, opAaload, opBaload, opCaload, opSaload:
		return f.cont(f.arrayLoad(host))

	case opIastore, opLastore, opFastore, opDastore, opAastore, opBastore, opCastore, opSastore:
		return f.cont(f.arrayStore(host))

	case opPop:
		_, err := f.pop()
		return f.cont(err)

	case opPop2:
		if _, err := f.pop(); err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		_, err := f.pop()
		return f.cont(err)

	case opDup:
		v, err := f.peek()
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		return f.cont(f.push(v))

	case opDupX1:
		a, err := f.pop()
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		b, err := f.pop()
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		if err := f.push(a); err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		if err := f.push(b); err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		return f.cont(f.push(a))

	case opDup2:
		a, err := f.pop()
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		b, err := f.pop()
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		if err := f.push(b); err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		if err := f.push(a); err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		if err := f.push(b); err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		return f.cont(f.push(a))

	case opSwap:
		a, err := f.pop()
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		b, err := f.pop()
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		if err := f.push(a); err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		return f.cont(f.push(b))

	case opIadd, opIsub, opImul, opIdiv, opIrem, opIand, opIor, opIxor, opIshl, opIshr, opIushr:
		return f.cont(f.intBinary(op))
	case opLadd, opLsub, opLmul, opLdiv, opLrem, opLand, opLor, opLxor, opLshl, opLshr, opLushr:
		return f.cont(f.longBinary(op))
	case opFadd, opFsub, opFmul, opFdiv, opFrem:
		return f.cont(f.floatBinary(op))
	case opDadd, opDsub, opDmul, opDdiv, opDrem:
		return f.cont(f.doubleBinary(op))

	case opIneg:
		v, err := f.pop()
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		return f.cont(f.push(heap.Int(-v.Int)))
	case opLneg:
		v, err := f.pop()
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		return f.cont(f.push(heap.Long(-v.Long)))
	case opFneg:
		v, err := f.pop()
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		return f.cont(f.push(heap.Float(-v.Float)))
	case opDneg:
		v, err := f.pop()
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		return f.cont(f.push(heap.Double(-v.Double)))

	case opIinc:
		idx, err := f.readU1()
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		delta, err := f.readI1()
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		f.locals[idx] = heap.Int(f.locals[idx].Int + int32(delta))
		return instrContinue, false, heap.Value{}, nil

	case opI2l, opI2f, opI2d, opL2i, opL2f, opL2d, opF2i, opF2l, opF2d, opD2i, opD2l, opD2f, opI2b, opI2c, opI2s:
		return f.cont(f.convert(op))

	case opLcmp, opFcmpl, opFcmpg, opDcmpl, opDcmpg:
		return f.cont(f.compare(op))

	case opIfeq, opIfne, opIflt, opIfge, opIfgt, opIfle:
		return f.conditionalBranch(instrStart, func() (bool, error) {
			v, err := f.pop()
			if err != nil {
				return false, err
			}
			return intCompareToZero(op, v.Int), nil
		})

	case opIfIcmpeq, opIfIcmpne, opIfIcmplt, opIfIcmpge, opIfIcmpgt, opIfIcmple:
		return f.conditionalBranch(instrStart, func() (bool, error) {
			b, err := f.pop()
			if err != nil {
				return false, err
			}
			a, err := f.pop()
			if err != nil {
				return false, err
			}
			return intCompare(op, a.Int, b.Int), nil
		})

	case opIfAcmpeq, opIfAcmpne:
		return f.conditionalBranch(instrStart, func() (bool, error) {
			b, err := f.pop()
			if err != nil {
				return false, err
			}
			a, err := f.pop()
			if err != nil {
				return false, err
			}
			eq := a.Kind == b.Kind && a.Ref == b.Ref
			if op == opIfAcmpeq {
				return eq, nil
			}
			return !eq, nil
		})

	case opIfnull, opIfnonnull:
		return f.conditionalBranch(instrStart, func() (bool, error) {
			v, err := f.pop()
			if err != nil {
				return false, err
			}
			isNull := v.Kind == heap.NullVal || (v.Kind == heap.ObjectVal && v.Ref == 0)
			if op == opIfnull {
				return isNull, nil
			}
			return !isNull, nil
		})

	case opGoto:
		offset, err := f.readI2()
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		f.pc = uint16(int32(instrStart) + int32(offset))
		return instrContinue, false, heap.Value{}, nil

	case opIreturn, opFreturn:
		v, err := f.pop()
		return instrReturn, true, v, wrapNil(err)
	case opLreturn, opDreturn, opAreturn:
		v, err := f.pop()
		return instrReturn, true, v, wrapNil(err)
	case opReturn:
		return instrReturn, false, heap.Value{}, nil

	case opGetstatic:
		return f.cont(f.getStatic(host, constants))
	case opPutstatic:
		return f.cont(f.putStatic(host, constants))
	case opGetfield:
		return f.cont(f.getField(host, constants))
	case opPutfield:
		return f.cont(f.putField(host, constants))

	case opInvokevirtual, opInvokespecial, opInvokestatic, opInvokeinterface:
		return f.invoke(host, constants, op)

	case opNew:
		idx, err := f.readU2()
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		name, err := constants.ClassName(idx)
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		class, err := host.ResolveClass(name)
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		ref, err := host.NewObject(class)
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		return f.cont(f.push(heap.Object(ref)))

	case opNewarray:
		atype, err := f.readU1()
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		length, err := f.pop()
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		_ = atype
		ref, err := host.NewArray(heap.ArrayOfBase, int(length.Int))
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		return f.cont(f.push(heap.Object(ref)))

	case opAnewarray:
		idx, err := f.readU2()
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		_, err = constants.ClassName(idx)
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		length, err := f.pop()
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		ref, err := host.NewArray(heap.ArrayOfObject, int(length.Int))
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		return f.cont(f.push(heap.Object(ref)))

	case opArraylength:
		v, err := f.pop()
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		if v.Kind != heap.ObjectVal || v.Ref == 0 {
			return instrContinue, false, heap.Value{}, verr.NewNullPointerException()
		}
		return f.cont(f.push(heap.Int(int32(host.ArrayLength(v.Ref)))))

	case opAthrow:
		v, err := f.pop()
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		if v.Kind != heap.ObjectVal || v.Ref == 0 {
			return instrContinue, false, heap.Value{}, verr.NewNullPointerException()
		}
		return instrContinue, false, heap.Value{}, &JavaException{Ref: v.Ref}

	case opCheckcast, opInstanceof:
		return f.castOrInstanceof(host, constants, op)

	default:
		return instrContinue, false, heap.Value{}, verr.NewNotImplemented()
	}
}

func (f *CallFrame) cont(err error) (instrOutcome, bool, heap.Value, error) {
	return instrContinue, false, heap.Value{}, err
}

func wrapNil(err error) error { return err }

func (f *CallFrame) loadLocal(idx int) error {
	if idx < 0 || idx >= len(f.locals) {
		return verr.NewValidationException()
	}
	return f.push(f.locals[idx])
}

func (f *CallFrame) storeLocal(idx int) error {
	v, err := f.pop()
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(f.locals) {
		return verr.NewValidationException()
	}
	f.locals[idx] = v
	return nil
}

func (f *CallFrame) loadConstant(host Host, constants *reader.ConstantPool, idx uint16) (heap.Value, error) {
	entry, err := constants.Get(idx)
	if err != nil {
		return heap.Value{}, err
	}
	switch entry.Kind {
	case reader.Integer:
		return heap.Int(entry.IntValue), nil
	case reader.Float:
		return heap.Float(entry.FloatVal), nil
	case reader.Long:
		return heap.Long(entry.LongValue), nil
	case reader.Double:
		return heap.Double(entry.DoubleVal), nil
	case reader.StringReference:
		text, err := constants.TextOf(idx)
		if err != nil {
			return heap.Value{}, err
		}
		ref, err := host.NewJavaString(text)
		if err != nil {
			return heap.Value{}, err
		}
		return heap.Object(ref), nil
	default:
		return heap.Value{}, verr.NewValidationException()
	}
}

func elementValueKind(elementsType heap.ArrayEntryType) heap.ValueKind {
	if elementsType == heap.ArrayOfObject {
		return heap.ObjectVal
	}
	return heap.IntVal
}

func (f *CallFrame) arrayLoad(host Host) error {
	index, err := f.pop()
	if err != nil {
		return err
	}
	arr, err := f.pop()
	if err != nil {
		return err
	}
	if arr.Kind != heap.ObjectVal || arr.Ref == 0 {
		return verr.NewNullPointerException()
	}
	elementsType := host.ArrayElementsType(arr.Ref)
	v, err := host.GetElement(arr.Ref, int(index.Int), elementValueKind(elementsType))
	if err != nil {
		return verr.NewArrayIndexOutOfBoundsException()
	}
	return f.push(v)
}

func (f *CallFrame) arrayStore(host Host) error {
	value, err := f.pop()
	if err != nil {
		return err
	}
	index, err := f.pop()
	if err != nil {
		return err
	}
	arr, err := f.pop()
	if err != nil {
		return err
	}
	if arr.Kind != heap.ObjectVal || arr.Ref == 0 {
		return verr.NewNullPointerException()
	}
	if err := host.SetElement(arr.Ref, int(index.Int), value); err != nil {
		return verr.NewArrayIndexOutOfBoundsException()
	}
	return nil
}

func (f *CallFrame) getStatic(host Host, constants *reader.ConstantPool) error {
	idx, err := f.readU2()
	if err != nil {
		return err
	}
	className, fieldName, _, err := constants.MemberrefParts(idx)
	if err != nil {
		return err
	}
	class, err := host.ResolveClass(className)
	if err != nil {
		return err
	}
	slot, ok := class.FindField(fieldName)
	if !ok {
		return verr.NewFieldNotFoundException(className, fieldName)
	}
	v, err := host.GetStatic(slot.DeclaringClass, slot.Index, fieldValueKind(slot.Type))
	if err != nil {
		return err
	}
	return f.push(v)
}

func (f *CallFrame) putStatic(host Host, constants *reader.ConstantPool) error {
	idx, err := f.readU2()
	if err != nil {
		return err
	}
	className, fieldName, _, err := constants.MemberrefParts(idx)
	if err != nil {
		return err
	}
	class, err := host.ResolveClass(className)
	if err != nil {
		return err
	}
	slot, ok := class.FindField(fieldName)
	if !ok {
		return verr.NewFieldNotFoundException(className, fieldName)
	}
	v, err := f.pop()
	if err != nil {
		return err
	}
	return host.SetStatic(slot.DeclaringClass, slot.Index, v)
}

func (f *CallFrame) getField(host Host, constants *reader.ConstantPool) error {
	idx, err := f.readU2()
	if err != nil {
		return err
	}
	className, fieldName, _, err := constants.MemberrefParts(idx)
	if err != nil {
		return err
	}
	obj, err := f.pop()
	if err != nil {
		return err
	}
	if obj.Kind != heap.ObjectVal || obj.Ref == 0 {
		return verr.NewNullPointerException()
	}
	class, err := host.ResolveClass(className)
	if err != nil {
		return err
	}
	slot, ok := class.FindField(fieldName)
	if !ok {
		return verr.NewFieldNotFoundException(className, fieldName)
	}
	return f.push(host.GetField(obj.Ref, slot.Index, fieldValueKind(slot.Type)))
}

func (f *CallFrame) putField(host Host, constants *reader.ConstantPool) error {
	idx, err := f.readU2()
	if err != nil {
		return err
	}
	className, fieldName, _, err := constants.MemberrefParts(idx)
	if err != nil {
		return err
	}
	value, err := f.pop()
	if err != nil {
		return err
	}
	obj, err := f.pop()
	if err != nil {
		return err
	}
	if obj.Kind != heap.ObjectVal || obj.Ref == 0 {
		return verr.NewNullPointerException()
	}
	class, err := host.ResolveClass(className)
	if err != nil {
		return err
	}
	slot, ok := class.FindField(fieldName)
	if !ok {
		return verr.NewFieldNotFoundException(className, fieldName)
	}
	host.SetField(obj.Ref, slot.Index, value)
	return nil
}

func fieldValueKind(t reader.FieldType) heap.ValueKind {
	if t.IsReference() {
		return heap.ObjectVal
	}
	switch t.Base {
	case reader.Long_:
		return heap.LongVal
	case reader.Float_:
		return heap.FloatVal
	case reader.Double_:
		return heap.DoubleVal
	default:
		return heap.IntVal
	}
}

func (f *CallFrame) invoke(host Host, constants *reader.ConstantPool, op uint8) (instrOutcome, bool, heap.Value, error) {
	idx, err := f.readU2()
	if err != nil {
		return instrContinue, false, heap.Value{}, err
	}
	if op == opInvokeinterface {
		if _, err := f.readU1(); err != nil { // count
			return instrContinue, false, heap.Value{}, err
		}
		if _, err := f.readU1(); err != nil { // reserved zero byte
			return instrContinue, false, heap.Value{}, err
		}
	}
	className, methodName, descriptor, err := constants.MemberrefParts(idx)
	if err != nil {
		return instrContinue, false, heap.Value{}, err
	}
	parsed, err := reader.ParseMethodDescriptor(descriptor)
	if err != nil {
		return instrContinue, false, heap.Value{}, err
	}

	numArgs := len(parsed.Parameters)
	args := make([]heap.Value, numArgs)
	for i := numArgs - 1; i >= 0; i-- {
		v, err := f.pop()
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		args[i] = v
	}

	var receiver *heap.Value
	if op != opInvokestatic {
		v, err := f.pop()
		if err != nil {
			return instrContinue, false, heap.Value{}, err
		}
		if v.Kind != heap.ObjectVal || v.Ref == 0 {
			return instrContinue, false, heap.Value{}, verr.NewNullPointerException()
		}
		receiver = &v
	}

	class, err := host.ResolveClass(className)
	if err != nil {
		return instrContinue, false, heap.Value{}, err
	}
	if (op == opInvokevirtual || op == opInvokeinterface) && receiver != nil {
		if rc, err := host.ObjectClass(receiver.Ref); err == nil {
			class = rc
		}
	}

	value, hasValue, err := host.Invoke(class, methodName, descriptor, receiver, args)
	if err != nil {
		return instrContinue, false, heap.Value{}, err
	}
	if hasValue {
		if err := f.push(value); err != nil {
			return instrContinue, false, heap.Value{}, err
		}
	}
	return instrContinue, false, heap.Value{}, nil
}

func (f *CallFrame) castOrInstanceof(host Host, constants *reader.ConstantPool, op uint8) (instrOutcome, bool, heap.Value, error) {
	idx, err := f.readU2()
	if err != nil {
		return instrContinue, false, heap.Value{}, err
	}
	targetName, err := constants.ClassName(idx)
	if err != nil {
		return instrContinue, false, heap.Value{}, err
	}
	v, err := f.pop()
	if err != nil {
		return instrContinue, false, heap.Value{}, err
	}

	if v.Kind != heap.ObjectVal || v.Ref == 0 {
		if op == opInstanceof {
			return f.cont(f.push(heap.Int(0)))
		}
		return f.cont(f.push(v))
	}

	targetClass, err := host.ResolveClass(targetName)
	if err != nil {
		return instrContinue, false, heap.Value{}, err
	}
	actualClass, err := host.ObjectClass(v.Ref)
	if err != nil {
		return instrContinue, false, heap.Value{}, err
	}
	is := actualClass.IsSubclassOf(targetClass)

	if op == opInstanceof {
		if is {
			return f.cont(f.push(heap.Int(1)))
		}
		return f.cont(f.push(heap.Int(0)))
	}
	if !is {
		return instrContinue, false, heap.Value{}, verr.NewClassCastException()
	}
	return f.cont(f.push(v))
}

func (f *CallFrame) conditionalBranch(instrStart uint16, test func() (bool, error)) (instrOutcome, bool, heap.Value, error) {
	offset, err := f.readI2()
	if err != nil {
		return instrContinue, false, heap.Value{}, err
	}
	taken, err := test()
	if err != nil {
		return instrContinue, false, heap.Value{}, err
	}
	if taken {
		f.pc = uint16(int32(instrStart) + int32(offset))
	}
	return instrContinue, false, heap.Value{}, nil
}

func intCompareToZero(op uint8, v int32) bool {
	switch op {
	case opIfeq:
		return v == 0
	case opIfne:
		return v != 0
	case opIflt:
		return v < 0
	case opIfge:
		return v >= 0
	case opIfgt:
		return v > 0
	case opIfle:
		return v <= 0
	default:
		return false
	}
}

func intCompare(op uint8, a, b int32) bool {
	switch op {
	case opIfIcmpeq:
		return a == b
	case opIfIcmpne:
		return a != b
	case opIfIcmplt:
		return a < b
	case opIfIcmpge:
		return a >= b
	case opIfIcmpgt:
		return a > b
	case opIfIcmple:
		return a <= b
	default:
		return false
	}
}

func (f *CallFrame) intBinary(op uint8) error {
	b, err := f.pop()
	if err != nil {
		return err
	}
	a, err := f.pop()
	if err != nil {
		return err
	}
	var r int32
	switch op {
	case opIadd:
		r = a.Int + b.Int
	case opIsub:
		r = a.Int - b.Int
	case opImul:
		r = a.Int * b.Int
	case opIdiv:
		if b.Int == 0 {
			return verr.NewArithmeticException()
		}
		r = a.Int / b.Int
	case opIrem:
		if b.Int == 0 {
			return verr.NewArithmeticException()
		}
		r = a.Int % b.Int
	case opIand:
		r = a.Int & b.Int
	case opIor:
		r = a.Int | b.Int
	case opIxor:
		r = a.Int ^ b.Int
	case opIshl:
		r = a.Int << (uint32(b.Int) & 0x1f)
	case opIshr:
		r = a.Int >> (uint32(b.Int) & 0x1f)
	case opIushr:
		r = int32(uint32(a.Int) >> (uint32(b.Int) & 0x1f))
	}
	return f.push(heap.Int(r))
}

func (f *CallFrame) longBinary(op uint8) error {
	b, err := f.pop()
	if err != nil {
		return err
	}
	a, err := f.pop()
	if err != nil {
		return err
	}
	var r int64
	switch op {
	case opLadd:
		r = a.Long + b.Long
	case opLsub:
		r = a.Long - b.Long
	case opLmul:
		r = a.Long * b.Long
	case opLdiv:
		if b.Long == 0 {
			return verr.NewArithmeticException()
		}
		r = a.Long / b.Long
	case opLrem:
		if b.Long == 0 {
			return verr.NewArithmeticException()
		}
		r = a.Long % b.Long
	case opLand:
		r = a.Long & b.Long
	case opLor:
		r = a.Long | b.Long
	case opLxor:
		r = a.Long ^ b.Long
	case opLshl:
		r = a.Long << (uint64(b.Long) & 0x3f)
	case opLshr:
		r = a.Long >> (uint64(b.Long) & 0x3f)
	case opLushr:
		r = int64(uint64(a.Long) >> (uint64(b.Long) & 0x3f))
	}
	return f.push(heap.Long(r))
}

func (f *CallFrame) floatBinary(op uint8) error {
	b, err := f.pop()
	if err != nil {
		return err
	}
	a, err := f.pop()
	if err != nil {
		return err
	}
	var r float32
	switch op {
	case opFadd:
		r = a.Float + b.Float
	case opFsub:
		r = a.Float - b.Float
	case opFmul:
		r = a.Float * b.Float
	case opFdiv:
		r = a.Float / b.Float
	case opFrem:
		r = float32(math.Mod(float64(a.Float), float64(b.Float)))
	}
	return f.push(heap.Float(r))
}

func (f *CallFrame) doubleBinary(op uint8) error {
	b, err := f.pop()
	if err != nil {
		return err
	}
	a, err := f.pop()
	if err != nil {
		return err
	}
	var r float64
	switch op {
	case opDadd:
		r = a.Double + b.Double
	case opDsub:
		r = a.Double - b.Double
	case opDmul:
		r = a.Double * b.Double
	case opDdiv:
		r = a.Double / b.Double
	case opDrem:
		r = math.Mod(a.Double, b.Double)
	}
	return f.push(heap.Double(r))
}

func (f *CallFrame) convert(op uint8) error {
	v, err := f.pop()
	if err != nil {
		return err
	}
	switch op {
	case opI2l:
		return f.push(heap.Long(int64(v.Int)))
	case opI2f:
		return f.push(heap.Float(float32(v.Int)))
	case opI2d:
		return f.push(heap.Double(float64(v.Int)))
	case opL2i:
		return f.push(heap.Int(int32(v.Long)))
	case opL2f:
		return f.push(heap.Float(float32(v.Long)))
	case opL2d:
		return f.push(heap.Double(float64(v.Long)))
	case opF2i:
		return f.push(heap.Int(int32(v.Float)))
	case opF2l:
		return f.push(heap.Long(int64(v.Float)))
	case opF2d:
		return f.push(heap.Double(float64(v.Float)))
	case opD2i:
		return f.push(heap.Int(int32(v.Double)))
	case opD2l:
		return f.push(heap.Long(int64(v.Double)))
	case opD2f:
		return f.push(heap.Float(float32(v.Double)))
	case opI2b:
		return f.push(heap.Int(int32(int8(v.Int))))
	case opI2c:
		return f.push(heap.Int(int32(uint16(v.Int))))
	case opI2s:
		return f.push(heap.Int(int32(int16(v.Int))))
	}
	return verr.NewValidationException()
}

func (f *CallFrame) compare(op uint8) error {
	b, err := f.pop()
	if err != nil {
		return err
	}
	a, err := f.pop()
	if err != nil {
		return err
	}
	var r int32
	switch op {
	case opLcmp:
		r = cmp64(a.Long, b.Long)
	case opFcmpl, opFcmpg:
		r = cmpFloat(float64(a.Float), float64(b.Float), op == opFcmpg)
	case opDcmpl, opDcmpg:
		r = cmpFloat(a.Double, b.Double, op == opDcmpg)
	}
	return f.push(heap.Int(r))
}

func cmp64(a, b int64) int32 {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat(a, b float64, nanIsGreater bool) int32 {
	if a != a || b != b { // NaN
		if nanIsGreater {
			return 1
		}
		return -1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
