/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package reader

import "sort"

const classMagic = 0xCAFEBABE

// ClassAccessFlags mirrors the bitmask carried on the class_file's
// access_flags field (JVM spec §4.1, Table 4.1-A).
type ClassAccessFlags uint16

const (
	AccPublic     ClassAccessFlags = 0x0001
	AccFinal      ClassAccessFlags = 0x0010
	AccSuper      ClassAccessFlags = 0x0020
	AccInterface  ClassAccessFlags = 0x0200
	AccAbstract   ClassAccessFlags = 0x0400
	AccSynthetic  ClassAccessFlags = 0x1000
	AccAnnotation ClassAccessFlags = 0x2000
	AccEnum       ClassAccessFlags = 0x4000
)

// FieldAccessFlags mirrors field_info's access_flags (JVM spec §4.5).
type FieldAccessFlags uint16

const (
	FieldAccPublic    FieldAccessFlags = 0x0001
	FieldAccPrivate   FieldAccessFlags = 0x0002
	FieldAccProtected FieldAccessFlags = 0x0004
	FieldAccStatic    FieldAccessFlags = 0x0008
	FieldAccFinal     FieldAccessFlags = 0x0010
	FieldAccVolatile  FieldAccessFlags = 0x0040
	FieldAccTransient FieldAccessFlags = 0x0080
)

func (f FieldAccessFlags) IsStatic() bool { return f&FieldAccStatic != 0 }

// MethodAccessFlags mirrors method_info's access_flags (JVM spec §4.6).
type MethodAccessFlags uint16

const (
	MethodAccPublic       MethodAccessFlags = 0x0001
	MethodAccPrivate      MethodAccessFlags = 0x0002
	MethodAccProtected    MethodAccessFlags = 0x0004
	MethodAccStatic       MethodAccessFlags = 0x0008
	MethodAccFinal        MethodAccessFlags = 0x0010
	MethodAccSynchronized MethodAccessFlags = 0x0020
	MethodAccNative       MethodAccessFlags = 0x0100
	MethodAccAbstract     MethodAccessFlags = 0x0400
)

func (f MethodAccessFlags) IsStatic() bool { return f&MethodAccStatic != 0 }
func (f MethodAccessFlags) IsNative() bool { return f&MethodAccNative != 0 }

// FieldConstantValueKind tags a ClassFileField's optional ConstantValue
// attribute payload.
type FieldConstantValueKind int

const (
	ConstInt FieldConstantValueKind = iota
	ConstFloat
	ConstLong
	ConstDouble
	ConstString
)

type FieldConstantValue struct {
	Kind      FieldConstantValueKind
	IntValue  int32
	FloatVal  float32
	LongValue int64
	DoubleVal float64
	StrValue  string
}

// ClassFileField is one parsed field_info entry.
type ClassFileField struct {
	Flags          FieldAccessFlags
	Name           string
	TypeDescriptor FieldType
	ConstantValue  *FieldConstantValue
	Deprecated     bool
}

// ExceptionTableEntry is one row of a Code attribute's exception table.
type ExceptionTableEntry struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	// CatchClass is nil for a finally-style handler that catches everything.
	CatchClass *string
}

// Covers reports whether pc falls within [StartPC, EndPC).
func (e ExceptionTableEntry) Covers(pc uint16) bool {
	return pc >= e.StartPC && pc < e.EndPC
}

// LineNumberTableEntry maps a bytecode offset to a source line.
type LineNumberTableEntry struct {
	StartPC    uint16
	LineNumber uint16
}

// LineNumberTable is sorted by StartPC so LookupPC can binary-search.
type LineNumberTable struct {
	entries []LineNumberTableEntry
}

func NewLineNumberTable(entries []LineNumberTableEntry) *LineNumberTable {
	sorted := make([]LineNumberTableEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartPC < sorted[j].StartPC })
	return &LineNumberTable{entries: sorted}
}

// LookupPC returns the line number of the entry with the greatest StartPC
// not exceeding pc, matching the original's binary_search-with-predecessor
// lookup.
func (t *LineNumberTable) LookupPC(pc uint16) uint16 {
	i := sort.Search(len(t.entries), func(i int) bool { return t.entries[i].StartPC > pc })
	if i == 0 {
		return 0
	}
	return t.entries[i-1].LineNumber
}

// ClassFileMethodCode is the body of a Code attribute.
type ClassFileMethodCode struct {
	MaxStack        uint16
	MaxLocals       uint16
	Code            []byte
	ExceptionTable  []ExceptionTableEntry
	LineNumberTable *LineNumberTable
}

// ClassFileMethod is one parsed method_info entry.
type ClassFileMethod struct {
	Flags               MethodAccessFlags
	Name                string
	TypeDescriptor      string
	ParsedTypeDescriptor MethodDescriptor
	Code                *ClassFileMethodCode
	Deprecated          bool
	ThrownExceptions    []string
}

// ClassFile is the fully parsed, resolved-name representation of a .class
// file, matching spec.md §3's ClassFile model.
type ClassFile struct {
	MajorVersion uint16
	MinorVersion uint16
	Constants    *ConstantPool
	Flags        ClassAccessFlags
	Name         string
	Superclass   *string
	Interfaces   []string
	Fields       []ClassFileField
	Methods      []ClassFileMethod
	Deprecated   bool
	SourceFile   *string
}

// Parse reads a full class file per JVM spec §4.1, returning a ClassFile
// or an error (see ClassReaderError for which error types can come back,
// directly or wrapped). Unknown attributes are skipped by their declared
// length, never rejected — matching the tolerant-reader rule that only
// structurally required fields are validated.
func Parse(data []byte) (*ClassFile, error) {
	r := newByteReader(data)

	magic, err := r.u4()
	if err != nil {
		return nil, errorsWrapf(err, "reading magic")
	}
	if magic != classMagic {
		return nil, invalidClassDataf("bad magic number: 0x%08X", magic)
	}

	minor, err := r.u2()
	if err != nil {
		return nil, errorsWrapf(err, "reading minor version")
	}
	major, err := r.u2()
	if err != nil {
		return nil, errorsWrapf(err, "reading major version")
	}
	if major < 45 || major > 66 {
		return nil, unsupportedVersion(major, minor)
	}

	constants, err := parseConstantPool(r)
	if err != nil {
		return nil, err
	}

	accessFlags, err := r.u2()
	if err != nil {
		return nil, errorsWrapf(err, "reading access flags")
	}

	thisClassIdx, err := r.u2()
	if err != nil {
		return nil, errorsWrapf(err, "reading this_class")
	}
	name, err := constants.ClassName(thisClassIdx)
	if err != nil {
		return nil, errorsWrapf(err, "resolving this_class")
	}

	superClassIdx, err := r.u2()
	if err != nil {
		return nil, errorsWrapf(err, "reading super_class")
	}
	var superclass *string
	if superClassIdx != 0 {
		s, err := constants.ClassName(superClassIdx)
		if err != nil {
			return nil, errorsWrapf(err, "resolving super_class")
		}
		superclass = &s
	}

	interfacesCount, err := r.u2()
	if err != nil {
		return nil, errorsWrapf(err, "reading interfaces_count")
	}
	interfaces := make([]string, 0, interfacesCount)
	for i := 0; i < int(interfacesCount); i++ {
		idx, err := r.u2()
		if err != nil {
			return nil, errorsWrapf(err, "reading interface %d", i)
		}
		iname, err := constants.ClassName(idx)
		if err != nil {
			return nil, errorsWrapf(err, "resolving interface %d", i)
		}
		interfaces = append(interfaces, iname)
	}

	fieldsCount, err := r.u2()
	if err != nil {
		return nil, errorsWrapf(err, "reading fields_count")
	}
	fields := make([]ClassFileField, 0, fieldsCount)
	for i := 0; i < int(fieldsCount); i++ {
		f, err := parseField(r, constants)
		if err != nil {
			return nil, errorsWrapf(err, "reading field %d", i)
		}
		fields = append(fields, f)
	}

	methodsCount, err := r.u2()
	if err != nil {
		return nil, errorsWrapf(err, "reading methods_count")
	}
	methods := make([]ClassFileMethod, 0, methodsCount)
	for i := 0; i < int(methodsCount); i++ {
		m, err := parseMethod(r, constants)
		if err != nil {
			return nil, errorsWrapf(err, "reading method %d", i)
		}
		methods = append(methods, m)
	}

	deprecated := false
	var sourceFile *string
	attrCount, err := r.u2()
	if err != nil {
		return nil, errorsWrapf(err, "reading class attributes_count")
	}
	for i := 0; i < int(attrCount); i++ {
		attrName, body, err := readAttribute(r, constants)
		if err != nil {
			return nil, errorsWrapf(err, "reading class attribute %d", i)
		}
		switch attrName {
		case "Deprecated":
			deprecated = true
		case "SourceFile":
			br := newByteReader(body)
			idx, err := br.u2()
			if err != nil {
				return nil, errorsWrapf(err, "reading SourceFile attribute")
			}
			s, err := constants.Utf8At(idx)
			if err != nil {
				return nil, errorsWrapf(err, "resolving SourceFile")
			}
			sourceFile = &s
		}
	}

	return &ClassFile{
		MajorVersion: major,
		MinorVersion: minor,
		Constants:    constants,
		Flags:        ClassAccessFlags(accessFlags),
		Name:         name,
		Superclass:   superclass,
		Interfaces:   interfaces,
		Fields:       fields,
		Methods:      methods,
		Deprecated:   deprecated,
		SourceFile:   sourceFile,
	}, nil
}

func parseConstantPool(r *byteReader) (*ConstantPool, error) {
	count, err := r.u2()
	if err != nil {
		return nil, errorsWrapf(err, "reading constant_pool_count")
	}
	cp := NewConstantPool()
	// Entry indices run 1..count-1; Long/Double each consume two logical
	// slots, so the loop counter tracks physical pool length, not raw index.
	for cp.Len() < int(count)-1 {
		if err := cp.parseEntry(r, cp.Len()+1); err != nil {
			return nil, err
		}
	}
	return cp, nil
}

// readAttribute reads one generic attribute_info's name and raw body.
func readAttribute(r *byteReader, constants *ConstantPool) (string, []byte, error) {
	nameIdx, err := r.u2()
	if err != nil {
		return "", nil, err
	}
	name, err := constants.Utf8At(nameIdx)
	if err != nil {
		return "", nil, err
	}
	length, err := r.u4()
	if err != nil {
		return "", nil, err
	}
	body, err := r.bytes(int(length))
	if err != nil {
		return "", nil, err
	}
	return name, body, nil
}

func parseField(r *byteReader, constants *ConstantPool) (ClassFileField, error) {
	accessFlags, err := r.u2()
	if err != nil {
		return ClassFileField{}, err
	}
	nameIdx, err := r.u2()
	if err != nil {
		return ClassFileField{}, err
	}
	name, err := constants.Utf8At(nameIdx)
	if err != nil {
		return ClassFileField{}, err
	}
	descIdx, err := r.u2()
	if err != nil {
		return ClassFileField{}, err
	}
	descStr, err := constants.Utf8At(descIdx)
	if err != nil {
		return ClassFileField{}, err
	}
	fieldType, err := ParseFieldType(descStr)
	if err != nil {
		return ClassFileField{}, err
	}

	field := ClassFileField{
		Flags:          FieldAccessFlags(accessFlags),
		Name:           name,
		TypeDescriptor: fieldType,
	}

	attrCount, err := r.u2()
	if err != nil {
		return ClassFileField{}, err
	}
	for i := 0; i < int(attrCount); i++ {
		attrName, body, err := readAttribute(r, constants)
		if err != nil {
			return ClassFileField{}, err
		}
		switch attrName {
		case "Deprecated":
			field.Deprecated = true
		case "ConstantValue":
			br := newByteReader(body)
			idx, err := br.u2()
			if err != nil {
				return ClassFileField{}, err
			}
			cv, err := resolveConstantValue(constants, idx)
			if err != nil {
				return ClassFileField{}, err
			}
			field.ConstantValue = cv
		}
	}
	return field, nil
}

func resolveConstantValue(constants *ConstantPool, index uint16) (*FieldConstantValue, error) {
	entry, err := constants.Get(index)
	if err != nil {
		return nil, err
	}
	switch entry.Kind {
	case Integer:
		return &FieldConstantValue{Kind: ConstInt, IntValue: entry.IntValue}, nil
	case Float:
		return &FieldConstantValue{Kind: ConstFloat, FloatVal: entry.FloatVal}, nil
	case Long:
		return &FieldConstantValue{Kind: ConstLong, LongValue: entry.LongValue}, nil
	case Double:
		return &FieldConstantValue{Kind: ConstDouble, DoubleVal: entry.DoubleVal}, nil
	case StringReference:
		s, err := constants.TextOf(index)
		if err != nil {
			return nil, err
		}
		return &FieldConstantValue{Kind: ConstString, StrValue: s}, nil
	default:
		return nil, invalidClassDataf("constant pool entry %d is not a valid ConstantValue", index)
	}
}

func parseMethod(r *byteReader, constants *ConstantPool) (ClassFileMethod, error) {
	accessFlags, err := r.u2()
	if err != nil {
		return ClassFileMethod{}, err
	}
	nameIdx, err := r.u2()
	if err != nil {
		return ClassFileMethod{}, err
	}
	name, err := constants.Utf8At(nameIdx)
	if err != nil {
		return ClassFileMethod{}, err
	}
	descIdx, err := r.u2()
	if err != nil {
		return ClassFileMethod{}, err
	}
	descStr, err := constants.Utf8At(descIdx)
	if err != nil {
		return ClassFileMethod{}, err
	}
	parsedDesc, err := ParseMethodDescriptor(descStr)
	if err != nil {
		return ClassFileMethod{}, err
	}

	method := ClassFileMethod{
		Flags:                MethodAccessFlags(accessFlags),
		Name:                 name,
		TypeDescriptor:       descStr,
		ParsedTypeDescriptor: parsedDesc,
	}

	attrCount, err := r.u2()
	if err != nil {
		return ClassFileMethod{}, err
	}
	for i := 0; i < int(attrCount); i++ {
		attrName, body, err := readAttribute(r, constants)
		if err != nil {
			return ClassFileMethod{}, err
		}
		switch attrName {
		case "Deprecated":
			method.Deprecated = true
		case "Code":
			code, err := parseCodeAttribute(body, constants)
			if err != nil {
				return ClassFileMethod{}, err
			}
			method.Code = code
		case "Exceptions":
			br := newByteReader(body)
			count, err := br.u2()
			if err != nil {
				return ClassFileMethod{}, err
			}
			for j := 0; j < int(count); j++ {
				idx, err := br.u2()
				if err != nil {
					return ClassFileMethod{}, err
				}
				exName, err := constants.ClassName(idx)
				if err != nil {
					return ClassFileMethod{}, err
				}
				method.ThrownExceptions = append(method.ThrownExceptions, exName)
			}
		}
	}
	return method, nil
}

func parseCodeAttribute(body []byte, constants *ConstantPool) (*ClassFileMethodCode, error) {
	br := newByteReader(body)
	maxStack, err := br.u2()
	if err != nil {
		return nil, err
	}
	maxLocals, err := br.u2()
	if err != nil {
		return nil, err
	}
	codeLength, err := br.u4()
	if err != nil {
		return nil, err
	}
	code, err := br.bytes(int(codeLength))
	if err != nil {
		return nil, err
	}

	excCount, err := br.u2()
	if err != nil {
		return nil, err
	}
	excTable := make([]ExceptionTableEntry, 0, excCount)
	for i := 0; i < int(excCount); i++ {
		startPC, err := br.u2()
		if err != nil {
			return nil, err
		}
		endPC, err := br.u2()
		if err != nil {
			return nil, err
		}
		handlerPC, err := br.u2()
		if err != nil {
			return nil, err
		}
		catchIdx, err := br.u2()
		if err != nil {
			return nil, err
		}
		var catchClass *string
		if catchIdx != 0 {
			cn, err := constants.ClassName(catchIdx)
			if err != nil {
				return nil, err
			}
			catchClass = &cn
		}
		excTable = append(excTable, ExceptionTableEntry{
			StartPC: startPC, EndPC: endPC, HandlerPC: handlerPC, CatchClass: catchClass,
		})
	}

	var lineTable *LineNumberTable
	codeAttrCount, err := br.u2()
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(codeAttrCount); i++ {
		attrName, attrBody, err := readAttribute(br, constants)
		if err != nil {
			return nil, err
		}
		if attrName == "LineNumberTable" {
			lbr := newByteReader(attrBody)
			count, err := lbr.u2()
			if err != nil {
				return nil, err
			}
			entries := make([]LineNumberTableEntry, 0, count)
			for j := 0; j < int(count); j++ {
				startPC, err := lbr.u2()
				if err != nil {
					return nil, err
				}
				lineNo, err := lbr.u2()
				if err != nil {
					return nil, err
				}
				entries = append(entries, LineNumberTableEntry{StartPC: startPC, LineNumber: lineNo})
			}
			lineTable = NewLineNumberTable(entries)
		}
	}

	return &ClassFileMethodCode{
		MaxStack:        maxStack,
		MaxLocals:       maxLocals,
		Code:            code,
		ExceptionTable:  excTable,
		LineNumberTable: lineTable,
	}, nil
}
