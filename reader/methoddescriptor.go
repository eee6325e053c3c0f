/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package reader

// MethodDescriptor is the parsed form of a method signature such as
// "(ILjava/lang/String;)V": a parameter list plus an optional return type,
// nil meaning void.
type MethodDescriptor struct {
	Parameters []FieldType
	ReturnType *FieldType
}

// ParseMethodDescriptor parses the "(params)return" grammar used for both
// method refs and NameAndType entries.
func ParseMethodDescriptor(descriptor string) (MethodDescriptor, error) {
	chars := []rune(descriptor)
	pos := 0
	if pos >= len(chars) || chars[pos] != '(' {
		return MethodDescriptor{}, invalidTypeDescriptor(descriptor)
	}
	pos++

	var params []FieldType
	for pos < len(chars) && chars[pos] != ')' {
		ft, err := parseFieldTypeFrom(descriptor, chars, &pos)
		if err != nil {
			return MethodDescriptor{}, err
		}
		params = append(params, ft)
	}
	if pos >= len(chars) || chars[pos] != ')' {
		return MethodDescriptor{}, invalidTypeDescriptor(descriptor)
	}
	pos++ // consume ')'

	if pos >= len(chars) {
		return MethodDescriptor{}, invalidTypeDescriptor(descriptor)
	}
	if chars[pos] == 'V' {
		pos++
		if pos != len(chars) {
			return MethodDescriptor{}, invalidTypeDescriptor(descriptor)
		}
		return MethodDescriptor{Parameters: params}, nil
	}

	ret, err := parseFieldTypeFrom(descriptor, chars, &pos)
	if err != nil {
		return MethodDescriptor{}, err
	}
	if pos != len(chars) {
		return MethodDescriptor{}, invalidTypeDescriptor(descriptor)
	}
	return MethodDescriptor{Parameters: params, ReturnType: &ret}, nil
}

// IsVoid reports whether the method returns no value.
func (m MethodDescriptor) IsVoid() bool {
	return m.ReturnType == nil
}

// Descriptor renders the MethodDescriptor back to its wire-format string;
// ParseMethodDescriptor(m.Descriptor()) round-trips for every m it produces.
func (m MethodDescriptor) Descriptor() string {
	s := "("
	for _, p := range m.Parameters {
		s += p.Descriptor()
	}
	s += ")"
	if m.ReturnType == nil {
		return s + "V"
	}
	return s + m.ReturnType.Descriptor()
}

// ParamSlots returns the number of local-variable slots the parameters
// occupy, counting Long and Double as two slots each — the JVM's
// local-variable-array accounting. NewCallFrame does not call it; it applies
// the same two-slot rule on its own, from the argument values' kinds.
func (m MethodDescriptor) ParamSlots() int {
	n := 0
	for _, p := range m.Parameters {
		n++
		if p.Kind == BaseKind && (p.Base == Long_ || p.Base == Double_) {
			n++
		}
	}
	return n
}
