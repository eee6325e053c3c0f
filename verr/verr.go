/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package verr is the host-level error taxonomy shared by the classloader,
// frame, and vm packages: the conditions a bytecode boundary can raise that
// are not themselves guest-visible Java exceptions (those are represented
// separately as heap throwables carried by JavaException).
package verr

import "fmt"

type Kind int

const (
	ClassLoadingError Kind = iota
	NullPointerException
	ClassNotFoundException
	MethodNotFoundException
	FieldNotFoundException
	ValidationException
	ArithmeticException
	NotImplemented
	ArrayIndexOutOfBoundsException
	ClassCastException
)

// VmError is returned for every host-level failure condition listed in
// spec §7. It does not participate in guest catch-handler search — see
// frame.JavaException for the guest-visible counterpart.
type VmError struct {
	Kind    Kind
	Class   string
	Method  string
	Descr   string
	Field   string
	Message string
}

func (e *VmError) Error() string {
	switch e.Kind {
	case ClassLoadingError:
		return fmt.Sprintf("unexpected error loading class: %s", e.Message)
	case NullPointerException:
		return "null pointer exception"
	case ClassNotFoundException:
		return fmt.Sprintf("class not found: %s", e.Class)
	case MethodNotFoundException:
		return fmt.Sprintf("method not found: %s.%s#%s", e.Class, e.Method, e.Descr)
	case FieldNotFoundException:
		return fmt.Sprintf("field not found: %s.%s", e.Class, e.Field)
	case ValidationException:
		return "validation exception - invalid class file"
	case ArithmeticException:
		return "arithmetic exception"
	case NotImplemented:
		return "not yet implemented"
	case ArrayIndexOutOfBoundsException:
		return "array index out of bounds"
	case ClassCastException:
		return "class cast exception"
	default:
		return "unknown vm error"
	}
}

func NewClassLoadingError(message string) error {
	return &VmError{Kind: ClassLoadingError, Message: message}
}

func NewNullPointerException() error {
	return &VmError{Kind: NullPointerException}
}

func NewClassNotFoundException(class string) error {
	return &VmError{Kind: ClassNotFoundException, Class: class}
}

func NewMethodNotFoundException(class, method, descriptor string) error {
	return &VmError{Kind: MethodNotFoundException, Class: class, Method: method, Descr: descriptor}
}

func NewFieldNotFoundException(class, field string) error {
	return &VmError{Kind: FieldNotFoundException, Class: class, Field: field}
}

func NewValidationException() error {
	return &VmError{Kind: ValidationException}
}

func NewArithmeticException() error {
	return &VmError{Kind: ArithmeticException}
}

func NewNotImplemented() error {
	return &VmError{Kind: NotImplemented}
}

func NewArrayIndexOutOfBoundsException() error {
	return &VmError{Kind: ArrayIndexOutOfBoundsException}
}

func NewClassCastException() error {
	return &VmError{Kind: ClassCastException}
}

// Is reports whether err is a *VmError of the given kind.
func Is(err error, kind Kind) bool {
	ve, ok := err.(*VmError)
	return ok && ve.Kind == kind
}
