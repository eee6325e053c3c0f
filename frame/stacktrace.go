/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package frame

import "fmt"

// StackTraceElement is one entry of a captured call stack: the
// declaring class and method of a frame, its source file (if the class
// carries one), and the source line the frame's program counter maps to
// via the method's LineNumberTable (0 if the method has none).
//
// Grounded on original_source/vm/src/call_frame.rs's
// to_stack_trace_element/get_line_number.
type StackTraceElement struct {
	ClassName  string
	MethodName string
	SourceFile *string
	LineNumber uint16
}

// String renders "class::method - file:line", dropping the "- file:line"
// suffix when no source file or no line number (0) is known, matching the rendering the
// StackTracePrinting scenario expects (spec.md §8 scenario 5).
func (e StackTraceElement) String() string {
	if e.SourceFile == nil || e.LineNumber == 0 {
		return fmt.Sprintf("%s::%s", e.ClassName, e.MethodName)
	}
	return fmt.Sprintf("%s::%s - %s:%d", e.ClassName, e.MethodName, *e.SourceFile, e.LineNumber)
}

// ToStackTraceElement captures this frame's current position as a
// StackTraceElement, resolving the source line from the method's
// LineNumberTable at the frame's current PC.
func (f *CallFrame) ToStackTraceElement() StackTraceElement {
	return StackTraceElement{
		ClassName:  f.classAndMethod.Class.Name,
		MethodName: f.classAndMethod.Method.Name,
		SourceFile: f.classAndMethod.Class.SourceFile,
		LineNumber: f.lineNumber(),
	}
}

func (f *CallFrame) lineNumber() uint16 {
	code := f.classAndMethod.Method.Code
	if code == nil || code.LineNumberTable == nil {
		return 0
	}
	return code.LineNumberTable.LookupPC(f.pc)
}
