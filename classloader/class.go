/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package classloader owns resolved classes: it turns parsed class files
// into a linked, field-indexed Class graph and drives on-demand loading
// through a classpath.ClassPath.
package classloader

import (
	"github.com/cnxfgit/rjvm-learn/heap"
	"github.com/cnxfgit/rjvm-learn/reader"
)

// Class is the resolved, heap-independent representation of a loaded class
// (spec §3): it carries its own ConstantPool and access flags, a resolved
// superclass/interface graph (by pointer, since the ClassManager is an
// arena for the VM's lifetime), and the absolute field-index range that
// instances of this class occupy within their allocation.
type Class struct {
	ID         heap.ClassID
	Name       string
	SourceFile *string
	Constants  *reader.ConstantPool
	Flags      reader.ClassAccessFlags
	Superclass *Class
	Interfaces []*Class
	Fields     []reader.ClassFileField
	Methods    []reader.ClassFileMethod

	FirstFieldIndex int
	numTotalFields  int
}

// NumTotalFields satisfies heap.ClassInfo.
func (c *Class) NumTotalFields() int { return c.numTotalFields }

// FieldSlot describes one field at its absolute allocation index.
type FieldSlot struct {
	Name           string
	Type           reader.FieldType
	Index          int
	DeclaringClass *Class
}

// AllFields returns every field visible on an instance of c, superclass
// fields first, each tagged with its absolute slot index.
func (c *Class) AllFields() []FieldSlot {
	var result []FieldSlot
	if c.Superclass != nil {
		result = append(result, c.Superclass.AllFields()...)
	}
	for i, f := range c.Fields {
		result = append(result, FieldSlot{
			Name:           f.Name,
			Type:           f.TypeDescriptor,
			Index:          c.FirstFieldIndex + i,
			DeclaringClass: c,
		})
	}
	return result
}

// ReferenceFieldIndices satisfies heap.ClassInfo: the absolute indices of
// every field whose descriptor is an object or array type, which is what
// the GC tracer needs to recurse correctly.
func (c *Class) ReferenceFieldIndices() []int {
	var indices []int
	for _, f := range c.AllFields() {
		if f.Type.IsReference() {
			indices = append(indices, f.Index)
		}
	}
	return indices
}

// IsSubclassOf is reflexive on name equality, then recurses into the
// superclass and interfaces — matching the original's subclass check used
// both for catch-table matching and instanceof-style checks.
func (c *Class) IsSubclassOf(base *Class) bool {
	if c.Name == base.Name {
		return true
	}
	if c.Superclass != nil && c.Superclass.IsSubclassOf(base) {
		return true
	}
	for _, iface := range c.Interfaces {
		if iface.IsSubclassOf(base) {
			return true
		}
	}
	return false
}

// FindField searches own fields first, then recurses into the superclass,
// returning the absolute index.
func (c *Class) FindField(name string) (FieldSlot, bool) {
	for i, f := range c.Fields {
		if f.Name == name {
			return FieldSlot{Name: f.Name, Type: f.TypeDescriptor, Index: c.FirstFieldIndex + i, DeclaringClass: c}, true
		}
	}
	if c.Superclass != nil {
		return c.Superclass.FindField(name)
	}
	return FieldSlot{}, false
}

// FieldAtIndex dispatches to the superclass when i falls below this
// class's own field range.
func (c *Class) FieldAtIndex(i int) (FieldSlot, bool) {
	if i < c.FirstFieldIndex {
		if c.Superclass != nil {
			return c.Superclass.FieldAtIndex(i)
		}
		return FieldSlot{}, false
	}
	localIndex := i - c.FirstFieldIndex
	if localIndex < 0 || localIndex >= len(c.Fields) {
		return FieldSlot{}, false
	}
	f := c.Fields[localIndex]
	return FieldSlot{Name: f.Name, Type: f.TypeDescriptor, Index: i, DeclaringClass: c}, true
}

// FindMethod searches own methods first, then the superclass, by exact
// name+descriptor match (no overload resolution beyond that, matching the
// original's simple method lookup).
func (c *Class) FindMethod(name, descriptor string) (*reader.ClassFileMethod, *Class, bool) {
	for i := range c.Methods {
		m := &c.Methods[i]
		if m.Name == name && m.TypeDescriptor == descriptor {
			return m, c, true
		}
	}
	if c.Superclass != nil {
		return c.Superclass.FindMethod(name, descriptor)
	}
	return nil, nil, false
}

// IsInterface reports the class_access_flags ACC_INTERFACE bit.
func (c *Class) IsInterface() bool {
	return c.Flags&reader.AccInterface != 0
}
