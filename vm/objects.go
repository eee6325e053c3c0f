/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package vm

import (
	"unicode/utf16"

	"github.com/cnxfgit/rjvm-learn/heap"
)

// NewJavaString materializes text as a java/lang/String instance backed by
// a char array of its UTF-16 code units, grounded on
// original_source/vm/src/java_objects_creation.rs's
// new_java_lang_string_object. Where the original writes to fixed field
// indices 0/1/6 of the JDK's own String layout, this VM's fixture classes
// carry whatever fields they declare, so the value array is written to a
// field literally named "value" when present and silently skipped
// otherwise — a String class with no such field still allocates and
// round-trips through identity/reference equality correctly.
func (vm *VM) NewJavaString(text string) (heap.Reference, error) {
	units := utf16.Encode([]rune(text))
	arrayRef, err := vm.NewArray(heap.ArrayOfBase, len(units))
	if err != nil {
		return 0, err
	}
	for i, u := range units {
		if err := vm.heap.SetElement(arrayRef, i, heap.Int(int32(u))); err != nil {
			return 0, err
		}
	}

	class, err := vm.GetOrResolveClass(vm.activeStack, "java/lang/String")
	if err != nil {
		return 0, err
	}
	strRef, err := vm.NewObject(class)
	if err != nil {
		return 0, err
	}
	if slot, ok := class.FindField("value"); ok {
		vm.heap.SetField(strRef, slot.Index, heap.Object(arrayRef))
	}
	return strRef, nil
}

// NewJavaClassObject builds a java/lang/Class instance describing
// className, grounded on java_objects_creation.rs's
// new_java_lang_class_object: a Class instance whose "name" field (when
// the loaded Class fixture declares one) holds the class's own name as a
// java/lang/String.
func (vm *VM) NewJavaClassObject(className string) (heap.Reference, error) {
	class, err := vm.GetOrResolveClass(vm.activeStack, "java/lang/Class")
	if err != nil {
		return 0, err
	}
	classRef, err := vm.NewObject(class)
	if err != nil {
		return 0, err
	}
	nameRef, err := vm.NewJavaString(className)
	if err != nil {
		return 0, err
	}
	if slot, ok := class.FindField("name"); ok {
		vm.heap.SetField(classRef, slot.Index, heap.Object(nameRef))
	}
	return classRef, nil
}
