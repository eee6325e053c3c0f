/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import (
	"github.com/cnxfgit/rjvm-learn/classpath"
	"github.com/cnxfgit/rjvm-learn/heap"
	"github.com/cnxfgit/rjvm-learn/reader"
	"github.com/cnxfgit/rjvm-learn/trace"
	"github.com/cnxfgit/rjvm-learn/verr"
)

// ClassManager owns every resolved Class for the life of the VM (an arena —
// pointers handed out remain valid until the VM itself is discarded), and
// drives on-demand loading of classes named by bytecode.
type ClassManager struct {
	classPath *classpath.ClassPath
	byName    map[string]*Class
	byID      map[heap.ClassID]*Class
	nextID    uint32
}

// NewClassManager builds an empty manager backed by cp.
func NewClassManager(cp *classpath.ClassPath) *ClassManager {
	return &ClassManager{
		classPath: cp,
		byName:    make(map[string]*Class),
		byID:      make(map[heap.ClassID]*Class),
	}
}

// GetOrResolveClass returns the already-loaded class by name, or loads it
// (and transitively its superclass and interfaces) and returns the set of
// newly-loaded classes in superclass-first order — the caller must run
// <clinit> on each of them, in that order, before using the returned class.
func (cm *ClassManager) GetOrResolveClass(name string) (*Class, []*Class, error) {
	if c, ok := cm.byName[name]; ok {
		return c, nil, nil
	}
	var toInitialize []*Class
	class, err := cm.resolve(name, &toInitialize)
	if err != nil {
		return nil, nil, err
	}
	return class, toInitialize, nil
}

// ClassByID looks up an already-resolved class by its assigned ClassID.
func (cm *ClassManager) ClassByID(id heap.ClassID) (*Class, bool) {
	c, ok := cm.byID[id]
	return c, ok
}

// ClassInfoByID satisfies heap.ClassResolver, used by the GC tracer.
func (cm *ClassManager) ClassInfoByID(id heap.ClassID) (heap.ClassInfo, bool) {
	c, ok := cm.byID[id]
	return c, ok
}

// Count reports how many classes have been resolved so far.
func (cm *ClassManager) Count() int {
	return len(cm.byName)
}

func (cm *ClassManager) resolve(name string, toInitialize *[]*Class) (*Class, error) {
	if c, ok := cm.byName[name]; ok {
		return c, nil
	}

	trace.Tracef("resolving class %s", name)
	data, found, err := cm.classPath.Resolve(name)
	if err != nil {
		return nil, verr.NewClassLoadingError(err.Error())
	}
	if !found {
		return nil, verr.NewClassNotFoundException(name)
	}

	classFile, err := reader.Parse(data)
	if err != nil {
		return nil, verr.NewClassLoadingError(err.Error())
	}

	var superclass *Class
	if classFile.Superclass != nil {
		superclass, err = cm.resolve(*classFile.Superclass, toInitialize)
		if err != nil {
			return nil, err
		}
	}

	interfaces := make([]*Class, 0, len(classFile.Interfaces))
	for _, ifaceName := range classFile.Interfaces {
		iface, err := cm.resolve(ifaceName, toInitialize)
		if err != nil {
			return nil, err
		}
		interfaces = append(interfaces, iface)
	}

	firstFieldIndex := 0
	if superclass != nil {
		firstFieldIndex = superclass.numTotalFields
	}
	numTotalFields := firstFieldIndex + len(classFile.Fields)

	id := heap.ClassID(cm.nextID)
	cm.nextID++

	class := &Class{
		ID:              id,
		Name:            name,
		SourceFile:      classFile.SourceFile,
		Constants:       classFile.Constants,
		Flags:           classFile.Flags,
		Superclass:      superclass,
		Interfaces:      interfaces,
		Fields:          classFile.Fields,
		Methods:         classFile.Methods,
		FirstFieldIndex: firstFieldIndex,
		numTotalFields:  numTotalFields,
	}

	cm.byName[name] = class
	cm.byID[id] = class
	*toInitialize = append(*toInitialize, class)

	return class, nil
}
