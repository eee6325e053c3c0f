/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package classpath resolves a fully-qualified class name to the raw bytes
// of its .class file, searching an ordered list of entries exactly like the
// JVM's -cp semantics: directories and jar/zip archives are tried in order
// and the first hit wins.
package classpath

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/cnxfgit/rjvm-learn/trace"
)

// Entry is one element of a ClassPath: a directory or an archive that can be
// asked to resolve a class name to bytes.
type Entry interface {
	fmt.Stringer
	Resolve(className string) ([]byte, bool, error)
}

// ClassPath is an ordered search list of Entry values.
type ClassPath struct {
	entries []Entry
}

// New builds a ClassPath from entries, searched in the given order.
func New(entries ...Entry) *ClassPath {
	return &ClassPath{entries: entries}
}

// Add appends another entry to the end of the search order.
func (cp *ClassPath) Add(entry Entry) {
	cp.entries = append(cp.entries, entry)
}

// Resolve searches every entry in order, returning the bytes of the first
// match. A nil, false result means the class was not found anywhere on the
// path; this is not itself an error.
func (cp *ClassPath) Resolve(className string) ([]byte, bool, error) {
	for _, entry := range cp.entries {
		trace.Tracef("looking up class %s in %s", className, entry.String())
		data, found, err := entry.Resolve(className)
		if err != nil {
			return nil, false, errors.Wrapf(err, "resolving class %s in %s", className, entry.String())
		}
		if found {
			return data, true, nil
		}
	}
	return nil, false, nil
}
