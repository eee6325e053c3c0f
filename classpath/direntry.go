/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classpath

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

// InvalidDirectoryError is returned by NewDirEntry when path does not exist
// or is not a directory.
type InvalidDirectoryError struct {
	Path string
}

func (e *InvalidDirectoryError) Error() string {
	return fmt.Sprintf("invalid classpath directory: %s", e.Path)
}

// DirEntry resolves classes from an exploded directory tree, mapping
// className "a/b/Foo" to "<base>/a/b/Foo.class". Every non-empty class file
// is read via a memory map (the technique saferwall-pe uses for PE images),
// and the mapped bytes are copied into a fresh slice so the mapping can be
// released before Resolve returns.
type DirEntry struct {
	baseDirectory string
}

// NewDirEntry validates that path exists and is a directory before
// returning a usable entry.
func NewDirEntry(path string) (*DirEntry, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return nil, &InvalidDirectoryError{Path: path}
	}
	return &DirEntry{baseDirectory: path}, nil
}

func (d *DirEntry) String() string {
	return fmt.Sprintf("DirEntry{%s}", d.baseDirectory)
}

// Resolve maps className to a filesystem path under the base directory and
// mmaps it if present.
func (d *DirEntry) Resolve(className string) ([]byte, bool, error) {
	candidate := filepath.Join(d.baseDirectory, filepath.FromSlash(className)+".class")
	file, err := os.Open(candidate)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "opening %s", candidate)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, false, errors.Wrapf(err, "stat %s", candidate)
	}
	if info.Size() == 0 {
		return []byte{}, true, nil
	}

	m, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, false, errors.Wrapf(err, "mmap %s", candidate)
	}
	defer m.Unmap()

	data := make([]byte, len(m))
	copy(data, m)
	return data, true, nil
}
