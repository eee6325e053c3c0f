/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classpath

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// ArchiveEntry resolves classes out of a jar/zip file. Jar files are zip
// archives, so stdlib archive/zip — the same package the in-pack class-file
// disassembler uses for its jar handling — is sufficient; no separate jar
// format support is needed.
type ArchiveEntry struct {
	fileName string
	reader   *zip.ReadCloser
}

// NewArchiveEntry opens path as a zip archive.
func NewArchiveEntry(path string) (*ArchiveEntry, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening archive %s", path)
	}
	return &ArchiveEntry{fileName: path, reader: r}, nil
}

func (a *ArchiveEntry) String() string {
	return fmt.Sprintf("ArchiveEntry{%s}", a.fileName)
}

// Close releases the underlying zip reader.
func (a *ArchiveEntry) Close() error {
	return a.reader.Close()
}

// Resolve looks up className + ".class" as an archive member.
func (a *ArchiveEntry) Resolve(className string) ([]byte, bool, error) {
	entryName := className + ".class"
	for _, f := range a.reader.File {
		if f.Name != entryName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, false, errors.Wrapf(err, "opening archive member %s", entryName)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, false, errors.Wrapf(err, "reading archive member %s", entryName)
		}
		return data, true, nil
	}
	return nil, false, nil
}

// MainClass reads the Main-Class attribute from META-INF/MANIFEST.MF,
// reporting false when the archive has no manifest or the manifest has no
// Main-Class line. The run command does not call it: it always takes the
// main class as an argument.
func (a *ArchiveEntry) MainClass() (string, bool, error) {
	for _, f := range a.reader.File {
		if f.Name != "META-INF/MANIFEST.MF" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", false, errors.Wrap(err, "opening manifest")
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return "", false, errors.Wrap(err, "reading manifest")
		}
		return parseMainClassAttribute(string(data))
	}
	return "", false, nil
}

func parseMainClassAttribute(manifest string) (string, bool, error) {
	const prefix = "Main-Class:"
	for _, line := range strings.Split(manifest, "\n") {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(line[len(prefix):]), true, nil
		}
	}
	return "", false, nil
}
