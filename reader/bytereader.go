/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package reader

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// byteReader wraps a class-file byte slice with position tracking. The
// read-beyond-end checks and error wrapping style follow the class-file
// disassembler in the retrieval pack (google-oss-rebuild's diffr package),
// which parses the same wire format.
type byteReader struct {
	data []byte
	pos  int
}

func newByteReader(data []byte) *byteReader {
	return &byteReader{data: data}
}

func (r *byteReader) u1() (uint8, error) {
	if r.pos+1 > len(r.data) {
		return 0, errors.New("read beyond end of class file")
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

func (r *byteReader) u2() (uint16, error) {
	if r.pos+2 > len(r.data) {
		return 0, errors.New("read beyond end of class file")
	}
	v := binary.BigEndian.Uint16(r.data[r.pos : r.pos+2])
	r.pos += 2
	return v, nil
}

func (r *byteReader) u4() (uint32, error) {
	if r.pos+4 > len(r.data) {
		return 0, errors.New("read beyond end of class file")
	}
	v := binary.BigEndian.Uint32(r.data[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

func (r *byteReader) i4() (int32, error) {
	v, err := r.u4()
	return int32(v), err
}

func (r *byteReader) i8() (int64, error) {
	hi, err := r.u4()
	if err != nil {
		return 0, err
	}
	lo, err := r.u4()
	if err != nil {
		return 0, err
	}
	return int64(hi)<<32 | int64(lo), nil
}

func (r *byteReader) bytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, errors.New("read beyond end of class file")
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *byteReader) skip(n int) error {
	if n < 0 || r.pos+n > len(r.data) {
		return errors.New("skip beyond end of class file")
	}
	r.pos += n
	return nil
}

func (r *byteReader) remaining() int {
	return len(r.data) - r.pos
}
