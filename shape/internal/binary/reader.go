package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrTruncated is returned when a read runs past the end of the buffer.
var ErrTruncated = errors.New("shape: truncated")

// Reader walks a shape byte string with position tracking. Shapes are
// self-delimiting, so a reader never needs look-ahead beyond the declared
// length prefixes.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a Reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Position returns the current byte position.
func (r *Reader) Position() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Byte reads a single byte and advances the position.
func (r *Reader) Byte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, r.wrapError(ErrTruncated)
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// Bool reads a 0/1 byte.
func (r *Reader) Bool() (bool, error) {
	b, err := r.Byte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// U16 reads a little-endian uint16 (fixed 2 bytes).
func (r *Reader) U16() (uint16, error) {
	if r.pos+2 > len(r.data) {
		return 0, r.wrapError(ErrTruncated)
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

// Substr reads a length-prefixed sub-blob and returns the blob's bytes.
// The returned slice aliases the underlying buffer.
func (r *Reader) Substr() ([]byte, error) {
	n, err := r.U16()
	if err != nil {
		return nil, err
	}
	if r.pos+int(n) > len(r.data) {
		return nil, r.wrapError(ErrTruncated)
	}
	blob := r.data[r.pos : r.pos+int(n)]
	r.pos += int(n)
	return blob, nil
}

// Seek moves the position to off.
func (r *Reader) Seek(off int) error {
	if off < 0 || off > len(r.data) {
		return fmt.Errorf("seek to %d out of range (length %d)", off, len(r.data))
	}
	r.pos = off
	return nil
}

func (r *Reader) wrapError(err error) error {
	return fmt.Errorf("at position %d: %w", r.pos, err)
}
