package binary

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrSubstrTooLarge is returned when a sub-blob's length does not fit the
// u16 length prefix.
var ErrSubstrTooLarge = errors.New("shape: substructure exceeds 65535 bytes")

// Writer provides append-only buffered writing for shape encoding.
type Writer struct {
	buf *bytes.Buffer
}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{buf: &bytes.Buffer{}}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Byte writes a single byte.
func (w *Writer) Byte(b byte) {
	w.buf.WriteByte(b)
}

// WriteBytes writes a byte slice.
func (w *Writer) WriteBytes(data []byte) {
	w.buf.Write(data)
}

// Bool writes a boolean as a single 0/1 byte.
func (w *Writer) Bool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

// U16 writes a little-endian uint16 (fixed 2 bytes).
func (w *Writer) U16(v uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	w.buf.Write(buf[:])
}

// Substr writes a length-prefixed sub-blob: the length as a little-endian
// u16 followed by exactly that many bytes. Blobs longer than 65535 bytes
// cannot be represented and are rejected with ErrSubstrTooLarge.
func (w *Writer) Substr(data []byte) error {
	if len(data) > math.MaxUint16 {
		return fmt.Errorf("%w: %d bytes", ErrSubstrTooLarge, len(data))
	}
	w.U16(uint16(len(data)))
	w.buf.Write(data)
	return nil
}
