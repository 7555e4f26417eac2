// Package binary provides low-level binary decoding for .DS_Store parsing.
package binary

import (
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnexpectedEOF is returned when a read extends past the end of the buffer.
var ErrUnexpectedEOF = errors.New("unexpected end of buffer")

// All multi-byte integers in a .DS_Store container are big-endian.
var order = binary.BigEndian

// Reader is a cursor over an immutable byte buffer.
type Reader struct {
	buf []byte
	pos int
}

// NewReader creates a reader positioned at the start of buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Pos returns the current read position.
func (r *Reader) Pos() int {
	return r.pos
}

// Remaining returns the number of bytes left after the current position.
func (r *Reader) Remaining() int {
	if r.pos >= len(r.buf) {
		return 0
	}
	return len(r.buf) - r.pos
}

// ReadBytes reads exactly n bytes from the current position.
// The returned slice is a copy and does not alias the underlying buffer.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrUnexpectedEOF, n)
	}
	if n == 0 {
		return nil, nil
	}
	if r.pos+n > len(r.buf) {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			ErrUnexpectedEOF, n, r.pos, r.Remaining())
	}
	buf := make([]byte, n)
	copy(buf, r.buf[r.pos:])
	r.pos += n
	return buf, nil
}

// ReadUint8 reads an unsigned 8-bit integer.
func (r *Reader) ReadUint8() (uint8, error) {
	buf, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadUint32 reads an unsigned 32-bit integer.
func (r *Reader) ReadUint32() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return order.Uint32(buf), nil
}

// ReadUint64 reads an unsigned 64-bit integer.
func (r *Reader) ReadUint64() (uint64, error) {
	buf, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return order.Uint64(buf), nil
}

// ReadInt32 reads a signed 32-bit integer.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadUTF16 reads n UTF-16 code units (big-endian) and decodes them into
// a string.
func (r *Reader) ReadUTF16(n int) (string, error) {
	raw, err := r.ReadBytes(2 * n)
	if err != nil {
		return "", err
	}
	dec := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	s, _, err := transform.Bytes(dec, raw)
	if err != nil {
		return "", fmt.Errorf("decoding UTF-16 string: %w", err)
	}
	return string(s), nil
}
