// Package layout is the binary layout descriptor engine: a byte cursor
// with strict bounds accounting plus reusable codec values describing
// fixed-width fields, strings, length-prefixed sequences, alignment
// padding and fields gated by format version or target game.
//
// All integers are big-endian. Decoding has no side effect beyond cursor
// advancement; any structural problem surfaces as an error wrapping
// ErrMalformed with the offending offset.
package layout

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Cursor is a read position over an immutable byte buffer.
type Cursor struct {
	data []byte
	off  int
}

// NewCursor positions a cursor at the start of data. The buffer is
// borrowed read-only; the cursor never copies or mutates it.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Offset returns the current byte offset.
func (c *Cursor) Offset() int { return c.off }

// Remaining returns the number of bytes left after the current offset.
func (c *Cursor) Remaining() int { return len(c.data) - c.off }

// Len returns the total buffer length.
func (c *Cursor) Len() int { return len(c.data) }

// Seek repositions the cursor to an absolute offset. Formats with
// pointer-style jumps (RULE, FONT, CSNG) use this directly.
func (c *Cursor) Seek(off int) error {
	if off < 0 || off > len(c.data) {
		return fmt.Errorf("%w: seek to %d outside buffer of %d bytes", ErrMalformed, off, len(c.data))
	}
	c.off = off
	return nil
}

// Skip advances the cursor by n bytes.
func (c *Cursor) Skip(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative skip %d", ErrMalformed, n)
	}
	return c.Seek(c.off + n)
}

// AlignTo skips forward to the next multiple of n bytes measured from
// origin. A cursor already on the boundary does not move.
func (c *Cursor) AlignTo(n, origin int) error {
	if n <= 0 {
		return fmt.Errorf("%w: alignment %d", ErrMalformed, n)
	}
	rem := (c.off - origin) % n
	if rem == 0 {
		return nil
	}
	return c.Skip(n - rem)
}

// Bytes consumes and returns the next n bytes. The returned slice aliases
// the underlying buffer and must be treated as read-only.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrMalformed, n)
	}
	if c.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrMalformed, n, c.off, c.Remaining())
	}
	b := c.data[c.off : c.off+n]
	c.off += n
	return b, nil
}

func (c *Cursor) ReadU8() (uint8, error) {
	b, err := c.Bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) ReadU16() (uint16, error) {
	b, err := c.Bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (c *Cursor) ReadU32() (uint32, error) {
	b, err := c.Bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (c *Cursor) ReadU64() (uint64, error) {
	b, err := c.Bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (c *Cursor) ReadI8() (int8, error) {
	v, err := c.ReadU8()
	return int8(v), err
}

func (c *Cursor) ReadI16() (int16, error) {
	v, err := c.ReadU16()
	return int16(v), err
}

func (c *Cursor) ReadI32() (int32, error) {
	v, err := c.ReadU32()
	return int32(v), err
}

func (c *Cursor) ReadI64() (int64, error) {
	v, err := c.ReadU64()
	return int64(v), err
}

func (c *Cursor) ReadF32() (float32, error) {
	v, err := c.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadString consumes a null-terminated string.
func (c *Cursor) ReadString() (string, error) {
	i := bytes.IndexByte(c.data[c.off:], 0)
	if i < 0 {
		return "", fmt.Errorf("%w: unterminated string at offset %d", ErrMalformed, c.off)
	}
	s := string(c.data[c.off : c.off+i])
	c.off += i + 1
	return s, nil
}
