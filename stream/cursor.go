package stream

import (
	"encoding/binary"
)

// Cursor reads a byte sequence strictly front to back. It never rewinds.
type Cursor struct {
	data []byte
	pos  int
}

func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Peek returns the next byte without consuming it.
func (c *Cursor) Peek() (byte, error) {
	if c.pos >= len(c.data) {
		return 0, ErrEndOfStream
	}
	return c.data[c.pos], nil
}

// Pop consumes and returns the next byte.
func (c *Cursor) Pop() (byte, error) {
	b, err := c.Peek()
	if err != nil {
		return 0, err
	}
	c.pos++
	return b, nil
}

// Offset is the number of bytes consumed so far.
func (c *Cursor) Offset() int {
	return c.pos
}

func (c *Cursor) Len() int {
	return len(c.data) - c.pos
}

// readN pops n bytes one at a time. A short read consumes what was there.
func (c *Cursor) readN(n int) ([]byte, error) {
	buf := make([]byte, 0, min(n, c.Len()))
	for i := 0; i < n; i++ {
		b, err := c.Pop()
		if err != nil {
			return nil, err
		}
		buf = append(buf, b)
	}
	return buf, nil
}

func (c *Cursor) readU2() (uint16, []byte, error) {
	raw, err := c.readN(2)
	if err != nil {
		return 0, nil, err
	}
	return binary.BigEndian.Uint16(raw), raw, nil
}

func (c *Cursor) readU4() (uint32, []byte, error) {
	raw, err := c.readN(4)
	if err != nil {
		return 0, nil, err
	}
	return binary.BigEndian.Uint32(raw), raw, nil
}

func (c *Cursor) readU8() (uint64, []byte, error) {
	raw, err := c.readN(8)
	if err != nil {
		return 0, nil, err
	}
	return binary.BigEndian.Uint64(raw), raw, nil
}
