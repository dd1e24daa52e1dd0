package stream

import (
	"errors"
	"testing"
)

func TestCursor(t *testing.T) {
	c := NewCursor([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07})

	b, err := c.Peek()
	if err != nil || b != 0x01 {
		t.Fatalf("Peek() = %02x, %v", b, err)
	}
	if c.Offset() != 0 {
		t.Errorf("Peek() moved the cursor to %d", c.Offset())
	}

	u2, raw, err := c.readU2()
	if err != nil || u2 != 0x0102 || len(raw) != 2 {
		t.Errorf("readU2() = %04x %x %v", u2, raw, err)
	}
	u4, _, err := c.readU4()
	if err != nil || u4 != 0x03040506 {
		t.Errorf("readU4() = %08x %v", u4, err)
	}
	if c.Len() != 1 || c.Offset() != 6 {
		t.Errorf("Len() = %d, Offset() = %d, want 1 and 6", c.Len(), c.Offset())
	}

	_, _, err = c.readU2()
	if !errors.Is(err, ErrEndOfStream) {
		t.Errorf("short readU2() error = %v, want ErrEndOfStream", err)
	}
	if c.Len() != 0 {
		t.Errorf("Expected the short read to consume the tail, %d bytes left", c.Len())
	}
	if _, err := c.Pop(); !errors.Is(err, ErrEndOfStream) {
		t.Errorf("Pop() at end error = %v, want ErrEndOfStream", err)
	}
}

func TestHandleHex(t *testing.T) {
	tests := []struct {
		h    Handle
		want string
	}{
		{BaseHandle, "0x00 7e 00 00"},
		{BaseHandle + 0x1ff, "0x00 7e 01 ff"},
		{NoHandle, "0xff ff ff ff"},
	}
	for _, tt := range tests {
		if got := tt.h.String(); got != tt.want {
			t.Errorf("Handle(%d).String() = %q, want %q", int32(tt.h), got, tt.want)
		}
	}
}

func TestHandleAllocator(t *testing.T) {
	var announced []Handle
	a := newHandleAllocator(func(h Handle) { announced = append(announced, h) })
	for i := 0; i < 3; i++ {
		if h := a.allocate(); h != BaseHandle+Handle(i) {
			t.Errorf("allocate() = %s, want %s", h, BaseHandle+Handle(i))
		}
	}
	if len(announced) != 3 {
		t.Errorf("Expected 3 announcements, got %d", len(announced))
	}
}
