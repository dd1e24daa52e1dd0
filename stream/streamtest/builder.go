// Package streamtest builds serialization streams for tests.
package streamtest

import (
	"bytes"
	"encoding/binary"

	"github.com/dhamidi/serialdump/stream"
)

// Builder appends stream grammar pieces in wire order.
type Builder struct {
	buf bytes.Buffer
}

func New() *Builder {
	return &Builder{}
}

// Header writes STREAM_MAGIC and STREAM_VERSION.
func (b *Builder) Header() *Builder {
	return b.U2(stream.Magic).U2(stream.Version)
}

func (b *Builder) Byte(v ...byte) *Builder {
	b.buf.Write(v)
	return b
}

func (b *Builder) Tag(t stream.Tag) *Builder {
	return b.Byte(byte(t))
}

func (b *Builder) U2(v uint16) *Builder {
	b.buf.Write(binary.BigEndian.AppendUint16(nil, v))
	return b
}

func (b *Builder) U4(v uint32) *Builder {
	b.buf.Write(binary.BigEndian.AppendUint32(nil, v))
	return b
}

func (b *Builder) U8(v uint64) *Builder {
	b.buf.Write(binary.BigEndian.AppendUint64(nil, v))
	return b
}

// UTF writes a 2-byte length followed by the bytes of s.
func (b *Builder) UTF(s string) *Builder {
	return b.U2(uint16(len(s))).Byte([]byte(s)...)
}

func (b *Builder) String(s string) *Builder {
	return b.Tag(stream.TCString).UTF(s)
}

func (b *Builder) LongString(s string) *Builder {
	return b.Tag(stream.TCLongString).U8(uint64(len(s))).Byte([]byte(s)...)
}

func (b *Builder) Null() *Builder {
	return b.Tag(stream.TCNull)
}

func (b *Builder) Ref(h stream.Handle) *Builder {
	return b.Tag(stream.TCReference).U4(uint32(h))
}

func (b *Builder) End() *Builder {
	return b.Tag(stream.TCEndBlockData)
}

func (b *Builder) BlockData(data ...byte) *Builder {
	return b.Tag(stream.TCBlockData).Byte(byte(len(data))).Byte(data...)
}

func (b *Builder) LongBlockData(data ...byte) *Builder {
	return b.Tag(stream.TCBlockDataLong).U4(uint32(len(data))).Byte(data...)
}

// ClassDesc writes the class header and flags; a field count, field
// descriptors, the class annotation and the superclass follow.
func (b *Builder) ClassDesc(name string, suid uint64, flags stream.ClassDescFlags) *Builder {
	return b.Tag(stream.TCClassDesc).UTF(name).U8(suid).Byte(byte(flags))
}

// Fields writes the field count.
func (b *Builder) Fields(n uint16) *Builder {
	return b.U2(n)
}

func (b *Builder) Field(code stream.TypeCode, name string) *Builder {
	return b.Byte(byte(code)).UTF(name)
}

// ObjectField writes an object or array field whose class name is a new
// TC_STRING.
func (b *Builder) ObjectField(code stream.TypeCode, name, className string) *Builder {
	return b.Field(code, name).String(className)
}

func (b *Builder) Bytes() []byte {
	return bytes.Clone(b.buf.Bytes())
}
