package stream

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("serialdump.stream")

// Renderer receives the trace of a parse. Indent and Dedent bracket every
// nested production; Err reports a broken bracketing invariant.
type Renderer interface {
	Print(line string)
	Indent()
	Dedent()
	Err() error
}

type Option func(*options)

type options struct {
	renderer Renderer
	logger   commonlog.Logger
}

// WithRenderer sends the trace to r. Without it the trace is discarded.
func WithRenderer(r Renderer) Option {
	return func(o *options) {
		o.renderer = r
	}
}

// WithLogger replaces the package logger for one parse.
func WithLogger(l commonlog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Parse decodes a complete serialization stream. The returned Stream holds
// whatever was decoded before a failure, so callers can inspect partial
// results alongside the error.
func Parse(data []byte, opts ...Option) (*Stream, error) {
	o := options{renderer: &discard{}, logger: log}
	for _, opt := range opts {
		opt(&o)
	}

	s := newSession(data, o)
	st, err := s.readStream()
	if err != nil {
		return st, err
	}
	if err := o.renderer.Err(); err != nil {
		return st, fmt.Errorf("render trace: %w", err)
	}
	return st, nil
}

// session holds the state of a single parse. Nothing is shared between
// sessions.
type session struct {
	cur     *Cursor
	out     Renderer
	log     commonlog.Logger
	handles *handleAllocator
	table   *Table
	strings map[Handle]string
}

func newSession(data []byte, o options) *session {
	s := &session{
		cur:     NewCursor(data),
		out:     o.renderer,
		log:     o.logger,
		table:   NewTable(),
		strings: make(map[Handle]string),
	}
	s.handles = newHandleAllocator(func(h Handle) {
		s.printf("newHandle 0x%s", h.Hex())
	})
	return s
}

func (s *session) printf(format string, args ...any) {
	s.out.Print(fmt.Sprintf(format, args...))
}

func (s *session) indent() { s.out.Indent() }
func (s *session) dedent() { s.out.Dedent() }

func (s *session) newHandle() Handle {
	h := s.handles.allocate()
	s.log.Debugf("assigned handle %s", h)
	return h
}

// fail wraps a raw error in a ParseError located at the cursor. Errors that
// already carry a location pass through untouched.
func (s *session) fail(production string, err error) error {
	return s.failAt(s.cur.Offset(), production, err)
}

// failAt is fail for errors about bytes that were already consumed; offset
// is where the offending bytes start.
func (s *session) failAt(offset int, production string, err error) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		return err
	}
	s.log.Debugf("%s failed at offset %d: %s", production, offset, err)
	return &ParseError{Offset: offset, Production: production, Err: err}
}

// expect consumes a tag byte, traces it and checks it against want.
func (s *session) expect(want Tag) error {
	start := s.cur.Offset()
	b, err := s.cur.Pop()
	if err != nil {
		return s.fail(want.String(), err)
	}
	s.printf("%s - 0x%02x", want, b)
	if Tag(b) != want {
		return s.failAt(start, want.String(), tagError(want, b))
	}
	return nil
}

func (s *session) peekTag(production string) (Tag, error) {
	b, err := s.cur.Peek()
	if err != nil {
		return 0, s.fail(production, err)
	}
	return Tag(b), nil
}

func (s *session) readStream() (*Stream, error) {
	st := &Stream{Classes: s.table}

	b, err := s.cur.Peek()
	if err != nil {
		return st, s.fail("stream header", err)
	}
	if b != 0xAC {
		s.cur.Pop()
		packet := RMIPacketType(b)
		st.RMIPacket = &packet
		if packet.IsKnown() {
			s.printf("RMI %s - 0x%02x", packet, b)
		} else {
			s.printf("Unknown RMI packet type - 0x%02x", b)
			s.log.Warningf("unknown RMI packet type 0x%02x", b)
		}
	}

	start := s.cur.Offset()
	magic, raw, err := s.cur.readU2()
	if err != nil {
		return st, s.fail("STREAM_MAGIC", err)
	}
	st.Magic = magic
	s.printf("STREAM_MAGIC - 0x%s", hexBytes(raw))
	if magic != Magic {
		s.printf("Invalid STREAM_MAGIC, should be ac ed")
		return st, s.failAt(start, "STREAM_MAGIC", fmt.Errorf("%w: 0x%04x", ErrInvalidStreamMagic, magic))
	}

	version, raw, err := s.cur.readU2()
	if err != nil {
		return st, s.fail("STREAM_VERSION", err)
	}
	st.Version = version
	s.printf("STREAM_VERSION - 0x%s", hexBytes(raw))
	if version != Version {
		s.printf("Invalid STREAM_VERSION, should be 00 05")
		s.log.Warningf("unexpected stream version 0x%04x", version)
	}

	s.printf("Contents")
	s.indent()
	for s.cur.Len() > 0 {
		e, err := s.readContentElement()
		if err != nil {
			return st, err
		}
		st.Contents = append(st.Contents, e)
	}
	s.dedent()

	return st, nil
}

func (s *session) readContentElement() (Element, error) {
	tag, err := s.peekTag("content")
	if err != nil {
		return nil, err
	}
	s.log.Debugf("content element %s at offset %d", tag, s.cur.Offset())

	switch tag {
	case TCObject:
		return s.readNewObject()
	case TCClass:
		return s.readNewClass()
	case TCArray:
		return s.readNewArray()
	case TCString, TCLongString:
		e, _, err := s.readNewString()
		return e, err
	case TCEnum:
		return s.readNewEnum()
	case TCClassDesc, TCProxyClassDesc:
		e, _, err := s.readNewClassDesc()
		return e, err
	case TCReference:
		return s.readPrevObject()
	case TCNull:
		return s.readNull()
	case TCBlockData:
		return s.readBlockData()
	case TCBlockDataLong:
		return s.readLongBlockData()
	default:
		return nil, s.fail("content", fmt.Errorf("%w: 0x%02x (%s)", ErrUnsupportedOrIllegalTag, byte(tag), tag))
	}
}

// TC_ENUM classDesc newHandle enumConstantName
func (s *session) readNewEnum() (Element, error) {
	if err := s.expect(TCEnum); err != nil {
		return nil, err
	}
	s.indent()

	cd, _, err := s.readClassDesc()
	if err != nil {
		return nil, err
	}
	e := &Enum{ClassDesc: cd, Handle: s.newHandle()}

	e.Constant, _, err = s.readNewString()
	if err != nil {
		return nil, err
	}

	s.dedent()
	return e, nil
}

// TC_OBJECT classDesc newHandle classdata[]
func (s *session) readNewObject() (Element, error) {
	if err := s.expect(TCObject); err != nil {
		return nil, err
	}
	s.indent()

	cd, desc, err := s.readClassDesc()
	if err != nil {
		return nil, err
	}
	obj := &Object{ClassDesc: cd, Handle: s.newHandle()}

	obj.ClassData, err = s.readClassData(desc)
	if err != nil {
		return nil, err
	}

	s.dedent()
	return obj, nil
}

// readClassDesc reads the classDesc production: a new descriptor, a null,
// or a reference to a descriptor recorded earlier.
func (s *session) readClassDesc() (Element, Descriptor, error) {
	tag, err := s.peekTag("classDesc")
	if err != nil {
		return nil, Descriptor{}, err
	}

	switch tag {
	case TCClassDesc, TCProxyClassDesc:
		return s.readNewClassDesc()
	case TCNull:
		e, err := s.readNull()
		return e, Descriptor{}, err
	case TCReference:
		start := s.cur.Offset()
		h, err := s.readReference()
		if err != nil {
			return nil, Descriptor{}, err
		}
		desc, err := s.table.Resolve(h)
		if err != nil {
			// Point at the handle value, not the TC_REFERENCE tag.
			return nil, Descriptor{}, s.failAt(start+1, "classDesc", err)
		}
		s.log.Debugf("classDesc reference %s resolved to %s", h, desc.Name())
		return &Reference{Handle: h}, desc, nil
	default:
		return nil, Descriptor{}, s.fail("classDesc", fmt.Errorf("%w: illegal classDesc type 0x%02x", ErrMalformedTag, byte(tag)))
	}
}

func (s *session) readNewClassDesc() (Element, Descriptor, error) {
	tag, err := s.peekTag("newClassDesc")
	if err != nil {
		return nil, Descriptor{}, err
	}

	var e Element
	var desc Descriptor
	switch tag {
	case TCClassDesc:
		e, desc, err = s.readTCClassDesc()
	case TCProxyClassDesc:
		e, desc, err = s.readTCProxyClassDesc()
	default:
		return nil, Descriptor{}, s.fail("newClassDesc", fmt.Errorf("%w: illegal newClassDesc type 0x%02x", ErrMalformedTag, byte(tag)))
	}
	if err != nil {
		return nil, Descriptor{}, err
	}

	s.table.Record(desc)
	return e, desc, nil
}

// TC_CLASSDESC className serialVersionUID newHandle classDescInfo
func (s *session) readTCClassDesc() (Element, Descriptor, error) {
	if err := s.expect(TCClassDesc); err != nil {
		return nil, Descriptor{}, err
	}
	s.indent()

	s.printf("className")
	s.indent()
	name, _, err := s.readUtf()
	if err != nil {
		return nil, Descriptor{}, err
	}
	s.dedent()
	ci, desc := s.table.NewClass(name)

	suid, raw, err := s.cur.readU8()
	if err != nil {
		return nil, Descriptor{}, s.fail("serialVersionUID", err)
	}
	s.printf("serialVersionUID - 0x%s", hexBytes(raw))
	ci.SerialVersionUID = int64(suid)
	ci.Handle = s.newHandle()

	e := &ClassDesc{Handle: ci.Handle, Name: name, SerialVersionUID: ci.SerialVersionUID}
	e.Annotations, e.Super, err = s.readClassDescInfo(ci, desc)
	if err != nil {
		return nil, Descriptor{}, err
	}
	e.Flags = ci.Flags
	e.Fields = ci.Fields

	s.dedent()
	return e, desc, nil
}

// TC_PROXYCLASSDESC newHandle proxyClassDescInfo
func (s *session) readTCProxyClassDesc() (Element, Descriptor, error) {
	if err := s.expect(TCProxyClassDesc); err != nil {
		return nil, Descriptor{}, err
	}
	s.indent()

	ci, desc := s.table.NewClass(ProxyClassName)
	ci.Handle = s.newHandle()
	e := &ProxyClassDesc{Handle: ci.Handle}

	count, raw, err := s.cur.readU4()
	if err != nil {
		return nil, Descriptor{}, s.fail("proxy interface count", err)
	}
	n := int32(count)
	s.printf("Interface count - %d - 0x%s", n, hexBytes(raw))

	s.printf("proxyInterfaceNames")
	s.indent()
	for i := int32(0); i < n; i++ {
		s.printf("%d:", i)
		s.indent()
		name, _, err := s.readUtf()
		if err != nil {
			return nil, Descriptor{}, err
		}
		e.Interfaces = append(e.Interfaces, name)
		s.dedent()
	}
	s.dedent()

	e.Annotations, err = s.readAnnotation("classAnnotations")
	if err != nil {
		return nil, Descriptor{}, err
	}

	var super Descriptor
	e.Super, super, err = s.readSuperClassDesc()
	if err != nil {
		return nil, Descriptor{}, err
	}
	s.table.SetSuper(desc, super)

	s.dedent()
	return e, desc, nil
}

// classDescFlags fields classAnnotation superClassDesc
func (s *session) readClassDescInfo(ci *ClassInfo, desc Descriptor) ([]Element, Element, error) {
	start := s.cur.Offset()
	b, err := s.cur.Pop()
	if err != nil {
		return nil, nil, s.fail("classDescFlags", err)
	}
	flags := ClassDescFlags(b)
	s.printf("classDescFlags - 0x%02x - %s", b, strings.Join(flags.Names(), " | "))
	ci.Flags = flags
	if err := flags.Validate(); err != nil {
		return nil, nil, s.failAt(start, "classDescFlags", err)
	}

	if err := s.readFields(ci); err != nil {
		return nil, nil, err
	}

	annotations, err := s.readAnnotation("classAnnotations")
	if err != nil {
		return nil, nil, err
	}

	superElem, super, err := s.readSuperClassDesc()
	if err != nil {
		return nil, nil, err
	}
	s.table.SetSuper(desc, super)

	return annotations, superElem, nil
}

// readAnnotation reads content elements up to and including the
// terminating TC_ENDBLOCKDATA.
func (s *session) readAnnotation(label string) ([]Element, error) {
	s.printf("%s", label)
	s.indent()

	var contents []Element
	for {
		tag, err := s.peekTag(label)
		if err != nil {
			return nil, err
		}
		if tag == TCEndBlockData {
			break
		}
		e, err := s.readContentElement()
		if err != nil {
			return nil, err
		}
		contents = append(contents, e)
	}

	if err := s.expect(TCEndBlockData); err != nil {
		return nil, err
	}
	s.dedent()
	return contents, nil
}

func (s *session) readSuperClassDesc() (Element, Descriptor, error) {
	s.printf("superClassDesc")
	s.indent()
	e, desc, err := s.readClassDesc()
	if err != nil {
		return nil, Descriptor{}, err
	}
	s.dedent()
	return e, desc, nil
}

// (short)count fieldDesc[count]
func (s *session) readFields(ci *ClassInfo) error {
	count, raw, err := s.cur.readU2()
	if err != nil {
		return s.fail("fieldCount", err)
	}
	n := int16(count)
	s.printf("fieldCount - %d - 0x%s", n, hexBytes(raw))

	if n <= 0 {
		return nil
	}
	s.printf("Fields")
	s.indent()
	for i := int16(0); i < n; i++ {
		s.printf("%d:", i)
		s.indent()
		f, err := s.readFieldDesc()
		if err != nil {
			return err
		}
		ci.AddField(f)
		s.dedent()
	}
	s.dedent()
	return nil
}

// prim_typecode fieldName | obj_typecode fieldName className1
func (s *session) readFieldDesc() (FieldInfo, error) {
	start := s.cur.Offset()
	b, err := s.cur.Pop()
	if err != nil {
		return FieldInfo{}, s.fail("fieldDesc", err)
	}
	code := TypeCode(b)
	if !code.IsValid() {
		return FieldInfo{}, s.failAt(start, "fieldDesc", fmt.Errorf("%w: '%s' (0x%02x)", ErrIllegalFieldTypeCode, printableRune(rune(b)), b))
	}
	s.printf("%s - %c - 0x%02x", code, b, b)
	f := FieldInfo{Type: code}

	s.printf("fieldName")
	s.indent()
	f.Name, _, err = s.readUtf()
	if err != nil {
		return FieldInfo{}, err
	}
	s.dedent()

	if code.IsReference() {
		s.printf("className1")
		s.indent()
		_, f.ClassName, err = s.readNewString()
		if err != nil {
			return FieldInfo{}, err
		}
		s.dedent()
	}
	return f, nil
}

// readClassData reads the state of every class in the chain, root first.
func (s *session) readClassData(desc Descriptor) ([]ClassData, error) {
	s.printf("classdata")
	s.indent()

	if desc.IsNull() {
		s.printf("N/A")
		s.dedent()
		return nil, nil
	}

	classes := desc.Classes()
	data := make([]ClassData, 0, len(classes))
	for i := len(classes) - 1; i >= 0; i-- {
		ci := classes[i]
		cd := ClassData{Class: ci.Name}

		s.printf("%s", printable(ci.Name))
		s.indent()

		if ci.Flags.IsSerializable() {
			s.printf("values")
			s.indent()
			for _, f := range ci.Fields {
				s.printf("%s", printable(f.Name))
				s.indent()
				v, err := s.readFieldValue(f.Type)
				if err != nil {
					return nil, err
				}
				cd.Values = append(cd.Values, FieldValue{Name: f.Name, Value: v})
				s.dedent()
			}
			s.dedent()
		}

		hasBlockData := ci.Flags.IsSerializable() && ci.Flags.IsWriteMethod()
		if ci.Flags.IsExternalizable() {
			if !ci.Flags.IsBlockData() {
				s.printf("Unable to parse externalContents for protocol version 1.")
				return nil, s.fail("externalContents", fmt.Errorf("%w: %s", ErrUnsupportedExternalForm, ci.Name))
			}
			hasBlockData = true
		}

		if hasBlockData {
			var err error
			cd.Annotations, err = s.readAnnotation("objectAnnotation")
			if err != nil {
				return nil, err
			}
		}

		s.dedent()
		data = append(data, cd)
	}

	s.dedent()
	return data, nil
}

// readFieldValue reads a single value of the given type code.
func (s *session) readFieldValue(code TypeCode) (Value, error) {
	v := Value{Type: code}

	switch code {
	case TypeByte:
		b, err := s.cur.Pop()
		if err != nil {
			return v, s.fail("byte value", err)
		}
		if b >= 0x20 && b <= 0x7e {
			s.printf("(byte)%d (ASCII: %c) - 0x%02x", int8(b), b, b)
		} else {
			s.printf("(byte)%d - 0x%02x", int8(b), b)
		}
		v.Data = int8(b)
	case TypeChar:
		c, raw, err := s.cur.readU2()
		if err != nil {
			return v, s.fail("char value", err)
		}
		s.printf("(char)%s - 0x%s", printableRune(rune(c)), hexBytes(raw))
		v.Data = c
	case TypeDouble:
		bits, raw, err := s.cur.readU8()
		if err != nil {
			return v, s.fail("double value", err)
		}
		d := math.Float64frombits(bits)
		s.printf("(double)%s - 0x%s", strconv.FormatFloat(d, 'g', -1, 64), hexBytes(raw))
		v.Data = d
	case TypeFloat:
		bits, raw, err := s.cur.readU4()
		if err != nil {
			return v, s.fail("float value", err)
		}
		f := math.Float32frombits(bits)
		s.printf("(float)%s - 0x%s", strconv.FormatFloat(float64(f), 'g', -1, 32), hexBytes(raw))
		v.Data = f
	case TypeInt:
		i, raw, err := s.cur.readU4()
		if err != nil {
			return v, s.fail("int value", err)
		}
		s.printf("(int)%d - 0x%s", int32(i), hexBytes(raw))
		v.Data = int32(i)
	case TypeLong:
		l, raw, err := s.cur.readU8()
		if err != nil {
			return v, s.fail("long value", err)
		}
		s.printf("(long)%d - 0x%s", int64(l), hexBytes(raw))
		v.Data = int64(l)
	case TypeShort:
		sh, raw, err := s.cur.readU2()
		if err != nil {
			return v, s.fail("short value", err)
		}
		s.printf("(short)%d - 0x%s", int16(sh), hexBytes(raw))
		v.Data = int16(sh)
	case TypeBoolean:
		b, err := s.cur.Pop()
		if err != nil {
			return v, s.fail("boolean value", err)
		}
		s.printf("(boolean)%t - 0x%02x", b != 0, b)
		v.Data = b != 0
	case TypeArray:
		e, err := s.readArrayField()
		if err != nil {
			return v, err
		}
		v.Data = e
	case TypeObject:
		e, err := s.readObjectField()
		if err != nil {
			return v, err
		}
		v.Data = e
	default:
		return v, s.fail("field value", fmt.Errorf("%w: '%s' (0x%02x)", ErrIllegalFieldTypeCode, printableRune(rune(code)), byte(code)))
	}
	return v, nil
}

func (s *session) readArrayField() (Element, error) {
	s.printf("(array)")
	s.indent()

	tag, err := s.peekTag("array value")
	if err != nil {
		return nil, err
	}

	var e Element
	switch tag {
	case TCNull:
		e, err = s.readNull()
	case TCArray:
		e, err = s.readNewArray()
	case TCReference:
		e, err = s.readPrevObject()
	default:
		return nil, s.fail("array value", fmt.Errorf("%w: unexpected array field value type 0x%02x", ErrIllegalFieldValue, byte(tag)))
	}
	if err != nil {
		return nil, err
	}

	s.dedent()
	return e, nil
}

func (s *session) readObjectField() (Element, error) {
	s.printf("(object)")
	s.indent()

	tag, err := s.peekTag("object value")
	if err != nil {
		return nil, err
	}

	var e Element
	switch tag {
	case TCObject:
		e, err = s.readNewObject()
	case TCReference:
		e, err = s.readPrevObject()
	case TCNull:
		e, err = s.readNull()
	case TCString:
		e, err = s.readTCString()
	case TCClass:
		e, err = s.readNewClass()
	case TCArray:
		e, err = s.readNewArray()
	case TCEnum:
		e, err = s.readNewEnum()
	default:
		return nil, s.fail("object value", fmt.Errorf("%w: unexpected identifier for object field value 0x%02x", ErrIllegalFieldValue, byte(tag)))
	}
	if err != nil {
		return nil, err
	}

	s.dedent()
	return e, nil
}

// TC_ARRAY classDesc newHandle (int)size values[size]
func (s *session) readNewArray() (Element, error) {
	if err := s.expect(TCArray); err != nil {
		return nil, err
	}
	s.indent()

	start := s.cur.Offset()
	cd, desc, err := s.readClassDesc()
	if err != nil {
		return nil, err
	}
	if n := desc.Len(); n != 1 {
		return nil, s.failAt(start, "TC_ARRAY", fmt.Errorf("%w: class description made up of %d classes", ErrIllegalArrayClassDesc, n))
	}
	name := desc.Name()
	if len(name) < 2 || name[0] != '[' {
		return nil, s.failAt(start, "TC_ARRAY", fmt.Errorf("%w: class name %q does not begin with '['", ErrIllegalArrayClassDesc, name))
	}
	arr := &Array{ClassDesc: cd, Handle: s.newHandle()}

	size, raw, err := s.cur.readU4()
	if err != nil {
		return nil, s.fail("array size", err)
	}
	n := int32(size)
	s.printf("Array size - %d - 0x%s", n, hexBytes(raw))

	elemType := TypeCode(name[1])
	s.printf("Values")
	s.indent()
	for i := int32(0); i < n; i++ {
		s.printf("Index %d:", i)
		s.indent()
		v, err := s.readFieldValue(elemType)
		if err != nil {
			return nil, err
		}
		arr.Values = append(arr.Values, v)
		s.dedent()
	}
	s.dedent()

	s.dedent()
	return arr, nil
}

// TC_CLASS classDesc newHandle
func (s *session) readNewClass() (Element, error) {
	if err := s.expect(TCClass); err != nil {
		return nil, err
	}
	s.indent()

	cd, _, err := s.readClassDesc()
	if err != nil {
		return nil, err
	}

	s.dedent()
	return &Class{ClassDesc: cd, Handle: s.newHandle()}, nil
}

func (s *session) readPrevObject() (Element, error) {
	h, err := s.readReference()
	if err != nil {
		return nil, err
	}
	return &Reference{Handle: h}, nil
}

// TC_REFERENCE (int)handle
func (s *session) readReference() (Handle, error) {
	if err := s.expect(TCReference); err != nil {
		return 0, err
	}
	s.indent()

	v, raw, err := s.cur.readU4()
	if err != nil {
		return 0, s.fail("TC_REFERENCE", err)
	}
	h := Handle(int32(v))
	s.printf("Handle - %d - 0x%s", int32(v), hexBytes(raw))

	s.dedent()
	return h, nil
}

func (s *session) readNull() (Element, error) {
	if err := s.expect(TCNull); err != nil {
		return nil, err
	}
	return &Null{}, nil
}

// TC_BLOCKDATA (unsigned byte)size contents
func (s *session) readBlockData() (Element, error) {
	if err := s.expect(TCBlockData); err != nil {
		return nil, err
	}
	s.indent()

	size, err := s.cur.Pop()
	if err != nil {
		return nil, s.fail("TC_BLOCKDATA", err)
	}
	s.printf("Length - %d - 0x%02x", size, size)

	data, err := s.cur.readN(int(size))
	if err != nil {
		return nil, s.fail("TC_BLOCKDATA", err)
	}
	s.printf("Contents - 0x%s", hex.EncodeToString(data))

	s.dedent()
	return &BlockData{Data: data}, nil
}

// TC_BLOCKDATALONG (int)size contents
func (s *session) readLongBlockData() (Element, error) {
	if err := s.expect(TCBlockDataLong); err != nil {
		return nil, err
	}
	s.indent()

	size, raw, err := s.cur.readU4()
	if err != nil {
		return nil, s.fail("TC_BLOCKDATALONG", err)
	}
	n := int32(size)
	s.printf("Length - %d - 0x%s", n, hexBytes(raw))

	data, err := s.cur.readN(int(max(n, 0)))
	if err != nil {
		return nil, s.fail("TC_BLOCKDATALONG", err)
	}
	s.printf("Contents - 0x%s", hex.EncodeToString(data))

	s.dedent()
	return &BlockData{Data: data, Long: true}, nil
}

// readNewString reads a TC_STRING, a TC_LONGSTRING or a reference to an
// earlier string, returning the element and the string value.
func (s *session) readNewString() (Element, string, error) {
	tag, err := s.peekTag("newString")
	if err != nil {
		return nil, "", err
	}

	switch tag {
	case TCString:
		e, err := s.readTCString()
		if err != nil {
			return nil, "", err
		}
		return e, e.Value, nil
	case TCLongString:
		e, err := s.readTCLongString()
		if err != nil {
			return nil, "", err
		}
		return e, e.Value, nil
	case TCReference:
		h, err := s.readReference()
		if err != nil {
			return nil, "", err
		}
		value, ok := s.strings[h]
		if !ok {
			value = "[TC_REF]"
		}
		return &Reference{Handle: h}, value, nil
	default:
		return nil, "", s.fail("newString", fmt.Errorf("%w: illegal newString type 0x%02x", ErrMalformedTag, byte(tag)))
	}
}

// TC_STRING newHandle utf
func (s *session) readTCString() (*String, error) {
	if err := s.expect(TCString); err != nil {
		return nil, err
	}
	s.indent()

	h := s.newHandle()
	value, raw, err := s.readUtf()
	if err != nil {
		return nil, err
	}
	s.strings[h] = value

	s.dedent()
	return &String{Handle: h, Value: value, Raw: raw}, nil
}

// TC_LONGSTRING newHandle long-utf
func (s *session) readTCLongString() (*String, error) {
	if err := s.expect(TCLongString); err != nil {
		return nil, err
	}
	s.indent()

	h := s.newHandle()
	value, raw, err := s.readLongUtf()
	if err != nil {
		return nil, err
	}
	s.strings[h] = value

	s.dedent()
	return &String{Handle: h, Value: value, Raw: raw, Long: true}, nil
}

// (short)length contents
func (s *session) readUtf() (string, []byte, error) {
	length, raw, err := s.cur.readU2()
	if err != nil {
		return "", nil, s.fail("utf length", err)
	}
	s.printf("Length - %d - 0x%s", length, hexBytes(raw))

	return s.readChars(int(length))
}

// (long)length contents
func (s *session) readLongUtf() (string, []byte, error) {
	length, raw, err := s.cur.readU8()
	if err != nil {
		return "", nil, s.fail("long utf length", err)
	}
	s.printf("Length - %d - 0x%s", int64(length), hexBytes(raw))

	if length > uint64(s.cur.Len()) {
		return "", nil, s.fail("long utf", ErrEndOfStream)
	}
	return s.readChars(int(length))
}

func (s *session) readChars(n int) (string, []byte, error) {
	data, err := s.cur.readN(n)
	if err != nil {
		return "", nil, s.fail("utf", err)
	}
	value := decodeChars(data)
	s.printf("Value - %s - 0x%s", printable(value), hex.EncodeToString(data))
	return value, data, nil
}

// decodeChars maps each byte to one character. Multi-byte sequences are
// deliberately not decoded so the rendering stays aligned with the bytes.
func decodeChars(data []byte) string {
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}

// printable replaces control characters so a value never spans lines.
func printable(str string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return '.'
		}
		return r
	}, str)
}

func printableRune(r rune) string {
	return printable(string(r))
}

func hexBytes(data []byte) string {
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = fmt.Sprintf("%02x", b)
	}
	return strings.Join(parts, " ")
}

// discard tracks indentation without producing output.
type discard struct {
	depth int
	err   error
}

func (d *discard) Print(string) {}

func (d *discard) Indent() { d.depth++ }

func (d *discard) Dedent() {
	if d.depth == 0 {
		if d.err == nil {
			d.err = ErrIndentationUnderflow
		}
		return
	}
	d.depth--
}

func (d *discard) Err() error { return d.err }
