package stream

// Stream is the decoded shape of one serialization stream.
type Stream struct {
	// RMIPacket is the leading RMI framing byte, if present.
	RMIPacket *RMIPacketType
	Magic     uint16
	Version   uint16
	Contents  []Element
	Classes   *Table
}

// Element is one content element. The set of implementations is closed:
// one type per tag kind the parser can decode.
type Element interface {
	Tag() Tag
	isElement()
}

type Null struct{}

type Reference struct {
	Handle Handle
}

type ClassDesc struct {
	Handle           Handle
	Name             string
	SerialVersionUID int64
	Flags            ClassDescFlags
	Fields           []FieldInfo
	Annotations      []Element
	// Super is a ClassDesc, ProxyClassDesc, Reference or Null.
	Super Element
}

type ProxyClassDesc struct {
	Handle      Handle
	Interfaces  []string
	Annotations []Element
	Super       Element
}

type String struct {
	Handle Handle
	Value  string
	Raw    []byte
	Long   bool
}

type Array struct {
	Handle    Handle
	ClassDesc Element
	Values    []Value
}

type Class struct {
	Handle    Handle
	ClassDesc Element
}

type BlockData struct {
	Data []byte
	Long bool
}

type Object struct {
	Handle    Handle
	ClassDesc Element
	// ClassData holds one entry per class in the chain, root first.
	ClassData []ClassData
}

type Enum struct {
	Handle    Handle
	ClassDesc Element
	// Constant is a String or a Reference to one.
	Constant Element
}

// ClassData is the serialized state contributed by one class of an object.
type ClassData struct {
	Class       string
	Values      []FieldValue
	Annotations []Element
}

// FieldValue is a named value read from an object's class data.
type FieldValue struct {
	Name string
	Value
}

// Value is a single primitive or reference value. Primitive values are
// int8, uint16 (char), float64, float32, int32, int64, int16 and bool;
// reference values are an Element.
type Value struct {
	Type TypeCode
	Data any
}

func (Null) Tag() Tag           { return TCNull }
func (Reference) Tag() Tag      { return TCReference }
func (ClassDesc) Tag() Tag      { return TCClassDesc }
func (ProxyClassDesc) Tag() Tag { return TCProxyClassDesc }
func (Array) Tag() Tag          { return TCArray }
func (Class) Tag() Tag          { return TCClass }
func (Object) Tag() Tag         { return TCObject }
func (Enum) Tag() Tag           { return TCEnum }

func (s String) Tag() Tag {
	if s.Long {
		return TCLongString
	}
	return TCString
}

func (b BlockData) Tag() Tag {
	if b.Long {
		return TCBlockDataLong
	}
	return TCBlockData
}

func (Null) isElement()           {}
func (Reference) isElement()      {}
func (ClassDesc) isElement()      {}
func (ProxyClassDesc) isElement() {}
func (String) isElement()         {}
func (Array) isElement()          {}
func (Class) isElement()          {}
func (BlockData) isElement()      {}
func (Object) isElement()         {}
func (Enum) isElement()           {}
