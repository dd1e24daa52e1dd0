package stream

const (
	Magic   = 0xACED
	Version = 0x0005

	// BaseHandle is the first handle assigned in every stream.
	BaseHandle Handle = 0x7E0000
)

type Tag byte

const (
	TCNull           Tag = 0x70
	TCReference      Tag = 0x71
	TCClassDesc      Tag = 0x72
	TCObject         Tag = 0x73
	TCString         Tag = 0x74
	TCArray          Tag = 0x75
	TCClass          Tag = 0x76
	TCBlockData      Tag = 0x77
	TCEndBlockData   Tag = 0x78
	TCReset          Tag = 0x79
	TCBlockDataLong  Tag = 0x7A
	TCException      Tag = 0x7B
	TCLongString     Tag = 0x7C
	TCProxyClassDesc Tag = 0x7D
	TCEnum           Tag = 0x7E
)

var tagNames = map[Tag]string{
	TCNull:           "TC_NULL",
	TCReference:      "TC_REFERENCE",
	TCClassDesc:      "TC_CLASSDESC",
	TCObject:         "TC_OBJECT",
	TCString:         "TC_STRING",
	TCArray:          "TC_ARRAY",
	TCClass:          "TC_CLASS",
	TCBlockData:      "TC_BLOCKDATA",
	TCEndBlockData:   "TC_ENDBLOCKDATA",
	TCReset:          "TC_RESET",
	TCBlockDataLong:  "TC_BLOCKDATALONG",
	TCException:      "TC_EXCEPTION",
	TCLongString:     "TC_LONGSTRING",
	TCProxyClassDesc: "TC_PROXYCLASSDESC",
	TCEnum:           "TC_ENUM",
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return "unknown tag"
}

// ClassDescFlags is the classDescFlags byte of a class descriptor.
type ClassDescFlags byte

const (
	SCWriteMethod    ClassDescFlags = 0x01
	SCSerializable   ClassDescFlags = 0x02
	SCExternalizable ClassDescFlags = 0x04
	SCBlockData      ClassDescFlags = 0x08
	SCEnum           ClassDescFlags = 0x10
)

func (f ClassDescFlags) IsWriteMethod() bool    { return f&SCWriteMethod != 0 }
func (f ClassDescFlags) IsSerializable() bool   { return f&SCSerializable != 0 }
func (f ClassDescFlags) IsExternalizable() bool { return f&SCExternalizable != 0 }
func (f ClassDescFlags) IsBlockData() bool      { return f&SCBlockData != 0 }
func (f ClassDescFlags) IsEnum() bool           { return f&SCEnum != 0 }

// Names returns the set flag names in bit order.
func (f ClassDescFlags) Names() []string {
	var names []string
	if f.IsWriteMethod() {
		names = append(names, "SC_WRITE_METHOD")
	}
	if f.IsSerializable() {
		names = append(names, "SC_SERIALIZABLE")
	}
	if f.IsExternalizable() {
		names = append(names, "SC_EXTERNALIZABLE")
	}
	if f.IsBlockData() {
		names = append(names, "SC_BLOCK_DATA")
	}
	if f.IsEnum() {
		names = append(names, "SC_ENUM")
	}
	return names
}

// Validate reports whether the flag combination is one a conforming
// writer can produce.
func (f ClassDescFlags) Validate() error {
	switch {
	case f.IsSerializable():
		if f.IsExternalizable() {
			return flagError("SC_SERIALIZABLE is not compatible with SC_EXTERNALIZABLE")
		}
		if f.IsBlockData() {
			return flagError("SC_SERIALIZABLE is not compatible with SC_BLOCK_DATA")
		}
	case f.IsExternalizable():
		if f.IsWriteMethod() {
			return flagError("SC_EXTERNALIZABLE is not compatible with SC_WRITE_METHOD")
		}
		if f.IsEnum() {
			return flagError("SC_EXTERNALIZABLE is not compatible with SC_ENUM")
		}
	case f != 0:
		return flagError("must include either SC_SERIALIZABLE or SC_EXTERNALIZABLE")
	}
	return nil
}

// TypeCode is a field type code from a class descriptor's field table.
type TypeCode byte

const (
	TypeByte    TypeCode = 'B'
	TypeChar    TypeCode = 'C'
	TypeDouble  TypeCode = 'D'
	TypeFloat   TypeCode = 'F'
	TypeInt     TypeCode = 'I'
	TypeLong    TypeCode = 'J'
	TypeShort   TypeCode = 'S'
	TypeBoolean TypeCode = 'Z'
	TypeArray   TypeCode = '['
	TypeObject  TypeCode = 'L'
)

var typeCodeNames = map[TypeCode]string{
	TypeByte:    "Byte",
	TypeChar:    "Char",
	TypeDouble:  "Double",
	TypeFloat:   "Float",
	TypeInt:     "Int",
	TypeLong:    "Long",
	TypeShort:   "Short",
	TypeBoolean: "Boolean",
	TypeArray:   "Array",
	TypeObject:  "Object",
}

func (c TypeCode) String() string {
	if name, ok := typeCodeNames[c]; ok {
		return name
	}
	return "Unknown"
}

func (c TypeCode) IsValid() bool {
	_, ok := typeCodeNames[c]
	return ok
}

func (c TypeCode) IsPrimitive() bool {
	return c.IsValid() && !c.IsReference()
}

func (c TypeCode) IsReference() bool {
	return c == TypeArray || c == TypeObject
}

// RMIPacketType is the optional framing byte that precedes a stream sent
// over an RMI transport.
type RMIPacketType byte

const (
	RMICall       RMIPacketType = 0x50
	RMIReturnData RMIPacketType = 0x51
	RMIPing       RMIPacketType = 0x52
	RMIPingAck    RMIPacketType = 0x53
	RMIDgcAck     RMIPacketType = 0x54
)

var rmiNames = map[RMIPacketType]string{
	RMICall:       "Call",
	RMIReturnData: "ReturnData",
	RMIPing:       "Ping",
	RMIPingAck:    "PingAck",
	RMIDgcAck:     "DgcAck",
}

func (p RMIPacketType) String() string {
	if name, ok := rmiNames[p]; ok {
		return name
	}
	return ""
}

func (p RMIPacketType) IsKnown() bool {
	_, ok := rmiNames[p]
	return ok
}
