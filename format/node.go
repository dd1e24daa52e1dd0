package format

import (
	"encoding/hex"
	"math"
	"strconv"

	"github.com/dhamidi/serialdump/stream"
)

type docStream struct {
	RMIPacket string     `json:"rmiPacket,omitempty" cbor:"rmiPacket,omitempty"`
	Magic     string     `json:"magic" cbor:"magic"`
	Version   uint16     `json:"version" cbor:"version"`
	Contents  []*docNode `json:"contents" cbor:"contents"`
}

// docNode is one content element. Kind is the tag name; the remaining
// fields are filled according to the kind.
type docNode struct {
	Kind             string         `json:"kind" cbor:"kind"`
	Handle           string         `json:"handle,omitempty" cbor:"handle,omitempty"`
	Name             string         `json:"name,omitempty" cbor:"name,omitempty"`
	SerialVersionUID string         `json:"serialVersionUID,omitempty" cbor:"serialVersionUID,omitempty"`
	Flags            []string       `json:"flags,omitempty" cbor:"flags,omitempty"`
	Fields           []docField     `json:"fields,omitempty" cbor:"fields,omitempty"`
	Interfaces       []string       `json:"interfaces,omitempty" cbor:"interfaces,omitempty"`
	Annotations      []*docNode     `json:"annotations,omitempty" cbor:"annotations,omitempty"`
	Super            *docNode       `json:"super,omitempty" cbor:"super,omitempty"`
	ClassDesc        *docNode       `json:"classDesc,omitempty" cbor:"classDesc,omitempty"`
	Value            *string        `json:"value,omitempty" cbor:"value,omitempty"`
	Data             string         `json:"data,omitempty" cbor:"data,omitempty"`
	Values           []docValue     `json:"values,omitempty" cbor:"values,omitempty"`
	ClassData        []docClassData `json:"classData,omitempty" cbor:"classData,omitempty"`
	Constant         *docNode       `json:"constant,omitempty" cbor:"constant,omitempty"`
}

type docField struct {
	Name      string `json:"name" cbor:"name"`
	Type      string `json:"type" cbor:"type"`
	ClassName string `json:"className,omitempty" cbor:"className,omitempty"`
}

type docValue struct {
	Name string `json:"name,omitempty" cbor:"name,omitempty"`
	Type string `json:"type" cbor:"type"`
	// Value holds a primitive; Element holds an object or array reference.
	Value   any      `json:"value,omitempty" cbor:"value,omitempty"`
	Element *docNode `json:"element,omitempty" cbor:"element,omitempty"`
}

type docClassData struct {
	Class       string     `json:"class" cbor:"class"`
	Values      []docValue `json:"values,omitempty" cbor:"values,omitempty"`
	Annotations []*docNode `json:"annotations,omitempty" cbor:"annotations,omitempty"`
}

func buildDocument(st *stream.Stream) *docStream {
	doc := &docStream{
		Magic:    strconv.FormatUint(uint64(st.Magic), 16),
		Version:  st.Version,
		Contents: buildNodes(st.Contents),
	}
	if st.RMIPacket != nil {
		doc.RMIPacket = st.RMIPacket.String()
	}
	if doc.Contents == nil {
		doc.Contents = []*docNode{}
	}
	return doc
}

func buildNodes(elements []stream.Element) []*docNode {
	var nodes []*docNode
	for _, e := range elements {
		nodes = append(nodes, buildNode(e))
	}
	return nodes
}

func buildNode(e stream.Element) *docNode {
	if e == nil {
		return nil
	}
	n := &docNode{Kind: e.Tag().String()}

	switch e := e.(type) {
	case *stream.Null:
	case *stream.Reference:
		n.Handle = e.Handle.String()
	case *stream.ClassDesc:
		n.Handle = e.Handle.String()
		n.Name = e.Name
		n.SerialVersionUID = strconv.FormatUint(uint64(e.SerialVersionUID), 16)
		n.Flags = e.Flags.Names()
		for _, f := range e.Fields {
			n.Fields = append(n.Fields, docField{Name: f.Name, Type: f.Type.String(), ClassName: f.ClassName})
		}
		n.Annotations = buildNodes(e.Annotations)
		n.Super = buildNode(e.Super)
	case *stream.ProxyClassDesc:
		n.Handle = e.Handle.String()
		n.Interfaces = e.Interfaces
		n.Annotations = buildNodes(e.Annotations)
		n.Super = buildNode(e.Super)
	case *stream.String:
		n.Handle = e.Handle.String()
		n.Value = &e.Value
	case *stream.Array:
		n.Handle = e.Handle.String()
		n.ClassDesc = buildNode(e.ClassDesc)
		for _, v := range e.Values {
			n.Values = append(n.Values, buildValue("", v))
		}
	case *stream.Class:
		n.Handle = e.Handle.String()
		n.ClassDesc = buildNode(e.ClassDesc)
	case *stream.BlockData:
		n.Data = hex.EncodeToString(e.Data)
	case *stream.Object:
		n.Handle = e.Handle.String()
		n.ClassDesc = buildNode(e.ClassDesc)
		for _, cd := range e.ClassData {
			dcd := docClassData{Class: cd.Class, Annotations: buildNodes(cd.Annotations)}
			for _, fv := range cd.Values {
				dcd.Values = append(dcd.Values, buildValue(fv.Name, fv.Value))
			}
			n.ClassData = append(n.ClassData, dcd)
		}
	case *stream.Enum:
		n.Handle = e.Handle.String()
		n.ClassDesc = buildNode(e.ClassDesc)
		n.Constant = buildNode(e.Constant)
	}
	return n
}

func buildValue(name string, v stream.Value) docValue {
	dv := docValue{Name: name, Type: v.Type.String()}
	switch data := v.Data.(type) {
	case stream.Element:
		dv.Element = buildNode(data)
	case uint16:
		dv.Value = string(rune(data))
	case float64:
		dv.Value = finite(data, 64)
	case float32:
		dv.Value = finite(float64(data), 32)
	default:
		dv.Value = data
	}
	return dv
}

// finite keeps NaN and the infinities as text; JSON has no literal for
// them.
func finite(f float64, bits int) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, bits)
	}
	if bits == 32 {
		return float32(f)
	}
	return f
}
