// Package format encodes a decoded serialization stream as structured
// data.
package format

import (
	"encoding"
	"fmt"
	"io"

	"github.com/dhamidi/serialdump/stream"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(st *stream.Stream) error
}

// Names lists the formats accepted by NewEncoder.
var Names = []string{"json", "cbor"}

// NewEncoder returns the encoder registered under name.
func NewEncoder(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "json":
		return NewJSONEncoder(w), nil
	case "cbor":
		return NewCBOREncoder(w), nil
	default:
		return nil, fmt.Errorf("unknown format %q", name)
	}
}
