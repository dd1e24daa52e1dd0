package format

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/dhamidi/serialdump/stream"
)

// cborEncMode uses canonical options so equal streams encode to equal
// bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("format: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

type CBOREncoder struct {
	w      io.Writer
	stream *stream.Stream
}

func NewCBOREncoder(w io.Writer) *CBOREncoder {
	return &CBOREncoder{w: w}
}

func (e *CBOREncoder) Encode(st *stream.Stream) error {
	e.stream = st
	data, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(data)
	return err
}

// MarshalText returns the CBOR bytes. They are binary despite the name,
// which comes from the Encoder contract.
func (e *CBOREncoder) MarshalText() ([]byte, error) {
	data, err := cborEncMode.Marshal(buildDocument(e.stream))
	if err != nil {
		return nil, fmt.Errorf("format: marshal cbor: %w", err)
	}
	return data, nil
}
