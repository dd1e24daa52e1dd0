package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/serialdump/stream"
)

type JSONEncoder struct {
	w      io.Writer
	stream *stream.Stream
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(st *stream.Stream) error {
	e.stream = st
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	text = append(text, '\n')
	_, err = e.w.Write(text)
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	return json.MarshalIndent(buildDocument(e.stream), "", "  ")
}
