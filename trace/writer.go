// Package trace renders the annotated text form of a serialization stream
// and rebuilds stream bytes from that text.
package trace

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/serialdump/stream"
)

// IndentUnit is the indentation added for each nesting level.
const IndentUnit = "  "

// Writer is a stream.Renderer that writes one line per Print, indented by
// the current nesting depth. A muted Writer keeps tracking depth but
// writes nothing.
type Writer struct {
	w     io.Writer
	depth int
	muted bool
	err   error
}

var _ stream.Renderer = (*Writer)(nil)

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// NewMutedWriter returns a Writer that only checks indentation balance.
func NewMutedWriter() *Writer {
	return &Writer{w: io.Discard, muted: true}
}

func (w *Writer) Print(line string) {
	if w.muted || w.err != nil {
		return
	}
	if _, err := fmt.Fprintf(w.w, "%s%s\n", strings.Repeat(IndentUnit, w.depth), line); err != nil {
		w.err = fmt.Errorf("write trace: %w", err)
	}
}

func (w *Writer) Indent() {
	w.depth++
}

func (w *Writer) Dedent() {
	if w.depth == 0 {
		if w.err == nil {
			w.err = stream.ErrIndentationUnderflow
		}
		return
	}
	w.depth--
}

// Depth is the current nesting level.
func (w *Writer) Depth() int {
	return w.depth
}

func (w *Writer) Err() error {
	return w.err
}

// Dump parses data and returns its trace. On failure the trace holds every
// line rendered before the error.
func Dump(data []byte) (string, *stream.Stream, error) {
	var buf bytes.Buffer
	st, err := stream.Parse(data, stream.WithRenderer(NewWriter(&buf)))
	return buf.String(), st, err
}
