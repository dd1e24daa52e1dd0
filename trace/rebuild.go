package trace

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/serialdump/stream"
)

var (
	log = commonlog.GetLogger("serialdump.trace")
	// validateLog carries the parser's messages during validation so they
	// can be silenced apart from a user-facing dump.
	validateLog = commonlog.GetLogger("serialdump.trace.validate")
)

const (
	marker       = "0x"
	handlePrefix = "newHandle "
	valuePrefix  = "Value - "
)

// maxLine bounds a single trace line; long block data renders as one line.
const maxLine = 1 << 30

// LineError reports a trace line whose payload cannot be decoded.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Payload extracts the hex payload carried by one trace line. Lines
// announcing a handle and lines without the 0x marker carry nothing.
//
// A "Value - <text> - 0x<hex>" line takes the hex after the last marker,
// since <text> may itself contain the marker. Every other line takes the
// text after the first marker, cut at a trailing " - description".
// Spaces between hex pairs are dropped.
func Payload(line string) (string, bool) {
	line = strings.TrimRight(line, "\r")
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, handlePrefix) {
		return "", false
	}
	first := strings.Index(line, marker)
	if first < 0 {
		return "", false
	}

	var token string
	if strings.HasPrefix(trimmed, valuePrefix) {
		token = line[strings.LastIndex(line, marker)+len(marker):]
	} else {
		token = line[first+len(marker):]
	}
	// Hex never contains a dash, so the first one starts the description.
	token, _, _ = strings.Cut(token, "-")
	return strings.ReplaceAll(token, " ", ""), true
}

// Rebuild regenerates stream bytes from a trace, appending each payload
// line's bytes in order.
func Rebuild(r io.Reader) ([]byte, error) {
	var out bytes.Buffer

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := scanner.Text()
		token, ok := Payload(text)
		if !ok {
			continue
		}
		data, err := hex.DecodeString(token)
		if err != nil {
			return out.Bytes(), &LineError{Line: lineNo, Text: text, Err: fmt.Errorf("decode payload %q: %w", token, err)}
		}
		out.Write(data)
	}
	if err := scanner.Err(); err != nil {
		return out.Bytes(), fmt.Errorf("read trace: %w", err)
	}
	return out.Bytes(), nil
}

// Validate re-parses rebuilt bytes with rendering muted.
func Validate(data []byte) error {
	_, err := stream.Parse(data, stream.WithRenderer(NewMutedWriter()), stream.WithLogger(validateLog))
	return err
}

// Reconstruction is the outcome of rebuilding a trace.
type Reconstruction struct {
	Data []byte
	// Warning holds the validation failure, if any. A warning never stops
	// the bytes from being written.
	Warning error
}

// Reconstruct rebuilds the stream described by the trace read from r,
// validates it by parsing it again, and writes the bytes to dst. Progress
// messages go to status when it is not nil.
func Reconstruct(r io.Reader, dst io.Writer, status io.Writer) (*Reconstruction, error) {
	if status == nil {
		status = io.Discard
	}

	data, err := Rebuild(r)
	if err != nil {
		return nil, err
	}
	log.Infof("stream rebuilt, %d bytes", len(data))
	fmt.Fprintln(status, "Stream rebuilt, attempting to parse...")

	rec := &Reconstruction{Data: data}
	if err := Validate(data); err != nil {
		log.Warningf("rebuilt stream does not parse: %s", err)
		fmt.Fprintf(status, "Warning: rebuilt stream does not parse: %s\n", err)
		rec.Warning = err
	}

	if _, err := dst.Write(data); err != nil {
		return rec, fmt.Errorf("write rebuilt stream: %w", err)
	}
	return rec, nil
}
