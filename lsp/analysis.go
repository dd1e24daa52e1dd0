package lsp

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/serialdump/stream"
	"github.com/dhamidi/serialdump/trace"
)

// Diagnose rebuilds the stream described by a trace and parses it. A
// payload that is not hex is reported on its own line; a parse failure is
// reported on the line that holds the failing byte.
func Diagnose(text string) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}

	data, err := trace.Rebuild(strings.NewReader(text))
	if err != nil {
		line := 0
		var le *trace.LineError
		if errors.As(err, &le) {
			line = le.Line - 1
		}
		return append(diagnostics, diagnostic(text, line, err.Error()))
	}

	if err := trace.Validate(data); err != nil {
		line := 0
		var pe *stream.ParseError
		if errors.As(err, &pe) {
			line = lineForOffset(text, pe.Offset)
		}
		return append(diagnostics, diagnostic(text, line, err.Error()))
	}
	return diagnostics
}

func diagnostic(text string, line int, message string) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	source := lsName
	end := 0
	if lines := strings.Split(text, "\n"); line < len(lines) {
		end = len(strings.TrimRight(lines[line], "\r"))
	}
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: protocol.UInteger(line), Character: 0},
			End:   protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(end)},
		},
		Severity: &severity,
		Source:   &source,
		Message:  message,
	}
}

// lineForOffset returns the zero-based line whose payload holds the byte at
// offset. An offset at the end of the data maps to the last payload line.
func lineForOffset(text string, offset int) int {
	pos, last := 0, 0
	for i, line := range strings.Split(text, "\n") {
		token, ok := trace.Payload(line)
		if !ok || token == "" {
			continue
		}
		last = i
		pos += len(token) / 2
		if offset < pos {
			return i
		}
	}
	return last
}

// Hover describes the bytes carried by the line under the cursor.
func Hover(text string, pos protocol.Position) *protocol.Hover {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return nil
	}
	token, ok := trace.Payload(lines[pos.Line])
	if !ok {
		return nil
	}
	data, err := hex.DecodeString(token)
	if err != nil {
		return &protocol.Hover{
			Contents: protocol.MarkupContent{
				Kind:  protocol.MarkupKindMarkdown,
				Value: fmt.Sprintf("**invalid payload**: %s", err),
			},
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%d %s**", len(data), plural(len(data), "byte", "bytes"))
	if len(data) > 0 {
		fmt.Fprintf(&b, "\n\n`%s`", hex.EncodeToString(data))
		fmt.Fprintf(&b, "\n\n`%s`", latin1(data))
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: b.String(),
		},
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func latin1(data []byte) string {
	runes := make([]rune, len(data))
	for i, c := range data {
		if c < 0x20 || c == 0x7f || c == '`' {
			runes[i] = '.'
			continue
		}
		runes[i] = rune(c)
	}
	return string(runes)
}
