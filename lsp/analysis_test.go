package lsp

import (
	"strings"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/serialdump/stream/streamtest"
	"github.com/dhamidi/serialdump/trace"
)

func TestDiagnoseValidTrace(t *testing.T) {
	text, _, err := trace.Dump(streamtest.Everything())
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if got := Diagnose(text); len(got) != 0 {
		t.Errorf("Diagnose() = %+v, want none", got)
	}
}

func TestDiagnose(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		line    protocol.UInteger
		message string
	}{
		{
			"bad hex",
			"STREAM_MAGIC - 0xac ed\nSTREAM_VERSION - 0x00 5\n",
			1,
			"line 2",
		},
		{
			"illegal tag",
			"STREAM_MAGIC - 0xac ed\nSTREAM_VERSION - 0x00 05\nContents\n  TC_RESET - 0x79\n",
			3,
			"illegal",
		},
		{
			"truncated",
			"STREAM_MAGIC - 0xac ed\nSTREAM_VERSION - 0x00 05\nContents\n  TC_STRING - 0x74\n",
			3,
			"end of stream",
		},
		{
			"empty",
			"",
			0,
			"end of stream",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diagnose(tt.text)
			if len(got) != 1 {
				t.Fatalf("Expected 1 diagnostic, got %d", len(got))
			}
			d := got[0]
			if d.Range.Start.Line != tt.line {
				t.Errorf("line = %d, want %d", d.Range.Start.Line, tt.line)
			}
			if !strings.Contains(strings.ToLower(d.Message), tt.message) {
				t.Errorf("message = %q, want it to mention %q", d.Message, tt.message)
			}
		})
	}
}

// editLine dumps data, rewrites the first line containing match and
// returns the edited trace with the zero-based index of that line.
func editLine(t *testing.T, data []byte, match, old, new string) (string, int) {
	t.Helper()
	text, _, err := trace.Dump(data)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.Contains(line, match) {
			lines[i] = strings.Replace(line, old, new, 1)
			return strings.Join(lines, "\n"), i
		}
	}
	t.Fatalf("no line contains %q:\n%s", match, text)
	return "", 0
}

func TestDiagnoseLandsOnOffendingLine(t *testing.T) {
	tests := []struct {
		name    string
		match   string
		old     string
		new     string
		message string
	}{
		{"illegal flags", "classDescFlags - 0x02", "0x02", "0x06", "sc_externalizable"},
		{"illegal field type", "Int - I - 0x49", "0x49", "0x51", "type code"},
		{"unresolved class reference", "Handle - 8257538", "00 7e 00 02", "00 7e 00 63", "unresolved"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, want := editLine(t, streamtest.ChildParent(), tt.match, tt.old, tt.new)
			got := Diagnose(text)
			if len(got) != 1 {
				t.Fatalf("Expected 1 diagnostic, got %d", len(got))
			}
			lines := strings.Split(text, "\n")
			if line := int(got[0].Range.Start.Line); line != want {
				t.Errorf("line = %d (%q), want %d (%q)", line, lines[line], want, lines[want])
			}
			if !strings.Contains(strings.ToLower(got[0].Message), tt.message) {
				t.Errorf("message = %q, want it to mention %q", got[0].Message, tt.message)
			}
		})
	}
}

func TestHover(t *testing.T) {
	text := "STREAM_MAGIC - 0xac ed\nContents\n    Value - ab - 0x6162\n  TC_NULL - 0x70\n  newHandle 0x00 7e 00 00\n"

	tests := []struct {
		line int
		want string
	}{
		{0, "**2 bytes**"},
		{2, "`ab`"},
		{3, "**1 byte**"},
	}
	for _, tt := range tests {
		h := Hover(text, protocol.Position{Line: protocol.UInteger(tt.line)})
		if h == nil {
			t.Errorf("Hover(line %d) = nil", tt.line)
			continue
		}
		content := h.Contents.(protocol.MarkupContent)
		if !strings.Contains(content.Value, tt.want) {
			t.Errorf("Hover(line %d) = %q, want it to contain %q", tt.line, content.Value, tt.want)
		}
	}

	for _, line := range []int{1, 4, 10} {
		if h := Hover(text, protocol.Position{Line: protocol.UInteger(line)}); h != nil {
			t.Errorf("Hover(line %d) = %+v, want nil", line, h)
		}
	}
}

func TestLineForOffset(t *testing.T) {
	text := "STREAM_MAGIC - 0xac ed\nSTREAM_VERSION - 0x00 05\nContents\n  TC_NULL - 0x70\n"
	tests := []struct {
		offset int
		want   int
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{4, 3},
		{5, 3},
	}
	for _, tt := range tests {
		if got := lineForOffset(text, tt.offset); got != tt.want {
			t.Errorf("lineForOffset(%d) = %d, want %d", tt.offset, got, tt.want)
		}
	}
}
