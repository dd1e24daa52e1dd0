package trace

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/dhamidi/serialdump/stream"
	"github.com/dhamidi/serialdump/stream/streamtest"
)

func fromHex(t *testing.T, s string) []byte {
	t.Helper()
	data, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		t.Fatalf("bad hex fixture %q: %v", s, err)
	}
	return data
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"null", fromHex(t, "ac ed 00 05 70")},
		{"version mismatch", fromHex(t, "ac ed 00 04 70")},
		{"block data", fromHex(t, "ac ed 00 05 77 02 01 02")},
		{"rmi call", fromHex(t, "50 ac ed 00 05 70")},
		{"unknown rmi", fromHex(t, "5f ac ed 00 05 70")},
		{"string with control bytes", streamtest.New().Header().String("a\nb\x7fc-0x").Bytes()},
		{"write method", streamtest.New().Header().
			Tag(stream.TCObject).
			ClassDesc("Custom", 1, stream.SCSerializable|stream.SCWriteMethod).
			Fields(0).End().Null().
			End().Bytes()},
		{"child parent", streamtest.ChildParent()},
		{"everything", streamtest.Everything()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, _, err := Dump(tt.input)
			if err != nil {
				t.Fatalf("Dump() error = %v", err)
			}
			got, err := Rebuild(strings.NewReader(text))
			if err != nil {
				t.Fatalf("Rebuild() error = %v", err)
			}
			if !bytes.Equal(got, tt.input) {
				t.Errorf("Rebuild(Dump(b)) = %x, want %x\ntrace:\n%s", got, tt.input, text)
			}
			if err := Validate(got); err != nil {
				t.Errorf("Validate() = %v", err)
			}
		})
	}
}

func TestPartialTraceRoundTrip(t *testing.T) {
	input := fromHex(t, "ac ed 00 05 73 71 00 7e 00 09")
	text, _, err := Dump(input)
	if !errors.Is(err, stream.ErrUnresolvedClassReference) {
		t.Fatalf("Dump() error = %v, want ErrUnresolvedClassReference", err)
	}
	got, err := Rebuild(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if !bytes.Equal(got, input) {
		t.Errorf("Rebuild() = %x, want %x", got, input)
	}
}

func TestPayload(t *testing.T) {
	tests := []struct {
		line string
		want string
		ok   bool
	}{
		{"STREAM_MAGIC - 0xac ed", "aced", true},
		{"  TC_NULL - 0x70", "70", true},
		{"      classDescFlags - 0x03 - SC_WRITE_METHOD | SC_SERIALIZABLE", "03", true},
		{"    Value - a0xb - 0x613078620d", "613078620d", true},
		{"    Value - bob - 0x626f62\r", "626f62", true},
		{"    Contents - 0x0102", "0102", true},
		{"  newHandle 0x00 7e 00 00", "", false},
		{"Contents", "", false},
		{"Invalid STREAM_VERSION, should be 00 05", "", false},
		{"    Length - 0 - 0x00 00", "0000", true},
		{"    Value -  - 0x", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := Payload(tt.line)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Payload(%q) = %q, %v, want %q, %v", tt.line, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestRebuildLineError(t *testing.T) {
	text := "STREAM_MAGIC - 0xac ed\nSTREAM_VERSION - 0x00 zz\n"
	got, err := Rebuild(strings.NewReader(text))

	var le *LineError
	if !errors.As(err, &le) {
		t.Fatalf("Rebuild() error = %v, want *LineError", err)
	}
	if le.Line != 2 {
		t.Errorf("Line = %d, want 2", le.Line)
	}
	if !bytes.Equal(got, []byte{0xac, 0xed}) {
		t.Errorf("partial output = %x, want aced", got)
	}
}

func TestReconstruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		text, _, err := Dump(streamtest.ChildParent())
		if err != nil {
			t.Fatalf("Dump() error = %v", err)
		}
		var out bytes.Buffer
		rec, err := Reconstruct(strings.NewReader(text), &out, nil)
		if err != nil {
			t.Fatalf("Reconstruct() error = %v", err)
		}
		if rec.Warning != nil {
			t.Errorf("Warning = %v, want nil", rec.Warning)
		}
		if !bytes.Equal(out.Bytes(), streamtest.ChildParent()) {
			t.Errorf("written bytes differ from the original stream")
		}
	})

	t.Run("invalid stream is still written", func(t *testing.T) {
		text := "STREAM_MAGIC - 0xac ed\nSTREAM_VERSION - 0x00 05\nContents\n  TC_RESET - 0x79\n"
		var out, status bytes.Buffer
		rec, err := Reconstruct(strings.NewReader(text), &out, &status)
		if err != nil {
			t.Fatalf("Reconstruct() error = %v", err)
		}
		want := "Stream rebuilt, attempting to parse...\nWarning: rebuilt stream does not parse:"
		if !strings.HasPrefix(status.String(), want) {
			t.Errorf("status = %q, want prefix %q", status.String(), want)
		}
		if !errors.Is(rec.Warning, stream.ErrUnsupportedOrIllegalTag) {
			t.Errorf("Warning = %v, want ErrUnsupportedOrIllegalTag", rec.Warning)
		}
		if got := hex.EncodeToString(out.Bytes()); got != "aced000579" {
			t.Errorf("written = %s, want aced000579", got)
		}
	})

	t.Run("bad payload writes nothing", func(t *testing.T) {
		var out bytes.Buffer
		_, err := Reconstruct(strings.NewReader("TC_NULL - 0x7"), &out, nil)
		if err == nil {
			t.Fatal("Expected an error for an odd-length payload")
		}
		if out.Len() != 0 {
			t.Errorf("Expected no output, got %x", out.Bytes())
		}
	})
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Print("a")
	w.Indent()
	w.Print("b")
	w.Indent()
	w.Print("c")
	w.Dedent()
	w.Dedent()
	w.Print("d")

	if got, want := buf.String(), "a\n  b\n    c\nd\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if w.Err() != nil {
		t.Errorf("Err() = %v", w.Err())
	}

	w.Dedent()
	if !errors.Is(w.Err(), stream.ErrIndentationUnderflow) {
		t.Errorf("Err() after underflow = %v, want ErrIndentationUnderflow", w.Err())
	}
}

func TestMutedWriter(t *testing.T) {
	w := NewMutedWriter()
	w.Print("ignored")
	w.Indent()
	if w.Depth() != 1 {
		t.Errorf("Depth() = %d, want 1", w.Depth())
	}

	_, err := stream.Parse(streamtest.Everything(), stream.WithRenderer(w))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if w.Depth() != 1 {
		t.Errorf("Depth() after parse = %d, want the starting depth 1", w.Depth())
	}
}
