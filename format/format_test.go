package format

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"

	"github.com/fxamacker/cbor/v2"

	"github.com/dhamidi/serialdump/stream"
	"github.com/dhamidi/serialdump/stream/streamtest"
)

func parse(t *testing.T, data []byte) *stream.Stream {
	t.Helper()
	st, err := stream.Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return st
}

func TestJSONEncoder(t *testing.T) {
	st := parse(t, streamtest.ChildParent())

	var buf bytes.Buffer
	if err := NewJSONEncoder(&buf).Encode(st); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	var doc docStream
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if doc.Magic != "aced" || doc.Version != 5 {
		t.Errorf("header = %s/%d, want aced/5", doc.Magic, doc.Version)
	}
	if len(doc.Contents) != 2 {
		t.Fatalf("Expected 2 contents, got %d", len(doc.Contents))
	}

	obj := doc.Contents[0]
	if obj.Kind != "TC_OBJECT" || obj.Handle != "0x00 7e 00 03" {
		t.Errorf("object = %s %s", obj.Kind, obj.Handle)
	}
	if obj.ClassDesc.Name != "Child" || obj.ClassDesc.Super.Name != "Parent" {
		t.Errorf("classDesc chain = %s -> %s", obj.ClassDesc.Name, obj.ClassDesc.Super.Name)
	}
	if len(obj.ClassData) != 2 || obj.ClassData[0].Class != "Parent" {
		t.Fatalf("classData = %+v", obj.ClassData)
	}
	if v := obj.ClassData[0].Values[0]; v.Name != "a" || v.Type != "Int" || v.Value != float64(42) {
		t.Errorf("Parent.a = %+v", v)
	}
	if el := obj.ClassData[1].Values[0].Element; el == nil || *el.Value != "bob" {
		t.Errorf("Child.name = %+v", el)
	}
}

func TestJSONEncoderEverything(t *testing.T) {
	st := parse(t, streamtest.Everything())
	text, err := (&JSONEncoder{stream: st}).MarshalText()
	if err != nil {
		t.Fatalf("MarshalText() error = %v", err)
	}
	if !json.Valid(text) {
		t.Error("Expected valid JSON")
	}
}

func TestNonFiniteFloats(t *testing.T) {
	tests := []struct {
		in   float64
		want any
	}{
		{1.5, 1.5},
		{math.NaN(), "NaN"},
		{math.Inf(1), "+Inf"},
		{math.Inf(-1), "-Inf"},
	}
	for _, tt := range tests {
		if got := finite(tt.in, 64); got != tt.want {
			t.Errorf("finite(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCBOREncoder(t *testing.T) {
	st := parse(t, streamtest.ChildParent())

	first, err := (&CBOREncoder{stream: st}).MarshalText()
	if err != nil {
		t.Fatalf("MarshalText() error = %v", err)
	}
	second, err := (&CBOREncoder{stream: parse(t, streamtest.ChildParent())}).MarshalText()
	if err != nil {
		t.Fatalf("MarshalText() error = %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("Expected canonical encoding to be deterministic")
	}

	var doc docStream
	if err := cbor.Unmarshal(first, &doc); err != nil {
		t.Fatalf("cbor.Unmarshal() error = %v", err)
	}
	if len(doc.Contents) != 2 || doc.Contents[1].ClassDesc.Kind != "TC_REFERENCE" {
		t.Errorf("decoded contents = %+v", doc.Contents)
	}
}

func TestNewEncoder(t *testing.T) {
	var buf bytes.Buffer
	for _, name := range Names {
		if _, err := NewEncoder(name, &buf); err != nil {
			t.Errorf("NewEncoder(%q) error = %v", name, err)
		}
	}
	if _, err := NewEncoder("yaml", &buf); err == nil {
		t.Error("Expected an error for an unknown format")
	}
}
