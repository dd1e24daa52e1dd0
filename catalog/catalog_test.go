package catalog

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dhamidi/serialdump/stream"
	"github.com/dhamidi/serialdump/stream/streamtest"
)

func openTemp(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func parse(t *testing.T, data []byte) *stream.Stream {
	t.Helper()
	st, err := stream.Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return st
}

func TestIndexAndList(t *testing.T) {
	ctx := context.Background()
	c := openTemp(t)

	n, err := c.Index(ctx, "child.ser", parse(t, streamtest.ChildParent()))
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Index() = %d classes, want 2", n)
	}

	classes, err := c.Classes(ctx, "")
	if err != nil {
		t.Fatalf("Classes() error = %v", err)
	}
	if len(classes) != 2 {
		t.Fatalf("Expected 2 classes, got %d", len(classes))
	}

	child, parent := classes[0], classes[1]
	if child.Name != "Child" || parent.Name != "Parent" {
		t.Fatalf("classes = [%s %s], want [Child Parent]", child.Name, parent.Name)
	}
	if child.Super != "Parent" || parent.Super != "" {
		t.Errorf("supers = %q %q", child.Super, parent.Super)
	}
	if child.SerialVersionUID != 0x0102030405060708 {
		t.Errorf("SerialVersionUID = %x", child.SerialVersionUID)
	}
	if child.Handle != stream.BaseHandle {
		t.Errorf("Handle = %s, want %s", child.Handle, stream.BaseHandle)
	}
	if !child.Flags.IsSerializable() {
		t.Errorf("Flags = %02x", byte(child.Flags))
	}
	if len(child.Fields) != 1 || child.Fields[0].Type != stream.TypeObject || child.Fields[0].ClassName != "Ljava/lang/String;" {
		t.Errorf("Child fields = %+v", child.Fields)
	}
	if got := child.Describe(); !strings.Contains(got, "extends Parent") || !strings.Contains(got, "(child.ser)") {
		t.Errorf("Describe() = %q", got)
	}
}

func TestReindexReplaces(t *testing.T) {
	ctx := context.Background()
	c := openTemp(t)

	if _, err := c.Index(ctx, "a.ser", parse(t, streamtest.Everything())); err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if _, err := c.Index(ctx, "b.ser", parse(t, streamtest.ChildParent())); err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if _, err := c.Index(ctx, "a.ser", parse(t, streamtest.ChildParent())); err != nil {
		t.Fatalf("Index() error = %v", err)
	}

	classes, err := c.Classes(ctx, "*")
	if err != nil {
		t.Fatalf("Classes() error = %v", err)
	}
	if len(classes) != 4 {
		t.Errorf("Expected 4 classes after re-index, got %d", len(classes))
	}

	sources, err := c.Sources(ctx)
	if err != nil {
		t.Fatalf("Sources() error = %v", err)
	}
	if strings.Join(sources, ",") != "a.ser,b.ser" {
		t.Errorf("Sources() = %v", sources)
	}
}

func TestClassesPattern(t *testing.T) {
	ctx := context.Background()
	c := openTemp(t)

	if _, err := c.Index(ctx, "all.ser", parse(t, streamtest.Everything())); err != nil {
		t.Fatalf("Index() error = %v", err)
	}

	tests := []struct {
		pattern string
		want    []string
	}{
		{"java.lang.*", []string{"java.lang.Enum", "java.lang.reflect.Proxy"}},
		{"C*", []string{"Color", "Custom"}},
		{"Prims", []string{"Prims"}},
		{"Missing", nil},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			classes, err := c.Classes(ctx, tt.pattern)
			if err != nil {
				t.Fatalf("Classes() error = %v", err)
			}
			var got []string
			for _, cl := range classes {
				got = append(got, cl.Name)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("Classes(%q) = %v, want %v", tt.pattern, got, tt.want)
			}
		})
	}
}
