package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[log]
verbosity = 2
file = "serialdump.log"

[dump]
format = "json"
input = "raw"

[catalog]
db = "classes.db"

[ui]
addr = "127.0.0.1:9000"
`)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Log.Verbosity != 2 || c.Log.File != "serialdump.log" {
		t.Errorf("log = %+v", c.Log)
	}
	if c.Dump.Format != "json" || c.Dump.Input != "raw" {
		t.Errorf("dump = %+v", c.Dump)
	}
	if c.Catalog.DB != "classes.db" {
		t.Errorf("catalog db = %q, want classes.db", c.Catalog.DB)
	}
	if c.UI.Addr != "127.0.0.1:9000" {
		t.Errorf("ui addr = %q", c.UI.Addr)
	}
	if !strings.HasSuffix(c.Path, FileName) {
		t.Errorf("path = %q", c.Path)
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "[log]\nverbosity = 1\n")

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Dump.Format != "text" || c.Dump.Input != "hex" {
		t.Errorf("dump defaults = %+v", c.Dump)
	}
	if c.Catalog.DB != "serialdump.db" || c.UI.Addr != ":8080" {
		t.Errorf("defaults = %+v %+v", c.Catalog, c.UI)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "[dump\n"},
		{"format", "[dump]\nformat = \"yaml\"\n"},
		{"input", "[dump]\ninput = \"base64\"\n"},
		{"verbosity", "[log]\nverbosity = -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.content)
			if _, err := Load(dir); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[dump]\nformat = \"cbor\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	c, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if c.Dump.Format != "cbor" {
		t.Errorf("format = %q, want cbor", c.Dump.Format)
	}
}

func TestFindAndLoadMissing(t *testing.T) {
	// Assumes no serialdump.toml above the temp dir.
	c, err := FindAndLoad(t.TempDir())
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if c.Path != "" || c.Dump.Format != "text" {
		t.Errorf("Expected defaults, got %+v", c)
	}
}
