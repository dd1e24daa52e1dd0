// Package config handles serialdump.toml settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the configuration file looked up by FindAndLoad.
const FileName = "serialdump.toml"

// Config represents a serialdump.toml file.
type Config struct {
	Log     Log     `toml:"log"`
	Dump    Dump    `toml:"dump"`
	Catalog Catalog `toml:"catalog"`
	UI      UI      `toml:"ui"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-"`
}

type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Dump configures the dump command.
type Dump struct {
	Format string `toml:"format"`
	Input  string `toml:"input"`
}

type Catalog struct {
	DB string `toml:"db"`
}

type UI struct {
	Addr string `toml:"addr"`
}

var (
	formats = []string{"text", "json", "cbor"}
	inputs  = []string{"hex", "raw"}
)

// Default returns the configuration used when no file is found.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Dump.Format == "" {
		c.Dump.Format = "text"
	}
	if c.Dump.Input == "" {
		c.Dump.Input = "hex"
	}
	if c.Catalog.DB == "" {
		c.Catalog.DB = "serialdump.db"
	}
	if c.UI.Addr == "" {
		c.UI.Addr = ":8080"
	}
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	if !slices.Contains(formats, c.Dump.Format) {
		return fmt.Errorf("dump.format must be one of %v, got %q", formats, c.Dump.Format)
	}
	if !slices.Contains(inputs, c.Dump.Input) {
		return fmt.Errorf("dump.input must be one of %v, got %q", inputs, c.Dump.Input)
	}
	if c.Log.Verbosity < 0 {
		return fmt.Errorf("log.verbosity must not be negative, got %d", c.Log.Verbosity)
	}
	return nil
}

// Load parses serialdump.toml from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}

	c.Path, err = filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	return &c, nil
}

// FindAndLoad walks up from startDir to find a serialdump.toml file and
// loads it. Without one it returns the defaults.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}
