package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Settings are the CLI options that can also be given in a config file.
// Flags set on the command line override file values. AST is "", "text"
// or "json"; Color is "auto", "always" or "never".
type Settings struct {
	Output   string `toml:"output" yaml:"output"`
	NoHeader bool   `toml:"no_header" yaml:"no_header"`
	Trace    bool   `toml:"trace" yaml:"trace"`
	AST      string `toml:"ast" yaml:"ast"`
	Verify   bool   `toml:"verify" yaml:"verify"`
	Color    string `toml:"color" yaml:"color"`
}

// defaultSettings returns the settings used when neither a file nor a flag
// sets a value.
func defaultSettings() Settings {
	return Settings{Color: "auto"}
}

// loadSettings reads path on top of s. The format is chosen by extension:
// .toml, or .yaml/.yml.
func loadSettings(path string, s *Settings) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.Decode(string(data), s)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		if keys := md.Undecoded(); len(keys) > 0 {
			return fmt.Errorf("parse %s: unknown key %q", path, keys[0].String())
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(strings.NewReader(string(data)))
		dec.KnownFields(true)
		if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("config %s: unsupported format %q (want .toml, .yaml or .yml)", path, ext)
	}
	return s.validate()
}

func (s *Settings) validate() error {
	switch s.AST {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid ast format %q (want text or json)", s.AST)
	}
	switch s.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color mode %q (want auto, always or never)", s.Color)
	}
	return nil
}
