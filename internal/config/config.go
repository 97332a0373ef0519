// Package config loads the znc.yaml project file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the project file looked up when no path is given.
const DefaultFile = "znc.yaml"

// Color modes for diagnostics.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config is the project configuration. Zero sizes and limits select the
// defaults of the lexer, arena and parser packages.
type Config struct {
	Language    string            `yaml:"language"`
	Arena       ArenaConfig       `yaml:"arena"`
	Parser      ParserConfig      `yaml:"parser"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
	Sources     []string          `yaml:"sources"`
	Serve       ServeConfig       `yaml:"serve"`
	Log         LogConfig         `yaml:"log"`

	// Dir is the directory source patterns are relative to.
	Dir string `yaml:"-"`
}

// ArenaConfig sizes the token cache and the AST arena, in elements.
type ArenaConfig struct {
	BlockSize int `yaml:"block_size"`
	Limit     int `yaml:"limit"`
}

type ParserConfig struct {
	MaxDepth int `yaml:"max_depth"`
}

type DiagnosticsConfig struct {
	Color string `yaml:"color"`
}

type ServeConfig struct {
	Addr string `yaml:"addr"`
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

type LogConfig struct {
	Verbose bool `yaml:"verbose"`
	Debug   bool `yaml:"debug"`
}

// Default returns the configuration used when no project file exists.
func Default() *Config {
	return &Config{
		Diagnostics: DiagnosticsConfig{Color: ColorAuto},
		Sources:     []string{"*.zn"},
		Serve:       ServeConfig{Addr: ":4433"},
		Dir:         ".",
	}
}

// Load reads the project file at path. A missing or empty file yields the
// defaults. Unknown keys are errors.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultFile
	}

	cfg := Default()
	cfg.Dir = filepath.Dir(path)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	if err := Decode(f, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	return cfg, nil
}

// Decode reads YAML from r over cfg and validates the result.
func Decode(r io.Reader, cfg *Config) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse: %w", err)
	}

	return cfg.Validate()
}

// Validate checks value ranges and the language constraint.
func (c *Config) Validate() error {
	var issues []string

	if c.Arena.BlockSize < 0 {
		issues = append(issues, "arena.block_size must not be negative")
	}
	if c.Arena.Limit < 0 {
		issues = append(issues, "arena.limit must not be negative")
	}
	if c.Parser.MaxDepth < 0 {
		issues = append(issues, "parser.max_depth must not be negative")
	}

	switch c.Diagnostics.Color {
	case "":
		c.Diagnostics.Color = ColorAuto
	case ColorAuto, ColorAlways, ColorNever:
	default:
		issues = append(issues, fmt.Sprintf("diagnostics.color must be auto, always or never, got %q", c.Diagnostics.Color))
	}

	if (c.Serve.Cert == "") != (c.Serve.Key == "") {
		issues = append(issues, "serve.cert and serve.key must be set together")
	}

	if c.Language != "" {
		if _, err := semver.NewConstraint(c.Language); err != nil {
			issues = append(issues, fmt.Sprintf("language: %v", err))
		}
	}

	if len(issues) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(issues, "; "))
	}
	return nil
}

// CheckLanguage reports whether the compiler version satisfies the
// project's language constraint.
func (c *Config) CheckLanguage(version string) error {
	if c.Language == "" {
		return nil
	}

	constraint, err := semver.NewConstraint(c.Language)
	if err != nil {
		return fmt.Errorf("language: %w", err)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("compiler version %q: %w", version, err)
	}

	if ok, reasons := constraint.Validate(v); !ok {
		msgs := make([]string, len(reasons))
		for i, r := range reasons {
			msgs[i] = r.Error()
		}
		return fmt.Errorf("project requires language %s, znc is %s: %s", c.Language, v, strings.Join(msgs, "; "))
	}

	return nil
}

// UseColor decides whether diagnostics are colored for an output that is
// or is not a terminal.
func (c *Config) UseColor(terminal bool) bool {
	switch c.Diagnostics.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return terminal
	}
}

// SourceFiles expands the source patterns relative to Dir, sorted and
// without duplicates.
func (c *Config) SourceFiles() ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range c.Sources {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(c.Dir, pattern)
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("sources: %w", err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}
