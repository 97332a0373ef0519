package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, DefaultFile))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Diagnostics.Color != ColorAuto || cfg.Serve.Addr != ":4433" || cfg.Dir != dir {
		t.Errorf("expected defaults, got %+v", cfg)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0] != "*.zn" {
		t.Errorf("unexpected default sources %v", cfg.Sources)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, DefaultFile, `
language: ">= 0.1, < 1.0"
arena:
  block_size: 128
  limit: 4096
parser:
  max_depth: 64
diagnostics:
  color: never
sources:
  - src/*.zn
serve:
  addr: "127.0.0.1:9443"
  cert: cert.pem
  key: key.pem
log:
  verbose: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Arena.BlockSize != 128 || cfg.Arena.Limit != 4096 || cfg.Parser.MaxDepth != 64 {
		t.Errorf("sizes not loaded: %+v", cfg)
	}
	if cfg.Diagnostics.Color != ColorNever || !cfg.Log.Verbose || cfg.Log.Debug {
		t.Errorf("flags not loaded: %+v", cfg)
	}
	if cfg.Serve.Addr != "127.0.0.1:9443" || cfg.Serve.Cert != "cert.pem" {
		t.Errorf("serve section not loaded: %+v", cfg.Serve)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0] != "src/*.zn" {
		t.Errorf("sources must replace the defaults, got %v", cfg.Sources)
	}
	if err := cfg.CheckLanguage("0.1.0"); err != nil {
		t.Errorf("CheckLanguage(0.1.0): %v", err)
	}
	if err := cfg.CheckLanguage("1.2.0"); err == nil {
		t.Error("CheckLanguage(1.2.0) must fail the constraint")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), DefaultFile, "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Diagnostics.Color != ColorAuto {
		t.Errorf("empty file must keep the defaults, got %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		message string
	}{
		{"unknown key", "colour: never\n", "field colour not found"},
		{"unknown nested key", "arena:\n  size: 1\n", "field size not found"},
		{"negative limit", "arena:\n  limit: -1\n", "arena.limit must not be negative"},
		{"bad color", "diagnostics:\n  color: sometimes\n", "diagnostics.color must be auto, always or never"},
		{"bad constraint", "language: \"not a version\"\n", "language:"},
		{"cert without key", "serve:\n  cert: c.pem\n", "serve.cert and serve.key must be set together"},
		{"malformed yaml", "arena: [\n", "parse:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), DefaultFile, tt.content)

			_, err := Load(path)
			if err == nil {
				t.Fatal("expected Load to fail")
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("error %q does not mention %q", err, tt.message)
			}
		})
	}
}

func TestUseColor(t *testing.T) {
	tests := []struct {
		mode     string
		terminal bool
		expected bool
	}{
		{ColorAuto, true, true},
		{ColorAuto, false, false},
		{ColorAlways, false, true},
		{ColorNever, true, false},
	}

	for _, tt := range tests {
		cfg := Default()
		cfg.Diagnostics.Color = tt.mode
		if got := cfg.UseColor(tt.terminal); got != tt.expected {
			t.Errorf("UseColor(%s, terminal=%v) = %v, expected %v", tt.mode, tt.terminal, got, tt.expected)
		}
	}
}

func TestSourceFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "lib"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, dir, "main.zn", "")
	writeFile(t, dir, "notes.txt", "")
	writeFile(t, filepath.Join(dir, "lib"), "util.zn", "")

	cfg := Default()
	cfg.Dir = dir
	cfg.Sources = []string{"*.zn", "lib/*.zn", "main.zn"}

	files, err := cfg.SourceFiles()
	if err != nil {
		t.Fatalf("SourceFiles failed: %v", err)
	}

	expected := []string{filepath.Join(dir, "lib", "util.zn"), filepath.Join(dir, "main.zn")}
	if strings.Join(files, ",") != strings.Join(expected, ",") {
		t.Errorf("SourceFiles() = %v, expected %v", files, expected)
	}
}
