package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wippyai/wasm-codecs/errors"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("WASMCODECS_CONFIG", "")
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if c.Locale != "en" {
		t.Errorf("Locale = %q, want en", c.Locale)
	}
	if c.Log.Level != "info" || c.Log.Format != "console" {
		t.Errorf("Log = %+v", c.Log)
	}
	if c.LoadTimeout != 30*time.Second {
		t.Errorf("LoadTimeout = %v, want 30s", c.LoadTimeout)
	}
	if len(c.Modules) != len(DefaultModules()) {
		t.Fatalf("got %d modules, want defaults", len(c.Modules))
	}
	if c.WASM.EnableWASI {
		t.Error("WASM.EnableWASI should default to false")
	}
	if c.Modules[0].Name != "zstd" || c.Modules[0].Level != 10 {
		t.Errorf("first module = %+v, want zstd level 10", c.Modules[0])
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("WASMCODECS_LOCALE", "zh")
	t.Setenv("WASMCODECS_LOG_LEVEL", "debug")
	t.Setenv("WASMCODECS_LOAD_TIMEOUT", "5s")
	t.Setenv("WASMCODECS_WASM_MODULE_DIR", "/opt/codecs")
	t.Setenv("WASMCODECS_WASM_ENABLE_WASI", "true")

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Locale != "zh" {
		t.Errorf("Locale = %q, want zh", c.Locale)
	}
	if c.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", c.Log.Level)
	}
	if c.LoadTimeout != 5*time.Second {
		t.Errorf("LoadTimeout = %v, want 5s", c.LoadTimeout)
	}
	if c.WASM.ModuleDir != "/opt/codecs" {
		t.Errorf("WASM.ModuleDir = %q", c.WASM.ModuleDir)
	}
	if !c.WASM.EnableWASI {
		t.Error("WASMCODECS_WASM_ENABLE_WASI=true was not applied")
	}
}

func TestLoad_File(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "codecs.yaml")
	data := `
locale: zh
log:
  format: json
load_timeout: 2s
wasm:
  memory_limit_pages: 256
  enable_wasi: true
modules:
  - name: fast
    kind: native
    codec: lz4
    level: 1
  - name: custom
    kind: wasm
    path: /tmp/custom.wasm
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Locale != "zh" || c.Log.Format != "json" || c.LoadTimeout != 2*time.Second {
		t.Errorf("config = %+v", c)
	}
	if c.WASM.MemoryLimitPages != 256 || !c.WASM.EnableWASI {
		t.Errorf("WASM = %+v, want 256 pages with WASI", c.WASM)
	}
	if len(c.Modules) != 2 {
		t.Fatalf("got %d modules, want 2", len(c.Modules))
	}
	if m := c.Modules[0]; m.Name != "fast" || m.CodecName() != "lz4" || m.Level != 1 {
		t.Errorf("modules[0] = %+v", m)
	}
	if m := c.Modules[1]; m.Kind != KindWASM || m.Path != "/tmp/custom.wasm" {
		t.Errorf("modules[1] = %+v", m)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !stderrors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("error = %v, want invalid input", err)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Locale:  "en",
			Log:     LogConfig{Level: "info", Format: "console"},
			Modules: DefaultModules(),
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		kind   errors.Kind
	}{
		{"valid", func(*Config) {}, ""},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, errors.KindInvalidInput},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, errors.KindInvalidInput},
		{"negative timeout", func(c *Config) { c.LoadTimeout = -time.Second }, errors.KindInvalidInput},
		{"empty name", func(c *Config) { c.Modules[0].Name = "" }, errors.KindInvalidInput},
		{"duplicate", func(c *Config) { c.Modules[1].Name = "zstd" }, errors.KindInvalidInput},
		{"unknown kind", func(c *Config) { c.Modules[0].Kind = "plugin" }, errors.KindUnsupported},
		{"unknown codec", func(c *Config) { c.Modules[0].Codec = "gzip" }, errors.KindUnsupported},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := base()
			tc.mutate(&c)
			err := c.Validate()
			if tc.kind == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if !errors.IsKind(err, tc.kind) {
				t.Errorf("Validate() = %v, want kind %s", err, tc.kind)
			}
			var e *errors.Error
			if tc.kind == errors.KindUnsupported && (!stderrors.As(err, &e) || e.Module != "zstd") {
				t.Errorf("Validate() = %v, want module zstd", err)
			}
		})
	}
}
