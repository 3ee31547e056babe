package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/arbor/internal/attr"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Trees != 9 {
		t.Errorf("expected 9 trees, got %d", cfg.Trees)
	}
	if cfg.Watcher != "memory" {
		t.Errorf("expected memory watcher, got %s", cfg.Watcher)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if cfg.Delay().Milliseconds() != 50 {
		t.Errorf("expected 50ms delay, got %v", cfg.Delay())
	}
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arbor.yaml")
	data := `
trees: 4
columns: 2
preset: willow
watcher: redis
redis:
  addr: localhost:6379
attributes:
  length:
    initial: 90
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Trees != 4 || cfg.Columns != 2 {
		t.Errorf("unexpected grid %d/%d", cfg.Trees, cfg.Columns)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("redis addr = %q", cfg.Redis.Addr)
	}
	if cfg.Width != DefaultWidth {
		t.Errorf("unset width should keep default, got %d", cfg.Width)
	}

	table, err := cfg.Table()
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if table[attr.Length].Initial != 90 {
		t.Errorf("length initial = %v, want 90", table[attr.Length].Initial)
	}
	if table[attr.Branchings].Initial != Presets["willow"].Table[attr.Branchings].Initial {
		t.Error("preset branchings not applied")
	}
}

func TestLoad_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arbor.toml")
	data := `
trees = 2
theme = "night"
state_file = "scene.txt"
watcher = "file"

[attributes.branchings]
max = 5.0
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Trees != 2 || cfg.Theme != "night" || cfg.StateFile != "scene.txt" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	table, err := cfg.Table()
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if *table[attr.Branchings].Max != 5 {
		t.Errorf("branchings max = %v", *table[attr.Branchings].Max)
	}
}

func TestLoad_UnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arbor.ini")
	os.WriteFile(path, []byte("trees=1"), 0644)
	if _, err := Load(path); !errors.Is(err, ErrFormat) {
		t.Errorf("expected ErrFormat, got %v", err)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	for _, ext := range []string{".yaml", ".toml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "arbor"+ext)
			cfg := DefaultConfig()
			cfg.Trees = 6
			cfg.Preset = "bonsai"

			if err := Save(path, cfg); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got.Trees != 6 || got.Preset != "bonsai" {
				t.Errorf("round trip lost values: %+v", got)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no trees", func(c *Config) { c.Trees = 0 }},
		{"no columns", func(c *Config) { c.Columns = 0 }},
		{"negative delay", func(c *Config) { c.DelayMs = -1 }},
		{"bad preset", func(c *Config) { c.Preset = "oak" }},
		{"unknown attribute", func(c *Config) {
			c.Attributes = map[string]AttributeSpec{"height": {}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	for _, name := range ListPresets() {
		p, err := GetPreset(name)
		if err != nil {
			t.Fatalf("GetPreset(%s): %v", name, err)
		}
		if err := p.Table.Validate(); err != nil {
			t.Errorf("preset %s has invalid table: %v", name, err)
		}
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	_, err := GetPreset("wilow")
	if !errors.Is(err, ErrUnknownPreset) {
		t.Fatalf("expected ErrUnknownPreset, got %v", err)
	}
	if !strings.Contains(err.Error(), `"willow"`) {
		t.Errorf("expected suggestion in %q", err)
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != 5 {
		t.Fatalf("expected 5 presets, got %v", presets)
	}
	if presets[0] != "bonsai" {
		t.Errorf("expected sorted names, got %v", presets)
	}
}
