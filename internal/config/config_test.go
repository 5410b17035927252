package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Source.Generator != DefaultGenerator {
		t.Errorf("expected generator %s, got %s", DefaultGenerator, cfg.Source.Generator)
	}
	if cfg.Kuramoto.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Source.MaxOrder != -1 {
		t.Errorf("expected max order -1, got %d", cfg.Source.MaxOrder)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestParseReplacesSource(t *testing.T) {
	cfg, err := Parse([]byte("source:\n  dataset: email-enron\nkuramoto:\n  k2: 1.5\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Source.Generator != "" {
		t.Errorf("expected no generator, got %q", cfg.Source.Generator)
	}
	if cfg.Source.MaxOrder != -1 {
		t.Errorf("expected max order -1, got %d", cfg.Source.MaxOrder)
	}
	if cfg.Kuramoto.K2 != 1.5 {
		t.Errorf("expected k2 1.5, got %f", cfg.Kuramoto.K2)
	}
	if cfg.Kuramoto.K3 != 3 {
		t.Errorf("expected default k3 3, got %f", cfg.Kuramoto.K3)
	}
}

func TestParseKeepsDefaultSource(t *testing.T) {
	cfg, err := Parse([]byte("seed: 7\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Source.Generator != DefaultGenerator || cfg.Seed != 7 {
		t.Errorf("unexpected config: %+v", cfg.Source)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"two sources", func(c *Config) { c.Source.Dataset = "x" }, "exactly one"},
		{"no source", func(c *Config) { c.Source.Generator = "" }, "exactly one"},
		{"unknown generator", func(c *Config) { c.Source.Generator = "erdos" }, "Source.Generator"},
		{"negative param", func(c *Config) { c.Source.Params["n"] = -1 }, "source.params.n"},
		{"zero dt", func(c *Config) { c.Kuramoto.Dt = 0 }, "Kuramoto.Dt"},
		{"bad alpha", func(c *Config) { c.Draw.EdgeAlpha = 2 }, "Draw.EdgeAlpha"},
		{"unknown layout", func(c *Config) { c.Layout.Name = "force_atlas" }, "layout"},
		{"bad null model", func(c *Config) { c.NullModel.Kind = "erdos" }, "NullModel.Kind"},
		{"no samples", func(c *Config) { c.NullModel.Kind = "shuffle"; c.NullModel.Samples = 0 }, "samples"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not mention %q", err, tt.field)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hyperlab.yaml")
	cfg := GetPreset("random", "sync")
	cfg.Seed = 42
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Seed != 42 || got.Source.Generator != "random" {
		t.Errorf("round trip lost fields: %+v", got.Source)
	}
	if got.Source.Params["p1"] != 0.05 {
		t.Errorf("expected p1 0.05, got %f", got.Source.Params["p1"])
	}
	if got.Kuramoto.K2 != 2 {
		t.Errorf("expected k2 2, got %f", got.Kuramoto.K2)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("kuramoto:\n  timesteps: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("chung_lu", "explosive")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Kuramoto.K3 != 5 {
		t.Errorf("expected k3 5, got %f", cfg.Kuramoto.K3)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("preset should validate: %v", err)
	}

	cfg.Source.Params["n"] = 1
	if again := GetPreset("chung_lu", "explosive"); again.Source.Params["n"] != 100 {
		t.Error("preset was mutated through a returned copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	cfg := GetPreset("chung_lu", "nonexistent")
	if cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}

	cfg = GetPreset("nonexistent", "sync")
	if cfg != nil {
		t.Error("expected nil for nonexistent generator")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("simplicial")
	want := []string{"explosive", "incoherent", "sync"}
	if strings.Join(presets, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, presets)
	}

	presets = ListPresets("nonexistent")
	if presets != nil {
		t.Error("expected nil for nonexistent generator")
	}

	if gens := ListGenerators(); len(gens) != 3 || gens[0] != "chung_lu" {
		t.Errorf("unexpected generators %v", gens)
	}
}
