package main

import (
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/hyperlab/internal/config"
)

func sourceCommand(t *testing.T, args ...string) (*cobra.Command, *sourceFlags, *kuramotoFlags) {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	sf := addSourceFlags(cmd)
	kf := addKuramotoFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd, sf, kf
}

func TestResolveDefaults(t *testing.T) {
	cmd, sf, _ := sourceCommand(t)
	cfg, err := sf.resolve(cmd)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Source.Generator != config.DefaultGenerator {
		t.Errorf("generator = %q, want %q", cfg.Source.Generator, config.DefaultGenerator)
	}
}

func TestResolvePresetWithParams(t *testing.T) {
	cmd, sf, _ := sourceCommand(t, "--preset", "random/sync", "--param", "n=10", "--seed", "3")
	cfg, err := sf.resolve(cmd)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Source.Generator != "random" {
		t.Errorf("generator = %q, want random", cfg.Source.Generator)
	}
	if cfg.Source.Params["n"] != 10 || cfg.Source.Params["p1"] != 0.05 {
		t.Errorf("params = %v, want n overridden and p1 kept", cfg.Source.Params)
	}
	if cfg.Seed != 3 {
		t.Errorf("seed = %d, want 3", cfg.Seed)
	}
	if again := config.GetPreset("random", "sync"); again.Source.Params["n"] != 60 {
		t.Errorf("preset mutated: n = %v", again.Source.Params["n"])
	}
}

func TestResolveGeneratorReplacesParams(t *testing.T) {
	cmd, sf, _ := sourceCommand(t, "--generator", "random", "--param", "n=20", "--param", "p1=0.1")
	cfg, err := sf.resolve(cmd)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(cfg.Source.Params) != 2 {
		t.Errorf("params = %v, want only the flags", cfg.Source.Params)
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown preset", []string{"--preset", "chung_lu/nonexistent"}},
		{"bad param", []string{"--param", "n=lots"}},
		{"negative param", []string{"--param", "n=-4"}},
		{"missing experiment", []string{"--experiment", "does-not-exist.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, sf, _ := sourceCommand(t, tt.args...)
			if _, err := sf.resolve(cmd); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestKuramotoFlagsApply(t *testing.T) {
	cmd, sf, kf := sourceCommand(t, "--k2", "1.5", "-T", "50", "--seed", "8")
	cfg, err := sf.resolve(cmd)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if err := kf.apply(cmd, cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	p := cfg.Kuramoto
	if p.K2 != 1.5 || p.Timesteps != 50 {
		t.Errorf("k2 = %g, T = %d", p.K2, p.Timesteps)
	}
	if p.K3 != 3 {
		t.Errorf("k3 = %g, want the default", p.K3)
	}
	if p.Seed != 8 {
		t.Errorf("kuramoto seed = %d, want the config seed", p.Seed)
	}

	cmd, sf, kf = sourceCommand(t, "--integrator", "rk45", "--adaptive")
	cfg, err = sf.resolve(cmd)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if err := kf.apply(cmd, cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !cfg.Kuramoto.Adaptive || cfg.Kuramoto.Tolerance != 1e-6 {
		t.Errorf("adaptive = %v, tolerance = %g", cfg.Kuramoto.Adaptive, cfg.Kuramoto.Tolerance)
	}

	cmd, sf, kf = sourceCommand(t, "--integrator", "leapfrog")
	cfg, err = sf.resolve(cmd)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if err := kf.apply(cmd, cfg); err == nil {
		t.Error("expected error for an unknown integrator")
	}
}

func TestParseGrid(t *testing.T) {
	names, ranges, err := parseGrid([]string{"k2=0.5, 1,2", "k3=0"})
	if err != nil {
		t.Fatalf("parseGrid: %v", err)
	}
	if len(names) != 2 || names[0] != "k2" || names[1] != "k3" {
		t.Errorf("names = %v", names)
	}
	if len(ranges[0]) != 3 || ranges[0][1] != 1 || ranges[1][0] != 0 {
		t.Errorf("ranges = %v", ranges)
	}

	for _, bad := range []string{"k2", "k2=a,b"} {
		if _, _, err := parseGrid([]string{bad}); err == nil {
			t.Errorf("parseGrid(%q): expected error", bad)
		}
	}
}

func TestDownsample(t *testing.T) {
	xs := make([]float64, 101)
	for i := range xs {
		xs[i] = float64(i)
	}
	got := downsample(xs, 11)
	if len(got) != 11 || got[0] != 0 || got[10] != 100 || got[5] != 50 {
		t.Errorf("downsample = %v", got)
	}
	if short := downsample(xs[:5], 11); len(short) != 5 {
		t.Errorf("short series resampled to %d", len(short))
	}
}

func TestPresetValuesRoundTrip(t *testing.T) {
	cfg := config.GetPreset("chung_lu", "explosive")
	v := presetValues(cfg)
	v["k2"], v["n"], v["seed"] = 0.9, 30, 5

	applyValues(cfg, v)
	if cfg.Kuramoto.K2 != 0.9 || cfg.Source.Params["n"] != 30 || cfg.Seed != 5 {
		t.Errorf("applied config: k2 %g, n %g, seed %d", cfg.Kuramoto.K2, cfg.Source.Params["n"], cfg.Seed)
	}
	if cfg.Kuramoto.K3 != 5 {
		t.Errorf("k3 = %g, want the preset value", cfg.Kuramoto.K3)
	}
}

func TestSortedKeys(t *testing.T) {
	got := sortedKeys(map[string]int{"b": 1, "c": 2, "a": 3})
	if len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Errorf("sortedKeys = %v", got)
	}
}
