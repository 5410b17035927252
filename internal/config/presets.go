package config

import (
	"sort"

	"github.com/samber/lo"
)

// sources are the generator setups a preset can start from.
var sources = map[string]Source{
	"chung_lu": {
		Generator: "chung_lu",
		Params:    map[string]float64{"n": 100, "m": 80, "degree": 4, "size": 5},
		MaxOrder:  -1,
	},
	"random": {
		Generator: "random",
		Params:    map[string]float64{"n": 60, "p1": 0.05, "p2": 0.002},
		MaxOrder:  -1,
	},
	"simplicial": {
		Generator: "simplicial",
		Params:    map[string]float64{"n": 60, "p1": 0.05, "p2": 0.002},
		MaxOrder:  -1,
	},
}

// regime holds the coupling that puts the oscillators into a known state.
type regime struct {
	k2, k3    float64
	dt        float64
	timesteps int
}

var regimes = map[string]regime{
	"incoherent": {k2: 0.05, k3: 0, dt: 0.01, timesteps: 2000},
	"sync":       {k2: 2, k3: 0, dt: 0.01, timesteps: 2000},
	"explosive":  {k2: 0.5, k3: 5, dt: 0.002, timesteps: 10000},
}

// Presets maps a generator to its named dynamics regimes.
var Presets = buildPresets()

func buildPresets() map[string]map[string]*Config {
	out := make(map[string]map[string]*Config, len(sources))
	for gen, src := range sources {
		out[gen] = make(map[string]*Config, len(regimes))
		for name, r := range regimes {
			cfg := DefaultConfig()
			cfg.Source = src
			cfg.Kuramoto.K2 = r.k2
			cfg.Kuramoto.K3 = r.k3
			cfg.Kuramoto.Dt = r.dt
			cfg.Kuramoto.Timesteps = r.timesteps
			out[gen][name] = cfg.Clone()
		}
	}
	return out
}

// GetPreset returns a copy of the preset, or nil when either name is
// unknown.
func GetPreset(generator, preset string) *Config {
	genPresets, ok := Presets[generator]
	if !ok {
		return nil
	}
	cfg, ok := genPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(generator string) []string {
	genPresets, ok := Presets[generator]
	if !ok {
		return nil
	}
	names := lo.Keys(genPresets)
	sort.Strings(names)
	return names
}

func ListGenerators() []string {
	names := lo.Keys(Presets)
	sort.Strings(names)
	return names
}
