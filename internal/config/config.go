package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/hyperlab/internal/draw"
	"github.com/san-kum/hyperlab/internal/hypergraph"
	"github.com/san-kum/hyperlab/internal/integrators"
	"github.com/san-kum/hyperlab/internal/kuramoto"
	"github.com/san-kum/hyperlab/internal/layout"
)

const (
	DefaultGenerator = "chung_lu"
	DefaultLayout    = "barycenter_spring"
	DefaultNullModel = "chung-lu"
	DefaultSamples   = 1000
)

var ErrInvalid = errors.New("config: invalid")

var validate = validator.New()

// Source names where the hypergraph comes from. Exactly one of Dataset,
// File and Generator is set.
type Source struct {
	Dataset   string `yaml:"dataset,omitempty"`
	File      string `yaml:"file,omitempty"`
	Generator string `yaml:"generator,omitempty" validate:"omitempty,oneof=empty complete ring_lattice random uniform_random chung_lu simplicial"`
	// Params feeds the generator: n, m, k, d, l, order, degree, size, p1, p2, p3.
	Params map[string]float64 `yaml:"params,omitempty"`
	// MaxOrder drops larger edges when loading; zero or negative keeps all.
	MaxOrder int `yaml:"max_order"`
}

// Describe is a short human label for the source.
func (s Source) Describe() string {
	switch {
	case s.Dataset != "":
		return "dataset:" + s.Dataset
	case s.File != "":
		return "file:" + s.File
	default:
		return "generator:" + s.Generator
	}
}

type Cleanup struct {
	Enabled    bool `yaml:"enabled"`
	Multiedges bool `yaml:"multiedges"`
	Singletons bool `yaml:"singletons"`
	Isolates   bool `yaml:"isolates"`
	Relabel    bool `yaml:"relabel"`
}

func (c Cleanup) Options() hypergraph.CleanupOptions {
	return hypergraph.CleanupOptions{
		Multiedges: c.Multiedges,
		Singletons: c.Singletons,
		Isolates:   c.Isolates,
		Relabel:    c.Relabel,
	}
}

type Layout struct {
	Name          string `yaml:"name"`
	layout.Config `yaml:",inline"`
}

// NullModel compares the source against a fitted random model when Kind is
// set.
type NullModel struct {
	Kind string `yaml:"kind,omitempty" validate:"omitempty,oneof=chung-lu shuffle"`
	// Pairs is the member pair selection for degree assortativity.
	Pairs   string `yaml:"pairs" validate:"omitempty,oneof=uniform top-2 top-bottom"`
	Exact   bool   `yaml:"exact"`
	Samples int    `yaml:"samples" validate:"gte=0"`
}

type Config struct {
	Source    Source          `yaml:"source"`
	Cleanup   Cleanup         `yaml:"cleanup"`
	Layout    Layout          `yaml:"layout"`
	Draw      draw.Style      `yaml:"draw"`
	Kuramoto  kuramoto.Params `yaml:"kuramoto"`
	NullModel NullModel       `yaml:"null_model"`
	Seed      int64           `yaml:"seed"`
}

func DefaultConfig() *Config {
	return &Config{
		Source: Source{
			Generator: DefaultGenerator,
			Params:    map[string]float64{"n": 50, "m": 40, "degree": 4, "size": 5},
			MaxOrder:  -1,
		},
		Cleanup:  Cleanup{Enabled: true, Relabel: true},
		Layout:   Layout{Name: DefaultLayout, Config: layout.DefaultConfig()},
		Draw:     draw.DefaultStyle(),
		Kuramoto: kuramoto.DefaultParams(),
		NullModel: NullModel{
			Pairs:   "top-2",
			Samples: DefaultSamples,
		},
	}
}

// Load reads a YAML file on top of DefaultConfig and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if node.Kind == 0 {
		cfg := DefaultConfig()
		return cfg, cfg.Validate()
	}
	return Overlay(DefaultConfig(), &node)
}

// Overlay decodes node on top of a copy of base and validates the result.
// A source section in node replaces the base source as a whole.
func Overlay(base *Config, node *yaml.Node) (*Config, error) {
	var peek struct {
		Source yaml.Node `yaml:"source"`
	}
	if err := node.Decode(&peek); err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if peek.Source.Kind != 0 {
		cfg.Source = Source{MaxOrder: -1}
	}
	if err := node.Decode(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks field tags and the rules that span fields.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}

	set := 0
	for _, s := range []string{c.Source.Dataset, c.Source.File, c.Source.Generator} {
		if s != "" {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("%w: source: exactly one of dataset, file or generator is required, got %d", ErrInvalid, set)
	}
	for k, v := range c.Source.Params {
		if v < 0 {
			return fmt.Errorf("%w: source.params.%s: must not be negative, got %g", ErrInvalid, k, v)
		}
	}
	if _, err := layout.ByName(c.Layout.Name); err != nil {
		return fmt.Errorf("%w: layout: %v", ErrInvalid, err)
	}
	if err := c.Kuramoto.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := integrators.New(c.Kuramoto.Integrator); err != nil {
		return fmt.Errorf("%w: kuramoto.integrator: %v", ErrInvalid, err)
	}
	if !c.NullModel.Exact && c.NullModel.Kind != "" && c.NullModel.Samples == 0 {
		return fmt.Errorf("%w: null_model.samples: sampled assortativity needs samples > 0", ErrInvalid)
	}
	return nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.TrimPrefix(e.Namespace(), "Config.")
		if e.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s (got %v)", field, e.Tag(), e.Param(), e.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", field, e.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// Clone copies c deeply enough that presets can be handed out safely.
func (c *Config) Clone() *Config {
	out := *c
	out.Source.Params = maps.Clone(c.Source.Params)
	out.Kuramoto.Omega = slices.Clone(c.Kuramoto.Omega)
	out.Kuramoto.Theta = slices.Clone(c.Kuramoto.Theta)
	out.Draw.EdgePalette = slices.Clone(c.Draw.EdgePalette)
	return &out
}
