// Package layout computes 2D node positions for drawing hypergraphs.
//
// Every layout returns positions scaled into the Config's canvas, keyed by
// node ID. Stochastic layouts draw from Config.Seed so the same seed gives
// the same picture.
package layout

import (
	"errors"
	"math"
	"math/rand"

	"github.com/san-kum/hyperlab/internal/hypergraph"
)

type ID = hypergraph.ID

// Position is a point on the canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Config struct {
	Width      float64 `yaml:"width" validate:"gt=0"`
	Height     float64 `yaml:"height" validate:"gt=0"`
	Padding    float64 `yaml:"padding" validate:"gte=0"`
	Iterations int     `yaml:"iterations" validate:"gte=0"`
	Seed       int64   `yaml:"seed"`
}

func DefaultConfig() Config {
	return Config{Width: 800, Height: 600, Padding: 50, Iterations: 50}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	if c.Padding < 0 {
		c.Padding = 0
	}
	if c.Iterations <= 0 {
		c.Iterations = d.Iterations
	}
	return c
}

var ErrUnknownLayout = errors.New("layout: unknown layout")

// Func is the signature shared by every layout.
type Func func(h *hypergraph.Hypergraph, cfg Config) map[ID]Position

// ByName resolves the layout names accepted on the command line.
func ByName(name string) (Func, error) {
	switch name {
	case "random":
		return Random, nil
	case "circular":
		return Circular, nil
	case "spring", "pairwise_spring":
		return Spring, nil
	case "barycenter_spring", "":
		return BarycenterSpring, nil
	case "weighted_barycenter_spring":
		return WeightedBarycenterSpring, nil
	}
	return nil, ErrUnknownLayout
}

func Names() []string {
	return []string{"random", "circular", "spring", "barycenter_spring", "weighted_barycenter_spring"}
}

// Random places nodes uniformly over the canvas.
func Random(h *hypergraph.Hypergraph, cfg Config) map[ID]Position {
	cfg = cfg.withDefaults()
	rng := rand.New(rand.NewSource(cfg.Seed))
	pos := make(map[ID]Position, h.NumNodes())
	for _, id := range h.Nodes() {
		pos[id] = Position{
			X: cfg.Padding + rng.Float64()*(cfg.Width-2*cfg.Padding),
			Y: cfg.Padding + rng.Float64()*(cfg.Height-2*cfg.Padding),
		}
	}
	return pos
}

// Circular spaces nodes evenly on a circle in insertion order, starting at
// angle zero.
func Circular(h *hypergraph.Hypergraph, cfg Config) map[ID]Position {
	cfg = cfg.withDefaults()
	nodes := h.Nodes()
	pos := make(map[ID]Position, len(nodes))
	if len(nodes) == 1 {
		pos[nodes[0]] = center(cfg)
		return pos
	}
	cx, cy := cfg.Width/2, cfg.Height/2
	radius := math.Min(cx, cy) - cfg.Padding
	for i, id := range nodes {
		angle := 2 * math.Pi * float64(i) / float64(len(nodes))
		pos[id] = Position{X: cx + radius*math.Cos(angle), Y: cy + radius*math.Sin(angle)}
	}
	return pos
}

// Barycenter is the mean position of members. Missing members are
// ignored; the zero Position comes back when none are placed.
func Barycenter(pos map[ID]Position, members []ID) Position {
	var c Position
	n := 0
	for _, id := range members {
		p, ok := pos[id]
		if !ok {
			continue
		}
		c.X += p.X
		c.Y += p.Y
		n++
	}
	if n == 0 {
		return Position{}
	}
	c.X /= float64(n)
	c.Y /= float64(n)
	return c
}

func center(cfg Config) Position {
	return Position{X: cfg.Width / 2, Y: cfg.Height / 2}
}

// normalize scales positions into the padded canvas. A degenerate axis is
// centred.
func normalize(positions map[ID]Position, cfg Config) map[ID]Position {
	if len(positions) == 0 {
		return positions
	}
	minX, maxX := math.MaxFloat64, -math.MaxFloat64
	minY, maxY := math.MaxFloat64, -math.MaxFloat64
	for _, p := range positions {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	targetW := cfg.Width - 2*cfg.Padding
	targetH := cfg.Height - 2*cfg.Padding
	scale := func(v, lo, hi, target float64) float64 {
		if hi-lo < 1e-9 {
			return cfg.Padding + target/2
		}
		return cfg.Padding + (v-lo)/(hi-lo)*target
	}

	out := make(map[ID]Position, len(positions))
	for id, p := range positions {
		out[id] = Position{
			X: scale(p.X, minX, maxX, targetW),
			Y: scale(p.Y, minY, maxY, targetH),
		}
	}
	return out
}
