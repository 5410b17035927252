package draw

import (
	"fmt"
	"math"
	"strconv"

	"github.com/san-kum/hyperlab/internal/hypergraph"
)

// Style controls how a hypergraph is drawn. The zero value of a field
// falls back to DefaultStyle.
type Style struct {
	Width  int `yaml:"width" validate:"gte=0"`
	Height int `yaml:"height" validate:"gte=0"`
	// Padding keeps drawn shapes off the border.
	Padding int `yaml:"padding" validate:"gte=0"`

	Background string `yaml:"background"`
	Title      string `yaml:"title"`

	NodeSize    float64 `yaml:"node_size" validate:"gte=0"`
	MaxNodeSize float64 `yaml:"max_node_size" validate:"gte=0"`
	NodeFC      string  `yaml:"node_fc"`
	NodeEC      string  `yaml:"node_ec"`
	NodeLW      float64 `yaml:"node_lw" validate:"gte=0"`
	NodeLabels  bool    `yaml:"node_labels"`

	// NodeSizeBy scales radii between NodeSize and MaxNodeSize.
	NodeSizeBy map[hypergraph.ID]float64 `yaml:"-"`
	// NodeColorBy shades node fills along NodeGradient.
	NodeColorBy  map[hypergraph.ID]float64 `yaml:"-"`
	NodeGradient [2]string                 `yaml:"-"`

	// EdgePalette colours hulls by order, starting at order 2.
	EdgePalette []string `yaml:"edge_palette"`
	EdgeAlpha   float64  `yaml:"alpha" validate:"gte=0,lte=1"`
	HullPadding float64  `yaml:"hull_padding" validate:"gte=0"`
	EdgeLabels  bool     `yaml:"edge_labels"`

	DyadColor string  `yaml:"dyad_color"`
	DyadLW    float64 `yaml:"dyad_lw" validate:"gte=0"`

	// MaxOrder hides edges above this order; negative shows all.
	MaxOrder int `yaml:"max_order"`
}

// crest, light to dark
var defaultPalette = []string{
	"#a5cd90", "#79b793", "#559c9e", "#3d7f9f", "#2e6498", "#2c4782", "#2c3172",
}

func DefaultStyle() Style {
	return Style{
		Width:        800,
		Height:       600,
		Padding:      40,
		Background:   "white",
		NodeSize:     7,
		MaxNodeSize:  16,
		NodeFC:       "white",
		NodeEC:       "black",
		NodeLW:       1,
		NodeGradient: [2]string{"#fde725", "#440154"},
		EdgePalette:  defaultPalette,
		EdgeAlpha:    0.4,
		HullPadding:  10,
		DyadColor:    "black",
		DyadLW:       1.5,
		MaxOrder:     -1,
	}
}

func (s Style) withDefaults() Style {
	d := DefaultStyle()
	if s.Width <= 0 {
		s.Width = d.Width
	}
	if s.Height <= 0 {
		s.Height = d.Height
	}
	if s.Background == "" {
		s.Background = d.Background
	}
	if s.NodeSize <= 0 {
		s.NodeSize = d.NodeSize
	}
	if s.MaxNodeSize < s.NodeSize {
		s.MaxNodeSize = math.Max(d.MaxNodeSize, s.NodeSize)
	}
	if s.NodeFC == "" {
		s.NodeFC = d.NodeFC
	}
	if s.NodeEC == "" {
		s.NodeEC = d.NodeEC
	}
	if s.NodeGradient[0] == "" || s.NodeGradient[1] == "" {
		s.NodeGradient = d.NodeGradient
	}
	if len(s.EdgePalette) == 0 {
		s.EdgePalette = d.EdgePalette
	}
	if s.EdgeAlpha <= 0 {
		s.EdgeAlpha = d.EdgeAlpha
	}
	if s.DyadColor == "" {
		s.DyadColor = d.DyadColor
	}
	if s.DyadLW <= 0 {
		s.DyadLW = d.DyadLW
	}
	return s
}

// EdgeColor is the hull colour for an edge of the given order.
func (s Style) EdgeColor(order int) string {
	palette := s.EdgePalette
	if len(palette) == 0 {
		palette = defaultPalette
	}
	i := order - 2
	if i < 0 {
		i = 0
	}
	return palette[i%len(palette)]
}

// span maps values linearly onto [0, 1]; a constant map gives 0.5.
type span struct{ lo, hi float64 }

func spanOf(values map[hypergraph.ID]float64) span {
	s := span{lo: math.Inf(1), hi: math.Inf(-1)}
	for _, v := range values {
		s.lo = math.Min(s.lo, v)
		s.hi = math.Max(s.hi, v)
	}
	return s
}

func (s span) at(v float64) float64 {
	if s.hi-s.lo < 1e-12 {
		return 0.5
	}
	return (v - s.lo) / (s.hi - s.lo)
}

// mix interpolates two #rrggbb colours. Anything unparsable yields a.
func mix(a, b string, t float64) string {
	ca, okA := parseHex(a)
	cb, okB := parseHex(b)
	if !okA || !okB {
		return a
	}
	var out [3]int
	for i := range out {
		out[i] = int(math.Round(float64(ca[i]) + t*float64(cb[i]-ca[i])))
	}
	return fmt.Sprintf("#%02x%02x%02x", out[0], out[1], out[2])
}

func parseHex(s string) ([3]int, bool) {
	var c [3]int
	if len(s) != 7 || s[0] != '#' {
		return c, false
	}
	for i := range c {
		v, err := strconv.ParseUint(s[1+2*i:3+2*i], 16, 8)
		if err != nil {
			return c, false
		}
		c[i] = int(v)
	}
	return c, true
}
