package layout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/hyperlab/internal/hypergraph"
)

func toy(t *testing.T) *hypergraph.Hypergraph {
	t.Helper()
	h, err := hypergraph.FromEdges([][]hypergraph.ID{
		{"1", "2", "3"}, {"3", "4", "5"}, {"5", "6"}, {"6", "7", "8", "9"}, {"9", "1"},
	})
	require.NoError(t, err)
	require.NoError(t, h.AddNode("lonely", nil))
	return h
}

func inCanvas(t *testing.T, pos map[ID]Position, cfg Config) {
	t.Helper()
	for id, p := range pos {
		assert.False(t, math.IsNaN(p.X) || math.IsNaN(p.Y), id)
		assert.GreaterOrEqual(t, p.X, cfg.Padding-1e-9, id)
		assert.LessOrEqual(t, p.X, cfg.Width-cfg.Padding+1e-9, id)
		assert.GreaterOrEqual(t, p.Y, cfg.Padding-1e-9, id)
		assert.LessOrEqual(t, p.Y, cfg.Height-cfg.Padding+1e-9, id)
	}
}

func TestLayoutsCoverEveryNode(t *testing.T) {
	h := toy(t)
	cfg := DefaultConfig()
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			fn, err := ByName(name)
			require.NoError(t, err)
			pos := fn(h, cfg)
			assert.Len(t, pos, h.NumNodes())
			inCanvas(t, pos, cfg)
		})
	}
}

func TestSeededLayoutsAreReproducible(t *testing.T) {
	h := toy(t)
	cfg := DefaultConfig()
	cfg.Seed = 7
	for _, fn := range []Func{Random, Spring, BarycenterSpring, WeightedBarycenterSpring} {
		assert.Equal(t, fn(h, cfg), fn(h, cfg))
	}
}

func TestCircular(t *testing.T) {
	h, err := hypergraph.FromEdges([][]hypergraph.ID{{"a", "b"}, {"c", "d"}})
	require.NoError(t, err)
	cfg := Config{Width: 200, Height: 200, Padding: 0}
	pos := Circular(h, cfg)

	assert.InDelta(t, 200, pos["a"].X, 1e-9)
	assert.InDelta(t, 100, pos["a"].Y, 1e-9)
	assert.InDelta(t, 100, pos["b"].X, 1e-9)
	assert.InDelta(t, 200, pos["b"].Y, 1e-9)
	assert.InDelta(t, 0, pos["c"].X, 1e-9)
}

func TestSingleNodeIsCentred(t *testing.T) {
	h := hypergraph.New()
	require.NoError(t, h.AddNode("x", nil))
	cfg := DefaultConfig()
	assert.Equal(t, Position{X: 400, Y: 300}, Spring(h, cfg)["x"])
	assert.Equal(t, Position{X: 400, Y: 300}, Circular(h, cfg)["x"])
	assert.Empty(t, BarycenterSpring(hypergraph.New(), cfg))
}

func TestSpringPullsEdgeMembersTogether(t *testing.T) {
	// two dense blocks joined by one dyad
	h, err := hypergraph.FromEdges([][]hypergraph.ID{
		{"a1", "a2", "a3", "a4"}, {"a1", "a2"}, {"a3", "a4"},
		{"b1", "b2", "b3", "b4"}, {"b1", "b3"}, {"b2", "b4"},
		{"a1", "b1"},
	})
	require.NoError(t, err)
	cfg := DefaultConfig()
	cfg.Iterations = 200
	cfg.Seed = 3

	for _, fn := range []Func{Spring, BarycenterSpring} {
		pos := fn(h, cfg)
		within := dist(pos["a2"], pos["a3"]) + dist(pos["b2"], pos["b4"])
		across := dist(pos["a2"], pos["b4"]) + dist(pos["a3"], pos["b2"])
		assert.Less(t, within, across)
	}
}

func TestBarycenter(t *testing.T) {
	pos := map[ID]Position{"a": {0, 0}, "b": {2, 0}, "c": {1, 3}}
	assert.Equal(t, Position{X: 1, Y: 1}, Barycenter(pos, []ID{"a", "b", "c", "missing"}))
	assert.Equal(t, Position{}, Barycenter(pos, []ID{"missing"}))
}

func TestByNameUnknown(t *testing.T) {
	_, err := ByName("hairball")
	assert.ErrorIs(t, err, ErrUnknownLayout)
}

func dist(a, b Position) float64 { return math.Hypot(a.X-b.X, a.Y-b.Y) }
