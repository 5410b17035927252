package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/hyperlab/internal/hypergraph"
)

func toy(t *testing.T) *hypergraph.Hypergraph {
	t.Helper()
	h, err := hypergraph.FromEdges([][]ID{{"1", "2", "3"}, {"3", "4"}, {"4", "5", "6"}, {"1", "3"}})
	require.NoError(t, err)
	require.NoError(t, h.SetNodeAttr("1", "color", "red"))
	require.NoError(t, h.SetNodeAttr("2", "color", "blue"))
	require.NoError(t, h.SetNodeAttr("3", "color", "red"))
	require.NoError(t, h.SetEdgeAttr("0", "weight", 2.0))
	return h
}

func TestDegree(t *testing.T) {
	h := toy(t)
	d := Degree(h)
	assert.Equal(t, map[ID]any{"1": 2, "2": 1, "3": 3, "4": 2, "5": 1, "6": 1}, d.AsMap())
	assert.Equal(t, []any{2, 1, 3, 2, 1, 1}, d.AsSlice())

	pairs := Degree(h, 1)
	v, ok := pairs.Get("3")
	require.True(t, ok)
	assert.Equal(t, 2, v)
	v, _ = pairs.Get("2")
	assert.Equal(t, 0, v)
}

func TestSizeAndOrder(t *testing.T) {
	h := toy(t)
	sz, err := Size(h).AsInts()
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2, 3, 2}, sz)

	ord, err := Order(h).AsInts()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 2, 1}, ord)

	// members of degree 1 in each edge
	ones, err := Size(h, 1).AsInts()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 2, 0}, ones)
}

func TestAverageNeighborDegree(t *testing.T) {
	h := toy(t)
	got := AverageNeighborDegree(h).AsMap()
	// neighbours of 1: 2, 3
	assert.InDelta(t, 2.0, got["1"], 1e-12)
	// neighbours of 4: 3, 5, 6
	assert.InDelta(t, 5.0/3.0, got["4"], 1e-12)

	lonely := hypergraph.New()
	require.NoError(t, lonely.AddNode("x", nil))
	assert.Equal(t, []any{0.0}, AverageNeighborDegree(lonely).AsSlice())
}

func TestLocalClustering(t *testing.T) {
	h := toy(t)
	c := LocalClustering(h).AsMap()
	assert.InDelta(t, 1.0, c["1"], 1e-12)
	assert.InDelta(t, 1.0, c["5"], 1e-12)
	// 3 sees 1, 2, 4: only 1-2 linked
	assert.InDelta(t, 1.0/3.0, c["3"], 1e-12)
}

func TestAggregates(t *testing.T) {
	d := Degree(toy(t))

	mx, err := d.Max()
	require.NoError(t, err)
	assert.Equal(t, 3.0, mx)

	mn, err := d.Min()
	require.NoError(t, err)
	assert.Equal(t, 1.0, mn)

	mean, err := d.Mean()
	require.NoError(t, err)
	assert.InDelta(t, 10.0/6.0, mean, 1e-12)

	med, err := d.Median()
	require.NoError(t, err)
	assert.Equal(t, 1.5, med)

	m2, err := d.Moment(2, false)
	require.NoError(t, err)
	assert.InDelta(t, 20.0/6.0, m2, 1e-12)

	v, err := d.Var()
	require.NoError(t, err)
	std, err := d.Std()
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(v), std, 1e-12)
	assert.InDelta(t, 20.0/6.0-(10.0/6.0)*(10.0/6.0), v, 1e-12)

	bins, err := d.Dist()
	require.NoError(t, err)
	assert.Equal(t, []Bin{{1, 3}, {2, 2}, {3, 1}}, bins)

	assert.Equal(t, []any{2, 1, 3}, d.Unique())
}

func TestAggregateErrors(t *testing.T) {
	h := toy(t)
	_, err := NodeAttr(h, "color", nil).Mean()
	assert.ErrorIs(t, err, ErrNotNumeric)

	_, err = Degree(hypergraph.New()).Max()
	assert.ErrorIs(t, err, ErrEmpty)

	sum, err := Degree(hypergraph.New()).Sum()
	require.NoError(t, err)
	assert.Equal(t, 0.0, sum)
}

func TestFilterBy(t *testing.T) {
	h := toy(t)
	d := Degree(h)

	tests := []struct {
		mode   Mode
		values []any
		want   []ID
	}{
		{Eq, []any{2}, []ID{"1", "4"}},
		{Neq, []any{1}, []ID{"1", "3", "4"}},
		{Lt, []any{2}, []ID{"2", "5", "6"}},
		{Gt, []any{2}, []ID{"3"}},
		{Leq, []any{2.0}, []ID{"1", "2", "4", "5", "6"}},
		{Geq, []any{2}, []ID{"1", "3", "4"}},
		{Between, []any{2, 3}, []ID{"1", "3", "4"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			got, err := d.Filter(tt.mode, tt.values...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := FilterBy(d, "near", 1)
	assert.ErrorIs(t, err, ErrUnknownMode)
	_, err = FilterBy(d, Between, 1)
	assert.Error(t, err)
	_, err = FilterBy(NodeAttr(h, "color", nil), Gt, 1)
	assert.ErrorIs(t, err, ErrNotNumeric)
}

func TestFilterByAttr(t *testing.T) {
	h := toy(t)
	red, err := FilterByAttr(h, NodeKind, "color", Eq, "red", nil)
	require.NoError(t, err)
	assert.Equal(t, []ID{"1", "3"}, red)

	heavy, err := FilterByAttr(h, EdgeKind, "weight", Geq, 1.0, 0.0)
	require.NoError(t, err)
	assert.Equal(t, []ID{"0"}, heavy)

	sub := Induce(h, NodeKind, red)
	assert.Equal(t, 2, sub.NumNodes())
	assert.Equal(t, 1, sub.NumEdges())

	esub := Induce(h, EdgeKind, heavy)
	assert.Equal(t, 3, esub.NumNodes())
}

func TestTable(t *testing.T) {
	h := toy(t)
	tb, err := NewTable(Degree(h), NodeAttr(h, "color", nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"degree", "color"}, tb.Columns)
	assert.Equal(t, []any{3, "red"}, tb.Rows[2])

	var buf bytes.Buffer
	require.NoError(t, tb.WriteCSV(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "node,degree,color", lines[0])
	assert.Equal(t, "4,2,", lines[4])

	out := tb.Render(3)
	assert.Contains(t, out, "degree")
	assert.Contains(t, out, "3 more rows")

	_, err = NewTable(Degree(h), Size(h))
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestPearson(t *testing.T) {
	assert.InDelta(t, 1.0, Pearson([]int{1, 2, 3}, []int{2, 4, 6}), 1e-12)
	assert.InDelta(t, -1.0, Pearson([]float64{1, 2, 3}, []float64{3, 2, 1}), 1e-12)
	assert.True(t, math.IsNaN(Pearson([]int{1, 1}, []int{2, 3})))
}

func TestAggregateHelpers(t *testing.T) {
	assert.Equal(t, 2.0, Median([]int{3, 1, 2}))
	assert.Equal(t, 2.5, Median([]int{4, 1, 3, 2}))
	assert.InDelta(t, 1.25, Var([]float64{1, 2, 3, 4}), 1e-12)
	assert.InDelta(t, 0.0, Moment([]float64{1, 2, 3, 4}, 3, true), 1e-12)
	assert.InDelta(t, 7.5, Moment([]int{1, 2, 3, 4}, 2, false), 1e-12)
	assert.Equal(t, 10.0, Sum([]int{1, 2, 3, 4}))
	assert.True(t, math.IsNaN(Mean([]float64{})))
	assert.True(t, math.IsNaN(Var([]int{})))
	assert.True(t, math.IsNaN(Median([]int{})))
}
