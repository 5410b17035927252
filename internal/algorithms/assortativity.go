package algorithms

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/san-kum/hyperlab/internal/combin"
	"github.com/san-kum/hyperlab/internal/hypergraph"
	"github.com/san-kum/hyperlab/internal/stats"
)

// PairKind selects which two member degrees represent an edge.
type PairKind string

const (
	// Uniform picks two distinct members at random.
	Uniform PairKind = "uniform"
	// Top2 takes the two largest member degrees.
	Top2 PairKind = "top-2"
	// TopBottom takes the largest and the smallest member degree.
	TopBottom PairKind = "top-bottom"
)

func ParsePairKind(s string) (PairKind, error) {
	switch k := PairKind(s); k {
	case Uniform, Top2, TopBottom:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// DegreeAssortativity correlates the degrees of member pairs across edges of
// size two or more. In exact mode every such edge contributes one pair;
// otherwise samples edges are drawn with replacement. The pair order is
// shuffled so the result is symmetric. A correlation that is undefined
// (constant degrees) is reported as 0.
func DegreeAssortativity(h *hypergraph.Hypergraph, kind PairKind, exact bool, samples int, rng *rand.Rand) (float64, error) {
	if err := checkShape(h); err != nil {
		return 0, fmt.Errorf("DegreeAssortativity: %w", err)
	}
	if _, err := ParsePairKind(string(kind)); err != nil {
		return 0, fmt.Errorf("DegreeAssortativity: %w", err)
	}
	if rng == nil {
		return 0, fmt.Errorf("DegreeAssortativity: %w", ErrNeedRandSource)
	}
	if !exact && samples <= 0 {
		return 0, fmt.Errorf("DegreeAssortativity: samples=%d must be positive", samples)
	}

	deg := degrees(h)
	edges := make([][]hypergraph.ID, 0, h.NumEdges())
	for _, e := range h.Edges() {
		m, _ := h.Members(e)
		if len(m) > 1 {
			edges = append(edges, m)
		}
	}
	if len(edges) == 0 {
		return 0, nil
	}

	if !exact {
		drawn := make([][]hypergraph.ID, samples)
		for i := range drawn {
			drawn[i] = edges[rng.Intn(len(edges))]
		}
		edges = drawn
	}

	k1 := make([]int, len(edges))
	k2 := make([]int, len(edges))
	for i, e := range edges {
		k1[i], k2[i] = chooseDegrees(e, deg, kind, rng)
	}
	rho := stats.Pearson(k1, k2)
	if math.IsNaN(rho) {
		return 0, nil
	}
	return rho, nil
}

func chooseDegrees(e []hypergraph.ID, deg map[hypergraph.ID]int, kind PairKind, rng *rand.Rand) (int, int) {
	var a, b int
	switch kind {
	case Uniform:
		i := rng.Intn(len(e))
		j := rng.Intn(len(e) - 1)
		if j >= i {
			j++
		}
		return deg[e[i]], deg[e[j]]
	case Top2, TopBottom:
		ds := make([]int, len(e))
		for i, n := range e {
			ds[i] = deg[n]
		}
		sort.Ints(ds)
		if kind == Top2 {
			a, b = ds[len(ds)-2], ds[len(ds)-1]
		} else {
			a, b = ds[0], ds[len(ds)-1]
		}
	}
	if rng.Intn(2) == 1 {
		a, b = b, a
	}
	return a, b
}

// DynamicalAssortativity is <k_i k_j><k>^2 / <k^2>^2 - 1, with the first
// average over all member pairs of all edges. It needs a uniform
// hypergraph without singleton edges or isolated nodes.
func DynamicalAssortativity(h *hypergraph.Hypergraph) (float64, error) {
	if err := checkShape(h); err != nil {
		return 0, fmt.Errorf("DynamicalAssortativity: %w", err)
	}
	if _, ok := h.IsUniform(); !ok {
		return 0, fmt.Errorf("DynamicalAssortativity: %w", ErrNotUniform)
	}
	if len(h.Singletons()) > 0 {
		return 0, fmt.Errorf("DynamicalAssortativity: %w", ErrSingletons)
	}

	deg := degrees(h)
	ks := make([]int, 0, len(deg))
	sq := make([]int, 0, len(deg))
	for _, n := range h.Nodes() {
		ks = append(ks, deg[n])
		sq = append(sq, deg[n]*deg[n])
	}
	k1 := stats.Mean(ks)
	k2 := stats.Mean(sq)

	prods := make([]int, 0)
	for _, e := range h.Edges() {
		m, _ := h.Members(e)
		for _, pair := range combin.Subsets(m, 2) {
			prods = append(prods, deg[pair[0]]*deg[pair[1]])
		}
	}
	kk1 := stats.Mean(prods)
	return kk1*k1*k1/(k2*k2) - 1, nil
}

func checkShape(h *hypergraph.Hypergraph) error {
	switch {
	case h.NumNodes() < 2:
		return ErrTooFewNodes
	case h.NumEdges() == 0:
		return ErrNoEdges
	case len(h.Isolates(false)) > 0:
		return ErrIsolates
	}
	return nil
}

func degrees(h *hypergraph.Hypergraph) map[hypergraph.ID]int {
	out := make(map[hypergraph.ID]int, h.NumNodes())
	for _, n := range h.Nodes() {
		out[n], _ = h.Degree(n)
	}
	return out
}
