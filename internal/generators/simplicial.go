package generators

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/san-kum/hyperlab/internal/hypergraph"
	"github.com/san-kum/hyperlab/internal/simplicial"
)

// RandomSimplicialComplex adds each possible simplex of order i+1 with
// probability ps[i] and closes the result downward.
func RandomSimplicialComplex(n int, ps []float64, opts ...Option) (*simplicial.Complex, error) {
	cfg := newConfig(opts...)
	if n < 1 {
		return nil, fmt.Errorf("RandomSimplicialComplex: n=%d: %w", n, ErrTooFewNodes)
	}
	if err := checkProbs("RandomSimplicialComplex", ps, cfg.rng); err != nil {
		return nil, err
	}
	c := simplicial.New(hypergraph.WithName(cfg.name))
	for i := 0; i < n; i++ {
		if _, err := c.AddSimplex([]hypergraph.ID{nodeID(i)}, nil); err != nil {
			return nil, err
		}
	}
	for i, p := range ps {
		size := i + 2
		if size > n {
			break
		}
		err := eachRandomSubset(cfg.rng, n, size, p, func(idx []int) error {
			_, err := c.AddSimplex(idsOf(idx), nil)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("RandomSimplicialComplex: order %d: %w", i+1, err)
		}
	}
	return c, nil
}

// FlagComplex fills in the cliques of h's pairwise projection. Every link is
// kept; a clique of order d >= 2 (up to maxOrder) becomes a simplex with
// probability ps[d-2], or always when ps is nil.
func FlagComplex(h *hypergraph.Hypergraph, maxOrder int, ps []float64, opts ...Option) (*simplicial.Complex, error) {
	cfg := newConfig(opts...)
	if maxOrder < 1 {
		return nil, fmt.Errorf("FlagComplex: maxOrder=%d: %w", maxOrder, ErrInvalidSize)
	}
	if maxOrder+1 > simplicial.MaxSimplexSize {
		return nil, fmt.Errorf("FlagComplex: maxOrder=%d: %w", maxOrder, simplicial.ErrTooLarge)
	}
	if ps != nil {
		if len(ps) < maxOrder-1 {
			return nil, fmt.Errorf("FlagComplex: %d probabilities for max order %d: %w", len(ps), maxOrder, ErrInvalidSize)
		}
		if err := checkProbs("FlagComplex", ps, cfg.rng); err != nil {
			return nil, err
		}
	}

	name := cfg.name
	if name == "" {
		name = h.Name()
	}
	c := simplicial.New(hypergraph.WithName(name))
	nodes := h.Nodes()
	index := make(map[hypergraph.ID]int, len(nodes))
	for i, n := range nodes {
		index[n] = i
		attrs, _ := h.NodeAttrs(n)
		if _, err := c.AddSimplex([]hypergraph.ID{n}, attrs); err != nil {
			return nil, err
		}
	}

	adj := h.CliqueExpansion()
	// forward neighbours only, so each clique is built once in index order
	fwd := make([][]int, len(nodes))
	for i, n := range nodes {
		for m := range adj[n] {
			if j := index[m]; j > i {
				fwd[i] = append(fwd[i], j)
			}
		}
		sort.Ints(fwd[i])
	}

	var err error
	var grow func(clique []int, cand []int)
	grow = func(clique []int, cand []int) {
		if err != nil {
			return
		}
		if len(clique) >= 2 && keepClique(cfg.rng, ps, len(clique)-1) {
			members := make([]hypergraph.ID, len(clique))
			for i, x := range clique {
				members[i] = nodes[x]
			}
			if _, err = c.AddSimplex(members, nil); err != nil {
				return
			}
		}
		if len(clique) == maxOrder+1 {
			return
		}
		for i, v := range cand {
			grow(append(clique, v), intersectSorted(cand[i+1:], fwd[v]))
		}
	}
	for i := range nodes {
		grow([]int{i}, fwd[i])
	}
	if err != nil {
		return nil, fmt.Errorf("FlagComplex: %w", err)
	}
	return c, nil
}

func keepClique(rng *rand.Rand, ps []float64, order int) bool {
	if order == 1 || ps == nil {
		return true
	}
	p := ps[order-2]
	switch {
	case p >= 1:
		return true
	case p <= 0:
		return false
	}
	return rng.Float64() < p
}

func intersectSorted(a, b []int) []int {
	out := make([]int, 0)
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}
