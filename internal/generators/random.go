package generators

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/hyperlab/internal/combin"
	"github.com/san-kum/hyperlab/internal/hypergraph"
)

// skip draws how many Bernoulli(p) trials fail before the next success.
func skip(rng *rand.Rand, p float64) int {
	if p >= 1 {
		return 0
	}
	r := 1 - rng.Float64()
	s := math.Floor(math.Log(r) / math.Log1p(-p))
	if s > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(s)
}

func checkProbs(method string, ps []float64, rng *rand.Rand) error {
	for i, p := range ps {
		if p < 0 || p > 1 || math.IsNaN(p) {
			return fmt.Errorf("%s: ps[%d]=%g: %w", method, i, p, ErrInvalidProbability)
		}
		if rng == nil && p > 0 && p < 1 {
			return fmt.Errorf("%s: %w", method, ErrNeedRandSource)
		}
	}
	return nil
}

// eachRandomSubset walks the k-subsets of n in rank order and
// calls fn for each one kept with probability p, jumping between kept ranks
// geometrically instead of testing every subset.
func eachRandomSubset(rng *rand.Rand, n, k int, p float64, fn func(idx []int) error) error {
	if p == 0 {
		return nil
	}
	total, ok := combin.Binomial(n, k)
	if !ok {
		return fmt.Errorf("C(%d,%d) overflows: %w", n, k, ErrInvalidSize)
	}
	buf := make([]int, k)
	for idx := skip(rng, p); idx < total; idx += 1 + skip(rng, p) {
		if err := fn(combin.Unrank(n, k, idx, buf)); err != nil {
			return err
		}
	}
	return nil
}

// Random adds each possible edge of order i+1 independently with
// probability ps[i].
func Random(n int, ps []float64, opts ...Option) (*hypergraph.Hypergraph, error) {
	cfg := newConfig(opts...)
	if n < 1 {
		return nil, fmt.Errorf("Random: n=%d: %w", n, ErrTooFewNodes)
	}
	if err := checkProbs("Random", ps, cfg.rng); err != nil {
		return nil, err
	}
	h := cfg.newHypergraph()
	addNodes(h, n)
	for i, p := range ps {
		size := i + 2
		if size > n {
			break
		}
		err := eachRandomSubset(cfg.rng, n, size, p, func(idx []int) error {
			_, err := h.AddEdge(idsOf(idx), nil)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("Random: order %d: %w", i+1, err)
		}
	}
	return h, nil
}

// UniformRandom draws m edges of k distinct members each. Duplicate edges
// are possible.
func UniformRandom(n, m, k int, opts ...Option) (*hypergraph.Hypergraph, error) {
	cfg := newConfig(opts...)
	if n < 1 {
		return nil, fmt.Errorf("UniformRandom: n=%d: %w", n, ErrTooFewNodes)
	}
	if m < 0 || k < 1 || k > n {
		return nil, fmt.Errorf("UniformRandom: m=%d k=%d n=%d: %w", m, k, n, ErrInvalidSize)
	}
	if cfg.rng == nil {
		return nil, fmt.Errorf("UniformRandom: %w", ErrNeedRandSource)
	}
	h := cfg.newHypergraph()
	addNodes(h, n)
	for e := 0; e < m; e++ {
		if _, err := h.AddEdge(idsOf(sampleDistinct(cfg.rng, n, k)), nil); err != nil {
			return nil, fmt.Errorf("UniformRandom: %w", err)
		}
	}
	return h, nil
}

// sampleDistinct picks k distinct values in [0, n) with a partial
// Fisher-Yates shuffle over a sparse swap map.
func sampleDistinct(rng *rand.Rand, n, k int) []int {
	swapped := make(map[int]int, k)
	at := func(i int) int {
		if v, ok := swapped[i]; ok {
			return v
		}
		return i
	}
	out := make([]int, k)
	for i := 0; i < k; i++ {
		j := i + rng.Intn(n-i)
		out[i] = at(j)
		swapped[j] = at(i)
	}
	return out
}

func idsOf(idx []int) []hypergraph.ID {
	ids := make([]hypergraph.ID, len(idx))
	for i, x := range idx {
		ids[i] = nodeID(x)
	}
	return ids
}
