package generators

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/san-kum/hyperlab/internal/combin"
	"github.com/san-kum/hyperlab/internal/hypergraph"
)

// maxEnumerated caps deterministic generators that list every candidate
// edge.
const maxEnumerated = 5_000_000

func nodeID(i int) hypergraph.ID { return strconv.Itoa(i) }

func addNodes(h *hypergraph.Hypergraph, n int) {
	for i := 0; i < n; i++ {
		_ = h.AddNode(nodeID(i), nil)
	}
}

// Empty returns n isolated nodes "0".."n-1".
func Empty(n int, opts ...Option) (*hypergraph.Hypergraph, error) {
	if n < 0 {
		return nil, fmt.Errorf("Empty: n=%d: %w", n, ErrTooFewNodes)
	}
	h := newConfig(opts...).newHypergraph()
	addNodes(h, n)
	return h, nil
}

// Complete adds every edge of the given order over n nodes.
func Complete(n, order int, opts ...Option) (*hypergraph.Hypergraph, error) {
	if n < 1 {
		return nil, fmt.Errorf("Complete: n=%d: %w", n, ErrTooFewNodes)
	}
	if order < 1 || order >= n {
		return nil, fmt.Errorf("Complete: order=%d with n=%d: %w", order, n, ErrInvalidSize)
	}
	if c, ok := combin.Binomial(n, order+1); !ok || c > maxEnumerated {
		return nil, fmt.Errorf("Complete: C(%d,%d) edges: %w", n, order+1, ErrInvalidSize)
	}
	h := newConfig(opts...).newHypergraph()
	addNodes(h, n)
	members := make([]hypergraph.ID, order+1)
	var err error
	combin.Each(n, order+1, func(idx []int) bool {
		for i, x := range idx {
			members[i] = nodeID(x)
		}
		_, err = h.AddEdge(members, nil)
		return err == nil
	})
	if err != nil {
		return nil, fmt.Errorf("Complete: %w", err)
	}
	return h, nil
}

// RingLattice places n nodes on a ring. Node i starts k/2 edges of size d:
// i itself plus d-1 consecutive nodes beginning at i+s+l for s = 1..k/2.
// With k below 2 the result has no edges.
func RingLattice(n, d, k, l int, opts ...Option) (*hypergraph.Hypergraph, error) {
	cfg := newConfig(opts...)
	if n < 1 {
		return nil, fmt.Errorf("RingLattice: n=%d: %w", n, ErrTooFewNodes)
	}
	if d < 1 || k < 0 || l < 0 {
		return nil, fmt.Errorf("RingLattice: d=%d k=%d l=%d: %w", d, k, l, ErrInvalidSize)
	}
	if k < 2 {
		cfg.logger.Warn("ring lattice with k < 2 has no edges", zap.Int("k", k))
	}
	if k%2 != 0 {
		cfg.logger.Warn("k is odd, rounding down", zap.Int("k", k), zap.Int("used", k-1))
	}

	h := cfg.newHypergraph()
	addNodes(h, n)
	for node := 0; node < n; node++ {
		for start := node + 1; start <= node+k/2; start++ {
			members := make([]hypergraph.ID, 0, d)
			members = append(members, nodeID(node))
			for i := 0; i < d-1; i++ {
				members = append(members, nodeID((start+l+i)%n))
			}
			if _, err := h.AddEdge(members, nil); err != nil {
				return nil, fmt.Errorf("RingLattice: %w", err)
			}
		}
	}
	return h, nil
}
