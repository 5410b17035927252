package generators

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/san-kum/hyperlab/internal/hypergraph"
)

type weighted struct {
	id hypergraph.ID
	k  int
}

// byWeight orders a sequence by value, largest first. Ties fall back to a
// natural ID order so the output does not depend on map iteration.
func byWeight(seq map[hypergraph.ID]int) []weighted {
	out := make([]weighted, 0, len(seq))
	for id, k := range seq {
		out = append(out, weighted{id, k})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].k != out[j].k {
			return out[i].k > out[j].k
		}
		return naturalLess(out[i].id, out[j].id)
	})
	return out
}

// naturalLess sorts decimal IDs numerically and before any other ID.
func naturalLess(a, b hypergraph.ID) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil:
		return ai < bi
	case aerr == nil:
		return true
	case berr == nil:
		return false
	}
	return a < b
}

func naturalIDs(seq map[hypergraph.ID]int) []hypergraph.ID {
	ids := make([]hypergraph.ID, 0, len(seq))
	for id := range seq {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return naturalLess(ids[i], ids[j]) })
	return ids
}

func sumSeq(method string, seq map[hypergraph.ID]int) (int, error) {
	s := 0
	for id, k := range seq {
		if k < 0 {
			return 0, fmt.Errorf("%s: %s has negative value %d: %w", method, id, k, ErrInvalidSize)
		}
		s += k
	}
	return s, nil
}

// fillRow assigns node u to edges of one sorted edge list. prob gives the
// membership probability of u in edges[j]; it must not increase with j.
func fillRow(h *hypergraph.Hypergraph, rng *rand.Rand, u hypergraph.ID, edges []weighted, prob func(v weighted) float64) {
	m := len(edges)
	if m == 0 {
		return
	}
	j := 0
	p := prob(edges[0])
	for j < m {
		if p <= 0 {
			return
		}
		if p != 1 {
			j += skip(rng, p)
		}
		if j >= m {
			return
		}
		v := edges[j]
		q := prob(v)
		if rng.Float64() < q/p {
			_ = h.AddNodeToEdge(v.id, u)
		}
		p = q
		j++
	}
}

// ChungLu samples a hypergraph whose expected node degrees follow k1 and
// expected edge sizes follow k2: node u joins edge v with probability
// min(k1[u]k2[v]/S, 1), S being the degree sum. All k1 nodes are present;
// edges that draw no member are absent. The two sums should agree;
// otherwise a warning is logged.
func ChungLu(k1, k2 map[hypergraph.ID]int, opts ...Option) (*hypergraph.Hypergraph, error) {
	cfg := newConfig(opts...)
	if cfg.rng == nil {
		return nil, fmt.Errorf("ChungLu: %w", ErrNeedRandSource)
	}
	s1, err := sumSeq("ChungLu", k1)
	if err != nil {
		return nil, err
	}
	s2, err := sumSeq("ChungLu", k2)
	if err != nil {
		return nil, err
	}
	if s1 != s2 {
		cfg.logger.Warn("degree and edge size sequences have different sums",
			zap.Int("degree_sum", s1), zap.Int("size_sum", s2))
	}

	h := cfg.newHypergraph()
	for _, id := range naturalIDs(k1) {
		_ = h.AddNode(id, nil)
	}
	if s1 == 0 || len(k2) == 0 {
		return h, nil
	}

	S := float64(s1)
	edges := byWeight(k2)
	for _, u := range byWeight(k1) {
		ku := float64(u.k)
		fillRow(h, cfg.rng, u.id, edges, func(v weighted) float64 {
			return math.Min(ku*float64(v.k)/S, 1)
		})
	}
	return h, nil
}

// DCSBM is the degree-corrected stochastic block model: nodes and edges
// belong to communities (g1, g2) and omega[a][b] is the expected number of
// memberships between node community a and edge community b. Within a pair
// of communities memberships follow Chung-Lu weights.
func DCSBM(k1, k2, g1, g2 map[hypergraph.ID]int, omega [][]float64, opts ...Option) (*hypergraph.Hypergraph, error) {
	cfg := newConfig(opts...)
	if cfg.rng == nil {
		return nil, fmt.Errorf("DCSBM: %w", ErrNeedRandSource)
	}
	if len(omega) == 0 || len(omega[0]) == 0 {
		return nil, fmt.Errorf("DCSBM: empty omega: %w", ErrInvalidSize)
	}
	cols := len(omega[0])
	omegaSum := 0.0
	for a, row := range omega {
		if len(row) != cols {
			return nil, fmt.Errorf("DCSBM: omega row %d has %d columns, want %d: %w", a, len(row), cols, ErrInvalidSize)
		}
		for _, w := range row {
			if w < 0 {
				return nil, fmt.Errorf("DCSBM: negative omega entry: %w", ErrInvalidSize)
			}
			omegaSum += w
		}
	}
	if err := checkGroups("DCSBM: nodes", k1, g1, len(omega)); err != nil {
		return nil, err
	}
	if err := checkGroups("DCSBM: edges", k2, g2, cols); err != nil {
		return nil, err
	}
	s1, err := sumSeq("DCSBM", k1)
	if err != nil {
		return nil, err
	}
	s2, err := sumSeq("DCSBM", k2)
	if err != nil {
		return nil, err
	}
	if s1 != s2 {
		cfg.logger.Warn("degree and edge size sequences have different sums",
			zap.Int("degree_sum", s1), zap.Int("size_sum", s2))
	}
	if math.Abs(omegaSum-float64(s1)) > 1e-9*math.Max(1, float64(s1)) {
		cfg.logger.Warn("omega does not sum to the degree sum",
			zap.Float64("omega_sum", omegaSum), zap.Int("degree_sum", s1))
	}

	kappa1 := make([]float64, len(omega))
	for id, k := range k1 {
		kappa1[g1[id]] += float64(k)
	}
	kappa2 := make([]float64, cols)
	community := make([]map[hypergraph.ID]int, cols)
	for b := range community {
		community[b] = make(map[hypergraph.ID]int)
	}
	for id, k := range k2 {
		kappa2[g2[id]] += float64(k)
		community[g2[id]][id] = k
	}
	sortedCommunity := make([][]weighted, cols)
	for b := range community {
		sortedCommunity[b] = byWeight(community[b])
	}

	h := cfg.newHypergraph()
	for _, id := range naturalIDs(k1) {
		_ = h.AddNode(id, nil)
	}
	for _, u := range byWeight(k1) {
		a := g1[u.id]
		ku := float64(u.k)
		for b, edges := range sortedCommunity {
			norm := kappa1[a] * kappa2[b]
			if norm == 0 || omega[a][b] == 0 {
				continue
			}
			w := omega[a][b]
			fillRow(h, cfg.rng, u.id, edges, func(v weighted) float64 {
				return math.Min(ku*float64(v.k)*w/norm, 1)
			})
		}
	}
	return h, nil
}

func checkGroups(method string, seq, groups map[hypergraph.ID]int, n int) error {
	if len(seq) != len(groups) {
		return fmt.Errorf("%s: %d weights but %d community labels: %w", method, len(seq), len(groups), ErrInvalidSize)
	}
	for id := range seq {
		g, ok := groups[id]
		if !ok {
			return fmt.Errorf("%s: %s has no community: %w", method, id, ErrInvalidSize)
		}
		if g < 0 || g >= n {
			return fmt.Errorf("%s: %s in community %d, want [0,%d): %w", method, id, g, n, ErrInvalidSize)
		}
	}
	return nil
}

// NullKind names a null model that can be fitted to an observed hypergraph.
type NullKind string

const (
	// NullChungLu keeps expected degrees and edge sizes.
	NullChungLu NullKind = "chung-lu"
	// NullShuffle keeps the exact edge sizes and redraws members uniformly.
	NullShuffle NullKind = "shuffle"
)

// NullModel fits a random model to h's own degree and size sequences.
func NullModel(h *hypergraph.Hypergraph, kind NullKind, opts ...Option) (*hypergraph.Hypergraph, error) {
	name := h.Name()
	if name == "" {
		name = "hypergraph"
	}
	opts = append([]Option{WithName(fmt.Sprintf("%s (%s null model)", name, kind))}, opts...)

	switch kind {
	case NullChungLu:
		k1 := make(map[hypergraph.ID]int, h.NumNodes())
		for _, n := range h.Nodes() {
			k1[n], _ = h.Degree(n)
		}
		k2 := make(map[hypergraph.ID]int, h.NumEdges())
		for _, e := range h.Edges() {
			k2[e], _ = h.Size(e)
		}
		return ChungLu(k1, k2, opts...)
	case NullShuffle:
		cfg := newConfig(opts...)
		if cfg.rng == nil {
			return nil, fmt.Errorf("NullModel: %w", ErrNeedRandSource)
		}
		nodes := h.Nodes()
		out := cfg.newHypergraph()
		for _, n := range nodes {
			_ = out.AddNode(n, nil)
		}
		for _, e := range h.Edges() {
			size, _ := h.Size(e)
			idx := sampleDistinct(cfg.rng, len(nodes), size)
			members := make([]hypergraph.ID, size)
			for i, x := range idx {
				members[i] = nodes[x]
			}
			if err := out.AddEdgeWithID(e, members, nil); err != nil {
				return nil, fmt.Errorf("NullModel: %w", err)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("NullModel: %w: %q", ErrUnknownModel, kind)
}
