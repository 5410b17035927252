package experiment

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/samber/lo"

	"github.com/san-kum/hyperlab/internal/dynamo"
	"github.com/san-kum/hyperlab/internal/generators"
	"github.com/san-kum/hyperlab/internal/hypergraph"
	"github.com/san-kum/hyperlab/internal/integrators"
	"github.com/san-kum/hyperlab/internal/layout"
	"github.com/san-kum/hyperlab/internal/metrics"
)

var ErrUnknownGenerator = errors.New("experiment: unknown generator")

// GeneratorFunc builds a hypergraph from named numeric parameters.
type GeneratorFunc func(params map[string]float64, opts ...generators.Option) (*hypergraph.Hypergraph, error)

type Registry struct {
	generators map[string]GeneratorFunc
}

func NewRegistry() *Registry {
	r := &Registry{generators: make(map[string]GeneratorFunc)}

	r.generators["empty"] = func(p map[string]float64, opts ...generators.Option) (*hypergraph.Hypergraph, error) {
		return generators.Empty(param(p, "n", 10), opts...)
	}
	r.generators["complete"] = func(p map[string]float64, opts ...generators.Option) (*hypergraph.Hypergraph, error) {
		return generators.Complete(param(p, "n", 10), param(p, "order", 2), opts...)
	}
	r.generators["ring_lattice"] = func(p map[string]float64, opts ...generators.Option) (*hypergraph.Hypergraph, error) {
		return generators.RingLattice(param(p, "n", 20), param(p, "d", 3), param(p, "k", 4), param(p, "l", 0), opts...)
	}
	r.generators["random"] = func(p map[string]float64, opts ...generators.Option) (*hypergraph.Hypergraph, error) {
		return generators.Random(param(p, "n", 50), probabilities(p), opts...)
	}
	r.generators["uniform_random"] = func(p map[string]float64, opts ...generators.Option) (*hypergraph.Hypergraph, error) {
		return generators.UniformRandom(param(p, "n", 50), param(p, "m", 50), param(p, "k", 3), opts...)
	}
	r.generators["chung_lu"] = func(p map[string]float64, opts ...generators.Option) (*hypergraph.Hypergraph, error) {
		k1 := sequence(param(p, "n", 50), param(p, "degree", 4))
		k2 := sequence(param(p, "m", 40), param(p, "size", 5))
		return generators.ChungLu(k1, k2, opts...)
	}
	r.generators["simplicial"] = func(p map[string]float64, opts ...generators.Option) (*hypergraph.Hypergraph, error) {
		sc, err := generators.RandomSimplicialComplex(param(p, "n", 50), probabilities(p), opts...)
		if err != nil {
			return nil, err
		}
		return sc.Hypergraph(), nil
	}

	return r
}

func param(p map[string]float64, key string, def int) int {
	if v, ok := p[key]; ok {
		return int(v)
	}
	return def
}

// probabilities collects p1, p2, ... up to the first missing index.
func probabilities(p map[string]float64) []float64 {
	var ps []float64
	for i := 1; ; i++ {
		v, ok := p["p"+strconv.Itoa(i)]
		if !ok {
			break
		}
		ps = append(ps, v)
	}
	if len(ps) == 0 {
		ps = []float64{0.1}
	}
	return ps
}

// sequence is a constant degree or size sequence over IDs 0..n-1.
func sequence(n, value int) map[hypergraph.ID]int {
	seq := make(map[hypergraph.ID]int, n)
	for i := 0; i < n; i++ {
		seq[strconv.Itoa(i)] = value
	}
	return seq
}

func (r *Registry) GetGenerator(name string) (GeneratorFunc, error) {
	fn, ok := r.generators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGenerator, name)
	}
	return fn, nil
}

// Register adds or replaces a generator.
func (r *Registry) Register(name string, fn GeneratorFunc) {
	r.generators[name] = fn
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	return integrators.New(name)
}

func (r *Registry) GetLayout(name string) (layout.Func, error) {
	return layout.ByName(name)
}

func (r *Registry) ListGenerators() []string {
	names := lo.Keys(r.generators)
	sort.Strings(names)
	return names
}

func (r *Registry) ListIntegrators() []string { return integrators.Names() }

func (r *Registry) ListLayouts() []string { return layout.Names() }

func (r *Registry) DefaultMetrics() []dynamo.Metric {
	return metrics.Standard()
}
