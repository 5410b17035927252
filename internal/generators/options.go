package generators

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/san-kum/hyperlab/internal/hypergraph"
)

// Option customises a generator call.
type Option func(*config)

type config struct {
	rng    *rand.Rand
	logger *zap.Logger
	name   string
}

func newConfig(opts ...Option) config {
	cfg := config{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func (c config) newHypergraph() *hypergraph.Hypergraph {
	return hypergraph.New(hypergraph.WithName(c.name))
}

// WithSeed makes stochastic generators reproducible.
func WithSeed(seed int64) Option {
	return func(c *config) { c.rng = rand.New(rand.NewSource(seed)) }
}

// WithRand supplies the RNG directly. Panics on nil.
func WithRand(r *rand.Rand) Option {
	if r == nil {
		panic("generators: WithRand(nil)")
	}
	return func(c *config) { c.rng = r }
}

// WithLogger receives warnings such as mismatched sequence sums. Panics on
// nil.
func WithLogger(l *zap.Logger) Option {
	if l == nil {
		panic("generators: WithLogger(nil)")
	}
	return func(c *config) { c.logger = l }
}

func WithName(name string) Option {
	return func(c *config) { c.name = name }
}
