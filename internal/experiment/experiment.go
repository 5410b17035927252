// Package experiment runs the end-to-end pipeline on one hypergraph: build
// or load it, clean it up, summarise it, compare it with a null model, lay
// it out and drive Kuramoto oscillators on it.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/hyperlab/internal/algorithms"
	"github.com/san-kum/hyperlab/internal/config"
	"github.com/san-kum/hyperlab/internal/draw"
	"github.com/san-kum/hyperlab/internal/dynamo"
	"github.com/san-kum/hyperlab/internal/generators"
	"github.com/san-kum/hyperlab/internal/hypergraph"
	"github.com/san-kum/hyperlab/internal/kuramoto"
	"github.com/san-kum/hyperlab/internal/layout"
	"github.com/san-kum/hyperlab/internal/readwrite"
	"github.com/san-kum/hyperlab/internal/stats"
	"github.com/san-kum/hyperlab/internal/xgidata"
)

var ErrNoSource = errors.New("experiment: config has no source")

type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	data      *xgidata.Client
	dataDir   string
	logger    *zap.Logger
	figure    io.Writer
	metrics   []dynamo.Metric
	observers []dynamo.Observer
	skipSim   bool
}

type Option func(*Experiment)

func WithRegistry(r *Registry) Option {
	return func(e *Experiment) { e.registry = r }
}

func WithDataClient(c *xgidata.Client) Option {
	return func(e *Experiment) { e.data = c }
}

// WithDataDir is searched for local dataset copies.
func WithDataDir(dir string) Option {
	return func(e *Experiment) { e.dataDir = dir }
}

func WithLogger(l *zap.Logger) Option {
	if l == nil {
		panic("experiment: WithLogger(nil)")
	}
	return func(e *Experiment) { e.logger = l }
}

// WithFigure makes Run draw the hypergraph as SVG into w.
func WithFigure(w io.Writer) Option {
	return func(e *Experiment) { e.figure = w }
}

// WithMetrics replaces the registry's default metrics.
func WithMetrics(ms ...dynamo.Metric) Option {
	return func(e *Experiment) { e.metrics = ms }
}

func WithObserver(obs dynamo.Observer) Option {
	return func(e *Experiment) { e.observers = append(e.observers, obs) }
}

// WithoutDynamics stops Run after the layout.
func WithoutDynamics() Option {
	return func(e *Experiment) { e.skipSim = true }
}

func New(cfg *config.Config, opts ...Option) *Experiment {
	e := &Experiment{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = NewRegistry()
	}
	if e.data == nil {
		e.data = xgidata.New(xgidata.WithLogger(e.logger))
	}
	if e.metrics == nil {
		e.metrics = e.registry.DefaultMetrics()
	}
	return e
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// Summary is the structural fingerprint printed for every hypergraph.
type Summary struct {
	Nodes      int     `json:"nodes"`
	Edges      int     `json:"edges"`
	MaxOrder   int     `json:"max_order"`
	MeanDegree float64 `json:"mean_degree"`
	MaxDegree  float64 `json:"max_degree"`
	MeanSize   float64 `json:"mean_size"`
	Components int     `json:"components"`
	Isolates   int     `json:"isolates"`
}

func Summarize(h *hypergraph.Hypergraph) Summary {
	s := Summary{
		Nodes:      h.NumNodes(),
		Edges:      h.NumEdges(),
		MaxOrder:   h.MaxEdgeOrder(),
		Components: algorithms.NumComponents(h),
		Isolates:   len(h.Isolates(false)),
	}
	if s.Nodes > 0 {
		deg := stats.Degree(h)
		s.MeanDegree, _ = deg.Mean()
		s.MaxDegree, _ = deg.Max()
	}
	if s.Edges > 0 {
		s.MeanSize, _ = stats.Size(h).Mean()
	}
	return s
}

// Comparison contrasts a hypergraph with one draw of a null model.
type Comparison struct {
	Kind              string  `json:"kind"`
	Observed          Summary `json:"observed"`
	Null              Summary `json:"null"`
	Assortativity     float64 `json:"assortativity"`
	NullAssortativity float64 `json:"null_assortativity"`
}

type Report struct {
	Source     string
	Hypergraph *hypergraph.Hypergraph
	Summary    Summary
	Null       *Comparison
	Positions  map[hypergraph.ID]layout.Position
	Trajectory *kuramoto.Trajectory
	Elapsed    time.Duration
}

// Build produces the hypergraph named by the config source and applies the
// configured cleanup.
func (e *Experiment) Build(ctx context.Context) (*hypergraph.Hypergraph, error) {
	src := e.cfg.Source
	var (
		h   *hypergraph.Hypergraph
		err error
	)
	switch {
	case src.Dataset != "":
		opts := xgidata.DefaultLoadOptions()
		opts.Path = e.dataDir
		opts.Read = e.dataDir != ""
		opts.MaxOrder = src.MaxOrder
		h, err = e.data.Load(ctx, src.Dataset, opts)
	case src.File != "":
		h, err = readwrite.ReadJSONFile(src.File, src.MaxOrder)
	case src.Generator != "":
		var gen GeneratorFunc
		gen, err = e.registry.GetGenerator(src.Generator)
		if err != nil {
			return nil, err
		}
		h, err = gen(src.Params,
			generators.WithSeed(e.cfg.Seed),
			generators.WithLogger(e.logger),
			generators.WithName(src.Generator))
	default:
		return nil, ErrNoSource
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Describe(), err)
	}

	if e.cfg.Cleanup.Enabled {
		before := h.NumNodes()
		h = h.Cleanup(e.cfg.Cleanup.Options())
		e.logger.Debug("cleaned up hypergraph",
			zap.Int("nodes_before", before), zap.Int("nodes", h.NumNodes()), zap.Int("edges", h.NumEdges()))
	}
	return h, nil
}

// Compare fits the configured null model to h and reports degree
// assortativity for both.
func (e *Experiment) Compare(h *hypergraph.Hypergraph) (*Comparison, error) {
	nc := e.cfg.NullModel
	kind := nc.Kind
	if kind == "" {
		kind = config.DefaultNullModel
	}
	null, err := generators.NullModel(h, generators.NullKind(kind),
		generators.WithSeed(e.cfg.Seed), generators.WithLogger(e.logger))
	if err != nil {
		return nil, err
	}

	pairs, err := algorithms.ParsePairKind(nc.Pairs)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(e.cfg.Seed))
	c := &Comparison{Kind: kind, Observed: Summarize(h), Null: Summarize(null)}
	if c.Assortativity, err = algorithms.DegreeAssortativity(h, pairs, nc.Exact, nc.Samples, rng); err != nil {
		return nil, fmt.Errorf("observed: %w", err)
	}
	// the null model may leave nodes uncovered
	null = null.Cleanup(hypergraph.CleanupOptions{Multiedges: true, Singletons: true})
	if c.NullAssortativity, err = algorithms.DegreeAssortativity(null, pairs, nc.Exact, nc.Samples, rng); err != nil {
		return nil, fmt.Errorf("null model: %w", err)
	}
	return c, nil
}

func (e *Experiment) Layout(h *hypergraph.Hypergraph) (map[hypergraph.ID]layout.Position, error) {
	fn, err := e.registry.GetLayout(e.cfg.Layout.Name)
	if err != nil {
		return nil, err
	}
	lc := e.cfg.Layout.Config
	if lc.Seed == 0 {
		lc.Seed = e.cfg.Seed
	}
	return fn(h, lc), nil
}

// Simulate runs the Kuramoto model with the configured parameters. The
// config seed is used when the Kuramoto section does not set one.
func (e *Experiment) Simulate(ctx context.Context, h *hypergraph.Hypergraph) (*kuramoto.Trajectory, error) {
	p := e.cfg.Kuramoto
	if p.Seed == 0 {
		p.Seed = e.cfg.Seed
	}
	if _, err := e.registry.GetIntegrator(p.Integrator); err != nil {
		return nil, err
	}
	opts := []kuramoto.Option{kuramoto.WithLogger(e.logger), kuramoto.WithMetrics(e.metrics...)}
	for _, obs := range e.observers {
		opts = append(opts, kuramoto.WithObserver(obs))
	}
	return kuramoto.Simulate(ctx, h, p, opts...)
}

// Run executes every stage in order and stops at the first failure. A
// null model comparison that cannot be computed is logged and skipped.
func (e *Experiment) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	h, err := e.Build(ctx)
	if err != nil {
		return nil, err
	}
	rep := &Report{Source: e.cfg.Source.Describe(), Hypergraph: h, Summary: Summarize(h)}
	e.logger.Info("hypergraph ready",
		zap.String("source", rep.Source), zap.Int("nodes", rep.Summary.Nodes), zap.Int("edges", rep.Summary.Edges))

	if e.cfg.NullModel.Kind != "" {
		rep.Null, err = e.Compare(h)
		if err != nil {
			e.logger.Warn("null model comparison skipped", zap.Error(err))
		}
	}

	rep.Positions, err = e.Layout(h)
	if err != nil {
		return rep, err
	}
	if e.figure != nil {
		if err := draw.SVG(e.figure, h, rep.Positions, e.cfg.Draw); err != nil {
			return rep, fmt.Errorf("draw: %w", err)
		}
	}

	if !e.skipSim {
		rep.Trajectory, err = e.Simulate(ctx, h)
		if err != nil {
			return rep, err
		}
		e.logger.Info("simulation finished",
			zap.Int("timesteps", len(rep.Trajectory.Theta)), zap.Any("metrics", rep.Trajectory.Metrics))
	}
	rep.Elapsed = time.Since(start)
	return rep, nil
}
