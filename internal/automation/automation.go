package automation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/hyperlab/internal/config"
	"github.com/san-kum/hyperlab/internal/dynamo"
	"github.com/san-kum/hyperlab/internal/experiment"
	"github.com/san-kum/hyperlab/internal/hypergraph"
	"github.com/san-kum/hyperlab/internal/integrators"
	"github.com/san-kum/hyperlab/internal/kuramoto"
	"github.com/san-kum/hyperlab/internal/metrics"
	"github.com/san-kum/hyperlab/internal/store"
)

var (
	ErrEmptyScenario = errors.New("automation: scenario has no steps")
	ErrUnknownPreset = errors.New("automation: unknown preset")
)

// Scenario is a scripted sequence of pipeline runs. Defaults apply to
// every step before the step's own config.
type Scenario struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Defaults    yaml.Node `yaml:"defaults"`
	Steps       []Step    `yaml:"steps"`
}

// Step is one pipeline run.
type Step struct {
	Name string `yaml:"name"`
	// Preset is "generator/regime", e.g. "chung_lu/sync".
	Preset     string    `yaml:"preset"`
	Config     yaml.Node `yaml:"config"`
	Figure     string    `yaml:"figure"`
	Save       bool      `yaml:"save"`
	NoDynamics bool      `yaml:"no_dynamics"`
}

type StepReport struct {
	Index   int
	Name    string
	Source  string
	Summary experiment.Summary
	Null    *experiment.Comparison
	Metrics map[string]float64
	RunID   string
	Figure  string
	Elapsed time.Duration
	Err     error
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, ErrEmptyScenario
	}
	return &scenario, nil
}

type Option func(*runner)

type runner struct {
	registry  *experiment.Registry
	store     *store.Store
	logger    *zap.Logger
	expOpts   []experiment.Option
	keepGoing bool
}

func WithRegistry(r *experiment.Registry) Option {
	return func(rn *runner) { rn.registry = r }
}

// WithStore persists the trajectories of steps marked save.
func WithStore(s *store.Store) Option {
	return func(rn *runner) { rn.store = s }
}

func WithLogger(l *zap.Logger) Option {
	if l == nil {
		panic("automation: WithLogger(nil)")
	}
	return func(rn *runner) { rn.logger = l }
}

// WithExperimentOptions are passed to every step's experiment.
func WithExperimentOptions(opts ...experiment.Option) Option {
	return func(rn *runner) { rn.expOpts = append(rn.expOpts, opts...) }
}

// KeepGoing records a failing step in its report and moves on.
func KeepGoing() Option {
	return func(rn *runner) { rn.keepGoing = true }
}

// RunScenario executes all steps in order. Without KeepGoing it stops at
// the first failure and returns the reports gathered so far.
func RunScenario(ctx context.Context, scenario *Scenario, opts ...Option) ([]StepReport, error) {
	rn := &runner{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(rn)
	}
	if rn.registry == nil {
		rn.registry = experiment.NewRegistry()
	}

	base := config.DefaultConfig()
	if scenario.Defaults.Kind != 0 {
		var err error
		if base, err = config.Overlay(base, &scenario.Defaults); err != nil {
			return nil, fmt.Errorf("defaults: %w", err)
		}
	}

	reports := make([]StepReport, 0, len(scenario.Steps))
	var failed error
	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		rn.logger.Info("running step",
			zap.Int("step", i+1), zap.Int("of", len(scenario.Steps)), zap.String("name", step.Name))

		rep := rn.runStep(ctx, base, i+1, step)
		reports = append(reports, rep)
		if rep.Err != nil {
			if !rn.keepGoing {
				return reports, fmt.Errorf("step %d: %w", i+1, rep.Err)
			}
			rn.logger.Warn("step failed", zap.Int("step", i+1), zap.Error(rep.Err))
			if failed == nil {
				failed = fmt.Errorf("step %d: %w", i+1, rep.Err)
			}
		}
	}
	return reports, failed
}

func (rn *runner) runStep(ctx context.Context, base *config.Config, index int, step Step) StepReport {
	rep := StepReport{Index: index, Name: step.Name, Figure: step.Figure}
	if rep.Name == "" {
		rep.Name = fmt.Sprintf("step-%d", index)
	}

	cfg, err := stepConfig(base, step)
	if err != nil {
		rep.Err = err
		return rep
	}

	opts := append([]experiment.Option{
		experiment.WithRegistry(rn.registry),
		experiment.WithLogger(rn.logger.With(zap.String("step", rep.Name))),
	}, rn.expOpts...)
	var fig bytes.Buffer
	if step.Figure != "" {
		opts = append(opts, experiment.WithFigure(&fig))
	}
	if step.NoDynamics {
		opts = append(opts, experiment.WithoutDynamics())
	}

	res, err := experiment.New(cfg, opts...).Run(ctx)
	if res != nil {
		rep.Source = res.Source
		rep.Summary = res.Summary
		rep.Null = res.Null
		rep.Elapsed = res.Elapsed
		if res.Trajectory != nil {
			rep.Metrics = res.Trajectory.Metrics
		}
	}
	if err != nil {
		rep.Err = err
		return rep
	}

	if step.Figure != "" {
		if err := os.WriteFile(step.Figure, fig.Bytes(), 0644); err != nil {
			rep.Err = err
			return rep
		}
	}
	if step.Save && rn.store != nil && res.Trajectory != nil {
		p := cfg.Kuramoto
		if p.Seed == 0 {
			p.Seed = cfg.Seed
		}
		meta := store.NewMetadata(res.Source, p, res.Hypergraph, res.Trajectory)
		if rep.RunID, err = rn.store.Save(meta, res.Trajectory); err != nil {
			rep.Err = err
		}
	}
	return rep
}

func stepConfig(base *config.Config, step Step) (*config.Config, error) {
	cfg := base
	if step.Preset != "" {
		gen, regime, ok := strings.Cut(step.Preset, "/")
		preset := config.GetPreset(gen, regime)
		if !ok || preset == nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, step.Preset)
		}
		cfg = preset
	}
	if step.Config.Kind == 0 {
		return cfg.Clone(), cfg.Validate()
	}
	return config.Overlay(cfg, &step.Config)
}

// TrialResult summarises one member of a seed ensemble.
type TrialResult struct {
	Seed   int64
	MeanR  float64
	FinalR float64
	Synced bool
}

// RunEnsemble simulates the same hypergraph for trials consecutive seeds
// starting at p.Seed. Each seed draws its own frequencies and phases unless
// p fixes them. A trial is synced when its final order parameter reaches
// threshold.
func RunEnsemble(ctx context.Context, h *hypergraph.Hypergraph, p kuramoto.Params, trials int, threshold float64) ([]TrialResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	factory := func(seed int64) (*dynamo.Simulator, dynamo.State, error) {
		q := p
		q.Seed = seed
		model, theta0, err := kuramoto.New(h, q)
		if err != nil {
			return nil, nil, err
		}
		integ, err := integrators.New(q.Integrator)
		if err != nil {
			return nil, nil, err
		}
		sim := dynamo.New(model, integ)
		sim.AddMetric(metrics.NewMeanOrder())
		sim.AddMetric(metrics.NewFinalOrder())
		return sim, theta0, nil
	}

	steps := max(p.Timesteps-1, 0)
	runs, err := dynamo.NewEnsemble(factory, trials, p.Seed).Run(ctx, dynamo.Config{Dt: p.Dt, Steps: steps})
	if err != nil {
		return nil, err
	}

	results := make([]TrialResult, len(runs))
	for i, res := range runs {
		final := kuramoto.Order(res.Final())
		results[i] = TrialResult{
			Seed:   p.Seed + int64(i),
			MeanR:  res.Metrics["mean_order"],
			FinalR: final,
			Synced: final >= threshold,
		}
	}
	return results, nil
}

// EnsembleStats counts synced and unsynced trials.
func EnsembleStats(results []TrialResult) (synced int, unsynced int) {
	for _, r := range results {
		if r.Synced {
			synced++
		} else {
			unsynced++
		}
	}
	return
}
