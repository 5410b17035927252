package kuramoto

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/hyperlab/internal/dynamo"
	"github.com/san-kum/hyperlab/internal/hypergraph"
	"github.com/san-kum/hyperlab/internal/integrators"
)

// Trajectory holds the phases at times 0, dt, ..., (T-1)dt, one row per
// time and one column per node. With adaptive stepping Times lists the
// uneven times actually visited.
type Trajectory struct {
	Nodes   []hypergraph.ID
	Omega   []float64
	Theta   [][]float64
	Times   []float64
	Metrics map[string]float64
}

func (t *Trajectory) OrderParameter() []float64 { return OrderParameter(t.Theta) }

// Final is the last recorded phase vector.
func (t *Trajectory) Final() []float64 {
	if len(t.Theta) == 0 {
		return nil
	}
	return t.Theta[len(t.Theta)-1]
}

type Option func(*options)

type options struct {
	metrics   []dynamo.Metric
	observers []dynamo.Observer
	logger    *zap.Logger
}

func WithMetrics(ms ...dynamo.Metric) Option {
	return func(o *options) { o.metrics = append(o.metrics, ms...) }
}

func WithObserver(obs dynamo.Observer) Option {
	return func(o *options) { o.observers = append(o.observers, obs) }
}

func WithLogger(l *zap.Logger) Option {
	if l == nil {
		panic("kuramoto: WithLogger(nil)")
	}
	return func(o *options) { o.logger = l }
}

// Simulate integrates the model for p.Timesteps-1 steps and returns every
// state visited. The state after the last step is not computed.
func Simulate(ctx context.Context, h *hypergraph.Hypergraph, p Params, opts ...Option) (*Trajectory, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	model, theta0, err := New(h, p)
	if err != nil {
		return nil, err
	}
	integ, err := integrators.New(p.Integrator)
	if err != nil {
		return nil, err
	}

	sim := dynamo.New(model, integ)
	for _, m := range o.metrics {
		sim.AddMetric(m)
	}
	for _, obs := range o.observers {
		sim.AddObserver(obs)
	}

	o.logger.Debug("simulating kuramoto",
		zap.Int("nodes", model.StateDim()),
		zap.Float64("k2", p.K2), zap.Float64("k3", p.K3),
		zap.Float64("dt", p.Dt), zap.Int("timesteps", p.Timesteps))

	traj := &Trajectory{Nodes: model.Nodes(), Omega: model.Omega()}
	var res *dynamo.Result
	if p.Timesteps == 1 {
		res = oneState(theta0, o)
	} else {
		res, err = sim.Run(ctx, theta0, runConfig(p))
	}
	if res != nil {
		traj.Theta = make([][]float64, len(res.States))
		traj.Times = make([]float64, len(res.States))
		for i, s := range res.States {
			traj.Theta[i] = s
			traj.Times[i] = float64(i) * p.Dt
			if p.Adaptive {
				traj.Times[i] = res.Times[i]
			}
		}
		traj.Metrics = res.Metrics
	}
	if err != nil {
		return traj, fmt.Errorf("kuramoto: %w", err)
	}
	return traj, nil
}

func runConfig(p Params) dynamo.Config {
	cfg := dynamo.Config{Dt: p.Dt, Steps: p.Timesteps - 1, ValidateState: true}
	if p.Adaptive {
		cfg.Adaptive = true
		cfg.Tolerance = p.Tolerance
		cfg.MinDt = p.Dt * 1e-6
		cfg.MaxDt = p.Dt * 10
	}
	return cfg
}

// oneState handles T = 1, where there is nothing to integrate.
func oneState(theta0 dynamo.State, o options) *dynamo.Result {
	res := &dynamo.Result{
		States:  []dynamo.State{theta0},
		Times:   []float64{0},
		Metrics: make(map[string]float64, len(o.metrics)),
	}
	for _, m := range o.metrics {
		m.Reset()
		m.Observe(theta0, 0)
		res.Metrics[m.Name()] = m.Value()
	}
	for _, obs := range o.observers {
		obs.OnStep(theta0, 0)
	}
	return res
}
