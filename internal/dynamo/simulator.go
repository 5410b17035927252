package dynamo

import (
	"context"
	"fmt"
	"math"
)

type Simulator struct {
	sys        System
	integrator Integrator
	metrics    []Metric
	observers  []Observer
}

func New(sys System, integrator Integrator) *Simulator {
	return &Simulator{sys: sys, integrator: integrator}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) System() System { return s.sys }

// Run integrates from x0 for cfg.Steps steps and records every state,
// x0 included. Metrics and observers see each recorded state. On a
// cancelled context or an invalid state the partial result comes back with
// the error.
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := s.validate(x0, cfg); err != nil {
		return nil, err
	}

	steps := cfg.Steps
	result := &Result{
		States:  make([]State, 0, steps+1),
		Times:   make([]float64, 0, steps+1),
		Metrics: make(map[string]float64, len(s.metrics)),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t, dt := 0.0, cfg.Dt
	s.record(result, x, t)

	var runErr error
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			runErr = fmt.Errorf("%w: %w", ErrContextCanceled, ctx.Err())
		default:
		}
		if runErr != nil {
			break
		}

		var next State
		used := dt
		if cfg.Adaptive {
			var err error
			next, used, dt, err = s.adaptiveStep(x, t, dt, cfg)
			if err != nil {
				runErr = &SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: err}
				break
			}
		} else {
			next = s.integrator.Step(s.sys, x, t, dt)
		}

		if cfg.ValidateState && !next.IsValid() {
			runErr = &SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: ErrInvalidState}
			break
		}

		x = next
		t += used
		result.StepsTaken++
		s.record(result, x, t)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, runErr
}

func (s *Simulator) record(r *Result, x State, t float64) {
	r.States = append(r.States, x.Clone())
	r.Times = append(r.Times, t)
	for _, m := range s.metrics {
		m.Observe(x, t)
	}
	for _, o := range s.observers {
		o.OnStep(x, t)
	}
}

func (s *Simulator) validate(x0 State, cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Steps < 0 {
		return fmt.Errorf("%w: steps must be non-negative, got %d", ErrInvalidConfig, cfg.Steps)
	}
	if cfg.Adaptive && cfg.Tolerance <= 0 {
		return fmt.Errorf("%w: tolerance must be positive for adaptive stepping", ErrInvalidConfig)
	}
	if dim := s.sys.StateDim(); len(x0) != dim {
		return fmt.Errorf("%w: state has %d entries, system wants %d", ErrDimensionMismatch, len(x0), dim)
	}
	return nil
}

// adaptiveStep returns the new state, the dt actually used and the dt to
// try next.
func (s *Simulator) adaptiveStep(x State, t, dt float64, cfg Config) (State, float64, float64, error) {
	if a, ok := s.integrator.(AdaptiveIntegrator); ok {
		for {
			next, proposed, err := a.StepAdaptive(s.sys, x, t, dt, cfg.Tolerance)
			if err != nil {
				return nil, 0, 0, err
			}
			if proposed >= dt || dt <= cfg.MinDt {
				return next, dt, clampDt(proposed, cfg), nil
			}
			dt = math.Max(proposed, cfg.MinDt)
		}
	}

	// step doubling
	for {
		full := s.integrator.Step(s.sys, x, t, dt)
		half := s.integrator.Step(s.sys, x, t, dt/2)
		two := s.integrator.Step(s.sys, half, t+dt/2, dt/2)
		errNorm := full.Sub(two).Norm()

		if errNorm > cfg.Tolerance {
			if dt/2 < cfg.MinDt {
				return nil, 0, 0, ErrStepTooSmall
			}
			dt /= 2
			continue
		}
		next := dt
		if errNorm < cfg.Tolerance/10 {
			next = dt * 2
		}
		return two, dt, clampDt(next, cfg), nil
	}
}

func clampDt(dt float64, cfg Config) float64 {
	if cfg.MaxDt > 0 && dt > cfg.MaxDt {
		return cfg.MaxDt
	}
	if dt < cfg.MinDt {
		return cfg.MinDt
	}
	return dt
}

// RunWithCallback steps until the callback returns false, the context is
// done or the configured steps run out. States go to fn instead of being
// recorded, and fn may keep them. Metrics and observers are not fed.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 State, cfg Config, fn func(x State, t float64) bool) error {
	if err := s.validate(x0, cfg); err != nil {
		return err
	}
	x, t := x0.Clone(), 0.0
	for i := 0; i <= cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrContextCanceled, ctx.Err())
		default:
		}
		if !fn(x, t) || i == cfg.Steps {
			return nil
		}
		x = s.integrator.Step(s.sys, x, t, cfg.Dt)
		t += cfg.Dt
		if cfg.ValidateState && !x.IsValid() {
			return &SimulationError{Step: i, Time: t, State: x, Wrapped: ErrInvalidState}
		}
	}
	return nil
}
