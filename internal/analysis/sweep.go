package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/hyperlab/internal/dynamo"
	"github.com/san-kum/hyperlab/internal/hypergraph"
	"github.com/san-kum/hyperlab/internal/integrators"
	"github.com/san-kum/hyperlab/internal/kuramoto"
	"github.com/san-kum/hyperlab/internal/metrics"
)

var ErrBadSweep = errors.New("analysis: invalid sweep")

// CouplingSweep varies one coupling over [Min, Max] in Steps values. Every
// run shares the natural frequencies and initial phases drawn from
// Base.Seed. Without Hysteresis each value starts from those phases; with
// it the sweep goes up and then back down, each run starting where the
// previous one ended.
type CouplingSweep struct {
	Param      string          `yaml:"param" validate:"oneof=k2 k3"`
	Min        float64         `yaml:"min"`
	Max        float64         `yaml:"max"`
	Steps      int             `yaml:"steps" validate:"gte=1"`
	Hysteresis bool            `yaml:"hysteresis"`
	Base       kuramoto.Params `yaml:"base"`
	// Transient is the fraction of each run left out of MeanR.
	Transient float64 `yaml:"transient" validate:"gte=0,lt=1"`
}

type SweepPoint struct {
	Value    float64 `json:"value"`
	MeanR    float64 `json:"mean_r"`
	FinalR   float64 `json:"final_r"`
	Backward bool    `json:"backward,omitempty"`
}

func (s CouplingSweep) values() []float64 {
	if s.Steps == 1 {
		return []float64{s.Min}
	}
	vs := make([]float64, s.Steps)
	step := (s.Max - s.Min) / float64(s.Steps-1)
	for i := range vs {
		vs[i] = s.Min + float64(i)*step
	}
	return vs
}

func (s CouplingSweep) validate() error {
	if s.Param != "k2" && s.Param != "k3" {
		return fmt.Errorf("%w: parameter %q is not k2 or k3", ErrBadSweep, s.Param)
	}
	if s.Steps < 1 {
		return fmt.Errorf("%w: steps=%d", ErrBadSweep, s.Steps)
	}
	if s.Transient < 0 || s.Transient >= 1 {
		return fmt.Errorf("%w: transient fraction %g not in [0, 1)", ErrBadSweep, s.Transient)
	}
	return s.Base.Validate()
}

// Run returns the forward points followed, with Hysteresis, by the
// backward ones.
func (s CouplingSweep) Run(ctx context.Context, h *hypergraph.Hypergraph) ([]SweepPoint, error) {
	if s.Base.Dt == 0 && s.Base.Timesteps == 0 {
		d := kuramoto.DefaultParams()
		s.Base.Dt, s.Base.Timesteps = d.Dt, d.Timesteps
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	model, theta0, err := kuramoto.New(h, s.Base)
	if err != nil {
		return nil, err
	}
	integ, err := integrators.New(s.Base.Integrator)
	if err != nil {
		return nil, err
	}

	mean := metrics.NewMeanOrderAfter(s.Transient * float64(s.Base.Timesteps-1) * s.Base.Dt)
	final := metrics.NewFinalOrder()
	sim := dynamo.New(model, integ)
	cfg := dynamo.Config{Dt: s.Base.Dt, Steps: max(1, s.Base.Timesteps-1), ValidateState: true}

	forward := s.values()
	order := forward
	if s.Hysteresis {
		for i := len(forward) - 1; i >= 0; i-- {
			order = append(order[:len(order):len(order)], forward[i])
		}
	}

	points := make([]SweepPoint, 0, len(order))
	x := theta0
	for i, v := range order {
		if err := model.SetParam(s.Param, v); err != nil {
			return nil, err
		}
		if !s.Hysteresis {
			x = theta0
		}
		mean.Reset()
		final.Reset()
		last := x
		err := sim.RunWithCallback(ctx, x, cfg, func(state dynamo.State, t float64) bool {
			mean.Observe(state, t)
			final.Observe(state, t)
			last = state
			return true
		})
		if err != nil {
			return points, fmt.Errorf("sweep %s=%g: %w", s.Param, v, err)
		}
		x = last
		points = append(points, SweepPoint{
			Value:    v,
			MeanR:    mean.Value(),
			FinalR:   final.Value(),
			Backward: i >= len(forward),
		})
	}
	return points, nil
}

// Branches splits points into the forward and backward series.
func Branches(points []SweepPoint) (forward, backward []SweepPoint) {
	for _, p := range points {
		if p.Backward {
			backward = append(backward, p)
		} else {
			forward = append(forward, p)
		}
	}
	return forward, backward
}

// PlotSweep charts mean r against the coupling, one line per branch. The
// backward branch is reversed so both run from low to high coupling.
func PlotSweep(points []SweepPoint, width, height int) string {
	if len(points) == 0 {
		return ""
	}
	forward, backward := Branches(points)
	series := [][]float64{meanRs(forward)}
	if len(backward) > 0 {
		b := meanRs(backward)
		for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
			b[i], b[j] = b[j], b[i]
		}
		series = append(series, b)
	}
	caption := fmt.Sprintf("mean r vs coupling %g..%g", forward[0].Value, forward[len(forward)-1].Value)
	return asciigraph.PlotMany(series,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(1),
		asciigraph.Precision(2),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red),
		asciigraph.Caption(caption))
}

func meanRs(points []SweepPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.MeanR
	}
	return out
}
