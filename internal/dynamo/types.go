package dynamo

import (
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// AddScaled returns s + f*other.
func (s State) AddScaled(other State, f float64) State {
	out := make(State, len(s))
	for i := range s {
		out[i] = s[i] + f*other[i]
	}
	return out
}

func (s State) Sub(other State) State {
	out := make(State, len(s))
	for i := range s {
		out[i] = s[i] - other[i]
	}
	return out
}

// System is an autonomous or time-dependent ODE.
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Integrator interface {
	Step(sys System, x State, t, dt float64) State
}

// AdaptiveIntegrator also proposes the next step size.
type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(sys System, x State, t, dt, tol float64) (State, float64, error)
}

// Metric folds the visited states into one number.
type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, t float64)
}

// Projector is implemented by systems with neutral directions, such as a
// uniform phase shift. Project removes those directions from a tangent
// vector in place.
type Projector interface {
	Project(d State)
}

// Configurable systems expose tunable parameters by name.
type Configurable interface {
	Params() map[string]float64
	SetParam(name string, value float64) error
}

type Config struct {
	Dt    float64
	Steps int
	Seed  int64
	// Adaptive lets the integrator pick each dt within [MinDt, MaxDt] so the
	// local error stays under Tolerance. Steps still counts steps taken.
	Adaptive      bool
	Tolerance     float64
	MinDt         float64
	MaxDt         float64
	ValidateState bool
}

type Result struct {
	States     []State
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
}

// Final is the last recorded state.
func (r *Result) Final() State {
	if len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}
