package dynamo

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
)

type decay struct{ rate float64 }

func (d *decay) Derive(x State, _ float64) State { return State{-d.rate * x[0]} }
func (d *decay) StateDim() int                   { return 1 }

type euler struct{}

func (euler) Step(sys System, x State, t, dt float64) State {
	return x.AddScaled(sys.Derive(x, t), dt)
}

type meanMetric struct {
	count int
	sum   float64
}

func (m *meanMetric) Name() string   { return "mean" }
func (m *meanMetric) Value() float64 { return m.sum / float64(m.count) }
func (m *meanMetric) Reset()         { m.count, m.sum = 0, 0 }

func (m *meanMetric) Observe(x State, _ float64) {
	m.count++
	m.sum += x[0]
}

func TestStateIsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"empty", State{}, true},
		{"normal", State{1, 2, 3}, true},
		{"with NaN", State{1, math.NaN()}, false},
		{"with +Inf", State{1, math.Inf(1)}, false},
		{"with -Inf", State{math.Inf(-1)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestStateArithmetic(t *testing.T) {
	a := State{1, 2}
	b := State{3, 4}
	if got := a.AddScaled(b, 2); got[0] != 7 || got[1] != 10 {
		t.Errorf("AddScaled = %v", got)
	}
	if got := b.Sub(a); got[0] != 2 || got[1] != 2 {
		t.Errorf("Sub = %v", got)
	}
	if got := b.Norm(); got != 5 {
		t.Errorf("Norm = %v", got)
	}
}

func TestSimulatorRun(t *testing.T) {
	s := New(&decay{rate: 1}, euler{})
	m := &meanMetric{}
	s.AddMetric(m)

	res, err := s.Run(context.Background(), State{1}, Config{Dt: 0.1, Steps: 10})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(res.States) != 11 || len(res.Times) != 11 {
		t.Fatalf("expected 11 records, got %d states and %d times", len(res.States), len(res.Times))
	}
	if m.count != 11 {
		t.Errorf("expected 11 observations, got %d", m.count)
	}
	if want := math.Pow(0.9, 10); math.Abs(res.Final()[0]-want) > 1e-12 {
		t.Errorf("final = %v, want %v", res.Final()[0], want)
	}
	if math.Abs(res.Times[10]-1.0) > 1e-12 {
		t.Errorf("last time = %v", res.Times[10])
	}
	if _, ok := res.Metrics["mean"]; !ok {
		t.Error("metric missing from result")
	}
}

func TestSimulatorZeroSteps(t *testing.T) {
	s := New(&decay{rate: 1}, euler{})
	res, err := s.Run(context.Background(), State{1}, Config{Dt: 0.1})
	if err != nil {
		t.Fatal(err)
	}
	if res.StepsTaken != 0 || len(res.States) != 1 {
		t.Errorf("steps = %d, states = %d", res.StepsTaken, len(res.States))
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	s := New(&decay{rate: 1}, euler{})
	tests := []struct {
		name string
		x0   State
		cfg  Config
		want error
	}{
		{"zero dt", State{1}, Config{Dt: 0, Steps: 1}, ErrInvalidConfig},
		{"negative steps", State{1}, Config{Dt: 0.1, Steps: -1}, ErrInvalidConfig},
		{"adaptive without tolerance", State{1}, Config{Dt: 0.1, Steps: 1, Adaptive: true}, ErrInvalidConfig},
		{"wrong dimension", State{1, 2}, Config{Dt: 0.1, Steps: 1}, ErrDimensionMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Run(context.Background(), tt.x0, tt.cfg); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSimulatorDetectsBlowUp(t *testing.T) {
	s := New(&decay{rate: -1e300}, euler{})
	cfg := Config{Dt: 1, Steps: 10, ValidateState: true}
	res, err := s.Run(context.Background(), State{1e300}, cfg)

	var simErr *SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected SimulationError, got %v", err)
	}
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
	if simErr.Step != 0 || len(res.States) != 1 {
		t.Errorf("step %d, %d states", simErr.Step, len(res.States))
	}
}

func TestSimulatorCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := New(&decay{rate: 1}, euler{})
	res, err := s.Run(ctx, State{1}, Config{Dt: 0.1, Steps: 100})
	if !errors.Is(err, ErrContextCanceled) || !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if len(res.States) != 1 {
		t.Errorf("expected only the initial state, got %d", len(res.States))
	}
}

func TestSimulatorAdaptiveStepDoubling(t *testing.T) {
	s := New(&decay{rate: 1}, euler{})
	cfg := Config{Dt: 0.1, Steps: 50, Adaptive: true, Tolerance: 1e-4, MinDt: 1e-8, MaxDt: 0.5}
	res, err := s.Run(context.Background(), State{1}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(res.Times); i++ {
		if res.Times[i] <= res.Times[i-1] {
			t.Fatalf("time not increasing at %d", i)
		}
	}
	want := math.Exp(-res.Times[len(res.Times)-1])
	if math.Abs(res.Final()[0]-want) > 1e-2 {
		t.Errorf("final %v, want about %v", res.Final()[0], want)
	}
}

func TestRunWithCallback(t *testing.T) {
	s := New(&decay{rate: 1}, euler{})
	calls := 0
	err := s.RunWithCallback(context.Background(), State{1}, Config{Dt: 0.1, Steps: 5}, func(State, float64) bool {
		calls++
		return true
	})
	if err != nil || calls != 6 {
		t.Errorf("calls = %d, err = %v", calls, err)
	}

	calls = 0
	_ = s.RunWithCallback(context.Background(), State{1}, Config{Dt: 0.1, Steps: 5}, func(State, float64) bool {
		calls++
		return calls < 3
	})
	if calls != 3 {
		t.Errorf("stop after false: calls = %d", calls)
	}
}

func TestEnsemble(t *testing.T) {
	var built int32
	factory := func(seed int64) (*Simulator, State, error) {
		atomic.AddInt32(&built, 1)
		s := New(&decay{rate: float64(seed)}, euler{})
		s.AddMetric(&meanMetric{})
		return s, State{1}, nil
	}
	results, err := NewEnsemble(factory, 4, 1).Run(context.Background(), Config{Dt: 0.1, Steps: 3})
	if err != nil {
		t.Fatal(err)
	}
	if built != 4 || len(results) != 4 {
		t.Fatalf("built %d, results %d", built, len(results))
	}
	for i, r := range results {
		want := math.Pow(1-0.1*float64(i+1), 3)
		if math.Abs(r.Final()[0]-want) > 1e-12 {
			t.Errorf("run %d final %v, want %v", i, r.Final()[0], want)
		}
	}

	boom := errors.New("boom")
	_, err = NewEnsemble(func(int64) (*Simulator, State, error) { return nil, nil, boom }, 2, 0).Run(context.Background(), Config{Dt: 0.1, Steps: 1})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
}

func TestParallelFor(t *testing.T) {
	for _, n := range []int{0, 1, 7, 1000} {
		seen := make([]int32, n)
		ParallelFor(n, 16, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&seen[i], 1)
			}
		})
		for i, c := range seen {
			if c != 1 {
				t.Fatalf("n=%d: index %d visited %d times", n, i, c)
			}
		}
	}
}
