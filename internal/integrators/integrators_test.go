package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/hyperlab/internal/dynamo"
)

type oscillator struct{}

func (oscillator) StateDim() int { return 2 }

func (oscillator) Derive(x dynamo.State, _ float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func energy(x dynamo.State) float64 { return 0.5 * (x[0]*x[0] + x[1]*x[1]) }

func integrate(integ dynamo.Integrator, steps int, dt float64) dynamo.State {
	x := dynamo.State{1, 0}
	for i := 0; i < steps; i++ {
		x = integ.Step(oscillator{}, x, float64(i)*dt, dt)
	}
	return x
}

func TestEulerMatchesClosedForm(t *testing.T) {
	// x' = v, v' = -x from (1, 1)
	x := NewEuler().Step(oscillator{}, dynamo.State{1, 1}, 0, 0.5)
	if x[0] != 1.5 || x[1] != 0.5 {
		t.Errorf("got %v", x)
	}
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name string
		tol  float64
	}{
		{"euler", 1e-1},
		{"rk4", 1e-8},
		{"rk45", 1e-8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			integ, err := New(tt.name)
			if err != nil {
				t.Fatal(err)
			}
			x := integrate(integ, 100, 0.01)
			if d := math.Abs(x[0] - math.Cos(1)); d > tt.tol {
				t.Errorf("position error %e > %e", d, tt.tol)
			}
			if d := math.Abs(x[1] + math.Sin(1)); d > tt.tol {
				t.Errorf("velocity error %e > %e", d, tt.tol)
			}
		})
	}
}

func TestRK45EnergyConservation(t *testing.T) {
	x := integrate(NewRK45(), 10000, 0.01)
	if drift := math.Abs(energy(x)-0.5) / 0.5; drift > 1e-6 {
		t.Errorf("energy drift too high: %e", drift)
	}
}

func TestRK45ProposesStep(t *testing.T) {
	integ := NewRK45()
	x, loose, err := integ.StepAdaptive(oscillator{}, dynamo.State{1, 0}, 0, 0.1, 1e-3)
	if err != nil || !x.IsValid() {
		t.Fatalf("x=%v err=%v", x, err)
	}
	_, tight, _ := integ.StepAdaptive(oscillator{}, dynamo.State{1, 0}, 0, 0.1, 1e-14)
	if loose <= 0.1 {
		t.Errorf("loose tolerance should grow dt, got %g", loose)
	}
	if tight >= 0.1 {
		t.Errorf("tight tolerance should shrink dt, got %g", tight)
	}
}

func TestRegistry(t *testing.T) {
	if got := Names(); len(got) != 3 || got[0] != "euler" {
		t.Errorf("Names() = %v", got)
	}
	integ, err := New("")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := integ.(*Euler); !ok {
		t.Errorf("default is %T", integ)
	}
	a, _ := New("rk4")
	b, _ := New("rk4")
	if a == b {
		t.Error("rk4 instances are shared")
	}
	if _, err := New("leapfrog"); !errors.Is(err, ErrUnknownIntegrator) {
		t.Errorf("err = %v", err)
	}
}

func BenchmarkIntegrators(b *testing.B) {
	for _, name := range Names() {
		b.Run(name, func(b *testing.B) {
			integ, _ := New(name)
			x := dynamo.State{1, 0}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				x = integ.Step(oscillator{}, x, 0, 0.01)
			}
		})
	}
}
