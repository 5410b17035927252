package integrators

import "github.com/san-kum/hyperlab/internal/dynamo"

// RK4 is the classic fourth-order Runge-Kutta scheme. It reuses scratch
// buffers, so one value must not be shared between goroutines.
type RK4 struct {
	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(dynamo.State, n)
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.k4 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
}

// stage fills scratch with x + h*k and evaluates the system there.
func (r *RK4) stage(sys dynamo.System, x, k dynamo.State, t, h float64, dst dynamo.State) {
	for i := range x {
		r.scratch[i] = x[i] + h*k[i]
	}
	copy(dst, sys.Derive(r.scratch, t))
}

func (r *RK4) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	r.ensureScratch(n)

	copy(r.k1, sys.Derive(x, t))
	r.stage(sys, x, r.k1, t+dt/2, dt/2, r.k2)
	r.stage(sys, x, r.k2, t+dt/2, dt/2, r.k3)
	r.stage(sys, x, r.k3, t+dt, dt, r.k4)

	out := make(dynamo.State, n)
	dt6 := dt / 6
	for i := 0; i < n; i++ {
		out[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}
	return out
}
