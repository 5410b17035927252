package analysis

import (
	"math"

	"github.com/san-kum/hyperlab/internal/dynamo"
)

// LyapunovExponent estimates the largest Lyapunov exponent by following a
// copy of x0 displaced by perturbation along the first axis and
// renormalising the separation after every step. Systems implementing
// dynamo.Projector have their neutral directions taken out of the
// separation first, so a phase-locked Kuramoto state gives a negative
// value instead of zero.
func LyapunovExponent(sys dynamo.System, integ dynamo.Integrator, x0 dynamo.State, dt float64, steps int, perturbation float64) float64 {
	n := len(x0)
	if n == 0 || steps <= 0 || perturbation <= 0 {
		return 0
	}
	proj, _ := sys.(dynamo.Projector)

	d := make(dynamo.State, n)
	d[0] = 1
	if proj != nil {
		proj.Project(d)
	}
	norm := d.Norm()
	if norm == 0 {
		// every direction is neutral
		return 0
	}
	x := x0.Clone()
	xp := x0.AddScaled(d, perturbation/norm)

	sumLog := 0.0
	t := 0.0
	for i := 0; i < steps; i++ {
		x = integ.Step(sys, x, t, dt)
		xp = integ.Step(sys, xp, t, dt)
		t += dt

		sep := xp.Sub(x)
		if proj != nil {
			proj.Project(sep)
		}
		dist := sep.Norm()
		if dist == 0 {
			// collapsed onto the reference trajectory
			return math.Inf(-1)
		}
		sumLog += math.Log(dist / perturbation)
		xp = x.AddScaled(sep, perturbation/dist)
	}
	return sumLog / (float64(steps) * dt)
}
