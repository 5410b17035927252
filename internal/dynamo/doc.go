// Package dynamo provides the simulation primitives the dynamics packages
// build on.
//
//   - [State]: a flat vector of state variables
//   - [System]: an ODE dX/dt = f(X, t)
//   - [Integrator]: one numerical step of a System
//   - [Metric] and [Observer]: per-step hooks
//   - [Simulator]: runs a System from an initial state
//   - [Ensemble]: many independent runs in parallel
//
// # Example
//
//	sys, x0, _ := kuramoto.New(h, params)
//	s := dynamo.New(sys, integrators.NewEuler())
//	s.AddMetric(metrics.NewMeanOrder())
//	res, err := s.Run(ctx, x0, dynamo.Config{Dt: 0.002, Steps: 9999})
//
// # Thread Safety
//
// A Simulator and its metrics belong to one goroutine. Ensemble builds a
// fresh Simulator per run through its factory.
package dynamo
