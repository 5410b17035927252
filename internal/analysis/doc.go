// Package analysis runs parameter studies on Kuramoto hypergraph dynamics.
//
//   - [CouplingSweep]: r against one coupling, with optional hysteresis
//   - [GridSearch]: the coupling combination maximising a run metric
//   - [LyapunovExponent]: largest exponent by trajectory separation
//   - [DominantFrequency]: strongest oscillation in a series such as r(t)
//
// # Explosive synchronisation
//
// Triadic coupling can make the transition discontinuous. Sweeping k3 up
// and back down with phases carried over shows it as two branches:
//
//	pts, _ := analysis.CouplingSweep{Param: "k3", Max: 5, Steps: 21, Hysteresis: true}.Run(ctx, h)
//	fmt.Print(analysis.PlotSweep(pts, 60, 12))
package analysis
