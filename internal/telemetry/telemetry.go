// Package telemetry exposes hypergraph and simulation figures as
// Prometheus gauges in a node-exporter textfile.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Registry struct {
	registry *prometheus.Registry

	Nodes    *prometheus.GaugeVec
	Edges    *prometheus.GaugeVec
	MaxOrder *prometheus.GaugeVec

	SimulationMetric   *prometheus.GaugeVec
	SimulationDuration *prometheus.GaugeVec
	RunsTotal          *prometheus.CounterVec
}

func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{registry: reg}

	r.Nodes = promauto.With(reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hyperlab_hypergraph_nodes",
			Help: "Number of nodes in the hypergraph",
		},
		[]string{"source"},
	)
	r.Edges = promauto.With(reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hyperlab_hypergraph_edges",
			Help: "Number of edges in the hypergraph",
		},
		[]string{"source"},
	)
	r.MaxOrder = promauto.With(reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hyperlab_hypergraph_max_order",
			Help: "Largest edge order in the hypergraph",
		},
		[]string{"source"},
	)

	r.SimulationMetric = promauto.With(reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hyperlab_simulation_metric",
			Help: "Final value of a simulation metric such as mean_order",
		},
		[]string{"source", "metric"},
	)
	r.SimulationDuration = promauto.With(reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hyperlab_simulation_duration_seconds",
			Help: "Wall time of the last simulation",
		},
		[]string{"source"},
	)
	r.RunsTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "hyperlab_runs_total",
			Help: "Simulations run, by outcome",
		},
		[]string{"outcome"}, // ok, error
	)
	return r
}

func (r *Registry) Gatherer() prometheus.Gatherer { return r.registry }

func (r *Registry) ObserveShape(source string, nodes, edges, maxOrder int) {
	r.Nodes.WithLabelValues(source).Set(float64(nodes))
	r.Edges.WithLabelValues(source).Set(float64(edges))
	r.MaxOrder.WithLabelValues(source).Set(float64(maxOrder))
}

func (r *Registry) ObserveRun(source string, metrics map[string]float64, elapsed time.Duration, err error) {
	if err != nil {
		r.RunsTotal.WithLabelValues("error").Inc()
		return
	}
	r.RunsTotal.WithLabelValues("ok").Inc()
	for name, v := range metrics {
		r.SimulationMetric.WithLabelValues(source, name).Set(v)
	}
	r.SimulationDuration.WithLabelValues(source).Set(elapsed.Seconds())
}

// WriteTextfile writes the current values atomically to path. An empty
// path is a no-op.
func (r *Registry) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
