package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/hyperlab/internal/hypergraph"
	"github.com/san-kum/hyperlab/internal/kuramoto"
	"github.com/san-kum/hyperlab/internal/metrics"
)

// GridSearch tries every combination of the listed coupling values and
// keeps the one with the largest metric.
type GridSearch struct {
	Params []string
	Ranges [][]float64
	Base   kuramoto.Params
	// Metric names a metrics.ByName metric; empty means mean_order.
	Metric string
}

type GridResult struct {
	Best  map[string]float64
	Value float64
	Runs  int
}

func NewGridSearch(params []string, ranges [][]float64, base kuramoto.Params) *GridSearch {
	return &GridSearch{Params: params, Ranges: ranges, Base: base}
}

func (g *GridSearch) Search(ctx context.Context, h *hypergraph.Hypergraph) (*GridResult, error) {
	if len(g.Params) != len(g.Ranges) {
		return nil, fmt.Errorf("%w: %d parameters but %d ranges", ErrBadSweep, len(g.Params), len(g.Ranges))
	}
	name := g.Metric
	if name == "" {
		name = "mean_order"
	}
	if _, ok := metrics.ByName(name); !ok {
		return nil, fmt.Errorf("%w: unknown metric %q", ErrBadSweep, name)
	}

	res := &GridResult{Value: math.Inf(-1)}
	err := g.searchRecursive(ctx, h, 0, map[string]float64{}, name, res)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, h *hypergraph.Hypergraph, depth int, current map[string]float64, metric string, res *GridResult) error {
	if depth == len(g.Params) {
		p := g.Base
		for k, v := range current {
			switch k {
			case "k2":
				p.K2 = v
			case "k3":
				p.K3 = v
			default:
				return fmt.Errorf("%w: unknown parameter %q", ErrBadSweep, k)
			}
		}
		m, _ := metrics.ByName(metric)
		if _, err := kuramoto.Simulate(ctx, h, p, kuramoto.WithMetrics(m)); err != nil {
			return err
		}
		res.Runs++
		if v := m.Value(); v > res.Value {
			res.Value = v
			res.Best = cloneParams(current)
		}
		return nil
	}

	name := g.Params[depth]
	for _, v := range g.Ranges[depth] {
		next := cloneParams(current)
		next[name] = v
		if err := g.searchRecursive(ctx, h, depth+1, next, metric, res); err != nil {
			return err
		}
	}
	return nil
}

func cloneParams(p map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	return out
}
