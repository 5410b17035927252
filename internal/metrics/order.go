// Package metrics summarises Kuramoto runs through the order parameter of
// every visited state.
package metrics

import (
	"math"

	"github.com/san-kum/hyperlab/internal/dynamo"
	"github.com/san-kum/hyperlab/internal/kuramoto"
)

// MeanOrder averages r over states at or after a start time, so that a
// transient can be skipped.
type MeanOrder struct {
	from    float64
	sum     float64
	samples int
}

func NewMeanOrder() *MeanOrder { return &MeanOrder{} }

func NewMeanOrderAfter(t0 float64) *MeanOrder { return &MeanOrder{from: t0} }

func (m *MeanOrder) Name() string { return "mean_order" }

func (m *MeanOrder) Observe(x dynamo.State, t float64) {
	if t < m.from {
		return
	}
	m.sum += kuramoto.Order(x)
	m.samples++
}

func (m *MeanOrder) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanOrder) Reset() {
	m.sum = 0
	m.samples = 0
}

type FinalOrder struct {
	last float64
}

func NewFinalOrder() *FinalOrder { return &FinalOrder{} }

func (f *FinalOrder) Name() string                      { return "final_order" }
func (f *FinalOrder) Observe(x dynamo.State, _ float64) { f.last = kuramoto.Order(x) }
func (f *FinalOrder) Value() float64                    { return f.last }
func (f *FinalOrder) Reset()                            { f.last = 0 }

// OrderFluctuation is the population standard deviation of r, kept with
// Welford's update.
type OrderFluctuation struct {
	n    int
	mean float64
	m2   float64
}

func NewOrderFluctuation() *OrderFluctuation { return &OrderFluctuation{} }

func (o *OrderFluctuation) Name() string { return "order_fluctuation" }

func (o *OrderFluctuation) Observe(x dynamo.State, _ float64) {
	r := kuramoto.Order(x)
	o.n++
	delta := r - o.mean
	o.mean += delta / float64(o.n)
	o.m2 += delta * (r - o.mean)
}

func (o *OrderFluctuation) Value() float64 {
	if o.n == 0 {
		return 0
	}
	return math.Sqrt(o.m2 / float64(o.n))
}

func (o *OrderFluctuation) Reset() {
	o.n, o.mean, o.m2 = 0, 0, 0
}

// SyncFraction is the share of states whose r reaches the threshold.
type SyncFraction struct {
	threshold float64
	hits      int
	samples   int
}

func NewSyncFraction(threshold float64) *SyncFraction {
	return &SyncFraction{threshold: threshold}
}

func (s *SyncFraction) Name() string { return "sync_fraction" }

func (s *SyncFraction) Observe(x dynamo.State, _ float64) {
	s.samples++
	if kuramoto.Order(x) >= s.threshold {
		s.hits++
	}
}

func (s *SyncFraction) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.hits) / float64(s.samples)
}

func (s *SyncFraction) Reset() {
	s.hits = 0
	s.samples = 0
}

// Standard is the set recorded for every stored run.
func Standard() []dynamo.Metric {
	return []dynamo.Metric{NewMeanOrder(), NewFinalOrder(), NewOrderFluctuation(), NewSyncFraction(0.9)}
}

// ByName builds a single metric; ok is false for unknown names.
func ByName(name string) (dynamo.Metric, bool) {
	switch name {
	case "mean_order":
		return NewMeanOrder(), true
	case "final_order":
		return NewFinalOrder(), true
	case "order_fluctuation":
		return NewOrderFluctuation(), true
	case "sync_fraction":
		return NewSyncFraction(0.9), true
	}
	return nil, false
}
