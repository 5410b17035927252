// Package stats computes per-node and per-edge statistics of a hypergraph
// and converts them to maps, slices, numeric arrays and tables.
//
// A [Stat] is a snapshot: it pairs the IDs present at computation time with
// one value each, in the hypergraph's insertion order. Aggregates and
// filters work on that snapshot.
package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/san-kum/hyperlab/internal/hypergraph"
)

type ID = hypergraph.ID

// Kind tells whether a stat is indexed by nodes or by edges.
type Kind int

const (
	NodeKind Kind = iota
	EdgeKind
)

func (k Kind) String() string {
	if k == EdgeKind {
		return "edge"
	}
	return "node"
}

type Stat struct {
	Name   string
	Kind   Kind
	ids    []ID
	values []any
}

func newStat(name string, kind Kind, ids []ID, values []any) *Stat {
	return &Stat{Name: name, Kind: kind, ids: ids, values: values}
}

func (s *Stat) Len() int { return len(s.ids) }

func (s *Stat) IDs() []ID { return append([]ID(nil), s.ids...) }

// Get returns the value for one ID.
func (s *Stat) Get(id ID) (any, bool) {
	for i, x := range s.ids {
		if x == id {
			return s.values[i], true
		}
	}
	return nil, false
}

func (s *Stat) AsMap() map[ID]any {
	m := make(map[ID]any, len(s.ids))
	for i, id := range s.ids {
		m[id] = s.values[i]
	}
	return m
}

func (s *Stat) AsSlice() []any { return append([]any(nil), s.values...) }

// AsArray converts every value to float64.
func (s *Stat) AsArray() ([]float64, error) {
	out := make([]float64, len(s.values))
	for i, v := range s.values {
		f, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("%w: %s of %s is %T", ErrNotNumeric, s.Name, s.ids[i], v)
		}
		out[i] = f
	}
	return out, nil
}

// AsInts truncates AsArray to ints; handy for degree and size stats.
func (s *Stat) AsInts() ([]int, error) {
	xs, err := s.AsArray()
	if err != nil {
		return nil, err
	}
	return lo.Map(xs, func(x float64, _ int) int { return int(x) }), nil
}

// AsTable returns a one-column table.
func (s *Stat) AsTable() *Table {
	t, _ := NewTable(s)
	return t
}

func (s *Stat) numeric() ([]float64, error) {
	xs, err := s.AsArray()
	if err != nil {
		return nil, err
	}
	if len(xs) == 0 {
		return nil, fmt.Errorf("%s: %w", s.Name, ErrEmpty)
	}
	return xs, nil
}

func (s *Stat) Max() (float64, error) {
	xs, err := s.numeric()
	if err != nil {
		return 0, err
	}
	m, _ := Max(xs)
	return m, nil
}

func (s *Stat) Min() (float64, error) {
	xs, err := s.numeric()
	if err != nil {
		return 0, err
	}
	m, _ := Min(xs)
	return m, nil
}

// Sum of an empty stat is 0.
func (s *Stat) Sum() (float64, error) {
	xs, err := s.AsArray()
	if err != nil {
		return 0, err
	}
	return Sum(xs), nil
}

func (s *Stat) Mean() (float64, error) {
	xs, err := s.numeric()
	if err != nil {
		return 0, err
	}
	return Mean(xs), nil
}

func (s *Stat) Median() (float64, error) {
	xs, err := s.numeric()
	if err != nil {
		return 0, err
	}
	return Median(xs), nil
}

func (s *Stat) Var() (float64, error) {
	xs, err := s.numeric()
	if err != nil {
		return 0, err
	}
	return Var(xs), nil
}

func (s *Stat) Std() (float64, error) {
	v, err := s.Var()
	return math.Sqrt(v), err
}

func (s *Stat) Moment(order int, center bool) (float64, error) {
	xs, err := s.numeric()
	if err != nil {
		return 0, err
	}
	return Moment(xs, order, center), nil
}

// Unique returns the distinct values in first-seen order.
func (s *Stat) Unique() []any {
	seen := make(map[string]struct{}, len(s.values))
	out := make([]any, 0)
	for _, v := range s.values {
		k := fmt.Sprintf("%T:%v", v, v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Bin is one bar of a value histogram.
type Bin struct {
	Value float64
	Count int
}

// Dist counts occurrences of each value, sorted by value.
func (s *Stat) Dist() ([]Bin, error) {
	xs, err := s.AsArray()
	if err != nil {
		return nil, err
	}
	counts := lo.CountValues(xs)
	bins := lo.MapToSlice(counts, func(v float64, c int) Bin { return Bin{Value: v, Count: c} })
	sort.Slice(bins, func(i, j int) bool { return bins[i].Value < bins[j].Value })
	return bins, nil
}

// Filter is FilterBy bound to s.
func (s *Stat) Filter(mode Mode, values ...any) ([]ID, error) {
	return FilterBy(s, mode, values...)
}

func (s *Stat) String() string {
	return fmt.Sprintf("%s stat %q over %d %ss", s.Kind, s.Name, len(s.ids), s.Kind)
}
