package stats

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/san-kum/hyperlab/internal/hypergraph"
)

// Mode selects the comparison used by FilterBy.
type Mode string

const (
	Eq      Mode = "eq"
	Neq     Mode = "neq"
	Lt      Mode = "lt"
	Gt      Mode = "gt"
	Leq     Mode = "leq"
	Geq     Mode = "geq"
	Between Mode = "between"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case Eq, Neq, Lt, Gt, Leq, Geq, Between:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// FilterBy returns the IDs whose value passes the comparison. Between takes
// two bounds and is inclusive. Eq and Neq also work on non-numeric values.
func FilterBy(s *Stat, mode Mode, values ...any) ([]ID, error) {
	want := 1
	if mode == Between {
		want = 2
	}
	if len(values) != want {
		return nil, fmt.Errorf("stats: filter %s takes %d value(s), got %d", mode, want, len(values))
	}

	var keep func(v any) (bool, error)
	switch mode {
	case Eq, Neq:
		keep = func(v any) (bool, error) {
			eq := equal(v, values[0])
			return eq == (mode == Eq), nil
		}
	case Lt, Gt, Leq, Geq, Between:
		bounds := make([]float64, len(values))
		for i, b := range values {
			f, ok := toFloat(b)
			if !ok {
				return nil, fmt.Errorf("%w: bound %v", ErrNotNumeric, b)
			}
			bounds[i] = f
		}
		keep = func(v any) (bool, error) {
			x, ok := toFloat(v)
			if !ok {
				return false, fmt.Errorf("%w: %v", ErrNotNumeric, v)
			}
			return compare(mode, x, bounds), nil
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	var err error
	out := lo.Filter(s.ids, func(_ ID, i int) bool {
		if err != nil {
			return false
		}
		ok, kerr := keep(s.values[i])
		if kerr != nil {
			err = fmt.Errorf("%s of %s: %w", s.Name, s.ids[i], kerr)
		}
		return ok
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FilterByAttr filters nodes or edges on an attribute; entries without it
// take the missing value.
func FilterByAttr(h *hypergraph.Hypergraph, kind Kind, attr string, mode Mode, value, missing any) ([]ID, error) {
	s := NodeAttr(h, attr, missing)
	if kind == EdgeKind {
		s = EdgeAttr(h, attr, missing)
	}
	if mode == Between {
		pair, ok := value.([]any)
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("stats: between needs a [low, high] pair, got %v", value)
		}
		return FilterBy(s, mode, pair...)
	}
	return FilterBy(s, mode, value)
}

// Induce turns filtered IDs back into a hypergraph: the induced
// sub-hypergraph for nodes, the edge sub-hypergraph for edges.
func Induce(h *hypergraph.Hypergraph, kind Kind, ids []ID) *hypergraph.Hypergraph {
	if kind == EdgeKind {
		return h.EdgeSubhypergraph(ids)
	}
	return h.Subhypergraph(ids)
}

func compare(mode Mode, x float64, b []float64) bool {
	switch mode {
	case Lt:
		return x < b[0]
	case Gt:
		return x > b[0]
	case Leq:
		return x <= b[0]
	case Geq:
		return x >= b[0]
	case Between:
		return x >= b[0] && x <= b[1]
	}
	return false
}

func equal(a, b any) bool {
	fa, oka := toFloat(a)
	fb, okb := toFloat(b)
	if oka && okb {
		return fa == fb
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}
