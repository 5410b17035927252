package stats

import (
	"github.com/san-kum/hyperlab/internal/hypergraph"
)

// Size counts the members of each edge. With a degree argument only members
// of that degree are counted.
func Size(h *hypergraph.Hypergraph, degree ...int) *Stat {
	edges := h.Edges()
	vals := make([]any, len(edges))
	for i, e := range edges {
		vals[i] = edgeSize(h, e, degree)
	}
	return newStat("size", EdgeKind, edges, vals)
}

// Order is Size minus one.
func Order(h *hypergraph.Hypergraph, degree ...int) *Stat {
	edges := h.Edges()
	vals := make([]any, len(edges))
	for i, e := range edges {
		vals[i] = edgeSize(h, e, degree) - 1
	}
	return newStat("order", EdgeKind, edges, vals)
}

func edgeSize(h *hypergraph.Hypergraph, e ID, degree []int) int {
	members, _ := h.Members(e)
	if len(degree) == 0 {
		return len(members)
	}
	n := 0
	for _, m := range members {
		if d, _ := h.Degree(m); d == degree[0] {
			n++
		}
	}
	return n
}

func EdgeAttr(h *hypergraph.Hypergraph, name string, missing any) *Stat {
	edges := h.Edges()
	vals := make([]any, len(edges))
	for i, e := range edges {
		attrs, _ := h.EdgeAttrs(e)
		if v, ok := attrs[name]; ok {
			vals[i] = v
		} else {
			vals[i] = missing
		}
	}
	return newStat(name, EdgeKind, edges, vals)
}
