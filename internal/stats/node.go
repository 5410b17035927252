package stats

import (
	"github.com/san-kum/hyperlab/internal/hypergraph"
)

// Degree counts the edges containing each node. With an order argument only
// edges of that order (size order+1) are counted.
func Degree(h *hypergraph.Hypergraph, order ...int) *Stat {
	nodes := h.Nodes()
	vals := make([]any, len(nodes))
	for i, n := range nodes {
		if len(order) == 0 {
			d, _ := h.Degree(n)
			vals[i] = d
			continue
		}
		ms, _ := h.Memberships(n)
		d := 0
		for _, e := range ms {
			if sz, _ := h.Size(e); sz == order[0]+1 {
				d++
			}
		}
		vals[i] = d
	}
	return newStat("degree", NodeKind, nodes, vals)
}

// AverageNeighborDegree averages the degree of each node's neighbours. Nodes
// without neighbours get 0.
func AverageNeighborDegree(h *hypergraph.Hypergraph) *Stat {
	nodes := h.Nodes()
	vals := make([]any, len(nodes))
	for i, n := range nodes {
		nbrs, _ := h.Neighbors(n)
		if len(nbrs) == 0 {
			vals[i] = 0.0
			continue
		}
		total := 0
		for _, m := range nbrs {
			d, _ := h.Degree(m)
			total += d
		}
		vals[i] = float64(total) / float64(len(nbrs))
	}
	return newStat("average_neighbor_degree", NodeKind, nodes, vals)
}

// LocalClustering is the clustering coefficient of each node in the
// unweighted clique expansion: linked neighbour pairs over possible pairs.
func LocalClustering(h *hypergraph.Hypergraph) *Stat {
	adj := h.CliqueExpansion()
	nodes := h.Nodes()
	vals := make([]any, len(nodes))
	for i, n := range nodes {
		nbrs := make([]ID, 0, len(adj[n]))
		for m := range adj[n] {
			nbrs = append(nbrs, m)
		}
		k := len(nbrs)
		if k < 2 {
			vals[i] = 0.0
			continue
		}
		links := 0
		for a := 0; a < k; a++ {
			for b := a + 1; b < k; b++ {
				if _, ok := adj[nbrs[a]][nbrs[b]]; ok {
					links++
				}
			}
		}
		vals[i] = 2 * float64(links) / float64(k*(k-1))
	}
	return newStat("clustering", NodeKind, nodes, vals)
}

// NodeAttr reads one attribute per node; nodes without it get missing.
func NodeAttr(h *hypergraph.Hypergraph, name string, missing any) *Stat {
	nodes := h.Nodes()
	vals := make([]any, len(nodes))
	for i, n := range nodes {
		attrs, _ := h.NodeAttrs(n)
		if v, ok := attrs[name]; ok {
			vals[i] = v
		} else {
			vals[i] = missing
		}
	}
	return newStat(name, NodeKind, nodes, vals)
}
