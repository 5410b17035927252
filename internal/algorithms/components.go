// Package algorithms holds structural measures over hypergraphs:
// connectivity and degree assortativity.
package algorithms

import "github.com/san-kum/hyperlab/internal/hypergraph"

// IsConnected is false for an empty hypergraph.
func IsConnected(h *hypergraph.Hypergraph) bool { return h.IsConnected() }

// ConnectedComponents returns node sets, largest first.
func ConnectedComponents(h *hypergraph.Hypergraph) [][]hypergraph.ID { return h.Components() }

func NumComponents(h *hypergraph.Hypergraph) int { return len(h.Components()) }

func LargestComponent(h *hypergraph.Hypergraph) *hypergraph.Hypergraph {
	return h.LargestComponent()
}

// LargestComponentSize returns the node count of the largest component.
func LargestComponentSize(h *hypergraph.Hypergraph) int {
	comps := h.Components()
	if len(comps) == 0 {
		return 0
	}
	return len(comps[0])
}
