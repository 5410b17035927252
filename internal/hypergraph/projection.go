package hypergraph

// CliqueExpansion projects the hypergraph onto its pairwise graph. The
// weight of {u, v} is the number of edges containing both; the map is
// symmetric and has no self-loops. Every node gets an entry.
func (h *Hypergraph) CliqueExpansion() map[ID]map[ID]int {
	adj := make(map[ID]map[ID]int, len(h.nodes))
	for id := range h.nodes {
		adj[id] = make(map[ID]int)
	}
	for _, e := range h.edges {
		for i, u := range e.members {
			for _, v := range e.members[i+1:] {
				adj[u][v]++
				adj[v][u]++
			}
		}
	}
	return adj
}

// Incidence is a dense node-by-edge 0/1 matrix with its row and column IDs.
type Incidence struct {
	Nodes  []ID
	Edges  []ID
	Matrix [][]float64
}

func (h *Hypergraph) IncidenceMatrix() Incidence {
	nodes := h.Nodes()
	edges := h.Edges()
	row := make(map[ID]int, len(nodes))
	for i, id := range nodes {
		row[id] = i
	}
	m := make([][]float64, len(nodes))
	for i := range m {
		m[i] = make([]float64, len(edges))
	}
	for j, eid := range edges {
		for _, n := range h.edges[eid].members {
			m[row[n]][j] = 1
		}
	}
	return Incidence{Nodes: nodes, Edges: edges, Matrix: m}
}

// Components returns the connected components, largest first. Ties keep the
// insertion order of each component's first node.
func (h *Hypergraph) Components() [][]ID {
	seen := make(map[ID]bool, len(h.nodes))
	comps := make([][]ID, 0)
	for _, start := range h.Nodes() {
		if seen[start] {
			continue
		}
		seen[start] = true
		comp := []ID{start}
		queue := []ID{start}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, eid := range h.nodes[cur].memberships {
				for _, m := range h.edges[eid].members {
					if !seen[m] {
						seen[m] = true
						comp = append(comp, m)
						queue = append(queue, m)
					}
				}
			}
		}
		comps = append(comps, comp)
	}
	sortBySizeDesc(comps)
	return comps
}

func sortBySizeDesc(comps [][]ID) {
	for i := 1; i < len(comps); i++ {
		for j := i; j > 0 && len(comps[j]) > len(comps[j-1]); j-- {
			comps[j], comps[j-1] = comps[j-1], comps[j]
		}
	}
}

func (h *Hypergraph) IsConnected() bool {
	if len(h.nodes) == 0 {
		return false
	}
	return len(h.Components()) == 1
}

// LargestComponent returns the sub-hypergraph induced by the largest
// connected component.
func (h *Hypergraph) LargestComponent() *Hypergraph {
	comps := h.Components()
	if len(comps) == 0 {
		return New(WithName(h.name), WithAttrs(h.attrs))
	}
	return h.Subhypergraph(comps[0])
}
