package hypergraph

// Copy returns an independent hypergraph with the same IDs and order.
// Attribute maps are copied one level deep.
func (h *Hypergraph) Copy() *Hypergraph {
	c := New(WithName(h.name), WithAttrs(h.attrs))
	for _, id := range h.Nodes() {
		c.AddNode(id, h.nodes[id].attrs)
	}
	for _, id := range h.Edges() {
		e := h.edges[id]
		c.AddEdgeWithID(id, e.members, e.attrs)
	}
	c.nextEdgeID = h.nextEdgeID
	return c
}

// Dual swaps nodes and edges: every edge becomes a node and every node
// becomes an edge over the edges it belonged to. Isolated nodes would become
// empty edges and are left out.
func (h *Hypergraph) Dual() *Hypergraph {
	d := New(WithName(h.name), WithAttrs(h.attrs))
	for _, eid := range h.Edges() {
		d.AddNode(eid, h.edges[eid].attrs)
	}
	for _, nid := range h.Nodes() {
		n := h.nodes[nid]
		if len(n.memberships) == 0 {
			continue
		}
		d.AddEdgeWithID(nid, n.memberships, n.attrs)
	}
	return d
}

// Subhypergraph keeps the given nodes and the edges lying entirely inside
// them. Unknown IDs are ignored.
func (h *Hypergraph) Subhypergraph(nodes []ID) *Hypergraph {
	keep := make(map[ID]struct{}, len(nodes))
	for _, id := range nodes {
		if _, ok := h.nodes[id]; ok {
			keep[id] = struct{}{}
		}
	}
	s := New(WithName(h.name), WithAttrs(h.attrs))
	for _, id := range h.Nodes() {
		if _, ok := keep[id]; ok {
			s.AddNode(id, h.nodes[id].attrs)
		}
	}
	for _, eid := range h.Edges() {
		e := h.edges[eid]
		inside := true
		for _, m := range e.members {
			if _, ok := keep[m]; !ok {
				inside = false
				break
			}
		}
		if inside {
			s.AddEdgeWithID(eid, e.members, e.attrs)
		}
	}
	return s
}

// EdgeSubhypergraph keeps the given edges and exactly the nodes they cover.
func (h *Hypergraph) EdgeSubhypergraph(edges []ID) *Hypergraph {
	keep := make(map[ID]struct{}, len(edges))
	for _, id := range edges {
		keep[id] = struct{}{}
	}
	s := New(WithName(h.name), WithAttrs(h.attrs))
	for _, eid := range h.Edges() {
		if _, ok := keep[eid]; !ok {
			continue
		}
		e := h.edges[eid]
		for _, m := range e.members {
			s.AddNode(m, h.nodes[m].attrs)
		}
		s.AddEdgeWithID(eid, e.members, e.attrs)
	}
	return s
}
