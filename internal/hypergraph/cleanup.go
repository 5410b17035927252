package hypergraph

import (
	"sort"
	"strconv"
	"strings"
)

// LabelAttr receives the previous ID of each node and edge when a
// hypergraph is relabelled.
const LabelAttr = "label"

// CleanupOptions selects what Cleanup keeps. The zero value removes
// multi-edges, singletons and isolates and leaves IDs alone.
type CleanupOptions struct {
	Multiedges bool
	Singletons bool
	Isolates   bool
	Relabel    bool
	InPlace    bool
}

// DefaultCleanup removes multi-edges, singletons and isolates and relabels
// nodes and edges to consecutive integers.
func DefaultCleanup() CleanupOptions {
	return CleanupOptions{Relabel: true}
}

// Cleanup removes the structures opts does not keep. Unless opts.InPlace is
// set it works on a copy and h is left untouched. Removal runs in a fixed
// order: duplicates, then singletons, then isolates.
func (h *Hypergraph) Cleanup(opts CleanupOptions) *Hypergraph {
	target := h
	if !opts.InPlace {
		target = h.Copy()
	}

	// IDs below come from target itself, so the unchecked removals apply.
	if !opts.Multiedges {
		for _, group := range target.Duplicates() {
			for _, eid := range group[1:] {
				target.removeEdge(eid)
			}
		}
	}
	if !opts.Singletons {
		for _, eid := range target.Singletons() {
			target.removeEdge(eid)
		}
	}
	if !opts.Isolates {
		for _, nid := range target.Isolates(false) {
			delete(target.nodes, nid)
		}
		target.invalidate()
	}
	if opts.Relabel {
		relabeled := target.RelabelIntegers()
		if opts.InPlace {
			h.adopt(relabeled)
			return h
		}
		return relabeled
	}
	return target
}

// Duplicates groups edges with identical member sets. Only groups with more
// than one edge are returned; each group lists edges in insertion order.
func (h *Hypergraph) Duplicates() [][]ID {
	groups := make(map[string][]ID)
	keys := make([]string, 0)
	for _, eid := range h.Edges() {
		k := memberKey(h.edges[eid].members)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], eid)
	}
	out := make([][]ID, 0)
	for _, k := range keys {
		if len(groups[k]) > 1 {
			out = append(out, groups[k])
		}
	}
	return out
}

// Singletons returns edges with exactly one member.
func (h *Hypergraph) Singletons() []ID {
	out := make([]ID, 0)
	for _, eid := range h.Edges() {
		if len(h.edges[eid].members) == 1 {
			out = append(out, eid)
		}
	}
	return out
}

// Isolates returns nodes without edges. With ignoreSingletons, nodes whose
// only edges are singletons count as isolated too.
func (h *Hypergraph) Isolates(ignoreSingletons bool) []ID {
	out := make([]ID, 0)
	for _, nid := range h.Nodes() {
		deg := 0
		for _, eid := range h.nodes[nid].memberships {
			if ignoreSingletons && len(h.edges[eid].members) == 1 {
				continue
			}
			deg++
		}
		if deg == 0 {
			out = append(out, nid)
		}
	}
	return out
}

// RelabelIntegers returns a copy with nodes renamed "0".."n-1" and edges
// "0".."m-1" in insertion order. The old IDs go to the LabelAttr attribute.
func (h *Hypergraph) RelabelIntegers() *Hypergraph {
	r := New(WithName(h.name), WithAttrs(h.attrs))
	mapping := make(map[ID]ID, len(h.nodes))
	for i, nid := range h.Nodes() {
		newID := strconv.Itoa(i)
		mapping[nid] = newID
		attrs := copyAttrs(h.nodes[nid].attrs)
		attrs[LabelAttr] = nid
		r.AddNode(newID, attrs)
	}
	for i, eid := range h.Edges() {
		e := h.edges[eid]
		members := make([]ID, len(e.members))
		for j, m := range e.members {
			members[j] = mapping[m]
		}
		attrs := copyAttrs(e.attrs)
		attrs[LabelAttr] = eid
		r.AddEdgeWithID(strconv.Itoa(i), members, attrs)
	}
	return r
}

// adopt moves o's contents into h.
func (h *Hypergraph) adopt(o *Hypergraph) {
	h.name = o.name
	h.attrs = o.attrs
	h.nodes = o.nodes
	h.edges = o.edges
	h.seq = o.seq
	h.nextEdgeID = o.nextEdgeID
	h.invalidate()
}

func memberKey(members []ID) string {
	sorted := append([]ID(nil), members...)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x00")
}

func copyAttrs(a Attrs) Attrs {
	c := make(Attrs, len(a)+1)
	for k, v := range a {
		c[k] = v
	}
	return c
}
