// Package simplicial implements simplicial complexes on top of the
// hypergraph store: a set of faces closed under taking subsets of size two
// or more.
package simplicial

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/hyperlab/internal/combin"
	"github.com/san-kum/hyperlab/internal/hypergraph"
)

// MaxSimplexSize bounds the number of nodes in one simplex. A simplex of
// size s brings 2^s - s - 1 faces with it.
const MaxSimplexSize = 16

var ErrTooLarge = errors.New("simplicial: simplex too large")

type ID = hypergraph.ID

type Complex struct {
	h     *hypergraph.Hypergraph
	faces map[string]ID
}

func New(opts ...hypergraph.Option) *Complex {
	return &Complex{h: hypergraph.New(opts...), faces: make(map[string]ID)}
}

// FromHypergraph closes every edge of h downward. With maxOrder >= 0, edges
// of higher order contribute only their faces up to maxOrder. Nodes and
// their attributes are carried over, isolated ones included.
func FromHypergraph(h *hypergraph.Hypergraph, maxOrder int) (*Complex, error) {
	c := New(hypergraph.WithName(h.Name()), hypergraph.WithAttrs(h.Attrs()))
	for _, n := range h.Nodes() {
		attrs, _ := h.NodeAttrs(n)
		_ = c.h.AddNode(n, attrs)
	}
	for _, eid := range h.Edges() {
		members, _ := h.Members(eid)
		if maxOrder >= 0 && len(members) > maxOrder+1 {
			for _, face := range combin.Subsets(members, maxOrder+1) {
				if _, err := c.AddSimplex(face, nil); err != nil {
					return nil, fmt.Errorf("simplicial: edge %s: %w", eid, err)
				}
			}
			continue
		}
		attrs, _ := h.EdgeAttrs(eid)
		if _, err := c.AddSimplex(members, attrs); err != nil {
			return nil, fmt.Errorf("simplicial: edge %s: %w", eid, err)
		}
	}
	return c, nil
}

// AddSimplex adds a simplex and every sub-face of size two or more. It
// returns the simplex ID; attributes merge into an existing face. A single
// node is added as a vertex and yields an empty ID.
func (c *Complex) AddSimplex(members []ID, attrs hypergraph.Attrs) (ID, error) {
	members = dedupe(members)
	switch {
	case len(members) == 0:
		return "", hypergraph.ErrEmptyEdge
	case len(members) > MaxSimplexSize:
		return "", fmt.Errorf("%w: %d nodes, limit %d", ErrTooLarge, len(members), MaxSimplexSize)
	case len(members) == 1:
		return "", c.h.AddNode(members[0], attrs)
	}

	id, err := c.addFace(members, attrs)
	if err != nil {
		return "", err
	}
	for size := len(members) - 1; size >= 2; size-- {
		for _, face := range combin.Subsets(members, size) {
			if _, err := c.addFace(face, nil); err != nil {
				return "", err
			}
		}
	}
	return id, nil
}

func (c *Complex) addFace(members []ID, attrs hypergraph.Attrs) (ID, error) {
	key := faceKey(members)
	if id, ok := c.faces[key]; ok {
		for k, v := range attrs {
			_ = c.h.SetEdgeAttr(id, k, v)
		}
		return id, nil
	}
	id, err := c.h.AddEdge(members, attrs)
	if err != nil {
		return "", err
	}
	c.faces[key] = id
	return id, nil
}

// RemoveSimplex removes a face together with every face containing it.
func (c *Complex) RemoveSimplex(id ID) error {
	members, err := c.h.Members(id)
	if err != nil {
		return err
	}
	for _, co := range c.cofaces(id, members) {
		c.dropFace(co)
	}
	c.dropFace(id)
	return nil
}

func (c *Complex) dropFace(id ID) {
	members, err := c.h.Members(id)
	if err != nil {
		return
	}
	delete(c.faces, faceKey(members))
	_ = c.h.RemoveEdge(id)
}

// cofaces lists faces strictly containing members.
func (c *Complex) cofaces(id ID, members []ID) []ID {
	candidates, _ := c.h.Memberships(members[0])
	out := make([]ID, 0)
	for _, cand := range candidates {
		if cand == id {
			continue
		}
		size, _ := c.h.Size(cand)
		if size <= len(members) {
			continue
		}
		inside := true
		for _, m := range members[1:] {
			if !c.h.Contains(cand, m) {
				inside = false
				break
			}
		}
		if inside {
			out = append(out, cand)
		}
	}
	return out
}

// MaxSimplices returns the faces not contained in a larger face, in
// insertion order.
func (c *Complex) MaxSimplices() []ID {
	out := make([]ID, 0)
	for _, id := range c.h.Edges() {
		members, _ := c.h.Members(id)
		if len(c.cofaces(id, members)) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// HasSimplex reports whether the given node set is a face.
func (c *Complex) HasSimplex(members []ID) bool {
	_, ok := c.faces[faceKey(dedupe(members))]
	return ok
}

func (c *Complex) NumNodes() int { return c.h.NumNodes() }

func (c *Complex) NumSimplices() int { return c.h.NumEdges() }

func (c *Complex) Simplices() []ID { return c.h.Edges() }

func (c *Complex) Members(id ID) ([]ID, error) { return c.h.Members(id) }

// Hypergraph returns a copy of the underlying hypergraph, for stats,
// layouts and drawing.
func (c *Complex) Hypergraph() *hypergraph.Hypergraph { return c.h.Copy() }

func (c *Complex) String() string {
	name := c.h.Name()
	if name == "" {
		name = "Unnamed SimplicialComplex"
	}
	return fmt.Sprintf("%s with %d nodes and %d simplices", name, c.h.NumNodes(), c.h.NumEdges())
}

// IsClosed reports whether every subset of size two or more of every edge
// of h is itself an edge. Edges above MaxSimplexSize make h not closed.
func IsClosed(h *hypergraph.Hypergraph) bool {
	present := make(map[string]struct{}, h.NumEdges())
	edges := h.EdgeMembers()
	for _, m := range edges {
		present[faceKey(m)] = struct{}{}
	}
	for _, members := range edges {
		if len(members) > MaxSimplexSize {
			return false
		}
		for size := len(members) - 1; size >= 2; size-- {
			for _, face := range combin.Subsets(members, size) {
				if _, ok := present[faceKey(face)]; !ok {
					return false
				}
			}
		}
	}
	return true
}

func faceKey(members []ID) string {
	s := append([]ID(nil), members...)
	sort.Strings(s)
	return strings.Join(s, "\x00")
}

func dedupe(members []ID) []ID {
	seen := make(map[ID]struct{}, len(members))
	out := make([]ID, 0, len(members))
	for _, m := range members {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
