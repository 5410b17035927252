package hypergraph

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
)

// ID identifies a node or an edge.
type ID = string

// Attrs holds arbitrary attributes. Copies made by this package are shallow.
type Attrs = map[string]any

type node struct {
	seq         int
	attrs       Attrs
	memberships []ID
}

type edge struct {
	seq     int
	attrs   Attrs
	members []ID
	set     map[ID]struct{}
}

type Hypergraph struct {
	name  string
	attrs Attrs

	nodes map[ID]*node
	edges map[ID]*edge

	seq        int
	nextEdgeID int

	// orderMu guards the lazily rebuilt order caches so readers can share
	// a hypergraph.
	orderMu   sync.Mutex
	nodeOrder []ID
	edgeOrder []ID
}

type Option func(*Hypergraph)

func WithName(name string) Option {
	return func(h *Hypergraph) { h.name = name }
}

// WithAttrs sets graph-level attributes.
func WithAttrs(attrs Attrs) Option {
	return func(h *Hypergraph) {
		for k, v := range attrs {
			h.attrs[k] = v
		}
	}
}

func New(opts ...Option) *Hypergraph {
	h := &Hypergraph{
		attrs: make(Attrs),
		nodes: make(map[ID]*node),
		edges: make(map[ID]*edge),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// FromEdges builds a hypergraph whose edges get the IDs "0", "1", ... in
// the order given.
func FromEdges(edges [][]ID, opts ...Option) (*Hypergraph, error) {
	h := New(opts...)
	if _, err := h.AddEdges(edges); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Hypergraph) Name() string { return h.name }

func (h *Hypergraph) SetName(name string) { h.name = name }

// Attrs returns the graph-level attribute map itself.
func (h *Hypergraph) Attrs() Attrs { return h.attrs }

func (h *Hypergraph) NumNodes() int { return len(h.nodes) }

func (h *Hypergraph) NumEdges() int { return len(h.edges) }

func (h *Hypergraph) HasNode(id ID) bool {
	_, ok := h.nodes[id]
	return ok
}

func (h *Hypergraph) HasEdge(id ID) bool {
	_, ok := h.edges[id]
	return ok
}

func (h *Hypergraph) next() int {
	h.seq++
	return h.seq
}

func (h *Hypergraph) invalidate() {
	h.orderMu.Lock()
	h.nodeOrder = nil
	h.edgeOrder = nil
	h.orderMu.Unlock()
}

// AddNode inserts a node or merges attrs into an existing one.
func (h *Hypergraph) AddNode(id ID, attrs Attrs) error {
	if id == "" {
		return ErrEmptyID
	}
	n, ok := h.nodes[id]
	if !ok {
		n = &node{seq: h.next(), attrs: make(Attrs)}
		h.nodes[id] = n
		h.invalidate()
	}
	for k, v := range attrs {
		n.attrs[k] = v
	}
	return nil
}

func (h *Hypergraph) AddNodes(ids ...ID) error {
	for _, id := range ids {
		if err := h.AddNode(id, nil); err != nil {
			return err
		}
	}
	return nil
}

// AddEdge adds an edge under the next free integer ID and returns that ID.
// Members that are not yet nodes are created; repeated members collapse.
func (h *Hypergraph) AddEdge(members []ID, attrs Attrs) (ID, error) {
	id := h.freeEdgeID()
	if err := h.AddEdgeWithID(id, members, attrs); err != nil {
		return "", err
	}
	return id, nil
}

func (h *Hypergraph) AddEdges(edges [][]ID) ([]ID, error) {
	ids := make([]ID, 0, len(edges))
	for i, members := range edges {
		id, err := h.AddEdge(members, nil)
		if err != nil {
			return ids, fmt.Errorf("edge %d: %w", i, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (h *Hypergraph) AddEdgeWithID(id ID, members []ID, attrs Attrs) error {
	if id == "" {
		return ErrEmptyID
	}
	if _, ok := h.edges[id]; ok {
		return fmt.Errorf("%w: %s", ErrEdgeExists, id)
	}
	if len(members) == 0 {
		return ErrEmptyEdge
	}
	for _, m := range members {
		if m == "" {
			return ErrEmptyID
		}
	}

	e := &edge{
		seq:     h.next(),
		attrs:   make(Attrs),
		members: make([]ID, 0, len(members)),
		set:     make(map[ID]struct{}, len(members)),
	}
	for k, v := range attrs {
		e.attrs[k] = v
	}
	for _, m := range members {
		if _, dup := e.set[m]; dup {
			continue
		}
		if err := h.AddNode(m, nil); err != nil {
			return err
		}
		e.set[m] = struct{}{}
		e.members = append(e.members, m)
		n := h.nodes[m]
		n.memberships = append(n.memberships, id)
	}
	h.edges[id] = e
	h.invalidate()
	h.bumpEdgeID(id)
	return nil
}

// AddNodeToEdge adds node to edge, creating either if missing.
func (h *Hypergraph) AddNodeToEdge(edgeID, nodeID ID) error {
	e, ok := h.edges[edgeID]
	if !ok {
		return h.AddEdgeWithID(edgeID, []ID{nodeID}, nil)
	}
	if _, in := e.set[nodeID]; in {
		return nil
	}
	if err := h.AddNode(nodeID, nil); err != nil {
		return err
	}
	e.set[nodeID] = struct{}{}
	e.members = append(e.members, nodeID)
	n := h.nodes[nodeID]
	n.memberships = append(n.memberships, edgeID)
	return nil
}

func (h *Hypergraph) freeEdgeID() ID {
	for {
		id := strconv.Itoa(h.nextEdgeID)
		h.nextEdgeID++
		if _, taken := h.edges[id]; !taken {
			return id
		}
	}
}

func (h *Hypergraph) bumpEdgeID(id ID) {
	if n, err := strconv.Atoi(id); err == nil && n >= h.nextEdgeID {
		h.nextEdgeID = n + 1
	}
}

// RemoveNode deletes a node. A weak removal takes the node out of its edges
// and drops edges left empty; a strong removal drops every edge it is in.
func (h *Hypergraph) RemoveNode(id ID, strong bool) error {
	n, ok := h.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	for _, eid := range append([]ID(nil), n.memberships...) {
		if strong {
			h.removeEdge(eid)
			continue
		}
		e := h.edges[eid]
		delete(e.set, id)
		e.members = without(e.members, id)
		if len(e.members) == 0 {
			h.removeEdge(eid)
		}
	}
	delete(h.nodes, id)
	h.invalidate()
	return nil
}

func (h *Hypergraph) RemoveNodes(ids []ID, strong bool) error {
	for _, id := range ids {
		if err := h.RemoveNode(id, strong); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hypergraph) RemoveEdge(id ID) error {
	if _, ok := h.edges[id]; !ok {
		return fmt.Errorf("%w: %s", ErrEdgeNotFound, id)
	}
	h.removeEdge(id)
	return nil
}

func (h *Hypergraph) RemoveEdges(ids []ID) error {
	for _, id := range ids {
		if err := h.RemoveEdge(id); err != nil {
			return err
		}
	}
	return nil
}

// RemoveNodeFromEdge drops the edge once its last member is gone. The node
// itself stays in the hypergraph.
func (h *Hypergraph) RemoveNodeFromEdge(edgeID, nodeID ID) error {
	e, ok := h.edges[edgeID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrEdgeNotFound, edgeID)
	}
	if _, in := e.set[nodeID]; !in {
		return fmt.Errorf("%w: %s in edge %s", ErrNodeNotFound, nodeID, edgeID)
	}
	delete(e.set, nodeID)
	e.members = without(e.members, nodeID)
	n := h.nodes[nodeID]
	n.memberships = without(n.memberships, edgeID)
	if len(e.members) == 0 {
		h.removeEdge(edgeID)
	}
	return nil
}

func (h *Hypergraph) removeEdge(id ID) {
	e := h.edges[id]
	for _, m := range e.members {
		if n, ok := h.nodes[m]; ok {
			n.memberships = without(n.memberships, id)
		}
	}
	delete(h.edges, id)
	h.invalidate()
}

// Nodes returns node IDs in insertion order.
func (h *Hypergraph) Nodes() []ID {
	h.orderMu.Lock()
	defer h.orderMu.Unlock()
	if h.nodeOrder == nil {
		h.nodeOrder = make([]ID, 0, len(h.nodes))
		for id := range h.nodes {
			h.nodeOrder = append(h.nodeOrder, id)
		}
		sort.Slice(h.nodeOrder, func(i, j int) bool {
			return h.nodes[h.nodeOrder[i]].seq < h.nodes[h.nodeOrder[j]].seq
		})
	}
	return append([]ID(nil), h.nodeOrder...)
}

// Edges returns edge IDs in insertion order.
func (h *Hypergraph) Edges() []ID {
	h.orderMu.Lock()
	defer h.orderMu.Unlock()
	if h.edgeOrder == nil {
		h.edgeOrder = make([]ID, 0, len(h.edges))
		for id := range h.edges {
			h.edgeOrder = append(h.edgeOrder, id)
		}
		sort.Slice(h.edgeOrder, func(i, j int) bool {
			return h.edges[h.edgeOrder[i]].seq < h.edges[h.edgeOrder[j]].seq
		})
	}
	return append([]ID(nil), h.edgeOrder...)
}

func (h *Hypergraph) Members(edgeID ID) ([]ID, error) {
	e, ok := h.edges[edgeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEdgeNotFound, edgeID)
	}
	return append([]ID(nil), e.members...), nil
}

// Memberships returns the edges containing the node, in the order the node
// joined them.
func (h *Hypergraph) Memberships(nodeID ID) ([]ID, error) {
	n, ok := h.nodes[nodeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}
	return append([]ID(nil), n.memberships...), nil
}

// Contains reports whether node is a member of edge.
func (h *Hypergraph) Contains(edgeID, nodeID ID) bool {
	e, ok := h.edges[edgeID]
	if !ok {
		return false
	}
	_, in := e.set[nodeID]
	return in
}

// Neighbors returns every node sharing at least one edge with nodeID.
func (h *Hypergraph) Neighbors(nodeID ID) ([]ID, error) {
	n, ok := h.nodes[nodeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}
	seen := map[ID]struct{}{nodeID: {}}
	out := make([]ID, 0)
	for _, eid := range n.memberships {
		for _, m := range h.edges[eid].members {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out, nil
}

func (h *Hypergraph) Degree(nodeID ID) (int, error) {
	n, ok := h.nodes[nodeID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}
	return len(n.memberships), nil
}

func (h *Hypergraph) Size(edgeID ID) (int, error) {
	e, ok := h.edges[edgeID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrEdgeNotFound, edgeID)
	}
	return len(e.members), nil
}

// Order is the edge size minus one.
func (h *Hypergraph) Order(edgeID ID) (int, error) {
	s, err := h.Size(edgeID)
	return s - 1, err
}

// NodeAttrs returns the node's attribute map itself; callers may mutate it.
func (h *Hypergraph) NodeAttrs(nodeID ID) (Attrs, error) {
	n, ok := h.nodes[nodeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}
	return n.attrs, nil
}

func (h *Hypergraph) EdgeAttrs(edgeID ID) (Attrs, error) {
	e, ok := h.edges[edgeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEdgeNotFound, edgeID)
	}
	return e.attrs, nil
}

func (h *Hypergraph) SetNodeAttr(nodeID ID, key string, value any) error {
	attrs, err := h.NodeAttrs(nodeID)
	if err != nil {
		return err
	}
	attrs[key] = value
	return nil
}

func (h *Hypergraph) SetEdgeAttr(edgeID ID, key string, value any) error {
	attrs, err := h.EdgeAttrs(edgeID)
	if err != nil {
		return err
	}
	attrs[key] = value
	return nil
}

// EdgeMembers returns every edge's members keyed by edge ID.
func (h *Hypergraph) EdgeMembers() map[ID][]ID {
	out := make(map[ID][]ID, len(h.edges))
	for id, e := range h.edges {
		out[id] = append([]ID(nil), e.members...)
	}
	return out
}

// MaxEdgeOrder returns the largest edge order, or -1 without edges.
func (h *Hypergraph) MaxEdgeOrder() int {
	max := -1
	for _, e := range h.edges {
		if o := len(e.members) - 1; o > max {
			max = o
		}
	}
	return max
}

// EdgeOrders returns the distinct edge orders in ascending order.
func (h *Hypergraph) EdgeOrders() []int {
	seen := make(map[int]struct{})
	for _, e := range h.edges {
		seen[len(e.members)-1] = struct{}{}
	}
	out := make([]int, 0, len(seen))
	for o := range seen {
		out = append(out, o)
	}
	sort.Ints(out)
	return out
}

// IsUniform reports whether all edges share one order, and which.
func (h *Hypergraph) IsUniform() (int, bool) {
	orders := h.EdgeOrders()
	if len(orders) != 1 {
		return 0, false
	}
	return orders[0], true
}

func (h *Hypergraph) String() string {
	name := h.name
	if name == "" {
		name = "Unnamed Hypergraph"
	}
	return fmt.Sprintf("%s with %d nodes and %d hyperedges", name, len(h.nodes), len(h.edges))
}

func without(ids []ID, target ID) []ID {
	for i, id := range ids {
		if id == target {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
