package layout

import (
	"math"
	"math/rand"
	"sort"

	"github.com/san-kum/hyperlab/internal/hypergraph"
)

type link struct {
	to     int
	weight float64
}

// springGraph is the weighted pairwise graph a force layout runs on. The
// first real vertices are hypergraph nodes; any others are phantoms.
type springGraph struct {
	real int
	adj  [][]link
}

func (g *springGraph) addLink(u, v int, w float64) {
	g.adj[u] = append(g.adj[u], link{to: v, weight: w})
	g.adj[v] = append(g.adj[v], link{to: u, weight: w})
}

// Spring runs Fruchterman-Reingold on the clique expansion; a pair's
// attraction grows with the number of edges it shares.
func Spring(h *hypergraph.Hypergraph, cfg Config) map[ID]Position {
	nodes := h.Nodes()
	index := indexOf(nodes)
	g := &springGraph{real: len(nodes), adj: make([][]link, len(nodes))}

	clique := h.CliqueExpansion()
	for i, u := range nodes {
		nbrs := make([]int, 0, len(clique[u]))
		for v := range clique[u] {
			if j := index[v]; j > i {
				nbrs = append(nbrs, j)
			}
		}
		sort.Ints(nbrs)
		for _, j := range nbrs {
			g.addLink(i, j, float64(clique[u][nodes[j]]))
		}
	}
	return run(g, nodes, cfg)
}

// BarycenterSpring links dyads directly and ties the members of every
// larger edge to a phantom vertex standing in for the edge.
func BarycenterSpring(h *hypergraph.Hypergraph, cfg Config) map[ID]Position {
	return barycenterSpring(h, cfg, false)
}

// WeightedBarycenterSpring is BarycenterSpring with phantom links weighted
// by edge size, so large edges pull their members tighter.
func WeightedBarycenterSpring(h *hypergraph.Hypergraph, cfg Config) map[ID]Position {
	return barycenterSpring(h, cfg, true)
}

func barycenterSpring(h *hypergraph.Hypergraph, cfg Config, weighted bool) map[ID]Position {
	nodes := h.Nodes()
	index := indexOf(nodes)
	g := &springGraph{real: len(nodes), adj: make([][]link, len(nodes))}

	for _, eid := range h.Edges() {
		members, _ := h.Members(eid)
		switch {
		case len(members) == 2:
			g.addLink(index[members[0]], index[members[1]], 1)
		case len(members) > 2:
			phantom := len(g.adj)
			g.adj = append(g.adj, nil)
			w := 1.0
			if weighted {
				w = float64(len(members))
			}
			for _, m := range members {
				g.addLink(index[m], phantom, w)
			}
		}
	}
	return run(g, nodes, cfg)
}

func indexOf(ids []ID) map[ID]int {
	index := make(map[ID]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}
	return index
}

// run lays out g and keeps the real vertices only.
func run(g *springGraph, nodes []ID, cfg Config) map[ID]Position {
	cfg = cfg.withDefaults()
	switch len(nodes) {
	case 0:
		return map[ID]Position{}
	case 1:
		return map[ID]Position{nodes[0]: center(cfg)}
	}

	xy := fruchtermanReingold(g, cfg, rand.New(rand.NewSource(cfg.Seed)))
	pos := make(map[ID]Position, len(nodes))
	for i, id := range nodes {
		pos[id] = xy[i]
	}
	return normalize(pos, cfg)
}

func fruchtermanReingold(g *springGraph, cfg Config, rng *rand.Rand) []Position {
	n := len(g.adj)
	pos := make([]Position, n)
	for i := range pos {
		pos[i] = Position{
			X: cfg.Padding + rng.Float64()*(cfg.Width-2*cfg.Padding),
			Y: cfg.Padding + rng.Float64()*(cfg.Height-2*cfg.Padding),
		}
	}

	k := math.Sqrt(cfg.Width * cfg.Height / float64(n))
	temperature := cfg.Width / 10
	disp := make([]Position, n)

	for iter := 0; iter < cfg.Iterations; iter++ {
		for i := range disp {
			disp[i] = Position{}
		}

		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				dx := pos[i].X - pos[j].X
				dy := pos[i].Y - pos[j].Y
				dist := math.Max(math.Hypot(dx, dy), 0.01)
				f := k * k / dist
				fx, fy := dx/dist*f, dy/dist*f
				disp[i].X += fx
				disp[i].Y += fy
				disp[j].X -= fx
				disp[j].Y -= fy
			}
		}

		for i, links := range g.adj {
			for _, l := range links {
				dx := pos[i].X - pos[l.to].X
				dy := pos[i].Y - pos[l.to].Y
				dist := math.Hypot(dx, dy)
				if dist < 0.01 {
					continue
				}
				f := l.weight * dist * dist / k
				disp[i].X -= dx / dist * f
				disp[i].Y -= dy / dist * f
			}
		}

		cool := 1 - float64(iter)/float64(cfg.Iterations)
		for i := range pos {
			f := math.Hypot(disp[i].X, disp[i].Y)
			if f == 0 {
				continue
			}
			step := math.Min(f, temperature) * cool
			pos[i].X += disp[i].X / f * step
			pos[i].Y += disp[i].Y / f * step
		}
		temperature *= 0.95
	}
	return pos
}
