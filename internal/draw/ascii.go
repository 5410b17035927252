package draw

import (
	"github.com/san-kum/hyperlab/internal/hypergraph"
	"github.com/san-kum/hyperlab/internal/layout"
	"github.com/san-kum/hyperlab/internal/viz"
)

// ASCII renders h into a cols x rows braille canvas: dyads as lines,
// larger edges as hull outlines and nodes as small discs. Edges above
// maxOrder are skipped when maxOrder is non-negative.
func ASCII(h *hypergraph.Hypergraph, pos map[hypergraph.ID]layout.Position, cols, rows, maxOrder int) (string, error) {
	c := viz.NewCanvas(cols, rows)
	f := fit(pos, float64(c.DotsX()-1), float64(c.DotsY()-1), 2)

	edges, err := placeEdges(h, pos, f, maxOrder)
	if err != nil {
		return "", err
	}
	for _, e := range edges {
		if e.order == 1 {
			a, b := e.points[0], e.points[1]
			c.DrawLine(round(a.X), round(a.Y), round(b.X), round(b.Y))
			continue
		}
		xs, ys := split(ConvexHull(e.points))
		c.DrawPolygon(xs, ys)
	}
	for _, id := range h.Nodes() {
		p, ok := pos[id]
		if !ok {
			return "", ErrMissingPosition
		}
		q := f.apply(p)
		c.DrawDisc(round(q.X), round(q.Y), 1)
	}
	return c.String(), nil
}
