// Package draw renders hypergraphs and simulation series as SVG and as
// braille text for the terminal.
package draw

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	svg "github.com/ajstarks/svgo"

	"github.com/san-kum/hyperlab/internal/hypergraph"
	"github.com/san-kum/hyperlab/internal/layout"
)

var ErrMissingPosition = errors.New("draw: node has no position")

// errWriter keeps the first write error; svgo itself ignores them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return len(p), nil
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, nil
}

// frame maps layout coordinates onto a canvas with a margin. Both axes
// share one scale and the drawing is centred, so shapes keep their aspect
// ratio.
type frame struct {
	minX, minY float64
	scale      float64
	offX, offY float64
}

func fit(pos map[hypergraph.ID]layout.Position, width, height, margin float64) frame {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range pos {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	usableW := math.Max(width-2*margin, 1)
	usableH := math.Max(height-2*margin, 1)
	if len(pos) == 0 {
		return frame{offX: margin + usableW/2, offY: margin + usableH/2}
	}

	dx, dy := maxX-minX, maxY-minY
	scale := math.Inf(1)
	if dx > 1e-9 {
		scale = usableW / dx
	}
	if dy > 1e-9 {
		scale = math.Min(scale, usableH/dy)
	}
	if math.IsInf(scale, 1) {
		scale = 0
	}
	return frame{
		minX:  minX,
		minY:  minY,
		scale: scale,
		offX:  margin + (usableW-dx*scale)/2,
		offY:  margin + (usableH-dy*scale)/2,
	}
}

func (f frame) apply(p layout.Position) Point {
	return Point{X: f.offX + (p.X-f.minX)*f.scale, Y: f.offY + (p.Y-f.minY)*f.scale}
}

type placedEdge struct {
	id      hypergraph.ID
	order   int
	members []hypergraph.ID
	points  []Point
}

// placeEdges projects every drawable edge, highest order first so small
// edges end up on top.
func placeEdges(h *hypergraph.Hypergraph, pos map[hypergraph.ID]layout.Position, f frame, maxOrder int) ([]placedEdge, error) {
	var out []placedEdge
	for _, eid := range h.Edges() {
		members, _ := h.Members(eid)
		order := len(members) - 1
		if order < 1 || (maxOrder >= 0 && order > maxOrder) {
			continue
		}
		pts := make([]Point, len(members))
		for i, m := range members {
			p, ok := pos[m]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrMissingPosition, m)
			}
			pts[i] = f.apply(p)
		}
		out = append(out, placedEdge{id: eid, order: order, members: members, points: pts})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].order > out[j].order })
	return out, nil
}

// SVG draws h at the given positions: edges of order two and up as filled
// hulls coloured by order, dyads as lines, nodes as circles.
func SVG(w io.Writer, h *hypergraph.Hypergraph, pos map[hypergraph.ID]layout.Position, style Style) error {
	style = style.withDefaults()
	for _, id := range h.Nodes() {
		if _, ok := pos[id]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingPosition, id)
		}
	}

	margin := float64(style.Padding) + style.MaxNodeSize + style.HullPadding
	f := fit(pos, float64(style.Width), float64(style.Height), margin)
	edges, err := placeEdges(h, pos, f, style.MaxOrder)
	if err != nil {
		return err
	}

	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(style.Width, style.Height)
	if style.Title != "" {
		canvas.Title(style.Title)
	}
	canvas.Rect(0, 0, style.Width, style.Height, "fill:"+style.Background)

	canvas.Gid("edges")
	for _, e := range edges {
		if e.order == 1 {
			a, b := e.points[0], e.points[1]
			canvas.Line(round(a.X), round(a.Y), round(b.X), round(b.Y),
				fmt.Sprintf("stroke:%s;stroke-width:%g", style.DyadColor, style.DyadLW))
			continue
		}
		hull := paddedHull(e.points, style.HullPadding)
		xs, ys := split(hull)
		color := style.EdgeColor(e.order)
		canvas.Polygon(xs, ys,
			fmt.Sprintf("fill:%s;fill-opacity:%g;stroke:%s;stroke-opacity:%g", color, style.EdgeAlpha, color, math.Min(1, 2*style.EdgeAlpha)))
	}
	canvas.Gend()

	sizes := spanOf(style.NodeSizeBy)
	colors := spanOf(style.NodeColorBy)
	canvas.Gid("nodes")
	for _, id := range h.Nodes() {
		p := f.apply(pos[id])
		r := style.NodeSize
		if v, ok := style.NodeSizeBy[id]; ok {
			r += sizes.at(v) * (style.MaxNodeSize - style.NodeSize)
		}
		fill := style.NodeFC
		if v, ok := style.NodeColorBy[id]; ok {
			fill = mix(style.NodeGradient[0], style.NodeGradient[1], colors.at(v))
		}
		canvas.Circle(round(p.X), round(p.Y), round(r),
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%g", fill, style.NodeEC, style.NodeLW))
	}
	canvas.Gend()

	if style.NodeLabels || style.EdgeLabels {
		canvas.Gstyle("font-family:sans-serif;font-size:10px;text-anchor:middle;dominant-baseline:central")
		if style.NodeLabels {
			for _, id := range h.Nodes() {
				p := f.apply(pos[id])
				canvas.Text(round(p.X), round(p.Y), id)
			}
		}
		if style.EdgeLabels {
			for _, e := range edges {
				c := f.apply(layout.Barycenter(pos, e.members))
				canvas.Text(round(c.X), round(c.Y), e.id, "fill:#444")
			}
		}
		canvas.Gend()
	}

	canvas.End()
	return ew.err
}

func split(pts []Point) ([]int, []int) {
	xs := make([]int, len(pts))
	ys := make([]int, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = round(p.X), round(p.Y)
	}
	return xs, ys
}

func round(v float64) int { return int(math.Round(v)) }
