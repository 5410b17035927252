package draw

import (
	"math"
	"sort"

	"github.com/san-kum/hyperlab/internal/layout"
)

type Point = layout.Position

func cross(o, a, b Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// ConvexHull returns the hull of points in counter-clockwise order (for a
// y-up frame) without collinear vertices, using Andrew's monotone chain.
// Fewer than three distinct points come back deduplicated.
func ConvexHull(points []Point) []Point {
	pts := make([]Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})
	uniq := pts[:0]
	for i, p := range pts {
		if i == 0 || p != pts[i-1] {
			uniq = append(uniq, p)
		}
	}
	pts = uniq
	if len(pts) < 3 {
		return pts
	}

	hull := make([]Point, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// paddedHull surrounds every point with a ring of radius r before taking
// the hull, so edges with collinear members still get an area.
func paddedHull(points []Point, r float64) []Point {
	const ring = 12
	if r <= 0 {
		return ConvexHull(points)
	}
	cloud := make([]Point, 0, len(points)*ring)
	for _, p := range points {
		for k := 0; k < ring; k++ {
			a := 2 * math.Pi * float64(k) / ring
			cloud = append(cloud, Point{X: p.X + r*math.Cos(a), Y: p.Y + r*math.Sin(a)})
		}
	}
	return ConvexHull(cloud)
}
