package draw

import (
	"errors"
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
)

var ErrNoSeries = errors.New("draw: no series to plot")

// Series is one line of a plot. X may be nil, in which case the sample
// index is used.
type Series struct {
	Name  string
	X, Y  []float64
	Color string
}

type SeriesStyle struct {
	Width, Height int
	Title         string
	XLabel        string
	YLabel        string
	// YMin and YMax fix the y range when YMax > YMin.
	YMin, YMax float64
}

func DefaultSeriesStyle() SeriesStyle {
	return SeriesStyle{Width: 640, Height: 360}
}

var seriesColors = []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd"}

// SeriesSVG draws each series as a polyline inside a framed plot area.
func SeriesSVG(w io.Writer, series []Series, style SeriesStyle) error {
	if len(series) == 0 {
		return ErrNoSeries
	}
	if style.Width <= 0 || style.Height <= 0 {
		d := DefaultSeriesStyle()
		style.Width, style.Height = d.Width, d.Height
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for i, y := range s.Y {
			x := xAt(s, i)
			minX, maxX = math.Min(minX, x), math.Max(maxX, x)
			if !math.IsNaN(y) {
				minY, maxY = math.Min(minY, y), math.Max(maxY, y)
			}
		}
	}
	if math.IsInf(minX, 1) {
		return ErrNoSeries
	}
	if style.YMax > style.YMin {
		minY, maxY = style.YMin, style.YMax
	}
	if maxX-minX < 1e-12 {
		maxX = minX + 1
	}
	if maxY-minY < 1e-12 {
		minY, maxY = minY-0.5, maxY+0.5
	}

	const left, right, top, bottom = 56, 16, 32, 40
	plotW := float64(style.Width - left - right)
	plotH := float64(style.Height - top - bottom)
	px := func(x float64) int { return left + round((x-minX)/(maxX-minX)*plotW) }
	py := func(y float64) int { return top + round((1-(y-minY)/(maxY-minY))*plotH) }

	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(style.Width, style.Height)
	canvas.Rect(0, 0, style.Width, style.Height, "fill:white")
	canvas.Rect(left, top, int(plotW), int(plotH), "fill:none;stroke:#888")

	canvas.Gstyle("font-family:sans-serif;font-size:11px;fill:#333")
	if style.Title != "" {
		canvas.Text(style.Width/2, top-12, style.Title, "text-anchor:middle;font-size:13px")
	}
	canvas.Text(left-6, top+4, fmt.Sprintf("%.3g", maxY), "text-anchor:end")
	canvas.Text(left-6, top+int(plotH), fmt.Sprintf("%.3g", minY), "text-anchor:end")
	canvas.Text(left, top+int(plotH)+16, fmt.Sprintf("%.3g", minX), "text-anchor:start")
	canvas.Text(left+int(plotW), top+int(plotH)+16, fmt.Sprintf("%.3g", maxX), "text-anchor:end")
	if style.XLabel != "" {
		canvas.Text(left+int(plotW)/2, style.Height-8, style.XLabel, "text-anchor:middle")
	}
	if style.YLabel != "" {
		canvas.Text(14, top+int(plotH)/2, style.YLabel, "text-anchor:middle")
	}
	canvas.Gend()

	for k, s := range series {
		color := s.Color
		if color == "" {
			color = seriesColors[k%len(seriesColors)]
		}
		xs := make([]int, 0, len(s.Y))
		ys := make([]int, 0, len(s.Y))
		for i, y := range s.Y {
			if math.IsNaN(y) {
				continue
			}
			xs = append(xs, px(xAt(s, i)))
			ys = append(ys, py(math.Max(minY, math.Min(maxY, y))))
		}
		canvas.Polyline(xs, ys, fmt.Sprintf("fill:none;stroke:%s;stroke-width:1.5", color))
		if s.Name != "" {
			canvas.Text(left+int(plotW)-4, top+14+14*k, s.Name, fmt.Sprintf("text-anchor:end;font-family:sans-serif;font-size:11px;fill:%s", color))
		}
	}

	canvas.End()
	return ew.err
}

func xAt(s Series, i int) float64 {
	if i < len(s.X) {
		return s.X[i]
	}
	return float64(i)
}
