// Package canvas provides cell-based drawing surfaces for the live plot:
// a headless Grid and a termbox-backed Terminal built on top of it.
package canvas

import (
	"image"
	"math"

	"github.com/nsf/termbox-go"
)

// Range is a closed interval of data values
type Range struct {
	Min float64
	Max float64
}

// Span returns the width of the interval
func (r Range) Span() float64 {
	return r.Max - r.Min
}

// Scene describes the static part of a plot: labels, axes and scale
type Scene struct {
	Title  string
	XLabel string
	YLabel string
	X      Range // horizontal data range (sample position)
	Y      Range // vertical data range (amplitude)
	XTicks int   // labelled divisions along the horizontal axis
	YTicks int   // labelled divisions along the vertical axis
	Grid   bool  // draw dotted gridlines at each tick
}

// Style selects the attributes used for each element of a plot
type Style struct {
	Fg        termbox.Attribute
	Bg        termbox.Attribute
	Title     termbox.Attribute
	Axis      termbox.Attribute
	Grid      termbox.Attribute
	Curve     termbox.Attribute
	CurveRune rune
}

// DefaultStyle returns the house style: red curve, bold title, blue grid
func DefaultStyle() Style {
	return Style{
		Fg:        termbox.ColorDefault,
		Bg:        termbox.ColorDefault,
		Title:     termbox.ColorDefault | termbox.AttrBold,
		Axis:      termbox.ColorDefault,
		Grid:      termbox.ColorBlue,
		Curve:     termbox.ColorRed | termbox.AttrBold,
		CurveRune: '*',
	}
}

// Project maps the data point (x, y) onto a cell of plot.
// Y.Min lands on the bottom row and Y.Max on the top row. Values outside the
// scene ranges map outside plot, at most one plot size away.
func Project(plot image.Rectangle, scene Scene, x, y float64) image.Point {
	return image.Point{
		X: plot.Min.X + scale(x, scene.X, plot.Dx()),
		Y: plot.Max.Y - 1 - scale(y, scene.Y, plot.Dy()),
	}
}

func scale(v float64, r Range, cells int) int {
	span := r.Span()
	if cells <= 1 || span <= 0 || math.IsNaN(v) {
		return 0
	}
	t := (v - r.Min) / span
	t = math.Max(-1, math.Min(2, t))
	return int(math.Round(t * float64(cells-1)))
}

// ticks returns n+1 evenly spaced values covering r
func ticks(r Range, n int) []float64 {
	if n < 1 {
		n = 1
	}
	values := make([]float64, n+1)
	for i := range values {
		values[i] = r.Min + float64(i)*r.Span()/float64(n)
	}
	return values
}
