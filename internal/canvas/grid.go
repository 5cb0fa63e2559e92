package canvas

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/nsf/termbox-go"
)

var (
	// ErrTooSmall is returned when the surface cannot hold a usable plot area
	ErrTooSmall = errors.New("canvas too small for plot")
	// ErrClosed is returned when presenting to a closed surface
	ErrClosed = errors.New("canvas closed")
)

const (
	runeAxisV      = '│'
	runeAxisH      = '─'
	runeAxisCorner = '└'
	runeTickY      = '┤'
	runeTickX      = '┬'
	runeGridH      = '┈'
	runeGridV      = '┊'
	runeGridCross  = '┼'
)

// Snapshot holds a copy of the cells of one rectangular region
type Snapshot struct {
	Bounds image.Rectangle
	cells  []termbox.Cell
}

// Grid is an in-memory cell surface with a back buffer for drawing and a
// front buffer holding what was last presented. Present copies only the
// region touched since the previous Present.
type Grid struct {
	width  int
	height int
	back   []termbox.Cell
	front  []termbox.Cell
	dirty  image.Rectangle
	plot   image.Rectangle // plot area of the last scene, curves are clipped to it
	style  Style
	frames int
	closed bool
}

// NewGrid creates a blank surface of width x height cells
func NewGrid(width, height int, style Style) *Grid {
	width = max(width, 0)
	height = max(height, 0)
	g := &Grid{
		width:  width,
		height: height,
		back:   make([]termbox.Cell, width*height),
		front:  make([]termbox.Cell, width*height),
		style:  style,
	}
	blank := termbox.Cell{Ch: ' ', Fg: style.Fg, Bg: style.Bg}
	for i := range g.back {
		g.back[i] = blank
		g.front[i] = blank
	}
	return g
}

// Bounds returns the full surface rectangle
func (g *Grid) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.width, g.height)
}

// Plot returns the plot area computed by the last DrawScene
func (g *Grid) Plot() image.Rectangle {
	return g.plot
}

// Frames returns the number of frames presented so far
func (g *Grid) Frames() int {
	return g.frames
}

// Cell returns the back-buffer cell at (x, y)
func (g *Grid) Cell(x, y int) termbox.Cell {
	if !image.Pt(x, y).In(g.Bounds()) {
		return termbox.Cell{}
	}
	return g.back[y*g.width+x]
}

// Frame returns a copy of the last presented cells, row-major
func (g *Grid) Frame() []termbox.Cell {
	out := make([]termbox.Cell, len(g.front))
	copy(out, g.front)
	return out
}

// Row returns the runes of presented row y as a string
func (g *Grid) Row(y int) string {
	if y < 0 || y >= g.height {
		return ""
	}
	var b strings.Builder
	for _, c := range g.front[y*g.width : (y+1)*g.width] {
		b.WriteRune(c.Ch)
	}
	return b.String()
}

// SetCell draws one cell; coordinates outside the surface are ignored
func (g *Grid) SetCell(x, y int, ch rune, fg, bg termbox.Attribute) {
	if !image.Pt(x, y).In(g.Bounds()) {
		return
	}
	g.back[y*g.width+x] = termbox.Cell{Ch: ch, Fg: fg, Bg: bg}
	g.markDirty(image.Rect(x, y, x+1, y+1))
}

func (g *Grid) putString(x, y int, s string, fg termbox.Attribute) {
	col := 0
	for _, r := range s {
		g.SetCell(x+col, y, r, fg, g.style.Bg)
		col++
	}
}

func (g *Grid) markDirty(r image.Rectangle) {
	if g.dirty.Empty() {
		g.dirty = r
		return
	}
	g.dirty = g.dirty.Union(r)
}

// DrawScene clears the surface and draws title, labels, axes, ticks and the
// optional grid. It returns the plot area the curve is drawn into.
func (g *Grid) DrawScene(scene Scene) (image.Rectangle, error) {
	yTicks := ticks(scene.Y, scene.YTicks)
	yLabels := make([]string, len(yTicks))
	labelWidth := 0
	for i, v := range yTicks {
		yLabels[i] = strconv.FormatFloat(v, 'g', 4, 64)
		labelWidth = max(labelWidth, len(yLabels[i]))
	}

	// Rows: title, y label, plot..., x axis, x tick labels, x label
	axisX := labelWidth
	axisY := g.height - 3
	plot := image.Rect(axisX+1, 2, g.width-1, axisY)
	if plot.Dx() < 2 || plot.Dy() < 2 {
		return image.Rectangle{}, fmt.Errorf("%w: %dx%d cells", ErrTooSmall, g.width, g.height)
	}

	st := g.style
	for i := range g.back {
		g.back[i] = termbox.Cell{Ch: ' ', Fg: st.Fg, Bg: st.Bg}
	}

	g.putString(centered(scene.Title, 0, g.width), 0, scene.Title, st.Title)
	g.putString(0, 1, scene.YLabel, st.Fg)

	xTicks := ticks(scene.X, scene.XTicks)
	if scene.Grid {
		// Skip the minimum ticks, they sit right next to the axes
		for _, v := range yTicks[1:] {
			row := Project(plot, scene, scene.X.Min, v).Y
			for x := plot.Min.X; x < plot.Max.X; x++ {
				g.SetCell(x, row, runeGridH, st.Grid, st.Bg)
			}
		}
		for _, v := range xTicks[1:] {
			col := Project(plot, scene, v, scene.Y.Min).X
			for y := plot.Min.Y; y < plot.Max.Y; y++ {
				ch := runeGridV
				if g.Cell(col, y).Ch == runeGridH {
					ch = runeGridCross
				}
				g.SetCell(col, y, ch, st.Grid, st.Bg)
			}
		}
	}

	for y := plot.Min.Y; y < plot.Max.Y; y++ {
		g.SetCell(axisX, y, runeAxisV, st.Axis, st.Bg)
	}
	for x := plot.Min.X; x < plot.Max.X; x++ {
		g.SetCell(x, axisY, runeAxisH, st.Axis, st.Bg)
	}
	g.SetCell(axisX, axisY, runeAxisCorner, st.Axis, st.Bg)

	for i, v := range yTicks {
		row := Project(plot, scene, scene.X.Min, v).Y
		g.SetCell(axisX, row, runeTickY, st.Axis, st.Bg)
		g.putString(axisX-len(yLabels[i]), row, yLabels[i], st.Fg)
	}
	for _, v := range xTicks {
		col := Project(plot, scene, v, scene.Y.Min).X
		g.SetCell(col, axisY, runeTickX, st.Axis, st.Bg)
		label := strconv.FormatFloat(v, 'f', 0, 64)
		x := min(max(col-len(label)/2, 0), g.width-len(label))
		g.putString(x, axisY+1, label, st.Fg)
	}

	g.putString(centered(scene.XLabel, plot.Min.X, plot.Max.X), g.height-1, scene.XLabel, st.Fg)

	g.plot = plot
	g.markDirty(g.Bounds())
	return plot, nil
}

// centered returns the column at which s is centred between from and to
func centered(s string, from, to int) int {
	return max(from+(to-from-utf8.RuneCountInString(s))/2, 0)
}

// CaptureRegion copies the cells of r, clipped to the surface
func (g *Grid) CaptureRegion(r image.Rectangle) *Snapshot {
	r = r.Intersect(g.Bounds())
	s := &Snapshot{Bounds: r, cells: make([]termbox.Cell, r.Dx()*r.Dy())}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := y * g.width
		copy(s.cells[(y-r.Min.Y)*r.Dx():], g.back[row+r.Min.X:row+r.Max.X])
	}
	return s
}

// RestoreRegion writes a snapshot back to where it was captured
func (g *Grid) RestoreRegion(s *Snapshot) {
	if s == nil || s.Bounds.Empty() || !s.Bounds.In(g.Bounds()) {
		return
	}
	r := s.Bounds
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := y * g.width
		copy(g.back[row+r.Min.X:row+r.Max.X], s.cells[(y-r.Min.Y)*r.Dx():])
	}
	g.markDirty(r)
}

// DrawCurve joins consecutive points with line segments, clipped to the
// plot area of the last scene (or the whole surface before any scene).
func (g *Grid) DrawCurve(points []image.Point) {
	clip := g.plot
	if clip.Empty() {
		clip = g.Bounds()
	}
	for i, p := range points {
		if i == 0 {
			g.plotPoint(p, clip)
			continue
		}
		g.segment(points[i-1], p, clip)
	}
	g.markDirty(clip)
}

func (g *Grid) plotPoint(p image.Point, clip image.Rectangle) {
	if !p.In(clip) {
		return
	}
	g.back[p.Y*g.width+p.X] = termbox.Cell{Ch: g.style.CurveRune, Fg: g.style.Curve, Bg: g.style.Bg}
}

// segment rasterises a-b with Bresenham's algorithm
func (g *Grid) segment(a, b image.Point, clip image.Rectangle) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	e := dx + dy
	for {
		g.plotPoint(a, clip)
		if a == b {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			a.X += sx
		}
		if e2 <= dx {
			e += dx
			a.Y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Present copies the dirty region into the front buffer
func (g *Grid) Present() error {
	if g.closed {
		return ErrClosed
	}
	g.flush(g.front, g.width)
	return nil
}

// flush copies the dirty region of the back buffer into dst, a row-major
// buffer dstWidth cells wide, then clears the dirty region.
func (g *Grid) flush(dst []termbox.Cell, dstWidth int) {
	r := g.dirty
	g.dirty = image.Rectangle{}
	g.frames++
	if dstWidth <= 0 {
		return
	}
	r = r.Intersect(image.Rect(0, 0, dstWidth, len(dst)/dstWidth))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		copy(dst[y*dstWidth+r.Min.X:y*dstWidth+r.Max.X], g.back[y*g.width+r.Min.X:y*g.width+r.Max.X])
	}
}

// Close marks the surface closed; further presents fail
func (g *Grid) Close() error {
	g.closed = true
	return nil
}
