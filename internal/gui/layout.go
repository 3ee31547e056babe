package gui

import (
	"errors"
	"image/color"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/arbor/internal/viz"
)

var (
	ErrUnavailable = errors.New("gui: built without cgo, no window support")
	ErrWindow      = errors.New("gui: window could not be created")
)

// Rect is a screen rectangle in pixels.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Layout places tree panels on a grid below a header strip.
type Layout struct {
	Columns int
	Count   int
	CellW   int
	CellH   int
	Pad     int
	Header  int
}

// Rows returns the number of grid rows.
func (l Layout) Rows() int {
	if l.Columns <= 0 {
		return 0
	}
	return (l.Count + l.Columns - 1) / l.Columns
}

// Window returns the window size the layout needs.
func (l Layout) Window() (int, int) {
	w := l.Columns*(l.CellW+l.Pad) + l.Pad
	h := l.Header + l.Rows()*(l.CellH+l.Pad) + l.Pad
	return w, h
}

// Rect returns panel i's rectangle.
func (l Layout) Rect(i int) Rect {
	col, row := i%l.Columns, i/l.Columns
	return Rect{
		X: l.Pad + col*(l.CellW+l.Pad),
		Y: l.Header + l.Pad + row*(l.CellH+l.Pad),
		W: l.CellW,
		H: l.CellH,
	}
}

// Hit returns the panel under (x, y).
func (l Layout) Hit(x, y int) (int, bool) {
	for i := 0; i < l.Count; i++ {
		if l.Rect(i).Contains(x, y) {
			return i, true
		}
	}
	return 0, false
}

// Options configures the window.
type Options struct {
	Columns int
	CellW   int
	CellH   int
	Theme   string
	Title   string
}

// NewLayout derives the grid from opts for count panels.
func NewLayout(opts Options, count int) Layout {
	if opts.Columns <= 0 {
		opts.Columns = 3
	}
	if opts.CellW <= 0 {
		opts.CellW = 240
	}
	if opts.CellH <= 0 {
		opts.CellH = 240
	}
	return Layout{Columns: opts.Columns, Count: count, CellW: opts.CellW, CellH: opts.CellH, Pad: 12, Header: 36}
}

// RGBA converts a theme colour for drawing.
func RGBA(c lipgloss.Color) color.RGBA {
	r, g, b := viz.RGB(c)
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
