// Package export writes tree scenes and journal charts as SVG and PNG.
package export

import (
	"errors"
	"image/color"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/arbor/internal/render"
	"github.com/san-kum/arbor/internal/viz"
)

var ErrNoTrees = errors.New("export: no trees")

// Options lays out a scene as a grid of cells, each one a drawing surface
// of CellW x CellH units.
type Options struct {
	Columns int
	CellW   float64
	CellH   float64
	Margin  float64
	Theme   viz.Theme
	// Root outlines one cell; negative for none.
	Root int
}

// DefaultOptions matches the terminal and window defaults.
func DefaultOptions() Options {
	return Options{
		Columns: 3,
		CellW:   200,
		CellH:   200,
		Margin:  render.DefaultMargin,
		Theme:   viz.ThemeForest,
		Root:    -1,
	}
}

func (o Options) normalize(n int) Options {
	d := DefaultOptions()
	if o.Columns <= 0 {
		o.Columns = d.Columns
	}
	if o.Columns > n {
		o.Columns = n
	}
	if o.CellW <= 0 {
		o.CellW = d.CellW
	}
	if o.CellH <= 0 {
		o.CellH = d.CellH
	}
	if o.Margin <= 0 {
		o.Margin = d.Margin
	}
	if o.Theme.Name == "" {
		o.Theme = d.Theme
	}
	return o
}

func (o Options) rows(n int) int {
	return (n + o.Columns - 1) / o.Columns
}

func (o Options) size(n int) (float64, float64) {
	return float64(o.Columns) * o.CellW, float64(o.rows(n)) * o.CellH
}

func (o Options) origin(i int) (float64, float64) {
	return float64(i%o.Columns) * o.CellW, float64(i/o.Columns) * o.CellH
}

func toneColor(theme viz.Theme, t render.Tone) color.RGBA {
	if t == render.Leaf {
		return rgba(theme.Leaf)
	}
	return rgba(theme.Mature)
}

func rgba(c lipgloss.Color) color.RGBA {
	r, g, b := viz.RGB(c)
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func hex(c color.RGBA) string {
	const digits = "0123456789abcdef"
	buf := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, v := range []uint8{c.R, c.G, c.B} {
		buf[1+2*i] = digits[v>>4]
		buf[2+2*i] = digits[v&0xf]
	}
	return string(buf)
}

func sortedKeys(m map[string][]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
