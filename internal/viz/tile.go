package viz

import (
	"math"
	"sync"

	"github.com/san-kum/arbor/internal/render"
)

// Tile is a render.Surface backed by a braille Canvas. Trees are drawn in
// surface units and scaled onto the canvas dots, so the geometry does not
// depend on the terminal size.
type Tile struct {
	mu        sync.Mutex
	canvas    *Canvas
	w, h      float64
	highlight bool
	version   uint64
}

// NewTile returns a tile of cols x rows terminal cells presenting a w x h
// drawing surface.
func NewTile(cols, rows int, w, h float64) *Tile {
	return &Tile{canvas: NewCanvas(cols, rows), w: w, h: h}
}

func (t *Tile) Size() (float64, float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.w, t.h
}

func (t *Tile) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.canvas.Clear()
	t.version++
}

func (t *Tile) Stroke(s render.Stroke) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sw, sh := t.canvas.SubSize()
	fx, fy := float64(sw)/t.w, float64(sh)/t.h
	t.canvas.SetTone(s.Tone)
	for _, seg := range s.Segments {
		t.canvas.DrawLine(
			int(math.Round(seg.From.X*fx)), int(math.Round(seg.From.Y*fy)),
			int(math.Round(seg.To.X*fx)), int(math.Round(seg.To.Y*fy)),
		)
	}
	t.version++
}

func (t *Tile) SetHighlight(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.highlight = on
	t.version++
}

// Highlighted reports whether the tile shows the root tree.
func (t *Tile) Highlighted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.highlight
}

// Version increases on every change.
func (t *Tile) Version() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.version
}

// Render returns the coloured canvas.
func (t *Tile) Render(theme Theme) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.canvas.Render(theme)
}

// Dots returns the number of lit dots.
func (t *Tile) Dots() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.canvas.Dots()
}

// Frame returns a copy of the underlying canvas.
func (t *Tile) Frame() *Canvas {
	t.mu.Lock()
	defer t.mu.Unlock()
	c := NewCanvas(t.canvas.Width, t.canvas.Height)
	for i := range t.canvas.Grid {
		copy(c.Grid[i], t.canvas.Grid[i])
		copy(c.Tones[i], t.canvas.Tones[i])
	}
	return c
}
