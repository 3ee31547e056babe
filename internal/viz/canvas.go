package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/arbor/internal/render"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// noTone marks a cell with no dots.
const noTone = -1

// Canvas is a braille dot grid. Each cell remembers the tone of the last
// stroke that touched it, so a rendered tree shows mature wood and leaves
// in different colours.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Tones         [][]render.Tone
	tone          render.Tone
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		Tones:  make([][]render.Tone, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Tones[i] = make([]render.Tone, w)
	}
	c.Clear()
	return c
}

// SubSize returns the canvas size in dots.
func (c *Canvas) SubSize() (int, int) { return c.Width * 2, c.Height * 4 }

// SetTone selects the tone for subsequent Set and DrawLine calls.
func (c *Canvas) SetTone(t render.Tone) { c.tone = t }

// Set sets a dot at (x, y) in sub-pixel coordinates.
// The canvas size in sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	c.Tones[row][col] = c.tone
}

// Unset clears a dot
func (c *Canvas) Unset(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] &^= rune(pixelMap[y%4][x%2])
	if c.Grid[row][col] == blank {
		c.Tones[row][col] = noTone
	}
}

// IsSet reports whether the dot at (x, y) is on.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.Tones[i][j] = noTone
		}
	}
}

// Dots returns the number of dots that are on.
func (c *Canvas) Dots() int {
	n := 0
	for _, row := range c.Grid {
		for _, r := range row {
			for p := r - blank; p != 0; p &= p - 1 {
				n++
			}
		}
	}
	return n
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// String renders the dots without colour.
func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render renders the dots coloured by tone. Runs of cells with the same
// tone share one style call.
func (c *Canvas) Render(theme Theme) string {
	styles := map[render.Tone]lipgloss.Style{
		render.Mature: lipgloss.NewStyle().Foreground(theme.Mature),
		render.Leaf:   lipgloss.NewStyle().Foreground(theme.Leaf),
	}

	var b strings.Builder
	for i, row := range c.Grid {
		start := 0
		for j := 1; j <= len(row); j++ {
			if j < len(row) && c.Tones[i][j] == c.Tones[i][start] {
				continue
			}
			run := string(row[start:j])
			if st, ok := styles[c.Tones[i][start]]; ok {
				run = st.Render(run)
			}
			b.WriteString(run)
			start = j
		}
		if i < len(c.Grid)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
