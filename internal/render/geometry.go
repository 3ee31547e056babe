package render

import (
	"math"

	"github.com/san-kum/arbor/internal/attr"
)

const (
	// MatureThreshold is the segment length at and above which strokes use
	// the Mature tone.
	MatureThreshold = 10.0

	// DefaultMargin is the gap between the trunk base and the surface bottom.
	DefaultMargin = 5.0
)

// Tone selects a stroke colour.
type Tone int

const (
	Mature Tone = iota
	Leaf
)

func (t Tone) String() string {
	if t == Leaf {
		return "leaf"
	}
	return "mature"
}

// ToneFor returns the tone for a segment of the given length.
func ToneFor(length float64) Tone {
	if length < MatureThreshold {
		return Leaf
	}
	return Mature
}

// Point is a position in surface coordinates (y grows downward).
type Point struct{ X, Y float64 }

// Segment is one straight line.
type Segment struct{ From, To Point }

// Stroke is one batched draw call: every segment of one generation.
// Generation 0 is the trunk.
type Stroke struct {
	Generation int
	Width      float64
	Length     float64
	Tone       Tone
	Segments   []Segment
}

// tip is a branch end point in y-up coordinates with its bearing in degrees.
type tip struct {
	x, y, angle float64
}

// growth carries the geometry of one draw from generation to generation.
// It is passed by value, so each draw request owns its own copy.
type growth struct {
	tips       []tip
	length     float64
	width      float64
	divergence float64
	reduction  float64
	height     float64
	gen        int
	last       int
}

// seed returns the trunk stroke and the growth state for generation 1.
func seed(v attr.Values, w, h, margin float64) (Stroke, growth) {
	length := v[attr.Length]
	trunk := tip{x: w / 2, y: length + margin, angle: 90}

	s := Stroke{
		Generation: 0,
		Width:      v[attr.LineWidth],
		Length:     length,
		Tone:       ToneFor(length),
		Segments: []Segment{{
			From: Point{X: trunk.x, Y: h - margin},
			To:   Point{X: trunk.x, Y: h - trunk.y},
		}},
	}

	g := growth{
		tips:       []tip{trunk},
		length:     length,
		width:      v[attr.LineWidth],
		divergence: v[attr.Divergence],
		reduction:  v[attr.Reduction],
		height:     h,
		last:       v.Generations(),
	}
	return s, g
}

func (g growth) done() bool { return g.gen >= g.last }

// next draws one generation: every tip forks into two children at
// angle±divergence, at the reduced length.
func (g growth) next() (Stroke, growth) {
	g.gen++
	g.length *= g.reduction
	g.width *= g.reduction

	tips := make([]tip, 0, len(g.tips)*2)
	segs := make([]Segment, 0, len(g.tips)*2)
	for _, sp := range g.tips {
		for _, angle := range [2]float64{sp.angle + g.divergence, sp.angle - g.divergence} {
			ep := endpoint(sp, angle, g.length)
			segs = append(segs, Segment{
				From: Point{X: sp.x, Y: g.height - sp.y},
				To:   Point{X: ep.x, Y: g.height - ep.y},
			})
			tips = append(tips, ep)
		}
	}
	g.tips = tips

	return Stroke{
		Generation: g.gen,
		Width:      g.width,
		Length:     g.length,
		Tone:       ToneFor(g.length),
		Segments:   segs,
	}, g
}

func endpoint(from tip, angle, length float64) tip {
	rad := angle * math.Pi / 180
	return tip{
		x:     from.x + length*math.Cos(rad),
		y:     from.y + length*math.Sin(rad),
		angle: angle,
	}
}

// Plan computes every stroke of a tree synchronously.
func Plan(v attr.Values, w, h, margin float64) []Stroke {
	trunk, g := seed(v, w, h, margin)
	strokes := make([]Stroke, 0, g.last+1)
	strokes = append(strokes, trunk)
	for !g.done() {
		var s Stroke
		s, g = g.next()
		strokes = append(strokes, s)
	}
	return strokes
}

// SegmentCount returns the number of segments drawn for a tree with the
// given branchings, trunk included: 1 + 2 + 4 + ... + 2^k.
func SegmentCount(branchings int) int {
	if branchings < 0 {
		return 0
	}
	return 1<<(branchings+1) - 1
}
