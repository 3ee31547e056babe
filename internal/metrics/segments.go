package metrics

import (
	"github.com/san-kum/arbor/internal/attr"
	"github.com/san-kum/arbor/internal/render"
)

// Segments is the number of line segments a scene draws, averaged over
// observations.
type Segments struct {
	samples int
	total   float64
}

func NewSegments() *Segments { return &Segments{} }

func (s *Segments) Name() string { return "segments" }

func (s *Segments) Observe(trees []attr.Values, root int) {
	s.total += float64(Count(trees))
	s.samples++
}

func (s *Segments) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return s.total / float64(s.samples)
}

func (s *Segments) Reset() {
	s.total = 0
	s.samples = 0
}

// Count returns the segments drawn for trees, trunks included.
func Count(trees []attr.Values) int {
	n := 0
	for _, v := range trees {
		n += render.SegmentCount(v.Generations())
	}
	return n
}
