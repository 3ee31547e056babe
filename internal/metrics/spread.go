package metrics

import (
	"math"

	"github.com/san-kum/arbor/internal/attr"
)

// Spread is the standard deviation of one attribute across the trees of a
// scene, averaged over observations.
type Spread struct {
	name    string
	attr    attr.Name
	samples int
	total   float64
}

func NewSpread(n attr.Name) *Spread {
	return &Spread{name: "spread_" + n.String(), attr: n}
}

func (s *Spread) Name() string { return s.name }

func (s *Spread) Observe(trees []attr.Values, root int) {
	if len(trees) == 0 {
		return
	}
	s.total += StdDev(trees, s.attr)
	s.samples++
}

func (s *Spread) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return s.total / float64(s.samples)
}

func (s *Spread) Reset() {
	s.total = 0
	s.samples = 0
}

// StdDev returns the population standard deviation of attribute n.
func StdDev(trees []attr.Values, n attr.Name) float64 {
	if len(trees) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range trees {
		mean += v[n]
	}
	mean /= float64(len(trees))

	variance := 0.0
	for _, v := range trees {
		d := v[n] - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(trees)))
}
