// Package metrics summarizes scenes: how far trees spread from each other,
// how much they draw and how far the root wanders over a session.
package metrics

import "github.com/san-kum/arbor/internal/attr"

// Metric accumulates observations of a scene.
type Metric interface {
	Name() string
	Observe(trees []attr.Values, root int)
	Value() float64
	Reset()
}

// Set observes a scene with several metrics at once.
type Set []Metric

// Default returns the metrics recorded with every journal entry.
func Default() Set {
	s := Set{NewSegments()}
	for _, n := range attr.Names() {
		s = append(s, NewSpread(n), NewDrift(n))
	}
	return s
}

func (s Set) Observe(trees []attr.Values, root int) {
	for _, m := range s {
		m.Observe(trees, root)
	}
}

func (s Set) Reset() {
	for _, m := range s {
		m.Reset()
	}
}

// Values returns every metric's current value by name.
func (s Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s))
	for _, m := range s {
		out[m.Name()] = m.Value()
	}
	return out
}
