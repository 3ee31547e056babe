package metrics

import (
	"math"

	"github.com/san-kum/arbor/internal/attr"
)

// Drift is the largest distance one root attribute has moved from its
// first observed value.
type Drift struct {
	name     string
	attr     attr.Name
	initial  float64
	maxDrift float64
	started  bool
}

func NewDrift(n attr.Name) *Drift {
	return &Drift{name: "drift_" + n.String(), attr: n}
}

func (d *Drift) Name() string { return d.name }

func (d *Drift) Observe(trees []attr.Values, root int) {
	if root < 0 || root >= len(trees) {
		return
	}
	x := trees[root][d.attr]
	if !d.started {
		d.initial, d.started = x, true
		return
	}
	if dd := math.Abs(x - d.initial); dd > d.maxDrift {
		d.maxDrift = dd
	}
}

func (d *Drift) Value() float64 { return d.maxDrift }

func (d *Drift) Reset() {
	d.maxDrift = 0
	d.started = false
}

// RootSeries extracts attribute n of the root from a sequence of scenes.
func RootSeries(scenes [][]attr.Values, roots []int, n attr.Name) []float64 {
	out := make([]float64, 0, len(scenes))
	for i, trees := range scenes {
		if i >= len(roots) || roots[i] < 0 || roots[i] >= len(trees) {
			continue
		}
		out = append(out, trees[roots[i]][n])
	}
	return out
}
