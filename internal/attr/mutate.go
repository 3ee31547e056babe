package attr

import (
	"math/rand"
	"time"
)

// Mutator applies the single-attribute random walk.
type Mutator struct {
	table Table
	rng   *rand.Rand
}

// NewMutator returns a mutator over table. A nil rng is seeded from the clock.
func NewMutator(table Table, rng *rand.Rand) *Mutator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Mutator{table: table, rng: rng}
}

// Table returns the attribute table the mutator walks over.
func (m *Mutator) Table() Table { return m.table }

// MutateOne perturbs one uniformly chosen attribute of cur by a uniform
// delta in [-VaryBy, +VaryBy], then clamps and quantizes it. All other
// attributes are copied unchanged. It returns the new values and the name
// of the attribute it picked.
func (m *Mutator) MutateOne(cur Values) (Values, Name) {
	name := Name(m.rng.Intn(Count))
	spec := m.table[name]

	delta := (m.rng.Float64()*2 - 1) * spec.VaryBy
	x := spec.Clamp(cur[name] + delta)
	x = spec.Clamp(spec.Quantize(x))

	cur[name] = x
	return cur, name
}

// Initialize starts from baseline, or from the table's initial values when
// baseline is nil, and applies exactly one MutateOne step.
func (m *Mutator) Initialize(baseline *Values) Values {
	start := m.table.Defaults()
	if baseline != nil {
		start = *baseline
	}
	v, _ := m.MutateOne(start)
	return v
}
