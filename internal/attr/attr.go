package attr

import (
	"fmt"
	"math"
)

// Spec describes how one attribute starts and how far it may wander.
// Min and Max are optional; a nil bound leaves that side open.
type Spec struct {
	Initial float64  `yaml:"initial" toml:"initial" json:"initial"`
	VaryBy  float64  `yaml:"vary_by" toml:"vary_by" json:"vary_by"`
	Min     *float64 `yaml:"min,omitempty" toml:"min,omitempty" json:"min,omitempty"`
	Max     *float64 `yaml:"max,omitempty" toml:"max,omitempty" json:"max,omitempty"`
	Round   bool     `yaml:"round,omitempty" toml:"round,omitempty" json:"round,omitempty"`
}

// Bound returns a pointer to v for use as Spec.Min or Spec.Max.
func Bound(v float64) *float64 { return &v }

// Clamp limits v to the spec's bounds.
func (s Spec) Clamp(v float64) float64 {
	if s.Min != nil && v < *s.Min {
		v = *s.Min
	}
	if s.Max != nil && v > *s.Max {
		v = *s.Max
	}
	return v
}

// Quantize snaps v to the spec's storage precision: integers when Round is
// set, two decimal places otherwise.
func (s Spec) Quantize(v float64) float64 {
	if s.Round {
		return math.Round(v)
	}
	return math.Round(v*100) / 100
}

// Table holds one Spec per attribute, indexed by Name.
type Table [Count]Spec

// DefaultTable returns the stock attribute table.
func DefaultTable() Table {
	return Table{
		Length:     {Initial: 65, VaryBy: 10, Min: Bound(25), Max: Bound(100)},
		Divergence: {Initial: 35, VaryBy: 30, Min: Bound(5), Max: Bound(70)},
		Reduction:  {Initial: 0.625, VaryBy: 0.3, Min: Bound(0.5), Max: Bound(0.75)},
		LineWidth:  {Initial: 6, VaryBy: 0},
		Branchings: {Initial: 0, VaryBy: 2, Min: Bound(0), Max: Bound(8), Round: true},
	}
}

// Validate checks every spec in the table.
func (t Table) Validate() error {
	for i, s := range t {
		name := Name(i)
		if s.VaryBy < 0 || math.IsNaN(s.VaryBy) {
			return fmt.Errorf("%w: %s vary_by %v is negative", ErrInvalidSpec, name, s.VaryBy)
		}
		if s.Min != nil && s.Max != nil && *s.Min > *s.Max {
			return fmt.Errorf("%w: %s min %v exceeds max %v", ErrInvalidSpec, name, *s.Min, *s.Max)
		}
		if s.Initial != s.Clamp(s.Initial) {
			return fmt.Errorf("%w: %s initial %v outside bounds", ErrInvalidSpec, name, s.Initial)
		}
	}
	b := t[Branchings]
	if !b.Round {
		return fmt.Errorf("%w: branchings must be rounded", ErrInvalidSpec)
	}
	if b.Min != nil && *b.Min < 0 {
		return fmt.Errorf("%w: branchings min %v is negative", ErrInvalidSpec, *b.Min)
	}
	if b.Initial < 0 || b.Initial != math.Round(b.Initial) {
		return fmt.Errorf("%w: branchings initial %v", ErrInvalidSpec, b.Initial)
	}
	return nil
}

// Defaults returns the initial value of every attribute.
func (t Table) Defaults() Values {
	var v Values
	for i, s := range t {
		v[i] = s.Initial
	}
	return v
}

// Clamp limits every value to its spec's bounds.
func (t Table) Clamp(v Values) Values {
	for i, s := range t {
		v[i] = s.Clamp(v[i])
	}
	return v
}

// Values holds the current value of every attribute, indexed by Name.
// Being an array, it is copied on assignment.
type Values [Count]float64

// Get returns the value of attribute n.
func (v Values) Get(n Name) float64 { return v[n] }

// With returns a copy of v with attribute n set to x.
func (v Values) With(n Name, x float64) Values {
	v[n] = x
	return v
}

// Generations returns the branchings attribute as a generation count.
func (v Values) Generations() int {
	return int(v[Branchings])
}

// Map returns the name-keyed view of v.
func (v Values) Map() map[string]float64 {
	m := make(map[string]float64, Count)
	for i, x := range v {
		m[Name(i).String()] = x
	}
	return m
}

// Slice returns the values in fixed attribute order.
func (v Values) Slice() []float64 {
	out := make([]float64, Count)
	copy(out, v[:])
	return out
}

// Validate rejects NaN or infinite values and a branchings value that is
// negative or fractional.
func (v Values) Validate() error {
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return &NameError{Name: Name(i).String(), Wrapped: ErrInvalidValue}
		}
	}
	b := v[Branchings]
	if b < 0 || b != math.Round(b) {
		return &NameError{Name: Branchings.String(), Wrapped: ErrNegativeBranchings}
	}
	return nil
}

// FromSlice builds Values from a positional list in fixed attribute order.
func FromSlice(xs []float64) (Values, error) {
	var v Values
	if len(xs) != Count {
		return v, fmt.Errorf("%w: got %d, want %d", ErrArity, len(xs), Count)
	}
	copy(v[:], xs)
	return v, nil
}

// Diff returns the attributes whose values differ between a and b.
func Diff(a, b Values) []Name {
	var out []Name
	for i := range a {
		if a[i] != b[i] {
			out = append(out, Name(i))
		}
	}
	return out
}
