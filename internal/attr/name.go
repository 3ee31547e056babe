package attr

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Name identifies one attribute. Its integer value is the position in the
// fixed attribute order used by Values and by encoded state strings.
type Name int

const (
	Length Name = iota
	Divergence
	Reduction
	LineWidth
	Branchings

	// Count is the number of attributes.
	Count int = iota
)

var names = [Count]string{
	Length:     "length",
	Divergence: "divergence",
	Reduction:  "reduction",
	LineWidth:  "lineWidth",
	Branchings: "branchings",
}

// Names returns the attribute names in their fixed order.
func Names() []Name {
	out := make([]Name, Count)
	for i := range out {
		out[i] = Name(i)
	}
	return out
}

func (n Name) String() string {
	if n < 0 || int(n) >= Count {
		return "unknown"
	}
	return names[n]
}

// Valid reports whether n is one of the fixed attributes.
func (n Name) Valid() bool {
	return n >= 0 && int(n) < Count
}

// ParseName resolves a canonical attribute name. Matching ignores case, so
// "linewidth" and "lineWidth" are the same attribute.
func ParseName(s string) (Name, error) {
	for i, name := range names {
		if strings.EqualFold(s, name) {
			return Name(i), nil
		}
	}
	return 0, &NameError{Name: s, Suggestion: Suggest(s, names[:]), Wrapped: ErrUnknownAttribute}
}

// Suggest returns the candidate closest to s, or "" when nothing is close
// enough to be a plausible typo.
func Suggest(s string, candidates []string) string {
	best, bestDist := "", -1
	for _, cand := range candidates {
		dist := levenshtein.ComputeDistance(strings.ToLower(s), strings.ToLower(cand))
		if dist > suggestLimit(len(cand)) {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = cand, dist
		}
	}
	return best
}

func suggestLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
