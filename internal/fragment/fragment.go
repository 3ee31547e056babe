// Package fragment encodes the attribute state of a whole scene as one
// string and parses it back.
//
// Trees are separated by ',' and the attributes of one tree by '_', in the
// fixed attribute order:
//
//	65_35_0.625_6_0,70_40_0.6_6_1
package fragment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/arbor/internal/attr"
)

const (
	TreeSep  = ","
	ValueSep = "_"
)

var (
	ErrArity      = errors.New("fragment: wrong number of values")
	ErrNotNumeric = errors.New("fragment: value is not a number")
	ErrEmpty      = errors.New("fragment: empty state")
)

// SegmentError reports a tree segment that could not be decoded.
type SegmentError struct {
	Index   int
	Raw     string
	Wrapped error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("fragment: tree %d (%q): %v", e.Index, e.Raw, e.Wrapped)
}

func (e *SegmentError) Unwrap() error { return e.Wrapped }

// Errors collects every failed segment of one decode.
type Errors []*SegmentError

func (es Errors) Error() string {
	if len(es) == 1 {
		return es[0].Error()
	}
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.Error()
	}
	return fmt.Sprintf("%d bad segments: %s", len(es), strings.Join(parts, "; "))
}

func (es Errors) Unwrap() []error {
	out := make([]error, len(es))
	for i, e := range es {
		out[i] = e
	}
	return out
}

// Slot is the decoded state of one tree. OK is false when the segment was
// missing or malformed.
type Slot struct {
	Values attr.Values
	OK     bool
}

// FormatValue renders x with the fewest digits that parse back to x.
func FormatValue(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// EncodeValues encodes one tree.
func EncodeValues(v attr.Values) string {
	parts := make([]string, attr.Count)
	for i, x := range v {
		parts[i] = FormatValue(x)
	}
	return strings.Join(parts, ValueSep)
}

// Encode encodes trees in order.
func Encode(trees []attr.Values) string {
	parts := make([]string, len(trees))
	for i, v := range trees {
		parts[i] = EncodeValues(v)
	}
	return strings.Join(parts, TreeSep)
}

// DecodeValues parses one tree segment.
func DecodeValues(s string) (attr.Values, error) {
	var v attr.Values
	fields := strings.Split(s, ValueSep)
	if len(fields) != attr.Count {
		return v, fmt.Errorf("%w: got %d, want %d", ErrArity, len(fields), attr.Count)
	}
	for i, f := range fields {
		x, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return v, fmt.Errorf("%w: %s %q", ErrNotNumeric, attr.Name(i), f)
		}
		v[i] = x
	}
	if err := v.Validate(); err != nil {
		return v, err
	}
	return v, nil
}

// Decode parses s into exactly n slots. Segments beyond n are ignored and
// missing segments yield slots with OK false. Malformed segments also yield
// !OK slots; their errors are returned together, so one bad tree never
// spoils the rest.
func Decode(s string, n int) ([]Slot, int, error) {
	slots := make([]Slot, n)
	s = strings.TrimSpace(strings.TrimPrefix(s, "#"))
	if s == "" {
		return slots, 0, ErrEmpty
	}

	segments := strings.Split(s, TreeSep)
	var errs Errors
	for i, seg := range segments {
		if i >= n {
			break
		}
		v, err := DecodeValues(seg)
		if err != nil {
			errs = append(errs, &SegmentError{Index: i, Raw: seg, Wrapped: err})
			continue
		}
		slots[i] = Slot{Values: v, OK: true}
	}

	extra := len(segments) - n
	if extra < 0 {
		extra = 0
	}
	if len(errs) > 0 {
		return slots, extra, errs
	}
	return slots, extra, nil
}

// DecodeAll parses every segment of s and fails on the first bad one.
func DecodeAll(s string) ([]attr.Values, error) {
	s = strings.TrimSpace(strings.TrimPrefix(s, "#"))
	if s == "" {
		return nil, ErrEmpty
	}
	segments := strings.Split(s, TreeSep)
	out := make([]attr.Values, len(segments))
	for i, seg := range segments {
		v, err := DecodeValues(seg)
		if err != nil {
			return nil, &SegmentError{Index: i, Raw: seg, Wrapped: err}
		}
		out[i] = v
	}
	return out, nil
}
