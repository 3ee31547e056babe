package attr

import (
	"errors"
	"fmt"
)

// Domain errors for attribute operations.
var (
	// ErrInvalidSpec indicates a Spec that violates its invariants.
	ErrInvalidSpec = errors.New("attr: invalid attribute spec")

	// ErrInvalidValue indicates a NaN or infinite attribute value.
	ErrInvalidValue = errors.New("attr: invalid value (NaN or Inf)")

	// ErrNegativeBranchings indicates a branchings value below zero or not an integer.
	ErrNegativeBranchings = errors.New("attr: branchings must be a non-negative integer")

	// ErrUnknownAttribute indicates a name outside the fixed attribute set.
	ErrUnknownAttribute = errors.New("attr: unknown attribute")

	// ErrArity indicates a positional value list of the wrong length.
	ErrArity = errors.New("attr: wrong number of values")
)

// NameError wraps an error with the attribute it concerns.
type NameError struct {
	Name       string
	Suggestion string
	Wrapped    error
}

func (e *NameError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v: %q (did you mean %q?)", e.Wrapped, e.Name, e.Suggestion)
	}
	return fmt.Sprintf("%v: %q", e.Wrapped, e.Name)
}

func (e *NameError) Unwrap() error {
	return e.Wrapped
}
