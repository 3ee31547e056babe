// Package tree holds one tree's attribute state and keeps its view in sync.
package tree

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/san-kum/arbor/internal/attr"
)

var (
	ErrNoMutator = errors.New("tree: no mutator")
	ErrNoView    = errors.New("tree: no view")
)

// View draws an instance's attributes and shows whether it is the root.
type View interface {
	Draw(v attr.Values) error
	SetRoot(on bool)
}

// Instance is one tree slot. The parent link is a baseline reference only;
// an instance never modifies its parent.
type Instance struct {
	mu      sync.RWMutex
	id      int
	values  attr.Values
	parent  *Instance
	root    bool
	mutator *attr.Mutator
	view    View
	logger  *log.Logger
}

// New creates an instance, initializes it from the table defaults with one
// mutation step and draws it.
func New(id int, m *attr.Mutator, view View, logger *log.Logger) (*Instance, error) {
	if m == nil {
		return nil, ErrNoMutator
	}
	if view == nil {
		return nil, ErrNoView
	}
	if logger == nil {
		logger = log.Default()
	}
	in := &Instance{id: id, mutator: m, view: view, logger: logger}
	if err := in.Initialize(nil); err != nil {
		return nil, err
	}
	return in, nil
}

// ID returns the instance's slot index.
func (in *Instance) ID() int { return in.id }

// Initialize re-derives the instance from parent's attributes with one
// mutation step. A nil parent restarts from the defaults and clears the
// parent link.
func (in *Instance) Initialize(parent *Instance) error {
	var baseline *attr.Values
	if parent != nil {
		v := parent.Attributes()
		baseline = &v
	}

	in.mu.Lock()
	in.values = in.mutator.Initialize(baseline)
	in.parent = parent
	v := in.values
	in.mu.Unlock()

	in.logger.Debug("initialize", "tree", in.id, "baseline", parent != nil)
	return in.draw(v)
}

// Randomize moves the instance one mutation step from its current values.
func (in *Instance) Randomize() error {
	in.mu.Lock()
	next, picked := in.mutator.MutateOne(in.values)
	in.values = next
	in.mu.Unlock()

	in.logger.Debug("randomize", "tree", in.id, "attribute", picked)
	return in.draw(next)
}

// Attributes returns a copy of the current values.
func (in *Instance) Attributes() attr.Values {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.values
}

// Parent returns the instance this one was last initialized from.
func (in *Instance) Parent() *Instance {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.parent
}

// RestoreFromOrderedValues replaces all attributes with xs, given in fixed
// attribute order. Values are clamped to their bounds; no mutation is
// applied. On error the instance is left unchanged.
func (in *Instance) RestoreFromOrderedValues(xs []float64) error {
	v, err := attr.FromSlice(xs)
	if err != nil {
		return fmt.Errorf("tree %d: %w", in.id, err)
	}
	return in.restore(v)
}

// RestoreFromMapping overwrites the named attributes. Attributes missing
// from m keep their current values.
func (in *Instance) RestoreFromMapping(m map[string]float64) error {
	v := in.Attributes()
	for key, x := range m {
		n, err := attr.ParseName(key)
		if err != nil {
			return fmt.Errorf("tree %d: %w", in.id, err)
		}
		v[n] = x
	}
	return in.restore(v)
}

func (in *Instance) restore(v attr.Values) error {
	if err := v.Validate(); err != nil {
		return fmt.Errorf("tree %d: %w", in.id, err)
	}
	v = in.mutator.Table().Clamp(v)

	in.mu.Lock()
	in.values = v
	in.mu.Unlock()

	return in.draw(v)
}

// SetRoot marks or unmarks the instance as the scene root.
func (in *Instance) SetRoot(on bool) {
	in.mu.Lock()
	in.root = on
	in.mu.Unlock()
	in.view.SetRoot(on)
}

// IsRoot reports the last flag passed to SetRoot.
func (in *Instance) IsRoot() bool {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.root
}

// Redraw draws the current values again.
func (in *Instance) Redraw() error {
	return in.draw(in.Attributes())
}

func (in *Instance) draw(v attr.Values) error {
	if err := in.view.Draw(v); err != nil {
		return fmt.Errorf("tree %d: draw: %w", in.id, err)
	}
	return nil
}
