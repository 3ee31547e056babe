package scene

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/arbor/internal/attr"
	"github.com/san-kum/arbor/internal/fragment"
	"github.com/san-kum/arbor/internal/hasher"
	"github.com/san-kum/arbor/internal/tree"
)

// DefaultSize is the number of trees in a scene.
const DefaultSize = 9

var (
	ErrNoViews    = errors.New("scene: no views")
	ErrNoWatcher  = errors.New("scene: no hash watcher")
	ErrOutOfRange = errors.New("scene: tree index out of range")
	ErrStarted    = errors.New("scene: already started")
)

// State is the controller's transition state.
type State int

const (
	Idle State = iota
	Propagating
)

func (s State) String() string {
	if s == Propagating {
		return "propagating"
	}
	return "idle"
}

// Cause names the transition that produced a snapshot.
type Cause string

const (
	CauseStart     Cause = "start"
	CausePromote   Cause = "promote"
	CauseRestore   Cause = "restore"
	CauseRandomize Cause = "randomize"
)

// Snapshot is a consistent copy of the scene.
type Snapshot struct {
	Root  int
	State string
	Trees []attr.Values
	Cause Cause
	At    time.Time
}

// Observer is notified after every transition, outside the scene lock.
type Observer interface {
	OnChange(s Snapshot)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Snapshot)

func (f ObserverFunc) OnChange(s Snapshot) { f(s) }

// Options configures a Scene.
type Options struct {
	Table  attr.Table
	Rand   *rand.Rand
	Logger *log.Logger
}

// Scene is the controller. The number of trees is fixed at construction.
type Scene struct {
	mu        sync.Mutex
	trees     []*tree.Instance
	root      int
	state     State
	watcher   hasher.Watcher
	observers []Observer
	logger    *log.Logger
	started   bool
}

// New creates one tree per view, each initialized from the table defaults
// with no baseline.
func New(views []tree.View, watcher hasher.Watcher, opts Options) (*Scene, error) {
	if len(views) == 0 {
		return nil, ErrNoViews
	}
	if watcher == nil {
		return nil, ErrNoWatcher
	}
	if opts.Table == (attr.Table{}) {
		opts.Table = attr.DefaultTable()
	}
	if err := opts.Table.Validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	m := attr.NewMutator(opts.Table, opts.Rand)
	s := &Scene{watcher: watcher, logger: opts.Logger}
	for i, v := range views {
		in, err := tree.New(i, m, v, opts.Logger)
		if err != nil {
			return nil, fmt.Errorf("scene: tree %d: %w", i, err)
		}
		s.trees = append(s.trees, in)
	}
	return s, nil
}

// AddObserver registers o for every later transition.
func (s *Scene) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Start makes tree 0 the root without publishing, subscribes to the
// watcher and initializes it, so a state string that already exists
// replaces the freshly generated trees.
func (s *Scene) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrStarted
	}
	s.started = true
	s.setRootLocked(0)
	snap := s.snapshotLocked(CauseStart)
	s.mu.Unlock()
	s.notify(snap)

	s.watcher.OnInitialized(s.handle)
	s.watcher.OnChanged(s.handle)
	return s.watcher.Init(ctx)
}

// Promote makes tree i the root, re-derives every other tree from it and
// publishes the new state.
func (s *Scene) Promote(ctx context.Context, i int) error {
	if i < 0 || i >= len(s.trees) {
		return fmt.Errorf("%w: %d of %d", ErrOutOfRange, i, len(s.trees))
	}

	s.mu.Lock()
	s.state = Propagating
	s.setRootLocked(i)
	root := s.trees[i]
	for j, t := range s.trees {
		if j == i {
			continue
		}
		if err := t.Initialize(root); err != nil {
			s.logger.Warn("initialize failed", "tree", j, "err", err)
		}
	}
	if err := root.Redraw(); err != nil {
		s.logger.Warn("redraw failed", "tree", i, "err", err)
	}
	err := s.publishLocked(ctx)
	s.state = Idle
	snap := s.snapshotLocked(CausePromote)
	s.mu.Unlock()

	s.logger.Debug("promoted", "root", i)
	s.notify(snap)
	return err
}

// Randomize moves tree i one mutation step and publishes the new state.
func (s *Scene) Randomize(ctx context.Context, i int) error {
	if i < 0 || i >= len(s.trees) {
		return fmt.Errorf("%w: %d of %d", ErrOutOfRange, i, len(s.trees))
	}

	s.mu.Lock()
	if err := s.trees[i].Randomize(); err != nil {
		s.logger.Warn("randomize failed", "tree", i, "err", err)
	}
	err := s.publishLocked(ctx)
	snap := s.snapshotLocked(CauseRandomize)
	s.mu.Unlock()

	s.notify(snap)
	return err
}

// Restore applies an encoded state as if it had arrived from the watcher,
// then publishes it so that other participants follow.
func (s *Scene) Restore(ctx context.Context, state string) error {
	s.mu.Lock()
	if err := s.restoreLocked(state); err != nil {
		s.mu.Unlock()
		return err
	}
	err := s.publishLocked(ctx)
	snap := s.snapshotLocked(CauseRestore)
	s.mu.Unlock()

	s.notify(snap)
	return err
}

func (s *Scene) handle(e hasher.Event) {
	if e.Origin == hasher.LocalPublish {
		return
	}
	if e.Value == "" {
		return
	}

	s.mu.Lock()
	if err := s.restoreLocked(e.Value); err != nil {
		s.mu.Unlock()
		s.logger.Warn("ignoring state", "err", err)
		return
	}
	snap := s.snapshotLocked(CauseRestore)
	s.mu.Unlock()

	s.notify(snap)
}

// restoreLocked pushes decoded values into the trees. Trees whose segment
// is missing or malformed fall back to default initialization.
func (s *Scene) restoreLocked(state string) error {
	slots, extra, err := fragment.Decode(state, len(s.trees))
	if errors.Is(err, fragment.ErrEmpty) {
		return err
	}
	if err != nil {
		s.logger.Warn("bad state segments", "err", err)
	}
	if extra > 0 {
		s.logger.Warn("ignoring extra state segments", "extra", extra)
	}

	s.state = Propagating
	for i, slot := range slots {
		t := s.trees[i]
		if slot.OK {
			err := t.RestoreFromOrderedValues(slot.Values.Slice())
			if err == nil {
				continue
			}
			s.logger.Warn("restore failed", "tree", i, "err", err)
		}
		if err := t.Initialize(nil); err != nil {
			s.logger.Warn("initialize failed", "tree", i, "err", err)
		}
	}
	s.state = Idle
	s.logger.Debug("restored", "trees", len(slots))
	return nil
}

func (s *Scene) setRootLocked(i int) {
	s.trees[s.root].SetRoot(false)
	s.root = i
	s.trees[i].SetRoot(true)
}

func (s *Scene) publishLocked(ctx context.Context) error {
	if err := s.watcher.SetHash(ctx, s.encodeLocked()); err != nil {
		return fmt.Errorf("scene: publish: %w", err)
	}
	return nil
}

func (s *Scene) encodeLocked() string {
	vs := make([]attr.Values, len(s.trees))
	for i, t := range s.trees {
		vs[i] = t.Attributes()
	}
	return fragment.Encode(vs)
}

func (s *Scene) snapshotLocked(cause Cause) Snapshot {
	snap := Snapshot{
		Root:  s.root,
		State: s.encodeLocked(),
		Trees: make([]attr.Values, len(s.trees)),
		Cause: cause,
		At:    time.Now(),
	}
	for i, t := range s.trees {
		snap.Trees[i] = t.Attributes()
	}
	return snap
}

func (s *Scene) notify(snap Snapshot) {
	s.mu.Lock()
	obs := append([]Observer(nil), s.observers...)
	s.mu.Unlock()
	for _, o := range obs {
		o.OnChange(snap)
	}
}

// Snapshot returns the current state of the scene.
func (s *Scene) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked("")
}

// Encode returns the scene's state string.
func (s *Scene) Encode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.encodeLocked()
}

// Root returns the index of the root tree.
func (s *Scene) Root() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.root
}

// State returns the controller state.
func (s *Scene) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Len returns the number of trees.
func (s *Scene) Len() int { return len(s.trees) }

// Tree returns tree i.
func (s *Scene) Tree(i int) (*tree.Instance, error) {
	if i < 0 || i >= len(s.trees) {
		return nil, fmt.Errorf("%w: %d of %d", ErrOutOfRange, i, len(s.trees))
	}
	return s.trees[i], nil
}

// Watcher returns the scene's hash watcher.
func (s *Scene) Watcher() hasher.Watcher { return s.watcher }
