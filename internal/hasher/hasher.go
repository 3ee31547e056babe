package hasher

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrClosed         = errors.New("hasher: watcher closed")
	ErrNotInitialized = errors.New("hasher: watcher not initialized")
	ErrUnknownKind    = errors.New("hasher: unknown watcher kind")
)

// Origin tells who produced a value change.
type Origin int

const (
	External Origin = iota
	LocalPublish
)

func (o Origin) String() string {
	if o == LocalPublish {
		return "local"
	}
	return "external"
}

// Event is one observed value.
type Event struct {
	Value  string
	Origin Origin
}

// Handler receives events.
type Handler func(Event)

// Watcher is a shared, observable state string.
type Watcher interface {
	// Init reads the current value and fires the initialized handlers with
	// it, then starts watching for changes.
	Init(ctx context.Context) error
	// SetHash replaces the value. The change is reported back as
	// LocalPublish.
	SetHash(ctx context.Context, value string) error
	// Value returns the last known value.
	Value() string
	OnChanged(h Handler)
	OnInitialized(h Handler)
	Close() error
}

// handlers is the subscriber list shared by the watcher implementations.
type handlers struct {
	mu          sync.RWMutex
	changed     []Handler
	initialized []Handler
}

func (hs *handlers) OnChanged(h Handler) {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	hs.changed = append(hs.changed, h)
}

func (hs *handlers) OnInitialized(h Handler) {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	hs.initialized = append(hs.initialized, h)
}

func (hs *handlers) emitChanged(e Event) {
	hs.mu.RLock()
	list := append([]Handler(nil), hs.changed...)
	hs.mu.RUnlock()
	for _, h := range list {
		h(e)
	}
}

func (hs *handlers) emitInitialized(e Event) {
	hs.mu.RLock()
	list := append([]Handler(nil), hs.initialized...)
	hs.mu.RUnlock()
	for _, h := range list {
		h(e)
	}
}
