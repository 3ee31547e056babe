package hasher

import (
	"context"
	"sync"
)

// Memory keeps the value in process.
type Memory struct {
	handlers
	mu     sync.Mutex
	value  string
	closed bool
}

// NewMemory returns a watcher holding initial.
func NewMemory(initial string) *Memory {
	return &Memory{value: initial}
}

func (m *Memory) Init(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	v := m.value
	m.mu.Unlock()

	m.emitInitialized(Event{Value: v, Origin: External})
	return nil
}

func (m *Memory) SetHash(ctx context.Context, value string) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.value = value
	m.mu.Unlock()

	m.emitChanged(Event{Value: value, Origin: LocalPublish})
	return nil
}

// Push replaces the value as an outside party would. Handlers fire only
// when the value actually changes.
func (m *Memory) Push(value string) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.value == value {
		m.mu.Unlock()
		return nil
	}
	m.value = value
	m.mu.Unlock()

	m.emitChanged(Event{Value: value, Origin: External})
	return nil
}

func (m *Memory) Value() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
