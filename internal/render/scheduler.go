package render

import (
	"sort"
	"sync"
	"time"
)

// Scheduler defers a continuation. The returned function cancels it if it
// has not run yet.
type Scheduler interface {
	After(d time.Duration, f func()) (cancel func())
}

// Clock schedules continuations on real timers.
type Clock struct{}

func (Clock) After(d time.Duration, f func()) func() {
	t := time.AfterFunc(d, f)
	return func() { t.Stop() }
}

// Immediate runs continuations synchronously, which draws a whole tree in
// one Draw call.
type Immediate struct{}

func (Immediate) After(_ time.Duration, f func()) func() {
	f()
	return func() {}
}

// Manual queues continuations until Advance moves its clock forward.
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	queue []manualTask
	next  int
}

type manualTask struct {
	id       int
	at       time.Duration
	f        func()
	canceled bool
}

// NewManual returns a scheduler driven by Advance.
func NewManual() *Manual { return &Manual{} }

func (m *Manual) After(d time.Duration, f func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	id := m.next
	m.queue = append(m.queue, manualTask{id: id, at: m.now + d, f: f})
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i := range m.queue {
			if m.queue[i].id == id {
				m.queue[i].canceled = true
			}
		}
	}
}

// Pending returns the number of queued, uncanceled continuations.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.queue {
		if !t.canceled {
			n++
		}
	}
	return n
}

// Advance moves the clock by d and runs every continuation that came due,
// including ones scheduled by continuations that ran.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		sort.SliceStable(m.queue, func(i, j int) bool { return m.queue[i].at < m.queue[j].at })
		if len(m.queue) == 0 || m.queue[0].at > target {
			m.now = target
			m.mu.Unlock()
			return
		}
		t := m.queue[0]
		m.queue = m.queue[1:]
		m.now = t.at
		m.mu.Unlock()

		if !t.canceled {
			t.f()
		}
	}
}
