package render

import (
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/arbor/internal/attr"
)

// DefaultDelay separates consecutive branch generations.
const DefaultDelay = 50 * time.Millisecond

// ErrNoSurface is returned when a renderer is built without a surface.
var ErrNoSurface = errors.New("render: no drawing surface")

// Surface is the drawing capability a renderer needs. Coordinates are in
// surface units with y growing downward.
type Surface interface {
	Size() (w, h float64)
	Clear()
	Stroke(s Stroke)
}

// Highlighter is implemented by surfaces that can show the root flag.
type Highlighter interface {
	SetHighlight(on bool)
}

// Options configures a Renderer. Zero values select the defaults.
type Options struct {
	Delay     time.Duration
	Margin    float64
	Scheduler Scheduler
	Logger    *log.Logger
}

// Renderer draws trees onto one surface.
type Renderer struct {
	mu      sync.Mutex
	surface Surface
	delay   time.Duration
	margin  float64
	sched   Scheduler
	logger  *log.Logger

	seq    uint64
	active uint64
	cancel func()
}

// New returns a renderer for s.
func New(s Surface, opts Options) (*Renderer, error) {
	if s == nil {
		return nil, ErrNoSurface
	}
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.Margin <= 0 {
		opts.Margin = DefaultMargin
	}
	if opts.Scheduler == nil {
		opts.Scheduler = Clock{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Renderer{
		surface: s,
		delay:   opts.Delay,
		margin:  opts.Margin,
		sched:   opts.Scheduler,
		logger:  opts.Logger,
	}, nil
}

// Surface returns the surface the renderer draws on.
func (r *Renderer) Surface() Surface { return r.surface }

// Draw clears the surface and draws the tree described by v. The trunk and
// the first generation are drawn before Draw returns; later generations
// follow one per delay. A newer Draw supersedes any generations still
// pending from an older one.
func (r *Renderer) Draw(v attr.Values) error {
	if err := v.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	r.seq++
	id := r.seq
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}

	w, h := r.surface.Size()
	trunk, g := seed(v, w, h, r.margin)
	r.surface.Clear()
	r.surface.Stroke(trunk)

	r.active = 0
	if !g.done() {
		r.active = id
	}
	r.mu.Unlock()

	r.logger.Debug("draw", "request", id, "generations", g.last)
	if !g.done() {
		r.grow(id, g)
	}
	return nil
}

// grow draws the next generation of request id and schedules the one after.
func (r *Renderer) grow(id uint64, g growth) {
	r.mu.Lock()
	if id != r.seq {
		r.mu.Unlock()
		return
	}
	s, g := g.next()
	r.surface.Stroke(s)
	if g.done() {
		r.active = 0
		r.cancel = nil
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	cancel := r.sched.After(r.delay, func() { r.grow(id, g) })

	r.mu.Lock()
	if id == r.seq && r.active == id {
		r.cancel = cancel
	}
	r.mu.Unlock()
}

// SetRoot forwards the root flag to the surface when it can show it.
func (r *Renderer) SetRoot(on bool) {
	if h, ok := r.surface.(Highlighter); ok {
		h.SetHighlight(on)
	}
}

// Pending reports whether generations of the latest draw are still queued.
func (r *Renderer) Pending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != 0 && r.active == r.seq
}

// Seq returns the id of the latest draw request.
func (r *Renderer) Seq() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq
}
