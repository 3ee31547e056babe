package render

import "sync"

// Recorder is a Surface that keeps the strokes drawn since the last Clear.
// It is safe for concurrent use.
type Recorder struct {
	mu        sync.RWMutex
	w, h      float64
	strokes   []Stroke
	highlight bool
	version   uint64
}

// NewRecorder returns an empty recorder of the given size.
func NewRecorder(w, h float64) *Recorder {
	return &Recorder{w: w, h: h}
}

func (r *Recorder) Size() (float64, float64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.w, r.h
}

// Resize changes the reported size; strokes already recorded are kept.
func (r *Recorder) Resize(w, h float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.w, r.h = w, h
	r.version++
}

func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strokes = r.strokes[:0]
	r.version++
}

func (r *Recorder) Stroke(s Stroke) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strokes = append(r.strokes, s)
	r.version++
}

func (r *Recorder) SetHighlight(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.highlight = on
	r.version++
}

// Highlighted reports whether the surface is marked as the root.
func (r *Recorder) Highlighted() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.highlight
}

// Strokes returns a copy of the recorded strokes.
func (r *Recorder) Strokes() []Stroke {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Stroke, len(r.strokes))
	copy(out, r.strokes)
	return out
}

// Segments returns the number of recorded segments.
func (r *Recorder) Segments() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, s := range r.strokes {
		n += len(s.Segments)
	}
	return n
}

// Version increases on every change, so pollers can skip unchanged frames.
func (r *Recorder) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}
