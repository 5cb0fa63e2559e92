// Package window provides the fixed-capacity sample history behind the plot
package window

import "fmt"

// Window is a circular history of the most recent samples.
// It always holds exactly Len samples; unused slots read as zero.
// It is not safe for concurrent use.
type Window struct {
	buffer []float64
	oldest int // index of the oldest sample, also the next write position
}

// New returns a zero-filled window of the given capacity
func New(capacity int) (*Window, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("window capacity must be > 0: %d", capacity)
	}
	return &Window{buffer: make([]float64, capacity)}, nil
}

// Len returns the window capacity, which is also its length
func (w *Window) Len() int {
	return len(w.buffer)
}

// Append stores sample as the newest entry, evicting the oldest
func (w *Window) Append(sample float64) {
	w.buffer[w.oldest] = sample
	w.oldest++
	if w.oldest == len(w.buffer) {
		w.oldest = 0
	}
}

// Snapshot copies the samples oldest-first into dst, reusing its storage
// when large enough, and returns the filled slice of length Len.
func (w *Window) Snapshot(dst []float64) []float64 {
	if cap(dst) < len(w.buffer) {
		dst = make([]float64, len(w.buffer))
	}
	dst = dst[:len(w.buffer)]
	n := copy(dst, w.buffer[w.oldest:])
	copy(dst[n:], w.buffer[:w.oldest])
	return dst
}
