package spectral

import "github.com/tphakala/go-audio-analyzer/internal/simdops"

// RollingAverage keeps the last depth values of every bin and reports their
// arithmetic mean. All bins share one write position that advances once per
// frame.
type RollingAverage struct {
	depth   int
	initial float64
	history [][]float64
	pos     int
}

// NewRollingAverage creates an average over depth frames for bins bins, with
// every slot preset to initial.
func NewRollingAverage(bins, depth int, initial float64) *RollingAverage {
	r := &RollingAverage{initial: initial}
	r.Resize(bins, depth)
	return r
}

// Depth returns the number of frames averaged.
func (r *RollingAverage) Depth() int { return r.depth }

// Resize reallocates the history when the bin count or depth changes and
// reports whether it did. A reallocated history starts from the initial
// value again.
func (r *RollingAverage) Resize(bins, depth int) bool {
	depth = max(depth, 1)
	if depth == r.depth && bins == len(r.history) {
		return false
	}
	r.depth = depth
	r.pos = 0
	backing := make([]float64, bins*depth)
	for i := range backing {
		backing[i] = r.initial
	}
	r.history = make([][]float64, bins)
	for k := range r.history {
		r.history[k] = backing[k*depth : (k+1)*depth : (k+1)*depth]
	}
	return true
}

// Clear presets every slot to the initial value and restarts the frame
// position.
func (r *RollingAverage) Clear() {
	for _, h := range r.history {
		for i := range h {
			h[i] = r.initial
		}
	}
	r.pos = 0
}

// Push stores v as the current frame's value for bin and returns the mean
// over the bin's history.
func (r *RollingAverage) Push(bin int, v float64) float64 {
	h := r.history[bin]
	h[r.pos] = v
	return simdops.Mean(h)
}

// Advance moves to the next frame slot.
func (r *RollingAverage) Advance() {
	r.pos = (r.pos + 1) % r.depth
}
