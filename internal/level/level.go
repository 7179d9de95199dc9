// Package level computes per-channel RMS and peak levels of the pre and post
// buffers, the post/pre gain read-outs and a decaying peak hold.
package level

import (
	"github.com/tphakala/go-audio-analyzer/internal/mathutil"
)

// Level meter timing
const (
	RMSWindowSeconds  = 0.4   // RMS integration window
	PeakWindowSeconds = 0.043 // Peak is taken over one refresh period
	PeakHoldDecay     = 0.90  // Held peak falls by this factor per refresh
)

// Source is the read side of a history buffer.
type Source interface {
	Channels() int
	RMS(lookback, n, channel int) float32
	Peak(lookback, n, channel int) float32
}

// Channel is the meter state of one channel after a refresh. Levels are
// linear; gains are in dB with undefined ratios reported as 0 dB.
type Channel struct {
	RMSPre   float64
	RMSPost  float64
	PeakPre  float64
	PeakPost float64

	// PeakHold is the held post peak shown by the meter.
	PeakHold float64

	RMSGainDB  float64
	PeakGainDB float64
}

// RMSPostDB returns the post RMS level in dBFS.
func (c Channel) RMSPostDB() float64 { return mathutil.GainToDB(c.RMSPost) }

// PeakHoldDB returns the held post peak in dBFS.
func (c Channel) PeakHoldDB() float64 { return mathutil.GainToDB(c.PeakHold) }

// Engine refreshes the level read-outs.
type Engine struct {
	rmsWindow  int
	peakWindow int
	held       []float64
	out        []Channel
}

// NewEngine creates an engine for the given sample rate and channel count.
func NewEngine(sampleRate float64, channels int) *Engine {
	channels = max(channels, 1)
	return &Engine{
		rmsWindow:  max(int(sampleRate*RMSWindowSeconds), 1),
		peakWindow: max(int(sampleRate*PeakWindowSeconds), 1),
		held:       make([]float64, channels),
		out:        make([]Channel, channels),
	}
}

// RMSWindow returns the RMS window in samples.
func (e *Engine) RMSWindow() int { return e.rmsWindow }

// PeakWindow returns the peak window in samples.
func (e *Engine) PeakWindow() int { return e.peakWindow }

// Process refreshes every channel from the newest history of pre and post.
// The returned slice is reused by the next call.
func (e *Engine) Process(pre, post Source) []Channel {
	n := min(len(e.out), pre.Channels(), post.Channels())
	for ch := range n {
		c := &e.out[ch]
		c.RMSPre = float64(pre.RMS(0, e.rmsWindow, ch))
		c.RMSPost = float64(post.RMS(0, e.rmsWindow, ch))
		c.PeakPre = float64(pre.Peak(0, e.peakWindow, ch))
		c.PeakPost = float64(post.Peak(0, e.peakWindow, ch))

		c.PeakHold = mathutil.DecayingMax(&e.held[ch], c.PeakPost, PeakHoldDecay)
		c.RMSGainDB = mathutil.Finite(mathutil.RatioDB(c.RMSPost, c.RMSPre))
		c.PeakGainDB = mathutil.Finite(mathutil.RatioDB(c.PeakPost, c.PeakPre))
	}
	return e.out[:n]
}

// Reset clears the peak hold.
func (e *Engine) Reset() {
	clear(e.held)
	clear(e.out)
}
