// Package waveform keeps a scrolling overview of the pre and post signals:
// one min/max column per pixel plus the post/pre RMS gain at that column.
package waveform

import (
	"gonum.org/v1/gonum/floats"

	"github.com/tphakala/go-audio-analyzer/internal/history"
	"github.com/tphakala/go-audio-analyzer/internal/mathutil"
)

// RMSWindowSeconds is the RMS window used for the gain curve.
const RMSWindowSeconds = 0.4

// Source is the read side of a history buffer.
type Source interface {
	Channels() int
	HistoryCapacity() int
	Migrated() int64
	CopyFromHistory(dst [][]float32, n, lookback int)
	RMS(lookback, n, channel int) float32
}

// Column is one pixel of the overview. Min and Max are taken over the sum of
// all channels.
type Column struct {
	PreMin, PreMax   float64
	PostMin, PostMax float64
	GainDB           float64
}

// Engine scrolls columns in from the right as samples are migrated. The
// newest column is the last element.
type Engine struct {
	sampleRate      float64
	samplesPerPixel int
	rmsWindow       int

	columns []Column
	seen    int64
	carry   int64 // migrated samples not yet in a column

	block [][]float32
	mono  []float64
}

// NewEngine creates an engine with width columns spanning spanSeconds.
func NewEngine(sampleRate float64, channels, width int, spanSeconds float64) *Engine {
	e := &Engine{
		sampleRate: sampleRate,
		rmsWindow:  max(int(sampleRate*RMSWindowSeconds), 1),
		columns:    make([]Column, max(width, 1)),
		block:      make([][]float32, max(channels, 1)),
	}
	e.SetSpan(spanSeconds)
	return e
}

// Width returns the number of columns.
func (e *Engine) Width() int { return len(e.columns) }

// SamplesPerPixel returns how many samples one column covers.
func (e *Engine) SamplesPerPixel() int { return e.samplesPerPixel }

// SetSpan changes the visible time span. A new pixel size clears the display.
func (e *Engine) SetSpan(seconds float64) {
	spp := max(int(e.sampleRate*seconds)/len(e.columns), 1)
	if spp == e.samplesPerPixel {
		return
	}
	e.samplesPerPixel = spp
	for ch := range e.block {
		e.block[ch] = make([]float32, spp)
	}
	e.mono = make([]float64, spp)
	clear(e.columns)
	e.carry = 0
}

// Process appends a column for every full pixel of samples migrated since
// the previous call. rangeDB clamps the gain curve to [-rangeDB, rangeDB].
// The returned slice is owned by the engine.
func (e *Engine) Process(pre, post Source, rangeDB float64) []Column {
	migrated := min(pre.Migrated(), post.Migrated())
	fresh := migrated - e.seen
	if fresh < 0 {
		fresh = migrated
	}
	e.seen = migrated

	total := e.carry + fresh
	spp := int64(e.samplesPerPixel)
	added := int(total / spp)
	e.carry = total % spp

	// Columns older than the history can no longer be read.
	capacity := min(pre.HistoryCapacity(), post.HistoryCapacity())
	readable := (capacity - max(e.rmsWindow, e.samplesPerPixel) - int(e.carry)) / e.samplesPerPixel
	added = min(added, len(e.columns), max(readable, 0))
	if added == 0 {
		return e.columns
	}

	copy(e.columns, e.columns[added:])
	width := len(e.columns)
	for k := range added {
		lookback := k*e.samplesPerPixel + int(e.carry)
		c := &e.columns[width-1-k]
		c.PreMin, c.PreMax = e.bounds(pre, lookback)
		c.PostMin, c.PostMax = e.bounds(post, lookback)

		gain := mathutil.RatioDB(
			float64(post.RMS(lookback, e.rmsWindow, history.MonoMix)),
			float64(pre.RMS(lookback, e.rmsWindow, history.MonoMix)),
		)
		c.GainDB = min(max(gain, -rangeDB), rangeDB)
	}
	return e.columns
}

// bounds returns the extremes of the channel sum over one pixel.
func (e *Engine) bounds(src Source, lookback int) (lo, hi float64) {
	block := e.block[:min(len(e.block), src.Channels())]
	src.CopyFromHistory(block, e.samplesPerPixel, lookback)

	clear(e.mono)
	for _, ch := range block {
		for i, v := range ch {
			e.mono[i] += float64(v)
		}
	}
	return floats.Min(e.mono), floats.Max(e.mono)
}

// Reset clears the display and forgets how far the sources were read.
func (e *Engine) Reset() {
	clear(e.columns)
	e.seen = 0
	e.carry = 0
}
