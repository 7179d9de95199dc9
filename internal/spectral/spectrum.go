// Package spectral turns history windows into spectrum curves.
//
// Spectrum produces a peak-held magnitude spectrum for one buffer.
// Difference compares a pre and a post buffer bin by bin, reporting either
// the gain or the phase difference, smoothed by a rolling average.
// PixelMap maps those per-bin curves onto a logarithmic frequency axis.
//
// Engines are owned by a single analysis goroutine; none of them is safe
// for concurrent use.
package spectral

import (
	"math/cmplx"

	"github.com/tphakala/go-audio-analyzer/internal/mathutil"
	"github.com/tphakala/go-audio-analyzer/internal/simdops"
)

// Spectrum computes the mono-summed magnitude spectrum of a buffer in dB,
// with a per-bin decaying peak hold.
type Spectrum struct {
	tf *transformer

	linear []float64 // |X| per bin, scaled so a full-scale sine is 1
	held   []float64 // peak-hold state per bin
	out    []float64 // reported dB per bin
}

// NewSpectrum creates a spectrum engine for the given FFT size and channel count.
func NewSpectrum(size, channels int) (*Spectrum, error) {
	tf, err := newTransformer(size, channels)
	if err != nil {
		return nil, err
	}
	bins := Bins(size)
	return &Spectrum{
		tf:     tf,
		linear: make([]float64, bins),
		held:   make([]float64, bins),
		out:    make([]float64, bins),
	}, nil
}

// Size returns the FFT size.
func (s *Spectrum) Size() int { return s.tf.size }

// Process reads the newest window from src and returns the held magnitude
// of every bin in dB. The returned slice is reused by the next call.
func (s *Spectrum) Process(src Source, decay float64) []float64 {
	s.tf.load(src)

	for k := range s.linear {
		s.linear[k] = cmplx.Abs(s.tf.mono(k))
	}
	simdops.Float64Ops().Scale(s.linear, s.linear, magnitudeReferenceDivisor/float64(s.tf.size))

	for k, mag := range s.linear {
		shown := mathutil.HoldPeak(&s.held[k], mag, decay)
		s.out[k] = mathutil.GainToDB(shown)
	}
	return s.out
}

// Reset clears the peak-hold state.
func (s *Spectrum) Reset() {
	clear(s.held)
}
