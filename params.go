package analyzer

import (
	"fmt"
	"sync/atomic"

	"github.com/tphakala/go-audio-analyzer/internal/spectral"
)

// AnalyseMode selects how channels are combined by the difference curves.
type AnalyseMode int

// Analyse modes
const (
	AnalyseMono      AnalyseMode = AnalyseMode(spectral.ModeMono)
	AnalyseLeftRight AnalyseMode = AnalyseMode(spectral.ModeLeftRight)
	AnalyseMidSide   AnalyseMode = AnalyseMode(spectral.ModeMidSide)
)

// String returns the mode name.
func (m AnalyseMode) String() string { return spectral.Mode(m).String() }

// Params holds the runtime knobs. Every knob is an independent atomic, so
// a UI goroutine may change them while Snapshot or Run is reading. Knobs
// named "mode" are 1-based indices into a fixed table.
type Params struct {
	fftSize         atomic.Int64
	spectrumRange   atomic.Int32
	differenceRange atomic.Int32
	returnTime      atomic.Int32
	timeAverage     atomic.Int32
	analyseMode     atomic.Int32
	zoom            atomic.Int32
	vanishDepth     atomic.Int32
	waveformSpan    atomic.Int32
	waveformRange   atomic.Int32
	freeze          atomic.Bool
}

func newParams(fftSize int) *Params {
	p := &Params{}
	p.fftSize.Store(int64(fftSize))
	p.spectrumRange.Store(defaultSpectrumRange)
	p.differenceRange.Store(defaultDifferenceRange)
	p.returnTime.Store(defaultReturnTime)
	p.timeAverage.Store(defaultTimeAverage)
	p.analyseMode.Store(int32(AnalyseMono))
	p.zoom.Store(defaultZoom)
	p.vanishDepth.Store(defaultVanishDepth)
	p.waveformSpan.Store(defaultWaveformSpan)
	p.waveformRange.Store(defaultWaveformRange)
	return p
}

func setMode(dst *atomic.Int32, name string, mode, modes int) error {
	if mode < 1 || mode > modes {
		return fmt.Errorf("%w: %s mode %d outside [1, %d]", ErrInvalidParam, name, mode, modes)
	}
	dst.Store(int32(mode))
	return nil
}

func setRange(dst *atomic.Int32, name string, v, lo, hi int) error {
	if v < lo || v > hi {
		return fmt.Errorf("%w: %s %d outside [%d, %d]", ErrInvalidParam, name, v, lo, hi)
	}
	dst.Store(int32(v))
	return nil
}

// SetFFTSize selects the transform length used from the next refresh on.
func (p *Params) SetFFTSize(n int) error {
	if err := validateFFTSize(n); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParam, err)
	}
	p.fftSize.Store(int64(n))
	return nil
}

// FFTSize returns the transform length.
func (p *Params) FFTSize() int { return int(p.fftSize.Load()) }

// SetSpectrumRange selects the spectrum display range: 54, 72, 90 or 108 dB.
func (p *Params) SetSpectrumRange(mode int) error {
	return setMode(&p.spectrumRange, "spectrum range", mode, len(spectrumRangesDB))
}

// SpectrumRangeDB returns the depth of the spectrum display.
func (p *Params) SpectrumRangeDB() float64 {
	return spectrumRangesDB[p.spectrumRange.Load()-1]
}

// SetDifferenceRange selects the difference display range: 24, 72, 144 or
// 240 dB from top to bottom.
func (p *Params) SetDifferenceRange(mode int) error {
	return setMode(&p.differenceRange, "difference range", mode, len(differenceRangesDB))
}

// DifferenceRangeDB returns the full height of the difference display.
func (p *Params) DifferenceRangeDB() float64 {
	return differenceRangesDB[p.differenceRange.Load()-1]
}

// SetReturnTime selects the spectrum peak-hold decay: 0.70, 0.80, 0.90 or
// 0.92 per refresh.
func (p *Params) SetReturnTime(mode int) error {
	return setMode(&p.returnTime, "return time", mode, len(decayRatios))
}

// DecayRatio returns the per-refresh decay of held spectrum peaks.
func (p *Params) DecayRatio() float64 {
	return decayRatios[p.returnTime.Load()-1]
}

// SetTimeAverage selects the difference rolling-average depth: 3, 5, 8 or
// 12 frames.
func (p *Params) SetTimeAverage(mode int) error {
	return setMode(&p.timeAverage, "time average", mode, len(averageDepths))
}

// AverageDepth returns the rolling-average depth in frames.
func (p *Params) AverageDepth() int {
	return averageDepths[p.timeAverage.Load()-1]
}

// SetAnalyseMode selects mono, left/right or mid/side difference curves.
func (p *Params) SetAnalyseMode(m AnalyseMode) error {
	switch m {
	case AnalyseMono, AnalyseLeftRight, AnalyseMidSide:
		p.analyseMode.Store(int32(m))
		return nil
	default:
		return fmt.Errorf("%w: analyse mode %d", ErrInvalidParam, int(m))
	}
}

// AnalyseMode returns the difference channel mode.
func (p *Params) AnalyseMode() AnalyseMode {
	return AnalyseMode(p.analyseMode.Load())
}

// SetZoom sets the vectorscope zoom in percent, 50 to 400.
func (p *Params) SetZoom(percent int) error {
	return setRange(&p.zoom, "zoom", percent, minZoom, maxZoom)
}

// Zoom returns the vectorscope scale factor (2.0 at 200%).
func (p *Params) Zoom() float64 {
	return float64(p.zoom.Load()) / zoomPercentScale
}

// SetVanishDepth sets how many point clouds the vectorscope keeps, 5 to 50.
func (p *Params) SetVanishDepth(depth int) error {
	return setRange(&p.vanishDepth, "vanish depth", depth, minVanishDepth, maxVanishDepth)
}

// VanishDepth returns the number of point clouds kept.
func (p *Params) VanishDepth() int { return int(p.vanishDepth.Load()) }

// SetWaveformSpan selects the waveform time span: 1, 4 or 8 seconds.
func (p *Params) SetWaveformSpan(mode int) error {
	return setMode(&p.waveformSpan, "waveform span", mode, len(waveformSpans))
}

// WaveformSpanSeconds returns the visible waveform time span.
func (p *Params) WaveformSpanSeconds() float64 {
	return waveformSpans[p.waveformSpan.Load()-1]
}

// SetWaveformRange selects the gain-curve range: ±12, ±24 or ±36 dB.
func (p *Params) SetWaveformRange(mode int) error {
	return setMode(&p.waveformRange, "waveform range", mode, len(waveformRangesDB))
}

// WaveformRangeDB returns the gain-curve clamp.
func (p *Params) WaveformRangeDB() float64 {
	return waveformRangesDB[p.waveformRange.Load()-1]
}

// SetFreeze stops or resumes analysis in Run. Audio keeps flowing into the
// buffers either way.
func (p *Params) SetFreeze(frozen bool) { p.freeze.Store(frozen) }

// Frozen reports whether analysis is frozen.
func (p *Params) Frozen() bool { return p.freeze.Load() }
