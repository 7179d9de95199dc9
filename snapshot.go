package analyzer

import (
	"slices"

	"github.com/tphakala/go-audio-analyzer/internal/level"
	"github.com/tphakala/go-audio-analyzer/internal/spectral"
	"github.com/tphakala/go-audio-analyzer/internal/stereo"
	"github.com/tphakala/go-audio-analyzer/internal/waveform"
)

// Display types shared with the engines.
type (
	// Point is one vectorscope sample.
	Point = stereo.Point
	// Cloud is the set of points of one refresh.
	Cloud = stereo.Cloud
	// Level is the meter state of one channel.
	Level = level.Channel
	// Column is one pixel of the waveform overview.
	Column = waveform.Column
)

// SpectrumView holds the pre and post spectra resampled onto the
// logarithmic display axis, in dB.
type SpectrumView struct {
	Frequencies []float64 // Hz at each column
	Pre         []float64
	Post        []float64
	RangeDB     float64
}

// DifferenceView holds the post/pre gain in dB and the phase difference
// (in turns, [-0.5, 0.5]) per column. The B curves are nil in mono mode;
// otherwise they carry right or side while the A curves carry left or mid.
type DifferenceView struct {
	Mode    AnalyseMode
	GainA   []float64
	GainB   []float64
	PhaseA  []float64
	PhaseB  []float64
	RangeDB float64
}

// StereoReading is the vectorscope state of one tap.
type StereoReading struct {
	Correlation float64
	Clouds      []Cloud // newest first
}

// StereoView holds both vectorscopes.
type StereoView struct {
	Pre  StereoReading
	Post StereoReading
	Zoom float64
}

// WaveformView holds the scrolling overview, newest column last.
type WaveformView struct {
	Columns     []Column
	SpanSeconds float64
	RangeDB     float64
}

// Snapshot is the result of one analysis refresh. It owns all of its
// slices.
type Snapshot struct {
	FFTSize    int
	Spectrum   SpectrumView
	Difference DifferenceView
	Stereo     StereoView
	Levels     []Level
	Waveform   WaveformView
	Stats      Stats
}

// Snapshot runs every engine once over the current history and returns the
// results. It applies knob changes (FFT size, depths, spans) first.
func (a *Analyzer) Snapshot() (Snapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	p := a.params
	if size := p.FFTSize(); size != a.fftSize {
		if err := a.buildSpectral(size); err != nil {
			return Snapshot{}, err
		}
	}
	a.wave.SetSpan(p.WaveformSpanSeconds())

	pre, post := a.buffers.Pre(), a.buffers.Post()
	mode := spectral.Mode(p.AnalyseMode())
	depth := p.AverageDepth()
	decay := p.DecayRatio()

	s := Snapshot{FFTSize: a.fftSize, Stats: a.Stats()}

	s.Spectrum = SpectrumView{
		Frequencies: a.frequencies(),
		Pre:         a.pixels.Resample(nil, a.spectrumPre.Process(pre, decay)),
		Post:        a.pixels.Resample(nil, a.spectrumPost.Process(post, decay)),
		RangeDB:     p.SpectrumRangeDB(),
	}

	gainA, gainB := a.gain.Process(pre, post, mode, depth)
	phaseA, phaseB := a.phase.Process(pre, post, mode, depth)
	s.Difference = DifferenceView{
		Mode:    p.AnalyseMode(),
		GainA:   a.resample(gainA),
		GainB:   a.resample(gainB),
		PhaseA:  a.resample(phaseA),
		PhaseB:  a.resample(phaseB),
		RangeDB: p.DifferenceRangeDB(),
	}

	stPre, stPost := a.stereo.Process(pre, post, p.VanishDepth())
	s.Stereo = StereoView{
		Pre:  cloneReading(stPre),
		Post: cloneReading(stPost),
		Zoom: p.Zoom(),
	}

	s.Levels = slices.Clone(a.levels.Process(pre, post))

	s.Waveform = WaveformView{
		Columns:     slices.Clone(a.wave.Process(pre, post, p.WaveformRangeDB())),
		SpanSeconds: p.WaveformSpanSeconds(),
		RangeDB:     p.WaveformRangeDB(),
	}
	return s, nil
}

func (a *Analyzer) frequencies() []float64 {
	f := make([]float64, a.pixels.Width())
	for col := range f {
		f[col] = a.pixels.Frequency(col)
	}
	return f
}

// resample maps a per-bin curve onto the display columns; nil stays nil.
func (a *Analyzer) resample(curve []float64) []float64 {
	if curve == nil {
		return nil
	}
	return a.pixels.Resample(nil, curve)
}

func cloneReading(r stereo.Reading) StereoReading {
	clouds := make([]Cloud, len(r.Clouds))
	for i, c := range r.Clouds {
		clouds[i] = slices.Clone(c)
	}
	return StereoReading{Correlation: r.Correlation, Clouds: clouds}
}
