package analyzer

import (
	"fmt"
	"sync"

	"github.com/tphakala/simd/cpu"

	"github.com/tphakala/go-audio-analyzer/internal/history"
	"github.com/tphakala/go-audio-analyzer/internal/level"
	"github.com/tphakala/go-audio-analyzer/internal/spectral"
	"github.com/tphakala/go-audio-analyzer/internal/stereo"
	"github.com/tphakala/go-audio-analyzer/internal/waveform"
)

// Side selects the tap before or after the processing chain.
type Side = history.Side

// Taps
const (
	Pre  = history.Pre
	Post = history.Post
)

// MonoMix selects the sum of all channels in RMS and Peak.
const MonoMix = history.MonoMix

// Analyzer ties the audio-side buffers to the analysis engines.
//
// ProcessBlock, WriteBlock, Migrate and SetProcessingDelay are called from
// the audio goroutine and never lock or allocate. Snapshot and Run are
// called from one analysis goroutine; Snapshot serialises with itself.
// CopyFromHistory, RMS, Peak and LastWrittenIndex read history at any
// lookback from the analysis side.
type Analyzer struct {
	config  Config
	params  *Params
	buffers *history.DualBufferManager

	latency int // last latency seen by ProcessBlock; audio goroutine only

	mu           sync.Mutex
	fftSize      int
	spectrumPre  *spectral.Spectrum
	spectrumPost *spectral.Spectrum
	gain         *spectral.Difference
	phase        *spectral.Difference
	pixels       *spectral.PixelMap
	stereo       *stereo.Engine
	levels       *level.Engine
	wave         *waveform.Engine
}

// New creates an analyzer with the specified configuration.
func New(config *Config) (*Analyzer, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	a := &Analyzer{
		params: newParams(config.FFTSize),
		buffers: history.NewDualBufferManager(
			config.Channels, config.ShortTermCapacity(), config.HistoryCapacity()),
	}
	if err := a.apply(config); err != nil {
		return nil, err
	}
	return a, nil
}

// apply installs config and builds every engine for it. Callers hold mu or
// own a.
func (a *Analyzer) apply(config *Config) error {
	a.config = *config
	a.stereo = stereo.NewEngine(config.SampleRate, config.Channels)
	a.levels = level.NewEngine(config.SampleRate, config.Channels)
	a.wave = waveform.NewEngine(config.SampleRate, config.Channels, config.Width,
		a.params.WaveformSpanSeconds())
	a.pixels = nil
	return a.buildSpectral(config.FFTSize)
}

// buildSpectral (re)creates the FFT-sized engines. Callers hold mu or own a.
func (a *Analyzer) buildSpectral(size int) error {
	channels := a.config.Channels

	pre, err := spectral.NewSpectrum(size, channels)
	if err != nil {
		return err
	}
	post, err := spectral.NewSpectrum(size, channels)
	if err != nil {
		return err
	}
	gain, err := spectral.NewDifference(spectral.KindGain, size, channels)
	if err != nil {
		return err
	}
	phase, err := spectral.NewDifference(spectral.KindPhase, size, channels)
	if err != nil {
		return err
	}

	a.spectrumPre, a.spectrumPost = pre, post
	a.gain, a.phase = gain, phase
	if a.pixels == nil {
		a.pixels = spectral.NewPixelMap(a.config.Width, size, a.config.SampleRate)
	} else {
		a.pixels.Update(a.config.Width, size, a.config.SampleRate)
	}
	a.fftSize = size
	return nil
}

// Config returns a copy of the configuration.
func (a *Analyzer) Config() Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.config
}

// Params returns the runtime knobs.
func (a *Analyzer) Params() *Params { return a.params }

// ProcessBlock is the audio-callback hook. It records a changed chain
// latency as the processing delay, stores n samples per channel of the
// signal before (pre) and after (post) the chain, and migrates both into
// history. It reports whether the migration ran.
func (a *Analyzer) ProcessBlock(pre, post [][]float32, n, latency int) bool {
	if latency != a.latency {
		a.latency = latency
		a.SetProcessingDelay(latency)
	}
	a.buffers.WriteBlock(history.Pre, pre, n)
	a.buffers.WriteBlock(history.Post, post, n)
	return a.buffers.MigrateToHistory()
}

// WriteBlock stores n samples per channel on one tap without migrating.
func (a *Analyzer) WriteBlock(side Side, samples [][]float32, n int) {
	a.buffers.WriteBlock(side, samples, n)
}

// Migrate moves both taps into history if they hold the same number of
// new samples, and reports whether it did.
func (a *Analyzer) Migrate() bool {
	return a.buffers.MigrateToHistory()
}

// SetProcessingDelay sets the chain latency in samples. Pre-tap reads are
// shifted back by this amount so they line up with the post tap.
func (a *Analyzer) SetProcessingDelay(samples int) {
	a.buffers.Pre().SetKnownProcessingDelay(samples)
}

// ProcessingDelay returns the chain latency currently compensated.
func (a *Analyzer) ProcessingDelay() int {
	return a.buffers.Pre().KnownProcessingDelay()
}

// Reset clears both taps and every engine. Audio must be stopped.
func (a *Analyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.buffers.Reset(a.config.Channels, a.config.ShortTermCapacity(), a.config.HistoryCapacity())
	a.latency = 0
	a.spectrumPre.Reset()
	a.spectrumPost.Reset()
	a.stereo.Reset()
	a.levels.Reset()
	a.wave.Reset()

	// Difference engines restart their rolling history from scratch.
	if err := a.buildSpectral(a.fftSize); err != nil {
		// a.fftSize was accepted by a previous build.
		panic(fmt.Sprintf("analyzer: rebuilding spectral engines: %v", err))
	}
}

// Reconfigure validates config and resizes both taps and every engine to
// it, discarding all history. The FFT size knob is set to config.FFTSize;
// the other knobs are kept. Audio must be stopped. An invalid config is
// rejected before anything changes.
func (a *Analyzer) Reconfigure(config *Config) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.params.SetFFTSize(config.FFTSize); err != nil {
		return err
	}
	a.buffers.Reset(config.Channels, config.ShortTermCapacity(), config.HistoryCapacity())
	a.latency = 0
	return a.apply(config)
}

// CopyFromHistory copies n samples per channel of one tap into dst. The
// window ends lookback samples before the newest migrated sample; pre-tap
// windows are shifted further back by the processing delay. Each dst
// channel must hold n samples and n may not exceed the history capacity.
func (a *Analyzer) CopyFromHistory(side Side, dst [][]float32, n, lookback int) {
	a.buffers.Buffer(side).CopyFromHistory(dst, n, lookback)
}

// RMS returns the root-mean-square of an n-sample history window of one
// tap, for channel or for MonoMix.
func (a *Analyzer) RMS(side Side, lookback, n, channel int) float32 {
	return a.buffers.Buffer(side).RMS(lookback, n, channel)
}

// Peak returns the largest absolute sample of an n-sample history window of
// one tap, for channel or for MonoMix.
func (a *Analyzer) Peak(side Side, lookback, n, channel int) float32 {
	return a.buffers.Buffer(side).Peak(lookback, n, channel)
}

// LastWrittenIndex returns the history slot just after the newest migrated
// sample of one tap.
func (a *Analyzer) LastWrittenIndex(side Side) int {
	return a.buffers.Buffer(side).LastWrittenIndex()
}

// BufferStats describes one tap.
type BufferStats struct {
	Ready    int   // short-term samples waiting for migration
	Evicted  int64 // short-term samples dropped before migration
	Migrated int64 // samples moved into history in total
	Primed   bool  // history filled at least once
}

// Stats is a point-in-time view of the buffer counters.
type Stats struct {
	Pre               BufferStats
	Post              BufferStats
	SkippedMigrations int64
	ProcessingDelay   int
}

func bufferStats(b *history.ChannelBuffer) BufferStats {
	return BufferStats{
		Ready:    b.NumReady(),
		Evicted:  b.Evicted(),
		Migrated: b.Migrated(),
		Primed:   b.Primed(),
	}
}

// Stats returns the buffer counters.
func (a *Analyzer) Stats() Stats {
	return Stats{
		Pre:               bufferStats(a.buffers.Pre()),
		Post:              bufferStats(a.buffers.Post()),
		SkippedMigrations: a.buffers.SkippedMigrations(),
		ProcessingDelay:   a.ProcessingDelay(),
	}
}

// Info returns information about the analyzer setup.
type Info struct {
	SampleRate        float64
	Channels          int
	ShortTermCapacity int
	HistoryCapacity   int

	// SIMDType describes the SIMD instruction set in use.
	SIMDType string
}

// GetInfo returns information about the analyzer.
func (a *Analyzer) GetInfo() Info {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Info{
		SampleRate:        a.config.SampleRate,
		Channels:          a.config.Channels,
		ShortTermCapacity: a.buffers.Pre().ShortTermCapacity(),
		HistoryCapacity:   a.buffers.Pre().HistoryCapacity(),
		SIMDType:          cpu.Info(),
	}
}
