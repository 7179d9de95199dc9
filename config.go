package analyzer

import (
	"errors"
	"fmt"
	"log"
	"slices"
)

// Common errors returned by the analyzer.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid analyzer configuration")

	// ErrInvalidParam indicates a runtime knob set outside its range.
	ErrInvalidParam = errors.New("invalid analyzer parameter")
)

// Config holds the fixed configuration of an Analyzer. Changing any of it
// requires a new Analyzer or a call to Reset.
type Config struct {
	// SampleRate is the audio sample rate in Hz.
	SampleRate float64

	// Channels is the number of audio channels on both taps.
	Channels int

	// ShortTermSeconds sizes the store the audio callback writes into.
	ShortTermSeconds float64

	// HistorySeconds sizes the store the analysis engines read from.
	HistorySeconds float64

	// FFTSize is the initial transform length; Params can change it later.
	FFTSize int

	// Width is the number of display columns of the spectrum and waveform.
	Width int

	// Logger receives soft warnings from Run. Nil discards them.
	Logger *log.Logger
}

// DefaultConfig returns a configuration with one second of short-term
// storage, five seconds of history and a 2048-point FFT.
func DefaultConfig(sampleRate float64, channels int) Config {
	return Config{
		SampleRate:       sampleRate,
		Channels:         channels,
		ShortTermSeconds: defaultShortTermSeconds,
		HistorySeconds:   defaultHistorySeconds,
		FFTSize:          defaultFFTSize,
		Width:            defaultWidth,
	}
}

// ShortTermCapacity returns the short-term store size in samples.
func (c *Config) ShortTermCapacity() int {
	return int(c.SampleRate * c.ShortTermSeconds)
}

// HistoryCapacity returns the history store size in samples.
func (c *Config) HistoryCapacity() int {
	return int(c.SampleRate * c.HistorySeconds)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive", ErrInvalidConfig)
	}

	if c.Channels < monoChannels {
		return fmt.Errorf("%w: channels must be at least 1", ErrInvalidConfig)
	}

	if c.Channels > maxChannels {
		return fmt.Errorf("%w: too many channels (max %d)", ErrInvalidConfig, maxChannels)
	}

	if c.ShortTermCapacity() < 1 {
		return fmt.Errorf("%w: short-term store must hold at least one sample", ErrInvalidConfig)
	}

	if c.HistoryCapacity() < c.ShortTermCapacity() {
		return fmt.Errorf("%w: history (%d samples) shorter than short-term store (%d samples)",
			ErrInvalidConfig, c.HistoryCapacity(), c.ShortTermCapacity())
	}

	if err := validateFFTSize(c.FFTSize); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if need := max(c.FFTSize, fftSizes[len(fftSizes)-1], int(c.SampleRate*largestWindowSeconds)); c.HistoryCapacity() < need {
		return fmt.Errorf("%w: history of %d samples cannot hold a %d-sample analysis window",
			ErrInvalidConfig, c.HistoryCapacity(), need)
	}

	if c.Width < 1 {
		return fmt.Errorf("%w: width must be at least 1", ErrInvalidConfig)
	}

	return nil
}

func validateFFTSize(n int) error {
	if !slices.Contains(fftSizes, n) {
		return fmt.Errorf("FFT size %d not one of %v", n, fftSizes)
	}
	return nil
}
