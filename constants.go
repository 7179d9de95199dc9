package analyzer

// Channel constants
const (
	monoChannels   = 1
	stereoChannels = 2  // Stereo channel count (used by interleave functions)
	maxChannels    = 32 // Maximum supported channel count
)

// Buffer sizing defaults, in seconds of audio.
const (
	defaultShortTermSeconds = 1.0
	defaultHistorySeconds   = 5.0

	// largestWindowSeconds is the longest window any engine reads at once
	// (the 0.4 s RMS window of the level and waveform engines).
	largestWindowSeconds = 0.4
)

// Display defaults
const (
	defaultFFTSize = 2048
	defaultWidth   = 512
)

// Allowed FFT sizes.
var fftSizes = []int{1024, 2048, 4096}

// Knob tables. Mode n of a 1-based knob selects element n-1.
var (
	spectrumRangesDB   = [...]float64{54, 72, 90, 108}
	differenceRangesDB = [...]float64{24, 72, 144, 240}
	decayRatios        = [...]float64{0.70, 0.80, 0.90, 0.92}
	averageDepths      = [...]int{3, 5, 8, 12}
	waveformSpans      = [...]float64{1, 4, 8}
	waveformRangesDB   = [...]float64{12, 24, 36}
)

// Knob defaults and limits
const (
	defaultSpectrumRange   = 4
	defaultDifferenceRange = 1
	defaultReturnTime      = 4
	defaultTimeAverage     = 3
	defaultWaveformSpan    = 2
	defaultWaveformRange   = 1

	minZoom          = 50
	maxZoom          = 400
	defaultZoom      = 200
	zoomPercentScale = 100.0

	minVanishDepth     = 5
	maxVanishDepth     = 50
	defaultVanishDepth = 20
)
