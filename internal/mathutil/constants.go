package mathutil

import "math"

// Decibel conversion constants
const (
	// MinDecibels is the floor reported for silent or vanishing magnitudes.
	MinDecibels = -150.0

	amplitudeDBFactor = 20.0 // 20*log10 for amplitude ratios
	decibelBase       = 10.0 // Base of the decibel logarithm

	// ratioSentinel is substituted for gain ratios that are undefined
	// (zero or non-finite denominator). It reads as 0 dB.
	ratioSentinel = 1.0
)

// Phase constants
const (
	twoPi = 2 * math.Pi
)
