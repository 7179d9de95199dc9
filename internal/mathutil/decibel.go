// Package mathutil provides the numeric helpers shared by the analysis
// engines: decibel conversion, sentinel substitution for degenerate values,
// peak-hold recurrences and phase wrapping.
//
// Every function here is total: NaN and Inf never leave this package.
package mathutil

import "math"

// Finite returns v, or 0 when v is NaN or infinite.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Ratio returns num/den. Undefined ratios (den == 0, or a NaN/Inf result)
// yield 1 so that a gain read-out shows 0 dB rather than a spike.
func Ratio(num, den float64) float64 {
	if den == 0 {
		return ratioSentinel
	}
	r := num / den
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return ratioSentinel
	}
	return r
}

// GainToDB converts a linear amplitude to decibels, floored at MinDecibels.
func GainToDB(lin float64) float64 {
	if math.IsNaN(lin) {
		return 0
	}
	if lin <= 0 {
		return MinDecibels
	}
	db := amplitudeDBFactor * math.Log10(lin)
	if math.IsInf(db, 1) {
		return 0
	}
	return max(db, MinDecibels)
}

// DBToGain converts decibels to a linear amplitude.
func DBToGain(db float64) float64 {
	return math.Pow(decibelBase, db/amplitudeDBFactor)
}

// RatioDB returns the gain num/den in decibels using Ratio's sentinel.
func RatioDB(num, den float64) float64 {
	return GainToDB(Ratio(num, den))
}

// WrapPhase maps an angle difference onto [-π, π] and normalises it by 2π,
// giving a value in [-0.5, 0.5].
func WrapPhase(d float64) float64 {
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0
	}
	d = math.Remainder(d, twoPi)
	return d / twoPi
}
