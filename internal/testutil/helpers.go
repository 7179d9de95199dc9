// Package testutil provides reusable test helpers for the analyser packages.
package testutil

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(v, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertAllInRange verifies that all elements are within [min, max].
func AssertAllInRange(t *testing.T, s []float64, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if v < minVal || v > maxVal {
			return assert.Fail(t, "value out of range",
				"s[%d]=%f is outside range [%f, %f]", i, v, minVal, maxVal)
		}
	}
	return true
}

// AssertMonotonic verifies that a slice is monotonically non-decreasing.
func AssertMonotonic(t *testing.T, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	for i := 1; i < len(s); i++ {
		if s[i] < s[i-1] {
			return assert.Fail(t, "not monotonic",
				"s[%d]=%f < s[%d]=%f", i, s[i], i-1, s[i-1])
		}
	}
	return true
}

// AssertInRange verifies that a value is within [min, max].
func AssertInRange(t *testing.T, value, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	if value < minVal || value > maxVal {
		return assert.Fail(t, "value out of range",
			"value %f is outside range [%f, %f]", value, minVal, maxVal)
	}
	return true
}

// AssertRamp verifies that s holds consecutive integers starting at first,
// which is how ramp-primed history windows are checked.
func AssertRamp(t *testing.T, s []float32, first int, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		want := float32(first + i)
		if v != want {
			return assert.Fail(t, "ramp mismatch",
				"s[%d]=%v, want %v (ramp starting at %d)", i, v, want, first)
		}
	}
	return true
}

// Ramp returns n samples whose value equals their absolute index, offset by start.
func Ramp(start, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(start + i)
	}
	return out
}

// Sine returns n samples of a sine wave with the given amplitude, frequency
// and sample rate.
func Sine(n int, amplitude, freq, sampleRate float64) []float32 {
	out := make([]float32, n)
	w := 2 * math.Pi * freq / sampleRate
	for i := range out {
		out[i] = float32(amplitude * math.Sin(w*float64(i)))
	}
	return out
}

// Noise returns n samples of uniform white noise in [-amplitude, amplitude).
// The generator is seeded so tests stay reproducible.
func Noise(n int, amplitude float64, seed uint64) []float32 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(amplitude * (2*rng.Float64() - 1))
	}
	return out
}

// Negate returns a copy of s with every sample inverted.
func Negate(s []float32) []float32 {
	out := make([]float32, len(s))
	for i, v := range s {
		out[i] = -v
	}
	return out
}

// Stereo builds a two-channel block from left and right slices.
func Stereo(left, right []float32) [][]float32 {
	return [][]float32{left, right}
}
