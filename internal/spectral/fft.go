package spectral

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// ErrInvalidSize is returned for FFT sizes that are not a power of two of
// at least minFFTSize.
var ErrInvalidSize = errors.New("invalid FFT size")

// Source is the read side of a history buffer.
type Source interface {
	Channels() int
	CopyFromHistory(dst [][]float32, n, lookback int)
}

// ValidateSize checks that n is usable as a transform length.
func ValidateSize(n int) error {
	if n < minFFTSize || n&(n-1) != 0 {
		return fmt.Errorf("%w: %d (must be a power of two >= %d)", ErrInvalidSize, n, minFFTSize)
	}
	return nil
}

// Bins returns the number of unique bins of a real transform of size n.
func Bins(n int) int {
	return n/fftHermitianDivisor + 1
}

// transformer pulls a window from a Source, applies a Hann window and runs
// one real forward FFT per channel. All buffers are allocated up front.
type transformer struct {
	size   int
	fft    *fourier.FFT
	window []float64

	block  [][]float32
	frame  []float64
	coeffs [][]complex128
}

func newTransformer(size, channels int) (*transformer, error) {
	if err := ValidateSize(size); err != nil {
		return nil, err
	}
	channels = max(channels, 1)

	win := make([]float64, size)
	for i := range win {
		win[i] = 1
	}
	window.Hann(win)

	t := &transformer{
		size:   size,
		fft:    fourier.NewFFT(size),
		window: win,
		block:  make([][]float32, channels),
		frame:  make([]float64, size),
		coeffs: make([][]complex128, channels),
	}
	for ch := range channels {
		t.block[ch] = make([]float32, size)
		t.coeffs[ch] = make([]complex128, Bins(size))
	}
	return t, nil
}

// load copies the newest window from src and transforms every channel.
func (t *transformer) load(src Source) {
	src.CopyFromHistory(t.block, t.size, 0)
	for ch := range t.block {
		for i, v := range t.block[ch] {
			t.frame[i] = float64(v) * t.window[i]
		}
		t.fft.Coefficients(t.coeffs[ch], t.frame)
	}
}

// channel returns the coefficients of channel ch, falling back to channel 0
// for single-channel sources.
func (t *transformer) channel(ch int) []complex128 {
	if ch < len(t.coeffs) {
		return t.coeffs[ch]
	}
	return t.coeffs[0]
}

// mono returns the complex average of all channels at bin k.
func (t *transformer) mono(k int) complex128 {
	var sum complex128
	for ch := range t.coeffs {
		sum += t.coeffs[ch][k]
	}
	return sum / complex(float64(len(t.coeffs)), 0)
}
