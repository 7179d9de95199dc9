package spectral

import "math"

// PixelMap assigns each column of a logarithmic frequency axis to the
// nearest FFT bin. The table is rebuilt only when width, FFT size or sample
// rate change.
type PixelMap struct {
	width      int
	size       int
	sampleRate float64
	bins       []int
}

// NewPixelMap builds the table for the given geometry.
func NewPixelMap(width, size int, sampleRate float64) *PixelMap {
	p := &PixelMap{}
	p.Update(width, size, sampleRate)
	return p
}

// Update rebuilds the table if any parameter changed and reports whether it did.
func (p *PixelMap) Update(width, size int, sampleRate float64) bool {
	width = max(width, 1)
	if width == p.width && size == p.size && sampleRate == p.sampleRate {
		return false
	}
	p.width, p.size, p.sampleRate = width, size, sampleRate

	p.bins = make([]int, width)
	resolution := sampleRate / float64(size)
	last := size / fftHermitianDivisor
	for col := range p.bins {
		bin := int(p.Frequency(col) / resolution)
		p.bins[col] = min(max(bin, 0), last)
	}
	return true
}

// Width returns the number of columns.
func (p *PixelMap) Width() int { return p.width }

// Frequency returns the frequency at column col: 10 Hz at column 0 rising
// logarithmically towards Nyquist at column width.
func (p *PixelMap) Frequency(col int) float64 {
	span := math.Log((p.sampleRate / nyquistDivisor) / lowestAxisFrequency)
	return math.Exp(float64(col)*span/float64(p.width) + math.Log(lowestAxisFrequency))
}

// Bin returns the FFT bin drawn at column col.
func (p *PixelMap) Bin(col int) int {
	return p.bins[col]
}

// Resample gathers curve into one value per column. dst is reused when it
// has room for Width values.
func (p *PixelMap) Resample(dst, curve []float64) []float64 {
	if cap(dst) < p.width {
		dst = make([]float64, p.width)
	}
	dst = dst[:p.width]
	for col, bin := range p.bins {
		if bin < len(curve) {
			dst[col] = curve[bin]
		} else {
			dst[col] = 0
		}
	}
	return dst
}
