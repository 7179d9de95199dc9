package spectral

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tphakala/go-audio-analyzer/internal/testutil"
)

func TestPixelMap_Geometry(t *testing.T) {
	p := NewPixelMap(512, 1024, testRate)

	assert.Equal(t, 512, p.Width())
	assert.InDelta(t, 10.0, p.Frequency(0), 1e-9)
	assert.InDelta(t, testRate/2, p.Frequency(512), 1e-6)
	assert.Equal(t, 0, p.Bin(0))

	bins := make([]float64, p.Width())
	for col := range bins {
		bins[col] = float64(p.Bin(col))
	}
	testutil.AssertMonotonic(t, bins)
	testutil.AssertAllInRange(t, bins, 0, 512)
	assert.Equal(t, 1000*1024/int(testRate), p.Bin(colFor(p, 1000)), "1 kHz column lands on the 1 kHz bin")
}

// colFor returns the first column at or above freq.
func colFor(p *PixelMap, freq float64) int {
	for col := range p.Width() {
		if p.Frequency(col) >= freq {
			return col
		}
	}
	return p.Width() - 1
}

func TestPixelMap_UpdateOnlyOnChange(t *testing.T) {
	p := NewPixelMap(256, 2048, testRate)
	assert.False(t, p.Update(256, 2048, testRate))
	assert.True(t, p.Update(300, 2048, testRate))
	assert.True(t, p.Update(300, 4096, testRate))
	assert.True(t, p.Update(300, 4096, 44100))
	assert.Equal(t, 300, p.Width())
}

func TestPixelMap_Resample(t *testing.T) {
	p := NewPixelMap(64, 1024, testRate)
	curve := make([]float64, Bins(1024))
	for i := range curve {
		curve[i] = float64(i)
	}

	out := p.Resample(nil, curve)
	assert.Len(t, out, 64)
	for col, v := range out {
		assert.InDelta(t, float64(p.Bin(col)), v, 0)
	}

	reused := p.Resample(out, curve)
	assert.Same(t, &out[0], &reused[0], "destination reused")
}
