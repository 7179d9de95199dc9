package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParams_Defaults(t *testing.T) {
	p := newParams(2048)
	assert.Equal(t, 2048, p.FFTSize())
	assert.Equal(t, 108.0, p.SpectrumRangeDB())
	assert.Equal(t, 24.0, p.DifferenceRangeDB())
	assert.Equal(t, 0.92, p.DecayRatio())
	assert.Equal(t, 8, p.AverageDepth())
	assert.Equal(t, AnalyseMono, p.AnalyseMode())
	assert.Equal(t, 2.0, p.Zoom())
	assert.Equal(t, 20, p.VanishDepth())
	assert.Equal(t, 4.0, p.WaveformSpanSeconds())
	assert.Equal(t, 12.0, p.WaveformRangeDB())
	assert.False(t, p.Frozen())
}

func TestParams_ModeTables(t *testing.T) {
	p := newParams(2048)

	tests := []struct {
		name string
		set  func(int) error
		get  func() float64
		want []float64
	}{
		{"spectrum range", p.SetSpectrumRange, p.SpectrumRangeDB, []float64{54, 72, 90, 108}},
		{"difference range", p.SetDifferenceRange, p.DifferenceRangeDB, []float64{24, 72, 144, 240}},
		{"return time", p.SetReturnTime, p.DecayRatio, []float64{0.70, 0.80, 0.90, 0.92}},
		{"time average", p.SetTimeAverage, func() float64 { return float64(p.AverageDepth()) }, []float64{3, 5, 8, 12}},
		{"waveform span", p.SetWaveformSpan, p.WaveformSpanSeconds, []float64{1, 4, 8}},
		{"waveform range", p.SetWaveformRange, p.WaveformRangeDB, []float64{12, 24, 36}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i, want := range tt.want {
				require.NoError(t, tt.set(i+1))
				assert.Equal(t, want, tt.get())
			}

			before := tt.get()
			require.ErrorIs(t, tt.set(0), ErrInvalidParam)
			require.ErrorIs(t, tt.set(len(tt.want)+1), ErrInvalidParam)
			assert.Equal(t, before, tt.get(), "rejected value leaves knob unchanged")
		})
	}
}

func TestParams_RangesAndEnums(t *testing.T) {
	p := newParams(2048)

	require.NoError(t, p.SetZoom(50))
	assert.Equal(t, 0.5, p.Zoom())
	assert.ErrorIs(t, p.SetZoom(401), ErrInvalidParam)

	require.NoError(t, p.SetVanishDepth(5))
	assert.ErrorIs(t, p.SetVanishDepth(51), ErrInvalidParam)
	assert.Equal(t, 5, p.VanishDepth())

	require.NoError(t, p.SetAnalyseMode(AnalyseMidSide))
	assert.Equal(t, "mid/side", p.AnalyseMode().String())
	assert.ErrorIs(t, p.SetAnalyseMode(AnalyseMode(0)), ErrInvalidParam)

	require.NoError(t, p.SetFFTSize(4096))
	assert.ErrorIs(t, p.SetFFTSize(8192), ErrInvalidParam)
	assert.Equal(t, 4096, p.FFTSize())

	p.SetFreeze(true)
	assert.True(t, p.Frozen())
}
