package waveform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-analyzer/internal/history"
	"github.com/tphakala/go-audio-analyzer/internal/testutil"
)

const rate = 1000.0

func half(s []float32) []float32 {
	out := make([]float32, len(s))
	for i, v := range s {
		out[i] = v / 2
	}
	return out
}

func feed(m *history.DualBufferManager, pre, post [][]float32) {
	n := len(pre[0])
	m.WriteBlock(history.Pre, pre, n)
	m.WriteBlock(history.Post, post, n)
	m.MigrateToHistory()
}

func TestEngine_Geometry(t *testing.T) {
	e := NewEngine(48000, 2, 512, 4)
	assert.Equal(t, 512, e.Width())
	assert.Equal(t, 375, e.SamplesPerPixel())

	e.SetSpan(8)
	assert.Equal(t, 750, e.SamplesPerPixel())
}

func TestEngine_ColumnsScrollInFromTheRight(t *testing.T) {
	m := history.NewDualBufferManager(1, 2000, 2000)
	e := NewEngine(rate, 1, 10, 1)
	require.Equal(t, 100, e.SamplesPerPixel())

	ramp := testutil.Ramp(0, 250)
	feed(m, [][]float32{ramp}, [][]float32{half(ramp)})

	cols := e.Process(m.Pre(), m.Post(), 24)
	require.Len(t, cols, 10)

	// 250 samples make two columns; the newest 50 wait for the next pixel.
	assert.Equal(t, 100.0, cols[9].PreMin)
	assert.Equal(t, 199.0, cols[9].PreMax)
	assert.Equal(t, 0.0, cols[8].PreMin)
	assert.Equal(t, 99.0, cols[8].PreMax)
	assert.Equal(t, 99.5, cols[9].PostMax)
	assert.Zero(t, cols[7].PreMax, "untouched column")

	assert.InDelta(t, -6.0206, cols[9].GainDB, 0.01)
	assert.InDelta(t, -6.0206, cols[8].GainDB, 0.01)

	ramp = testutil.Ramp(250, 60)
	feed(m, [][]float32{ramp}, [][]float32{half(ramp)})
	cols = e.Process(m.Pre(), m.Post(), 24)

	assert.Equal(t, 200.0, cols[9].PreMin, "carried samples complete a pixel")
	assert.Equal(t, 299.0, cols[9].PreMax)
	assert.Equal(t, 100.0, cols[8].PreMin, "previous newest shifted left")
	assert.Equal(t, 0.0, cols[7].PreMin)
	assert.Equal(t, 99.0, cols[7].PreMax)
}

func TestEngine_SumsChannels(t *testing.T) {
	m := history.NewDualBufferManager(2, 1000, 1000)
	e := NewEngine(rate, 2, 4, 0.4)

	left := testutil.Ramp(0, 100)
	right := testutil.Negate(testutil.Ramp(0, 100))
	right[99] = 5
	feed(m, testutil.Stereo(left, right), testutil.Stereo(left, left))

	cols := e.Process(m.Pre(), m.Post(), 12)
	assert.Equal(t, 0.0, cols[3].PreMin)
	assert.Equal(t, 104.0, cols[3].PreMax)
	assert.Equal(t, 198.0, cols[3].PostMax)
}

func TestEngine_GainClampedToRange(t *testing.T) {
	m := history.NewDualBufferManager(1, 1000, 1000)
	e := NewEngine(rate, 1, 5, 0.5)

	sig := testutil.Sine(500, 0.5, 10, rate)
	feed(m, [][]float32{sig}, [][]float32{make([]float32, 500)})

	cols := e.Process(m.Pre(), m.Post(), 12)
	for _, c := range cols {
		assert.Equal(t, -12.0, c.GainDB)
	}

	e.Reset()
	feed(m, [][]float32{make([]float32, 500)}, [][]float32{sig})
	cols = e.Process(m.Pre(), m.Post(), 12)
	assert.Equal(t, 0.0, cols[4].GainDB, "silent pre reads as unity gain")
}

func TestEngine_BacklogLimitedByWidthAndHistory(t *testing.T) {
	m := history.NewDualBufferManager(1, 3000, 3000)
	e := NewEngine(rate, 1, 10, 1)

	feed(m, [][]float32{testutil.Ramp(0, 3000)}, [][]float32{testutil.Ramp(0, 3000)})
	cols := e.Process(m.Pre(), m.Post(), 12)

	assert.Equal(t, 2900.0, cols[9].PreMin)
	assert.Equal(t, 2000.0, cols[0].PreMin, "only the newest width columns are drawn")

	e.SetSpan(2)
	assert.Equal(t, 200, e.SamplesPerPixel())
	for _, c := range e.Process(m.Pre(), m.Post(), 12) {
		assert.Zero(t, c.PreMax, "span change clears the display")
	}
}
