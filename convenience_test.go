package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMonoAndStereo(t *testing.T) {
	m, err := NewMono(44100)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Config().Channels)

	s, err := NewStereo(44100)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Config().Channels)
}

func TestInterleaveRoundTrip(t *testing.T) {
	left := []float32{1, 2, 3}
	right := []float32{-1, -2, -3, -4}

	inter := InterleaveToStereo(left, right)
	assert.Equal(t, []float32{1, -1, 2, -2, 3, -3}, inter)

	planar := Deinterleave(nil, inter, 2)
	assert.Equal(t, [][]float32{left, right[:3]}, planar)
}

func TestDeinterleave_ReusesAndDropsPartialFrame(t *testing.T) {
	dst := [][]float32{make([]float32, 8), make([]float32, 8), make([]float32, 8)}
	backing := &dst[0][0]

	out := Deinterleave(dst, []float32{1, 2, 3, 4, 5, 6, 7}, 3)
	assert.Equal(t, [][]float32{{1, 4}, {2, 5}, {3, 6}}, out)
	assert.Same(t, backing, &out[0][0])

	assert.Nil(t, Deinterleave(nil, []float32{1}, 0))
}
