package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-analyzer/internal/testutil"
)

const (
	testRate  = 8000.0
	testWidth = 64
	blockSize = 256
)

func newTestAnalyzer(t *testing.T, channels int) *Analyzer {
	t.Helper()
	c := DefaultConfig(testRate, channels)
	c.Width = testWidth
	a, err := New(&c)
	require.NoError(t, err)
	return a
}

// delayed returns s shifted right by d samples with zeros in front.
func delayed(s []float32, d int) []float32 {
	out := make([]float32, len(s))
	copy(out[d:], s)
	return out
}

// stream feeds pre and post through ProcessBlock in blockSize chunks.
func stream(a *Analyzer, pre, post [][]float32, latency int) {
	total := len(pre[0])
	for start := 0; start < total; start += blockSize {
		end := min(start+blockSize, total)
		pb := make([][]float32, len(pre))
		qb := make([][]float32, len(post))
		for ch := range pre {
			pb[ch] = pre[ch][start:end]
			qb[ch] = post[ch][start:end]
		}
		a.ProcessBlock(pb, qb, end-start, latency)
	}
}

// =============================================================================
// Audio-side API
// =============================================================================

func TestAnalyzer_ProcessBlockRecordsLatency(t *testing.T) {
	a := newTestAnalyzer(t, 2)
	block := testutil.Stereo(make([]float32, 64), make([]float32, 64))

	require.True(t, a.ProcessBlock(block, block, 64, 32))
	assert.Equal(t, 32, a.ProcessingDelay())

	a.SetProcessingDelay(10)
	a.ProcessBlock(block, block, 64, 32)
	assert.Equal(t, 10, a.ProcessingDelay(), "unchanged latency is not re-applied")

	a.ProcessBlock(block, block, 64, 0)
	assert.Equal(t, 0, a.ProcessingDelay())
}

func TestAnalyzer_DesyncSkipsMigration(t *testing.T) {
	a := newTestAnalyzer(t, 1)
	block := [][]float32{testutil.Ramp(0, 100)}

	a.WriteBlock(Pre, block, 100)
	assert.False(t, a.Migrate())

	s := a.Stats()
	assert.Equal(t, int64(1), s.SkippedMigrations)
	assert.Equal(t, 100, s.Pre.Ready)
	assert.Zero(t, s.Post.Ready)
	assert.Zero(t, s.Pre.Migrated)

	a.WriteBlock(Post, block, 100)
	assert.True(t, a.Migrate())
	s = a.Stats()
	assert.Equal(t, int64(100), s.Pre.Migrated)
	assert.Equal(t, int64(100), s.Post.Migrated)
	assert.False(t, s.Pre.Primed)
}

// =============================================================================
// History reads
// =============================================================================

func TestAnalyzer_CopyFromHistoryAtLookback(t *testing.T) {
	const latency = 100
	a := newTestAnalyzer(t, 1)
	ramp := [][]float32{testutil.Ramp(0, 1000)}
	stream(a, ramp, ramp, latency)

	assert.Equal(t, 1000, a.LastWrittenIndex(Pre))
	assert.Equal(t, 1000, a.LastWrittenIndex(Post))

	tests := []struct {
		name     string
		side     Side
		lookback int
		first    int
	}{
		{"post newest", Post, 0, 990},
		{"post lookback", Post, 5, 985},
		{"pre shifted by delay", Pre, 0, 990 - latency},
		{"pre lookback", Pre, 40, 990 - latency - 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := [][]float32{make([]float32, 10)}
			a.CopyFromHistory(tt.side, dst, 10, tt.lookback)
			testutil.AssertRamp(t, dst[0], tt.first)
		})
	}

	assert.Panics(t, func() {
		a.CopyFromHistory(Post, [][]float32{make([]float32, 50000)}, 50000, 0)
	}, "window longer than history")
}

func TestAnalyzer_RMSAndPeak(t *testing.T) {
	a := newTestAnalyzer(t, 2)
	left := make([]float32, 1000)
	right := make([]float32, 1000)
	for i := range left {
		left[i], right[i] = 0.5, -0.25
	}
	block := testutil.Stereo(left, right)
	stream(a, block, block, 0)

	assert.InDelta(t, 0.5, a.RMS(Post, 0, 100, 0), 1e-6)
	assert.InDelta(t, 0.25, a.RMS(Post, 0, 100, 1), 1e-6)
	assert.InDelta(t, 0.25, a.RMS(Pre, 200, 100, MonoMix), 1e-6)
	assert.InDelta(t, 0.5, a.Peak(Pre, 0, 100, 0), 1e-6)
	assert.InDelta(t, 0.25, a.Peak(Post, 0, 100, MonoMix), 1e-6)
	assert.Zero(t, a.RMS(Post, 1500, 100, 0), "window older than the audio is silent")
}

// =============================================================================
// Reconfiguration
// =============================================================================

func TestAnalyzer_Reconfigure(t *testing.T) {
	a := newTestAnalyzer(t, 1)
	sig := testutil.Noise(4000, 0.5, 6)
	stream(a, [][]float32{sig}, [][]float32{sig}, 32)
	require.NoError(t, a.Params().SetSpectrumRange(2))

	c := DefaultConfig(16000, 2)
	c.Width = 32
	c.FFTSize = 4096
	require.NoError(t, a.Reconfigure(&c))

	assert.Equal(t, Stats{}, a.Stats(), "history and delay discarded")
	info := a.GetInfo()
	assert.Equal(t, 16000.0, info.SampleRate)
	assert.Equal(t, 2, info.Channels)
	assert.Equal(t, 16000, info.ShortTermCapacity)
	assert.Equal(t, 80000, info.HistoryCapacity)
	assert.Equal(t, 32, a.Config().Width)
	assert.Equal(t, 4096, a.Params().FFTSize())
	assert.Equal(t, 72.0, a.Params().SpectrumRangeDB(), "other knobs kept")

	tone := testutil.Sine(16000, 0.5, 1000, 16000)
	stream(a, testutil.Stereo(tone, tone), testutil.Stereo(tone, tone), 0)
	assert.Equal(t, 16000, a.LastWrittenIndex(Post))

	s, err := a.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 4096, s.FFTSize)
	assert.Len(t, s.Spectrum.Frequencies, 32)
	assert.Len(t, s.Waveform.Columns, 32)
	require.Len(t, s.Levels, 2)
	assert.InDelta(t, 0.5/1.41421356, s.Levels[1].RMSPost, 1e-3)
}

func TestAnalyzer_ReconfigureRejectsInvalidConfig(t *testing.T) {
	a := newTestAnalyzer(t, 2)
	before := a.GetInfo()

	bad := DefaultConfig(testRate, 0)
	require.ErrorIs(t, a.Reconfigure(&bad), ErrInvalidConfig)
	require.ErrorIs(t, a.Reconfigure(nil), ErrInvalidConfig)

	assert.Equal(t, before, a.GetInfo())
	assert.Equal(t, testWidth, a.Config().Width)
}

// =============================================================================
// Analysis through the facade
// =============================================================================

func TestAnalyzer_DelayCompensatedChainReadsAsUnity(t *testing.T) {
	const latency = 100
	a := newTestAnalyzer(t, 2)
	require.NoError(t, a.Params().SetAnalyseMode(AnalyseLeftRight))

	left := testutil.Noise(16000, 0.5, 1)
	right := testutil.Noise(16000, 0.5, 2)
	pre := testutil.Stereo(left, right)
	post := testutil.Stereo(delayed(left, latency), delayed(right, latency))
	stream(a, pre, post, latency)

	s, err := a.Snapshot()
	require.NoError(t, err)

	for ch, l := range s.Levels {
		assert.InDelta(t, 0, l.RMSGainDB, 1e-4, "channel %d RMS gain", ch)
		assert.InDelta(t, 0, l.PeakGainDB, 1e-4, "channel %d peak gain", ch)
	}

	require.NotNil(t, s.Difference.GainB)
	for _, curve := range [][]float64{s.Difference.GainA, s.Difference.GainB} {
		require.Len(t, curve, testWidth)
		testutil.AssertAllInRange(t, curve, -1e-6, 1e-6)
	}
	for _, curve := range [][]float64{s.Difference.PhaseA, s.Difference.PhaseB} {
		testutil.AssertAllInRange(t, curve, -1e-9, 1e-9)
	}
}

func TestAnalyzer_UncompensatedDelayShowsInDifference(t *testing.T) {
	a := newTestAnalyzer(t, 1)

	sig := testutil.Noise(16000, 0.5, 3)
	stream(a, [][]float32{sig}, [][]float32{delayed(sig, 100)}, 0)

	s, err := a.Snapshot()
	require.NoError(t, err)

	var worst float64
	for _, v := range s.Difference.PhaseA {
		worst = max(worst, v, -v)
	}
	assert.Greater(t, worst, 0.01, "misaligned windows leave a phase difference")
}

func TestAnalyzer_SnapshotShape(t *testing.T) {
	a := newTestAnalyzer(t, 2)
	sig := testutil.Sine(8000, 0.5, 1000, testRate)
	stream(a, testutil.Stereo(sig, sig), testutil.Stereo(sig, testutil.Negate(sig)), 0)

	s, err := a.Snapshot()
	require.NoError(t, err)

	assert.Equal(t, 2048, s.FFTSize)
	assert.Len(t, s.Spectrum.Frequencies, testWidth)
	assert.Len(t, s.Spectrum.Pre, testWidth)
	assert.Len(t, s.Spectrum.Post, testWidth)
	testutil.AssertMonotonic(t, s.Spectrum.Frequencies)
	testutil.AssertNoNaNOrInf(t, s.Spectrum.Pre)
	assert.Equal(t, 108.0, s.Spectrum.RangeDB)

	assert.Equal(t, AnalyseMono, s.Difference.Mode)
	assert.Nil(t, s.Difference.GainB)
	assert.Nil(t, s.Difference.PhaseB)

	assert.InDelta(t, 1, s.Stereo.Pre.Correlation, 1e-9)
	assert.InDelta(t, -1, s.Stereo.Post.Correlation, 1e-9)
	require.Len(t, s.Stereo.Pre.Clouds, 1)
	assert.Equal(t, 2.0, s.Stereo.Zoom)

	require.Len(t, s.Levels, 2)
	assert.InDelta(t, 0.5/1.41421356, s.Levels[0].RMSPre, 1e-3)

	assert.Len(t, s.Waveform.Columns, testWidth)
	assert.Equal(t, 4.0, s.Waveform.SpanSeconds)
	assert.Equal(t, int64(8000), s.Stats.Post.Migrated)
}

func TestAnalyzer_SnapshotOwnsItsSlices(t *testing.T) {
	a := newTestAnalyzer(t, 2)
	sig := testutil.Noise(4000, 0.5, 4)
	stream(a, testutil.Stereo(sig, sig), testutil.Stereo(sig, sig), 0)

	first, err := a.Snapshot()
	require.NoError(t, err)
	saved := first.Spectrum.Pre[10]
	cloud := first.Stereo.Pre.Clouds[0][0]

	stream(a, testutil.Stereo(make([]float32, 4000), make([]float32, 4000)),
		testutil.Stereo(make([]float32, 4000), make([]float32, 4000)), 0)
	_, err = a.Snapshot()
	require.NoError(t, err)

	assert.Equal(t, saved, first.Spectrum.Pre[10])
	assert.Equal(t, cloud, first.Stereo.Pre.Clouds[0][0])
}

func TestAnalyzer_FFTSizeChangeAppliesOnNextSnapshot(t *testing.T) {
	a := newTestAnalyzer(t, 1)
	sig := testutil.Sine(8000, 0.5, 500, testRate)
	stream(a, [][]float32{sig}, [][]float32{sig}, 0)

	require.NoError(t, a.Params().SetFFTSize(4096))
	s, err := a.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 4096, s.FFTSize)
	assert.Len(t, s.Spectrum.Pre, testWidth)
}

func TestAnalyzer_Reset(t *testing.T) {
	a := newTestAnalyzer(t, 2)
	sig := testutil.Noise(4000, 0.5, 5)
	stream(a, testutil.Stereo(sig, sig), testutil.Stereo(sig, sig), 64)
	a.WriteBlock(Pre, testutil.Stereo(sig[:10], sig[:10]), 10)
	a.Migrate()

	a.Reset()

	assert.Equal(t, Stats{}, a.Stats())
	s, err := a.Snapshot()
	require.NoError(t, err)
	assert.Zero(t, s.Stereo.Pre.Correlation)
	assert.Empty(t, s.Stereo.Pre.Clouds)
	for _, l := range s.Levels {
		assert.Zero(t, l.PeakHold)
	}
}

func TestAnalyzer_GetInfo(t *testing.T) {
	a := newTestAnalyzer(t, 2)
	info := a.GetInfo()
	assert.Equal(t, 8000, info.ShortTermCapacity)
	assert.Equal(t, 40000, info.HistoryCapacity)
	assert.Equal(t, 2, info.Channels)
}
