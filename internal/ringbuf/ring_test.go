package ringbuf

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-analyzer/internal/testutil"
)

// =============================================================================
// Region arithmetic
// =============================================================================

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		start    int
		n        int
		want     Regions
	}{
		{"no wrap", 10, 2, 5, Regions{Start1: 2, Size1: 5}},
		{"exact end", 10, 5, 5, Regions{Start1: 5, Size1: 5}},
		{"wraps", 10, 8, 5, Regions{Start1: 8, Size1: 2, Start2: 0, Size2: 3}},
		{"negative start", 10, -3, 4, Regions{Start1: 7, Size1: 3, Start2: 0, Size2: 1}},
		{"clamped to capacity", 10, 4, 25, Regions{Start1: 4, Size1: 6, Start2: 0, Size2: 4}},
		{"zero length", 10, 4, 0, Regions{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.capacity, tt.start, tt.n)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, got.Total(), tt.capacity)
		})
	}
}

func TestWrap(t *testing.T) {
	assert.Equal(t, 0, Wrap(10, 10))
	assert.Equal(t, 9, Wrap(-1, 10))
	assert.Equal(t, 9, Wrap(-11, 10))
	assert.Equal(t, 3, Wrap(23, 10))
}

// =============================================================================
// Ring invariants
// =============================================================================

func TestRingBuffer_ReadyCountTracksWritesAndReads(t *testing.T) {
	r := New(64)

	r.FinishedWrite(r.PrepareToWrite(20).Total())
	r.FinishedWrite(r.PrepareToWrite(30).Total())
	assert.Equal(t, 50, r.NumReady())
	assert.Equal(t, 14, r.FreeSpace())

	r.FinishedRead(r.PrepareToRead(15).Total())
	assert.Equal(t, 35, r.NumReady(), "N-M after 50 written and 15 read")

	reg := r.PrepareToRead(100)
	assert.Equal(t, 35, reg.Total(), "read reservation limited to ready samples")
}

func TestRingBuffer_RandomOperationsKeepInvariant(t *testing.T) {
	const capacity = 97
	r := New(capacity)
	rng := rand.New(rand.NewPCG(1, 2))

	written, read := 0, 0
	for i := range 5000 {
		if rng.IntN(2) == 0 {
			n := rng.IntN(capacity + 1)
			n = min(n, r.FreeSpace())
			reg := r.PrepareToWrite(n)
			require.Equal(t, n, reg.Total())
			r.FinishedWrite(reg.Total())
			written += n
		} else {
			reg := r.PrepareToRead(rng.IntN(capacity + 1))
			r.FinishedRead(reg.Total())
			read += reg.Total()
		}

		require.LessOrEqual(t, r.NumReady(), capacity, "step %d", i)
		require.Equal(t, written-read, r.NumReady(), "step %d", i)
	}
}

func TestRingBuffer_FinishedWriteCapsAtCapacity(t *testing.T) {
	r := New(10)
	r.FinishedWrite(8)
	r.FinishedWrite(8)

	assert.Equal(t, 10, r.NumReady())
	assert.Equal(t, 6, r.ReadCursor(), "oldest six released")
}

func TestRingBuffer_MakeRoomEvictsOldest(t *testing.T) {
	r := New(100)
	r.FinishedWrite(60)

	evicted := r.MakeRoom(60)
	assert.Equal(t, 20, evicted)
	assert.Equal(t, 40, r.NumReady())
	assert.Equal(t, 20, r.ReadCursor())

	assert.Equal(t, 0, r.MakeRoom(60), "room already available")
}

func TestRingBuffer_NegativeSizesPanic(t *testing.T) {
	r := New(8)
	assert.Panics(t, func() { r.PrepareToWrite(-1) })
	assert.Panics(t, func() { r.FinishedWrite(-1) })
	assert.Panics(t, func() { r.PrepareToRead(-1) })
	assert.Panics(t, func() { r.FinishedRead(-1) })
}

func TestRingBuffer_MinimumCapacity(t *testing.T) {
	assert.Equal(t, 1, New(0).Capacity())
	assert.Equal(t, 1, New(-5).Capacity())
}

// =============================================================================
// Wrap correctness through a backing store
// =============================================================================

// writeSamples writes values into store through r, evicting first like the
// channel buffers do.
func writeSamples(r *RingBuffer, store []float32, values []float32) {
	r.MakeRoom(len(values))
	reg := r.PrepareToWrite(len(values))
	CircularCopy(Span{Data: store, Start: reg.Start1}, Linear(values), reg.Total())
	r.FinishedWrite(reg.Total())
}

func TestRingBuffer_WrapReproducesLastCapacitySamples(t *testing.T) {
	const capacity = 50
	for _, extra := range []int{1, 7, 49, 50, 123} {
		r := New(capacity)
		store := make([]float32, capacity)

		total := capacity + extra
		for start := 0; start < total; start += 13 {
			writeSamples(r, store, testutil.Ramp(start, min(13, total-start)))
		}

		require.Equal(t, capacity, r.NumReady())
		reg := r.PrepareToRead(capacity)
		out := make([]float32, capacity)
		CircularCopy(Linear(out), Span{Data: store, Start: reg.Start1}, reg.Total())
		testutil.AssertRamp(t, out, total-capacity, "extra=%d", extra)
	}
}

func TestRingBuffer_Reset(t *testing.T) {
	r := New(16)
	r.FinishedWrite(12)
	r.FinishedRead(5)
	r.Reset()

	fresh := New(16)
	assert.Equal(t, fresh.NumReady(), r.NumReady())
	assert.Equal(t, fresh.WriteCursor(), r.WriteCursor())
	assert.Equal(t, fresh.ReadCursor(), r.ReadCursor())
	assert.Equal(t, fresh.PrepareToWrite(20), r.PrepareToWrite(20))
}
