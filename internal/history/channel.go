// Package history implements the pre/post sample stores that bridge the
// audio callback and the analysis goroutine.
//
// Each ChannelBuffer keeps a short-term store fed by the audio callback and
// a longer history store that analysis code reads at arbitrary lookback
// offsets. Both stores are driven by ringbuf.RingBuffer index allocators and
// share one circular copy primitive.
//
// # Threading
//
// AppendBlock, MigrateReadyToHistory and SetKnownProcessingDelay run on the
// audio goroutine. CopyFromHistory, RMS and Peak run on the analysis
// goroutine. The only state those two sides share is the atomic
// last-written index and the atomic processing delay; sample data read by
// the analysis side may be torn at the window boundary while a migration is
// running, which is tolerated. Reset must only be called while audio is
// stopped.
package history

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/tphakala/go-audio-analyzer/internal/ringbuf"
	"github.com/tphakala/go-audio-analyzer/internal/simdops"
)

// MonoMix selects the sum of all channels in RMS and Peak.
const MonoMix = -1

// ChannelBuffer is the multichannel short-term store plus history store for
// one side (pre or post) of the processing chain.
type ChannelBuffer struct {
	channels  int
	shortTerm [][]float32
	history   [][]float32

	shortRing   *ringbuf.RingBuffer
	historyRing *ringbuf.RingBuffer

	// lastWritten is the history slot just after the newest migrated sample.
	lastWritten atomic.Int64
	delay       atomic.Int64

	evicted  atomic.Int64 // short-term samples dropped before migration
	migrated atomic.Int64 // total samples moved into history
}

// NewChannelBuffer allocates a buffer for the given channel count and
// capacities. Sizes below one are raised to one.
func NewChannelBuffer(channels, shortTermCapacity, historyCapacity int) *ChannelBuffer {
	b := &ChannelBuffer{}
	b.Reset(channels, shortTermCapacity, historyCapacity)
	return b
}

// Reset reallocates both stores and zeroes every cursor, counter and the
// processing delay.
func (b *ChannelBuffer) Reset(channels, shortTermCapacity, historyCapacity int) {
	channels = max(channels, 1)
	shortTermCapacity = max(shortTermCapacity, 1)
	historyCapacity = max(historyCapacity, 1)

	b.channels = channels
	b.shortTerm = allocStore(channels, shortTermCapacity)
	b.history = allocStore(channels, historyCapacity)
	b.shortRing = ringbuf.New(shortTermCapacity)
	b.historyRing = ringbuf.New(historyCapacity)

	b.lastWritten.Store(0)
	b.delay.Store(0)
	b.evicted.Store(0)
	b.migrated.Store(0)
}

func allocStore(channels, capacity int) [][]float32 {
	backing := make([]float32, channels*capacity)
	store := make([][]float32, channels)
	for ch := range store {
		store[ch] = backing[ch*capacity : (ch+1)*capacity : (ch+1)*capacity]
	}
	return store
}

// Channels returns the number of channels held.
func (b *ChannelBuffer) Channels() int { return b.channels }

// ShortTermCapacity returns the short-term store size in samples per channel.
func (b *ChannelBuffer) ShortTermCapacity() int { return b.shortRing.Capacity() }

// HistoryCapacity returns the history store size in samples per channel.
func (b *ChannelBuffer) HistoryCapacity() int { return b.historyRing.Capacity() }

// NumReady returns the number of short-term samples waiting for migration.
func (b *ChannelBuffer) NumReady() int { return b.shortRing.NumReady() }

// LastWrittenIndex returns the history slot just after the newest migrated
// sample.
func (b *ChannelBuffer) LastWrittenIndex() int { return int(b.lastWritten.Load()) }

// KnownProcessingDelay returns the current delay compensation in samples.
func (b *ChannelBuffer) KnownProcessingDelay() int { return int(b.delay.Load()) }

// SetKnownProcessingDelay updates the delay compensation applied to reads.
func (b *ChannelBuffer) SetKnownProcessingDelay(samples int) {
	b.delay.Store(int64(max(samples, 0)))
}

// Evicted returns how many short-term samples were dropped because the
// short-term store filled up before migration.
func (b *ChannelBuffer) Evicted() int64 { return b.evicted.Load() }

// Migrated returns the total number of samples moved into history.
func (b *ChannelBuffer) Migrated() int64 { return b.migrated.Load() }

// Primed reports whether the history store has been filled at least once.
func (b *ChannelBuffer) Primed() bool {
	return b.migrated.Load() >= int64(b.historyRing.Capacity())
}

// AppendBlock copies n samples per channel from samples into the short-term
// store. When the store lacks room, the oldest unread samples are evicted
// first. A block longer than the store keeps only its newest samples.
// Channels missing from samples are written as silence.
//
// AppendBlock does not allocate, lock or panic for any n >= 0.
func (b *ChannelBuffer) AppendBlock(samples [][]float32, n int) {
	if n <= 0 {
		return
	}
	capacity := b.shortRing.Capacity()
	offset := 0
	if n > capacity {
		offset = n - capacity
		n = capacity
	}

	b.evicted.Add(int64(b.shortRing.MakeRoom(n)))
	reg := b.shortRing.PrepareToWrite(n)
	for ch := range b.channels {
		dst := ringbuf.Span{Data: b.shortTerm[ch], Start: reg.Start1}
		if ch < len(samples) && len(samples[ch]) >= offset+n {
			ringbuf.CircularCopy(dst, ringbuf.Linear(samples[ch][offset:offset+n]), n)
		} else {
			ringbuf.Fill(dst, n, 0)
		}
	}
	b.shortRing.FinishedWrite(reg.Total())
}

// MigrateReadyToHistory moves every unread short-term sample into the
// history store, evicting the oldest history first, and publishes the new
// last-written index. It returns the number of samples moved.
func (b *ChannelBuffer) MigrateReadyToHistory() int {
	ready := b.shortRing.NumReady()
	if ready == 0 {
		return 0
	}

	historyCapacity := b.historyRing.Capacity()
	if ready > historyCapacity {
		// Only the newest history-capacity samples can survive the move.
		b.shortRing.FinishedRead(ready - historyCapacity)
		ready = historyCapacity
	}

	b.historyRing.MakeRoom(ready)
	src := b.shortRing.PrepareToRead(ready)
	dst := b.historyRing.PrepareToWrite(ready)
	for ch := range b.channels {
		ringbuf.CircularCopy(
			ringbuf.Span{Data: b.history[ch], Start: dst.Start1},
			ringbuf.Span{Data: b.shortTerm[ch], Start: src.Start1},
			ready,
		)
	}

	b.historyRing.FinishedWrite(ready)
	b.shortRing.FinishedRead(ready)
	b.migrated.Add(int64(ready))
	b.lastWritten.Store(int64(ringbuf.Wrap(dst.Start1+ready, historyCapacity)))
	return ready
}

// windowStart returns the history slot where an n-sample window ending
// lookback samples before the newest delay-compensated sample begins.
func (b *ChannelBuffer) windowStart(n, lookback int) int {
	last := b.lastWritten.Load()
	delay := b.delay.Load()
	capacity := b.historyRing.Capacity()
	start := (last - delay - int64(lookback) - int64(n)) % int64(capacity)
	return ringbuf.Wrap(int(start), capacity)
}

func (b *ChannelBuffer) checkWindow(n, lookback int) {
	if n < 0 || lookback < 0 {
		panic(fmt.Sprintf("history: negative window (n=%d, lookback=%d)", n, lookback))
	}
	if n > b.historyRing.Capacity() {
		panic(fmt.Sprintf("history: window of %d samples exceeds history capacity %d",
			n, b.historyRing.Capacity()))
	}
}

// CopyFromHistory copies n samples per channel into dst. The window ends
// lookback samples before the newest migrated sample, shifted further back
// by the known processing delay. Only min(len(dst), Channels()) channels are
// written and each dst channel must hold at least n samples.
//
// n larger than the history capacity is a contract violation and panics.
func (b *ChannelBuffer) CopyFromHistory(dst [][]float32, n, lookback int) {
	b.checkWindow(n, lookback)
	if n == 0 {
		return
	}
	start := b.windowStart(n, lookback)
	for ch := range min(len(dst), b.channels) {
		if len(dst[ch]) < n {
			panic(fmt.Sprintf("history: destination channel %d holds %d samples, need %d", ch, len(dst[ch]), n))
		}
		ringbuf.CircularCopy(ringbuf.Linear(dst[ch][:n]), ringbuf.Span{Data: b.history[ch], Start: start}, n)
	}
}

// RMS returns the root-mean-square of an n-sample history window for one
// channel, or for the sum of all channels when channel is MonoMix. The sum
// of squares is taken directly over the (at most two) history segments, so
// no scratch buffer is needed.
func (b *ChannelBuffer) RMS(lookback, n, channel int) float32 {
	b.checkWindow(n, lookback)
	if n == 0 {
		return 0
	}
	if channel != MonoMix && (channel < 0 || channel >= b.channels) {
		panic(fmt.Sprintf("history: channel %d out of range [0, %d)", channel, b.channels))
	}

	reg := ringbuf.Split(b.historyRing.Capacity(), b.windowStart(n, lookback), n)
	ops := simdops.Float32Ops()

	var sum float64
	for _, seg := range [2][2]int{{reg.Start1, reg.Size1}, {reg.Start2, reg.Size2}} {
		lo, hi := seg[0], seg[0]+seg[1]
		if seg[1] == 0 {
			continue
		}
		if channel != MonoMix {
			x := b.history[channel][lo:hi]
			sum += float64(ops.DotProductUnsafe(x, x))
			continue
		}
		// (sum_c x_c)^2 expands into the pairwise dot products.
		for c := range b.channels {
			xc := b.history[c][lo:hi]
			sum += float64(ops.DotProductUnsafe(xc, xc))
			for d := c + 1; d < b.channels; d++ {
				sum += 2 * float64(ops.DotProductUnsafe(xc, b.history[d][lo:hi]))
			}
		}
	}

	rms := math.Sqrt(max(sum, 0) / float64(n))
	if math.IsNaN(rms) || math.IsInf(rms, 0) {
		return 0
	}
	return float32(rms)
}

// Peak returns the largest absolute sample of an n-sample history window for
// one channel, or of the channel sum when channel is MonoMix.
func (b *ChannelBuffer) Peak(lookback, n, channel int) float32 {
	b.checkWindow(n, lookback)
	if channel != MonoMix && (channel < 0 || channel >= b.channels) {
		panic(fmt.Sprintf("history: channel %d out of range [0, %d)", channel, b.channels))
	}

	reg := ringbuf.Split(b.historyRing.Capacity(), b.windowStart(n, lookback), n)
	var peak float32
	for _, seg := range [2][2]int{{reg.Start1, reg.Size1}, {reg.Start2, reg.Size2}} {
		for i := seg[0]; i < seg[0]+seg[1]; i++ {
			var v float32
			if channel == MonoMix {
				for c := range b.channels {
					v += b.history[c][i]
				}
			} else {
				v = b.history[channel][i]
			}
			if v < 0 {
				v = -v
			}
			peak = max(peak, v)
		}
	}
	return peak
}
