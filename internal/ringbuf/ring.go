// Package ringbuf provides the fixed-capacity index allocator and the circular
// copy primitive shared by the short-term and history sample stores.
//
// A RingBuffer never touches sample data. It only hands out up to two
// contiguous regions of a backing store owned by the caller, so a single
// RingBuffer can drive any number of per-channel slices of the same length.
//
// Cursors are kept as monotonically increasing totals in atomics. The write
// total is only advanced by the producer and the read total only by the
// consumer, except for the explicit eviction step (MakeRoom) which the
// producer performs before writing into a full ring.
package ringbuf

import (
	"sync/atomic"
)

// minCapacity is the smallest capacity a ring is created with.
const minCapacity = 1

// Regions describes at most two contiguous index ranges of a circular store.
// Size2 is non-zero only when the range wraps past the end of the store.
type Regions struct {
	Start1, Size1 int
	Start2, Size2 int
}

// Total returns the number of samples covered by both regions.
func (r Regions) Total() int {
	return r.Size1 + r.Size2
}

// Split returns the regions covering n samples of a circular store of the
// given capacity, beginning at start (which may be negative or past the end).
func Split(capacity, start, n int) Regions {
	if n <= 0 || capacity <= 0 {
		return Regions{}
	}
	if n > capacity {
		n = capacity
	}
	start = Wrap(start, capacity)
	first := min(n, capacity-start)
	return Regions{
		Start1: start,
		Size1:  first,
		Start2: 0,
		Size2:  n - first,
	}
}

// Wrap maps any index onto [0, capacity).
func Wrap(i, capacity int) int {
	i %= capacity
	if i < 0 {
		i += capacity
	}
	return i
}

// RingBuffer is a lock-free single-producer/single-consumer index allocator.
type RingBuffer struct {
	capacity int

	written atomic.Int64 // total samples committed by FinishedWrite
	read    atomic.Int64 // total samples released by FinishedRead
}

// New creates a ring with the given capacity. Capacities below one are
// raised to one.
func New(capacity int) *RingBuffer {
	if capacity < minCapacity {
		capacity = minCapacity
	}
	return &RingBuffer{capacity: capacity}
}

// Capacity returns the fixed number of slots in the ring.
func (r *RingBuffer) Capacity() int {
	return r.capacity
}

// NumReady returns the number of committed samples not yet read.
func (r *RingBuffer) NumReady() int {
	rd := r.read.Load()
	return int(r.written.Load() - rd)
}

// FreeSpace returns the number of samples that can be written without eviction.
func (r *RingBuffer) FreeSpace() int {
	return r.capacity - r.NumReady()
}

// WriteCursor returns the slot index the next write starts at.
func (r *RingBuffer) WriteCursor() int {
	return int(r.written.Load() % int64(r.capacity))
}

// ReadCursor returns the slot index of the oldest unread sample.
func (r *RingBuffer) ReadCursor() int {
	return int(r.read.Load() % int64(r.capacity))
}

// PrepareToWrite reserves up to min(n, capacity) slots starting at the
// write cursor. Nothing changes until FinishedWrite is called. Callers that
// must not overwrite unread data call MakeRoom first.
func (r *RingBuffer) PrepareToWrite(n int) Regions {
	if n < 0 {
		panic("ringbuf: negative write size")
	}
	return Split(r.capacity, r.WriteCursor(), n)
}

// FinishedWrite commits n written samples. If the commit leaves more unread
// samples than the ring holds, the oldest are released so that NumReady
// never exceeds the capacity.
func (r *RingBuffer) FinishedWrite(n int) {
	if n < 0 {
		panic("ringbuf: negative write size")
	}
	n = min(n, r.capacity)
	w := r.written.Add(int64(n))
	for {
		rd := r.read.Load()
		if w-rd <= int64(r.capacity) {
			return
		}
		if r.read.CompareAndSwap(rd, w-int64(r.capacity)) {
			return
		}
	}
}

// PrepareToRead returns the regions holding up to min(n, NumReady()) of the
// oldest unread samples.
func (r *RingBuffer) PrepareToRead(n int) Regions {
	if n < 0 {
		panic("ringbuf: negative read size")
	}
	return Split(r.capacity, r.ReadCursor(), min(n, r.NumReady()))
}

// FinishedRead releases up to n of the oldest unread samples and returns how
// many were actually released.
func (r *RingBuffer) FinishedRead(n int) int {
	if n < 0 {
		panic("ringbuf: negative read size")
	}
	for {
		rd := r.read.Load()
		k := min(int64(n), r.written.Load()-rd)
		if k <= 0 {
			return 0
		}
		if r.read.CompareAndSwap(rd, rd+k) {
			return int(k)
		}
	}
}

// MakeRoom evicts the oldest unread samples until n samples fit (or the ring
// is empty) and returns the number of samples evicted.
func (r *RingBuffer) MakeRoom(n int) int {
	shortfall := n - r.FreeSpace()
	if shortfall <= 0 {
		return 0
	}
	return r.FinishedRead(shortfall)
}

// Reset zeroes both cursors. It must not race with reads or writes.
func (r *RingBuffer) Reset() {
	r.read.Store(0)
	r.written.Store(0)
}
