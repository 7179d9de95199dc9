package history

import (
	"sync"
	"sync/atomic"
)

// Side selects the pre-chain or post-chain buffer.
type Side int

const (
	// Pre is the signal before the hosted processing chain.
	Pre Side = iota
	// Post is the signal after the hosted processing chain.
	Post
)

// String returns "pre" or "post".
func (s Side) String() string {
	if s == Post {
		return "post"
	}
	return "pre"
}

// DualBufferManager owns the pre and post channel buffers and migrates
// them into history in lockstep.
//
// WriteBlock and MigrateToHistory are audio-goroutine calls and never take
// the mutex. The mutex only serialises Reset against other configuration
// changes.
type DualBufferManager struct {
	mu sync.Mutex

	pre  *ChannelBuffer
	post *ChannelBuffer

	skipped atomic.Int64 // migrations skipped because pre/post were out of step
}

// NewDualBufferManager creates matching pre and post buffers.
func NewDualBufferManager(channels, shortTermCapacity, historyCapacity int) *DualBufferManager {
	return &DualBufferManager{
		pre:  NewChannelBuffer(channels, shortTermCapacity, historyCapacity),
		post: NewChannelBuffer(channels, shortTermCapacity, historyCapacity),
	}
}

// Pre returns the buffer holding the signal before the chain.
func (m *DualBufferManager) Pre() *ChannelBuffer { return m.pre }

// Post returns the buffer holding the signal after the chain.
func (m *DualBufferManager) Post() *ChannelBuffer { return m.post }

// Buffer returns the buffer for side.
func (m *DualBufferManager) Buffer(side Side) *ChannelBuffer {
	if side == Post {
		return m.post
	}
	return m.pre
}

// WriteBlock appends n samples per channel to the short-term store of side.
func (m *DualBufferManager) WriteBlock(side Side, samples [][]float32, n int) {
	m.Buffer(side).AppendBlock(samples, n)
}

// MigrateToHistory moves the ready short-term samples of both sides into
// history. When the two sides hold different ready counts the whole cycle
// is skipped so pre and post history stay sample-aligned; the skip is
// counted and both last-written indices stay where they were.
//
// It reports whether a migration took place.
func (m *DualBufferManager) MigrateToHistory() bool {
	if m.pre.NumReady() != m.post.NumReady() {
		m.skipped.Add(1)
		return false
	}
	if m.pre.NumReady() == 0 {
		return false
	}
	m.pre.MigrateReadyToHistory()
	m.post.MigrateReadyToHistory()
	return true
}

// SkippedMigrations returns the number of cycles skipped due to desync.
func (m *DualBufferManager) SkippedMigrations() int64 {
	return m.skipped.Load()
}

// Reset reconfigures both buffers identically. Audio must be stopped.
func (m *DualBufferManager) Reset(channels, shortTermCapacity, historyCapacity int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pre.Reset(channels, shortTermCapacity, historyCapacity)
	m.post.Reset(channels, shortTermCapacity, historyCapacity)
	m.skipped.Store(0)
}
