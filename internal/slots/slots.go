// Package slots tracks the lifecycle of the six hosted processor slots of
// the chain between the pre and post taps.
//
// Each slot is a small state machine:
//
//	Empty ──Load──▶ Loading ──Loaded──▶ Active{bypassed}
//	                   │                   │   │
//	                 Fail               Remove Recreate
//	                   ▼                   ▼   ▼
//	                 Empty      PendingDelete  PendingRecreate ──Reload──▶ Loading
//	                                 │
//	                              Collect
//	                                 ▼
//	                               Empty
//
// Any other move returns ErrInvalidTransition. The audio graph routes the
// input node through every active, non-bypassed slot in index order and on
// to the output node.
package slots

import (
	"errors"
	"fmt"
	"sync"
)

// Graph node identifiers.
const (
	// NumSlots is the number of hosted processor slots.
	NumSlots = 6

	// InputNode and OutputNode are the fixed graph endpoints.
	InputNode  = 1
	OutputNode = 2

	nodeIDOffset = 3
)

var (
	// ErrInvalidTransition is returned when a slot is asked to move to a
	// state its current state cannot reach.
	ErrInvalidTransition = errors.New("slots: invalid transition")

	// ErrSlotIndex is returned for a slot index outside [0, NumSlots).
	ErrSlotIndex = errors.New("slots: slot index out of range")
)

// State is the lifecycle state of one slot.
type State int

const (
	Empty State = iota
	Loading
	Active
	PendingDelete
	PendingRecreate
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Loading:
		return "loading"
	case Active:
		return "active"
	case PendingDelete:
		return "pending-delete"
	case PendingRecreate:
		return "pending-recreate"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Slot is the observable state of one slot. Bypassed and Latency are only
// meaningful while the slot is Active.
type Slot struct {
	State    State
	Bypassed bool
	Name     string
	Latency  int
}

// Processing reports whether audio flows through the slot.
func (s Slot) Processing() bool {
	return s.State == Active && !s.Bypassed
}

// NodeID returns the graph node identifier of slot i.
func NodeID(i int) int { return i + nodeIDOffset }

// Chain holds the six slots. All methods are safe for concurrent use; none
// of them are meant for the audio goroutine.
type Chain struct {
	mu    sync.Mutex
	slots [NumSlots]Slot
}

// NewChain returns a chain with every slot empty.
func NewChain() *Chain {
	return &Chain{}
}

func checkIndex(i int) error {
	if i < 0 || i >= NumSlots {
		return fmt.Errorf("%w: %d", ErrSlotIndex, i)
	}
	return nil
}

// transition moves slot i from one of the allowed states by applying fn.
func (c *Chain) transition(i int, op string, fn func(*Slot), allowed ...State) error {
	if err := checkIndex(i); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	s := &c.slots[i]
	for _, st := range allowed {
		if s.State == st {
			fn(s)
			return nil
		}
	}
	return fmt.Errorf("%w: %s slot %d in state %s", ErrInvalidTransition, op, i, s.State)
}

// Load starts loading the named processor into an empty slot.
func (c *Chain) Load(i int, name string) error {
	return c.transition(i, "load", func(s *Slot) {
		*s = Slot{State: Loading, Name: name}
	}, Empty)
}

// Loaded marks a loading slot as active and unbypassed with the latency
// reported by the processor.
func (c *Chain) Loaded(i, latency int) error {
	return c.transition(i, "finish loading", func(s *Slot) {
		s.State = Active
		s.Bypassed = false
		s.Latency = max(latency, 0)
	}, Loading)
}

// Fail abandons a load and empties the slot.
func (c *Chain) Fail(i int) error {
	return c.transition(i, "fail", func(s *Slot) { *s = Slot{} }, Loading)
}

// SetBypass toggles the bypass flag of an active slot.
func (c *Chain) SetBypass(i int, bypassed bool) error {
	return c.transition(i, "bypass", func(s *Slot) { s.Bypassed = bypassed }, Active)
}

// SetLatency updates the latency an active processor reports.
func (c *Chain) SetLatency(i, latency int) error {
	return c.transition(i, "set latency of", func(s *Slot) { s.Latency = max(latency, 0) }, Active)
}

// Remove schedules an active slot for deletion.
func (c *Chain) Remove(i int) error {
	return c.transition(i, "remove", func(s *Slot) { s.State = PendingDelete }, Active)
}

// Recreate schedules an active slot to be torn down and loaded again.
func (c *Chain) Recreate(i int) error {
	return c.transition(i, "recreate", func(s *Slot) { s.State = PendingRecreate }, Active)
}

// Reload starts loading a slot that was scheduled for recreation. The
// processor name is kept.
func (c *Chain) Reload(i int) error {
	return c.transition(i, "reload", func(s *Slot) {
		*s = Slot{State: Loading, Name: s.Name}
	}, PendingRecreate)
}

// Collect empties every slot pending deletion and returns their indices.
func (c *Chain) Collect() []int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var freed []int
	for i := range c.slots {
		if c.slots[i].State == PendingDelete {
			c.slots[i] = Slot{}
			freed = append(freed, i)
		}
	}
	return freed
}

// Slot returns a copy of slot i.
func (c *Chain) Slot(i int) (Slot, error) {
	if err := checkIndex(i); err != nil {
		return Slot{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slots[i], nil
}

// Slots returns a copy of every slot.
func (c *Chain) Slots() [NumSlots]Slot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slots
}

// Processing returns the indices of active, non-bypassed slots in order.
func (c *Chain) Processing() []int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var idx []int
	for i, s := range c.slots {
		if s.Processing() {
			idx = append(idx, i)
		}
	}
	return idx
}

// Route returns the graph node path from input to output.
func (c *Chain) Route() []int {
	active := c.Processing()
	route := make([]int, 0, len(active)+2)
	route = append(route, InputNode)
	for _, i := range active {
		route = append(route, NodeID(i))
	}
	return append(route, OutputNode)
}

// TotalLatency sums the latency of active, non-bypassed slots.
func (c *Chain) TotalLatency() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, s := range c.slots {
		if s.Processing() {
			total += s.Latency
		}
	}
	return total
}
