// Package pipeline implements the simulated processing chain hosted between
// the pre and post taps. Six slots hold stages; the slot lifecycle is driven
// by slots.Chain and the audio path runs every active, non-bypassed stage in
// slot order.
package pipeline

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tphakala/go-audio-analyzer/internal/slots"
)

// ErrInvalidStage is returned for stage parameters out of range.
var ErrInvalidStage = errors.New("pipeline: invalid stage")

// Pipeline is a chain of up to slots.NumSlots stages.
//
// Configuration methods rebuild an immutable route and publish it
// atomically, so Process and GetTotalLatency never lock.
type Pipeline struct {
	mu       sync.Mutex
	channels int
	chain    *slots.Chain
	stages   [slots.NumSlots]Stage

	route atomic.Pointer[route]
}

// route is the published processing order and its summed latency.
type route struct {
	stages  []Stage
	latency int
}

// New creates an empty pipeline for channels channels.
func New(channels int) *Pipeline {
	p := &Pipeline{channels: max(channels, 1), chain: slots.NewChain()}
	p.rebuild()
	return p
}

// Chain returns the slot state machine behind the pipeline.
func (p *Pipeline) Chain() *slots.Chain { return p.chain }

// rebuild publishes the stages of active, non-bypassed slots. Callers hold mu.
func (p *Pipeline) rebuild() {
	idx := p.chain.Processing()
	r := &route{stages: make([]Stage, 0, len(idx))}
	for _, i := range idx {
		if s := p.stages[i]; s != nil {
			r.stages = append(r.stages, s)
			r.latency += s.GetLatency()
		}
	}
	p.route.Store(r)
}

// load runs the Loading half of the lifecycle for slot i.
func (p *Pipeline) load(i int, spec StageSpec) error {
	stage, err := NewStage(spec, p.channels)
	if err != nil {
		if ferr := p.chain.Fail(i); ferr != nil {
			return errors.Join(err, ferr)
		}
		return err
	}
	if err := p.chain.Loaded(i, stage.GetLatency()); err != nil {
		return err
	}
	p.stages[i] = stage
	return nil
}

// Insert loads a new stage into empty slot i.
func (p *Pipeline) Insert(i int, spec StageSpec) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.chain.Load(i, spec.Type.String()); err != nil {
		return err
	}
	if err := p.load(i, spec); err != nil {
		return fmt.Errorf("slot %d: %w", i, err)
	}
	p.rebuild()
	return nil
}

// Replace recreates the stage in active slot i from a new spec. The old
// stage stops processing as soon as the slot leaves Active.
func (p *Pipeline) Replace(i int, spec StageSpec) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.chain.Recreate(i); err != nil {
		return err
	}
	p.rebuild()
	p.stages[i] = nil
	if err := p.chain.Reload(i); err != nil {
		return err
	}
	err := p.load(i, spec)
	p.rebuild()
	if err != nil {
		return fmt.Errorf("slot %d: %w", i, err)
	}
	return nil
}

// SetBypass bypasses or re-enables active slot i.
func (p *Pipeline) SetBypass(i int, bypassed bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.chain.SetBypass(i, bypassed); err != nil {
		return err
	}
	p.rebuild()
	return nil
}

// Remove deletes the stage in active slot i.
func (p *Pipeline) Remove(i int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.chain.Remove(i); err != nil {
		return err
	}
	p.rebuild()
	for _, freed := range p.chain.Collect() {
		p.stages[freed] = nil
	}
	return nil
}

// Process runs the first n samples of block through the routed stages in
// place.
func (p *Pipeline) Process(block [][]float32, n int) {
	for _, s := range p.route.Load().stages {
		s.Process(block, n)
	}
}

// GetTotalLatency returns the summed latency of the routed stages. It is
// safe to call from the audio goroutine.
func (p *Pipeline) GetTotalLatency() int {
	return p.route.Load().latency
}

// Describe returns the names of the routed stages in order.
func (p *Pipeline) Describe() []string {
	stages := p.route.Load().stages
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.Name()
	}
	return names
}

// Reset clears the state of every loaded stage.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, s := range p.stages {
		if s != nil {
			s.Reset()
		}
	}
}
