package pipeline

import (
	"fmt"

	"github.com/tphakala/go-audio-analyzer/internal/mathutil"
	"github.com/tphakala/go-audio-analyzer/internal/simdops"
)

// Stage is one processor hosted in a chain slot. Process works in place on
// n samples per channel and must not allocate.
type Stage interface {
	// Process transforms the first n samples of every channel in place.
	Process(block [][]float32, n int)

	// Reset clears internal state.
	Reset()

	// GetLatency returns the stage latency in samples.
	GetLatency() int

	// Name returns a short description for display.
	Name() string
}

// StageType identifies the kind of simulated processor.
type StageType int

const (
	// StageGain scales the signal by a fixed dB amount.
	StageGain StageType = iota

	// StageDelay delays the signal and reports the delay as latency, like a
	// look-ahead processor.
	StageDelay

	// StageInvert flips the polarity of one channel or all channels.
	StageInvert
)

// String returns the stage type name.
func (t StageType) String() string {
	if name, ok := stageNames[t]; ok {
		return name
	}
	return fmt.Sprintf("StageType(%d)", int(t))
}

// StageSpec specifies parameters for creating a stage.
type StageSpec struct {
	Type         StageType
	GainDB       float64 // StageGain
	DelaySamples int     // StageDelay
	Channel      int     // StageInvert; -1 inverts every channel
}

// Validate checks the parameters used by s.Type.
func (s StageSpec) Validate() error {
	switch s.Type {
	case StageGain:
		if s.GainDB < -maxGainDB || s.GainDB > maxGainDB {
			return fmt.Errorf("%w: gain %.1f dB outside ±%.0f dB", ErrInvalidStage, s.GainDB, maxGainDB)
		}
	case StageDelay:
		if s.DelaySamples < 0 || s.DelaySamples > maxDelaySamples {
			return fmt.Errorf("%w: delay %d outside [0, %d]", ErrInvalidStage, s.DelaySamples, maxDelaySamples)
		}
	case StageInvert:
		if s.Channel < allChannels {
			return fmt.Errorf("%w: invert channel %d", ErrInvalidStage, s.Channel)
		}
	default:
		return fmt.Errorf("%w: unknown type %d", ErrInvalidStage, int(s.Type))
	}
	return nil
}

// NewStage creates a stage for channels channels.
func NewStage(spec StageSpec, channels int) (Stage, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	switch spec.Type {
	case StageGain:
		return &scaleStage{
			channel: allChannels,
			factor:  float32(mathutil.DBToGain(spec.GainDB)),
			name:    fmt.Sprintf("gain %+.1f dB", spec.GainDB),
		}, nil
	case StageInvert:
		name := "invert"
		if spec.Channel != allChannels {
			name = fmt.Sprintf("invert ch%d", spec.Channel)
		}
		return &scaleStage{channel: spec.Channel, factor: polarityFlip, name: name}, nil
	default:
		return newDelayStage(spec.DelaySamples, channels), nil
	}
}

// scaleStage multiplies one channel, or all of them, by a constant.
type scaleStage struct {
	channel int
	factor  float32
	name    string
}

func (s *scaleStage) Process(block [][]float32, n int) {
	scale := simdops.Float32Ops().Scale
	for ch, x := range block {
		if s.channel == allChannels || s.channel == ch {
			scale(x[:n], x[:n], s.factor)
		}
	}
}

func (s *scaleStage) Reset()          {}
func (s *scaleStage) GetLatency() int { return 0 }
func (s *scaleStage) Name() string    { return s.name }

// delayStage is a per-channel circular delay line.
type delayStage struct {
	lines [][]float32
	pos   int
}

func newDelayStage(delay, channels int) *delayStage {
	lines := make([][]float32, max(channels, 1))
	for ch := range lines {
		lines[ch] = make([]float32, delay)
	}
	return &delayStage{lines: lines}
}

func (s *delayStage) Process(block [][]float32, n int) {
	d := s.GetLatency()
	if d == 0 {
		return
	}
	for ch := range min(len(block), len(s.lines)) {
		x, line := block[ch], s.lines[ch]
		p := s.pos
		for i := range n {
			x[i], line[p] = line[p], x[i]
			if p++; p == d {
				p = 0
			}
		}
	}
	s.pos = (s.pos + n) % d
}

func (s *delayStage) Reset() {
	for _, line := range s.lines {
		clear(line)
	}
	s.pos = 0
}

func (s *delayStage) GetLatency() int { return len(s.lines[0]) }
func (s *delayStage) Name() string    { return fmt.Sprintf("delay %d", s.GetLatency()) }
