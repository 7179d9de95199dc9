package stereo

// Source is the read side of a history buffer.
type Source interface {
	Channels() int
	Migrated() int64
	CopyFromHistory(dst [][]float32, n, lookback int)
}

// Reading is the stereo state of one side after a refresh.
type Reading struct {
	Correlation float64
	Clouds      []Cloud // newest first
}

// side holds the meters of one buffer and how far into it they have read.
type side struct {
	corr   *Correlation
	points *PointHistory
	seen   int64
}

// Engine runs correlation meters and point histories over the pre and post
// buffers. Each refresh consumes only the samples migrated since the
// previous refresh, up to maxBlock, so every sample enters the averages once.
type Engine struct {
	maxBlock int
	block    [][]float32
	pre      side
	post     side
}

// NewEngine creates an engine for the given sample rate and channel count.
func NewEngine(sampleRate float64, channels int) *Engine {
	maxBlock := max(int(sampleRate*DefaultBlockSeconds), 1)
	block := make([][]float32, max(channels, 1))
	for ch := range block {
		block[ch] = make([]float32, maxBlock)
	}
	window := sampleRate * WindowSeconds
	return &Engine{
		maxBlock: maxBlock,
		block:    block,
		pre:      side{corr: NewCorrelation(window), points: NewPointHistory(DefaultDepth)},
		post:     side{corr: NewCorrelation(window), points: NewPointHistory(DefaultDepth)},
	}
}

// MaxBlock returns the most samples one refresh reads from a buffer.
func (e *Engine) MaxBlock() int { return e.maxBlock }

// Process refreshes both sides and returns their readings. depth sets the
// number of clouds kept per side.
func (e *Engine) Process(pre, post Source, depth int) (Reading, Reading) {
	return e.refresh(&e.pre, pre, depth), e.refresh(&e.post, post, depth)
}

func (e *Engine) refresh(s *side, src Source, depth int) Reading {
	s.points.SetDepth(depth)

	migrated := src.Migrated()
	fresh := migrated - s.seen
	if fresh < 0 {
		// The buffer was reset underneath us.
		fresh = migrated
	}
	s.seen = migrated

	if n := int(min(fresh, int64(e.maxBlock))); n > 0 {
		block := e.block[:min(len(e.block), src.Channels())]
		src.CopyFromHistory(block, n, 0)
		s.corr.Process(block, n)
		s.points.Push(block, n)
	}

	return Reading{Correlation: s.corr.Value(), Clouds: s.points.Clouds()}
}

// Reset clears both sides.
func (e *Engine) Reset() {
	for _, s := range []*side{&e.pre, &e.post} {
		s.corr.Reset()
		s.points.Reset()
		s.seen = 0
	}
}
