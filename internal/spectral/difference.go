package spectral

import (
	"fmt"
	"math/cmplx"

	"github.com/tphakala/go-audio-analyzer/internal/mathutil"
)

// Mode selects how channels are combined before comparing pre and post.
type Mode int

const (
	// ModeMono compares the complex average of all channels.
	ModeMono Mode = iota + 1
	// ModeLeftRight compares left and right separately.
	ModeLeftRight
	// ModeMidSide compares mid (L+R)/2 and side (L-R)/2.
	ModeMidSide
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeMono:
		return "mono"
	case ModeLeftRight:
		return "left/right"
	case ModeMidSide:
		return "mid/side"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Curves reports whether the mode yields a second curve.
func (m Mode) Curves() int {
	if m == ModeLeftRight || m == ModeMidSide {
		return 2
	}
	return 1
}

// Kind selects what Difference measures.
type Kind int

const (
	// KindGain reports post/pre magnitude ratio in dB.
	KindGain Kind = iota
	// KindPhase reports the pre minus post phase angle, wrapped and divided
	// by 2π, in [-0.5, 0.5].
	KindPhase
)

// Difference compares the spectra of a pre and a post buffer bin by bin.
type Difference struct {
	kind Kind
	mode Mode // mode of the frames held in avg
	pre  *transformer
	post *transformer

	avg    [2]*RollingAverage
	curves [2][]float64
}

// NewDifference creates a difference engine of the given kind.
func NewDifference(kind Kind, size, channels int) (*Difference, error) {
	pre, err := newTransformer(size, channels)
	if err != nil {
		return nil, err
	}
	post, err := newTransformer(size, channels)
	if err != nil {
		return nil, err
	}

	initial := gainHistoryInit
	if kind == KindPhase {
		initial = phaseHistoryInit
	}
	bins := Bins(size)
	d := &Difference{kind: kind, pre: pre, post: post}
	for i := range d.avg {
		d.avg[i] = NewRollingAverage(bins, DefaultDepth, initial)
		d.curves[i] = make([]float64, bins)
	}
	return d, nil
}

// Size returns the FFT size.
func (d *Difference) Size() int { return d.pre.size }

// Kind returns what the engine measures.
func (d *Difference) Kind() Kind { return d.kind }

// Process compares the newest windows of pre and post. The second curve is
// nil in ModeMono. A depth or mode change clears the rolling history before
// the frame is added. Returned slices are reused by the next call.
func (d *Difference) Process(pre, post Source, mode Mode, depth int) (first, second []float64) {
	bins := Bins(d.pre.size)
	for _, a := range d.avg {
		if !a.Resize(bins, depth) && mode != d.mode {
			a.Clear()
		}
	}
	d.mode = mode

	d.pre.load(pre)
	d.post.load(post)

	for k := range bins {
		a, b := d.pair(d.pre, mode, k)
		c, e := d.pair(d.post, mode, k)
		d.curves[0][k] = d.measure(0, k, a, c)
		if mode.Curves() == 2 {
			d.curves[1][k] = d.measure(1, k, b, e)
		}
	}
	for _, a := range d.avg {
		a.Advance()
	}

	if mode.Curves() == 2 {
		return d.curves[0], d.curves[1]
	}
	return d.curves[0], nil
}

// pair returns the two complex values at bin k that the mode compares.
func (d *Difference) pair(t *transformer, mode Mode, k int) (complex128, complex128) {
	switch mode {
	case ModeLeftRight:
		return t.channel(0)[k], t.channel(1)[k]
	case ModeMidSide:
		l, r := t.channel(0)[k], t.channel(1)[k]
		return (l + r) / 2, (l - r) / 2
	default:
		return t.mono(k), 0
	}
}

func (d *Difference) measure(curve, k int, pre, post complex128) float64 {
	if d.kind == KindPhase {
		diff := mathutil.WrapPhase(cmplx.Phase(pre) - cmplx.Phase(post))
		return d.avg[curve].Push(k, diff)
	}
	gain := mathutil.Ratio(cmplx.Abs(post), cmplx.Abs(pre))
	return mathutil.GainToDB(d.avg[curve].Push(k, gain))
}
