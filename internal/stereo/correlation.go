// Package stereo measures the relationship between the two channels of a
// buffer: a running correlation coefficient and a Lissajous point cloud
// history for the vectorscope.
package stereo

import (
	"math"

	"github.com/tphakala/go-audio-analyzer/internal/mathutil"
)

// Correlation tracks exponential moving averages of both channel energies
// and their cross product and derives the correlation coefficient
// cross / sqrt(energyL * energyR), in [-1, 1].
type Correlation struct {
	window float64

	cross   float64
	energyL float64
	energyR float64
	value   float64
}

// NewCorrelation creates a meter whose averages have a time constant of
// window samples.
func NewCorrelation(window float64) *Correlation {
	return &Correlation{window: max(window, minWindowSamples)}
}

// Window returns the averaging time constant in samples.
func (c *Correlation) Window() float64 { return c.window }

// Process folds the first n samples of block into the averages and returns
// the updated coefficient. A single-channel block is treated as L == R.
func (c *Correlation) Process(block [][]float32, n int) float64 {
	if len(block) == 0 || n <= 0 {
		return c.value
	}
	left := block[0][:n]
	right := left
	if len(block) > 1 {
		right = block[1][:n]
	}

	w := c.window
	for i := range n {
		l, r := float64(left[i]), float64(right[i])
		c.cross = l*r + c.cross - c.cross/w
		c.energyL = l*l + c.energyL - c.energyL/w
		c.energyR = r*r + c.energyR - c.energyR/w
	}

	v := mathutil.Finite(c.cross / math.Sqrt(c.energyL*c.energyR))
	c.value = min(max(v, -1), 1)
	return c.value
}

// Value returns the last computed coefficient.
func (c *Correlation) Value() float64 { return c.value }

// Reset clears the averages.
func (c *Correlation) Reset() {
	c.cross, c.energyL, c.energyR, c.value = 0, 0, 0, 0
}
