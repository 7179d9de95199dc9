package stereo

import "math"

const (
	// WindowSeconds is the time constant of the correlation averages.
	WindowSeconds = 0.8

	// DefaultDepth is the number of point clouds kept for the fading trail.
	DefaultDepth = 20

	// DefaultBlockSeconds bounds how many new samples one refresh consumes.
	DefaultBlockSeconds = 0.1

	minWindowSamples = 1.0
)

// Lissajous rotation: the L axis points up-right and the R axis up-left.
var (
	rotCos = math.Cos(math.Pi / 4)
	rotSin = math.Sin(math.Pi / 4)
)
