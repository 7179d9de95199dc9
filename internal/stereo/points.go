package stereo

// Point is one vectorscope sample in rotated L/R coordinates.
type Point struct {
	X, Y float64
}

// Cloud is the set of points drawn for one refresh.
type Cloud []Point

// Project maps a stereo sample pair onto the vectorscope plane.
func Project(l, r float32) Point {
	return Point{
		X: rotCos*float64(l) - rotCos*float64(r),
		Y: rotSin*float64(l) + rotSin*float64(r),
	}
}

// projectMono places a mono sample on the diagonal, at twice the
// single-channel projection.
func projectMono(v float32) Point {
	return Point{X: 2 * rotCos * float64(v), Y: 2 * rotSin * float64(v)}
}

// PointHistory keeps the most recent clouds, newest first. The depth may be
// changed at any time; excess clouds are dropped on the next Push.
type PointHistory struct {
	depth  int
	clouds []Cloud
	spare  []Cloud
}

// NewPointHistory creates a history holding up to depth clouds.
func NewPointHistory(depth int) *PointHistory {
	return &PointHistory{depth: max(depth, 1)}
}

// SetDepth changes the number of clouds kept.
func (h *PointHistory) SetDepth(depth int) {
	h.depth = max(depth, 1)
}

// Depth returns the configured number of clouds kept.
func (h *PointHistory) Depth() int { return h.depth }

// Len returns the number of clouds currently held.
func (h *PointHistory) Len() int { return len(h.clouds) }

// Clouds returns the held clouds, newest first. The slice is only valid
// until the next Push.
func (h *PointHistory) Clouds() []Cloud { return h.clouds }

// Push projects the first n samples of block into a new cloud and puts it in
// front of the history.
func (h *PointHistory) Push(block [][]float32, n int) {
	for len(h.clouds) >= h.depth {
		last := len(h.clouds) - 1
		h.spare = append(h.spare, h.clouds[last][:0])
		h.clouds[last] = nil
		h.clouds = h.clouds[:last]
	}

	var cloud Cloud
	if k := len(h.spare); k > 0 {
		cloud = h.spare[k-1]
		h.spare = h.spare[:k-1]
	}
	if len(block) > 0 {
		for i := range n {
			if len(block) > 1 {
				cloud = append(cloud, Project(block[0][i], block[1][i]))
			} else {
				cloud = append(cloud, projectMono(block[0][i]))
			}
		}
	}

	h.clouds = append(h.clouds, nil)
	copy(h.clouds[1:], h.clouds)
	h.clouds[0] = cloud
}

// Reset drops every cloud.
func (h *PointHistory) Reset() {
	h.clouds = h.clouds[:0]
	h.spare = h.spare[:0]
}
