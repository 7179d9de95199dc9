package analyzer

// NewMono creates a single-channel analyzer with default sizing.
func NewMono(sampleRate float64) (*Analyzer, error) {
	config := DefaultConfig(sampleRate, monoChannels)
	return New(&config)
}

// NewStereo creates a stereo analyzer with default sizing.
func NewStereo(sampleRate float64) (*Analyzer, error) {
	config := DefaultConfig(sampleRate, stereoChannels)
	return New(&config)
}

// InterleaveToStereo converts two mono channels to interleaved stereo.
// Output format: [L0, R0, L1, R1, L2, R2, ...]
func InterleaveToStereo(left, right []float32) []float32 {
	minLen := min(len(left), len(right))
	result := make([]float32, minLen*stereoChannels)
	for i := range minLen {
		result[i*stereoChannels] = left[i]
		result[i*stereoChannels+1] = right[i]
	}
	return result
}

// Deinterleave splits interleaved frames into per-channel slices. dst is
// reused when it already has the right shape; a trailing partial frame is
// ignored.
func Deinterleave(dst [][]float32, interleaved []float32, channels int) [][]float32 {
	if channels < 1 {
		return nil
	}
	frames := len(interleaved) / channels
	if len(dst) != channels {
		dst = make([][]float32, channels)
	}
	for ch := range dst {
		if cap(dst[ch]) < frames {
			dst[ch] = make([]float32, frames)
		}
		dst[ch] = dst[ch][:frames]
	}
	for i := range frames {
		frame := interleaved[i*channels : (i+1)*channels]
		for ch, v := range frame {
			dst[ch][i] = v
		}
	}
	return dst
}
