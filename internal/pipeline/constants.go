package pipeline

// Stage parameter limits
const (
	// maxDelaySamples bounds a delay stage at ten seconds of 48 kHz audio.
	maxDelaySamples = 480000

	// maxGainDB bounds a gain stage in either direction.
	maxGainDB = 60.0

	// allChannels applies a stage to every channel.
	allChannels = -1

	// polarityFlip is the scale factor of an invert stage.
	polarityFlip = -1
)

// stageNames maps stage types to their display names.
var stageNames = map[StageType]string{
	StageGain:   "gain",
	StageDelay:  "delay",
	StageInvert: "invert",
}
