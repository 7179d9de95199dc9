package mathutil

// HoldPeak applies a decaying peak hold to one value.
//
// While the held value is above v, the held value is reported and then
// multiplied by decay. Otherwise v replaces the held value and is reported.
// The reported value therefore never drops below the instantaneous input.
func HoldPeak(held *float64, v, decay float64) float64 {
	if *held > v {
		shown := *held
		*held *= decay
		return shown
	}
	*held = v
	return v
}

// DecayingMax reports max(v, held) and stores that maximum scaled by decay
// as the next held value. Level meters use this form: the shown peak jumps
// up immediately and falls by a constant factor per refresh.
func DecayingMax(held *float64, v, decay float64) float64 {
	shown := max(v, *held)
	*held = shown * decay
	return shown
}
