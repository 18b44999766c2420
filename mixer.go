package modplayer

// mixer sums every channel's per-tick output frame into a stereo pair and
// applies the player's master amplification, clamping to [-1,1].
//
// Grounded on the teacher's mixer.go/mixer_scalar.go separation of "mix
// channels into a buffer" from the sequencer loop; this engine's channels
// already yield float32 in [-1,1] (see channel.go), so unlike the teacher's
// int16 pipeline there is no headroom shift to apply, only the clamp.
type mixer struct {
	amplification float32
}

func newMixer() *mixer {
	return &mixer{amplification: 1}
}

func (m *mixer) mix(channels []*channel) (float32, float32) {
	var left, right float32
	for _, c := range channels {
		l, r := c.render()
		left += l
		right += r
	}
	left *= m.amplification
	right *= m.amplification
	return clampAudio(left), clampAudio(right)
}

func clampAudio(v float32) float32 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
