package modplayer

import "math"

// waveformValue evaluates one of the four oscillator shapes shared by
// vibrato, tremolo and panbrello at a given phase in [0,1), returning a
// value in [-1,1].
func waveformValue(w Waveform, phase float32, rng *prng) float32 {
	switch w {
	case WaveSine:
		return float32(math.Sin(float64(phase) * 2 * math.Pi))
	case WaveRampDown:
		// 1 at phase=0, sloping linearly down to -1 at phase=1.
		return 1 - 2*phase
	case WaveSquare:
		if phase < 0.5 {
			return 1
		}
		return -1
	case WaveRandom:
		return rng.next()
	default:
		return 0
	}
}

// prng is a tiny deterministic xorshift generator used for the random
// waveform so tests can seed it instead of depending on math/rand's global
// state.
type prng struct {
	state uint32
}

func newPRNG(seed uint32) *prng {
	if seed == 0 {
		seed = 0x9e3779b9
	}
	return &prng{state: seed}
}

func (p *prng) next() float32 {
	x := p.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	p.state = x
	// map to [-1,1]
	return float32(x)/float32(math.MaxUint32)*2 - 1
}
