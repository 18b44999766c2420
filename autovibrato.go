package modplayer

// autoVibratoState is the instrument-level vibrato XM instruments can carry
// independent of the per-channel vibrato effect. It sweeps its depth in
// linearly over AutoVibrato.Sweep frames, then oscillates at a fixed
// speed/depth until the note is cut.
//
// Grounded directly on original_source/src/state_auto_vibrato.rs.
type autoVibratoState struct {
	vibrato  *AutoVibrato
	rng      *prng
	phase    float32
	modDepth float32
}

func newAutoVibratoState(v *AutoVibrato) *autoVibratoState {
	return &autoVibratoState{vibrato: v, rng: newPRNG(0xc0ffee)}
}

func (a *autoVibratoState) reset() {
	a.phase = 0
	a.modDepth = 0
}

// tick advances the sweep-in ramp and oscillator by one tick and returns a
// period delta to add to the channel's current period.
func (a *autoVibratoState) tick() float32 {
	v := a.vibrato
	if v == nil || v.Depth == 0 {
		return 0
	}
	if v.Sweep > 0 && a.modDepth < v.Depth {
		a.modDepth += v.Depth / v.Sweep
		if a.modDepth > v.Depth {
			a.modDepth = v.Depth
		}
	} else if v.Sweep <= 0 {
		a.modDepth = v.Depth
	}

	shape := waveformValue(v.Waveform, a.phase, a.rng)
	a.phase += v.Speed / 256.0
	for a.phase >= 1 {
		a.phase -= 1
	}

	// The delta is divided by 4 in both frequency modes: this state does
	// not know the song's FrequencyType.
	return shape * a.modDepth / 4.0
}
