package modplayer

// envelopeState walks a piecewise-linear Envelope one frame at a time,
// handling the sustain-then-loop counter clamping XM instruments need.
//
// Grounded directly on original_source/src/state_envelope.rs.
type envelopeState struct {
	env          *Envelope
	defaultValue float32
	value        float32
	counter      int
	positionSet  bool
}

func newEnvelopeState(env *Envelope, defaultValue float32) *envelopeState {
	return &envelopeState{env: env, defaultValue: defaultValue, value: defaultValue}
}

func (e *envelopeState) reset() {
	e.counter = 0
	e.value = e.defaultValue
	e.positionSet = false
}

// setPosition forces the envelope's frame counter, used by the "set
// envelope position" effect.
func (e *envelopeState) setPosition(frame int) {
	e.counter = frame
	e.positionSet = true
}

// tick advances the envelope by one frame and returns its current value.
// sustained indicates the channel's key is still held. While held and a
// sustain point is defined, the counter is clamped to the sustain point;
// otherwise, if a loop is defined, a counter past the loop end wraps back
// into the loop region.
func (e *envelopeState) tick(sustained bool) float32 {
	if e.env == nil || !e.env.Enabled || len(e.env.Points) == 0 {
		return e.defaultValue
	}
	pts := e.env.Points
	if len(pts) == 1 {
		e.value = pts[0].Value
		return e.value
	}

	if !e.positionSet {
		if sustained && e.env.SustainIdx >= 0 && e.env.SustainIdx < len(pts) {
			sustainFrame := pts[e.env.SustainIdx].Frame
			if e.counter >= sustainFrame {
				e.counter = sustainFrame
			}
		} else if e.env.LoopStart >= 0 && e.env.LoopEnd >= 0 && e.env.LoopEnd < len(pts) {
			loopStartFrame := pts[e.env.LoopStart].Frame
			loopEndFrame := pts[e.env.LoopEnd].Frame
			if loopEndFrame > loopStartFrame && e.counter >= loopEndFrame {
				e.counter = loopStartFrame + (e.counter-loopStartFrame)%(loopEndFrame-loopStartFrame)
			}
		}
	}
	e.positionSet = false

	last := pts[len(pts)-1]
	if e.counter >= last.Frame {
		e.value = last.Value
		e.counter++
		return e.value
	}

	lo, hi := pts[0], pts[len(pts)-1]
	for i := 0; i < len(pts)-1; i++ {
		if pts[i].Frame <= e.counter && e.counter <= pts[i+1].Frame {
			lo, hi = pts[i], pts[i+1]
			break
		}
	}
	if hi.Frame == lo.Frame {
		e.value = lo.Value
	} else {
		t := float32(e.counter-lo.Frame) / float32(hi.Frame-lo.Frame)
		e.value = lerp(lo.Value, hi.Value, t)
	}
	e.counter++
	return e.value
}
