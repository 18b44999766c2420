package modplayer

// effectPlugin is the shared contract every tick-driven effect (arpeggio,
// vibrato, tremolo, panbrello) implements: a tick0 call that (re)starts the
// effect for a new row, a tick call for every subsequent tick, a value
// query, and an in_progress query the channel uses to know when it can
// stop calling the effect at all.
//
// Grounded directly on original_source/src/effect.rs.
type effectPlugin interface {
	tick0(p1, p2 float32) float32
	tick() float32
	value() float32
	retrigger() float32
	inProgress() bool
}

// arpeggioEffect cycles a channel's pitch between the root note and two
// semitone offsets, one per tick. In "historical" (FT2) mode the cycle
// follows a reverse-tick table instead of a plain tick%3, see
// historicalArpeggioTick.
//
// Grounded directly on original_source/src/effect_arpeggio.rs.
type arpeggioEffect struct {
	offset1, offset2 float32
	historical       bool
	tempo            int
	tick_            uint8
	progress         bool
	val              float32
}

func newArpeggioEffect(historical bool) *arpeggioEffect {
	return &arpeggioEffect{historical: historical}
}

func (a *arpeggioEffect) setTempo(tempo int) {
	a.tempo = tempo
}

func (a *arpeggioEffect) tick0(p1, p2 float32) float32 {
	a.offset1, a.offset2 = p1, p2
	a.tick_ = 0
	a.progress = true
	a.val = 0
	return a.val
}

func (a *arpeggioEffect) tick() float32 {
	a.tick_++
	a.val = a.valueForTick(a.tick_)
	return a.val
}

func (a *arpeggioEffect) valueForTick(tick uint8) float32 {
	var phase uint8
	if a.historical && a.tempo > 0 {
		phase = historicalArpeggioTick(tick, a.tempo)
	} else {
		phase = tick % 3
	}
	switch phase {
	case 1:
		return a.offset1
	case 2:
		return a.offset2
	default:
		return 0
	}
}

func (a *arpeggioEffect) value() float32 { return a.val }

// retrigger resets the cycle to its base-pitch phase, matching
// effect_arpeggio.rs's retrigger (tick=0, in_progress=false, value=0).
func (a *arpeggioEffect) retrigger() float32 {
	a.tick_ = 0
	a.progress = false
	a.val = 0
	return a.val
}
func (a *arpeggioEffect) inProgress() bool { return a.progress }

// historicalArpeggioTick is the FastTracker 2 "historical" reverse-tick
// lookup table. Grounded directly on
// original_source/src/historical_helper.rs.
func historicalArpeggioTick(tick uint8, tempo int) uint8 {
	t := int(tick) % tempo
	reverseTick := tempo - t - 1
	switch {
	case reverseTick >= 0 && reverseTick <= 15:
		return uint8(reverseTick % 3)
	case isHistoricalZeroTick(reverseTick):
		return 0
	default:
		return 2
	}
}

func isHistoricalZeroTick(rt int) bool {
	switch rt {
	case 51, 54, 60, 63, 72, 78, 81, 93, 99, 105, 108, 111, 114, 117, 120,
		123, 126, 129, 132, 135, 138, 141, 144, 147, 150, 153, 156, 159, 165,
		168, 171, 174, 177, 180, 183, 186, 189, 192, 195, 198, 201, 204, 207,
		210, 216, 219, 222, 225, 228, 231, 234, 237, 240, 243:
		return true
	default:
		return false
	}
}

// oscillatorEffect drives vibrato, tremolo and panbrello: a phase that
// advances by `speed` each tick and a shape evaluated through waveformValue,
// scaled by `depth`.
//
// Grounded directly on original_source/src/effect_vibrato_tremolo.rs.
type oscillatorEffect struct {
	waveform Waveform
	rng      *prng
	speed    float32
	depth    float32
	pos      float32
	progress bool
	val      float32
}

func newOscillatorEffect(w Waveform) *oscillatorEffect {
	return &oscillatorEffect{waveform: w, rng: newPRNG(0xbeef)}
}

func (o *oscillatorEffect) setWaveform(w Waveform, retrig bool) {
	o.waveform = w
	if retrig {
		o.pos = 0
	}
}

func (o *oscillatorEffect) tick0(speed, depth float32) float32 {
	o.speed, o.depth = speed, depth
	o.progress = true
	o.val = waveformValue(o.waveform, o.pos, o.rng) * o.depth
	return o.val
}

func (o *oscillatorEffect) tick() float32 {
	o.pos += o.speed / 64.0
	for o.pos >= 1 {
		o.pos -= 1
	}
	o.val = waveformValue(o.waveform, o.pos, o.rng) * o.depth
	return o.val
}

func (o *oscillatorEffect) value() float32 { return o.val }

// retrigger resets the oscillator to a silent, not-in-progress state,
// matching effect_vibrato_tremolo.rs's retrigger (pos=0, in_progress=false,
// value=0).
func (o *oscillatorEffect) retrigger() float32 {
	o.pos = 0
	o.progress = false
	o.val = 0
	return o.val
}
func (o *oscillatorEffect) inProgress() bool { return o.progress }
