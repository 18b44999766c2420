package modplayer

// instrumentVoice is the per-channel instrument playback state: the sample
// cursor plus the instrument's volume/panning envelopes, auto-vibrato and
// fadeout-on-key-off lifecycle. One instrumentVoice is embedded per
// channel; a new note re-triggers it in place, building fresh envelope and
// auto-vibrato states unless triggerKeepEnvelope is held.
//
// Grounded on spec.md section 4.5 and the call shape channel.rs uses
// against state_instr_default (that struct's body was not retrieved, so
// this implementation is original work built to satisfy those call sites
// and spec.md's invariants).
type instrumentVoice struct {
	periods periodHelper
	rate    float32

	instr  *Instrument
	sample *Sample
	voice  *sampleVoice

	volEnv *envelopeState
	panEnv *envelopeState
	vib    *autoVibratoState

	keyOn      bool
	fadeout    float32 // 1 = full volume, decays to 0 after key-off
	sustained  bool
	finetune   float32
	pitch      float32 // fractional note number, C-0 = 0
}

func newInstrumentVoice(rate float32, periods periodHelper) *instrumentVoice {
	return &instrumentVoice{
		rate:    rate,
		periods: periods,
		voice:   newSampleVoice(rate),
		fadeout: 1,
	}
}

// triggerNote reads the triggerKeepEnvelope, triggerKeepVolume and
// triggerKeepSamplePosition bits; channel.go reads triggerKeepPeriod to
// decide what it, itself, keeps.

// triggerNote (re)fires the voice for a new note, honoring which aspects of
// the previous voice state `keep` preserves.
func (iv *instrumentVoice) triggerNote(instr *Instrument, sample *Sample, n playerNote, keep triggerKeep) {
	iv.instr = instr
	iv.sample = sample
	iv.keyOn = true
	iv.sustained = true

	if keep&triggerKeepEnvelope == 0 {
		if instr != nil {
			iv.volEnv = newEnvelopeState(&instr.VolumeEnv, 1)
			iv.panEnv = newEnvelopeState(&instr.PanningEnv, 0.5)
			iv.vib = newAutoVibratoState(&instr.Vibrato)
		} else {
			iv.volEnv = newEnvelopeState(nil, 1)
			iv.panEnv = newEnvelopeState(nil, 0.5)
			iv.vib = newAutoVibratoState(nil)
		}
	}
	if keep&triggerKeepVolume == 0 {
		iv.fadeout = 1
	}
	if keep&triggerKeepSamplePosition == 0 {
		iv.voice.reset(sample)
	} else if sample != nil {
		iv.voice.sample = sample
		iv.voice.enabled = true
	}
	if sample != nil {
		iv.finetune = float32(sample.FineTune)
		iv.voice.setFinetune(iv.finetune)
	}
	if n.isValid() {
		iv.pitch = float32(n - 1)
	}
}

func (v *sampleVoice) setFinetune(f float32) {
	// finetune is folded into the period when channel.triggerPitch calls
	// noteToPeriod; the sample voice stores nothing.
	_ = f
}

// keyOff releases the note: envelopes move off their sustain point and
// fadeout begins decaying.
func (iv *instrumentVoice) keyOff() {
	iv.keyOn = false
	iv.sustained = false
}

// cut silences the voice immediately, bypassing fadeout.
func (iv *instrumentVoice) cut() {
	iv.keyOn = false
	iv.sustained = false
	iv.fadeout = 0
	iv.voice.enabled = false
}

func (iv *instrumentVoice) hasVolumeEnvelope() bool {
	return iv.instr != nil && iv.instr.VolumeEnv.Enabled
}

func (iv *instrumentVoice) isActive() bool {
	if iv.voice == nil || !iv.voice.isEnabled() {
		return false
	}
	return iv.fadeout > 0
}

// updateFrequency recomputes the sample voice's playback step from the
// channel's current period plus arpeggio/vibrato pitch modulation (both
// expressed as period deltas) and glissando (which quantizes the combined
// pitch to the nearest semitone before conversion).
func (iv *instrumentVoice) updateFrequency(period, arpDelta, vibratoDelta float32, glissando bool) {
	p := period + arpDelta + vibratoDelta
	if glissando {
		noteF := iv.periods.periodToNoteApprox(p)
		rounded := float32(int(noteF + 0.5))
		p = iv.periods.noteToPeriod(rounded, 0)
	}
	c4 := 8363
	if iv.sample != nil && iv.sample.C4Speed > 0 {
		c4 = iv.sample.C4Speed
	}
	freq := iv.periods.periodToFrequency(p, c4)
	iv.voice.setStep(freq)
}

// tickEnvelopesAndFadeout advances the volume/panning envelopes, the
// auto-vibrato and the fadeout ramp by one tick, returning the combined
// volume scale (0..1) and panning offset (-1..1, 0 = no offset) to apply on
// top of the channel's own volume/panning.
func (iv *instrumentVoice) tickEnvelopesAndFadeout() (volScale, panOffset, vibratoPeriodDelta float32) {
	volScale = 1
	if iv.volEnv != nil {
		volScale = iv.volEnv.tick(iv.sustained)
	}
	if iv.panEnv != nil {
		panVal := iv.panEnv.tick(iv.sustained)
		panOffset = (panVal - 0.5) * 2
	}
	if !iv.keyOn {
		if iv.instr != nil && iv.instr.FadeoutStep > 0 {
			iv.fadeout -= iv.instr.FadeoutStep
		} else {
			iv.fadeout -= 1.0 / 256.0
		}
		if iv.fadeout < 0 {
			iv.fadeout = 0
		}
	}
	volScale *= iv.fadeout
	if iv.vib != nil {
		vibratoPeriodDelta = iv.vib.tick()
	}
	return
}

func (iv *instrumentVoice) render() float32 {
	if iv.voice == nil || !iv.voice.isEnabled() {
		return 0
	}
	return iv.voice.tick()
}

// periodToNoteApprox is a convenience inverse of noteToPeriod (finetune 0)
// used by glissando control and the channel's arpeggio offset; in Amiga
// mode the period is rounded to an integer first.
func (p periodHelper) periodToNoteApprox(period float32) float32 {
	switch p.freqType {
	case FreqLinear:
		return (7680 - period) / 64.0
	default:
		return periodToPlayerNote(int(period + 0.5))
	}
}
