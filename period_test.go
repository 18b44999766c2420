package modplayer

import "testing"

func TestPeriodRoundTripAmiga(t *testing.T) {
	p := periodHelper{freqType: FreqAmiga}
	for _, n := range []float32{0, 12, 24, 36, 48, 60, 95} {
		period := p.noteToPeriod(n, 0)
		got := periodToPlayerNote(int(period + 0.5))
		if diff := got - n; diff > 0.1 || diff < -0.1 {
			t.Errorf("note %v: round trip gave %v (period %v)", n, got, period)
		}
	}
}

func TestPeriodToFrequencyLinearOctave(t *testing.T) {
	p := periodHelper{freqType: FreqLinear}
	base := p.noteToPeriod(48, 0)
	f0 := p.periodToFrequency(base, 8363)
	f1 := p.periodToFrequency(base-768, 8363) // one octave up (12 semitones * 64)
	ratio := f1 / f0
	if ratio < 1.99 || ratio > 2.01 {
		t.Errorf("expected one octave up to double frequency, got ratio %v", ratio)
	}
}

func TestPeriodToPlayerNoteZero(t *testing.T) {
	if got := periodToPlayerNote(0); got != 0 {
		t.Errorf("expected 0 for non-positive period, got %v", got)
	}
	if got := periodToPlayerNote(-5); got != 0 {
		t.Errorf("expected 0 for negative period, got %v", got)
	}
}
