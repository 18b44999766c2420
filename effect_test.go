package modplayer

import "testing"

func TestHistoricalArpeggioTable(t *testing.T) {
	cases := []struct {
		tick, tempo uint8
		want        uint8
	}{
		{15, 16, 0}, // last tick of a 16-speed row: base pitch, no offset
		{10, 16, 2},
		{0, 6, 2},
	}
	for _, c := range cases {
		got := historicalArpeggioTick(c.tick, int(c.tempo))
		if got != c.want {
			t.Errorf("historicalArpeggioTick(%d,%d) = %d, want %d", c.tick, c.tempo, got, c.want)
		}
	}
}

func TestArpeggioEffectCyclesThreeWay(t *testing.T) {
	a := newArpeggioEffect(false)
	a.tempo = 6
	a.tick0(3, 7)
	if v := a.value(); v != 0 {
		t.Errorf("tick0 should start at base pitch (0 offset), got %v", v)
	}
	if v := a.tick(); v != 3 {
		t.Errorf("tick 1 should be offset1=3, got %v", v)
	}
	if v := a.tick(); v != 7 {
		t.Errorf("tick 2 should be offset2=7, got %v", v)
	}
	if v := a.tick(); v != 0 {
		t.Errorf("tick 3 should cycle back to base, got %v", v)
	}
}

func TestOscillatorRetriggerIdempotent(t *testing.T) {
	o := newOscillatorEffect(WaveSine)
	o.tick0(32, 5)
	for i := 0; i < 7; i++ {
		o.tick()
	}
	first := o.retrigger()
	second := o.retrigger()
	if first != second {
		t.Errorf("retrigger should be idempotent at phase 0, got %v then %v", first, second)
	}
	if first != 0 {
		t.Errorf("sine at phase 0 scaled by depth should be 0, got %v", first)
	}
}

func TestOscillatorSquareWaveformBounds(t *testing.T) {
	o := newOscillatorEffect(WaveSquare)
	o.tick0(16, 2)
	for i := 0; i < 20; i++ {
		v := o.tick()
		if v != 2 && v != -2 {
			t.Errorf("square waveform at depth 2 should only take +-2, got %v", v)
		}
	}
}
