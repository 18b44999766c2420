package modplayer

import "testing"

func newTestChannel(song *Song) *channel {
	periods := periodHelper{freqType: song.FrequencyType}
	return newChannel(0, song, periods, 44100, false)
}

func TestNoteCutAtTickZeroSilencesImmediately(t *testing.T) {
	song := newSongWithPattern(1, nil)
	c := newTestChannel(song)

	n := &note{
		Pitch:   13, // arbitrary valid pitch
		Sample:  1,
		Volume:  noNoteVolume,
		Effects: []Effect{{Kind: FxNoteCut, I1: 0}},
	}
	c.tick0(n)

	if c.instr.isActive() {
		t.Errorf("expected voice to be cut (inactive) immediately on tick 0")
	}
}

func TestNoteCutLaterTickStaysActiveUntilThen(t *testing.T) {
	song := newSongWithPattern(1, nil)
	c := newTestChannel(song)

	n := &note{
		Pitch:   13,
		Sample:  1,
		Volume:  noNoteVolume,
		Effects: []Effect{{Kind: FxNoteCut, I1: 2}},
	}
	c.tick0(n)
	if !c.instr.isActive() {
		t.Errorf("expected voice active right after trigger")
	}
	c.tickNEffects(1)
	if !c.instr.isActive() {
		t.Errorf("expected voice still active before the cut tick")
	}
	c.tickNEffects(2)
	if c.instr.isActive() {
		t.Errorf("expected voice cut exactly on tick 2")
	}
}

// TestTonePortaSlideConvergesMonotonically exercises the slideTowards
// mechanism FxTonePorta drives: period should move monotonically toward the
// target and land on it exactly once the accumulated slide covers the gap.
func TestTonePortaSlideConvergesMonotonically(t *testing.T) {
	song := newSongWithPattern(1, nil)
	c := newTestChannel(song)

	c.period = 1000
	c.targetPeriod = 600
	c.tonePortaMem = 50

	var last float32 = 1000
	for tick := 1; tick <= 10; tick++ {
		c.tickNEffects(0) // no-op: effect list is empty, keeps current/tonePortaMem
		c.period = slideTowards(c.period, c.targetPeriod, c.tonePortaMem)
		if c.period > last {
			t.Fatalf("tick %d: period increased (%v -> %v) sliding toward a lower target", tick, last, c.period)
		}
		if c.period < c.targetPeriod {
			t.Fatalf("tick %d: period overshot target %v, got %v", tick, c.targetPeriod, c.period)
		}
		last = c.period
	}
	// delta=400, step=50 -> exactly 8 ticks to reach target.
	c.period = 1000
	for tick := 1; tick <= 8; tick++ {
		c.period = slideTowards(c.period, c.targetPeriod, c.tonePortaMem)
	}
	if c.period != c.targetPeriod {
		t.Errorf("expected exact convergence after 8 ticks, got %v", c.period)
	}
}
