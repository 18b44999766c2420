package modplayer

import "testing"

// TestSilencePattern renders an empty 64-row pattern at speed 6, BPM 125,
// 44100 Hz and checks the exact frame count and that every frame is silent.
func TestSilencePattern(t *testing.T) {
	rows := make([][]note, rowsPerPattern)
	for i := range rows {
		rows[i] = []note{emptyNote()}
	}
	song := newSongWithPattern(1, rows)
	song.Samples = nil // no instrument ever triggers, so sample data is irrelevant
	song.Instruments = nil

	player := NewPlayer(song, 44100, false)
	player.SetMaxLoopCount(0)

	const wantFrames = 64 * 6 * 882 // rows * speed * samplesPerTick(44100*2.5/125)
	buf := make([]float32, (wantFrames+100)*2)
	n := player.Fill(buf)

	if n != wantFrames {
		t.Fatalf("expected exactly %d frames, got %d", wantFrames, n)
	}
	for i := 0; i < n*2; i++ {
		if buf[i] != 0 {
			t.Fatalf("expected silence, got nonzero sample at index %d: %v", i, buf[i])
		}
	}

	// The song has ended; further Fill calls must keep returning nothing.
	if again := player.Fill(buf); again != 0 {
		t.Errorf("expected 0 frames after song end, got %d", again)
	}
}

// TestSineNoteStaysInRange triggers a real note and checks the quantified
// amplitude invariant (|L|,|R| <= 1) holds across many rendered frames, and
// that the note actually produces nonzero sound.
func TestSineNoteStaysInRange(t *testing.T) {
	song := newSongWithPattern(1, [][]note{
		{{Pitch: 49, Sample: 1, Volume: 64}}, // a valid note, full volume
	})
	player := NewPlayer(song, 44100, false)

	buf := make([]float32, 4096*2)
	n := player.Fill(buf)
	if n == 0 {
		t.Fatalf("expected frames to be rendered")
	}

	sawNonzero := false
	for i := 0; i < n*2; i++ {
		v := buf[i]
		if v > 1 || v < -1 {
			t.Fatalf("sample %d out of range: %v", i, v)
		}
		if v != 0 {
			sawNonzero = true
		}
	}
	if !sawNonzero {
		t.Errorf("expected triggered note to produce nonzero output")
	}
}

// TestSetVolumeAtTickZeroApplies checks that a tick0-targeted effect (here
// FxSetVolume with I1=0) is applied on the very first tick of a row even
// when speed=1, i.e. the row's single tick is never skipped.
func TestSetVolumeAtTickZeroApplies(t *testing.T) {
	song := newSongWithPattern(1, [][]note{
		{{Pitch: 49, Sample: 1, Volume: noNoteVolume, Effects: []Effect{{Kind: FxSetVolume, Amt1: 0.25, I1: 0}}}},
	})
	song.Speed = 1
	player := NewPlayer(song, 44100, false)

	if !player.advanceTick() {
		t.Fatalf("advanceTick failed")
	}
	if got := player.channels[0].volume; got != 0.25 {
		t.Errorf("expected volume 0.25 applied on tick 0, got %v", got)
	}
}

// TestPatternLoopRepeatsFourTimes exercises FxPatternLoop: row 0 is the
// implicit loop origin (patternLoopOrigin's zero value), row 1 carries
// "loop back 3 times" — the bracketed range should play 4 times in total
// (the original pass plus 3 repeats) before falling through.
func TestPatternLoopRepeatsFourTimes(t *testing.T) {
	song := newSongWithPattern(1, [][]note{
		{emptyNote()},
		{{Volume: noNoteVolume, Effects: []Effect{{Kind: FxPatternLoop, I1: 3}}}},
	})
	song.Orders = []byte{0, 0} // a second order so running off the end is observable
	song.Speed = 1             // one tick per row, so each advanceTick call is one row
	player := NewPlayer(song, 44100, false)

	type state struct{ order, row int }
	var got []state
	for i := 0; i < 8; i++ {
		if !player.advanceTick() {
			t.Fatalf("advanceTick failed at step %d", i)
		}
		got = append(got, state{player.order, player.row})
	}

	row0Visits := 0
	for _, s := range got {
		if s.row == 1 {
			row0Visits++ // the tick right after processing row 0 always lands on row 1
		}
	}
	if row0Visits != 4 {
		t.Errorf("expected row 0 to have played 4 times (origin + 3 repeats), counted %d", row0Visits)
	}
	if got[7].order != 1 {
		t.Errorf("expected the loop to release and advance to order 1 by step 8, got order %d", got[7].order)
	}
}
