package modplayer

import (
	"bytes"
	"testing"
)

// buildMinimalMOD assembles the smallest valid 4-channel ProTracker MOD
// byte stream by hand: a title, 31 (mostly empty) sample headers, a
// one-entry order table, the "M.K." magic, and one empty pattern. There are
// no .mod fixtures in this workspace, so loader tests construct the bytes
// in-memory instead of reading a file.
func buildMinimalMOD(title string) []byte {
	var buf bytes.Buffer

	name := make([]byte, 20)
	copy(name, title)
	buf.Write(name)

	for i := 0; i < 31; i++ {
		buf.Write(make([]byte, 22)) // sample name
		buf.Write([]byte{0, 0})     // length (words)
		buf.WriteByte(0)            // finetune
		buf.WriteByte(0)            // volume
		buf.Write([]byte{0, 0})     // loop start (words)
		buf.Write([]byte{0, 0})     // loop length (words)
	}

	buf.WriteByte(1)                 // song length
	buf.WriteByte(0)                 // restart position
	orders := make([]byte, 128)
	buf.Write(orders)                // all orders point at pattern 0

	buf.WriteString("M.K.")

	buf.Write(make([]byte, rowsPerPattern*4*4)) // one empty 4-channel pattern

	return buf.Bytes()
}

func TestLoadSyntheticMOD(t *testing.T) {
	song, err := NewMODSongFromBytes(buildMinimalMOD("unit test song"))
	if err != nil {
		t.Fatalf("NewMODSongFromBytes: %v", err)
	}
	if song.Title != "unit test song" {
		t.Errorf("expected title %q, got %q", "unit test song", song.Title)
	}
	if song.Channels != 4 {
		t.Errorf("expected 4 channels, got %d", song.Channels)
	}
	if len(song.Orders) != 1 || song.Orders[0] != 0 {
		t.Errorf("expected a single order pointing at pattern 0, got %v", song.Orders)
	}
	if song.NumPatterns() != 1 {
		t.Errorf("expected 1 pattern, got %d", song.NumPatterns())
	}
	if len(song.Samples) != 31 {
		t.Errorf("expected 31 sample slots, got %d", len(song.Samples))
	}
	n := song.patternAt(0, 0, 0)
	if n == nil || n.Pitch != noteNone || n.Volume != noNoteVolume {
		t.Errorf("expected an empty cell at (0,0,0), got %+v", n)
	}
}

func TestLoadMODInvalidMagic(t *testing.T) {
	data := buildMinimalMOD("bad")
	// Corrupt the "M.K." magic that sits right before the pattern data.
	magicOffset := 20 + 31*30 + 2 + 128
	copy(data[magicOffset:magicOffset+4], "XXXX")

	if _, err := NewMODSongFromBytes(data); err == nil {
		t.Errorf("expected an error for an unrecognized MOD magic")
	}
}
