package modplayer

import "math"

// sineSample builds a one-cycle full-scale sine wave sample, used by tests
// that need actual audio to render rather than silence.
func sineSample(name string, length int) Sample {
	data := make([]int8, length)
	for i := range data {
		data[i] = int8(127 * math.Sin(2*math.Pi*float64(i)/float64(length)))
	}
	return Sample{
		Name: name, Length: length, Data: data,
		Volume: 64, Panning: 128, C4Speed: 8363, LoopType: LoopNone,
	}
}

// emptyNote is a pattern cell with no pitch, instrument, volume or effects.
func emptyNote() note {
	return note{Volume: noNoteVolume}
}

// newSongWithPattern builds a minimal single-pattern Song (order 0 only)
// with nChannels tracks and one sine-wave instrument/sample at index 0.
// rows is row-major; cells beyond len(rows[r]) default to emptyNote().
func newSongWithPattern(nChannels int, rows [][]note) *Song {
	pat := initNotePattern(nChannels, len(rows))
	for r, row := range rows {
		for c := 0; c < nChannels; c++ {
			if c < len(row) {
				pat[r*nChannels+c] = row[c]
			} else {
				pat[r*nChannels+c] = emptyNote()
			}
		}
	}
	return &Song{
		Type:         SongTypeXM,
		Channels:     nChannels,
		GlobalVolume: 64,
		Speed:        6,
		Tempo:        125,
		Orders:       []byte{0},
		Samples:      []Sample{sineSample("sine", 256)},
		Instruments:  []Instrument{instrumentForSingleSample(0)},
		patterns:     [][]note{pat},
	}
}
