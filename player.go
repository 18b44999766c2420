// Useful notes https://github.com/AntonioND/gbt-player/blob/master/mod2gbt/FMODDOC.TXT

package modplayer

import (
	"errors"
	"fmt"
)

var (
	ErrNoOrders       = errors.New("song has no orders")
	ErrBadOrderTarget = errors.New("order/row out of range")
)

// Player renders a Song tick-by-tick into stereo float32 frames. It owns
// one channel per track, the song-level speed/tempo/order cursor, and the
// pattern jump/break/loop bookkeeping those effects need to cooperate with
// the row advance.
//
// Grounded on the teacher's Player (channel array ownership,
// samplesPerTick derived from BPM, sequence-then-mix tick loop,
// PositionCh-style position reporting) generalized to XM-level pattern
// jump/break/loop.
type Player struct {
	song *Song

	rate           float32
	amplification  float32
	historical     bool
	maxLoopCount   int

	speed int
	tempo int

	samplesPerTick int
	tickSamplePos  int

	order int
	row   int
	// tickInRow is the tick index (0..speed-1) currently being rendered;
	// needRowAdvance marks that the next call to advanceTick must load a
	// new row's notes before continuing.
	tickInRow      int
	needRowAdvance bool

	patternBreakRow int
	pendingJump     bool
	jumpOrder       int
	pendingBreak    bool
	patternDelay    int

	loopCount       int
	generatedSamples int64

	paused bool
	debug  bool

	mixer    *mixer
	channels []*channel

	// PositionCh receives a notification whenever the player advances to
	// a new row, mirroring the teacher's position-reporting channel; it
	// is never blocked on (a full channel just drops the notification).
	PositionCh chan Position
}

// Position describes the player's location in the song at the start of a
// row, used for UI/debug position reporting.
type Position struct {
	Order int
	Row   int
	Tick  int
	Tempo int
	Speed int
}

// NewPlayer constructs a Player for song, rendering at the given sample
// rate. historical enables FastTracker 2's documented compatibility quirks
// (reverse-tick arpeggio, the key-off cut-or-fade rule, and a key-off effect
// suppressing a note in the same cell).
func NewPlayer(song *Song, rate float32, historical bool) *Player {
	p := &Player{
		song:          song,
		rate:          rate,
		amplification: 1,
		historical:    historical,
		maxLoopCount:  -1,
		speed:         song.Speed,
		tempo:         song.Tempo,
		mixer:         newMixer(),
		PositionCh:    make(chan Position, 16),
	}
	if p.speed <= 0 {
		p.speed = 6
	}
	if p.tempo <= 0 {
		p.tempo = 125
	}
	periods := periodHelper{freqType: song.FrequencyType}
	p.channels = make([]*channel, song.Channels)
	for i := range p.channels {
		p.channels[i] = newChannel(i, song, periods, rate, historical)
		if i < len(song.pan) {
			p.channels[i].panning = float32(song.pan[i]) / 255.0
		} else {
			switch i & 3 {
			case 0, 3:
				p.channels[i].panning = 0.2
			default:
				p.channels[i].panning = 0.8
			}
		}
	}
	p.recomputeSamplesPerTick()
	p.needRowAdvance = true
	return p
}

func (p *Player) recomputeSamplesPerTick() {
	p.samplesPerTick = int(float32(p.rate) * 2.5 / float32(p.tempo))
	if p.samplesPerTick < 1 {
		p.samplesPerTick = 1
	}
}

// SetAmplification scales every rendered frame; values above 1 can clip.
func (p *Player) SetAmplification(a float32) {
	p.amplification = a
	p.mixer.amplification = a
}

// SetMaxLoopCount bounds how many times the song may loop back to order 0
// before Next/Fill report end-of-song (a negative value means unbounded).
func (p *Player) SetMaxLoopCount(n int) {
	p.maxLoopCount = n
}

// Debug toggles verbose per-row logging.
func (p *Player) Debug(on bool) {
	p.debug = on
}

// MuteAll mutes or unmutes every channel.
func (p *Player) MuteAll(mute bool) {
	for _, c := range p.channels {
		c.setMuted(mute)
	}
}

// SetMuteChannel mutes or unmutes a single channel by index.
func (p *Player) SetMuteChannel(i int, mute bool) {
	if i < 0 || i >= len(p.channels) {
		return
	}
	p.channels[i].setMuted(mute)
}

// Pause stops advancing playback; Next/Fill keep returning silence while
// paused.
func (p *Player) Pause(pause bool) {
	p.paused = pause
}

// Goto seeks playback to a given order/row and resets speed to the given
// ticks-per-row (a speed of 0 or less keeps the current speed).
func (p *Player) Goto(order, row, speed int) error {
	if order < 0 || order >= len(p.song.Orders) {
		return ErrBadOrderTarget
	}
	p.order = order
	p.row = row
	if speed > 0 {
		p.speed = speed
	}
	p.needRowAdvance = true
	p.tickSamplePos = 0
	return nil
}

func (p *Player) CurrentTableIndex() int { return p.order }
func (p *Player) CurrentPattern() int {
	if p.order >= len(p.song.Orders) {
		return 0
	}
	return int(p.song.Orders[p.order])
}
func (p *Player) CurrentRow() int         { return p.row }
func (p *Player) Tempo() int              { return p.tempo }
func (p *Player) Speed() int              { return p.speed }
func (p *Player) LoopCount() int          { return p.loopCount }
func (p *Player) GeneratedSamples() int64 { return p.generatedSamples }

// NoteDataFor returns the note at (order, row, ch), or nil if out of range.
// DisplayNoteAt builds its printable view from it.
func (p *Player) NoteDataFor(order, row, ch int) *note {
	if order < 0 || order >= len(p.song.Orders) {
		return nil
	}
	pat := int(p.song.Orders[order])
	if pat < 0 || pat >= p.song.NumPatterns() {
		return nil
	}
	return p.song.patternAt(pat, row, ch)
}

// NoteDisplay is a printable summary of one pattern cell, for external
// callers like cmd/xmplay that cannot see the unexported note type.
type NoteDisplay struct {
	NoteName   string // e.g. "C-4", "---" for none, "===" for key-off
	Instrument int    // 0 = none
	Volume     int    // -1 = unset
	EffectKind int
	EffectI1   int
}

var noteNames = [12]string{"C-", "C#", "D-", "D#", "E-", "F-", "F#", "G-", "G#", "A-", "A#", "B-"}

func noteName(n playerNote) string {
	switch {
	case n.isNone():
		return "---"
	case n.isKeyOff():
		return "==="
	default:
		idx := int(n) - 1
		return fmt.Sprintf("%s%d", noteNames[idx%12], idx/12)
	}
}

// DisplayNoteAt returns a printable view of the cell at (order, row, ch), or
// ok=false if out of range.
func (p *Player) DisplayNoteAt(order, row, ch int) (NoteDisplay, bool) {
	n := p.NoteDataFor(order, row, ch)
	if n == nil {
		return NoteDisplay{}, false
	}
	d := NoteDisplay{NoteName: noteName(n.Pitch), Instrument: n.Sample, Volume: n.Volume}
	if len(n.Effects) > 0 {
		d.EffectKind = int(n.Effects[0].Kind)
		d.EffectI1 = n.Effects[0].I1
	}
	return d, true
}

// Next renders one stereo frame, advancing the sequencer as needed. ok is
// false once the song has ended (orders exhausted and max loop count hit).
func (p *Player) Next() (float32, float32, bool) {
	if len(p.song.Orders) == 0 {
		return 0, 0, false
	}
	if p.paused {
		return 0, 0, true
	}
	if p.tickSamplePos == 0 {
		if !p.advanceTick() {
			return 0, 0, false
		}
	}
	l, r := p.mixer.mix(p.channels)
	p.tickSamplePos++
	p.generatedSamples++
	if p.tickSamplePos >= p.samplesPerTick {
		p.tickSamplePos = 0
	}
	return l, r, true
}

// Fill renders len(buf)/2 stereo frames (interleaved L,R) into buf and
// returns how many frames were written; it stops early at end-of-song.
func (p *Player) Fill(buf []float32) int {
	frames := len(buf) / 2
	n := 0
	for n < frames {
		l, r, ok := p.Next()
		if !ok {
			break
		}
		buf[n*2] = l
		buf[n*2+1] = r
		n++
	}
	return n
}

// advanceTick moves the tick/row/order cursor forward by one tick,
// triggering a new row's note(s) when a row boundary is crossed. It
// returns false once the song has ended.
func (p *Player) advanceTick() bool {
	if !p.needRowAdvance {
		p.tickInRow++
		if p.tickInRow < p.speed {
			for _, c := range p.channels {
				c.tick(p.tickInRow)
			}
			return true
		}
	}
	p.needRowAdvance = false
	p.tickInRow = 0

	var pat int
	for {
		if p.order >= len(p.song.Orders) {
			if !p.wrapSong() {
				// stay at the row boundary so every later call ends too
				p.needRowAdvance = true
				return false
			}
			continue
		}
		pat = int(p.song.Orders[p.order])
		if pat < 0 || pat >= p.song.NumPatterns() {
			p.order++
			continue
		}
		break
	}

	p.patternBreakRow = -1
	p.pendingJump = false
	p.pendingBreak = false

	if p.patternDelay > 0 {
		p.patternDelay--
		// The row's notes already fired on the first pass through it; a
		// delay repeat still needs one tick-level advance per channel so
		// envelopes/effects keep moving instead of freezing.
		for _, c := range p.channels {
			c.tick(0)
		}
		return true
	}

	rows := p.patternRows(pat)
	for ci, c := range p.channels {
		n := p.song.patternAt(pat, p.row, ci)
		if n == nil {
			continue
		}
		c.tick0(n)
		p.collectRowControl(c, n)
	}

	select {
	case p.PositionCh <- Position{Order: p.order, Row: p.row, Tick: 0, Tempo: p.tempo, Speed: p.speed}:
	default:
	}
	if p.debug {
		fmt.Printf("%02X %02X\n", p.order, p.row)
	}

	p.row++
	if p.pendingBreak {
		p.row = p.patternBreakRow
		p.order++
		if p.patternBreakRow < 0 {
			p.row = 0
		}
	} else if p.pendingJump {
		p.order = p.jumpOrder
		p.row = 0
	} else if p.row >= rows {
		p.row = 0
		p.order++
	}

	return true
}

func (p *Player) patternRows(pat int) int {
	if pat < 0 || pat >= p.song.NumPatterns() {
		return 64
	}
	return len(p.song.patterns[pat]) / p.song.Channels
}

// collectRowControl inspects one channel's note for effects the player
// itself must act on (speed/tempo, pattern break/jump/loop) since those
// move the order/row cursor rather than per-channel state.
func (p *Player) collectRowControl(c *channel, n *note) {
	for _, e := range n.Effects {
		switch e.Kind {
		case FxSetSpeed:
			if e.I1 >= 32 {
				p.tempo = e.I1
				p.recomputeSamplesPerTick()
			} else if e.I1 > 0 {
				p.speed = e.I1
			}
		case FxPatternBreak:
			p.pendingBreak = true
			p.patternBreakRow = e.I1
		case FxPatternJump:
			p.pendingJump = true
			p.jumpOrder = e.I1
		case FxPatternLoop:
			p.handlePatternLoop(c, e.I1)
		case FxPatternDelay:
			if e.I1 > 0 {
				p.patternDelay = e.I1
			}
		}
	}
}

func (p *Player) handlePatternLoop(c *channel, count int) {
	if count == 0 {
		c.patternLoopOrigin = p.row
		return
	}
	if c.patternLoopCount < count {
		c.patternLoopCount++
		p.pendingBreak = true
		p.patternBreakRow = c.patternLoopOrigin
		p.order--
	} else {
		c.patternLoopCount = 0
	}
}

func (p *Player) wrapSong() bool {
	p.loopCount++
	if p.maxLoopCount >= 0 && p.loopCount > p.maxLoopCount {
		return false
	}
	p.order = 0
	p.row = 0
	return true
}
