package modplayer

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// NewMODSongFromBytes parses a ProTracker-family MOD file into a Song:
// sample headers and data, the order list, and every pattern's note data,
// translated into the engine's canonical Effect representation.
//
// Grounded on the teacher's mod.go almost directly (sample/order/pattern
// parse shape, the periodToPlayerNote libxmp lift now living in period.go,
// and the "believe.mod sample 8" truncated-length workaround).
func NewMODSongFromBytes(songBytes []byte) (*Song, error) {
	song := &Song{
		Type:          SongTypeMOD,
		FrequencyType: FreqAmiga,
		Speed:         6,
		Tempo:         125,
		GlobalVolume:  64,
		Samples:       make([]Sample, 31),
		Instruments:   make([]Instrument, 31),
	}

	buf := bytes.NewReader(songBytes)
	y := make([]byte, 20)
	buf.Read(y)
	song.Title = strings.TrimRight(string(y), "\x00")

	for i := 0; i < 31; i++ {
		s, err := readMODSampleInfo(buf)
		if err != nil {
			return nil, err
		}
		song.Samples[i] = *s
		song.Instruments[i] = instrumentForSingleSample(i)
	}

	orders := struct {
		Orders    uint8
		_         uint8
		OrderData [128]byte
	}{}
	if err := binary.Read(buf, binary.BigEndian, &orders); err != nil {
		return nil, err
	}
	song.Orders = make([]byte, orders.Orders)
	copy(song.Orders, orders.OrderData[:orders.Orders])

	patterns := int(song.Orders[0])
	for i := 1; i < 128; i++ {
		if int(orders.OrderData[i]) > patterns {
			patterns = int(orders.OrderData[i])
		}
	}
	patterns++

	x := make([]byte, 4)
	if n, err := buf.Read(x); n != 4 || err != nil {
		return nil, err
	}
	switch string(x[2:]) {
	case "K.":
		song.Channels = 4
	case "HN":
		song.Channels = int(x[0]) - 48
	case "CH":
		song.Channels = (int(x[0])-48)*10 + (int(x[1] - 48))
	default:
		return nil, fmt.Errorf("unrecognized MOD format %s", string(x))
	}

	const bytesPerChannel = 4
	song.patterns = make([][]note, patterns)
	scratch := make([]byte, rowsPerPattern*song.Channels*bytesPerChannel)
	for i := 0; i < patterns; i++ {
		song.patterns[i] = initNotePattern(song.Channels, rowsPerPattern)
		if n, err := buf.Read(scratch); n != rowsPerPattern*song.Channels*bytesPerChannel || err != nil {
			return nil, err
		}
		for p := 0; p < rowsPerPattern*song.Channels; p++ {
			song.patterns[i][p] = noteFromMODBytes(scratch[p*bytesPerChannel : (p+1)*bytesPerChannel])
		}
	}

	for i := 0; i < 31; i++ {
		n := song.Samples[i].Length
		if n > buf.Len() {
			n = buf.Len()
		}
		song.Samples[i].Data = make([]int8, song.Samples[i].Length)
		if err := binary.Read(buf, binary.LittleEndian, song.Samples[i].Data[0:n]); err != nil {
			return nil, err
		}
		song.Samples[i].Length = n
	}

	return song, nil
}

// instrumentForSingleSample builds a trivial one-sample Instrument so
// MOD/S3M songs can be driven by the same channel.go code path as XM
// songs, which always trigger through an Instrument.
func instrumentForSingleSample(sampleIdx int) Instrument {
	ins := Instrument{}
	for i := range ins.SampleOfNote {
		ins.SampleOfNote[i] = sampleIdx
	}
	return ins
}

func readMODSampleInfo(r *bytes.Reader) (*Sample, error) {
	data := struct {
		Name      [22]byte
		Length    uint16
		FineTune  uint8
		Volume    uint8
		LoopStart uint16
		LoopLen   uint16
	}{}
	if err := binary.Read(r, binary.BigEndian, &data); err != nil {
		return nil, err
	}

	ft := int(data.FineTune&7) - int(data.FineTune&8)
	smp := &Sample{
		Name:      strings.TrimRight(string(data.Name[:]), "\x00"),
		Length:    int(data.Length) * 2,
		FineTune:  ft * 16, // rescale MOD's -8..7 range to the engine's wider finetune units
		Volume:    int(data.Volume),
		Panning:   128,
		C4Speed:   8363,
		LoopStart: int(data.LoopStart) * 2,
		LoopLen:   int(data.LoopLen) * 2,
		LoopType:  LoopForward,
	}
	if smp.LoopLen < 4 {
		smp.LoopLen = 0
		smp.LoopType = LoopNone
	}

	if smp.LoopStart+smp.LoopLen > smp.Length {
		dx := smp.LoopStart + smp.LoopLen - smp.Length
		smp.LoopStart -= dx
		if smp.LoopStart+smp.LoopLen > smp.Length {
			dx = smp.LoopStart + smp.LoopLen - smp.Length
			smp.LoopLen -= dx
		}
	}
	if smp.LoopLen < 2 {
		smp.LoopLen = 0
		smp.LoopType = LoopNone
	}

	return smp, nil
}

func noteFromMODBytes(nb []byte) note {
	period := int(int(nb[0]&0xF)<<8 + int(nb[1]))
	sample := int(nb[0]&0xF0 + nb[2]>>4)
	fxNum := nb[2] & 0xF
	fxParam := nb[3]

	n := note{Sample: sample, Volume: noNoteVolume}
	if period > 0 {
		// playerNote is 1-based (C-0 = 1); periodToPlayerNote returns a
		// 0-based fractional note number.
		n.Pitch = playerNote(periodToPlayerNote(period)+0.5) + 1
	}
	if eff, ok := convertMODEffect(fxNum, fxParam); ok {
		n.Effects = append(n.Effects, eff)
	}
	if fxNum == 0xC {
		n.Volume = int(fxParam)
	}
	return n
}

// convertMODEffect translates a single ProTracker effect nibble+param into
// the engine's canonical Effect. ok is false for effects this loader
// chooses not to emit (set-volume is surfaced through note.Volume instead).
func convertMODEffect(fx, param byte) (Effect, bool) {
	switch fx {
	case 0x0:
		if param == 0 {
			return Effect{}, false
		}
		return Effect{Kind: FxArpeggio, Amt1: float32(param >> 4), Amt2: float32(param & 0xF)}, true
	case 0x1:
		return Effect{Kind: FxPortaUp, Amt1: float32(param)}, true
	case 0x2:
		return Effect{Kind: FxPortaDown, Amt1: float32(param)}, true
	case 0x3:
		return Effect{Kind: FxTonePorta, Amt1: float32(param)}, true
	case 0x4:
		return Effect{Kind: FxVibrato, Amt1: float32(param >> 4), Amt2: float32(param&0xF) / 8.0}, true
	case 0x5:
		return Effect{Kind: FxTonePorta}, true
	case 0x6:
		return Effect{Kind: FxVibrato}, true
	case 0x7:
		return Effect{Kind: FxTremolo, Amt1: float32(param >> 4), Amt2: float32(param&0xF) / 8.0}, true
	case 0x8:
		return Effect{Kind: FxPanning, Amt1: float32(param) / 255.0}, true
	case 0x9:
		return Effect{Kind: FxSampleOffset, I1: int(param) << 8}, true
	case 0xA:
		hi, lo := param>>4, param&0xF
		if hi > 0 {
			return Effect{Kind: FxVolumeSlide, Amt1: float32(hi) / 64.0}, true
		}
		return Effect{Kind: FxVolumeSlide, Amt1: -float32(lo) / 64.0}, true
	case 0xB:
		return Effect{Kind: FxPatternJump, I1: int(param)}, true
	case 0xD:
		return Effect{Kind: FxPatternBreak, I1: int(param>>4)*10 + int(param&0xF)}, true
	case 0xE:
		return convertMODExtendedEffect(param)
	case 0xF:
		return Effect{Kind: FxSetSpeed, I1: int(param)}, true
	default:
		return Effect{}, false
	}
}

func convertMODExtendedEffect(param byte) (Effect, bool) {
	sub, y := param>>4, param&0xF
	switch sub {
	case 0x1:
		return Effect{Kind: FxFinePortaUp, Amt1: float32(y)}, true
	case 0x2:
		return Effect{Kind: FxFinePortaDown, Amt1: float32(y)}, true
	case 0x3:
		return Effect{Kind: FxGlissando, Fine: y != 0}, true
	case 0x4:
		return Effect{Kind: FxVibratoWaveform, I1: int(y & 3), Fine: y&4 == 0}, true
	case 0x6:
		return Effect{Kind: FxPatternLoop, I1: int(y)}, true
	case 0x7:
		return Effect{Kind: FxTremoloWaveform, I1: int(y & 3), Fine: y&4 == 0}, true
	case 0x8:
		return Effect{Kind: FxPanning, Amt1: float32(y) / 15.0}, true
	case 0x9:
		return Effect{Kind: FxNoteRetrig, I1: int(y)}, true
	case 0xA:
		return Effect{Kind: FxVolumeSlide, Amt1: float32(y) / 64.0, Fine: true}, true
	case 0xB:
		return Effect{Kind: FxVolumeSlide, Amt1: -float32(y) / 64.0, Fine: true}, true
	case 0xC:
		return Effect{Kind: FxNoteCut, I1: int(y)}, true
	case 0xD:
		return Effect{Kind: FxNoteDelay, I1: int(y)}, true
	case 0xE:
		return Effect{Kind: FxPatternDelay, I1: int(y)}, true
	default:
		return Effect{}, false
	}
}
