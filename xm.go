package modplayer

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
)

var ErrInvalidXM = errors.New("invalid XM file")

// NewXMSongFromBytes parses a FastTracker II module into a Song, including
// its instruments' volume/panning envelopes and auto-vibrato — the one
// format in this loader set with no teacher or original_source precedent
// to lift from (XM support was filtered from the retrieval pack as
// parsing-layer), so this is written fresh in the same bytes.Reader/
// encoding/binary style mod.go and s3m.go use.
func NewXMSongFromBytes(songBytes []byte) (*Song, error) {
	if len(songBytes) < 60 || string(songBytes[:17]) != "Extended Module: " {
		return nil, ErrInvalidXM
	}

	buf := bytes.NewReader(songBytes)
	hdr := struct {
		Magic        [17]byte
		Name         [20]byte
		Magic2       byte
		Tracker      [20]byte
		Version      uint16
		HeaderSize   uint32
		SongLength   uint16
		RestartPos   uint16
		NumChannels  uint16
		NumPatterns  uint16
		NumInstrum   uint16
		Flags        uint16
		DefaultTempo uint16
		DefaultSpeed uint16
		OrderTable   [256]byte
	}{}
	if err := binary.Read(buf, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}

	song := &Song{
		Type:         SongTypeXM,
		Title:        strings.TrimRight(string(hdr.Name[:]), "\x00\x20"),
		Channels:     int(hdr.NumChannels),
		Speed:        int(hdr.DefaultSpeed),
		Tempo:        int(hdr.DefaultTempo),
		GlobalVolume: 64,
	}
	if hdr.Flags&1 != 0 {
		song.FrequencyType = FreqLinear
	} else {
		song.FrequencyType = FreqAmiga
	}
	song.Orders = make([]byte, hdr.SongLength)
	copy(song.Orders, hdr.OrderTable[:hdr.SongLength])

	song.patterns = make([][]note, hdr.NumPatterns)
	for i := 0; i < int(hdr.NumPatterns); i++ {
		phdr := struct {
			HeaderLen uint32
			PackType  byte
			NumRows   uint16
			DataSize  uint16
		}{}
		if err := binary.Read(buf, binary.LittleEndian, &phdr); err != nil {
			return nil, err
		}
		rows := int(phdr.NumRows)
		if rows <= 0 {
			rows = 64
		}
		pat := initNotePattern(song.Channels, rows)

		if phdr.DataSize > 0 {
			data := make([]byte, phdr.DataSize)
			if _, err := buf.Read(data); err != nil {
				return nil, err
			}
			r := bytes.NewReader(data)
			for row := 0; row < rows; row++ {
				for ch := 0; ch < song.Channels; ch++ {
					n, err := readXMNoteCell(r)
					if err != nil {
						return nil, err
					}
					pat[row*song.Channels+ch] = n
				}
			}
		}
		song.patterns[i] = pat
	}

	song.Instruments = make([]Instrument, hdr.NumInstrum)
	var allSamples []Sample
	instSampleBase := make([]int, hdr.NumInstrum)
	for i := 0; i < int(hdr.NumInstrum); i++ {
		instSampleBase[i] = len(allSamples)
		instr, samples, err := readXMInstrument(buf)
		if err != nil {
			return nil, err
		}
		for n := range instr.SampleOfNote {
			if instr.SampleOfNote[n] >= 0 {
				instr.SampleOfNote[n] += instSampleBase[i]
			}
		}
		song.Instruments[i] = instr
		allSamples = append(allSamples, samples...)
	}
	song.Samples = allSamples

	return song, nil
}

func readXMNoteCell(r *bytes.Reader) (note, error) {
	n := note{Volume: noNoteVolume}
	b, err := r.ReadByte()
	if err != nil {
		return n, err
	}

	var pitch, instrument, volume, fxType, fxParam byte
	if b&0x80 != 0 {
		if b&1 != 0 {
			pitch, _ = r.ReadByte()
		}
		if b&2 != 0 {
			instrument, _ = r.ReadByte()
		}
		if b&4 != 0 {
			volume, _ = r.ReadByte()
		}
		if b&8 != 0 {
			fxType, _ = r.ReadByte()
		}
		if b&16 != 0 {
			fxParam, _ = r.ReadByte()
		}
	} else {
		pitch = b
		instrument, _ = r.ReadByte()
		volume, _ = r.ReadByte()
		fxType, _ = r.ReadByte()
		fxParam, _ = r.ReadByte()
	}

	switch {
	case pitch == 97:
		n.Pitch = noteKeyOff
	case pitch >= 1 && pitch <= 96:
		n.Pitch = playerNote(pitch)
	}
	n.Sample = int(instrument)

	if volume >= 0x10 && volume <= 0x50 {
		n.Volume = int(volume) - 0x10
	} else if eff, ok := convertXMVolumeColumn(volume); ok {
		n.Effects = append(n.Effects, eff)
	}
	if eff, ok := convertXMEffect(fxType, fxParam); ok {
		n.Effects = append(n.Effects, eff)
	}
	return n, nil
}

func convertXMVolumeColumn(v byte) (Effect, bool) {
	hi, lo := v>>4, v&0xF
	switch hi {
	case 0x6:
		return Effect{Kind: FxVolumeSlide, Amt1: -float32(lo) / 64.0}, true
	case 0x7:
		return Effect{Kind: FxVolumeSlide, Amt1: float32(lo) / 64.0}, true
	case 0x8:
		return Effect{Kind: FxVolumeSlide, Amt1: -float32(lo) / 64.0, Fine: true}, true
	case 0x9:
		return Effect{Kind: FxVolumeSlide, Amt1: float32(lo) / 64.0, Fine: true}, true
	case 0xA:
		return Effect{Kind: FxVibrato, Amt2: float32(lo) / 8.0}, true
	case 0xC:
		return Effect{Kind: FxPanning, Amt1: float32(lo) / 15.0}, true
	case 0xD:
		return Effect{Kind: FxPanningSlide, Amt1: -float32(lo) / 15.0}, true
	case 0xE:
		return Effect{Kind: FxPanningSlide, Amt1: float32(lo) / 15.0}, true
	case 0xF:
		return Effect{Kind: FxTonePorta, Amt1: float32(lo) * 16}, true
	default:
		return Effect{}, false
	}
}

func convertXMEffect(fx, parm byte) (Effect, bool) {
	switch fx {
	case 0x0:
		if parm == 0 {
			return Effect{}, false
		}
		return Effect{Kind: FxArpeggio, Amt1: float32(parm >> 4), Amt2: float32(parm & 0xF)}, true
	case 0x1:
		return Effect{Kind: FxPortaUp, Amt1: float32(parm)}, true
	case 0x2:
		return Effect{Kind: FxPortaDown, Amt1: float32(parm)}, true
	case 0x3:
		return Effect{Kind: FxTonePorta, Amt1: float32(parm)}, true
	case 0x4:
		return Effect{Kind: FxVibrato, Amt1: float32(parm >> 4), Amt2: float32(parm&0xF) / 8.0}, true
	case 0x5:
		return Effect{Kind: FxTonePorta}, true
	case 0x6:
		return Effect{Kind: FxVibrato}, true
	case 0x7:
		return Effect{Kind: FxTremolo, Amt1: float32(parm >> 4), Amt2: float32(parm&0xF) / 8.0}, true
	case 0x8:
		return Effect{Kind: FxPanning, Amt1: float32(parm) / 255.0}, true
	case 0x9:
		return Effect{Kind: FxSampleOffset, I1: int(parm) << 8}, true
	case 0xA:
		hi, lo := parm>>4, parm&0xF
		if hi > 0 {
			return Effect{Kind: FxVolumeSlide, Amt1: float32(hi) / 64.0}, true
		}
		return Effect{Kind: FxVolumeSlide, Amt1: -float32(lo) / 64.0}, true
	case 0xB:
		return Effect{Kind: FxPatternJump, I1: int(parm)}, true
	case 0xC:
		return Effect{Kind: FxSetVolume, Amt1: float32(parm) / 64.0}, true
	case 0xD:
		return Effect{Kind: FxPatternBreak, I1: int(parm>>4)*10 + int(parm&0xF)}, true
	case 0xE:
		return convertMODExtendedEffect(parm)
	case 0xF:
		return Effect{Kind: FxSetSpeed, I1: int(parm)}, true
	case 0x10:
		return Effect{Kind: FxChannelVolume, Amt1: float32(parm) / 64.0}, true
	case 0x11:
		hi, lo := parm>>4, parm&0xF
		if hi > 0 {
			return Effect{Kind: FxChannelVolumeSlide, Amt1: float32(hi) / 64.0}, true
		}
		return Effect{Kind: FxChannelVolumeSlide, Amt1: -float32(lo) / 64.0}, true
	case 0x14:
		return Effect{Kind: FxNoteOff, I1: int(parm)}, true
	case 0x15:
		return Effect{Kind: FxInstrumentVolumeEnvelopePos, I1: int(parm)}, true
	case 0x16:
		return Effect{Kind: FxPatternLoop, I1: int(parm)}, true
	case 0x19:
		return Effect{Kind: FxPanningSlide, Amt1: (float32(parm>>4) - float32(parm&0xF)) / 15.0}, true
	case 0x1B:
		eff := Effect{Kind: FxNoteRetrig, I1: int(parm & 0xF)}
		switch parm >> 4 {
		case 0:
		case 1, 2, 3, 4, 5:
			eff.VolOp, eff.VolAmt = RetrigVolAdd, -float32(parm>>4)/64.0
		case 6:
			eff.VolOp, eff.VolAmt = RetrigVolMul, 2.0 / 3.0
		case 7:
			eff.VolOp, eff.VolAmt = RetrigVolMul, 0.5
		case 9, 0xA, 0xB, 0xC, 0xD:
			eff.VolOp, eff.VolAmt = RetrigVolAdd, float32(parm>>4-8)/64.0
		case 0xE:
			eff.VolOp, eff.VolAmt = RetrigVolMul, 1.5
		case 0xF:
			eff.VolOp, eff.VolAmt = RetrigVolMul, 2.0
		}
		return eff, true
	case 0x1D:
		return Effect{Kind: FxTremor, I1: int(parm >> 4), I2: int(parm & 0xF)}, true
	case 0x21:
		switch parm >> 4 {
		case 1:
			return Effect{Kind: FxFinePortaUp, Amt1: float32(parm&0xF) * 4}, true
		case 2:
			return Effect{Kind: FxFinePortaDown, Amt1: float32(parm&0xF) * 4}, true
		}
		return Effect{}, false
	default:
		return Effect{}, false
	}
}

func readXMInstrument(r *bytes.Reader) (Instrument, []Sample, error) {
	start, _ := r.Seek(0, 1)
	hdr := struct {
		Size       uint32
		Name       [22]byte
		Type       byte
		NumSamples uint16
	}{}
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return Instrument{}, nil, err
	}

	instr := Instrument{Name: strings.TrimRight(string(hdr.Name[:]), "\x00")}
	for i := range instr.SampleOfNote {
		instr.SampleOfNote[i] = -1
	}

	if hdr.NumSamples == 0 {
		if _, err := r.Seek(start+int64(hdr.Size), 0); err != nil {
			return Instrument{}, nil, err
		}
		return instr, nil, nil
	}

	shdr := struct {
		SampleHeaderSize uint32
		KeymapAssign     [96]byte
		VolPoints        [12 * 2]uint16
		PanPoints        [12 * 2]uint16
		NumVolPoints     byte
		NumPanPoints     byte
		VolSustain       byte
		VolLoopStart     byte
		VolLoopEnd       byte
		PanSustain       byte
		PanLoopStart     byte
		PanLoopEnd       byte
		VolType          byte
		PanType          byte
		VibratoType      byte
		VibratoSweep     byte
		VibratoDepth     byte
		VibratoRate      byte
		VolumeFadeout    uint16
		Reserved         [2]byte
	}{}
	if err := binary.Read(r, binary.LittleEndian, &shdr); err != nil {
		return Instrument{}, nil, err
	}

	for i, s := range shdr.KeymapAssign {
		instr.SampleOfNote[i] = int(s)
	}

	instr.VolumeEnv = decodeXMEnvelope(shdr.VolPoints[:], shdr.NumVolPoints, shdr.VolType, shdr.VolSustain, shdr.VolLoopStart, shdr.VolLoopEnd, 64.0)
	instr.PanningEnv = decodeXMEnvelope(shdr.PanPoints[:], shdr.NumPanPoints, shdr.PanType, shdr.PanSustain, shdr.PanLoopStart, shdr.PanLoopEnd, 64.0)
	instr.Vibrato = AutoVibrato{
		Waveform: xmVibratoWaveform(shdr.VibratoType),
		Sweep:    float32(shdr.VibratoSweep),
		Depth:    float32(shdr.VibratoDepth),
		Speed:    float32(shdr.VibratoRate),
	}
	instr.FadeoutStep = float32(shdr.VolumeFadeout) / 32768.0

	type sampleHdr struct {
		Length      uint32
		LoopStart   uint32
		LoopLen     uint32
		Volume      byte
		FineTune    int8
		Type        byte
		Panning     byte
		RelNote     int8
		Reserved    byte
		Name        [22]byte
	}
	hdrs := make([]sampleHdr, hdr.NumSamples)
	for i := range hdrs {
		if err := binary.Read(r, binary.LittleEndian, &hdrs[i]); err != nil {
			return Instrument{}, nil, err
		}
	}

	samples := make([]Sample, hdr.NumSamples)
	for i, sh := range hdrs {
		sixteenBit := sh.Type&16 != 0
		length := int(sh.Length)
		if sixteenBit {
			length /= 2
		}
		s := Sample{
			Name:          strings.TrimRight(string(sh.Name[:]), "\x00"),
			Length:        length,
			FineTune:      int(sh.FineTune),
			RelativePitch: int(sh.RelNote),
			Volume:        int(sh.Volume),
			Panning:       int(sh.Panning),
			C4Speed:       8363,
		}
		if sh.Type&3 != 0 {
			s.LoopType = LoopForward
			if sh.Type&3 == 2 {
				s.LoopType = LoopPingPong
			}
			if sixteenBit {
				s.LoopStart = int(sh.LoopStart) / 2
				s.LoopLen = int(sh.LoopLen) / 2
			} else {
				s.LoopStart = int(sh.LoopStart)
				s.LoopLen = int(sh.LoopLen)
			}
		}

		raw := make([]byte, sh.Length)
		if sh.Length > 0 {
			if _, err := r.Read(raw); err != nil {
				return Instrument{}, nil, err
			}
		}
		s.Data = decodeXMSampleData(raw, sixteenBit)
		samples[i] = s
	}

	return instr, samples, nil
}

// decodeXMSampleData converts XM's delta-encoded sample data (8 or 16 bit)
// into 8-bit signed PCM, matching the precision the rest of the engine's
// sampleVoice expects.
func decodeXMSampleData(raw []byte, sixteenBit bool) []int8 {
	if sixteenBit {
		n := len(raw) / 2
		out := make([]int8, n)
		var acc int16
		for i := 0; i < n; i++ {
			acc += int16(binary.LittleEndian.Uint16(raw[i*2:]))
			out[i] = int8(acc >> 8)
		}
		return out
	}
	out := make([]int8, len(raw))
	var acc int8
	for i, b := range raw {
		acc += int8(b)
		out[i] = acc
	}
	return out
}

func xmVibratoWaveform(t byte) Waveform {
	switch t & 3 {
	case 1:
		return WaveSquare
	case 2:
		return WaveRampDown
	case 3:
		return WaveRandom
	default:
		return WaveSine
	}
}

func decodeXMEnvelope(points []uint16, numPoints, typeFlags, sustain, loopStart, loopEnd byte, scale float32) Envelope {
	env := Envelope{Enabled: typeFlags&1 != 0, SustainIdx: -1, LoopStart: -1, LoopEnd: -1}
	n := int(numPoints)
	if n > 12 {
		n = 12
	}
	for i := 0; i < n; i++ {
		env.Points = append(env.Points, EnvelopePoint{
			Frame: int(points[i*2]),
			Value: float32(points[i*2+1]) / scale,
		})
	}
	if typeFlags&2 != 0 && int(sustain) < n {
		env.SustainIdx = int(sustain)
	}
	if typeFlags&4 != 0 && int(loopStart) < n && int(loopEnd) < n {
		env.LoopStart = int(loopStart)
		env.LoopEnd = int(loopEnd)
	}
	return env
}
