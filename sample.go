package modplayer

// sampleVoice is a fixed-point resampling cursor over one Sample's PCM
// data. Position is tracked as a 32-bit fixed-point value with M=25
// fractional bits so per-tick step accumulation never drifts audibly even
// at the lowest playable pitches.
//
// Grounded almost directly on original_source/src/state_sample.rs.
type sampleVoice struct {
	sample    *Sample
	rate      float32 // output sample rate, Hz
	finetune  float32
	sustained bool
	enabled   bool

	posInt  uint32
	posFrac uint32 // M fractional bits
	step    uint32 // fixed-point playback step per output frame
}

const (
	sampleM     = 25
	sampleMMask = (1 << sampleM) - 1
)

func newSampleVoice(rate float32) *sampleVoice {
	return &sampleVoice{rate: rate}
}

// reset attaches (or detaches, if s is nil) a sample and rewinds playback.
func (v *sampleVoice) reset(s *Sample) {
	v.sample = s
	v.posInt = 0
	v.posFrac = 0
	v.enabled = s != nil && s.Length > 0
}

func (v *sampleVoice) setPosition(i int) {
	if i < 0 {
		i = 0
	}
	v.posInt = uint32(i)
	v.posFrac = 0
	if v.sample != nil && i >= v.sample.Length && v.sample.LoopType == LoopNone && v.sample.SustainLoopLen <= 0 {
		v.enabled = false
	}
}

func (v *sampleVoice) setSustain(s bool) {
	v.sustained = s
}

// setStep recomputes the fixed-point per-frame step from a target playback
// frequency in Hz.
func (v *sampleVoice) setStep(freq float32) {
	if freq <= 0 || v.rate <= 0 {
		v.step = 0
		return
	}
	v.step = uint32((freq / v.rate) * float32(uint32(1)<<sampleM))
}

func (v *sampleVoice) isEnabled() bool {
	return v.enabled && v.sample != nil
}

// metaSeek wraps a raw sample index per the active loop mode, disabling the
// voice when playback runs off the end of a non-looping sample.
func (v *sampleVoice) metaSeek(i int) int {
	s := v.sample
	if s == nil {
		v.enabled = false
		return 0
	}

	if v.sustained && s.SustainLoopLen > 0 {
		start, length := s.SustainLoopStart, s.SustainLoopLen
		if i < start {
			return start
		}
		return start + (i-start)%length
	}

	switch s.LoopType {
	case LoopForward:
		start, length := s.LoopStart, s.LoopLen
		if length <= 0 {
			break
		}
		if i < start {
			return start
		}
		return start + (i-start)%length
	case LoopPingPong:
		start, length := s.LoopStart, s.LoopLen
		if length <= 0 {
			break
		}
		if i < start {
			return start
		}
		period := length * 2
		off := (i - start) % period
		if off < length {
			return start + off
		}
		return start + (period - off - 1)
	}

	if i >= s.Length {
		v.enabled = false
		if s.Length > 0 {
			return s.Length - 1
		}
		return 0
	}
	return i
}

func (v *sampleVoice) at(i int) float32 {
	if v.sample == nil || i < 0 || i >= len(v.sample.Data) {
		return 0
	}
	return float32(v.sample.Data[i]) / 128.0
}

// tick consumes one output frame and returns the interpolated sample
// value, or 0 once the voice is disabled.
func (v *sampleVoice) tick() float32 {
	useek := v.metaSeek(int(v.posInt))
	if !v.enabled {
		return 0
	}
	vseek := v.metaSeek(int(v.posInt) + 1)
	u := v.at(useek)
	vv := v.at(vseek)
	t := float32(v.posFrac) / float32(uint32(1)<<sampleM)
	out := lerp(u, vv, t)

	frac := uint64(v.posFrac) + uint64(v.step)
	v.posInt += uint32(frac >> sampleM)
	v.posFrac = uint32(frac & sampleMMask)
	if v.enabled {
		// re-normalize position through metaSeek so a loop wrap that
		// happened mid-increment is reflected for the next tick.
		v.posInt = uint32(v.metaSeek(int(v.posInt)))
	}
	return out
}
