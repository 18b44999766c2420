package modplayer

import "testing"

func TestMetaSeekForwardLoop(t *testing.T) {
	s := &Sample{Length: 40, LoopType: LoopForward, LoopStart: 10, LoopLen: 20, Data: make([]int8, 40)}
	v := newSampleVoice(44100)
	v.reset(s)

	cases := []struct{ in, want int }{
		{5, 10},
		{15, 15},
		{30, 10},
	}
	for _, c := range cases {
		if got := v.metaSeek(c.in); got != c.want {
			t.Errorf("metaSeek(%d) = %d, want %d", c.in, got, c.want)
		}
	}
	if !v.isEnabled() {
		t.Errorf("voice should remain enabled while looping forward")
	}
}

func TestMetaSeekPingPongLoop(t *testing.T) {
	s := &Sample{Length: 40, LoopType: LoopPingPong, LoopStart: 10, LoopLen: 10, Data: make([]int8, 40)}
	v := newSampleVoice(44100)
	v.reset(s)

	cases := []struct{ in, want int }{
		{10, 10},
		{19, 19},
		{20, 19},
		{25, 14},
	}
	for _, c := range cases {
		if got := v.metaSeek(c.in); got != c.want {
			t.Errorf("metaSeek(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestMetaSeekNonLoopingDisablesAtEnd(t *testing.T) {
	s := &Sample{Length: 10, LoopType: LoopNone, Data: make([]int8, 10)}
	v := newSampleVoice(44100)
	v.reset(s)

	if got := v.metaSeek(10); got != 9 {
		t.Errorf("expected clamp to last sample index 9, got %d", got)
	}
	if v.isEnabled() {
		t.Errorf("voice should be disabled after running off a non-looping sample")
	}
}

func TestSampleVoiceAtOutOfRange(t *testing.T) {
	v := newSampleVoice(44100)
	if got := v.at(0); got != 0 {
		t.Errorf("at() with no sample attached should be 0, got %v", got)
	}
	s := &Sample{Length: 4, Data: []int8{64, -64, 127, -128}}
	v.reset(s)
	if got := v.at(-1); got != 0 {
		t.Errorf("at(-1) should be 0, got %v", got)
	}
	if got := v.at(4); got != 0 {
		t.Errorf("at(len) should be 0, got %v", got)
	}
	if got := v.at(0); got != 0.5 {
		t.Errorf("at(0) should be 64/128=0.5, got %v", got)
	}
}
