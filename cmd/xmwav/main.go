// xmwav renders a tracker module straight to a WAV file, no audio device
// required. Mirrors the teacher's cmd/modwav.

package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/n-drw/xmrsplayer"
	"github.com/n-drw/xmrsplayer/wav"
)

const outputHz = 44100

func main() {
	log.SetFlags(0)
	log.SetPrefix("xmwav: ")

	flagIn := flag.String("f", "", "input module file")
	flagOut := flag.String("o", "out.wav", "output WAV file")
	flagAmp := flag.Float64("a", 1.0, "amplification")
	flagLoops := flag.Int("l", 0, "max loop count (0 = infinite)")
	flagHist := flag.Bool("t", false, "historical FT2 compatibility mode")
	flagSpeed := flag.Int("s", 0, "override starting speed (0 = use song default)")
	flagDebug := flag.Bool("d", false, "debug row trace")
	flag.Parse()

	if *flagIn == "" {
		log.Fatal("Missing -f module filename")
	}

	songF, err := os.ReadFile(*flagIn)
	if err != nil {
		log.Fatal(err)
	}

	var song *modplayer.Song
	switch strings.ToLower(filepath.Ext(*flagIn)) {
	case ".mod":
		song, err = modplayer.NewMODSongFromBytes(songF)
	case ".s3m":
		song, err = modplayer.NewS3MSongFromBytes(songF)
	case ".xm":
		song, err = modplayer.NewXMSongFromBytes(songF)
	default:
		err = fmt.Errorf("unsupported song %q", *flagIn)
	}
	if err != nil {
		log.Fatal(err)
	}

	player := modplayer.NewPlayer(song, outputHz, *flagHist)
	player.SetAmplification(float32(*flagAmp))
	loops := *flagLoops
	if loops == 0 {
		loops = -1 // the player treats a negative count as unbounded
	}
	player.SetMaxLoopCount(loops)
	player.Debug(*flagDebug)
	if *flagSpeed > 0 {
		if err := player.Goto(0, 0, *flagSpeed); err != nil {
			log.Fatal(err)
		}
	}

	wavF, err := os.Create(*flagOut)
	if err != nil {
		log.Fatal(err)
	}
	defer wavF.Close()

	wavW, err := wav.NewWriter(wavF, outputHz)
	if err != nil {
		log.Fatal(err)
	}
	defer wavW.Finish()

	const chunkFrames = 2048
	frameBuf := make([]float32, chunkFrames*2)
	left := make([]int16, chunkFrames)
	right := make([]int16, chunkFrames)

	lastOrder := -1
	for {
		n := player.Fill(frameBuf)
		if n == 0 {
			break
		}
		for i := 0; i < n; i++ {
			left[i] = floatToPCM16(frameBuf[i*2])
			right[i] = floatToPCM16(frameBuf[i*2+1])
		}
		if err := wavW.WriteFrame([][]int16{left[:n], right[:n]}); err != nil {
			log.Fatal(err)
		}
		if order := player.CurrentTableIndex(); order != lastOrder {
			fmt.Printf("%d/%d\n", order+1, len(song.Orders))
			lastOrder = order
		}
	}
}

func floatToPCM16(s float32) int16 {
	v := math.Round(float64(s) * 32767)
	if v > 32767 {
		v = 32767
	}
	if v < -32768 {
		v = -32768
	}
	return int16(v)
}
