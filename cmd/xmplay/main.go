package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/n-drw/xmrsplayer"
)

var (
	flagFile    = flag.String("f", "", "input module file")
	flagAmp     = flag.Float64("a", 1.0, "amplification")
	flagChannel = flag.Int("c", -1, "mute this channel at startup (-1 = none)")
	flagLoops   = flag.Int("l", 0, "max loop count (0 = infinite)")
	flagHist    = flag.Bool("t", false, "historical FT2 compatibility mode")
	flagPos     = flag.Int("p", 0, "starting order")
	flagSpeed   = flag.Int("s", 0, "override starting speed (0 = song default)")
	flagDebug   = flag.Bool("d", false, "debug row trace")
	flagHz      = flag.Int("hz", 44100, "output sample rate")
)

const (
	escape     = "\x1b["
	hideCursor = escape + "?25l"
	showCursor = escape + "?25h"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("xmplay: ")
	flag.Parse()

	path := *flagFile
	if path == "" && len(flag.Args()) > 0 {
		path = flag.Arg(0)
	}
	if path == "" {
		log.Fatal("Missing -f module filename")
	}

	songF, err := os.ReadFile(path)
	if err != nil {
		log.Fatal(err)
	}

	var song *modplayer.Song
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mod":
		song, err = modplayer.NewMODSongFromBytes(songF)
	case ".s3m":
		song, err = modplayer.NewS3MSongFromBytes(songF)
	case ".xm":
		song, err = modplayer.NewXMSongFromBytes(songF)
	default:
		err = fmt.Errorf("unsupported song %q", path)
	}
	if err != nil {
		log.Fatal(err)
	}

	player := modplayer.NewPlayer(song, float32(*flagHz), *flagHist)
	player.SetAmplification(float32(*flagAmp))
	loops := *flagLoops
	if loops == 0 {
		loops = -1 // the player treats a negative count as unbounded
	}
	player.SetMaxLoopCount(loops)
	player.Debug(*flagDebug)
	if *flagChannel >= 0 {
		player.SetMuteChannel(*flagChannel, true)
	}
	if *flagPos > 0 || *flagSpeed > 0 {
		if err := player.Goto(*flagPos, 0, *flagSpeed); err != nil {
			log.Fatal(err)
		}
	}

	ap := NewAudioPlayer(player, song, *flagHz)
	if err := ap.Run(); err != nil {
		log.Fatal(err)
	}
}
