package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/n-drw/xmrsplayer"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("xmdump: ")

	if len(os.Args) <= 1 {
		log.Fatal("Missing song filename")
	}

	songFName := os.Args[1]
	songF, err := os.ReadFile(songFName)
	if err != nil {
		log.Fatal(err)
	}

	var song *modplayer.Song
	switch strings.ToLower(filepath.Ext(songFName)) {
	case ".mod":
		song, err = modplayer.NewMODSongFromBytes(songF)
	case ".s3m":
		song, err = modplayer.NewS3MSongFromBytes(songF)
	case ".xm":
		song, err = modplayer.NewXMSongFromBytes(songF)
	default:
		err = fmt.Errorf("unsupported song %q", songFName)
	}
	if err != nil {
		log.Fatal(err)
	}

	dumpSong(song)
}

func dumpSong(song *modplayer.Song) {
	fmt.Printf("Title:    %q\n", song.Title)
	fmt.Printf("Channels: %d\n", song.Channels)
	fmt.Printf("Speed:    %d  Tempo: %d\n", song.Speed, song.Tempo)
	fmt.Printf("Orders:   %d  Patterns: %d\n", len(song.Orders), song.NumPatterns())
	fmt.Printf("Samples:  %d  Instruments: %d\n\n", len(song.Samples), len(song.Instruments))

	for i, s := range song.Samples {
		if s.Length == 0 && s.Name == "" {
			continue
		}
		fmt.Printf("  sample %3d %-22q len=%-8d loop=%d..%d c4=%d vol=%d\n",
			i, s.Name, s.Length, s.LoopStart, s.LoopStart+s.LoopLen, s.C4Speed, s.Volume)
	}

	fmt.Println()
	for i, pat := range song.Orders {
		fmt.Printf("order %3d -> pattern %3d\n", i, pat)
	}
}
