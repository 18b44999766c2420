package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"atomicgo.dev/keyboard"
	"atomicgo.dev/keyboard/keys"
	"github.com/fatih/color"
	"github.com/gordonklaus/portaudio"

	"github.com/n-drw/xmrsplayer"
)

var (
	white   = color.New(color.FgWhite).SprintfFunc()
	cyan    = color.New(color.FgCyan).SprintfFunc()
	magenta = color.New(color.FgMagenta).SprintfFunc()
	yellow  = color.New(color.FgYellow).SprintfFunc()
	blue    = color.New(color.FgHiBlue).SprintFunc()
)

const patternRowsBefore, patternRowsAfter = 4, 4

// AudioPlayer wraps a *modplayer.Player with a portaudio output stream and a
// small terminal UI, grounded on the teacher's cmd/modplay AudioPlayer.
type AudioPlayer struct {
	player *modplayer.Player
	song   *modplayer.Song
	hz     int

	stream *portaudio.Stream
	mu     sync.Mutex

	selectedChannel int
	lastOrder       int
	lastRow         int
	paused          bool
	quit            chan struct{}
	quitOnce        sync.Once
}

func NewAudioPlayer(player *modplayer.Player, song *modplayer.Song, hz int) *AudioPlayer {
	return &AudioPlayer{
		player:    player,
		song:      song,
		hz:        hz,
		lastOrder: -1,
		lastRow:   -1,
		quit:      make(chan struct{}),
	}
}

func (ap *AudioPlayer) Run() error {
	if err := portaudio.Initialize(); err != nil {
		return err
	}
	defer portaudio.Terminate()

	stream, err := portaudio.OpenDefaultStream(0, 2, float64(ap.hz), portaudio.FramesPerBufferUnspecified, ap.streamCallback)
	if err != nil {
		return err
	}
	ap.stream = stream
	if err := stream.Start(); err != nil {
		stream.Close()
		return err
	}
	defer stream.Stop()
	defer stream.Close()

	ap.setupSignalHandler()
	go ap.listenKeyboard()

	fmt.Print(hideCursor)
	defer fmt.Print(showCursor)

	if ap.song.Title != "" {
		fmt.Println(ap.song.Title)
	}

	for {
		select {
		case <-ap.quit:
			return nil
		default:
		}
		ap.renderIfChanged()
	}
}

func (ap *AudioPlayer) streamCallback(out []float32) {
	ap.mu.Lock()
	defer ap.mu.Unlock()
	n := ap.player.Fill(out)
	for i := n * 2; i < len(out); i++ {
		out[i] = 0
	}
}

func (ap *AudioPlayer) setupSignalHandler() {
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, syscall.SIGINT)
	go func() {
		<-sigch
		ap.Stop()
	}()
}

func (ap *AudioPlayer) listenKeyboard() {
	keyboard.Listen(func(key keys.Key) (bool, error) {
		switch key.Code {
		case keys.CtrlC, keys.Escape:
			ap.Stop()
			return true, nil
		case keys.Enter:
			fmt.Printf("order=%d row=%d speed=%d tempo=%d\n",
				ap.player.CurrentTableIndex(), ap.player.CurrentRow(), ap.player.Speed(), ap.player.Tempo())
		case keys.Space:
			ap.mu.Lock()
			ap.paused = !ap.paused
			ap.player.Pause(ap.paused)
			ap.mu.Unlock()
		case keys.Left:
			if ap.selectedChannel > 0 {
				ap.selectedChannel--
			}
		case keys.Right:
			if ap.selectedChannel < ap.song.Channels-1 {
				ap.selectedChannel++
			}
		case keys.RuneKey:
			if len(key.Runes) > 0 {
				switch key.Runes[0] {
				case 'q':
					ap.Stop()
					return true, nil
				case 'i':
					fmt.Printf("channel %d selected\n", ap.selectedChannel)
				}
			}
		}
		return false, nil
	})
}

func (ap *AudioPlayer) Stop() {
	ap.quitOnce.Do(func() { close(ap.quit) })
}

func (ap *AudioPlayer) renderIfChanged() {
	order, row := ap.player.CurrentTableIndex(), ap.player.CurrentRow()
	if order == ap.lastOrder && row == ap.lastRow {
		return
	}
	ap.lastOrder, ap.lastRow = order, row

	fmt.Printf("%s %02X %s %02X/%02X %s %02d %s %3d\n",
		blue("row"), row, blue("pat"), order, len(ap.song.Orders),
		blue("speed"), ap.player.Speed(), blue("bpm"), ap.player.Tempo())

	for i := -patternRowsBefore; i <= patternRowsAfter; i++ {
		ap.renderRow(order, row+i, i == 0)
	}
	fmt.Print(escape + fmt.Sprintf("%dF", patternRowsBefore+patternRowsAfter+2))
}

func (ap *AudioPlayer) renderRow(order, row int, current bool) {
	if current {
		fmt.Print(">>> ")
	} else {
		fmt.Print("    ")
	}
	maxCh := ap.song.Channels
	if maxCh > 4 {
		maxCh = 4
	}
	for ch := 0; ch < maxCh; ch++ {
		nd, ok := ap.player.DisplayNoteAt(order, row, ch)
		if !ok {
			continue
		}
		fmt.Print(white("%s", nd.NoteName), " ", cyan("%2X", nd.Instrument), " ",
			magenta("%X", nd.EffectKind), yellow("%02X", nd.EffectI1))
		if ch < maxCh-1 {
			fmt.Print("|")
		}
	}
	if current {
		fmt.Print(" <<<")
	}
	fmt.Println()
}
