package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"atomicgo.dev/keyboard"
	"atomicgo.dev/keyboard/keys"
	"github.com/fatih/color"
	"github.com/gordonklaus/portaudio"

	"github.com/umod-audio/umod"
	"github.com/umod-audio/umod/internal/reverb"
)

var (
	blue   = color.New(color.FgHiBlue).SprintFunc()
	green  = color.New(color.FgGreen).SprintfFunc()
	yellow = color.New(color.FgYellow).SprintfFunc()
)

const (
	escape     = "\x1b["
	hideCursor = escape + "?25l"
	showCursor = escape + "?25h"
)

const audioBufferFrames = 1024

// audioPlayer drives a live umod.Engine through portaudio, with a
// one-line status display and keyboard controls: space to pause/
// resume, q/Esc/Ctrl-C to quit.
type audioPlayer struct {
	engine     *umod.Engine
	sampleRate int
	reverb     reverb.Reverber
	stream     *portaudio.Stream

	leftScratch, rightScratch []int8
	reverbScratch             []int8

	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	stopOnce       sync.Once
	terminated     bool
	keyboardDoneCh chan struct{}

	lastPattern, lastRow int
}

func newAudioPlayer(eng *umod.Engine, hz int, reverbFlag string, noUI bool) (*audioPlayer, error) {
	rv, err := reverb.FromFlag(reverbFlag, hz)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	ap := &audioPlayer{
		engine:         eng,
		sampleRate:     hz,
		reverb:         rv,
		leftScratch:    make([]int8, audioBufferFrames),
		rightScratch:   make([]int8, audioBufferFrames),
		reverbScratch:  make([]int8, audioBufferFrames*2),
		ctx:            ctx,
		cancel:         cancel,
		keyboardDoneCh: make(chan struct{}),
		lastPattern:    -1,
	}
	if noUI {
		ap.keyboardDoneCh = nil
	}
	return ap, nil
}

func (ap *audioPlayer) run() error {
	if err := portaudio.Initialize(); err != nil {
		return err
	}

	stream, err := portaudio.OpenDefaultStream(0, 2, float64(ap.sampleRate), audioBufferFrames, ap.streamCallback)
	if err != nil {
		return err
	}
	ap.stream = stream
	if err := stream.Start(); err != nil {
		stream.Close()
		return err
	}

	ap.setupSignalHandler()
	ap.setupKeyboard()

	fmt.Print(hideCursor)
	for ap.engine.State() != umod.SongStopped && ap.ctx.Err() == nil {
		if ap.keyboardDoneCh != nil { // nil when -no-ui is set
			ap.renderStatus()
		}
		time.Sleep(50 * time.Millisecond)
	}
	fmt.Print(showCursor)

	if ap.keyboardDoneCh != nil {
		select {
		case <-ap.keyboardDoneCh:
		case <-time.After(500 * time.Millisecond):
		}
	}
	ap.wg.Wait()
	return nil
}

// streamCallback is invoked by portaudio on its own audio thread with
// an interleaved stereo int16 buffer; it must never allocate on the
// steady-state path beyond what the scratch buffers already provide.
func (ap *audioPlayer) streamCallback(out []int16) {
	n := len(out) / 2
	left := ap.leftScratch[:n]
	right := ap.rightScratch[:n]

	if ap.engine.State() == umod.SongPlaying {
		ap.engine.Mix(left, right)
	} else {
		for i := range left {
			left[i], right[i] = 0, 0
		}
	}

	interleaved := ap.reverbScratch[:n*2]
	for i := 0; i < n; i++ {
		interleaved[2*i] = left[i]
		interleaved[2*i+1] = right[i]
	}
	ap.reverb.InputSamples(interleaved)

	processed := interleaved[:n*2]
	got := ap.reverb.GetAudio(processed)
	for i := 0; i < got; i++ {
		out[i] = int16(processed[i]) << 8
	}
	for i := got; i < len(out); i++ {
		out[i] = 0
	}
}

func (ap *audioPlayer) setupSignalHandler() {
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, syscall.SIGINT)

	ap.wg.Add(1)
	go func() {
		defer ap.wg.Done()
		select {
		case <-ap.ctx.Done():
		case <-sigch:
			ap.shutdown()
		}
	}()
}

func (ap *audioPlayer) setupKeyboard() {
	if ap.keyboardDoneCh == nil {
		return
	}
	ap.wg.Add(1)
	go func() {
		defer ap.wg.Done()
		keyboard.Listen(func(key keys.Key) (stop bool, err error) {
			switch {
			case key.Code == keys.CtrlC || key.Code == keys.Escape:
				ap.shutdown()
				return true, nil
			case key.Code == keys.Space:
				if ap.engine.State() == umod.SongPlaying {
					ap.engine.Pause()
				} else {
					ap.engine.Resume()
				}
			case key.Code == keys.RuneKey && len(key.Runes) > 0 && key.Runes[0] == 'q':
				ap.shutdown()
				return true, nil
			}
			return false, nil
		})
		close(ap.keyboardDoneCh)
	}()
}

func (ap *audioPlayer) renderStatus() {
	pattern, row := ap.engine.Position()
	if pattern == ap.lastPattern && row == ap.lastRow {
		return
	}
	ap.lastPattern, ap.lastRow = pattern, row

	speed, samplesPerTick := ap.engine.Speed()
	fmt.Printf("%s %03d %s %02X %s %2d %s %5d\r",
		blue("pattern"), pattern,
		blue("row"), row,
		blue("speed"), speed,
		yellow("spt"), samplesPerTick)
}

func (ap *audioPlayer) shutdown() {
	ap.stopOnce.Do(func() {
		ap.engine.Stop()
		ap.cancel()
		if ap.stream != nil {
			ap.stream.Stop()
			ap.stream.Close()
		}
		if !ap.terminated {
			portaudio.Terminate()
			ap.terminated = true
		}
		fmt.Print(showCursor)
		fmt.Println()
	})
}
