// Command umodwav renders a song from a UMOD pack to a WAVE file
// instead of a live audio device.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/umod-audio/umod"
	"github.com/umod-audio/umod/wav"
)

var (
	flagHz   = flag.Int("hz", 44100, "output sample rate")
	flagSong = flag.Int("song", 0, "song index to render")
	flagOut  = flag.String("wav", "", "output WAVE file (required)")
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("umodwav: ")
	flag.Parse()

	if len(flag.Args()) == 0 {
		log.Fatal("missing pack filename")
	}
	if *flagOut == "" {
		log.Fatal("-wav is required")
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}

	const songChannels = 8
	const sfxChannels = 4

	eng := umod.NewEngine(songChannels, sfxChannels)
	eng.Init(uint32(*flagHz))
	if err := eng.LoadPack(data); err != nil {
		log.Fatal(err)
	}
	if err := eng.Play(*flagSong); err != nil {
		log.Fatal(err)
	}

	wavF, err := os.Create(*flagOut)
	if err != nil {
		log.Fatal(err)
	}
	defer wavF.Close()

	w, err := wav.NewWriter(wavF, *flagHz)
	if err != nil {
		log.Fatal(err)
	}

	const bufFrames = 4096
	left := make([]int8, bufFrames)
	right := make([]int8, bufFrames)

	for eng.State() == umod.SongPlaying {
		if err := eng.Mix(left, right); err != nil {
			log.Fatal(err)
		}
		if err := w.WriteFrame(left, right); err != nil {
			log.Fatal(err)
		}
	}

	if _, err := w.Finish(); err != nil {
		log.Fatal(err)
	}
}
