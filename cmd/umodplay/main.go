// Command umodplay plays a song from a UMOD pack through the default
// audio device, with a small live terminal display.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/umod-audio/umod"
)

var (
	flagHz     = flag.Int("hz", 44100, "output sample rate")
	flagSong   = flag.Int("song", 0, "song index to play")
	flagReverb = flag.String("reverb", "none", "reverb amount: none, light, medium, silly")
	flagNoUI   = flag.Bool("no-ui", false, "disable the live terminal display")
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("umodplay: ")
	flag.Parse()

	if len(flag.Args()) == 0 {
		log.Fatal("missing pack filename")
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

	ap, err := newAudioPlayer(eng, *flagHz, *flagReverb, *flagNoUI)
	if err != nil {
		log.Fatal(err)
	}

	defer ap.shutdown()
	if err := ap.run(); err != nil {
		log.Fatal(err)
	}
}
