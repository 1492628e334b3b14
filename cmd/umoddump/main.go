// Command umoddump prints a read-only summary of a UMOD pack's songs,
// patterns, and instruments, without running the playback engine.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/umod-audio/umod"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("umoddump: ")

	if len(os.Args) <= 1 {
		log.Fatal("missing pack filename")
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}

	pack, err := umod.LoadPack(data)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(headingStyle.Render(fmt.Sprintf("%s", os.Args[1])))
	fmt.Printf("%s %d  %s %d  %s %d\n\n",
		labelStyle.Render("songs"), pack.NumSongs(),
		labelStyle.Render("patterns"), pack.NumPatterns(),
		labelStyle.Render("instruments"), pack.NumInstruments())

	for i := 0; i < pack.NumSongs(); i++ {
		si, err := pack.SongIndices(i)
		if err != nil {
			log.Printf("song %d: %v", i, err)
			continue
		}
		fmt.Println(headingStyle.Render(fmt.Sprintf("song %d", i)))
		fmt.Printf("  %s %d\n", labelStyle.Render("length"), len(si.Patterns))
		fmt.Printf("  %s %v\n", labelStyle.Render("pattern order"), si.Patterns)
	}

	fmt.Println()
	for i := 0; i < pack.NumPatterns(); i++ {
		p, err := pack.PatternBytes(i)
		if err != nil {
			log.Printf("pattern %d: %v", i, err)
			continue
		}
		fmt.Printf("%s %3d  %s %d  %s %d\n",
			labelStyle.Render("pattern"), i,
			labelStyle.Render("channels"), p.Channels,
			labelStyle.Render("rows"), p.Rows)
	}

	fmt.Println()
	for i := 0; i < pack.NumInstruments(); i++ {
		inst, err := pack.Instrument(i)
		if err != nil {
			log.Printf("instrument %d: %v", i, err)
			continue
		}
		fmt.Printf("%s %3d  %s %8d  %s %8d-%d  %s %6d Hz  %s %3d  %s %2d\n",
			labelStyle.Render("instrument"), i,
			labelStyle.Render("size"), inst.Size,
			labelStyle.Render("loop"), inst.LoopStart, inst.LoopEnd,
			labelStyle.Render("freq"), inst.DefaultFrequency,
			labelStyle.Render("vol"), inst.Volume,
			labelStyle.Render("finetune"), inst.Finetune)
	}
}
