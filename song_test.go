package umod

import "testing"

func newTestEngine(t *testing.T, data []byte) *Engine {
	t.Helper()
	e := NewEngine(4, 2)
	e.Init(44100)
	if err := e.LoadPack(data); err != nil {
		t.Fatalf("LoadPack: %v", err)
	}
	return e
}

// buildTwoPatternSong builds a one-channel pack: pattern 0 plays a note
// on row 0 then PATTERN_BREAK(0) on row 1; pattern 1 plays a different
// note on its single row. The song lists [pattern0, pattern1].
func buildTwoPatternSong() []byte {
	var b testPackBuilder
	b.addInstrument(64, 0, 0, 8363, 255, 0, sampleData(64))

	var steps0 []byte
	steps0 = encodeStep(steps0, true, 0, true, 36, false, 0, false, 0, 0)
	steps0 = encodeStep(steps0, false, 0, false, 0, false, 0, true, EffectPatternBreak, 0)
	p0 := b.addPattern(1, 2, steps0)

	var steps1 []byte
	steps1 = encodeStep(steps1, false, 0, true, 24, false, 0, false, 0, 0)
	p1 := b.addPattern(1, 1, steps1)

	b.addSong([]uint16{uint16(p0), uint16(p1)})
	return b.build()
}

func TestPlayZeroLengthSongStopsImmediately(t *testing.T) {
	var b testPackBuilder
	b.addInstrument(16, 0, 0, 8363, 255, 0, sampleData(16))
	b.addSong(nil)
	p := b.addPattern(1, 1, encodeStep(nil, false, 0, true, 0, false, 0, false, 0, 0))
	_ = p
	data := b.build()

	e := newTestEngine(t, data)
	if err := e.Play(0); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if e.State() != SongStopped {
		t.Fatalf("state = %v, want SongStopped for a zero-length song", e.State())
	}
}

func TestPauseResumeStateMachine(t *testing.T) {
	e := newTestEngine(t, buildTwoPatternSong())
	if err := e.Play(0); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if err := e.Resume(); err == nil {
		t.Fatal("Resume from Playing should fail")
	}
	if err := e.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if e.State() != SongPaused {
		t.Fatalf("state = %v, want SongPaused", e.State())
	}
	if err := e.Pause(); err == nil {
		t.Fatal("Pause from Paused should fail")
	}
	if err := e.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if e.State() != SongPlaying {
		t.Fatalf("state = %v, want SongPlaying", e.State())
	}
}

func TestStopIsIdempotent(t *testing.T) {
	e := newTestEngine(t, buildTwoPatternSong())
	e.Play(0)
	e.Stop()
	e.Stop()
	if e.State() != SongStopped {
		t.Fatalf("state = %v, want SongStopped", e.State())
	}
}

// TestPatternBreakAdvancesAndSeeks drives the tick loop across a
// PATTERN_BREAK row and checks it lands on the next pattern at the
// requested row.
func TestPatternBreakAdvancesAndSeeks(t *testing.T) {
	e := newTestEngine(t, buildTwoPatternSong())
	if err := e.Play(0); err != nil {
		t.Fatalf("Play: %v", err)
	}

	// First tick() call (the one the first Mix call would make) decodes row 0;
	// five more intra-row ticks; the 7th decodes row 1 (PATTERN_BREAK)
	// and performs the jump+seek in the same call.
	for i := 0; i < 7; i++ {
		e.tick()
	}

	if e.song.currentPattern != 1 {
		t.Fatalf("currentPattern = %d, want 1", e.song.currentPattern)
	}
	if e.song.currentRow != 0 {
		t.Fatalf("currentRow = %d, want 0", e.song.currentRow)
	}
}

func TestJumpToPattern(t *testing.T) {
	var b testPackBuilder
	b.addInstrument(64, 0, 0, 8363, 255, 0, sampleData(64))

	var steps0 []byte
	steps0 = encodeStep(steps0, true, 0, true, 36, false, 0, true, EffectJumpToPattern, 1)
	p0 := b.addPattern(1, 1, steps0)

	var steps1 []byte
	steps1 = encodeStep(steps1, false, 0, true, 24, false, 0, false, 0, 0)
	p1 := b.addPattern(1, 1, steps1)

	b.addSong([]uint16{uint16(p0), uint16(p1)})
	data := b.build()

	e := newTestEngine(t, data)
	if err := e.Play(0); err != nil {
		t.Fatalf("Play: %v", err)
	}
	e.tick()

	if e.song.currentPattern != 1 || e.song.currentRow != 0 {
		t.Fatalf("after jump: pattern=%d row=%d, want 1/0", e.song.currentPattern, e.song.currentRow)
	}
}

// TestDecodeRowConsumesExcessPatternChannels builds a pattern with more
// channels than the engine has MOD channels for and checks that row 1
// decodes the correct note on channel 0 — if decodeRow stopped reading
// the step stream at songChannelCount instead of patternChannels, the
// unread bytes from row 0's excess channels would leave the cursor
// mid-row and row 1 would decode garbage.
func TestDecodeRowConsumesExcessPatternChannels(t *testing.T) {
	var b testPackBuilder
	b.addInstrument(64, 0, 0, 8363, 255, 0, sampleData(64))

	const patternChannels = 6 // NewEngine below only allocates 4 song channels

	var steps []byte
	// Row 0: channel 0 gets a note + instrument; channels 1-5 (including
	// the two beyond songChannelCount) all carry populated fields so
	// their bytes must be consumed even though 4/5 are out of range.
	steps = encodeStep(steps, true, 0, true, 36, false, 0, false, 0, 0)
	steps = encodeStep(steps, false, 0, true, 30, true, 40, false, 0, 0)
	steps = encodeStep(steps, false, 0, true, 31, false, 0, false, 0, 0)
	steps = encodeStep(steps, false, 0, true, 32, true, 50, true, EffectSetPanning, 10)
	steps = encodeStep(steps, false, 0, true, 33, false, 0, false, 0, 0)
	steps = encodeStep(steps, false, 0, true, 34, true, 60, false, 0, 0)

	// Row 1: only channel 0 carries a note; verifying it decodes to the
	// right value confirms the cursor landed exactly at row 1's start.
	steps = encodeStep(steps, false, 0, true, 24, false, 0, false, 0, 0)
	for c := 1; c < patternChannels; c++ {
		steps = emptyStep(steps)
	}

	p := b.addPattern(patternChannels, 2, steps)
	b.addSong([]uint16{uint16(p)})
	data := b.build()

	e := newTestEngine(t, data)
	if err := e.Play(0); err != nil {
		t.Fatalf("Play: %v", err)
	}

	// The default speed is 6 ticks/row: the 1st tick() call decodes row
	// 0, the next 5 are intra-row, and the 7th decodes row 1.
	for i := 0; i < 7; i++ {
		e.tick()
	}

	if got := e.modChannels[0].currentNote; got != 24 {
		t.Fatalf("channel 0 row 1 note = %d, want 24 (cursor desynced by excess pattern channels)", got)
	}
}

func TestSetSpeedChangesTicksPerRow(t *testing.T) {
	var b testPackBuilder
	b.addInstrument(64, 0, 0, 8363, 255, 0, sampleData(64))
	var steps []byte
	steps = encodeStep(steps, false, 0, true, 24, false, 0, true, EffectSetSpeed, 3)
	p := b.addPattern(1, 1, steps)
	b.addSong([]uint16{uint16(p)})
	data := b.build()

	e := newTestEngine(t, data)
	e.Play(0)
	e.tick()

	ticksPerRow, _ := e.Speed()
	if ticksPerRow != 3 {
		t.Fatalf("songSpeed = %d, want 3", ticksPerRow)
	}
}

func TestSeekRowSkipsFieldsWithoutApplying(t *testing.T) {
	e := newTestEngine(t, buildTwoPatternSong())
	e.Play(0)
	if err := e.loadCurrentPattern(); err != nil {
		t.Fatalf("loadCurrentPattern: %v", err)
	}
	e.seekRow(1)
	if e.song.currentRow != 1 {
		t.Fatalf("currentRow = %d, want 1", e.song.currentRow)
	}
	// Cursor should now be positioned right at row 1's step, ready for a
	// normal decodeRow call without re-reading row 0.
	jumpPattern, _, hasBreak := e.decodeRow()
	if !hasBreak {
		t.Fatal("expected row 1's PATTERN_BREAK to be read after seekRow")
	}
	_ = jumpPattern
}
