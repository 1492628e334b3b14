package umod

import "encoding/binary"

// testPackBuilder assembles a synthetic binary pack in memory, for tests
// that need a LoadPack-able byte slice without an offline packer tool.
type testPackBuilder struct {
	songs       [][]uint16
	patterns    []testPattern
	instruments []testInstrument
}

type testPattern struct {
	channels int
	rows     int
	steps    []byte
}

type testInstrument struct {
	size      uint32
	loopStart uint32
	loopEnd   uint32
	freq      uint32
	volume    byte
	finetune  byte
	data      []byte
}

func (b *testPackBuilder) addSong(patternIndices []uint16) int {
	b.songs = append(b.songs, patternIndices)
	return len(b.songs) - 1
}

func (b *testPackBuilder) addPattern(channels, rows int, steps []byte) int {
	b.patterns = append(b.patterns, testPattern{channels: channels, rows: rows, steps: steps})
	return len(b.patterns) - 1
}

func (b *testPackBuilder) addInstrument(size, loopStart, loopEnd, freq uint32, volume, finetune byte, data []byte) int {
	b.instruments = append(b.instruments, testInstrument{
		size: size, loopStart: loopStart, loopEnd: loopEnd, freq: freq,
		volume: volume, finetune: finetune, data: data,
	})
	return len(b.instruments) - 1
}

// build serializes the accumulated records into a UMOD pack byte slice.
func (b *testPackBuilder) build() []byte {
	var songBlobs, patternBlobs, instrumentBlobs [][]byte

	for _, s := range b.songs {
		blob := make([]byte, 2+2*len(s))
		binary.LittleEndian.PutUint16(blob, uint16(len(s)))
		for i, idx := range s {
			binary.LittleEndian.PutUint16(blob[2+2*i:], idx)
		}
		songBlobs = append(songBlobs, blob)
	}

	for _, p := range b.patterns {
		blob := make([]byte, 2+len(p.steps))
		blob[0] = byte(p.channels)
		blob[1] = byte(p.rows)
		copy(blob[2:], p.steps)
		patternBlobs = append(patternBlobs, blob)
	}

	for _, inst := range b.instruments {
		hdr := make([]byte, 18)
		binary.LittleEndian.PutUint32(hdr[0:], inst.size)
		binary.LittleEndian.PutUint32(hdr[4:], inst.loopStart)
		binary.LittleEndian.PutUint32(hdr[8:], inst.loopEnd)
		binary.LittleEndian.PutUint32(hdr[12:], inst.freq)
		hdr[16] = inst.volume
		hdr[17] = inst.finetune
		blob := append(hdr, inst.data...)
		instrumentBlobs = append(instrumentBlobs, blob)
	}

	headerSize := packHeaderSize
	offsetsSize := 4 * (len(songBlobs) + len(patternBlobs) + len(instrumentBlobs))
	cursor := headerSize + offsetsSize

	songOffsets := make([]uint32, len(songBlobs))
	for i, blob := range songBlobs {
		songOffsets[i] = uint32(cursor)
		cursor += len(blob)
	}
	patternOffsets := make([]uint32, len(patternBlobs))
	for i, blob := range patternBlobs {
		patternOffsets[i] = uint32(cursor)
		cursor += len(blob)
	}
	instrumentOffsets := make([]uint32, len(instrumentBlobs))
	for i, blob := range instrumentBlobs {
		instrumentOffsets[i] = uint32(cursor)
		cursor += len(blob)
	}

	out := make([]byte, cursor)
	copy(out[0:4], packMagic)
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(songBlobs)))
	binary.LittleEndian.PutUint32(out[8:12], uint32(len(patternBlobs)))
	binary.LittleEndian.PutUint32(out[12:16], uint32(len(instrumentBlobs)))

	off := headerSize
	for _, o := range songOffsets {
		binary.LittleEndian.PutUint32(out[off:], o)
		off += 4
	}
	for _, o := range patternOffsets {
		binary.LittleEndian.PutUint32(out[off:], o)
		off += 4
	}
	for _, o := range instrumentOffsets {
		binary.LittleEndian.PutUint32(out[off:], o)
		off += 4
	}

	for i, blob := range songBlobs {
		copy(out[songOffsets[i]:], blob)
	}
	for i, blob := range patternBlobs {
		copy(out[patternOffsets[i]:], blob)
	}
	for i, blob := range instrumentBlobs {
		copy(out[instrumentOffsets[i]:], blob)
	}

	return out
}

// encodeStep appends one pattern step (flags + present fields) to steps,
// mirroring the compact row encoding decodeRow expects.
func encodeStep(steps []byte, hasInstrument bool, instrument uint16, hasNote bool, note byte, hasVolume bool, volume byte, hasEffect bool, effect Effect, params byte) []byte {
	var flags byte
	if hasInstrument {
		flags |= flagHasInstrument
	}
	if hasNote {
		flags |= flagHasNote
	}
	if hasVolume {
		flags |= flagHasVolume
	}
	if hasEffect {
		flags |= flagHasEffect
	}
	steps = append(steps, flags)
	if hasInstrument {
		steps = append(steps, byte(instrument), byte(instrument>>8))
	}
	if hasNote {
		steps = append(steps, note)
	}
	if hasVolume {
		steps = append(steps, volume)
	}
	if hasEffect {
		steps = append(steps, byte(effect), params)
	}
	return steps
}

// emptyStep appends a no-op step (flags == 0) for one channel's slot.
func emptyStep(steps []byte) []byte {
	return append(steps, 0)
}

// sampleData builds an instrument waveform of n bytes plus the trailing
// extraSamples pad, filled with a simple repeating ramp.
func sampleData(n int) []byte {
	out := make([]byte, n+extraSamples)
	for i := range out {
		out[i] = byte(i % 127)
	}
	return out
}
