// Package wav writes a WAVE file incrementally, without needing to know
// the total sample count up front: the RIFF and data chunk sizes are
// patched in on Finish via Seek.
// See http://soundfile.sapp.org/doc/WaveFormat/ for format documentation.
package wav

import (
	"encoding/binary"
	"io"
)

// PCM is the WAVE format tag for uncompressed linear PCM.
const PCM = 1

// Writer streams stereo 8-bit signed PCM frames (the engine's native
// output format) to an io.WriteSeeker.
type Writer struct {
	WS io.WriteSeeker
}

type format struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// WriteFrame writes one block of interleaved stereo frames. left and
// right must be the same length; 8-bit PCM WAVE data is conventionally
// stored unsigned, so each signed sample is offset by 128 on the way
// out.
func (w *Writer) WriteFrame(left, right []int8) error {
	buf := make([]byte, 2*len(left))
	for i := range left {
		buf[2*i] = byte(int(left[i]) + 128)
		buf[2*i+1] = byte(int(right[i]) + 128)
	}
	_, err := w.WS.Write(buf)
	return err
}

// Finish patches the RIFF and data chunk sizes now that the total
// length is known, and returns the final file length.
func (w *Writer) Finish() (int64, error) {
	wlen, err := w.WS.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}

	if offset, err := w.WS.Seek(4, io.SeekStart); offset != 4 || err != nil {
		return 0, err
	}
	if err := binary.Write(w.WS, binary.LittleEndian, int32(wlen-8)); err != nil {
		return 0, err
	}

	if offset, err := w.WS.Seek(40, io.SeekStart); offset != 40 || err != nil {
		return 0, err
	}
	if err := binary.Write(w.WS, binary.LittleEndian, int32(wlen-44)); err != nil {
		return 0, err
	}

	return wlen, nil
}

// NewWriter writes the RIFF/WAVE header (with placeholder sizes) for an
// 8-bit stereo PCM stream at sampleRate and returns a Writer ready for
// WriteFrame calls.
func NewWriter(ws io.WriteSeeker, sampleRate int) (*Writer, error) {
	w := &Writer{WS: ws}

	if _, err := ws.Write([]byte("RIFF")); err != nil {
		return nil, err
	}
	if err := binary.Write(ws, binary.LittleEndian, int32(0)); err != nil {
		return nil, err
	}
	if _, err := ws.Write([]byte("WAVE")); err != nil {
		return nil, err
	}

	if _, err := ws.Write([]byte("fmt ")); err != nil {
		return nil, err
	}
	if err := binary.Write(ws, binary.LittleEndian, int32(16)); err != nil {
		return nil, err
	}
	f := format{AudioFormat: PCM, Channels: 2, SampleRate: uint32(sampleRate), BitsPerSample: 8}
	f.ByteRate = uint32(sampleRate) * 2
	f.BlockAlign = 2
	if err := binary.Write(ws, binary.LittleEndian, f); err != nil {
		return nil, err
	}

	if _, err := ws.Write([]byte("data")); err != nil {
		return nil, err
	}
	if err := binary.Write(ws, binary.LittleEndian, int32(0)); err != nil {
		return nil, err
	}

	return w, nil
}
