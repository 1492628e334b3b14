// Package reverb is an optional post-processing stage for cmd/umodplay.
// It sits strictly outside the engine: Engine.Mix performs no I/O and
// applies no post-processing, so any effect applied on top of its
// output lives at the tool boundary instead. It operates directly on the engine's native
// interleaved int8 stereo frames, rather than upconverting to a wider
// sample type first.
package reverb

// Reverber incrementally feeds interleaved int8 stereo frames through an
// effect and reads processed frames back out, decoupled from the
// engine's mix buffer size.
type Reverber interface {
	// InputSamples feeds in's samples in and returns how many were
	// accepted (less than len(in) if the internal buffer is full).
	InputSamples(in []int8) int
	// GetAudio copies up to len(out) processed samples into out and
	// returns how many were written.
	GetAudio(out []int8) int
}

// PassThrough is a Reverber that buffers and returns audio unchanged, a
// modulo-indexed ring buffer used when reverb is disabled but the
// caller still wants a uniform two-stage pipeline.
type PassThrough struct {
	buf               []int8
	head, tail, count int
}

var _ Reverber = (*PassThrough)(nil)

// NewPassThrough allocates a ring buffer holding up to bufSize samples.
func NewPassThrough(bufSize int) *PassThrough {
	return &PassThrough{buf: make([]int8, bufSize)}
}

func (r *PassThrough) InputSamples(in []int8) int {
	free := len(r.buf) - r.count
	n := len(in)
	if n > free {
		n = free
	}
	for i := 0; i < n; i++ {
		r.buf[r.tail] = in[i]
		r.tail = (r.tail + 1) % len(r.buf)
	}
	r.count += n
	return n
}

func (r *PassThrough) GetAudio(out []int8) int {
	n := len(out)
	if n > r.count {
		n = r.count
	}
	for i := 0; i < n; i++ {
		out[i] = r.buf[r.head]
		r.head = (r.head + 1) % len(r.buf)
	}
	r.count -= n
	return n
}

// Comb is an incrementally-fed comb-filter reverb: each sample is
// echoed back, attenuated by decay, delayMs later. The echo is summed
// in a wider intermediate type and clamped back to int8 so a loud
// source plus its echo cannot wrap around the narrow sample range.
type Comb struct {
	buf           []int8
	delaySamples  int // stereo sample pairs, in interleaved sample units
	decay         float32
	readPos       int
	writePos      int
	pendingEchoAt int
}

var _ Reverber = (*Comb)(nil)

// NewComb builds a Comb filter with the given decay (0-1) and delay in
// milliseconds at sampleRate.
func NewComb(initialCapacityPairs int, decay float32, delayMs, sampleRate int) *Comb {
	return &Comb{
		buf:          make([]int8, 0, initialCapacityPairs*2),
		delaySamples: ((delayMs * sampleRate) / 1000) * 2,
		decay:        decay,
	}
}

func (c *Comb) InputSamples(in []int8) int {
	c.buf = append(c.buf, in...)

	for ; c.pendingEchoAt+c.delaySamples < len(c.buf); c.pendingEchoAt++ {
		src := int32(c.buf[c.pendingEchoAt])
		dstIdx := c.pendingEchoAt + c.delaySamples
		echoed := int32(c.buf[dstIdx]) + int32(float32(src)*c.decay)
		c.buf[dstIdx] = clampInt8(echoed)
	}

	return len(in)
}

func (c *Comb) GetAudio(out []int8) int {
	wanted := len(out)
	have := len(c.buf) - c.readPos
	if wanted > have {
		wanted = have
	}
	if wanted > 0 {
		copy(out, c.buf[c.readPos:c.readPos+wanted])
		c.readPos += wanted
	}
	return wanted
}

func clampInt8(v int32) int8 {
	if v < -128 {
		return -128
	}
	if v > 127 {
		return 127
	}
	return int8(v)
}

// FromFlag builds a Reverber from a -reverb flag value: "none", "light",
// "medium", or "silly".
func FromFlag(name string, sampleRate int) (Reverber, error) {
	decay := float32(0.2)
	delayMs := 150
	switch name {
	case "none":
		decay, delayMs = 0, 0
	case "light":
	case "medium":
		decay, delayMs = 0.3, 250
	case "silly":
		decay, delayMs = 0.5, 2500
	default:
		return nil, errUnrecognizedReverb(name)
	}

	if decay == 0 {
		return NewPassThrough(10 * 1024), nil
	}
	return NewComb(10*1024, decay, delayMs, sampleRate), nil
}

type errUnrecognizedReverb string

func (e errUnrecognizedReverb) Error() string {
	return "reverb: unrecognized setting " + string(e)
}
