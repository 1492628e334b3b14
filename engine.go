// Package umod implements a tracker-music playback and sound-effect
// engine for resource-constrained targets. It consumes a pre-built
// binary pack (§6 of the design notes) and produces a continuous
// stream of 8-bit signed stereo PCM.
package umod

// Engine ties together the pack reader, the fixed-point mixer, the MOD
// song engine, and the SFX channel manager. It owns no goroutines and
// performs no I/O; Mix is safe to call from a real-time audio callback.
//
// An Engine is not safe for concurrent use: the caller must not invoke
// control methods (Play, Stop, PlaySFX, ...) concurrently with Mix.
type Engine struct {
	sampleRate uint32
	constant   uint64

	mixer *Mixer
	pack  *Pack

	songChannelCount int
	modChannels      []modChannel

	song songRuntime
	sfx  *sfxManager
}

// NewEngine allocates an engine with songChannels MOD channels and
// sfxChannels SFX channels, for songChannels+sfxChannels total mixer
// rows. It must be Init'd with a sample rate before Play or Mix will
// do anything but return ErrNotInitialized.
func NewEngine(songChannels, sfxChannels int) *Engine {
	total := songChannels + sfxChannels
	e := &Engine{
		mixer:            NewMixer(total),
		songChannelCount: songChannels,
		modChannels:      make([]modChannel, songChannels),
	}
	for i := range e.modChannels {
		e.modChannels[i] = modChannel{mixerCh: e.mixer.Ch(i), instrument: -1, panning: 128}
	}
	e.sfx = newSFXManager(e.mixer, songChannels, sfxChannels)
	e.song.state = SongStopped
	return e
}

// Init sets the output sample rate. It may be called before or
// independently of LoadPack, and again later to change rate (e.g. a
// device reopen); it does not touch song or SFX state.
func (e *Engine) Init(sampleRate uint32) {
	e.sampleRate = sampleRate
	e.constant = convertConstant(sampleRate)
	e.sfx.sampleRate = sampleRate
}

// LoadPack parses and installs a new pack. The caller must keep data
// alive for as long as the Engine uses it; pattern bytes are read from
// it in place, while instrument sample data is copied out each time a
// row selects an instrument.
func (e *Engine) LoadPack(data []byte) error {
	p, err := LoadPack(data)
	if err != nil {
		return err
	}
	e.Stop()
	e.pack = p
	return nil
}

// Mix renders len(left) (== len(right)) frames of stereo output,
// interleaving tick processing and buffer fills: each inner iteration
// mixes up to min(remaining, samples_left_for_tick) frames, then
// dispatches a tick if the song is playing. While the song is paused
// or stopped, song channels are excluded from the mix so only SFX
// channels (if any) are heard.
func (e *Engine) Mix(left, right []int8) error {
	if e.sampleRate == 0 {
		return ErrNotInitialized
	}
	n := len(left)
	if len(right) < n {
		n = len(right)
	}

	pos := 0
	for pos < n {
		if e.song.state == SongPlaying && e.song.samplesLeftForTick == 0 {
			e.tick()
			e.song.samplesLeftForTick = e.song.samplesPerTick
			if e.song.samplesLeftForTick <= 0 {
				e.song.samplesLeftForTick = 1
			}
		}

		chunk := n - pos
		if e.song.state == SongPlaying && e.song.samplesLeftForTick < chunk {
			chunk = e.song.samplesLeftForTick
		}

		from := 0
		if e.song.state != SongPlaying {
			from = e.songChannelCount
		}

		e.mixer.Mix(left[pos:pos+chunk], right[pos:pos+chunk], from)
		pos += chunk
		if e.song.state == SongPlaying {
			e.song.samplesLeftForTick -= chunk
		}
	}
	return nil
}

// PlaySFX plays instrument instrumentIndex on the next available SFX
// channel, per the selection/stealing policy in §4.5.
func (e *Engine) PlaySFX(instrumentIndex int, loopMode LoopMode) (uint32, error) {
	if e.pack == nil {
		return InvalidHandle, ErrNotInitialized
	}
	return e.sfx.Play(e.pack, instrumentIndex, loopMode)
}

// StopSFX stops the SFX instance identified by handle.
func (e *Engine) StopSFX(handle uint32) error { return e.sfx.Stop(handle) }

// IsPlayingSFX reports whether handle still refers to a live,
// currently-sounding SFX instance.
func (e *Engine) IsPlayingSFX(handle uint32) bool { return e.sfx.IsPlaying(handle) }

// ReleaseSFX marks handle's channel low-priority, so a future PlaySFX
// call may steal it once all channels are otherwise busy.
func (e *Engine) ReleaseSFX(handle uint32) error { return e.sfx.Release(handle) }

// SetSFXVolume sets the volume (0-255, clamped) of the SFX instance
// identified by handle.
func (e *Engine) SetSFXVolume(handle uint32, v int) error { return e.sfx.SetVolume(handle, v) }

// SetSFXPanning sets the panning (0-255, clamped) of the SFX instance
// identified by handle.
func (e *Engine) SetSFXPanning(handle uint32, p int) error { return e.sfx.SetPanning(handle, p) }

// SetSFXMasterVolume sets the master volume (0-256, clamped) applied to
// every SFX channel.
func (e *Engine) SetSFXMasterVolume(v int) { e.sfx.SetMasterVolume(v) }

// SetSFXFrequencyMultiplier rescales the SFX instance's playback
// frequency by a 16.16 fixed-point multiplier of its instrument's
// default frequency, without resetting its sample position.
func (e *Engine) SetSFXFrequencyMultiplier(handle uint32, mult uint32) error {
	return e.sfx.SetFrequencyMultiplier(handle, mult)
}
