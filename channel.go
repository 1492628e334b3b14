package umod

// finetunedPeriodTable holds Amiga periods for octave 0, one row per
// finetune value (0-15), one column per note within the octave
// (C through B). Periods for higher octaves are this table's value
// right-shifted by the octave number.
var finetunedPeriodTable = [16][12]uint16{
	{1712, 1616, 1524, 1440, 1356, 1280, 1208, 1140, 1076, 1016, 960, 907},
	{1700, 1604, 1514, 1430, 1348, 1274, 1202, 1134, 1070, 1010, 954, 900},
	{1688, 1592, 1504, 1418, 1340, 1264, 1194, 1126, 1064, 1004, 948, 894},
	{1676, 1582, 1492, 1408, 1330, 1256, 1184, 1118, 1056, 996, 940, 888},
	{1664, 1570, 1482, 1398, 1320, 1246, 1176, 1110, 1048, 990, 934, 882},
	{1652, 1558, 1472, 1388, 1310, 1238, 1168, 1102, 1040, 982, 926, 874},
	{1640, 1548, 1460, 1378, 1302, 1228, 1160, 1094, 1032, 974, 920, 868},
	{1628, 1536, 1450, 1368, 1292, 1220, 1150, 1086, 1026, 968, 914, 862},
	{1814, 1712, 1616, 1524, 1440, 1356, 1280, 1208, 1140, 1076, 1016, 960},
	{1800, 1700, 1604, 1514, 1430, 1350, 1272, 1202, 1134, 1070, 1010, 954},
	{1788, 1688, 1592, 1504, 1418, 1340, 1264, 1194, 1126, 1064, 1004, 948},
	{1774, 1676, 1582, 1492, 1408, 1330, 1256, 1184, 1118, 1056, 996, 940},
	{1762, 1664, 1570, 1482, 1398, 1320, 1246, 1176, 1110, 1048, 988, 934},
	{1750, 1652, 1558, 1472, 1388, 1310, 1238, 1168, 1102, 1040, 982, 926},
	{1736, 1640, 1548, 1460, 1378, 1302, 1228, 1160, 1094, 1032, 974, 920},
	{1724, 1628, 1536, 1450, 1368, 1292, 1220, 1150, 1086, 1026, 968, 914},
}

// amigaClockNTSC is the Amiga NTSC color clock, twice the 7159090.5 Hz
// NTSC reference frequency mod playback periods are defined against.
const amigaClockNTSC = 14318181

// convertConstant precomputes the sample-rate-dependent multiplier used
// to turn an Amiga period into a 32.32 fixed-point sample tick period.
func convertConstant(sampleRate uint32) uint64 {
	return (uint64(sampleRate) << 34) / amigaClockNTSC
}

// amigaPeriod looks up the octave-0 finetuned period for note%12 and
// shifts it down by the note's octave (note/12), giving the classic
// Amiga period value for this note and finetune.
func amigaPeriod(note, finetune int) uint64 {
	if note < 0 {
		note = 0
	}
	octave := note / 12
	within := note % 12
	ft := finetune & 0xF
	p := uint64(finetunedPeriodTable[ft][within])
	return p >> uint(octave)
}

// periodFromAmiga converts an Amiga period into a 32.32 sample tick
// period using a precomputed convert constant.
func periodFromAmiga(ap, constant uint64) uint64 {
	return ap * constant
}

// sampleTickPeriod is the composition amigaPeriod -> periodFromAmiga,
// the 32.32 fixed-point sample tick period for one note/finetune pair.
func sampleTickPeriod(note, finetune int, constant uint64) uint64 {
	return periodFromAmiga(amigaPeriod(note, finetune), constant)
}

// Waveform table selectors, the low two bits of a vibrato/tremolo
// waveform-effect parameter.
const (
	waveSine = iota
	waveRampDown
	waveSquare
	waveRandom
)

var sineTable = [64]int16{
	0, 25, 50, 74, 98, 120, 142, 162, 180, 197, 212, 225, 236, 244, 250, 254,
	255, 254, 250, 244, 236, 225, 212, 197, 180, 162, 142, 120, 98, 74, 50, 25,
	0, -25, -50, -74, -98, -120, -142, -162, -180, -197, -212, -225, -236, -244, -250, -254,
	-255, -254, -250, -244, -236, -225, -212, -197, -180, -162, -142, -120, -98, -74, -50, -25,
}

var rampTable = [64]int16{
	255, 247, 239, 231, 223, 215, 206, 198, 190, 182, 174, 166, 158, 150, 142, 134,
	125, 117, 109, 101, 93, 85, 77, 69, 61, 53, 45, 36, 28, 20, 12, 4,
	-4, -12, -20, -28, -36, -45, -53, -61, -69, -77, -85, -93, -101, -109, -117, -125,
	-134, -142, -150, -158, -166, -174, -182, -190, -198, -206, -215, -223, -231, -239, -247, -255,
}

var squareTable = [64]int16{
	255, 255, 255, 255, 255, 255, 255, 255, 255, 255, 255, 255, 255, 255, 255, 255,
	255, 255, 255, 255, 255, 255, 255, 255, 255, 255, 255, 255, 255, 255, 255, 255,
	-255, -255, -255, -255, -255, -255, -255, -255, -255, -255, -255, -255, -255, -255, -255, -255,
	-255, -255, -255, -255, -255, -255, -255, -255, -255, -255, -255, -255, -255, -255, -255, -255,
}

// randomTable is generated once from a fixed seed so it is a static
// compile-time-equivalent constant, not a runtime random source: the
// engine's output must stay bit-exact reproducible.
var randomTable = func() [64]int16 {
	var t [64]int16
	state := uint32(0x2545F491)
	for i := range t {
		state = state*1103515245 + 12345
		t[i] = int16((state>>16)%511) - 255
	}
	return t
}()

var waveTables = [4]*[64]int16{&sineTable, &rampTable, &squareTable, &randomTable}

// modChannel holds one MOD channel's effect memory, the per-channel
// state the song engine mutates every row and tick.
type modChannel struct {
	mixerCh *Channel

	currentNote  int
	finetune     int
	amigaPeriod  uint64
	volume       int
	instrument   int
	panning      int
	effect       Effect
	effectParams byte

	arpeggioTick int

	vibratoTick         int
	vibratoSpeed        int
	vibratoDepth        int
	vibratoWaveTable    int
	vibratoNoRetrigger  bool

	tremoloTick        int
	tremoloSpeed       int
	tremoloDepth       int
	tremoloWaveTable   int
	tremoloNoRetrigger bool

	retrigTick int

	portaTargetAmigaPeriod uint64
	portaSpeed             int

	hasDelayed           bool
	delayedTicks         int
	delayedNote          int
	hasDelayedNote       bool
	delayedVolume        int
	hasDelayedVolume     bool
	delayedInstrument    int
	hasDelayedInstrument bool

	sampleOffsetMemory int
}

// reset zeroes a channel's effect memory and stops its mixer row.
func (ch *modChannel) reset() {
	mc := ch.mixerCh
	*ch = modChannel{mixerCh: mc, instrument: -1, panning: 128}
	mc.Stop()
	mc.SetPanning(128)
}

// setNote recomputes the channel's period from note/finetune and
// resets vibrato phase.
func (ch *modChannel) setNote(constant uint64, note int) {
	ch.currentNote = note
	ch.amigaPeriod = amigaPeriod(note, ch.finetune)
	ch.vibratoTick = 0
	ch.mixerCh.SetNotePeriod(periodFromAmiga(ch.amigaPeriod, constant))
}

// setPortaTarget primes a PORTA_TO_NOTE/PORTA_VOL_SLIDE target without
// retriggering the currently playing note.
func (ch *modChannel) setPortaTarget(note int) {
	ch.currentNote = note
	ch.portaTargetAmigaPeriod = amigaPeriod(note, ch.finetune)
}

// setVolume sets the channel volume (0-255, clamped) and pushes it to
// the mixer row.
func (ch *modChannel) setVolume(v int) {
	ch.volume = clampInt(v, 0, 255)
	ch.mixerCh.SetVolume(ch.volume)
}

// setInstrument programmes the mixer row with a new instrument and
// caches its finetune for subsequent period computations.
func (ch *modChannel) setInstrument(idx int, finetune int, inst Instrument) {
	ch.instrument = idx
	ch.finetune = finetune
	ch.mixerCh.SetInstrument(inst)
}

// setEffect primes effect memory for the row's effect, applying the
// "effect memory" convention: a per-effect parameter field is only
// overwritten when the row supplies a non-zero value, otherwise the
// previous value for that effect carries over.
func (ch *modChannel) setEffect(constant uint64, eff Effect, params byte, hasNote bool) {
	prevEffect := ch.effect
	ch.effect = eff
	ch.effectParams = params

	switch eff {
	case EffectNone:
		return
	case EffectSetPanning:
		ch.panning = int(params)
		ch.mixerCh.SetPanning(ch.panning)
	case EffectArpeggio:
		ch.arpeggioTick = 0
	case EffectVibrato:
		ch.primeVibrato(params, hasNote)
	case EffectVibratoVolSlide:
		if params != 0 {
			ch.vibratoSpeed = int(params >> 4)
			ch.vibratoDepth = int(params & 0xF)
		}
	case EffectTremolo:
		ch.primeTremolo(params, hasNote)
	case EffectVibratoWaveform:
		ch.vibratoWaveTable = int(params & 0x3)
		ch.vibratoNoRetrigger = params&0x4 != 0
	case EffectTremoloWaveform:
		ch.tremoloWaveTable = int(params & 0x3)
		ch.tremoloNoRetrigger = params&0x4 != 0
	case EffectPortaToNote:
		if params != 0 {
			ch.portaSpeed = int(params)
		}
	case EffectRetrigNote:
		ch.retrigTick = 0
	}

	// Leaving arpeggio restores the note's true period, unless a new
	// note arrived this row. setNote has then already programmed the new
	// period; setPortaTarget only records the target, so the mixer keeps
	// its current period until the next portamento step.
	if prevEffect == EffectArpeggio && eff != EffectArpeggio && !hasNote {
		ch.mixerCh.SetNotePeriodPorta(periodFromAmiga(ch.amigaPeriod, constant))
	}
}

func (ch *modChannel) primeVibrato(params byte, hasNote bool) {
	if params != 0 {
		if params>>4 != 0 {
			ch.vibratoSpeed = int(params >> 4)
		}
		if params&0xF != 0 {
			ch.vibratoDepth = int(params & 0xF)
		}
	}
	if hasNote && !ch.vibratoNoRetrigger {
		ch.vibratoTick = 0
	}
}

func (ch *modChannel) primeTremolo(params byte, hasNote bool) {
	if params != 0 {
		if params>>4 != 0 {
			ch.tremoloSpeed = int(params >> 4)
		}
		if params&0xF != 0 {
			ch.tremoloDepth = int(params & 0xF)
		}
	}
	if hasNote && !ch.tremoloNoRetrigger {
		ch.tremoloTick = 0
	}
}

// setDelayedNote stashes a note/volume/instrument triple for
// application on tick==ticks (or immediately, on tick 0, if ticks==0).
func (ch *modChannel) setDelayedNote(ticks int, note int, hasNote bool, volume int, hasVolume bool, instrument int, hasInstrument bool) {
	ch.hasDelayed = true
	ch.delayedTicks = ticks
	ch.delayedNote = note
	ch.hasDelayedNote = hasNote
	ch.delayedVolume = volume
	ch.hasDelayedVolume = hasVolume
	ch.delayedInstrument = instrument
	ch.hasDelayedInstrument = hasInstrument
}

func applyVolumeSlide(volume int, params byte) int {
	return clampInt(volume+int(int8(params)), 0, 255)
}

func subClampMin1(v, d uint64) uint64 {
	if d >= v {
		return 1
	}
	r := v - d
	if r < 1 {
		return 1
	}
	return r
}

// updateTick0 runs the effects that fire once at the start of a row:
// fine portamento, fine volume slide, sample offset, and cut-at-tick-0.
// The arpeggio and retrigger counters are reset in setEffect, and a
// delayed note with ticks==0 is applied by the caller, updateAllTick0.
func (ch *modChannel) updateTick0(constant uint64) {
	switch ch.effect {
	case EffectFinePortaUp:
		ch.amigaPeriod = subClampMin1(ch.amigaPeriod, uint64(ch.effectParams))
		ch.mixerCh.SetNotePeriodPorta(periodFromAmiga(ch.amigaPeriod, constant))
	case EffectFinePortaDown:
		ch.amigaPeriod += uint64(ch.effectParams)
		ch.mixerCh.SetNotePeriodPorta(periodFromAmiga(ch.amigaPeriod, constant))
	case EffectFineVolumeSlide:
		ch.volume = applyVolumeSlide(ch.volume, ch.effectParams)
		ch.mixerCh.SetVolume(ch.volume)
	case EffectSampleOffset:
		offset := int(ch.effectParams)
		if offset != 0 {
			ch.sampleOffsetMemory = offset << 8
		}
		ch.mixerCh.SetSampleOffset(ch.sampleOffsetMemory)
	case EffectCutNote:
		if ch.effectParams == 0 {
			ch.volume = 0
			ch.mixerCh.SetVolume(0)
		}
	}
}

// updateTickN runs the effects that fire on intra-row ticks n >= 1.
func (ch *modChannel) updateTickN(constant uint64, tick int) {
	switch ch.effect {
	case EffectPortaUp:
		ch.amigaPeriod = subClampMin1(ch.amigaPeriod, uint64(ch.effectParams))
		ch.mixerCh.SetNotePeriodPorta(periodFromAmiga(ch.amigaPeriod, constant))
	case EffectPortaDown:
		ch.amigaPeriod += uint64(ch.effectParams)
		ch.mixerCh.SetNotePeriodPorta(periodFromAmiga(ch.amigaPeriod, constant))
	case EffectVibrato:
		ch.applyVibrato(constant)
	case EffectVibratoVolSlide:
		ch.applyVibrato(constant)
		ch.volume = applyVolumeSlide(ch.volume, ch.effectParams)
		ch.mixerCh.SetVolume(ch.volume)
	case EffectTremolo:
		ch.applyTremolo()
	case EffectVolumeSlide:
		ch.volume = applyVolumeSlide(ch.volume, ch.effectParams)
		ch.mixerCh.SetVolume(ch.volume)
	case EffectPortaToNote:
		ch.stepPortaToNote(constant)
	case EffectPortaVolSlide:
		ch.stepPortaToNote(constant)
		ch.volume = applyVolumeSlide(ch.volume, ch.effectParams)
		ch.mixerCh.SetVolume(ch.volume)
	case EffectArpeggio:
		ch.stepArpeggio(constant)
	case EffectCutNote:
		if int(ch.effectParams) == tick {
			ch.volume = 0
			ch.mixerCh.SetVolume(0)
		}
	case EffectRetrigNote:
		if ch.effectParams != 0 && tick%int(ch.effectParams) == 0 {
			ch.mixerCh.SetSampleOffset(0)
		}
	}
}

func (ch *modChannel) stepArpeggio(constant uint64) {
	var note int
	switch ch.arpeggioTick {
	case 0:
		note = ch.currentNote
		ch.arpeggioTick = 1
	case 1:
		note = ch.currentNote + int(ch.effectParams>>4)
		ch.arpeggioTick = 2
	default:
		note = ch.currentNote + int(ch.effectParams&0xF)
		ch.arpeggioTick = 0
	}
	ch.mixerCh.SetNotePeriodPorta(periodFromAmiga(amigaPeriod(note, ch.finetune), constant))
}

func (ch *modChannel) applyVibrato(constant uint64) {
	wave := waveTables[ch.vibratoWaveTable]
	delta := int64(wave[ch.vibratoTick]) * int64(ch.vibratoDepth) >> 7
	period := int64(ch.amigaPeriod) + delta
	if period < 1 {
		period = 1
	}
	ch.mixerCh.SetNotePeriodPorta(periodFromAmiga(uint64(period), constant))
	ch.vibratoTick = (ch.vibratoTick + ch.vibratoSpeed) & 63
}

func (ch *modChannel) applyTremolo() {
	wave := waveTables[ch.tremoloWaveTable]
	delta := int64(wave[ch.tremoloTick]) * int64(ch.tremoloDepth) >> 4
	v := clampInt(ch.volume+int(delta), 0, 255)
	ch.mixerCh.SetVolume(v)
	ch.tremoloTick = (ch.tremoloTick + ch.tremoloSpeed) & 63
}

func (ch *modChannel) stepPortaToNote(constant uint64) {
	target := ch.portaTargetAmigaPeriod
	cur := ch.amigaPeriod
	speed := uint64(ch.portaSpeed)
	switch {
	case cur < target:
		cur += speed
		if cur > target {
			cur = target
		}
	case cur > target:
		cur = subClampMin1(cur, speed)
		if cur < target {
			cur = target
		}
	}
	ch.amigaPeriod = cur
	ch.mixerCh.SetNotePeriodPorta(periodFromAmiga(cur, constant))
}
