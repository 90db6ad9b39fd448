// Package ahx implements a bit-reproducible AHX tracker module replayer:
// waveform bank synthesis, a 4-voice tick-driven state machine, and a
// Paula voice emulator producing 16-bit stereo PCM.
package ahx

import "sync"

// Player owns one loaded module's full runtime state: the tick engine,
// the four Paula voice emulators, and the output stage. Its exported
// methods are safe for concurrent use; OutputSamples (the audio pull
// path) and the control methods (Play, Stop, SetMasterVolume, ...)
// serialize on mu exactly as the reference's single "mixer lock" does.
type Player struct {
	mu sync.Mutex

	mod   *Module
	waves *Waveforms

	v [amigaVoices]voice

	// Song-level tick state (spec §3 song_t).
	tempo          uint8
	stepWaitFrames uint8
	getNewPosition bool
	patternBreak   bool
	posJump        uint16
	posJumpNote    uint16
	wnRandom       uint32
	noteNr         uint16
	posNr          uint16
	resNr          uint16
	lenNr          uint16
	subsong        int
	loopCounter    uint8
	loopTimes      uint8
	playing        bool

	currentVoice [amigaVoices][0x280]int8

	paula          [amigaVoices]paulaVoice
	out            outputStage
	decimL, decimR decimator

	// periodToDeltaDiv converts a Paula hardware period into a
	// phase-accumulator delta; it bakes in the 2x-oversampled mixer
	// rate (spec §4.4/§4.5 dPeriodToDeltaDiv).
	periodToDeltaDiv float64

	// 32.32 fixed-point tick clock (spec §5), matching amigaSetCIAPeriod/
	// ahxGetFrame's samplesPerTick64/tickSampleCounter64.
	samplesPerTick64    int64
	tickSampleCounter64 int64
}

// fpOne is UINT32_MAX+1, the 32.32 fixed-point scale factor.
const fpOne = 1 << 32

// New constructs a player bound to a parsed module and waveform bank,
// ready for Play. outputFreq is the target sample rate in Hz.
func New(mod *Module, waves *Waveforms, outputFreq int) *Player {
	p := &Player{mod: mod, waves: waves}
	p.lenNr = mod.LenNr
	p.resNr = mod.ResNr
	p.loopTimes = 1
	p.out.init(outputFreq)
	// Mixer always runs at 2x the output rate ahead of the decimator
	// (spec §4.5), matching paulaInit's oversamplingFlag branch for any
	// output rate below 96kHz.
	p.periodToDeltaDiv = paulaPALClock / (2.0 * float64(outputFreq))
	p.resetVoices()
	return p
}

func (p *Player) resetVoices() {
	for i := range p.v {
		p.v[i].resetToDefaults()
		p.paula[i] = paulaVoice{nextSampleStage: true}
	}
	p.decimL = decimator{}
	p.decimR = decimator{}
}

// Play starts (or restarts) playback from the given subsong index.
func (p *Player) Play(subsong int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.mod == nil {
		return newError(ErrSongNotLoaded, "no module loaded")
	}
	if subsong < 0 || subsong >= len(p.mod.SubSongTable)+1 {
		return newError(ErrSongNotLoaded, "subsong %d out of range", subsong)
	}

	p.resetVoices()
	p.subsong = subsong
	p.tempo = 6
	p.stepWaitFrames = 0
	p.getNewPosition = true
	p.patternBreak = false
	p.posJump = 0
	p.posJumpNote = 0
	p.noteNr = 0
	p.loopCounter = 0
	p.wnRandom = 0x41595321

	if subsong == 0 {
		p.posNr = 0
	} else {
		p.posNr = p.mod.SubSongTable[subsong-1]
	}
	p.resNr = p.posNr

	p.paulaStopAll()
	p.setSamplesPerTick()
	p.tickSampleCounter64 = 0
	p.playing = true
	return nil
}

// Stop halts playback; OutputSamples continues to produce silence.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	p.paulaStopAll()
}

// Playing reports whether the tick engine is currently advancing.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// SetLoopLimit controls how many times the song may loop back to its
// restart position before Playing() goes false on its own: playback stops
// at wrap number times+1, so 0 stops at the first wrap.
func (p *Player) SetLoopLimit(times uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loopTimes = times
}

// Position reports the current song position and row, for display UIs.
func (p *Player) Position() (pos, row int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return int(p.posNr), int(p.noteNr)
}

// SetMasterVolume sets Paula's output gain, 0..256 (spec §4.4).
func (p *Player) SetMasterVolume(vol int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.out.setMasterVolume(vol)
}

// SetStereoSeparation sets the stereo crosstalk percentage, 0..100
// (0 = full Amiga hard-panning, 100 = mono).
func (p *Player) SetStereoSeparation(pct int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.out.setStereoSeparation(pct)
}

// SetLowPassFilter toggles the optional Amiga A1200-style low-pass
// filter stage; the high-pass stage is always active (spec §4.5).
func (p *Player) SetLowPassFilter(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.out.useLowPass = on
}

// OutputSamples renders n stereo sample frames into buf (len(buf) must
// be >= 2*n) advancing the tick engine as needed. It is the single pull
// entry point the mixer thread calls; everything else is control-plane.
func (p *Player) OutputSamples(buf []int16, n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := 0
	for i < n {
		if !p.playing {
			l, r := p.mixOneSample()
			buf[2*i], buf[2*i+1] = l, r
			i++
			continue
		}

		if p.tickSampleCounter64 <= 0 {
			p.tick()
			p.tickSampleCounter64 += p.samplesPerTick64
		}

		// Ceil-rounded like ahxGetFrame's (tickSampleCounter64+UINT32_MAX)>>32,
		// so a fractional remainder still yields at least one sample this tick.
		samplesToMix := int((p.tickSampleCounter64 + (fpOne - 1)) >> 32)
		if samplesToMix <= 0 {
			samplesToMix = 1
		}
		if samplesToMix > n-i {
			samplesToMix = n - i
		}
		for j := 0; j < samplesToMix; j++ {
			l, r := p.mixOneSample()
			buf[2*i], buf[2*i+1] = l, r
			i++
		}
		p.tickSampleCounter64 -= int64(samplesToMix) << 32
	}
}

// ciaPeriodHz converts the module's (or default PAL) CIA reload period
// into a tick rate in Hz, matching amigaCIAPeriod2Hz (the CIA triggers
// on underflow, hence the +1 divisor).
func (p *Player) ciaPeriodHz() float64 {
	period := p.mod.SongCIAPeriod
	if period == 0 {
		period = ciaPeriodTable[0]
	}
	return ciaPALClock / (float64(period) + 1)
}

// setSamplesPerTick recomputes the 32.32 fixed-point samples-per-tick
// value from the module's CIA period and the output sample rate,
// matching amigaSetCIAPeriod.
func (p *Player) setSamplesPerTick() {
	hz := p.ciaPeriodHz()
	if hz == 0 {
		p.samplesPerTick64 = 0
		return
	}
	samplesPerTick := float64(p.out.sampleRate) / hz
	p.samplesPerTick64 = int64(samplesPerTick * fpOne)
}
