package ahx

// This file is the tick engine: everything that runs once per replay
// interrupt (nominally ~50Hz, driven by the CIA period in Player.tick).
// Order matters and is fixed by the reference: SetAudio on all four
// voices first, then (on a new row) ProcessStep on all four, then
// ProcessFrame on all four. Nothing here touches the mixer's sample
// clock directly; it only ever mutates voice state and pushes period/
// volume/waveform changes at SetAudio's three single-field boundaries.

const (
	waveTriangle = 0
	waveSawtooth = 1
	waveSquare   = 2
	waveNoise    = 3
)

// triSawBytes is the combined byte length of the six triangle and six
// sawtooth segments inside one filtered waveform bank entry.
const triSawBytes = 252 + 252

// tick runs one replay interrupt across all four voices.
func (p *Player) tick() {
	for ch := 0; ch < amigaVoices; ch++ {
		p.setAudio(ch)
	}

	if p.stepWaitFrames == 0 {
		if p.getNewPosition {
			posNext := p.posNr + 1
			if posNext == p.lenNr {
				posNext = 0
			}
			for ch := 0; ch < amigaVoices; ch++ {
				v := &p.v[ch]
				base := int(p.posNr)*8 + ch*2
				v.Track = p.mod.PosTable[base]
				v.Transpose = int8(p.mod.PosTable[base+1])
				nbase := int(posNext)*8 + ch*2
				v.NextTrack = p.mod.PosTable[nbase]
				v.NextTranspose = int8(p.mod.PosTable[nbase+1])
			}
			p.getNewPosition = false
		}
		for ch := 0; ch < amigaVoices; ch++ {
			p.processStep(ch)
		}
		p.stepWaitFrames = p.tempo
	}

	for ch := 0; ch < amigaVoices; ch++ {
		p.processFrame(ch)
	}

	p.stepWaitFrames--
	if p.stepWaitFrames == 0 {
		if !p.patternBreak {
			p.noteNr++
			if p.noteNr == p.mod.TrackLength {
				p.posJump = p.posNr + 1
				p.patternBreak = true
			}
		}
		if p.patternBreak {
			p.patternBreak = false
			p.noteNr = p.posJumpNote
			p.posJumpNote = 0
			p.posNr = p.posJump
			p.posJump = 0
			if p.posNr >= p.lenNr {
				p.posNr = p.resNr
				if p.loopCounter >= p.loopTimes {
					p.playing = false
				} else {
					p.loopCounter++
				}
			}
			p.getNewPosition = true
		}
	}
}

// setAudio copies this tick's period/waveform/volume changes out to the
// mixer. It runs before ProcessStep/ProcessFrame so a flag raised during
// ProcessFrame is applied on the *next* tick, one interrupt later, same
// as the reference.
func (p *Player) setAudio(ch int) {
	v := &p.v[ch]
	if v.PlantPeriod {
		v.PlantPeriod = false
		p.mixerSetPeriod(ch, v.AudioPeriod)
	}
	if v.NewWaveform {
		v.NewWaveform = false
		p.copyWaveformToPaulaBuffer(ch)
	}
	p.mixerSetVolume(ch, v.AudioVolume)
}

// copyWaveformToPaulaBuffer tiles (or, for noise, copies verbatim) the
// voice's current waveform segment into its DMA staging buffer, so the
// mixer always reads a self-contained loop region regardless of the
// segment's native length.
func (p *Player) copyWaveformToPaulaBuffer(ch int) {
	v := &p.v[ch]
	dst := p.currentVoice[ch][:]

	if v.Waveform == waveNoise {
		n := copy(dst, v.AudioSource)
		p.mixerSetData(ch, dst[:n])
		return
	}

	copyLength := 4 << v.Wavelength
	repeats := (1 << (5 - v.Wavelength)) * 5
	pos := 0
	for i := 0; i < repeats; i++ {
		copy(dst[pos:pos+copyLength], v.AudioSource[:copyLength])
		pos += copyLength
	}
	p.mixerSetData(ch, dst[:pos])
}

// processStep decodes the current row for voice ch and applies every
// step-granularity (once-per-row) command. It also acts as the
// re-entry point NoteDelay uses to defer a row's effects by N frames.
func (p *Player) processStep(ch int) {
	v := &p.v[ch]

	row := trackRow{}
	if v.Track <= p.mod.HighestTrack {
		row = p.mod.row(int(v.Track), int(p.noteNr))
	}
	note, instr, cmd, param := row.Note, row.Instr, row.Cmd, row.Param

	if cmd == 0xE {
		eCmd := param >> 4
		eParam := param & 0xF
		switch eCmd {
		case 0xC:
			if eParam < p.tempo {
				v.NoteCutOn = true
				v.NoteCutWait = eParam
				v.HardCutRelease = false
			}
		case 0xD:
			if v.NoteDelayOn {
				v.NoteDelayOn = false
			} else if eParam < p.tempo {
				v.NoteDelayWait = eParam
				if v.NoteDelayWait != 0 {
					v.NoteDelayOn = true
					return
				}
			}
		}
	}

	if cmd == 0x0 && param != 0 && param&0xF <= 9 {
		p.posJump = uint16(param&0xF) << 8
	}

	if cmd == 0xD {
		hi, lo := param>>4, param&0xF
		p.posJump = p.posNr + 1
		pj := uint16(hi)*10 + uint16(lo)
		if pj >= p.mod.TrackLength {
			pj = 0
		}
		p.posJumpNote = pj
		p.patternBreak = true
	}

	if cmd == 0xB {
		hi, lo := param>>4, param&0xF
		p.posJump = p.posJump*100 + uint16(hi)*10 + uint16(lo)
		p.patternBreak = true
	}

	if cmd == 0xF {
		if param != 0 {
			p.tempo = param
		} else {
			p.playing = false
		}
	}

	if cmd == 0x5 || cmd == 0xA {
		v.VolumeSlideDown = param & 0xF
		v.VolumeSlideUp = param >> 4
	}

	if instr > 0 {
		p.loadInstrument(ch, instr)
	}

	if cmd == 0x9 {
		v.SquarePos = param >> (5 - v.Wavelength)
		v.PlantSquare = true
		v.IgnoreSquare = true
	}

	if cmd == 0x4 {
		if param < 0x40 {
			v.IgnoreFilter = param
		} else {
			v.FilterPos = param - 0x40
		}
	}

	v.PeriodSlideOn = false
	if cmd == 0x3 || cmd == 0x5 {
		if cmd == 0x3 && param != 0 {
			v.PeriodSlideSpeed = int16(param)
		}
		if note != 0 {
			periodLimit := periodTable[v.TrackPeriod] - periodTable[note]
			test := periodLimit + v.PeriodSlidePeriod
			doSlide := true
			if test == 0 {
				doSlide = false
			} else {
				v.PeriodSlideLimit = -periodLimit
			}
			if doSlide {
				v.PeriodSlideOn = true
				v.PeriodSlideWithLimit = true
				note = 0
			}
		}
	}
	if note != 0 {
		v.TrackPeriod = int16(note)
		v.PlantPeriod = true
	}

	if cmd == 0x1 {
		v.PeriodSlideSpeed = -int16(param)
		v.PeriodSlideOn = true
		v.PeriodSlideWithLimit = false
	}
	if cmd == 0x2 {
		v.PeriodSlideSpeed = int16(param)
		v.PeriodSlideOn = true
		v.PeriodSlideWithLimit = false
	}

	// This second cmd==0xE block runs after the instrument load and the
	// 3/5/1/2 portamento handling above (spec §4.3 order), so E1/E2/E4/
	// EA/EB apply on top of whatever a same-row instrument or
	// portamento just set rather than being clobbered by it.
	if cmd == 0xE {
		eCmd := param >> 4
		eParam := param & 0xF
		switch eCmd {
		case 0x1:
			v.PeriodSlidePeriod += -int16(eParam)
			v.PlantPeriod = true
		case 0x2:
			v.PeriodSlidePeriod += int16(eParam)
			v.PlantPeriod = true
		case 0x4:
			v.VibratoDepth = eParam
		case 0xA:
			v.NoteMaxVolume = clampU8(int16(v.NoteMaxVolume)+int16(eParam), 0, 0x40)
		case 0xB:
			v.NoteMaxVolume = clampU8(int16(v.NoteMaxVolume)-int16(eParam), 0, 0x40)
		}
	}

	if cmd == 0xC {
		pv := param
		if pv <= 0x40 {
			v.NoteMaxVolume = pv
		} else {
			pv -= 0x50
			if int8(pv) >= 0 {
				if pv <= 0x40 {
					for i := range p.v {
						p.v[i].TrackMasterVolume = pv
					}
				} else {
					pv -= 0x50
					if int8(pv) >= 0 && pv <= 0x40 {
						v.TrackMasterVolume = pv
					}
				}
			}
		}
	}
}

// loadInstrument resets all per-note envelope/modulation state from a
// freshly triggered instrument, per the reference's inline instrument
// setup block in ProcessStep.
func (p *Player) loadInstrument(ch int, instr uint8) {
	v := &p.v[ch]
	ins := p.mod.instrumentAt(instr)

	v.PerfSubVolume = 64
	v.PeriodPerfSlideSpeed = 0
	v.PeriodSlidePeriod = 0
	v.PeriodSlideLimit = 0
	v.ADSRVolume = 0

	if ins.AFrames != 0 {
		v.AFrames = int16(ins.AFrames)
		v.ADelta = (int16(ins.AVolume) << 8) / int16(ins.AFrames)
	} else {
		v.AFrames = 0
		v.ADelta = int16(ins.AVolume) << 8
	}

	dVolDelta := int16(int8(ins.DVolume)) - int16(int8(ins.AVolume))
	v.DFrames = int16(ins.DFrames)
	if ins.DFrames != 0 {
		v.DDelta = (dVolDelta << 8) / int16(ins.DFrames)
	} else {
		v.DDelta = dVolDelta << 8
	}

	v.SFrames = int16(ins.SFrames)

	rVolDelta := int16(int8(ins.RVolume)) - int16(int8(ins.DVolume))
	v.RFrames = int16(ins.RFrames)
	if ins.RFrames != 0 {
		v.RDelta = (rVolDelta << 8) / int16(ins.RFrames)
	} else {
		v.RDelta = rVolDelta << 8
	}

	v.Wavelength = ins.FilterSpeedWavelength & 7
	if v.Wavelength > 5 {
		v.Wavelength = 5
	}

	v.NoteMaxVolume = ins.Volume
	v.VibratoCurrent = 0
	v.VibratoDelay = ins.VibratoDelay
	v.VibratoDepth = ins.VibratoDepth & 0xF
	v.VibratoSpeed = ins.VibratoSpeed
	v.VibratoPeriod = 0

	v.HardCutRelease = ins.VibratoDepth&0x80 != 0
	v.HardCut = (ins.VibratoDepth & 0x70) >> 4

	v.IgnoreSquare = false
	v.SquareSlidingIn = false
	v.SquareWait = 0
	v.SquareOn = false
	shift := 5 - v.Wavelength
	sqLo := ins.SquareLowerLimit >> shift
	sqHi := ins.SquareUpperLimit >> shift
	if sqLo > sqHi {
		sqLo, sqHi = sqHi, sqLo
	}
	v.SquareLowerLimit = sqLo
	v.SquareUpperLimit = sqHi

	v.IgnoreFilter = 0
	v.FilterWait = 0
	v.FilterOn = false
	v.FilterSlidingIn = false

	fSpeed := ins.FilterSpeedWavelength >> 3
	fLo := ins.FilterLowerLimit
	fHi := ins.FilterUpperLimit
	if fLo&0x80 != 0 {
		fSpeed |= 32
	}
	if fHi&0x80 != 0 {
		fSpeed |= 64
	}
	fLo &^= 0x80
	fHi &^= 0x80
	if fLo > fHi {
		fLo, fHi = fHi, fLo
	}
	v.FilterSpeed = fSpeed
	v.FilterLowerLimit = fLo
	v.FilterUpperLimit = fHi
	v.FilterPos = 32

	v.PerfWait = 0
	v.PerfSpeed = ins.PerfSpeed
	v.PerfCurrent = 0

	v.Instrument = ins
	v.InstrumentNumber = instr
}

// pListCommandParse applies one performance-list micro-command, shared
// by the two command slots every perf-list step carries.
func (p *Player) pListCommandParse(ch int, cmd, param uint8) {
	v := &p.v[ch]

	switch cmd {
	case 0:
		if param == 0 {
			return
		}
		if v.IgnoreFilter != 0 {
			v.FilterPos = v.IgnoreFilter
			v.IgnoreFilter = 0
		} else {
			v.FilterPos = param
		}
		v.NewWaveform = true
	case 1:
		v.PeriodPerfSlideSpeed = int16(param)
		v.PeriodPerfSlideOn = true
	case 2:
		v.PeriodPerfSlideSpeed = -int16(param)
		v.PeriodPerfSlideOn = true
	case 3:
		if v.IgnoreSquare {
			v.IgnoreSquare = false
		} else {
			v.SquarePos = param >> (5 - v.Wavelength)
		}
	case 4:
		if param == 0 {
			v.SquareOn = !v.SquareOn
			v.SquareInit = v.SquareOn
			v.SquareSignum = 1
		} else {
			if param&0xF != 0 {
				v.SquareOn = !v.SquareOn
				v.SquareInit = v.SquareOn
				v.SquareSignum = 1
				if param&0xF == 0xF {
					v.SquareSignum = -1
				}
			}
			if param&0xF0 != 0 {
				v.FilterOn = !v.FilterOn
				v.FilterInit = v.FilterOn
				v.FilterSignum = 1
				if param&0xF0 == 0xF0 {
					v.FilterSignum = -1
				}
			}
		}
	case 5:
		v.PerfCurrent = param - 1
	case 6:
		if param <= 0x40 {
			v.PerfSubVolume = param
		} else {
			pv := param - 0x50
			if int8(pv) >= 0 {
				if pv <= 0x40 {
					for i := range p.v {
						p.v[i].TrackMasterVolume = pv
					}
				} else {
					pv -= 0x50
					if int8(pv) >= 0 && pv <= 0x40 {
						v.TrackMasterVolume = pv
					}
				}
			}
		}
	case 7:
		v.PerfSpeed = param
		v.PerfWait = param
	}
}

// processFrame runs the every-tick (sub-row) continuous effects:
// envelope advance, slides, vibrato, the performance-list micro-program,
// square/filter modulation, and finally composes this tick's period and
// volume for SetAudio to hand to the mixer next interrupt.
func (p *Player) processFrame(ch int) {
	v := &p.v[ch]
	ins := v.instrumentOrEmpty(p.mod)

	if v.HardCut != 0 {
		nextRow := p.noteNr + 1
		track := v.Track
		if nextRow == p.mod.TrackLength {
			nextRow = 0
			track = v.NextTrack
		}
		var nextInstr uint8
		if track <= p.mod.HighestTrack {
			nextInstr = p.mod.row(int(track), int(nextRow)).Instr
		}
		if nextInstr != 0 {
			if !v.NoteCutOn {
				rng := int16(p.tempo) - int16(v.HardCut)
				if rng < 0 {
					rng = 0
				}
				v.NoteCutOn = true
				v.NoteCutWait = uint8(rng)
				v.HardCutReleaseF = -(int16(v.NoteCutWait) - int16(p.tempo))
			}
			v.HardCut = 0
		}
	}

	if v.NoteCutOn {
		if v.NoteCutWait == 0 {
			v.NoteCutOn = false
			if v.HardCutRelease {
				v.RFrames = v.HardCutReleaseF
				if v.HardCutReleaseF != 0 {
					v.RDelta = -((v.ADSRVolume - (int16(ins.RVolume) << 8)) / v.HardCutReleaseF)
				}
				v.AFrames, v.DFrames, v.SFrames = 0, 0, 0
			} else {
				v.NoteMaxVolume = 0
			}
		}
		v.NoteCutWait--
	}

	if v.NoteDelayOn {
		if v.NoteDelayWait == 0 {
			p.processStep(ch)
		} else {
			v.NoteDelayWait--
		}
	}

	switch {
	case v.AFrames != 0:
		v.ADSRVolume += v.ADelta
		v.AFrames--
		if v.AFrames == 0 {
			v.ADSRVolume = int16(ins.AVolume) << 8
		}
	case v.DFrames != 0:
		v.ADSRVolume += v.DDelta
		v.DFrames--
		if v.DFrames == 0 {
			v.ADSRVolume = int16(ins.DVolume) << 8
		}
	case v.SFrames != 0:
		v.SFrames--
	case v.RFrames != 0:
		v.ADSRVolume += v.RDelta
		v.RFrames--
		if v.RFrames == 0 {
			v.ADSRVolume = int16(ins.RVolume) << 8
		}
	}

	nv := int16(v.NoteMaxVolume) - int16(v.VolumeSlideDown) + int16(v.VolumeSlideUp)
	v.NoteMaxVolume = clampU8(nv, 0, 0x40)

	if v.PeriodSlideOn {
		if v.PeriodSlideWithLimit {
			speed := v.PeriodSlideSpeed
			period := v.PeriodSlidePeriod - v.PeriodSlideLimit
			if period != 0 {
				if period > 0 {
					speed = -speed
				}
				limitTest := (period + speed) ^ period
				if limitTest >= 0 {
					v.PeriodSlidePeriod += speed
				} else {
					v.PeriodSlidePeriod = v.PeriodSlideLimit
				}
				v.PlantPeriod = true
			}
		} else {
			v.PeriodSlidePeriod += v.PeriodSlideSpeed
			v.PlantPeriod = true
		}
	}

	if v.VibratoDepth != 0 {
		if v.VibratoDelay != 0 {
			v.VibratoDelay--
		} else {
			v.VibratoPeriod = (vibTable[v.VibratoCurrent] * int16(v.VibratoDepth)) >> 7
			v.PlantPeriod = true
			v.VibratoCurrent = (v.VibratoCurrent + v.VibratoSpeed) & 63
		}
	}

	if v.PerfCurrent == ins.PerfLength {
		if v.PerfWait != 0 {
			v.PerfWait--
		} else {
			v.PeriodPerfSlideSpeed = 0
		}
	} else {
		signedOverflow := v.PerfWait == 128
		v.PerfWait--
		if signedOverflow || int8(v.PerfWait) <= 0 {
			off := int(v.PerfCurrent) * 4
			b0, b1, b2, b3 := ins.PerfList[off], ins.PerfList[off+1], ins.PerfList[off+2], ins.PerfList[off+3]

			cmd2 := (b0 >> 5) & 7
			cmd1 := (b0 >> 2) & 7
			wave := ((b0 << 1) & 6) | (b1 >> 7)
			fixed := (b1>>6)&1 != 0
			note := b1 & 0x3F
			param1, param2 := b2, b3

			if wave != 0 {
				w := wave
				if w > 4 {
					w = 0
				}
				v.Waveform = w - 1
				v.NewWaveform = true
				v.PeriodPerfSlideSpeed = 0
				v.PeriodPerfSlidePeriod = 0
			}
			v.PeriodPerfSlideOn = false

			p.pListCommandParse(ch, cmd1, param1)
			p.pListCommandParse(ch, cmd2, param2)

			if note != 0 {
				v.InstrPeriod = int16(note)
				v.PlantPeriod = true
				v.FixedNote = fixed
			}

			v.PerfCurrent++
			v.PerfWait = v.PerfSpeed
		}
	}

	if v.PeriodPerfSlideOn {
		v.PeriodPerfSlidePeriod -= v.PeriodPerfSlideSpeed
		if v.PeriodPerfSlidePeriod != 0 {
			v.PlantPeriod = true
		}
	}

	if v.Waveform == waveSquare && v.SquareOn {
		v.SquareWait--
		if int8(v.SquareWait) <= 0 {
			if v.SquareInit {
				v.SquareInit = false
				if int8(v.SquarePos) <= int8(v.SquareLowerLimit) {
					v.SquareSlidingIn = true
					v.SquareSignum = 1
				} else if int8(v.SquarePos) >= int8(v.SquareUpperLimit) {
					v.SquareSlidingIn = true
					v.SquareSignum = -1
				}
			}
			if v.SquarePos == v.SquareLowerLimit || v.SquarePos == v.SquareUpperLimit {
				if v.SquareSlidingIn {
					v.SquareSlidingIn = false
				} else {
					v.SquareSignum = -v.SquareSignum
				}
			}
			v.SquarePos = uint8(int8(v.SquarePos) + v.SquareSignum)
			v.PlantSquare = true
			v.SquareWait = ins.SquareSpeed
		}
	}

	if v.FilterOn {
		v.FilterWait--
		if int8(v.FilterWait) <= 0 {
			if v.FilterInit {
				v.FilterInit = false
				if int8(v.FilterPos) <= int8(v.FilterLowerLimit) {
					v.FilterSlidingIn = true
					v.FilterSignum = 1
				} else if int8(v.FilterPos) >= int8(v.FilterUpperLimit) {
					v.FilterSlidingIn = true
					v.FilterSignum = -1
				}
			}
			cycles := 1
			if v.FilterSpeed < 4 {
				cycles = 5 - int(v.FilterSpeed)
			}
			for i := 0; i < cycles; i++ {
				if v.FilterPos == v.FilterLowerLimit || v.FilterPos == v.FilterUpperLimit {
					if v.FilterSlidingIn {
						v.FilterSlidingIn = false
					} else {
						v.FilterSignum = -v.FilterSignum
					}
				}
				v.FilterPos = uint8(int8(v.FilterPos) + v.FilterSignum)
			}
			v.NewWaveform = true
			fw := int8(v.FilterSpeed) - 3
			if fw < 1 {
				fw = 1
			}
			v.FilterWait = uint8(fw)
		}
	}

	if v.Waveform == waveSquare || v.PlantSquare {
		p.rebuildSquare(ch)
	}

	if v.Waveform == waveNoise {
		v.NewWaveform = true
	}

	if v.NewWaveform {
		p.selectAudioSource(ch)
	}

	note := v.InstrPeriod
	if !v.FixedNote {
		note += int16(v.Transpose)
		note += v.TrackPeriod - 1
	}
	if note > 60 {
		note = 60
	}
	var period int16
	if note < 0 {
		if note < -129 {
			note = -129
		}
		period = int16(beforePeriodTable[note+129])
	} else {
		period = periodTable[note]
	}
	if !v.FixedNote {
		period += v.PeriodSlidePeriod
	}
	period += v.PeriodPerfSlidePeriod
	period += v.VibratoPeriod
	v.AudioPeriod = clampI16(period, 113, 3424)

	finalVol := int32(v.ADSRVolume) >> 8
	finalVol = (finalVol * int32(v.NoteMaxVolume)) >> 6
	finalVol = (finalVol * int32(v.PerfSubVolume)) >> 6
	finalVol = (finalVol * int32(v.TrackMasterVolume)) >> 6
	v.AudioVolume = uint8(finalVol)
}

// rebuildSquare regenerates SquareTempBuffer from the filtered square
// bank selected by FilterPos, at the pulse-width position SquarePos
// mirrors into.
func (p *Player) rebuildSquare(ch int) {
	v := &p.v[ch]
	base := p.squareFilterBase(v.FilterPos)

	whichSquare := int16(v.SquarePos) << (5 - v.Wavelength)
	reverse := false
	if int8(whichSquare) > 0x20 {
		whichSquare = 0x40 - whichSquare
		reverse = true
	}
	whichSquare--
	if int8(whichSquare) < 0 {
		whichSquare = 0
	}
	v.SquareReverse = reverse

	srcOff := int(whichSquare) << 7
	delta := (1 << 5) >> v.Wavelength
	cycles := squareBufLen(v.Wavelength)

	for i := 0; i < cycles; i++ {
		v.SquareTempBuffer[i] = base[srcOff]
		srcOff += delta
	}

	v.Waveform = waveSquare
	v.NewWaveform = true
	v.PlantSquare = false
}

func squareBufLen(wavelength uint8) int { return (1 << wavelength) << 2 }

// selectAudioSource resolves Waveform+FilterPos(+Wavelength) into the
// concrete sample slice the mixer should loop over, and for noise draws
// the next pseudo-random window and advances the shared RNG state.
func (p *Player) selectAudioSource(ch int) {
	v := &p.v[ch]

	switch v.Waveform {
	case waveSquare:
		v.AudioSource = v.SquareTempBuffer[:squareBufLen(v.Wavelength)]

	case waveTriangle, waveSawtooth:
		length := 4 << v.Wavelength
		bank, bypass := p.filteredBank(v.FilterPos)
		if bypass {
			if v.Waveform == waveTriangle {
				v.AudioSource = p.waves.triangleBuf(int(v.Wavelength))
			} else {
				v.AudioSource = p.waves.sawtoothBuf(int(v.Wavelength))
			}
			return
		}
		off := waveOffsets[v.Wavelength]
		if v.Waveform == waveSawtooth {
			off += 252
		}
		v.AudioSource = bank[off : off+length]

	case waveNoise:
		bank, bypass := p.filteredBank(v.FilterPos)
		var src []int8
		switch {
		case bypass:
			src = p.waves.whiteNoiseBig[:]
		case len(bank) == len(p.waves.emptyFilterSection):
			// Out-of-range FilterPos: filteredBank already returned the
			// all-zero silence section, resolve against its base rather
			// than the real filtered-bank noise sub-offset, which would
			// run past the shorter emptyFilterSection buffer.
			src = bank
		default:
			src = bank[triSawBytes+0x80*32:]
		}
		seed := p.wnRandom
		start := int(seed) & ((noizeSize - 0x280) - 1)
		v.AudioSource = src[start : start+0x280]

		seed += 2239384
		seed = ror32(seed, 8)
		seed += 782323
		seed ^= 0x4B
		seed -= 6735
		p.wnRandom = seed
	}
}

// filteredBank resolves a filter position (1..63, 32=bypass) to its
// filtered waveform bank. The reference addresses a single pointer
// (waves->squares) with a signed (filterPos-32)*WAV_FILTER_LENGTH
// byte offset into a struct where lowPasses precedes squares and
// highPasses follows it, so negative offsets (filterPos < 32) land in
// lowPasses and positive offsets (filterPos > 32) land in highPasses;
// 0/out-of-range fall back to silence.
func (p *Player) filteredBank(filterPos uint8) (bank []int8, bypass bool) {
	if filterPos == 0 || filterPos > 63 {
		return p.waves.emptyFilterSection[:], false
	}
	if filterPos == 32 {
		return nil, true
	}
	if filterPos < 32 {
		idx := int(filterPos - 1)
		return p.waves.lowPasses[idx*wavFilterLength : (idx+1)*wavFilterLength], false
	}
	idx := int(filterPos - 33)
	return p.waves.highPasses[idx*wavFilterLength : (idx+1)*wavFilterLength], false
}

// squareFilterBase is filteredBank specialized to the square section of
// the bank (or the raw unfiltered squares table at FilterPos==32).
func (p *Player) squareFilterBase(filterPos uint8) []int8 {
	bank, bypass := p.filteredBank(filterPos)
	if bypass {
		return p.waves.squares[:]
	}
	if len(bank) == len(p.waves.emptyFilterSection) {
		return bank
	}
	return bank[triSawBytes : triSawBytes+0x80*32]
}

func clampU8(v int16, lo, hi uint8) uint8 {
	if v < int16(lo) {
		return lo
	}
	if v > int16(hi) {
		return hi
	}
	return uint8(v)
}

func clampI16(v, lo, hi int16) int16 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
