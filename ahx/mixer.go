package ahx

// paulaVoice emulates one of Paula's four DMA audio channels: a
// period-driven phase accumulator that fetches one sample point from
// data per cycle, scaled by volume, and resynthesized through a minBLEP
// ring buffer so edges between fetched points are band-limited rather
// than aliased (spec §4.4, reference paulaVoice_t/nextSample/
// refetchPeriod).
type paulaVoice struct {
	active bool
	data   []int8
	period int16
	volume uint8
	pos    int // next read index into data

	dVol float64 // volume scaled to -1.0..~0.99 sample range

	periodDelta, periodDeltaMul float64 // AUD_PER_delta/deltamul, latest requested period
	dPhase, dDelta, dDeltaMul   float64
	dLastPhase, dLastDelta      float64
	dLastDeltaMul               float64
	dBlepOffset                 float64
	dSample                     float64

	nextSampleStage bool
	blep            blep
}

// mixerSetPeriod applies a new Paula hardware period. The new delta
// only takes effect at the next refetchPeriod (i.e. the next phase
// wrap), matching real Paula DMA timing.
func (p *Player) mixerSetPeriod(ch int, period int16) {
	v := &p.paula[ch]
	v.period = period

	realPeriod := int(period)
	if realPeriod == 0 {
		realPeriod = 65535 // every cycle, the first included, plays as period 65535
	} else if realPeriod < 113 {
		realPeriod = 113 // mixer requires single-step deltas
	}

	v.periodDelta = p.periodToDeltaDiv / float64(realPeriod)
	v.periodDeltaMul = 1.0 / v.periodDelta

	if v.dLastDelta == 0 {
		v.dLastDelta = v.periodDelta
	}
	if v.dLastDeltaMul == 0 {
		v.dLastDeltaMul = v.periodDeltaMul
	}
}

func (p *Player) mixerSetVolume(ch int, volume uint8) {
	v := &p.paula[ch]
	v.volume = volume

	realVol := int(volume) & 127
	if realVol > 64 {
		realVol = 64
	}
	v.dVol = float64(realVol) * (1.0 / (128.0 * 64.0))
}

func (p *Player) mixerSetData(ch int, data []int8) {
	v := &p.paula[ch]
	wasActive := v.active
	v.data = data
	v.active = len(data) > 0
	if v.pos >= len(data) {
		v.pos = 0
	}

	// A voice going active from idle is a fresh DMA start: immediately
	// adopt the current period (matching startPaulaDMA's refetchPeriod
	// call) instead of waiting for a phase wrap that, with dDelta still
	// zero, would never happen.
	if v.active && !wasActive {
		v.dPhase = 0
		v.dDelta = v.periodDelta
		v.dDeltaMul = v.periodDeltaMul
		v.nextSampleStage = true
	}
}

func (p *Player) paulaStopAll() {
	for i := range p.paula {
		p.paula[i] = paulaVoice{nextSampleStage: true}
	}
}

// amigaPanning hard-wires Paula's physical channel routing: 0 and 3 are
// left, 1 and 2 are right (spec §4.4 "Panning").
func amigaPanning(ch int) (left, right float64) {
	if ch == 0 || ch == 3 {
		return 1, 0
	}
	return 0, 1
}

// refetchPeriod latches the delta that was in effect up to this phase
// wrap (for correctly timing the next BLEP insertion) and adopts
// whatever period was most recently requested.
func (v *paulaVoice) refetchPeriod() {
	v.dLastPhase = v.dPhase
	v.dLastDelta = v.dDelta
	v.dLastDeltaMul = v.dDeltaMul
	v.dBlepOffset = v.dLastPhase * v.dLastDeltaMul

	v.dDelta = v.periodDelta
	v.dDeltaMul = v.periodDeltaMul

	v.nextSampleStage = true
}

// nextSample fetches the voice's next raw sample point and, if it
// differs from the last one fed through the BLEP ring, schedules a
// bandlimited correction for the discontinuity.
func (v *paulaVoice) nextSample() {
	var raw int8
	if n := len(v.data); n > 0 {
		raw = v.data[v.pos]
		v.pos++
		if v.pos >= n {
			v.pos = 0
		}
	}
	v.dSample = float64(raw) * v.dVol

	if v.dSample != v.blep.lastValue {
		if v.dLastDelta > v.dLastPhase {
			v.blep.add(v.dBlepOffset, v.blep.lastValue-v.dSample)
		}
		v.blep.lastValue = v.dSample
	}
}

// step advances the voice by one oversampled mixer tick and returns its
// contribution to the mix, matching the inner loop of
// paulaGenerateSamples.
func (v *paulaVoice) step() float64 {
	if !v.active {
		return 0
	}

	if v.nextSampleStage {
		v.nextSampleStage = false
		v.nextSample()
	}

	sample := v.dSample
	if v.blep.samplesLeft > 0 {
		sample = v.blep.run(sample)
	}

	v.dPhase += v.dDelta
	if v.dPhase >= 1.0 {
		v.dPhase -= 1.0
		v.refetchPeriod()
	}

	return sample
}

// decimator is the reference's 9-tap half-band /2 decimator
// (decimate2x_L/decimate2x_R), run once per output sample over the two
// 2x-oversampled mixer ticks that feed it (spec §4.5).
type decimator struct {
	r1, r2, r3, r4, r5, r6, r7, r8, r9 float64
}

const (
	decimateH0 = 8192.0 / 16384.0
	decimateH1 = 5042.0 / 16384.0
	decimateH3 = -1277.0 / 16384.0
	decimateH5 = 429.0 / 16384.0
	decimateH7 = -116.0 / 16384.0
	decimateH9 = 18.0 / 16384.0
)

func (d *decimator) run(x0, x1 float64) float64 {
	h9x0 := decimateH9 * x0
	h7x0 := decimateH7 * x0
	h5x0 := decimateH5 * x0
	h3x0 := decimateH3 * x0
	h1x0 := decimateH1 * x0
	out := d.r9 + h9x0

	d.r9 = d.r8 + h7x0
	d.r8 = d.r7 + h5x0
	d.r7 = d.r6 + h3x0
	d.r6 = d.r5 + h1x0
	d.r5 = d.r4 + h1x0 + decimateH0*x1
	d.r4 = d.r3 + h3x0
	d.r3 = d.r2 + h5x0
	d.r2 = d.r1 + h7x0
	d.r1 = h9x0

	return out
}

// mixOneSample runs the four Paula voices for two 2x-oversampled ticks,
// decimates each channel back down to the output rate, and pushes the
// result through the output stage's filter/dither/clamp chain.
func (p *Player) mixOneSample() (int16, int16) {
	var subL, subR [2]float64
	for s := 0; s < 2; s++ {
		var left, right float64
		for ch := range p.paula {
			smp := p.paula[ch].step()
			l, r := amigaPanning(ch)
			left += smp * l
			right += smp * r
		}
		subL[s], subR[s] = left, right
	}

	left := p.decimL.run(subL[0], subL[1])
	right := p.decimR.run(subR[0], subR[1])

	return p.out.process(left, right)
}
