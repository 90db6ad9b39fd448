package ahx

import "math"

// outputStage turns the decimator's per-sample Paula sum (mixOneSample
// already ran the 2x-oversampled mix through decimator, spec §4.5) into
// clamped 16-bit stereo PCM: the sign-inverted master gain, an optional
// A1200-accurate low-pass followed by an always-on high-pass one-pole RC
// filter (low-pass-then-high-pass order and corner frequencies both match
// the reference's calculateFilterCoeffs/processFilters), stereo
// separation, dither, and the final int16 clamp. The reference only turns the low-pass
// stage on when Nyquist clears its ~34.4kHz corner (true with 2x
// oversampling active); this package instead exposes that toggle
// directly via Player.SetLowPassFilter.
type outputStage struct {
	sampleRate int

	masterVol        float64 // already includes the sign-inverted NORM_FACTOR*INT16_MAX scale
	stereoSeparation float64 // 0..1 side-signal factor, 1 = full separation, 0 = mono

	hpL, hpR rcFilter
	lpL, lpR rcFilter
	useLowPass bool

	ditherSeed uint32
}

// rcFilter is a one-pole RC filter, shared by the high-pass and
// optional low-pass stages; only the coefficient and combination
// differ between them (spec §4.5 "RC filter formula").
type rcFilter struct {
	c1, c2 float64
	state  float64
}

func calcRCCoeffs(cutoffHz float64, sampleRate int) (c1, c2 float64) {
	a := math.Cos(2 * math.Pi * cutoffHz / float64(sampleRate))
	b := 2 - a
	c := b - math.Sqrt(b*b-1)
	return 1 - c, c
}

func (f *rcFilter) lowPass(in float64) float64 {
	f.state = in*f.c1 + f.state*f.c2
	return f.state
}

func (f *rcFilter) highPass(in float64) float64 {
	lp := in*f.c1 + f.state*f.c2
	f.state = lp
	return in - lp
}

// Amiga 1200 1-pole RC filter corners, derived from the real A1200
// component values (R321/C321 680ohm/6800pF low-pass, R324+R325/C334
// 1390ohm/22uF high-pass): fc = 1/(2*pi*R*C).
const (
	amigaHighPassHz = 1.0 / (2 * math.Pi * 1390.0 * 2.2e-5) // ~5.20Hz
	amigaLowPassHz  = 1.0 / (2 * math.Pi * 680.0 * 6.8e-9)  // ~34419.32Hz
)

func (o *outputStage) init(sampleRate int) {
	o.sampleRate = sampleRate
	o.stereoSeparation = 1.0
	o.ditherSeed = initialDitherSeed
	o.setMasterVolume(256)

	c1, c2 := calcRCCoeffs(amigaHighPassHz, sampleRate)
	o.hpL = rcFilter{c1: c1, c2: c2}
	o.hpR = rcFilter{c1: c1, c2: c2}

	c1, c2 = calcRCCoeffs(amigaLowPassHz, sampleRate)
	o.lpL = rcFilter{c1: c1, c2: c2}
	o.lpR = rcFilter{c1: c1, c2: c2}
}

// setMasterVolume mirrors paulaSetMasterVolume's sign-inverted gain
// (an A1200 hardware quirk the reference preserves deliberately).
func (o *outputStage) setMasterVolume(vol int) {
	vol = clampInt(vol, 0, 256)
	o.masterVol = normFactor * (-float64(math.MaxInt16) / amigaVoices) * (float64(vol) / 256.0)
}

func (o *outputStage) setStereoSeparation(pct int) {
	pct = clampInt(pct, 0, 100)
	o.stereoSeparation = 1.0 - float64(pct)/100.0
}

// process runs one raw (L,R) mixer sample through the filter chain,
// applies stereo separation, dithers, and clamps to int16.
func (o *outputStage) process(left, right float64) (int16, int16) {
	left *= o.masterVol
	right *= o.masterVol

	if o.useLowPass {
		left = o.lpL.lowPass(left)
		right = o.lpR.lowPass(right)
	}
	left = o.hpL.highPass(left)
	right = o.hpR.highPass(right)

	mid := (left + right) * stereoNormFactor
	side := (left - right) * stereoNormFactor * o.stereoSeparation
	left = mid + side
	right = mid - side

	left += o.dither()
	right += o.dither()

	return clampInt16(left), clampInt16(right)
}

// dither returns one uniform value in [-0.5, 0.5) from a PRNG seeded
// with INITIAL_DITHER_SEED. Each call is independent: the previous value
// is not subtracted, so the dither is rectangular, not triangular.
func (o *outputStage) dither() float64 {
	o.ditherSeed = o.ditherSeed*196314165 + 907633515
	return float64(int32(o.ditherSeed)) / float64(1<<31) * 0.5
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt16(v float64) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
