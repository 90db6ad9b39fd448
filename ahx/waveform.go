package ahx

// Waveforms is the bank of synthesized source material every voice reads
// from: the four raw waveform families (triangle, sawtooth, square,
// noise) and their 31 pre-filtered "brightness" variants, generated once
// at Bank construction and never mutated afterwards (spec §3 lifecycle,
// §4.1 algorithm).
type Waveforms struct {
	triangle04 [0x04]int8
	triangle08 [0x08]int8
	triangle10 [0x10]int8
	triangle20 [0x20]int8
	triangle40 [0x40]int8
	triangle80 [0x80]int8

	sawtooth04 [0x04]int8
	sawtooth08 [0x08]int8
	sawtooth10 [0x10]int8
	sawtooth20 [0x20]int8
	sawtooth40 [0x40]int8
	sawtooth80 [0x80]int8

	squares       [0x80 * 32]int8
	whiteNoiseBig [noizeSize]int8

	lowPasses  [wavFilterLength * 31]int8
	highPasses [wavFilterLength * 31]int8

	// emptyFilterSection is returned whenever a voice's filter position
	// falls out of [1,63] (spec §4.3 step 12/14's "safety bug-fix").
	emptyFilterSection [0x80 * 32]int8
}

// lengthTable gives the length, in bytes, of each waveform segment that
// setUpFilterWaveForms walks across: six triangle lengths, six sawtooth
// lengths, 32 square positions, and the noise buffer.
var lengthTable = [6 + 6 + 32 + 1]int{
	0x04, 0x08, 0x10, 0x20, 0x40, 0x80,
	0x04, 0x08, 0x10, 0x20, 0x40, 0x80,

	0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80,
	0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80,
	0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80,
	0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80,

	noizeSize,
}

// NewWaveforms generates the full waveform bank bit-accurately against
// the AHX 2.3d-sp3 reference (original_source/loader.c: ahxInitWaves).
func NewWaveforms() *Waveforms {
	w := &Waveforms{}

	for i := 0; i < 6; i++ {
		fullLength := 4 << i
		length := fullLength >> 2
		delta := int16(128 / length)
		offset := -(fullLength >> 1)
		generateTriangle(w.triangleBuf(i), delta, offset, length-1)
	}

	generateSawtooth(w.sawtooth04[:])
	generateSawtooth(w.sawtooth08[:])
	generateSawtooth(w.sawtooth10[:])
	generateSawtooth(w.sawtooth20[:])
	generateSawtooth(w.sawtooth40[:])
	generateSawtooth(w.sawtooth80[:])
	generateSquare(w.squares[:])
	generateWhiteNoise(w.whiteNoiseBig[:])

	w.setUpFilterWaveForms()

	return w
}

// triangleBuf returns the i-th (0..5) triangle buffer as a slice, so
// NewWaveforms can fill each fixed-size array field through a common loop.
func (w *Waveforms) triangleBuf(i int) []int8 {
	switch i {
	case 0:
		return w.triangle04[:]
	case 1:
		return w.triangle08[:]
	case 2:
		return w.triangle10[:]
	case 3:
		return w.triangle20[:]
	case 4:
		return w.triangle40[:]
	default:
		return w.triangle80[:]
	}
}

// sawtoothBuf returns the i-th (0..5) sawtooth buffer as a slice.
func (w *Waveforms) sawtoothBuf(i int) []int8 {
	switch i {
	case 0:
		return w.sawtooth04[:]
	case 1:
		return w.sawtooth08[:]
	case 2:
		return w.sawtooth10[:]
	case 3:
		return w.sawtooth20[:]
	case 4:
		return w.sawtooth40[:]
	default:
		return w.sawtooth80[:]
	}
}

// generateTriangle builds one triangle waveform into buf, which must be
// exactly 4<<i bytes long. It emits a rising ramp, a peak of 127, a
// falling ramp, then mirrors the first half with sign inversion
// (substituting -128 for the would-be -(-128) at the peak sample).
func generateTriangle(buf []int8, delta int16, offset int, length int) {
	pos := 0
	data := int16(0)
	for i := 0; i < length+1; i++ {
		buf[pos] = int8(data)
		pos++
		data += delta
	}

	buf[pos] = 127
	pos++

	data = 128
	for i := 0; i < length; i++ {
		data -= delta
		buf[pos] = int8(data)
		pos++
	}

	for i := 0; i < (length+1)*2; i++ {
		sample := buf[pos+offset]
		if sample == 127 {
			sample = -128
		} else {
			sample = -sample
		}
		buf[pos] = sample
		pos++
	}
}

// generateSawtooth emits a linear ramp from -128, stepping by
// 256/(len-1) so the last sample lands just short of 128.
func generateSawtooth(buf []int8) {
	length := len(buf)
	delta := int8(256 / (length - 1))

	data := int8(-128)
	for i := 0; i < length; i++ {
		buf[i] = data
		data += delta
	}
}

// generateSquare builds all 32 pulse-width positions (1..32) back to
// back, each 128 bytes: (64-width)*2 low samples followed by width*2
// high samples.
func generateSquare(buf []int8) {
	pos := 0
	for width := 1; width <= 32; width++ {
		for j := 0; j < 64-width; j++ {
			buf[pos] = -128
			pos++
			buf[pos] = -128
			pos++
		}
		for j := 0; j < width; j++ {
			buf[pos] = 127
			pos++
			buf[pos] = 127
			pos++
		}
	}
}

// generateWhiteNoise fills buf with the reference's deterministic PRNG
// noise: a 32-bit rotate/xor generator seeded with 0x41595321 ("AYS!").
func generateWhiteNoise(buf []int8) {
	seed := uint32(0x41595321)

	for i := range buf {
		switch {
		case seed&256 == 0:
			buf[i] = int8(seed)
		case seed&0x8000 != 0:
			buf[i] = -128
		default:
			buf[i] = 127
		}

		seed = ror32(seed, 5)
		seed ^= 0x9A
		tmp16 := uint16(seed)
		seed = rol32(seed, 2)
		tmp16 += uint16(seed)
		seed ^= uint32(tmp16)
		seed = ror32(seed, 3)
	}
}

func ror32(x uint32, n uint) uint32 { return (x >> n) | (x << (32 - n)) }
func rol32(x uint32, n uint) uint32 { return (x << n) | (x >> (32 - n)) }

// fp16Clip clips a 16.16 fixed-point accumulator to the signed int8
// range expressed back in 16.16, exactly as the reference's bit-reduced
// LUT emulation requires.
func fp16Clip(x int32) int32 {
	v := int16(x >> 16)
	if v > 127 {
		return 127 << 16
	}
	if v < -128 {
		return -128 << 16
	}
	return x
}

// setUpFilterWaveForms runs the two-pole 16.16 fixed-point filter over
// every waveform length for 31 increasing cutoff settings, writing the
// high-pass output to highPasses and the low-pass output to lowPasses.
// The filter is run four times per waveform; after the third pass the
// low 8 bits of both accumulators are masked out to match AHX's
// bit-reduced lookup table before the fourth (output) pass.
func (w *Waveforms) setUpFilterWaveForms() {
	source := w.filterSource()

	hiPos, loPos := 0, 0
	d5 := int32((((8 << 16) * 125) / 100) / 100 >> 8)
	for i := 0; i < 31; i++ {
		srcPos := 0
		for j := 0; j < len(lengthTable); j++ {
			waveLength := lengthTable[j]

			var d1, d2, d3 int32
			for pass := 0; pass < 3; pass++ {
				for k := 0; k < waveLength; k++ {
					d0 := int32(source[srcPos+k]) << 16
					d1 = fp16Clip(d0 - d2 - d3)
					d2 = fp16Clip(d2 + (d1>>8)*d5)
					d3 = fp16Clip(d3 + (d2>>8)*d5)
				}
			}

			d2 &^= 0xFF
			d3 &^= 0xFF

			for k := 0; k < waveLength; k++ {
				d0 := int32(source[srcPos+k]) << 16
				d1 = fp16Clip(d0 - d2 - d3)
				d2 = fp16Clip(d2 + (d1>>8)*d5)
				d3 = fp16Clip(d3 + (d2>>8)*d5)

				w.highPasses[hiPos] = int8(d1 >> 16)
				hiPos++
				w.lowPasses[loPos] = int8(d3 >> 16)
				loPos++
			}

			srcPos += waveLength
		}

		d5 += (((3 << 16) * 125) / 100) / 100 >> 8
	}
}

// filterSource concatenates every raw waveform in lengthTable order into
// one contiguous slice, mirroring the packed layout setUpFilterWaveForms
// walks across in the reference (triangle04..80, sawtooth04..80,
// squares, noise, all back to back).
func (w *Waveforms) filterSource() []int8 {
	total := 0
	for _, l := range lengthTable {
		total += l
	}

	src := make([]int8, 0, total)
	src = append(src, w.triangle04[:]...)
	src = append(src, w.triangle08[:]...)
	src = append(src, w.triangle10[:]...)
	src = append(src, w.triangle20[:]...)
	src = append(src, w.triangle40[:]...)
	src = append(src, w.triangle80[:]...)
	src = append(src, w.sawtooth04[:]...)
	src = append(src, w.sawtooth08[:]...)
	src = append(src, w.sawtooth10[:]...)
	src = append(src, w.sawtooth20[:]...)
	src = append(src, w.sawtooth40[:]...)
	src = append(src, w.sawtooth80[:]...)
	src = append(src, w.squares[:]...)
	src = append(src, w.whiteNoiseBig[:]...)
	return src
}
