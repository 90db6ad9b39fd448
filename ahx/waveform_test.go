package ahx

import "testing"

func TestNewWaveformsDeterministic(t *testing.T) {
	a := NewWaveforms()
	b := NewWaveforms()

	if *a != *b {
		t.Fatal("NewWaveforms should be deterministic: two banks differ")
	}
}

func TestTriangleShape(t *testing.T) {
	w := NewWaveforms()

	// The largest triangle buffer should peak at 127 a quarter of the
	// way through and bottom out near -128 three quarters through.
	buf := w.triangle80[:]
	if buf[0] != 0 {
		t.Errorf("triangle80[0] = %d, want 0", buf[0])
	}

	var maxV, minV int8 = -128, 127
	for _, s := range buf {
		if s > maxV {
			maxV = s
		}
		if s < minV {
			minV = s
		}
	}
	if maxV != 127 {
		t.Errorf("triangle80 max = %d, want 127", maxV)
	}
	if minV != -128 {
		t.Errorf("triangle80 min = %d, want -128", minV)
	}
}

func TestSawtoothRamp(t *testing.T) {
	w := NewWaveforms()
	buf := w.sawtooth08[:]

	if buf[0] != -128 {
		t.Errorf("sawtooth08[0] = %d, want -128", buf[0])
	}
	for i := 1; i < len(buf); i++ {
		if buf[i] <= buf[i-1] {
			t.Fatalf("sawtooth08 not monotonic at %d: %d -> %d", i, buf[i-1], buf[i])
		}
	}
}

func TestSquareWidths(t *testing.T) {
	w := NewWaveforms()

	for width := 1; width <= 32; width++ {
		base := (width - 1) * 128
		seg := w.squares[base : base+128]

		lowCount, highCount := 0, 0
		for _, s := range seg {
			switch s {
			case -128:
				lowCount++
			case 127:
				highCount++
			default:
				t.Fatalf("square width %d contains unexpected sample %d", width, s)
			}
		}
		if highCount != width*2 {
			t.Errorf("square width %d: got %d high samples, want %d", width, highCount, width*2)
		}
		if lowCount != (64-width)*2 {
			t.Errorf("square width %d: got %d low samples, want %d", width, lowCount, (64-width)*2)
		}
	}
}

func TestWhiteNoiseNotConstant(t *testing.T) {
	w := NewWaveforms()

	seen := map[int8]bool{}
	for _, s := range w.whiteNoiseBig {
		seen[s] = true
	}
	if len(seen) < 2 {
		t.Fatal("white noise buffer should contain more than one distinct sample value")
	}
}

func TestFilterBanksUnfilteredAtCenter(t *testing.T) {
	// filterPos 32 is the bypass position: filteredBank should report
	// bypass=true rather than indexing into either filter bank.
	p := &Player{waves: NewWaveforms()}
	bank, bypass := p.filteredBank(32)
	if !bypass {
		t.Fatal("filterPos 32 should report bypass=true")
	}
	if bank != nil {
		t.Errorf("bypass bank should be nil, got len %d", len(bank))
	}
}

func TestFilterBanksOutOfRangeIsSilence(t *testing.T) {
	p := &Player{waves: NewWaveforms()}
	for _, pos := range []uint8{0, 64, 255} {
		bank, bypass := p.filteredBank(pos)
		if bypass {
			t.Errorf("filterPos %d should not report bypass", pos)
		}
		for _, s := range bank {
			if s != 0 {
				t.Fatalf("filterPos %d: emptyFilterSection should be all zero", pos)
				break
			}
		}
	}
}

func TestFp16Clip(t *testing.T) {
	cases := []struct {
		in   int32
		want int32
	}{
		{0, 0},
		{127 << 16, 127 << 16},
		{128 << 16, 127 << 16},
		{-128 << 16, -128 << 16},
		{-129 << 16, -128 << 16},
	}
	for _, c := range cases {
		if got := fp16Clip(c.in); got != c.want {
			t.Errorf("fp16Clip(%#x) = %#x, want %#x", c.in, got, c.want)
		}
	}
}

func TestRor32Rol32Inverse(t *testing.T) {
	x := uint32(0xDEADBEEF)
	for n := uint(1); n < 32; n++ {
		if got := rol32(ror32(x, n), n); got != x {
			t.Errorf("rol32(ror32(x,%d),%d) = %#x, want %#x", n, n, got, x)
		}
	}
}
