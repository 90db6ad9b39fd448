package ahx

import "testing"

func TestCalcRCCoeffsRange(t *testing.T) {
	c1, c2 := calcRCCoeffs(amigaHighPassHz, 44100)
	if c1 <= 0 || c1 >= 1 {
		t.Errorf("c1 = %v, want in (0,1)", c1)
	}
	if c2 <= 0 || c2 >= 1 {
		t.Errorf("c2 = %v, want in (0,1)", c2)
	}
	if d := c1 + c2 - 1; d > 1e-9 || d < -1e-9 {
		t.Errorf("c1+c2 = %v, want 1 (c1 = 1-c, c2 = c)", c1+c2)
	}
}

func TestRCFilterLowPassSmoothsStep(t *testing.T) {
	c1, c2 := calcRCCoeffs(1000, 44100)
	f := rcFilter{c1: c1, c2: c2}

	out := f.lowPass(1.0)
	if out <= 0 || out >= 1 {
		t.Fatalf("first low-pass output of a unit step should land strictly between 0 and 1, got %v", out)
	}
	// Repeated application of the same input should converge toward it.
	for i := 0; i < 10000; i++ {
		out = f.lowPass(1.0)
	}
	if d := out - 1.0; d > 1e-6 || d < -1e-6 {
		t.Errorf("low-pass filter should converge to the steady input, got %v", out)
	}
}

func TestRCFilterHighPassBlocksDC(t *testing.T) {
	c1, c2 := calcRCCoeffs(amigaHighPassHz, 44100)
	f := rcFilter{c1: c1, c2: c2}

	var out float64
	for i := 0; i < 100000; i++ {
		out = f.highPass(1.0)
	}
	if out > 1e-3 || out < -1e-3 {
		t.Errorf("high-pass filter should block a sustained DC input, settled at %v", out)
	}
}

func TestSetMasterVolumeSignAndRange(t *testing.T) {
	var o outputStage
	o.setMasterVolume(256)
	full := o.masterVol
	if full >= 0 {
		t.Fatalf("masterVol should be negative (A1200 sign-inverted gain), got %v", full)
	}

	o.setMasterVolume(128)
	half := o.masterVol
	if d := full/2 - half; d > 1e-9 || d < -1e-9 {
		t.Errorf("half volume should be exactly half the gain, got %v vs %v", half, full)
	}

	o.setMasterVolume(1000) // out of range, should clamp to 256
	if o.masterVol != full {
		t.Errorf("volume should clamp to 256, got %v want %v", o.masterVol, full)
	}
}

func TestSetStereoSeparation(t *testing.T) {
	var o outputStage
	o.setStereoSeparation(100)
	if o.stereoSeparation != 0 {
		t.Errorf("100%% separation should zero the side signal, got %v", o.stereoSeparation)
	}
	o.setStereoSeparation(0)
	if o.stereoSeparation != 1 {
		t.Errorf("0%% separation should pass the side signal unattenuated, got %v", o.stereoSeparation)
	}
}

func TestDitherIsDeterministicPerSeed(t *testing.T) {
	a := &outputStage{ditherSeed: initialDitherSeed}
	b := &outputStage{ditherSeed: initialDitherSeed}

	for i := 0; i < 100; i++ {
		da, db := a.dither(), b.dither()
		if da != db {
			t.Fatalf("dither sequences diverged at step %d: %v != %v", i, da, db)
		}
		if da < -0.5 || da > 0.5 {
			t.Errorf("dither value %v out of expected [-0.5,0.5) range at step %d", da, i)
		}
	}
}

func TestClampInt16Saturates(t *testing.T) {
	if got := clampInt16(1e9); got != 32767 {
		t.Errorf("clampInt16(1e9) = %d, want 32767", got)
	}
	if got := clampInt16(-1e9); got != -32768 {
		t.Errorf("clampInt16(-1e9) = %d, want -32768", got)
	}
	if got := clampInt16(100); got != 100 {
		t.Errorf("clampInt16(100) = %d, want 100", got)
	}
}

func TestClampIntBounds(t *testing.T) {
	if got := clampInt(300, 0, 256); got != 256 {
		t.Errorf("clampInt(300,0,256) = %d, want 256", got)
	}
	if got := clampInt(-5, 0, 256); got != 0 {
		t.Errorf("clampInt(-5,0,256) = %d, want 0", got)
	}
}

func TestOutputStageProcessSilenceStaysNearZero(t *testing.T) {
	var o outputStage
	o.init(44100)

	var maxAbs int16
	for i := 0; i < 1000; i++ {
		l, r := o.process(0, 0)
		if l > maxAbs || -l > maxAbs {
			maxAbs = abs16(l)
		}
		if r > maxAbs || -r > maxAbs {
			maxAbs = abs16(r)
		}
	}
	if maxAbs > 2 {
		t.Errorf("silent input should only produce dither-sized output, got max abs %d", maxAbs)
	}
}

func abs16(v int16) int16 {
	if v < 0 {
		return -v
	}
	return v
}
