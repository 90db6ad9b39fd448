package ahx

// Tables below are reproduced verbatim from the reference AHX 2.3d-sp3
// replayer (68020 build). They are frozen test data, not derived values:
// see DESIGN.md open-question (b) for why beforePeriodTable exists at all.

// periodTable maps a clamped note index (0..60) to an Amiga hardware
// period. Index 0 is the "no note" sentinel.
var periodTable = [1 + 60]int16{
	0,
	3424, 3232, 3048, 2880, 2712, 2560, 2416, 2280, 2152, 2032, 1920, 1812,
	1712, 1616, 1524, 1440, 1356, 1280, 1208, 1140, 1076, 1016, 960, 906,
	856, 808, 762, 720, 678, 640, 604, 570, 538, 508, 480, 453,
	428, 404, 381, 360, 339, 320, 302, 285, 269, 254, 240, 226,
	214, 202, 190, 180, 170, 160, 151, 143, 135, 127, 120, 113,
}

// beforePeriodTable holds the 129 words that precede periodTable in the
// reference binary. A note index can legally underflow to -1..-129 and
// the reference reads straight through into this memory; reproducing the
// exact bytes is required for bit-reproducible output (spec §8, §9b).
var beforePeriodTable = [129]uint16{
	0xF6F2, 0xEEEA, 0xE6E3, 0x201B, 0x1612, 0x0E0A, 0x0603, 0x00FD, 0xFAF8, 0xF6F4,
	0xF2F1, 0x100D, 0x0A08, 0x0604, 0x0201, 0x00FF, 0xFEFE, 0xFEFE, 0xFEFF, 0x4A30,
	0x0170, 0x0000, 0x0027, 0x66FF, 0x0000, 0x00B2, 0x4A30, 0x0170, 0x0000, 0x0026,
	0x6712, 0x3770, 0x0170, 0x0000, 0x0064, 0x0006, 0x51F0, 0x0170, 0x0000, 0x0026,
	0x4A30, 0x0170, 0x0000, 0x0022, 0x67FF, 0x0000, 0x007C, 0x48E7, 0x3F68, 0x2470,
	0x0170, 0x0000, 0x005C, 0x0C30, 0x0003, 0x0170, 0x0000, 0x0014, 0x67FF, 0x0000,
	0x0042, 0x7C01, 0x7405, 0x9430, 0x0170, 0x0000, 0x0015, 0xE56E, 0xCCFC, 0x0005,
	0x5346, 0x2270, 0x0170, 0x0000, 0x0060, 0x7E01, 0x7400, 0x1430, 0x0170, 0x0000,
	0x0015, 0xE52F, 0x5347, 0x2619, 0x24C3, 0x51CF, 0xFFFA, 0x51CE, 0xFFDE, 0x60FF,
	0x0000, 0x0016, 0x2270, 0x0170, 0x0000, 0x0060, 0x7E4F, 0x24D9, 0x24D9, 0x51CF,
	0xFFFA, 0x4CDF, 0x16FC, 0x51F0, 0x0170, 0x0000, 0x0022, 0x3770, 0x0170, 0x0000,
	0x0066, 0x0008, 0x4E75, 0x377C, 0x0000, 0x0008, 0x4E75, 0x0004, 0x0000, 0x0001,
	0x0000, 0x0015, 0x4C70, 0x0015, 0x4D6C, 0x000E, 0xA9C4, 0x0015, 0x5E68,
}

// vibTable is a 64-step signed sine-ish wave with amplitude +-255, used
// for vibrato period modulation.
var vibTable = [64]int16{
	0, 24, 49, 74, 97, 120, 141, 161,
	180, 197, 212, 224, 235, 244, 250, 253,
	255, 253, 250, 244, 235, 224, 212, 197,
	180, 161, 141, 120, 97, 74, 49, 24,
	0, -24, -49, -74, -97, -120, -141, -161,
	-180, -197, -212, -224, -235, -244, -250, -253,
	-255, -253, -250, -244, -235, -224, -212, -197,
	-180, -161, -141, -120, -97, -74, -49, -24,
}

// waveOffsets gives the byte offset of each wavelength's triangle/sawtooth
// table within its concatenated 6-length section (4,8,16,32,64,128 bytes).
var waveOffsets = [6]int{
	0x00, 0x04, 0x04 + 0x08, 0x04 + 0x08 + 0x10, 0x04 + 0x08 + 0x10 + 0x20, 0x04 + 0x08 + 0x10 + 0x20 + 0x40,
}

// ciaPeriodTable is indexed by header flag bits 13..14 and gives the
// default CIA timer reload value (PAL), longest period (lowest tick rate)
// first.
var ciaPeriodTable = [4]uint16{14209, 7104, 4736, 3552}

const (
	amigaVoices = 4

	noizeSize       = 0x280 * 3
	wavFilterLength = 252 + 252 + 0x80*32 + noizeSize

	amigaPALXtalHz = 28375160
	amigaPALCCKHz  = amigaPALXtalHz / 8.0
	paulaPALClock  = amigaPALCCKHz
	ciaPALClock    = amigaPALCCKHz / 5.0

	initialDitherSeed = 0x12345000

	normFactor       = 1.5
	stereoNormFactor = 0.5
)
