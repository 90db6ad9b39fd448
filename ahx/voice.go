package ahx

// voice holds one channel's complete tick-engine state, field-for-field
// against the reference's plyVoiceTemp_t (original_source/replayer.h).
// It is owned and mutated exclusively by the tick engine; the mixer only
// reads the handful of fields SetAudio copies out (period/volume/
// waveform pointer/length).
type voice struct {
	// Track position and instrument binding (spec §3, §4.3 ProcessStep).
	Track            uint8
	Transpose        int8
	NextTrack        uint8
	NextTranspose    int8
	Instrument       *Instrument
	InstrumentNumber uint8

	VolumeSlideUp   uint8
	VolumeSlideDown uint8

	// Envelope (8.8 fixed point).
	ADSRVolume              int16
	AFrames, ADelta         int16
	DFrames, DDelta         int16
	SFrames                 int16
	RFrames, RDelta         int16

	// Note/period composition.
	InstrPeriod     int16
	TrackPeriod     int16
	VibratoPeriod   int16
	FixedNote       bool
	NoteMaxVolume   uint8
	PerfSubVolume   uint8
	TrackMasterVolume uint8

	NewWaveform bool
	Waveform    uint8
	PlantPeriod bool

	// Square wave modulation.
	IgnoreSquare     bool
	SquareOn         bool
	SquareInit       bool
	SquareWait       uint8
	SquareSignum     int8
	SquareSlidingIn  bool
	SquarePos        uint8
	SquareLowerLimit uint8
	SquareUpperLimit uint8
	PlantSquare      bool
	SquareReverse    bool

	// Filter modulation.
	IgnoreFilter     uint8
	FilterOn         bool
	FilterInit       bool
	FilterWait       uint8
	FilterSpeed      uint8
	FilterSignum     int8
	FilterSlidingIn  bool
	FilterPos        uint8
	FilterLowerLimit uint8
	FilterUpperLimit uint8

	Wavelength uint8

	// Period slide (tone portamento).
	PeriodSlideSpeed     int16
	PeriodSlidePeriod    int16
	PeriodSlideLimit     int16
	PeriodSlideOn        bool
	PeriodSlideWithLimit bool

	// Perf-list (instrument program) slide.
	PeriodPerfSlideSpeed  int16
	PeriodPerfSlidePeriod int16
	PeriodPerfSlideOn     bool

	// Vibrato.
	VibratoCurrent uint8
	VibratoDelay   uint8
	VibratoDepth   uint8
	VibratoSpeed   uint8

	// Hard cut / note cut / note delay.
	HardCut         uint8
	HardCutRelease  bool
	HardCutReleaseF int16
	NoteCutOn       bool
	NoteCutWait     uint8
	NoteDelayOn     bool
	NoteDelayWait   uint8

	// Performance-list program counter.
	PerfCurrent uint8
	PerfSpeed   uint8
	PerfWait    uint8

	// Output of this tick, copied into the mixer by SetAudio.
	AudioPeriod int16
	AudioVolume uint8
	AudioSource []int8

	SquareTempBuffer [0x80]int8
}

// instrumentOrEmpty returns the voice's bound instrument, or the module's
// empty-instrument sentinel if none is bound yet (spec §7 category 2).
func (v *voice) instrumentOrEmpty(m *Module) *Instrument {
	if v.Instrument != nil {
		return v.Instrument
	}
	return &m.EmptyInstrument
}

// resetToDefaults applies the defaults InitVoiceXTemp sets on a freshly
// allocated (or just-stopped) voice: not the instrument's own fields,
// purely the post-zero runtime defaults the reference play-init pass
// applies (original_source/replayer.c: InitVoiceXTemp).
func (v *voice) resetToDefaults() {
	*v = voice{
		TrackMasterVolume: 64,
		SquareSignum:      1,
		SquareLowerLimit:  1,
		SquareUpperLimit:  63,
	}
}
