package comb

// Reverber is implemented by every incremental reverb stage in this
// package (and by the pass-through stub used when reverb is disabled):
// feed it interleaved stereo samples, drain processed ones back out.
type Reverber interface {
	InputSamples(in []int16) int
	GetAudio(out []int16) int
}

// Comb models a simple Comb filter reverb module. At construction time it takes
// a block of sample data and applies reverb to it. It cannot be fed any more
// sample data after this.
type Comb struct {
	delayOffset int
	readPos     int
	audio       []int16
}

func NewComb(in []int16, decay float32, delayMs, sampleRate int) *Comb {
	c := &Comb{
		delayOffset: (delayMs * sampleRate) / 1000,
		audio:       make([]int16, len(in)),
	}

	copy(c.audio, in)
	for i := 0; i < len(in)/2-c.delayOffset; i++ {
		c.audio[(i+c.delayOffset)*2+0] += int16(float32(c.audio[i*2+0]) * decay)
		c.audio[(i+c.delayOffset)*2+1] += int16(float32(c.audio[i*2+1]) * decay)
	}

	return c
}

func (c *Comb) GetAudio(out []int16) int {
	n := len(out)
	if c.readPos+n > len(c.audio) {
		n = len(c.audio) - c.readPos
	}
	copy(out, c.audio[c.readPos:c.readPos+n])
	c.readPos += n
	return n
}

// CombAdd is a Comb filter can be fed audio data incrementally
// It does not discard used samples and has no upper bound on memory used
type CombAdd struct {
	Comb
	readPos  int
	writePos int
	decay    float32
}

// initialSize is in sample pairs
func NewCombAdd(initialSize int, decay float32, delayMs, sampleRate int) *CombAdd {
	c := &CombAdd{
		Comb: Comb{
			delayOffset: (delayMs * sampleRate) / 1000,
			audio:       make([]int16, 0, initialSize*2),
		},
		decay: decay,
	}

	return c
}

// InputSamples feeds the CombAdd filter with new sample data. Once enough
// samples have been accumulated the filter will start applying reverb to audio
// data. The exact number of samples is determined by delay and sample rate.
// InputSamples returns the number of samples required before reverb can be
// applied. The functions takes a copy of the provided audio data.
func (c *CombAdd) InputSamples(in []int16) int {
	c.audio = append(c.audio, in...)
	if len(c.audio) > c.delayOffset*2 {
		ns := len(c.audio) - (c.delayOffset*2 + c.writePos)
		for i := 0; i < ns; i++ {
			c.audio[i+c.delayOffset*2+c.writePos] += int16(float32(c.audio[i+c.writePos]) * c.decay)
		}
		c.writePos += ns
	}
	rem := c.delayOffset*2 - len(c.audio)
	if rem < 0 {
		rem = 0
	}
	return rem
}

// GetAudio puts processed audio data into the out slice. It returns the number
// of samples put into out.
func (c *CombAdd) GetAudio(out []int16) int {
	wanted := len(out)
	have := len(c.audio) - c.readPos
	if wanted > have {
		wanted = have
	}
	if wanted > 0 {
		copy(out, c.audio[c.readPos:c.readPos+wanted])
		c.readPos += wanted
	}
	return wanted
}

// CombFixed is a CombAdd that never grows past its initial capacity: once
// the backing ring is full, feeding it more samples discards the oldest
// unread ones instead of reallocating. This suits a live player's
// continuous OutputSamples loop, where an unbounded CombAdd would grow
// for the lifetime of playback.
type CombFixed struct {
	ring  []int16 // capacity-fixed backing store, sample pairs interleaved L/R
	decay float32

	delayOffset int
	writePos    int
	readPos     int
	filled      int
}

// NewCombFixed creates a fixed-capacity comb filter reverb holding at most
// capSamples sample pairs, with the given decay and delay (ms, at
// sampleRate Hz). A delay of capSamples pairs or more wraps around the
// ring: the feedback tap then sits (delay mod capSamples) pairs back.
func NewCombFixed(capSamples int, decay float32, delayMs, sampleRate int) *CombFixed {
	return &CombFixed{
		ring:        make([]int16, capSamples*2),
		decay:       decay,
		delayOffset: (delayMs * sampleRate) / 1000,
	}
}

// InputSamples feeds new interleaved stereo sample pairs into the ring,
// applying the comb's delayed feedback in place as the write cursor
// advances, and wrapping once the ring fills. Unlike CombAdd it never
// blocks on buffering: it always accepts the whole batch, so it always
// returns 0 (no "samples still needed" backlog).
func (c *CombFixed) InputSamples(in []int16) int {
	size := len(c.ring)
	for _, s := range in {
		delayed := (c.writePos - c.delayOffset*2) % size
		if delayed < 0 {
			delayed += size
		}
		s += int16(float32(c.ring[delayed]) * c.decay)
		c.ring[c.writePos] = s
		c.writePos = (c.writePos + 1) % size
		if c.filled < size {
			c.filled++
		} else {
			// The ring was full, so the slot just written held the oldest
			// unread sample; the oldest one left is now at writePos.
			c.readPos = c.writePos
		}
	}
	return 0
}

// GetAudio puts processed audio data into the out slice, draining the
// ring in write order. It returns the number of samples written.
func (c *CombFixed) GetAudio(out []int16) int {
	n := 0
	for n < len(out) && c.filled > 0 {
		out[n] = c.ring[c.readPos]
		c.readPos = (c.readPos + 1) % len(c.ring)
		c.filled--
		n++
	}
	return n
}
