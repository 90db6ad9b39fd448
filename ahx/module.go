package ahx

import (
	"bytes"
	"encoding/binary"
	"io"
)

// Instrument holds one module instrument's envelope, square/filter
// modulation parameters, and performance-list program (spec §3).
type Instrument struct {
	Volume                uint8
	FilterSpeedWavelength uint8
	AFrames, AVolume      uint8
	DFrames, DVolume      uint8
	SFrames               uint8
	RFrames, RVolume      uint8

	FilterLowerLimit uint8
	VibratoDelay     uint8
	VibratoDepth     uint8
	VibratoSpeed     uint8

	SquareLowerLimit uint8
	SquareUpperLimit uint8
	SquareSpeed      uint8
	FilterUpperLimit uint8

	PerfSpeed  uint8
	PerfLength uint8

	// PerfList is zero-extended to 4*256 bytes at load time so that
	// pList jump-to-step (cmd 5) and the ADHOC perf-current underflow
	// quirk (spec §9a) can always read safely past PerfLength entries.
	PerfList [4 * 256]byte
}

// Module is the immutable, parsed representation of an AHX file
// (spec §3, §6). It is never mutated after Load returns.
type Module struct {
	Name     string
	Revision uint8

	LenNr         uint16 // song length
	ResNr         uint16 // restart position
	TrackLength   uint16
	HighestTrack  uint8
	Subsongs      uint8
	SongCIAPeriod uint16
	TrackZeroOK   bool // true unless header bit 15 (trackZeroEmpty) was set

	SubSongTable []uint16
	PosTable     []byte // LenNr * 8 raw bytes
	TrackTable   []byte // (highestTrack+1) * 64 * 3 bytes; TrackLength rows used per 64-row slot

	Instruments []*Instrument // index 0 unused; 1..len(Instruments)-1 real slots

	EmptyInstrument Instrument
}

// trackRow decodes the 3-byte row at TrackTable[(track*64+row)*3].
// (spec §4.3 ProcessStep, §6 "Track row layout").
type trackRow struct {
	Note  uint8
	Instr uint8
	Cmd   uint8
	Param uint8
}

func (m *Module) row(track int, row int) trackRow {
	if track > int(m.HighestTrack) {
		return trackRow{}
	}
	off := (track<<6 + row) * 3
	if off+3 > len(m.TrackTable) {
		return trackRow{}
	}
	b0, b1, b2 := m.TrackTable[off], m.TrackTable[off+1], m.TrackTable[off+2]
	return trackRow{
		Note:  (b0 >> 2) & 0x3F,
		Instr: ((b0 & 3) << 4) | (b1 >> 4),
		Cmd:   b1 & 0x0F,
		Param: b2,
	}
}

// Load parses a complete AHX module image, per spec §4.2/§6. It requires
// a waveform bank to already exist (ErrNoWaves), matching the reference
// loader's own precondition.
func Load(data []byte, waves *Waveforms) (*Module, error) {
	if waves == nil {
		return nil, newError(ErrNoWaves, "waveform bank not initialized")
	}
	if len(data) < 14 {
		return nil, newError(ErrNotAnAHX, "file too short")
	}
	if data[0] != 'T' || data[1] != 'H' || data[2] != 'X' || data[3] > 1 {
		return nil, newError(ErrNotAnAHX, "bad magic or unsupported revision")
	}

	m := &Module{Revision: data[3]}

	r := bytes.NewReader(data[6:])

	var flags, resNr uint16
	var trackLength, highestTrack, numInstruments, subsongs uint8

	if err := binary.Read(r, binary.BigEndian, &flags); err != nil {
		return nil, newError(ErrNotAnAHX, "truncated header: %v", err)
	}
	if err := binary.Read(r, binary.BigEndian, &resNr); err != nil {
		return nil, newError(ErrNotAnAHX, "truncated header: %v", err)
	}
	if err := binary.Read(r, binary.BigEndian, &trackLength); err != nil {
		return nil, newError(ErrNotAnAHX, "truncated header: %v", err)
	}
	if err := binary.Read(r, binary.BigEndian, &highestTrack); err != nil {
		return nil, newError(ErrNotAnAHX, "truncated header: %v", err)
	}
	if err := binary.Read(r, binary.BigEndian, &numInstruments); err != nil {
		return nil, newError(ErrNotAnAHX, "truncated header: %v", err)
	}
	if err := binary.Read(r, binary.BigEndian, &subsongs); err != nil {
		return nil, newError(ErrNotAnAHX, "truncated header: %v", err)
	}

	m.LenNr = flags & 0x3FF
	m.TrackZeroOK = flags&0x8000 == 0
	m.SongCIAPeriod = ciaPeriodTable[(flags>>13)&3]
	m.TrackLength = uint16(trackLength)
	m.HighestTrack = highestTrack
	m.Subsongs = subsongs

	m.ResNr = resNr
	if m.ResNr >= m.LenNr {
		m.ResNr = 0
	}

	m.SubSongTable = make([]uint16, subsongs)
	for i := range m.SubSongTable {
		if err := binary.Read(r, binary.BigEndian, &m.SubSongTable[i]); err != nil {
			return nil, newError(ErrNotAnAHX, "truncated subsong table: %v", err)
		}
	}

	m.PosTable = make([]byte, int(m.LenNr)*8)
	if _, err := io.ReadFull(r, m.PosTable); err != nil {
		return nil, newError(ErrNotAnAHX, "truncated position table: %v", err)
	}

	// Tracks are always stored 64 rows apart in memory (row() indexes
	// them that way via track<<6) regardless of the declared
	// trackLength; only trackLength*3 bytes per track actually come
	// from the file, the rest of each 64-row slot stays zeroed.
	numTracks := int(highestTrack) + 1
	m.TrackTable = make([]byte, numTracks*64*3)
	tracksToRead := numTracks
	dst := m.TrackTable
	if !m.TrackZeroOK {
		dst = dst[64*3:]
		tracksToRead--
	}
	trackBytes := int(trackLength) * 3
	for i := 0; i < tracksToRead; i++ {
		if _, err := io.ReadFull(r, dst[i*64*3:i*64*3+trackBytes]); err != nil {
			return nil, newError(ErrNotAnAHX, "truncated track table: %v", err)
		}
	}

	m.Instruments = make([]*Instrument, numInstruments+1)
	for i := 1; i <= int(numInstruments); i++ {
		ins, err := readInstrument(r)
		if err != nil {
			return nil, newError(ErrNotAnAHX, "truncated instrument %d: %v", i, err)
		}
		m.Instruments[i] = ins
	}

	name, err := readCString(r)
	if err != nil {
		return nil, newError(ErrNotAnAHX, "truncated song name: %v", err)
	}
	m.Name = name

	if m.Revision == 0 {
		applyRevision0Fixups(m)
	}

	m.EmptyInstrument = Instrument{
		AFrames: 1, DFrames: 1, SFrames: 1, RFrames: 1,
		PerfSpeed:        1,
		SquareLowerLimit: 0x20,
		SquareUpperLimit: 0x3F,
		SquareSpeed:      1,
		FilterLowerLimit: 1,
		FilterUpperLimit: 0x1F,
		// filterSpeed=4, wavelength=0 packed as speed<<3
		FilterSpeedWavelength: 4 << 3,
	}

	return m, nil
}

func readInstrument(r *bytes.Reader) (*Instrument, error) {
	var hdr [22]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}

	ins := &Instrument{
		Volume:                hdr[0],
		FilterSpeedWavelength: hdr[1],
		AFrames:               hdr[2],
		AVolume:               hdr[3],
		DFrames:               hdr[4],
		DVolume:               hdr[5],
		SFrames:               hdr[6],
		RFrames:               hdr[7],
		RVolume:               hdr[8],
		FilterLowerLimit:      hdr[12],
		VibratoDelay:          hdr[13],
		VibratoDepth:          hdr[14],
		VibratoSpeed:          hdr[15],
		SquareLowerLimit:      hdr[16],
		SquareUpperLimit:      hdr[17],
		SquareSpeed:           hdr[18],
		FilterUpperLimit:      hdr[19],
		PerfSpeed:             hdr[20],
		PerfLength:            hdr[21],
	}

	n := int(ins.PerfLength) * 4
	if n > 0 {
		if _, err := io.ReadFull(r, ins.PerfList[:n]); err != nil {
			return nil, err
		}
	}
	// Bytes beyond PerfLength*4 stay zero (Go zero-values the array),
	// matching the loader's zero-extension guarantee (spec §4.2).

	return ins, nil
}

func readCString(r *bytes.Reader) (string, error) {
	var buf []byte
	for i := 0; i < 256; i++ {
		b, err := r.ReadByte()
		if err != nil {
			if i == 0 {
				return "", nil
			}
			return string(buf), nil
		}
		if b == 0 {
			return string(buf), nil
		}
		buf = append(buf, b)
	}
	return string(buf), nil
}

// applyRevision0Fixups strips the two features added in revision 1:
// the 4xy "override filter" track command, and pList commands 0/4
// (filter init and modulation toggle) in every instrument's perf-list.
// (spec §4.2 "Revision-0 fixups".)
func applyRevision0Fixups(m *Module) {
	for row := 0; row+3 <= len(m.TrackTable); row += 3 {
		cmd := m.TrackTable[row+1] & 0x0F
		if cmd == 0x4 {
			m.TrackTable[row+1] &^= 0x0F
			m.TrackTable[row+2] = 0
		}
	}

	for _, ins := range m.Instruments {
		if ins == nil {
			continue
		}
		n := int(ins.PerfLength)
		for i := 0; i < n; i++ {
			off := i * 4
			fx1 := (ins.PerfList[off] >> 2) & 7
			fx2 := (ins.PerfList[off] >> 5) & 7
			if fx1 == 0 || fx1 == 4 {
				ins.PerfList[off+2] = 0
			}
			if fx2 == 0 || fx2 == 4 {
				ins.PerfList[off+3] = 0
			}
		}
	}
}

// instrumentAt resolves an instrument reference (1-based), falling back
// to the empty-instrument sentinel for out-of-range indices (spec §7
// category 2).
func (m *Module) instrumentAt(idx uint8) *Instrument {
	if idx == 0 || int(idx) >= len(m.Instruments) || m.Instruments[idx] == nil {
		return &m.EmptyInstrument
	}
	return m.Instruments[idx]
}
