package ahx

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildMinimalAHX assembles the smallest valid AHX image this loader
// accepts: one position, one track (track 0 present), no instruments,
// revision 1, PAL default CIA period, an empty song name.
func buildMinimalAHX(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("THX\x01\x00\x00") // magic, revision 1, 2 reserved bytes

	const lenNr = 1
	flags := uint16(lenNr) // trackZeroEmpty clear, CIA selector 0
	binary.Write(&buf, binary.BigEndian, flags)
	binary.Write(&buf, binary.BigEndian, uint16(0)) // resNr
	buf.WriteByte(1)                                // trackLength
	buf.WriteByte(0)                                // highestTrack
	buf.WriteByte(0)                                // numInstruments
	buf.WriteByte(0)                                // subsongs

	// position table: lenNr * 8 bytes (track+transpose per voice, x2)
	buf.Write(make([]byte, lenNr*8))

	// track table: 1 track * 1 row * 3 bytes
	buf.Write([]byte{0, 0, 0})

	buf.WriteByte(0) // song name terminator

	return buf.Bytes()
}

func TestLoadMinimalModule(t *testing.T) {
	waves := NewWaveforms()
	data := buildMinimalAHX(t)

	mod, err := Load(data, waves)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if mod.LenNr != 1 {
		t.Errorf("LenNr = %d, want 1", mod.LenNr)
	}
	if mod.HighestTrack != 0 {
		t.Errorf("HighestTrack = %d, want 0", mod.HighestTrack)
	}
	if !mod.TrackZeroOK {
		t.Error("TrackZeroOK should be true when header bit 15 is clear")
	}
	if mod.Name != "" {
		t.Errorf("Name = %q, want empty", mod.Name)
	}
	if mod.SongCIAPeriod != ciaPeriodTable[0] {
		t.Errorf("SongCIAPeriod = %d, want %d", mod.SongCIAPeriod, ciaPeriodTable[0])
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	waves := NewWaveforms()
	data := buildMinimalAHX(t)
	data[0] = 'X'

	if _, err := Load(data, waves); err == nil {
		t.Fatal("expected an error for bad magic")
	} else if ae, ok := err.(*Error); !ok || ae.Code != ErrNotAnAHX {
		t.Errorf("expected ErrNotAnAHX, got %v", err)
	}
}

func TestLoadRejectsMissingWaves(t *testing.T) {
	data := buildMinimalAHX(t)
	if _, err := Load(data, nil); err == nil {
		t.Fatal("expected an error for nil waveform bank")
	} else if ae, ok := err.(*Error); !ok || ae.Code != ErrNoWaves {
		t.Errorf("expected ErrNoWaves, got %v", err)
	}
}

func TestLoadTrackZeroEmptyFlag(t *testing.T) {
	waves := NewWaveforms()

	var buf bytes.Buffer
	buf.WriteString("THX\x01\x00\x00")

	const lenNr = 1
	flags := uint16(lenNr) | 0x8000 // trackZeroEmpty set
	binary.Write(&buf, binary.BigEndian, flags)
	binary.Write(&buf, binary.BigEndian, uint16(0))
	buf.WriteByte(1) // trackLength
	buf.WriteByte(1) // highestTrack (2 tracks: 0 and 1)
	buf.WriteByte(0)
	buf.WriteByte(0)
	buf.Write(make([]byte, lenNr*8))
	// Only track 1's data is actually stored (track 0 is implicitly empty).
	buf.Write([]byte{0, 0, 0})
	buf.WriteByte(0)

	mod, err := Load(buf.Bytes(), waves)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if mod.TrackZeroOK {
		t.Error("TrackZeroOK should be false when header bit 15 is set")
	}
	// Tracks are always stored 64 rows apart regardless of the declared
	// trackLength (matches row()'s fixed track<<6 stride).
	if len(mod.TrackTable) != 2*64*3 {
		t.Fatalf("TrackTable len = %d, want %d", len(mod.TrackTable), 2*64*3)
	}
}

func TestInstrumentAtFallsBackToEmpty(t *testing.T) {
	m := &Module{
		Instruments:     []*Instrument{nil},
		EmptyInstrument: Instrument{Volume: 42},
	}
	got := m.instrumentAt(0)
	if got != &m.EmptyInstrument {
		t.Error("instrumentAt(0) should return the empty-instrument sentinel")
	}
	got = m.instrumentAt(5)
	if got != &m.EmptyInstrument {
		t.Error("instrumentAt(out of range) should return the empty-instrument sentinel")
	}
}

func TestRowDecode(t *testing.T) {
	m := &Module{
		HighestTrack: 0,
		TrackLength:  2,
		TrackTable: []byte{
			// row 0: note=5, instr=3, cmd=0xC, param=0x40
			(5 << 2) | (3 >> 4), (3<<4)&0xF0 | 0x0C, 0x40,
			// row 1: zeroed
			0, 0, 0,
		},
	}
	row := m.row(0, 0)
	if row.Note != 5 {
		t.Errorf("Note = %d, want 5", row.Note)
	}
	if row.Cmd != 0xC {
		t.Errorf("Cmd = %#x, want 0xC", row.Cmd)
	}
	if row.Param != 0x40 {
		t.Errorf("Param = %#x, want 0x40", row.Param)
	}
}

func TestApplyRevision0FixupsStripsCmd4(t *testing.T) {
	m := &Module{
		TrackTable: []byte{0, 0x04, 0x7F},
		Instruments: []*Instrument{
			nil,
			{PerfLength: 1, PerfList: [4 * 256]byte{0: (0 << 2), 2: 0x11, 3: 0x22}},
		},
	}
	applyRevision0Fixups(m)

	if m.TrackTable[1]&0x0F != 0 {
		t.Errorf("track cmd nibble should be stripped, got %#x", m.TrackTable[1])
	}
	if m.TrackTable[2] != 0 {
		t.Errorf("track param should be zeroed, got %#x", m.TrackTable[2])
	}
	if m.Instruments[1].PerfList[2] != 0 {
		t.Errorf("perf-list cmd1=0 param should be stripped, got %#x", m.Instruments[1].PerfList[2])
	}
}
