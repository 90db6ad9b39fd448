package ahx

import (
	"bytes"
	"encoding/binary"
	"testing"

	clone "github.com/huandu/go-clone/generic"
	"github.com/stretchr/testify/require"
)

// buildNotePlayingAHX assembles a one-position, one-track, one-instrument
// module whose only row triggers instrument 1 on note 48 at row 0, with
// the song tempo left at its Play-time default of 6.
func buildNotePlayingAHX(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("THX\x01\x00\x00")

	const lenNr = 1
	flags := uint16(lenNr)
	binary.Write(&buf, binary.BigEndian, flags)
	binary.Write(&buf, binary.BigEndian, uint16(0)) // resNr
	buf.WriteByte(1)                                // trackLength
	buf.WriteByte(0)                                // highestTrack
	buf.WriteByte(1)                                // numInstruments
	buf.WriteByte(0)                                // subsongs

	buf.Write(make([]byte, lenNr*8)) // position table: all voices on track 0

	const note, instr = 48, 1
	b0 := byte(note<<2) | byte(instr>>4)
	b1 := byte(instr&3) << 4
	buf.Write([]byte{b0, b1, 0})

	// Instrument 1: minimal envelope (non-zero Frames counts for
	// loadInstrument, full attack/decay volume) and a one-entry
	// performance list that selects the triangle waveform, so the
	// triggered note is audible.
	hdr := make([]byte, 22)
	hdr[0] = 64 // Volume
	hdr[2] = 1  // AFrames
	hdr[3] = 64 // AVolume
	hdr[4] = 1  // DFrames
	hdr[5] = 64 // DVolume
	hdr[6] = 1  // SFrames
	hdr[7] = 1  // RFrames
	hdr[16] = 0x20
	hdr[17] = 0x3F
	hdr[18] = 1
	hdr[19] = 0x1F
	hdr[20] = 1 // PerfSpeed
	hdr[21] = 1 // PerfLength
	buf.Write(hdr)
	buf.Write([]byte{0x00, 0x80, 0x00, 0x00}) // perf entry: waveform 1 (triangle)

	buf.WriteByte(0) // song name terminator

	return buf.Bytes()
}

func TestPlayerTriggersNoteAndAdvancesPosition(t *testing.T) {
	waves := NewWaveforms()
	data := buildNotePlayingAHX(t)

	mod, err := Load(data, waves)
	require.NoError(t, err)
	require.Len(t, mod.Instruments, 2)

	p := New(mod, waves, 44100)
	require.NoError(t, p.Play(0))

	pos, row := p.Position()
	require.Equal(t, 0, pos)
	require.Equal(t, 0, row)

	buf := make([]int16, 2*4096)
	p.OutputSamples(buf, 4096)

	if !p.paula[0].active {
		t.Fatal("voice 0 should have become active once the instrument's note was triggered")
	}

	var sawNonZero bool
	for _, s := range buf {
		if s != 0 {
			sawNonZero = true
			break
		}
	}
	if !sawNonZero {
		t.Error("expected at least one non-silent output sample once a note is playing")
	}
}

func TestPlayRejectsMissingModule(t *testing.T) {
	p := &Player{}
	err := p.Play(0)
	require.Error(t, err)
	ae, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, ErrSongNotLoaded, ae.Code)
}

func TestPlayRejectsOutOfRangeSubsong(t *testing.T) {
	waves := NewWaveforms()
	mod, err := Load(buildNotePlayingAHX(t), waves)
	require.NoError(t, err)

	p := New(mod, waves, 44100)
	err = p.Play(5)
	require.Error(t, err)
}

// TestClonedPlayerVoiceStateIsIndependent clones a mid-playback Player
// with go-clone and confirms mutating the source's per-voice state
// afterward leaves the clone untouched, the same independence
// resetVoices relies on between Play calls on a single Player.
func TestClonedPlayerVoiceStateIsIndependent(t *testing.T) {
	waves := NewWaveforms()
	mod, err := Load(buildNotePlayingAHX(t), waves)
	require.NoError(t, err)

	p := New(mod, waves, 44100)
	require.NoError(t, p.Play(0))

	buf := make([]int16, 2*512)
	p.OutputSamples(buf, 512)

	cloned := clone.Clone(p)
	wantVolume := cloned.v[0].NoteMaxVolume

	p.v[0].NoteMaxVolume = wantVolume + 1

	require.Equal(t, wantVolume, cloned.v[0].NoteMaxVolume,
		"mutating the source player's voice state should not affect the clone")
}
