package midi

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/jsphweid/hlayout/config"
	"github.com/jsphweid/hlayout/model"
)

func metaText(typ byte, text string) []byte {
	return append([]byte{0xFF, typ, byte(len(text))}, text...)
}

func testSMF(t *testing.T) *smf.SMF {
	s := smf.NewSMF1()
	s.TimeFormat = smf.MetricTicks(480)

	var melody smf.Track
	melody.Add(0, metaText(0x03, "Melody"))
	melody.Add(0, []byte{0xFF, 0x58, 0x04, 3, 2, 24, 8})
	melody.Add(0, []byte{0xFF, 0x59, 0x02, 1, 0})
	melody.Add(0, gomidi.NoteOn(0, 67, 100))
	melody.Add(480, gomidi.NoteOff(0, 67))
	melody.Add(480, gomidi.NoteOn(0, 71, 90))
	melody.Add(480, gomidi.NoteOff(0, 71))
	melody.Close(0)

	var bass smf.Track
	bass.Add(0, metaText(0x03, "Bass"))
	bass.Add(1440, gomidi.NoteOn(1, 43, 80))
	bass.Add(1440, gomidi.NoteOff(1, 43))
	bass.Close(0)

	var empty smf.Track
	empty.Add(0, metaText(0x03, "Conductor"))
	empty.Close(0)

	require.NoError(t, s.Add(melody))
	require.NoError(t, s.Add(bass))
	require.NoError(t, s.Add(empty))
	return s
}

func TestToComposition(t *testing.T) {
	comp, err := ToComposition(testSMF(t), "song", config.DefaultMetrics())
	require.NoError(t, err)
	require.Len(t, comp.Staves, 2)

	assert := assert.New(t)
	assert.Equal("song", comp.Name)
	assert.Equal([]model.Time{0, 2880}, comp.BarStarts())

	melody := comp.Staves[0]
	assert.Equal("Melody", melody.Name)
	seg := melody.Segment
	require.Equal(t, 6, seg.Len())
	assert.Equal(model.TrebleClef, model.ClefOf(seg.At(0)))
	assert.Equal(model.Key{Sharps: 1}, model.KeyOf(seg.At(1)))
	assert.Equal(model.TimeSignature{Numerator: 3, Denominator: 4}, model.TimeSignatureOf(seg.At(2)))

	first := seg.At(3)
	assert.True(first.IsNote())
	assert.Equal(model.Time(0), first.Time)
	assert.Equal(model.Time(960), first.Duration)
	assert.Equal(int64(100), first.Props.IntOr(model.PropVelocity, 0))
	assert.Equal(int64(model.QuarterNote), first.Props.IntOr(model.PropNoteType, -1))

	rest := seg.At(4)
	assert.True(rest.IsRest())
	assert.Equal(model.Time(960), rest.Time)
	assert.Equal(model.Time(960), rest.Duration)

	assert.Equal(model.Time(1920), seg.At(5).Time)

	bass := comp.Staves[1]
	assert.Equal("Bass", bass.Name)
	assert.Equal(model.Time(2880), bass.Segment.StartTime())
	assert.Equal(model.BassClef, model.ClefOf(bass.Segment.At(0)))
	var ts *model.Event
	for _, e := range bass.Segment.Events() {
		if e.Isa(model.EventTimeSignature) {
			ts = e
		}
	}
	require.NotNil(t, ts)
	assert.Equal(model.Time(2880), ts.Time)
	assert.Equal(3, model.TimeSignatureOf(ts).Numerator)
}

func TestToCompositionWithoutNotes(t *testing.T) {
	s := smf.NewSMF1()
	s.TimeFormat = smf.MetricTicks(480)
	var tr smf.Track
	tr.Add(0, metaText(0x03, "Silence"))
	tr.Close(0)
	require.NoError(t, s.Add(tr))

	_, err := ToComposition(s, "quiet", config.DefaultMetrics())
	assert.Error(t, err)
}

func TestUnterminatedNotesCloseAtTrackEnd(t *testing.T) {
	s := smf.NewSMF1()
	s.TimeFormat = smf.MetricTicks(960)
	var tr smf.Track
	tr.Add(0, gomidi.NoteOn(0, 60, 100))
	tr.Add(0, gomidi.NoteOff(0, 62))
	tr.Add(1920, gomidi.NoteOn(0, 64, 0))
	tr.Close(1920)
	require.NoError(t, s.Add(tr))

	comp, err := ToComposition(s, "hanging", config.DefaultMetrics())
	require.NoError(t, err)
	require.Len(t, comp.Staves, 1)
	seg := comp.Staves[0].Segment

	var notes []*model.Event
	for _, e := range seg.Events() {
		if e.IsNote() {
			notes = append(notes, e)
		}
	}
	require.Len(t, notes, 1)
	assert.Equal(t, model.Time(3840), notes[0].Duration)
	assert.Equal(t, "Track 1", comp.Staves[0].Name)
}

func TestReadMidiFile(t *testing.T) {
	var buf bytes.Buffer
	_, err := testSMF(t).WriteTo(&buf)
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "tune.mid")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	comp, err := Load(path, config.DefaultMetrics())
	require.NoError(t, err)
	assert.Equal(t, "tune", comp.Name)
	assert.Len(t, comp.Staves, 2)

	_, err = ReadMidiFile(filepath.Join(dir, "missing.mid"))
	assert.Error(t, err)

	junk := filepath.Join(dir, "junk.mid")
	require.NoError(t, os.WriteFile(junk, []byte("not a midi file"), 0644))
	_, err = ReadMidiFile(junk)
	assert.Error(t, err)
}

func TestMetaParsing(t *testing.T) {
	long := strings.Repeat("x", 200)
	msg := smf.Message(append([]byte{0xFF, 0x03, 0x81, 0x48}, long...))
	name, ok := trackName(msg)
	assert.True(t, ok)
	assert.Equal(t, long, name)

	sharps, minor, ok := keySignature(smf.Message([]byte{0xFF, 0x59, 0x02, 0xFD, 0x01}))
	assert.True(t, ok)
	assert.Equal(t, -3, sharps)
	assert.True(t, minor)

	_, _, ok = keySignature(smf.Message([]byte{0xFF, 0x03, 0x01, 'a'}))
	assert.False(t, ok)
}
