package layout

import (
	"github.com/jsphweid/hlayout/config"
	"github.com/jsphweid/hlayout/constants"
	"github.com/jsphweid/hlayout/logging"
	"github.com/jsphweid/hlayout/model"
)

func displayAccidental(e *model.Event) model.Accidental {
	return model.Accidental(e.Derived.IntOr(model.DerivedDisplayAccidental, int64(model.NoAccidental)))
}

// MinWidth is the narrowest an event can be drawn: note body, dots and any
// display accidental for notes and rests, or a small margin plus the glyph
// for clefs, keys and time signatures.
func MinWidth(m config.Metrics, e *model.Event) int {
	if e.IsNote() || e.IsRest() {
		w := m.NoteBodyWidth
		w += m.DotWidth * int(e.Props.IntOr(model.PropNoteDots, 0))
		if displayAccidental(e) != model.NoAccidental {
			w += m.AccidentalWidth
		}
		return w
	}

	// indications span other events and take no room of their own
	if e.Isa(model.EventIndication) {
		return 0
	}

	w := m.NoteBodyWidth / 5
	switch e.Type {
	case model.EventClef:
		w += m.ClefWidth
	case model.EventKey:
		w += m.KeyWidth(model.KeyOf(e))
	case model.EventTimeSignature:
		w += m.TimeSigWidth(model.TimeSignatureOf(e))
	default:
		logging.Layout.Printf("MinWidth: no case for event type %q, using %d", e.Type, constants.DefaultMinWidth)
		w += constants.DefaultMinWidth
	}
	return w
}

// ComfortableGap is the breathing room a note of the given type wants on
// top of its minimum width.
func ComfortableGap(m config.Metrics, t model.NoteType) int {
	bw := m.NoteBodyWidth
	switch {
	case t < model.EighthNote:
		return 1
	case t == model.EighthNote:
		return bw / 2
	case t == model.QuarterNote:
		return (bw * 3) / 2
	case t == model.HalfNote:
		return bw * 3
	case t == model.WholeNote:
		return (bw * 9) / 2
	case t == model.DoubleWholeNote:
		return bw * 7
	}
	return 1
}

func noteType(e *model.Event, d model.Time) model.NoteType {
	if t, ok := e.Props.Int(model.PropNoteType); ok {
		return model.NoteType(t)
	}
	t, _ := model.NearestNote(d, constants.MaxDots)
	return t
}
