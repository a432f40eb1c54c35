package layout

import (
	"github.com/jsphweid/hlayout/chord"
	"github.com/jsphweid/hlayout/config"
	"github.com/jsphweid/hlayout/logging"
	"github.com/jsphweid/hlayout/model"
	"github.com/jsphweid/hlayout/score"
	"github.com/jsphweid/hlayout/segment"
	"github.com/jsphweid/hlayout/util"
)

// staffState is the clef, key and time signature in force while walking a staff.
type staffState struct {
	clef model.Clef
	key  model.Key
	ts   model.TimeSignature
}

func (s *staffState) track(e *model.Event) bool {
	switch {
	case e.Isa(model.EventTimeSignature):
		s.ts = model.TimeSignatureOf(e)
	case e.Isa(model.EventClef):
		s.clef = model.ClefOf(e)
	case e.Isa(model.EventKey):
		s.key = model.KeyOf(e)
	default:
		return false
	}
	return true
}

// LayoutStaff assigns x coordinates to the events of every bar that needs
// layout, using the reconciled bar widths. Bars already laid out keep their
// positions.
func (h *HLayout) LayoutStaff(staff *score.Staff) {
	list := h.barData[staff.ID]
	seg := staff.Segment
	m := staff.Metrics

	state := staffState{clef: model.DefaultClef, ts: model.DefaultTimeSignature}
	x, barX := 0, 0

	for bi := range list {
		bd := &list[bi]
		from := bd.Start
		to := seg.Len()
		if bi+1 < len(list) {
			to = list[bi+1].Start
		}

		logging.Layout.Debugf("LayoutStaff: starting bar %d, x %d, barX %d, width %d",
			bd.BarNo, x, barX, bd.IdealWidth)

		x = barX
		bd.X = x + m.BarMargin/2
		x += m.BarMargin
		barX += bd.IdealWidth

		if bd.BarNo < 0 {
			continue
		}
		if !bd.NeedsLayout {
			// positions stand, but later bars need the state changes
			for i := from; i < to; i++ {
				state.track(seg.At(i))
			}
			x = bd.endX
			continue
		}

		haveAccidentalInChord := false

		for i := from; i < to; i++ {
			e := seg.At(i)
			e.X = x
			delta := int(e.Derived.IntOr(model.DerivedMinWidth, 0))

			switch {
			case state.track(e):
			case e.IsRest():
				delta = positionRest(m, e, bd, state.ts)
				delta = closeChord(m, seg, i, delta, &haveAccidentalInChord)
			case e.IsNote():
				delta = positionNote(m, e, bd, state.ts, &haveAccidentalInChord)
				delta = closeChord(m, seg, i, delta, &haveAccidentalInChord)
				h.maybeApplyBeam(staff, i)
			}

			x += delta
		}

		bd.endX = x
		bd.NeedsLayout = false
	}

	h.staffWidth[staff.ID] = x
	h.totalWidth = util.Max(h.totalWidth, x)
}

// allotted is the element's share of the bar's non-fixed width, in
// proportion to its duration.
func allotted(bd *BarData, e *model.Event, ts model.TimeSignature) int {
	// NOTE: not right for a partial bar
	return int(int64(bd.IdealWidth-bd.FixedWidth) * e.Duration / ts.BarDuration())
}

func positionRest(m config.Metrics, e *model.Event, bd *BarData, ts model.TimeSignature) int {
	delta := allotted(bd, e, ts)

	// sit the rest a little further into its space
	bw := m.NoteBodyWidth
	if delta > bw {
		shift := util.Min((delta-bw)/4, bw*4)
		e.X += shift
	}
	return delta
}

func positionNote(m config.Metrics, e *model.Event, bd *BarData, ts model.TimeSignature, haveAccidental *bool) int {
	delta := allotted(bd, e, ts)

	bw := m.NoteBodyWidth
	if delta > bw {
		shift := util.Min((delta-bw)/5, bw*3)
		e.X += shift
	}

	// The note's hot spot is the note head, so an accidental needs room to
	// its left. That has to be done for the whole chord at once.
	if displayAccidental(e) != model.NoAccidental {
		*haveAccidental = true
	}
	return delta
}

// closeChord only lets the last member of a chord advance the cursor. On
// that member, if any note of the chord shows an accidental, every member
// is moved right by one accidental width.
func closeChord(m config.Metrics, seg *segment.Segment, i int, delta int, haveAccidental *bool) int {
	c := chord.At(seg, i)
	if !c.IsFinal(i) {
		return 0
	}
	if *haveAccidental {
		for _, member := range c.Members() {
			member.X += m.AccidentalWidth
		}
	}
	*haveAccidental = false
	return delta
}
