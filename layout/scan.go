package layout

import (
	"github.com/jsphweid/hlayout/chord"
	"github.com/jsphweid/hlayout/config"
	"github.com/jsphweid/hlayout/constants"
	"github.com/jsphweid/hlayout/logging"
	"github.com/jsphweid/hlayout/model"
	"github.com/jsphweid/hlayout/pitch"
	"github.com/jsphweid/hlayout/score"
	"github.com/jsphweid/hlayout/segment"
)

// barStats accumulates what one bar needs for its ideal width.
type barStats struct {
	fixedWidth int
	shortest   int // segment index, -1 for none
	shortCount int
	totalCount int
}

func quantizedDuration(e *model.Event) (model.Time, bool) {
	d, ok := e.Props.Int(model.PropQuantizedDuration)
	return d, ok
}

// To find the ideal width of a bar we take the fixed-width items plus as
// much room as the bar would need if it were made up entirely of its
// shortest note, each copy getting its minimum width and a comfortable gap.
func idealBarWidth(m config.Metrics, seg *segment.Segment, st barStats, ts model.TimeSignature) int {
	if st.shortest < 0 {
		return st.fixedWidth
	}
	e := seg.At(st.shortest)
	d, _ := quantizedDuration(e)
	if d <= 0 {
		return st.fixedWidth
	}

	smin := MinWidth(m, e)
	if e.Props.IntOr(model.PropNoteDots, 0) == 0 {
		smin += m.DotWidth / 2
	}

	// a rare shortest note doesn't get as much room
	if st.shortCount < constants.ShortCountThreshold {
		smin -= constants.ShortCountThreshold - st.shortCount
	}

	gapPer := ComfortableGap(m, noteType(e, d)) + smin
	w := st.fixedWidth + int(ts.BarDuration()*int64(gapPer)/d)
	logging.Layout.Debugf("idealBarWidth: shortCount %d, fixedWidth %d, d %d, gapPer %d -> %d",
		st.shortCount, st.fixedWidth, d, gapPer, w)
	return w
}

// ScanStaff rebuilds the staff's bar list from scratch, annotating every
// event with its derived display properties on the way.
func (h *HLayout) ScanStaff(staff *score.Staff) {
	h.register(staff)
	h.barData[staff.ID] = nil
	h.beams[staff.ID] = nil

	if !h.comp.HasTimeline() {
		logging.Layout.Printf("ERROR: ScanStaff: staff %q has no reference bar timeline, cannot lay it out", staff.Name)
		return
	}

	seg := staff.Segment
	m := staff.Metrics
	starts := h.comp.BarStarts()
	staffStart, staffEnd := seg.StartTime(), seg.EndTime()

	first := h.comp.BarIndexForTime(staffStart)
	if first < 0 {
		first = 0
	}

	key := model.Key{}
	clef := model.DefaultClef
	ts := model.DefaultTimeSignature
	var bars BarDataList

	for bi := first; bi < len(starts); bi++ {
		barStart := starts[bi]
		if bi > first && barStart >= staffEnd {
			break
		}

		from := seg.FindTime(barStart)
		to := seg.Len()
		if bi+1 < len(starts) {
			to = seg.FindTime(starts[bi+1])
		}

		st := barStats{fixedWidth: m.BarMargin, shortest: -1}
		accTable := NewAccidentalTable(key, clef)
		newAccTable := accTable

		for i := from; i < to; i++ {
			e := seg.At(i)
			e.Derived.Clear()

			switch {
			case e.Isa(model.EventClef):
				st.fixedWidth += MinWidth(m, e)
				clef = model.ClefOf(e)
				accTable = NewAccidentalTable(key, clef)
				newAccTable = accTable

			case e.Isa(model.EventKey):
				st.fixedWidth += MinWidth(m, e)
				key = model.KeyOf(e)
				accTable = NewAccidentalTable(key, clef)
				newAccTable = accTable

			case e.Isa(model.EventTimeSignature):
				st.fixedWidth += MinWidth(m, e)
				ts = model.TimeSignatureOf(e)

			case e.IsNote() || e.IsRest():
				if e.IsNote() {
					scanNote(e, key, clef, accTable, &newAccTable)
				}

				// Inside a chord only the last member counts towards the
				// bar's statistics, and only then do the accidentals of
				// the whole chord come into force.
				if !chord.At(seg, i).IsFinal(i) {
					break
				}
				accTable = newAccTable
				st.count(seg, i)
			}

			e.Derived.SetInt(model.DerivedMinWidth, int64(MinWidth(m, e)))
		}

		actualStart := staffEnd
		if from < seg.Len() {
			actualStart = seg.At(from).Time
		}

		bars = append(bars, BarData{
			BarNo:       bi,
			Start:       from,
			X:           -1,
			IdealWidth:  idealBarWidth(m, seg, st, ts),
			FixedWidth:  st.fixedWidth,
			NeedsLayout: true,
			Correct:     actualStart == barStart,
		})
	}

	h.barData[staff.ID] = bars
}

// scanNote works out where the note sits and which accidental it shows.
// The display accidental is judged against the accidentals in force when
// the previous chord ended; this note's own accidental only goes into the
// in-progress table, so other notes of the same chord see the same state.
func scanNote(e *model.Event, key model.Key, clef model.Clef, accTable AccidentalTable, newAccTable *AccidentalTable) {
	p, ok := e.Props.Int(model.PropPitch)
	if !ok {
		p = 64
		logging.Layout.Printf("WARNING: ScanStaff: couldn't get pitch for %v, using default pitch of %d", e, p)
	}

	explicit := model.NoAccidental
	if name, ok := e.Props.Str(model.PropAccidental); ok {
		if a, ok := model.AccidentalByName(name); ok {
			explicit = a
		}
	}

	dp := pitch.Resolve(int(p), key, explicit)
	height := dp.HeightOnStaff(clef)
	acc := dp.Accidental

	e.Derived.SetInt(model.DerivedHeightOnStaff, int64(height))
	e.Derived.SetInt(model.DerivedCalculatedAccidental, int64(acc))
	e.Derived.SetStr(model.DerivedNoteName, dp.String())

	dacc := accTable.DisplayAccidental(acc, height)
	e.Derived.SetInt(model.DerivedDisplayAccidental, int64(dacc))

	newAccTable.Update(acc, height)
}

func (st *barStats) count(seg *segment.Segment, i int) {
	st.totalCount++

	e := seg.At(i)
	d, ok := quantizedDuration(e)
	if !ok {
		logging.Layout.Printf("No quantized duration in note/rest! event is %v", e)
	}

	if st.shortest < 0 {
		st.shortest = i
		st.shortCount = 1
		return
	}
	sd, _ := quantizedDuration(seg.At(st.shortest))
	if d == sd {
		st.shortCount++
	} else if d < sd {
		logging.Layout.Debugf("New shortest! Duration is %d (at %d)", d, e.Time)
		st.shortest = i
		st.shortCount = 1
	}
}
