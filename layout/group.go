package layout

import (
	"sort"

	"github.com/jsphweid/hlayout/model"
	"github.com/jsphweid/hlayout/score"
	"github.com/jsphweid/hlayout/util"
)

// Beam is the horizontal extent of a beamed group.
type Beam struct {
	Group  int64
	StartX int
	EndX   int
	// Count is the number of distinct times (chords) under the beam.
	Count int
}

// maybeApplyBeam places the beam when the note at i is the last of its
// group. It has to run after the chord's accidental shift because the beam
// follows the notes' final x.
func (h *HLayout) maybeApplyBeam(staff *score.Staff, i int) {
	seg := staff.Segment
	e := seg.At(i)
	group, ok := e.Props.Int(model.PropBeamGroup)
	if !ok {
		return
	}
	if i+1 < seg.Len() {
		if next, ok := seg.At(i + 1).Props.Int(model.PropBeamGroup); ok && next == group {
			return
		}
	}

	first := i
	for first > 0 {
		g, ok := seg.At(first - 1).Props.Int(model.PropBeamGroup)
		if !ok || g != group {
			break
		}
		first--
	}

	b := Beam{Group: group, StartX: seg.At(first).X, EndX: seg.At(first).X}
	var lastTime model.Time = -1
	for j := first; j <= i; j++ {
		m := seg.At(j)
		if !m.IsNote() {
			continue
		}
		b.StartX = util.Min(b.StartX, m.X)
		b.EndX = util.Max(b.EndX, m.X)
		if m.Time != lastTime {
			b.Count++
			lastTime = m.Time
		}
	}

	head := seg.At(first)
	head.Derived.SetInt(model.DerivedBeamStartX, int64(b.StartX))
	head.Derived.SetInt(model.DerivedBeamEndX, int64(b.EndX))
	head.Derived.SetInt(model.DerivedBeamCount, int64(b.Count))

	if h.beams[staff.ID] == nil {
		h.beams[staff.ID] = make(map[int64]Beam)
	}
	h.beams[staff.ID][group] = b
}

// Beams returns the staff's beams ordered by position.
func (h *HLayout) Beams(staff *score.Staff) []Beam {
	byGroup := h.beams[staff.ID]
	res := make([]Beam, 0, len(byGroup))
	for _, g := range util.GetSortedKeys(byGroup) {
		res = append(res, byGroup[g])
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].StartX < res[j].StartX
	})
	return res
}
