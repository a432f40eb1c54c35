// Package layout computes horizontal notation layout: how wide each bar is,
// where each element sits within it, and how concurrent bars on different
// staves are made to line up.
//
// A pass runs ScanStaff for every changed staff, then FinishLayout, which
// reconciles bar widths across all staves and assigns positions. Nothing
// here is safe for concurrent use; Scheduler serialises access for callers
// that need it.
package layout

import (
	"github.com/jsphweid/hlayout/model"
	"github.com/jsphweid/hlayout/score"
)

type BarData struct {
	// BarNo is the bar's index in the composition's bar grid, or -1 for
	// padding in front of a staff that starts late.
	BarNo int
	// Start is the segment index of the bar's first event.
	Start       int
	X           int
	IdealWidth  int
	FixedWidth  int
	NeedsLayout bool
	// Correct is false when the staff's first event in the bar does not
	// sit on the bar line.
	Correct bool

	// endX is where the bar's content ended when it was last laid out.
	endX int
}

type BarDataList []BarData

type HLayout struct {
	comp       *score.Composition
	staves     map[score.StaffID]*score.Staff
	order      []score.StaffID
	barData    map[score.StaffID]BarDataList
	beams      map[score.StaffID]map[int64]Beam
	staffWidth map[score.StaffID]int
	totalWidth int
}

func New(comp *score.Composition) *HLayout {
	h := &HLayout{comp: comp}
	h.Reset()
	return h
}

func (h *HLayout) Composition() *score.Composition { return h.comp }

func (h *HLayout) register(staff *score.Staff) {
	if _, ok := h.staves[staff.ID]; ok {
		return
	}
	h.staves[staff.ID] = staff
	h.order = append(h.order, staff.ID)
}

func (h *HLayout) Reset() {
	h.staves = make(map[score.StaffID]*score.Staff)
	h.order = nil
	h.barData = make(map[score.StaffID]BarDataList)
	h.beams = make(map[score.StaffID]map[int64]Beam)
	h.staffWidth = make(map[score.StaffID]int)
	h.totalWidth = 0
}

func (h *HLayout) ResetStaff(staff *score.Staff) {
	delete(h.barData, staff.ID)
	delete(h.beams, staff.ID)
	delete(h.staffWidth, staff.ID)
	h.totalWidth = 0
}

// BarData returns the cached bars of a staff. Callers must not modify it.
func (h *HLayout) BarData(staff *score.Staff) BarDataList {
	return h.barData[staff.ID]
}

// LayoutAll scans every staff of the composition and finishes the layout.
func (h *HLayout) LayoutAll() {
	h.totalWidth = 0
	for _, s := range h.comp.Staves {
		h.ScanStaff(s)
	}
	h.FinishLayout()
}

func (h *HLayout) FinishLayout() {
	h.ReconcileBars()
	for _, id := range h.order {
		h.LayoutStaff(h.staves[id])
	}
}

// TotalWidth is the furthest x reached on any staff.
func (h *HLayout) TotalWidth() int { return h.totalWidth }

func (h *HLayout) StaffWidth(staff *score.Staff) int { return h.staffWidth[staff.ID] }

func (h *HLayout) BarLineCount(staff *score.Staff) int {
	return len(h.barData[staff.ID])
}

func (h *HLayout) BarLineX(staff *score.Staff, i int) int {
	return h.barData[staff.ID][i].X
}

func (h *HLayout) BarLineDisplayNumber(staff *score.Staff, i int) int {
	return h.barData[staff.ID][i].BarNo
}

func (h *HLayout) IsBarLineCorrect(staff *score.Staff, i int) bool {
	return h.barData[staff.ID][i].Correct
}

// Response describes the current layout of every registered staff.
func (h *HLayout) Response() model.LayoutResponse {
	res := model.LayoutResponse{TotalWidth: h.totalWidth, Staves: []model.StaffLayout{}}
	for _, id := range h.order {
		staff := h.staves[id]
		sl := model.StaffLayout{
			ID:       id.String(),
			Name:     staff.Name,
			Bars:     []model.BarLayout{},
			Elements: []model.ElementLayout{},
		}
		for _, bd := range h.barData[id] {
			sl.Bars = append(sl.Bars, model.BarLayout{
				Number:     bd.BarNo,
				X:          bd.X,
				Width:      bd.IdealWidth,
				FixedWidth: bd.FixedWidth,
				Correct:    bd.Correct,
			})
		}
		for _, e := range staff.Segment.Events() {
			el := model.ElementLayout{
				Type:     e.Type,
				Time:     e.Time,
				X:        e.X,
				MinWidth: int(e.Derived.IntOr(model.DerivedMinWidth, 0)),
			}
			if hgt, ok := e.Derived.Int(model.DerivedHeightOnStaff); ok {
				v := int(hgt)
				el.Height = &v
			}
			if acc := displayAccidental(e); acc != model.NoAccidental {
				el.DisplayAccidental = acc.String()
			}
			sl.Elements = append(sl.Elements, el)
		}
		res.Staves = append(res.Staves, sl)
	}
	return res
}
