package layout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jsphweid/hlayout/model"
)

func TestSchedulerCoalescesChanges(t *testing.T) {
	comp := newComp(
		[]*model.Event{model.NewNote(0, 3840, 72)},
		[]*model.Event{model.NewNote(0, 3840, 72)},
	)
	h := New(comp)
	h.LayoutAll()
	s := NewScheduler(h, 20*time.Millisecond)

	s.Do(func(h *HLayout) {
		staff := comp.Staves[1]
		staff.Segment.Remove(staff.Segment.At(0))
		for _, e := range eighths(0, 8, 72) {
			e.Props.SetInt(model.PropQuantizedDuration, e.Duration)
			e.Props.SetInt(model.PropNoteType, int64(model.EighthNote))
			staff.Segment.Insert(e)
		}
	})
	s.StaffChanged(comp.Staves[1])
	s.StaffChanged(comp.Staves[1])

	assert.Eventually(t, func() bool { return s.Passes() == 1 }, time.Second, 5*time.Millisecond)

	s.Current(func(h *HLayout) {
		// the unchanged staff was reconciled against the new eighths
		assert.Equal(t, 152, h.BarData(comp.Staves[0])[0].IdealWidth)
		assert.Equal(t, 152, h.TotalWidth())
	})
	assert.Equal(t, 1, s.Passes())
}

func TestSchedulerCurrentFlushes(t *testing.T) {
	comp := newComp([]*model.Event{model.NewNote(0, 3840, 72)})
	h := New(comp)
	s := NewScheduler(h, time.Hour)

	s.StaffChanged(comp.Staves[0])
	s.Current(func(h *HLayout) {
		assert.Equal(t, 1, h.BarLineCount(comp.Staves[0]))
	})
	assert.Equal(t, 1, s.Passes())

	// nothing pending, nothing to do
	s.Flush()
	assert.Equal(t, 1, s.Passes())
}
