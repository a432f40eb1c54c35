package layout

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsphweid/hlayout/config"
	"github.com/jsphweid/hlayout/logging"
	"github.com/jsphweid/hlayout/model"
	"github.com/jsphweid/hlayout/quantize"
	"github.com/jsphweid/hlayout/score"
	"github.com/jsphweid/hlayout/segment"
)

func newComp(staves ...[]*model.Event) *score.Composition {
	comp := score.New("test")
	for i, events := range staves {
		comp.AddStaff(score.NewStaff(fmt.Sprintf("staff %d", i+1), segment.New(events...), config.DefaultMetrics()))
	}
	if err := comp.BuildTimeline(nil); err != nil {
		panic(err)
	}
	quantize.New().QuantizeComposition(comp)
	return comp
}

func eighths(from model.Time, n int, pitch int) []*model.Event {
	var res []*model.Event
	for i := 0; i < n; i++ {
		res = append(res, model.NewNote(from+model.Time(i)*480, 480, pitch))
	}
	return res
}

func TestSingleWholeNoteBarWidth(t *testing.T) {
	comp := newComp([]*model.Event{model.NewNote(0, 3840, 72)})
	h := New(comp)
	h.LayoutAll()

	bars := h.BarData(comp.Staves[0])
	require.Len(t, bars, 1)

	assert := assert.New(t)
	// margin 16 + whole note gap 45 + min width 10 with the rare-note reduction
	assert.Equal(71, bars[0].IdealWidth)
	assert.Equal(16, bars[0].FixedWidth)
	assert.Equal(0, bars[0].BarNo)
	assert.True(bars[0].Correct)
	assert.False(bars[0].NeedsLayout)
}

func TestReconcileTwoStaves(t *testing.T) {
	comp := newComp(
		[]*model.Event{model.NewNote(0, 3840, 72)},
		eighths(0, 8, 72),
	)
	h := New(comp)
	h.LayoutAll()

	a := h.BarData(comp.Staves[0])
	b := h.BarData(comp.Staves[1])
	require.Len(t, a, 1)
	require.Len(t, b, 1)

	assert := assert.New(t)
	assert.Equal(152, b[0].IdealWidth)
	assert.Equal(16, b[0].FixedWidth)
	assert.Equal(152, a[0].IdealWidth)
	// 16 stretched by half of 152/71
	assert.Equal(25, a[0].FixedWidth)

	assert.Equal(8, h.BarLineX(comp.Staves[0], 0))
	assert.Equal(8, h.BarLineX(comp.Staves[1], 0))

	whole := comp.Staves[0].Segment.At(0)
	assert.Equal(16+23, whole.X)

	seg := comp.Staves[1].Segment
	for i := 0; i < seg.Len(); i++ {
		assert.Equal(16+17*i+1, seg.At(i).X, "eighth %d", i)
	}
	assert.Equal(152, h.TotalWidth())
	assert.Equal(143, h.StaffWidth(comp.Staves[0]))
}

func TestConcurrentBarsShareWidth(t *testing.T) {
	ref := []*model.Event{
		model.NewNote(0, 3840, 60),
		model.NewNote(3840, 960, 62),
		model.NewNote(4800, 960, 64),
		model.NewNote(5760, 1920, 65),
	}
	other := append(eighths(0, 8, 67), model.NewNote(3840, 3840, 55))
	comp := newComp(ref, other)
	h := New(comp)
	h.LayoutAll()

	a := h.BarData(comp.Staves[0])
	b := h.BarData(comp.Staves[1])
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].IdealWidth, b[i].IdealWidth, "bar %d", i)
		assert.Equal(t, a[i].X, b[i].X, "bar %d", i)
	}
}

func TestLayoutIsIdempotent(t *testing.T) {
	comp := newComp(
		[]*model.Event{model.NewNote(0, 1920, 61), model.NewNote(1920, 1920, 60)},
		eighths(0, 8, 72),
	)
	h := New(comp)
	h.LayoutAll()

	first := map[*score.Staff]BarDataList{}
	xs := map[*model.Event]int{}
	for _, s := range comp.Staves {
		first[s] = append(BarDataList(nil), h.BarData(s)...)
		for _, e := range s.Segment.Events() {
			xs[e] = e.X
		}
	}

	h.LayoutAll()

	assert := assert.New(t)
	for _, s := range comp.Staves {
		assert.Equal(first[s], h.BarData(s))
		for _, e := range s.Segment.Events() {
			assert.Equal(xs[e], e.X)
		}
	}
}

func TestPositionPassIsIdempotent(t *testing.T) {
	comp := newComp(
		[]*model.Event{model.NewNote(0, 3840, 72), model.NewNote(3840, 3840, 72)},
		append(eighths(0, 8, 72), eighths(3840, 8, 74)...),
	)
	h := New(comp)
	h.LayoutAll()

	widths := map[*score.Staff]int{}
	xs := map[*model.Event]int{}
	for _, s := range comp.Staves {
		widths[s] = h.StaffWidth(s)
		for _, e := range s.Segment.Events() {
			xs[e] = e.X
		}
	}
	total := h.TotalWidth()

	// every bar is clean now, so this only walks the cached bars
	for _, s := range comp.Staves {
		h.LayoutStaff(s)
	}

	assert := assert.New(t)
	assert.Equal(total, h.TotalWidth())
	for _, s := range comp.Staves {
		assert.Equal(widths[s], h.StaffWidth(s), s.Name)
		for _, e := range s.Segment.Events() {
			assert.Equal(xs[e], e.X)
		}
	}
	assert.Equal(304, h.StaffWidth(comp.Staves[1]))

	// rescanning one staff leaves the other staff's width alone
	h.ScanStaff(comp.Staves[0])
	h.FinishLayout()
	assert.Equal(widths[comp.Staves[1]], h.StaffWidth(comp.Staves[1]))
	assert.Equal(widths[comp.Staves[0]], h.StaffWidth(comp.Staves[0]))
}

func TestCursorIsMonotonic(t *testing.T) {
	events := []*model.Event{
		model.NewClefEvent(0, model.TrebleClef),
		model.NewKeyEvent(0, model.Key{Sharps: 2}),
		model.NewTimeSignatureEvent(0, model.TimeSignature{Numerator: 3, Denominator: 4}),
		model.NewNote(0, 960, 61),
		model.NewNote(960, 480, 63),
		model.NewNote(1440, 480, 66),
		model.NewRest(1920, 960),
		model.NewNote(2880, 2880, 70),
		model.NewNote(5760, 240, 72),
		model.NewNote(6000, 240, 73),
		model.NewNote(6240, 480, 74),
		model.NewRest(6720, 1920),
	}
	comp := newComp(events)
	h := New(comp)
	h.LayoutAll()

	seg := comp.Staves[0].Segment
	for i := 1; i < seg.Len(); i++ {
		assert.LessOrEqual(t, seg.At(i-1).X, seg.At(i).X, "event %d", i)
	}
	bars := h.BarData(comp.Staves[0])
	for i := 1; i < len(bars); i++ {
		assert.Less(t, bars[i-1].X, bars[i].X)
	}
}

func TestChordCountsOnce(t *testing.T) {
	single := newComp([]*model.Event{
		model.NewNote(0, 960, 60),
		model.NewNote(960, 960, 60),
		model.NewNote(1920, 960, 60),
		model.NewNote(2880, 960, 60),
	})
	chorded := newComp([]*model.Event{
		model.NewNote(0, 960, 60),
		model.NewNote(0, 960, 64),
		model.NewNote(0, 960, 67),
		model.NewNote(960, 960, 60),
		model.NewNote(1920, 960, 60),
		model.NewNote(2880, 960, 60),
	})

	hs := New(single)
	hs.LayoutAll()
	hc := New(chorded)
	hc.LayoutAll()

	assert := assert.New(t)
	assert.Equal(hs.BarData(single.Staves[0])[0].IdealWidth, hc.BarData(chorded.Staves[0])[0].IdealWidth)

	seg := chorded.Staves[0].Segment
	assert.Equal(seg.At(0).X, seg.At(1).X)
	assert.Equal(seg.At(0).X, seg.At(2).X)
	// the cursor moved by one crotchet's share only
	assert.Equal(single.Staves[0].Segment.At(1).X, seg.At(3).X)
}

func TestChordAccidentalShiftsEveryMember(t *testing.T) {
	comp := newComp([]*model.Event{
		model.NewNote(0, 3840, 64),
		model.NewNote(0, 3840, 68),
	})
	h := New(comp)
	h.LayoutAll()

	seg := comp.Staves[0].Segment
	assert := assert.New(t)
	assert.Equal(model.NoAccidental, displayAccidental(seg.At(0)))
	assert.Equal(model.Sharp, displayAccidental(seg.At(1)))
	// margin 16, nudge (63-10)/5, accidental 8
	assert.Equal(34, seg.At(0).X)
	assert.Equal(34, seg.At(1).X)
}

func TestAccidentalsWithinBar(t *testing.T) {
	comp := newComp([]*model.Event{
		model.NewNote(0, 960, 61),
		model.NewNote(960, 960, 60),
		model.NewNote(1920, 960, 61),
		model.NewNote(2880, 960, 61),
		model.NewNote(3840, 960, 61),
	})
	h := New(comp)
	h.LayoutAll()

	seg := comp.Staves[0].Segment
	assert := assert.New(t)
	assert.Equal(model.Sharp, displayAccidental(seg.At(0)))
	assert.Equal(model.Natural, displayAccidental(seg.At(1)))
	assert.Equal(model.Sharp, displayAccidental(seg.At(2)))
	assert.Equal(model.NoAccidental, displayAccidental(seg.At(3)))
	// new bar, fresh table
	assert.Equal(model.Sharp, displayAccidental(seg.At(4)))

	assert.Equal("C#4", seg.At(0).Derived.StrOr(model.DerivedNoteName, ""))
	assert.Equal(int64(-2), seg.At(0).Derived.IntOr(model.DerivedHeightOnStaff, 0))
}

func TestKeySignatureAccidentals(t *testing.T) {
	comp := newComp([]*model.Event{
		model.NewKeyEvent(0, model.Key{Sharps: 1}),
		model.NewNote(0, 1920, 66),
		model.NewNote(1920, 1920, 65),
	})
	h := New(comp)
	h.LayoutAll()

	seg := comp.Staves[0].Segment
	assert := assert.New(t)
	assert.Equal(model.NoAccidental, displayAccidental(seg.At(1)))
	assert.Equal(model.Natural, displayAccidental(seg.At(2)))
	assert.Equal(int64(10+8), seg.At(2).Derived.IntOr(model.DerivedMinWidth, 0))
}

func TestLateStartingStaffIsPadded(t *testing.T) {
	ref := []*model.Event{
		model.NewNote(0, 3840, 72),
		model.NewNote(3840, 3840, 72),
		model.NewNote(7680, 3840, 72),
	}
	late := []*model.Event{model.NewNote(7680, 3840, 72)}
	comp := newComp(ref, late)
	h := New(comp)
	h.LayoutAll()

	staff := comp.Staves[1]
	assert := assert.New(t)
	require.Equal(t, 3, h.BarLineCount(staff))
	assert.Equal(-1, h.BarLineDisplayNumber(staff, 0))
	assert.Equal(-1, h.BarLineDisplayNumber(staff, 1))
	assert.Equal(2, h.BarLineDisplayNumber(staff, 2))
	assert.True(h.IsBarLineCorrect(staff, 2))

	for i := 0; i < 3; i++ {
		assert.Equal(h.BarLineX(comp.Staves[0], i), h.BarLineX(staff, i), "bar %d", i)
	}
	assert.Equal(comp.Staves[0].Segment.At(2).X, staff.Segment.At(0).X)
	assert.Equal(142+16+9, staff.Segment.At(0).X)
}

func TestMidBarStartIsNotCorrect(t *testing.T) {
	comp := newComp(
		[]*model.Event{model.NewNote(0, 3840, 72)},
		[]*model.Event{model.NewNote(1920, 1920, 67)},
	)
	h := New(comp)
	h.LayoutAll()

	staff := comp.Staves[1]
	require.Equal(t, 1, h.BarLineCount(staff))
	assert.False(t, h.IsBarLineCorrect(staff, 0))
	assert.Equal(t, 0, h.BarLineDisplayNumber(staff, 0))
}

func TestNoTimelineProducesNoBars(t *testing.T) {
	comp := score.New("empty grid")
	comp.AddStaff(score.NewStaff("solo", segment.New(model.NewNote(0, 960, 60)), config.DefaultMetrics()))
	h := New(comp)
	h.LayoutAll()

	assert := assert.New(t)
	assert.Equal(0, h.BarLineCount(comp.Staves[0]))
	assert.Equal(0, h.TotalWidth())
}

func TestBarWidthFallsBackToFixedWidth(t *testing.T) {
	tests := []struct {
		name   string
		events []*model.Event
		prep   func(comp *score.Composition)
		bar    int
		logged string
	}{
		{
			name: "only clef, key and time signature",
			events: []*model.Event{
				model.NewClefEvent(0, model.BassClef),
				model.NewKeyEvent(0, model.Key{Sharps: 2}),
				model.NewTimeSignatureEvent(0, model.TimeSignature{Numerator: 3, Denominator: 4}),
				model.NewNote(2880, 2880, 48),
			},
			bar: 0,
		},
		{
			name: "empty bar between notes",
			events: []*model.Event{
				model.NewNote(0, 3840, 60),
				model.NewNote(7680, 3840, 60),
			},
			bar: 1,
		},
		{
			name:   "note without quantized duration",
			events: eighths(0, 8, 72),
			prep: func(comp *score.Composition) {
				comp.Staves[0].Segment.At(3).Props.Unset(model.PropQuantizedDuration)
			},
			bar:    0,
			logged: "No quantized duration in note/rest!",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			old := logging.Stream
			logging.Stream = &logs
			defer func() { logging.Stream = old }()

			comp := newComp(tt.events)
			if tt.prep != nil {
				tt.prep(comp)
			}
			h := New(comp)
			h.LayoutAll()

			bars := h.BarData(comp.Staves[0])
			require.Greater(t, len(bars), tt.bar)
			bar := bars[tt.bar]
			assert.Equal(t, bar.FixedWidth, bar.IdealWidth)
			assert.True(t, bar.FixedWidth >= config.DefaultMetrics().BarMargin)
			if tt.logged != "" {
				assert.Contains(t, logs.String(), tt.logged)
			}
		})
	}
}

func TestCleanBarsKeepPositions(t *testing.T) {
	comp := newComp([]*model.Event{
		model.NewNote(0, 3840, 72),
		model.NewNote(3840, 3840, 72),
	})
	h := New(comp)
	h.LayoutAll()

	staff := comp.Staves[0]
	second := staff.Segment.At(1)
	x := second.X
	second.X = -100

	h.FinishLayout()
	assert.Equal(t, -100, second.X, "clean bar was laid out again")

	h.ScanStaff(staff)
	h.FinishLayout()
	assert.Equal(t, x, second.X)
}

func TestBeamPlacement(t *testing.T) {
	events := eighths(0, 4, 72)
	events = append(events, model.NewNote(1920, 1920, 72))
	comp := newComp(events)
	comp.Staves[0].Segment.AutoBeam()
	h := New(comp)
	h.LayoutAll()

	staff := comp.Staves[0]
	beams := h.Beams(staff)
	require.Len(t, beams, 2)

	seg := staff.Segment
	assert := assert.New(t)
	assert.Equal(seg.At(0).X, beams[0].StartX)
	assert.Equal(seg.At(1).X, beams[0].EndX)
	assert.Equal(2, beams[0].Count)
	assert.Equal(seg.At(2).X, beams[1].StartX)
	assert.Equal(int64(2), seg.At(2).Derived.IntOr(model.DerivedBeamCount, 0))
	assert.False(seg.At(1).Derived.Has(model.DerivedBeamCount))
}

func TestResetStaffForgetsBars(t *testing.T) {
	comp := newComp([]*model.Event{model.NewNote(0, 3840, 72)})
	h := New(comp)
	h.LayoutAll()
	staff := comp.Staves[0]
	require.Equal(t, 1, h.BarLineCount(staff))

	h.ResetStaff(staff)
	assert.Equal(t, 0, h.BarLineCount(staff))

	h.Reset()
	assert.Equal(t, 0, h.TotalWidth())
}

func TestResponse(t *testing.T) {
	comp := newComp([]*model.Event{
		model.NewClefEvent(0, model.TrebleClef),
		model.NewNote(0, 3840, 61),
	})
	h := New(comp)
	h.LayoutAll()

	res := h.Response()
	require.Len(t, res.Staves, 1)
	staff := res.Staves[0]

	assert := assert.New(t)
	assert.Equal(comp.Staves[0].ID.String(), staff.ID)
	assert.Len(staff.Bars, 1)
	require.Len(t, staff.Elements, 2)
	assert.Nil(staff.Elements[0].Height)
	require.NotNil(t, staff.Elements[1].Height)
	assert.Equal(-2, *staff.Elements[1].Height)
	assert.Equal("sharp", staff.Elements[1].DisplayAccidental)
	assert.Equal(h.TotalWidth(), res.TotalWidth)
}
