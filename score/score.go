package score

import (
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/jsphweid/hlayout/config"
	"github.com/jsphweid/hlayout/model"
	"github.com/jsphweid/hlayout/segment"
)

type StaffID = uuid.UUID

var ErrNoTimeline = errors.New("composition has no bar timeline")

type Staff struct {
	ID      StaffID
	Name    string
	Segment *segment.Segment
	Metrics config.Metrics
}

func NewStaff(name string, seg *segment.Segment, m config.Metrics) *Staff {
	if seg == nil {
		seg = segment.New()
	}
	return &Staff{ID: uuid.New(), Name: name, Segment: seg, Metrics: m}
}

// Composition is a set of staves sharing one bar grid.
type Composition struct {
	Name      string
	Staves    []*Staff
	barStarts []model.Time
}

func New(name string) *Composition {
	return &Composition{Name: name}
}

func (c *Composition) AddStaff(s *Staff) {
	c.Staves = append(c.Staves, s)
}

func (c *Composition) Staff(id StaffID) *Staff {
	for _, s := range c.Staves {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (c *Composition) SetBarStarts(starts []model.Time) {
	c.barStarts = append([]model.Time(nil), starts...)
	sort.Slice(c.barStarts, func(i, j int) bool {
		return c.barStarts[i] < c.barStarts[j]
	})
}

func (c *Composition) BarStarts() []model.Time { return c.barStarts }

func (c *Composition) HasTimeline() bool { return len(c.barStarts) > 0 }

// BarIndexForTime is the index of the last bar starting at or before t, or
// -1 if t precedes the grid.
func (c *Composition) BarIndexForTime(t model.Time) int {
	i := sort.Search(len(c.barStarts), func(i int) bool {
		return c.barStarts[i] > t
	})
	return i - 1
}

func (c *Composition) BarStartForTime(t model.Time) model.Time {
	i := c.BarIndexForTime(t)
	if i < 0 {
		return 0
	}
	return c.barStarts[i]
}

func (c *Composition) StartTime() model.Time {
	if len(c.Staves) == 0 {
		return 0
	}
	start := c.Staves[0].Segment.StartTime()
	for _, s := range c.Staves[1:] {
		if t := s.Segment.StartTime(); t < start {
			start = t
		}
	}
	return start
}

func (c *Composition) EndTime() model.Time {
	var end model.Time
	for _, s := range c.Staves {
		if t := s.Segment.EndTime(); t > end {
			end = t
		}
	}
	return end
}

// TimeSignatureAt returns the time signature in force at t on the
// reference (first) staff.
func (c *Composition) TimeSignatureAt(t model.Time) model.TimeSignature {
	ts := model.DefaultTimeSignature
	if len(c.Staves) == 0 {
		return ts
	}
	for _, e := range c.Staves[0].Segment.Events() {
		if e.Time > t {
			break
		}
		if e.Isa(model.EventTimeSignature) {
			ts = model.TimeSignatureOf(e)
		}
	}
	return ts
}

// BuildTimeline derives the bar grid from the time signatures of the
// reference staff, from time zero to the end of the composition.
func (c *Composition) BuildTimeline(ref *Staff) error {
	if ref == nil {
		if len(c.Staves) == 0 {
			return ErrNoTimeline
		}
		ref = c.Staves[0]
	}
	var changes []*model.Event
	for _, e := range ref.Segment.Events() {
		if e.Isa(model.EventTimeSignature) {
			changes = append(changes, e)
		}
	}

	end := c.EndTime()
	ts := model.DefaultTimeSignature
	var starts []model.Time
	var t model.Time
	next := 0
	for t < end || len(starts) == 0 {
		for next < len(changes) && changes[next].Time <= t {
			ts = model.TimeSignatureOf(changes[next])
			next++
		}
		starts = append(starts, t)
		barEnd := t + ts.BarDuration()
		// a time signature change mid-bar starts a new bar
		if next < len(changes) && changes[next].Time < barEnd && changes[next].Time > t {
			barEnd = changes[next].Time
		}
		t = barEnd
	}
	c.barStarts = starts
	return nil
}
