package segment

import (
	"sort"

	"github.com/jsphweid/hlayout/model"
)

// Segment is the time-ordered event sequence of one staff. Events sharing a
// time are ordered by type priority, then by insertion.
type Segment struct {
	events   []*model.Event
	start    model.Time
	hasStart bool
}

func New(events ...*model.Event) *Segment {
	s := &Segment{}
	s.events = append(s.events, events...)
	sort.SliceStable(s.events, func(i, j int) bool {
		return less(s.events[i], s.events[j])
	})
	return s
}

func priority(e *model.Event) int {
	switch e.Type {
	case model.EventClef:
		return 0
	case model.EventKey:
		return 1
	case model.EventTimeSignature:
		return 2
	case model.EventIndication:
		return 5
	case model.EventNote, model.EventRest:
		return 10
	}
	return 20
}

func less(a, b *model.Event) bool {
	if a.Time != b.Time {
		return a.Time < b.Time
	}
	return priority(a) < priority(b)
}

func (s *Segment) Len() int { return len(s.events) }

func (s *Segment) At(i int) *model.Event { return s.events[i] }

func (s *Segment) Events() []*model.Event { return s.events }

// FindTime returns the index of the first event at or after t, or Len().
func (s *Segment) FindTime(t model.Time) int {
	return sort.Search(len(s.events), func(i int) bool {
		return s.events[i].Time >= t
	})
}

// Insert adds e after every event that sorts equal to it.
func (s *Segment) Insert(e *model.Event) int {
	i := sort.Search(len(s.events), func(i int) bool {
		return less(e, s.events[i])
	})
	s.events = append(s.events, nil)
	copy(s.events[i+1:], s.events[i:])
	s.events[i] = e
	return i
}

func (s *Segment) Remove(e *model.Event) bool {
	for i, ev := range s.events {
		if ev == e {
			copy(s.events[i:], s.events[i+1:])
			s.events = s.events[:len(s.events)-1]
			return true
		}
	}
	return false
}

func (s *Segment) SetStartTime(t model.Time) {
	s.start = t
	s.hasStart = true
}

// StartTime is the explicit start if one was set, else the first event's time.
func (s *Segment) StartTime() model.Time {
	if s.hasStart {
		return s.start
	}
	if len(s.events) == 0 {
		return 0
	}
	return s.events[0].Time
}

func (s *Segment) EndTime() model.Time {
	end := s.StartTime()
	for _, e := range s.events {
		if e.End() > end {
			end = e.End()
		}
	}
	return end
}

func (s *Segment) HasBeamGroups() bool {
	for _, e := range s.events {
		if e.Props.Has(model.PropBeamGroup) {
			return true
		}
	}
	return false
}

// AutoBeam gives runs of notes shorter than a crotchet that fall within one
// beat a shared beam group id. Notes that already carry a group are left alone.
func (s *Segment) AutoBeam() {
	var nextID int64
	for _, e := range s.events {
		if g, ok := e.Props.Int(model.PropBeamGroup); ok && g >= nextID {
			nextID = g + 1
		}
	}

	ts := model.DefaultTimeSignature
	var sigStart model.Time
	var run []*model.Event
	runBeat := int64(-1)
	distinct := 0

	flush := func() {
		if distinct >= 2 {
			for _, e := range run {
				e.Props.SetInt(model.PropBeamGroup, nextID)
			}
			nextID++
		}
		run = run[:0]
		runBeat = -1
		distinct = 0
	}

	var lastTime model.Time = -1
	for _, e := range s.events {
		switch {
		case e.Isa(model.EventTimeSignature):
			flush()
			ts = model.TimeSignatureOf(e)
			sigStart = e.Time
		case e.IsRest():
			flush()
		case e.IsNote():
			beamable := e.Duration > 0 && e.Duration < model.Crotchet &&
				!e.Props.Has(model.PropBeamGroup)
			if !beamable {
				flush()
				continue
			}
			beat := int64((e.Time - sigStart) / ts.BeatDuration())
			if beat != runBeat {
				flush()
				runBeat = beat
			}
			if e.Time != lastTime || len(run) == 0 {
				distinct++
			}
			run = append(run, e)
			lastTime = e.Time
		}
	}
	flush()
}
