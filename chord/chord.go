package chord

import (
	"fmt"
	"sort"

	"github.com/jsphweid/hlayout/model"
	"github.com/jsphweid/hlayout/segment"
)

// Chord is the run of note and rest events sharing one absolute time,
// as the index range [Start, End) of a segment.
type Chord struct {
	seg   *segment.Segment
	Start int
	End   int
}

func member(e *model.Event) bool {
	return e.IsNote() || e.IsRest()
}

// At probes outwards from the event at i. An event that is not a note or
// rest forms a chord of its own.
func At(seg *segment.Segment, i int) Chord {
	c := Chord{seg: seg, Start: i, End: i + 1}
	e := seg.At(i)
	if !member(e) {
		return c
	}
	for c.Start > 0 {
		prev := seg.At(c.Start - 1)
		if !member(prev) || prev.Time != e.Time {
			break
		}
		c.Start--
	}
	for c.End < seg.Len() {
		next := seg.At(c.End)
		if !member(next) || next.Time != e.Time {
			break
		}
		c.End++
	}
	return c
}

func (c Chord) Size() int { return c.End - c.Start }

func (c Chord) FinalIndex() int { return c.End - 1 }

// IsFinal reports whether i is the last member; single events are always final.
func (c Chord) IsFinal(i int) bool {
	return c.Size() < 2 || i == c.FinalIndex()
}

func (c Chord) Members() []*model.Event {
	return c.seg.Events()[c.Start:c.End]
}

func (c Chord) Pitches() []int {
	var res []int
	for _, e := range c.Members() {
		if p, ok := e.Props.Int(model.PropPitch); ok && e.IsNote() {
			res = append(res, int(p))
		}
	}
	return res
}

// IsNoteInChord reports whether the note at i shares its time with another
// note that has a duration.
func IsNoteInChord(seg *segment.Segment, i int) bool {
	e := seg.At(i)
	if !e.IsNote() || e.Duration == 0 {
		return false
	}
	for _, j := range []int{i - 1, i + 1} {
		if j < 0 || j >= seg.Len() {
			continue
		}
		o := seg.At(j)
		if o.IsNote() && o.Time == e.Time && o.Duration != 0 {
			return true
		}
	}
	return false
}

func CreateChordKey(notes []int) string {
	sorted := append([]int(nil), notes...)
	sort.Ints(sorted)
	var res string
	for i, note := range sorted {
		res += fmt.Sprintf("%v", note)
		if i < len(sorted)-1 {
			res += "-"
		}
	}
	return res
}
