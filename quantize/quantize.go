// Package quantize fills in the quantized duration, note type and dot count
// that notation layout reads from notes and rests.
package quantize

import (
	"github.com/jsphweid/hlayout/constants"
	"github.com/jsphweid/hlayout/model"
	"github.com/jsphweid/hlayout/score"
	"github.com/jsphweid/hlayout/segment"
)

type Quantizer struct {
	Unit    model.Time
	MaxDots int
}

func New() Quantizer {
	return Quantizer{Unit: model.ShortestDuration, MaxDots: constants.MaxDots}
}

func (q Quantizer) round(d model.Time) model.Time {
	if d <= 0 || q.Unit <= 0 {
		return d
	}
	r := ((d + q.Unit/2) / q.Unit) * q.Unit
	if r == 0 {
		r = q.Unit
	}
	return r
}

// Snap rounds an absolute time to the nearest unit.
func (q Quantizer) Snap(t model.Time) model.Time {
	if q.Unit <= 0 {
		return t
	}
	return ((t + q.Unit/2) / q.Unit) * q.Unit
}

// Tuplet returns the tupled and untupled counts of a tuplet member.
func Tuplet(e *model.Event) (tupled, untupled int64, ok bool) {
	tupled, ok1 := e.Props.Int(model.PropTupledCount)
	untupled, ok2 := e.Props.Int(model.PropUntupledCount)
	if !ok1 || !ok2 || tupled <= 0 || untupled <= 0 {
		return 0, 0, false
	}
	return tupled, untupled, true
}

// DisplayDuration is the duration a tuplet member is written as.
func DisplayDuration(e *model.Event, d model.Time) model.Time {
	tupled, untupled, ok := Tuplet(e)
	if !ok {
		return d
	}
	return d * untupled / tupled
}

// Quantize rounds a note or rest. Tuplet members are rounded as written,
// so a triplet eighth stays an exact third of a crotchet.
func (q Quantizer) Quantize(e *model.Event) {
	if !e.IsNote() && !e.IsRest() {
		return
	}
	d := q.round(e.Duration)
	written := d
	if tupled, untupled, ok := Tuplet(e); ok {
		written = q.round(DisplayDuration(e, e.Duration))
		d = written * tupled / untupled
	}
	e.Props.SetInt(model.PropQuantizedDuration, d)
	t, dots := model.NearestNote(written, q.MaxDots)
	e.Props.SetInt(model.PropNoteType, int64(t))
	e.Props.SetInt(model.PropNoteDots, int64(dots))
}

func (q Quantizer) QuantizeSegment(seg *segment.Segment) {
	for _, e := range seg.Events() {
		q.Quantize(e)
	}
}

func (q Quantizer) QuantizeComposition(c *score.Composition) {
	for _, s := range c.Staves {
		q.QuantizeSegment(s.Segment)
	}
}
