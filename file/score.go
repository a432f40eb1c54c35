package file

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/jsphweid/hlayout/config"
	"github.com/jsphweid/hlayout/model"
	"github.com/jsphweid/hlayout/quantize"
	"github.com/jsphweid/hlayout/score"
	"github.com/jsphweid/hlayout/segment"
)

type TupletDoc struct {
	Tupled   int64 `json:"tupled"`
	Untupled int64 `json:"untupled"`
}

type KeyDoc struct {
	Sharps int  `json:"sharps"`
	Minor  bool `json:"minor,omitempty"`
}

type TimeSignatureDoc struct {
	Numerator   int `json:"numerator"`
	Denominator int `json:"denominator"`
}

// EventDoc is one event of the JSON score format. Which fields apply
// depends on Type.
type EventDoc struct {
	Type     model.EventType `json:"type"`
	Time     model.Time      `json:"time"`
	Duration model.Time      `json:"duration,omitempty"`

	Pitch        *int       `json:"pitch,omitempty"`
	Velocity     *int       `json:"velocity,omitempty"`
	Accidental   string     `json:"accidental,omitempty"`
	TiedForward  bool       `json:"tied_forward,omitempty"`
	TiedBackward bool       `json:"tied_backward,omitempty"`
	BeamGroup    *int64     `json:"beam_group,omitempty"`
	Tuplet       *TupletDoc `json:"tuplet,omitempty"`

	Clef          string            `json:"clef,omitempty"`
	Key           *KeyDoc           `json:"key,omitempty"`
	TimeSignature *TimeSignatureDoc `json:"time_signature,omitempty"`
	Indication    string            `json:"indication,omitempty"`
	Text          string            `json:"text,omitempty"`
}

type StaffDoc struct {
	Name   string      `json:"name"`
	Start  *model.Time `json:"start,omitempty"`
	Events []EventDoc  `json:"events"`
}

type ScoreDoc struct {
	Name      string       `json:"name"`
	BarStarts []model.Time `json:"bar_starts,omitempty"`
	Staves    []StaffDoc   `json:"staves"`
}

func (d EventDoc) Event() (*model.Event, error) {
	var e *model.Event
	switch d.Type {
	case model.EventNote:
		if d.Pitch == nil {
			return nil, errors.Errorf("note at %d has no pitch", d.Time)
		}
		e = model.NewNote(d.Time, d.Duration, *d.Pitch)
		if d.Velocity != nil {
			e.Props.SetInt(model.PropVelocity, int64(*d.Velocity))
		}
		if d.Accidental != "" {
			if _, ok := model.AccidentalByName(d.Accidental); !ok {
				return nil, errors.Errorf("note at %d has unknown accidental %q", d.Time, d.Accidental)
			}
			e.Props.SetStr(model.PropAccidental, d.Accidental)
		}
		if d.TiedForward {
			e.Props.SetBool(model.PropTiedForward, true)
		}
		if d.TiedBackward {
			e.Props.SetBool(model.PropTiedBackward, true)
		}
	case model.EventRest:
		e = model.NewRest(d.Time, d.Duration)
	case model.EventClef:
		c, ok := model.ClefByName(d.Clef)
		if !ok {
			return nil, errors.Errorf("unknown clef %q at %d", d.Clef, d.Time)
		}
		e = model.NewClefEvent(d.Time, c)
	case model.EventKey:
		var k model.Key
		if d.Key != nil {
			k = model.Key{Sharps: d.Key.Sharps, Minor: d.Key.Minor}
		}
		if k.Sharps < -7 || k.Sharps > 7 {
			return nil, errors.Errorf("key at %d has %d sharps", d.Time, k.Sharps)
		}
		e = model.NewKeyEvent(d.Time, k)
	case model.EventTimeSignature:
		if d.TimeSignature == nil {
			return nil, errors.Errorf("time signature at %d has no value", d.Time)
		}
		ts := model.TimeSignature{Numerator: d.TimeSignature.Numerator, Denominator: d.TimeSignature.Denominator}
		if !ts.Valid() {
			return nil, errors.Errorf("invalid time signature %s at %d", ts, d.Time)
		}
		e = model.NewTimeSignatureEvent(d.Time, ts)
	case model.EventIndication:
		e = model.NewIndication(d.Time, d.Indication, d.Duration)
	default:
		// unknown types are kept; layout and export log them
		e = model.NewEvent(d.Type, d.Time, d.Duration)
		if d.Text != "" {
			e.Props.SetStr(model.PropText, d.Text)
		}
	}

	if d.BeamGroup != nil {
		e.Props.SetInt(model.PropBeamGroup, *d.BeamGroup)
	}
	if d.Tuplet != nil {
		if d.Tuplet.Tupled <= 0 || d.Tuplet.Untupled <= 0 {
			return nil, errors.Errorf("invalid tuplet %d/%d at %d", d.Tuplet.Tupled, d.Tuplet.Untupled, d.Time)
		}
		e.Props.SetInt(model.PropTupledCount, d.Tuplet.Tupled)
		e.Props.SetInt(model.PropUntupledCount, d.Tuplet.Untupled)
	}
	return e, nil
}

func EventDocFrom(e *model.Event) EventDoc {
	d := EventDoc{Type: e.Type, Time: e.Time, Duration: e.Duration}
	switch e.Type {
	case model.EventNote:
		if p, ok := e.Props.Int(model.PropPitch); ok {
			pitch := int(p)
			d.Pitch = &pitch
		}
		if v, ok := e.Props.Int(model.PropVelocity); ok {
			vel := int(v)
			d.Velocity = &vel
		}
		d.Accidental = e.Props.StrOr(model.PropAccidental, "")
		d.TiedForward = e.Props.BoolOr(model.PropTiedForward, false)
		d.TiedBackward = e.Props.BoolOr(model.PropTiedBackward, false)
	case model.EventClef:
		d.Clef = string(model.ClefOf(e))
	case model.EventKey:
		k := model.KeyOf(e)
		d.Key = &KeyDoc{Sharps: k.Sharps, Minor: k.Minor}
	case model.EventTimeSignature:
		ts := model.TimeSignatureOf(e)
		d.TimeSignature = &TimeSignatureDoc{Numerator: ts.Numerator, Denominator: ts.Denominator}
	case model.EventIndication:
		d.Indication = e.Props.StrOr(model.PropIndicationType, "")
		d.Duration = e.Props.IntOr(model.PropIndicationDuration, 0)
	default:
		d.Text = e.Props.StrOr(model.PropText, "")
	}
	if g, ok := e.Props.Int(model.PropBeamGroup); ok {
		d.BeamGroup = &g
	}
	tupled, ok1 := e.Props.Int(model.PropTupledCount)
	untupled, ok2 := e.Props.Int(model.PropUntupledCount)
	if ok1 && ok2 {
		d.Tuplet = &TupletDoc{Tupled: tupled, Untupled: untupled}
	}
	return d
}

func (d StaffDoc) Staff(m config.Metrics) (*score.Staff, error) {
	events := make([]*model.Event, 0, len(d.Events))
	for i, ed := range d.Events {
		e, err := ed.Event()
		if err != nil {
			return nil, errors.Wrapf(err, "staff %q event %d", d.Name, i)
		}
		events = append(events, e)
	}
	seg := segment.New(events...)
	if d.Start != nil {
		seg.SetStartTime(*d.Start)
	}
	return score.NewStaff(d.Name, seg, m), nil
}

// Composition builds and prepares a composition: the bar grid comes from
// BarStarts when given, otherwise from the first staff's time signatures.
func (d ScoreDoc) Composition(m config.Metrics) (*score.Composition, error) {
	comp := score.New(d.Name)
	for _, sd := range d.Staves {
		staff, err := sd.Staff(m)
		if err != nil {
			return nil, err
		}
		comp.AddStaff(staff)
	}
	if len(d.BarStarts) > 0 {
		comp.SetBarStarts(d.BarStarts)
	} else if len(comp.Staves) > 0 {
		if err := comp.BuildTimeline(nil); err != nil {
			return nil, err
		}
	}
	quantize.New().QuantizeComposition(comp)
	for _, staff := range comp.Staves {
		if !staff.Segment.HasBeamGroups() {
			staff.Segment.AutoBeam()
		}
	}
	return comp, nil
}

func ScoreDocFrom(c *score.Composition) ScoreDoc {
	d := ScoreDoc{Name: c.Name, BarStarts: c.BarStarts(), Staves: []StaffDoc{}}
	for _, staff := range c.Staves {
		sd := StaffDoc{Name: staff.Name, Events: []EventDoc{}}
		start := staff.Segment.StartTime()
		sd.Start = &start
		for _, e := range staff.Segment.Events() {
			sd.Events = append(sd.Events, EventDocFrom(e))
		}
		d.Staves = append(d.Staves, sd)
	}
	return d
}

func Parse(data []byte, m config.Metrics) (*score.Composition, error) {
	var d ScoreDoc
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrap(err, "decoding score")
	}
	return d.Composition(m)
}

func Encode(c *score.Composition) ([]byte, error) {
	data, err := json.MarshalIndent(ScoreDocFrom(c), "", "  ")
	return data, errors.Wrap(err, "encoding score")
}
