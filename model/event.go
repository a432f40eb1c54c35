package model

import "fmt"

// Time is an absolute or relative musical time in ticks, Crotchet per quarter note.
type Time = int64

type EventType string

const (
	EventNote          EventType = "note"
	EventRest          EventType = "rest"
	EventClef          EventType = "clef"
	EventKey           EventType = "key"
	EventTimeSignature EventType = "timesignature"
	EventIndication    EventType = "indication"
	EventText          EventType = "text"
)

type Event struct {
	Type     EventType
	Time     Time
	Duration Time

	Props   Bag[Property]
	Derived Bag[DerivedProperty]

	// X is the horizontal position assigned by the last layout pass.
	X int
}

func NewEvent(t EventType, at Time, duration Time) *Event {
	return &Event{Type: t, Time: at, Duration: duration}
}

func (e *Event) Isa(t EventType) bool { return e.Type == t }

func (e *Event) IsNote() bool { return e.Type == EventNote }

func (e *Event) IsRest() bool { return e.Type == EventRest }

func (e *Event) End() Time { return e.Time + e.Duration }

func (e *Event) String() string {
	return fmt.Sprintf("%s@%d+%d %s", e.Type, e.Time, e.Duration, e.Props.format(Property.String))
}

// DerivedString formats only the layout caches, for inspection output.
func (e *Event) DerivedString() string {
	return e.Derived.format(DerivedProperty.String)
}

func NewNote(at Time, duration Time, pitch int) *Event {
	e := NewEvent(EventNote, at, duration)
	e.Props.SetInt(PropPitch, int64(pitch))
	return e
}

func NewRest(at Time, duration Time) *Event {
	return NewEvent(EventRest, at, duration)
}

func NewClefEvent(at Time, c Clef) *Event {
	e := NewEvent(EventClef, at, 0)
	e.Props.SetStr(PropClef, string(c))
	return e
}

func NewKeyEvent(at Time, k Key) *Event {
	e := NewEvent(EventKey, at, 0)
	e.Props.SetInt(PropKeySharps, int64(k.Sharps))
	e.Props.SetBool(PropKeyMinor, k.Minor)
	return e
}

func NewTimeSignatureEvent(at Time, ts TimeSignature) *Event {
	e := NewEvent(EventTimeSignature, at, 0)
	e.Props.SetInt(PropTimeSigNumerator, int64(ts.Numerator))
	e.Props.SetInt(PropTimeSigDenominator, int64(ts.Denominator))
	return e
}

const (
	IndicationSlur        = "slur"
	IndicationCrescendo   = "crescendo"
	IndicationDecrescendo = "decrescendo"
)

func NewIndication(at Time, kind string, duration Time) *Event {
	e := NewEvent(EventIndication, at, 0)
	e.Props.SetStr(PropIndicationType, kind)
	e.Props.SetInt(PropIndicationDuration, duration)
	return e
}

func ClefOf(e *Event) Clef {
	if c, ok := ClefByName(e.Props.StrOr(PropClef, "")); ok {
		return c
	}
	return DefaultClef
}

func KeyOf(e *Event) Key {
	return Key{
		Sharps: int(e.Props.IntOr(PropKeySharps, 0)),
		Minor:  e.Props.BoolOr(PropKeyMinor, false),
	}
}

func TimeSignatureOf(e *Event) TimeSignature {
	ts := TimeSignature{
		Numerator:   int(e.Props.IntOr(PropTimeSigNumerator, 4)),
		Denominator: int(e.Props.IntOr(PropTimeSigDenominator, 4)),
	}
	if !ts.Valid() {
		return DefaultTimeSignature
	}
	return ts
}
