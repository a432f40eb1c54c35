package model

import (
	"fmt"
	"sort"
	"strings"
)

type Kind uint8

const (
	KindInt Kind = iota + 1
	KindBool
	KindString
)

type Value struct {
	Kind Kind
	I    int64
	B    bool
	S    string
}

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return fmt.Sprint(v.I)
	case KindBool:
		return fmt.Sprint(v.B)
	case KindString:
		return fmt.Sprintf("%q", v.S)
	}
	return "?"
}

// Bag is a small typed property map. The zero value is ready to use.
// A typed getter only reports a value that was stored with the same kind.
type Bag[K ~uint8] struct {
	m map[K]Value
}

func (b *Bag[K]) set(k K, v Value) {
	if b.m == nil {
		b.m = make(map[K]Value, 4)
	}
	b.m[k] = v
}

func (b *Bag[K]) Has(k K) bool {
	_, ok := b.m[k]
	return ok
}

func (b *Bag[K]) Len() int { return len(b.m) }

func (b *Bag[K]) Unset(k K) { delete(b.m, k) }

func (b *Bag[K]) Clear() { b.m = nil }

func (b *Bag[K]) SetInt(k K, v int64) { b.set(k, Value{Kind: KindInt, I: v}) }

func (b *Bag[K]) SetBool(k K, v bool) { b.set(k, Value{Kind: KindBool, B: v}) }

func (b *Bag[K]) SetStr(k K, v string) { b.set(k, Value{Kind: KindString, S: v}) }

func (b *Bag[K]) Int(k K) (int64, bool) {
	v, ok := b.m[k]
	if !ok || v.Kind != KindInt {
		return 0, false
	}
	return v.I, true
}

func (b *Bag[K]) IntOr(k K, def int64) int64 {
	if v, ok := b.Int(k); ok {
		return v
	}
	return def
}

func (b *Bag[K]) Bool(k K) (bool, bool) {
	v, ok := b.m[k]
	if !ok || v.Kind != KindBool {
		return false, false
	}
	return v.B, true
}

func (b *Bag[K]) BoolOr(k K, def bool) bool {
	if v, ok := b.Bool(k); ok {
		return v
	}
	return def
}

func (b *Bag[K]) Str(k K) (string, bool) {
	v, ok := b.m[k]
	if !ok || v.Kind != KindString {
		return "", false
	}
	return v.S, true
}

func (b *Bag[K]) StrOr(k K, def string) string {
	if v, ok := b.Str(k); ok {
		return v
	}
	return def
}

// Keys returns the stored keys in ascending order.
func (b *Bag[K]) Keys() []K {
	keys := make([]K, 0, len(b.m))
	for k := range b.m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})
	return keys
}

func (b *Bag[K]) Get(k K) (Value, bool) {
	v, ok := b.m[k]
	return v, ok
}

func (b *Bag[K]) format(name func(K) string) string {
	var parts []string
	for _, k := range b.Keys() {
		parts = append(parts, name(k)+":"+b.m[k].String())
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// Property keys are authored, canonical data.
type Property uint8

const (
	PropPitch Property = iota + 1
	PropVelocity
	PropNoteType
	PropNoteDots
	PropAccidental
	PropTiedForward
	PropTiedBackward
	PropTupletBase
	PropTupledCount
	PropUntupledCount
	PropBeamGroup
	PropQuantizedDuration
	PropClef
	PropKeySharps
	PropKeyMinor
	PropTimeSigNumerator
	PropTimeSigDenominator
	PropIndicationType
	PropIndicationDuration
	PropText
)

var propertyNames = map[Property]string{
	PropPitch:              "pitch",
	PropVelocity:           "velocity",
	PropNoteType:           "notetype",
	PropNoteDots:           "notedots",
	PropAccidental:         "accidental",
	PropTiedForward:        "tiedforward",
	PropTiedBackward:       "tiedbackward",
	PropTupletBase:         "tupletbase",
	PropTupledCount:        "tupledcount",
	PropUntupledCount:      "untupledcount",
	PropBeamGroup:          "beamgroup",
	PropQuantizedDuration:  "quantizedduration",
	PropClef:               "clef",
	PropKeySharps:          "keysharps",
	PropKeyMinor:           "keyminor",
	PropTimeSigNumerator:   "numerator",
	PropTimeSigDenominator: "denominator",
	PropIndicationType:     "indicationtype",
	PropIndicationDuration: "indicationduration",
	PropText:               "text",
}

func (p Property) String() string {
	if name, ok := propertyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("property(%d)", uint8(p))
}

// DerivedProperty keys are layout caches. They are overwritten on every
// layout pass and never compared against previous values.
type DerivedProperty uint8

const (
	DerivedHeightOnStaff DerivedProperty = iota + 1
	DerivedCalculatedAccidental
	DerivedDisplayAccidental
	DerivedNoteName
	DerivedMinWidth
	DerivedBeamStartX
	DerivedBeamEndX
	DerivedBeamCount
)

var derivedNames = map[DerivedProperty]string{
	DerivedHeightOnStaff:        "heightonstaff",
	DerivedCalculatedAccidental: "calculatedaccidental",
	DerivedDisplayAccidental:    "displayaccidental",
	DerivedNoteName:             "notename",
	DerivedMinWidth:             "minwidth",
	DerivedBeamStartX:           "beamstartx",
	DerivedBeamEndX:             "beamendx",
	DerivedBeamCount:            "beamcount",
}

func (p DerivedProperty) String() string {
	if name, ok := derivedNames[p]; ok {
		return name
	}
	return fmt.Sprintf("derived(%d)", uint8(p))
}
