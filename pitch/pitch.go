// Package pitch maps performance pitches onto staff positions.
package pitch

import (
	"strconv"

	"github.com/jsphweid/hlayout/model"
)

var (
	stepPitches = []int{0, 2, 4, 5, 7, 9, 11}
	stepNames   = []string{"C", "D", "E", "F", "G", "A", "B"}
)

// DisplayPitch is a pitch as it would be written on a staff.
type DisplayPitch struct {
	// Step is the diatonic index, octave*7 + step with C4 = 28.
	Step       int
	Accidental model.Accidental
}

func mod(n, m int) int {
	n %= m
	if n < 0 {
		n += m
	}
	return n
}

func floorDiv(n, m int) int {
	if n < 0 {
		return -((-n + m - 1) / m)
	}
	return n / m
}

func spell(pitch, step int, acc model.Accidental) DisplayPitch {
	octave := floorDiv(pitch-acc.Semitones(), 12) - 1
	return DisplayPitch{Step: octave*7 + step, Accidental: acc}
}

// Resolve spells a MIDI pitch (60 = C4) for a key. An explicit accidental is
// honoured when the pitch can be written with it. The resulting accidental
// is the one the note needs: a step altered by the key keeps the key's
// accidental, and a natural on a step the key alters is Natural.
func Resolve(p int, key model.Key, explicit model.Accidental) DisplayPitch {
	pc := mod(p, 12)

	if explicit != model.NoAccidental {
		target := mod(pc-explicit.Semitones(), 12)
		for step, sp := range stepPitches {
			if sp == target {
				return spell(p, step, explicit)
			}
		}
	}

	for step, sp := range stepPitches {
		ka := key.AccidentalAtStep(step)
		if ka != model.NoAccidental && mod(sp+ka.Semitones(), 12) == pc {
			return spell(p, step, ka)
		}
	}

	for step, sp := range stepPitches {
		if sp == pc {
			if key.AccidentalAtStep(step) != model.NoAccidental {
				return spell(p, step, model.Natural)
			}
			return spell(p, step, model.NoAccidental)
		}
	}

	// black key outside the key signature
	if key.IsSharp() {
		for step, sp := range stepPitches {
			if sp == pc-1 {
				return spell(p, step, model.Sharp)
			}
		}
	}
	for step, sp := range stepPitches {
		if sp == mod(pc+1, 12) {
			return spell(p, step, model.Flat)
		}
	}
	return spell(p, 0, model.NoAccidental)
}

// HeightOnStaff is the staff position relative to the clef's bottom line,
// one unit per line or space.
func (d DisplayPitch) HeightOnStaff(c model.Clef) int {
	return d.Step - c.BottomLine()
}

func (d DisplayPitch) String() string {
	octave := floorDiv(d.Step, 7)
	s := stepNames[mod(d.Step, 7)]
	switch d.Accidental {
	case model.Sharp:
		s += "#"
	case model.Flat:
		s += "b"
	case model.DoubleSharp:
		s += "##"
	case model.DoubleFlat:
		s += "bb"
	}
	return s + strconv.Itoa(octave)
}
