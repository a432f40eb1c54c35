package model

import "strconv"

type Accidental int

const (
	NoAccidental Accidental = iota
	Sharp
	Flat
	Natural
	DoubleSharp
	DoubleFlat
)

var accidentalNames = []string{"none", "sharp", "flat", "natural", "doublesharp", "doubleflat"}

func (a Accidental) String() string {
	if int(a) >= 0 && int(a) < len(accidentalNames) {
		return accidentalNames[a]
	}
	return "accidental(" + strconv.Itoa(int(a)) + ")"
}

func AccidentalByName(name string) (Accidental, bool) {
	for i, n := range accidentalNames {
		if n == name {
			return Accidental(i), true
		}
	}
	return NoAccidental, false
}

// Semitones is the pitch alteration the accidental applies to a natural step.
func (a Accidental) Semitones() int {
	switch a {
	case Sharp:
		return 1
	case Flat:
		return -1
	case DoubleSharp:
		return 2
	case DoubleFlat:
		return -2
	}
	return 0
}

type NoteType int

const (
	SixtyFourthNote NoteType = iota
	ThirtySecondNote
	SixteenthNote
	EighthNote
	QuarterNote
	HalfNote
	WholeNote
	DoubleWholeNote
)

const (
	Crotchet          Time = 960
	WholeNoteDuration Time = 4 * Crotchet
	ShortestDuration  Time = WholeNoteDuration / 64
)

func (t NoteType) Duration() Time {
	return ShortestDuration << uint(t)
}

func NoteDuration(t NoteType, dots int) Time {
	d := t.Duration()
	extra := d
	for i := 0; i < dots; i++ {
		extra /= 2
		d += extra
	}
	return d
}

// NearestNote finds the longest note type (with up to maxDots dots) whose
// duration does not exceed d. Durations shorter than a sixty-fourth map to one.
func NearestNote(d Time, maxDots int) (NoteType, int) {
	t := DoubleWholeNote
	for t > SixtyFourthNote && t.Duration() > d {
		t--
	}
	dots := 0
	for dots < maxDots && t > SixtyFourthNote && NoteDuration(t, dots+1) <= d {
		dots++
	}
	return t, dots
}

type Clef string

const (
	TrebleClef Clef = "treble"
	BassClef   Clef = "bass"
	AltoClef   Clef = "alto"
	TenorClef  Clef = "tenor"
)

const DefaultClef = TrebleClef

// bottom line of each clef as a diatonic index (octave*7 + step, C4 = 28)
var clefBottomLine = map[Clef]int{
	TrebleClef: 30, // E4
	BassClef:   18, // G2
	AltoClef:   24, // F3
	TenorClef:  22, // D3
}

func ClefByName(name string) (Clef, bool) {
	c := Clef(name)
	_, ok := clefBottomLine[c]
	return c, ok
}

func (c Clef) BottomLine() int {
	if v, ok := clefBottomLine[c]; ok {
		return v
	}
	return clefBottomLine[DefaultClef]
}

// StepAtHeight returns the diatonic step (C=0..B=6) drawn at height h on this clef.
func (c Clef) StepAtHeight(h int) int {
	return mod7(h + c.BottomLine())
}

// heightShift moves key signature heights from their treble position.
func (c Clef) heightShift() int {
	switch c {
	case BassClef:
		return -2
	case AltoClef:
		return -1
	case TenorClef:
		return 1
	}
	return 0
}

func mod7(n int) int {
	n %= 7
	if n < 0 {
		n += 7
	}
	return n
}

// CanonicalHeight folds a staff height into a single octave.
func CanonicalHeight(h int) int { return mod7(h) }

// Key is a key signature: positive Sharps for sharp keys, negative for flats.
type Key struct {
	Sharps int
	Minor  bool
}

var (
	sharpOrder = []int{3, 0, 4, 1, 5, 2, 6} // F C G D A E B
	flatOrder  = []int{6, 2, 5, 1, 4, 0, 3} // B E A D G C F

	trebleSharpHeights = []int{8, 5, 9, 6, 3, 7, 4}
	trebleFlatHeights  = []int{4, 7, 3, 6, 2, 5, 1}
)

func (k Key) IsSharp() bool { return k.Sharps >= 0 }

func (k Key) AccidentalCount() int {
	if k.Sharps < 0 {
		return -k.Sharps
	}
	return k.Sharps
}

func (k Key) steps() []int {
	n := k.AccidentalCount()
	if n > 7 {
		n = 7
	}
	if k.IsSharp() {
		return sharpOrder[:n]
	}
	return flatOrder[:n]
}

// AccidentalAtStep is the accidental the key applies to a diatonic step.
func (k Key) AccidentalAtStep(step int) Accidental {
	step = mod7(step)
	for _, s := range k.steps() {
		if s == step {
			if k.IsSharp() {
				return Sharp
			}
			return Flat
		}
	}
	return NoAccidental
}

func (k Key) AccidentalAtHeight(h int, c Clef) Accidental {
	return k.AccidentalAtStep(c.StepAtHeight(h))
}

// AccidentalHeights lists the staff heights at which the key signature's
// accidentals are drawn, in signature order.
func (k Key) AccidentalHeights(c Clef) []int {
	src := trebleSharpHeights
	if !k.IsSharp() {
		src = trebleFlatHeights
	}
	n := len(k.steps())
	res := make([]int, 0, n)
	for _, h := range src[:n] {
		res = append(res, h+c.heightShift())
	}
	return res
}

// TonicPitch is the pitch class of the key's tonic.
func (k Key) TonicPitch() int {
	major := ((k.Sharps*7)%12 + 12) % 12
	if k.Minor {
		return (major + 9) % 12
	}
	return major
}

type TimeSignature struct {
	Numerator   int
	Denominator int
}

var DefaultTimeSignature = TimeSignature{Numerator: 4, Denominator: 4}

func (ts TimeSignature) Valid() bool {
	return ts.Numerator > 0 && ts.Denominator > 0 && WholeNoteDuration%Time(ts.Denominator) == 0
}

func (ts TimeSignature) BeatDuration() Time {
	return WholeNoteDuration / Time(ts.Denominator)
}

func (ts TimeSignature) BarDuration() Time {
	return Time(ts.Numerator) * ts.BeatDuration()
}

// DigitCount is the width in digits of the wider of the two numbers.
func (ts TimeSignature) DigitCount() int {
	n := len(strconv.Itoa(ts.Numerator))
	if d := len(strconv.Itoa(ts.Denominator)); d > n {
		return d
	}
	return n
}

func (ts TimeSignature) String() string {
	return strconv.Itoa(ts.Numerator) + "/" + strconv.Itoa(ts.Denominator)
}
