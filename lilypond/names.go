package lilypond

import (
	"strings"

	"github.com/jsphweid/hlayout/model"
)

var (
	sharpNames = []string{"c", "cis", "d", "dis", "e", "f", "fis", "g", "gis", "a", "ais", "b"}
	flatNames  = []string{"c", "des", "d", "ees", "e", "f", "ges", "g", "aes", "a", "bes", "b"}
)

func pitchClassName(pc int, flat bool) string {
	pc = ((pc % 12) + 12) % 12
	if flat {
		return flatNames[pc]
	}
	return sharpNames[pc]
}

// pitchName writes an absolute pitch: 48 is c, 60 is c'.
func pitchName(pitch int, flat bool) string {
	var sb strings.Builder
	sb.WriteString(pitchClassName(pitch, flat))
	octave := pitch / 12
	for ; octave < 4; octave++ {
		sb.WriteString(",")
	}
	for ; octave > 4; octave-- {
		sb.WriteString("'")
	}
	return sb.String()
}

func durationName(t model.NoteType, dots int) string {
	var s string
	switch t {
	case model.SixtyFourthNote:
		s = "64"
	case model.ThirtySecondNote:
		s = "32"
	case model.SixteenthNote:
		s = "16"
	case model.EighthNote:
		s = "8"
	case model.QuarterNote:
		s = "4"
	case model.HalfNote:
		s = "2"
	case model.WholeNote:
		s = "1"
	case model.DoubleWholeNote:
		s = "\\breve"
	}
	return s + strings.Repeat(".", dots)
}

func keyName(k model.Key) string {
	name := pitchClassName(k.TonicPitch(), !k.IsSharp())
	if k.Minor {
		return name + " \\minor"
	}
	return name + " \\major"
}

func quote(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
