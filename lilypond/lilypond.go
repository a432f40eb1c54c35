// Package lilypond linearizes a composition into LilyPond source text.
package lilypond

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/jsphweid/hlayout/chord"
	"github.com/jsphweid/hlayout/constants"
	"github.com/jsphweid/hlayout/logging"
	"github.com/jsphweid/hlayout/model"
	"github.com/jsphweid/hlayout/quantize"
	"github.com/jsphweid/hlayout/score"
	"github.com/jsphweid/hlayout/segment"
)

const LanguageVersion = "1.4.10"

type Exporter struct {
	comp *score.Composition
}

func New(comp *score.Composition) *Exporter {
	return &Exporter{comp: comp}
}

// WriteFile exports to path. A partially written file is removed on failure.
func (x *Exporter) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		logging.Export.Printf("could not open %s for export: %v", path, err)
		return errors.Wrapf(err, "creating %s", path)
	}
	err = x.Write(f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = errors.Wrapf(cerr, "closing %s", path)
	}
	if err != nil {
		logging.Export.Printf("export to %s failed: %v", path, err)
		os.Remove(path)
		return err
	}
	return nil
}

func (x *Exporter) Write(w io.Writer) error {
	out := &writer{w: bufio.NewWriter(w)}
	x.writeHeader(out)

	out.printf("\\score {\n")
	out.printf("\t\\notes <\n")
	out.printf("\t\t\\property Score.NoteColumn \\override #'force-hshift = #1.0\n")
	out.printf("\t\t\\time %s\n", x.comp.TimeSignatureAt(x.comp.StartTime()))

	for i, staff := range x.comp.Staves {
		label := staff.Name
		if label == "" {
			label = fmt.Sprintf("track%d", i+1)
		}
		out.printf("\t\t\\context Staff = \"%s\" <\n", quote(label))
		out.printf("\t\t\t\\property Staff.instrument = \"%s\"\n", quote(label))
		out.printf("\t\t\t\\context Voice = \"voice%d\" {", i+1)

		v := &voice{out: out, comp: x.comp, seg: staff.Segment, lastType: model.QuarterNote}
		v.write()

		out.printf("\n\t\t\t}\n")
		out.printf("\t\t>\n")
	}

	out.printf("\t>\n")
	out.printf("\t\\paper {}\n")
	out.printf("}\n")

	if out.err != nil {
		return errors.Wrap(out.err, "writing lilypond")
	}
	return errors.Wrap(out.w.Flush(), "flushing lilypond")
}

func (x *Exporter) writeHeader(out *writer) {
	title := x.comp.Name
	if title == "" {
		title = "Untitled"
	}
	out.printf("\\version \"%s\"\n", LanguageVersion)
	out.printf("\\header {\n")
	out.printf("\ttitle = \"%s\"\n", quote(title))
	out.printf("\tfooter = \"hlayout %s\"\n", constants.Version)
	out.printf("\ttagline = \"Exported from %s by hlayout %s\"\n", quote(title), constants.Version)
	out.printf("}\n")
}

// writer keeps the first error so that callers can write without checking
// every line.
type writer struct {
	w   *bufio.Writer
	err error
}

func (o *writer) printf(format string, args ...interface{}) {
	if o.err != nil {
		return
	}
	_, o.err = fmt.Fprintf(o.w, format, args...)
}

// voice holds the state of one staff's linearization.
type voice struct {
	out  *writer
	comp *score.Composition
	seg  *segment.Segment

	flatKey  bool
	lastType model.NoteType
	lastDots int

	eventsToStart    []*model.Event
	eventsInProgress []*model.Event

	writingChord  bool
	lastChordTime model.Time
	chordEnd      model.Time
	addTie        bool

	tupletRemaining int
}

func (v *voice) write() {
	v.writeSkip(v.seg.StartTime())

	var prevTime model.Time
	for i, e := range v.seg.Events() {
		if i == 0 || prevTime < v.comp.BarStartForTime(e.Time) {
			v.out.printf("\n\t\t\t\t")
		}
		prevTime = e.Time

		switch e.Type {
		case model.EventNote, model.EventRest:
			v.writeNoteOrRest(i, e)

		case model.EventClef:
			v.closeChord()
			v.out.printf("\\clef %s\n\t\t\t\t", model.ClefOf(e))

		case model.EventKey:
			v.closeChord()
			k := model.KeyOf(e)
			v.flatKey = !k.IsSharp()
			v.out.printf("\\key %s\n\t\t\t\t", keyName(k))

		case model.EventTimeSignature:
			v.closeChord()
			if e.Time > v.comp.StartTime() {
				v.out.printf("\\time %s\n\t\t\t\t", model.TimeSignatureOf(e))
			}

		case model.EventIndication:
			v.eventsToStart = append(v.eventsToStart, e)
			v.eventsInProgress = append(v.eventsInProgress, e)

		default:
			logging.Export.Printf("unhandled event type %q at %d", e.Type, e.Time)
		}
	}

	v.closeChord()
	if v.tupletRemaining > 0 {
		v.out.printf("} ")
		v.tupletRemaining = 0
	}
}

// writeSkip pads a staff that starts late with the largest skips that fit.
func (v *voice) writeSkip(start model.Time) {
	if start <= 0 {
		return
	}
	v.out.printf("\n\t\t\t\t")
	for t := model.WholeNote; t >= constants.MinSkipNoteType; t-- {
		unit := t.Duration()
		if n := start / unit; n > 0 {
			v.out.printf("\\skip %d*%d ", model.WholeNoteDuration/unit, n)
			start -= n * unit
		}
	}
}

func writtenType(e *model.Event) (model.NoteType, int) {
	t, ok1 := e.Props.Int(model.PropNoteType)
	dots, ok2 := e.Props.Int(model.PropNoteDots)
	if ok1 && ok2 {
		return model.NoteType(t), int(dots)
	}
	d := e.Props.IntOr(model.PropQuantizedDuration, e.Duration)
	return model.NearestNote(quantize.DisplayDuration(e, d), constants.MaxDots)
}

func (v *voice) writeNoteOrRest(i int, e *model.Event) {
	if e.IsNote() {
		inChord := chord.IsNoteInChord(v.seg, i)
		if v.writingChord && (!inChord || v.lastChordTime != e.Time) {
			v.closeChord()
		}
		if !v.writingChord {
			v.tupletStep(e)
		}
		if inChord && !v.writingChord {
			v.writingChord = true
			v.lastChordTime = e.Time
			v.chordEnd = e.End()
			v.out.printf("< ")
		}
		if v.writingChord && e.End() > v.chordEnd {
			v.chordEnd = e.End()
		}
		v.out.printf("%s", pitchName(int(e.Props.IntOr(model.PropPitch, 60)), v.flatKey))
	} else {
		v.closeChord()
		v.tupletStep(e)
		v.out.printf("r")
	}

	t, dots := writtenType(e)
	if t != v.lastType || dots != v.lastDots {
		v.out.printf("%s", durationName(t, dots))
		v.lastType, v.lastDots = t, dots
	}
	v.out.printf(" ")

	if e.IsNote() && e.Props.BoolOr(model.PropTiedForward, false) {
		v.addTie = true
	}
	if !v.writingChord {
		v.afterNote(e.Time, e.End())
	}
}

// tupletStep counts down the open tuplet bracket and opens a new one when a
// tuplet member arrives with no bracket open. Chords count once.
func (v *voice) tupletStep(e *model.Event) {
	if v.tupletRemaining > 0 {
		v.tupletRemaining--
		if v.tupletRemaining == 0 {
			v.out.printf("} ")
		}
	}
	tupled, untupled, ok := quantize.Tuplet(e)
	if ok && v.tupletRemaining == 0 {
		v.tupletRemaining = int(untupled)
		v.out.printf("\\times %d/%d { ", tupled, untupled)
	}
}

func (v *voice) closeChord() {
	if !v.writingChord {
		return
	}
	v.writingChord = false
	v.out.printf("> ")
	v.afterNote(v.lastChordTime, v.chordEnd)
}

// afterNote writes the markers that follow a note or a closed chord: ending
// indications, then the ones starting at or before the note, then any
// pending tie.
func (v *voice) afterNote(start, end model.Time) {
	v.handleEnding(end)
	v.handleStarting(start)
	if v.addTie {
		v.out.printf("~ ")
		v.addTie = false
	}
}

func (v *voice) pendingStart(e *model.Event) bool {
	for _, s := range v.eventsToStart {
		if s == e {
			return true
		}
	}
	return false
}

func (v *voice) handleEnding(end model.Time) {
	var kept []*model.Event
	for _, e := range v.eventsInProgress {
		if v.pendingStart(e) {
			kept = append(kept, e)
			continue
		}
		d := e.Props.IntOr(model.PropIndicationDuration, 0)
		if e.Time+d > end {
			kept = append(kept, e)
			continue
		}
		switch e.Props.StrOr(model.PropIndicationType, "") {
		case model.IndicationSlur:
			v.out.printf(") ")
		case model.IndicationCrescendo, model.IndicationDecrescendo:
			v.out.printf("\\! ")
		}
	}
	v.eventsInProgress = kept
}

// handleStarting opens the queued indications up to time at. Later ones,
// queued while a chord was still open, wait for their own note.
func (v *voice) handleStarting(at model.Time) {
	var kept []*model.Event
	for _, e := range v.eventsToStart {
		if e.Time > at {
			kept = append(kept, e)
			continue
		}
		switch kind := e.Props.StrOr(model.PropIndicationType, ""); kind {
		case model.IndicationSlur:
			v.out.printf("( ")
		case model.IndicationCrescendo:
			v.out.printf("\\< ")
		case model.IndicationDecrescendo:
			v.out.printf("\\> ")
		default:
			logging.Export.Printf("unhandled indication %q at %d", kind, e.Time)
		}
	}
	v.eventsToStart = kept
}
