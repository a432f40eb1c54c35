package midi

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/jsphweid/hlayout/config"
	"github.com/jsphweid/hlayout/logging"
	"github.com/jsphweid/hlayout/model"
	"github.com/jsphweid/hlayout/quantize"
	"github.com/jsphweid/hlayout/score"
	"github.com/jsphweid/hlayout/segment"
)

type noteKey struct {
	channel uint8
	key     uint8
}

type rawNote struct {
	start    int64
	end      int64
	key      uint8
	velocity uint8
}

type rawTrack struct {
	name  string
	notes []rawNote
}

type meta struct {
	timeSigs []*model.Event
	keys     []*model.Event
}

// Load reads a standard MIDI file and converts it, naming the composition
// after the file.
func Load(path string, m config.Metrics) (*score.Composition, error) {
	s, err := ReadMidiFile(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ToComposition(s, name, m)
}

// ToComposition turns every track that has notes into a staff. Gaps between
// notes become rests, and the bar timeline comes from the time signatures.
func ToComposition(s *smf.SMF, name string, m config.Metrics) (*score.Composition, error) {
	tpq, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok || tpq == 0 {
		return nil, errors.Errorf("unsupported midi time format %v", s.TimeFormat)
	}
	q := quantize.New()
	scale := func(ticks int64) model.Time {
		return q.Snap(ticks * model.Crotchet / int64(tpq))
	}

	var md meta
	var tracks []rawTrack
	for ti, track := range s.Tracks {
		rt, err := readTrack(track, scale, &md)
		if err != nil {
			return nil, errors.Wrapf(err, "track %d", ti)
		}
		if len(rt.notes) == 0 {
			continue
		}
		if rt.name == "" {
			rt.name = fmt.Sprintf("Track %d", len(tracks)+1)
		}
		tracks = append(tracks, rt)
	}
	if len(tracks) == 0 {
		return nil, errors.New("midi file has no notes")
	}

	comp := score.New(name)
	for i, rt := range tracks {
		seg := buildSegment(rt, md, i == 0)
		comp.AddStaff(score.NewStaff(rt.name, seg, m))
	}
	if err := comp.BuildTimeline(nil); err != nil {
		return nil, err
	}
	q.QuantizeComposition(comp)
	for _, staff := range comp.Staves {
		staff.Segment.AutoBeam()
	}
	logging.MIDI.Printf("converted %d tracks into %d staves, %d bars",
		len(s.Tracks), len(comp.Staves), len(comp.BarStarts()))
	return comp, nil
}

func readTrack(track smf.Track, scale func(int64) model.Time, md *meta) (rawTrack, error) {
	var rt rawTrack
	open := make(map[noteKey][]rawNote)
	var abs int64
	for _, ev := range track {
		abs += int64(ev.Delta)
		msg := ev.Message

		var ch, key, vel uint8
		var num, denom, cpt, dsqpq uint8
		switch {
		case msg.GetNoteStart(&ch, &key, &vel):
			k := noteKey{ch, key}
			open[k] = append(open[k], rawNote{start: abs, key: key, velocity: vel})
		case msg.GetNoteEnd(&ch, &key):
			k := noteKey{ch, key}
			starts := open[k]
			if len(starts) == 0 {
				logging.MIDI.Debugf("note off without note on at %d: %s", abs, describe(msg))
				continue
			}
			n := starts[0]
			open[k] = starts[1:]
			n.end = abs
			rt.notes = append(rt.notes, n)
		case msg.GetMetaTimeSig(&num, &denom, &cpt, &dsqpq):
			ts := model.TimeSignature{Numerator: int(num), Denominator: int(denom)}
			if !ts.Valid() {
				return rt, errors.Errorf("invalid time signature %d/%d", num, denom)
			}
			md.timeSigs = append(md.timeSigs, model.NewTimeSignatureEvent(scale(abs), ts))
		default:
			if name, ok := trackName(msg); ok && rt.name == "" {
				rt.name = name
			} else if sharps, minor, ok := keySignature(msg); ok {
				md.keys = append(md.keys, model.NewKeyEvent(scale(abs), model.Key{Sharps: sharps, Minor: minor}))
			}
		}
	}
	for k, starts := range open {
		if len(starts) > 0 {
			logging.MIDI.Printf("%d unterminated notes for key %d, closing at track end", len(starts), k.key)
		}
		for _, n := range starts {
			n.end = abs
			rt.notes = append(rt.notes, n)
		}
	}
	for i := range rt.notes {
		rt.notes[i].start = int64(scale(rt.notes[i].start))
		rt.notes[i].end = int64(scale(rt.notes[i].end))
	}
	sort.SliceStable(rt.notes, func(i, j int) bool {
		if rt.notes[i].start != rt.notes[j].start {
			return rt.notes[i].start < rt.notes[j].start
		}
		return rt.notes[i].key < rt.notes[j].key
	})
	return rt, nil
}

func clefFor(notes []rawNote) model.Clef {
	var sum int
	for _, n := range notes {
		sum += int(n.key)
	}
	if sum/len(notes) < 60 {
		return model.BassClef
	}
	return model.TrebleClef
}

// buildSegment lays a track out as a staff. The reference staff carries every
// time signature; other staves start with the one in force at their start.
func buildSegment(rt rawTrack, md meta, reference bool) *segment.Segment {
	start := model.Time(rt.notes[0].start)
	if reference {
		start = 0
	}

	var events []*model.Event
	events = append(events, model.NewClefEvent(start, clefFor(rt.notes)))

	key := model.Key{}
	for _, k := range md.keys {
		if k.Time <= start {
			key = model.KeyOf(k)
		} else {
			events = append(events, model.NewKeyEvent(k.Time, model.KeyOf(k)))
		}
	}
	events = append(events, model.NewKeyEvent(start, key))

	var inForce *model.Event
	for _, ts := range md.timeSigs {
		if reference || ts.Time > start {
			events = append(events, model.NewTimeSignatureEvent(ts.Time, model.TimeSignatureOf(ts)))
		} else {
			inForce = ts
		}
	}
	if inForce != nil {
		events = append(events, model.NewTimeSignatureEvent(start, model.TimeSignatureOf(inForce)))
	}

	cursor := start
	for _, n := range rt.notes {
		at := model.Time(n.start)
		if at > cursor {
			events = append(events, model.NewRest(cursor, at-cursor))
		}
		d := model.Time(n.end) - at
		if d <= 0 {
			d = model.ShortestDuration
		}
		e := model.NewNote(at, d, int(n.key))
		e.Props.SetInt(model.PropVelocity, int64(n.velocity))
		events = append(events, e)
		if at+d > cursor {
			cursor = at + d
		}
	}

	seg := segment.New(events...)
	seg.SetStartTime(start)
	return seg
}
