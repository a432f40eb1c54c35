package layout

import "github.com/jsphweid/hlayout/model"

// AccidentalTable records the accidental currently in force at each
// canonical staff height. It is a value type; assigning it copies it.
type AccidentalTable struct {
	key  model.Key
	clef model.Clef
	acc  [7]model.Accidental
}

func NewAccidentalTable(key model.Key, clef model.Clef) AccidentalTable {
	t := AccidentalTable{key: key, clef: clef}
	a := model.Flat
	if key.IsSharp() {
		a = model.Sharp
	}
	for _, h := range key.AccidentalHeights(clef) {
		t.acc[model.CanonicalHeight(h)] = a
	}
	return t
}

func (t AccidentalTable) At(height int) model.Accidental {
	return t.acc[model.CanonicalHeight(height)]
}

// DisplayAccidental returns the accidental that has to be drawn for a note
// at height, given what is already in force.
func (t AccidentalTable) DisplayAccidental(accidental model.Accidental, height int) model.Accidental {
	if accidental == model.NoAccidental {
		accidental = t.key.AccidentalAtHeight(height, t.clef)
	}
	current := t.At(height)
	if current == model.NoAccidental {
		return accidental
	}
	if accidental == current {
		return model.NoAccidental
	}
	if accidental == model.NoAccidental || accidental == model.Natural {
		return model.Natural
	}
	// NOTE: a natural followed by the new accidental would be right here,
	// but a single display accidental can't express it
	return accidental
}

func (t *AccidentalTable) Update(accidental model.Accidental, height int) {
	if accidental == model.NoAccidental {
		accidental = t.key.AccidentalAtHeight(height, t.clef)
	}
	t.acc[model.CanonicalHeight(height)] = accidental
}
