// Package file loads and saves compositions, choosing the format from the
// file extension.
package file

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/jsphweid/hlayout/config"
	"github.com/jsphweid/hlayout/lilypond"
	"github.com/jsphweid/hlayout/logging"
	"github.com/jsphweid/hlayout/midi"
	"github.com/jsphweid/hlayout/score"
)

var ErrUnknownFormat = errors.New("unknown file format")

func Load(path string, m config.Metrics) (*score.Composition, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", path)
		}
		comp, err := Parse(data, m)
		if err != nil {
			return nil, errors.Wrap(err, path)
		}
		logging.Files.Debugf("loaded %s: %d staves", path, len(comp.Staves))
		return comp, nil
	case ".mid", ".midi":
		return midi.Load(path, m)
	}
	return nil, errors.Wrap(ErrUnknownFormat, path)
}

// Save writes JSON scores or LilyPond (.ly) exports.
func Save(c *score.Composition, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err := Encode(c)
		if err != nil {
			return err
		}
		return errors.Wrapf(os.WriteFile(path, data, 0644), "writing %s", path)
	case ".ly":
		return lilypond.New(c).WriteFile(path)
	}
	return errors.Wrap(ErrUnknownFormat, path)
}
