package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/jsphweid/hlayout/model"
)

// Metrics are the per-staff glyph sizes the layout engine works with.
type Metrics struct {
	NoteBodyWidth   int `yaml:"note_body_width" json:"note_body_width"`
	DotWidth        int `yaml:"dot_width" json:"dot_width"`
	AccidentalWidth int `yaml:"accidental_width" json:"accidental_width"`
	ClefWidth       int `yaml:"clef_width" json:"clef_width"`
	// key signature width is KeyMargin plus one accidental per sharp or flat
	KeyMargin int `yaml:"key_margin" json:"key_margin"`
	// time signature width is one digit width per digit of the wider number
	TimeSigDigitWidth int `yaml:"time_sig_digit_width" json:"time_sig_digit_width"`
	BarMargin         int `yaml:"bar_margin" json:"bar_margin"`
}

func DefaultMetrics() Metrics {
	return Metrics{
		NoteBodyWidth:     10,
		DotWidth:          4,
		AccidentalWidth:   8,
		ClefWidth:         24,
		KeyMargin:         4,
		TimeSigDigitWidth: 10,
		BarMargin:         16,
	}
}

func (m Metrics) KeyWidth(k model.Key) int {
	return m.KeyMargin + k.AccidentalCount()*m.AccidentalWidth
}

func (m Metrics) TimeSigWidth(ts model.TimeSignature) int {
	return ts.DigitCount() * m.TimeSigDigitWidth
}

func (m Metrics) Validate() error {
	if m.NoteBodyWidth <= 0 {
		return errors.New("note_body_width must be positive")
	}
	if m.DotWidth < 0 || m.AccidentalWidth < 0 || m.ClefWidth < 0 ||
		m.KeyMargin < 0 || m.TimeSigDigitWidth < 0 || m.BarMargin < 0 {
		return errors.New("metrics must not be negative")
	}
	return nil
}

// ParseMetrics reads YAML over the defaults, so a file only needs the
// values it changes.
func ParseMetrics(data []byte) (Metrics, error) {
	m := DefaultMetrics()
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, errors.Wrap(err, "could not parse metrics")
	}
	if err := m.Validate(); err != nil {
		return m, err
	}
	return m, nil
}

func LoadMetrics(path string) (Metrics, error) {
	if path == "" {
		return DefaultMetrics(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultMetrics(), errors.Wrapf(err, "could not read metrics file %s", path)
	}
	m, err := ParseMetrics(data)
	if err != nil {
		return m, errors.Wrapf(err, "metrics file %s", path)
	}
	return m, nil
}
