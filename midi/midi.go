package midi

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"
)

func ReadMidiFile(filepath string) (s *smf.SMF, e error) {
	var blank smf.SMF

	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			s = &blank
			e = errors.Errorf("panic parsing midi file %s: %v", filepath, r)
		}
	}()

	dat, err := os.ReadFile(filepath)
	if err != nil {
		return &blank, errors.Wrap(err, "Error reading midi file...")
	}

	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return &blank, errors.Wrap(err, "Error parsing midi file...")
	}

	return res, nil
}

// metaData returns the payload of a meta message of the given type.
func metaData(msg smf.Message, typ byte) ([]byte, bool) {
	b := []byte(msg)
	if len(b) < 3 || b[0] != 0xFF || b[1] != typ {
		return nil, false
	}
	// variable length quantity
	var n, i int
	for i = 2; i < len(b); i++ {
		n = n<<7 | int(b[i]&0x7F)
		if b[i]&0x80 == 0 {
			i++
			break
		}
	}
	if i+n > len(b) {
		return nil, false
	}
	return b[i : i+n], true
}

func trackName(msg smf.Message) (string, bool) {
	data, ok := metaData(msg, 0x03)
	if !ok {
		return "", false
	}
	return string(data), true
}

// keySignature decodes FF 59 02 sf mi.
func keySignature(msg smf.Message) (sharps int, minor bool, ok bool) {
	data, ok := metaData(msg, 0x59)
	if !ok || len(data) != 2 {
		return 0, false, false
	}
	return int(int8(data[0])), data[1] == 1, true
}

func describe(msg smf.Message) string {
	return fmt.Sprintf("% X", []byte(msg))
}
