package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T) *bytes.Buffer {
	var buf bytes.Buffer
	old, oldVerbose := Stream, Verbose
	Stream = &buf
	t.Cleanup(func() {
		Stream, Verbose = old, oldVerbose
	})
	return &buf
}

func TestPrefixesEveryLine(t *testing.T) {
	buf := capture(t)
	Layout.Printf("first\nsecond")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	for _, line := range lines {
		assert.Contains(t, line, " LAYOUT ")
	}
	assert.True(t, strings.HasSuffix(lines[1], "LAYOUT second"))
}

func TestDebugNeedsVerbose(t *testing.T) {
	buf := capture(t)

	Verbose = false
	Export.Debugf("hidden %d", 1)
	assert.Empty(t, buf.String())

	Verbose = true
	Export.Debugf("shown %d", 2)
	assert.Contains(t, buf.String(), "EXPORT shown 2")
}
