package hexdump

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memview/memory"
)

func plainOptions() Options {
	opts := DefaultOptions()
	opts.Color = false
	return opts
}

func TestDumpBasicLine(t *testing.T) {
	data := []byte("SEED\x00\x00\x00\x00ABCDEFGH")

	out := Dump(data, plainOptions())

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "00000000")
	assert.Contains(t, lines[0], "53 45 45 44")
	assert.Contains(t, lines[0], "SEED....ABCDEFGH")
}

func TestDumpStartOffset(t *testing.T) {
	opts := plainOptions()
	opts.StartOffset = 0x7FFD8000
	opts.OffsetWidth = 12

	out := Dump(make([]byte, 32), opts)

	assert.Contains(t, out, "00007ffd8000")
	assert.Contains(t, out, "00007ffd8010")
}

func TestDumpShortLinePadsASCIIColumn(t *testing.T) {
	opts := plainOptions()

	out := Dump([]byte{0x41, 0x42, 0x43}, opts)
	full := Dump(make([]byte, 16), opts)

	// ASCII separator is aligned with the full-width line.
	assert.Equal(t, strings.Index(full, " | "), strings.Index(out, " | "))
	assert.Contains(t, out, "ABC")
}

func TestDumpGrouping(t *testing.T) {
	opts := plainOptions()
	opts.GroupSize = 4
	opts.ShowASCII = false

	out := Dump([]byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01, 0x02, 0x03, 0x04}, opts)
	assert.Contains(t, out, "deadbeef 01020304")
}

func TestDumpPointerPreview(t *testing.T) {
	space := memory.NewSpace("test")
	space.AddRegion(0x140000000, make([]byte, 0x1000), "r-xp")

	opts := plainOptions()
	opts.ShowPointers = true
	opts.Reader = space

	// First word is a valid pointer, second is not.
	data := []byte{
		0x00, 0x00, 0x00, 0x40, 0x01, 0x00, 0x00, 0x00,
		0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	}

	out := Dump(data, opts)
	assert.Contains(t, out, "0x140000000")
	assert.NotContains(t, out, "0xffffffffffffffff")
}
