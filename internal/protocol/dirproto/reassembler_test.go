package dirproto

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feedInChunks runs stream through a fresh Reassembler in reads of size
// unit and returns everything emitted plus the completion flag.
func feedInChunks(t *testing.T, stream []byte, unit int) ([]byte, bool) {
	t.Helper()
	r := NewReassembler()
	var out []byte
	for len(stream) > 0 {
		n := min(unit, len(stream))
		emit, done := r.Feed(stream[:n])
		out = append(out, emit...)
		stream = stream[n:]
		if done {
			return out, true
		}
	}
	return out, false
}

func fileFrame(name, content string) string {
	return FileHeader(name) + content + FileFooter
}

func TestReassemblerExactFrameWithUnitOne(t *testing.T) {
	frame := fileFrame("a.txt", "abc")

	out, done := feedInChunks(t, []byte(frame), 1)
	require.True(t, done)
	assert.Equal(t, "=== CONTENIDO DE a.txt ===\nabc\n=== FIN DEL ARCHIVO ===\n", string(out))
}

func TestReassemblerChunkingInvariance(t *testing.T) {
	content := strings.Repeat("0123456789abcdef", 700) + "tail"
	frame := []byte(fileFrame("data.bin", content))

	for _, unit := range []int{1, 2, 3, 7, 22, 23, 24, 100, 4096, len(frame)} {
		out, done := feedInChunks(t, frame, unit)
		require.True(t, done, "unit %d", unit)
		assert.Equal(t, frame, out, "unit %d", unit)
	}
}

func TestReassemblerSentinelSplit(t *testing.T) {
	sentinel := []byte(FileSentinel)

	for a := 0; a <= len(sentinel); a++ {
		b := len(sentinel) - a
		r := NewReassembler()

		emit, done := r.Feed([]byte("payload\n"))
		assert.Equal(t, "payload\n", string(emit))
		assert.False(t, done)

		emit, done = r.Feed(sentinel[:a])
		assert.Equal(t, sentinel[:a], emit)
		assert.False(t, done, "a=%d b=%d", a, b)

		emit, done = r.Feed(sentinel[a:])
		assert.Equal(t, sentinel[a:], emit)
		assert.False(t, done, "line not finished yet, a=%d b=%d", a, b)
		assert.Equal(t, sentinel, r.Matched())

		emit, done = r.Feed([]byte("\n"))
		assert.Equal(t, "\n", string(emit))
		assert.True(t, done, "a=%d b=%d", a, b)
	}
}

func TestReassemblerDropsTrailingBytes(t *testing.T) {
	r := NewReassembler()

	emit, done := r.Feed([]byte("x\n=== FIN DEL ARCHIVO ===\nGARBAGE"))
	assert.True(t, done)
	assert.Equal(t, "x\n=== FIN DEL ARCHIVO ===\n", string(emit))

	emit, done = r.Feed([]byte("more"))
	assert.True(t, done)
	assert.Empty(t, emit)
}

func TestReassemblerErrorFrames(t *testing.T) {
	t.Run("MissingFile", func(t *testing.T) {
		frame := MissingFile("nope.txt")
		for _, unit := range []int{1, 5, 6, len(frame)} {
			out, done := feedInChunks(t, []byte(frame), unit)
			assert.True(t, done)
			assert.Equal(t, frame, string(out))
		}
	})

	t.Run("InvalidName", func(t *testing.T) {
		out, done := feedInChunks(t, []byte(InvalidName), 3)
		assert.True(t, done)
		assert.Equal(t, InvalidName, string(out))
	})

	t.Run("InterruptedRead", func(t *testing.T) {
		stream := FileHeader("a.txt") + "partial" + ReadInterrupted("a.txt")
		r := NewReassembler()
		emit, done := r.Feed([]byte(stream))
		assert.True(t, done)
		assert.Equal(t, stream, string(emit))
		assert.Equal(t, []byte(ErrorMarker), r.Matched())
	})
}

func TestReassemblerClose(t *testing.T) {
	r := NewReassembler()
	r.Feed([]byte("=== CONTENIDO DE a.txt ===\nab"))
	assert.True(t, r.Close(), "stream ended inside the frame")
	assert.False(t, r.Done())

	r = NewReassembler()
	r.Feed([]byte(fileFrame("a.txt", "ab")))
	assert.False(t, r.Close())
	assert.EqualValues(t, len(fileFrame("a.txt", "ab")), r.Emitted())
}

func TestReassemblerCustomMarkers(t *testing.T) {
	r := NewReassembler([]byte("END"), nil)

	emit, done := r.Feed([]byte("abcE"))
	assert.Equal(t, "abcE", string(emit))
	assert.False(t, done)

	emit, done = r.Feed([]byte("ND\nzzz"))
	assert.Equal(t, "ND\n", string(emit))
	assert.True(t, done)
}

// A file whose content contains the footer sentinel is cut short. The
// protocol has no escaping or length prefix, so this is a known limitation.
func TestReassemblerSentinelCollision(t *testing.T) {
	content := "before\n=== FIN DEL ARCHIVO ===\nafter"
	frame := fileFrame("tricky.txt", content)

	out, done := feedInChunks(t, []byte(frame), 4096)
	require.True(t, done)
	assert.Equal(t, FileHeader("tricky.txt")+"before\n=== FIN DEL ARCHIVO ===\n", string(out))
	assert.False(t, bytes.Contains(out, []byte("after")))
}
