package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// files is a two-column listing, the shape dirservectl list prints.
type files [][]string

func (files) Headers() []string   { return []string{"Name", "Size"} }
func (f files) Rows() [][]string { return f }

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, files{{"a.txt", "3"}, {"notas.txt", "1536 (1.5 KiB)"}}))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "NAME"), "headers are upper-cased: %q", out)
	assert.Contains(t, out, "a.txt")
	assert.Contains(t, out, "1536 (1.5 KiB)")
	assert.NotContains(t, out, "|")
	assert.Less(t, strings.Index(out, "a.txt"), strings.Index(out, "notas.txt"), "rows keep their order")
}

func TestSimpleTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SimpleTable(&buf, [][2]string{
		{"Root", "/srv/files"},
		{"Transfer unit", "4096 (4.0 KiB)"},
	}))

	out := buf.String()
	assert.Contains(t, out, "Root")
	assert.Contains(t, out, "/srv/files")
	assert.Contains(t, out, "Transfer unit")
	assert.Contains(t, out, ":")
	assert.NotContains(t, out, "TRANSFER UNIT", "keys keep their case")
}

func TestBytes(t *testing.T) {
	assert.Equal(t, "0", Bytes(0))
	assert.Equal(t, "1023", Bytes(1023))
	assert.Equal(t, "1536 (1.5 KiB)", Bytes(1536))
	assert.Equal(t, "1048576 (1.0 MiB)", Bytes(1<<20))
}
