package dirproto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingFrame(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		var buf bytes.Buffer
		n, err := WriteListing(&buf, nil)
		require.NoError(t, err)
		assert.Equal(t, ListingHeader+ListingFooter, buf.String())
		assert.Equal(t, buf.Len(), n)
	})

	t.Run("Entries", func(t *testing.T) {
		var buf bytes.Buffer
		_, err := WriteListing(&buf, []ListingEntry{
			{Name: "a.txt", Size: 3},
			{Name: "empty", Size: 0},
			{Name: "big file.bin", Size: 1 << 20},
		})
		require.NoError(t, err)
		assert.Equal(t,
			"=== LISTA DE ARCHIVOS ===\n"+
				"- a.txt (3 bytes)\n"+
				"- empty (0 bytes)\n"+
				"- big file.bin (1048576 bytes)\n"+
				"========================\n",
			buf.String())
	})

	t.Run("SingleWrite", func(t *testing.T) {
		w := &countingWriter{}
		_, err := WriteListing(w, []ListingEntry{{Name: "x", Size: 1}, {Name: "y", Size: 2}})
		require.NoError(t, err)
		assert.Equal(t, 1, w.calls)
	})
}

func TestFileFrameLiterals(t *testing.T) {
	assert.Equal(t, "=== CONTENIDO DE a.txt ===\n", FileHeader("a.txt"))
	assert.Equal(t, "\n=== FIN DEL ARCHIVO ===\n", FileFooter)
	assert.Equal(t, "Error: No se puede abrir el archivo 'nope.txt'\n", MissingFile("nope.txt"))
	assert.Equal(t, "\nError: Lectura interrumpida del archivo 'a.txt'\n", ReadInterrupted("a.txt"))
	assert.Contains(t, ReadInterrupted("a.txt"), ErrorMarker)
	assert.Contains(t, MissingFile("a.txt"), ErrorMarker)
	assert.Contains(t, InvalidName, ErrorMarker)
}

func TestWelcomeBanner(t *testing.T) {
	assert.Equal(t, "=== SERVIDOR DE ARCHIVOS ===\n"+
		"Comandos disponibles:\n"+
		"  LIST - Listar archivos\n"+
		"  GET <nombre> - Obtener archivo\n"+
		"  EXIT - Salir\n"+
		"============================\n", Welcome)
}

type countingWriter struct {
	bytes.Buffer
	calls int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.calls++
	return w.Buffer.Write(p)
}

func TestParseFileHeader(t *testing.T) {
	name, ok := ParseFileHeader(FileHeader("mi archivo.txt"))
	assert.True(t, ok)
	assert.Equal(t, "mi archivo.txt", name)

	name, ok = ParseFileHeader("=== CONTENIDO DE a.txt ===")
	assert.True(t, ok)
	assert.Equal(t, "a.txt", name)

	for _, line := range []string{"", "hello\n", MissingFile("a.txt"), "=== CONTENIDO DE ===\n"} {
		_, ok := ParseFileHeader(line)
		assert.False(t, ok, "%q", line)
	}
}

func TestParseListing(t *testing.T) {
	entries := []ListingEntry{
		{Name: "a.txt", Size: 3},
		{Name: "with (parens) 2.txt", Size: 12},
		{Name: "empty", Size: 0},
	}

	got, err := ParseListing(string(AppendListing(nil, entries)))
	require.NoError(t, err)
	assert.Equal(t, entries, got)

	got, err = ParseListing(ListingHeader + ListingFooter)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = ParseListing(ListingHeader + "- a.txt (3 bytes)\n- garbage\n" + ListingFooter)
	require.NoError(t, err)
	assert.Equal(t, []ListingEntry{{Name: "a.txt", Size: 3}}, got)

	_, err = ParseListing(DirectoryError)
	assert.ErrorIs(t, err, ErrNotListing)
}
