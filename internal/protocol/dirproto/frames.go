// Package dirproto implements the wire framing of the directory-serving
// protocol: command lines from the client, plain/listing/file frames from
// the server, and the client-side Reassembler that finds the end of a file
// frame in a stream of arbitrarily sized reads.
package dirproto

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrNotListing is returned by ParseListing for frames that are not a
// listing, such as the directory error line.
var ErrNotListing = errors.New("dirproto: not a listing frame")

// Server frames. The text is part of the wire contract and must not change.
const (
	Welcome = "=== SERVIDOR DE ARCHIVOS ===\n" +
		"Comandos disponibles:\n" +
		"  LIST - Listar archivos\n" +
		"  GET <nombre> - Obtener archivo\n" +
		"  EXIT - Salir\n" +
		"============================\n"

	ListingHeader = "=== LISTA DE ARCHIVOS ===\n"
	ListingFooter = "========================\n"

	DirectoryError = "Error: No se puede abrir el directorio\n"
	InvalidName    = "Error: Nombre de archivo inválido\n"
	UnknownCommand = "Comando no reconocido. Use LIST, GET <archivo> o EXIT\n"
	Farewell       = "Cerrando conexión...\n"

	// FileSentinel terminates a successful file frame. It is preceded by a
	// newline and followed by one, see FileFooter.
	FileSentinel = "=== FIN DEL ARCHIVO ==="
	FileFooter   = "\n" + FileSentinel + "\n"

	// ErrorMarker starts every error line the server can send in response
	// to GET.
	ErrorMarker = "Error:"

	fileHeaderPrefix = "=== CONTENIDO DE "
	fileHeaderSuffix = " ===\n"
)

// ListingEntry is one line of a listing frame.
type ListingEntry struct {
	Name string
	Size int64
}

// FileHeader returns the header line opening the file frame for name.
func FileHeader(name string) string {
	return fileHeaderPrefix + name + fileHeaderSuffix
}

// ParseFileHeader extracts the filename from a file frame header line. The
// trailing newline is optional.
func ParseFileHeader(line string) (name string, ok bool) {
	line = strings.TrimSuffix(line, "\n")
	suffix := strings.TrimSuffix(fileHeaderSuffix, "\n")
	if !strings.HasPrefix(line, fileHeaderPrefix) || !strings.HasSuffix(line, suffix) {
		return "", false
	}
	if len(line) < len(fileHeaderPrefix)+len(suffix) {
		return "", false
	}
	return line[len(fileHeaderPrefix) : len(line)-len(suffix)], true
}

// MissingFile returns the error line sent when name cannot be opened.
func MissingFile(name string) string {
	return fmt.Sprintf("Error: No se puede abrir el archivo '%s'\n", name)
}

// ReadInterrupted returns the line sent in place of the footer when the
// file could not be read to the end. It starts on a fresh line so that it
// never merges with partial file content.
func ReadInterrupted(name string) string {
	return fmt.Sprintf("\nError: Lectura interrumpida del archivo '%s'\n", name)
}

// AppendListing renders a complete listing frame into buf.
func AppendListing(buf []byte, entries []ListingEntry) []byte {
	buf = append(buf, ListingHeader...)
	for _, e := range entries {
		buf = append(buf, "- "...)
		buf = append(buf, e.Name...)
		buf = append(buf, " ("...)
		buf = strconv.AppendInt(buf, e.Size, 10)
		buf = append(buf, " bytes)\n"...)
	}
	return append(buf, ListingFooter...)
}

// WriteListing sends the listing frame for entries with a single write-all
// call and returns the number of bytes written.
func WriteListing(w io.Writer, entries []ListingEntry) (int, error) {
	frame := AppendListing(make([]byte, 0, 64+len(entries)*32), entries)
	if err := WriteAll(w, frame); err != nil {
		return 0, err
	}
	return len(frame), nil
}

// WriteString sends a plain frame.
func WriteString(w io.Writer, frame string) error {
	return WriteAll(w, []byte(frame))
}

// ParseListing is the inverse of AppendListing. Entry lines that do not
// follow the "- <name> (<size> bytes)" shape are skipped; a frame without
// the header line yields ErrNotListing.
func ParseListing(frame string) ([]ListingEntry, error) {
	body, ok := strings.CutPrefix(frame, ListingHeader)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotListing, firstLine(frame))
	}
	body, _, _ = strings.Cut(body, ListingFooter)

	var entries []ListingEntry
	for _, line := range strings.Split(body, "\n") {
		if e, ok := parseListingLine(line); ok {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func parseListingLine(line string) (ListingEntry, bool) {
	rest, ok := strings.CutPrefix(line, "- ")
	if !ok {
		return ListingEntry{}, false
	}
	rest, ok = strings.CutSuffix(rest, " bytes)")
	if !ok {
		return ListingEntry{}, false
	}
	i := strings.LastIndex(rest, " (")
	if i < 0 {
		return ListingEntry{}, false
	}
	size, err := strconv.ParseInt(rest[i+2:], 10, 64)
	if err != nil {
		return ListingEntry{}, false
	}
	return ListingEntry{Name: rest[:i], Size: size}, true
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
