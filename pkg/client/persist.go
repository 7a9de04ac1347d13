package client

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/marmos91/dirserve/internal/protocol/dirproto"
)

// PersistPolicy selects what Get writes to its sink.
type PersistPolicy int

const (
	// PersistRaw writes the response verbatim, header and footer included.
	PersistRaw PersistPolicy = iota

	// PersistStripped writes only the file content. Nothing is written when
	// the response is an error line.
	PersistStripped
)

// String returns the policy name accepted by ParsePersistPolicy.
func (p PersistPolicy) String() string {
	switch p {
	case PersistRaw:
		return "raw"
	case PersistStripped:
		return "stripped"
	default:
		return fmt.Sprintf("PersistPolicy(%d)", int(p))
	}
}

// ParsePersistPolicy parses "raw" or "stripped", case-insensitively.
func ParsePersistPolicy(s string) (PersistPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "raw", "":
		return PersistRaw, nil
	case "stripped", "strip":
		return PersistStripped, nil
	default:
		return PersistRaw, fmt.Errorf("unknown persist policy %q (valid: raw, stripped)", s)
	}
}

type stripState int

const (
	stripHeader stripState = iota
	stripBody
	stripDiscard
)

// stripper removes the header line and the footer from a file frame on its
// way to w. The last len(FileFooter) bytes are held back until finish,
// since they may turn out to be the footer.
type stripper struct {
	w       io.Writer
	state   stripState
	head    []byte
	held    []byte
	written int64
}

func newStripper(w io.Writer) *stripper {
	return &stripper{w: w}
}

// Write always consumes all of p unless w fails.
func (s *stripper) Write(p []byte) (int, error) {
	n := len(p)

	if s.state == stripHeader {
		i := bytes.IndexByte(p, '\n')
		if i < 0 {
			s.head = append(s.head, p...)
			return n, nil
		}
		line := append(s.head, p[:i+1]...)
		s.head = nil
		p = p[i+1:]

		switch {
		case bytes.HasPrefix(line, []byte(dirproto.ErrorMarker)):
			s.state = stripDiscard
		case isFileHeader(line):
			s.state = stripBody
		default:
			s.state = stripBody
			p = append(line, p...)
		}
	}

	if s.state == stripDiscard {
		return n, nil
	}

	s.held = append(s.held, p...)
	if over := len(s.held) - len(dirproto.FileFooter); over > 0 {
		if err := s.emit(s.held[:over]); err != nil {
			return 0, err
		}
		s.held = append(s.held[:0], s.held[over:]...)
	}
	return n, nil
}

// finish flushes the held-back bytes minus the footer when the response
// completed normally. A failed response leaves the held bytes unwritten.
func (s *stripper) finish(ok bool) error {
	if !ok || s.state != stripBody {
		return nil
	}
	return s.emit(bytes.TrimSuffix(s.held, []byte(dirproto.FileFooter)))
}

func (s *stripper) emit(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	n, err := s.w.Write(p)
	s.written += int64(n)
	return err
}

func isFileHeader(line []byte) bool {
	_, ok := dirproto.ParseFileHeader(string(line))
	return ok
}
