package dirproto

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// ErrLineTooLong is returned by ReadCommand when a command line does not fit
// in the reader's buffer. The rest of the line has been discarded.
var ErrLineTooLong = errors.New("dirproto: command line too long")

// Verb identifies a protocol command.
type Verb int

const (
	VerbUnknown Verb = iota
	VerbList
	VerbGet
	VerbExit
)

func (v Verb) String() string {
	switch v {
	case VerbList:
		return "LIST"
	case VerbGet:
		return "GET"
	case VerbExit:
		return "EXIT"
	default:
		return "UNKNOWN"
	}
}

// Command is a parsed client command line.
type Command struct {
	Verb Verb
	Arg  string // filename for GET, empty otherwise
	Raw  string // line as received, without the terminator
}

const getPrefix = "GET "

// ParseCommand classifies a command line. Matching is exact and
// case-sensitive; "GET" without a following space is an unknown command.
func ParseCommand(line string) Command {
	cmd := Command{Raw: line}
	switch {
	case line == "LIST":
		cmd.Verb = VerbList
	case line == "EXIT":
		cmd.Verb = VerbExit
	case strings.HasPrefix(line, getPrefix):
		cmd.Verb = VerbGet
		cmd.Arg = line[len(getPrefix):]
	}
	return cmd
}

// Line returns the wire encoding of a command, newline included.
func Line(verb Verb, arg string) string {
	switch verb {
	case VerbGet:
		return getPrefix + arg + "\n"
	case VerbList, VerbExit:
		return verb.String() + "\n"
	default:
		return arg + "\n"
	}
}

// ReadCommand reads one command line from r and strips its "\n" (and a "\r"
// before it). A final line without terminator is returned as is; the next
// call then reports io.EOF. Any other read error discards the partial line. Lines longer than r's buffer are drained and
// reported as ErrLineTooLong.
func ReadCommand(r *bufio.Reader) (string, error) {
	line, err := r.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		for errors.Is(err, bufio.ErrBufferFull) {
			_, err = r.ReadSlice('\n')
		}
		if err != nil {
			return "", err
		}
		return "", ErrLineTooLong
	}
	if err != nil && (len(line) == 0 || !errors.Is(err, io.EOF)) {
		return "", err
	}

	s := strings.TrimSuffix(string(line), "\n")
	s = strings.TrimSuffix(s, "\r")
	return s, nil
}
