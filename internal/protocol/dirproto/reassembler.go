package dirproto

import "bytes"

// DefaultMarkers are the byte sequences that end a GET response: the footer
// sentinel of a complete file frame and the prefix of every error line.
func DefaultMarkers() [][]byte {
	return [][]byte{[]byte(FileSentinel), []byte(ErrorMarker)}
}

type reassemblerState int

const (
	stateScanning reassemblerState = iota
	stateFinishingLine
	stateDone
)

// Reassembler tracks a GET response arriving in reads of arbitrary size and
// decides where it ends.
//
// Every byte fed in is emitted right away except bytes that follow the
// terminating line. A rolling tail of the last maxMarkerLen-1 bytes is kept
// so that a marker split across two reads is still found. Once a marker is
// seen, the rest of its line (up to and including the next '\n', possibly in
// a later read) is emitted before Feed reports done.
//
// A Reassembler is not safe for concurrent use.
type Reassembler struct {
	markers [][]byte
	keep    int
	tail    []byte
	state   reassemblerState
	matched []byte
	total   int64
}

// NewReassembler returns a Reassembler terminating on any of markers, or on
// DefaultMarkers when none are given. Empty markers are ignored.
func NewReassembler(markers ...[]byte) *Reassembler {
	if len(markers) == 0 {
		markers = DefaultMarkers()
	}
	r := &Reassembler{}
	for _, m := range markers {
		if len(m) == 0 {
			continue
		}
		r.markers = append(r.markers, append([]byte(nil), m...))
		if len(m)-1 > r.keep {
			r.keep = len(m) - 1
		}
	}
	r.tail = make([]byte, 0, r.keep)
	return r
}

// Feed consumes the next read. It returns the part of chunk that belongs to
// the response and whether the response is now complete. The returned slice
// aliases chunk. After done has been reported Feed returns nothing.
func (r *Reassembler) Feed(chunk []byte) (emit []byte, done bool) {
	switch r.state {
	case stateDone:
		return nil, true
	case stateFinishingLine:
		return r.finishLine(chunk, 0)
	}

	window := make([]byte, 0, len(r.tail)+len(chunk))
	window = append(window, r.tail...)
	window = append(window, chunk...)

	end := -1
	for _, m := range r.markers {
		i := bytes.Index(window, m)
		if i < 0 {
			continue
		}
		if e := i + len(m); end < 0 || e < end {
			end = e
			r.matched = m
		}
	}

	if end < 0 {
		r.total += int64(len(chunk))
		r.rememberTail(window)
		return chunk, false
	}

	// The tail never holds a complete marker, so end lies inside chunk.
	return r.finishLine(chunk, end-len(r.tail))
}

// finishLine emits chunk up to and including the first '\n' at or after
// offset from.
func (r *Reassembler) finishLine(chunk []byte, from int) ([]byte, bool) {
	if i := bytes.IndexByte(chunk[from:], '\n'); i >= 0 {
		cut := from + i + 1
		r.state = stateDone
		r.total += int64(cut)
		r.tail = r.tail[:0]
		return chunk[:cut], true
	}
	r.state = stateFinishingLine
	r.total += int64(len(chunk))
	return chunk, false
}

func (r *Reassembler) rememberTail(window []byte) {
	if len(window) > r.keep {
		window = window[len(window)-r.keep:]
	}
	r.tail = append(r.tail[:0], window...)
}

// Done reports whether the terminating line has been fully seen.
func (r *Reassembler) Done() bool {
	return r.state == stateDone
}

// Matched returns the marker that ended the response, or nil.
func (r *Reassembler) Matched() []byte {
	return r.matched
}

// Emitted returns the number of bytes emitted so far.
func (r *Reassembler) Emitted() int64 {
	return r.total
}

// Close reports whether the stream ended inside a frame, i.e. before the
// terminating line was complete.
func (r *Reassembler) Close() (incomplete bool) {
	return r.state != stateDone
}
