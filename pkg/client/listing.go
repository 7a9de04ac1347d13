package client

import (
	"github.com/marmos91/dirserve/internal/protocol/dirproto"
)

// Entry is one file of a listing.
type Entry struct {
	Name string `json:"name" yaml:"name"`
	Size int64  `json:"size" yaml:"size"`
}

// ParseListing turns the frame returned by List into entries. A directory
// error line, or any other non-listing frame, returns an error carrying the
// frame's first line.
func ParseListing(frame string) ([]Entry, error) {
	raw, err := dirproto.ParseListing(frame)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(raw))
	for _, e := range raw {
		entries = append(entries, Entry{Name: e.Name, Size: e.Size})
	}
	return entries, nil
}
