package servedroot

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/marmos91/dirserve/internal/logger"
	"github.com/marmos91/dirserve/internal/protocol/dirproto"
)

// Entry is a regular file found in the root.
type Entry struct {
	Name string `json:"name" yaml:"name"`
	Size int64  `json:"size" yaml:"size"`
}

// List enumerates the regular files of the root in directory order. Entries
// are stat'ed through symlinks; anything that is not a regular file after
// that, or that vanished in between, is skipped. The result is never cached.
func (r *Root) List(ctx context.Context) ([]Entry, error) {
	dir, err := r.fs.Open(r.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRootUnavailable, err)
	}
	defer func() { _ = dir.Close() }()

	names, err := dir.Readdirnames(-1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRootUnavailable, err)
	}

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		if name == "." || name == ".." {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := r.fs.Stat(filepath.Join(r.dir, name))
		if err != nil {
			logger.DebugCtx(ctx, "Skipping unreadable entry", logger.Filename(name), logger.Err(err))
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		entries = append(entries, Entry{Name: name, Size: info.Size()})
	}
	return entries, nil
}

// ListingEntries converts entries to their wire representation.
func ListingEntries(entries []Entry) []dirproto.ListingEntry {
	out := make([]dirproto.ListingEntry, len(entries))
	for i, e := range entries {
		out[i] = dirproto.ListingEntry(e)
	}
	return out
}
