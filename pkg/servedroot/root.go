// Package servedroot exposes the regular files of one directory, the served
// root, to protocol handlers. It owns the filename guard, the directory
// listing and the chunked file streamer.
//
// All filesystem access goes through an afero.Fs so the same code serves
// the real disk (Open) and in-memory trees in tests (New).
package servedroot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// DefaultTransferUnit is the chunk size used when streaming files.
const DefaultTransferUnit = 4096

var (
	// ErrInvalidName is returned for filenames rejected by ValidateName.
	ErrInvalidName = errors.New("invalid filename")

	// ErrRootUnavailable is returned when the served root cannot be opened.
	ErrRootUnavailable = errors.New("served root unavailable")

	// ErrNotRegular is returned when a name resolves to something other
	// than a regular file.
	ErrNotRegular = errors.New("not a regular file")
)

// Root is a served directory. It is immutable after construction and safe
// for concurrent use by any number of connections.
type Root struct {
	fs           afero.Fs
	dir          string
	display      string
	transferUnit int
}

// Option configures a Root.
type Option func(*Root)

// WithTransferUnit sets the streaming chunk size. Values below 1 are ignored.
func WithTransferUnit(n int) Option {
	return func(r *Root) {
		if n > 0 {
			r.transferUnit = n
		}
	}
}

// New serves directory dir of fs.
func New(fs afero.Fs, dir string, opts ...Option) *Root {
	r := &Root{
		fs:           fs,
		dir:          dir,
		display:      dir,
		transferUnit: DefaultTransferUnit,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open serves the on-disk directory at path. When create is true a missing
// directory is created with mode 0755.
func Open(path string, create bool, opts ...Option) (*Root, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve served root %q: %w", path, err)
	}

	osFs := afero.NewOsFs()
	if create {
		if err := osFs.MkdirAll(abs, 0755); err != nil {
			return nil, fmt.Errorf("create served root %q: %w", abs, err)
		}
	}

	info, err := osFs.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRootUnavailable, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootUnavailable, abs)
	}

	r := New(afero.NewBasePathFs(osFs, abs), string(os.PathSeparator), opts...)
	r.display = abs
	return r, nil
}

// Path returns a human-readable location of the root for logs.
func (r *Root) Path() string {
	return r.display
}

// TransferUnit returns the chunk size used by Stream.
func (r *Root) TransferUnit() int {
	return r.transferUnit
}

// resolve validates name and returns its path inside the root.
func (r *Root) resolve(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(r.dir, name), nil
}
