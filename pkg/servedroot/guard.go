package servedroot

import (
	"fmt"
	"os"
	"strings"
)

// ValidateName decides whether a client-supplied filename may be resolved
// under the root. The check is purely syntactic: empty names, names with a
// path separator and names containing ".." anywhere are rejected. Symlinks
// are not resolved.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	case strings.Contains(name, ".."):
		return fmt.Errorf("%w: %q contains \"..\"", ErrInvalidName, name)
	case strings.ContainsRune(name, '/'),
		os.PathSeparator != '/' && strings.ContainsRune(name, os.PathSeparator):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	}
	return nil
}
