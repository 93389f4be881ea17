package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolvePath resolves a caller-supplied relative path into an absolute path
// that is guaranteed to stay within the storage root. `.` and `..` segments
// are collapsed before the containment check, so a path such as
// `a/../../etc/passwd` fails with ErrPathEscapesRoot instead of silently
// pointing outside of the store.
func (s *Store) ResolvePath(relativePath string) (string, error) {
	if filepath.IsAbs(relativePath) {
		return "", fmt.Errorf("resolve %q: %w", relativePath, ErrPathEscapesRoot)
	}

	resolved := filepath.Clean(filepath.Join(s.root, relativePath))
	if resolved != s.root && !strings.HasPrefix(resolved, s.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("resolve %q: %w", relativePath, ErrPathEscapesRoot)
	}

	return resolved, nil
}

// revisionPath returns the absolute path of the given revision's directory.
func (s *Store) revisionPath(revision int) string {
	return filepath.Join(s.root, fmt.Sprintf("%d", revision))
}
