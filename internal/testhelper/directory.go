package testhelper

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// DirectoryEntry models an entry in a directory.
type DirectoryEntry struct {
	// Mode is the file type bits of the entry. Permission bits are left out
	// of the comparison as they depend on the environment's umask.
	Mode fs.FileMode
	// Content contains the file content if this is a regular file.
	Content string
}

// DirectoryState models the contents of a directory. The keys are the paths
// of the entries relative to the walked directory, with the walked directory
// itself stored as "/".
type DirectoryState map[string]DirectoryEntry

// RequireDirectoryState asserts that the given directory matches the
// expected state. The rootDirectory and relativeDirectory are joined
// together to decide the directory to walk; rootDirectory is trimmed out of
// the walked paths so assertions can use relative paths only.
func RequireDirectoryState(tb testing.TB, rootDirectory, relativeDirectory string, expected DirectoryState) {
	tb.Helper()

	actual := DirectoryState{}
	require.NoError(tb, filepath.WalkDir(filepath.Join(rootDirectory, relativeDirectory), func(path string, entry os.DirEntry, err error) error {
		if os.IsNotExist(err) {
			return nil
		}
		require.NoError(tb, err)

		trimmedPath := strings.TrimPrefix(path, rootDirectory)
		if trimmedPath == "" {
			trimmedPath = string(os.PathSeparator)
		}

		info, err := entry.Info()
		require.NoError(tb, err)

		actualEntry := DirectoryEntry{
			Mode: info.Mode().Type(),
		}

		if entry.Type().IsRegular() {
			content, err := os.ReadFile(path)
			require.NoError(tb, err)

			actualEntry.Content = string(content)
		}

		actual[trimmedPath] = actualEntry
		return nil
	}))

	require.Equal(tb, expected, actual)
}
