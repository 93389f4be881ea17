package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// Node is one entry in a directory listing. It is built fresh on every
// listing request and never persisted.
type Node struct {
	// Name is the base name of the entry.
	Name string `json:"name"`
	// Path is the entry's path relative to the storage root. It is the key
	// callers pass back into the file operations.
	Path string `json:"path"`
	// IsDirectory reports whether the entry is a directory.
	IsDirectory bool `json:"isDirectory"`
	// Modified is the modification time as Unix seconds.
	Modified int64 `json:"modified"`
	// Size is the file size in bytes. It is nil for directories.
	Size *int64 `json:"size"`
	// Children contains the ordered entries of a directory.
	Children []*Node `json:"children,omitempty"`
}

// MarshalJSON renders the children key for every directory, so an empty
// directory serializes with an empty array rather than dropping the key.
// Files never carry it.
func (n Node) MarshalJSON() ([]byte, error) {
	type node Node

	if !n.IsDirectory {
		return json.Marshal(node(n))
	}

	children := n.Children
	if children == nil {
		children = []*Node{}
	}

	return json.Marshal(struct {
		node
		Children []*Node `json:"children"`
	}{node: node(n), Children: children})
}

// ListTree enumerates the directory at the given relative path into an
// ordered node tree. At every level directories sort before files, and
// within each group entries sort case-insensitively by name. Subdirectories
// that cannot be read are skipped, so partial results are possible. Listing
// a missing path fails with ErrNotFound.
func (s *Store) ListTree(relativePath string) ([]*Node, error) {
	resolved, err := s.ResolvePath(relativePath)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(resolved); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("list %q: %w", relativePath, ErrNotFound)
		}
		return nil, fmt.Errorf("list %q: %w", relativePath, err)
	}

	return s.buildTree(resolved, relativePath), nil
}

func (s *Store) buildTree(absolutePath, relativePrefix string) []*Node {
	entries, err := os.ReadDir(absolutePath)
	if err != nil {
		// Unreadable directories are tolerated; the listing continues
		// with whatever else is accessible.
		s.logger.WithError(err).WithField("path", absolutePath).Warn("skipping unreadable directory")
		return nil
	}

	nodes := make([]*Node, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}

		node := &Node{
			Name:        entry.Name(),
			Path:        path.Join(relativePrefix, entry.Name()),
			IsDirectory: entry.IsDir(),
			Modified:    info.ModTime().Unix(),
		}

		if entry.IsDir() {
			node.Children = s.buildTree(filepath.Join(absolutePath, entry.Name()), node.Path)
		} else {
			size := info.Size()
			node.Size = &size
		}

		nodes = append(nodes, node)
	}

	sortNodes(nodes)

	return nodes
}

// sortNodes orders directories before files, then case-insensitively by
// name. The ordering is deterministic so listings are reproducible.
func sortNodes(nodes []*Node) {
	slices.SortStableFunc(nodes, func(a, b *Node) int {
		if a.IsDirectory != b.IsDirectory {
			if a.IsDirectory {
				return -1
			}
			return 1
		}
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
}
