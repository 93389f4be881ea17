package storage

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"gitlab.com/revstore/revd/internal/helper/perm"
)

// ReadFile returns the full textual content of the file at the given
// relative path. Missing files fail with ErrNotFound.
func (s *Store) ReadFile(relativePath string) (string, error) {
	resolved, err := s.ResolvePath(relativePath)
	if err != nil {
		return "", err
	}

	content, err := os.ReadFile(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("read %q: %w", relativePath, ErrNotFound)
		}
		return "", fmt.Errorf("read %q: %w", relativePath, err)
	}

	return string(content), nil
}

// WriteFile writes content to the file at the given relative path, creating
// parent directories as needed and fully overwriting any existing file.
func (s *Store) WriteFile(relativePath, content string) error {
	resolved, err := s.ResolvePath(relativePath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(resolved), perm.SharedDir); err != nil {
		return fmt.Errorf("create parent of %q: %w", relativePath, err)
	}

	if err := os.WriteFile(resolved, []byte(content), perm.SharedFile); err != nil {
		return fmt.Errorf("write %q: %w", relativePath, err)
	}

	return nil
}

// Rename atomically moves the entry at from to to, creating the
// destination's parent directories as needed. A missing source fails with
// ErrNotFound.
func (s *Store) Rename(from, to string) error {
	source, err := s.ResolvePath(from)
	if err != nil {
		return err
	}

	destination, err := s.ResolvePath(to)
	if err != nil {
		return err
	}

	if _, err := os.Lstat(source); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("rename %q: %w", from, ErrNotFound)
		}
		return fmt.Errorf("rename %q: %w", from, err)
	}

	if err := os.MkdirAll(filepath.Dir(destination), perm.SharedDir); err != nil {
		return fmt.Errorf("create parent of %q: %w", to, err)
	}

	if err := os.Rename(source, destination); err != nil {
		return fmt.Errorf("rename %q to %q: %w", from, to, err)
	}

	return nil
}

// Delete removes the file at the given relative path, or recursively
// removes a directory and all of its contents. A missing path fails with
// ErrNotFound.
func (s *Store) Delete(relativePath string) error {
	resolved, err := s.ResolvePath(relativePath)
	if err != nil {
		return err
	}

	if _, err := os.Lstat(resolved); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("delete %q: %w", relativePath, ErrNotFound)
		}
		return fmt.Errorf("delete %q: %w", relativePath, err)
	}

	if err := os.RemoveAll(resolved); err != nil {
		return fmt.Errorf("delete %q: %w", relativePath, err)
	}

	return nil
}

// ReadRevisionFile returns the raw bytes of a file inside the given
// revision's directory tree. Missing revisions and files fail with
// ErrNotFound.
func (s *Store) ReadRevisionFile(revision int, relativePath string) ([]byte, error) {
	if revision < 0 {
		return nil, fmt.Errorf("revision %d: %w", revision, ErrNotFound)
	}

	resolved, err := s.ResolvePath(path.Join(strconv.Itoa(revision), relativePath))
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("read revision %d file %q: %w", revision, relativePath, ErrNotFound)
		}
		return nil, fmt.Errorf("read revision %d file %q: %w", revision, relativePath, err)
	}

	return content, nil
}
