package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gitlab.com/revstore/revd/internal/helper/perm"
)

// headFile is the name of the file holding the current revision number.
const headFile = "HEAD"

func (s *Store) headPath() string {
	return filepath.Join(s.root, headFile)
}

// CurrentRevision reads and returns HEAD, the highest allocated revision
// number.
func (s *Store) CurrentRevision() (int, error) {
	data, err := os.ReadFile(s.headPath())
	if err != nil {
		return 0, fmt.Errorf("read HEAD: %w", err)
	}

	head, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse HEAD: %w", err)
	}

	if head < 0 {
		return 0, fmt.Errorf("parse HEAD: negative revision %d", head)
	}

	return head, nil
}

// Allocate claims the next revision number: it reads HEAD, creates an empty
// directory for HEAD+1 and durably updates HEAD. The whole sequence runs
// under a mutex so that concurrent allocations receive unique, gapless
// numbers.
func (s *Store) Allocate() (int, error) {
	s.allocMu.Lock()
	defer s.allocMu.Unlock()

	head, err := s.CurrentRevision()
	if err != nil {
		return 0, err
	}

	next := head + 1
	if err := os.Mkdir(s.revisionPath(next), perm.SharedDir); err != nil {
		if os.IsExist(err) {
			return 0, fmt.Errorf("allocate revision %d: %w", next, ErrRevisionExists)
		}
		return 0, fmt.Errorf("allocate revision %d: %w", next, err)
	}

	if err := s.writeHEAD(next); err != nil {
		return 0, err
	}

	s.metrics.revisionsAllocatedTotal.Inc()

	return next, nil
}

// ListRevisions returns all revision numbers in use, which form the
// contiguous range [0, HEAD].
func (s *Store) ListRevisions() ([]int, error) {
	head, err := s.CurrentRevision()
	if err != nil {
		return nil, err
	}

	revisions := make([]int, 0, head+1)
	for revision := 0; revision <= head; revision++ {
		revisions = append(revisions, revision)
	}

	return revisions, nil
}

// writeHEAD persists the given revision number as the new HEAD. The value is
// written to a temporary file first and moved into place so that a crash
// mid-write never leaves a truncated HEAD behind.
func (s *Store) writeHEAD(revision int) error {
	tmpPath := s.headPath() + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(strconv.Itoa(revision)), perm.SharedFile); err != nil {
		return fmt.Errorf("write HEAD: %w", err)
	}

	if err := os.Rename(tmpPath, s.headPath()); err != nil {
		return fmt.Errorf("commit HEAD: %w", err)
	}

	return nil
}
