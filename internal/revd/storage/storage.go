// Package storage implements revd's versioned file store: a storage root
// holding one directory per revision plus a persisted HEAD counter, exposed
// as sandboxed file operations and revision operations.
//
// The on-disk layout is:
//
//	<root>/HEAD    current revision number as text
//	<root>/<n>/... full directory tree of revision n
//
// Revision 0 is created on initialization and is conventionally the mutable
// working copy. All other revisions are produced by Snapshot or
// ImportArchive. Nothing marks historical revisions as read-only; the file
// operations accept any path under the root, so callers that want immutable
// history must not write into old revision directories.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gitlab.com/revstore/revd/internal/helper/perm"
	"gitlab.com/revstore/revd/internal/log"
)

// Store is a versioned file store rooted at a single directory. All state
// lives on disk; a Store only carries the root path and the mutex
// serializing revision allocation, so multiple Store instances for different
// roots can coexist in one process.
type Store struct {
	root    string
	logger  log.Logger
	metrics *Metrics

	// allocMu serializes the read HEAD, create directory, persist HEAD
	// sequence in Allocate.
	allocMu sync.Mutex
}

// New opens the store at root, creating the root directory, revision 0 and
// the HEAD record if they do not exist yet.
func New(root string, logger log.Logger, metrics *Metrics) (*Store, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}

	s := &Store{
		root:    absRoot,
		logger:  logger,
		metrics: metrics,
	}

	if err := s.init(); err != nil {
		return nil, fmt.Errorf("initialize storage: %w", err)
	}

	return s, nil
}

// Root returns the absolute path of the storage root.
func (s *Store) Root() string { return s.root }

func (s *Store) init() error {
	if err := os.MkdirAll(s.revisionPath(0), perm.SharedDir); err != nil {
		return fmt.Errorf("create revision 0: %w", err)
	}

	if _, err := os.Stat(s.headPath()); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("stat HEAD: %w", err)
		}

		if err := s.writeHEAD(0); err != nil {
			return err
		}

		s.logger.WithField("storage_root", s.root).Info("initialized new storage root")
	}

	return nil
}
