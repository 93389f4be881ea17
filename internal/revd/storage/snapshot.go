package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gitlab.com/revstore/revd/internal/log"
)

// Snapshot duplicates the full contents of the current revision into a newly
// allocated one and returns the new revision number. Every snapshot is a
// complete, independent copy; file content is preserved bit for bit while
// metadata such as timestamps is copied best-effort.
//
// There is no rollback: when the copy fails partway through, the new
// revision directory stays behind partially populated and is already
// recorded as HEAD. The error is returned to the caller instead of being
// hidden.
func (s *Store) Snapshot(ctx context.Context) (int, error) {
	head, err := s.CurrentRevision()
	if err != nil {
		return 0, err
	}

	next, err := s.Allocate()
	if err != nil {
		return 0, err
	}

	began := time.Now()
	if err := copyTree(ctx, s.revisionPath(head), s.revisionPath(next)); err != nil {
		return 0, fmt.Errorf("snapshot revision %d: %w", head, err)
	}
	s.metrics.snapshotDurationSeconds.Observe(time.Since(began).Seconds())
	s.metrics.snapshotsCreatedTotal.Inc()

	s.logger.WithFields(log.Fields{
		"source_revision": head,
		"new_revision":    next,
		"duration_ms":     time.Since(began).Milliseconds(),
	}).Info("snapshot created")

	return next, nil
}

// copyTree recursively copies the contents of the source directory into the
// destination directory, which must already exist.
func copyTree(ctx context.Context, source, destination string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := os.ReadDir(source)
	if err != nil {
		return fmt.Errorf("read directory: %w", err)
	}

	for _, entry := range entries {
		sourcePath := filepath.Join(source, entry.Name())
		destinationPath := filepath.Join(destination, entry.Name())

		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("stat %q: %w", sourcePath, err)
		}

		switch {
		case entry.IsDir():
			if err := os.Mkdir(destinationPath, info.Mode().Perm()); err != nil {
				return fmt.Errorf("create directory %q: %w", destinationPath, err)
			}
			if err := copyTree(ctx, sourcePath, destinationPath); err != nil {
				return err
			}
		case info.Mode()&os.ModeSymlink != 0:
			target, err := os.Readlink(sourcePath)
			if err != nil {
				return fmt.Errorf("read link %q: %w", sourcePath, err)
			}
			if err := os.Symlink(target, destinationPath); err != nil {
				return fmt.Errorf("create link %q: %w", destinationPath, err)
			}
		case info.Mode().IsRegular():
			if err := copyFile(sourcePath, destinationPath, info.Mode().Perm()); err != nil {
				return err
			}
		default:
			// Sockets, devices and other irregular files have no place in
			// the store and are not copied.
		}
	}

	return nil
}

func copyFile(source, destination string, mode os.FileMode) (returnedErr error) {
	sourceFile, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("open %q: %w", source, err)
	}
	defer sourceFile.Close()

	destinationFile, err := os.OpenFile(destination, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return fmt.Errorf("create %q: %w", destination, err)
	}
	defer func() {
		if err := destinationFile.Close(); err != nil && returnedErr == nil {
			returnedErr = fmt.Errorf("close %q: %w", destination, err)
		}
	}()

	if _, err := io.Copy(destinationFile, sourceFile); err != nil {
		return fmt.Errorf("copy %q: %w", destination, err)
	}

	return nil
}
