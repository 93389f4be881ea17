package storage

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gitlab.com/revstore/revd/internal/helper/perm"
	"gitlab.com/revstore/revd/internal/log"
)

// ImportArchive decodes a base64-encoded zip payload and materializes its
// full entry set as the contents of a newly allocated revision, returning
// the new revision number.
//
// Entry paths are containment-checked against the destination directory so
// a crafted archive cannot write outside of its revision. Decoding and
// extraction failures surface ErrInvalidArchive; a failed extraction may
// leave the allocated revision empty or partially populated.
func (s *Store) ImportArchive(ctx context.Context, payload string) (int, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return 0, fmt.Errorf("decode payload: %w: %v", ErrInvalidArchive, err)
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("open archive: %w: %v", ErrInvalidArchive, err)
	}

	next, err := s.Allocate()
	if err != nil {
		s.metrics.archiveImportsTotal.WithLabelValues("error").Inc()
		return 0, err
	}

	if err := extractArchive(ctx, reader, s.revisionPath(next)); err != nil {
		s.metrics.archiveImportsTotal.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("extract into revision %d: %w", next, err)
	}

	s.metrics.archiveImportsTotal.WithLabelValues("success").Inc()
	s.logger.WithFields(log.Fields{
		"new_revision": next,
		"entries":      len(reader.File),
	}).Info("archive imported")

	return next, nil
}

func extractArchive(ctx context.Context, reader *zip.Reader, destination string) error {
	for _, file := range reader.File {
		if err := ctx.Err(); err != nil {
			return err
		}

		entryPath, err := secureJoin(destination, file.Name)
		if err != nil {
			return err
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(entryPath, perm.SharedDir); err != nil {
				return fmt.Errorf("create directory %q: %w", file.Name, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(entryPath), perm.SharedDir); err != nil {
			return fmt.Errorf("create parent of %q: %w", file.Name, err)
		}

		if err := extractFile(file, entryPath); err != nil {
			return err
		}
	}

	return nil
}

func extractFile(file *zip.File, entryPath string) (returnedErr error) {
	source, err := file.Open()
	if err != nil {
		return fmt.Errorf("open entry %q: %w: %v", file.Name, ErrInvalidArchive, err)
	}
	defer source.Close()

	destination, err := os.OpenFile(entryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm.SharedFile)
	if err != nil {
		return fmt.Errorf("create %q: %w", file.Name, err)
	}
	defer func() {
		if err := destination.Close(); err != nil && returnedErr == nil {
			returnedErr = fmt.Errorf("close %q: %w", file.Name, err)
		}
	}()

	if _, err := io.Copy(destination, source); err != nil {
		return fmt.Errorf("extract %q: %w: %v", file.Name, ErrInvalidArchive, err)
	}

	return nil
}

// secureJoin joins an archive entry name onto the destination directory and
// rejects entries that would land outside of it.
func secureJoin(destination, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("entry %q: %w: absolute path", name, ErrInvalidArchive)
	}

	joined := filepath.Clean(filepath.Join(destination, name))
	if joined != destination && !strings.HasPrefix(joined, destination+string(os.PathSeparator)) {
		return "", fmt.Errorf("entry %q: %w: %v", name, ErrInvalidArchive, ErrPathEscapesRoot)
	}

	return joined, nil
}
