package storage

import (
	"errors"
)

var (
	// ErrNotFound is returned when the requested path, file or revision
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPathEscapesRoot is returned when a relative path resolves to a
	// location outside of the storage root.
	ErrPathEscapesRoot = errors.New("path escapes storage root")

	// ErrInvalidArchive is returned when an archive payload cannot be
	// decoded or extracted.
	ErrInvalidArchive = errors.New("invalid archive")

	// ErrRevisionExists is returned when the directory of a newly allocated
	// revision already exists. Allocation is serialized, so seeing this
	// error means the storage root was modified behind revd's back.
	ErrRevisionExists = errors.New("revision directory already exists")
)
