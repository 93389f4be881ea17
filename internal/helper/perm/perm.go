// Package perm provides constants for file and directory permissions.
//
// Note that these permissions are further restricted by the system configured
// umask.
package perm

import (
	"io/fs"
)

const (
	// SharedDir is the permission given for a directory that may be read
	// outside of revd.
	SharedDir fs.FileMode = 0o755

	// SharedFile is the permission given for a file that may be read outside
	// of revd.
	SharedFile fs.FileMode = 0o644
)
