package backup

import "errors"

// ErrBackupNotFound is returned when a backup ID has no file on disk.
var ErrBackupNotFound = errors.New("backup not found")
