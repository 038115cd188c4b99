package backup

import "errors"

// Sentinel errors of the backup manager.
var (
	// ErrNoManifest indicates a backup that does not exist or has no manifest.
	ErrNoManifest = errors.New("backup: manifest not found")
	// ErrInvalidState indicates an operation not allowed in the current state.
	ErrInvalidState = errors.New("backup: invalid state")
)
