package rename

import (
	"errors"
	"fmt"
)

// Sentinel errors for the rename package.
var (
	// ErrInvalidInput is returned for a missing folder path or an unusable custom pattern.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned when the folder does not exist.
	ErrNotFound = errors.New("folder not found")

	// ErrNotADirectory is returned when the folder path is not an existing directory.
	ErrNotADirectory = errors.New("not a directory")

	// ErrConflict is the parent of every planner rejection.
	ErrConflict = errors.New("rename conflict")

	// ErrDuplicateTarget marks a destination already claimed earlier in the same plan.
	ErrDuplicateTarget = fmt.Errorf("%w: duplicate target within plan", ErrConflict)

	// ErrTargetExists marks a destination that already exists on disk.
	ErrTargetExists = fmt.Errorf("%w: target already exists", ErrConflict)
)
