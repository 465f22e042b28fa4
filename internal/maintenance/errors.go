package maintenance

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("folder not found")
	ErrPathNotAllowed    = errors.New("path outside allowed roots")
	ErrDestinationExists = errors.New("destination exists")
	ErrCopyFailed        = errors.New("copy failed")
)
