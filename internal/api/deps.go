package api

//go:generate mockgen -destination=mocks/mocks.go -package=mocks . Submitter,HistoryStore,FolderLocker

import (
	"context"
	"errors"

	"github.com/vmunix/nasbox/internal/history"
)

// ErrMissingDependency is returned when a required dependency is nil.
var ErrMissingDependency = errors.New("missing required dependency")

// Submitter hands magnet links to the NAS download manager.
type Submitter interface {
	Submit(ctx context.Context, links []string, target string) ([]string, error)
}

// HistoryStore records executed operations.
type HistoryStore interface {
	Add(e *history.Entry) error
	Get(id int64) (*history.Entry, error)
	List(f history.Filter) ([]*history.Entry, error)
}

// FolderLocker serializes mutating operations per folder.
type FolderLocker interface {
	TryLock(folder string) (func(), error)
}

// ServerDeps contains all dependencies for the API server.
// Required dependencies must be non-nil; optional dependencies may be nil.
type ServerDeps struct {
	// Required dependencies
	History HistoryStore
	Locker  FolderLocker

	// Optional dependencies (nil if not configured)
	Submitter Submitter // nil when the browser is disabled
}

// Validate checks that all required dependencies are provided.
func (d ServerDeps) Validate() error {
	if d.History == nil {
		return errors.Join(ErrMissingDependency, errors.New("history store is required"))
	}
	if d.Locker == nil {
		return errors.Join(ErrMissingDependency, errors.New("folder locker is required"))
	}
	return nil
}
