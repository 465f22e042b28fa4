// Package folderlock serializes mutating operations on the same folder, across
// requests and across processes sharing a lock directory.
package folderlock

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrBusy is returned when another operation holds the folder's lock.
var ErrBusy = errors.New("folder is busy")

// Locker hands out advisory file locks kept under a single directory.
type Locker struct {
	dir string
}

// New creates a Locker storing lock files in dir. The directory is created on
// first use.
func New(dir string) *Locker {
	return &Locker{dir: dir}
}

// LockPath returns the lock file used for folder.
func (l *Locker) LockPath(folder string) (string, error) {
	abs, err := filepath.Abs(folder)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", folder, err)
	}
	sum := sha256.Sum256([]byte(filepath.Clean(abs)))
	return filepath.Join(l.dir, hex.EncodeToString(sum[:8])+".lock"), nil
}

// TryLock acquires the lock for folder without waiting. The returned function
// releases it.
func (l *Locker) TryLock(folder string) (func(), error) {
	path, err := l.LockPath(folder)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}

	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBusy, folder)
	}
	return func() { _ = lock.Unlock() }, nil
}
