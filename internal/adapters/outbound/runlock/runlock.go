// Package runlock keeps two fixing runs from rewriting the same tree at once.
package runlock

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/openkraft/spackstyle/internal/domain"
)

// Locker implements domain.RunLocker with advisory file locks kept in dir.
type Locker struct {
	dir string
}

// New creates a Locker that keeps its lock files in dir. An empty dir means
// the system temp directory.
func New(dir string) *Locker {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Locker{dir: dir}
}

// Path returns the lock file used for root.
func (l *Locker) Path(root string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(root)))
	return filepath.Join(l.dir, "spack-style-"+hex.EncodeToString(sum[:6])+".lock")
}

// Acquire takes the lock for root without blocking. A lock held by another
// run is reported as a *domain.ConfigurationError.
func (l *Locker) Acquire(root string) (func() error, error) {
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return nil, fmt.Errorf("creating lock directory %s: %w", l.dir, err)
	}

	path := l.Path(root)
	fl := flock.New(path)
	acquired, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to try lock on %s: %w", path, err)
	}
	if !acquired {
		return nil, &domain.ConfigurationError{Msg: fmt.Sprintf("another spack style --fix is running on %s", root)}
	}

	return func() error {
		if err := fl.Unlock(); err != nil {
			return fmt.Errorf("failed to release lock on %s: %w", path, err)
		}
		return nil
	}, nil
}
