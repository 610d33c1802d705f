package organize

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"tourneyreel/internal/services"
)

// LockFileName is created in a recordings directory while a run owns it.
const LockFileName = ".tourneyreel.lock"

// DirLock is an exclusive advisory lock on a recordings directory.
type DirLock struct {
	lock *flock.Flock
	path string
}

// LockDir takes the directory lock without waiting. A second concurrent run
// against the same directory fails immediately.
func LockDir(dir string) (*DirLock, error) {
	path := filepath.Join(dir, LockFileName)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "organize", "lock", path, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "organize", "lock",
			fmt.Sprintf("another tourneyreel run is using %s (lock %s)", dir, path), nil)
	}
	return &DirLock{lock: lock, path: path}, nil
}

// Unlock releases the lock.
func (l *DirLock) Unlock() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
