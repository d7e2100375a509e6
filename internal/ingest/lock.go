package ingest

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked indicates another ingest run already holds the lock.
var ErrLocked = errors.New("another ingest run is in progress")

// lockFileName lives in the config directory so all ingest invocations for
// the same installation contend on the same file.
const lockFileName = "ingest.lock"

// AcquireLock takes the ingest run lock for dir without blocking. It
// returns a release function on success and ErrLocked when the lock is
// already held by another process.
func AcquireLock(dir string) (release func() error, err error) {
	fl := flock.New(filepath.Join(dir, lockFileName))

	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring ingest lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}
	return fl.Unlock, nil
}
