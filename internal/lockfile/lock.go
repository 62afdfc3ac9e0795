// Package lockfile provides flock(2)-based exclusive locking of a store's
// sidecar ".lock" file, guarding the file against being opened for writing
// by more than one process at a time.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"
)

// ErrWouldBlock is returned by TryLock when the lock is already held by
// another process.
var ErrWouldBlock = errors.New("lockfile: would block")

// errInodeMismatch is an internal sentinel indicating the lock file was
// replaced between open and flock. The caller retries.
var errInodeMismatch = errors.New("lockfile: inode mismatch")

const (
	filePerm = 0o600
	dirPerm  = 0o755
)

// Lock represents a held exclusive lock. Call Close to release it.
type Lock struct {
	mu   sync.Mutex
	file *os.File
}

// TryLock attempts to acquire an exclusive, non-blocking lock on path,
// creating it (and its parent directory) if necessary.
//
// Returns ErrWouldBlock if another process already holds the lock.
func TryLock(path string) (*Lock, error) {
	for {
		f, err := openLockFile(path)
		if err != nil {
			return nil, fmt.Errorf("opening lock file: %w", err)
		}

		err = acquire(f, path)
		if err == nil {
			return &Lock{file: f}, nil
		}

		_ = f.Close()

		if errors.Is(err, errInodeMismatch) {
			continue
		}

		return nil, err
	}
}

// Close releases the lock and closes the underlying descriptor. Close is
// idempotent; it does not remove the lock file.
func (l *Lock) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}

	fd := int(l.file.Fd())

	unlockErr := flockRetryEINTR(fd, syscall.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil

	if unlockErr != nil {
		return fmt.Errorf("unlocking: %w", unlockErr)
	}

	if closeErr != nil {
		return fmt.Errorf("closing lock fd: %w", closeErr)
	}

	return nil
}

func openLockFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, filePerm)
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		return f, err
	}

	if mkErr := os.MkdirAll(filepath.Dir(path), dirPerm); mkErr != nil {
		return nil, mkErr
	}

	return os.OpenFile(path, os.O_RDWR|os.O_CREATE, filePerm)
}

// acquire flocks f non-blocking and verifies f's inode still matches path,
// guarding against a concurrent replacement of the lock file (see
// pkg/slotcache's Locker for the same concern against a pluggable FS; here we
// operate directly on *os.File since the store owns a single, fixed lock
// path).
func acquire(f *os.File, path string) error {
	fd := int(f.Fd())

	if err := flockRetryEINTR(fd, syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		if errors.Is(err, syscall.EWOULDBLOCK) || errors.Is(err, syscall.EAGAIN) {
			return ErrWouldBlock
		}

		return err
	}

	match, err := inodeMatchesPath(path, f)
	if err != nil {
		_ = flockRetryEINTR(fd, syscall.LOCK_UN)

		if errors.Is(err, os.ErrNotExist) {
			return errInodeMismatch
		}

		return fmt.Errorf("verifying inode match: %w", err)
	}

	if !match {
		_ = flockRetryEINTR(fd, syscall.LOCK_UN)

		return errInodeMismatch
	}

	return nil
}

func inodeMatchesPath(path string, f *os.File) (bool, error) {
	openInfo, err := f.Stat()
	if err != nil {
		return false, err
	}

	openSys, ok := openInfo.Sys().(*syscall.Stat_t)
	if !ok || openSys == nil {
		return false, fmt.Errorf("file.Stat Sys=%T, want *syscall.Stat_t", openInfo.Sys())
	}

	pathInfo, err := os.Stat(path)
	if err != nil {
		return false, err
	}

	pathSys, ok := pathInfo.Sys().(*syscall.Stat_t)
	if !ok || pathSys == nil {
		return false, fmt.Errorf("os.Stat Sys=%T, want *syscall.Stat_t", pathInfo.Sys())
	}

	return openSys.Dev == pathSys.Dev && openSys.Ino == pathSys.Ino, nil
}

// flockRetryEINTR wraps flock, retrying on EINTR: the syscall was
// interrupted by a signal before completing, not a real failure.
func flockRetryEINTR(fd int, how int) error {
	const maxEINTRRetries = 10000

	var err error
	for range maxEINTRRetries {
		err = syscall.Flock(fd, how)
		if err == nil || !errors.Is(err, syscall.EINTR) {
			return err
		}
	}

	return err
}
