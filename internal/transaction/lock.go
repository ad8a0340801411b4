// Package transaction serializes filesystem mutations across processes with
// lock files.
package transaction

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// StaleLockThreshold is the maximum age of a lock before it's considered stale.
	StaleLockThreshold = 10 * time.Minute
	// PollInterval is how often a blocked AcquireLock retries.
	PollInterval = 100 * time.Millisecond

	takeoverSuffix = ".takeover"
)

var (
	ErrLockExists = errors.New("lock exists: another operation may be in progress")
	ErrNotOwner   = errors.New("lock is held by another owner")
)

// Lock is an exclusive lock file owned by this process.
type Lock struct {
	path  string
	owner string
	file  *os.File
}

// TryLock makes a single attempt to create <dir>/<name>.lock. It returns
// ErrLockExists if a live lock is present. A stale lock is taken over once.
func TryLock(dir, name string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	lockPath := filepath.Join(dir, name+".lock")

	file, err := createExclusive(lockPath)
	if err != nil {
		if !os.IsExist(err) {
			return nil, fmt.Errorf("create lock file: %w", err)
		}
		if file, err = takeOver(lockPath); err != nil {
			return nil, err
		}
	}

	owner := uuid.NewString()
	lockData := fmt.Sprintf("owner=%s\npid=%d\ntimestamp=%s\n", owner, os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	if _, err := file.WriteString(lockData); err != nil {
		file.Close()
		os.Remove(lockPath)
		return nil, fmt.Errorf("write lock data: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(lockPath)
		return nil, fmt.Errorf("sync lock file: %w", err)
	}

	return &Lock{path: lockPath, owner: owner, file: file}, nil
}

// takeOver replaces a stale lock while holding <lockPath>.takeover, so two
// processes that find the same stale lock cannot both replace it.
func takeOver(lockPath string) (*os.File, error) {
	if stale, _ := isLockStale(lockPath); !stale {
		return nil, ErrLockExists
	}

	guardPath := lockPath + takeoverSuffix
	guard, err := createExclusive(guardPath)
	if err != nil {
		if !os.IsExist(err) {
			return nil, fmt.Errorf("create takeover guard: %w", err)
		}
		// Left behind by a process that died mid-takeover.
		if stale, _ := isLockStale(guardPath); stale {
			os.Remove(guardPath)
		}
		return nil, ErrLockExists
	}
	guard.Close()
	defer os.Remove(guardPath)

	// Another process may have replaced the lock before we got the guard.
	if stale, _ := isLockStale(lockPath); !stale {
		return nil, ErrLockExists
	}
	if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("remove stale lock: %w", err)
	}
	file, err := createExclusive(lockPath)
	if err != nil {
		return nil, ErrLockExists
	}
	return file, nil
}

func createExclusive(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
}

// AcquireLock blocks until <dir>/<name>.lock can be created or ctx is done.
func AcquireLock(ctx context.Context, dir, name string) (*Lock, error) {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lock, err := TryLock(dir, name)
		if !errors.Is(err, ErrLockExists) {
			return lock, err
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("wait for lock %s: %w", name, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Owner returns the token written into the lock file.
func (l *Lock) Owner() string {
	return l.owner
}

// Release removes the lock file. A lock file that was taken over by another
// owner after going stale is left in place and ErrNotOwner is returned.
func (l *Lock) Release() error {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
	if l.path == "" {
		return nil
	}
	path := l.path
	l.path = ""

	if current, err := readOwner(path); err == nil && current != l.owner {
		return ErrNotOwner
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lock file: %w", err)
	}
	return nil
}

func readOwner(lockPath string) (string, error) {
	data, err := os.ReadFile(lockPath)
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(string(data), "\n") {
		if v, ok := strings.CutPrefix(line, "owner="); ok {
			return v, nil
		}
	}
	return "", fmt.Errorf("lock %s has no owner", lockPath)
}

// isLockStale checks if a lock file is older than the stale lock threshold.
func isLockStale(lockPath string) (bool, error) {
	info, err := os.Stat(lockPath)
	if err != nil {
		return false, err
	}
	return time.Since(info.ModTime()) > StaleLockThreshold, nil
}
