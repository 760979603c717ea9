package utils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockFileSuffix = ".lock"
	lockRetryDelay = 500 * time.Millisecond
)

// DBLock is a file lock next to the SQLite cache. Only refreshes take it;
// readers rely on the WAL journal.
type DBLock struct {
	lock *flock.Flock
	path string
	// Wait bounds how long Lock blocks behind another process. Zero waits
	// forever.
	Wait time.Duration
}

func NewDBLock(dbPath string) (*DBLock, error) {
	absPath, err := GetAbsDBPath(dbPath)
	if err != nil {
		return nil, fmt.Errorf("could not get absolute db path: %w", err)
	}
	lockPath := absPath + lockFileSuffix
	return &DBLock{
		lock: flock.New(lockPath),
		path: lockPath,
	}, nil
}

func (l *DBLock) Path() string { return l.path }

// Lock acquires the lock, logging once if another refresh holds it.
func (l *DBLock) Lock() error {
	locked, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", l.path, err)
	}
	if locked {
		return nil
	}

	Log.Warnf("Another covidscope process is refreshing the cache, waiting for it to finish...")
	ctx := context.Background()
	if l.Wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Wait)
		defer cancel()
	}
	if _, err := l.lock.TryLockContext(ctx, lockRetryDelay); err != nil {
		return fmt.Errorf("failed to acquire lock on %s after waiting: %w", l.path, err)
	}
	return nil
}

func (l *DBLock) Unlock() error {
	if err := l.lock.Unlock(); err != nil {
		// Not holding the lock.
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to release lock on %s: %w", l.path, err)
	}
	return nil
}

// GetAbsDBPath resolves the cache path. An empty path means the default
// under the user's config directory, which is created if missing.
func GetAbsDBPath(dbPath string) (string, error) {
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir := filepath.Join(home, ".config", "covidscope")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
		return filepath.Join(dir, "covidscope.sqlite"), nil
	}
	return filepath.Abs(dbPath)
}
