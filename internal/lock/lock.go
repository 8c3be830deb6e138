// Package lock provides an advisory, file-based lock that keeps two relfetch
// processes from writing into the same output directory at once.
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// FileName is the lock file created inside the locked directory.
	FileName = ".relfetch.lock"

	// StaleThreshold is the maximum age of a lock before it's considered stale.
	StaleThreshold = 10 * time.Minute
)

// ErrLocked is returned when another process holds the lock.
var ErrLocked = errors.New("directory is locked: another relfetch run may be in progress")

// Lock is a held directory lock.
type Lock struct {
	path       string
	file       *os.File
	createdDir bool
}

// Acquire takes the lock on dir, creating dir if needed.
// Uses O_CREATE|O_EXCL for atomic lock creation. A lock older than
// StaleThreshold is removed and acquisition retried once.
func Acquire(ctx context.Context, dir string) (*Lock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	createdDir := false
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create lock directory: %w", err)
		}
		createdDir = true
	} else if err != nil {
		return nil, fmt.Errorf("stat lock directory: %w", err)
	}

	lockPath := filepath.Join(dir, FileName)

	file, err := create(lockPath)
	if err != nil {
		if !os.IsExist(err) {
			return nil, fmt.Errorf("create lock file: %w", err)
		}
		if stale, _ := isStale(lockPath); !stale {
			return nil, ErrLocked
		}
		os.Remove(lockPath)
		if file, err = create(lockPath); err != nil {
			return nil, ErrLocked
		}
	}

	// Lock metadata helps a user decide whether to remove a leftover lock
	lockData := fmt.Sprintf("pid=%d\ntimestamp=%s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	if _, err := file.WriteString(lockData); err != nil {
		file.Close()
		os.Remove(lockPath)
		return nil, fmt.Errorf("write lock data: %w", err)
	}

	return &Lock{path: lockPath, file: file, createdDir: createdDir}, nil
}

func create(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// CreatedDir reports whether Acquire had to create the locked directory.
func (l *Lock) CreatedDir() bool {
	return l.createdDir
}

// Release releases the lock. It is safe to call more than once.
func (l *Lock) Release() error {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}

	if l.path != "" {
		path := l.path
		l.path = ""
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove lock file: %w", err)
		}
	}

	return nil
}

// isStale checks if a lock file is older than StaleThreshold.
func isStale(lockPath string) (bool, error) {
	info, err := os.Stat(lockPath)
	if err != nil {
		return false, err
	}
	return time.Since(info.ModTime()) > StaleThreshold, nil
}
