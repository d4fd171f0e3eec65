// Package lockfile guards the database directory with an exclusive flock so
// only one insights service instance can use a SQLite database at a time. The
// kernel drops the lock automatically when the process exits.
package lockfile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
)

// LockFileName is the name of the lock file created next to the database file.
const LockFileName = "insights.lock"

// Lock represents an acquired database directory lock.
type Lock struct {
	file *os.File
	path string
}

// LockError reports that another service instance already holds the lock.
type LockError struct {
	LockPath string
	Cause    error
}

func (e *LockError) Error() string {
	return fmt.Sprintf("another insights service instance is already running (lock file %s); stop it or point this instance at a different database", e.LockPath)
}

func (e *LockError) Unwrap() error { return e.Cause }

// AcquireLock takes an exclusive non-blocking lock on the database directory,
// creating the directory if needed. It fails with a *LockError when the lock
// is held by another process.
func AcquireLock(dbDir string) (*Lock, error) {
	lockPath := filepath.Join(dbDir, LockFileName)

	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
	}
	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file %s: %w", lockPath, err)
	}

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		file.Close()
		slog.Error("AcquireLock: lock already held", "lock_path", lockPath, "error", err)
		return nil, &LockError{LockPath: lockPath, Cause: err}
	}

	// Record the holder for operators inspecting the lock file.
	if _, err := fmt.Fprintf(file, "pid=%d\n", os.Getpid()); err != nil {
		syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
		file.Close()
		return nil, fmt.Errorf("failed to write lock information to %s: %w", lockPath, err)
	}

	slog.Info("AcquireLock: database directory lock acquired", "lock_path", lockPath, "pid", os.Getpid())
	return &Lock{file: file, path: lockPath}, nil
}

// Release drops the lock and removes the lock file. Safe to call more than
// once.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	l.file.Close()
	l.file = nil
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file %s: %w", l.path, err)
	}
	slog.Debug("Release: database directory lock released", "lock_path", l.path)
	return nil
}
