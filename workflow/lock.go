package workflow

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// LockFile is the advisory lock marker inside a change directory.
const LockFile = ".lock"

// ErrChangeLocked indicates another process holds the change lock.
var ErrChangeLocked = errors.New("change is locked by another process")

// Lock acquires an advisory lock on a change directory. The lock is a
// file created with O_EXCL recording the holder PID. A lock whose PID
// no longer exists is reclaimed. Callers must release with Unlock.
func (m *Manager) Lock(id string) error {
	lockPath := filepath.Join(m.ChangePath(id), LockFile)

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			_, werr := fmt.Fprintf(f, "%d\n", os.Getpid())
			cerr := f.Close()
			if werr != nil || cerr != nil {
				os.Remove(lockPath)
				return fmt.Errorf("writing lock file: %w", errors.Join(werr, cerr))
			}
			return nil
		}
		if !os.IsExist(err) {
			return fmt.Errorf("acquiring lock: %w", err)
		}
		if !m.reclaimStaleLock(lockPath) {
			break
		}
	}

	return fmt.Errorf("%w: %s", ErrChangeLocked, id)
}

// Unlock releases a lock taken with Lock. Missing lock files are not
// an error.
func (m *Manager) Unlock(id string) error {
	err := os.Remove(filepath.Join(m.ChangePath(id), LockFile))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("releasing lock: %w", err)
	}
	return nil
}

// reclaimStaleLock removes a lock file whose recorded PID is no longer
// running. Reports whether the lock was removed.
func (m *Manager) reclaimStaleLock(lockPath string) bool {
	data, err := os.ReadFile(lockPath)
	if err != nil {
		return false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		// Unreadable lock: leave it for the operator.
		return false
	}
	if processAlive(pid) {
		return false
	}
	return os.Remove(lockPath) == nil
}

// processAlive reports whether a process with the given PID exists.
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
