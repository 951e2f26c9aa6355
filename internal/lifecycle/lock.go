// Package lifecycle guarantees at most one daemon per project.
//
// Coordination is filesystem-only: concurrent callers race on an
// atomic-create-or-fail lock file, and the loser polls instead of
// spawning a second daemon.
package lifecycle

import (
	"fmt"
	"os"
	"time"

	"cid/internal/paths"
)

// Lock is the startup lock for one project. It means "a caller is
// currently attempting to start the daemon", nothing more; queries never
// take it.
type Lock struct {
	path string
}

// AcquireLock attempts to create the startup lock atomically. A lock file
// older than staleness belongs to an abandoned attempt and is reclaimed.
// Returns nil if another caller holds a fresh lock.
func AcquireLock(projectDir string, staleness time.Duration) (*Lock, error) {
	path, err := paths.LockPath(projectDir)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_, _ = fmt.Fprintf(f, "%d %d\n", os.Getpid(), time.Now().Unix())
			_ = f.Close()
			return &Lock{path: path}, nil
		}
		if !os.IsExist(err) {
			return nil, err
		}

		info, statErr := os.Stat(path)
		if statErr != nil {
			// Holder released between our create and stat; retry once.
			continue
		}
		if time.Since(info.ModTime()) < staleness {
			return nil, nil
		}
		// Stale lock: remove and retry the exclusive create. If several
		// callers reclaim at once, O_EXCL still admits exactly one.
		_ = os.Remove(path)
	}
	return nil, nil
}

// Release removes the lock file. Safe to call once on every exit path.
func (l *Lock) Release() {
	if l == nil {
		return
	}
	_ = os.Remove(l.path)
}
