// Package status reads and writes the daemon status marker.
//
// The marker lets clients make fast-path decisions (skip querying while
// the index rebuilds) without opening a connection. Reading is a plain
// file read, cheap enough to do before every query.
package status

import (
	"os"
	"path/filepath"
	"strings"

	"cid/internal/paths"
)

// State is the daemon state as recorded in the status marker.
type State string

const (
	// Ready means the daemon is serving with a complete index.
	Ready State = "ready"
	// Indexing means the daemon is rebuilding its index.
	Indexing State = "indexing"
	// Absent means no usable marker exists: daemon stopped, never started,
	// or the marker is unreadable.
	Absent State = "absent"
)

// Read returns the daemon state for a project. Any failure reads as
// Absent; a missing daemon is a normal condition, not an error.
func Read(projectDir string) State {
	path, err := paths.StatusPath(projectDir)
	if err != nil {
		return Absent
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Absent
	}
	switch strings.TrimSpace(string(data)) {
	case string(Ready):
		return Ready
	case string(Indexing):
		return Indexing
	default:
		// "stopped" and any unknown token collapse to Absent.
		return Absent
	}
}

// Write records the daemon state atomically (temp file + rename), so a
// concurrent reader never observes a partial write.
func Write(projectDir string, state State) error {
	path, err := paths.StatusPath(projectDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".status-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.WriteString(string(state)); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	return os.Rename(name, path)
}

// Clear removes the status marker. Used by the daemon on shutdown.
func Clear(projectDir string) error {
	path, err := paths.StatusPath(projectDir)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
