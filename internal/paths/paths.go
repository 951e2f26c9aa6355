// Package paths derives every filesystem location cid uses for a project.
//
// The lock, PID record, socket and status marker are shared between
// independent short-lived client processes and the daemon, so nothing here
// holds state: every function recomputes its result from the project path.
package paths

import (
	"encoding/hex"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"
)

// StateDirName is the project-local state directory.
const StateDirName = ".cid"

// CanonicalProject converts any spelling of a project directory into its
// canonical absolute form. Two spellings of the same directory (relative,
// absolute, through symlinks) must canonicalize identically, otherwise
// client and daemon silently resolve different endpoints.
func CanonicalProject(projectDir string) (string, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// A project that doesn't exist yet still needs a stable identity.
		if os.IsNotExist(err) {
			return filepath.Clean(abs), nil
		}
		return "", err
	}
	return filepath.Clean(resolved), nil
}

// ProjectDigest returns the BLAKE2b-256 digest of the canonical project path.
func ProjectDigest(projectDir string) ([]byte, error) {
	canonical, err := CanonicalProject(projectDir)
	if err != nil {
		return nil, err
	}
	sum := blake2b.Sum256([]byte(canonical))
	return sum[:], nil
}

// ProjectHash returns the short hex form of the project digest, used to key
// the per-project markers in the OS temp directory.
func ProjectHash(projectDir string) (string, error) {
	digest, err := ProjectDigest(projectDir)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(digest[:8]), nil
}

// StateDir returns the project-local state directory (not created).
func StateDir(projectDir string) (string, error) {
	canonical, err := CanonicalProject(projectDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(canonical, StateDirName), nil
}

// EnsureStateDir creates and returns the project-local state directory.
func EnsureStateDir(projectDir string) (string, error) {
	dir, err := StateDir(projectDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// StatusPath returns the path of the status marker file.
func StatusPath(projectDir string) (string, error) {
	dir, err := StateDir(projectDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "status"), nil
}

// DaemonLogPath returns the daemon log file path.
func DaemonLogPath(projectDir string) (string, error) {
	dir, err := StateDir(projectDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "daemon.log"), nil
}

// WarmCachePath returns the daemon warm-cache snapshot path.
func WarmCachePath(projectDir string) (string, error) {
	dir, err := StateDir(projectDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "warmcache.json.zst"), nil
}

// ActivityDBPath returns the daemon activity-tracking database path.
func ActivityDBPath(projectDir string) (string, error) {
	dir, err := StateDir(projectDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "activity.db"), nil
}

// LockPath returns the startup lock path for a project.
func LockPath(projectDir string) (string, error) {
	return tempMarker(projectDir, ".lock")
}

// PIDPath returns the PID record path for a project.
func PIDPath(projectDir string) (string, error) {
	return tempMarker(projectDir, ".pid")
}

// SocketPath returns the local socket path for a project.
func SocketPath(projectDir string) (string, error) {
	return tempMarker(projectDir, ".sock")
}

// HintsDir returns the directory holding per-session hint files.
// Hints are not keyed by project: the upstream router writes them before
// it knows which file the next read targets.
func HintsDir() string {
	return filepath.Join(os.TempDir(), "cid-hints")
}

// HintPath returns the hint file path for a session.
func HintPath(sessionID string) string {
	return filepath.Join(HintsDir(), sessionID+".json")
}

func tempMarker(projectDir, suffix string) (string, error) {
	hash, err := ProjectHash(projectDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(os.TempDir(), "cid-"+hash+suffix), nil
}
