package status

import (
	"os"
	"path/filepath"
	"testing"

	"cid/internal/paths"
)

func TestReadMissing(t *testing.T) {
	if got := Read(t.TempDir()); got != Absent {
		t.Errorf("missing marker must read Absent, got %s", got)
	}
}

func TestWriteRead(t *testing.T) {
	project := t.TempDir()

	for _, state := range []State{Indexing, Ready} {
		if err := Write(project, state); err != nil {
			t.Fatalf("Write(%s) failed: %v", state, err)
		}
		if got := Read(project); got != state {
			t.Errorf("Read = %s, want %s", got, state)
		}
	}
}

func TestReadUnknownToken(t *testing.T) {
	project := t.TempDir()
	path, err := paths.StatusPath(project)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("stopped"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := Read(project); got != Absent {
		t.Errorf("unknown token must read Absent, got %s", got)
	}
}

func TestReadTrimsWhitespace(t *testing.T) {
	project := t.TempDir()
	path, err := paths.StatusPath(project)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("ready\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := Read(project); got != Ready {
		t.Errorf("Read = %s, want ready", got)
	}
}

func TestClear(t *testing.T) {
	project := t.TempDir()
	if err := Write(project, Ready); err != nil {
		t.Fatal(err)
	}
	if err := Clear(project); err != nil {
		t.Fatal(err)
	}
	if got := Read(project); got != Absent {
		t.Errorf("cleared marker must read Absent, got %s", got)
	}
	// Clearing twice is fine.
	if err := Clear(project); err != nil {
		t.Errorf("second Clear should be a no-op, got %v", err)
	}
}
