package server

import (
	"path/filepath"
	"testing"
	"time"

	"cid/internal/protocol"
)

func openStore(t *testing.T) *ActivityStore {
	t.Helper()
	store, err := OpenActivityStore(filepath.Join(t.TempDir(), "activity.db"))
	if err != nil {
		t.Fatalf("OpenActivityStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestActivityRecordAndCount(t *testing.T) {
	store := openStore(t)

	for i := 0; i < 3; i++ {
		err := store.Record(protocol.ActivityEvent{Kind: "read_intercepted", SessionID: "s1", Layers: 2, Count: 1})
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	n, err := store.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("Count = %d, want 3", n)
	}
}

func TestActivityPrune(t *testing.T) {
	store := openStore(t)
	if err := store.Record(protocol.ActivityEvent{Kind: "read_intercepted"}); err != nil {
		t.Fatal(err)
	}

	// A generous retention keeps fresh rows.
	if err := store.Prune(time.Hour); err != nil {
		t.Fatal(err)
	}
	if n, _ := store.Count(); n != 1 {
		t.Errorf("fresh row pruned, count = %d", n)
	}

	// A negative retention puts the cutoff in the future and clears
	// everything, which is how the test reaches the delete path without
	// forging timestamps.
	if err := store.Prune(-time.Hour); err != nil {
		t.Fatal(err)
	}
	if n, _ := store.Count(); n != 0 {
		t.Errorf("expected empty store after prune, count = %d", n)
	}
}

func TestActivityReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "activity.db")
	store, err := OpenActivityStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Record(protocol.ActivityEvent{Kind: "read_intercepted"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenActivityStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = reopened.Close() }()
	if n, _ := reopened.Count(); n != 1 {
		t.Errorf("events lost across reopen, count = %d", n)
	}
}
