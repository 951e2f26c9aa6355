//go:build !windows

package server

import (
	"context"
	"os"
	"testing"
	"time"

	"cid/internal/config"
	"cid/internal/endpoint"
	"cid/internal/ipc"
	"cid/internal/logging"
	"cid/internal/paths"
	"cid/internal/protocol"
	"cid/internal/status"
)

func quietLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{Format: logging.HumanFormat, Level: logging.ErrorLevel})
}

func waitReady(t *testing.T, project string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if status.Read(project) == status.Ready {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("daemon never reached ready, status = %s", status.Read(project))
}

func TestServerRoundTrip(t *testing.T) {
	project := t.TempDir()
	if err := os.WriteFile(project+"/pipeline.py", []byte("def f():\n    pass\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := paths.EnsureStateDir(project); err != nil {
		t.Fatal(err)
	}

	cache := OpenWarmCache(project)
	cache.PutStructure("pipeline.py", &protocol.FileStructure{
		Path:      "pipeline.py",
		Language:  "python",
		Functions: []protocol.FunctionInfo{{Name: "f", Line: 1}},
	})
	cache.PutSymbols([]protocol.SearchResult{
		{Symbol: "f", Kind: "function", Location: protocol.Location{File: "pipeline.py", Line: 1}},
	})

	srv, err := NewWithAnalyzer(project, config.Default(), config.Tuning{}, quietLogger(),
		newMemoryAnalyzer(project, cache), cache)
	if err != nil {
		t.Fatal(err)
	}
	if err := srv.Start(); err != nil {
		t.Fatal(err)
	}
	defer srv.Stop()

	waitReady(t, project)

	client := ipc.NewClient(project, config.Default(), quietLogger())
	ctx := context.Background()

	if !client.Ping(ctx) {
		t.Fatal("ping failed against a running daemon")
	}

	st := client.Status(ctx)
	if st == nil || st.PID != os.Getpid() {
		t.Errorf("unexpected daemon status: %+v", st)
	}
	if st != nil && st.IndexedFiles != 1 {
		t.Errorf("IndexedFiles = %d, want 1", st.IndexedFiles)
	}

	structure := client.Structure(ctx, "pipeline.py")
	if structure == nil || len(structure.Functions) != 1 || structure.Functions[0].Name != "f" {
		t.Errorf("unexpected structure: %+v", structure)
	}

	results := client.Search(ctx, "f", 10)
	if len(results) != 1 || results[0].Symbol != "f" {
		t.Errorf("unexpected search results: %+v", results)
	}

	diag := client.Diagnostics(ctx)
	if diag == nil || diag.QueriesServed < 1 {
		t.Errorf("unexpected diagnostics: %+v", diag)
	}
}

func TestServerTrackActivityPersists(t *testing.T) {
	project := t.TempDir()
	if _, err := paths.EnsureStateDir(project); err != nil {
		t.Fatal(err)
	}

	cache := OpenWarmCache(project)
	srv, err := NewWithAnalyzer(project, config.Default(), config.Tuning{}, quietLogger(),
		newMemoryAnalyzer(project, cache), cache)
	if err != nil {
		t.Fatal(err)
	}
	if err := srv.Start(); err != nil {
		t.Fatal(err)
	}
	defer srv.Stop()
	waitReady(t, project)

	q := protocol.NewQuery(protocol.CmdTrackActivity)
	q.Event = &protocol.ActivityEvent{Kind: "read_intercepted", Layers: 2, Count: 1}
	client := ipc.NewClient(project, config.Default(), quietLogger())
	resp := client.Call(context.Background(), q)
	if resp.Status != protocol.StatusOK {
		t.Fatalf("track_activity failed: %+v", resp)
	}

	if srv.activity == nil {
		t.Fatal("activity store not opened")
	}
	n, err := srv.activity.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("activity count = %d, want 1", n)
	}
}

func TestServerStopRemovesMarkers(t *testing.T) {
	project := t.TempDir()

	srv, err := New(project, config.Default(), config.Tuning{}, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if err := srv.Start(); err != nil {
		t.Fatal(err)
	}
	waitReady(t, project)

	ep := srv.Endpoint()
	if ep.Network == endpoint.Unix {
		if _, err := os.Stat(ep.Address); err != nil {
			t.Errorf("socket file missing while running: %v", err)
		}
	}

	srv.Stop()

	if got := status.Read(project); got != status.Absent {
		t.Errorf("status after stop = %s, want absent", got)
	}
	pidPath, err := paths.PIDPath(project)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(pidPath); !os.IsNotExist(err) {
		t.Error("pid record left behind after stop")
	}
	if ep.Network == endpoint.Unix {
		if _, err := os.Stat(ep.Address); !os.IsNotExist(err) {
			t.Error("socket file left behind after stop")
		}
	}
}

func TestServerStatusIndexingDuringWarmup(t *testing.T) {
	project := t.TempDir()
	cache := OpenWarmCache(project)

	srv, err := NewWithAnalyzer(project, config.Default(), config.Tuning{}, quietLogger(),
		slowWarmupAnalyzer{memoryAnalyzer: newMemoryAnalyzer(project, cache)}, cache)
	if err != nil {
		t.Fatal(err)
	}
	if err := srv.Start(); err != nil {
		t.Fatal(err)
	}
	defer srv.Stop()

	if got := status.Read(project); got != status.Indexing {
		t.Errorf("status during warmup = %s, want indexing", got)
	}
	waitReady(t, project)
}

type slowWarmupAnalyzer struct {
	*memoryAnalyzer
}

func (a slowWarmupAnalyzer) Warmup(ctx context.Context) error {
	time.Sleep(300 * time.Millisecond)
	return a.memoryAnalyzer.Warmup(ctx)
}
