//go:build !windows

package ipc

import (
	"context"
	"net"
	"testing"
	"time"

	"cid/internal/config"
	"cid/internal/endpoint"
	"cid/internal/lifecycle"
	"cid/internal/logging"
	"cid/internal/protocol"
	"cid/internal/status"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.QueryTimeout = 300 * time.Millisecond
	cfg.LockWait = 200 * time.Millisecond
	cfg.StartTimeout = 200 * time.Millisecond
	cfg.PollInterval = 50 * time.Millisecond
	return cfg
}

func quietLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{Format: logging.HumanFormat, Level: logging.ErrorLevel})
}

// answeringDaemon serves canned responses on the project's endpoint.
func answeringDaemon(t *testing.T, project string, handle func(*protocol.Query) *protocol.Response) net.Listener {
	t.Helper()
	ep, err := endpoint.Resolve(project)
	if err != nil {
		t.Fatal(err)
	}
	listener, err := net.Listen(string(ep.Network), ep.Address)
	if err != nil {
		t.Fatal(err)
	}
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer func() { _ = c.Close() }()
				reader := protocol.NewReader(c)
				for {
					q, err := reader.ReadQuery()
					if err != nil {
						return
					}
					if err := protocol.WriteMessage(c, handle(q)); err != nil {
						return
					}
				}
			}(conn)
		}
	}()
	return listener
}

func TestCallSuccess(t *testing.T) {
	project := t.TempDir()
	listener := answeringDaemon(t, project, func(q *protocol.Query) *protocol.Response {
		resp := protocol.OK(q.ID)
		if q.Command == protocol.CmdSearch {
			resp.Results = []protocol.SearchResult{{Symbol: "hit", Kind: "function"}}
		}
		return resp
	})
	defer func() { _ = listener.Close() }()

	client := NewClient(project, testConfig(), quietLogger())
	results := client.Search(context.Background(), "hit", 10)
	if len(results) != 1 || results[0].Symbol != "hit" {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestCallTimeoutBound(t *testing.T) {
	project := t.TempDir()

	// A daemon that accepts but never answers.
	ep, err := endpoint.Resolve(project)
	if err != nil {
		t.Fatal(err)
	}
	listener, err := net.Listen(string(ep.Network), ep.Address)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = listener.Close() }()
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			// Hold the connection open, say nothing.
			go func(c net.Conn) {
				time.Sleep(5 * time.Second)
				_ = c.Close()
			}(conn)
		}
	}()

	client := NewClient(project, testConfig(), quietLogger())
	start := time.Now()
	resp := client.Call(context.Background(), protocol.Query{Command: protocol.CmdSearch})
	elapsed := time.Since(start)

	if resp.Status != protocol.StatusError {
		t.Errorf("expected error status, got %s", resp.Status)
	}
	if resp.Error == nil || resp.Error.Code != "TIMEOUT" {
		t.Errorf("expected TIMEOUT code, got %+v", resp.Error)
	}
	if elapsed > 2*time.Second {
		t.Errorf("call exceeded timeout bound: %v", elapsed)
	}
}

func TestCallUnavailableNoDaemon(t *testing.T) {
	project := t.TempDir()

	// Hold the startup lock so the client cannot spawn; with no daemon
	// listening the call must degrade to unavailable, not error.
	lock, err := lifecycle.AcquireLock(project, 30*time.Second)
	if err != nil || lock == nil {
		t.Fatalf("setup lock failed: %v", err)
	}
	defer lock.Release()

	client := NewClient(project, testConfig(), quietLogger())
	resp := client.Call(context.Background(), protocol.Query{Command: protocol.CmdStructure, Path: "x.go"})
	if resp.Status != protocol.StatusUnavailable {
		t.Errorf("expected unavailable, got %s", resp.Status)
	}
}

func TestCallIndexingShortCircuit(t *testing.T) {
	project := t.TempDir()
	if err := status.Write(project, status.Indexing); err != nil {
		t.Fatal(err)
	}

	// No daemon is listening; the short circuit must answer before any
	// transport or lifecycle work happens.
	client := NewClient(project, testConfig(), quietLogger())
	start := time.Now()
	resp := client.Call(context.Background(), protocol.Query{Command: protocol.CmdSearch})
	if resp.Status != protocol.StatusIndexing {
		t.Errorf("expected indexing, got %s", resp.Status)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Error("indexing short circuit touched the transport")
	}
}

func TestGoAsyncVariant(t *testing.T) {
	project := t.TempDir()
	listener := answeringDaemon(t, project, func(q *protocol.Query) *protocol.Response {
		return protocol.OK(q.ID)
	})
	defer func() { _ = listener.Close() }()

	client := NewClient(project, testConfig(), quietLogger())
	ch := client.Go(context.Background(), protocol.Query{Command: protocol.CmdPing})

	select {
	case resp := <-ch:
		if resp == nil || resp.Status != protocol.StatusOK {
			t.Errorf("unexpected async response: %+v", resp)
		}
	case <-time.After(2 * time.Second):
		t.Error("async call did not complete")
	}
}

func TestWrappersDefaultToEmptyCollections(t *testing.T) {
	project := t.TempDir()
	listener := answeringDaemon(t, project, func(q *protocol.Query) *protocol.Response {
		return protocol.OK(q.ID) // no payload fields at all
	})
	defer func() { _ = listener.Close() }()

	client := NewClient(project, testConfig(), quietLogger())
	ctx := context.Background()

	if got := client.Search(ctx, "x", 5); got == nil {
		t.Error("Search must return an empty slice, not nil")
	}
	if got := client.CallGraph(ctx, "f", 1); got == nil {
		t.Error("CallGraph must return an empty slice, not nil")
	}
	if got := client.Imports(ctx, "a.go"); got == nil {
		t.Error("Imports must return an empty slice, not nil")
	}
	if got := client.Tree(ctx, "", 2); got == nil {
		t.Error("Tree must return an empty slice, not nil")
	}
}

func TestTrackActivityFireAndForget(t *testing.T) {
	project := t.TempDir()

	// No daemon at all: TrackActivity must return immediately and
	// swallow the failure. Hold the lock so nothing tries to spawn.
	lock, err := lifecycle.AcquireLock(project, 30*time.Second)
	if err != nil || lock == nil {
		t.Fatalf("setup lock failed: %v", err)
	}
	defer lock.Release()

	client := NewClient(project, testConfig(), quietLogger())
	start := time.Now()
	client.TrackActivity(protocol.ActivityEvent{Kind: "read_intercepted", Layers: 2, Count: 1})
	if time.Since(start) > 50*time.Millisecond {
		t.Error("TrackActivity blocked the caller")
	}
}
