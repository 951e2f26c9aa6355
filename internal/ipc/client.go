// Package ipc is the daemon client: typed queries in, typed responses
// out, never an exception past this boundary.
//
// Every failure mode degrades to a Response value tagged unavailable,
// indexing, or error. Callers branch on status, never on returned errors.
package ipc

import (
	"context"
	"errors"
	"net"
	"os"
	"syscall"
	"time"

	"cid/internal/cerrors"
	"cid/internal/config"
	"cid/internal/endpoint"
	"cid/internal/lifecycle"
	"cid/internal/logging"
	"cid/internal/protocol"
	"cid/internal/status"
)

// Client issues queries to the daemon for one project. Stateless apart
// from configuration: paths and endpoints are recomputed per call.
type Client struct {
	projectDir string
	cfg        config.Config
	logger     *logging.Logger
	manager    *lifecycle.Manager
}

// NewClient creates a client for a project.
func NewClient(projectDir string, cfg config.Config, logger *logging.Logger) *Client {
	return &Client{
		projectDir: projectDir,
		cfg:        cfg,
		logger:     logger,
		manager:    lifecycle.NewManager(cfg, logger),
	}
}

// Call sends one query and waits for its response. Blocking variant;
// returns within the query timeout plus scheduling slack, always with a
// non-nil response.
func (c *Client) Call(ctx context.Context, q protocol.Query) *protocol.Response {
	if q.ID == "" {
		q = withID(q)
	}

	// Fast path: don't touch the transport while the index rebuilds.
	// Partial answers are worse than a typed "indexing".
	if status.Read(c.projectDir) == status.Indexing && q.Command != protocol.CmdPing {
		return protocol.IndexingResponse(q.ID)
	}

	resp, err := c.exchange(ctx, q)
	if err == nil {
		return resp
	}

	if isAbsence(err) {
		// Expected absence signal, not a fault: try to bring the daemon
		// up, then retry the exchange once.
		if !c.manager.EnsureDaemon(c.projectDir) {
			return protocol.Unavailable(q.ID)
		}
		resp, err = c.exchange(ctx, q)
		if err == nil {
			return resp
		}
		if isAbsence(err) {
			return protocol.Unavailable(q.ID)
		}
	}

	if isTimeout(err) {
		return protocol.TimeoutResponse(q.ID)
	}
	cerr := cerrors.New(cerrors.InternalError, "query failed", err)
	c.logger.Warn("query failed", map[string]interface{}{
		"command": string(q.Command),
		"error":   cerr.Error(),
	})
	return protocol.ErrorResponse(q.ID, string(cerr.Code), cerr.Error())
}

// Go is the non-blocking variant: it returns immediately with a channel
// that yields exactly one response. The channel is buffered so the
// worker never blocks on an abandoned caller.
func (c *Client) Go(ctx context.Context, q protocol.Query) <-chan *protocol.Response {
	ch := make(chan *protocol.Response, 1)
	go func() {
		ch <- c.Call(ctx, q)
		close(ch)
	}()
	return ch
}

// exchange performs one connect/write/read cycle against the resolved
// endpoint under the query timeout.
func (c *Client) exchange(ctx context.Context, q protocol.Query) (*protocol.Response, error) {
	ep, err := endpoint.Resolve(c.projectDir)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(c.cfg.QueryTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	conn, err := net.DialTimeout(string(ep.Network), ep.Address, time.Until(deadline))
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()
	_ = conn.SetDeadline(deadline)

	if err := protocol.WriteMessage(conn, q); err != nil {
		return nil, err
	}
	resp, err := protocol.NewReader(conn).ReadResponse()
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func withID(q protocol.Query) protocol.Query {
	n := protocol.NewQuery(q.Command)
	n.Path = q.Path
	n.Symbol = q.Symbol
	n.Language = q.Language
	n.Pattern = q.Pattern
	n.Depth = q.Depth
	n.Line = q.Line
	n.Direction = q.Direction
	n.Limit = q.Limit
	n.SessionID = q.SessionID
	n.Message = q.Message
	n.Event = q.Event
	return n
}

// isAbsence reports the errno family meaning "no daemon here":
// connection refused, or the socket file doesn't exist.
func isAbsence(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ENOENT) ||
		os.IsNotExist(err)
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return os.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded)
}
