package ipc

import (
	"context"

	"cid/internal/protocol"
)

// Per-command convenience wrappers. Each shapes a query, unwraps the
// relevant response field, and defaults missing collections to empty
// rather than nil so callers can range without checking.

// Ping reports whether the daemon answers on its endpoint.
func (c *Client) Ping(ctx context.Context) bool {
	resp := c.Call(ctx, protocol.Query{Command: protocol.CmdPing})
	return resp.Status == protocol.StatusOK
}

// Status returns the daemon's self-reported status, or nil when degraded.
func (c *Client) Status(ctx context.Context) *protocol.DaemonStatus {
	resp := c.Call(ctx, protocol.Query{Command: protocol.CmdStatus})
	return resp.DaemonStatus
}

// Search runs a symbol search.
func (c *Client) Search(ctx context.Context, pattern string, limit int) []protocol.SearchResult {
	resp := c.Call(ctx, protocol.Query{Command: protocol.CmdSearch, Pattern: pattern, Limit: limit})
	return nonNil(resp.Results)
}

// SemanticSearch runs an embedding-index search.
func (c *Client) SemanticSearch(ctx context.Context, pattern string, limit int) []protocol.SearchResult {
	resp := c.Call(ctx, protocol.Query{Command: protocol.CmdSemanticSearch, Pattern: pattern, Limit: limit})
	return nonNil(resp.Results)
}

// SemanticIndex asks the daemon to (re)build its embedding index.
func (c *Client) SemanticIndex(ctx context.Context) bool {
	resp := c.Call(ctx, protocol.Query{Command: protocol.CmdSemanticIndex})
	return resp.Status == protocol.StatusOK
}

// Structure returns the names/signatures layer for a file.
func (c *Client) Structure(ctx context.Context, path string) *protocol.FileStructure {
	resp := c.Call(ctx, protocol.Query{Command: protocol.CmdStructure, Path: path})
	return resp.Structure
}

// Context returns the focused call-graph neighborhood around a symbol.
func (c *Client) Context(ctx context.Context, path, symbol string, depth int) *protocol.ContextResult {
	resp := c.Call(ctx, protocol.Query{
		Command: protocol.CmdContext, Path: path, Symbol: symbol, Depth: depth,
	})
	return resp.Context
}

// Extract returns the full structural dump for a file.
func (c *Client) Extract(ctx context.Context, path string) *protocol.ExtractResult {
	resp := c.Call(ctx, protocol.Query{Command: protocol.CmdExtract, Path: path})
	return resp.Extract
}

// CallGraph returns call edges for a symbol.
func (c *Client) CallGraph(ctx context.Context, symbol string, depth int) []protocol.CallEdge {
	resp := c.Call(ctx, protocol.Query{Command: protocol.CmdCallGraph, Symbol: symbol, Depth: depth})
	return nonNil(resp.Edges)
}

// Impact returns the edges reachable from a symbol: what breaks if it changes.
func (c *Client) Impact(ctx context.Context, symbol string, depth int) []protocol.CallEdge {
	resp := c.Call(ctx, protocol.Query{Command: protocol.CmdImpact, Symbol: symbol, Depth: depth})
	return nonNil(resp.Edges)
}

// ControlFlow returns the control-flow summary for a function.
func (c *Client) ControlFlow(ctx context.Context, path, function string) *protocol.FlowSummary {
	resp := c.Call(ctx, protocol.Query{Command: protocol.CmdControlFlow, Path: path, Symbol: function})
	return resp.ControlFlow
}

// DataFlow returns def/use sites for a function.
func (c *Client) DataFlow(ctx context.Context, path, function string) *protocol.DataFlowSummary {
	resp := c.Call(ctx, protocol.Query{Command: protocol.CmdDataFlow, Path: path, Symbol: function})
	return resp.DataFlow
}

// Slice returns the program slice through a line.
func (c *Client) Slice(ctx context.Context, path, function string, line int, direction string) *protocol.SliceResult {
	resp := c.Call(ctx, protocol.Query{
		Command: protocol.CmdSlice, Path: path, Symbol: function, Line: line, Direction: direction,
	})
	return resp.Slice
}

// DeadCode returns unreferenced symbols.
func (c *Client) DeadCode(ctx context.Context) []protocol.DeadSymbol {
	resp := c.Call(ctx, protocol.Query{Command: protocol.CmdDeadCode})
	return nonNil(resp.DeadCode)
}

// Architecture returns the module-level project view.
func (c *Client) Architecture(ctx context.Context) *protocol.Architecture {
	resp := c.Call(ctx, protocol.Query{Command: protocol.CmdArchitecture})
	return resp.Architecture
}

// Tree returns the project file tree.
func (c *Client) Tree(ctx context.Context, path string, depth int) []protocol.TreeEntry {
	resp := c.Call(ctx, protocol.Query{Command: protocol.CmdTree, Path: path, Depth: depth})
	return nonNil(resp.Tree)
}

// Imports returns what a file imports.
func (c *Client) Imports(ctx context.Context, path string) []string {
	resp := c.Call(ctx, protocol.Query{Command: protocol.CmdImports, Path: path})
	return nonNil(resp.Imports)
}

// Importers returns which files import the given one.
func (c *Client) Importers(ctx context.Context, path string) []string {
	resp := c.Call(ctx, protocol.Query{Command: protocol.CmdImporters, Path: path})
	return nonNil(resp.Importers)
}

// CacheWarm asks the daemon to persist its warm cache.
func (c *Client) CacheWarm(ctx context.Context) bool {
	resp := c.Call(ctx, protocol.Query{Command: protocol.CmdCacheWarm})
	return resp.Status == protocol.StatusOK
}

// Notify sends a one-way notification (file changed, session ended).
func (c *Client) Notify(ctx context.Context, message string) bool {
	resp := c.Call(ctx, protocol.Query{Command: protocol.CmdNotify, Message: message})
	return resp.Status == protocol.StatusOK
}

// Diagnostics returns daemon internals for debugging.
func (c *Client) Diagnostics(ctx context.Context) *protocol.Diagnostics {
	resp := c.Call(ctx, protocol.Query{Command: protocol.CmdDiagnostics})
	return resp.Diagnostics
}

// TrackActivity records a tracking event, fire-and-forget: the call
// returns immediately and any failure is discarded. Tracking must never
// affect the caller's control flow.
func (c *Client) TrackActivity(event protocol.ActivityEvent) {
	go func() {
		q := protocol.NewQuery(protocol.CmdTrackActivity)
		q.Event = &event
		_ = c.Call(context.Background(), q)
	}()
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
