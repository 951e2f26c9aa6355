package server

import (
	"cid/internal/cerrors"
	"cid/internal/protocol"
	"cid/internal/version"

	"os"
	"time"
)

// dispatch routes one query to its handler. The switch is exhaustive
// over the closed command set; the reader has already rejected unknown
// tags.
func (s *Server) dispatch(q *protocol.Query) *protocol.Response {
	ctx := s.ctx

	switch q.Command {
	case protocol.CmdPing:
		return protocol.OK(q.ID)

	case protocol.CmdStatus:
		resp := protocol.OK(q.ID)
		resp.DaemonStatus = &protocol.DaemonStatus{
			State:         "ready",
			PID:           os.Getpid(),
			Version:       version.Version,
			Project:       s.projectDir,
			IndexedFiles:  s.analyzer.IndexedFiles(),
			UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		}
		return resp

	case protocol.CmdSearch:
		resp := protocol.OK(q.ID)
		resp.Results = s.analyzer.Search(ctx, q.Pattern, q.Limit)
		return resp

	case protocol.CmdSemanticSearch:
		resp := protocol.OK(q.ID)
		resp.Results = s.analyzer.SemanticSearch(ctx, q.Pattern, q.Limit)
		return resp

	case protocol.CmdSemanticIndex:
		if err := s.analyzer.SemanticIndex(ctx); err != nil {
			return protocol.ErrorResponse(q.ID, string(cerrors.InternalError), err.Error())
		}
		return protocol.OK(q.ID)

	case protocol.CmdStructure:
		resp := protocol.OK(q.ID)
		resp.Structure = s.analyzer.Structure(ctx, q.Path)
		return resp

	case protocol.CmdContext:
		resp := protocol.OK(q.ID)
		resp.Context = s.analyzer.Context(ctx, q.Path, q.Symbol, q.Depth)
		return resp

	case protocol.CmdExtract:
		resp := protocol.OK(q.ID)
		resp.Extract = s.analyzer.Extract(ctx, q.Path)
		return resp

	case protocol.CmdCallGraph:
		resp := protocol.OK(q.ID)
		resp.Edges = s.analyzer.CallGraph(ctx, q.Symbol, q.Depth)
		return resp

	case protocol.CmdImpact:
		resp := protocol.OK(q.ID)
		resp.Edges = s.analyzer.Impact(ctx, q.Symbol, q.Depth)
		return resp

	case protocol.CmdControlFlow:
		resp := protocol.OK(q.ID)
		resp.ControlFlow = s.analyzer.ControlFlow(ctx, q.Path, q.Symbol)
		return resp

	case protocol.CmdDataFlow:
		resp := protocol.OK(q.ID)
		resp.DataFlow = s.analyzer.DataFlow(ctx, q.Path, q.Symbol)
		return resp

	case protocol.CmdSlice:
		resp := protocol.OK(q.ID)
		resp.Slice = s.analyzer.Slice(ctx, q.Path, q.Symbol, q.Line, q.Direction)
		return resp

	case protocol.CmdDeadCode:
		resp := protocol.OK(q.ID)
		resp.DeadCode = s.analyzer.DeadCode(ctx)
		return resp

	case protocol.CmdArchitecture:
		resp := protocol.OK(q.ID)
		resp.Architecture = s.analyzer.Architecture(ctx)
		return resp

	case protocol.CmdTree:
		resp := protocol.OK(q.ID)
		resp.Tree = walkTree(s.projectDir, q.Path, q.Depth)
		return resp

	case protocol.CmdImports:
		resp := protocol.OK(q.ID)
		resp.Imports = s.analyzer.Imports(ctx, q.Path)
		return resp

	case protocol.CmdImporters:
		resp := protocol.OK(q.ID)
		resp.Importers = s.analyzer.Importers(ctx, q.Path)
		return resp

	case protocol.CmdCacheWarm:
		if err := s.cache.Save(); err != nil {
			return protocol.ErrorResponse(q.ID, string(cerrors.InternalError), err.Error())
		}
		resp := protocol.OK(q.ID)
		resp.Indexed = s.cache.Len()
		return resp

	case protocol.CmdNotify:
		s.logger.Info("notify", map[string]interface{}{"message": q.Message})
		return protocol.OK(q.ID)

	case protocol.CmdDiagnostics:
		resp := protocol.OK(q.ID)
		resp.Diagnostics = &protocol.Diagnostics{
			Endpoint:       s.ep.String(),
			QueriesServed:  s.queriesServed.Load(),
			ActivityEvents: s.eventsStored.Load(),
			CacheEntries:   s.cache.Len(),
		}
		return resp

	case protocol.CmdTrackActivity:
		if q.Event != nil && s.activity != nil {
			if err := s.activity.Record(*q.Event); err == nil {
				s.eventsStored.Add(1)
			}
		}
		return protocol.OK(q.ID)
	}

	// Unreachable while the reader validates commands; kept as a typed
	// failure rather than a panic if that ever changes.
	return protocol.ErrorResponse(q.ID, string(cerrors.DecodeError), "unhandled command")
}
