// Package policy decides whether a file read from the host pipeline is
// answered with the raw file or a compressed analysis summary.
//
// The contract is fail-open: whenever the daemon degrades or every layer
// comes back empty, the original read proceeds exactly as if cid did not
// exist. Correctness is never traded for compression.
package policy

import (
	"context"
	"os"
	"time"

	"cid/internal/config"
	"cid/internal/hints"
	"cid/internal/logging"
	"cid/internal/protocol"
)

// ReadEvent describes one file-read attempt from the host pipeline.
type ReadEvent struct {
	FilePath  string `json:"filePath"`
	Offset    int    `json:"offset,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

// Decision is the policy's answer: allow the read unmodified, or deny it
// and substitute the composed summary.
type Decision struct {
	Allow      bool   `json:"allow"`
	Reason     string `json:"reason,omitempty"`
	Substitute string `json:"substitute,omitempty"`
	Mode       Mode   `json:"mode,omitempty"`
}

func allow(reason string) Decision {
	return Decision{Allow: true, Reason: reason}
}

// Querier is the slice of the IPC client the policy consumes.
type Querier interface {
	Structure(ctx context.Context, path string) *protocol.FileStructure
	Context(ctx context.Context, path, symbol string, depth int) *protocol.ContextResult
	Extract(ctx context.Context, path string) *protocol.ExtractResult
	TrackActivity(event protocol.ActivityEvent)
}

// Policy evaluates read events for one project.
type Policy struct {
	projectDir string
	cfg        config.Config
	client     Querier
	logger     *logging.Logger
	patterns   []string
}

// New creates a policy backed by the given client.
func New(projectDir string, cfg config.Config, client Querier, logger *logging.Logger) *Policy {
	return &Policy{
		projectDir: projectDir,
		cfg:        cfg,
		client:     client,
		logger:     logger,
		patterns:   loadAllowPatterns(projectDir, cfg.AllowPatterns),
	}
}

// Evaluate runs the decision sequence for one read event.
func (p *Policy) Evaluate(ctx context.Context, ev ReadEvent) Decision {
	lang := DetectLanguage(ev.FilePath)
	if lang == "" {
		return allow("not a recognized source file")
	}
	if matchAllowList(ev.FilePath, p.patterns) {
		return allow("allow-listed path")
	}
	// A caller asking for specific lines has already expressed precise
	// intent; redirecting it would discard that.
	if ev.Offset > 0 || (ev.Limit > 0 && ev.Limit < p.cfg.SmallLimitLines) {
		return allow("bounded read requested")
	}

	info, err := os.Stat(ev.FilePath)
	if err != nil {
		return allow("file not statable")
	}
	if info.Size() < p.cfg.MinInterceptBytes {
		return allow("below size threshold")
	}

	hint := hints.Load(ev.SessionID, p.cfg.HintTTL)
	mode := SelectMode(hint)

	doc, finalMode, layers := p.runChain(ctx, ev.FilePath, lang, mode, hint)
	if doc == "" {
		// Every layer came back empty: never block a read with an empty
		// or misleading payload.
		return allow("no analysis available")
	}

	p.client.TrackActivity(protocol.ActivityEvent{
		Kind:      "read_intercepted",
		SessionID: ev.SessionID,
		Layers:    layers,
		Count:     1,
	})

	return Decision{
		Allow:      false,
		Reason:     "substituted " + string(finalMode) + " summary",
		Substitute: doc,
		Mode:       finalMode,
	}
}

// runChain executes the selected mode with its deterministic fallbacks:
// context -> structure -> extract, structure -> extract, extract stands
// alone returning whatever partial layers succeeded.
func (p *Policy) runChain(ctx context.Context, path, lang string, mode Mode, hint *hints.SessionHint) (string, Mode, int) {
	start := time.Now()
	defer func() {
		p.logger.Debug("interception chain done", map[string]interface{}{
			"path": path,
			"ms":   time.Since(start).Milliseconds(),
		})
	}()

	if mode == ModeContext {
		target := ""
		if hint != nil {
			target = hint.Target
		}
		cres := p.client.Context(ctx, path, target, defaultContextDepth)
		if !contextEmpty(cres) {
			return composeContext(path, lang, cres, hint), ModeContext, 2
		}
		mode = ModeStructure
	}

	if mode == ModeStructure {
		sres := p.client.Structure(ctx, path)
		if !structureEmpty(sres) {
			return composeStructure(path, lang, sres, hint), ModeStructure, 1
		}
		mode = ModeExtract
	}

	eres := p.client.Extract(ctx, path)
	doc, layers := composeExtract(path, lang, eres, hint)
	return doc, ModeExtract, layers
}

func structureEmpty(s *protocol.FileStructure) bool {
	return s == nil || (len(s.Functions) == 0 && len(s.Classes) == 0 && len(s.Imports) == 0)
}

func contextEmpty(c *protocol.ContextResult) bool {
	return c == nil || (len(c.Functions) == 0 && len(c.Edges) == 0 && len(c.Callers) == 0)
}
