// Package hints is the ephemeral per-session hint store.
//
// An upstream routing component writes one hint file per session as it
// classifies the caller's query; the read-interception policy reads the
// hint to pick a substitution mode. Hints expire by age, never by
// deletion: a hint inferred for a finished interaction must not steer the
// next one.
package hints

import (
	"encoding/json"
	"os"
	"time"

	"cid/internal/paths"
)

// DefaultTTL is the age past which a hint is treated as absent.
const DefaultTTL = 30 * time.Second

// QueryKind classifies the caller's query.
type QueryKind string

const (
	// Structural queries name a symbol found by function/class lookup.
	Structural QueryKind = "structural"
	// Semantic queries are meaning-level searches.
	Semantic QueryKind = "semantic"
	// Literal queries are plain text matches.
	Literal QueryKind = "literal"
)

// TargetKind classifies a hint's target symbol.
type TargetKind string

const (
	TargetFunction TargetKind = "function"
	TargetClass    TargetKind = "class"
	TargetVariable TargetKind = "variable"
	TargetImport   TargetKind = "import"
	TargetOther    TargetKind = "other"
)

// Layer names one analysis layer.
type Layer string

const (
	LayerAST         Layer = "ast"
	LayerCallGraph   Layer = "call_graph"
	LayerControlFlow Layer = "control_flow"
	LayerDataFlow    Layer = "data_flow"
	LayerSlice       Layer = "slice"
	LayerSemantic    Layer = "semantic"
)

// Location is a file position carried by a hint.
type Location struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// SessionHint records the caller's last inferred intent.
type SessionHint struct {
	Timestamp       time.Time  `json:"timestamp"`
	QueryKind       QueryKind  `json:"queryKind"`
	Pattern         string     `json:"pattern,omitempty"`
	Target          string     `json:"target,omitempty"`
	TargetKind      TargetKind `json:"targetKind,omitempty"`
	SuggestedLayers []Layer    `json:"suggestedLayers,omitempty"`
	Definition      *Location  `json:"definition,omitempty"`
	References      []Location `json:"references,omitempty"`
}

// HasFlowLayer reports whether the hint asks for control-flow, data-flow
// or slicing analysis.
func (h *SessionHint) HasFlowLayer() bool {
	for _, l := range h.SuggestedLayers {
		switch l {
		case LayerControlFlow, LayerDataFlow, LayerSlice:
			return true
		}
	}
	return false
}

// Load returns the unexpired hint for a session, or nil if the hint is
// missing, unreadable or older than ttl. A zero ttl means DefaultTTL.
func Load(sessionID string, ttl time.Duration) *SessionHint {
	if sessionID == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	data, err := os.ReadFile(paths.HintPath(sessionID))
	if err != nil {
		return nil
	}
	var hint SessionHint
	if err := json.Unmarshal(data, &hint); err != nil {
		return nil
	}
	if time.Since(hint.Timestamp) > ttl {
		return nil
	}
	return &hint
}

// Save writes the hint for a session. This is the upstream router's side
// of the store; the policy only ever reads.
func Save(sessionID string, hint *SessionHint) error {
	if err := os.MkdirAll(paths.HintsDir(), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(hint)
	if err != nil {
		return err
	}
	return os.WriteFile(paths.HintPath(sessionID), data, 0o644)
}
