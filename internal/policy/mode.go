package policy

import (
	"cid/internal/hints"
)

// Mode is the policy's choice of how much analysis substitutes for a raw
// read.
type Mode string

const (
	// ModeStructure is names/signatures only: the cheapest default.
	ModeStructure Mode = "structure"
	// ModeContext is the focused call-graph neighborhood around a symbol.
	ModeContext Mode = "context"
	// ModeExtract is the full structural dump, superset of all layers.
	ModeExtract Mode = "extract"
)

// defaultContextDepth is the call-graph neighborhood radius for context
// mode.
const defaultContextDepth = 2

// SelectMode maps caller intent to an initial mode. The mapping is total:
// every combination of (target present, hint source, requested layers)
// yields exactly one mode. The hint comes from the current structural
// query only, never from conversation history.
func SelectMode(hint *hints.SessionHint) Mode {
	if hint != nil && hint.Target != "" && structuralTarget(hint) {
		// A symbol found by structural lookup is a real target, not a
		// guess: focus on its neighborhood.
		return ModeContext
	}
	if hint != nil && hint.HasFlowLayer() {
		return ModeExtract
	}
	return ModeStructure
}

// structuralTarget reports whether the hint's target came from a
// function/class lookup. The router signals this either through the
// query kind or through the target kind alone; older hints carry only
// the latter.
func structuralTarget(h *hints.SessionHint) bool {
	if h.QueryKind == hints.Structural {
		return true
	}
	switch h.TargetKind {
	case hints.TargetFunction, hints.TargetClass:
		return true
	}
	return false
}
