// Package protocol defines the wire types exchanged between cid clients
// and the daemon: one JSON object per line in each direction.
//
// The command set is a closed enumeration. Both encode and decode sites
// match exhaustively; unknown tags are rejected at the boundary instead of
// being passed through.
package protocol

// Command identifies a query kind.
type Command string

const (
	CmdPing           Command = "ping"
	CmdStatus         Command = "status"
	CmdSearch         Command = "search"
	CmdImpact         Command = "impact"
	CmdExtract        Command = "extract"
	CmdStructure      Command = "structure"
	CmdContext        Command = "context"
	CmdCallGraph      Command = "call_graph"
	CmdControlFlow    Command = "control_flow"
	CmdDataFlow       Command = "data_flow"
	CmdSlice          Command = "slice"
	CmdDeadCode       Command = "dead_code"
	CmdArchitecture   Command = "architecture"
	CmdTree           Command = "tree"
	CmdImports        Command = "imports"
	CmdImporters      Command = "importers"
	CmdSemanticIndex  Command = "semantic_index"
	CmdSemanticSearch Command = "semantic_search"
	CmdCacheWarm      Command = "cache_warm"
	CmdNotify         Command = "notify"
	CmdDiagnostics    Command = "diagnostics"
	CmdTrackActivity  Command = "track_activity"
)

var knownCommands = map[Command]bool{
	CmdPing: true, CmdStatus: true, CmdSearch: true, CmdImpact: true,
	CmdExtract: true, CmdStructure: true, CmdContext: true, CmdCallGraph: true,
	CmdControlFlow: true, CmdDataFlow: true, CmdSlice: true, CmdDeadCode: true,
	CmdArchitecture: true, CmdTree: true, CmdImports: true, CmdImporters: true,
	CmdSemanticIndex: true, CmdSemanticSearch: true, CmdCacheWarm: true,
	CmdNotify: true, CmdDiagnostics: true, CmdTrackActivity: true,
}

// Known reports whether c is part of the closed command set.
func (c Command) Known() bool {
	return knownCommands[c]
}

// Commands returns the closed command set (for diagnostics output).
func Commands() []Command {
	out := make([]Command, 0, len(knownCommands))
	for c := range knownCommands {
		out = append(out, c)
	}
	return out
}

// Query is a single request to the daemon. Command selects the kind;
// the remaining fields are kind-specific parameters.
type Query struct {
	ID      string  `json:"id,omitempty"`
	Command Command `json:"command"`

	Path      string         `json:"path,omitempty"`
	Symbol    string         `json:"symbol,omitempty"`
	Language  string         `json:"language,omitempty"`
	Pattern   string         `json:"pattern,omitempty"`
	Depth     int            `json:"depth,omitempty"`
	Line      int            `json:"line,omitempty"`
	Direction string         `json:"direction,omitempty"`
	Limit     int            `json:"limit,omitempty"`
	SessionID string         `json:"sessionId,omitempty"`
	Message   string         `json:"message,omitempty"`
	Event     *ActivityEvent `json:"event,omitempty"`
}

// ResponseStatus classifies the outcome of a query.
type ResponseStatus string

const (
	// StatusOK indicates a successful response with a payload.
	StatusOK ResponseStatus = "ok"
	// StatusUnavailable indicates the daemon is not running and could not be started.
	StatusUnavailable ResponseStatus = "unavailable"
	// StatusIndexing indicates the daemon is rebuilding its index.
	StatusIndexing ResponseStatus = "indexing"
	// StatusError indicates a timeout, malformed payload or transport fault.
	StatusError ResponseStatus = "error"
)

// ResponseError carries the error detail of a StatusError response.
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Response is the single reply produced for every query. Exactly one of
// the payload fields is populated, matching the query's command.
type Response struct {
	ID     string         `json:"id,omitempty"`
	Status ResponseStatus `json:"status"`
	Error  *ResponseError `json:"error,omitempty"`

	Results      []SearchResult     `json:"results,omitempty"`
	Structure    *FileStructure     `json:"structure,omitempty"`
	Extract      *ExtractResult     `json:"extract,omitempty"`
	Context      *ContextResult     `json:"context,omitempty"`
	Edges        []CallEdge         `json:"edges,omitempty"`
	ControlFlow  *FlowSummary       `json:"controlFlow,omitempty"`
	DataFlow     *DataFlowSummary   `json:"dataFlow,omitempty"`
	Slice        *SliceResult       `json:"slice,omitempty"`
	DeadCode     []DeadSymbol       `json:"deadCode,omitempty"`
	Architecture *Architecture      `json:"architecture,omitempty"`
	Tree         []TreeEntry        `json:"tree,omitempty"`
	Imports      []string           `json:"imports,omitempty"`
	Importers    []string           `json:"importers,omitempty"`
	DaemonStatus *DaemonStatus      `json:"daemonStatus,omitempty"`
	Diagnostics  *Diagnostics       `json:"diagnostics,omitempty"`
	Indexed      int                `json:"indexed,omitempty"`
}

// Location is a file position.
type Location struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// SearchResult is one hit from search or semantic_search.
type SearchResult struct {
	Symbol   string   `json:"symbol"`
	Kind     string   `json:"kind"`
	Location Location `json:"location"`
	Score    float64  `json:"score,omitempty"`
	Snippet  string   `json:"snippet,omitempty"`
}

// FunctionInfo summarizes one function: name, truncated parameter list,
// first docstring line.
type FunctionInfo struct {
	Name       string   `json:"name"`
	Params     []string `json:"params,omitempty"`
	Doc        string   `json:"doc,omitempty"`
	Line       int      `json:"line"`
	Complexity int      `json:"complexity,omitempty"`
}

// ClassInfo summarizes one class with its method names.
type ClassInfo struct {
	Name    string   `json:"name"`
	Methods []string `json:"methods,omitempty"`
	Line    int      `json:"line"`
}

// FileStructure is the names/signatures layer for one file.
type FileStructure struct {
	Path      string         `json:"path"`
	Language  string         `json:"language"`
	Functions []FunctionInfo `json:"functions,omitempty"`
	Classes   []ClassInfo    `json:"classes,omitempty"`
	Imports   []string       `json:"imports,omitempty"`
}

// CallEdge is one call-graph edge.
type CallEdge struct {
	Caller string   `json:"caller"`
	Callee string   `json:"callee"`
	Site   Location `json:"site"`
}

// ContextResult is the focused call-graph neighborhood around a symbol.
type ContextResult struct {
	Symbol    string         `json:"symbol"`
	Depth     int            `json:"depth"`
	Functions []FunctionInfo `json:"functions,omitempty"`
	Edges     []CallEdge     `json:"edges,omitempty"`
	Callers   []Location     `json:"callers,omitempty"`
}

// FlowSummary summarizes one function's control-flow graph.
type FlowSummary struct {
	Function   string `json:"function"`
	Blocks     int    `json:"blocks"`
	Edges      int    `json:"edges"`
	Complexity int    `json:"complexity"`
}

// DataFlowSummary lists definition and use sites for one function.
type DataFlowSummary struct {
	Function string     `json:"function"`
	Defs     []Location `json:"defs,omitempty"`
	Uses     []Location `json:"uses,omitempty"`
}

// SliceResult is a program slice: touched lines and variables.
type SliceResult struct {
	Function  string   `json:"function"`
	Line      int      `json:"line"`
	Direction string   `json:"direction"`
	Lines     []int    `json:"lines,omitempty"`
	Variables []string `json:"variables,omitempty"`
}

// ExtractResult is the full structural dump: a superset of all layers.
type ExtractResult struct {
	Structure   *FileStructure    `json:"structure,omitempty"`
	Edges       []CallEdge        `json:"edges,omitempty"`
	ControlFlow []FlowSummary     `json:"controlFlow,omitempty"`
	DataFlow    []DataFlowSummary `json:"dataFlow,omitempty"`
	Slices      []SliceResult     `json:"slices,omitempty"`
}

// DeadSymbol is one unreferenced symbol.
type DeadSymbol struct {
	Symbol   string   `json:"symbol"`
	Kind     string   `json:"kind"`
	Location Location `json:"location"`
}

// ModuleSummary is one architecture module.
type ModuleSummary struct {
	Name    string   `json:"name"`
	Files   int      `json:"files"`
	Imports []string `json:"imports,omitempty"`
}

// Architecture is the module-level view of the project.
type Architecture struct {
	Modules []ModuleSummary `json:"modules,omitempty"`
}

// TreeEntry is one node of the project file tree.
type TreeEntry struct {
	Path  string `json:"path"`
	Dir   bool   `json:"dir,omitempty"`
	Bytes int64  `json:"bytes,omitempty"`
}

// DaemonStatus reports the daemon's own state.
type DaemonStatus struct {
	State         string `json:"state"`
	PID           int    `json:"pid"`
	Version       string `json:"version"`
	Project       string `json:"project"`
	IndexedFiles  int    `json:"indexedFiles"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
}

// Diagnostics reports daemon internals for debugging.
type Diagnostics struct {
	Endpoint       string `json:"endpoint"`
	QueriesServed  int64  `json:"queriesServed"`
	ActivityEvents int64  `json:"activityEvents"`
	CacheEntries   int    `json:"cacheEntries"`
}

// ActivityEvent is one fire-and-forget tracking record.
type ActivityEvent struct {
	Kind      string `json:"kind"`
	SessionID string `json:"sessionId,omitempty"`
	Layers    int    `json:"layers,omitempty"`
	Count     int    `json:"count,omitempty"`
}
