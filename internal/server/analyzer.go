package server

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"cid/internal/protocol"
)

// Analyzer is the boundary to the analysis engine. How the layers are
// computed (AST, CFG, DFG, PDG, embeddings) lives behind this interface;
// the server only dispatches commands and ships results.
type Analyzer interface {
	Warmup(ctx context.Context) error
	Structure(ctx context.Context, path string) *protocol.FileStructure
	Context(ctx context.Context, path, symbol string, depth int) *protocol.ContextResult
	Extract(ctx context.Context, path string) *protocol.ExtractResult
	Search(ctx context.Context, pattern string, limit int) []protocol.SearchResult
	SemanticSearch(ctx context.Context, pattern string, limit int) []protocol.SearchResult
	SemanticIndex(ctx context.Context) error
	CallGraph(ctx context.Context, symbol string, depth int) []protocol.CallEdge
	Impact(ctx context.Context, symbol string, depth int) []protocol.CallEdge
	ControlFlow(ctx context.Context, path, function string) *protocol.FlowSummary
	DataFlow(ctx context.Context, path, function string) *protocol.DataFlowSummary
	Slice(ctx context.Context, path, function string, line int, direction string) *protocol.SliceResult
	DeadCode(ctx context.Context) []protocol.DeadSymbol
	Architecture(ctx context.Context) *protocol.Architecture
	Imports(ctx context.Context, path string) []string
	Importers(ctx context.Context, path string) []string
	IndexedFiles() int
}

// memoryAnalyzer is the baseline analyzer: it knows the file tree and
// whatever the warm cache holds, and answers empty for layers it cannot
// compute. Real engines replace it; the server and protocol don't care.
type memoryAnalyzer struct {
	projectDir string
	cache      *WarmCache
	indexed    int
}

func newMemoryAnalyzer(projectDir string, cache *WarmCache) *memoryAnalyzer {
	return &memoryAnalyzer{projectDir: projectDir, cache: cache}
}

var sourceExts = map[string]bool{
	".go": true, ".py": true, ".js": true, ".jsx": true, ".ts": true,
	".tsx": true, ".java": true, ".rb": true, ".rs": true, ".c": true,
	".h": true, ".cpp": true, ".cc": true, ".hpp": true, ".cs": true,
}

// Warmup counts indexable files so status reporting has something real
// to say even without an analysis engine attached.
func (a *memoryAnalyzer) Warmup(ctx context.Context) error {
	count := 0
	err := filepath.WalkDir(a.projectDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if name == ".git" || name == "node_modules" || name == "vendor" || name == ".cid" {
				return filepath.SkipDir
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if sourceExts[strings.ToLower(filepath.Ext(path))] {
			count++
		}
		return nil
	})
	a.indexed = count
	return err
}

func (a *memoryAnalyzer) IndexedFiles() int { return a.indexed }

func (a *memoryAnalyzer) Structure(ctx context.Context, path string) *protocol.FileStructure {
	if s := a.cache.Structure(path); s != nil {
		return s
	}
	return nil
}

func (a *memoryAnalyzer) Context(ctx context.Context, path, symbol string, depth int) *protocol.ContextResult {
	return a.cache.Context(path, symbol)
}

func (a *memoryAnalyzer) Extract(ctx context.Context, path string) *protocol.ExtractResult {
	if s := a.cache.Structure(path); s != nil {
		return &protocol.ExtractResult{Structure: s}
	}
	return nil
}

func (a *memoryAnalyzer) Search(ctx context.Context, pattern string, limit int) []protocol.SearchResult {
	return a.cache.Search(pattern, limit)
}

func (a *memoryAnalyzer) SemanticSearch(ctx context.Context, pattern string, limit int) []protocol.SearchResult {
	return nil
}

func (a *memoryAnalyzer) SemanticIndex(ctx context.Context) error { return nil }

func (a *memoryAnalyzer) CallGraph(ctx context.Context, symbol string, depth int) []protocol.CallEdge {
	return a.cache.Edges(symbol)
}

func (a *memoryAnalyzer) Impact(ctx context.Context, symbol string, depth int) []protocol.CallEdge {
	return a.cache.Edges(symbol)
}

func (a *memoryAnalyzer) ControlFlow(ctx context.Context, path, function string) *protocol.FlowSummary {
	return nil
}

func (a *memoryAnalyzer) DataFlow(ctx context.Context, path, function string) *protocol.DataFlowSummary {
	return nil
}

func (a *memoryAnalyzer) Slice(ctx context.Context, path, function string, line int, direction string) *protocol.SliceResult {
	return nil
}

func (a *memoryAnalyzer) DeadCode(ctx context.Context) []protocol.DeadSymbol { return nil }

func (a *memoryAnalyzer) Architecture(ctx context.Context) *protocol.Architecture {
	dirs := map[string]int{}
	_ = filepath.WalkDir(a.projectDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if !sourceExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		rel, err := filepath.Rel(a.projectDir, path)
		if err != nil {
			return nil
		}
		top := strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]
		dirs[top]++
		return nil
	})
	arch := &protocol.Architecture{}
	for name, files := range dirs {
		arch.Modules = append(arch.Modules, protocol.ModuleSummary{Name: name, Files: files})
	}
	return arch
}

func (a *memoryAnalyzer) Imports(ctx context.Context, path string) []string   { return nil }
func (a *memoryAnalyzer) Importers(ctx context.Context, path string) []string { return nil }

// Tree is served by the server itself, not the analyzer: it is pure
// filesystem walking with no analysis semantics.
func walkTree(projectDir, sub string, depth int) []protocol.TreeEntry {
	root := projectDir
	if sub != "" {
		root = filepath.Join(projectDir, sub)
	}
	if depth <= 0 {
		depth = 3
	}
	var entries []protocol.TreeEntry
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil || rel == "." {
			return nil
		}
		if strings.Count(filepath.ToSlash(rel), "/") >= depth {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if name == ".git" || name == "node_modules" || name == "vendor" {
				return filepath.SkipDir
			}
			entries = append(entries, protocol.TreeEntry{Path: filepath.ToSlash(rel), Dir: true})
			return nil
		}
		info, ierr := d.Info()
		var size int64
		if ierr == nil {
			size = info.Size()
		}
		entries = append(entries, protocol.TreeEntry{Path: filepath.ToSlash(rel), Bytes: size})
		return nil
	})
	return entries
}
