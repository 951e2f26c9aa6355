package server

import (
	"encoding/json"
	"os"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"

	"cid/internal/paths"
	"cid/internal/protocol"
)

// WarmCache holds analysis results that survive daemon restarts: a
// zstd-compressed JSON snapshot loaded on start and rewritten on
// cache_warm. An engine populates it; the baseline analyzer only reads.
type WarmCache struct {
	mu sync.RWMutex

	snapshot warmSnapshot
	path     string
}

type warmSnapshot struct {
	Structures map[string]*protocol.FileStructure   `json:"structures,omitempty"`
	Contexts   map[string]*protocol.ContextResult   `json:"contexts,omitempty"`
	Edges      map[string][]protocol.CallEdge       `json:"edges,omitempty"`
	Symbols    []protocol.SearchResult              `json:"symbols,omitempty"`
}

// OpenWarmCache loads the snapshot for a project, starting empty when no
// snapshot exists or it fails to decode.
func OpenWarmCache(projectDir string) *WarmCache {
	c := &WarmCache{snapshot: emptySnapshot()}
	path, err := paths.WarmCachePath(projectDir)
	if err != nil {
		return c
	}
	c.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return c
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(data, nil)
	if err != nil {
		return c
	}
	var snap warmSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return c
	}
	if snap.Structures == nil {
		snap.Structures = map[string]*protocol.FileStructure{}
	}
	if snap.Contexts == nil {
		snap.Contexts = map[string]*protocol.ContextResult{}
	}
	if snap.Edges == nil {
		snap.Edges = map[string][]protocol.CallEdge{}
	}
	c.snapshot = snap
	return c
}

func emptySnapshot() warmSnapshot {
	return warmSnapshot{
		Structures: map[string]*protocol.FileStructure{},
		Contexts:   map[string]*protocol.ContextResult{},
		Edges:      map[string][]protocol.CallEdge{},
	}
}

// Save writes the snapshot back to disk, compressed.
func (c *WarmCache) Save() error {
	if c.path == "" {
		return nil
	}
	c.mu.RLock()
	raw, err := json.Marshal(c.snapshot)
	c.mu.RUnlock()
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return err
	}
	compressed := enc.EncodeAll(raw, nil)
	if err := enc.Close(); err != nil {
		return err
	}
	return os.WriteFile(c.path, compressed, 0o644)
}

// PutStructure records a structure result for a file.
func (c *WarmCache) PutStructure(path string, s *protocol.FileStructure) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot.Structures[path] = s
}

// PutContext records a context result keyed by file and symbol.
func (c *WarmCache) PutContext(path, symbol string, res *protocol.ContextResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot.Contexts[path+"#"+symbol] = res
}

// PutEdges records call edges for a symbol.
func (c *WarmCache) PutEdges(symbol string, edges []protocol.CallEdge) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot.Edges[symbol] = edges
}

// PutSymbols replaces the searchable symbol list.
func (c *WarmCache) PutSymbols(symbols []protocol.SearchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot.Symbols = symbols
}

// Structure returns the cached structure for a file, if any.
func (c *WarmCache) Structure(path string) *protocol.FileStructure {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot.Structures[path]
}

// Context returns the cached context for a file and symbol, if any.
func (c *WarmCache) Context(path, symbol string) *protocol.ContextResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot.Contexts[path+"#"+symbol]
}

// Edges returns the cached call edges for a symbol.
func (c *WarmCache) Edges(symbol string) []protocol.CallEdge {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot.Edges[symbol]
}

// Search matches cached symbols by substring.
func (c *WarmCache) Search(pattern string, limit int) []protocol.SearchResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if limit <= 0 {
		limit = 20
	}
	needle := strings.ToLower(pattern)
	var out []protocol.SearchResult
	for _, s := range c.snapshot.Symbols {
		if strings.Contains(strings.ToLower(s.Symbol), needle) {
			out = append(out, s)
			if len(out) >= limit {
				break
			}
		}
	}
	return out
}

// Len returns the number of cached entries across sections.
func (c *WarmCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.snapshot.Structures) + len(c.snapshot.Contexts) +
		len(c.snapshot.Edges) + len(c.snapshot.Symbols)
}
