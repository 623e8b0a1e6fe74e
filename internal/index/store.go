// Package index owns the in-memory symbol table and the indexing pipeline
// entry points used both by on-demand queries and the watcher's incremental
// updates.
package index

import (
	"sync"

	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/types"
)

// SymbolTable maps symbol names to their definition sites and supports
// file-scoped bulk replace/remove. A secondary file_path → names index keeps
// per-file purges from scanning every name bucket.
//
// A single mutex serializes mutations and whole-table scans; replace_file is
// atomic with respect to any concurrent search.
type SymbolTable struct {
	mu sync.RWMutex

	// byName holds every symbol bucketed by name. Names are not unique.
	byName map[string][]types.Symbol

	// byFile tracks which name buckets each file contributed to.
	byFile map[string]map[string]struct{}
}

// NewSymbolTable creates an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		byName: make(map[string][]types.Symbol),
		byFile: make(map[string]map[string]struct{}),
	}
}

// ReplaceFile atomically drops all symbols owned by path and inserts
// newSymbols. Queries never observe a half-updated state.
func (t *SymbolTable) ReplaceFile(path string, newSymbols []types.Symbol) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.removeFileLocked(path)

	if len(newSymbols) == 0 {
		return
	}

	names := make(map[string]struct{}, len(newSymbols))
	for _, sym := range newSymbols {
		sym.FilePath = path
		t.byName[sym.Name] = append(t.byName[sym.Name], sym)
		names[sym.Name] = struct{}{}
	}
	t.byFile[path] = names
}

// RemoveFile drops all symbols owned by path, deleting emptied name buckets
// so the map does not grow unboundedly.
func (t *SymbolTable) RemoveFile(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.removeFileLocked(path)
}

func (t *SymbolTable) removeFileLocked(path string) {
	names, ok := t.byFile[path]
	if !ok {
		return
	}

	for name := range names {
		bucket := t.byName[name]
		kept := bucket[:0]
		for _, sym := range bucket {
			if sym.FilePath != path {
				kept = append(kept, sym)
			}
		}
		if len(kept) == 0 {
			delete(t.byName, name)
		} else {
			t.byName[name] = kept
		}
	}

	delete(t.byFile, path)
}

// SymbolsForFile returns a copy of the symbols owned by path.
func (t *SymbolTable) SymbolsForFile(path string) []types.Symbol {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names, ok := t.byFile[path]
	if !ok {
		return nil
	}

	var out []types.Symbol
	for name := range names {
		for _, sym := range t.byName[name] {
			if sym.FilePath == path {
				out = append(out, sym)
			}
		}
	}
	return out
}

// HasFile reports whether path has contributed any symbols.
func (t *SymbolTable) HasFile(path string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.byFile[path]
	return ok
}

// FileCount returns the number of files with indexed symbols.
func (t *SymbolTable) FileCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byFile)
}

// SymbolCount returns the total number of stored symbols.
func (t *SymbolTable) SymbolCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	total := 0
	for _, bucket := range t.byName {
		total += len(bucket)
	}
	return total
}

// Files returns the indexed file paths.
func (t *SymbolTable) Files() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	files := make([]string, 0, len(t.byFile))
	for path := range t.byFile {
		files = append(files, path)
	}
	return files
}
