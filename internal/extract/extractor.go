// Package extract turns file content into symbols. One extractor per source
// language, registered by file extension; adding a language is a
// registration, not a dispatch-chain edit.
package extract

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/types"
)

// Extractor produces the symbols defined in a single file's content.
type Extractor interface {
	// Language is a human-readable language name for logs and errors.
	Language() string

	// Extensions lists the file extensions (with leading dot) this
	// extractor handles.
	Extensions() []string

	// Extract returns the symbols defined in content. A returned error is a
	// per-file failure: the caller logs it and skips the file, it is never
	// fatal to a bulk operation.
	Extract(path string, content []byte) ([]types.Symbol, error)
}

// Registry maps file extensions to extractors.
type Registry struct {
	mu    sync.RWMutex
	byExt map[string]Extractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]Extractor)}
}

// NewDefaultRegistry creates a registry with all built-in extractors.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewPythonExtractor())
	r.Register(NewGoExtractor())
	r.Register(NewJavaScriptExtractor())
	r.Register(NewTypeScriptExtractor())
	return r
}

// Register adds an extractor for all of its extensions. A later registration
// for the same extension replaces the earlier one.
func (r *Registry) Register(e Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range e.Extensions() {
		r.byExt[strings.ToLower(ext)] = e
	}
}

// ForPath returns the extractor for the path's extension.
func (r *Registry) ForPath(path string) (Extractor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return e, ok
}

// Supports reports whether any extractor handles the path's extension.
func (r *Registry) Supports(path string) bool {
	_, ok := r.ForPath(path)
	return ok
}

// Extensions returns the sorted set of supported extensions.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
