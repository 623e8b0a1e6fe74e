package index

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/config"
	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/debug"
	cerrors "github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/errors"
	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/extract"
	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/policy"
	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/types"
)

// Indexer owns the symbol table and provides the file-scoped indexing entry
// points used by on-demand queries and the watcher's incremental pipeline.
// It is safe for concurrent use.
type Indexer struct {
	cfg      *config.Config
	table    *SymbolTable
	registry *extract.Registry
	detector *ChangeDetector
	pol      policy.PathPolicy

	statsMu     sync.Mutex
	indexPasses int
	errorCount  int64
	lastUpdate  time.Time

	// refCache holds find_references results per query; entries touching a
	// changed or deleted file are purged so no stale reference survives a
	// deletion.
	refMu    sync.Mutex
	refCache map[string][]types.Reference

	autoMu      sync.Mutex
	autoIndexed bool
}

// NewIndexer creates an indexer over a fresh symbol table.
func NewIndexer(cfg *config.Config, registry *extract.Registry, pol policy.PathPolicy) *Indexer {
	return &Indexer{
		cfg:      cfg,
		table:    NewSymbolTable(),
		registry: registry,
		detector: NewChangeDetector(),
		pol:      pol,
		refCache: make(map[string][]types.Reference),
	}
}

// Table exposes the symbol table for queries.
func (ix *Indexer) Table() *SymbolTable { return ix.table }

// Detector exposes the change detector shared with the watcher.
func (ix *Indexer) Detector() *ChangeDetector { return ix.detector }

// Registry exposes the extractor registry.
func (ix *Indexer) Registry() *extract.Registry { return ix.registry }

// IndexFile extracts symbols from path and replaces the file's contribution
// in the table. Policy-rejected and unsupported paths are silently skipped.
// An extraction failure leaves the file's previous symbols in place and is
// returned as a non-fatal per-file error.
func (ix *Indexer) IndexFile(path string) (int, error) {
	if !ix.pol.IsPathAllowed(path) {
		return 0, nil
	}
	extractor, ok := ix.registry.ForPath(path)
	if !ok {
		return 0, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		ix.recordErrorLocked()
		return 0, cerrors.NewFileError("read", path, err)
	}
	if ix.cfg.Index.MaxFileSize > 0 && int64(len(content)) > ix.cfg.Index.MaxFileSize {
		debug.LogIndexing("skipping oversized file %s (%d bytes)\n", path, len(content))
		return 0, nil
	}

	symbols, err := extractor.Extract(path, content)
	if err != nil {
		debug.LogIndexing("extraction failed for %s: %v\n", path, err)
		ix.recordErrorLocked()
		return 0, err
	}

	ix.table.ReplaceFile(path, symbols)
	ix.detector.Remember(path, content)
	ix.invalidateReferencesForContent(path, content)

	ix.statsMu.Lock()
	ix.indexPasses++
	ix.lastUpdate = time.Now()
	ix.statsMu.Unlock()

	debug.LogIndexing("indexed %s: %d symbols\n", path, len(symbols))
	return len(symbols), nil
}

// RemoveFile drops every trace of path: symbols, stored hash, and any cached
// references that touch it.
func (ix *Indexer) RemoveFile(path string) {
	ix.table.RemoveFile(path)
	ix.detector.Forget(path)
	ix.InvalidateReferences(path)

	ix.statsMu.Lock()
	ix.lastUpdate = time.Now()
	ix.statsMu.Unlock()

	debug.LogIndexing("removed %s from index\n", path)
}

// IndexDirectory walks root and indexes every supported, policy-allowed file
// with bounded parallelism. Per-file failures are counted, not propagated.
func (ix *Indexer) IndexDirectory(ctx context.Context, root string) (int, error) {
	var candidates []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if path != root && !ix.pol.IsPathAllowed(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if !ix.registry.Supports(path) || !ix.pol.IsPathAllowed(path) {
			return nil
		}
		candidates = append(candidates, path)
		if ix.cfg.Index.MaxFileCount > 0 && len(candidates) >= ix.cfg.Index.MaxFileCount {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	var mu sync.Mutex
	indexed := 0
	for _, path := range candidates {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			if _, err := ix.IndexFile(path); err != nil {
				return nil // already counted, keep going
			}
			mu.Lock()
			indexed++
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return indexed, err
	}
	return indexed, nil
}

// EnsureIndexed runs a one-time bulk index of the configured directories
// when the table is still empty. Search and reference queries call this so
// the system works without the watcher ("auto-index on search").
func (ix *Indexer) EnsureIndexed(ctx context.Context) {
	ix.autoMu.Lock()
	defer ix.autoMu.Unlock()

	if ix.autoIndexed || ix.table.FileCount() > 0 {
		ix.autoIndexed = true
		return
	}

	for _, dir := range ix.cfg.WatchedDirectories() {
		if !dir.Enabled {
			continue
		}
		if _, err := ix.IndexDirectory(ctx, dir.Path); err != nil {
			debug.LogIndexing("auto-index of %s aborted: %v\n", dir.Path, err)
		}
	}
	ix.autoIndexed = true
}

// Search queries the symbol table.
func (ix *Indexer) Search(query string, opts SearchOptions) []Match {
	return ix.table.Search(query, opts)
}

// FindReferences scans the configured directories for occurrences of name.
// Results are cached per query until a file they touch changes.
func (ix *Indexer) FindReferences(name string, extensions []string, maxResults int) []types.Reference {
	key := name + "|" + strings.Join(extensions, ",")

	ix.refMu.Lock()
	if cached, ok := ix.refCache[key]; ok {
		out := make([]types.Reference, len(cached))
		copy(out, cached)
		ix.refMu.Unlock()
		return out
	}
	ix.refMu.Unlock()

	opts := extract.RefScanOptions{
		Extensions:   extensions,
		ContextLines: ix.cfg.Search.ContextLines,
		MaxResults:   maxResults,
	}

	var refs []types.Reference
	for _, dir := range ix.cfg.WatchedDirectories() {
		if !dir.Enabled {
			continue
		}
		refs = append(refs, extract.ScanReferences(dir.Path, name, ix.registry, ix.pol, opts)...)
	}
	if maxResults > 0 && len(refs) > maxResults {
		refs = refs[:maxResults]
	}

	ix.refMu.Lock()
	ix.refCache[key] = refs
	ix.refMu.Unlock()

	out := make([]types.Reference, len(refs))
	copy(out, refs)
	return out
}

// InvalidateReferences drops cached reference entries that include path, so
// a deleted or rewritten file leaves no stale references behind.
func (ix *Indexer) InvalidateReferences(path string) {
	ix.refMu.Lock()
	defer ix.refMu.Unlock()

	for key, refs := range ix.refCache {
		for _, ref := range refs {
			if ref.FilePath == path {
				delete(ix.refCache, key)
				break
			}
		}
	}
}

// invalidateReferencesForContent extends InvalidateReferences for index
// passes: a newly added file intersects no cached entry by path, so entries
// whose symbol name occurs in the new content are dropped too. The next query
// rescans and picks up the new occurrences.
func (ix *Indexer) invalidateReferencesForContent(path string, content []byte) {
	ix.refMu.Lock()
	defer ix.refMu.Unlock()

	for key, refs := range ix.refCache {
		name, _, _ := strings.Cut(key, "|")
		if bytes.Contains(content, []byte(name)) {
			delete(ix.refCache, key)
			continue
		}
		for _, ref := range refs {
			if ref.FilePath == path {
				delete(ix.refCache, key)
				break
			}
		}
	}
}

// CachedReferences returns cached references for a symbol name, if present.
// Used by tests to verify deletion invariants.
func (ix *Indexer) CachedReferences(name string) ([]types.Reference, bool) {
	ix.refMu.Lock()
	defer ix.refMu.Unlock()
	refs, ok := ix.refCache[name+"|"]
	return refs, ok
}

// RecordError increments the indexing error counter. The watcher calls this
// for failures in its pipeline so they surface in statistics.
func (ix *Indexer) RecordError() {
	ix.recordErrorLocked()
}

func (ix *Indexer) recordErrorLocked() {
	ix.statsMu.Lock()
	ix.errorCount++
	ix.statsMu.Unlock()
}

// Stats returns the indexer's portion of the statistics snapshot. Watcher
// state (is_watching, watched_directories) is merged in by the caller that
// owns the watcher.
func (ix *Indexer) Stats() types.IndexStats {
	ix.statsMu.Lock()
	passes := ix.indexPasses
	errs := ix.errorCount
	last := ix.lastUpdate
	ix.statsMu.Unlock()

	files := ix.table.Files()
	breakdown := make(map[string]int)
	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(f))
		if ext != "" {
			breakdown[ext]++
		}
	}

	symbolCount := ix.table.SymbolCount()

	ix.refMu.Lock()
	cachedRefs := 0
	for _, refs := range ix.refCache {
		cachedRefs += len(refs)
	}
	ix.refMu.Unlock()

	return types.IndexStats{
		FilesIndexed:      passes,
		SymbolsFound:      symbolCount,
		IndexedFilesCount: len(files),
		FileTypeBreakdown: breakdown,
		IndexingErrors:    errs,
		LastUpdate:        last,
		MemoryUsage:       int64(symbolCount+cachedRefs) * types.SymbolMemoryEstimate,
	}
}
