package index

import (
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/debug"
)

// ChangeDetector decides whether a file's content actually changed since the
// last index pass, so no-op writes (touch without change) skip re-indexing.
// The path→hash table is its own resource with its own lock, independent of
// the symbol table.
type ChangeDetector struct {
	mu     sync.Mutex
	hashes map[string]uint64
}

// NewChangeDetector creates an empty detector.
func NewChangeDetector() *ChangeDetector {
	return &ChangeDetector{hashes: make(map[string]uint64)}
}

// Hash computes the content hash used for change detection.
func Hash(content []byte) uint64 {
	return xxhash.Sum64(content)
}

// ShouldProcess compares content against the last recorded hash for path.
// It returns false when the hash is unchanged, and records the new hash
// (returning true) when it differs or no hash was recorded.
func (d *ChangeDetector) ShouldProcess(path string, content []byte) bool {
	h := Hash(content)

	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.hashes[path]; ok && prev == h {
		return false
	}
	d.hashes[path] = h
	return true
}

// CheckFile reads path and applies ShouldProcess. A read failure is
// fail-open: the file is processed rather than silently left stale.
func (d *ChangeDetector) CheckFile(path string) bool {
	content, err := os.ReadFile(path)
	if err != nil {
		debug.LogIndexing("change detector could not read %s, proceeding: %v\n", path, err)
		return true
	}
	return d.ShouldProcess(path, content)
}

// Remember records the hash for path without a comparison, for callers that
// have already decided to index.
func (d *ChangeDetector) Remember(path string, content []byte) {
	h := Hash(content)
	d.mu.Lock()
	d.hashes[path] = h
	d.mu.Unlock()
}

// Forget drops the stored hash for path, e.g. after a deletion.
func (d *ChangeDetector) Forget(path string) {
	d.mu.Lock()
	delete(d.hashes, path)
	d.mu.Unlock()
}

// LastHash returns the recorded hash for path, if any.
func (d *ChangeDetector) LastHash(path string) (uint64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.hashes[path]
	return h, ok
}
