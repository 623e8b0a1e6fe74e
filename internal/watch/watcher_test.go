package watch

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/config"
	cerrors "github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/errors"
	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/index"
	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/policy"
	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/types"
)

// fakeIndexer records pipeline calls and signals them on channels so tests
// can wait without polling.
type fakeIndexer struct {
	mu          sync.Mutex
	indexed     []string
	removed     []string
	invalidated []string

	indexedCh chan string
	removedCh chan string
}

func newFakeIndexer() *fakeIndexer {
	return &fakeIndexer{
		indexedCh: make(chan string, 16),
		removedCh: make(chan string, 16),
	}
}

func (f *fakeIndexer) IndexFile(path string) (int, error) {
	f.mu.Lock()
	f.indexed = append(f.indexed, path)
	f.mu.Unlock()
	f.indexedCh <- path
	return 1, nil
}

func (f *fakeIndexer) RemoveFile(path string) {
	f.mu.Lock()
	f.removed = append(f.removed, path)
	f.mu.Unlock()
	f.removedCh <- path
}

func (f *fakeIndexer) InvalidateReferences(path string) {
	f.mu.Lock()
	f.invalidated = append(f.invalidated, path)
	f.mu.Unlock()
}

func (f *fakeIndexer) RecordError() {}

func (f *fakeIndexer) indexCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.indexed)
}

// extSupport supports a fixed extension set without a full registry.
type extSupport struct{}

func (extSupport) Supports(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py", ".js", ".ts", ".go":
		return true
	}
	return false
}

func watchConfig(root string, debounceMs int) *config.Config {
	cfg := config.Default()
	cfg.Project.Root = root
	cfg.Directories = []types.WatchDirectory{{Path: root, Enabled: true}}
	cfg.Index.WatchDebounceMs = debounceMs
	return cfg
}

func startedWatcher(t *testing.T, root string, fake *fakeIndexer) *Watcher {
	t.Helper()
	w := NewWatcher(watchConfig(root, 30), fake, extSupport{}, index.NewChangeDetector(), policy.AllowAll{})
	require.NoError(t, w.Start())
	t.Cleanup(func() {
		if w.IsActive() {
			_ = w.Stop()
		}
	})
	return w
}

func waitFor(t *testing.T, ch chan string, what string) string {
	t.Helper()
	select {
	case path := <-ch:
		return path
	case <-time.After(3 * time.Second):
		t.Fatalf("Timeout waiting for %s", what)
		return ""
	}
}

func TestWatcher_BurstIndexesOnce(t *testing.T) {
	dir := t.TempDir()
	fake := newFakeIndexer()
	w := startedWatcher(t, dir, fake)

	path := filepath.Join(dir, "a.py")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0644))
	}

	got := waitFor(t, fake.indexedCh, "index after write burst")
	if got != path {
		t.Errorf("Expected %s to be indexed, got %s", path, got)
	}

	// The burst must not produce further dispatches.
	select {
	case extra := <-fake.indexedCh:
		t.Errorf("Expected one index pass for the burst, got another for %s", extra)
	case <-time.After(150 * time.Millisecond):
	}

	if w.Stats().EventsProcessed == 0 {
		t.Error("Expected raw events to be counted")
	}
}

func TestWatcher_DeleteRemovesFile(t *testing.T) {
	dir := t.TempDir()
	fake := newFakeIndexer()
	startedWatcher(t, dir, fake)

	path := filepath.Join(dir, "a.py")
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0644))
	waitFor(t, fake.indexedCh, "initial index")

	require.NoError(t, os.Remove(path))
	got := waitFor(t, fake.removedCh, "removal")
	if got != path {
		t.Errorf("Expected %s removed, got %s", path, got)
	}

	fake.mu.Lock()
	invalidated := len(fake.invalidated) > 0
	fake.mu.Unlock()
	if !invalidated {
		t.Error("Expected cached references to be invalidated on delete")
	}
}

func TestWatcher_UnsupportedExtensionIgnored(t *testing.T) {
	dir := t.TempDir()
	fake := newFakeIndexer()
	startedWatcher(t, dir, fake)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi\n"), 0644))

	select {
	case path := <-fake.indexedCh:
		t.Errorf("Expected .txt to be ignored, indexed %s", path)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_NewDirectoryIsWatched(t *testing.T) {
	dir := t.TempDir()
	fake := newFakeIndexer()
	startedWatcher(t, dir, fake)

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))
	// Give the watcher a moment to subscribe the new directory.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(sub, "b.py")
	require.NoError(t, os.WriteFile(path, []byte("y = 2\n"), 0644))

	got := waitFor(t, fake.indexedCh, "index in new subdirectory")
	if got != path {
		t.Errorf("Expected %s, got %s", path, got)
	}
}

// denyAll rejects every path, so nothing the watcher sees may be processed.
type denyAll struct{}

func (denyAll) IsPathAllowed(string) bool { return false }

func TestWatcher_PolicyRejectedDeleteIgnored(t *testing.T) {
	dir := t.TempDir()
	fake := newFakeIndexer()
	w := NewWatcher(watchConfig(dir, 30), fake, extSupport{}, index.NewChangeDetector(), denyAll{})
	require.NoError(t, w.Start())
	t.Cleanup(func() {
		if w.IsActive() {
			_ = w.Stop()
		}
	})

	path := filepath.Join(dir, "secret.py")
	require.NoError(t, os.WriteFile(path, []byte("token = 1\n"), 0644))
	require.NoError(t, os.Remove(path))

	select {
	case got := <-fake.removedCh:
		t.Errorf("Policy-rejected deletion must not reach the indexer, got %s", got)
	case got := <-fake.indexedCh:
		t.Errorf("Policy-rejected file must not be indexed, got %s", got)
	case <-time.After(200 * time.Millisecond):
	}

	if changes := w.RecentChanges(10); len(changes) != 0 {
		t.Errorf("Policy-rejected events must not be logged, got %+v", changes)
	}
	if got := w.Stats().EventsProcessed; got != 0 {
		t.Errorf("Policy-rejected events must not be counted, got %d", got)
	}
}

func TestWatcher_StartStopIdempotent(t *testing.T) {
	dir := t.TempDir()
	fake := newFakeIndexer()
	w := NewWatcher(watchConfig(dir, 30), fake, extSupport{}, index.NewChangeDetector(), policy.AllowAll{})

	if err := w.Stop(); !errors.Is(err, cerrors.ErrNotWatching) {
		t.Errorf("Expected ErrNotWatching before start, got %v", err)
	}

	require.NoError(t, w.Start())
	if err := w.Start(); !errors.Is(err, cerrors.ErrAlreadyWatching) {
		t.Errorf("Expected ErrAlreadyWatching, got %v", err)
	}
	if !w.IsActive() {
		t.Error("Expected watcher active")
	}

	require.NoError(t, w.Stop())
	if w.IsActive() {
		t.Error("Expected watcher inactive after stop")
	}
	if err := w.Stop(); !errors.Is(err, cerrors.ErrNotWatching) {
		t.Errorf("Expected ErrNotWatching after stop, got %v", err)
	}

	// Restart after a full stop works.
	require.NoError(t, w.Start())
	require.NoError(t, w.Stop())
}

func TestWatcher_StopDiscardsPendingChanges(t *testing.T) {
	dir := t.TempDir()
	fake := newFakeIndexer()
	w := NewWatcher(watchConfig(dir, 500), fake, extSupport{}, index.NewChangeDetector(), policy.AllowAll{})
	require.NoError(t, w.Start())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.py"), []byte("x = 1\n"), 0644))
	// Let the event reach the debouncer, then stop inside the window.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, w.Stop())

	if got := fake.indexCount(); got != 0 {
		t.Errorf("Expected pending change to be discarded on stop, got %d index calls", got)
	}
}

func TestWatcher_RecentChanges(t *testing.T) {
	dir := t.TempDir()
	fake := newFakeIndexer()
	w := startedWatcher(t, dir, fake)

	path := filepath.Join(dir, "a.py")
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0644))
	waitFor(t, fake.indexedCh, "index")

	changes := w.RecentChanges(10)
	if len(changes) == 0 {
		t.Fatal("Expected recorded changes")
	}
	if changes[0].FilePath != path {
		t.Errorf("Expected most recent change for %s, got %s", path, changes[0].FilePath)
	}
	if changes[0].ChangeType != types.ChangeTypeAdded && changes[0].ChangeType != types.ChangeTypeModified {
		t.Errorf("Unexpected change type %s", changes[0].ChangeType)
	}
}
