package watch

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/config"
	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/debug"
	cerrors "github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/errors"
	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/index"
	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/policy"
	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/types"
)

// Indexer is the slice of the indexing pipeline the watcher drives.
type Indexer interface {
	IndexFile(path string) (int, error)
	RemoveFile(path string)
	InvalidateReferences(path string)
	RecordError()
}

// Supported reports whether path has an extractor.
type Supported interface {
	Supports(path string) bool
}

// Stats is a snapshot of watcher activity.
type Stats struct {
	IsActive        bool      `json:"is_active"`
	WatchedDirs     int       `json:"watched_directories"`
	EventsProcessed int64     `json:"events_processed"`
	ErrorCount      int64     `json:"error_count"`
	LastEventTime   time.Time `json:"last_event_time"`
}

// Watcher subscribes to file-system events on the configured directories and
// feeds debounced changes into the indexer. Start and Stop are idempotent;
// the rest of the system keeps working when watching is unavailable.
type Watcher struct {
	cfg       *config.Config
	indexer   Indexer
	supported Supported
	detector  *index.ChangeDetector
	pol       policy.PathPolicy
	changes   *ChangeLog

	mu        sync.Mutex
	active    bool
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	done      chan struct{}
	wg        sync.WaitGroup

	statsMu         sync.Mutex
	watchedDirs     int
	eventsProcessed int64
	errorCount      int64
	lastEventTime   time.Time
}

// NewWatcher creates a watcher. Monitoring does not begin until Start.
func NewWatcher(cfg *config.Config, ix Indexer, supported Supported, detector *index.ChangeDetector, pol policy.PathPolicy) *Watcher {
	return &Watcher{
		cfg:       cfg,
		indexer:   ix,
		supported: supported,
		detector:  detector,
		pol:       pol,
		changes:   NewChangeLog(cfg.Index.RecentChangesCap),
	}
}

// Start begins monitoring the enabled configured directories. Calling Start
// while active returns ErrAlreadyWatching and changes nothing.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.active {
		return cerrors.ErrAlreadyWatching
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return cerrors.NewWatchError("start", err)
	}

	dirCount := 0
	for _, dir := range w.cfg.WatchedDirectories() {
		if !dir.Enabled {
			continue
		}
		n, err := addWatchesRecursive(fsWatcher, dir.Path, w.pol)
		if err != nil {
			debug.LogWatch("could not watch %s: %v\n", dir.Path, err)
			continue
		}
		dirCount += n
	}
	if dirCount == 0 {
		fsWatcher.Close()
		return cerrors.NewWatchError("start", os.ErrNotExist)
	}

	delay := time.Duration(w.cfg.Index.WatchDebounceMs) * time.Millisecond
	if delay <= 0 {
		delay = types.DefaultWatchDebounceMs * time.Millisecond
	}

	w.fsWatcher = fsWatcher
	w.debouncer = NewDebouncer(delay)
	w.done = make(chan struct{})
	w.active = true

	w.statsMu.Lock()
	w.watchedDirs = dirCount
	w.statsMu.Unlock()

	w.wg.Add(1)
	go w.processEvents(w.fsWatcher, w.debouncer, w.done)

	debug.LogWatch("monitoring started, %d directories\n", dirCount)
	return nil
}

// Stop ends monitoring. Pending debounced events are discarded, not
// dispatched. Calling Stop while inactive returns ErrNotWatching.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.active {
		w.mu.Unlock()
		return cerrors.ErrNotWatching
	}

	w.active = false
	w.debouncer.Stop()
	close(w.done)
	w.fsWatcher.Close()
	w.fsWatcher = nil
	w.debouncer = nil
	w.mu.Unlock()

	w.wg.Wait()

	w.statsMu.Lock()
	w.watchedDirs = 0
	w.statsMu.Unlock()

	debug.LogWatch("monitoring stopped\n")
	return nil
}

// IsActive reports whether monitoring is running.
func (w *Watcher) IsActive() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

// RecentChanges returns up to n observed changes, most recent first.
func (w *Watcher) RecentChanges(n int) []types.FileChange {
	return w.changes.Recent(n)
}

// Stats returns a snapshot of watcher activity. The active flag is read
// before statsMu so the two locks are never held together.
func (w *Watcher) Stats() Stats {
	active := w.IsActive()

	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	return Stats{
		IsActive:        active,
		WatchedDirs:     w.watchedDirs,
		EventsProcessed: w.eventsProcessed,
		ErrorCount:      w.errorCount,
		LastEventTime:   w.lastEventTime,
	}
}

// processEvents is the watch loop. Errors are counted and logged; they never
// terminate the loop. Only watcher shutdown does.
func (w *Watcher) processEvents(fsWatcher *fsnotify.Watcher, debouncer *Debouncer, done chan struct{}) {
	defer w.wg.Done()

	for {
		select {
		case <-done:
			return

		case event, ok := <-fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(fsWatcher, debouncer, event)

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return
			}
			debug.LogWatch("watch error: %v\n", err)
			w.countError()
			w.indexer.RecordError()
		}
	}
}

func (w *Watcher) handleEvent(fsWatcher *fsnotify.Watcher, debouncer *Debouncer, event fsnotify.Event) {
	path := event.Name

	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		// Path is gone; only files the policy would have let us index matter.
		if !w.supported.Supports(path) || !w.pol.IsPathAllowed(path) {
			return
		}
		change := types.FileChange{
			FilePath:   path,
			ChangeType: types.ChangeTypeDeleted,
			Timestamp:  time.Now(),
		}
		w.recordEvent(change)
		debouncer.Schedule(change, w.processChange)
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		// Created-then-deleted race; treat like a removal.
		if w.supported.Supports(path) && w.pol.IsPathAllowed(path) {
			change := types.FileChange{
				FilePath:   path,
				ChangeType: types.ChangeTypeDeleted,
				Timestamp:  time.Now(),
			}
			w.recordEvent(change)
			debouncer.Schedule(change, w.processChange)
		}
		return
	}

	if info.IsDir() {
		if event.Op&fsnotify.Create != 0 && w.pol.IsPathAllowed(path) {
			if _, err := addWatchesRecursive(fsWatcher, path, w.pol); err != nil {
				debug.LogWatch("could not watch new directory %s: %v\n", path, err)
				w.countError()
			}
		}
		return
	}

	if !w.supported.Supports(path) || !w.pol.IsPathAllowed(path) {
		return
	}
	if w.cfg.Index.MaxFileSize > 0 && info.Size() > w.cfg.Index.MaxFileSize {
		return
	}

	changeType := types.ChangeTypeModified
	if event.Op&fsnotify.Create != 0 {
		changeType = types.ChangeTypeAdded
	}

	change := types.FileChange{
		FilePath:   path,
		ChangeType: changeType,
		Timestamp:  time.Now(),
		FileSize:   info.Size(),
	}
	if content, err := os.ReadFile(path); err == nil {
		change.FileHash = index.Hash(content)
	}

	w.recordEvent(change)
	debouncer.Schedule(change, w.processChange)
}

// processChange runs after the debounce window for one path.
func (w *Watcher) processChange(change types.FileChange) {
	if change.ChangeType == types.ChangeTypeDeleted {
		w.indexer.RemoveFile(change.FilePath)
		w.detector.Forget(change.FilePath)
		w.indexer.InvalidateReferences(change.FilePath)
		return
	}

	if !w.detector.CheckFile(change.FilePath) {
		debug.LogWatch("content unchanged, skipping %s\n", change.FilePath)
		return
	}
	if _, err := w.indexer.IndexFile(change.FilePath); err != nil {
		debug.LogWatch("re-index failed for %s: %v\n", change.FilePath, err)
	}
}

func (w *Watcher) recordEvent(change types.FileChange) {
	w.changes.Append(change)

	w.statsMu.Lock()
	w.eventsProcessed++
	w.lastEventTime = change.Timestamp
	w.statsMu.Unlock()
}

func (w *Watcher) countError() {
	w.statsMu.Lock()
	w.errorCount++
	w.statsMu.Unlock()
}

// addWatchesRecursive subscribes root and every policy-allowed subdirectory,
// following symlinked directories at most once each to avoid cycles.
func addWatchesRecursive(fsWatcher *fsnotify.Watcher, root string, pol policy.PathPolicy) (int, error) {
	visited := make(map[string]struct{})
	return addWatchesVisited(fsWatcher, root, pol, visited)
}

func addWatchesVisited(fsWatcher *fsnotify.Watcher, dir string, pol policy.PathPolicy, visited map[string]struct{}) (int, error) {
	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		real = dir
	}
	if _, ok := visited[real]; ok {
		return 0, nil
	}
	visited[real] = struct{}{}

	if err := fsWatcher.Add(dir); err != nil {
		return 0, err
	}
	count := 1

	entries, err := os.ReadDir(dir)
	if err != nil {
		return count, nil
	}
	for _, entry := range entries {
		if !entry.IsDir() && entry.Type()&os.ModeSymlink == 0 {
			continue
		}
		sub := filepath.Join(dir, entry.Name())
		if entry.Type()&os.ModeSymlink != 0 {
			info, err := os.Stat(sub)
			if err != nil || !info.IsDir() {
				continue
			}
		}
		if !pol.IsPathAllowed(sub) {
			continue
		}
		n, err := addWatchesVisited(fsWatcher, sub, pol, visited)
		if err != nil {
			debug.LogWatch("skipping unwatchable directory %s: %v\n", sub, err)
			continue
		}
		count += n
	}
	return count, nil
}
