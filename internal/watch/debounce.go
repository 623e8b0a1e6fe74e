// Package watch implements live file monitoring: an fsnotify subscription
// over the configured directories, per-path debouncing of event bursts, and a
// bounded log of recent changes.
package watch

import (
	"sync"
	"time"

	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/types"
)

// Debouncer coalesces rapid event bursts per file path. Each new event for a
// path cancels the pending timer and starts a fresh one, so only the last
// event of a burst is dispatched (last write wins).
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	pending map[string]*pendingEvent
	stopped bool
}

type pendingEvent struct {
	timer  *time.Timer
	change types.FileChange
}

// NewDebouncer creates a debouncer with the given delay.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]*pendingEvent),
	}
}

// Schedule arranges for fire(change) to run after the delay, replacing any
// pending dispatch for the same path. After Stop, calls are ignored.
func (d *Debouncer) Schedule(change types.FileChange, fire func(types.FileChange)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	path := change.FilePath
	if prev, ok := d.pending[path]; ok {
		prev.timer.Stop()
	}

	pe := &pendingEvent{change: change}
	pe.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.stopped || d.pending[path] != pe {
			d.mu.Unlock()
			return
		}
		delete(d.pending, path)
		d.mu.Unlock()

		fire(pe.change)
	})
	d.pending[path] = pe
}

// Cancel drops any pending dispatch for path without firing it.
func (d *Debouncer) Cancel(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if pe, ok := d.pending[path]; ok {
		pe.timer.Stop()
		delete(d.pending, path)
	}
}

// Stop cancels every pending timer. Nothing pending is dispatched.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for path, pe := range d.pending {
		pe.timer.Stop()
		delete(d.pending, path)
	}
}

// PendingCount returns the number of paths with an undispatched event.
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
