package watch

import (
	"sync"

	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/types"
)

// ChangeLog is a bounded in-memory record of observed file changes, oldest
// evicted first. It records raw observations before debouncing, so a burst of
// writes appears here even when only one re-index happens.
type ChangeLog struct {
	mu      sync.Mutex
	entries []types.FileChange
	cap     int
}

// NewChangeLog creates a log bounded at capacity entries. A non-positive
// capacity falls back to the default.
func NewChangeLog(capacity int) *ChangeLog {
	if capacity <= 0 {
		capacity = types.DefaultRecentChangesCap
	}
	return &ChangeLog{cap: capacity}
}

// Append records a change, evicting the oldest entry when full.
func (l *ChangeLog) Append(change types.FileChange) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) >= l.cap {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:len(l.entries)-1]
	}
	l.entries = append(l.entries, change)
}

// Recent returns up to n changes, most recent first. n <= 0 returns all.
func (l *ChangeLog) Recent(n int) []types.FileChange {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := len(l.entries)
	if n <= 0 || n > total {
		n = total
	}

	out := make([]types.FileChange, n)
	for i := 0; i < n; i++ {
		out[i] = l.entries[total-1-i]
	}
	return out
}

// Len returns the number of recorded changes.
func (l *ChangeLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
