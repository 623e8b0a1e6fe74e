package watch

import (
	"fmt"
	"testing"

	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/types"
)

func TestChangeLog_BoundedEviction(t *testing.T) {
	l := NewChangeLog(3)

	for i := 0; i < 5; i++ {
		l.Append(types.FileChange{FilePath: fmt.Sprintf("f%d.py", i)})
	}

	if got := l.Len(); got != 3 {
		t.Fatalf("Expected log capped at 3, got %d", got)
	}

	recent := l.Recent(0)
	// Most recent first, oldest two evicted.
	want := []string{"f4.py", "f3.py", "f2.py"}
	for i, path := range want {
		if recent[i].FilePath != path {
			t.Errorf("recent[%d]: expected %s, got %s", i, path, recent[i].FilePath)
		}
	}
}

func TestChangeLog_RecentLimit(t *testing.T) {
	l := NewChangeLog(10)
	for i := 0; i < 4; i++ {
		l.Append(types.FileChange{FilePath: fmt.Sprintf("f%d.py", i)})
	}

	recent := l.Recent(2)
	if len(recent) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(recent))
	}
	if recent[0].FilePath != "f3.py" || recent[1].FilePath != "f2.py" {
		t.Errorf("Expected most recent first, got %v", recent)
	}

	if got := len(l.Recent(100)); got != 4 {
		t.Errorf("Expected limit above length to return all, got %d", got)
	}
}

func TestChangeLog_DefaultCapacity(t *testing.T) {
	l := NewChangeLog(0)
	if l.cap != types.DefaultRecentChangesCap {
		t.Errorf("Expected default capacity %d, got %d", types.DefaultRecentChangesCap, l.cap)
	}
}
