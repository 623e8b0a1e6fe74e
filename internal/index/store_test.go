package index

import (
	"testing"

	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/types"
)

func sym(name string, kind types.SymbolKind, path string, line int) types.Symbol {
	return types.Symbol{Name: name, Kind: kind, FilePath: path, LineNumber: line}
}

func TestSymbolTable_ReplaceFile(t *testing.T) {
	table := NewSymbolTable()

	table.ReplaceFile("a.py", []types.Symbol{
		sym("alpha", types.SymbolKindFunction, "a.py", 1),
		sym("beta", types.SymbolKindClass, "a.py", 10),
	})

	if got := table.SymbolCount(); got != 2 {
		t.Fatalf("Expected 2 symbols, got %d", got)
	}

	// Re-index with different contents; old entries must be gone.
	table.ReplaceFile("a.py", []types.Symbol{
		sym("gamma", types.SymbolKindFunction, "a.py", 3),
	})

	if got := table.SymbolCount(); got != 1 {
		t.Errorf("Expected 1 symbol after replace, got %d", got)
	}
	if matches := table.Search("alpha", SearchOptions{}); len(matches) != 0 {
		t.Errorf("Expected alpha to be purged, found %d matches", len(matches))
	}
	if matches := table.Search("gamma", SearchOptions{}); len(matches) != 1 {
		t.Errorf("Expected gamma to be present, found %d matches", len(matches))
	}
}

func TestSymbolTable_ReplaceFileIdempotent(t *testing.T) {
	table := NewSymbolTable()
	symbols := []types.Symbol{
		sym("alpha", types.SymbolKindFunction, "a.py", 1),
		sym("alpha", types.SymbolKindFunction, "a.py", 20), // overload, same name
	}

	table.ReplaceFile("a.py", symbols)
	table.ReplaceFile("a.py", symbols)

	if got := table.SymbolCount(); got != 2 {
		t.Errorf("Expected re-index with identical content to not duplicate, got %d symbols", got)
	}
}

func TestSymbolTable_RemoveFile(t *testing.T) {
	table := NewSymbolTable()
	table.ReplaceFile("a.py", []types.Symbol{sym("shared", types.SymbolKindFunction, "a.py", 1)})
	table.ReplaceFile("b.py", []types.Symbol{sym("shared", types.SymbolKindFunction, "b.py", 5)})

	table.RemoveFile("a.py")

	if table.HasFile("a.py") {
		t.Error("Expected a.py to be gone")
	}
	matches := table.Search("shared", SearchOptions{})
	if len(matches) != 1 {
		t.Fatalf("Expected 1 remaining symbol, got %d", len(matches))
	}
	if matches[0].FilePath != "b.py" {
		t.Errorf("Expected surviving symbol in b.py, got %s", matches[0].FilePath)
	}
}

func TestSymbolTable_RemoveUnknownFile(t *testing.T) {
	table := NewSymbolTable()
	table.RemoveFile("never-indexed.py") // must be a no-op

	if got := table.FileCount(); got != 0 {
		t.Errorf("Expected empty table, got %d files", got)
	}
}

func TestSymbolTable_SymbolsForFile(t *testing.T) {
	table := NewSymbolTable()
	table.ReplaceFile("a.py", []types.Symbol{
		sym("one", types.SymbolKindFunction, "a.py", 1),
		sym("two", types.SymbolKindClass, "a.py", 2),
	})
	table.ReplaceFile("b.py", []types.Symbol{
		sym("one", types.SymbolKindFunction, "b.py", 9),
	})

	got := table.SymbolsForFile("a.py")
	if len(got) != 2 {
		t.Errorf("Expected 2 symbols for a.py, got %d", len(got))
	}
	for _, s := range got {
		if s.FilePath != "a.py" {
			t.Errorf("Expected only a.py symbols, got %s", s.FilePath)
		}
	}
}

func TestSymbolTable_EmptyReplaceClearsFile(t *testing.T) {
	table := NewSymbolTable()
	table.ReplaceFile("a.py", []types.Symbol{sym("alpha", types.SymbolKindFunction, "a.py", 1)})
	table.ReplaceFile("a.py", nil)

	if table.HasFile("a.py") {
		t.Error("Expected file with zero symbols to be dropped")
	}
	if got := table.SymbolCount(); got != 0 {
		t.Errorf("Expected 0 symbols, got %d", got)
	}
}
