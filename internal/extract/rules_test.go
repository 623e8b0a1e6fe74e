package extract

import (
	"testing"

	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/types"
)

func findSymbol(symbols []types.Symbol, name string) (types.Symbol, bool) {
	for _, s := range symbols {
		if s.Name == name {
			return s, true
		}
	}
	return types.Symbol{}, false
}

func mustExtract(t *testing.T, e Extractor, path, content string) []types.Symbol {
	t.Helper()
	symbols, err := e.Extract(path, []byte(content))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	return symbols
}

func expectSymbol(t *testing.T, symbols []types.Symbol, name string, kind types.SymbolKind, line int) {
	t.Helper()
	s, ok := findSymbol(symbols, name)
	if !ok {
		t.Errorf("Expected symbol %s, not found", name)
		return
	}
	if s.Kind != kind {
		t.Errorf("Symbol %s: expected kind %s, got %s", name, kind, s.Kind)
	}
	if line > 0 && s.LineNumber != line {
		t.Errorf("Symbol %s: expected line %d, got %d", name, line, s.LineNumber)
	}
}

func TestRuleExtractor_DuplicateSuppression(t *testing.T) {
	e := NewGoExtractor()
	// Same name on two lines; only the first sighting survives.
	symbols := mustExtract(t, e, "dup.go", "func Run() {}\n\nfunc Run() {}\n")

	if len(symbols) != 1 {
		t.Fatalf("Expected 1 symbol after dedup, got %d", len(symbols))
	}
	if symbols[0].LineNumber != 1 {
		t.Errorf("Expected first sighting to win, got line %d", symbols[0].LineNumber)
	}
}

func TestRuleExtractor_DefinitionText(t *testing.T) {
	e := NewJavaScriptExtractor()
	symbols := mustExtract(t, e, "a.js", "  function   pad() {}\n")

	s, ok := findSymbol(symbols, "pad")
	if !ok {
		t.Fatal("Expected pad")
	}
	if s.DefinitionText != "function   pad() {}" {
		t.Errorf("Expected trimmed definition text, got %q", s.DefinitionText)
	}
}
