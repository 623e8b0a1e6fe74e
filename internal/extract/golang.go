package extract

import (
	"path"
	"regexp"

	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/types"
)

// NewGoExtractor returns the regex-rule extractor for Go source. Rules are
// ordered so the more specific pattern (method, struct, interface) claims a
// name before the generic one (func, type).
func NewGoExtractor() Extractor {
	return &ruleExtractor{
		language:   "go",
		extensions: []string{".go"},
		rules: []lineRule{
			{kind: types.SymbolKindMethod, re: regexp.MustCompile(`^func\s+\([^)]+\)\s+(\w+)\s*\(`)},
			{kind: types.SymbolKindFunction, re: regexp.MustCompile(`^func\s+(\w+)\s*\(`)},
			{kind: types.SymbolKindStruct, re: regexp.MustCompile(`^type\s+(\w+)\s+struct\b`)},
			{kind: types.SymbolKindInterface, re: regexp.MustCompile(`^type\s+(\w+)\s+interface\b`)},
			{kind: types.SymbolKindType, re: regexp.MustCompile(`^type\s+(\w+)\b`)},
			{kind: types.SymbolKindConst, re: regexp.MustCompile(`^const\s+(\w+)\b`)},
			{kind: types.SymbolKindVariable, re: regexp.MustCompile(`^var\s+(\w+)\b`)},
			{kind: types.SymbolKindPackage, re: regexp.MustCompile(`^package\s+(\w+)\b`)},
			// Single-line import and gofmt-indented lines of an import block
			{kind: types.SymbolKindImport, re: regexp.MustCompile(`^import\s+"([^"]+)"`), rename: path.Base},
			{kind: types.SymbolKindImport, re: regexp.MustCompile(`^\t"([^"]+)"$`), rename: path.Base},
		},
	}
}
