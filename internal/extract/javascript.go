package extract

import (
	"regexp"

	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/types"
)

// jsRules are the rule set shared by JavaScript and TypeScript. Patterns are
// anchored to line starts with leading whitespace and optional export/async
// modifiers tolerated.
func jsRules() []lineRule {
	return []lineRule{
		{kind: types.SymbolKindFunction, re: regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*(\w+)\s*\(`)},
		// Arrow function assigned to a const
		{kind: types.SymbolKindFunction, re: regexp.MustCompile(`^\s*(?:export\s+)?const\s+(\w+)\s*=\s*(?:async\s+)?(?:\([^)]*\)|\w+)\s*=>`)},
		{kind: types.SymbolKindClass, re: regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:abstract\s+)?class\s+(\w+)`)},
		{kind: types.SymbolKindConst, re: regexp.MustCompile(`^\s*(?:export\s+)?const\s+(\w+)\b`), rename: dropConstKeywords},
		{kind: types.SymbolKindVariable, re: regexp.MustCompile(`^\s*(?:export\s+)?(?:let|var)\s+(\w+)\b`)},
		{kind: types.SymbolKindImport, re: regexp.MustCompile(`^\s*import\s+.*?from\s+['"]([^'"]+)['"]`)},
		{kind: types.SymbolKindImport, re: regexp.MustCompile(`^\s*import\s+['"]([^'"]+)['"]`)},
		// Method-in-class heuristic: an indented name(...) { line, with an
		// optional return type annotation before the brace
		{kind: types.SymbolKindMethod, re: regexp.MustCompile(`^\s{2,}(?:static\s+)?(?:async\s+)?(\w+)\s*\([^)]*\)\s*(?::[^{]*)?\{`), rename: dropControlKeywords},
	}
}

// NewJavaScriptExtractor returns the regex-rule extractor for JavaScript.
func NewJavaScriptExtractor() Extractor {
	return &ruleExtractor{
		language:   "javascript",
		extensions: []string{".js", ".jsx", ".mjs", ".cjs"},
		rules:      jsRules(),
	}
}

// NewTypeScriptExtractor returns the regex-rule extractor for TypeScript:
// the JavaScript rules plus interface, type alias, enum, and a generic-aware
// class pattern. The generic pattern and the plain class pattern can both
// match a `class Foo<T>` line; the (name, file) duplicate suppression in the
// rule engine collapses them to one symbol.
func NewTypeScriptExtractor() Extractor {
	rules := []lineRule{
		{kind: types.SymbolKindInterface, re: regexp.MustCompile(`^\s*(?:export\s+)?interface\s+(\w+)`)},
		{kind: types.SymbolKindType, re: regexp.MustCompile(`^\s*(?:export\s+)?type\s+(\w+)\s*(?:<[^>]*>)?\s*=`)},
		{kind: types.SymbolKindEnum, re: regexp.MustCompile(`^\s*(?:export\s+)?(?:const\s+)?enum\s+(\w+)`)},
		{kind: types.SymbolKindClass, re: regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:abstract\s+)?class\s+(\w+)\s*<`)},
	}
	rules = append(rules, jsRules()...)

	return &ruleExtractor{
		language:   "typescript",
		extensions: []string{".ts", ".tsx"},
		rules:      rules,
	}
}
