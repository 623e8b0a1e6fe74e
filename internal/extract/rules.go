package extract

import (
	"regexp"
	"strings"

	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/types"
)

// lineRule is one independent per-line pattern. The regex must expose the
// symbol name as its first capture group; an optional rename hook can rewrite
// or veto the captured name (returning "" skips the match).
type lineRule struct {
	kind   types.SymbolKind
	re     *regexp.Regexp
	rename func(name string) string
}

// ruleExtractor applies an ordered list of line rules to each line of a file.
// This is a deliberate simplification, not a parser: each rule fires
// independently per line, and a single line may match several rules.
// Duplicate symbols are suppressed per (name, file) with the first rule in
// order winning, so higher-fidelity rules belong earlier in the list.
type ruleExtractor struct {
	language   string
	extensions []string
	rules      []lineRule
}

func (e *ruleExtractor) Language() string     { return e.language }
func (e *ruleExtractor) Extensions() []string { return e.extensions }

func (e *ruleExtractor) Extract(path string, content []byte) ([]types.Symbol, error) {
	lines := strings.Split(string(content), "\n")
	symbols := make([]types.Symbol, 0, 16)
	seen := make(map[string]struct{})

	for i, line := range lines {
		for _, rule := range e.rules {
			m := rule.re.FindStringSubmatch(line)
			if m == nil || len(m) < 2 {
				continue
			}
			name := m[1]
			if rule.rename != nil {
				name = rule.rename(name)
			}
			if name == "" {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			symbols = append(symbols, types.Symbol{
				Name:           name,
				Kind:           rule.kind,
				FilePath:       path,
				LineNumber:     i + 1,
				DefinitionText: strings.TrimSpace(line),
			})
		}
	}

	return symbols, nil
}

// controlKeywords are names a method-in-class heuristic must never produce.
var controlKeywords = map[string]struct{}{
	"if": {}, "for": {}, "while": {}, "switch": {}, "catch": {},
	"function": {}, "return": {}, "else": {},
	"do": {}, "try": {}, "new": {}, "typeof": {}, "await": {},
}

func dropControlKeywords(name string) string {
	if _, ok := controlKeywords[name]; ok {
		return ""
	}
	return name
}

// dropConstKeywords vetoes the const rule on `const enum X`, which declares
// an enum named X, not a const named enum.
func dropConstKeywords(name string) string {
	if name == "enum" {
		return ""
	}
	return name
}
