package index

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/types"
)

// MatchType classifies how a symbol name matched the query, in priority
// order. Fuzzy is only attempted when enabled and the cheaper tiers fail.
type MatchType string

const (
	MatchExact    MatchType = "exact"
	MatchPrefix   MatchType = "prefix"
	MatchContains MatchType = "contains"
	MatchFuzzy    MatchType = "fuzzy"
)

var matchPriority = map[MatchType]int{
	MatchExact:    0,
	MatchPrefix:   1,
	MatchContains: 2,
	MatchFuzzy:    3,
}

// SearchOptions filters and shapes a symbol search.
type SearchOptions struct {
	Kind       types.SymbolKind
	Fuzzy      bool
	Extensions []string
	MaxResults int
}

// Match is one search result: the symbol plus how it matched and a
// similarity score for fuzzy-tier ranking context.
type Match struct {
	types.Symbol
	MatchType MatchType `json:"match_type"`
	Score     float64   `json:"score,omitempty"`
}

// Search returns symbols matching query, filtered by kind and file
// extension, ordered by (match priority, file path, line number). An empty
// result is a normal outcome, not an error.
func (t *SymbolTable) Search(query string, opts SearchOptions) []Match {
	if query == "" {
		return nil
	}

	queryLower := strings.ToLower(query)
	extFilter := lowerExtSet(opts.Extensions)

	t.mu.RLock()
	var matches []Match
	for name, bucket := range t.byName {
		mt, ok := classifyMatch(queryLower, strings.ToLower(name), opts.Fuzzy)
		if !ok {
			continue
		}

		var score float64
		if mt == MatchFuzzy {
			// go-edlib returns similarity in [0,1]; used for display context,
			// ordering stays (priority, path, line).
			if s, err := edlib.StringsSimilarity(query, name, edlib.JaroWinkler); err == nil {
				score = float64(s)
			}
		}

		for _, sym := range bucket {
			if opts.Kind != "" && sym.Kind != opts.Kind {
				continue
			}
			if len(extFilter) > 0 {
				if _, ok := extFilter[strings.ToLower(filepath.Ext(sym.FilePath))]; !ok {
					continue
				}
			}
			matches = append(matches, Match{Symbol: sym, MatchType: mt, Score: score})
		}
	}
	t.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		pi, pj := matchPriority[matches[i].MatchType], matchPriority[matches[j].MatchType]
		if pi != pj {
			return pi < pj
		}
		if matches[i].FilePath != matches[j].FilePath {
			return matches[i].FilePath < matches[j].FilePath
		}
		return matches[i].LineNumber < matches[j].LineNumber
	})

	if opts.MaxResults > 0 && len(matches) > opts.MaxResults {
		matches = matches[:opts.MaxResults]
	}
	return matches
}

// classifyMatch applies the tiers in priority order on lowercased inputs.
func classifyMatch(query, name string, fuzzy bool) (MatchType, bool) {
	switch {
	case name == query:
		return MatchExact, true
	case strings.HasPrefix(name, query):
		return MatchPrefix, true
	case strings.Contains(name, query):
		return MatchContains, true
	case fuzzy && isSubsequence(query, name):
		return MatchFuzzy, true
	}
	return "", false
}

// isSubsequence reports whether every rune of query appears in name in
// order, not necessarily contiguously.
func isSubsequence(query, name string) bool {
	if query == "" {
		return false
	}
	qi := 0
	qr := []rune(query)
	for _, r := range name {
		if r == qr[qi] {
			qi++
			if qi == len(qr) {
				return true
			}
		}
	}
	return false
}

func lowerExtSet(exts []string) map[string]struct{} {
	if len(exts) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return set
}
