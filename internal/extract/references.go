package extract

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/debug"
	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/policy"
	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/types"
)

// RefScanOptions controls a reference scan.
type RefScanOptions struct {
	// Extensions restricts candidate files; empty means every supported
	// extension of the registry passed to ScanReferences.
	Extensions []string

	// ContextLines is the window of lines included around each match.
	ContextLines int

	// MaxResults bounds the scan; 0 means unbounded.
	MaxResults int
}

// ScanReferences walks root looking for occurrences of name. Every line
// containing the literal name is a candidate reference, classified by
// lightweight heuristics. I/O errors on individual files are logged and the
// file skipped; they never fail the scan.
func ScanReferences(root, name string, registry *Registry, pol policy.PathPolicy, opts RefScanOptions) []types.Reference {
	if name == "" {
		return nil
	}

	allowed := extensionSet(opts.Extensions, registry)
	var refs []types.Reference

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries, keep walking
		}
		if opts.MaxResults > 0 && len(refs) >= opts.MaxResults {
			return filepath.SkipAll
		}
		if d.IsDir() {
			if !pol.IsPathAllowed(path) && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := allowed[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}
		if !pol.IsPathAllowed(path) {
			return nil
		}

		fileRefs, err := scanFile(path, name, opts)
		if err != nil {
			debug.LogIndexing("reference scan skipping %s: %v\n", path, err)
			return nil
		}
		refs = append(refs, fileRefs...)
		return nil
	})

	if opts.MaxResults > 0 && len(refs) > opts.MaxResults {
		refs = refs[:opts.MaxResults]
	}
	return refs
}

func scanFile(path, name string, opts RefScanOptions) ([]types.Reference, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(content), "\n")
	isTyped := isTypeAnnotationLanguage(path)
	var refs []types.Reference

	for i, line := range lines {
		if !strings.Contains(line, name) {
			continue
		}
		refs = append(refs, types.Reference{
			SymbolName: name,
			FilePath:   path,
			LineNumber: i + 1,
			Context:    contextWindow(lines, i, opts.ContextLines),
			RefType:    ClassifyReference(line, name, isTyped),
		})
	}

	return refs, nil
}

// ClassifyReference decides how a name is used on a line. Heuristics apply
// in priority order; the first that fires wins.
func ClassifyReference(line, name string, typedLanguage bool) types.RefType {
	switch {
	case strings.Contains(line, name+"("):
		return types.RefTypeCall
	case strings.Contains(line, "import") || strings.Contains(line, "require("):
		return types.RefTypeImport
	case strings.Contains(line, "="):
		return types.RefTypeAssignment
	case typedLanguage && strings.Contains(line, ":"):
		return types.RefTypeTypeAnnotation
	case strings.Contains(line, "."):
		return types.RefTypeMethodCall
	default:
		return types.RefTypeReference
	}
}

// isTypeAnnotationLanguage reports whether `:` on a line plausibly marks a
// type annotation for the file's language.
func isTypeAnnotationLanguage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".tsx", ".py", ".pyw":
		return true
	}
	return false
}

func contextWindow(lines []string, center, n int) string {
	if n <= 0 {
		return strings.TrimSpace(lines[center])
	}
	start := center - n
	if start < 0 {
		start = 0
	}
	end := center + n + 1
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}

func extensionSet(exts []string, registry *Registry) map[string]struct{} {
	set := make(map[string]struct{})
	if len(exts) == 0 {
		for _, ext := range registry.Extensions() {
			set[ext] = struct{}{}
		}
		return set
	}
	for _, ext := range exts {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return set
}
