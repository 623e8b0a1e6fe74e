// Package policy decides which paths the indexing subsystem may touch.
// The watcher, the auto-index path, and reference scanning all consult the
// same policy; a rejected path is silently skipped, never an error.
package policy

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// PathPolicy is the access check consulted before watching, indexing, or
// scanning any file.
type PathPolicy interface {
	IsPathAllowed(path string) bool
}

// AllowAll is a policy that permits every path. Used in tests and when no
// restrictions are configured.
type AllowAll struct{}

func (AllowAll) IsPathAllowed(string) bool { return true }

// GlobPolicy filters paths by include/exclude glob patterns relative to a
// root directory, optionally honoring the root's .gitignore.
type GlobPolicy struct {
	root      string
	include   []string
	exclude   []string
	gitignore *ignore.GitIgnore
}

// NewGlobPolicy builds a policy rooted at root. An empty include list admits
// everything not excluded. When respectGitignore is set, the root's
// .gitignore (if present) adds further exclusions.
func NewGlobPolicy(root string, include, exclude []string, respectGitignore bool) *GlobPolicy {
	p := &GlobPolicy{
		root:    root,
		include: include,
		exclude: exclude,
	}

	if respectGitignore {
		if gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
			p.gitignore = gi
		}
	}

	return p
}

// IsPathAllowed reports whether the path passes include/exclude globs and
// gitignore rules. Paths outside the root are rejected.
func (p *GlobPolicy) IsPathAllowed(path string) bool {
	rel := path
	if p.root != "" && filepath.IsAbs(path) {
		r, err := filepath.Rel(p.root, path)
		if err != nil || strings.HasPrefix(r, "..") {
			return false
		}
		rel = r
	}
	// Forward slashes for glob and gitignore consistency
	rel = filepath.ToSlash(rel)

	for _, pattern := range p.exclude {
		if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
			return false
		}
		// Also check the full path for absolute patterns
		if matched, err := doublestar.Match(pattern, filepath.ToSlash(path)); err == nil && matched {
			return false
		}
	}

	if p.gitignore != nil && p.gitignore.MatchesPath(rel) {
		return false
	}

	if len(p.include) == 0 {
		return true
	}
	for _, pattern := range p.include {
		if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
			return true
		}
	}
	return false
}
