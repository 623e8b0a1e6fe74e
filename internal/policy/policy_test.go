package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllowAll(t *testing.T) {
	var p PathPolicy = AllowAll{}
	if !p.IsPathAllowed("/anything/at/all.py") {
		t.Error("AllowAll must allow everything")
	}
}

func TestGlobPolicy_Exclude(t *testing.T) {
	root := t.TempDir()
	p := NewGlobPolicy(root, nil, []string{"**/node_modules/**", "**/*.min.js"}, false)

	if !p.IsPathAllowed(filepath.Join(root, "src", "app.js")) {
		t.Error("Expected src/app.js allowed")
	}
	if p.IsPathAllowed(filepath.Join(root, "node_modules", "lib", "x.js")) {
		t.Error("Expected node_modules excluded")
	}
	if p.IsPathAllowed(filepath.Join(root, "dist", "bundle.min.js")) {
		t.Error("Expected *.min.js excluded")
	}
}

func TestGlobPolicy_Include(t *testing.T) {
	root := t.TempDir()
	p := NewGlobPolicy(root, []string{"src/**"}, nil, false)

	if !p.IsPathAllowed(filepath.Join(root, "src", "deep", "a.py")) {
		t.Error("Expected included path allowed")
	}
	if p.IsPathAllowed(filepath.Join(root, "docs", "readme.md")) {
		t.Error("Expected path outside include list rejected")
	}
}

func TestGlobPolicy_OutsideRoot(t *testing.T) {
	root := t.TempDir()
	p := NewGlobPolicy(root, nil, nil, false)

	if p.IsPathAllowed("/etc/passwd") {
		t.Error("Expected path outside root rejected")
	}
}

func TestGlobPolicy_Gitignore(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("*.log\nbuild/\n"), 0644))

	p := NewGlobPolicy(root, nil, nil, true)

	if p.IsPathAllowed(filepath.Join(root, "debug.log")) {
		t.Error("Expected *.log ignored via gitignore")
	}
	if p.IsPathAllowed(filepath.Join(root, "build", "out.js")) {
		t.Error("Expected build/ ignored via gitignore")
	}
	if !p.IsPathAllowed(filepath.Join(root, "main.py")) {
		t.Error("Expected main.py allowed")
	}

	// Gitignore off: the same paths pass.
	open := NewGlobPolicy(root, nil, nil, false)
	if !open.IsPathAllowed(filepath.Join(root, "debug.log")) {
		t.Error("Expected *.log allowed when gitignore is not respected")
	}
}
