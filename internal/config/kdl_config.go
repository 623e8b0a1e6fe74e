package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/types"
)

// LoadKDL attempts to load configuration from a .cursor-context.kdl file in
// the given directory. Returns (nil, nil) when no config file exists.
func LoadKDL(dir string) (*Config, error) {
	kdlPath := filepath.Join(dir, ConfigFileName)

	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil
	}

	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %v", ConfigFileName, err)
	}

	cfg, err := ParseKDL(string(content))
	if err != nil {
		return nil, err
	}

	// Resolve the project root relative to the directory containing the
	// config file so paths stay consistent regardless of the working dir.
	if cfg.Project.Root != "" && !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Clean(filepath.Join(dir, cfg.Project.Root))
	} else if cfg.Project.Root == "" {
		cfg.Project.Root = absOrSelf(dir)
	}

	for i := range cfg.Directories {
		if !filepath.IsAbs(cfg.Directories[i].Path) {
			cfg.Directories[i].Path = filepath.Clean(filepath.Join(cfg.Project.Root, cfg.Directories[i].Path))
		}
	}

	return cfg, nil
}

// ParseKDL parses KDL configuration content into a Config, starting from the
// built-in defaults.
func ParseKDL(content string) (*Config, error) {
	cfg := Default()

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "index":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_file_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Index.MaxFileSize = int64(v)
					}
				case "max_file_count":
					if v, ok := firstIntArg(cn); ok {
						cfg.Index.MaxFileCount = v
					}
				case "respect_gitignore":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Index.RespectGitignore = b
					}
				case "watch_mode":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Index.WatchMode = b
					}
				case "watch_debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Index.WatchDebounceMs = v
					}
				case "recent_changes_cap":
					if v, ok := firstIntArg(cn); ok {
						cfg.Index.RecentChangesCap = v
					}
				}
			}
		case "search":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_results":
					if v, ok := firstIntArg(cn); ok {
						cfg.Search.MaxResults = v
					}
				case "enable_fuzzy":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Search.EnableFuzzy = b
					}
				case "context_lines":
					if v, ok := firstIntArg(cn); ok {
						cfg.Search.ContextLines = v
					}
				}
			}
		case "directories":
			// directories { dir "src"; dir "vendor" false }
			for _, cn := range n.Children {
				if nodeName(cn) != "dir" {
					continue
				}
				path, ok := firstStringArg(cn)
				if !ok {
					continue
				}
				entry := types.WatchDirectory{Path: path, Enabled: true}
				if b, ok := secondBoolArg(cn); ok {
					entry.Enabled = b
				}
				cfg.Directories = append(cfg.Directories, entry)
			}
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			// Replace default exclusions if an exclude block is present
			cfg.Exclude = collectStringArgs(n)
		}
	}

	return cfg, nil
}

// Helper functions leveraging the kdl-go document model.

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func secondBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) < 2 {
		return false, false
	}
	if b, ok := n.Arguments[1].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	// Block format like exclude { "pattern" }: strings are child nodes where
	// the node name is the string value.
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}

	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}
