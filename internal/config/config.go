package config

import (
	"os"
	"path/filepath"

	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/types"
)

// ConfigFileName is the project config file searched for in the project root
// and the user's home directory.
const ConfigFileName = ".cursor-context.kdl"

type Config struct {
	Version     int
	Project     Project
	Index       Index
	Search      Search
	Directories []types.WatchDirectory
	Include     []string
	Exclude     []string
}

type Project struct {
	Root string
	Name string
}

type Index struct {
	MaxFileSize      int64
	MaxFileCount     int
	RespectGitignore bool // Process .gitignore files for additional exclusions
	WatchMode        bool // Enable file system watching for automatic reindexing
	WatchDebounceMs  int  // Debounce time for file change events
	RecentChangesCap int  // Bounded recent-changes log size
}

type Search struct {
	MaxResults   int  // Maximum number of search results
	EnableFuzzy  bool // Enable fuzzy matching tier
	ContextLines int  // Lines of context around each reference match
}

// Load loads configuration for the given project root: global base config
// from the home directory merged with the project config, falling back to
// defaults when neither exists.
func Load(rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}

	var baseConfig *Config
	if homeDir, err := os.UserHomeDir(); err == nil {
		if globalCfg, err := LoadKDL(homeDir); err == nil && globalCfg != nil {
			baseConfig = globalCfg
		}
	}

	projectConfig, err := LoadKDL(searchDir)
	if err != nil {
		return nil, err
	}

	switch {
	case baseConfig != nil && projectConfig != nil:
		return mergeConfigs(baseConfig, projectConfig), nil
	case projectConfig != nil:
		return projectConfig, nil
	case baseConfig != nil:
		baseConfig.Project.Root = absOrSelf(searchDir)
		return baseConfig, nil
	}

	cfg := Default()
	cfg.Project.Root = absOrSelf(searchDir)
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	return &Config{
		Version: 1,
		Project: Project{
			Root: cwd,
		},
		Index: Index{
			MaxFileSize:      types.DefaultMaxFileSize,
			MaxFileCount:     types.DefaultMaxFileCount,
			RespectGitignore: true,
			WatchMode:        true,
			WatchDebounceMs:  types.DefaultWatchDebounceMs,
			RecentChangesCap: types.DefaultRecentChangesCap,
		},
		Search: Search{
			MaxResults:   types.DefaultMaxResults,
			EnableFuzzy:  true,
			ContextLines: types.DefaultContextLines,
		},
		Include: []string{},
		Exclude: []string{
			"**/.git/**",
			"**/.*/**",
			"**/node_modules/**",
			"**/vendor/**",
			"**/dist/**",
			"**/build/**",
			"**/target/**",
			"**/__pycache__/**",
			"**/*.pyc",
			"**/*.min.js",
			"**/*.log",
			"**/logs/**",
		},
	}
}

// WatchedDirectories returns the configured watch entries. When none are
// configured the project root is watched.
func (c *Config) WatchedDirectories() []types.WatchDirectory {
	if len(c.Directories) > 0 {
		return c.Directories
	}
	return []types.WatchDirectory{{Path: c.Project.Root, Enabled: true}}
}

// mergeConfigs merges a base config with a project config. Project config
// takes precedence, but base exclusions are preserved.
func mergeConfigs(base, project *Config) *Config {
	merged := *project

	if len(base.Exclude) > 0 {
		excludeMap := make(map[string]bool)
		for _, pattern := range base.Exclude {
			excludeMap[pattern] = true
		}
		for _, pattern := range project.Exclude {
			excludeMap[pattern] = true
		}

		merged.Exclude = make([]string, 0, len(excludeMap))
		for pattern := range excludeMap {
			merged.Exclude = append(merged.Exclude, pattern)
		}
	}

	// Inclusions: project overrides base completely if specified
	if len(project.Include) == 0 && len(base.Include) > 0 {
		merged.Include = base.Include
	}

	return &merged
}

func absOrSelf(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
