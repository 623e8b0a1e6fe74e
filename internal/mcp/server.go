// Package mcp exposes the index over the Model Context Protocol via stdio.
package mcp

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/config"
	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/debug"
	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/extract"
	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/index"
	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/policy"
	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/version"
	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/watch"
)

// Server wires the index, extractor registry, and watcher behind the MCP
// tool surface. Every dependency hangs off this context object; there is no
// package-level state.
type Server struct {
	cfg      *config.Config
	registry *extract.Registry
	pol      policy.PathPolicy
	indexer  *index.Indexer
	watcher  *watch.Watcher
	server   *mcp.Server
}

// NewServer builds the full component graph from configuration.
func NewServer(cfg *config.Config) (*Server, error) {
	registry := extract.NewDefaultRegistry()

	pol := policy.NewGlobPolicy(cfg.Project.Root, cfg.Include, cfg.Exclude, cfg.Index.RespectGitignore)

	indexer := index.NewIndexer(cfg, registry, pol)
	watcher := watch.NewWatcher(cfg, indexer, registry, indexer.Detector(), pol)

	s := &Server{
		cfg:      cfg,
		registry: registry,
		pol:      pol,
		indexer:  indexer,
		watcher:  watcher,
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "cursor-context",
		Version: version.Version,
	}, nil)

	s.registerTools()
	return s, nil
}

// Indexer exposes the indexer for CLI subcommands that bypass MCP.
func (s *Server) Indexer() *index.Indexer { return s.indexer }

// Watcher exposes the watcher for lifecycle management outside MCP.
func (s *Server) Watcher() *watch.Watcher { return s.watcher }

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "search_symbols",
		Description: "Search indexed symbols by name with exact, prefix, contains, and fuzzy matching tiers. Indexes the project on first use.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"query": {
					Type:        "string",
					Description: "Symbol name or fragment to search for",
				},
				"kind": {
					Type:        "string",
					Description: "Restrict to one symbol kind: function, class, method, variable, const, type, interface, enum, struct, import, package",
				},
				"fuzzy": {
					Type:        "boolean",
					Description: "Enable the fuzzy (subsequence) matching tier",
				},
				"extensions": {
					Type:        "array",
					Items:       &jsonschema.Schema{Type: "string"},
					Description: "Restrict results to these file extensions (e.g. [\".py\", \".ts\"])",
				},
				"max_results": {
					Type:        "integer",
					Description: "Maximum number of results",
				},
			},
			Required: []string{"query"},
		},
	}, s.handleSearchSymbols)

	s.server.AddTool(&mcp.Tool{
		Name:        "find_references",
		Description: "Find occurrences of a symbol name across the project, classified as call, import, assignment, type annotation, method call, or plain reference, with surrounding context lines.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"symbol_name": {
					Type:        "string",
					Description: "Exact symbol name to look for",
				},
				"extensions": {
					Type:        "array",
					Items:       &jsonschema.Schema{Type: "string"},
					Description: "Restrict the scan to these file extensions",
				},
				"max_results": {
					Type:        "integer",
					Description: "Maximum number of references",
				},
			},
			Required: []string{"symbol_name"},
		},
	}, s.handleFindReferences)

	s.server.AddTool(&mcp.Tool{
		Name:        "get_recent_changes",
		Description: "List recently observed file changes (added, modified, deleted), most recent first. Requires file monitoring to have been started.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"limit": {
					Type:        "integer",
					Description: "Maximum number of changes to return",
				},
			},
		},
	}, s.handleGetRecentChanges)

	s.server.AddTool(&mcp.Tool{
		Name:        "get_index_statistics",
		Description: "Get index statistics: files and symbols indexed, per-extension breakdown, watcher state, error count, and an approximate memory estimate.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
		},
	}, s.handleGetIndexStatistics)

	s.server.AddTool(&mcp.Tool{
		Name:        "start_file_monitoring",
		Description: "Start watching the configured directories for file changes and keep the index up to date automatically. Safe to call when already active.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
		},
	}, s.handleStartFileMonitoring)

	s.server.AddTool(&mcp.Tool{
		Name:        "stop_file_monitoring",
		Description: "Stop watching for file changes. The index keeps its current contents. Safe to call when not active.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
		},
	}, s.handleStopFileMonitoring)

	s.server.AddTool(&mcp.Tool{
		Name:        "index_project",
		Description: "Bulk-index the configured directories now, replacing stale per-file entries. Useful before searching without monitoring.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"directory": {
					Type:        "string",
					Description: "Directory to index; defaults to the configured project directories",
				},
			},
		},
	}, s.handleIndexProject)

	s.server.AddTool(&mcp.Tool{
		Name:        "info",
		Description: "Get server version, supported languages, and configuration summary.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
		},
	}, s.handleInfo)
}

// Run serves MCP over stdio until ctx is cancelled. The watcher, if running,
// is stopped on the way out.
func (s *Server) Run(ctx context.Context) error {
	debug.LogMCP("serving over stdio, project root %s\n", s.cfg.Project.Root)

	if s.cfg.Index.WatchMode {
		if err := s.watcher.Start(); err != nil {
			debug.LogMCP("watch mode unavailable: %v\n", err)
		}
	}

	err := s.server.Run(ctx, &mcp.StdioTransport{})

	if s.watcher.IsActive() {
		_ = s.watcher.Stop()
	}
	return err
}
