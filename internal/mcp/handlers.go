package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	cerrors "github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/errors"
	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/index"
	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/types"
	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/version"
)

// SearchSymbolsParams are the arguments for the search_symbols tool.
type SearchSymbolsParams struct {
	Query      string   `json:"query"`
	Kind       string   `json:"kind,omitempty"`
	Fuzzy      bool     `json:"fuzzy,omitempty"`
	Extensions []string `json:"extensions,omitempty"`
	MaxResults int      `json:"max_results,omitempty"`
}

// FindReferencesParams are the arguments for the find_references tool.
type FindReferencesParams struct {
	SymbolName string   `json:"symbol_name"`
	Extensions []string `json:"extensions,omitempty"`
	MaxResults int      `json:"max_results,omitempty"`
}

// RecentChangesParams are the arguments for the get_recent_changes tool.
type RecentChangesParams struct {
	Limit int `json:"limit,omitempty"`
}

// IndexProjectParams are the arguments for the index_project tool.
type IndexProjectParams struct {
	Directory string `json:"directory,omitempty"`
}

// enabledDirCount counts the enabled configured watch entries. The statistics
// surface reports this regardless of whether monitoring is running or how
// many subdirectories the subscription expanded to.
func (s *Server) enabledDirCount() int {
	n := 0
	for _, dir := range s.cfg.WatchedDirectories() {
		if dir.Enabled {
			n++
		}
	}
	return n
}

// guard converts a handler panic into a tool-level error response so one bad
// request never takes the server down.
func guard(operation string, result **mcp.CallToolResult, err *error) {
	if r := recover(); r != nil {
		*result, *err = createErrorResponse(operation, fmt.Errorf("internal error: %v", r))
	}
}

func (s *Server) handleSearchSymbols(ctx context.Context, req *mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
	defer guard("search_symbols", &result, &err)

	var params SearchSymbolsParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("search_symbols", fmt.Errorf("invalid parameters: %w", err))
	}
	if params.Query == "" {
		return createErrorResponse("search_symbols", errors.New("query is required"))
	}

	s.indexer.EnsureIndexed(ctx)

	maxResults := params.MaxResults
	if maxResults <= 0 {
		maxResults = s.cfg.Search.MaxResults
	}
	fuzzy := params.Fuzzy && s.cfg.Search.EnableFuzzy

	matches := s.indexer.Search(params.Query, index.SearchOptions{
		Kind:       types.SymbolKind(params.Kind),
		Fuzzy:      fuzzy,
		Extensions: params.Extensions,
		MaxResults: maxResults,
	})
	if matches == nil {
		matches = []index.Match{}
	}

	return createJSONResponse(map[string]interface{}{
		"success": true,
		"query":   params.Query,
		"count":   len(matches),
		"symbols": matches,
	})
}

func (s *Server) handleFindReferences(ctx context.Context, req *mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
	defer guard("find_references", &result, &err)

	var params FindReferencesParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("find_references", fmt.Errorf("invalid parameters: %w", err))
	}
	if params.SymbolName == "" {
		return createErrorResponse("find_references", errors.New("symbol_name is required"))
	}

	s.indexer.EnsureIndexed(ctx)

	maxResults := params.MaxResults
	if maxResults <= 0 {
		maxResults = s.cfg.Search.MaxResults
	}

	refs := s.indexer.FindReferences(params.SymbolName, params.Extensions, maxResults)
	if refs == nil {
		refs = []types.Reference{}
	}

	return createJSONResponse(map[string]interface{}{
		"success":     true,
		"symbol_name": params.SymbolName,
		"count":       len(refs),
		"references":  refs,
	})
}

func (s *Server) handleGetRecentChanges(ctx context.Context, req *mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
	defer guard("get_recent_changes", &result, &err)

	var params RecentChangesParams
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
			return createErrorResponse("get_recent_changes", fmt.Errorf("invalid parameters: %w", err))
		}
	}

	changes := s.watcher.RecentChanges(params.Limit)
	if changes == nil {
		changes = []types.FileChange{}
	}

	return createJSONResponse(map[string]interface{}{
		"success":     true,
		"is_watching": s.watcher.IsActive(),
		"count":       len(changes),
		"changes":     changes,
	})
}

func (s *Server) handleGetIndexStatistics(ctx context.Context, req *mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
	defer guard("get_index_statistics", &result, &err)

	stats := s.indexer.Stats()
	watchStats := s.watcher.Stats()
	stats.IsWatching = watchStats.IsActive
	stats.WatchedDirectories = s.enabledDirCount()
	stats.IndexingErrors += watchStats.ErrorCount
	if watchStats.LastEventTime.After(stats.LastUpdate) {
		stats.LastUpdate = watchStats.LastEventTime
	}

	return createJSONResponse(map[string]interface{}{
		"success":    true,
		"statistics": stats,
	})
}

func (s *Server) handleStartFileMonitoring(ctx context.Context, req *mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
	defer guard("start_file_monitoring", &result, &err)

	startErr := s.watcher.Start()
	switch {
	case startErr == nil:
		return createJSONResponse(map[string]interface{}{
			"success":             true,
			"message":             "file monitoring started",
			"watched_directories": s.enabledDirCount(),
		})
	case errors.Is(startErr, cerrors.ErrAlreadyWatching):
		return createJSONResponse(map[string]interface{}{
			"success": true,
			"message": "file monitoring already active",
		})
	default:
		return createErrorResponse("start_file_monitoring", startErr)
	}
}

func (s *Server) handleStopFileMonitoring(ctx context.Context, req *mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
	defer guard("stop_file_monitoring", &result, &err)

	stopErr := s.watcher.Stop()
	switch {
	case stopErr == nil:
		return createJSONResponse(map[string]interface{}{
			"success": true,
			"message": "file monitoring stopped",
		})
	case errors.Is(stopErr, cerrors.ErrNotWatching):
		return createJSONResponse(map[string]interface{}{
			"success": true,
			"message": "file monitoring was not active",
		})
	default:
		return createErrorResponse("stop_file_monitoring", stopErr)
	}
}

func (s *Server) handleIndexProject(ctx context.Context, req *mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
	defer guard("index_project", &result, &err)

	var params IndexProjectParams
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
			return createErrorResponse("index_project", fmt.Errorf("invalid parameters: %w", err))
		}
	}

	start := time.Now()
	filesIndexed := 0

	if params.Directory != "" {
		n, err := s.indexer.IndexDirectory(ctx, params.Directory)
		if err != nil {
			return createErrorResponse("index_project", err)
		}
		filesIndexed = n
	} else {
		for _, dir := range s.cfg.WatchedDirectories() {
			if !dir.Enabled {
				continue
			}
			n, err := s.indexer.IndexDirectory(ctx, dir.Path)
			if err != nil {
				return createErrorResponse("index_project", err)
			}
			filesIndexed += n
		}
	}

	stats := s.indexer.Stats()
	return createJSONResponse(map[string]interface{}{
		"success":       true,
		"files_indexed": filesIndexed,
		"symbols_found": stats.SymbolsFound,
		"duration_ms":   time.Since(start).Milliseconds(),
	})
}

func (s *Server) handleInfo(ctx context.Context, req *mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
	defer guard("info", &result, &err)

	return createJSONResponse(map[string]interface{}{
		"success":        true,
		"server_name":    "cursor-context",
		"server_version": version.FullInfo(),
		"go_version":     runtime.Version(),
		"platform":       runtime.GOOS + "/" + runtime.GOARCH,
		"project_root":   s.cfg.Project.Root,
		"extensions":     s.registry.Extensions(),
		"watch_mode":     s.cfg.Index.WatchMode,
		"capabilities": []string{
			"stdio_transport",
			"symbol_search",
			"fuzzy_matching",
			"reference_scanning",
			"file_monitoring",
			"tree_sitter_python",
		},
	})
}
