package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/config"
	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/debug"
	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/index"
	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/mcp"
	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/types"
	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/version"
)

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	rootDir := c.String("root")

	cfg, err := config.Load(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Exclude = append(cfg.Exclude, excludeFlags...)
	}
	if rootDir != "" {
		absRoot, err := filepath.Abs(rootDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path %q: %w", rootDir, err)
		}
		cfg.Project.Root = absRoot
	}

	return cfg, nil
}

func main() {
	app := &cli.App{
		Name:                   "cursor-context",
		Usage:                  "In-memory code index with live file tracking for AI assistants",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory to index (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Include files matching glob patterns (e.g., --include 'src/**/*.ts')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Exclude files matching glob patterns (e.g., --exclude '**/generated/**')",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Search indexed symbols from the command line",
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Restrict to one symbol kind (function, class, method, ...)",
					},
					&cli.BoolFlag{
						Name:  "fuzzy",
						Usage: "Enable the fuzzy matching tier",
					},
					&cli.IntFlag{
						Name:    "max",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
					},
				},
				Action: runSearch,
			},
			{
				Name:   "stats",
				Usage:  "Index the project and print statistics",
				Action: runStats,
			},
		},
		Action: runServe,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runServe is the default action: serve MCP over stdio. Stdout belongs to the
// protocol, so all diagnostics go to the debug log file.
func runServe(c *cli.Context) error {
	debug.SetMCPMode(true)
	if _, err := debug.InitDebugLogFile(); err == nil {
		defer debug.CloseDebugLog()
	}

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx)
}

func runSearch(c *cli.Context) error {
	query := c.Args().First()
	if query == "" {
		return fmt.Errorf("usage: cursor-context search <query>")
	}

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(cfg)
	if err != nil {
		return err
	}

	ix := server.Indexer()
	ix.EnsureIndexed(c.Context)

	maxResults := c.Int("max")
	if maxResults <= 0 {
		maxResults = cfg.Search.MaxResults
	}

	matches := ix.Search(query, index.SearchOptions{
		Kind:       types.SymbolKind(c.String("kind")),
		Fuzzy:      c.Bool("fuzzy") && cfg.Search.EnableFuzzy,
		MaxResults: maxResults,
	})

	for _, m := range matches {
		fmt.Printf("%s:%d\t%s\t%s\t[%s]\n", m.FilePath, m.LineNumber, m.Kind, m.Name, m.MatchType)
	}
	fmt.Printf("%d results\n", len(matches))
	return nil
}

func runStats(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(cfg)
	if err != nil {
		return err
	}

	ix := server.Indexer()
	ix.EnsureIndexed(c.Context)

	out, err := json.MarshalIndent(ix.Stats(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
