package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/retracehq/retrace/internal"
	"github.com/retracehq/retrace/internal/match"
	"github.com/retracehq/retrace/internal/mcpserver"
	"github.com/retracehq/retrace/internal/store"
	pkgconfig "github.com/retracehq/retrace/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

// runMCP serves the MCP tool surface over stdio, sharing the database and
// matching configuration with the HTTP server.
func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	groups := match.DefaultAliasGroups
	if cfg.Matching.AliasesPath != "" {
		if loaded, err := match.LoadAliasGroups(cfg.Matching.AliasesPath); err == nil {
			groups = loaded
		}
	}
	aliases := match.NewAliasProvider(match.NewAliasIndex(groups))
	scorer := match.NewScorer(cfg.Matching.Weights, aliases)
	engine := match.NewEngine(db, db, db, scorer, cfg.Matching.Threshold, slog.Default())

	return mcpserver.New(db, engine).ServeStdio()
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:   "retrace",
		Usage:  "Lost-and-found marketplace backend with similarity matching and claim verification",
		Action: runServe,
		Flags:  []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:   "mcp",
				Usage:  "Serve Retrace tools over MCP stdio transport",
				Action: runMCP,
				Flags:  []cli.Flag{configFlag},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
