package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rsned/crafting-optimizer/internal/config"
	"github.com/rsned/crafting-optimizer/internal/crafting/catalog"
	"github.com/rsned/crafting-optimizer/internal/crafting/db"
	"github.com/rsned/crafting-optimizer/internal/crafting/engine"
)

// app carries state shared by every subcommand.
type app struct {
	configPath string
	verbose    bool

	cfg      *config.Config
	logger   *slog.Logger
	logClose io.Closer
}

func newRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "crafting-optimizer",
		Short: "Find the most profitable crafting plan for an inventory",
		Long: `crafting-optimizer turns an inventory of raw and intermediate materials into
a step-by-step production plan that maximizes sale profit.

Examples:
  crafting-optimizer serve --config configs/config.yaml
  crafting-optimizer optimize inventory.json
  crafting-optimizer import data/catalog.json --replace
  crafting-optimizer catalog validate s3://bucket/catalog.yaml
  crafting-optimizer mcp`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.logClose != nil {
				return a.logClose.Close()
			}
			return nil
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "",
		"Path to config file (default: search ., ./configs, /etc/crafting-optimizer)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false,
		"Enable verbose logging")

	rootCmd.AddCommand(newServeCommand(a))
	rootCmd.AddCommand(newMCPCommand(a))
	rootCmd.AddCommand(newOptimizeCommand(a))
	rootCmd.AddCommand(newImportCommand(a))
	rootCmd.AddCommand(newCatalogCommand(a))

	return rootCmd
}

// setup loads configuration and installs the process logger.
func (a *app) setup() error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}

	logger, closer, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	a.cfg = cfg
	a.logger = logger
	a.logClose = closer
	return nil
}

// loadCatalog reads a catalog and logs any load-time issues.
func (a *app) loadCatalog(ctx context.Context, source string) (*catalog.Catalog, error) {
	cat, issues, err := a.loadCatalogWithIssues(ctx, source)
	if err != nil {
		return nil, err
	}
	for _, issue := range issues {
		a.logger.Warn("catalog issue", "kind", issue.Kind, "item", issue.ItemID, "detail", issue.Detail)
	}
	a.logger.Info("catalog loaded", "source", source, "items", cat.Len(), "issues", len(issues))
	return cat, nil
}

// loadCatalogWithIssues reads a catalog from a file, an s3:// object, or
// the SQLite store when source is "sqlite".
func (a *app) loadCatalogWithIssues(ctx context.Context, source string) (*catalog.Catalog, []catalog.Issue, error) {
	var (
		cat    *catalog.Catalog
		issues []catalog.Issue
		err    error
	)

	if source == "sqlite" {
		database, openErr := db.OpenAndInit(ctx, a.cfg.Database.Path)
		if openErr != nil {
			return nil, nil, fmt.Errorf("opening database: %w", openErr)
		}
		defer func() { _ = database.Close() }()
		cat, issues, err = catalog.LoadFromStore(ctx, db.NewItemStore(database))
	} else {
		src, format, openErr := catalog.OpenSource(ctx, source)
		if openErr != nil {
			return nil, nil, openErr
		}
		cat, issues, err = catalog.Load(ctx, src, format)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading catalog %q: %w", source, err)
	}
	return cat, issues, nil
}

// newEngine loads the configured catalog and builds an engine over it.
func (a *app) newEngine(ctx context.Context, recorder engine.Recorder) (*engine.Engine, error) {
	cat, err := a.loadCatalog(ctx, a.cfg.Catalog.Source)
	if err != nil {
		return nil, err
	}
	return engine.New(cat, a.cfg.Optimizer.EngineOptions(), a.logger, recorder)
}
