package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rsned/crafting-optimizer/internal/crafting/db"
	"github.com/rsned/crafting-optimizer/internal/crafting/sync"
)

func newImportCommand(a *app) *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "import <catalog-file|s3://bucket/key>",
		Short: "Import a catalog document into the SQLite store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			database, err := db.OpenAndInit(ctx, a.cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer func() { _ = database.Close() }()

			a.logger.Info("importing catalog", "source", args[0], "db", a.cfg.Database.Path, "replace", replace)
			result, err := sync.NewSyncer(database, a.logger).ImportCatalogFromFile(ctx, args[0], replace)
			if err != nil {
				return fmt.Errorf("importing catalog: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s items (%d issues) into %s\n",
				humanize.Comma(int64(result.Items)), len(result.Issues), a.cfg.Database.Path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "Remove existing items before importing")
	return cmd
}
