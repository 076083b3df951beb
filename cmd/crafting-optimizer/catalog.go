package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCatalogCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect item catalogs",
	}
	cmd.AddCommand(newCatalogValidateCommand(a))
	return cmd
}

func newCatalogValidateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [source]",
		Short: "Load a catalog and report problems",
		Long: `Load a catalog file, s3:// object, or "sqlite" and print every load-time issue.
Without an argument the configured catalog.source is checked.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := a.cfg.Catalog.Source
			if len(args) == 1 {
				source = args[0]
			}

			cat, issues, err := a.loadCatalogWithIssues(cmd.Context(), source)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d items, %d known materials\n", source, cat.Len(), len(cat.KnownMaterials()))
			for _, issue := range issues {
				fmt.Fprintf(out, "  %s\n", issue)
			}
			if len(issues) == 0 {
				fmt.Fprintln(out, "  no issues")
			}
			return nil
		},
	}
}
