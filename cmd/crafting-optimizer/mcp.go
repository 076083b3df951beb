package main

import (
	"github.com/spf13/cobra"

	"github.com/rsned/crafting-optimizer/internal/crafting/mcp"
)

func newMCPCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP tool server on stdin/stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, err := a.newEngine(ctx, nil)
			if err != nil {
				return err
			}

			server := mcp.NewServer(eng, a.logger)
			a.logger.Info("starting MCP server", "catalog", a.cfg.Catalog.Source)
			if err := server.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			a.logger.Info("server stopped")
			return nil
		},
	}
}
