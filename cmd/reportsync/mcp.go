package main

import (
	"github.com/spf13/cobra"

	"github.com/covid19-reports/reportsync/internal/mcp"
)

func newMCPCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server",
		Long:  "Start the Model Context Protocol server exposing the reports_sync and reports_checkpoint tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc, err := a.reports()
			if err != nil {
				return err
			}
			defer func() {
				_ = uc.Close()
			}()

			return mcp.NewServer(uc, version).Run(cmd.Context())
		},
	}

	return cmd
}
