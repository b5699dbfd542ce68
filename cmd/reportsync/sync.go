package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Store daily reports newer than the checkpoint",
		Long: "Delete the rows of the last stored day, then fetch that day and every later daily report " +
			"and insert them one file at a time. Any error stops the run; files already inserted stay stored.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "table" && format != "json" {
				return fmt.Errorf("invalid format: %s (valid values: table, json)", format)
			}

			uc, err := a.reports()
			if err != nil {
				return err
			}
			defer func() {
				_ = uc.Close()
			}()

			result, err := uc.Sync(cmd.Context())
			if err != nil {
				return err
			}

			if format == "json" {
				return outputJSON(cmd, result)
			}
			outputSyncTable(cmd, result)
			return nil
		},
	}

	cmd.Flags().Bool("chronological", false, "Process files ordered by report date instead of listing order")
	cmd.Flags().String("source-dir", "", "Read reports from a local clone of the data repository")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")

	a.bind("source.chronological", cmd.Flags().Lookup("chronological"))
	a.bind("source.local_dir", cmd.Flags().Lookup("source-dir"))

	return cmd
}
