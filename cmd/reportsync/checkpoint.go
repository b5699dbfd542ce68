package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

type checkpointOutput struct {
	Checkpoint *time.Time `json:"checkpoint"`
}

func newCheckpointCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Show the latest stored last_update",
		Args:  cobra.NoArgs,
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

			checkpoint, err := uc.Checkpoint(cmd.Context())
			if err != nil {
				return err
			}

			if format == "json" {
				return outputJSON(cmd, checkpointOutput{Checkpoint: checkpoint})
			}
			if checkpoint == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "no reports")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), checkpoint.UTC().Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")

	return cmd
}
