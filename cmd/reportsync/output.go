package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/covid19-reports/reportsync/internal/services"
)

func outputJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func getTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 0
}

func outputSyncTable(cmd *cobra.Command, result *services.SyncResult) {
	out := cmd.OutOrStdout()

	if result.Checkpoint != nil {
		fmt.Fprintf(out, "Resumed from %s (%d rows of that day replaced)\n",
			result.Checkpoint.UTC().Format(time.RFC3339), result.Deleted)
	} else {
		fmt.Fprintln(out, "Full sync (no checkpoint)")
	}

	if len(result.Files) == 0 {
		fmt.Fprintln(out, "No new daily reports")
	} else {
		t := table.NewWriter()
		t.SetOutputMirror(out)
		t.SetStyle(table.StyleLight)
		if width := getTerminalWidth(); width > 0 {
			t.SetAllowedRowLength(width)
		}
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
		})

		t.AppendHeader(table.Row{"File", "Date", "Rows"})
		for _, f := range result.Files {
			t.AppendRow(table.Row{f.Name, f.Date.Format(time.DateOnly), f.Rows})
		}
		t.AppendFooter(table.Row{"Total", len(result.Files), result.Rows()})
		t.Render()
	}

	if result.NewCheckpoint != nil {
		fmt.Fprintf(out, "Checkpoint: %s (%d rows on that day)\n",
			result.NewCheckpoint.UTC().Format(time.RFC3339), result.CheckpointRows)
	}
}
