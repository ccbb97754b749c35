// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/rol-export/internal/history"
	"github.com/pdiddy/rol-export/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded extraction runs",
	Long: `History lists the extraction runs recorded in the ledger, newest first,
with their status and row counts. Use the export subcommand to dump the
procedures of the latest completed run of an input.`,
	PreRun: bindCommandFlags(map[string]string{"state-dir": keyStateDir}),
	RunE:   runHistory,
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the latest completed run of an input with its procedures",
	PreRun: bindCommandFlags(map[string]string{
		"state-dir": keyStateDir,
		"input":     keyInput,
	}),
	RunE: runHistoryExport,
}

func init() {
	historyCmd.PersistentFlags().String("state-dir", "", "directory holding history.db")
	historyCmd.Flags().Int("limit", 0, "maximum number of runs (default from config)")
	historyCmd.Flags().Bool("json", false, "output as JSON")

	historyExportCmd.Flags().StringP("input", "i", defaultInput, "annex PDF the run read")
	historyExportCmd.Flags().String("format", "yaml", "output format: yaml or json")

	historyCmd.AddCommand(historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}

func openHistory() (*history.Store, error) {
	cfg := historyConfig()
	if cfg.StateDir == "" {
		return nil, fmt.Errorf("run history is disabled (history.state_dir is empty)")
	}
	return history.NewStore(cfg)
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.ListRuns(context.Background(), limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRuns(os.Stdout, runs, jsonOutput)
}

func formatRuns(w io.Writer, runs []types.Run, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-36s  %-20s  %-10s  %6s  %9s  %5s  %s\n",
		"ID", "Started", "Status", "Rows", "Unmatched", "Pages", "Input")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for _, r := range runs {
		fmt.Fprintf(w, "%-36s  %-20s  %-10s  %6d  %9d  %5d  %s\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Status,
			r.Rows, r.Unmatched, r.Pages, r.InputPath)
	}
	fmt.Fprintf(w, "\n%d run(s)\n", len(runs))
	return nil
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	input := viper.GetString(keyInput)
	e, err := store.Export(context.Background(), input)
	if err != nil {
		return err
	}
	if e == nil {
		return fmt.Errorf("no completed run recorded for %s", input)
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "yaml":
		return e.WriteYAML(os.Stdout)
	case "json":
		return e.WriteJSON(os.Stdout)
	default:
		return fmt.Errorf("unknown format %q (use yaml or json)", format)
	}
}
