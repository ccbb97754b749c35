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

	"github.com/pdiddy/rol-export/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Look up procedures from the latest extraction run",
	Long: `Search matches the given text against the code and description of
every procedure extracted by the latest completed run. Matching ignores
case for unaccented letters.`,
	Args:   cobra.MinimumNArgs(1),
	PreRun: bindCommandFlags(map[string]string{"state-dir": keyStateDir}),
	RunE:   runSearch,
}

func init() {
	searchCmd.Flags().String("state-dir", "", "directory holding history.db")
	searchCmd.Flags().Int("limit", 0, "maximum number of results (default from config)")
	searchCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	rows, err := store.Search(context.Background(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatProcedures(os.Stdout, rows, jsonOutput)
}

func formatProcedures(w io.Writer, rows []types.ExtractedRow, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if len(rows) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	fmt.Fprintf(w, "%-12s  %-60s  %s\n", "Code", "Description", "Segment detail")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, r := range rows {
		desc := r.Description
		if len([]rune(desc)) > 60 {
			desc = string([]rune(desc)[:57]) + "..."
		}
		fmt.Fprintf(w, "%-12s  %-60s  %s\n", r.Code, desc, r.SegmentDetail)
	}
	return nil
}
