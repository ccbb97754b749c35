// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/rol-export/internal/extract"
	"github.com/pdiddy/rol-export/internal/history"
	"github.com/pdiddy/rol-export/internal/logger"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract the procedure table from the Anexo I PDF",
	Long: `Extract reads the annex PDF page by page, finds the procedure table
between its title and legend, and writes one CSV record per procedure:
code, description, an empty segment column, and the care settings derived
from the OD and AMB columns. The CSV is then bundled into a ZIP.

When the document contains no procedure rows nothing is written and the
command exits normally. Runs are recorded in the history ledger; an input
that has not changed since the last run is skipped unless --force is set.`,
	PreRun: bindCommandFlags(map[string]string{
		"input": keyInput,
		"csv":   keyCSV,
		"zip":   keyZip,
		"force": keyForce,
	}),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringP("input", "i", defaultInput, "annex PDF to read")
	extractCmd.Flags().String("csv", "Rol_Procedimentos.csv", "CSV output path")
	extractCmd.Flags().String("zip", "Rol_Procedimentos.zip", "ZIP output path")
	extractCmd.Flags().Bool("force", false, "extract even if the input is unchanged")
	extractCmd.Flags().Bool("watch", false, "re-run whenever the input PDF changes")
	extractCmd.Flags().Bool("no-history", false, "do not read or record the run history")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := extractionConfig()
	if err != nil {
		return err
	}

	var opts []extract.Option
	noHistory, _ := cmd.Flags().GetBool("no-history")
	if hcfg := historyConfig(); !noHistory && hcfg.StateDir != "" {
		store, err := history.NewStore(hcfg)
		if err != nil {
			logger.Warn("run history disabled: %v", err)
		} else {
			defer store.Close()
			opts = append(opts, extract.WithLedger(store))
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		return extract.Watch(ctx, cfg, extract.PDFOpener, os.Stdout, opts...)
	}

	summary, err := extract.Run(ctx, cfg, extract.PDFOpener, os.Stdout, opts...)
	if errors.Is(err, extract.ErrNoRecords) {
		if summary.TableSeen {
			fmt.Fprintf(os.Stdout, "No records extracted from %s: the table was found but no line matched the row pattern (%d unmatched).\n",
				cfg.InputPath, summary.Unmatched)
		} else {
			fmt.Fprintf(os.Stdout, "No records extracted from %s: the procedure table header was not found in %d pages.\n",
				cfg.InputPath, summary.Pages)
		}
		fmt.Fprintln(os.Stdout, "No CSV or ZIP was written.")
		return nil
	}
	return err
}
