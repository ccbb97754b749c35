// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/rol-export/internal/fetch"
	"github.com/pdiddy/rol-export/internal/logger"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the Anexo I and Anexo II PDFs",
	Long: `Fetch opens the ANS procedures page, finds the links to Anexo I and
Anexo II, downloads the PDFs into the downloads directory with a YAML
metadata file next to each, and bundles the PDFs into one ZIP. Files that
already exist are skipped.

By default the page is rendered in headless Chrome so that script-inserted
links and the cookie banner are handled. Use --no-browser to read the
server HTML instead.`,
	PreRun: bindCommandFlags(map[string]string{
		"url":           keyPageURL,
		"downloads-dir": keyDownloadsDir,
		"zip":           keyFetchZip,
		"delay":         keyDelay,
		"timeout":       keyTimeout,
		"chrome-path":   keyChromePath,
		"no-sandbox":    keyNoSandbox,
	}),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("url", defaultPageURL, "page that links to the annexes")
	fetchCmd.Flags().String("downloads-dir", "downloads", "directory for downloaded PDFs")
	fetchCmd.Flags().String("zip", "anexos.zip", "archive of the downloaded PDFs")
	fetchCmd.Flags().Duration("delay", 0, "minimum interval between downloads (default 1s)")
	fetchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	fetchCmd.Flags().String("chrome-path", "", "Chrome or Chromium executable")
	fetchCmd.Flags().Bool("no-sandbox", false, "run Chrome without its sandbox")
	fetchCmd.Flags().Bool("no-browser", false, "read links from the server HTML instead of a browser")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg := fetchConfig()
	if noBrowser, _ := cmd.Flags().GetBool("no-browser"); noBrowser {
		cfg.Browser.Enabled = false
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	var finder fetch.LinkFinder
	if cfg.Browser.Enabled {
		logger.Info("using browser link finder")
		finder = fetch.NewBrowserFinder(cfg.Browser, cfg.UserAgent)
	} else {
		finder = &fetch.HTMLFinder{Client: client, UserAgent: cfg.UserAgent}
	}

	ctx, cancel := signalContext()
	defer cancel()

	result, err := fetch.Fetch(ctx, client, finder, cfg, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d annex(es) failed to download", result.Failed)
	}
	return nil
}
