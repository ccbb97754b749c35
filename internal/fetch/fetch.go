// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch finds the annex PDFs on the ANS procedures page, downloads
// them next to YAML metadata sidecars, and bundles them into a ZIP.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
	"golang.org/x/time/rate"

	"github.com/pdiddy/rol-export/internal/export"
	"github.com/pdiddy/rol-export/internal/httputil"
	"github.com/pdiddy/rol-export/pkg/types"
)

// ErrNoLinks is returned when the page lists no annex PDFs.
var ErrNoLinks = errors.New("no annex links found")

// BatchResult holds the outcome of a fetch run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
	Annexes    []*types.Annex

	// Archive is the ZIP written for the run, empty when none was written.
	Archive string
}

// Total returns the number of links processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any download failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Fetch lists the links on cfg.PageURL, downloads every annex PDF and
// archives the PDFs on disk into cfg.ZipPath. Per-file failures are
// reported to w and counted; the batch continues past them.
func Fetch(ctx context.Context, client *http.Client, finder LinkFinder, cfg types.FetchConfig, w io.Writer) (BatchResult, error) {
	fmt.Fprintf(w, "searching: %s\n", cfg.PageURL)
	links, err := finder.FindLinks(ctx, cfg.PageURL)
	if err != nil {
		return BatchResult{}, fmt.Errorf("finding links: %w", err)
	}

	annexLinks := FilterAnnexLinks(cfg.PageURL, links)
	if len(annexLinks) == 0 {
		return BatchResult{}, fmt.Errorf("%w on %s (%d anchors)", ErrNoLinks, cfg.PageURL, len(links))
	}
	fmt.Fprintf(w, "found: %d annex links\n", len(annexLinks))

	limit := rate.Inf
	if cfg.DownloadDelay > 0 {
		limit = rate.Every(cfg.DownloadDelay)
	}
	limiter := rate.NewLimiter(limit, 1)

	var result BatchResult
	for _, l := range annexLinks {
		if err := limiter.Wait(ctx); err != nil {
			return result, err
		}
		annex, skipped, err := FetchAnnex(ctx, client, l, cfg, w)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", l.Href, err)
			result.Failed++
			continue
		}
		if skipped {
			result.Skipped++
		} else {
			result.Downloaded++
		}
		result.Annexes = append(result.Annexes, annex)
	}

	fmt.Fprintf(w, "\nBatch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())

	if cfg.ZipPath == "" || len(result.Annexes) == 0 {
		return result, nil
	}
	files := make([]string, len(result.Annexes))
	for i, a := range result.Annexes {
		files[i] = a.PDFPath
	}
	if _, err := export.Archive(cfg.ZipPath, files, w); err != nil {
		return result, err
	}
	result.Archive = cfg.ZipPath
	fmt.Fprintf(w, "archive: %s (%d files)\n", cfg.ZipPath, len(files))
	return result, nil
}

// FetchAnnex downloads one annex PDF and writes its metadata sidecar. If
// the PDF already exists it is left alone and skipped is true.
func FetchAnnex(ctx context.Context, client *http.Client, link Link, cfg types.FetchConfig, w io.Writer) (annex *types.Annex, skipped bool, err error) {
	name := FileName(link.Href)
	if name == "" || !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		return nil, false, fmt.Errorf("no PDF file name in %q", link.Href)
	}

	id := strings.TrimSuffix(name, filepath.Ext(name))
	pdfPath := filepath.Join(cfg.DownloadsDir, name)
	metaPath := filepath.Join(cfg.DownloadsDir, id+".yaml")

	if _, err := os.Stat(pdfPath); err == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", name)
		a, readErr := readMetadata(metaPath)
		if readErr != nil {
			a = &types.Annex{ID: id, Title: link.Text, SourceURL: link.Href, PDFPath: pdfPath}
		}
		return a, true, nil
	}

	if err := os.MkdirAll(cfg.DownloadsDir, 0o755); err != nil {
		return nil, false, fmt.Errorf("creating directory %s: %w", cfg.DownloadsDir, err)
	}

	fmt.Fprintf(w, "downloading: %s\n", name)
	size, digest, err := downloadFile(ctx, client, link.Href, pdfPath, cfg.UserAgent)
	if err != nil {
		return nil, false, fmt.Errorf("downloading %s: %w", name, err)
	}

	a := &types.Annex{
		ID:           id,
		Title:        link.Text,
		SourceURL:    link.Href,
		PDFPath:      pdfPath,
		Size:         size,
		SHA256:       digest,
		DownloadedAt: time.Now().UTC(),
	}
	if err := writeMetadata(a, metaPath); err != nil {
		return nil, false, fmt.Errorf("writing metadata for %s: %w", name, err)
	}
	fmt.Fprintf(w, "downloaded: %s (%d bytes)\n", name, size)
	return a, false, nil
}

// downloadFile fetches url to destPath through a temporary file and returns
// the size and SHA-256 of what was written. An empty body is an error.
func downloadFile(ctx context.Context, client *http.Client, url, destPath, userAgent string) (int64, string, error) {
	resp, err := httputil.Get(ctx, client, url, userAgent, "application/pdf")
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return 0, "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	h := sha256.New()
	n, copyErr := io.Copy(io.MultiWriter(tmpFile, h), resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return 0, "", fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return 0, "", fmt.Errorf("closing temp file: %w", closeErr)
	}
	if n == 0 {
		os.Remove(tmpPath)
		return 0, "", errors.New("empty response body")
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return 0, "", fmt.Errorf("renaming temp file: %w", err)
	}
	return n, hex.EncodeToString(h.Sum(nil)), nil
}

func writeMetadata(a *types.Annex, path string) error {
	data, err := yaml.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func readMetadata(path string) (*types.Annex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var a types.Annex
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
