// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract runs the annex extraction: read every page of the input
// PDF, keep the procedure rows found inside the table region, expand the
// segment abbreviations, then write the CSV and its ZIP.
package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/rol-export/internal/export"
	"github.com/pdiddy/rol-export/internal/logger"
	"github.com/pdiddy/rol-export/internal/table"
	"github.com/pdiddy/rol-export/pkg/types"
)

var (
	// ErrInputNotFound is returned when the input PDF does not exist.
	ErrInputNotFound = errors.New("input file not found")

	// ErrNoRecords is returned when the document yields no rows. No output
	// is written. Callers treat it as a normal stop.
	ErrNoRecords = errors.New("no records extracted")
)

// OutputError reports a failure to write the CSV or the archive.
type OutputError struct {
	Op   string
	Path string
	Err  error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *OutputError) Unwrap() error {
	return e.Err
}

// Ledger records runs and answers which run last wrote a pair of outputs.
// *history.Store implements it.
type Ledger interface {
	LastOutputRun(ctx context.Context, csvPath, zipPath string) (*types.Run, error)
	RecordRun(ctx context.Context, run types.Run, rows []types.ExtractedRow) error
}

// Summary holds the outcome of one extraction run.
type Summary struct {
	RunID       string
	InputSHA256 string

	Pages     int
	Rows      int
	Unmatched int
	Skipped   int

	// Normalized counts rows changed by the abbreviation pass.
	Normalized int

	// TableSeen reports whether the table header was ever reached.
	TableSeen bool

	// Unchanged is set when the run was skipped because the last run that
	// wrote the outputs read the same input with the same settings.
	Unchanged bool

	CSVPath string
	ZipPath string
}

// Option configures Run.
type Option func(*options)

type options struct {
	ledger     Ledger
	scan       []table.Option
	normalizer *table.Normalizer
}

// WithLedger records each run and enables skipping unchanged inputs.
func WithLedger(l Ledger) Option {
	return func(o *options) { o.ledger = l }
}

// WithScanOptions passes options to the table scanner. They apply after the
// markers and row pattern from the configuration.
func WithScanOptions(opts ...table.Option) Option {
	return func(o *options) { o.scan = append(o.scan, opts...) }
}

// WithNormalizer replaces the normalizer built from the configured
// abbreviations.
func WithNormalizer(n *table.Normalizer) Option {
	return func(o *options) { o.normalizer = n }
}

// Run extracts the procedure table from cfg.InputPath. Progress goes to w:
// one line per extracted row and per unmatched table line, then a summary.
func Run(ctx context.Context, cfg types.ExtractionConfig, opener Opener, w io.Writer, opts ...Option) (Summary, error) {
	st, err := resolveSettings(cfg)
	if err != nil {
		return Summary{}, err
	}
	o := options{
		scan:       st.scanOptions(),
		normalizer: table.NewNormalizer(st.Abbreviations...),
	}
	for _, opt := range opts {
		opt(&o)
	}

	info, err := os.Stat(cfg.InputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Summary{}, fmt.Errorf("%w: %s", ErrInputNotFound, cfg.InputPath)
		}
		return Summary{}, fmt.Errorf("stat input %s: %w", cfg.InputPath, err)
	}
	if info.IsDir() {
		return Summary{}, fmt.Errorf("input %s is a directory", cfg.InputPath)
	}

	digest, err := fileSHA256(cfg.InputPath)
	if err != nil {
		return Summary{}, err
	}

	run := types.Run{
		ID:             uuid.NewString(),
		StartedAt:      time.Now().UTC(),
		InputPath:      cfg.InputPath,
		InputSHA256:    digest,
		SettingsSHA256: st.digest,
		CSVPath:        cfg.OutputCSVPath,
		ZipPath:        cfg.OutputZipPath,
	}
	summary := Summary{RunID: run.ID, InputSHA256: digest}

	if o.ledger != nil && !cfg.Force {
		last, err := o.ledger.LastOutputRun(ctx, cfg.OutputCSVPath, cfg.OutputZipPath)
		if err != nil {
			logger.Warn("reading run history: %v", err)
		} else if unchanged(last, run) {
			fmt.Fprintf(w, "skipped: %s (unchanged since run %s)\n", cfg.InputPath, last.ID)
			summary.RunID = last.ID
			summary.Rows = last.Rows
			summary.Pages = last.Pages
			summary.Unmatched = last.Unmatched
			summary.Unchanged = true
			summary.CSVPath = last.CSVPath
			summary.ZipPath = last.ZipPath
			return summary, nil
		}
	}

	res, err := scanDocument(ctx, cfg.InputPath, opener, w, o.scan)
	summary.Pages = res.Pages
	summary.Rows = len(res.Rows)
	summary.Unmatched = res.Unmatched
	summary.Skipped = res.Skipped
	summary.TableSeen = res.TableSeen
	run.Pages = res.Pages
	run.Rows = len(res.Rows)
	run.Unmatched = res.Unmatched
	if err != nil {
		if ctx.Err() == nil {
			run.Status = types.RunFailed
			record(ctx, o.ledger, run, nil)
		}
		return summary, err
	}

	if len(res.Rows) == 0 {
		run.Status = types.RunNoRecords
		record(ctx, o.ledger, run, nil)
		return summary, ErrNoRecords
	}

	summary.Normalized = o.normalizer.Apply(res.Rows)
	fmt.Fprintf(w, "normalized: %d of %d rows\n", summary.Normalized, len(res.Rows))

	if err := export.WriteCSVFile(cfg.OutputCSVPath, res.Rows); err != nil {
		run.Status = types.RunFailed
		record(ctx, o.ledger, run, nil)
		return summary, &OutputError{Op: "write csv", Path: cfg.OutputCSVPath, Err: err}
	}
	summary.CSVPath = cfg.OutputCSVPath
	fmt.Fprintf(w, "written: %s (%d rows)\n", cfg.OutputCSVPath, len(res.Rows))

	ar, err := export.Archive(cfg.OutputZipPath, []string{cfg.OutputCSVPath}, w)
	if err == nil && len(ar.Missing) > 0 {
		err = fmt.Errorf("%s disappeared before archiving", cfg.OutputCSVPath)
	}
	if err != nil {
		run.Status = types.RunFailed
		record(ctx, o.ledger, run, nil)
		return summary, &OutputError{Op: "archive", Path: cfg.OutputZipPath, Err: err}
	}
	summary.ZipPath = cfg.OutputZipPath

	run.Status = types.RunCompleted
	record(ctx, o.ledger, run, res.Rows)

	fmt.Fprintf(w, "\nExtraction summary: %d rows, %d unmatched, %d pages\n",
		summary.Rows, summary.Unmatched, summary.Pages)
	return summary, nil
}

// scanDocument reads every page of the document in order through one
// scanner. A page that cannot be read stops the scan.
func scanDocument(ctx context.Context, path string, opener Opener, w io.Writer, scanOpts []table.Option) (table.ScanResult, error) {
	doc, err := opener.Open(path)
	if err != nil {
		return table.ScanResult{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer doc.Close()

	n := doc.NumPages()
	fmt.Fprintf(w, "reading: %s (%d pages)\n", path, n)

	scanner := table.NewScanner(append(scanOpts, table.WithOutput(w))...)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return scanner.Result(), err
		}
		page, err := doc.Page(i)
		if err != nil {
			return scanner.Result(), fmt.Errorf("reading page %d of %s: %w", i, path, err)
		}
		scanner.ScanPage(page)
	}
	return scanner.Result(), nil
}

// unchanged reports whether last, the latest run that wrote run's outputs,
// completed from the same input bytes and settings, with both outputs still
// on disk.
func unchanged(last *types.Run, run types.Run) bool {
	if last == nil || last.Status != types.RunCompleted {
		return false
	}
	if last.InputPath != run.InputPath || last.InputSHA256 != run.InputSHA256 {
		return false
	}
	if last.SettingsSHA256 != run.SettingsSHA256 {
		return false
	}
	if last.CSVPath != run.CSVPath || last.ZipPath != run.ZipPath {
		return false
	}
	for _, p := range []string{last.CSVPath, last.ZipPath} {
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}

func record(ctx context.Context, l Ledger, run types.Run, rows []types.ExtractedRow) {
	if l == nil {
		return
	}
	if err := l.RecordRun(ctx, run, rows); err != nil {
		logger.Warn("recording run %s: %v", run.ID, err)
	}
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
