// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export serializes extracted rows to CSV and bundles output files
// into ZIP archives. Both writers go through a temporary file in the
// destination directory and rename on success, so a failed run never leaves
// a truncated output behind.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/rol-export/pkg/types"
)

// WriteCSV writes the header and one record per row to w.
func WriteCSV(w io.Writer, rows []types.ExtractedRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(types.CSVHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range rows {
		if err := cw.Write(r.Record()); err != nil {
			return fmt.Errorf("writing row %d (%s): %w", i+1, r.Code, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes rows to path.
func WriteCSVFile(path string, rows []types.ExtractedRow) error {
	return writeAtomic(path, ".csv-*.tmp", func(w io.Writer) error {
		return WriteCSV(w, rows)
	})
}

// writeAtomic creates a temp file next to path, lets fill write it, and
// renames it into place.
func writeAtomic(path, pattern string, fill func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	fillErr := fill(tmp)
	closeErr := tmp.Close()
	if fillErr != nil {
		os.Remove(tmpPath)
		return fillErr
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
