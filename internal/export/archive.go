// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ArchiveResult lists what went into an archive.
type ArchiveResult struct {
	Added   []string
	Missing []string
}

// Archive writes the files to a ZIP at zipPath. Entries are named by base
// name only and copied one at a time with the default compression. Files
// that do not exist are skipped and reported in Missing; any other read
// error aborts the archive.
func Archive(zipPath string, files []string, w io.Writer) (ArchiveResult, error) {
	var res ArchiveResult
	err := writeAtomic(zipPath, ".zip-*.tmp", func(out io.Writer) error {
		zw := zip.NewWriter(out)
		for _, f := range files {
			added, err := addFile(zw, f)
			if err != nil {
				zw.Close()
				return err
			}
			if !added {
				fmt.Fprintf(w, "missing: %s (not archived)\n", f)
				res.Missing = append(res.Missing, f)
				continue
			}
			fmt.Fprintf(w, "archived: %s\n", filepath.Base(f))
			res.Added = append(res.Added, f)
		}
		return zw.Close()
	})
	if err != nil {
		return ArchiveResult{}, fmt.Errorf("writing archive %s: %w", zipPath, err)
	}
	return res, nil
}

func addFile(zw *zip.Writer, path string) (bool, error) {
	src, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("opening %s: %w", path, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}

	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return false, fmt.Errorf("zip header for %s: %w", path, err)
	}
	hdr.Name = filepath.Base(path)
	hdr.Method = zip.Deflate

	dst, err := zw.CreateHeader(hdr)
	if err != nil {
		return false, fmt.Errorf("adding %s: %w", hdr.Name, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		return false, fmt.Errorf("copying %s: %w", hdr.Name, err)
	}
	return true, nil
}
