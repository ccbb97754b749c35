// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Annex holds metadata and file paths for a downloaded annex PDF. The fetch
// stage writes one as a YAML sidecar next to each PDF.
type Annex struct {
	// ID is the PDF file name without extension.
	ID string `json:"id" yaml:"id"`

	// Title is the link text the annex was found under (e.g. "Anexo I").
	Title string `json:"title" yaml:"title"`

	// SourceURL is the URL from which the PDF was downloaded.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// PDFPath is the local filesystem path to the downloaded PDF.
	PDFPath string `json:"pdf_path" yaml:"pdf_path"`

	// Size is the PDF size in bytes.
	Size int64 `json:"size" yaml:"size"`

	// SHA256 is the hex digest of the PDF contents.
	SHA256 string `json:"sha256" yaml:"sha256"`

	DownloadedAt time.Time `json:"downloaded_at" yaml:"downloaded_at"`
}
