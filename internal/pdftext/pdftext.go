// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftext strips the text layer of a PDF page by page, re-linearized
// in reading order: glyphs are grouped into lines by baseline, ordered left
// to right, and separated by a single space where the horizontal gap shows a
// word break.
package pdftext

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/pdiddy/rol-export/internal/logger"
	"github.com/pdiddy/rol-export/pkg/types"
)

// Document is an open PDF. Close it when done.
type Document struct {
	path   string
	file   *os.File
	reader *pdf.Reader
}

// Open checks the file structure with pdfcpu and opens it for text
// extraction. A file pdfcpu cannot read is reported as a parse failure.
func Open(path string) (*Document, error) {
	pages, err := structuralPageCount(path)
	if err != nil {
		return nil, err
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF %s: %w", path, err)
	}

	if n := r.NumPage(); n != pages {
		logger.Warn("%s: page tree reports %d pages, text reader sees %d", path, pages, n)
	}
	logger.Debug("opened %s (%d pages)", path, r.NumPage())

	return &Document{path: path, file: f, reader: r}, nil
}

// structuralPageCount reads the cross-reference table and page tree with
// pdfcpu in relaxed mode.
func structuralPageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		return 0, fmt.Errorf("reading PDF structure of %s: %w", path, err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("counting pages of %s: %w", path, err)
	}
	return ctx.PageCount, nil
}

// NumPages returns the number of pages.
func (d *Document) NumPages() int {
	return d.reader.NumPage()
}

// Page returns the linearized text of page n (1-based). A page whose
// content stream makes the reader panic is reported as an error.
func (d *Document) Page(n int) (pt types.PageText, err error) {
	if n < 1 || n > d.reader.NumPage() {
		return types.PageText{}, fmt.Errorf("invalid page number %d (document has %d pages)", n, d.reader.NumPage())
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Debug("page %d panic stack:\n%s", n, debug.Stack())
			err = fmt.Errorf("reading page %d of %s: %v", n, d.path, r)
		}
	}()

	p := d.reader.Page(n)
	if p.V.IsNull() {
		return types.PageText{Number: n}, nil
	}

	content := p.Content()
	glyphs := make([]glyph, 0, len(content.Text))
	for _, t := range content.Text {
		glyphs = append(glyphs, glyph{X: t.X, Y: t.Y, W: t.W, FontSize: t.FontSize, S: t.S})
	}
	return types.PageText{Number: n, Text: linearize(glyphs)}, nil
}

// Close releases the underlying file.
func (d *Document) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}
