// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"github.com/pdiddy/rol-export/internal/pdftext"
	"github.com/pdiddy/rol-export/pkg/types"
)

// PageSource is an open document whose pages are read in order.
type PageSource interface {
	NumPages() int
	Page(n int) (types.PageText, error)
	Close() error
}

// Opener opens the input document.
type Opener interface {
	Open(path string) (PageSource, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(path string) (PageSource, error)

// Open calls f(path).
func (f OpenerFunc) Open(path string) (PageSource, error) {
	return f(path)
}

// PDFOpener reads PDFs through the text stripper.
var PDFOpener Opener = OpenerFunc(func(path string) (PageSource, error) {
	doc, err := pdftext.Open(path)
	if err != nil {
		return nil, err
	}
	return doc, nil
})
