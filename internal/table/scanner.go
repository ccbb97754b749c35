// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package table

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/rol-export/internal/logger"
	"github.com/pdiddy/rol-export/pkg/types"
)

// ScanResult holds the rows and counters of a document scan.
type ScanResult struct {
	Rows []types.ExtractedRow

	Pages int
	// TableLines counts lines forwarded by the detector.
	TableLines int
	Skipped    int
	Unmatched  int

	// TableSeen reports whether the detector ever reached InTable.
	TableSeen bool
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithMarkers replaces the region markers.
func WithMarkers(m Markers) Option {
	return func(s *Scanner) {
		s.detector = NewDetector(m)
	}
}

// WithPattern replaces the row pattern.
func WithPattern(p RowPattern) Option {
	return func(s *Scanner) {
		s.matcher = NewMatcher(p)
	}
}

// WithOutput sets the writer that receives one line per extracted row and
// per unmatched line. Defaults to io.Discard.
func WithOutput(w io.Writer) Option {
	return func(s *Scanner) {
		s.w = w
	}
}

// Scanner runs the detector and matcher over the pages of one document,
// in order. It is not safe for concurrent use.
type Scanner struct {
	detector *Detector
	matcher  *Matcher
	w        io.Writer
	result   ScanResult
}

// NewScanner returns a Scanner with the annex defaults.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		detector: NewDetector(DefaultMarkers()),
		matcher:  NewMatcher(nil),
		w:        io.Discard,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ScanPage scans the lines of one page. Detector state carries over from
// the previous page.
func (s *Scanner) ScanPage(p types.PageText) {
	s.result.Pages++
	logger.Debug("page %d: state %s", p.Number, s.detector.State())
	s.ScanLines(splitLines(p.Text))
}

// ScanLines feeds lines through the detector and matches the forwarded ones.
func (s *Scanner) ScanLines(lines []string) {
	for _, line := range lines {
		before := s.detector.State()
		forward := s.detector.Feed(line)
		if after := s.detector.State(); after != before {
			logger.Debug("table region %s -> %s at %q", before, after, strings.TrimSpace(line))
			if after == InTable {
				s.result.TableSeen = true
			}
		}
		if !forward {
			continue
		}
		s.result.TableLines++

		row, outcome := s.matcher.Match(line)
		switch outcome {
		case Matched:
			s.result.Rows = append(s.result.Rows, row)
			fmt.Fprintf(s.w, "extracted: %s\n", strings.Join(row.Record(), " | "))
		case Unmatched:
			s.result.Unmatched++
			fmt.Fprintf(s.w, "unmatched: %s\n", strings.TrimSpace(line))
		case Skipped:
			s.result.Skipped++
		}
	}
}

// Result returns the accumulated result.
func (s *Scanner) Result() ScanResult {
	return s.result
}

// Scan is a convenience that scans pages with a fresh Scanner.
func Scan(pages []types.PageText, opts ...Option) ScanResult {
	s := NewScanner(opts...)
	for _, p := range pages {
		s.ScanPage(p)
	}
	return s.Result()
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
