// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package table

import (
	"regexp"
	"strings"

	"github.com/pdiddy/rol-export/pkg/types"
)

// Outcome classifies a line handed to the Matcher.
type Outcome int

const (
	// Skipped lines are blank, footnotes, or section labels.
	Skipped Outcome = iota
	// Matched lines produced a row.
	Matched
	// Unmatched lines looked like content but did not fit the pattern.
	Unmatched
)

func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case Matched:
		return "matched"
	case Unmatched:
		return "unmatched"
	default:
		return "unknown"
	}
}

// sectionLabel matches group headings such as "PROCEDIMENTOS" or "CONSULTAS".
var sectionLabel = regexp.MustCompile(`^[A-Z]{3,}\s*$`)

// Matcher turns table body lines into rows.
type Matcher struct {
	pattern RowPattern
}

// NewMatcher returns a Matcher using p, or DefaultPattern when p is nil.
func NewMatcher(p RowPattern) *Matcher {
	if p == nil {
		p = DefaultPattern()
	}
	return &Matcher{pattern: p}
}

// Match trims line and derives a row from it. The row is only meaningful
// when the outcome is Matched.
func (m *Matcher) Match(line string) (types.ExtractedRow, Outcome) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "(") || sectionLabel.MatchString(line) {
		return types.ExtractedRow{}, Skipped
	}

	f, ok := m.pattern.Match(line)
	if !ok {
		return types.ExtractedRow{}, Unmatched
	}

	row := types.ExtractedRow{
		Code:          strings.TrimSpace(f.Code),
		Description:   strings.TrimSpace(f.Description),
		SegmentDetail: segmentDetail(f),
	}
	if row.Code == "" || row.Description == "" {
		return types.ExtractedRow{}, Unmatched
	}
	return row, Matched
}

// segmentDetail joins the labels of the OD and AMB flags that are set.
func segmentDetail(f Fields) string {
	var parts []string
	if f.OD == "S" {
		parts = append(parts, types.SegmentDental)
	}
	if f.AMB == "S" {
		parts = append(parts, types.SegmentOutpatient)
	}
	return strings.Join(parts, types.SegmentSeparator)
}
