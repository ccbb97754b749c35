// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package table

import (
	"strings"

	"github.com/pdiddy/rol-export/pkg/types"
)

// Replacement is one literal abbreviation expansion.
type Replacement = types.Abbreviation

// DefaultAbbreviations are the annex abbreviations, in application order.
var DefaultAbbreviations = []Replacement{
	{From: "OD", To: types.SegmentDental},
	{From: "AMB", To: types.SegmentOutpatient},
	{From: "HOSP", To: "Hospitalar"},
	{From: "UTI", To: "Unidade de Terapia Intensiva"},
}

// Normalizer expands abbreviations in the segment detail field. The
// replacements run one after another, each over the output of the previous.
type Normalizer struct {
	replacements []Replacement
}

// NewNormalizer returns a Normalizer for reps, or DefaultAbbreviations when
// none are given.
func NewNormalizer(reps ...Replacement) *Normalizer {
	if len(reps) == 0 {
		reps = DefaultAbbreviations
	}
	return &Normalizer{replacements: reps}
}

// Normalize applies every replacement to s in order.
func (n *Normalizer) Normalize(s string) string {
	for _, r := range n.replacements {
		if r.From == "" {
			continue
		}
		s = strings.ReplaceAll(s, r.From, r.To)
	}
	return s
}

// Apply normalizes SegmentDetail of each row in place and returns the
// number of rows that changed.
func (n *Normalizer) Apply(rows []types.ExtractedRow) int {
	changed := 0
	for i := range rows {
		out := n.Normalize(rows[i].SegmentDetail)
		if out != rows[i].SegmentDetail {
			rows[i].SegmentDetail = out
			changed++
		}
	}
	return changed
}
