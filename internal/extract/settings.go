// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/rol-export/internal/table"
	"github.com/pdiddy/rol-export/pkg/types"
)

// settings are the markers, row pattern and abbreviations an extraction
// runs with, after defaults are applied.
type settings struct {
	Markers       table.Markers       `yaml:"markers"`
	RowPattern    string              `yaml:"row_pattern"`
	Abbreviations []table.Replacement `yaml:"abbreviations"`

	pattern *table.RegexpPattern
	digest  string
}

// resolveSettings fills the empty table settings of cfg with the annex
// defaults, compiles the row pattern and computes the digest recorded with
// each run. Runs with the same digest split the same input into the same rows.
func resolveSettings(cfg types.ExtractionConfig) (settings, error) {
	def := table.DefaultMarkers()
	st := settings{
		Markers:       cfg.Markers,
		RowPattern:    cfg.RowPattern,
		Abbreviations: cfg.Abbreviations,
	}
	if st.Markers.Title == "" {
		st.Markers.Title = def.Title
	}
	if st.Markers.Header == "" {
		st.Markers.Header = def.Header
	}
	if len(st.Markers.Terminators) == 0 {
		st.Markers.Terminators = def.Terminators
	}
	if st.RowPattern == "" {
		st.RowPattern = table.DefaultRowExpr
	}
	if len(st.Abbreviations) == 0 {
		st.Abbreviations = table.DefaultAbbreviations
	}

	p, err := table.NewRegexpPattern(st.RowPattern)
	if err != nil {
		return settings{}, err
	}
	st.pattern = p

	data, err := yaml.Marshal(st)
	if err != nil {
		return settings{}, fmt.Errorf("encoding extraction settings: %w", err)
	}
	sum := sha256.Sum256(data)
	st.digest = hex.EncodeToString(sum[:])
	return st, nil
}

func (s settings) scanOptions() []table.Option {
	return []table.Option{table.WithMarkers(s.Markers), table.WithPattern(s.pattern)}
}
