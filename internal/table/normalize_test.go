// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package table

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/rol-export/pkg/types"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"OD", "Odontológico"},
		{"AMB", "Ambulatorial"},
		{"OD|AMB", "Odontológico|Ambulatorial"},
		{"HOSP", "Hospitalar"},
		{"UTI", "Unidade de Terapia Intensiva"},
		{"HOSP|UTI", "Hospitalar|Unidade de Terapia Intensiva"},
		{"Odontológico|Ambulatorial", "Odontológico|Ambulatorial"},
		{"sem abreviação", "sem abreviação"},
	}
	n := NewNormalizer()
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := NewNormalizer()
	inputs := []string{"", "OD", "OD|AMB", "HOSP|UTI|AMB", "Odontológico", "AMBOD", "UTIHOSP"}
	for _, in := range inputs {
		once := n.Normalize(in)
		assert.Equal(t, once, n.Normalize(once), "input %q", in)
	}
}

func TestNormalizeOrderMatters(t *testing.T) {
	n := NewNormalizer(
		Replacement{From: "A", To: "B"},
		Replacement{From: "B", To: "C"},
	)
	assert.Equal(t, "CC", n.Normalize("AB"))

	n = NewNormalizer(Replacement{From: "", To: "x"}, Replacement{From: "A", To: "B"})
	assert.Equal(t, "B", n.Normalize("A"), "empty source is ignored")
}

func TestNormalizerApply(t *testing.T) {
	rows := []types.ExtractedRow{
		{Code: "1", Description: "a", SegmentDetail: "OD"},
		{Code: "2", Description: "b", SegmentDetail: "Odontológico|Ambulatorial"},
		{Code: "3", Description: "c"},
	}
	changed := NewNormalizer().Apply(rows)

	assert.Equal(t, 1, changed)
	assert.Equal(t, "Odontológico", rows[0].SegmentDetail)
	assert.Equal(t, "Odontológico|Ambulatorial", rows[1].SegmentDetail)
	assert.Equal(t, "", rows[2].SegmentDetail)
}
