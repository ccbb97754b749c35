// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	titleLine  = "ANEXO I - Rol de Procedimentos e Eventos em Saúde - RN 465/2021"
	headerLine = "PROCEDIMENTO VIGÊNCIA OD AMB HCO HSO REF PAC DUT"
	dataLine   = "0301.01.01-0 Consulta médica 01/01/2021 S N S N 1.00 2.00 X"
)

func TestDetectorTransitions(t *testing.T) {
	tests := []struct {
		name      string
		lines     []string
		wantState State
		wantFwd   []bool
	}{
		{
			name:      "title then header enters table",
			lines:     []string{titleLine, headerLine, dataLine},
			wantState: InTable,
			wantFwd:   []bool{false, false, true},
		},
		{
			name:      "header without title is ignored",
			lines:     []string{headerLine, dataLine},
			wantState: Outside,
			wantFwd:   []bool{false, false},
		},
		{
			name:      "title alone waits for header",
			lines:     []string{titleLine, dataLine},
			wantState: HeaderPending,
			wantFwd:   []bool{false, false},
		},
		{
			name:      "legend closes table",
			lines:     []string{titleLine, headerLine, "Legenda:", dataLine},
			wantState: Outside,
			wantFwd:   []bool{false, false, false, false},
		},
		{
			name:      "source note closes pending header",
			lines:     []string{titleLine, "Fonte: ANS", headerLine},
			wantState: Outside,
			wantFwd:   []bool{false, false, false},
		},
		{
			name:      "repeated title and header on continuation page stay in table",
			lines:     []string{titleLine, headerLine, dataLine, titleLine, headerLine, dataLine},
			wantState: InTable,
			wantFwd:   []bool{false, false, true, false, false, true},
		},
		{
			name:      "region is re-enterable",
			lines:     []string{titleLine, headerLine, "Legenda: OD odontológico", titleLine, headerLine, dataLine},
			wantState: InTable,
			wantFwd:   []bool{false, false, false, false, false, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector(DefaultMarkers())
			var got []bool
			for _, l := range tt.lines {
				got = append(got, d.Feed(l))
			}
			assert.Equal(t, tt.wantFwd, got)
			assert.Equal(t, tt.wantState, d.State())
		})
	}
}

func TestDetectorNeverForwardsOutsideTable(t *testing.T) {
	d := NewDetector(DefaultMarkers())
	lines := []string{dataLine, "texto narrativo", titleLine, dataLine, "qualquer coisa"}
	for _, l := range lines {
		before := d.State()
		fwd := d.Feed(l)
		if fwd {
			assert.Equal(t, InTable, before, "forwarded %q from %s", l, before)
		}
	}
}

func TestDetectorEmptyMarkersNeverMatch(t *testing.T) {
	d := NewDetector(Markers{Title: "TITLE", Header: "", Terminators: []string{""}})
	assert.False(t, d.Feed("TITLE"))
	assert.Equal(t, HeaderPending, d.State())
	assert.False(t, d.Feed("anything"))
	assert.Equal(t, HeaderPending, d.State())
}

func TestDetectorReset(t *testing.T) {
	d := NewDetector(DefaultMarkers())
	d.Feed(titleLine)
	d.Feed(headerLine)
	d.Reset()
	assert.Equal(t, Outside, d.State())
	assert.False(t, d.Feed(dataLine))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "outside", Outside.String())
	assert.Equal(t, "header_pending", HeaderPending.String())
	assert.Equal(t, "in_table", InTable.String())
	assert.Equal(t, "unknown", State(42).String())
}
