// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/rol-export/internal/pdftext/pdftexttest"
)

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenNotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf at all"), 0o644))

	_, err := Open(path)
	assert.Error(t, err)
}

func TestDocumentPages(t *testing.T) {
	path := pdftexttest.WriteFile(t, t.TempDir(), "anexo.pdf", [][]string{
		{"Rol de Procedimentos e Eventos em Saúde", "PROCEDIMENTO VIGÊNCIA OD AMB HCO HSO REF PAC DUT"},
		{"0301.01.01-0 Consulta médica 01/01/2021 S N S N 1.00 2.00 X", "Legenda:"},
	})

	doc, err := Open(path)
	require.NoError(t, err)
	defer doc.Close()

	require.Equal(t, 2, doc.NumPages())

	p1, err := doc.Page(1)
	require.NoError(t, err)
	assert.Equal(t, 1, p1.Number)
	assert.Equal(t, "Rol de Procedimentos e Eventos em Saúde\nPROCEDIMENTO VIGÊNCIA OD AMB HCO HSO REF PAC DUT", p1.Text)

	p2, err := doc.Page(2)
	require.NoError(t, err)
	assert.Equal(t, "0301.01.01-0 Consulta médica 01/01/2021 S N S N 1.00 2.00 X\nLegenda:", p2.Text)

	_, err = doc.Page(3)
	assert.ErrorContains(t, err, "invalid page number 3")
	_, err = doc.Page(0)
	assert.Error(t, err)
}

func TestDocumentCloseIdempotent(t *testing.T) {
	path := pdftexttest.WriteFile(t, t.TempDir(), "a.pdf", [][]string{{"x"}})
	doc, err := Open(path)
	require.NoError(t, err)

	assert.NoError(t, doc.Close())
	assert.NoError(t, doc.Close())
}
