// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/rol-export/internal/table"
	"github.com/pdiddy/rol-export/pkg/types"
)

func TestFormatRuns(t *testing.T) {
	runs := []types.Run{{
		ID:        "6f1c2b1e-0000-4000-8000-000000000001",
		StartedAt: time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC),
		InputPath: "downloads/anexo.pdf",
		Pages:     3,
		Rows:      120,
		Unmatched: 2,
		Status:    types.RunCompleted,
	}}

	var buf bytes.Buffer
	require.NoError(t, formatRuns(&buf, runs, false))
	out := buf.String()
	assert.Contains(t, out, "2026-03-01 12:30:00")
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "downloads/anexo.pdf")
	assert.Contains(t, out, "1 run(s)")

	buf.Reset()
	require.NoError(t, formatRuns(&buf, nil, false))
	assert.Equal(t, "No runs recorded.\n", buf.String())

	buf.Reset()
	require.NoError(t, formatRuns(&buf, runs, true))
	var decoded []types.Run
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, runs[0].ID, decoded[0].ID)
}

func TestFormatProcedures(t *testing.T) {
	long := strings.Repeat("procedimento ", 10)
	rows := []types.ExtractedRow{
		{Code: "0301.01.01-0", Description: "Consulta médica", SegmentDetail: "Odontológico"},
		{Code: "0301.01.02-9", Description: long},
	}

	var buf bytes.Buffer
	require.NoError(t, formatProcedures(&buf, rows, false))
	out := buf.String()
	assert.Contains(t, out, "0301.01.01-0  Consulta médica")
	assert.Contains(t, out, "...")
	assert.NotContains(t, out, long)

	buf.Reset()
	require.NoError(t, formatProcedures(&buf, nil, false))
	assert.Equal(t, "No results found.\n", buf.String())
}

func TestDefaultConfig(t *testing.T) {
	cfg, err := pipelineConfig()
	require.NoError(t, err)
	assert.Equal(t, defaultPageURL, cfg.Fetch.PageURL)
	assert.Equal(t, "anexos.zip", cfg.Fetch.ZipPath)
	assert.Equal(t, time.Second, cfg.Fetch.DownloadDelay)
	assert.True(t, cfg.Fetch.Browser.Enabled)
	assert.True(t, cfg.Fetch.Browser.Headless)
	assert.Equal(t, defaultInput, cfg.Extraction.InputPath)
	assert.Equal(t, "Rol_Procedimentos.csv", cfg.Extraction.OutputCSVPath)
	assert.Equal(t, "Rol_Procedimentos.zip", cfg.Extraction.OutputZipPath)
	assert.Equal(t, 20, cfg.History.MaxResults)
	assert.Equal(t, table.DefaultMarkers(), cfg.Extraction.Markers)
	assert.Equal(t, table.DefaultRowExpr, cfg.Extraction.RowPattern)
	assert.Empty(t, cfg.Extraction.Abbreviations)
}

func TestConfigOverride(t *testing.T) {
	viper.Set(keyCSV, "out/rol.csv")
	t.Cleanup(func() { viper.Set(keyCSV, "Rol_Procedimentos.csv") })

	cfg, err := extractionConfig()
	require.NoError(t, err)
	assert.Equal(t, "out/rol.csv", cfg.OutputCSVPath)
}

func TestConfigTableSettings(t *testing.T) {
	viper.Set(keyTitle, "TABELA")
	viper.Set(keyTerminators, []string{"FIM"})
	viper.Set(keyRowPattern, `^(?P<code>\d+) (?P<description>.+)$`)
	viper.Set(keyAbbreviations, []map[string]any{{"from": "AMB", "to": "Ambulatorial"}})
	t.Cleanup(func() {
		markers := table.DefaultMarkers()
		viper.Set(keyTitle, markers.Title)
		viper.Set(keyTerminators, markers.Terminators)
		viper.Set(keyRowPattern, table.DefaultRowExpr)
		viper.Set(keyAbbreviations, nil)
	})

	cfg, err := extractionConfig()
	require.NoError(t, err)
	assert.Equal(t, types.TableMarkers{
		Title:       "TABELA",
		Header:      table.DefaultMarkers().Header,
		Terminators: []string{"FIM"},
	}, cfg.Markers)
	assert.Equal(t, `^(?P<code>\d+) (?P<description>.+)$`, cfg.RowPattern)
	assert.Equal(t, []types.Abbreviation{{From: "AMB", To: "Ambulatorial"}}, cfg.Abbreviations)

	var buf bytes.Buffer
	configCmd.SetOut(&buf)
	require.NoError(t, configCmd.RunE(configCmd, nil))
	assert.Contains(t, buf.String(), "title: TABELA")
	assert.Contains(t, buf.String(), "row_pattern: ")
	assert.Contains(t, buf.String(), "- from: AMB")
}
