// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/rol-export/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.HistoryConfig{StateDir: filepath.Join(t.TempDir(), "state"), MaxResults: 2})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testRun(id string, offset time.Duration, status types.RunStatus) types.Run {
	return types.Run{
		ID:          id,
		StartedAt:   base.Add(offset),
		InputPath:   "downloads/anexo.pdf",
		InputSHA256: "sha-" + id,
		Pages:       3,
		Rows:        2,
		CSVPath:     "Rol_Procedimentos.csv",
		ZipPath:     "Rol_Procedimentos.zip",
		Status:      status,
	}
}

var rowsV1 = []types.ExtractedRow{
	{Code: "0301.01.01-0", Description: "Consulta médica", SegmentDetail: "Odontológico"},
	{Code: "0301.01.02-9", Description: "Consulta em pronto socorro", SegmentDetail: "Ambulatorial"},
}

var rowsV2 = []types.ExtractedRow{
	{Code: "0401.01.01-1", Description: "Biópsia de pele", SegmentDetail: "Ambulatorial"},
	{Code: "0401.01.02-X", Description: "Consulta de retorno"},
}

func TestNewStoreRequiresStateDir(t *testing.T) {
	_, err := NewStore(types.HistoryConfig{})
	assert.Error(t, err)
}

func TestNewStoreReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewStore(types.HistoryConfig{StateDir: dir})
	require.NoError(t, err)
	require.NoError(t, s.RecordRun(ctx, testRun("a", 0, types.RunCompleted), rowsV1))
	require.NoError(t, s.Close())

	s, err = NewStore(types.HistoryConfig{StateDir: dir})
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, filepath.Join(dir, dbFile), s.Path())

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "a", runs[0].ID)
}

func TestRecordRunRequiresID(t *testing.T) {
	s := testStore(t)
	err := s.RecordRun(context.Background(), types.Run{}, nil)
	assert.Error(t, err)
}

func TestRecordRunDuplicateID(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.RecordRun(ctx, testRun("a", 0, types.RunCompleted), rowsV1))
	assert.Error(t, s.RecordRun(ctx, testRun("a", time.Minute, types.RunCompleted), rowsV2))

	procs, err := s.Procedures(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, rowsV1, procs, "failed insert leaves the first run intact")
}

func TestLastRun(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	got, err := s.LastRun(ctx, "downloads/anexo.pdf")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.RecordRun(ctx, testRun("old", 0, types.RunCompleted), rowsV1))
	require.NoError(t, s.RecordRun(ctx, testRun("new", time.Hour, types.RunCompleted), rowsV2))
	require.NoError(t, s.RecordRun(ctx, testRun("empty", 2*time.Hour, types.RunNoRecords), nil))

	got, err = s.LastRun(ctx, "downloads/anexo.pdf")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "new", got.ID)
	assert.Equal(t, "sha-new", got.InputSHA256)
	assert.Equal(t, base.Add(time.Hour), got.StartedAt)
	assert.Equal(t, types.RunCompleted, got.Status)
	assert.Equal(t, 3, got.Pages)
	assert.Equal(t, "Rol_Procedimentos.zip", got.ZipPath)

	other, err := s.LastRun(ctx, "other.pdf")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestLastOutputRun(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	got, err := s.LastOutputRun(ctx, "Rol_Procedimentos.csv", "Rol_Procedimentos.zip")
	require.NoError(t, err)
	assert.Nil(t, got)

	a := testRun("a", 0, types.RunCompleted)
	a.SettingsSHA256 = "settings-1"
	b := testRun("b", time.Hour, types.RunCompleted)
	b.InputPath = "downloads/anexo-ii.pdf"
	b.ZipPath = "other.zip"
	empty := testRun("empty", 2*time.Hour, types.RunNoRecords)
	elsewhere := testRun("elsewhere", 3*time.Hour, types.RunCompleted)
	elsewhere.CSVPath = "elsewhere.csv"
	elsewhere.ZipPath = "elsewhere.zip"
	for _, r := range []types.Run{a, b, empty, elsewhere} {
		require.NoError(t, s.RecordRun(ctx, r, nil))
	}

	got, err = s.LastOutputRun(ctx, "Rol_Procedimentos.csv", "Rol_Procedimentos.zip")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "b", got.ID, "a run sharing only the CSV path counts")
	assert.Equal(t, "downloads/anexo-ii.pdf", got.InputPath)

	got, err = s.LastOutputRun(ctx, "x.csv", "Rol_Procedimentos.zip")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a", got.ID)
	assert.Equal(t, "settings-1", got.SettingsSHA256)

	failed := testRun("failed", 4*time.Hour, types.RunFailed)
	require.NoError(t, s.RecordRun(ctx, failed, nil))
	got, err = s.LastOutputRun(ctx, "Rol_Procedimentos.csv", "Rol_Procedimentos.zip")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, types.RunFailed, got.Status)
}

func TestNewStoreAddsSettingsColumn(t *testing.T) {
	dir := t.TempDir()
	db, err := sql.Open("sqlite3", filepath.Join(dir, dbFile))
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE runs (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		started_at INTEGER NOT NULL,
		input_path TEXT NOT NULL,
		input_sha256 TEXT,
		pages INTEGER,
		rows INTEGER,
		unmatched INTEGER,
		csv_path TEXT,
		zip_path TEXT,
		status TEXT NOT NULL
	)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO runs (id, started_at, input_path, input_sha256, status) VALUES ('old', 1, 'anexo.pdf', 'abc', 'completed')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := NewStore(types.HistoryConfig{StateDir: dir})
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	old, err := s.LastRun(ctx, "anexo.pdf")
	require.NoError(t, err)
	require.NotNil(t, old)
	assert.Empty(t, old.SettingsSHA256)

	r := testRun("new", 0, types.RunCompleted)
	r.SettingsSHA256 = "settings-2"
	require.NoError(t, s.RecordRun(ctx, r, nil))
	got, err := s.LastRun(ctx, r.InputPath)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "settings-2", got.SettingsSHA256)
}

func TestListRunsNewestFirst(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordRun(ctx, testRun("r1", 0, types.RunCompleted), rowsV1))
	require.NoError(t, s.RecordRun(ctx, testRun("r2", time.Minute, types.RunFailed), nil))
	require.NoError(t, s.RecordRun(ctx, testRun("r3", 2*time.Minute, types.RunNoRecords), nil))

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2, "store default limit applies")
	assert.Equal(t, "r3", runs[0].ID)
	assert.Equal(t, "r2", runs[1].ID)

	runs, err = s.ListRuns(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestSearchLatestRunOnly(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordRun(ctx, testRun("old", 0, types.RunCompleted), rowsV1))
	require.NoError(t, s.RecordRun(ctx, testRun("new", time.Hour, types.RunCompleted), rowsV2))

	got, err := s.Search(ctx, "consulta", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "0401.01.02-X", got[0].Code)

	got, err = s.Search(ctx, "0401.01", 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.Search(ctx, "0401.01", 1)
	require.NoError(t, err)
	assert.Equal(t, []types.ExtractedRow{rowsV2[0]}, got)
}

func TestSearchEscapesWildcards(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.RecordRun(ctx, testRun("a", 0, types.RunCompleted), rowsV1))

	got, err := s.Search(ctx, "%", 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.Search(ctx, "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExport(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	e, err := s.Export(ctx, "downloads/anexo.pdf")
	require.NoError(t, err)
	assert.Nil(t, e)

	require.NoError(t, s.RecordRun(ctx, testRun("a", 0, types.RunCompleted), rowsV1))
	e, err = s.Export(ctx, "downloads/anexo.pdf")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, rowsV1, e.Procedures)

	var yb bytes.Buffer
	require.NoError(t, e.WriteYAML(&yb))
	var fromYAML RunExport
	require.NoError(t, yaml.Unmarshal(yb.Bytes(), &fromYAML))
	assert.Equal(t, "a", fromYAML.Run.ID)
	assert.Equal(t, rowsV1, fromYAML.Procedures)

	var jb bytes.Buffer
	require.NoError(t, e.WriteJSON(&jb))
	var fromJSON RunExport
	require.NoError(t, json.Unmarshal(jb.Bytes(), &fromJSON))
	assert.Equal(t, rowsV1[1].Description, fromJSON.Procedures[1].Description)
}
