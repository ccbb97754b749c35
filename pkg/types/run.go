// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RunStatus is the outcome of an extraction run.
type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	RunNoRecords RunStatus = "no_records"
	RunFailed    RunStatus = "failed"
)

// Run records one extraction run in the history ledger.
type Run struct {
	// ID is a UUID assigned when the run starts.
	ID string `json:"id" yaml:"id"`

	StartedAt time.Time `json:"started_at" yaml:"started_at"`

	// InputPath is the PDF that was read.
	InputPath string `json:"input_path" yaml:"input_path"`

	// InputSHA256 is the hex digest of the PDF contents.
	InputSHA256 string `json:"input_sha256" yaml:"input_sha256"`

	// SettingsSHA256 is the digest of the markers, row pattern and
	// abbreviations the run used.
	SettingsSHA256 string `json:"settings_sha256,omitempty" yaml:"settings_sha256,omitempty"`

	Pages     int `json:"pages" yaml:"pages"`
	Rows      int `json:"rows" yaml:"rows"`
	Unmatched int `json:"unmatched" yaml:"unmatched"`

	CSVPath string `json:"csv_path" yaml:"csv_path"`
	ZipPath string `json:"zip_path" yaml:"zip_path"`

	Status RunStatus `json:"status" yaml:"status"`
}
