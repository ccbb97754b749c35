// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/rol-export/pkg/types"
)

// RunExport is a run together with the procedures it produced.
type RunExport struct {
	Run        types.Run            `json:"run" yaml:"run"`
	Procedures []types.ExtractedRow `json:"procedures" yaml:"procedures"`
}

// Export loads the latest completed run for inputPath with its procedures.
// It returns nil when the input has no completed run.
func (s *Store) Export(ctx context.Context, inputPath string) (*RunExport, error) {
	run, err := s.LastRun(ctx, inputPath)
	if err != nil || run == nil {
		return nil, err
	}
	procs, err := s.Procedures(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	return &RunExport{Run: *run, Procedures: procs}, nil
}

// WriteYAML encodes e as YAML to w.
func (e *RunExport) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(e); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// WriteJSON encodes e as indented JSON to w.
func (e *RunExport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(e); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}
