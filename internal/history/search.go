// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/rol-export/pkg/types"
)

// Procedures returns the rows recorded for runID in extraction order.
func (s *Store) Procedures(ctx context.Context, runID string) ([]types.ExtractedRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code, description, segment, segment_detail FROM procedures
		 WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying procedures: %w", err)
	}
	defer rows.Close()
	return scanProcedures(rows)
}

// Search matches text against the code and description of every procedure
// from the latest completed run. Matching is a case-insensitive substring
// test for ASCII letters.
func (s *Store) Search(ctx context.Context, text string, limit int) ([]types.ExtractedRow, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = s.maxResults
	}

	pattern := "%" + escapeLike(text) + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.code, p.description, p.segment, p.segment_detail
		 FROM procedures p
		 WHERE p.run_id = (
			SELECT id FROM runs WHERE status = ?
			ORDER BY started_at DESC, seq DESC LIMIT 1
		 )
		 AND (p.code LIKE ? ESCAPE '\' OR p.description LIKE ? ESCAPE '\')
		 ORDER BY p.position
		 LIMIT ?`,
		string(types.RunCompleted), pattern, pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching procedures: %w", err)
	}
	defer rows.Close()
	return scanProcedures(rows)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

type rowIterator interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanProcedures(rows rowIterator) ([]types.ExtractedRow, error) {
	var out []types.ExtractedRow
	for rows.Next() {
		var r types.ExtractedRow
		var segment, detail *string
		if err := rows.Scan(&r.Code, &r.Description, &segment, &detail); err != nil {
			return nil, fmt.Errorf("scanning procedure: %w", err)
		}
		if segment != nil {
			r.Segment = *segment
		}
		if detail != nil {
			r.SegmentDetail = *detail
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
