// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CSVHeader is the fixed header of the procedure export, in column order.
var CSVHeader = []string{"Código", "Descrição", "Segmento", "Detalhe do Segmento"}

// Segment detail labels derived from the OD and AMB flag columns.
const (
	SegmentDental     = "Odontológico"
	SegmentOutpatient = "Ambulatorial"
)

// SegmentSeparator joins multiple segment detail labels.
const SegmentSeparator = "|"

// ExtractedRow is one procedure recovered from the annex table.
type ExtractedRow struct {
	// Code is the procedure code, formatted DDDD.DD.DD-D.
	Code string `json:"code" yaml:"code"`

	// Description is the procedure name as printed in the annex.
	Description string `json:"description" yaml:"description"`

	// Segment is reserved and currently always empty.
	Segment string `json:"segment" yaml:"segment"`

	// SegmentDetail lists the care settings the procedure applies to,
	// joined by SegmentSeparator.
	SegmentDetail string `json:"segment_detail" yaml:"segment_detail"`
}

// Record returns the row as CSV fields in CSVHeader order.
func (r ExtractedRow) Record() []string {
	return []string{r.Code, r.Description, r.Segment, r.SegmentDetail}
}

// PageText is the linearized text of one PDF page: lines top to bottom
// separated by "\n", words within a line separated by a single space.
type PageText struct {
	// Number is the 1-based page number.
	Number int `json:"number" yaml:"number"`

	Text string `json:"text" yaml:"text"`
}
