// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package table reconstructs the procedure table of the ANS annex from the
// linearized text of its pages. A Detector tracks whether the scan is inside
// the table region, a Matcher turns forwarded lines into rows through a
// RowPattern, and a Normalizer expands abbreviation codes. Scanner wires the
// three together for a whole document.
package table

import (
	"strings"

	"github.com/pdiddy/rol-export/pkg/types"
)

// State is the position of the scan relative to the table region.
type State int

const (
	// Outside means no table title has been seen since the last terminator.
	Outside State = iota
	// HeaderPending means the title was seen and the column header is expected.
	HeaderPending
	// InTable means body lines are forwarded to the row matcher.
	InTable
)

func (s State) String() string {
	switch s {
	case Outside:
		return "outside"
	case HeaderPending:
		return "header_pending"
	case InTable:
		return "in_table"
	default:
		return "unknown"
	}
}

// Markers are the literal phrases that delimit the table region.
type Markers = types.TableMarkers

// DefaultMarkers returns the markers of the "Rol de Procedimentos" annex.
func DefaultMarkers() Markers {
	return Markers{
		Title:       "Rol de Procedimentos e Eventos em Saúde",
		Header:      "PROCEDIMENTO VIGÊNCIA OD AMB HCO HSO REF PAC DUT",
		Terminators: []string{"Legenda:", "Fonte:"},
	}
}

// Detector is the table region state machine. One Detector is used for a
// whole document so a table that spans pages stays open across the break.
type Detector struct {
	markers Markers
	state   State
}

// NewDetector returns a Detector in the Outside state.
func NewDetector(m Markers) *Detector {
	return &Detector{markers: m}
}

// State returns the current state.
func (d *Detector) State() State {
	return d.state
}

// Reset returns the detector to Outside.
func (d *Detector) Reset() {
	d.state = Outside
}

// Feed advances the state machine with one line and reports whether the
// line belongs to the table body. Marker lines are never forwarded.
//
// A title or header repeated while already InTable (continuation pages
// reprint both) leaves the state InTable.
func (d *Detector) Feed(line string) bool {
	switch {
	case contains(line, d.markers.Title):
		if d.state == Outside {
			d.state = HeaderPending
		}
		return false
	case d.state != Outside && contains(line, d.markers.Header):
		d.state = InTable
		return false
	case d.isTerminator(line):
		d.state = Outside
		return false
	}
	return d.state == InTable
}

func (d *Detector) isTerminator(line string) bool {
	for _, t := range d.markers.Terminators {
		if contains(line, t) {
			return true
		}
	}
	return false
}

// contains is strings.Contains except that an empty marker never matches.
func contains(line, marker string) bool {
	return marker != "" && strings.Contains(line, marker)
}
