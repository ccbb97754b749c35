// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package table

import (
	"fmt"
	"regexp"
)

// Fields are the columns a RowPattern recovers from one table line.
// Only Code and Description are required; the rest are empty when the
// pattern does not capture them.
type Fields struct {
	Code        string
	Description string
	// Effective is the vigência date, DD/MM/YYYY.
	Effective string
	// OD, AMB, HCO and HSO are the care-setting flags, "S" or "N".
	OD  string
	AMB string
	HCO string
	HSO string
	// Ref and Pac are the optional numeric columns.
	Ref string
	Pac string
	// DUT is the trailing guideline code.
	DUT string
}

// RowPattern recognizes a table body line. Implementations use find
// semantics: a line is accepted when the pattern occurs in it.
type RowPattern interface {
	Match(line string) (Fields, bool)
}

// DefaultRowExpr matches one line of the annex table. The REF and PAC
// columns are optional as a whole, so a line without them still needs only
// one separator before the DUT column.
const DefaultRowExpr = `^(?P<code>\d{4}\.\d{2}\.\d{2}-\d)` +
	`\s+(?P<description>.+?)` +
	`\s+(?P<effective>\d{2}/\d{2}/\d{4})` +
	`\s+(?P<od>S|N)` +
	`\s+(?P<amb>S|N)` +
	`\s+(?P<hco>S|N)` +
	`\s+(?P<hso>S|N)` +
	`(?:\s+(?P<ref>\d+\.\d{2}))?` +
	`(?:\s+(?P<pac>\d+\.\d{2}))?` +
	`\s+(?P<dut>\w+)`

// RegexpPattern is a RowPattern backed by a regular expression with named
// groups. Group names are the lower-case Fields names.
type RegexpPattern struct {
	re  *regexp.Regexp
	idx map[string]int
}

var fieldGroups = []string{"code", "description", "effective", "od", "amb", "hco", "hso", "ref", "pac", "dut"}

// NewRegexpPattern compiles expr. It must define the "code" and
// "description" groups.
func NewRegexpPattern(expr string) (*RegexpPattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compiling row pattern: %w", err)
	}
	idx := make(map[string]int, len(fieldGroups))
	for _, name := range fieldGroups {
		if i := re.SubexpIndex(name); i >= 0 {
			idx[name] = i
		}
	}
	for _, required := range []string{"code", "description"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("row pattern has no %q group", required)
		}
	}
	return &RegexpPattern{re: re, idx: idx}, nil
}

// MustRegexpPattern is NewRegexpPattern that panics on error.
func MustRegexpPattern(expr string) *RegexpPattern {
	p, err := NewRegexpPattern(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// DefaultPattern returns the pattern for the annex table.
func DefaultPattern() *RegexpPattern {
	return MustRegexpPattern(DefaultRowExpr)
}

// Match implements RowPattern.
func (p *RegexpPattern) Match(line string) (Fields, bool) {
	m := p.re.FindStringSubmatch(line)
	if m == nil {
		return Fields{}, false
	}
	group := func(name string) string {
		if i, ok := p.idx[name]; ok {
			return m[i]
		}
		return ""
	}
	return Fields{
		Code:        group("code"),
		Description: group("description"),
		Effective:   group("effective"),
		OD:          group("od"),
		AMB:         group("amb"),
		HCO:         group("hco"),
		HSO:         group("hso"),
		Ref:         group("ref"),
		Pac:         group("pac"),
		DUT:         group("dut"),
	}, true
}

// String returns the source expression.
func (p *RegexpPattern) String() string {
	return p.re.String()
}
