// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	defaultFontSize = 12.0
	// lineTolerance is the fraction of the average font size within which
	// two baselines belong to the same line.
	lineTolerance = 0.5
	// wordGap is the fraction of the font size above which a horizontal gap
	// between glyphs is a word break.
	wordGap = 0.3
	// widthFactor estimates a glyph run's width when the reader gives none.
	widthFactor = 0.5
)

// glyph is a positioned run of text in PDF user space (y grows upwards).
type glyph struct {
	X, Y     float64
	W        float64
	FontSize float64
	S        string
}

type line struct {
	y      float64
	glyphs []glyph
}

// linearize turns positioned glyphs into text: lines top to bottom joined by
// "\n", glyphs left to right, a single space at word gaps, whitespace runs
// collapsed, and the result in Unicode NFC.
func linearize(glyphs []glyph) string {
	if len(glyphs) == 0 {
		return ""
	}

	tol := averageFontSize(glyphs) * lineTolerance
	if tol < 2 {
		tol = 2
	}

	var lines []line
	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		found := false
		for i := range lines {
			if math.Abs(lines[i].y-g.Y) < tol {
				lines[i].glyphs = append(lines[i].glyphs, g)
				found = true
				break
			}
		}
		if !found {
			lines = append(lines, line{y: g.Y, glyphs: []glyph{g}})
		}
	}

	sort.SliceStable(lines, func(i, j int) bool { return lines[i].y > lines[j].y })

	out := make([]string, 0, len(lines))
	for _, l := range lines {
		sort.SliceStable(l.glyphs, func(i, j int) bool { return l.glyphs[i].X < l.glyphs[j].X })
		if s := joinLine(l.glyphs); s != "" {
			out = append(out, s)
		}
	}
	return norm.NFC.String(strings.Join(out, "\n"))
}

func joinLine(glyphs []glyph) string {
	var sb strings.Builder
	for i, g := range glyphs {
		if i > 0 {
			prev := glyphs[i-1]
			gap := g.X - (prev.X + width(prev))
			fs := (fontSize(g) + fontSize(prev)) / 2
			if gap > fs*wordGap {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(g.S)
	}
	return collapseSpaces(sb.String())
}

// collapseSpaces replaces every run of Unicode whitespace (including
// no-break spaces) with one ASCII space and trims the ends.
func collapseSpaces(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

func width(g glyph) float64 {
	if g.W > 0 {
		return g.W
	}
	return float64(len([]rune(g.S))) * fontSize(g) * widthFactor
}

func fontSize(g glyph) float64 {
	if g.FontSize < 1 {
		return defaultFontSize
	}
	return g.FontSize
}

func averageFontSize(glyphs []glyph) float64 {
	sum := 0.0
	for _, g := range glyphs {
		sum += fontSize(g)
	}
	return sum / float64(len(glyphs))
}
