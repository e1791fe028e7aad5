package pdf

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/a3tai/mcp-bloodwork/internal/bloodwork"
)

// Table detection constants
const (
	defaultRowTolerance = 3.0
	defaultCellGapEm    = 1.2
	minCellGap          = 6.0
	wordGapEm           = 0.15
	columnTolerance     = 4.0
	minRowsForTable     = 2
	defaultFontSize     = 10.0
	continuationLeadEm  = 1.6
)

// Glyph is a positioned run of text on a page. Y grows upwards.
type Glyph struct {
	X, Y, W  float64
	FontSize float64
	S        string
}

// cell is a horizontal run of text separated from its neighbours by a gap
// wider than the cell gap.
type cell struct {
	text   string
	x0, x1 float64
}

type line struct {
	y     float64
	cells []cell
}

// GridBuilder turns positioned glyphs into table grids.
type GridBuilder struct {
	RowTolerance float64 // max Y distance between glyphs of one row
	CellGapEm    float64 // gap, in font sizes, that separates two cells
}

// NewGridBuilder returns a builder with default tolerances.
func NewGridBuilder() *GridBuilder {
	return &GridBuilder{
		RowTolerance: defaultRowTolerance,
		CellGapEm:    defaultCellGapEm,
	}
}

// Tables groups glyphs into rows and cells and returns every run of at
// least two consecutive multi-cell rows as a table. A single-cell line that
// sits inside a column of the row above is folded into that cell as an
// extra line.
func (g *GridBuilder) Tables(glyphs []Glyph) []bloodwork.RawTable {
	lines := g.lines(glyphs)

	var tables []bloodwork.RawTable
	var current []line

	flush := func() {
		if len(current) >= minRowsForTable {
			tables = append(tables, toRawTable(current))
		}
		current = nil
	}

	for _, ln := range lines {
		if len(ln.cells) >= 2 {
			current = append(current, ln)
			continue
		}
		if len(current) > 0 && foldContinuation(&current[len(current)-1], ln) {
			continue
		}
		flush()
	}
	flush()

	return tables
}

// lines groups glyphs into rows ordered top to bottom.
func (g *GridBuilder) lines(glyphs []Glyph) []line {
	type bucket struct {
		yMin, yMax float64
		glyphs     []Glyph
	}

	var buckets []bucket
	for _, gl := range glyphs {
		found := false
		for i := range buckets {
			if gl.Y >= buckets[i].yMin-g.RowTolerance && gl.Y <= buckets[i].yMax+g.RowTolerance {
				buckets[i].glyphs = append(buckets[i].glyphs, gl)
				buckets[i].yMin = math.Min(buckets[i].yMin, gl.Y)
				buckets[i].yMax = math.Max(buckets[i].yMax, gl.Y)
				found = true
				break
			}
		}
		if !found {
			buckets = append(buckets, bucket{yMin: gl.Y, yMax: gl.Y, glyphs: []Glyph{gl}})
		}
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].yMax > buckets[j].yMax
	})

	lines := make([]line, 0, len(buckets))
	for _, b := range buckets {
		lines = append(lines, line{y: b.yMax, cells: g.cells(b.glyphs)})
	}
	return lines
}

// cells splits one row into cells by horizontal gaps.
func (g *GridBuilder) cells(glyphs []Glyph) []cell {
	sort.SliceStable(glyphs, func(i, j int) bool {
		return glyphs[i].X < glyphs[j].X
	})

	var cells []cell
	var b strings.Builder
	var cur cell
	prevEnd := 0.0

	for i, gl := range glyphs {
		size := gl.FontSize
		if size <= 0 {
			size = defaultFontSize
		}
		gap := gl.X - prevEnd

		switch {
		case i == 0:
			cur = cell{x0: gl.X}
		case gap > math.Max(minCellGap, g.CellGapEm*size):
			cur.text = b.String()
			cells = append(cells, cur)
			b.Reset()
			cur = cell{x0: gl.X}
		case gap > wordGapEm*size:
			b.WriteByte(' ')
		}

		b.WriteString(gl.S)
		prevEnd = gl.X + gl.W
		cur.x1 = prevEnd
	}

	if len(glyphs) > 0 {
		cur.text = b.String()
		cells = append(cells, cur)
	}

	for i := range cells {
		cells[i].text = normalizeText(cells[i].text)
	}
	return cells
}

// foldContinuation appends the single cell of ln to the cell of prev whose
// column contains it. Lines further than one leading below prev are never
// continuations.
func foldContinuation(prev *line, ln line) bool {
	if prev.y-ln.y > continuationLeadEm*defaultFontSize {
		return false
	}
	c := ln.cells[0]
	for i := range prev.cells {
		col := &prev.cells[i]
		if c.x0 >= col.x0-columnTolerance && c.x0 <= col.x1+columnTolerance {
			col.text += "\n" + c.text
			col.x1 = math.Max(col.x1, c.x1)
			prev.y = ln.y
			return true
		}
	}
	return false
}

func toRawTable(lines []line) bloodwork.RawTable {
	table := make(bloodwork.RawTable, len(lines))
	for i, ln := range lines {
		row := make([]string, len(ln.cells))
		for j, c := range ln.cells {
			row[j] = c.text
		}
		table[i] = row
	}
	return table
}

// normalizeText composes decomposed diacritics (Ë is often stored as E plus
// a combining mark) and trims each line.
func normalizeText(s string) string {
	s = norm.NFC.String(s)
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
