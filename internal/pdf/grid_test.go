package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-bloodwork/internal/bloodwork"
)

// word lays text out one glyph per rune, 5pt wide at 10pt, the way the
// content stream reader reports it. Spaces advance X but emit no glyph.
func word(x, y float64, text string) []Glyph {
	var glyphs []Glyph
	for _, r := range text {
		if r != ' ' {
			glyphs = append(glyphs, Glyph{X: x, Y: y, W: 5, FontSize: 10, S: string(r)})
		}
		x += 5
	}
	return glyphs
}

func page(parts ...[]Glyph) []Glyph {
	var glyphs []Glyph
	for _, p := range parts {
		glyphs = append(glyphs, p...)
	}
	return glyphs
}

func TestGridBuilder_Tables(t *testing.T) {
	tests := []struct {
		name   string
		glyphs []Glyph
		want   []bloodwork.RawTable
	}{
		{
			name: "two rows two columns",
			glyphs: page(
				word(100, 700, "REZULTATI"), word(250, 700, "VLERAT"),
				word(100, 685, "WBC"), word(250, 685, "5.2"),
			),
			want: []bloodwork.RawTable{
				{{"REZULTATI", "VLERAT"}, {"WBC", "5.2"}},
			},
		},
		{
			name: "words inside a cell keep their space",
			glyphs: page(
				word(100, 700, "Glukoza"), word(250, 700, "95 mg/dL"),
				word(100, 685, "WBC"), word(250, 685, "5.2 10^9/L"),
			),
			want: []bloodwork.RawTable{
				{{"Glukoza", "95 mg/dL"}, {"WBC", "5.2 10^9/L"}},
			},
		},
		{
			name: "single multi-cell row is not a table",
			glyphs: page(
				word(100, 700, "Pacienti"), word(250, 700, "Arta"),
				word(100, 650, "Shenim"),
			),
			want: nil,
		},
		{
			name: "jittered baselines share a row",
			glyphs: page(
				word(100, 700, "A"), word(250, 701.5, "B"),
				word(100, 685, "C"), word(250, 684, "D"),
			),
			want: []bloodwork.RawTable{
				{{"A", "B"}, {"C", "D"}},
			},
		},
		{
			name: "wrapped cell folds into its column",
			glyphs: page(
				word(100, 700, "Hemoglobina"), word(250, 700, "14"),
				word(100, 690, "totale"),
				word(100, 675, "WBC"), word(250, 675, "5.2"),
			),
			want: []bloodwork.RawTable{
				{{"Hemoglobina\ntotale", "14"}, {"WBC", "5.2"}},
			},
		},
		{
			name: "distant single line splits tables",
			glyphs: page(
				word(100, 700, "A"), word(250, 700, "B"),
				word(100, 685, "C"), word(250, 685, "D"),
				word(100, 600, "Shenim"),
				word(100, 500, "E"), word(250, 500, "F"),
				word(100, 485, "G"), word(250, 485, "H"),
			),
			want: []bloodwork.RawTable{
				{{"A", "B"}, {"C", "D"}},
				{{"E", "F"}, {"G", "H"}},
			},
		},
		{
			name:   "no glyphs",
			glyphs: nil,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewGridBuilder().Tables(tt.glyphs)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGridBuilder_TablesIgnoresInputOrder(t *testing.T) {
	glyphs := page(
		word(100, 700, "WBC"), word(250, 700, "5.2"),
		word(100, 685, "RBC"), word(250, 685, "4.7"),
	)
	reversed := make([]Glyph, len(glyphs))
	for i, g := range glyphs {
		reversed[len(glyphs)-1-i] = g
	}

	got := NewGridBuilder().Tables(reversed)
	require.Len(t, got, 1)
	assert.Equal(t, bloodwork.RawTable{{"WBC", "5.2"}, {"RBC", "4.7"}}, got[0])
}

func TestGridBuilder_ComposesCombiningMarks(t *testing.T) {
	glyphs := page(
		[]Glyph{
			{X: 100, Y: 700, W: 5, FontSize: 10, S: "E"},
			{X: 105, Y: 700, W: 0, FontSize: 10, S: "\u0308"},
		},
		word(250, 700, "x"),
		word(100, 685, "a"), word(250, 685, "b"),
	)

	got := NewGridBuilder().Tables(glyphs)
	require.Len(t, got, 1)
	assert.Equal(t, "\u00cb", got[0][0][0])
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "VLERAT REFERUESE", normalizeText("  VLERAT REFERUESE \n"))
	assert.Equal(t, "a\nb", normalizeText(" a \n  b  "))
	assert.Equal(t, "\u00cb", normalizeText("E\u0308"))
	assert.Equal(t, "", normalizeText(" \n "))
}
